package valueobject

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoneyArithmetic(t *testing.T) {
	a := NewMoneyFromFloat(100.50)
	b := NewMoneyFromFloat(50.25)

	assert.True(t, a.Add(b).Equals(NewMoneyFromFloat(150.75)))
	assert.True(t, a.Subtract(b).Equals(NewMoneyFromFloat(50.25)))
	assert.True(t, a.Multiply(decimal.NewFromInt(2)).Equals(NewMoneyFromFloat(201)))

	half, err := a.Divide(decimal.NewFromInt(2))
	require.NoError(t, err)
	assert.True(t, half.Equals(NewMoneyFromFloat(50.25)))

	_, err = a.Divide(decimal.Zero)
	assert.Error(t, err)
}

func TestMoneyPercentage(t *testing.T) {
	m := NewMoneyFromFloat(1000)
	assert.True(t, m.CalculatePercentage(decimal.NewFromInt(10)).Equals(NewMoneyFromFloat(100)))
}

func TestMoneyClamp(t *testing.T) {
	low := ZeroMoney()
	high := NewMoneyFromFloat(100)

	assert.True(t, NewMoneyFromFloat(-5).Clamp(low, high).IsZero())
	assert.True(t, NewMoneyFromFloat(150).Clamp(low, high).Equals(high))
	assert.True(t, NewMoneyFromFloat(42).Clamp(low, high).Equals(NewMoneyFromFloat(42)))
}

func TestMoneyFromString(t *testing.T) {
	m, err := NewMoneyFromString("19.99")
	require.NoError(t, err)
	assert.Equal(t, "19.99", m.String())

	_, err = NewMoneyFromString("not-a-number")
	assert.Error(t, err)
}

func TestMoneyScan(t *testing.T) {
	var m Money
	require.NoError(t, m.Scan("12.34"))
	assert.True(t, m.Equals(NewMoneyFromFloat(12.34)))

	require.NoError(t, m.Scan([]byte("56.78")))
	assert.True(t, m.Equals(NewMoneyFromFloat(56.78)))

	require.NoError(t, m.Scan(nil))
	assert.True(t, m.IsZero())

	assert.Error(t, m.Scan(struct{}{}))
}
