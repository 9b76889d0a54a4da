package persistence

import (
	"context"

	"github.com/retailpos/backend/internal/domain/shared"
	"gorm.io/gorm"
)

type txKey struct{}

// GormTransactionManager implements shared.TransactionManager on a GORM
// connection. The transaction handle travels in the context; repositories
// pick it up through conn and fall back to their own connection when no
// transaction is open.
type GormTransactionManager struct {
	db *gorm.DB
}

// NewGormTransactionManager creates a new GormTransactionManager
func NewGormTransactionManager(db *gorm.DB) *GormTransactionManager {
	return &GormTransactionManager{db: db}
}

// WithinTransaction runs fn inside one database transaction. An error
// from fn rolls back every write made through the passed context.
func (m *GormTransactionManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// conn resolves the connection for ctx: the open transaction handle when
// one is carried, otherwise fallback
func conn(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return fallback
}

// Ensure GormTransactionManager implements TransactionManager
var _ shared.TransactionManager = (*GormTransactionManager)(nil)
