package dto

import "net/http"

// General error codes
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL_ERROR"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
)

// ErrorCodeHTTPStatus maps domain error codes to HTTP status codes.
// Codes not listed fall back to 400 for INVALID_* codes and 500
// otherwise; see GetHTTPStatus.
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeInternal:   http.StatusInternalServerError,
	ErrCodeBadRequest: http.StatusBadRequest,

	// Resource errors
	"NOT_FOUND":            http.StatusNotFound,
	"PRODUCT_NOT_FOUND":    http.StatusNotFound,
	"ITEM_NOT_FOUND":       http.StatusNotFound,
	"ALREADY_EXISTS":       http.StatusConflict,
	"CONCURRENCY_CONFLICT": http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	"INVALID_STATE":      http.StatusUnprocessableEntity,
	"INSUFFICIENT_STOCK": http.StatusUnprocessableEntity,
	"ALREADY_UNDONE":     http.StatusUnprocessableEntity,
	"NOT_CREDIT_SALE":    http.StatusUnprocessableEntity,

	// Input errors -> 400 Bad Request
	"VALIDATION_ERROR":       http.StatusBadRequest,
	"BATCH_MISMATCH":         http.StatusBadRequest,
	"INVALID_INPUT":          http.StatusBadRequest,
	"INVALID_QUANTITY":       http.StatusBadRequest,
	"INVALID_AMOUNT":         http.StatusBadRequest,
	"INVALID_PRICE":          http.StatusBadRequest,
	"INVALID_TAX_RATE":       http.StatusBadRequest,
	"INVALID_CUSTOMER":       http.StatusBadRequest,
	"INVALID_SALE_NUMBER":    http.StatusBadRequest,
	"INVALID_PRODUCT":        http.StatusBadRequest,
	"INVALID_PRODUCT_CODE":   http.StatusBadRequest,
	"INVALID_PRODUCT_NAME":   http.StatusBadRequest,
	"INVALID_CAMPAIGN_NAME":  http.StatusBadRequest,
	"INVALID_RULE_KIND":      http.StatusBadRequest,
	"INVALID_RULE_VALUE":     http.StatusBadRequest,
	"INVALID_RULE_CONDITION": http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status code for a domain error code
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
