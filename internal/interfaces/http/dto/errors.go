package dto

import "net/http"

// Transport error codes. Domain errors keep the code they were raised with.
const (
	ErrCodeInternal         = "INTERNAL_ERROR"
	ErrCodeBadRequest       = "BAD_REQUEST"
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeInvalidJSON      = "INVALID_JSON"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeTokenExpired     = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid     = "INVALID_TOKEN"
	ErrCodeForbidden        = "FORBIDDEN"
	ErrCodeDuplicateRequest = "DUPLICATE_REQUEST"
	ErrCodePayloadTooLarge  = "PAYLOAD_TOO_LARGE"
	ErrCodeNotFound         = "NOT_FOUND"
)

// Cash domain error codes, as raised by internal/domain/cash
const (
	ErrCodeAlreadyOpen            = "ALREADY_OPEN"
	ErrCodeInvalidAmount          = "INVALID_AMOUNT"
	ErrCodeAlreadyClosed          = "ALREADY_CLOSED"
	ErrCodeSessionClosed          = "SESSION_CLOSED"
	ErrCodeNoOpenSession          = "NO_OPEN_SESSION"
	ErrCodeInvalidSchedule        = "INVALID_SCHEDULE"
	ErrCodeOverpayment            = "OVERPAYMENT"
	ErrCodeAlreadyPaid            = "ALREADY_PAID"
	ErrCodeNotPending             = "NOT_PENDING"
	ErrCodeInvalidReason          = "INVALID_REASON"
	ErrCodeConcurrencyConflict    = "CONCURRENCY_CONFLICT"
	ErrCodeConsistencyViolation   = "CONSISTENCY_VIOLATION"
	ErrCodeRegisterInactive       = "REGISTER_INACTIVE"
	ErrCodeRegisterHasOpenSession = "REGISTER_HAS_OPEN_SESSION"
	ErrCodeInvalidPaymentMethod   = "INVALID_PAYMENT_METHOD"
	ErrCodeInvalidEntryType       = "INVALID_ENTRY_TYPE"
	ErrCodeInvalidRegister        = "INVALID_REGISTER"
	ErrCodeInvalidTransfer        = "INVALID_TRANSFER"
	ErrCodeDuplicateSale          = "DUPLICATE_SALE"
	ErrCodeInvalidID              = "INVALID_ID"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal: http.StatusInternalServerError,

	// Malformed requests -> 400
	ErrCodeBadRequest:  http.StatusBadRequest,
	ErrCodeValidation:  http.StatusBadRequest,
	ErrCodeInvalidJSON: http.StatusBadRequest,
	ErrCodeInvalidID:   http.StatusBadRequest,

	// Auth
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,

	ErrCodeNotFound:        http.StatusNotFound,
	ErrCodePayloadTooLarge: http.StatusRequestEntityTooLarge,

	// Well-formed but rejected by a business rule -> 422
	ErrCodeInvalidAmount:        http.StatusUnprocessableEntity,
	ErrCodeInvalidSchedule:      http.StatusUnprocessableEntity,
	ErrCodeOverpayment:          http.StatusUnprocessableEntity,
	ErrCodeInvalidReason:        http.StatusUnprocessableEntity,
	ErrCodeInvalidPaymentMethod: http.StatusUnprocessableEntity,
	ErrCodeInvalidEntryType:     http.StatusUnprocessableEntity,
	ErrCodeInvalidRegister:      http.StatusUnprocessableEntity,
	ErrCodeInvalidTransfer:      http.StatusUnprocessableEntity,
	"INVALID_DESCRIPTION":       http.StatusUnprocessableEntity,
	"INVALID_CATEGORY":          http.StatusUnprocessableEntity,
	"INVALID_USER":              http.StatusUnprocessableEntity,
	"INVALID_BRANCH":            http.StatusUnprocessableEntity,

	// Conflicts with the current state of the resource -> 409
	ErrCodeAlreadyOpen:            http.StatusConflict,
	ErrCodeAlreadyClosed:          http.StatusConflict,
	ErrCodeSessionClosed:          http.StatusConflict,
	ErrCodeNoOpenSession:          http.StatusConflict,
	ErrCodeAlreadyPaid:            http.StatusConflict,
	ErrCodeNotPending:             http.StatusConflict,
	ErrCodeRegisterInactive:       http.StatusConflict,
	ErrCodeRegisterHasOpenSession: http.StatusConflict,
	ErrCodeDuplicateSale:          http.StatusConflict,
	ErrCodeConcurrencyConflict:    http.StatusConflict,
	ErrCodeDuplicateRequest:       http.StatusConflict,

	ErrCodeConsistencyViolation: http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// IsClientError reports whether code maps to a 4xx status
func IsClientError(code string) bool {
	status := GetHTTPStatus(code)
	return status >= 400 && status < 500
}
