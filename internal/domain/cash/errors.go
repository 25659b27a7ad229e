package cash

import (
	"errors"
	"fmt"

	"github.com/ferreteria/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Error codes raised by the cash domain
const (
	CodeAlreadyOpen            = "ALREADY_OPEN"
	CodeInvalidAmount          = "INVALID_AMOUNT"
	CodeNotFound               = "NOT_FOUND"
	CodeAlreadyClosed          = "ALREADY_CLOSED"
	CodeSessionClosed          = "SESSION_CLOSED"
	CodeNoOpenSession          = "NO_OPEN_SESSION"
	CodeInvalidSchedule        = "INVALID_SCHEDULE"
	CodeOverpayment            = "OVERPAYMENT"
	CodeAlreadyPaid            = "ALREADY_PAID"
	CodeNotPending             = "NOT_PENDING"
	CodeInvalidReason          = "INVALID_REASON"
	CodeConcurrencyConflict    = "CONCURRENCY_CONFLICT"
	CodeConsistencyViolation   = "CONSISTENCY_VIOLATION"
	CodeRegisterInactive       = "REGISTER_INACTIVE"
	CodeRegisterHasOpenSession = "REGISTER_HAS_OPEN_SESSION"
	CodeInvalidPaymentMethod   = "INVALID_PAYMENT_METHOD"
	CodeInvalidEntryType       = "INVALID_ENTRY_TYPE"
	CodeInvalidRegister        = "INVALID_REGISTER"
	CodeInvalidTransfer        = "INVALID_TRANSFER"
	CodeDuplicateSale          = "DUPLICATE_SALE"
)

// NewAlreadyOpenError reports a second open attempt on a register that already has an open session
func NewAlreadyOpenError(registerID uuid.UUID) *shared.DomainError {
	return shared.NewDomainError(CodeAlreadyOpen, fmt.Sprintf("Cash register %s already has an open session", registerID))
}

// NewInvalidAmountError reports a negative, zero or sub-cent amount
func NewInvalidAmountError(field string, amount decimal.Decimal) *shared.DomainError {
	return shared.NewDomainError(CodeInvalidAmount, fmt.Sprintf("Invalid %s: %s", field, amount.String()))
}

// NewNotFoundError reports a missing aggregate
func NewNotFoundError(kind string, id uuid.UUID) *shared.DomainError {
	return shared.NewDomainError(CodeNotFound, fmt.Sprintf("%s %s not found", kind, id))
}

// NewAlreadyClosedError reports a close attempt on a closed session
func NewAlreadyClosedError(sessionID uuid.UUID) *shared.DomainError {
	return shared.NewDomainError(CodeAlreadyClosed, fmt.Sprintf("Cash session %s is already closed", sessionID))
}

// NewSessionClosedError reports a ledger write against a session that is not open
func NewSessionClosedError(sessionID uuid.UUID) *shared.DomainError {
	return shared.NewDomainError(CodeSessionClosed, fmt.Sprintf("Cash session %s is not open", sessionID))
}

// NewNoOpenSessionError reports that no open session exists where one is required
func NewNoOpenSessionError(scope string, id uuid.UUID) *shared.DomainError {
	return shared.NewDomainError(CodeNoOpenSession, fmt.Sprintf("No open cash session for %s %s", scope, id))
}

// NewInvalidScheduleError reports bad credit schedule parameters
func NewInvalidScheduleError(reason string) *shared.DomainError {
	return shared.NewDomainError(CodeInvalidSchedule, "Invalid credit schedule: "+reason)
}

// NewOverpaymentError reports a payment larger than the remaining installment amount
func NewOverpaymentError(received, remaining decimal.Decimal) *shared.DomainError {
	return shared.NewDomainError(CodeOverpayment,
		fmt.Sprintf("Payment %s exceeds remaining amount %s", received.StringFixed(2), remaining.StringFixed(2)))
}

// NewAlreadyPaidError reports a payment on a settled installment
func NewAlreadyPaidError(installmentID uuid.UUID) *shared.DomainError {
	return shared.NewDomainError(CodeAlreadyPaid, fmt.Sprintf("Installment %s is already paid", installmentID))
}

// NewNotPendingError reports a transition attempted outside the pending state
func NewNotPendingError(kind string, id uuid.UUID, status string) *shared.DomainError {
	return shared.NewDomainError(CodeNotPending, fmt.Sprintf("%s %s is %s, not PENDING", kind, id, status))
}

// NewConsistencyViolationError reports ledger data that no longer reconciles
func NewConsistencyViolationError(detail string) *shared.DomainError {
	return shared.NewDomainError(CodeConsistencyViolation, "Cash data integrity violation: "+detail)
}

// NewConcurrencyConflictError reports a lost optimistic lock or a lock timeout
func NewConcurrencyConflictError(kind string, id uuid.UUID) *shared.DomainError {
	return shared.NewDomainError(CodeConcurrencyConflict, fmt.Sprintf("%s %s was modified by another operation", kind, id))
}

// ErrorKind groups error codes by how callers should react to them
type ErrorKind string

const (
	KindValidation  ErrorKind = "VALIDATION"  // bad input, nothing written
	KindState       ErrorKind = "STATE"       // refresh state, do not retry blindly
	KindNotFound    ErrorKind = "NOT_FOUND"   // referenced aggregate missing
	KindConcurrency ErrorKind = "CONCURRENCY" // safe to retry the whole operation
	KindConsistency ErrorKind = "CONSISTENCY" // fatal data-integrity condition
	KindUnknown     ErrorKind = "UNKNOWN"
)

var kindByCode = map[string]ErrorKind{
	CodeInvalidAmount:          KindValidation,
	CodeInvalidSchedule:        KindValidation,
	CodeOverpayment:            KindValidation,
	CodeInvalidReason:          KindValidation,
	CodeInvalidPaymentMethod:   KindValidation,
	CodeInvalidEntryType:       KindValidation,
	CodeInvalidRegister:        KindValidation,
	CodeInvalidTransfer:        KindValidation,
	"INVALID_DESCRIPTION":      KindValidation,
	"INVALID_CATEGORY":         KindValidation,
	"INVALID_USER":             KindValidation,
	"INVALID_BRANCH":           KindValidation,
	CodeAlreadyOpen:            KindState,
	CodeAlreadyClosed:          KindState,
	CodeSessionClosed:          KindState,
	CodeNoOpenSession:          KindState,
	CodeAlreadyPaid:            KindState,
	CodeNotPending:             KindState,
	CodeRegisterInactive:       KindState,
	CodeRegisterHasOpenSession: KindState,
	CodeDuplicateSale:          KindState,
	CodeNotFound:               KindNotFound,
	CodeConcurrencyConflict:    KindConcurrency,
	CodeConsistencyViolation:   KindConsistency,
}

// KindOf classifies err. Errors that are not domain errors are KindUnknown.
func KindOf(err error) ErrorKind {
	var de *shared.DomainError
	if !errors.As(err, &de) {
		return KindUnknown
	}
	if kind, ok := kindByCode[de.Code]; ok {
		return kind
	}
	return KindUnknown
}

// IsRetryable reports whether the whole operation can be retried from scratch
func IsRetryable(err error) bool {
	return KindOf(err) == KindConcurrency
}

// IsErrorCode reports whether err carries the given cash error code
func IsErrorCode(err error, code string) bool {
	return shared.HasCode(err, code)
}
