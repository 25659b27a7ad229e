package cash

import (
	"time"

	"github.com/ferreteria/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type names
const (
	AggregateTypeCashRegister = "CashRegister"
	AggregateTypeCashSession  = "CashSession"
	AggregateTypeLedgerEntry  = "CashLedgerEntry"
	AggregateTypeCreditSale   = "CreditSale"
	AggregateTypeExpense      = "Expense"
	AggregateTypeCashTransfer = "CashTransfer"
)

// Event type names
const (
	EventTypeCashRegisterCreated       = "CashRegisterCreated"
	EventTypeCashRegisterDeactivated   = "CashRegisterDeactivated"
	EventTypeCashSessionOpened         = "CashSessionOpened"
	EventTypeCashSessionClosed         = "CashSessionClosed"
	EventTypeCashSessionDiscrepancy    = "CashSessionDiscrepancyDetected"
	EventTypeLedgerEntryRecorded       = "LedgerEntryRecorded"
	EventTypeCreditScheduleCreated     = "CreditScheduleCreated"
	EventTypeInstallmentPaymentApplied = "InstallmentPaymentApplied"
	EventTypeCreditSaleSettled         = "CreditSaleSettled"
	EventTypeExpenseCreated            = "ExpenseCreated"
	EventTypeExpenseApproved           = "ExpenseApproved"
	EventTypeExpenseRejected           = "ExpenseRejected"
	EventTypeCashTransferRequested     = "CashTransferRequested"
	EventTypeCashTransferCompleted     = "CashTransferCompleted"
	EventTypeCashTransferCancelled     = "CashTransferCancelled"
	EventTypeSessionIntegrityViolation = "CashSessionIntegrityViolation"
)

// CashRegisterCreatedEvent is raised when a register is added to a branch
type CashRegisterCreatedEvent struct {
	shared.BaseDomainEvent
	RegisterID uuid.UUID    `json:"register_id"`
	Name       string       `json:"name"`
	Type       RegisterType `json:"type"`
}

// NewCashRegisterCreatedEvent creates a new CashRegisterCreatedEvent
func NewCashRegisterCreatedEvent(r *CashRegister) *CashRegisterCreatedEvent {
	return &CashRegisterCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCashRegisterCreated, AggregateTypeCashRegister, r.ID, r.BranchID),
		RegisterID:      r.ID,
		Name:            r.Name,
		Type:            r.Type,
	}
}

// CashRegisterDeactivatedEvent is raised when a register is soft-deleted
type CashRegisterDeactivatedEvent struct {
	shared.BaseDomainEvent
	RegisterID uuid.UUID `json:"register_id"`
}

// NewCashRegisterDeactivatedEvent creates a new CashRegisterDeactivatedEvent
func NewCashRegisterDeactivatedEvent(r *CashRegister) *CashRegisterDeactivatedEvent {
	return &CashRegisterDeactivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCashRegisterDeactivated, AggregateTypeCashRegister, r.ID, r.BranchID),
		RegisterID:      r.ID,
	}
}

// CashSessionOpenedEvent is raised when a register is opened
type CashSessionOpenedEvent struct {
	shared.BaseDomainEvent
	SessionID      uuid.UUID       `json:"session_id"`
	RegisterID     uuid.UUID       `json:"register_id"`
	UserID         uuid.UUID       `json:"user_id"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	OpenedAt       time.Time       `json:"opened_at"`
}

// NewCashSessionOpenedEvent creates a new CashSessionOpenedEvent
func NewCashSessionOpenedEvent(s *CashSession) *CashSessionOpenedEvent {
	return &CashSessionOpenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCashSessionOpened, AggregateTypeCashSession, s.ID, s.BranchID),
		SessionID:       s.ID,
		RegisterID:      s.RegisterID,
		UserID:          s.UserID,
		OpeningBalance:  s.OpeningBalance,
		OpenedAt:        s.OpenedAt,
	}
}

// CashSessionClosedEvent is raised after the arqueo
type CashSessionClosedEvent struct {
	shared.BaseDomainEvent
	SessionID       uuid.UUID       `json:"session_id"`
	RegisterID      uuid.UUID       `json:"register_id"`
	ExpectedBalance decimal.Decimal `json:"expected_balance"`
	ActualBalance   decimal.Decimal `json:"actual_balance"`
	Difference      decimal.Decimal `json:"difference"`
	DeviationLevel  DeviationLevel  `json:"deviation_level"`
	ClosedAt        time.Time       `json:"closed_at"`
}

// NewCashSessionClosedEvent creates a new CashSessionClosedEvent from a closed session
func NewCashSessionClosedEvent(s *CashSession) *CashSessionClosedEvent {
	e := &CashSessionClosedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCashSessionClosed, AggregateTypeCashSession, s.ID, s.BranchID),
		SessionID:       s.ID,
		RegisterID:      s.RegisterID,
	}
	if s.ExpectedBalance != nil {
		e.ExpectedBalance = *s.ExpectedBalance
	}
	if s.ActualBalance != nil {
		e.ActualBalance = *s.ActualBalance
	}
	if s.Difference != nil {
		e.Difference = *s.Difference
	}
	if s.DeviationLevel != nil {
		e.DeviationLevel = *s.DeviationLevel
	}
	if s.ClosedAt != nil {
		e.ClosedAt = *s.ClosedAt
	}
	return e
}

// CashSessionDiscrepancyEvent is raised when a close deviates beyond the warning threshold
type CashSessionDiscrepancyEvent struct {
	shared.BaseDomainEvent
	SessionID      uuid.UUID       `json:"session_id"`
	RegisterID     uuid.UUID       `json:"register_id"`
	UserID         uuid.UUID       `json:"user_id"`
	Difference     decimal.Decimal `json:"difference"`
	DeviationPct   decimal.Decimal `json:"deviation_pct"`
	DeviationLevel DeviationLevel  `json:"deviation_level"`
}

// NewCashSessionDiscrepancyEvent creates a new CashSessionDiscrepancyEvent from a closed session
func NewCashSessionDiscrepancyEvent(s *CashSession) *CashSessionDiscrepancyEvent {
	e := &CashSessionDiscrepancyEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCashSessionDiscrepancy, AggregateTypeCashSession, s.ID, s.BranchID),
		SessionID:       s.ID,
		RegisterID:      s.RegisterID,
		UserID:          s.UserID,
	}
	if s.Difference != nil {
		e.Difference = *s.Difference
	}
	if s.DeviationPct != nil {
		e.DeviationPct = *s.DeviationPct
	}
	if s.DeviationLevel != nil {
		e.DeviationLevel = *s.DeviationLevel
	}
	return e
}

// LedgerEntryRecordedEvent is raised after an entry is appended
type LedgerEntryRecordedEvent struct {
	shared.BaseDomainEvent
	EntryID       uuid.UUID       `json:"entry_id"`
	SessionID     *uuid.UUID      `json:"session_id,omitempty"`
	RegisterID    uuid.UUID       `json:"register_id"`
	EntryType     EntryType       `json:"entry_type"`
	Amount        decimal.Decimal `json:"amount"`
	SignedAmount  decimal.Decimal `json:"signed_amount"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
}

// NewLedgerEntryRecordedEvent creates a new LedgerEntryRecordedEvent
func NewLedgerEntryRecordedEvent(e *LedgerEntry) *LedgerEntryRecordedEvent {
	return &LedgerEntryRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLedgerEntryRecorded, AggregateTypeLedgerEntry, e.ID, e.BranchID),
		EntryID:         e.ID,
		SessionID:       e.SessionID,
		RegisterID:      e.RegisterID,
		EntryType:       e.Type,
		Amount:          e.Amount,
		SignedAmount:    e.SignedAmount(),
		PaymentMethod:   e.PaymentMethod,
	}
}

// CreditScheduleCreatedEvent is raised when a credit sale's cuotas are generated
type CreditScheduleCreatedEvent struct {
	shared.BaseDomainEvent
	CreditSaleID     uuid.UUID       `json:"credit_sale_id"`
	SaleID           uuid.UUID       `json:"sale_id"`
	Total            decimal.Decimal `json:"total"`
	Financed         decimal.Decimal `json:"financed"`
	InstallmentCount int             `json:"installment_count"`
}

// NewCreditScheduleCreatedEvent creates a new CreditScheduleCreatedEvent
func NewCreditScheduleCreatedEvent(c *CreditSale) *CreditScheduleCreatedEvent {
	return &CreditScheduleCreatedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeCreditScheduleCreated, AggregateTypeCreditSale, c.ID, c.BranchID),
		CreditSaleID:     c.ID,
		SaleID:           c.SaleID,
		Total:            c.Total,
		Financed:         c.Total.Sub(c.InitialPayment),
		InstallmentCount: c.InstallmentCount,
	}
}

// InstallmentPaymentAppliedEvent is raised for every payment on a cuota
type InstallmentPaymentAppliedEvent struct {
	shared.BaseDomainEvent
	CreditSaleID  uuid.UUID       `json:"credit_sale_id"`
	InstallmentID uuid.UUID       `json:"installment_id"`
	PaymentNumber int             `json:"payment_number"`
	Received      decimal.Decimal `json:"received"`
	Applied       decimal.Decimal `json:"applied"`
	Change        decimal.Decimal `json:"change"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	FullyPaid     bool            `json:"fully_paid"`
}

// NewInstallmentPaymentAppliedEvent creates a new InstallmentPaymentAppliedEvent
func NewInstallmentPaymentAppliedEvent(c *CreditSale, r *PaymentResult) *InstallmentPaymentAppliedEvent {
	return &InstallmentPaymentAppliedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInstallmentPaymentApplied, AggregateTypeCreditSale, c.ID, c.BranchID),
		CreditSaleID:    c.ID,
		InstallmentID:   r.Installment.ID,
		PaymentNumber:   r.Installment.PaymentNumber,
		Received:        r.Received,
		Applied:         r.Applied,
		Change:          r.Change,
		PaymentMethod:   r.PaymentMethod,
		FullyPaid:       r.FullyPaid,
	}
}

// CreditSaleSettledEvent is raised when the last cent of a credit sale is paid
type CreditSaleSettledEvent struct {
	shared.BaseDomainEvent
	CreditSaleID uuid.UUID `json:"credit_sale_id"`
	SaleID       uuid.UUID `json:"sale_id"`
}

// NewCreditSaleSettledEvent creates a new CreditSaleSettledEvent
func NewCreditSaleSettledEvent(c *CreditSale) *CreditSaleSettledEvent {
	return &CreditSaleSettledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCreditSaleSettled, AggregateTypeCreditSale, c.ID, c.BranchID),
		CreditSaleID:    c.ID,
		SaleID:          c.SaleID,
	}
}

// ExpenseCreatedEvent is raised when an expense is submitted
type ExpenseCreatedEvent struct {
	shared.BaseDomainEvent
	ExpenseID     uuid.UUID       `json:"expense_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
}

// NewExpenseCreatedEvent creates a new ExpenseCreatedEvent
func NewExpenseCreatedEvent(e *Expense) *ExpenseCreatedEvent {
	return &ExpenseCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeExpenseCreated, AggregateTypeExpense, e.ID, e.BranchID),
		ExpenseID:       e.ID,
		Amount:          e.Amount,
		PaymentMethod:   e.PaymentMethod,
	}
}

// ExpenseApprovedEvent is raised when an expense is approved
type ExpenseApprovedEvent struct {
	shared.BaseDomainEvent
	ExpenseID     uuid.UUID       `json:"expense_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	ApprovedBy    uuid.UUID       `json:"approved_by"`
}

// NewExpenseApprovedEvent creates a new ExpenseApprovedEvent
func NewExpenseApprovedEvent(e *Expense) *ExpenseApprovedEvent {
	var approvedBy uuid.UUID
	if e.ApprovedBy != nil {
		approvedBy = *e.ApprovedBy
	}
	return &ExpenseApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeExpenseApproved, AggregateTypeExpense, e.ID, e.BranchID),
		ExpenseID:       e.ID,
		Amount:          e.Amount,
		PaymentMethod:   e.PaymentMethod,
		ApprovedBy:      approvedBy,
	}
}

// ExpenseRejectedEvent is raised when an expense is rejected
type ExpenseRejectedEvent struct {
	shared.BaseDomainEvent
	ExpenseID uuid.UUID `json:"expense_id"`
	Reason    string    `json:"reason"`
}

// NewExpenseRejectedEvent creates a new ExpenseRejectedEvent
func NewExpenseRejectedEvent(e *Expense) *ExpenseRejectedEvent {
	return &ExpenseRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeExpenseRejected, AggregateTypeExpense, e.ID, e.BranchID),
		ExpenseID:       e.ID,
		Reason:          e.RejectionReason,
	}
}

// CashTransferRequestedEvent is raised when a transfer is created
type CashTransferRequestedEvent struct {
	shared.BaseDomainEvent
	TransferID            uuid.UUID       `json:"transfer_id"`
	SourceRegisterID      uuid.UUID       `json:"source_register_id"`
	DestinationRegisterID uuid.UUID       `json:"destination_register_id"`
	Amount                decimal.Decimal `json:"amount"`
}

// NewCashTransferRequestedEvent creates a new CashTransferRequestedEvent
func NewCashTransferRequestedEvent(t *CashTransfer) *CashTransferRequestedEvent {
	return &CashTransferRequestedEvent{
		BaseDomainEvent:       shared.NewBaseDomainEvent(EventTypeCashTransferRequested, AggregateTypeCashTransfer, t.ID, t.BranchID),
		TransferID:            t.ID,
		SourceRegisterID:      t.SourceRegisterID,
		DestinationRegisterID: t.DestinationRegisterID,
		Amount:                t.Amount,
	}
}

// CashTransferCompletedEvent is raised when both transfer entries are booked
type CashTransferCompletedEvent struct {
	shared.BaseDomainEvent
	TransferID            uuid.UUID       `json:"transfer_id"`
	SourceRegisterID      uuid.UUID       `json:"source_register_id"`
	DestinationRegisterID uuid.UUID       `json:"destination_register_id"`
	DestinationBranchID   uuid.UUID       `json:"destination_branch_id"`
	Amount                decimal.Decimal `json:"amount"`
}

// NewCashTransferCompletedEvent creates a new CashTransferCompletedEvent
func NewCashTransferCompletedEvent(t *CashTransfer) *CashTransferCompletedEvent {
	return &CashTransferCompletedEvent{
		BaseDomainEvent:       shared.NewBaseDomainEvent(EventTypeCashTransferCompleted, AggregateTypeCashTransfer, t.ID, t.BranchID),
		TransferID:            t.ID,
		SourceRegisterID:      t.SourceRegisterID,
		DestinationRegisterID: t.DestinationRegisterID,
		DestinationBranchID:   t.DestinationBranchID,
		Amount:                t.Amount,
	}
}

// CashTransferCancelledEvent is raised when a pending transfer is cancelled
type CashTransferCancelledEvent struct {
	shared.BaseDomainEvent
	TransferID uuid.UUID `json:"transfer_id"`
	Reason     string    `json:"reason"`
}

// NewCashTransferCancelledEvent creates a new CashTransferCancelledEvent
func NewCashTransferCancelledEvent(t *CashTransfer) *CashTransferCancelledEvent {
	return &CashTransferCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCashTransferCancelled, AggregateTypeCashTransfer, t.ID, t.BranchID),
		TransferID:      t.ID,
		Reason:          t.CancelReason,
	}
}

// SessionIntegrityViolationEvent is raised when a closed session no longer reconciles
type SessionIntegrityViolationEvent struct {
	shared.BaseDomainEvent
	SessionID uuid.UUID `json:"session_id"`
	Detail    string    `json:"detail"`
}

// NewSessionIntegrityViolationEvent creates a new SessionIntegrityViolationEvent
func NewSessionIntegrityViolationEvent(s *CashSession, detail string) *SessionIntegrityViolationEvent {
	return &SessionIntegrityViolationEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSessionIntegrityViolation, AggregateTypeCashSession, s.ID, s.BranchID),
		SessionID:       s.ID,
		Detail:          detail,
	}
}
