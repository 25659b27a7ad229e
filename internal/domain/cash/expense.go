package cash

import (
	"strings"
	"time"

	"github.com/ferreteria/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseStatus represents the approval state of an expense
type ExpenseStatus string

const (
	ExpenseStatusPending  ExpenseStatus = "PENDING"
	ExpenseStatusApproved ExpenseStatus = "APPROVED"
	ExpenseStatusRejected ExpenseStatus = "REJECTED"
)

// IsValid checks if the status is known
func (s ExpenseStatus) IsValid() bool {
	switch s {
	case ExpenseStatusPending, ExpenseStatusApproved, ExpenseStatusRejected:
		return true
	}
	return false
}

// IsTerminal returns true once approved or rejected
func (s ExpenseStatus) IsTerminal() bool {
	return s == ExpenseStatusApproved || s == ExpenseStatusRejected
}

// CanApprove returns true if the expense can be approved or rejected
func (s ExpenseStatus) CanApprove() bool {
	return s == ExpenseStatusPending
}

// String returns the string representation of ExpenseStatus
func (s ExpenseStatus) String() string {
	return string(s)
}

// Expense is a branch expense awaiting or past approval
type Expense struct {
	shared.BranchAggregateRoot
	Amount          decimal.Decimal
	PaymentMethod   PaymentMethod
	Category        string
	Description     string
	RequestedBy     uuid.UUID
	Status          ExpenseStatus
	SessionID       *uuid.UUID // session charged on cash approval
	LedgerEntryID   *uuid.UUID
	ApprovedAt      *time.Time
	ApprovedBy      *uuid.UUID
	RejectedAt      *time.Time
	RejectedBy      *uuid.UUID
	RejectionReason string
}

// NewExpense creates a pending expense
func NewExpense(branchID, requestedBy uuid.UUID, amount decimal.Decimal, method PaymentMethod, category, description string) (*Expense, error) {
	if branchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Branch is required")
	}
	if !amount.IsPositive() || hasSubCent(amount) {
		return nil, NewInvalidAmountError("amount", amount)
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError(CodeInvalidPaymentMethod, "Unknown payment method: "+string(method))
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot be empty")
	}
	if len(description) > 500 {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot exceed 500 characters")
	}
	category = strings.TrimSpace(category)
	if len(category) > 50 {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Category cannot exceed 50 characters")
	}

	e := &Expense{
		BranchAggregateRoot: shared.NewBranchAggregateRootWithCreator(branchID, requestedBy),
		Amount:              amount,
		PaymentMethod:       method,
		Category:            category,
		Description:         description,
		RequestedBy:         requestedBy,
		Status:              ExpenseStatusPending,
	}
	e.AddDomainEvent(NewExpenseCreatedEvent(e))
	return e, nil
}

// Approve moves the expense to APPROVED. Cash expenses must then be charged
// to a session with ChargeTo inside the same transaction.
func (e *Expense) Approve(approverID uuid.UUID) error {
	if !e.Status.CanApprove() {
		return NewNotPendingError("Expense", e.ID, string(e.Status))
	}
	now := time.Now()
	e.Status = ExpenseStatusApproved
	e.ApprovedAt = &now
	e.ApprovedBy = &approverID
	e.Touch()
	e.IncrementVersion()
	e.AddDomainEvent(NewExpenseApprovedEvent(e))
	return nil
}

// RequiresCashEntry reports whether approval must produce a ledger entry
func (e *Expense) RequiresCashEntry() bool {
	return e.PaymentMethod.IsCash()
}

// ChargeTo links the approved cash expense to its ledger entry
func (e *Expense) ChargeTo(entry *LedgerEntry) {
	e.SessionID = entry.SessionID
	id := entry.ID
	e.LedgerEntryID = &id
}

// Reject moves the expense to REJECTED. A reason is mandatory.
func (e *Expense) Reject(approverID uuid.UUID, reason string) error {
	if !e.Status.CanApprove() {
		return NewNotPendingError("Expense", e.ID, string(e.Status))
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return shared.NewDomainError(CodeInvalidReason, "Rejection reason is required")
	}
	if len(reason) > 500 {
		return shared.NewDomainError(CodeInvalidReason, "Rejection reason cannot exceed 500 characters")
	}
	now := time.Now()
	e.Status = ExpenseStatusRejected
	e.RejectedAt = &now
	e.RejectedBy = &approverID
	e.RejectionReason = reason
	e.Touch()
	e.IncrementVersion()
	e.AddDomainEvent(NewExpenseRejectedEvent(e))
	return nil
}
