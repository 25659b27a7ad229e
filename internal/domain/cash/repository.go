package cash

import (
	"context"
	"time"

	"github.com/ferreteria/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// RegisterFilter narrows register queries
type RegisterFilter struct {
	shared.Filter
	BranchID       *uuid.UUID
	Type           *RegisterType
	Search         string
	IncludeDeleted bool
}

// SessionFilter narrows session queries. Nil fields are ignored.
type SessionFilter struct {
	shared.Filter
	BranchID   *uuid.UUID
	RegisterID *uuid.UUID
	UserID     *uuid.UUID
	Status     *SessionStatus
	OpenedFrom *time.Time
	OpenedTo   *time.Time
}

// LedgerEntryFilter narrows ledger queries
type LedgerEntryFilter struct {
	shared.Filter
	SessionID     *uuid.UUID
	BranchID      *uuid.UUID
	RegisterID    *uuid.UUID
	Type          *EntryType
	PaymentMethod *PaymentMethod
	// Unsessioned selects only entries recorded without a session
	Unsessioned bool
	From        *time.Time
	To          *time.Time
}

// InstallmentFilter narrows installment queries
type InstallmentFilter struct {
	shared.Filter
	BranchID   *uuid.UUID
	CustomerID *uuid.UUID
}

// ExpenseFilter narrows expense queries
type ExpenseFilter struct {
	shared.Filter
	BranchID      *uuid.UUID
	Status        *ExpenseStatus
	PaymentMethod *PaymentMethod
	RequestedBy   *uuid.UUID
	From          *time.Time
	To            *time.Time
}

// TransferFilter narrows transfer queries.
// BranchID and RegisterID match either side of the transfer.
type TransferFilter struct {
	shared.Filter
	BranchID   *uuid.UUID
	RegisterID *uuid.UUID
	Status     *TransferStatus
	From       *time.Time
	To         *time.Time
}

// CashRegisterRepository defines persistence for registers
type CashRegisterRepository interface {
	// FindByID returns the register even when soft-deleted
	FindByID(ctx context.Context, id uuid.UUID) (*CashRegister, error)
	FindAll(ctx context.Context, filter RegisterFilter) ([]CashRegister, error)
	Count(ctx context.Context, filter RegisterFilter) (int64, error)
	Save(ctx context.Context, register *CashRegister) error
	SaveWithLock(ctx context.Context, register *CashRegister) error
}

// CashSessionRepository defines persistence for sessions.
// The data layer enforces at most one OPEN session per register.
type CashSessionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*CashSession, error)
	// FindByIDForUpdate takes an exclusive row lock, blocking concurrent entry writers
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*CashSession, error)
	// FindByIDForShare takes a shared row lock, blocking a concurrent close
	FindByIDForShare(ctx context.Context, id uuid.UUID) (*CashSession, error)
	// FindOpenByRegister returns NOT_FOUND when the register has no open session
	FindOpenByRegister(ctx context.Context, registerID uuid.UUID) (*CashSession, error)
	// FindOpenByBranch returns open sessions with principal registers first, oldest first
	FindOpenByBranch(ctx context.Context, branchID uuid.UUID) ([]CashSession, error)
	FindAll(ctx context.Context, filter SessionFilter) ([]CashSession, error)
	Count(ctx context.Context, filter SessionFilter) (int64, error)
	// Create inserts a new session; a lost open race surfaces as ALREADY_OPEN
	Create(ctx context.Context, session *CashSession) error
	SaveWithLock(ctx context.Context, session *CashSession) error
}

// LedgerEntryRepository is append-only: there is no update or delete
type LedgerEntryRepository interface {
	Append(ctx context.Context, entry *LedgerEntry) error
	FindByID(ctx context.Context, id uuid.UUID) (*LedgerEntry, error)
	// FindBySession returns every entry of the session in recording order
	FindBySession(ctx context.Context, sessionID uuid.UUID) ([]LedgerEntry, error)
	FindAll(ctx context.Context, filter LedgerEntryFilter) ([]LedgerEntry, error)
	Count(ctx context.Context, filter LedgerEntryFilter) (int64, error)
}

// CreditSaleRepository defines persistence for credit sales and their installments
type CreditSaleRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*CreditSale, error)
	FindBySaleID(ctx context.Context, saleID uuid.UUID) (*CreditSale, error)
	// FindByInstallmentIDForUpdate loads the owning sale with its row locked
	FindByInstallmentIDForUpdate(ctx context.Context, installmentID uuid.UUID) (*CreditSale, error)
	ExistsBySaleID(ctx context.Context, saleID uuid.UUID) (bool, error)
	// FindOverdueInstallments returns unpaid installments due before asOf's day
	FindOverdueInstallments(ctx context.Context, asOf time.Time, filter InstallmentFilter) ([]InstallmentPayment, error)
	CountOverdueInstallments(ctx context.Context, asOf time.Time, filter InstallmentFilter) (int64, error)
	Create(ctx context.Context, sale *CreditSale) error
	SaveWithLock(ctx context.Context, sale *CreditSale) error
}

// ExpenseRepository defines persistence for expenses
type ExpenseRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Expense, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Expense, error)
	FindAll(ctx context.Context, filter ExpenseFilter) ([]Expense, error)
	Count(ctx context.Context, filter ExpenseFilter) (int64, error)
	Save(ctx context.Context, expense *Expense) error
	SaveWithLock(ctx context.Context, expense *Expense) error
}

// CashTransferRepository defines persistence for transfers
type CashTransferRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*CashTransfer, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*CashTransfer, error)
	FindAll(ctx context.Context, filter TransferFilter) ([]CashTransfer, error)
	Count(ctx context.Context, filter TransferFilter) (int64, error)
	Save(ctx context.Context, transfer *CashTransfer) error
	SaveWithLock(ctx context.Context, transfer *CashTransfer) error
}
