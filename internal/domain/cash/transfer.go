package cash

import (
	"fmt"
	"strings"
	"time"

	"github.com/ferreteria/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransferStatus represents the state of a cash transfer
type TransferStatus string

const (
	TransferStatusPending   TransferStatus = "PENDING"
	TransferStatusCompleted TransferStatus = "COMPLETED"
	TransferStatusCancelled TransferStatus = "CANCELLED"
)

// IsValid checks if the status is known
func (s TransferStatus) IsValid() bool {
	switch s {
	case TransferStatusPending, TransferStatusCompleted, TransferStatusCancelled:
		return true
	}
	return false
}

// IsTerminal returns true once completed or cancelled
func (s TransferStatus) IsTerminal() bool {
	return s == TransferStatusCompleted || s == TransferStatusCancelled
}

// String returns the string representation of TransferStatus
func (s TransferStatus) String() string {
	return string(s)
}

// CashTransfer moves physical cash between two registers, possibly across branches.
// The embedded BranchID is the source branch.
type CashTransfer struct {
	shared.BranchAggregateRoot
	SourceRegisterID      uuid.UUID
	DestinationRegisterID uuid.UUID
	DestinationBranchID   uuid.UUID
	Amount                decimal.Decimal
	Status                TransferStatus
	RequestedBy           uuid.UUID
	Notes                 string

	SourceSessionID      *uuid.UUID
	DestinationSessionID *uuid.UUID
	OutEntryID           *uuid.UUID
	InEntryID            *uuid.UUID
	CompletedAt          *time.Time
	CompletedBy          *uuid.UUID
	CancelledAt          *time.Time
	CancelReason         string
}

// NewCashTransfer creates a pending transfer between two active registers
func NewCashTransfer(source, destination *CashRegister, amount decimal.Decimal, requestedBy uuid.UUID, notes string) (*CashTransfer, error) {
	if source == nil || destination == nil {
		return nil, shared.NewDomainError(CodeInvalidTransfer, "Source and destination registers are required")
	}
	if source.ID == destination.ID {
		return nil, shared.NewDomainError(CodeInvalidTransfer, "Source and destination registers must differ")
	}
	if !source.IsActive() || !destination.IsActive() {
		return nil, shared.NewDomainError(CodeRegisterInactive, "Both registers must be active")
	}
	if !amount.IsPositive() || hasSubCent(amount) {
		return nil, NewInvalidAmountError("transfer amount", amount)
	}

	t := &CashTransfer{
		BranchAggregateRoot:   shared.NewBranchAggregateRootWithCreator(source.BranchID, requestedBy),
		SourceRegisterID:      source.ID,
		DestinationRegisterID: destination.ID,
		DestinationBranchID:   destination.BranchID,
		Amount:                amount,
		Status:                TransferStatusPending,
		RequestedBy:           requestedBy,
		Notes:                 strings.TrimSpace(notes),
	}
	t.AddDomainEvent(NewCashTransferRequestedEvent(t))
	return t, nil
}

// IsCrossBranch returns true when the registers belong to different branches
func (t *CashTransfer) IsCrossBranch() bool {
	return t.BranchID != t.DestinationBranchID
}

// Complete builds the transfer-out and transfer-in entries against the open
// sessions of both registers. The caller persists both entries and the
// transfer in one transaction.
func (t *CashTransfer) Complete(source, destination *CashSession, completedBy uuid.UUID) (out *LedgerEntry, in *LedgerEntry, err error) {
	if t.Status != TransferStatusPending {
		return nil, nil, NewNotPendingError("Cash transfer", t.ID, string(t.Status))
	}
	if source == nil {
		return nil, nil, NewNoOpenSessionError("register", t.SourceRegisterID)
	}
	if destination == nil {
		return nil, nil, NewNoOpenSessionError("register", t.DestinationRegisterID)
	}
	if source.RegisterID != t.SourceRegisterID || destination.RegisterID != t.DestinationRegisterID {
		return nil, nil, shared.NewDomainError(CodeInvalidTransfer, "Sessions do not match the transfer registers")
	}
	if err := source.EnsureOpen(); err != nil {
		return nil, nil, err
	}
	if err := destination.EnsureOpen(); err != nil {
		return nil, nil, err
	}

	transferID := t.ID
	sourceSessionID, destinationSessionID := source.ID, destination.ID
	var recordedBy *uuid.UUID
	if completedBy != uuid.Nil {
		recordedBy = &completedBy
	}
	out, err = NewLedgerEntry(NewLedgerEntryParams{
		BranchID:      source.BranchID,
		RegisterID:    source.RegisterID,
		SessionID:     &sourceSessionID,
		Type:          EntryTypeTransferOut,
		Amount:        t.Amount,
		PaymentMethod: PaymentMethodCash,
		Reference:     Reference{TransferID: &transferID},
		Description:   fmt.Sprintf("Transfer to register %s", t.DestinationRegisterID),
		RecordedBy:    recordedBy,
	})
	if err != nil {
		return nil, nil, err
	}
	in, err = NewLedgerEntry(NewLedgerEntryParams{
		BranchID:      destination.BranchID,
		RegisterID:    destination.RegisterID,
		SessionID:     &destinationSessionID,
		Type:          EntryTypeTransferIn,
		Amount:        t.Amount,
		PaymentMethod: PaymentMethodCash,
		Reference:     Reference{TransferID: &transferID},
		Description:   fmt.Sprintf("Transfer from register %s", t.SourceRegisterID),
		RecordedBy:    recordedBy,
	})
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	t.Status = TransferStatusCompleted
	outID, inID := out.ID, in.ID
	t.SourceSessionID = &sourceSessionID
	t.DestinationSessionID = &destinationSessionID
	t.OutEntryID = &outID
	t.InEntryID = &inID
	t.CompletedAt = &now
	t.CompletedBy = recordedBy
	t.Touch()
	t.IncrementVersion()
	t.AddDomainEvent(NewCashTransferCompletedEvent(t))
	return out, in, nil
}

// Cancel abandons a pending transfer. A reason is mandatory.
func (t *CashTransfer) Cancel(reason string) error {
	if t.Status != TransferStatusPending {
		return NewNotPendingError("Cash transfer", t.ID, string(t.Status))
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return shared.NewDomainError(CodeInvalidReason, "Cancel reason is required")
	}
	now := time.Now()
	t.Status = TransferStatusCancelled
	t.CancelledAt = &now
	t.CancelReason = reason
	t.Touch()
	t.IncrementVersion()
	t.AddDomainEvent(NewCashTransferCancelledEvent(t))
	return nil
}
