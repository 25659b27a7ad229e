package cash

import (
	"strings"

	"github.com/ferreteria/backend/internal/domain/shared"
	"github.com/ferreteria/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryType is the semantic kind of a ledger entry
type EntryType string

const (
	EntryTypeInflow           EntryType = "INFLOW"
	EntryTypeOutflow          EntryType = "OUTFLOW"
	EntryTypeSale             EntryType = "SALE"
	EntryTypeCreditPayment    EntryType = "CREDIT_PAYMENT"
	EntryTypePurchase         EntryType = "PURCHASE"
	EntryTypeExpense          EntryType = "EXPENSE"
	EntryTypeTransferIn       EntryType = "TRANSFER_IN"
	EntryTypeTransferOut      EntryType = "TRANSFER_OUT"
	EntryTypeManualAdjustment EntryType = "MANUAL_ADJUSTMENT"
)

// Direction is the effect an entry type has on a balance
type Direction int

const (
	// DirectionExplicit means the entry carries its own signed delta
	DirectionExplicit Direction = 0
	DirectionIn       Direction = 1
	DirectionOut      Direction = -1
)

// entryDirections is the only place where the sign of an entry type is decided.
var entryDirections = map[EntryType]Direction{
	EntryTypeInflow:           DirectionIn,
	EntryTypeSale:             DirectionIn,
	EntryTypeCreditPayment:    DirectionIn,
	EntryTypeTransferIn:       DirectionIn,
	EntryTypeOutflow:          DirectionOut,
	EntryTypePurchase:         DirectionOut,
	EntryTypeExpense:          DirectionOut,
	EntryTypeTransferOut:      DirectionOut,
	EntryTypeManualAdjustment: DirectionExplicit,
}

// DirectionOf returns the balance direction of an entry type.
// The second value is false for unknown types.
func DirectionOf(t EntryType) (Direction, bool) {
	d, ok := entryDirections[t]
	return d, ok
}

// AllEntryTypes lists every entry type in report order
func AllEntryTypes() []EntryType {
	return []EntryType{
		EntryTypeInflow, EntryTypeOutflow, EntryTypeSale, EntryTypeCreditPayment,
		EntryTypePurchase, EntryTypeExpense, EntryTypeTransferIn, EntryTypeTransferOut,
		EntryTypeManualAdjustment,
	}
}

// IsValid checks if the entry type is known
func (t EntryType) IsValid() bool {
	_, ok := entryDirections[t]
	return ok
}

// String returns the string representation of EntryType
func (t EntryType) String() string {
	return string(t)
}

// Reference links an entry to the business document that produced it.
// A credit payment entry carries both the credit sale and the installment.
type Reference struct {
	SaleID          *uuid.UUID
	CreditSaleID    *uuid.UUID
	InstallmentID   *uuid.UUID
	PurchaseOrderID *uuid.UUID
	ExpenseID       *uuid.UUID
	TransferID      *uuid.UUID
}

// LedgerEntry is an immutable record of money movement.
// Amount is always a positive magnitude. Manual adjustments also carry a
// signed Delta whose absolute value equals Amount.
type LedgerEntry struct {
	shared.BaseEntity
	BranchID      uuid.UUID
	RegisterID    uuid.UUID
	SessionID     *uuid.UUID // nil only for entries recorded without a session
	Type          EntryType
	Amount        decimal.Decimal
	Delta         decimal.Decimal
	PaymentMethod PaymentMethod
	Reference     Reference
	Description   string
	RecordedBy    *uuid.UUID
}

// NewLedgerEntryParams are the inputs to NewLedgerEntry
type NewLedgerEntryParams struct {
	BranchID      uuid.UUID
	RegisterID    uuid.UUID
	SessionID     *uuid.UUID
	Type          EntryType
	Amount        decimal.Decimal
	Delta         decimal.Decimal // manual adjustments only
	PaymentMethod PaymentMethod
	Reference     Reference
	Description   string
	RecordedBy    *uuid.UUID
}

// Validate checks the movement itself: type, method, description and amount.
// It does not look at where the entry is booked.
func (p NewLedgerEntryParams) Validate() error {
	dir, ok := DirectionOf(p.Type)
	if !ok {
		return shared.NewDomainError(CodeInvalidEntryType, "Unknown ledger entry type: "+string(p.Type))
	}
	if !p.PaymentMethod.IsValid() {
		return shared.NewDomainError(CodeInvalidPaymentMethod, "Unknown payment method: "+string(p.PaymentMethod))
	}
	if len(strings.TrimSpace(p.Description)) > 500 {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot exceed 500 characters")
	}
	if dir == DirectionExplicit {
		if p.Delta.IsZero() || hasSubCent(p.Delta) {
			return NewInvalidAmountError("adjustment delta", p.Delta)
		}
		return nil
	}
	if !p.Amount.IsPositive() || hasSubCent(p.Amount) {
		return NewInvalidAmountError("amount", p.Amount)
	}
	return nil
}

// NewLedgerEntry validates and builds a ledger entry. It never touches storage,
// so a validation failure leaves nothing behind.
func NewLedgerEntry(p NewLedgerEntryParams) (*LedgerEntry, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if p.RegisterID == uuid.Nil || p.BranchID == uuid.Nil {
		return nil, shared.NewDomainError(CodeInvalidRegister, "Ledger entry requires a register and a branch")
	}

	amount := p.Amount
	delta := decimal.Zero
	if p.Type == EntryTypeManualAdjustment {
		delta = p.Delta
		amount = p.Delta.Abs()
	}

	return &LedgerEntry{
		BaseEntity:    shared.NewBaseEntity(),
		BranchID:      p.BranchID,
		RegisterID:    p.RegisterID,
		SessionID:     p.SessionID,
		Type:          p.Type,
		Amount:        amount,
		Delta:         delta,
		PaymentMethod: p.PaymentMethod,
		Reference:     p.Reference,
		Description:   strings.TrimSpace(p.Description),
		RecordedBy:    p.RecordedBy,
	}, nil
}

// SignedAmount returns the entry's net effect on a balance
func (e *LedgerEntry) SignedAmount() decimal.Decimal {
	dir, _ := DirectionOf(e.Type)
	if dir == DirectionExplicit {
		return e.Delta
	}
	return e.Amount.Mul(decimal.NewFromInt(int64(dir)))
}

// IsCash reports whether the entry moved physical cash
func (e *LedgerEntry) IsCash() bool {
	return e.PaymentMethod.IsCash()
}

// IsInflow reports whether the entry increases the balance
func (e *LedgerEntry) IsInflow() bool {
	return e.SignedAmount().IsPositive()
}

// IsSessioned reports whether the entry belongs to a session
func (e *LedgerEntry) IsSessioned() bool {
	return e.SessionID != nil
}

// BelongsTo reports whether the entry was recorded against the given session
func (e *LedgerEntry) BelongsTo(sessionID uuid.UUID) bool {
	return e.SessionID != nil && *e.SessionID == sessionID
}

func hasSubCent(d decimal.Decimal) bool {
	return !d.Equal(d.Round(valueobject.CentPlaces))
}

// LedgerPolicy decides what happens to a business event when no session is open
type LedgerPolicy string

const (
	// LedgerPolicyReject refuses the operation
	LedgerPolicyReject LedgerPolicy = "reject"
	// LedgerPolicyAllowNoSession records the entry with no session for later reconciliation
	LedgerPolicyAllowNoSession LedgerPolicy = "allow_no_session"
)

// IsValid checks if the policy is known
func (p LedgerPolicy) IsValid() bool {
	return p == LedgerPolicyReject || p == LedgerPolicyAllowNoSession
}
