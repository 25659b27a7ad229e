package cash

import (
	"fmt"
	"strings"
	"time"

	"github.com/ferreteria/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SessionStatus is the lifecycle state of a cash session
type SessionStatus string

const (
	SessionStatusOpen   SessionStatus = "OPEN"
	SessionStatusClosed SessionStatus = "CLOSED"
)

// IsValid checks if the status is known
func (s SessionStatus) IsValid() bool {
	return s == SessionStatusOpen || s == SessionStatusClosed
}

// IsTerminal returns true for closed sessions. There is no way back to open.
func (s SessionStatus) IsTerminal() bool {
	return s == SessionStatusClosed
}

// CanRecordEntries returns true if ledger entries may reference the session
func (s SessionStatus) CanRecordEntries() bool {
	return s == SessionStatusOpen
}

// String returns the string representation of SessionStatus
func (s SessionStatus) String() string {
	return string(s)
}

// DeviationLevel classifies the arqueo difference relative to the expected balance
type DeviationLevel string

const (
	DeviationNormal   DeviationLevel = "NORMAL"
	DeviationWarning  DeviationLevel = "WARNING"
	DeviationCritical DeviationLevel = "CRITICAL"
)

// String returns the string representation of DeviationLevel
func (l DeviationLevel) String() string {
	return string(l)
}

// DeviationThresholds are absolute percentages bounding each level
type DeviationThresholds struct {
	WarningPct  decimal.Decimal
	CriticalPct decimal.Decimal
}

// DefaultDeviationThresholds returns 1% and 5%
func DefaultDeviationThresholds() DeviationThresholds {
	return DeviationThresholds{
		WarningPct:  decimal.NewFromInt(1),
		CriticalPct: decimal.NewFromInt(5),
	}
}

// Classify maps a deviation percentage to a level
func (t DeviationThresholds) Classify(pct decimal.Decimal) DeviationLevel {
	abs := pct.Abs()
	switch {
	case abs.LessThanOrEqual(t.WarningPct):
		return DeviationNormal
	case abs.LessThanOrEqual(t.CriticalPct):
		return DeviationWarning
	default:
		return DeviationCritical
	}
}

// DeviationOf computes the percentage and level of a difference against an expected balance.
// With a zero expected balance any non-zero difference is critical.
func DeviationOf(difference, expected decimal.Decimal, thresholds DeviationThresholds) (decimal.Decimal, DeviationLevel) {
	if expected.IsZero() {
		if difference.IsZero() {
			return decimal.Zero, DeviationNormal
		}
		return decimal.Zero, DeviationCritical
	}
	pct := difference.Div(expected).Mul(decimal.NewFromInt(100)).Round(2)
	return pct, thresholds.Classify(pct)
}

// CashSession is one open-to-close usage period of a register by one user
type CashSession struct {
	shared.BranchAggregateRoot
	RegisterID     uuid.UUID
	UserID         uuid.UUID
	Status         SessionStatus
	OpenedAt       time.Time
	OpeningBalance decimal.Decimal
	OpeningNotes   string

	// Set at close
	ClosedAt        *time.Time
	ClosedBy        *uuid.UUID
	ExpectedBalance *decimal.Decimal
	ActualBalance   *decimal.Decimal
	Difference      *decimal.Decimal
	DeviationPct    *decimal.Decimal
	DeviationLevel  *DeviationLevel
	ClosingNotes    string
}

// OpenSession starts a new session on an active register
func OpenSession(register *CashRegister, userID uuid.UUID, openingBalance decimal.Decimal, notes string) (*CashSession, error) {
	if register == nil {
		return nil, shared.NewDomainError(CodeInvalidRegister, "Cash register is required")
	}
	if !register.IsActive() {
		return nil, shared.NewDomainError(CodeRegisterInactive, fmt.Sprintf("Cash register %s has been deleted", register.ID))
	}
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User is required to open a session")
	}
	if openingBalance.IsNegative() || hasSubCent(openingBalance) {
		return nil, NewInvalidAmountError("opening balance", openingBalance)
	}

	s := &CashSession{
		BranchAggregateRoot: shared.NewBranchAggregateRootWithCreator(register.BranchID, userID),
		RegisterID:          register.ID,
		UserID:              userID,
		Status:              SessionStatusOpen,
		OpeningBalance:      openingBalance,
		OpeningNotes:        strings.TrimSpace(notes),
	}
	s.OpenedAt = s.CreatedAt
	s.AddDomainEvent(NewCashSessionOpenedEvent(s))
	return s, nil
}

// IsOpen returns true while the session accepts entries
func (s *CashSession) IsOpen() bool {
	return s.Status == SessionStatusOpen
}

// EnsureOpen returns SESSION_CLOSED unless the session accepts entries
func (s *CashSession) EnsureOpen() error {
	if !s.Status.CanRecordEntries() {
		return NewSessionClosedError(s.ID)
	}
	return nil
}

// CloseParams are the inputs to Close
type CloseParams struct {
	ClosedBy      uuid.UUID
	ActualBalance decimal.Decimal
	Notes         string
	// Entries must be every ledger entry recorded against the session,
	// read while holding the session row lock.
	Entries    []LedgerEntry
	Thresholds DeviationThresholds
}

// Close performs the arqueo and moves the session to CLOSED.
// A non-zero difference never blocks the close; it is recorded as a fact.
func (s *CashSession) Close(p CloseParams) error {
	if s.Status.IsTerminal() {
		return NewAlreadyClosedError(s.ID)
	}
	if p.ActualBalance.IsNegative() || hasSubCent(p.ActualBalance) {
		return NewInvalidAmountError("actual balance", p.ActualBalance)
	}

	expected, err := ExpectedBalanceForSession(s, p.Entries)
	if err != nil {
		return err
	}
	difference := p.ActualBalance.Sub(expected)
	pct, level := DeviationOf(difference, expected, p.Thresholds)

	now := time.Now()
	actual := p.ActualBalance
	s.Status = SessionStatusClosed
	s.ClosedAt = &now
	if p.ClosedBy != uuid.Nil {
		closedBy := p.ClosedBy
		s.ClosedBy = &closedBy
	}
	s.ExpectedBalance = &expected
	s.ActualBalance = &actual
	s.Difference = &difference
	s.DeviationPct = &pct
	s.DeviationLevel = &level
	s.ClosingNotes = strings.TrimSpace(p.Notes)
	s.Touch()
	s.IncrementVersion()

	s.AddDomainEvent(NewCashSessionClosedEvent(s))
	if level != DeviationNormal {
		s.AddDomainEvent(NewCashSessionDiscrepancyEvent(s))
	}
	return nil
}

// IsShortage returns true when the closed session counted less than expected (faltante)
func (s *CashSession) IsShortage() bool {
	return s.Difference != nil && s.Difference.IsNegative()
}

// IsSurplus returns true when the closed session counted more than expected (sobrante)
func (s *CashSession) IsSurplus() bool {
	return s.Difference != nil && s.Difference.IsPositive()
}
