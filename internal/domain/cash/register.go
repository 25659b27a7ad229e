package cash

import (
	"strings"
	"time"

	"github.com/ferreteria/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RegisterType distinguishes the branch's main drawer from auxiliary ones
type RegisterType string

const (
	RegisterTypePrincipal RegisterType = "PRINCIPAL"
	RegisterTypeSecondary RegisterType = "SECONDARY"
)

// IsValid checks if the register type is known
func (t RegisterType) IsValid() bool {
	return t == RegisterTypePrincipal || t == RegisterTypeSecondary
}

// String returns the string representation of RegisterType
func (t RegisterType) String() string {
	return string(t)
}

// CashRegister is a named physical drawer belonging to one branch
type CashRegister struct {
	shared.BranchAggregateRoot
	Name                    string
	Type                    RegisterType
	SuggestedOpeningBalance decimal.Decimal
	Description             string
	DeletedAt               *time.Time
}

// NewCashRegister creates an active register
func NewCashRegister(branchID uuid.UUID, name string, registerType RegisterType, suggestedOpening decimal.Decimal) (*CashRegister, error) {
	if branchID == uuid.Nil {
		return nil, shared.NewDomainError(CodeInvalidRegister, "Branch is required")
	}
	r := &CashRegister{
		BranchAggregateRoot: shared.NewBranchAggregateRoot(branchID),
	}
	if err := r.apply(name, registerType, suggestedOpening); err != nil {
		return nil, err
	}
	r.AddDomainEvent(NewCashRegisterCreatedEvent(r))
	return r, nil
}

// Update changes the register's descriptive fields
func (r *CashRegister) Update(name string, registerType RegisterType, suggestedOpening decimal.Decimal, description string) error {
	if !r.IsActive() {
		return shared.NewDomainError(CodeRegisterInactive, "Cash register has been deleted")
	}
	if err := r.apply(name, registerType, suggestedOpening); err != nil {
		return err
	}
	r.Description = strings.TrimSpace(description)
	r.Touch()
	r.IncrementVersion()
	return nil
}

func (r *CashRegister) apply(name string, registerType RegisterType, suggestedOpening decimal.Decimal) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError(CodeInvalidRegister, "Register name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewDomainError(CodeInvalidRegister, "Register name cannot exceed 100 characters")
	}
	if !registerType.IsValid() {
		return shared.NewDomainError(CodeInvalidRegister, "Register type is not valid")
	}
	if suggestedOpening.IsNegative() || hasSubCent(suggestedOpening) {
		return NewInvalidAmountError("suggested opening balance", suggestedOpening)
	}
	r.Name = name
	r.Type = registerType
	r.SuggestedOpeningBalance = suggestedOpening
	return nil
}

// Deactivate soft-deletes the register. Sessions keep referencing it.
// The caller must check that no session is open first.
func (r *CashRegister) Deactivate() error {
	if !r.IsActive() {
		return shared.NewDomainError(CodeRegisterInactive, "Cash register is already deleted")
	}
	now := time.Now()
	r.DeletedAt = &now
	r.Touch()
	r.IncrementVersion()
	r.AddDomainEvent(NewCashRegisterDeactivatedEvent(r))
	return nil
}

// IsActive returns true if the register has not been soft-deleted
func (r *CashRegister) IsActive() bool {
	return r.DeletedAt == nil
}

// IsPrincipal returns true for the branch's main drawer
func (r *CashRegister) IsPrincipal() bool {
	return r.Type == RegisterTypePrincipal
}
