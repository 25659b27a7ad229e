package cash

import (
	"fmt"
	"time"

	"github.com/ferreteria/backend/internal/domain/shared"
	"github.com/ferreteria/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InstallmentStatus is the live status of a cuota
type InstallmentStatus string

const (
	InstallmentStatusPending InstallmentStatus = "PENDING"
	InstallmentStatusPartial InstallmentStatus = "PARTIAL"
	InstallmentStatusPaid    InstallmentStatus = "PAID"
	InstallmentStatusOverdue InstallmentStatus = "OVERDUE"
)

// String returns the string representation of InstallmentStatus
func (s InstallmentStatus) String() string {
	return string(s)
}

// PaymentMode decides what happens when more is tendered than is owed
type PaymentMode string

const (
	// PaymentModeClamp applies up to the remaining amount and returns the rest as change
	PaymentModeClamp PaymentMode = "clamp"
	// PaymentModeStrict rejects any amount above the remaining amount
	PaymentModeStrict PaymentMode = "strict"
)

// IsValid checks if the payment mode is known
func (m PaymentMode) IsValid() bool {
	return m == PaymentModeClamp || m == PaymentModeStrict
}

// InstallmentPayment is one scheduled cuota of a credit sale
type InstallmentPayment struct {
	shared.BaseEntity
	CreditSaleID  uuid.UUID
	PaymentNumber int
	Amount        decimal.Decimal
	DueDate       time.Time
	PaidAmount    decimal.Decimal
	// Bookkeeping of the last payment transaction
	ReceivedAmount    decimal.Decimal
	ChangeAmount      decimal.Decimal
	LastPaymentMethod *PaymentMethod
	PaidDate          *time.Time
}

// RemainingAmount is the part of the cuota still owed
func (i *InstallmentPayment) RemainingAmount() decimal.Decimal {
	return i.Amount.Sub(i.PaidAmount)
}

// IsPaid returns true once nothing remains
func (i *InstallmentPayment) IsPaid() bool {
	return !i.RemainingAmount().IsPositive()
}

// SettlementStatus is the status derived from amounts only, ignoring the calendar.
// It is the only status ever stored.
func (i *InstallmentPayment) SettlementStatus() InstallmentStatus {
	switch {
	case i.IsPaid():
		return InstallmentStatusPaid
	case i.PaidAmount.IsPositive():
		return InstallmentStatusPartial
	default:
		return InstallmentStatusPending
	}
}

// StatusAt derives the status on the given day. An unpaid cuota whose due
// date is before asOf is overdue, even when partially paid.
func (i *InstallmentPayment) StatusAt(asOf time.Time) InstallmentStatus {
	if i.IsPaid() {
		return InstallmentStatusPaid
	}
	if i.IsOverdueAt(asOf) {
		return InstallmentStatusOverdue
	}
	return i.SettlementStatus()
}

// IsOverdueAt returns true when the due day is before asOf's day and something remains
func (i *InstallmentPayment) IsOverdueAt(asOf time.Time) bool {
	return !i.IsPaid() && DateOnly(i.DueDate).Before(DateOnly(asOf))
}

// DaysOverdueAt returns the number of whole days past the due date, 0 if not overdue
func (i *InstallmentPayment) DaysOverdueAt(asOf time.Time) int {
	if !i.IsOverdueAt(asOf) {
		return 0
	}
	return int(DateOnly(asOf).Sub(DateOnly(i.DueDate)).Hours() / 24)
}

// DateOnly truncates t to midnight UTC of its own calendar day
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// CreditSale is the credit-relevant part of a sale with its payment schedule
type CreditSale struct {
	shared.BranchAggregateRoot
	SaleID           uuid.UUID
	CustomerID       *uuid.UUID
	SaleDate         time.Time
	Total            decimal.Decimal
	InitialPayment   decimal.Decimal
	RemainingBalance decimal.Decimal
	InstallmentCount int
	CreditDays       int
	Installments     []InstallmentPayment
}

// ScheduleParams are the inputs to CreateSchedule
type ScheduleParams struct {
	BranchID         uuid.UUID
	SaleID           uuid.UUID
	CustomerID       *uuid.UUID
	SaleDate         time.Time
	Total            decimal.Decimal
	InitialPayment   decimal.Decimal
	InstallmentCount int
	CreditDays       int
	CreatedBy        uuid.UUID
}

// CreateSchedule builds a credit sale and its installments.
// The financed amount is split in equal cuotas with the last one absorbing
// the rounding remainder, so the cuotas always sum to total - initial exactly.
func CreateSchedule(p ScheduleParams) (*CreditSale, error) {
	if p.InstallmentCount <= 0 {
		return nil, NewInvalidScheduleError("installment count must be positive")
	}
	if p.InitialPayment.IsNegative() {
		return nil, NewInvalidScheduleError("initial payment cannot be negative")
	}
	if p.InitialPayment.GreaterThan(p.Total) {
		return nil, NewInvalidScheduleError("initial payment exceeds total")
	}
	if !p.Total.IsPositive() || hasSubCent(p.Total) || hasSubCent(p.InitialPayment) {
		return nil, NewInvalidScheduleError("total and initial payment must be positive cent amounts")
	}
	if p.CreditDays <= 0 {
		return nil, NewInvalidScheduleError("credit days must be positive")
	}
	if p.SaleID == uuid.Nil || p.BranchID == uuid.Nil {
		return nil, NewInvalidScheduleError("sale and branch are required")
	}
	financed := p.Total.Sub(p.InitialPayment)
	if !financed.IsPositive() {
		return nil, NewInvalidScheduleError("nothing left to finance")
	}
	// each cuota carries at least one cent
	if financed.Shift(2).LessThan(decimal.NewFromInt(int64(p.InstallmentCount))) {
		return nil, NewInvalidScheduleError(fmt.Sprintf(
			"financed amount %s is below one cent per installment", financed.StringFixed(2)))
	}

	shares, err := valueobject.NewMoneyPEN(financed).SplitLastAbsorbs(p.InstallmentCount)
	if err != nil {
		return nil, NewInvalidScheduleError(err.Error())
	}

	saleDate := p.SaleDate
	if saleDate.IsZero() {
		saleDate = time.Now()
	}

	sale := &CreditSale{
		BranchAggregateRoot: shared.NewBranchAggregateRootWithCreator(p.BranchID, p.CreatedBy),
		SaleID:              p.SaleID,
		CustomerID:          p.CustomerID,
		SaleDate:            saleDate,
		Total:               p.Total,
		InitialPayment:      p.InitialPayment,
		RemainingBalance:    financed,
		InstallmentCount:    p.InstallmentCount,
		CreditDays:          p.CreditDays,
		Installments:        make([]InstallmentPayment, 0, p.InstallmentCount),
	}
	for n := 1; n <= p.InstallmentCount; n++ {
		sale.Installments = append(sale.Installments, InstallmentPayment{
			BaseEntity:     shared.NewBaseEntity(),
			CreditSaleID:   sale.ID,
			PaymentNumber:  n,
			Amount:         shares[n-1].Amount(),
			DueDate:        DateOnly(saleDate).AddDate(0, 0, dueOffsetDays(n, p.CreditDays, p.InstallmentCount)),
			PaidAmount:     decimal.Zero,
			ReceivedAmount: decimal.Zero,
			ChangeAmount:   decimal.Zero,
		})
	}

	sale.AddDomainEvent(NewCreditScheduleCreatedEvent(sale))
	return sale, nil
}

// dueOffsetDays is round(n * creditDays / count), never less than n so that
// due dates are strictly after the sale date and strictly increasing.
func dueOffsetDays(n, creditDays, count int) int {
	offset := (2*n*creditDays + count) / (2 * count)
	if offset < n {
		return n
	}
	return offset
}

// Installment returns the installment with the given ID
func (c *CreditSale) Installment(id uuid.UUID) (*InstallmentPayment, bool) {
	for i := range c.Installments {
		if c.Installments[i].ID == id {
			return &c.Installments[i], true
		}
	}
	return nil, false
}

// PaidTotal sums every installment's paid amount
func (c *CreditSale) PaidTotal() decimal.Decimal {
	total := decimal.Zero
	for i := range c.Installments {
		total = total.Add(c.Installments[i].PaidAmount)
	}
	return total
}

// IsSettled returns true when nothing is owed
func (c *CreditSale) IsSettled() bool {
	return !c.RemainingBalance.IsPositive()
}

// CheckInvariants verifies the money conservation rules of the sale
func (c *CreditSale) CheckInvariants() error {
	if c.RemainingBalance.IsNegative() {
		return NewConsistencyViolationError(fmt.Sprintf("credit sale %s has negative remaining balance", c.ID))
	}
	if !c.InitialPayment.Add(c.PaidTotal()).Add(c.RemainingBalance).Equal(c.Total) {
		return NewConsistencyViolationError(fmt.Sprintf(
			"credit sale %s: initial %s + paid %s + remaining %s != total %s",
			c.ID, c.InitialPayment.StringFixed(2), c.PaidTotal().StringFixed(2),
			c.RemainingBalance.StringFixed(2), c.Total.StringFixed(2)))
	}
	for i := range c.Installments {
		inst := &c.Installments[i]
		if inst.PaidAmount.IsNegative() || inst.PaidAmount.GreaterThan(inst.Amount) {
			return NewConsistencyViolationError(fmt.Sprintf(
				"installment %d of credit sale %s paid %s of %s",
				inst.PaymentNumber, c.ID, inst.PaidAmount.StringFixed(2), inst.Amount.StringFixed(2)))
		}
	}
	return nil
}

// PaymentResult describes the outcome of ApplyPayment
type PaymentResult struct {
	Installment   InstallmentPayment
	Received      decimal.Decimal
	Applied       decimal.Decimal
	Change        decimal.Decimal
	PaymentMethod PaymentMethod
	FullyPaid     bool
	SaleSettled   bool
}

// ApplyPayment applies a tendered amount to one installment.
// In clamp mode only the remaining amount is applied and the excess is change;
// in strict mode an excess is rejected.
func (c *CreditSale) ApplyPayment(installmentID uuid.UUID, received decimal.Decimal, method PaymentMethod, mode PaymentMode) (*PaymentResult, error) {
	inst, ok := c.Installment(installmentID)
	if !ok {
		return nil, NewNotFoundError("Installment", installmentID)
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError(CodeInvalidPaymentMethod, "Unknown payment method: "+string(method))
	}
	if !received.IsPositive() || hasSubCent(received) {
		return nil, NewInvalidAmountError("amount received", received)
	}
	remaining := inst.RemainingAmount()
	if !remaining.IsPositive() {
		return nil, NewAlreadyPaidError(installmentID)
	}
	if mode == PaymentModeStrict && received.GreaterThan(remaining) {
		return nil, NewOverpaymentError(received, remaining)
	}

	applied := decimal.Min(received, remaining)
	change := received.Sub(applied)

	inst.PaidAmount = inst.PaidAmount.Add(applied)
	inst.ReceivedAmount = received
	inst.ChangeAmount = change
	m := method
	inst.LastPaymentMethod = &m
	inst.Touch()
	if inst.IsPaid() {
		now := time.Now()
		inst.PaidDate = &now
	}
	c.RemainingBalance = c.RemainingBalance.Sub(applied)

	if err := c.CheckInvariants(); err != nil {
		return nil, err
	}
	c.Touch()
	c.IncrementVersion()

	result := &PaymentResult{
		Installment:   *inst,
		Received:      received,
		Applied:       applied,
		Change:        change,
		PaymentMethod: method,
		FullyPaid:     inst.IsPaid(),
		SaleSettled:   c.IsSettled(),
	}
	c.AddDomainEvent(NewInstallmentPaymentAppliedEvent(c, result))
	if result.SaleSettled {
		c.AddDomainEvent(NewCreditSaleSettledEvent(c))
	}
	return result, nil
}
