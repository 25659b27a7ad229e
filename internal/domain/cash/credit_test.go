package cash_test

import (
	"testing"
	"time"

	"github.com/ferreteria/backend/internal/domain/cash"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var saleDay = time.Date(2026, 3, 1, 15, 30, 0, 0, time.UTC)

func schedule(t *testing.T, total, initial string, count, days int) *cash.CreditSale {
	t.Helper()
	sale, err := cash.CreateSchedule(cash.ScheduleParams{
		BranchID:         uuid.New(),
		SaleID:           uuid.New(),
		SaleDate:         saleDay,
		Total:            dec(total),
		InitialPayment:   dec(initial),
		InstallmentCount: count,
		CreditDays:       days,
	})
	require.NoError(t, err)
	return sale
}

func amounts(sale *cash.CreditSale) []string {
	out := make([]string, len(sale.Installments))
	for i, inst := range sale.Installments {
		out[i] = inst.Amount.StringFixed(2)
	}
	return out
}

func TestCreateSchedule(t *testing.T) {
	t.Run("even split with initial payment", func(t *testing.T) {
		sale := schedule(t, "100.00", "10.00", 3, 90)
		assert.Equal(t, []string{"30.00", "30.00", "30.00"}, amounts(sale))
		assert.True(t, sale.RemainingBalance.Equal(dec("90")))
		require.NoError(t, sale.CheckInvariants())
	})

	t.Run("last cuota absorbs the remainder", func(t *testing.T) {
		sale := schedule(t, "100.00", "0", 3, 90)
		assert.Equal(t, []string{"33.33", "33.33", "33.34"}, amounts(sale))
	})

	t.Run("three cuotas over ninety days", func(t *testing.T) {
		sale := schedule(t, "300", "0", 3, 90)
		assert.Equal(t, []string{"100.00", "100.00", "100.00"}, amounts(sale))
		start := cash.DateOnly(saleDay)
		for i, inst := range sale.Installments {
			assert.Equal(t, i+1, inst.PaymentNumber)
			assert.Equal(t, start.AddDate(0, 0, 30*(i+1)), inst.DueDate)
			assert.Equal(t, cash.InstallmentStatusPending, inst.StatusAt(saleDay))
			assert.True(t, inst.PaidAmount.IsZero())
		}
	})

	t.Run("due dates round to whole days and stay after the sale", func(t *testing.T) {
		sale := schedule(t, "70", "0", 4, 10)
		start := cash.DateOnly(saleDay)
		want := []int{3, 5, 8, 10}
		for i, inst := range sale.Installments {
			assert.Equal(t, start.AddDate(0, 0, want[i]), inst.DueDate, "cuota %d", i+1)
		}

		dense := schedule(t, "30", "0", 3, 1)
		for i, inst := range dense.Installments {
			assert.True(t, inst.DueDate.After(start))
			if i > 0 {
				assert.True(t, inst.DueDate.After(dense.Installments[i-1].DueDate))
			}
		}
	})

	t.Run("sum invariant holds for awkward totals", func(t *testing.T) {
		cases := []struct {
			total, initial string
			count          int
		}{
			{"100.00", "0", 7},
			{"1234.57", "200.01", 6},
			{"0.05", "0", 3},
			{"999.99", "0.99", 12},
			{"0.03", "0", 3},
		}
		for _, c := range cases {
			sale := schedule(t, c.total, c.initial, c.count, 30)
			sum := decimal.Zero
			for _, inst := range sale.Installments {
				assert.True(t, inst.Amount.IsPositive(), "cuota %d of %s", inst.PaymentNumber, c.total)
				sum = sum.Add(inst.Amount)
			}
			assert.True(t, sum.Equal(dec(c.total).Sub(dec(c.initial))), "total %s initial %s count %d", c.total, c.initial, c.count)
		}
	})

	invalid := []struct {
		name   string
		params cash.ScheduleParams
	}{
		{"zero installments", cash.ScheduleParams{Total: dec("100"), InstallmentCount: 0, CreditDays: 30}},
		{"negative installments", cash.ScheduleParams{Total: dec("100"), InstallmentCount: -1, CreditDays: 30}},
		{"initial above total", cash.ScheduleParams{Total: dec("100"), InitialPayment: dec("100.01"), InstallmentCount: 2, CreditDays: 30}},
		{"negative initial", cash.ScheduleParams{Total: dec("100"), InitialPayment: dec("-1"), InstallmentCount: 2, CreditDays: 30}},
		{"nothing financed", cash.ScheduleParams{Total: dec("100"), InitialPayment: dec("100"), InstallmentCount: 2, CreditDays: 30}},
		{"cuotas below one cent", cash.ScheduleParams{Total: dec("0.02"), InstallmentCount: 3, CreditDays: 30}},
		{"financed remainder below one cent each", cash.ScheduleParams{Total: dec("10.00"), InitialPayment: dec("9.99"), InstallmentCount: 2, CreditDays: 30}},
		{"no credit days", cash.ScheduleParams{Total: dec("100"), InstallmentCount: 2, CreditDays: 0}},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.params
			p.BranchID = uuid.New()
			p.SaleID = uuid.New()
			_, err := cash.CreateSchedule(p)
			assert.True(t, cash.IsErrorCode(err, cash.CodeInvalidSchedule), "got %v", err)
		})
	}
}

func TestApplyPayment(t *testing.T) {
	t.Run("overpayment in clamp mode returns change", func(t *testing.T) {
		sale := schedule(t, "300", "0", 3, 90)
		inst := sale.Installments[0]
		sale.ClearDomainEvents()

		res, err := sale.ApplyPayment(inst.ID, dec("150"), cash.PaymentMethodCash, cash.PaymentModeClamp)
		require.NoError(t, err)

		assert.True(t, res.Applied.Equal(dec("100")))
		assert.True(t, res.Change.Equal(dec("50")))
		assert.True(t, res.FullyPaid)
		assert.False(t, res.SaleSettled)
		assert.True(t, res.Installment.PaidAmount.Equal(dec("100")))
		assert.True(t, res.Installment.RemainingAmount().IsZero())
		assert.True(t, res.Installment.ChangeAmount.Equal(dec("50")))
		assert.True(t, res.Installment.ReceivedAmount.Equal(dec("150")))
		assert.NotNil(t, res.Installment.PaidDate)
		assert.Equal(t, cash.InstallmentStatusPaid, res.Installment.StatusAt(time.Now()))
		assert.True(t, sale.RemainingBalance.Equal(dec("200")))
		require.NoError(t, sale.CheckInvariants())
		require.Len(t, sale.GetDomainEvents(), 1)
	})

	t.Run("partial payments accumulate", func(t *testing.T) {
		sale := schedule(t, "300", "0", 3, 90)
		id := sale.Installments[1].ID

		res, err := sale.ApplyPayment(id, dec("40"), cash.PaymentMethodCard, cash.PaymentModeClamp)
		require.NoError(t, err)
		assert.Equal(t, cash.InstallmentStatusPartial, res.Installment.SettlementStatus())
		assert.Nil(t, res.Installment.PaidDate)
		assert.True(t, res.Change.IsZero())

		res, err = sale.ApplyPayment(id, dec("60"), cash.PaymentMethodCash, cash.PaymentModeClamp)
		require.NoError(t, err)
		assert.True(t, res.FullyPaid)
		inst, _ := sale.Installment(id)
		assert.True(t, inst.PaidAmount.Add(inst.RemainingAmount()).Equal(inst.Amount))
		require.NoError(t, sale.CheckInvariants())
	})

	t.Run("already paid", func(t *testing.T) {
		sale := schedule(t, "100", "0", 1, 30)
		id := sale.Installments[0].ID
		_, err := sale.ApplyPayment(id, dec("100"), cash.PaymentMethodCash, cash.PaymentModeClamp)
		require.NoError(t, err)

		_, err = sale.ApplyPayment(id, dec("1"), cash.PaymentMethodCash, cash.PaymentModeClamp)
		assert.True(t, cash.IsErrorCode(err, cash.CodeAlreadyPaid))
		assert.True(t, sale.IsSettled())
	})

	t.Run("strict mode rejects overpayment", func(t *testing.T) {
		sale := schedule(t, "300", "0", 3, 90)
		id := sale.Installments[0].ID
		_, err := sale.ApplyPayment(id, dec("100.01"), cash.PaymentMethodCash, cash.PaymentModeStrict)
		assert.True(t, cash.IsErrorCode(err, cash.CodeOverpayment))
		inst, _ := sale.Installment(id)
		assert.True(t, inst.PaidAmount.IsZero())
		assert.True(t, sale.RemainingBalance.Equal(dec("300")))

		_, err = sale.ApplyPayment(id, dec("100"), cash.PaymentMethodCash, cash.PaymentModeStrict)
		assert.NoError(t, err)
	})

	t.Run("invalid inputs", func(t *testing.T) {
		sale := schedule(t, "300", "0", 3, 90)
		id := sale.Installments[0].ID

		_, err := sale.ApplyPayment(id, decimal.Zero, cash.PaymentMethodCash, cash.PaymentModeClamp)
		assert.True(t, cash.IsErrorCode(err, cash.CodeInvalidAmount))
		_, err = sale.ApplyPayment(id, dec("10"), "BARTER", cash.PaymentModeClamp)
		assert.True(t, cash.IsErrorCode(err, cash.CodeInvalidPaymentMethod))
		_, err = sale.ApplyPayment(uuid.New(), dec("10"), cash.PaymentMethodCash, cash.PaymentModeClamp)
		assert.True(t, cash.IsErrorCode(err, cash.CodeNotFound))
	})

	t.Run("paying every cuota settles the sale", func(t *testing.T) {
		sale := schedule(t, "100", "10", 3, 90)
		for _, inst := range sale.Installments {
			_, err := sale.ApplyPayment(inst.ID, inst.Amount, cash.PaymentMethodTransfer, cash.PaymentModeClamp)
			require.NoError(t, err)
		}
		assert.True(t, sale.IsSettled())
		assert.True(t, sale.PaidTotal().Equal(dec("90")))
		last := sale.GetDomainEvents()[len(sale.GetDomainEvents())-1]
		assert.Equal(t, cash.EventTypeCreditSaleSettled, last.EventType())
	})
}

func TestInstallmentStatusAt(t *testing.T) {
	due := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	inst := cash.InstallmentPayment{Amount: dec("100"), PaidAmount: decimal.Zero, DueDate: due}

	assert.Equal(t, cash.InstallmentStatusPending, inst.StatusAt(due), "due today is not overdue")
	assert.Equal(t, cash.InstallmentStatusPending, inst.StatusAt(due.Add(23*time.Hour)))
	assert.Equal(t, cash.InstallmentStatusOverdue, inst.StatusAt(due.AddDate(0, 0, 1)))
	assert.Equal(t, 3, inst.DaysOverdueAt(due.AddDate(0, 0, 3)))

	inst.PaidAmount = dec("40")
	assert.Equal(t, cash.InstallmentStatusPartial, inst.StatusAt(due))
	assert.Equal(t, cash.InstallmentStatusOverdue, inst.StatusAt(due.AddDate(0, 0, 1)))

	inst.PaidAmount = dec("100")
	assert.Equal(t, cash.InstallmentStatusPaid, inst.StatusAt(due.AddDate(1, 0, 0)))
	assert.Equal(t, 0, inst.DaysOverdueAt(due.AddDate(1, 0, 0)))
}
