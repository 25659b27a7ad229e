package cash

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpectedBalance returns opening plus the signed sum of the cash entries.
// Card, transfer, wallet and other entries never affect the drawer.
func ExpectedBalance(opening decimal.Decimal, entries []LedgerEntry) decimal.Decimal {
	balance := opening
	for i := range entries {
		if entries[i].IsCash() {
			balance = balance.Add(entries[i].SignedAmount())
		}
	}
	return balance
}

// ExpectedBalanceForSession computes the expected balance after checking
// that every entry was recorded against the session.
func ExpectedBalanceForSession(s *CashSession, entries []LedgerEntry) (decimal.Decimal, error) {
	if err := checkMembership(s.ID, entries); err != nil {
		return decimal.Zero, err
	}
	return ExpectedBalance(s.OpeningBalance, entries), nil
}

func checkMembership(sessionID uuid.UUID, entries []LedgerEntry) error {
	for i := range entries {
		if !entries[i].BelongsTo(sessionID) {
			return NewConsistencyViolationError(
				fmt.Sprintf("entry %s does not belong to session %s", entries[i].ID, sessionID))
		}
	}
	return nil
}

// MethodTotals are the per-payment-method figures of an arqueo
type MethodTotals struct {
	Method       PaymentMethod
	InflowTotal  decimal.Decimal
	OutflowTotal decimal.Decimal
	Net          decimal.Decimal
	EntryCount   int
}

// GroupByPaymentMethod totals inflows and outflows per method.
// Every valid method is present in the result, with zeros when unused.
func GroupByPaymentMethod(entries []LedgerEntry) map[PaymentMethod]MethodTotals {
	groups := make(map[PaymentMethod]MethodTotals, len(AllPaymentMethods()))
	for _, m := range AllPaymentMethods() {
		groups[m] = MethodTotals{
			Method:       m,
			InflowTotal:  decimal.Zero,
			OutflowTotal: decimal.Zero,
			Net:          decimal.Zero,
		}
	}
	for i := range entries {
		e := &entries[i]
		g := groups[e.PaymentMethod]
		g.Method = e.PaymentMethod
		signed := e.SignedAmount()
		if signed.IsPositive() {
			g.InflowTotal = g.InflowTotal.Add(signed)
		} else {
			g.OutflowTotal = g.OutflowTotal.Add(signed.Abs())
		}
		g.Net = g.InflowTotal.Sub(g.OutflowTotal)
		g.EntryCount++
		groups[e.PaymentMethod] = g
	}
	return groups
}

// TypeTotals is the absolute total and count of one entry type
type TypeTotals struct {
	Type       EntryType
	Total      decimal.Decimal
	CashTotal  decimal.Decimal
	EntryCount int
}

// TotalsByType sums entry magnitudes per entry type
func TotalsByType(entries []LedgerEntry) map[EntryType]TypeTotals {
	totals := make(map[EntryType]TypeTotals)
	for i := range entries {
		e := &entries[i]
		t, ok := totals[e.Type]
		if !ok {
			t = TypeTotals{Type: e.Type, Total: decimal.Zero, CashTotal: decimal.Zero}
		}
		t.Total = t.Total.Add(e.Amount)
		if e.IsCash() {
			t.CashTotal = t.CashTotal.Add(e.Amount)
		}
		t.EntryCount++
		totals[e.Type] = t
	}
	return totals
}

// Reconciliation is the arqueo view of a session
type Reconciliation struct {
	SessionID       uuid.UUID
	Status          SessionStatus
	OpeningBalance  decimal.Decimal
	CashInflows     decimal.Decimal
	CashOutflows    decimal.Decimal
	ExpectedBalance decimal.Decimal
	ActualBalance   *decimal.Decimal
	Difference      *decimal.Decimal
	DeviationPct    *decimal.Decimal
	DeviationLevel  *DeviationLevel
	ByMethod        map[PaymentMethod]MethodTotals
	ByType          map[EntryType]TypeTotals
	EntryCount      int
}

// Reconcile builds the arqueo view. For an open session ExpectedBalance is the
// running figure; for a closed one it is recomputed from the ledger.
func Reconcile(s *CashSession, entries []LedgerEntry) (*Reconciliation, error) {
	expected, err := ExpectedBalanceForSession(s, entries)
	if err != nil {
		return nil, err
	}
	inflows, outflows := decimal.Zero, decimal.Zero
	for i := range entries {
		if !entries[i].IsCash() {
			continue
		}
		signed := entries[i].SignedAmount()
		if signed.IsPositive() {
			inflows = inflows.Add(signed)
		} else {
			outflows = outflows.Add(signed.Abs())
		}
	}
	return &Reconciliation{
		SessionID:       s.ID,
		Status:          s.Status,
		OpeningBalance:  s.OpeningBalance,
		CashInflows:     inflows,
		CashOutflows:    outflows,
		ExpectedBalance: expected,
		ActualBalance:   s.ActualBalance,
		Difference:      s.Difference,
		DeviationPct:    s.DeviationPct,
		DeviationLevel:  s.DeviationLevel,
		ByMethod:        GroupByPaymentMethod(entries),
		ByType:          TotalsByType(entries),
		EntryCount:      len(entries),
	}, nil
}

// VerifyClosedSession recomputes a closed session's expected balance and
// compares it with the stored figures. Any mismatch is a consistency violation.
func VerifyClosedSession(s *CashSession, entries []LedgerEntry) error {
	if s.IsOpen() {
		return nil
	}
	if s.ExpectedBalance == nil || s.ActualBalance == nil || s.Difference == nil {
		return NewConsistencyViolationError(fmt.Sprintf("closed session %s has no arqueo figures", s.ID))
	}
	expected, err := ExpectedBalanceForSession(s, entries)
	if err != nil {
		return err
	}
	if !expected.Equal(*s.ExpectedBalance) {
		return NewConsistencyViolationError(fmt.Sprintf(
			"session %s ledger sums to %s but stored expected balance is %s",
			s.ID, expected.StringFixed(2), s.ExpectedBalance.StringFixed(2)))
	}
	if !s.ActualBalance.Sub(*s.ExpectedBalance).Equal(*s.Difference) {
		return NewConsistencyViolationError(fmt.Sprintf(
			"session %s difference %s does not match actual minus expected", s.ID, s.Difference.StringFixed(2)))
	}
	return nil
}
