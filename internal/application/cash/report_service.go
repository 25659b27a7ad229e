package cash

import (
	"context"
	"sort"
	"time"

	"github.com/ferreteria/backend/internal/domain/cash"
	"github.com/ferreteria/backend/internal/domain/shared"
	"github.com/ferreteria/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// ReportService derives balances and summaries from the ledger. It never writes.
type ReportService struct {
	eventPublishing
	sessionRepo cash.CashSessionRepository
	ledgerRepo  cash.LedgerEntryRepository
	formatter   AmountFormatter
	logger      *zap.Logger
}

// NewReportService creates a new ReportService
func NewReportService(sessionRepo cash.CashSessionRepository, ledgerRepo cash.LedgerEntryRepository, opts Options, logger *zap.Logger) *ReportService {
	opts = opts.normalized()
	return &ReportService{
		eventPublishing: eventPublishing{logger: loggerOrNop(logger)},
		sessionRepo:     sessionRepo,
		ledgerRepo:      ledgerRepo,
		formatter:       NewAmountFormatter(opts.Locale, opts.Currency),
		logger:          loggerOrNop(logger),
	}
}

// ComputeExpectedBalance returns opening balance plus the signed cash entries of the session
func (s *ReportService) ComputeExpectedBalance(ctx context.Context, branchID, sessionID uuid.UUID) (*ExpectedBalanceResponse, error) {
	session, entries, err := s.load(ctx, branchID, sessionID)
	if err != nil {
		return nil, err
	}
	expected, err := cash.ExpectedBalanceForSession(session, entries)
	if err != nil {
		return nil, err
	}
	return &ExpectedBalanceResponse{
		SessionID:       session.ID,
		Status:          string(session.Status),
		OpeningBalance:  session.OpeningBalance,
		ExpectedBalance: expected,
		EntryCount:      len(entries),
	}, nil
}

// GroupByPaymentMethod returns inflow, outflow and net per payment method, every method listed
func (s *ReportService) GroupByPaymentMethod(ctx context.Context, branchID, sessionID uuid.UUID) ([]MethodTotalsResponse, error) {
	_, entries, err := s.load(ctx, branchID, sessionID)
	if err != nil {
		return nil, err
	}
	return methodTotals(cash.GroupByPaymentMethod(entries)), nil
}

// GetSessionReport returns the full arqueo report of a session
func (s *ReportService) GetSessionReport(ctx context.Context, branchID, sessionID uuid.UUID) (*SessionReportResponse, error) {
	session, entries, err := s.load(ctx, branchID, sessionID)
	if err != nil {
		return nil, err
	}
	rec, err := cash.Reconcile(session, entries)
	if err != nil {
		return nil, err
	}

	report := &SessionReportResponse{
		Session:         toSessionResponse(session),
		CashInflows:     rec.CashInflows,
		CashOutflows:    rec.CashOutflows,
		ExpectedBalance: rec.ExpectedBalance,
		ActualBalance:   rec.ActualBalance,
		Difference:      rec.Difference,
		DeviationPct:    rec.DeviationPct,
		ByMethod:        methodTotals(rec.ByMethod),
		ByType:          typeTotals(rec.ByType),
		EntryCount:      rec.EntryCount,
	}
	if rec.DeviationLevel != nil {
		report.DeviationLevel = string(*rec.DeviationLevel)
	}
	report.Consistent = true
	if verr := cash.VerifyClosedSession(session, entries); verr != nil {
		report.Consistent = false
		report.IntegrityDetail = verr.Error()
		s.logger.Error("cash session integrity violation",
			zap.String("session_id", session.ID.String()),
			zap.Error(verr),
		)
	}

	report.Formatted = map[string]string{
		"opening_balance":  s.formatter.Format(session.OpeningBalance),
		"cash_inflows":     s.formatter.Format(rec.CashInflows),
		"cash_outflows":    s.formatter.Format(rec.CashOutflows),
		"expected_balance": s.formatter.Format(rec.ExpectedBalance),
	}
	if rec.ActualBalance != nil {
		report.Formatted["actual_balance"] = s.formatter.Format(*rec.ActualBalance)
	}
	if rec.Difference != nil {
		report.Formatted["difference"] = s.formatter.Format(*rec.Difference)
	}
	return report, nil
}

// VerifySessionIntegrity re-derives a closed session's arqueo from its ledger.
// A mismatch is a CONSISTENCY_VIOLATION: it is logged at error level, published
// as an integrity event and returned to the caller along with the report.
func (s *ReportService) VerifySessionIntegrity(ctx context.Context, branchID, sessionID uuid.UUID) (*IntegrityReport, error) {
	session, entries, err := s.load(ctx, branchID, sessionID)
	if err != nil {
		return nil, err
	}

	report := &IntegrityReport{
		SessionID:  session.ID,
		Status:     string(session.Status),
		Consistent: true,
		CheckedAt:  time.Now(),
	}
	verr := cash.VerifyClosedSession(session, entries)
	if verr == nil {
		return report, nil
	}

	report.Consistent = false
	report.Detail = verr.Error()
	if de, ok := shared.AsDomainError(verr); ok {
		report.Detail = de.Message
	}
	s.logger.Error("cash session integrity violation",
		zap.String("branch_id", session.BranchID.String()),
		zap.String("session_id", session.ID.String()),
		zap.String("detail", report.Detail),
	)
	s.publish(ctx, cash.NewSessionIntegrityViolationEvent(session, report.Detail))
	return report, verr
}

// GetUnsessionedEntries lists entries recorded without a session, oldest first
func (s *ReportService) GetUnsessionedEntries(ctx context.Context, branchID uuid.UUID, registerID *uuid.UUID, page, pageSize int) ([]LedgerEntryResponse, int64, error) {
	filter := cash.LedgerEntryFilter{
		Filter:      pageFilter(page, pageSize),
		BranchID:    &branchID,
		RegisterID:  registerID,
		Unsessioned: true,
	}
	filter.OrderDir = "asc"

	entries, err := s.ledgerRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.ledgerRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return toLedgerEntryResponses(entries), total, nil
}

func (s *ReportService) load(ctx context.Context, branchID, sessionID uuid.UUID) (*cash.CashSession, []cash.LedgerEntry, error) {
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if session.BranchID != branchID {
		return nil, nil, cash.NewNotFoundError("CashSession", sessionID)
	}
	entries, err := s.ledgerRepo.FindBySession(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	return session, entries, nil
}

func methodTotals(groups map[cash.PaymentMethod]cash.MethodTotals) []MethodTotalsResponse {
	out := make([]MethodTotalsResponse, 0, len(groups))
	for _, m := range cash.AllPaymentMethods() {
		g, ok := groups[m]
		if !ok {
			continue
		}
		out = append(out, MethodTotalsResponse{
			PaymentMethod: string(m),
			AffectsCash:   m.IsCash(),
			InflowTotal:   g.InflowTotal,
			OutflowTotal:  g.OutflowTotal,
			Net:           g.Net,
			EntryCount:    g.EntryCount,
		})
	}
	return out
}

func typeTotals(groups map[cash.EntryType]cash.TypeTotals) []TypeTotalsResponse {
	out := make([]TypeTotalsResponse, 0, len(groups))
	for t, g := range groups {
		out = append(out, TypeTotalsResponse{
			Type:       string(t),
			Total:      g.Total,
			CashTotal:  g.CashTotal,
			EntryCount: g.EntryCount,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

// AmountFormatter renders amounts for people reading a report
type AmountFormatter struct {
	printer *message.Printer
	symbol  string
}

// NewAmountFormatter creates a formatter for a BCP 47 locale and ISO currency code.
// Unknown locales fall back to Spanish.
func NewAmountFormatter(locale string, cur valueobject.Currency) AmountFormatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Spanish
	}
	printer := message.NewPrinter(tag)

	symbol := string(cur)
	if unit, err := currency.ParseISO(string(cur)); err == nil {
		if sym := printer.Sprint(currency.Symbol(unit.Amount(nil))); sym != "" {
			symbol = sym
		}
	}
	return AmountFormatter{printer: printer, symbol: symbol}
}

// Format renders d with two decimals and the currency symbol
func (f AmountFormatter) Format(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	return sign + f.symbol + " " + f.printer.Sprint(number.Decimal(d.Round(2).InexactFloat64(), number.Scale(2)))
}
