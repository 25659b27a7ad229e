package telemetry

import (
	"context"
	"errors"
	"fmt"

	appcash "github.com/ferreteria/backend/internal/application/cash"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when a metrics type is built without a meter
var ErrMeterNil = errors.New("meter cannot be nil")

// MeterName is the instrumentation scope of the cash business metrics
const MeterName = "github.com/ferreteria/backend/cash"

// CashMetrics records the cash business metrics. Money is reported as a
// float64 in the store currency; the ledger remains the source of truth.
type CashMetrics struct {
	sessionsOpened      metric.Int64Counter
	sessionsClosed      metric.Int64Counter
	closeDifference     metric.Float64Histogram
	ledgerEntries       metric.Int64Counter
	ledgerAmount        metric.Float64Counter
	installmentPayments metric.Int64Counter
	installmentAmount   metric.Float64Counter
	transfers           metric.Int64Counter
	transferAmount      metric.Float64Counter
	integrityViolations metric.Int64Counter
}

var _ appcash.MetricsRecorder = (*CashMetrics)(nil)

// NewCashMetrics creates the cash instruments on the given meter
func NewCashMetrics(meter metric.Meter) (*CashMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	m := &CashMetrics{}
	var errs []error
	int64Counter := func(name, desc, unit string) metric.Int64Counter {
		c, err := meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit(unit))
		errs = append(errs, err)
		return c
	}
	float64Counter := func(name, desc, unit string) metric.Float64Counter {
		c, err := meter.Float64Counter(name, metric.WithDescription(desc), metric.WithUnit(unit))
		errs = append(errs, err)
		return c
	}

	m.sessionsOpened = int64Counter("cash_session_opened_total", "Cash sessions opened", "{sessions}")
	m.sessionsClosed = int64Counter("cash_session_closed_total", "Cash sessions closed, by deviation level", "{sessions}")
	m.ledgerEntries = int64Counter("cash_ledger_entries_total", "Ledger entries recorded", "{entries}")
	m.ledgerAmount = float64Counter("cash_ledger_amount_total", "Absolute amount moved through the ledger", "{currency}")
	m.installmentPayments = int64Counter("cash_installment_payments_total", "Installment payments applied", "{payments}")
	m.installmentAmount = float64Counter("cash_installment_amount_total", "Amount applied to installments", "{currency}")
	m.transfers = int64Counter("cash_transfers_total", "Completed cash transfers", "{transfers}")
	m.transferAmount = float64Counter("cash_transfer_amount_total", "Amount moved between sessions", "{currency}")
	m.integrityViolations = int64Counter("cash_integrity_violations_total", "Sessions whose stored totals disagree with the ledger", "{sessions}")

	hist, err := meter.Float64Histogram("cash_close_difference",
		metric.WithDescription("Counted minus expected balance at close"),
		metric.WithUnit("{currency}"),
		metric.WithExplicitBucketBoundaries(-500, -100, -50, -10, -1, 0, 1, 10, 50, 100, 500),
	)
	errs = append(errs, err)
	m.closeDifference = hist

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("failed to create cash metrics: %w", err)
	}
	return m, nil
}

func branchAttr(branchID uuid.UUID) attribute.KeyValue {
	return attribute.String("branch_id", branchID.String())
}

func (m *CashMetrics) RecordSessionOpened(ctx context.Context, branchID uuid.UUID) {
	m.sessionsOpened.Add(ctx, 1, metric.WithAttributes(branchAttr(branchID)))
}

func (m *CashMetrics) RecordSessionClosed(ctx context.Context, branchID uuid.UUID, level string, difference decimal.Decimal) {
	attrs := metric.WithAttributes(branchAttr(branchID), attribute.String("deviation_level", level))
	m.sessionsClosed.Add(ctx, 1, attrs)
	m.closeDifference.Record(ctx, difference.InexactFloat64(), metric.WithAttributes(branchAttr(branchID)))
}

func (m *CashMetrics) RecordLedgerEntry(ctx context.Context, branchID uuid.UUID, entryType, paymentMethod string, amount decimal.Decimal) {
	attrs := metric.WithAttributes(
		branchAttr(branchID),
		attribute.String("entry_type", entryType),
		attribute.String("payment_method", paymentMethod),
	)
	m.ledgerEntries.Add(ctx, 1, attrs)
	m.ledgerAmount.Add(ctx, amount.Abs().InexactFloat64(), attrs)
}

func (m *CashMetrics) RecordInstallmentPayment(ctx context.Context, branchID uuid.UUID, paymentMethod string, applied decimal.Decimal, fullyPaid bool) {
	attrs := metric.WithAttributes(
		branchAttr(branchID),
		attribute.String("payment_method", paymentMethod),
		attribute.Bool("fully_paid", fullyPaid),
	)
	m.installmentPayments.Add(ctx, 1, attrs)
	m.installmentAmount.Add(ctx, applied.InexactFloat64(), attrs)
}

func (m *CashMetrics) RecordTransferCompleted(ctx context.Context, branchID uuid.UUID, amount decimal.Decimal) {
	attrs := metric.WithAttributes(branchAttr(branchID))
	m.transfers.Add(ctx, 1, attrs)
	m.transferAmount.Add(ctx, amount.InexactFloat64(), attrs)
}

func (m *CashMetrics) RecordIntegrityViolation(ctx context.Context, branchID uuid.UUID) {
	m.integrityViolations.Add(ctx, 1, metric.WithAttributes(branchAttr(branchID)))
}
