package cash

import (
	"context"

	"github.com/ferreteria/backend/internal/domain/cash"
	"github.com/ferreteria/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MetricsRecorder receives cash business metrics.
// The telemetry layer implements it; the application only knows this interface.
type MetricsRecorder interface {
	RecordSessionOpened(ctx context.Context, branchID uuid.UUID)
	RecordSessionClosed(ctx context.Context, branchID uuid.UUID, level string, difference decimal.Decimal)
	RecordLedgerEntry(ctx context.Context, branchID uuid.UUID, entryType, paymentMethod string, amount decimal.Decimal)
	RecordInstallmentPayment(ctx context.Context, branchID uuid.UUID, paymentMethod string, applied decimal.Decimal, fullyPaid bool)
	RecordTransferCompleted(ctx context.Context, branchID uuid.UUID, amount decimal.Decimal)
	RecordIntegrityViolation(ctx context.Context, branchID uuid.UUID)
}

// MetricsHandler turns cash domain events into business metrics
type MetricsHandler struct {
	recorder MetricsRecorder
}

// NewMetricsHandler creates a new MetricsHandler
func NewMetricsHandler(recorder MetricsRecorder) *MetricsHandler {
	return &MetricsHandler{recorder: recorder}
}

// EventTypes returns the event types this handler is interested in
func (h *MetricsHandler) EventTypes() []string {
	return []string{
		cash.EventTypeCashSessionOpened,
		cash.EventTypeCashSessionClosed,
		cash.EventTypeLedgerEntryRecorded,
		cash.EventTypeInstallmentPaymentApplied,
		cash.EventTypeCashTransferCompleted,
		cash.EventTypeSessionIntegrityViolation,
	}
}

// Handle records the metric matching the event. Unknown events are ignored.
func (h *MetricsHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if h.recorder == nil {
		return nil
	}
	branchID := event.BranchID()

	switch e := event.(type) {
	case *cash.CashSessionOpenedEvent:
		h.recorder.RecordSessionOpened(ctx, branchID)
	case *cash.CashSessionClosedEvent:
		h.recorder.RecordSessionClosed(ctx, branchID, string(e.DeviationLevel), e.Difference)
	case *cash.LedgerEntryRecordedEvent:
		h.recorder.RecordLedgerEntry(ctx, branchID, string(e.EntryType), string(e.PaymentMethod), e.Amount)
	case *cash.InstallmentPaymentAppliedEvent:
		h.recorder.RecordInstallmentPayment(ctx, branchID, string(e.PaymentMethod), e.Applied, e.FullyPaid)
	case *cash.CashTransferCompletedEvent:
		h.recorder.RecordTransferCompleted(ctx, branchID, e.Amount)
	case *cash.SessionIntegrityViolationEvent:
		h.recorder.RecordIntegrityViolation(ctx, branchID)
	}
	return nil
}

var _ shared.EventHandler = (*MetricsHandler)(nil)
