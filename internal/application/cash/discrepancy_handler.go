package cash

import (
	"context"
	"fmt"

	"github.com/ferreteria/backend/internal/domain/cash"
	"github.com/ferreteria/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DiscrepancyNotifier delivers arqueo discrepancy alerts to supervisors.
// Implementations can support different channels (in-app, webhook, etc.)
type DiscrepancyNotifier interface {
	NotifyDiscrepancy(ctx context.Context, alert DiscrepancyAlert) error
}

// DiscrepancyAlert describes a session that closed outside the normal band
type DiscrepancyAlert struct {
	BranchID     string `json:"branch_id"`
	SessionID    string `json:"session_id"`
	RegisterID   string `json:"register_id"`
	UserID       string `json:"user_id"`
	Difference   string `json:"difference"`
	DeviationPct string `json:"deviation_pct"`
	Level        string `json:"level"`
	Shortage     bool   `json:"shortage"`
}

// DiscrepancyHandler handles CashSessionDiscrepancyDetected events
type DiscrepancyHandler struct {
	logger   *zap.Logger
	notifier DiscrepancyNotifier
}

// NewDiscrepancyHandler creates a new handler for discrepancy events
func NewDiscrepancyHandler(logger *zap.Logger) *DiscrepancyHandler {
	return &DiscrepancyHandler{logger: loggerOrNop(logger)}
}

// WithNotifier sets the notifier for sending alerts
func (h *DiscrepancyHandler) WithNotifier(notifier DiscrepancyNotifier) *DiscrepancyHandler {
	h.notifier = notifier
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *DiscrepancyHandler) EventTypes() []string {
	return []string{cash.EventTypeCashSessionDiscrepancy}
}

// Handle processes a CashSessionDiscrepancyEvent
func (h *DiscrepancyHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	e, ok := event.(*cash.CashSessionDiscrepancyEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", cash.EventTypeCashSessionDiscrepancy),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			cash.EventTypeCashSessionDiscrepancy, event.EventType())
	}

	alert := DiscrepancyAlert{
		BranchID:     event.BranchID().String(),
		SessionID:    e.SessionID.String(),
		RegisterID:   e.RegisterID.String(),
		UserID:       e.UserID.String(),
		Difference:   e.Difference.StringFixed(2),
		DeviationPct: e.DeviationPct.StringFixed(2),
		Level:        string(e.DeviationLevel),
		Shortage:     e.Difference.IsNegative(),
	}

	h.logger.Warn("cash discrepancy detected",
		zap.String("branch_id", alert.BranchID),
		zap.String("session_id", alert.SessionID),
		zap.String("register_id", alert.RegisterID),
		zap.String("user_id", alert.UserID),
		zap.String("difference", alert.Difference),
		zap.String("deviation_pct", alert.DeviationPct),
		zap.String("level", alert.Level),
		zap.Bool("shortage", alert.Shortage),
	)

	if h.notifier == nil {
		return nil
	}
	// A failed alert must not fail the close that raised it
	if err := h.notifier.NotifyDiscrepancy(ctx, alert); err != nil {
		h.logger.Error("failed to send discrepancy alert",
			zap.String("session_id", alert.SessionID),
			zap.Error(err),
		)
	}
	return nil
}

var _ shared.EventHandler = (*DiscrepancyHandler)(nil)
