package cash

import (
	"context"

	"github.com/ferreteria/backend/internal/domain/cash"
	"github.com/ferreteria/backend/internal/domain/shared"
	"github.com/ferreteria/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// Options holds the business policies shared by the cash services
type Options struct {
	// LedgerPolicy decides what happens to a money movement with no open session
	LedgerPolicy cash.LedgerPolicy
	// PaymentMode decides whether an installment overpayment is clamped or rejected
	PaymentMode cash.PaymentMode
	// Thresholds classify the arqueo deviation at close
	Thresholds cash.DeviationThresholds
	// Currency is used when formatting report amounts
	Currency valueobject.Currency
	// Locale is a BCP 47 tag used when formatting report amounts
	Locale string
}

// DefaultOptions returns the defaults: reject unsessioned entries, clamp overpayments
func DefaultOptions() Options {
	return Options{
		LedgerPolicy: cash.LedgerPolicyReject,
		PaymentMode:  cash.PaymentModeClamp,
		Thresholds:   cash.DefaultDeviationThresholds(),
		Currency:     valueobject.DefaultCurrency,
		Locale:       "es-PE",
	}
}

// normalized fills zero-valued fields with defaults
func (o Options) normalized() Options {
	d := DefaultOptions()
	if !o.LedgerPolicy.IsValid() {
		o.LedgerPolicy = d.LedgerPolicy
	}
	if !o.PaymentMode.IsValid() {
		o.PaymentMode = d.PaymentMode
	}
	if !o.Thresholds.WarningPct.IsPositive() || !o.Thresholds.CriticalPct.IsPositive() {
		o.Thresholds = d.Thresholds
	}
	if o.Currency == "" {
		o.Currency = d.Currency
	}
	if o.Locale == "" {
		o.Locale = d.Locale
	}
	return o
}

// eventPublishing is embedded by every service that emits domain events.
// Events are only handed to the publisher after the transaction committed.
type eventPublishing struct {
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// SetEventPublisher sets the event publisher for publishing domain events
func (p *eventPublishing) SetEventPublisher(publisher shared.EventPublisher) {
	p.eventPublisher = publisher
}

// publishDomainEvents publishes and clears the pending events of each aggregate
func (p *eventPublishing) publishDomainEvents(ctx context.Context, aggregates ...shared.AggregateRoot) {
	var events []shared.DomainEvent
	for _, agg := range aggregates {
		if agg == nil {
			continue
		}
		events = append(events, agg.GetDomainEvents()...)
		agg.ClearDomainEvents()
	}
	p.publish(ctx, events...)
}

func (p *eventPublishing) publish(ctx context.Context, events ...shared.DomainEvent) {
	if p.eventPublisher == nil || len(events) == 0 {
		return
	}
	// the commit already happened; a publish failure must not fail the command
	if err := p.eventPublisher.Publish(ctx, events...); err != nil {
		types := make([]string, len(events))
		for i, e := range events {
			types[i] = e.EventType()
		}
		loggerOrNop(p.logger).Warn("failed to publish domain events",
			zap.Strings("event_types", types),
			zap.Error(err),
		)
	}
}

func loggerOrNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
