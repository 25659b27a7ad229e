package event

import (
	"context"
	"testing"

	"github.com/ferreteria/backend/internal/domain/cash"
	"github.com/ferreteria/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
)

type namedHandler struct {
	name       string
	eventTypes []string
}

func (h *namedHandler) Handle(context.Context, shared.DomainEvent) error { return nil }
func (h *namedHandler) EventTypes() []string                             { return h.eventTypes }

func TestHandlerRegistry_Register(t *testing.T) {
	registry := NewHandlerRegistry()
	metrics := &namedHandler{name: "metrics"}
	alerts := &namedHandler{name: "alerts"}

	registry.Register(metrics, cash.EventTypeCashSessionClosed, cash.EventTypeLedgerEntryRecorded)
	registry.Register(alerts, cash.EventTypeCashSessionDiscrepancy)
	registry.Register(metrics, cash.EventTypeCashSessionClosed)

	assert.Equal(t, []shared.EventHandler{metrics}, registry.GetHandlers(cash.EventTypeCashSessionClosed))
	assert.Equal(t, []shared.EventHandler{alerts}, registry.GetHandlers(cash.EventTypeCashSessionDiscrepancy))
	assert.Empty(t, registry.GetHandlers(cash.EventTypeExpenseApproved))
	assert.Equal(t, 2, registry.Len())
}

func TestHandlerRegistry_Wildcard(t *testing.T) {
	registry := NewHandlerRegistry()
	audit := &namedHandler{name: "audit"}
	metrics := &namedHandler{name: "metrics"}

	registry.Register(metrics, cash.EventTypeCashTransferCompleted)
	registry.Register(audit)
	registry.Register(audit, cash.EventTypeCashTransferCompleted)

	handlers := registry.GetHandlers(cash.EventTypeCashTransferCompleted)
	assert.Equal(t, []shared.EventHandler{metrics, audit}, handlers, "typed first, wildcard not repeated")
	assert.Equal(t, []shared.EventHandler{audit}, registry.GetHandlers(cash.EventTypeExpenseCreated))
}

func TestHandlerRegistry_Unregister(t *testing.T) {
	registry := NewHandlerRegistry()
	audit := &namedHandler{name: "audit"}
	metrics := &namedHandler{name: "metrics"}

	registry.Register(audit)
	registry.Register(metrics, cash.EventTypeCashSessionOpened)
	registry.Register(audit, cash.EventTypeCashSessionOpened)

	registry.Unregister(audit)

	assert.Equal(t, []shared.EventHandler{metrics}, registry.GetHandlers(cash.EventTypeCashSessionOpened))
	assert.Empty(t, registry.GetHandlers(cash.EventTypeExpenseCreated))
	assert.Equal(t, 1, registry.Len())

	registry.Unregister(metrics)
	assert.Equal(t, 0, registry.Len())
}

func TestHandlerRegistry_GetHandlersReturnsCopy(t *testing.T) {
	registry := NewHandlerRegistry()
	registry.Register(&namedHandler{name: "a"}, cash.EventTypeExpenseApproved)

	handlers := registry.GetHandlers(cash.EventTypeExpenseApproved)
	handlers[0] = &namedHandler{name: "b"}

	assert.Equal(t, "a", registry.GetHandlers(cash.EventTypeExpenseApproved)[0].(*namedHandler).name)
}
