package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ferreteria/backend/internal/domain/cash"
	"github.com/ferreteria/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "CashSession", uuid.New(), uuid.New()),
	}
}

type recordingHandler struct {
	eventTypes []string
	err        error
	panicWith  any

	mu      sync.Mutex
	handled []shared.DomainEvent
}

func (h *recordingHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	h.handled = append(h.handled, event)
	h.mu.Unlock()
	if h.panicWith != nil {
		panic(h.panicWith)
	}
	return h.err
}

func (h *recordingHandler) EventTypes() []string { return h.eventTypes }

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	closed := &recordingHandler{eventTypes: []string{cash.EventTypeCashSessionClosed}}
	bus.Subscribe(closed)

	opened := newTestEvent(cash.EventTypeCashSessionOpened)
	closedEvent := newTestEvent(cash.EventTypeCashSessionClosed)
	require.NoError(t, bus.Publish(context.Background(), opened, closedEvent))

	require.Equal(t, 1, closed.count())
	assert.Same(t, closedEvent, closed.handled[0])
}

func TestInMemoryEventBus_ExplicitTypesOverrideHandlerTypes(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	h := &recordingHandler{eventTypes: []string{cash.EventTypeCashSessionClosed}}
	bus.Subscribe(h, cash.EventTypeExpenseApproved)

	_ = bus.Publish(context.Background(), newTestEvent(cash.EventTypeCashSessionClosed))
	_ = bus.Publish(context.Background(), newTestEvent(cash.EventTypeExpenseApproved))

	assert.Equal(t, 1, h.count())
}

func TestInMemoryEventBus_HandlerFailuresAreIsolated(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	bus := NewInMemoryEventBus(zap.New(core))

	failing := &recordingHandler{eventTypes: []string{cash.EventTypeCashTransferCompleted}, err: errors.New("notifier down")}
	panicking := &recordingHandler{eventTypes: []string{cash.EventTypeCashTransferCompleted}, panicWith: "nil map"}
	healthy := &recordingHandler{eventTypes: []string{cash.EventTypeCashTransferCompleted}}
	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	err := bus.Publish(context.Background(), newTestEvent(cash.EventTypeCashTransferCompleted))

	require.NoError(t, err)
	assert.Equal(t, 1, healthy.count())
	assert.EqualValues(t, 2, bus.Failures())
	assert.Equal(t, 2, logs.FilterMessage("event handler failed").Len())
}

func TestInMemoryEventBus_StopDropsEvents(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	h := &recordingHandler{}
	bus.Subscribe(h, cash.EventTypeLedgerEntryRecorded)

	require.NoError(t, bus.Stop(context.Background()))
	_ = bus.Publish(context.Background(), newTestEvent(cash.EventTypeLedgerEntryRecorded))
	assert.Equal(t, 0, h.count())

	require.NoError(t, bus.Start(context.Background()))
	_ = bus.Publish(context.Background(), newTestEvent(cash.EventTypeLedgerEntryRecorded))
	assert.Equal(t, 1, h.count())
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	h := &recordingHandler{eventTypes: []string{cash.EventTypeExpenseRejected}}
	bus.Subscribe(h)
	bus.Unsubscribe(h)

	_ = bus.Publish(context.Background(), newTestEvent(cash.EventTypeExpenseRejected))
	assert.Equal(t, 0, h.count())
}

func TestInMemoryEventBus_ConcurrentPublish(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	h := &recordingHandler{eventTypes: []string{cash.EventTypeLedgerEntryRecorded}}
	bus.Subscribe(h)

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = bus.Publish(context.Background(), newTestEvent(cash.EventTypeLedgerEntryRecorded))
		}()
	}
	wg.Wait()
	assert.Equal(t, 20, h.count())
}
