package cash

import (
	"context"
	"testing"

	"github.com/ferreteria/backend/internal/domain/cash"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type transferFixture struct {
	repos       *testRepos
	source      *cash.CashRegister
	destination *cash.CashRegister
	transfer    *cash.CashTransfer
}

func newTransferFixture(t *testing.T, branchID uuid.UUID) *transferFixture {
	t.Helper()
	source := newTestRegister(t, branchID)
	destination, err := cash.NewCashRegister(branchID, "Caja 2", cash.RegisterTypeSecondary, dec("0"))
	require.NoError(t, err)
	transfer, err := cash.NewCashTransfer(source, destination, dec("40"), uuid.New(), "Sencillo")
	require.NoError(t, err)
	transfer.ClearDomainEvents()
	return &transferFixture{repos: newTestRepos(), source: source, destination: destination, transfer: transfer}
}

func TestTransferService_Create(t *testing.T) {
	ctx := context.Background()
	branchID := uuid.New()
	f := newTransferFixture(t, branchID)
	publisher := NewMockEventPublisher()
	svc := NewTransferService(f.repos.scope, f.repos.transfers, nil)
	svc.SetEventPublisher(publisher)

	f.repos.registers.On("FindByID", ctx, f.source.ID).Return(f.source, nil)
	f.repos.registers.On("FindByID", ctx, f.destination.ID).Return(f.destination, nil)
	f.repos.transfers.On("Save", ctx, mock.AnythingOfType("*cash.CashTransfer")).Return(nil)

	resp, err := svc.Create(ctx, branchID, uuid.New(), CreateTransferRequest{
		SourceRegisterID:      f.source.ID,
		DestinationRegisterID: f.destination.ID,
		Amount:                dec("40"),
	})
	require.NoError(t, err)
	assert.Equal(t, "PENDING", resp.Status)
	assert.Len(t, publisher.GetEventsByType(cash.EventTypeCashTransferRequested), 1)

	_, err = svc.Create(ctx, branchID, uuid.New(), CreateTransferRequest{
		SourceRegisterID:      f.source.ID,
		DestinationRegisterID: f.source.ID,
		Amount:                dec("40"),
	})
	assert.True(t, cash.IsErrorCode(err, cash.CodeInvalidTransfer))

	_, err = svc.Create(ctx, uuid.New(), uuid.New(), CreateTransferRequest{
		SourceRegisterID:      f.source.ID,
		DestinationRegisterID: f.destination.ID,
		Amount:                dec("40"),
	})
	assert.True(t, cash.IsErrorCode(err, cash.CodeNotFound))
}

func TestTransferService_Complete(t *testing.T) {
	ctx := context.Background()
	branchID := uuid.New()

	t.Run("books both legs", func(t *testing.T) {
		f := newTransferFixture(t, branchID)
		sourceSession := newTestSession(t, f.source, "100")
		destinationSession := newTestSession(t, f.destination, "0")
		publisher := NewMockEventPublisher()
		svc := NewTransferService(f.repos.scope, f.repos.transfers, nil)
		svc.SetEventPublisher(publisher)

		f.repos.transfers.On("FindByIDForUpdate", ctx, f.transfer.ID).Return(f.transfer, nil)
		f.repos.sessions.On("FindOpenByRegister", ctx, f.source.ID).Return(sourceSession, nil)
		f.repos.sessions.On("FindOpenByRegister", ctx, f.destination.ID).Return(destinationSession, nil)
		f.repos.sessions.On("FindByIDForShare", ctx, sourceSession.ID).Return(sourceSession, nil)
		f.repos.sessions.On("FindByIDForShare", ctx, destinationSession.ID).Return(destinationSession, nil)
		f.repos.ledger.On("Append", ctx, mock.MatchedBy(func(e *cash.LedgerEntry) bool {
			return e.Type == cash.EntryTypeTransferOut && *e.SessionID == sourceSession.ID
		})).Return(nil).Once()
		f.repos.ledger.On("Append", ctx, mock.MatchedBy(func(e *cash.LedgerEntry) bool {
			return e.Type == cash.EntryTypeTransferIn && *e.SessionID == destinationSession.ID
		})).Return(nil).Once()
		f.repos.transfers.On("SaveWithLock", ctx, f.transfer).Return(nil)

		resp, err := svc.Complete(ctx, branchID, f.transfer.ID, uuid.New())
		require.NoError(t, err)
		assert.Equal(t, "COMPLETED", resp.Status)
		assert.NotNil(t, resp.OutEntryID)
		assert.NotNil(t, resp.InEntryID)
		assert.Len(t, publisher.GetEventsByType(cash.EventTypeCashTransferCompleted), 1)
		assert.Len(t, publisher.GetEventsByType(cash.EventTypeLedgerEntryRecorded), 2)
		f.repos.ledger.AssertExpectations(t)
		f.repos.sessions.AssertNumberOfCalls(t, "FindByIDForShare", 2)
	})

	t.Run("destination has no open session", func(t *testing.T) {
		f := newTransferFixture(t, branchID)
		sourceSession := newTestSession(t, f.source, "100")
		svc := NewTransferService(f.repos.scope, f.repos.transfers, nil)

		f.repos.transfers.On("FindByIDForUpdate", ctx, f.transfer.ID).Return(f.transfer, nil)
		f.repos.sessions.On("FindOpenByRegister", ctx, f.source.ID).Return(sourceSession, nil)
		f.repos.sessions.On("FindOpenByRegister", ctx, f.destination.ID).Return(nil, cash.NewNotFoundError("CashSession", f.destination.ID))

		_, err := svc.Complete(ctx, branchID, f.transfer.ID, uuid.New())
		assert.True(t, cash.IsErrorCode(err, cash.CodeNoOpenSession))
		f.repos.ledger.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
		f.repos.transfers.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("cancelled transfer cannot complete", func(t *testing.T) {
		f := newTransferFixture(t, branchID)
		require.NoError(t, f.transfer.Cancel("error de digitación"))
		svc := NewTransferService(f.repos.scope, f.repos.transfers, nil)
		f.repos.transfers.On("FindByIDForUpdate", ctx, f.transfer.ID).Return(f.transfer, nil)

		_, err := svc.Complete(ctx, branchID, f.transfer.ID, uuid.New())
		assert.True(t, cash.IsErrorCode(err, cash.CodeNotPending))
	})

	t.Run("invisible to unrelated branches", func(t *testing.T) {
		f := newTransferFixture(t, branchID)
		svc := NewTransferService(f.repos.scope, f.repos.transfers, nil)
		f.repos.transfers.On("FindByID", ctx, f.transfer.ID).Return(f.transfer, nil)

		_, err := svc.GetByID(ctx, uuid.New(), f.transfer.ID)
		assert.True(t, cash.IsErrorCode(err, cash.CodeNotFound))
		resp, err := svc.GetByID(ctx, branchID, f.transfer.ID)
		require.NoError(t, err)
		assert.Equal(t, f.transfer.ID, resp.ID)
	})
}

func TestTransferService_Cancel(t *testing.T) {
	ctx := context.Background()
	branchID := uuid.New()
	f := newTransferFixture(t, branchID)
	svc := NewTransferService(f.repos.scope, f.repos.transfers, nil)

	f.repos.transfers.On("FindByIDForUpdate", ctx, f.transfer.ID).Return(f.transfer, nil)
	f.repos.transfers.On("SaveWithLock", ctx, f.transfer).Return(nil).Once()

	resp, err := svc.Cancel(ctx, branchID, f.transfer.ID, CancelTransferRequest{Reason: "Ya no es necesario"})
	require.NoError(t, err)
	assert.Equal(t, "CANCELLED", resp.Status)

	_, err = svc.Cancel(ctx, branchID, f.transfer.ID, CancelTransferRequest{Reason: "otra vez"})
	assert.True(t, cash.IsErrorCode(err, cash.CodeNotPending))
}

func TestLockPairOrdersByID(t *testing.T) {
	ctx := context.Background()
	branchID := uuid.New()
	sessions := new(MockSessionRepository)
	a := newTestSession(t, newTestRegister(t, branchID), "0")
	b := newTestSession(t, newTestRegister(t, branchID), "0")

	var order []uuid.UUID
	for _, s := range []*cash.CashSession{a, b} {
		s := s
		sessions.On("FindByIDForShare", ctx, s.ID).Run(func(mock.Arguments) {
			order = append(order, s.ID)
		}).Return(s, nil)
	}

	gotA, gotB, err := lockPair(ctx, sessions, a, b)
	require.NoError(t, err)
	assert.Same(t, a, gotA)
	assert.Same(t, b, gotB)

	_, _, err = lockPair(ctx, sessions, b, a)
	require.NoError(t, err)
	require.Len(t, order, 4)
	assert.Equal(t, order[0], order[2])
	assert.Equal(t, order[1], order[3])
}
