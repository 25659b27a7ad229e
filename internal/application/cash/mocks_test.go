package cash

import (
	"context"
	"sync"
	"time"

	"github.com/ferreteria/backend/internal/domain/cash"
	"github.com/ferreteria/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
	err    error
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{events: make([]shared.DomainEvent, 0)}
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, events...)
	return nil
}

func (m *MockEventPublisher) GetEventsByType(eventType string) []shared.DomainEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]shared.DomainEvent, 0)
	for _, e := range m.events {
		if e.EventType() == eventType {
			result = append(result, e)
		}
	}
	return result
}

// MockRegisterRepository is a mock implementation of cash.CashRegisterRepository
type MockRegisterRepository struct {
	mock.Mock
}

func (m *MockRegisterRepository) FindByID(ctx context.Context, id uuid.UUID) (*cash.CashRegister, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cash.CashRegister), args.Error(1)
}

func (m *MockRegisterRepository) FindAll(ctx context.Context, filter cash.RegisterFilter) ([]cash.CashRegister, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]cash.CashRegister), args.Error(1)
}

func (m *MockRegisterRepository) Count(ctx context.Context, filter cash.RegisterFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRegisterRepository) Save(ctx context.Context, register *cash.CashRegister) error {
	return m.Called(ctx, register).Error(0)
}

func (m *MockRegisterRepository) SaveWithLock(ctx context.Context, register *cash.CashRegister) error {
	return m.Called(ctx, register).Error(0)
}

// MockSessionRepository is a mock implementation of cash.CashSessionRepository
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) session(args mock.Arguments) (*cash.CashSession, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cash.CashSession), args.Error(1)
}

func (m *MockSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*cash.CashSession, error) {
	return m.session(m.Called(ctx, id))
}

func (m *MockSessionRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*cash.CashSession, error) {
	return m.session(m.Called(ctx, id))
}

func (m *MockSessionRepository) FindByIDForShare(ctx context.Context, id uuid.UUID) (*cash.CashSession, error) {
	return m.session(m.Called(ctx, id))
}

func (m *MockSessionRepository) FindOpenByRegister(ctx context.Context, registerID uuid.UUID) (*cash.CashSession, error) {
	return m.session(m.Called(ctx, registerID))
}

func (m *MockSessionRepository) FindOpenByBranch(ctx context.Context, branchID uuid.UUID) ([]cash.CashSession, error) {
	args := m.Called(ctx, branchID)
	return args.Get(0).([]cash.CashSession), args.Error(1)
}

func (m *MockSessionRepository) FindAll(ctx context.Context, filter cash.SessionFilter) ([]cash.CashSession, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]cash.CashSession), args.Error(1)
}

func (m *MockSessionRepository) Count(ctx context.Context, filter cash.SessionFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSessionRepository) Create(ctx context.Context, session *cash.CashSession) error {
	return m.Called(ctx, session).Error(0)
}

func (m *MockSessionRepository) SaveWithLock(ctx context.Context, session *cash.CashSession) error {
	return m.Called(ctx, session).Error(0)
}

// MockLedgerRepository is a mock implementation of cash.LedgerEntryRepository
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) Append(ctx context.Context, entry *cash.LedgerEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockLedgerRepository) FindByID(ctx context.Context, id uuid.UUID) (*cash.LedgerEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cash.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) FindBySession(ctx context.Context, sessionID uuid.UUID) ([]cash.LedgerEntry, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).([]cash.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) FindAll(ctx context.Context, filter cash.LedgerEntryFilter) ([]cash.LedgerEntry, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]cash.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) Count(ctx context.Context, filter cash.LedgerEntryFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockCreditSaleRepository is a mock implementation of cash.CreditSaleRepository
type MockCreditSaleRepository struct {
	mock.Mock
}

func (m *MockCreditSaleRepository) sale(args mock.Arguments) (*cash.CreditSale, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cash.CreditSale), args.Error(1)
}

func (m *MockCreditSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*cash.CreditSale, error) {
	return m.sale(m.Called(ctx, id))
}

func (m *MockCreditSaleRepository) FindBySaleID(ctx context.Context, saleID uuid.UUID) (*cash.CreditSale, error) {
	return m.sale(m.Called(ctx, saleID))
}

func (m *MockCreditSaleRepository) FindByInstallmentIDForUpdate(ctx context.Context, installmentID uuid.UUID) (*cash.CreditSale, error) {
	return m.sale(m.Called(ctx, installmentID))
}

func (m *MockCreditSaleRepository) ExistsBySaleID(ctx context.Context, saleID uuid.UUID) (bool, error) {
	args := m.Called(ctx, saleID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCreditSaleRepository) FindOverdueInstallments(ctx context.Context, asOf time.Time, filter cash.InstallmentFilter) ([]cash.InstallmentPayment, error) {
	args := m.Called(ctx, asOf, filter)
	return args.Get(0).([]cash.InstallmentPayment), args.Error(1)
}

func (m *MockCreditSaleRepository) CountOverdueInstallments(ctx context.Context, asOf time.Time, filter cash.InstallmentFilter) (int64, error) {
	args := m.Called(ctx, asOf, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCreditSaleRepository) Create(ctx context.Context, sale *cash.CreditSale) error {
	return m.Called(ctx, sale).Error(0)
}

func (m *MockCreditSaleRepository) SaveWithLock(ctx context.Context, sale *cash.CreditSale) error {
	return m.Called(ctx, sale).Error(0)
}

// MockExpenseRepository is a mock implementation of cash.ExpenseRepository
type MockExpenseRepository struct {
	mock.Mock
}

func (m *MockExpenseRepository) FindByID(ctx context.Context, id uuid.UUID) (*cash.Expense, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cash.Expense), args.Error(1)
}

func (m *MockExpenseRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*cash.Expense, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cash.Expense), args.Error(1)
}

func (m *MockExpenseRepository) FindAll(ctx context.Context, filter cash.ExpenseFilter) ([]cash.Expense, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]cash.Expense), args.Error(1)
}

func (m *MockExpenseRepository) Count(ctx context.Context, filter cash.ExpenseFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockExpenseRepository) Save(ctx context.Context, expense *cash.Expense) error {
	return m.Called(ctx, expense).Error(0)
}

func (m *MockExpenseRepository) SaveWithLock(ctx context.Context, expense *cash.Expense) error {
	return m.Called(ctx, expense).Error(0)
}

// MockTransferRepository is a mock implementation of cash.CashTransferRepository
type MockTransferRepository struct {
	mock.Mock
}

func (m *MockTransferRepository) FindByID(ctx context.Context, id uuid.UUID) (*cash.CashTransfer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cash.CashTransfer), args.Error(1)
}

func (m *MockTransferRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*cash.CashTransfer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cash.CashTransfer), args.Error(1)
}

func (m *MockTransferRepository) FindAll(ctx context.Context, filter cash.TransferFilter) ([]cash.CashTransfer, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]cash.CashTransfer), args.Error(1)
}

func (m *MockTransferRepository) Count(ctx context.Context, filter cash.TransferFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTransferRepository) Save(ctx context.Context, transfer *cash.CashTransfer) error {
	return m.Called(ctx, transfer).Error(0)
}

func (m *MockTransferRepository) SaveWithLock(ctx context.Context, transfer *cash.CashTransfer) error {
	return m.Called(ctx, transfer).Error(0)
}

// testRepos bundles one mock per repository behind a NoOpTransactionScope
type testRepos struct {
	registers *MockRegisterRepository
	sessions  *MockSessionRepository
	ledger    *MockLedgerRepository
	credit    *MockCreditSaleRepository
	expenses  *MockExpenseRepository
	transfers *MockTransferRepository
	scope     *NoOpTransactionScope
}

func newTestRepos() *testRepos {
	r := &testRepos{
		registers: new(MockRegisterRepository),
		sessions:  new(MockSessionRepository),
		ledger:    new(MockLedgerRepository),
		credit:    new(MockCreditSaleRepository),
		expenses:  new(MockExpenseRepository),
		transfers: new(MockTransferRepository),
	}
	r.scope = NewNoOpTransactionScope(r.registers, r.sessions, r.ledger, r.credit, r.expenses, r.transfers)
	return r
}
