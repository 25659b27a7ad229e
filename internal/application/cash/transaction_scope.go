package cash

import (
	"context"

	"github.com/ferreteria/backend/internal/domain/cash"
)

// TransactionScope runs a unit of work atomically.
// Every cash command executes inside exactly one scope, so a session, its
// ledger entries and a credit sale's installments commit or roll back together.
type TransactionScope interface {
	// Execute runs fn within a database transaction.
	// If fn returns an error the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes the cash repositories bound to one transaction.
//
// Aggregate boundary notes:
//   - Sessions: row locks taken here (FOR UPDATE on close, FOR SHARE on entry
//     writes) serialize a close against concurrent entries.
//   - Ledger: append-only; entries are never saved twice.
//   - CreditSales: installments are child entities persisted with the sale.
type TransactionalRepositories interface {
	Registers() cash.CashRegisterRepository
	Sessions() cash.CashSessionRepository
	Ledger() cash.LedgerEntryRepository
	CreditSales() cash.CreditSaleRepository
	Expenses() cash.ExpenseRepository
	Transfers() cash.CashTransferRepository
}

// NoOpTransactionScope runs the function against plain repositories without a transaction.
// It is meant for unit tests with mocked repositories.
type NoOpTransactionScope struct {
	registers   cash.CashRegisterRepository
	sessions    cash.CashSessionRepository
	ledger      cash.LedgerEntryRepository
	creditSales cash.CreditSaleRepository
	expenses    cash.ExpenseRepository
	transfers   cash.CashTransferRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	registers cash.CashRegisterRepository,
	sessions cash.CashSessionRepository,
	ledger cash.LedgerEntryRepository,
	creditSales cash.CreditSaleRepository,
	expenses cash.ExpenseRepository,
	transfers cash.CashTransferRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		registers:   registers,
		sessions:    sessions,
		ledger:      ledger,
		creditSales: creditSales,
		expenses:    expenses,
		transfers:   transfers,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *NoOpTransactionScope) Registers() cash.CashRegisterRepository { return s.registers }
func (s *NoOpTransactionScope) Sessions() cash.CashSessionRepository   { return s.sessions }
func (s *NoOpTransactionScope) Ledger() cash.LedgerEntryRepository     { return s.ledger }
func (s *NoOpTransactionScope) CreditSales() cash.CreditSaleRepository { return s.creditSales }
func (s *NoOpTransactionScope) Expenses() cash.ExpenseRepository       { return s.expenses }
func (s *NoOpTransactionScope) Transfers() cash.CashTransferRepository { return s.transfers }

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
