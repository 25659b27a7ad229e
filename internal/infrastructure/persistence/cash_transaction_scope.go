package persistence

import (
	"context"

	appcash "github.com/ferreteria/backend/internal/application/cash"
	"github.com/ferreteria/backend/internal/domain/cash"
	"gorm.io/gorm"
)

// GormTransactionScope implements the cash TransactionScope using GORM transactions.
// Row locks taken through the scoped repositories are held until fn returns.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appcash.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories provides access to all cash repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) Registers() cash.CashRegisterRepository {
	return NewGormCashRegisterRepository(r.tx)
}

func (r *gormTransactionalRepositories) Sessions() cash.CashSessionRepository {
	return NewGormCashSessionRepository(r.tx)
}

func (r *gormTransactionalRepositories) Ledger() cash.LedgerEntryRepository {
	return NewGormLedgerEntryRepository(r.tx)
}

func (r *gormTransactionalRepositories) CreditSales() cash.CreditSaleRepository {
	return NewGormCreditSaleRepository(r.tx)
}

func (r *gormTransactionalRepositories) Expenses() cash.ExpenseRepository {
	return NewGormExpenseRepository(r.tx)
}

func (r *gormTransactionalRepositories) Transfers() cash.CashTransferRepository {
	return NewGormCashTransferRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ appcash.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appcash.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
