package persistence

import (
	"context"
	"errors"

	"github.com/ferreteria/backend/internal/domain/cash"
	"github.com/ferreteria/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormExpenseRepository implements ExpenseRepository using GORM
type GormExpenseRepository struct {
	db *gorm.DB
}

// NewGormExpenseRepository creates a new GormExpenseRepository
func NewGormExpenseRepository(db *gorm.DB) *GormExpenseRepository {
	return &GormExpenseRepository{db: db}
}

// FindByID finds an expense by ID
func (r *GormExpenseRepository) FindByID(ctx context.Context, id uuid.UUID) (*cash.Expense, error) {
	return r.findByID(ctx, id, nil)
}

// FindByIDForUpdate finds an expense and locks its row
func (r *GormExpenseRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*cash.Expense, error) {
	return r.findByID(ctx, id, forUpdate())
}

func (r *GormExpenseRepository) findByID(ctx context.Context, id uuid.UUID, lock clause.Expression) (*cash.Expense, error) {
	query := r.db.WithContext(ctx)
	if lock != nil {
		query = query.Clauses(lock)
	}
	var model models.ExpenseModel
	if err := query.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, cash.NewNotFoundError("Expense", id)
		}
		if isLockFailure(err) {
			return nil, cash.NewConcurrencyConflictError("Expense", id)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds expenses matching the filter
func (r *GormExpenseRepository) FindAll(ctx context.Context, filter cash.ExpenseFilter) ([]cash.Expense, error) {
	var rows []models.ExpenseModel
	query := applyPaging(r.applyFilter(r.db.WithContext(ctx).Model(&models.ExpenseModel{}), filter),
		filter.Filter, ExpenseSortFields, "created_at", "DESC")
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	expenses := make([]cash.Expense, len(rows))
	for i := range rows {
		expenses[i] = *rows[i].ToDomain()
	}
	return expenses, nil
}

// Count counts expenses matching the filter
func (r *GormExpenseRepository) Count(ctx context.Context, filter cash.ExpenseFilter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.ExpenseModel{}), filter).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates an expense without a version check
func (r *GormExpenseRepository) Save(ctx context.Context, expense *cash.Expense) error {
	return r.db.WithContext(ctx).Save(models.ExpenseModelFromDomain(expense)).Error
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormExpenseRepository) SaveWithLock(ctx context.Context, expense *cash.Expense) error {
	result := r.db.WithContext(ctx).
		Model(&models.ExpenseModel{}).
		Where("id = ? AND version = ?", expense.ID, expense.Version-1).
		Updates(map[string]any{
			"status":           expense.Status,
			"session_id":       expense.SessionID,
			"ledger_entry_id":  expense.LedgerEntryID,
			"approved_at":      expense.ApprovedAt,
			"approved_by":      expense.ApprovedBy,
			"rejected_at":      expense.RejectedAt,
			"rejected_by":      expense.RejectedBy,
			"rejection_reason": expense.RejectionReason,
			"version":          expense.Version,
			"updated_at":       expense.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return cash.NewConcurrencyConflictError("Expense", expense.ID)
	}
	return nil
}

func (r *GormExpenseRepository) applyFilter(query *gorm.DB, filter cash.ExpenseFilter) *gorm.DB {
	if filter.BranchID != nil {
		query = query.Where("branch_id = ?", *filter.BranchID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.PaymentMethod != nil {
		query = query.Where("payment_method = ?", *filter.PaymentMethod)
	}
	if filter.RequestedBy != nil {
		query = query.Where("requested_by = ?", *filter.RequestedBy)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at < ?", *filter.To)
	}
	return query
}

var _ cash.ExpenseRepository = (*GormExpenseRepository)(nil)
