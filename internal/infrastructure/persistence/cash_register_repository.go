package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/ferreteria/backend/internal/domain/cash"
	"github.com/ferreteria/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCashRegisterRepository implements CashRegisterRepository using GORM
type GormCashRegisterRepository struct {
	db *gorm.DB
}

// NewGormCashRegisterRepository creates a new GormCashRegisterRepository
func NewGormCashRegisterRepository(db *gorm.DB) *GormCashRegisterRepository {
	return &GormCashRegisterRepository{db: db}
}

// FindByID finds a register by ID, including soft-deleted ones
func (r *GormCashRegisterRepository) FindByID(ctx context.Context, id uuid.UUID) (*cash.CashRegister, error) {
	var model models.CashRegisterModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, cash.NewNotFoundError("CashRegister", id)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds registers matching the filter
func (r *GormCashRegisterRepository) FindAll(ctx context.Context, filter cash.RegisterFilter) ([]cash.CashRegister, error) {
	var rows []models.CashRegisterModel
	query := applyPaging(r.applyFilter(r.db.WithContext(ctx).Model(&models.CashRegisterModel{}), filter),
		filter.Filter, CashRegisterSortFields, "created_at", "ASC")
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	registers := make([]cash.CashRegister, len(rows))
	for i := range rows {
		registers[i] = *rows[i].ToDomain()
	}
	return registers, nil
}

// Count counts registers matching the filter
func (r *GormCashRegisterRepository) Count(ctx context.Context, filter cash.RegisterFilter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.CashRegisterModel{}), filter).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a register without a version check
func (r *GormCashRegisterRepository) Save(ctx context.Context, register *cash.CashRegister) error {
	return r.db.WithContext(ctx).Save(models.CashRegisterModelFromDomain(register)).Error
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormCashRegisterRepository) SaveWithLock(ctx context.Context, register *cash.CashRegister) error {
	result := r.db.WithContext(ctx).
		Model(&models.CashRegisterModel{}).
		Where("id = ? AND version = ?", register.ID, register.Version-1).
		Updates(map[string]any{
			"name":                      register.Name,
			"type":                      register.Type,
			"suggested_opening_balance": register.SuggestedOpeningBalance,
			"description":               register.Description,
			"deleted_at":                register.DeletedAt,
			"version":                   register.Version,
			"updated_at":                register.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return cash.NewConcurrencyConflictError("CashRegister", register.ID)
	}
	return nil
}

func (r *GormCashRegisterRepository) applyFilter(query *gorm.DB, filter cash.RegisterFilter) *gorm.DB {
	if filter.BranchID != nil {
		query = query.Where("branch_id = ?", *filter.BranchID)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	if !filter.IncludeDeleted {
		query = query.Where("deleted_at IS NULL")
	}
	return query
}

var _ cash.CashRegisterRepository = (*GormCashRegisterRepository)(nil)
