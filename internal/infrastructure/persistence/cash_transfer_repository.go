package persistence

import (
	"context"
	"errors"

	"github.com/ferreteria/backend/internal/domain/cash"
	"github.com/ferreteria/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCashTransferRepository implements CashTransferRepository using GORM
type GormCashTransferRepository struct {
	db *gorm.DB
}

// NewGormCashTransferRepository creates a new GormCashTransferRepository
func NewGormCashTransferRepository(db *gorm.DB) *GormCashTransferRepository {
	return &GormCashTransferRepository{db: db}
}

// FindByID finds a transfer by ID
func (r *GormCashTransferRepository) FindByID(ctx context.Context, id uuid.UUID) (*cash.CashTransfer, error) {
	var model models.CashTransferModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, cash.NewNotFoundError("CashTransfer", id)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds a transfer and locks its row
func (r *GormCashTransferRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*cash.CashTransfer, error) {
	var model models.CashTransferModel
	if err := r.db.WithContext(ctx).Clauses(forUpdate()).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, cash.NewNotFoundError("CashTransfer", id)
		}
		if isLockFailure(err) {
			return nil, cash.NewConcurrencyConflictError("CashTransfer", id)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds transfers matching the filter
func (r *GormCashTransferRepository) FindAll(ctx context.Context, filter cash.TransferFilter) ([]cash.CashTransfer, error) {
	var rows []models.CashTransferModel
	query := applyPaging(r.applyFilter(r.db.WithContext(ctx).Model(&models.CashTransferModel{}), filter),
		filter.Filter, CashTransferSortFields, "created_at", "DESC")
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	transfers := make([]cash.CashTransfer, len(rows))
	for i := range rows {
		transfers[i] = *rows[i].ToDomain()
	}
	return transfers, nil
}

// Count counts transfers matching the filter
func (r *GormCashTransferRepository) Count(ctx context.Context, filter cash.TransferFilter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.CashTransferModel{}), filter).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a transfer without a version check
func (r *GormCashTransferRepository) Save(ctx context.Context, transfer *cash.CashTransfer) error {
	return r.db.WithContext(ctx).Save(models.CashTransferModelFromDomain(transfer)).Error
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormCashTransferRepository) SaveWithLock(ctx context.Context, transfer *cash.CashTransfer) error {
	result := r.db.WithContext(ctx).
		Model(&models.CashTransferModel{}).
		Where("id = ? AND version = ?", transfer.ID, transfer.Version-1).
		Updates(map[string]any{
			"status":                 transfer.Status,
			"source_session_id":      transfer.SourceSessionID,
			"destination_session_id": transfer.DestinationSessionID,
			"out_entry_id":           transfer.OutEntryID,
			"in_entry_id":            transfer.InEntryID,
			"completed_at":           transfer.CompletedAt,
			"completed_by":           transfer.CompletedBy,
			"cancelled_at":           transfer.CancelledAt,
			"cancel_reason":          transfer.CancelReason,
			"version":                transfer.Version,
			"updated_at":             transfer.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return cash.NewConcurrencyConflictError("CashTransfer", transfer.ID)
	}
	return nil
}

// applyFilter matches the branch and register on either side of the transfer
func (r *GormCashTransferRepository) applyFilter(query *gorm.DB, filter cash.TransferFilter) *gorm.DB {
	if filter.BranchID != nil {
		query = query.Where("(branch_id = ? OR destination_branch_id = ?)", *filter.BranchID, *filter.BranchID)
	}
	if filter.RegisterID != nil {
		query = query.Where("(source_register_id = ? OR destination_register_id = ?)", *filter.RegisterID, *filter.RegisterID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at < ?", *filter.To)
	}
	return query
}

var _ cash.CashTransferRepository = (*GormCashTransferRepository)(nil)
