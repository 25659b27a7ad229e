package persistence

import (
	"context"
	"errors"

	"github.com/ferreteria/backend/internal/domain/cash"
	"github.com/ferreteria/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormLedgerEntryRepository implements LedgerEntryRepository using GORM.
// It only ever inserts; entries are immutable once written.
type GormLedgerEntryRepository struct {
	db *gorm.DB
}

// NewGormLedgerEntryRepository creates a new GormLedgerEntryRepository
func NewGormLedgerEntryRepository(db *gorm.DB) *GormLedgerEntryRepository {
	return &GormLedgerEntryRepository{db: db}
}

// Append inserts a new ledger entry
func (r *GormLedgerEntryRepository) Append(ctx context.Context, entry *cash.LedgerEntry) error {
	return r.db.WithContext(ctx).Create(models.LedgerEntryModelFromDomain(entry)).Error
}

// FindByID finds a ledger entry by ID
func (r *GormLedgerEntryRepository) FindByID(ctx context.Context, id uuid.UUID) (*cash.LedgerEntry, error) {
	var model models.LedgerEntryModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, cash.NewNotFoundError("LedgerEntry", id)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySession returns all entries of a session in recording order
func (r *GormLedgerEntryRepository) FindBySession(ctx context.Context, sessionID uuid.UUID) ([]cash.LedgerEntry, error) {
	var rows []models.LedgerEntryModel
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return entriesToDomain(rows), nil
}

// FindAll finds ledger entries matching the filter
func (r *GormLedgerEntryRepository) FindAll(ctx context.Context, filter cash.LedgerEntryFilter) ([]cash.LedgerEntry, error) {
	var rows []models.LedgerEntryModel
	query := applyPaging(r.applyFilter(r.db.WithContext(ctx).Model(&models.LedgerEntryModel{}), filter),
		filter.Filter, LedgerEntrySortFields, "created_at", "DESC")
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return entriesToDomain(rows), nil
}

// Count counts ledger entries matching the filter
func (r *GormLedgerEntryRepository) Count(ctx context.Context, filter cash.LedgerEntryFilter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.LedgerEntryModel{}), filter).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormLedgerEntryRepository) applyFilter(query *gorm.DB, filter cash.LedgerEntryFilter) *gorm.DB {
	if filter.SessionID != nil {
		query = query.Where("session_id = ?", *filter.SessionID)
	}
	if filter.Unsessioned {
		query = query.Where("session_id IS NULL")
	}
	if filter.BranchID != nil {
		query = query.Where("branch_id = ?", *filter.BranchID)
	}
	if filter.RegisterID != nil {
		query = query.Where("register_id = ?", *filter.RegisterID)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.PaymentMethod != nil {
		query = query.Where("payment_method = ?", *filter.PaymentMethod)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at < ?", *filter.To)
	}
	return query
}

func entriesToDomain(rows []models.LedgerEntryModel) []cash.LedgerEntry {
	entries := make([]cash.LedgerEntry, len(rows))
	for i := range rows {
		entries[i] = *rows[i].ToDomain()
	}
	return entries
}

var _ cash.LedgerEntryRepository = (*GormLedgerEntryRepository)(nil)
