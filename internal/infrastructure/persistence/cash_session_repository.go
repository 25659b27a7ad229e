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

// GormCashSessionRepository implements CashSessionRepository using GORM
type GormCashSessionRepository struct {
	db *gorm.DB
}

// NewGormCashSessionRepository creates a new GormCashSessionRepository
func NewGormCashSessionRepository(db *gorm.DB) *GormCashSessionRepository {
	return &GormCashSessionRepository{db: db}
}

// FindByID finds a session by ID without locking
func (r *GormCashSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*cash.CashSession, error) {
	return r.findByID(ctx, id, nil)
}

// FindByIDForUpdate finds a session and locks its row exclusively until the transaction ends
func (r *GormCashSessionRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*cash.CashSession, error) {
	return r.findByID(ctx, id, forUpdate())
}

// FindByIDForShare finds a session and holds a shared lock on its row until the transaction ends
func (r *GormCashSessionRepository) FindByIDForShare(ctx context.Context, id uuid.UUID) (*cash.CashSession, error) {
	return r.findByID(ctx, id, forShare())
}

func (r *GormCashSessionRepository) findByID(ctx context.Context, id uuid.UUID, lock clause.Expression) (*cash.CashSession, error) {
	query := r.db.WithContext(ctx)
	if lock != nil {
		query = query.Clauses(lock)
	}

	var model models.CashSessionModel
	if err := query.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, cash.NewNotFoundError("CashSession", id)
		}
		if isLockFailure(err) {
			return nil, cash.NewConcurrencyConflictError("CashSession", id)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindOpenByRegister finds the open session of a register
func (r *GormCashSessionRepository) FindOpenByRegister(ctx context.Context, registerID uuid.UUID) (*cash.CashSession, error) {
	var model models.CashSessionModel
	if err := r.db.WithContext(ctx).
		Where("register_id = ? AND status = ?", registerID, cash.SessionStatusOpen).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, cash.NewNotFoundError("CashSession", registerID)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindOpenByBranch finds the open sessions of a branch, principal registers first and oldest first
func (r *GormCashSessionRepository) FindOpenByBranch(ctx context.Context, branchID uuid.UUID) ([]cash.CashSession, error) {
	var rows []models.CashSessionModel
	if err := r.db.WithContext(ctx).
		Model(&models.CashSessionModel{}).
		Select("cash_sessions.*").
		Joins("JOIN cash_registers ON cash_registers.id = cash_sessions.register_id").
		Where("cash_sessions.branch_id = ? AND cash_sessions.status = ?", branchID, cash.SessionStatusOpen).
		Order("CASE WHEN cash_registers.type = '" + string(cash.RegisterTypePrincipal) + "' THEN 0 ELSE 1 END").
		Order("cash_sessions.opened_at ASC").
		Order("cash_sessions.id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return sessionsToDomain(rows), nil
}

// FindAll finds sessions matching the filter
func (r *GormCashSessionRepository) FindAll(ctx context.Context, filter cash.SessionFilter) ([]cash.CashSession, error) {
	var rows []models.CashSessionModel
	query := applyPaging(r.applyFilter(r.db.WithContext(ctx).Model(&models.CashSessionModel{}), filter),
		filter.Filter, CashSessionSortFields, "opened_at", "DESC")
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return sessionsToDomain(rows), nil
}

// Count counts sessions matching the filter
func (r *GormCashSessionRepository) Count(ctx context.Context, filter cash.SessionFilter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.CashSessionModel{}), filter).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create inserts a new session. The partial unique index on open sessions
// turns a lost race between two openers into ALREADY_OPEN.
func (r *GormCashSessionRepository) Create(ctx context.Context, session *cash.CashSession) error {
	if err := r.db.WithContext(ctx).Create(models.CashSessionModelFromDomain(session)).Error; err != nil {
		if isUniqueViolation(err) {
			return cash.NewAlreadyOpenError(session.RegisterID)
		}
		return err
	}
	return nil
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormCashSessionRepository) SaveWithLock(ctx context.Context, session *cash.CashSession) error {
	result := r.db.WithContext(ctx).
		Model(&models.CashSessionModel{}).
		Where("id = ? AND version = ?", session.ID, session.Version-1).
		Updates(map[string]any{
			"status":           session.Status,
			"closed_at":        session.ClosedAt,
			"closed_by":        session.ClosedBy,
			"expected_balance": session.ExpectedBalance,
			"actual_balance":   session.ActualBalance,
			"difference":       session.Difference,
			"deviation_pct":    session.DeviationPct,
			"deviation_level":  session.DeviationLevel,
			"closing_notes":    session.ClosingNotes,
			"version":          session.Version,
			"updated_at":       session.UpdatedAt,
		})
	if result.Error != nil {
		if isLockFailure(result.Error) {
			return cash.NewConcurrencyConflictError("CashSession", session.ID)
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return cash.NewConcurrencyConflictError("CashSession", session.ID)
	}
	return nil
}

func (r *GormCashSessionRepository) applyFilter(query *gorm.DB, filter cash.SessionFilter) *gorm.DB {
	if filter.BranchID != nil {
		query = query.Where("branch_id = ?", *filter.BranchID)
	}
	if filter.RegisterID != nil {
		query = query.Where("register_id = ?", *filter.RegisterID)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.OpenedFrom != nil {
		query = query.Where("opened_at >= ?", *filter.OpenedFrom)
	}
	if filter.OpenedTo != nil {
		query = query.Where("opened_at < ?", *filter.OpenedTo)
	}
	return query
}

func sessionsToDomain(rows []models.CashSessionModel) []cash.CashSession {
	sessions := make([]cash.CashSession, len(rows))
	for i := range rows {
		sessions[i] = *rows[i].ToDomain()
	}
	return sessions
}

var _ cash.CashSessionRepository = (*GormCashSessionRepository)(nil)
