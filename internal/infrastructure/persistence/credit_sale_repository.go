package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/ferreteria/backend/internal/domain/cash"
	"github.com/ferreteria/backend/internal/domain/shared"
	"github.com/ferreteria/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCreditSaleRepository implements CreditSaleRepository using GORM.
// Installments are persisted with their sale and always loaded in payment order.
type GormCreditSaleRepository struct {
	db *gorm.DB
}

// NewGormCreditSaleRepository creates a new GormCreditSaleRepository
func NewGormCreditSaleRepository(db *gorm.DB) *GormCreditSaleRepository {
	return &GormCreditSaleRepository{db: db}
}

func orderedInstallments(db *gorm.DB) *gorm.DB {
	return db.Order("payment_number ASC")
}

// FindByID finds a credit sale with its installments
func (r *GormCreditSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*cash.CreditSale, error) {
	return r.findOne(r.db.WithContext(ctx), id, "id = ?", id)
}

// FindBySaleID finds the credit sale created for a sale
func (r *GormCreditSaleRepository) FindBySaleID(ctx context.Context, saleID uuid.UUID) (*cash.CreditSale, error) {
	return r.findOne(r.db.WithContext(ctx), saleID, "sale_id = ?", saleID)
}

// FindByInstallmentIDForUpdate finds the sale owning an installment and locks the sale row
func (r *GormCreditSaleRepository) FindByInstallmentIDForUpdate(ctx context.Context, installmentID uuid.UUID) (*cash.CreditSale, error) {
	var inst models.InstallmentPaymentModel
	if err := r.db.WithContext(ctx).
		Select("id", "credit_sale_id").
		First(&inst, "id = ?", installmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, cash.NewNotFoundError("Installment", installmentID)
		}
		return nil, err
	}
	return r.findOne(r.db.WithContext(ctx).Clauses(forUpdate()), installmentID, "id = ?", inst.CreditSaleID)
}

func (r *GormCreditSaleRepository) findOne(query *gorm.DB, lookupID uuid.UUID, cond string, arg any) (*cash.CreditSale, error) {
	var model models.CreditSaleModel
	if err := query.
		Preload("Installments", orderedInstallments).
		Where(cond, arg).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, cash.NewNotFoundError("CreditSale", lookupID)
		}
		if isLockFailure(err) {
			return nil, cash.NewConcurrencyConflictError("CreditSale", lookupID)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ExistsBySaleID checks whether a sale already has a credit schedule
func (r *GormCreditSaleRepository) ExistsBySaleID(ctx context.Context, saleID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.CreditSaleModel{}).
		Where("sale_id = ?", saleID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindOverdueInstallments finds unpaid installments due before the as-of day
func (r *GormCreditSaleRepository) FindOverdueInstallments(ctx context.Context, asOf time.Time, filter cash.InstallmentFilter) ([]cash.InstallmentPayment, error) {
	var rows []models.InstallmentPaymentModel
	query := r.overdueQuery(ctx, asOf, filter)

	field := ValidateSortField(filter.OrderBy, InstallmentSortFields, "due_date")
	dir := ValidateSortOrder(filter.OrderDir)
	if filter.OrderDir == "" {
		dir = "ASC"
	}
	query = query.
		Select("installment_payments.*").
		Order("installment_payments." + field + " " + dir).
		Order("installment_payments.payment_number ASC").
		Order("installment_payments.id ASC")
	if filter.PageSize > 0 {
		query = query.Limit(min(filter.PageSize, maxPageSize)).Offset(filter.Offset())
	}

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	installments := make([]cash.InstallmentPayment, len(rows))
	for i := range rows {
		installments[i] = *rows[i].ToDomain()
	}
	return installments, nil
}

// CountOverdueInstallments counts unpaid installments due before the as-of day
func (r *GormCreditSaleRepository) CountOverdueInstallments(ctx context.Context, asOf time.Time, filter cash.InstallmentFilter) (int64, error) {
	var count int64
	if err := r.overdueQuery(ctx, asOf, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormCreditSaleRepository) overdueQuery(ctx context.Context, asOf time.Time, filter cash.InstallmentFilter) *gorm.DB {
	query := r.db.WithContext(ctx).
		Model(&models.InstallmentPaymentModel{}).
		Where("installment_payments.status <> ? AND installment_payments.due_date < ?",
			cash.InstallmentStatusPaid, cash.DateOnly(asOf))
	if filter.BranchID != nil {
		query = query.Where("installment_payments.branch_id = ?", *filter.BranchID)
	}
	if filter.CustomerID != nil {
		query = query.
			Joins("JOIN credit_sales ON credit_sales.id = installment_payments.credit_sale_id").
			Where("credit_sales.customer_id = ?", *filter.CustomerID)
	}
	return query
}

// Create inserts a credit sale together with its installments
func (r *GormCreditSaleRepository) Create(ctx context.Context, sale *cash.CreditSale) error {
	if err := r.db.WithContext(ctx).Create(models.CreditSaleModelFromDomain(sale)).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.NewDomainError(cash.CodeDuplicateSale, "Sale already has a credit schedule")
		}
		return err
	}
	return nil
}

// SaveWithLock saves the sale with optimistic locking (checks version) and
// writes back the payment state of every installment
func (r *GormCreditSaleRepository) SaveWithLock(ctx context.Context, sale *cash.CreditSale) error {
	model := models.CreditSaleModelFromDomain(sale)
	db := r.db.WithContext(ctx)

	result := db.Model(&models.CreditSaleModel{}).
		Where("id = ? AND version = ?", sale.ID, sale.Version-1).
		Updates(map[string]any{
			"remaining_balance": sale.RemainingBalance,
			"version":           sale.Version,
			"updated_at":        sale.UpdatedAt,
		})
	if result.Error != nil {
		if isLockFailure(result.Error) {
			return cash.NewConcurrencyConflictError("CreditSale", sale.ID)
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return cash.NewConcurrencyConflictError("CreditSale", sale.ID)
	}

	for i := range model.Installments {
		inst := &model.Installments[i]
		if err := db.Model(&models.InstallmentPaymentModel{}).
			Where("id = ?", inst.ID).
			Updates(map[string]any{
				"paid_amount":         inst.PaidAmount,
				"received_amount":     inst.ReceivedAmount,
				"change_amount":       inst.ChangeAmount,
				"status":              inst.Status,
				"last_payment_method": inst.LastPaymentMethod,
				"paid_date":           inst.PaidDate,
				"updated_at":          inst.UpdatedAt,
			}).Error; err != nil {
			return err
		}
	}
	return nil
}

var _ cash.CreditSaleRepository = (*GormCreditSaleRepository)(nil)
