package cash

import (
	"context"
	"time"

	"github.com/ferreteria/backend/internal/domain/cash"
	"github.com/ferreteria/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreditService manages credit sale schedules and installment payments
type CreditService struct {
	eventPublishing
	scope      TransactionScope
	creditRepo cash.CreditSaleRepository
	writer     ledgerWriter
	opts       Options
	logger     *zap.Logger
	now        func() time.Time
}

// NewCreditService creates a new CreditService
func NewCreditService(scope TransactionScope, creditRepo cash.CreditSaleRepository, opts Options, logger *zap.Logger) *CreditService {
	opts = opts.normalized()
	return &CreditService{
		eventPublishing: eventPublishing{logger: loggerOrNop(logger)},
		scope:           scope,
		creditRepo:      creditRepo,
		writer:          ledgerWriter{policy: opts.LedgerPolicy},
		opts:            opts,
		logger:          loggerOrNop(logger),
		now:             time.Now,
	}
}

// CreateSchedule generates and stores the installment schedule of a credit sale.
// Each sale gets at most one schedule.
func (s *CreditService) CreateSchedule(ctx context.Context, branchID uuid.UUID, req CreateScheduleRequest) (*CreditSaleResponse, error) {
	params := s.scheduleParams(branchID, req)

	var sale *cash.CreditSale
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		sale, err = s.createSchedule(ctx, repos, params)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, sale)
	resp := toCreditSaleResponse(sale, s.now())
	return &resp, nil
}

// RegisterCreditSale stores the schedule and, for a cash initial payment, books
// it as a SALE ledger entry in the same transaction. Either both are written or neither.
func (s *CreditService) RegisterCreditSale(ctx context.Context, branchID uuid.UUID, req RegisterCreditSaleRequest) (*CreditSaleResponse, error) {
	params := s.scheduleParams(branchID, req.CreateScheduleRequest)
	method := cash.PaymentMethod(req.InitialPaymentMethod)
	if method == "" {
		method = cash.PaymentMethodCash
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError(cash.CodeInvalidPaymentMethod, "Unknown payment method: "+string(method))
	}

	var (
		sale  *cash.CreditSale
		entry *cash.LedgerEntry
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		sale, err = s.createSchedule(ctx, repos, params)
		if err != nil {
			return err
		}
		// Card and transfer down payments never reach the drawer
		if !sale.InitialPayment.IsPositive() || !method.IsCash() {
			return nil
		}

		saleID, creditSaleID := sale.SaleID, sale.ID
		entry, err = s.writer.appendToBranch(ctx, repos, branchID, req.RegisterID, cash.NewLedgerEntryParams{
			Type:          cash.EntryTypeSale,
			Amount:        sale.InitialPayment,
			PaymentMethod: method,
			Reference:     cash.Reference{SaleID: &saleID, CreditSaleID: &creditSaleID},
			Description:   "Cuota inicial de venta al crédito",
			RecordedBy:    req.CreatedBy,
		}, false)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, sale)
	resp := toCreditSaleResponse(sale, s.now())
	if entry != nil {
		s.publish(ctx, cash.NewLedgerEntryRecordedEvent(entry))
		id := entry.ID
		resp.InitialEntryID = &id
	}
	return &resp, nil
}

func (s *CreditService) scheduleParams(branchID uuid.UUID, req CreateScheduleRequest) cash.ScheduleParams {
	saleDate := s.now()
	if req.SaleDate != nil {
		saleDate = *req.SaleDate
	}
	params := cash.ScheduleParams{
		BranchID:         branchID,
		SaleID:           req.SaleID,
		CustomerID:       req.CustomerID,
		SaleDate:         saleDate,
		Total:            req.Total,
		InitialPayment:   req.InitialPayment,
		InstallmentCount: req.InstallmentCount,
		CreditDays:       req.CreditDays,
	}
	if req.CreatedBy != nil {
		params.CreatedBy = *req.CreatedBy
	}
	return params
}

func (s *CreditService) createSchedule(ctx context.Context, repos TransactionalRepositories, params cash.ScheduleParams) (*cash.CreditSale, error) {
	sale, err := cash.CreateSchedule(params)
	if err != nil {
		return nil, err
	}
	exists, err := repos.CreditSales().ExistsBySaleID(ctx, params.SaleID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError(cash.CodeDuplicateSale, "Sale already has a credit schedule")
	}
	if err := repos.CreditSales().Create(ctx, sale); err != nil {
		return nil, err
	}
	return sale, nil
}

// ApplyPayment applies a received amount to an installment of the branch.
// The owning sale is locked for update. A cash payment also books a
// CREDIT_PAYMENT entry for the applied amount into the branch's open session;
// the change handed back never touches the drawer.
func (s *CreditService) ApplyPayment(ctx context.Context, branchID, installmentID uuid.UUID, req ApplyPaymentRequest) (*PaymentResponse, error) {
	method := cash.PaymentMethod(req.PaymentMethod)

	var (
		sale   *cash.CreditSale
		result *cash.PaymentResult
		entry  *cash.LedgerEntry
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		sale, err = repos.CreditSales().FindByInstallmentIDForUpdate(ctx, installmentID)
		if err != nil {
			return err
		}
		if sale.BranchID != branchID {
			return cash.NewNotFoundError("Installment", installmentID)
		}

		result, err = sale.ApplyPayment(installmentID, req.ReceivedAmount, method, s.opts.PaymentMode)
		if err != nil {
			return err
		}

		if method.IsCash() {
			saleID, creditSaleID, instID := sale.SaleID, sale.ID, installmentID
			entry, err = s.writer.appendToBranch(ctx, repos, branchID, req.RegisterID, cash.NewLedgerEntryParams{
				Type:          cash.EntryTypeCreditPayment,
				Amount:        result.Applied,
				PaymentMethod: method,
				Reference:     cash.Reference{SaleID: &saleID, CreditSaleID: &creditSaleID, InstallmentID: &instID},
				Description:   "Pago de cuota",
				RecordedBy:    req.RecordedBy,
			}, false)
			if err != nil {
				return err
			}
		}
		return repos.CreditSales().SaveWithLock(ctx, sale)
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, sale)
	resp := &PaymentResponse{
		Installment:          toInstallmentResponse(&result.Installment, s.now()),
		Received:             result.Received,
		Applied:              result.Applied,
		Change:               result.Change,
		PaymentMethod:        string(result.PaymentMethod),
		FullyPaid:            result.FullyPaid,
		SaleSettled:          result.SaleSettled,
		SaleRemainingBalance: sale.RemainingBalance,
	}
	if entry != nil {
		s.publish(ctx, cash.NewLedgerEntryRecordedEvent(entry))
		id := entry.ID
		resp.LedgerEntryID = &id
	}

	s.logger.Info("installment payment applied",
		zap.String("branch_id", branchID.String()),
		zap.String("credit_sale_id", sale.ID.String()),
		zap.String("installment_id", installmentID.String()),
		zap.String("applied", result.Applied.StringFixed(2)),
		zap.String("change", result.Change.StringFixed(2)),
		zap.Bool("sale_settled", result.SaleSettled),
	)
	return resp, nil
}

// GetCreditSale returns a credit sale of the branch with installment statuses as of now
func (s *CreditService) GetCreditSale(ctx context.Context, branchID, id uuid.UUID) (*CreditSaleResponse, error) {
	sale, err := s.creditRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale.BranchID != branchID {
		return nil, cash.NewNotFoundError("CreditSale", id)
	}
	resp := toCreditSaleResponse(sale, s.now())
	return &resp, nil
}

// GetBySaleID returns the credit schedule of a sale
func (s *CreditService) GetBySaleID(ctx context.Context, branchID, saleID uuid.UUID) (*CreditSaleResponse, error) {
	sale, err := s.creditRepo.FindBySaleID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if sale.BranchID != branchID {
		return nil, cash.NewNotFoundError("CreditSale", saleID)
	}
	resp := toCreditSaleResponse(sale, s.now())
	return &resp, nil
}

// ListOverdue returns unpaid installments whose due date is before the as-of day
func (s *CreditService) ListOverdue(ctx context.Context, branchID uuid.UUID, filter OverdueListFilter) ([]InstallmentResponse, int64, error) {
	asOf := s.now()
	if filter.AsOf != nil {
		asOf = *filter.AsOf
	}
	domainFilter := cash.InstallmentFilter{
		Filter:   pageFilter(filter.Page, filter.PageSize),
		BranchID: &branchID,
	}
	domainFilter.OrderBy = "due_date"
	domainFilter.OrderDir = "asc"

	var err error
	if domainFilter.CustomerID, err = parseOptionalUUID("customer_id", filter.CustomerID); err != nil {
		return nil, 0, err
	}

	installments, err := s.creditRepo.FindOverdueInstallments(ctx, asOf, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.creditRepo.CountOverdueInstallments(ctx, asOf, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	out := make([]InstallmentResponse, len(installments))
	for i := range installments {
		out[i] = toInstallmentResponse(&installments[i], asOf)
	}
	return out, total, nil
}
