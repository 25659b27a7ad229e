package cash

import (
	"context"

	"github.com/ferreteria/backend/internal/domain/cash"
	"github.com/ferreteria/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ExpenseService handles the expense approval workflow
type ExpenseService struct {
	eventPublishing
	scope       TransactionScope
	expenseRepo cash.ExpenseRepository
	writer      ledgerWriter
	logger      *zap.Logger
}

// NewExpenseService creates a new ExpenseService
func NewExpenseService(scope TransactionScope, expenseRepo cash.ExpenseRepository, opts Options, logger *zap.Logger) *ExpenseService {
	opts = opts.normalized()
	return &ExpenseService{
		eventPublishing: eventPublishing{logger: loggerOrNop(logger)},
		scope:           scope,
		expenseRepo:     expenseRepo,
		writer:          ledgerWriter{policy: opts.LedgerPolicy},
		logger:          loggerOrNop(logger),
	}
}

// Create registers a pending expense. Nothing is booked until approval.
func (s *ExpenseService) Create(ctx context.Context, branchID, requestedBy uuid.UUID, req CreateExpenseRequest) (*ExpenseResponse, error) {
	expense, err := cash.NewExpense(branchID, requestedBy, req.Amount, cash.PaymentMethod(req.PaymentMethod), req.Category, req.Description)
	if err != nil {
		return nil, err
	}
	if err := s.expenseRepo.Save(ctx, expense); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, expense)

	resp := toExpenseResponse(expense)
	return &resp, nil
}

// Approve approves a pending expense. A cash expense is booked as an EXPENSE
// entry in the branch's open session in the same transaction; without an open
// session the approval fails with NO_OPEN_SESSION and nothing changes.
func (s *ExpenseService) Approve(ctx context.Context, branchID, expenseID, approverID uuid.UUID, req ApproveExpenseRequest) (*ExpenseResponse, error) {
	var (
		expense *cash.Expense
		entry   *cash.LedgerEntry
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		expense, err = repos.Expenses().FindByIDForUpdate(ctx, expenseID)
		if err != nil {
			return err
		}
		if expense.BranchID != branchID {
			return cash.NewNotFoundError("Expense", expenseID)
		}
		if err := expense.Approve(approverID); err != nil {
			return err
		}

		if expense.RequiresCashEntry() {
			id := expense.ID
			approver := approverID
			entry, err = s.writer.appendToBranch(ctx, repos, branchID, req.RegisterID, cash.NewLedgerEntryParams{
				Type:          cash.EntryTypeExpense,
				Amount:        expense.Amount,
				PaymentMethod: expense.PaymentMethod,
				Reference:     cash.Reference{ExpenseID: &id},
				Description:   expense.Description,
				RecordedBy:    &approver,
			}, true)
			if err != nil {
				return err
			}
			expense.ChargeTo(entry)
		}
		return repos.Expenses().SaveWithLock(ctx, expense)
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, expense)
	if entry != nil {
		s.publish(ctx, cash.NewLedgerEntryRecordedEvent(entry))
	}

	resp := toExpenseResponse(expense)
	return &resp, nil
}

// Reject rejects a pending expense with a reason
func (s *ExpenseService) Reject(ctx context.Context, branchID, expenseID, approverID uuid.UUID, req RejectExpenseRequest) (*ExpenseResponse, error) {
	var expense *cash.Expense
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		expense, err = repos.Expenses().FindByIDForUpdate(ctx, expenseID)
		if err != nil {
			return err
		}
		if expense.BranchID != branchID {
			return cash.NewNotFoundError("Expense", expenseID)
		}
		if err := expense.Reject(approverID, req.Reason); err != nil {
			return err
		}
		return repos.Expenses().SaveWithLock(ctx, expense)
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, expense)
	resp := toExpenseResponse(expense)
	return &resp, nil
}

// GetByID returns an expense of the branch
func (s *ExpenseService) GetByID(ctx context.Context, branchID, id uuid.UUID) (*ExpenseResponse, error) {
	expense, err := s.expenseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if expense.BranchID != branchID {
		return nil, cash.NewNotFoundError("Expense", id)
	}
	resp := toExpenseResponse(expense)
	return &resp, nil
}

// List lists expenses of the branch
func (s *ExpenseService) List(ctx context.Context, branchID uuid.UUID, filter ExpenseListFilter) ([]ExpenseResponse, int64, error) {
	domainFilter := cash.ExpenseFilter{
		Filter:   pageFilter(filter.Page, filter.PageSize),
		BranchID: &branchID,
		From:     filter.From,
		To:       filter.To,
	}

	var err error
	if domainFilter.RequestedBy, err = parseOptionalUUID("requested_by", filter.RequestedBy); err != nil {
		return nil, 0, err
	}
	if filter.Status != "" {
		status := cash.ExpenseStatus(filter.Status)
		if !status.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_FILTER", "Unknown expense status: "+filter.Status)
		}
		domainFilter.Status = &status
	}
	if filter.PaymentMethod != "" {
		m := cash.PaymentMethod(filter.PaymentMethod)
		if !m.IsValid() {
			return nil, 0, shared.NewDomainError(cash.CodeInvalidPaymentMethod, "Unknown payment method: "+filter.PaymentMethod)
		}
		domainFilter.PaymentMethod = &m
	}

	expenses, err := s.expenseRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.expenseRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	out := make([]ExpenseResponse, len(expenses))
	for i := range expenses {
		out[i] = toExpenseResponse(&expenses[i])
	}
	return out, total, nil
}
