package cash

import (
	"context"
	"strings"

	"github.com/ferreteria/backend/internal/domain/cash"
	"github.com/ferreteria/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RegisterService manages the cash registers of a branch
type RegisterService struct {
	eventPublishing
	registerRepo cash.CashRegisterRepository
	sessionRepo  cash.CashSessionRepository
	logger       *zap.Logger
}

// NewRegisterService creates a new RegisterService
func NewRegisterService(registerRepo cash.CashRegisterRepository, sessionRepo cash.CashSessionRepository, logger *zap.Logger) *RegisterService {
	return &RegisterService{
		eventPublishing: eventPublishing{logger: loggerOrNop(logger)},
		registerRepo:    registerRepo,
		sessionRepo:     sessionRepo,
		logger:          loggerOrNop(logger),
	}
}

// Create creates a new cash register in the branch
func (s *RegisterService) Create(ctx context.Context, branchID uuid.UUID, req CreateRegisterRequest) (*RegisterResponse, error) {
	register, err := cash.NewCashRegister(branchID, req.Name, cash.RegisterType(req.Type), req.SuggestedOpeningBalance)
	if err != nil {
		return nil, err
	}
	register.Description = strings.TrimSpace(req.Description)
	register.CreatedBy = req.CreatedBy

	if err := s.registerRepo.Save(ctx, register); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, register)

	resp := toRegisterResponse(register)
	return &resp, nil
}

// Update changes a register's name, type and suggested opening balance
func (s *RegisterService) Update(ctx context.Context, branchID, id uuid.UUID, req UpdateRegisterRequest) (*RegisterResponse, error) {
	register, err := s.findForBranch(ctx, branchID, id)
	if err != nil {
		return nil, err
	}
	if err := register.Update(req.Name, cash.RegisterType(req.Type), req.SuggestedOpeningBalance, req.Description); err != nil {
		return nil, err
	}
	if err := s.registerRepo.SaveWithLock(ctx, register); err != nil {
		return nil, err
	}

	resp := toRegisterResponse(register)
	return &resp, nil
}

// Deactivate soft-deletes a register. A register with an open session cannot be deactivated.
func (s *RegisterService) Deactivate(ctx context.Context, branchID, id uuid.UUID) error {
	register, err := s.findForBranch(ctx, branchID, id)
	if err != nil {
		return err
	}

	open, err := s.sessionRepo.FindOpenByRegister(ctx, id)
	if err != nil && !cash.IsErrorCode(err, cash.CodeNotFound) {
		return err
	}
	if open != nil {
		return shared.NewDomainError(cash.CodeRegisterHasOpenSession, "Close the open session before deactivating the register")
	}

	if err := register.Deactivate(); err != nil {
		return err
	}
	if err := s.registerRepo.SaveWithLock(ctx, register); err != nil {
		return err
	}
	s.publishDomainEvents(ctx, register)

	s.logger.Info("cash register deactivated",
		zap.String("branch_id", branchID.String()),
		zap.String("register_id", id.String()),
	)
	return nil
}

// GetByID returns a register of the branch, including deactivated ones
func (s *RegisterService) GetByID(ctx context.Context, branchID, id uuid.UUID) (*RegisterResponse, error) {
	register, err := s.findForBranch(ctx, branchID, id)
	if err != nil {
		return nil, err
	}
	resp := toRegisterResponse(register)
	return &resp, nil
}

// List lists the registers of the branch
func (s *RegisterService) List(ctx context.Context, branchID uuid.UUID, filter RegisterListFilter) ([]RegisterResponse, int64, error) {
	domainFilter := cash.RegisterFilter{
		Filter:         pageFilter(filter.Page, filter.PageSize),
		BranchID:       &branchID,
		Search:         strings.TrimSpace(filter.Search),
		IncludeDeleted: filter.IncludeDeleted,
	}
	if filter.Type != "" {
		t := cash.RegisterType(filter.Type)
		if !t.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_FILTER", "Unknown register type: "+filter.Type)
		}
		domainFilter.Type = &t
	}

	registers, err := s.registerRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.registerRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	out := make([]RegisterResponse, len(registers))
	for i := range registers {
		out[i] = toRegisterResponse(&registers[i])
	}
	return out, total, nil
}

func (s *RegisterService) findForBranch(ctx context.Context, branchID, id uuid.UUID) (*cash.CashRegister, error) {
	register, err := s.registerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if register.BranchID != branchID {
		return nil, cash.NewNotFoundError("CashRegister", id)
	}
	return register, nil
}
