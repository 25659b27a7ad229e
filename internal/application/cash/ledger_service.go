package cash

import (
	"context"

	"github.com/ferreteria/backend/internal/domain/cash"
	"github.com/ferreteria/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LedgerService records money movements against cash sessions
type LedgerService struct {
	eventPublishing
	scope      TransactionScope
	ledgerRepo cash.LedgerEntryRepository
	writer     ledgerWriter
	logger     *zap.Logger
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(scope TransactionScope, ledgerRepo cash.LedgerEntryRepository, opts Options, logger *zap.Logger) *LedgerService {
	opts = opts.normalized()
	return &LedgerService{
		eventPublishing: eventPublishing{logger: loggerOrNop(logger)},
		scope:           scope,
		ledgerRepo:      ledgerRepo,
		writer:          ledgerWriter{policy: opts.LedgerPolicy},
		logger:          loggerOrNop(logger),
	}
}

// RecordEntry appends one entry to a session of the branch.
// The movement is validated before any storage is touched. A closed session
// fails with SESSION_CLOSED unless the ledger policy allows unsessioned entries.
func (s *LedgerService) RecordEntry(ctx context.Context, branchID uuid.UUID, req RecordEntryRequest) (*LedgerEntryResponse, error) {
	params := cash.NewLedgerEntryParams{
		Type:          cash.EntryType(req.Type),
		Amount:        req.Amount,
		Delta:         req.Delta,
		PaymentMethod: cash.PaymentMethod(req.PaymentMethod),
		Reference:     req.Reference.toDomain(),
		Description:   req.Description,
		RecordedBy:    req.RecordedBy,
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	var entry *cash.LedgerEntry
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		session, err := repos.Sessions().FindByID(ctx, req.SessionID)
		if err != nil {
			return err
		}
		if session.BranchID != branchID {
			return cash.NewNotFoundError("CashSession", req.SessionID)
		}
		entry, err = s.writer.appendToSession(ctx, repos, req.SessionID, params)
		return err
	})
	if err != nil {
		return nil, err
	}

	if !entry.IsSessioned() {
		s.logger.Warn("ledger entry recorded without a session",
			zap.String("branch_id", branchID.String()),
			zap.String("register_id", entry.RegisterID.String()),
			zap.String("entry_id", entry.ID.String()),
			zap.String("requested_session_id", req.SessionID.String()),
		)
	}
	s.publish(ctx, cash.NewLedgerEntryRecordedEvent(entry))

	resp := toLedgerEntryResponse(entry)
	return &resp, nil
}

// GetByID returns one ledger entry of the branch
func (s *LedgerService) GetByID(ctx context.Context, branchID, id uuid.UUID) (*LedgerEntryResponse, error) {
	entry, err := s.ledgerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry.BranchID != branchID {
		return nil, cash.NewNotFoundError("LedgerEntry", id)
	}
	resp := toLedgerEntryResponse(entry)
	return &resp, nil
}

// List lists ledger entries of the branch
func (s *LedgerService) List(ctx context.Context, branchID uuid.UUID, filter LedgerEntryListFilter) ([]LedgerEntryResponse, int64, error) {
	domainFilter, err := toLedgerEntryFilter(branchID, filter)
	if err != nil {
		return nil, 0, err
	}

	entries, err := s.ledgerRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.ledgerRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return toLedgerEntryResponses(entries), total, nil
}

func toLedgerEntryFilter(branchID uuid.UUID, filter LedgerEntryListFilter) (cash.LedgerEntryFilter, error) {
	domainFilter := cash.LedgerEntryFilter{
		Filter:      pageFilter(filter.Page, filter.PageSize),
		BranchID:    &branchID,
		Unsessioned: filter.Unsessioned,
		From:        filter.From,
		To:          filter.To,
	}

	var err error
	if domainFilter.SessionID, err = parseOptionalUUID("session_id", filter.SessionID); err != nil {
		return domainFilter, err
	}
	if domainFilter.RegisterID, err = parseOptionalUUID("register_id", filter.RegisterID); err != nil {
		return domainFilter, err
	}
	if filter.Type != "" {
		t := cash.EntryType(filter.Type)
		if !t.IsValid() {
			return domainFilter, shared.NewDomainError(cash.CodeInvalidEntryType, "Unknown ledger entry type: "+filter.Type)
		}
		domainFilter.Type = &t
	}
	if filter.PaymentMethod != "" {
		m := cash.PaymentMethod(filter.PaymentMethod)
		if !m.IsValid() {
			return domainFilter, shared.NewDomainError(cash.CodeInvalidPaymentMethod, "Unknown payment method: "+filter.PaymentMethod)
		}
		domainFilter.PaymentMethod = &m
	}
	return domainFilter, nil
}
