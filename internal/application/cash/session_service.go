package cash

import (
	"context"

	"github.com/ferreteria/backend/internal/domain/cash"
	"github.com/ferreteria/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionService opens and closes cash sessions
type SessionService struct {
	eventPublishing
	scope       TransactionScope
	sessionRepo cash.CashSessionRepository
	ledgerRepo  cash.LedgerEntryRepository
	opts        Options
	logger      *zap.Logger
}

// NewSessionService creates a new SessionService
func NewSessionService(
	scope TransactionScope,
	sessionRepo cash.CashSessionRepository,
	ledgerRepo cash.LedgerEntryRepository,
	opts Options,
	logger *zap.Logger,
) *SessionService {
	return &SessionService{
		eventPublishing: eventPublishing{logger: loggerOrNop(logger)},
		scope:           scope,
		sessionRepo:     sessionRepo,
		ledgerRepo:      ledgerRepo,
		opts:            opts.normalized(),
		logger:          loggerOrNop(logger),
	}
}

// Open starts a session on a register of the branch.
// Fails with ALREADY_OPEN if the register already has an open session.
func (s *SessionService) Open(ctx context.Context, branchID, userID uuid.UUID, req OpenSessionRequest) (*SessionResponse, error) {
	var session *cash.CashSession
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		register, err := repos.Registers().FindByID(ctx, req.RegisterID)
		if err != nil {
			return err
		}
		if register.BranchID != branchID {
			return cash.NewNotFoundError("CashRegister", req.RegisterID)
		}

		existing, err := repos.Sessions().FindOpenByRegister(ctx, register.ID)
		if err != nil && !cash.IsErrorCode(err, cash.CodeNotFound) {
			return err
		}
		if existing != nil {
			return cash.NewAlreadyOpenError(register.ID)
		}

		session, err = cash.OpenSession(register, userID, req.OpeningBalance, req.Notes)
		if err != nil {
			return err
		}
		// The unique open-session index settles a race the check above lost
		return repos.Sessions().Create(ctx, session)
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, session)
	s.logger.Info("cash session opened",
		zap.String("branch_id", branchID.String()),
		zap.String("register_id", session.RegisterID.String()),
		zap.String("session_id", session.ID.String()),
		zap.String("opening_balance", session.OpeningBalance.StringFixed(2)),
	)

	resp := toSessionResponse(session)
	return &resp, nil
}

// Close performs the arqueo. The session row is locked for update so that no
// entry can be recorded between reading the ledger and storing the expected balance.
func (s *SessionService) Close(ctx context.Context, branchID, sessionID, userID uuid.UUID, req CloseSessionRequest) (*SessionResponse, error) {
	var session *cash.CashSession
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		session, err = repos.Sessions().FindByIDForUpdate(ctx, sessionID)
		if err != nil {
			return err
		}
		if session.BranchID != branchID {
			return cash.NewNotFoundError("CashSession", sessionID)
		}
		if session.Status.IsTerminal() {
			return cash.NewAlreadyClosedError(sessionID)
		}

		entries, err := repos.Ledger().FindBySession(ctx, sessionID)
		if err != nil {
			return err
		}
		if err := session.Close(cash.CloseParams{
			ClosedBy:      userID,
			ActualBalance: req.ActualBalance,
			Notes:         req.Notes,
			Entries:       entries,
			Thresholds:    s.opts.Thresholds,
		}); err != nil {
			return err
		}
		return repos.Sessions().SaveWithLock(ctx, session)
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, session)

	fields := []zap.Field{
		zap.String("branch_id", branchID.String()),
		zap.String("session_id", session.ID.String()),
		zap.String("expected", session.ExpectedBalance.StringFixed(2)),
		zap.String("actual", session.ActualBalance.StringFixed(2)),
		zap.String("difference", session.Difference.StringFixed(2)),
		zap.String("level", string(*session.DeviationLevel)),
	}
	if *session.DeviationLevel == cash.DeviationNormal {
		s.logger.Info("cash session closed", fields...)
	} else {
		s.logger.Warn("cash session closed with discrepancy", fields...)
	}

	resp := toSessionResponse(session)
	return &resp, nil
}

// GetByID returns a session of the branch
func (s *SessionService) GetByID(ctx context.Context, branchID, sessionID uuid.UUID) (*SessionResponse, error) {
	session, err := s.findForBranch(ctx, branchID, sessionID)
	if err != nil {
		return nil, err
	}
	resp := toSessionResponse(session)
	return &resp, nil
}

// GetCurrent returns the open session of a register
func (s *SessionService) GetCurrent(ctx context.Context, branchID, registerID uuid.UUID) (*SessionResponse, error) {
	session, err := s.sessionRepo.FindOpenByRegister(ctx, registerID)
	if err != nil {
		if cash.IsErrorCode(err, cash.CodeNotFound) {
			return nil, cash.NewNoOpenSessionError("register", registerID)
		}
		return nil, err
	}
	if session.BranchID != branchID {
		return nil, cash.NewNoOpenSessionError("register", registerID)
	}
	resp := toSessionResponse(session)
	return &resp, nil
}

// List lists sessions of the branch
func (s *SessionService) List(ctx context.Context, branchID uuid.UUID, filter SessionListFilter) ([]SessionResponse, int64, error) {
	domainFilter := cash.SessionFilter{
		Filter:     pageFilter(filter.Page, filter.PageSize),
		BranchID:   &branchID,
		OpenedFrom: filter.From,
		OpenedTo:   filter.To,
	}
	domainFilter.OrderBy = "opened_at"

	var err error
	if domainFilter.RegisterID, err = parseOptionalUUID("register_id", filter.RegisterID); err != nil {
		return nil, 0, err
	}
	if domainFilter.UserID, err = parseOptionalUUID("user_id", filter.UserID); err != nil {
		return nil, 0, err
	}
	if filter.Status != "" {
		status := cash.SessionStatus(filter.Status)
		if !status.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_FILTER", "Unknown session status: "+filter.Status)
		}
		domainFilter.Status = &status
	}

	sessions, err := s.sessionRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.sessionRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	out := make([]SessionResponse, len(sessions))
	for i := range sessions {
		out[i] = toSessionResponse(&sessions[i])
	}
	return out, total, nil
}

// ListEntries returns every ledger entry of a session in recording order
func (s *SessionService) ListEntries(ctx context.Context, branchID, sessionID uuid.UUID) ([]LedgerEntryResponse, error) {
	if _, err := s.findForBranch(ctx, branchID, sessionID); err != nil {
		return nil, err
	}
	entries, err := s.ledgerRepo.FindBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return toLedgerEntryResponses(entries), nil
}

func (s *SessionService) findForBranch(ctx context.Context, branchID, sessionID uuid.UUID) (*cash.CashSession, error) {
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.BranchID != branchID {
		return nil, cash.NewNotFoundError("CashSession", sessionID)
	}
	return session, nil
}
