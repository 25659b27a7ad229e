package cash

import (
	"bytes"
	"context"

	"github.com/ferreteria/backend/internal/domain/cash"
	"github.com/ferreteria/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TransferService moves cash between registers
type TransferService struct {
	eventPublishing
	scope        TransactionScope
	transferRepo cash.CashTransferRepository
	logger       *zap.Logger
}

// NewTransferService creates a new TransferService
func NewTransferService(scope TransactionScope, transferRepo cash.CashTransferRepository, logger *zap.Logger) *TransferService {
	return &TransferService{
		eventPublishing: eventPublishing{logger: loggerOrNop(logger)},
		scope:           scope,
		transferRepo:    transferRepo,
		logger:          loggerOrNop(logger),
	}
}

// Create requests a transfer from a register of the branch to any active register
func (s *TransferService) Create(ctx context.Context, branchID, requestedBy uuid.UUID, req CreateTransferRequest) (*TransferResponse, error) {
	var transfer *cash.CashTransfer
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		source, err := repos.Registers().FindByID(ctx, req.SourceRegisterID)
		if err != nil {
			return err
		}
		if source.BranchID != branchID {
			return cash.NewNotFoundError("CashRegister", req.SourceRegisterID)
		}
		destination, err := repos.Registers().FindByID(ctx, req.DestinationRegisterID)
		if err != nil {
			return err
		}

		transfer, err = cash.NewCashTransfer(source, destination, req.Amount, requestedBy, req.Notes)
		if err != nil {
			return err
		}
		return repos.Transfers().Save(ctx, transfer)
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, transfer)
	resp := toTransferResponse(transfer)
	return &resp, nil
}

// Complete books TRANSFER_OUT and TRANSFER_IN into the open sessions of both
// registers. Both sessions are share-locked in id order so two transfers in
// opposite directions cannot deadlock.
func (s *TransferService) Complete(ctx context.Context, branchID, transferID, completedBy uuid.UUID) (*TransferResponse, error) {
	var (
		transfer *cash.CashTransfer
		out, in  *cash.LedgerEntry
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		transfer, err = s.findForUpdate(ctx, repos, branchID, transferID)
		if err != nil {
			return err
		}
		if transfer.Status != cash.TransferStatusPending {
			return cash.NewNotPendingError("Cash transfer", transfer.ID, string(transfer.Status))
		}

		source, err := findOpenSession(ctx, repos.Sessions(), transfer.SourceRegisterID)
		if err != nil {
			return err
		}
		destination, err := findOpenSession(ctx, repos.Sessions(), transfer.DestinationRegisterID)
		if err != nil {
			return err
		}
		source, destination, err = lockPair(ctx, repos.Sessions(), source, destination)
		if err != nil {
			return err
		}

		out, in, err = transfer.Complete(source, destination, completedBy)
		if err != nil {
			return err
		}
		if err := repos.Ledger().Append(ctx, out); err != nil {
			return err
		}
		if err := repos.Ledger().Append(ctx, in); err != nil {
			return err
		}
		return repos.Transfers().SaveWithLock(ctx, transfer)
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, transfer)
	s.publish(ctx, cash.NewLedgerEntryRecordedEvent(out), cash.NewLedgerEntryRecordedEvent(in))
	s.logger.Info("cash transfer completed",
		zap.String("transfer_id", transfer.ID.String()),
		zap.String("source_register_id", transfer.SourceRegisterID.String()),
		zap.String("destination_register_id", transfer.DestinationRegisterID.String()),
		zap.String("amount", transfer.Amount.StringFixed(2)),
	)

	resp := toTransferResponse(transfer)
	return &resp, nil
}

// Cancel abandons a pending transfer
func (s *TransferService) Cancel(ctx context.Context, branchID, transferID uuid.UUID, req CancelTransferRequest) (*TransferResponse, error) {
	var transfer *cash.CashTransfer
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		transfer, err = s.findForUpdate(ctx, repos, branchID, transferID)
		if err != nil {
			return err
		}
		if err := transfer.Cancel(req.Reason); err != nil {
			return err
		}
		return repos.Transfers().SaveWithLock(ctx, transfer)
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, transfer)
	resp := toTransferResponse(transfer)
	return &resp, nil
}

// GetByID returns a transfer visible to the branch on either side
func (s *TransferService) GetByID(ctx context.Context, branchID, id uuid.UUID) (*TransferResponse, error) {
	transfer, err := s.transferRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !visibleTo(transfer, branchID) {
		return nil, cash.NewNotFoundError("CashTransfer", id)
	}
	resp := toTransferResponse(transfer)
	return &resp, nil
}

// List lists transfers leaving or entering the branch
func (s *TransferService) List(ctx context.Context, branchID uuid.UUID, filter TransferListFilter) ([]TransferResponse, int64, error) {
	domainFilter := cash.TransferFilter{
		Filter:   pageFilter(filter.Page, filter.PageSize),
		BranchID: &branchID,
		From:     filter.From,
		To:       filter.To,
	}

	var err error
	if domainFilter.RegisterID, err = parseOptionalUUID("register_id", filter.RegisterID); err != nil {
		return nil, 0, err
	}
	if filter.Status != "" {
		status := cash.TransferStatus(filter.Status)
		if !status.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_FILTER", "Unknown transfer status: "+filter.Status)
		}
		domainFilter.Status = &status
	}

	transfers, err := s.transferRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.transferRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	out := make([]TransferResponse, len(transfers))
	for i := range transfers {
		out[i] = toTransferResponse(&transfers[i])
	}
	return out, total, nil
}

func (s *TransferService) findForUpdate(ctx context.Context, repos TransactionalRepositories, branchID, id uuid.UUID) (*cash.CashTransfer, error) {
	transfer, err := repos.Transfers().FindByIDForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if !visibleTo(transfer, branchID) {
		return nil, cash.NewNotFoundError("CashTransfer", id)
	}
	return transfer, nil
}

func visibleTo(t *cash.CashTransfer, branchID uuid.UUID) bool {
	return t.BranchID == branchID || t.DestinationBranchID == branchID
}

// findOpenSession returns nil without error when the register has no open session
func findOpenSession(ctx context.Context, sessions cash.CashSessionRepository, registerID uuid.UUID) (*cash.CashSession, error) {
	session, err := sessions.FindOpenByRegister(ctx, registerID)
	if err != nil {
		if cash.IsErrorCode(err, cash.CodeNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return session, nil
}

// lockPair re-reads both sessions under a shared lock, lowest id first
func lockPair(ctx context.Context, sessions cash.CashSessionRepository, a, b *cash.CashSession) (*cash.CashSession, *cash.CashSession, error) {
	if a == nil || b == nil {
		return a, b, nil
	}
	first, second := a, b
	swapped := bytes.Compare(a.ID[:], b.ID[:]) > 0
	if swapped {
		first, second = b, a
	}

	lockedFirst, err := sessions.FindByIDForShare(ctx, first.ID)
	if err != nil {
		return nil, nil, err
	}
	lockedSecond, err := sessions.FindByIDForShare(ctx, second.ID)
	if err != nil {
		return nil, nil, err
	}
	if swapped {
		return lockedSecond, lockedFirst, nil
	}
	return lockedFirst, lockedSecond, nil
}
