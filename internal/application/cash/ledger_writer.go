package cash

import (
	"context"

	"github.com/ferreteria/backend/internal/domain/cash"
	"github.com/ferreteria/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ledgerWriter books ledger entries inside a transaction.
// Every write first takes a shared lock on the target session and re-checks
// that it is still open, so an entry can never land in a session that a
// concurrent close has already counted.
type ledgerWriter struct {
	policy cash.LedgerPolicy
}

// appendToSession books an entry against an explicit session.
// Under allow_no_session a closed session degrades to an unsessioned entry
// on the same register instead of failing.
func (w ledgerWriter) appendToSession(ctx context.Context, repos TransactionalRepositories, sessionID uuid.UUID, p cash.NewLedgerEntryParams) (*cash.LedgerEntry, error) {
	session, err := repos.Sessions().FindByIDForShare(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	p.BranchID = session.BranchID
	p.RegisterID = session.RegisterID

	if err := session.EnsureOpen(); err != nil {
		if w.policy != cash.LedgerPolicyAllowNoSession {
			return nil, err
		}
		p.SessionID = nil
		return w.append(ctx, repos, p)
	}
	id := session.ID
	p.SessionID = &id
	return w.append(ctx, repos, p)
}

// appendToBranch books an entry against the branch's open session.
// A pinned register is used when given; otherwise the principal register wins,
// then the oldest open session. strict ignores the ledger policy.
func (w ledgerWriter) appendToBranch(ctx context.Context, repos TransactionalRepositories, branchID uuid.UUID, registerID *uuid.UUID, p cash.NewLedgerEntryParams, strict bool) (*cash.LedgerEntry, error) {
	p.BranchID = branchID
	session, err := resolveOpenSession(ctx, repos.Sessions(), branchID, registerID)
	if err == nil {
		id := session.ID
		p.SessionID = &id
		p.RegisterID = session.RegisterID
		return w.append(ctx, repos, p)
	}
	if strict || w.policy != cash.LedgerPolicyAllowNoSession || !cash.IsErrorCode(err, cash.CodeNoOpenSession) {
		return nil, err
	}

	fallback, ferr := fallbackRegister(ctx, repos.Registers(), branchID, registerID)
	if ferr != nil {
		return nil, ferr
	}
	if fallback == uuid.Nil {
		return nil, err
	}
	p.SessionID = nil
	p.RegisterID = fallback
	return w.append(ctx, repos, p)
}

func (w ledgerWriter) append(ctx context.Context, repos TransactionalRepositories, p cash.NewLedgerEntryParams) (*cash.LedgerEntry, error) {
	entry, err := cash.NewLedgerEntry(p)
	if err != nil {
		return nil, err
	}
	if err := repos.Ledger().Append(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// resolveOpenSession picks the open session that receives a branch-level
// movement and locks it for share. Sessions closed between the lookup and the
// lock are skipped.
func resolveOpenSession(ctx context.Context, sessions cash.CashSessionRepository, branchID uuid.UUID, registerID *uuid.UUID) (*cash.CashSession, error) {
	if registerID != nil {
		candidate, err := sessions.FindOpenByRegister(ctx, *registerID)
		if err != nil {
			if cash.IsErrorCode(err, cash.CodeNotFound) {
				return nil, cash.NewNoOpenSessionError("register", *registerID)
			}
			return nil, err
		}
		if candidate.BranchID != branchID {
			return nil, shared.NewDomainError(cash.CodeInvalidRegister, "Cash register does not belong to the branch")
		}
		return lockIfOpen(ctx, sessions, candidate.ID, *registerID)
	}

	candidates, err := sessions.FindOpenByBranch(ctx, branchID)
	if err != nil {
		return nil, err
	}
	for _, candidate := range candidates {
		locked, err := sessions.FindByIDForShare(ctx, candidate.ID)
		if err != nil {
			return nil, err
		}
		if locked.IsOpen() {
			return locked, nil
		}
	}
	return nil, cash.NewNoOpenSessionError("branch", branchID)
}

func lockIfOpen(ctx context.Context, sessions cash.CashSessionRepository, sessionID, registerID uuid.UUID) (*cash.CashSession, error) {
	locked, err := sessions.FindByIDForShare(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !locked.IsOpen() {
		return nil, cash.NewNoOpenSessionError("register", registerID)
	}
	return locked, nil
}

// fallbackRegister returns the register that owns an unsessioned entry:
// the pinned register, else the branch's first active principal register.
// uuid.Nil means the branch has nowhere to book the entry.
func fallbackRegister(ctx context.Context, registers cash.CashRegisterRepository, branchID uuid.UUID, registerID *uuid.UUID) (uuid.UUID, error) {
	if registerID != nil {
		r, err := registers.FindByID(ctx, *registerID)
		if err != nil {
			return uuid.Nil, err
		}
		if r.BranchID != branchID || !r.IsActive() {
			return uuid.Nil, nil
		}
		return r.ID, nil
	}

	principal := cash.RegisterTypePrincipal
	filter := cash.RegisterFilter{Filter: shared.Filter{Page: 1, PageSize: 1, OrderBy: "created_at", OrderDir: "asc"}, BranchID: &branchID, Type: &principal}
	found, err := registers.FindAll(ctx, filter)
	if err != nil {
		return uuid.Nil, err
	}
	if len(found) == 0 {
		return uuid.Nil, nil
	}
	return found[0].ID, nil
}
