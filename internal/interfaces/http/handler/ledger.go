package handler

import (
	"context"

	cashapp "github.com/ferreteria/backend/internal/application/cash"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// LedgerService records and reads cash ledger entries
type LedgerService interface {
	RecordEntry(ctx context.Context, branchID uuid.UUID, req cashapp.RecordEntryRequest) (*cashapp.LedgerEntryResponse, error)
	GetByID(ctx context.Context, branchID, id uuid.UUID) (*cashapp.LedgerEntryResponse, error)
	List(ctx context.Context, branchID uuid.UUID, filter cashapp.LedgerEntryListFilter) ([]cashapp.LedgerEntryResponse, int64, error)
}

// LedgerHandler handles cash ledger entry endpoints
type LedgerHandler struct {
	BaseHandler
	ledgerService LedgerService
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(ledgerService LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerService: ledgerService}
}

// RecordEntry godoc
// @ID           recordCashEntry
//
//	@Summary		Record a ledger entry
//	@Description	Appends an entry to an open session. Entries are immutable once written.
//	@Tags			cash-entries
//	@Accept			json
//	@Produce		json
//	@Param			Idempotency-Key	header		string						false	"Replay protection key"
//	@Param			request			body		cashapp.RecordEntryRequest	true	"Ledger entry"
//	@Success		201				{object}	APIResponse[cashapp.LedgerEntryResponse]
//	@Failure		400				{object}	ErrorResponse
//	@Failure		404				{object}	ErrorResponse
//	@Failure		409				{object}	ErrorResponse
//	@Failure		422				{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/cash/entries [post]
func (h *LedgerHandler) RecordEntry(c *gin.Context) {
	branchID, userID, ok := h.identity(c)
	if !ok {
		return
	}

	var req cashapp.RecordEntryRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.RecordedBy = &userID

	entry, err := h.ledgerService.RecordEntry(c.Request.Context(), branchID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, entry)
}

// List godoc
// @ID           listCashEntries
//
//	@Summary		List ledger entries
//	@Tags			cash-entries
//	@Produce		json
//	@Param			session_id		query		string	false	"Session ID"
//	@Param			register_id		query		string	false	"Register ID"
//	@Param			type			query		string	false	"Entry type"
//	@Param			payment_method	query		string	false	"Payment method"
//	@Param			unsessioned		query		bool	false	"Only entries without a session"
//	@Param			from			query		string	false	"From date (YYYY-MM-DD)"
//	@Param			to				query		string	false	"To date (YYYY-MM-DD)"
//	@Param			page			query		int		false	"Page number"	default(1)
//	@Param			page_size		query		int		false	"Page size"		default(20)
//	@Success		200				{object}	ListResponse[cashapp.LedgerEntryResponse]
//	@Failure		400				{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/cash/entries [get]
func (h *LedgerHandler) List(c *gin.Context) {
	branchID, _, ok := h.identity(c)
	if !ok {
		return
	}

	var filter cashapp.LedgerEntryListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	entries, total, err := h.ledgerService.List(c.Request.Context(), branchID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, entries, total, filter.Page, filter.PageSize)
}

// GetByID godoc
// @ID           getCashEntry
//
//	@Summary		Get a ledger entry
//	@Tags			cash-entries
//	@Produce		json
//	@Param			id	path		string	true	"Entry ID"	format(uuid)
//	@Success		200	{object}	APIResponse[cashapp.LedgerEntryResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/cash/entries/{id} [get]
func (h *LedgerHandler) GetByID(c *gin.Context) {
	branchID, _, ok := h.identity(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	entry, err := h.ledgerService.GetByID(c.Request.Context(), branchID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}
