package handler

import (
	"context"

	cashapp "github.com/ferreteria/backend/internal/application/cash"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TransferService moves cash between registers
type TransferService interface {
	Create(ctx context.Context, branchID, requestedBy uuid.UUID, req cashapp.CreateTransferRequest) (*cashapp.TransferResponse, error)
	Complete(ctx context.Context, branchID, transferID, completedBy uuid.UUID) (*cashapp.TransferResponse, error)
	Cancel(ctx context.Context, branchID, transferID uuid.UUID, req cashapp.CancelTransferRequest) (*cashapp.TransferResponse, error)
	GetByID(ctx context.Context, branchID, id uuid.UUID) (*cashapp.TransferResponse, error)
	List(ctx context.Context, branchID uuid.UUID, filter cashapp.TransferListFilter) ([]cashapp.TransferResponse, int64, error)
}

// TransferHandler handles register-to-register cash transfers
type TransferHandler struct {
	BaseHandler
	transferService TransferService
}

// NewTransferHandler creates a new TransferHandler
func NewTransferHandler(transferService TransferService) *TransferHandler {
	return &TransferHandler{transferService: transferService}
}

// Create godoc
// @ID           createCashTransfer
//
//	@Summary		Request a cash transfer
//	@Tags			cash-transfers
//	@Accept			json
//	@Produce		json
//	@Param			request	body		cashapp.CreateTransferRequest	true	"Transfer"
//	@Success		201		{object}	APIResponse[cashapp.TransferResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/cash/transfers [post]
func (h *TransferHandler) Create(c *gin.Context) {
	branchID, userID, ok := h.identity(c)
	if !ok {
		return
	}

	var req cashapp.CreateTransferRequest
	if !h.bindJSON(c, &req) {
		return
	}

	transfer, err := h.transferService.Create(c.Request.Context(), branchID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, transfer)
}

// List godoc
// @ID           listCashTransfers
//
//	@Summary		List cash transfers
//	@Tags			cash-transfers
//	@Produce		json
//	@Param			register_id	query		string	false	"Source or destination register"
//	@Param			status		query		string	false	"PENDING, COMPLETED or CANCELLED"
//	@Param			from		query		string	false	"From date (YYYY-MM-DD)"
//	@Param			to			query		string	false	"To date (YYYY-MM-DD)"
//	@Param			page		query		int		false	"Page number"	default(1)
//	@Param			page_size	query		int		false	"Page size"		default(20)
//	@Success		200			{object}	ListResponse[cashapp.TransferResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/cash/transfers [get]
func (h *TransferHandler) List(c *gin.Context) {
	branchID, _, ok := h.identity(c)
	if !ok {
		return
	}

	var filter cashapp.TransferListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	transfers, total, err := h.transferService.List(c.Request.Context(), branchID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, transfers, total, filter.Page, filter.PageSize)
}

// GetByID godoc
// @ID           getCashTransfer
//
//	@Summary		Get a cash transfer
//	@Tags			cash-transfers
//	@Produce		json
//	@Param			id	path		string	true	"Transfer ID"	format(uuid)
//	@Success		200	{object}	APIResponse[cashapp.TransferResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/cash/transfers/{id} [get]
func (h *TransferHandler) GetByID(c *gin.Context) {
	branchID, _, ok := h.identity(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	transfer, err := h.transferService.GetByID(c.Request.Context(), branchID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, transfer)
}

// Complete godoc
// @ID           completeCashTransfer
//
//	@Summary		Complete a cash transfer
//	@Description	Writes the paired out and in entries into the open sessions of both registers
//	@Tags			cash-transfers
//	@Produce		json
//	@Param			id				path		string	true	"Transfer ID"	format(uuid)
//	@Param			Idempotency-Key	header		string	false	"Replay protection key"
//	@Success		200				{object}	APIResponse[cashapp.TransferResponse]
//	@Failure		404				{object}	ErrorResponse
//	@Failure		409				{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/cash/transfers/{id}/complete [post]
func (h *TransferHandler) Complete(c *gin.Context) {
	branchID, userID, ok := h.identity(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	transfer, err := h.transferService.Complete(c.Request.Context(), branchID, id, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, transfer)
}

// Cancel godoc
// @ID           cancelCashTransfer
//
//	@Summary		Cancel a pending cash transfer
//	@Tags			cash-transfers
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Transfer ID"	format(uuid)
//	@Param			request	body		cashapp.CancelTransferRequest	true	"Cancellation reason"
//	@Success		200		{object}	APIResponse[cashapp.TransferResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/cash/transfers/{id}/cancel [post]
func (h *TransferHandler) Cancel(c *gin.Context) {
	branchID, _, ok := h.identity(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req cashapp.CancelTransferRequest
	if !h.bindJSON(c, &req) {
		return
	}

	transfer, err := h.transferService.Cancel(c.Request.Context(), branchID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, transfer)
}
