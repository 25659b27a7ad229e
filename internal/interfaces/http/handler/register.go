package handler

import (
	"context"

	cashapp "github.com/ferreteria/backend/internal/application/cash"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RegisterService is the part of the register registry the handler uses
type RegisterService interface {
	Create(ctx context.Context, branchID uuid.UUID, req cashapp.CreateRegisterRequest) (*cashapp.RegisterResponse, error)
	Update(ctx context.Context, branchID, id uuid.UUID, req cashapp.UpdateRegisterRequest) (*cashapp.RegisterResponse, error)
	Deactivate(ctx context.Context, branchID, id uuid.UUID) error
	GetByID(ctx context.Context, branchID, id uuid.UUID) (*cashapp.RegisterResponse, error)
	List(ctx context.Context, branchID uuid.UUID, filter cashapp.RegisterListFilter) ([]cashapp.RegisterResponse, int64, error)
}

// RegisterHandler handles cash register endpoints
type RegisterHandler struct {
	BaseHandler
	registerService RegisterService
}

// NewRegisterHandler creates a new RegisterHandler
func NewRegisterHandler(registerService RegisterService) *RegisterHandler {
	return &RegisterHandler{registerService: registerService}
}

// Create godoc
// @ID           createCashRegister
//
//	@Summary		Create a cash register
//	@Description	Registers a new cash box (caja) for the caller's branch
//	@Tags			cash-registers
//	@Accept			json
//	@Produce		json
//	@Param			request	body		cashapp.CreateRegisterRequest	true	"Register creation request"
//	@Success		201		{object}	APIResponse[cashapp.RegisterResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/cash/registers [post]
func (h *RegisterHandler) Create(c *gin.Context) {
	branchID, userID, ok := h.identity(c)
	if !ok {
		return
	}

	var req cashapp.CreateRegisterRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.CreatedBy = &userID

	register, err := h.registerService.Create(c.Request.Context(), branchID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, register)
}

// List godoc
// @ID           listCashRegisters
//
//	@Summary		List cash registers
//	@Description	Lists the registers of the caller's branch
//	@Tags			cash-registers
//	@Produce		json
//	@Param			search			query		string	false	"Name search"
//	@Param			type			query		string	false	"PRINCIPAL or SECONDARY"
//	@Param			include_deleted	query		bool	false	"Include deactivated registers"
//	@Param			page			query		int		false	"Page number"		default(1)
//	@Param			page_size		query		int		false	"Page size"			default(20)
//	@Success		200				{object}	ListResponse[cashapp.RegisterResponse]
//	@Failure		400				{object}	ErrorResponse
//	@Failure		401				{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/cash/registers [get]
func (h *RegisterHandler) List(c *gin.Context) {
	branchID, _, ok := h.identity(c)
	if !ok {
		return
	}

	var filter cashapp.RegisterListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	registers, total, err := h.registerService.List(c.Request.Context(), branchID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, registers, total, filter.Page, filter.PageSize)
}

// GetByID godoc
// @ID           getCashRegister
//
//	@Summary		Get a cash register
//	@Tags			cash-registers
//	@Produce		json
//	@Param			id	path		string	true	"Register ID"	format(uuid)
//	@Success		200	{object}	APIResponse[cashapp.RegisterResponse]
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/cash/registers/{id} [get]
func (h *RegisterHandler) GetByID(c *gin.Context) {
	branchID, _, ok := h.identity(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	register, err := h.registerService.GetByID(c.Request.Context(), branchID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, register)
}

// Update godoc
// @ID           updateCashRegister
//
//	@Summary		Update a cash register
//	@Tags			cash-registers
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Register ID"	format(uuid)
//	@Param			request	body		cashapp.UpdateRegisterRequest	true	"Register update request"
//	@Success		200		{object}	APIResponse[cashapp.RegisterResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/cash/registers/{id} [put]
func (h *RegisterHandler) Update(c *gin.Context) {
	branchID, _, ok := h.identity(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req cashapp.UpdateRegisterRequest
	if !h.bindJSON(c, &req) {
		return
	}

	register, err := h.registerService.Update(c.Request.Context(), branchID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, register)
}

// Deactivate godoc
// @ID           deactivateCashRegister
//
//	@Summary		Deactivate a cash register
//	@Description	Soft-deletes a register. Fails while it has an open session.
//	@Tags			cash-registers
//	@Param			id	path	string	true	"Register ID"	format(uuid)
//	@Success		204
//	@Failure		404	{object}	ErrorResponse
//	@Failure		409	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/cash/registers/{id} [delete]
func (h *RegisterHandler) Deactivate(c *gin.Context) {
	branchID, _, ok := h.identity(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	if err := h.registerService.Deactivate(c.Request.Context(), branchID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
