package handler

import (
	"context"

	cashapp "github.com/ferreteria/backend/internal/application/cash"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ExpenseService drives the expense approval workflow
type ExpenseService interface {
	Create(ctx context.Context, branchID, requestedBy uuid.UUID, req cashapp.CreateExpenseRequest) (*cashapp.ExpenseResponse, error)
	Approve(ctx context.Context, branchID, expenseID, approverID uuid.UUID, req cashapp.ApproveExpenseRequest) (*cashapp.ExpenseResponse, error)
	Reject(ctx context.Context, branchID, expenseID, approverID uuid.UUID, req cashapp.RejectExpenseRequest) (*cashapp.ExpenseResponse, error)
	GetByID(ctx context.Context, branchID, id uuid.UUID) (*cashapp.ExpenseResponse, error)
	List(ctx context.Context, branchID uuid.UUID, filter cashapp.ExpenseListFilter) ([]cashapp.ExpenseResponse, int64, error)
}

// ExpenseHandler handles expense (gasto) endpoints
type ExpenseHandler struct {
	BaseHandler
	expenseService ExpenseService
}

// NewExpenseHandler creates a new ExpenseHandler
func NewExpenseHandler(expenseService ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService}
}

// Create godoc
// @ID           createExpense
//
//	@Summary		Request an expense
//	@Description	Creates a PENDING expense. Nothing is written to the ledger until approval.
//	@Tags			expenses
//	@Accept			json
//	@Produce		json
//	@Param			request	body		cashapp.CreateExpenseRequest	true	"Expense"
//	@Success		201		{object}	APIResponse[cashapp.ExpenseResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/expenses [post]
func (h *ExpenseHandler) Create(c *gin.Context) {
	branchID, userID, ok := h.identity(c)
	if !ok {
		return
	}

	var req cashapp.CreateExpenseRequest
	if !h.bindJSON(c, &req) {
		return
	}

	expense, err := h.expenseService.Create(c.Request.Context(), branchID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, expense)
}

// List godoc
// @ID           listExpenses
//
//	@Summary		List expenses
//	@Tags			expenses
//	@Produce		json
//	@Param			status			query		string	false	"PENDING, APPROVED or REJECTED"
//	@Param			payment_method	query		string	false	"Payment method"
//	@Param			requested_by	query		string	false	"Requesting user ID"
//	@Param			from			query		string	false	"From date (YYYY-MM-DD)"
//	@Param			to				query		string	false	"To date (YYYY-MM-DD)"
//	@Param			page			query		int		false	"Page number"	default(1)
//	@Param			page_size		query		int		false	"Page size"		default(20)
//	@Success		200				{object}	ListResponse[cashapp.ExpenseResponse]
//	@Failure		400				{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/expenses [get]
func (h *ExpenseHandler) List(c *gin.Context) {
	branchID, _, ok := h.identity(c)
	if !ok {
		return
	}

	var filter cashapp.ExpenseListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	expenses, total, err := h.expenseService.List(c.Request.Context(), branchID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, expenses, total, filter.Page, filter.PageSize)
}

// GetByID godoc
// @ID           getExpense
//
//	@Summary		Get an expense
//	@Tags			expenses
//	@Produce		json
//	@Param			id	path		string	true	"Expense ID"	format(uuid)
//	@Success		200	{object}	APIResponse[cashapp.ExpenseResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/expenses/{id} [get]
func (h *ExpenseHandler) GetByID(c *gin.Context) {
	branchID, _, ok := h.identity(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	expense, err := h.expenseService.GetByID(c.Request.Context(), branchID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, expense)
}

// Approve godoc
// @ID           approveExpense
//
//	@Summary		Approve an expense
//	@Description	Approves a PENDING expense. A cash expense needs an open session and writes an outflow entry.
//	@Tags			expenses
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Expense ID"	format(uuid)
//	@Param			request	body		cashapp.ApproveExpenseRequest	false	"Register to charge"
//	@Success		200		{object}	APIResponse[cashapp.ExpenseResponse]
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/expenses/{id}/approve [post]
func (h *ExpenseHandler) Approve(c *gin.Context) {
	branchID, userID, ok := h.identity(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req cashapp.ApproveExpenseRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}

	expense, err := h.expenseService.Approve(c.Request.Context(), branchID, id, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, expense)
}

// Reject godoc
// @ID           rejectExpense
//
//	@Summary		Reject an expense
//	@Tags			expenses
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Expense ID"	format(uuid)
//	@Param			request	body		cashapp.RejectExpenseRequest	true	"Rejection reason"
//	@Success		200		{object}	APIResponse[cashapp.ExpenseResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/expenses/{id}/reject [post]
func (h *ExpenseHandler) Reject(c *gin.Context) {
	branchID, userID, ok := h.identity(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req cashapp.RejectExpenseRequest
	if !h.bindJSON(c, &req) {
		return
	}

	expense, err := h.expenseService.Reject(c.Request.Context(), branchID, id, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, expense)
}
