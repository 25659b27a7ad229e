package handler

import (
	"context"

	cashapp "github.com/ferreteria/backend/internal/application/cash"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CreditService manages credit sales and their installment schedules
type CreditService interface {
	CreateSchedule(ctx context.Context, branchID uuid.UUID, req cashapp.CreateScheduleRequest) (*cashapp.CreditSaleResponse, error)
	RegisterCreditSale(ctx context.Context, branchID uuid.UUID, req cashapp.RegisterCreditSaleRequest) (*cashapp.CreditSaleResponse, error)
	ApplyPayment(ctx context.Context, branchID, installmentID uuid.UUID, req cashapp.ApplyPaymentRequest) (*cashapp.PaymentResponse, error)
	GetBySaleID(ctx context.Context, branchID, saleID uuid.UUID) (*cashapp.CreditSaleResponse, error)
	ListOverdue(ctx context.Context, branchID uuid.UUID, filter cashapp.OverdueListFilter) ([]cashapp.InstallmentResponse, int64, error)
}

// CreditHandler handles credit sale and installment payment endpoints
type CreditHandler struct {
	BaseHandler
	creditService CreditService
}

// NewCreditHandler creates a new CreditHandler
func NewCreditHandler(creditService CreditService) *CreditHandler {
	return &CreditHandler{creditService: creditService}
}

// RegisterSale godoc
// @ID           registerCreditSale
//
//	@Summary		Register a credit sale
//	@Description	Builds the installment schedule and books the initial payment into the open session
//	@Tags			credit
//	@Accept			json
//	@Produce		json
//	@Param			request	body		cashapp.RegisterCreditSaleRequest	true	"Credit sale"
//	@Success		201		{object}	APIResponse[cashapp.CreditSaleResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/credit/sales [post]
func (h *CreditHandler) RegisterSale(c *gin.Context) {
	branchID, userID, ok := h.identity(c)
	if !ok {
		return
	}

	var req cashapp.RegisterCreditSaleRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.CreatedBy = &userID

	sale, err := h.creditService.RegisterCreditSale(c.Request.Context(), branchID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, sale)
}

// CreateSchedule godoc
// @ID           createCreditSchedule
//
//	@Summary		Create an installment schedule
//	@Description	Splits total minus initial payment into equal installments, the last one absorbing the rounding remainder
//	@Tags			credit
//	@Accept			json
//	@Produce		json
//	@Param			request	body		cashapp.CreateScheduleRequest	true	"Schedule parameters"
//	@Success		201		{object}	APIResponse[cashapp.CreditSaleResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/credit/schedules [post]
func (h *CreditHandler) CreateSchedule(c *gin.Context) {
	branchID, userID, ok := h.identity(c)
	if !ok {
		return
	}

	var req cashapp.CreateScheduleRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.CreatedBy = &userID

	sale, err := h.creditService.CreateSchedule(c.Request.Context(), branchID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, sale)
}

// GetBySaleID godoc
// @ID           getCreditSaleBySale
//
//	@Summary		Get the credit schedule of a sale
//	@Tags			credit
//	@Produce		json
//	@Param			sale_id	path		string	true	"Sale ID"	format(uuid)
//	@Success		200		{object}	APIResponse[cashapp.CreditSaleResponse]
//	@Failure		404		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/credit/sales/{sale_id} [get]
func (h *CreditHandler) GetBySaleID(c *gin.Context) {
	branchID, _, ok := h.identity(c)
	if !ok {
		return
	}
	saleID, ok := h.pathID(c, "sale_id")
	if !ok {
		return
	}

	sale, err := h.creditService.GetBySaleID(c.Request.Context(), branchID, saleID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// ApplyPayment godoc
// @ID           applyInstallmentPayment
//
//	@Summary		Pay an installment
//	@Description	Applies a received amount to one installment. Cash overpayment returns change; other methods are rejected or clamped per policy.
//	@Tags			credit
//	@Accept			json
//	@Produce		json
//	@Param			id				path		string						true	"Installment ID"	format(uuid)
//	@Param			Idempotency-Key	header		string						false	"Replay protection key"
//	@Param			request			body		cashapp.ApplyPaymentRequest	true	"Payment"
//	@Success		200				{object}	APIResponse[cashapp.PaymentResponse]
//	@Failure		400				{object}	ErrorResponse
//	@Failure		404				{object}	ErrorResponse
//	@Failure		409				{object}	ErrorResponse
//	@Failure		422				{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/credit/installments/{id}/payments [post]
func (h *CreditHandler) ApplyPayment(c *gin.Context) {
	branchID, userID, ok := h.identity(c)
	if !ok {
		return
	}
	installmentID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req cashapp.ApplyPaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.RecordedBy = &userID

	payment, err := h.creditService.ApplyPayment(c.Request.Context(), branchID, installmentID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payment)
}

// ListOverdue godoc
// @ID           listOverdueInstallments
//
//	@Summary		List overdue installments
//	@Description	Unpaid installments whose due date is before as_of (default today), most overdue first
//	@Tags			credit
//	@Produce		json
//	@Param			customer_id	query		string	false	"Customer ID"
//	@Param			as_of		query		string	false	"Reference date (YYYY-MM-DD)"
//	@Param			page		query		int		false	"Page number"	default(1)
//	@Param			page_size	query		int		false	"Page size"		default(20)
//	@Success		200			{object}	ListResponse[cashapp.InstallmentResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/credit/installments/overdue [get]
func (h *CreditHandler) ListOverdue(c *gin.Context) {
	branchID, _, ok := h.identity(c)
	if !ok {
		return
	}

	var filter cashapp.OverdueListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	installments, total, err := h.creditService.ListOverdue(c.Request.Context(), branchID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, installments, total, filter.Page, filter.PageSize)
}
