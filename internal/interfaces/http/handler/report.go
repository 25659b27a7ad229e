package handler

import (
	"context"
	"net/http"

	cashapp "github.com/ferreteria/backend/internal/application/cash"
	"github.com/ferreteria/backend/internal/domain/shared"
	"github.com/ferreteria/backend/internal/interfaces/http/dto"
	"github.com/ferreteria/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ReportService is the reconciliation read side
type ReportService interface {
	ComputeExpectedBalance(ctx context.Context, branchID, sessionID uuid.UUID) (*cashapp.ExpectedBalanceResponse, error)
	GroupByPaymentMethod(ctx context.Context, branchID, sessionID uuid.UUID) ([]cashapp.MethodTotalsResponse, error)
	GetSessionReport(ctx context.Context, branchID, sessionID uuid.UUID) (*cashapp.SessionReportResponse, error)
	VerifySessionIntegrity(ctx context.Context, branchID, sessionID uuid.UUID) (*cashapp.IntegrityReport, error)
	GetUnsessionedEntries(ctx context.Context, branchID uuid.UUID, registerID *uuid.UUID, page, pageSize int) ([]cashapp.LedgerEntryResponse, int64, error)
}

// ReportHandler handles arqueo and reconciliation reports
type ReportHandler struct {
	BaseHandler
	reportService ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// UnsessionedQuery filters the unsessioned entry listing
type UnsessionedQuery struct {
	RegisterID string `form:"register_id" binding:"omitempty,uuid"`
	dto.PageRequest
}

// ExpectedBalance godoc
// @ID           getCashSessionExpectedBalance
//
//	@Summary		Expected balance of a session
//	@Description	Opening balance plus the signed cash-affecting entries. Closed sessions return the frozen figure.
//	@Tags			cash-reports
//	@Produce		json
//	@Param			id	path		string	true	"Session ID"	format(uuid)
//	@Success		200	{object}	APIResponse[cashapp.ExpectedBalanceResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/cash/sessions/{id}/expected-balance [get]
func (h *ReportHandler) ExpectedBalance(c *gin.Context) {
	branchID, _, ok := h.identity(c)
	if !ok {
		return
	}
	sessionID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	balance, err := h.reportService.ComputeExpectedBalance(c.Request.Context(), branchID, sessionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, balance)
}

// PaymentMethods godoc
// @ID           getCashSessionPaymentMethods
//
//	@Summary		Session totals per payment method
//	@Tags			cash-reports
//	@Produce		json
//	@Param			id	path		string	true	"Session ID"	format(uuid)
//	@Success		200	{object}	ListResponse[cashapp.MethodTotalsResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/cash/sessions/{id}/payment-methods [get]
func (h *ReportHandler) PaymentMethods(c *gin.Context) {
	branchID, _, ok := h.identity(c)
	if !ok {
		return
	}
	sessionID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	totals, err := h.reportService.GroupByPaymentMethod(c.Request.Context(), branchID, sessionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, totals)
}

// SessionReport godoc
// @ID           getCashSessionReport
//
//	@Summary		Full arqueo report of a session
//	@Tags			cash-reports
//	@Produce		json
//	@Param			id	path		string	true	"Session ID"	format(uuid)
//	@Success		200	{object}	APIResponse[cashapp.SessionReportResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/cash/sessions/{id}/report [get]
func (h *ReportHandler) SessionReport(c *gin.Context) {
	branchID, _, ok := h.identity(c)
	if !ok {
		return
	}
	sessionID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	report, err := h.reportService.GetSessionReport(c.Request.Context(), branchID, sessionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// Integrity godoc
// @ID           verifyCashSessionIntegrity
//
//	@Summary		Verify a closed session against its ledger
//	@Description	Re-derives the expected balance from the ledger. A mismatch answers 500 CONSISTENCY_VIOLATION with the report in data.
//	@Tags			cash-reports
//	@Produce		json
//	@Param			id	path		string	true	"Session ID"	format(uuid)
//	@Success		200	{object}	APIResponse[cashapp.IntegrityReport]
//	@Failure		404	{object}	ErrorResponse
//	@Failure		500	{object}	APIResponse[cashapp.IntegrityReport]
//	@Security		BearerAuth
//	@Router			/cash/sessions/{id}/integrity [get]
func (h *ReportHandler) Integrity(c *gin.Context) {
	branchID, _, ok := h.identity(c)
	if !ok {
		return
	}
	sessionID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	report, err := h.reportService.VerifySessionIntegrity(c.Request.Context(), branchID, sessionID)
	if err == nil {
		h.Success(c, report)
		return
	}
	domainErr, isDomain := shared.AsDomainError(err)
	if report == nil || !isDomain {
		h.HandleError(c, err)
		return
	}

	c.Set(middleware.ErrorCodeKey, domainErr.Code)
	resp := dto.NewErrorResponseWithRequestID(domainErr.Code, domainErr.Message, getRequestID(c))
	resp.Data = report
	c.JSON(dto.GetHTTPStatus(domainErr.Code), resp)
}

// Unsessioned godoc
// @ID           listUnsessionedCashEntries
//
//	@Summary		List entries recorded without a session
//	@Tags			cash-reports
//	@Produce		json
//	@Param			register_id	query		string	false	"Register ID"
//	@Param			page		query		int		false	"Page number"	default(1)
//	@Param			page_size	query		int		false	"Page size"		default(20)
//	@Success		200			{object}	ListResponse[cashapp.LedgerEntryResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/cash/entries/unsessioned [get]
func (h *ReportHandler) Unsessioned(c *gin.Context) {
	branchID, _, ok := h.identity(c)
	if !ok {
		return
	}

	var query UnsessionedQuery
	if !h.bindQuery(c, &query) {
		return
	}
	query.PageRequest = query.PageRequest.Normalize()

	var registerID *uuid.UUID
	if query.RegisterID != "" {
		id, err := uuid.Parse(query.RegisterID)
		if err != nil {
			h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidID, "Invalid register_id: "+query.RegisterID)
			return
		}
		registerID = &id
	}

	entries, total, err := h.reportService.GetUnsessionedEntries(c.Request.Context(), branchID, registerID, query.Page, query.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, entries, total, query.Page, query.PageSize)
}
