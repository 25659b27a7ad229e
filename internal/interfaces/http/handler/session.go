package handler

import (
	"context"

	cashapp "github.com/ferreteria/backend/internal/application/cash"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionService is the session lifecycle the handler drives
type SessionService interface {
	Open(ctx context.Context, branchID, userID uuid.UUID, req cashapp.OpenSessionRequest) (*cashapp.SessionResponse, error)
	Close(ctx context.Context, branchID, sessionID, userID uuid.UUID, req cashapp.CloseSessionRequest) (*cashapp.SessionResponse, error)
	GetByID(ctx context.Context, branchID, sessionID uuid.UUID) (*cashapp.SessionResponse, error)
	GetCurrent(ctx context.Context, branchID, registerID uuid.UUID) (*cashapp.SessionResponse, error)
	List(ctx context.Context, branchID uuid.UUID, filter cashapp.SessionListFilter) ([]cashapp.SessionResponse, int64, error)
	ListEntries(ctx context.Context, branchID, sessionID uuid.UUID) ([]cashapp.LedgerEntryResponse, error)
}

// SessionHandler handles cash session (arqueo) endpoints
type SessionHandler struct {
	BaseHandler
	sessionService SessionService
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(sessionService SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// Open godoc
// @ID           openCashSession
//
//	@Summary		Open a cash session
//	@Description	Opens a session on a register for the authenticated cashier
//	@Tags			cash-sessions
//	@Accept			json
//	@Produce		json
//	@Param			request	body		cashapp.OpenSessionRequest	true	"Opening count"
//	@Success		201		{object}	APIResponse[cashapp.SessionResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/cash/sessions [post]
func (h *SessionHandler) Open(c *gin.Context) {
	branchID, userID, ok := h.identity(c)
	if !ok {
		return
	}

	var req cashapp.OpenSessionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	session, err := h.sessionService.Open(c.Request.Context(), branchID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, session)
}

// Close godoc
// @ID           closeCashSession
//
//	@Summary		Close a cash session
//	@Description	Records the counted balance and freezes expected balance and difference
//	@Tags			cash-sessions
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Session ID"	format(uuid)
//	@Param			request	body		cashapp.CloseSessionRequest	true	"Closing count"
//	@Success		200		{object}	APIResponse[cashapp.SessionResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/cash/sessions/{id}/close [post]
func (h *SessionHandler) Close(c *gin.Context) {
	branchID, userID, ok := h.identity(c)
	if !ok {
		return
	}
	sessionID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req cashapp.CloseSessionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	session, err := h.sessionService.Close(c.Request.Context(), branchID, sessionID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session)
}

// List godoc
// @ID           listCashSessions
//
//	@Summary		List cash sessions
//	@Tags			cash-sessions
//	@Produce		json
//	@Param			register_id	query		string	false	"Register ID"
//	@Param			user_id		query		string	false	"Cashier ID"
//	@Param			status		query		string	false	"OPEN or CLOSED"
//	@Param			from		query		string	false	"From date (YYYY-MM-DD)"
//	@Param			to			query		string	false	"To date (YYYY-MM-DD)"
//	@Param			page		query		int		false	"Page number"	default(1)
//	@Param			page_size	query		int		false	"Page size"		default(20)
//	@Success		200			{object}	ListResponse[cashapp.SessionResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/cash/sessions [get]
func (h *SessionHandler) List(c *gin.Context) {
	branchID, _, ok := h.identity(c)
	if !ok {
		return
	}

	var filter cashapp.SessionListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	sessions, total, err := h.sessionService.List(c.Request.Context(), branchID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, sessions, total, filter.Page, filter.PageSize)
}

// GetByID godoc
// @ID           getCashSession
//
//	@Summary		Get a cash session
//	@Tags			cash-sessions
//	@Produce		json
//	@Param			id	path		string	true	"Session ID"	format(uuid)
//	@Success		200	{object}	APIResponse[cashapp.SessionResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/cash/sessions/{id} [get]
func (h *SessionHandler) GetByID(c *gin.Context) {
	branchID, _, ok := h.identity(c)
	if !ok {
		return
	}
	sessionID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	session, err := h.sessionService.GetByID(c.Request.Context(), branchID, sessionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session)
}

// ListEntries godoc
// @ID           listCashSessionEntries
//
//	@Summary		List the ledger entries of a session
//	@Tags			cash-sessions
//	@Produce		json
//	@Param			id	path		string	true	"Session ID"	format(uuid)
//	@Success		200	{object}	ListResponse[cashapp.LedgerEntryResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/cash/sessions/{id}/entries [get]
func (h *SessionHandler) ListEntries(c *gin.Context) {
	branchID, _, ok := h.identity(c)
	if !ok {
		return
	}
	sessionID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	entries, err := h.sessionService.ListEntries(c.Request.Context(), branchID, sessionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entries)
}

// GetCurrent godoc
// @ID           getCurrentCashSession
//
//	@Summary		Get the open session of a register
//	@Tags			cash-sessions
//	@Produce		json
//	@Param			id	path		string	true	"Register ID"	format(uuid)
//	@Success		200	{object}	APIResponse[cashapp.SessionResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Failure		409	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/cash/registers/{id}/current-session [get]
func (h *SessionHandler) GetCurrent(c *gin.Context) {
	branchID, _, ok := h.identity(c)
	if !ok {
		return
	}
	registerID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	session, err := h.sessionService.GetCurrent(c.Request.Context(), branchID, registerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session)
}
