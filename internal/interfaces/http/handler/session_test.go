package handler

import (
	"net/http"
	"testing"
	"time"

	cashapp "github.com/ferreteria/backend/internal/application/cash"
	"github.com/ferreteria/backend/internal/domain/cash"
	"github.com/ferreteria/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newSessionRouter(svc SessionService) *gin.Engine {
	h := NewSessionHandler(svc)
	router := newTestRouter()
	router.POST("/cash/sessions", h.Open)
	router.GET("/cash/sessions", h.List)
	router.GET("/cash/sessions/:id", h.GetByID)
	router.POST("/cash/sessions/:id/close", h.Close)
	router.GET("/cash/sessions/:id/entries", h.ListEntries)
	router.GET("/cash/registers/:id/current-session", h.GetCurrent)
	return router
}

func TestSessionHandler_Open(t *testing.T) {
	svc := new(MockSessionService)
	registerID, sessionID := uuid.New(), uuid.New()

	svc.On("Open", mock.Anything, testBranchID, testUserID, mock.MatchedBy(func(req cashapp.OpenSessionRequest) bool {
		return req.RegisterID == registerID && req.OpeningBalance.Equal(decimal.RequireFromString("150.50"))
	})).Return(&cashapp.SessionResponse{
		ID:             sessionID,
		RegisterID:     registerID,
		Status:         "OPEN",
		OpenedAt:       time.Now(),
		OpeningBalance: decimal.RequireFromString("150.50"),
	}, nil)

	w := performRequest(newSessionRouter(svc), http.MethodPost, "/cash/sessions", map[string]any{
		"register_id":     registerID,
		"opening_balance": "150.50",
	})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	session := decodeData[cashapp.SessionResponse](t, w)
	assert.Equal(t, sessionID, session.ID)
	assert.Equal(t, "OPEN", session.Status)
	svc.AssertExpectations(t)
}

func TestSessionHandler_Open_Rejections(t *testing.T) {
	registerID := uuid.New()
	tests := []struct {
		name       string
		body       any
		serviceErr error
		wantStatus int
		wantCode   string
	}{
		{"malformed json", `{"register_id":`, nil, http.StatusBadRequest, dto.ErrCodeInvalidJSON},
		{"missing register", map[string]any{"opening_balance": "10"}, nil, http.StatusBadRequest, dto.ErrCodeValidation},
		{"negative opening balance", map[string]any{"register_id": registerID, "opening_balance": "-1"}, nil, http.StatusBadRequest, dto.ErrCodeValidation},
		{"register already open", map[string]any{"register_id": registerID, "opening_balance": "0"}, cash.NewAlreadyOpenError(registerID), http.StatusConflict, dto.ErrCodeAlreadyOpen},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockSessionService)
			if tt.serviceErr != nil {
				svc.On("Open", mock.Anything, testBranchID, testUserID, mock.Anything).Return(nil, tt.serviceErr)
			}

			w := performRequest(newSessionRouter(svc), http.MethodPost, "/cash/sessions", tt.body)

			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			assert.Equal(t, tt.wantCode, decodeResponse(t, w).Error.Code)
			if tt.serviceErr == nil {
				svc.AssertNotCalled(t, "Open", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestSessionHandler_Close(t *testing.T) {
	sessionID := uuid.New()
	expected := decimal.RequireFromString("300")
	actual := decimal.RequireFromString("295")
	diff := actual.Sub(expected)

	svc := new(MockSessionService)
	svc.On("Close", mock.Anything, testBranchID, sessionID, testUserID, mock.MatchedBy(func(req cashapp.CloseSessionRequest) bool {
		return req.ActualBalance.Equal(actual) && req.Notes == "faltan 5"
	})).Return(&cashapp.SessionResponse{
		ID:              sessionID,
		Status:          "CLOSED",
		ExpectedBalance: &expected,
		ActualBalance:   &actual,
		Difference:      &diff,
	}, nil)

	w := performRequest(newSessionRouter(svc), http.MethodPost, "/cash/sessions/"+sessionID.String()+"/close",
		map[string]any{"actual_balance": "295", "notes": "faltan 5"})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	session := decodeData[cashapp.SessionResponse](t, w)
	require.NotNil(t, session.Difference)
	assert.True(t, session.Difference.Equal(decimal.NewFromInt(-5)))
	svc.AssertExpectations(t)
}

func TestSessionHandler_Close_Rejections(t *testing.T) {
	sessionID := uuid.New()

	t.Run("missing actual balance", func(t *testing.T) {
		svc := new(MockSessionService)
		w := performRequest(newSessionRouter(svc), http.MethodPost, "/cash/sessions/"+sessionID.String()+"/close", map[string]any{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeValidation, decodeResponse(t, w).Error.Code)
	})

	t.Run("already closed", func(t *testing.T) {
		svc := new(MockSessionService)
		svc.On("Close", mock.Anything, testBranchID, sessionID, testUserID, mock.Anything).
			Return(nil, cash.NewAlreadyClosedError(sessionID))
		w := performRequest(newSessionRouter(svc), http.MethodPost, "/cash/sessions/"+sessionID.String()+"/close",
			map[string]any{"actual_balance": "10"})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, dto.ErrCodeAlreadyClosed, decodeResponse(t, w).Error.Code)
	})

	t.Run("bad id", func(t *testing.T) {
		svc := new(MockSessionService)
		w := performRequest(newSessionRouter(svc), http.MethodPost, "/cash/sessions/nope/close", map[string]any{"actual_balance": "10"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidID, decodeResponse(t, w).Error.Code)
	})
}

func TestSessionHandler_List(t *testing.T) {
	svc := new(MockSessionService)
	svc.On("List", mock.Anything, testBranchID, mock.MatchedBy(func(f cashapp.SessionListFilter) bool {
		return f.Status == "OPEN" && f.Page == 2 && f.PageSize == 5
	})).Return([]cashapp.SessionResponse{{ID: uuid.New()}}, int64(6), nil)

	w := performRequest(newSessionRouter(svc), http.MethodGet, "/cash/sessions?status=OPEN&page=2&page_size=5", nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(6), resp.Meta.Total)
	assert.Equal(t, 2, resp.Meta.TotalPages)
	svc.AssertExpectations(t)
}

func TestSessionHandler_GetCurrent_NoOpenSession(t *testing.T) {
	registerID := uuid.New()
	svc := new(MockSessionService)
	svc.On("GetCurrent", mock.Anything, testBranchID, registerID).
		Return(nil, cash.NewNoOpenSessionError("register", registerID))

	w := performRequest(newSessionRouter(svc), http.MethodGet, "/cash/registers/"+registerID.String()+"/current-session", nil)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, dto.ErrCodeNoOpenSession, decodeResponse(t, w).Error.Code)
}

func TestSessionHandler_ListEntries(t *testing.T) {
	sessionID := uuid.New()
	svc := new(MockSessionService)
	svc.On("ListEntries", mock.Anything, testBranchID, sessionID).Return([]cashapp.LedgerEntryResponse{
		{ID: uuid.New(), Type: "SALE", Amount: decimal.NewFromInt(20), PaymentMethod: "CASH", AffectsCash: true},
		{ID: uuid.New(), Type: "SALE", Amount: decimal.NewFromInt(35), PaymentMethod: "CARD"},
	}, nil)

	w := performRequest(newSessionRouter(svc), http.MethodGet, "/cash/sessions/"+sessionID.String()+"/entries", nil)

	require.Equal(t, http.StatusOK, w.Code)
	entries := decodeData[[]cashapp.LedgerEntryResponse](t, w)
	assert.Len(t, entries, 2)
}

func TestSessionHandler_GetByID_NotFound(t *testing.T) {
	sessionID := uuid.New()
	svc := new(MockSessionService)
	svc.On("GetByID", mock.Anything, testBranchID, sessionID).Return(nil, cash.NewNotFoundError("cash session", sessionID))

	w := performRequest(newSessionRouter(svc), http.MethodGet, "/cash/sessions/"+sessionID.String(), nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
