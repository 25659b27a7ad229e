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

func newLedgerRouter(svc LedgerService) *gin.Engine {
	h := NewLedgerHandler(svc)
	router := newTestRouter()
	router.POST("/cash/entries", h.RecordEntry)
	router.GET("/cash/entries", h.List)
	router.GET("/cash/entries/:id", h.GetByID)
	return router
}

func TestLedgerHandler_RecordEntry(t *testing.T) {
	sessionID, saleID := uuid.New(), uuid.New()
	svc := new(MockLedgerService)
	svc.On("RecordEntry", mock.Anything, testBranchID, mock.MatchedBy(func(req cashapp.RecordEntryRequest) bool {
		return req.SessionID == sessionID &&
			req.Type == "SALE" &&
			req.Amount.Equal(decimal.RequireFromString("59.90")) &&
			req.Reference.SaleID != nil && *req.Reference.SaleID == saleID &&
			req.RecordedBy != nil && *req.RecordedBy == testUserID
	})).Return(&cashapp.LedgerEntryResponse{
		ID:            uuid.New(),
		SessionID:     &sessionID,
		Type:          "SALE",
		Amount:        decimal.RequireFromString("59.90"),
		SignedAmount:  decimal.RequireFromString("59.90"),
		PaymentMethod: "CASH",
		AffectsCash:   true,
		CreatedAt:     time.Now(),
	}, nil)

	w := performRequest(newLedgerRouter(svc), http.MethodPost, "/cash/entries", map[string]any{
		"session_id":     sessionID,
		"type":           "SALE",
		"amount":         "59.90",
		"payment_method": "CASH",
		"reference":      map[string]any{"sale_id": saleID},
	})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	entry := decodeData[cashapp.LedgerEntryResponse](t, w)
	assert.True(t, entry.AffectsCash)
	svc.AssertExpectations(t)
}

func TestLedgerHandler_RecordEntry_SessionClosed(t *testing.T) {
	sessionID := uuid.New()
	svc := new(MockLedgerService)
	svc.On("RecordEntry", mock.Anything, testBranchID, mock.Anything).Return(nil, cash.NewSessionClosedError(sessionID))

	w := performRequest(newLedgerRouter(svc), http.MethodPost, "/cash/entries", map[string]any{
		"session_id":     sessionID,
		"type":           "SALE",
		"amount":         "10",
		"payment_method": "CARD",
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, dto.ErrCodeSessionClosed, decodeResponse(t, w).Error.Code)
}

func TestLedgerHandler_RecordEntry_InvalidAmount(t *testing.T) {
	svc := new(MockLedgerService)
	svc.On("RecordEntry", mock.Anything, testBranchID, mock.Anything).
		Return(nil, cash.NewInvalidAmountError("amount", decimal.Zero))

	w := performRequest(newLedgerRouter(svc), http.MethodPost, "/cash/entries", map[string]any{
		"session_id":     uuid.New(),
		"type":           "SALE",
		"amount":         "0",
		"payment_method": "CASH",
	})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestLedgerHandler_List(t *testing.T) {
	svc := new(MockLedgerService)
	svc.On("List", mock.Anything, testBranchID, mock.MatchedBy(func(f cashapp.LedgerEntryListFilter) bool {
		return f.PaymentMethod == "WALLET" && f.Type == "CREDIT_PAYMENT"
	})).Return([]cashapp.LedgerEntryResponse{{Type: "CREDIT_PAYMENT", PaymentMethod: "WALLET"}}, int64(1), nil)

	w := performRequest(newLedgerRouter(svc), http.MethodGet, "/cash/entries?payment_method=WALLET&type=CREDIT_PAYMENT", nil)

	require.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestLedgerHandler_GetByID(t *testing.T) {
	id := uuid.New()
	svc := new(MockLedgerService)
	svc.On("GetByID", mock.Anything, testBranchID, id).Return(&cashapp.LedgerEntryResponse{ID: id}, nil)

	w := performRequest(newLedgerRouter(svc), http.MethodGet, "/cash/entries/"+id.String(), nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id, decodeData[cashapp.LedgerEntryResponse](t, w).ID)
}
