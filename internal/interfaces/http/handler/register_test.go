package handler

import (
	"net/http"
	"testing"

	cashapp "github.com/ferreteria/backend/internal/application/cash"
	"github.com/ferreteria/backend/internal/domain/cash"
	"github.com/ferreteria/backend/internal/domain/shared"
	"github.com/ferreteria/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newRegisterRouter(svc RegisterService) *gin.Engine {
	h := NewRegisterHandler(svc)
	router := newTestRouter()
	router.POST("/cash/registers", h.Create)
	router.GET("/cash/registers", h.List)
	router.GET("/cash/registers/:id", h.GetByID)
	router.PUT("/cash/registers/:id", h.Update)
	router.DELETE("/cash/registers/:id", h.Deactivate)
	return router
}

func TestRegisterHandler_Create(t *testing.T) {
	svc := new(MockRegisterService)
	svc.On("Create", mock.Anything, testBranchID, mock.MatchedBy(func(req cashapp.CreateRegisterRequest) bool {
		return req.Name == "Caja 1" && req.Type == "PRINCIPAL" &&
			req.SuggestedOpeningBalance.Equal(decimal.NewFromInt(200)) &&
			req.CreatedBy != nil && *req.CreatedBy == testUserID
	})).Return(&cashapp.RegisterResponse{ID: uuid.New(), Name: "Caja 1", Type: "PRINCIPAL", Active: true}, nil)

	w := performRequest(newRegisterRouter(svc), http.MethodPost, "/cash/registers", map[string]any{
		"name":                      "Caja 1",
		"type":                      "PRINCIPAL",
		"suggested_opening_balance": "200",
	})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "Caja 1", decodeData[cashapp.RegisterResponse](t, w).Name)
	svc.AssertExpectations(t)
}

func TestRegisterHandler_Create_InvalidType(t *testing.T) {
	svc := new(MockRegisterService)
	w := performRequest(newRegisterRouter(svc), http.MethodPost, "/cash/registers", map[string]any{
		"name": "Caja 1",
		"type": "BACKUP",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeValidation, decodeResponse(t, w).Error.Code)
}

func TestRegisterHandler_List(t *testing.T) {
	svc := new(MockRegisterService)
	svc.On("List", mock.Anything, testBranchID, mock.MatchedBy(func(f cashapp.RegisterListFilter) bool {
		return f.Search == "caja" && f.IncludeDeleted
	})).Return([]cashapp.RegisterResponse{{Name: "Caja 1"}, {Name: "Caja 2"}}, int64(2), nil)

	w := performRequest(newRegisterRouter(svc), http.MethodGet, "/cash/registers?search=caja&include_deleted=true", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeData[[]cashapp.RegisterResponse](t, w), 2)
	assert.Equal(t, int64(2), decodeResponse(t, w).Meta.Total)
}

func TestRegisterHandler_Update(t *testing.T) {
	id := uuid.New()
	svc := new(MockRegisterService)
	svc.On("Update", mock.Anything, testBranchID, id, mock.MatchedBy(func(req cashapp.UpdateRegisterRequest) bool {
		return req.Name == "Caja Principal"
	})).Return(&cashapp.RegisterResponse{ID: id, Name: "Caja Principal"}, nil)

	w := performRequest(newRegisterRouter(svc), http.MethodPut, "/cash/registers/"+id.String(),
		map[string]any{"name": "Caja Principal", "type": "PRINCIPAL"})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	svc.AssertExpectations(t)
}

func TestRegisterHandler_Deactivate(t *testing.T) {
	id := uuid.New()

	t.Run("ok", func(t *testing.T) {
		svc := new(MockRegisterService)
		svc.On("Deactivate", mock.Anything, testBranchID, id).Return(nil)

		w := performRequest(newRegisterRouter(svc), http.MethodDelete, "/cash/registers/"+id.String(), nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("open session blocks", func(t *testing.T) {
		svc := new(MockRegisterService)
		svc.On("Deactivate", mock.Anything, testBranchID, id).
			Return(shared.NewDomainError(cash.CodeRegisterHasOpenSession, "register has an open session"))

		w := performRequest(newRegisterRouter(svc), http.MethodDelete, "/cash/registers/"+id.String(), nil)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, dto.ErrCodeRegisterHasOpenSession, decodeResponse(t, w).Error.Code)
	})
}

func TestRegisterHandler_GetByID_OtherBranch(t *testing.T) {
	id := uuid.New()
	svc := new(MockRegisterService)
	svc.On("GetByID", mock.Anything, testBranchID, id).Return(nil, cash.NewNotFoundError("cash register", id))

	w := performRequest(newRegisterRouter(svc), http.MethodGet, "/cash/registers/"+id.String(), nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRegisterHandler_RequiresIdentity(t *testing.T) {
	svc := new(MockRegisterService)
	h := NewRegisterHandler(svc)
	router := gin.New()
	router.GET("/cash/registers", h.List)

	w := performRequest(router, http.MethodGet, "/cash/registers", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	svc.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
}
