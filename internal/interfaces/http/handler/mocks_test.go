package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	cashapp "github.com/ferreteria/backend/internal/application/cash"
	"github.com/ferreteria/backend/internal/interfaces/http/dto"
	"github.com/ferreteria/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

var (
	testBranchID = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	testUserID   = uuid.MustParse("22222222-2222-2222-2222-222222222222")
)

// newTestRouter returns an engine whose requests carry the test identity,
// as the JWT middleware would set it.
func newTestRouter() *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(func(c *gin.Context) {
		c.Set(middleware.JWTBranchIDKey, testBranchID.String())
		c.Set(middleware.JWTUserIDKey, testUserID.String())
		c.Next()
	})
	return router
}

func performRequest(router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewBuffer(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func decodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var resp APIResponse[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp.Data
}

func ptrOrNil[T any](args mock.Arguments, i int) *T {
	if v := args.Get(i); v != nil {
		return v.(*T)
	}
	return nil
}

func sliceOrNil[T any](args mock.Arguments, i int) []T {
	if v := args.Get(i); v != nil {
		return v.([]T)
	}
	return nil
}

// ----- register -----

type MockRegisterService struct{ mock.Mock }

func (m *MockRegisterService) Create(ctx context.Context, branchID uuid.UUID, req cashapp.CreateRegisterRequest) (*cashapp.RegisterResponse, error) {
	args := m.Called(ctx, branchID, req)
	return ptrOrNil[cashapp.RegisterResponse](args, 0), args.Error(1)
}

func (m *MockRegisterService) Update(ctx context.Context, branchID, id uuid.UUID, req cashapp.UpdateRegisterRequest) (*cashapp.RegisterResponse, error) {
	args := m.Called(ctx, branchID, id, req)
	return ptrOrNil[cashapp.RegisterResponse](args, 0), args.Error(1)
}

func (m *MockRegisterService) Deactivate(ctx context.Context, branchID, id uuid.UUID) error {
	return m.Called(ctx, branchID, id).Error(0)
}

func (m *MockRegisterService) GetByID(ctx context.Context, branchID, id uuid.UUID) (*cashapp.RegisterResponse, error) {
	args := m.Called(ctx, branchID, id)
	return ptrOrNil[cashapp.RegisterResponse](args, 0), args.Error(1)
}

func (m *MockRegisterService) List(ctx context.Context, branchID uuid.UUID, filter cashapp.RegisterListFilter) ([]cashapp.RegisterResponse, int64, error) {
	args := m.Called(ctx, branchID, filter)
	return sliceOrNil[cashapp.RegisterResponse](args, 0), args.Get(1).(int64), args.Error(2)
}

// ----- session -----

type MockSessionService struct{ mock.Mock }

func (m *MockSessionService) Open(ctx context.Context, branchID, userID uuid.UUID, req cashapp.OpenSessionRequest) (*cashapp.SessionResponse, error) {
	args := m.Called(ctx, branchID, userID, req)
	return ptrOrNil[cashapp.SessionResponse](args, 0), args.Error(1)
}

func (m *MockSessionService) Close(ctx context.Context, branchID, sessionID, userID uuid.UUID, req cashapp.CloseSessionRequest) (*cashapp.SessionResponse, error) {
	args := m.Called(ctx, branchID, sessionID, userID, req)
	return ptrOrNil[cashapp.SessionResponse](args, 0), args.Error(1)
}

func (m *MockSessionService) GetByID(ctx context.Context, branchID, sessionID uuid.UUID) (*cashapp.SessionResponse, error) {
	args := m.Called(ctx, branchID, sessionID)
	return ptrOrNil[cashapp.SessionResponse](args, 0), args.Error(1)
}

func (m *MockSessionService) GetCurrent(ctx context.Context, branchID, registerID uuid.UUID) (*cashapp.SessionResponse, error) {
	args := m.Called(ctx, branchID, registerID)
	return ptrOrNil[cashapp.SessionResponse](args, 0), args.Error(1)
}

func (m *MockSessionService) List(ctx context.Context, branchID uuid.UUID, filter cashapp.SessionListFilter) ([]cashapp.SessionResponse, int64, error) {
	args := m.Called(ctx, branchID, filter)
	return sliceOrNil[cashapp.SessionResponse](args, 0), args.Get(1).(int64), args.Error(2)
}

func (m *MockSessionService) ListEntries(ctx context.Context, branchID, sessionID uuid.UUID) ([]cashapp.LedgerEntryResponse, error) {
	args := m.Called(ctx, branchID, sessionID)
	return sliceOrNil[cashapp.LedgerEntryResponse](args, 0), args.Error(1)
}

// ----- ledger -----

type MockLedgerService struct{ mock.Mock }

func (m *MockLedgerService) RecordEntry(ctx context.Context, branchID uuid.UUID, req cashapp.RecordEntryRequest) (*cashapp.LedgerEntryResponse, error) {
	args := m.Called(ctx, branchID, req)
	return ptrOrNil[cashapp.LedgerEntryResponse](args, 0), args.Error(1)
}

func (m *MockLedgerService) GetByID(ctx context.Context, branchID, id uuid.UUID) (*cashapp.LedgerEntryResponse, error) {
	args := m.Called(ctx, branchID, id)
	return ptrOrNil[cashapp.LedgerEntryResponse](args, 0), args.Error(1)
}

func (m *MockLedgerService) List(ctx context.Context, branchID uuid.UUID, filter cashapp.LedgerEntryListFilter) ([]cashapp.LedgerEntryResponse, int64, error) {
	args := m.Called(ctx, branchID, filter)
	return sliceOrNil[cashapp.LedgerEntryResponse](args, 0), args.Get(1).(int64), args.Error(2)
}

// ----- credit -----

type MockCreditService struct{ mock.Mock }

func (m *MockCreditService) CreateSchedule(ctx context.Context, branchID uuid.UUID, req cashapp.CreateScheduleRequest) (*cashapp.CreditSaleResponse, error) {
	args := m.Called(ctx, branchID, req)
	return ptrOrNil[cashapp.CreditSaleResponse](args, 0), args.Error(1)
}

func (m *MockCreditService) RegisterCreditSale(ctx context.Context, branchID uuid.UUID, req cashapp.RegisterCreditSaleRequest) (*cashapp.CreditSaleResponse, error) {
	args := m.Called(ctx, branchID, req)
	return ptrOrNil[cashapp.CreditSaleResponse](args, 0), args.Error(1)
}

func (m *MockCreditService) ApplyPayment(ctx context.Context, branchID, installmentID uuid.UUID, req cashapp.ApplyPaymentRequest) (*cashapp.PaymentResponse, error) {
	args := m.Called(ctx, branchID, installmentID, req)
	return ptrOrNil[cashapp.PaymentResponse](args, 0), args.Error(1)
}

func (m *MockCreditService) GetBySaleID(ctx context.Context, branchID, saleID uuid.UUID) (*cashapp.CreditSaleResponse, error) {
	args := m.Called(ctx, branchID, saleID)
	return ptrOrNil[cashapp.CreditSaleResponse](args, 0), args.Error(1)
}

func (m *MockCreditService) ListOverdue(ctx context.Context, branchID uuid.UUID, filter cashapp.OverdueListFilter) ([]cashapp.InstallmentResponse, int64, error) {
	args := m.Called(ctx, branchID, filter)
	return sliceOrNil[cashapp.InstallmentResponse](args, 0), args.Get(1).(int64), args.Error(2)
}

// ----- expense -----

type MockExpenseService struct{ mock.Mock }

func (m *MockExpenseService) Create(ctx context.Context, branchID, requestedBy uuid.UUID, req cashapp.CreateExpenseRequest) (*cashapp.ExpenseResponse, error) {
	args := m.Called(ctx, branchID, requestedBy, req)
	return ptrOrNil[cashapp.ExpenseResponse](args, 0), args.Error(1)
}

func (m *MockExpenseService) Approve(ctx context.Context, branchID, expenseID, approverID uuid.UUID, req cashapp.ApproveExpenseRequest) (*cashapp.ExpenseResponse, error) {
	args := m.Called(ctx, branchID, expenseID, approverID, req)
	return ptrOrNil[cashapp.ExpenseResponse](args, 0), args.Error(1)
}

func (m *MockExpenseService) Reject(ctx context.Context, branchID, expenseID, approverID uuid.UUID, req cashapp.RejectExpenseRequest) (*cashapp.ExpenseResponse, error) {
	args := m.Called(ctx, branchID, expenseID, approverID, req)
	return ptrOrNil[cashapp.ExpenseResponse](args, 0), args.Error(1)
}

func (m *MockExpenseService) GetByID(ctx context.Context, branchID, id uuid.UUID) (*cashapp.ExpenseResponse, error) {
	args := m.Called(ctx, branchID, id)
	return ptrOrNil[cashapp.ExpenseResponse](args, 0), args.Error(1)
}

func (m *MockExpenseService) List(ctx context.Context, branchID uuid.UUID, filter cashapp.ExpenseListFilter) ([]cashapp.ExpenseResponse, int64, error) {
	args := m.Called(ctx, branchID, filter)
	return sliceOrNil[cashapp.ExpenseResponse](args, 0), args.Get(1).(int64), args.Error(2)
}

// ----- transfer -----

type MockTransferService struct{ mock.Mock }

func (m *MockTransferService) Create(ctx context.Context, branchID, requestedBy uuid.UUID, req cashapp.CreateTransferRequest) (*cashapp.TransferResponse, error) {
	args := m.Called(ctx, branchID, requestedBy, req)
	return ptrOrNil[cashapp.TransferResponse](args, 0), args.Error(1)
}

func (m *MockTransferService) Complete(ctx context.Context, branchID, transferID, completedBy uuid.UUID) (*cashapp.TransferResponse, error) {
	args := m.Called(ctx, branchID, transferID, completedBy)
	return ptrOrNil[cashapp.TransferResponse](args, 0), args.Error(1)
}

func (m *MockTransferService) Cancel(ctx context.Context, branchID, transferID uuid.UUID, req cashapp.CancelTransferRequest) (*cashapp.TransferResponse, error) {
	args := m.Called(ctx, branchID, transferID, req)
	return ptrOrNil[cashapp.TransferResponse](args, 0), args.Error(1)
}

func (m *MockTransferService) GetByID(ctx context.Context, branchID, id uuid.UUID) (*cashapp.TransferResponse, error) {
	args := m.Called(ctx, branchID, id)
	return ptrOrNil[cashapp.TransferResponse](args, 0), args.Error(1)
}

func (m *MockTransferService) List(ctx context.Context, branchID uuid.UUID, filter cashapp.TransferListFilter) ([]cashapp.TransferResponse, int64, error) {
	args := m.Called(ctx, branchID, filter)
	return sliceOrNil[cashapp.TransferResponse](args, 0), args.Get(1).(int64), args.Error(2)
}

// ----- report -----

type MockReportService struct{ mock.Mock }

func (m *MockReportService) ComputeExpectedBalance(ctx context.Context, branchID, sessionID uuid.UUID) (*cashapp.ExpectedBalanceResponse, error) {
	args := m.Called(ctx, branchID, sessionID)
	return ptrOrNil[cashapp.ExpectedBalanceResponse](args, 0), args.Error(1)
}

func (m *MockReportService) GroupByPaymentMethod(ctx context.Context, branchID, sessionID uuid.UUID) ([]cashapp.MethodTotalsResponse, error) {
	args := m.Called(ctx, branchID, sessionID)
	return sliceOrNil[cashapp.MethodTotalsResponse](args, 0), args.Error(1)
}

func (m *MockReportService) GetSessionReport(ctx context.Context, branchID, sessionID uuid.UUID) (*cashapp.SessionReportResponse, error) {
	args := m.Called(ctx, branchID, sessionID)
	return ptrOrNil[cashapp.SessionReportResponse](args, 0), args.Error(1)
}

func (m *MockReportService) VerifySessionIntegrity(ctx context.Context, branchID, sessionID uuid.UUID) (*cashapp.IntegrityReport, error) {
	args := m.Called(ctx, branchID, sessionID)
	return ptrOrNil[cashapp.IntegrityReport](args, 0), args.Error(1)
}

func (m *MockReportService) GetUnsessionedEntries(ctx context.Context, branchID uuid.UUID, registerID *uuid.UUID, page, pageSize int) ([]cashapp.LedgerEntryResponse, int64, error) {
	args := m.Called(ctx, branchID, registerID, page, pageSize)
	return sliceOrNil[cashapp.LedgerEntryResponse](args, 0), args.Get(1).(int64), args.Error(2)
}

var (
	_ RegisterService = (*MockRegisterService)(nil)
	_ SessionService  = (*MockSessionService)(nil)
	_ LedgerService   = (*MockLedgerService)(nil)
	_ CreditService   = (*MockCreditService)(nil)
	_ ExpenseService  = (*MockExpenseService)(nil)
	_ TransferService = (*MockTransferService)(nil)
	_ ReportService   = (*MockReportService)(nil)
)
