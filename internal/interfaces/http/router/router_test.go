package router

import (
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/ferreteria/backend/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())

	assert.Equal(t, "v1", r.apiVersion)
	assert.Equal(t, "/api/v1", r.BasePath())
	assert.Empty(t, r.registrars)

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "/api/v2", r.BasePath())
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithMiddleware(func(c *gin.Context) {
		c.Header("X-Api", "1")
		c.Next()
	}))

	registers := NewDomainGroup("registers", "/registers")
	registers.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.Register(registers)
	api := r.Setup()
	engine.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, "/api/v1", api.BasePath())

	w := serve(engine, http.MethodGet, "/api/v1/registers/ping")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
	assert.Equal(t, "1", w.Header().Get("X-Api"))

	// API middleware does not leak onto engine routes
	w = serve(engine, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("X-Api"))
}

func TestDomainGroup(t *testing.T) {
	t.Run("name and prefix", func(t *testing.T) {
		g := NewDomainGroup("credit", "/credit")
		assert.Equal(t, "credit", g.Name())
		assert.Equal(t, "/credit", g.Prefix())
	})

	t.Run("methods", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("registers", "/registers")
		ok := func(c *gin.Context) { c.String(http.StatusOK, c.Request.Method) }
		g.GET("/:id", ok).POST("", ok).PUT("/:id", ok).PATCH("/:id", ok).DELETE("/:id", ok)
		g.RegisterRoutes(engine.Group("/api/v1"))

		for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodDelete} {
			w := serve(engine, method, "/api/v1/registers/123")
			assert.Equal(t, http.StatusOK, w.Code, method)
			assert.Equal(t, method, w.Body.String())
		}
		assert.Equal(t, http.StatusOK, serve(engine, http.MethodPost, "/api/v1/registers").Code)
	})

	t.Run("group middleware and subgroups", func(t *testing.T) {
		engine := gin.New()
		cash := NewDomainGroup("cash", "/cash").Use(func(c *gin.Context) {
			c.Header("X-Domain", "cash")
			c.Next()
		})
		cash.Group("sessions", "/sessions").GET("", func(c *gin.Context) { c.String(http.StatusOK, "sessions") })
		cash.Group("entries", "/entries").GET("", func(c *gin.Context) { c.String(http.StatusOK, "entries") })
		cash.RegisterRoutes(engine.Group("/api/v1"))

		w := serve(engine, http.MethodGet, "/api/v1/cash/sessions")
		assert.Equal(t, "sessions", w.Body.String())
		assert.Equal(t, "cash", w.Header().Get("X-Domain"))

		w = serve(engine, http.MethodGet, "/api/v1/cash/entries")
		assert.Equal(t, "entries", w.Body.String())
		assert.Equal(t, "cash", w.Header().Get("X-Domain"))
	})
}

func newCashHandlers() CashHandlers {
	return CashHandlers{
		Register: handler.NewRegisterHandler(nil),
		Session:  handler.NewSessionHandler(nil),
		Ledger:   handler.NewLedgerHandler(nil),
		Report:   handler.NewReportHandler(nil),
		Credit:   handler.NewCreditHandler(nil),
		Expense:  handler.NewExpenseHandler(nil),
		Transfer: handler.NewTransferHandler(nil),
	}
}

func TestCashRoutes_Table(t *testing.T) {
	engine := gin.New()
	NewRouter(engine).Register(CashRoutes(newCashHandlers(), nil)...).Setup()

	var got []string
	for _, route := range engine.Routes() {
		got = append(got, route.Method+" "+route.Path)
	}
	sort.Strings(got)

	want := []string{
		"DELETE /api/v1/cash/registers/:id",
		"GET /api/v1/cash/entries",
		"GET /api/v1/cash/entries/:id",
		"GET /api/v1/cash/entries/unsessioned",
		"GET /api/v1/cash/registers",
		"GET /api/v1/cash/registers/:id",
		"GET /api/v1/cash/registers/:id/current-session",
		"GET /api/v1/cash/sessions",
		"GET /api/v1/cash/sessions/:id",
		"GET /api/v1/cash/sessions/:id/entries",
		"GET /api/v1/cash/sessions/:id/expected-balance",
		"GET /api/v1/cash/sessions/:id/integrity",
		"GET /api/v1/cash/sessions/:id/payment-methods",
		"GET /api/v1/cash/sessions/:id/report",
		"GET /api/v1/cash/transfers",
		"GET /api/v1/cash/transfers/:id",
		"GET /api/v1/credit/installments/overdue",
		"GET /api/v1/credit/sales/:sale_id",
		"GET /api/v1/expenses",
		"GET /api/v1/expenses/:id",
		"POST /api/v1/cash/entries",
		"POST /api/v1/cash/registers",
		"POST /api/v1/cash/sessions",
		"POST /api/v1/cash/sessions/:id/close",
		"POST /api/v1/cash/transfers",
		"POST /api/v1/cash/transfers/:id/cancel",
		"POST /api/v1/cash/transfers/:id/complete",
		"POST /api/v1/credit/installments/:id/payments",
		"POST /api/v1/credit/sales",
		"POST /api/v1/credit/schedules",
		"POST /api/v1/expenses",
		"POST /api/v1/expenses/:id/approve",
		"POST /api/v1/expenses/:id/reject",
		"PUT /api/v1/cash/registers/:id",
	}
	assert.Equal(t, want, got)
}

func TestCashRoutes_IdempotentCommands(t *testing.T) {
	guard := func(c *gin.Context) {
		c.AbortWithStatus(http.StatusConflict)
	}
	engine := gin.New()
	NewRouter(engine).Register(CashRoutes(newCashHandlers(), guard)...).Setup()

	guardedPaths := []string{
		"/api/v1/cash/entries",
		"/api/v1/credit/installments/6f1c3a9e-0000-4000-8000-000000000001/payments",
		"/api/v1/cash/transfers/6f1c3a9e-0000-4000-8000-000000000001/complete",
	}
	for _, path := range guardedPaths {
		assert.Equal(t, http.StatusConflict, serve(engine, http.MethodPost, path).Code, path)
	}

	// Other commands skip the guard and stop at the missing identity
	w := serve(engine, http.MethodPost, "/api/v1/cash/sessions")
	require.NotEqual(t, http.StatusConflict, w.Code)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
