package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collectMetric(t *testing.T, reader *sdkmetric.ManualReader, name string) (metricdata.Metrics, bool) {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m, true
			}
		}
	}
	return metricdata.Metrics{}, false
}

func TestHTTPMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	mw, err := HTTPMetrics(provider.Meter("test"))
	require.NoError(t, err)

	router := gin.New()
	router.Use(mw)
	router.POST("/api/v1/cash/sessions/:id/close", func(c *gin.Context) {
		c.Set(ErrorCodeKey, "ALREADY_CLOSED")
		c.Status(http.StatusConflict)
	})

	for range 2 {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/v1/cash/sessions/abc/close", nil))
	}
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	m, ok := collectMetric(t, reader, "http_server_request_total")
	require.True(t, ok)
	sum := m.Data.(metricdata.Sum[int64])

	byRoute := map[string]int64{}
	for _, dp := range sum.DataPoints {
		route, _ := dp.Attributes.Value(attribute.Key("http.route"))
		byRoute[route.AsString()] += dp.Value
		if route.AsString() == "/api/v1/cash/sessions/:id/close" {
			code, _ := dp.Attributes.Value(attribute.Key("error.code"))
			assert.Equal(t, "ALREADY_CLOSED", code.AsString())
			status, _ := dp.Attributes.Value(attribute.Key("http.status_code"))
			assert.Equal(t, "409", status.AsString())
		}
	}
	assert.Equal(t, int64(2), byRoute["/api/v1/cash/sessions/:id/close"])
	assert.Equal(t, int64(1), byRoute["unmatched"])

	active, ok := collectMetric(t, reader, "http_server_active_requests")
	require.True(t, ok)
	for _, dp := range active.Data.(metricdata.Sum[int64]).DataPoints {
		assert.Zero(t, dp.Value)
	}

	_, ok = collectMetric(t, reader, "http_server_request_duration_seconds")
	assert.True(t, ok)
}

func TestProfiling(t *testing.T) {
	for _, enabled := range []bool{true, false} {
		router := gin.New()
		router.Use(Profiling(enabled))
		router.GET("/api/v1/cash/sessions/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/cash/sessions/1", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}
