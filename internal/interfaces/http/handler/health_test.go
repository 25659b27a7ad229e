package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name       string
		db         Pinger
		wantStatus int
		wantDB     string
	}{
		{"no database", nil, http.StatusOK, "ok"},
		{"database up", stubPinger{}, http.StatusOK, "ok"},
		{"database down", stubPinger{err: errors.New("dial tcp: connection refused")}, http.StatusServiceUnavailable, "unreachable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/health", NewHealthHandler(tt.db, "1.2.3").Health)

			w := performRequest(router, http.MethodGet, "/health", nil)

			require.Equal(t, tt.wantStatus, w.Code)
			health := decodeData[HealthResponse](t, w)
			assert.Equal(t, tt.wantDB, health.Database)
			assert.Equal(t, "1.2.3", health.Version)
			assert.Equal(t, tt.wantStatus == http.StatusOK, decodeResponse(t, w).Success)
		})
	}
}
