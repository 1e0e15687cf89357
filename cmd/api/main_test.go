package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/oddwes/ridesofjulian/internal/api"
	"github.com/oddwes/ridesofjulian/internal/auth"
	"github.com/oddwes/ridesofjulian/internal/config"
	"github.com/oddwes/ridesofjulian/internal/domain"
	"github.com/oddwes/ridesofjulian/internal/persistence/memory"
)

const testOrigin = "http://app.test"

func newRoutes(t *testing.T) (http.Handler, config.Config) {
	t.Helper()
	cfg := config.Config{JWTSecret: "test-secret", JWTIssuer: "ridesofjulian", CORSOrigin: testOrigin}
	service := domain.NewService(memory.NewStore(), nil, domain.Prompts{})
	return routes(cfg, zaptest.NewLogger(t), api.NewHandler(service, nil)), cfg
}

func TestRoutesRejectedRequestCarriesCORSHeaders(t *testing.T) {
	handler, _ := newRoutes(t)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/workouts", nil))
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Equal(t, testOrigin, rr.Header().Get("Access-Control-Allow-Origin"))
	require.Contains(t, rr.Body.String(), `"type":"unauthorized"`)
}

func TestRoutesPreflightSkipsAuth(t *testing.T) {
	handler, _ := newRoutes(t)

	req := httptest.NewRequest(http.MethodOptions, "/v1/workouts", nil)
	req.Header.Set("Origin", testOrigin)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusNoContent, rr.Code)
	require.Equal(t, testOrigin, rr.Header().Get("Access-Control-Allow-Origin"))
	require.Contains(t, rr.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestRoutesAuthenticatedRequest(t *testing.T) {
	handler, cfg := newRoutes(t)

	tok, err := auth.Sign(auth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer}, "alice", time.Hour, time.Now())
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/v1/workouts", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, testOrigin, rr.Header().Get("Access-Control-Allow-Origin"))

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rr.Code)
}
