package httptransport

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewServerAppliesConfig(t *testing.T) {
	cfg := DefaultServerConfig(":8080")
	srv := NewServer(cfg, http.NotFoundHandler())
	require.Equal(t, ":8080", srv.Addr)
	require.Equal(t, 90*time.Second, srv.WriteTimeout)
	require.Equal(t, cfg.ReadTimeout, srv.ReadHeaderTimeout)
}

func TestCORSPreflight(t *testing.T) {
	called := false
	h := CORS("https://app.example", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodOptions, "/v1/workouts", nil))
	require.Equal(t, http.StatusNoContent, rr.Code)
	require.False(t, called)
	require.Equal(t, "https://app.example", rr.Header().Get("Access-Control-Allow-Origin"))

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/workouts", nil))
	require.True(t, called)
}

func TestCORSDisabled(t *testing.T) {
	h := CORS("", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodOptions, "/v1/workouts", nil))
	require.Equal(t, http.StatusTeapot, rr.Code)
	require.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}
