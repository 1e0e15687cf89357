package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestMiddlewareLogsAndCounts(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/things/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	handler := Middleware(zap.New(core), mux)

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET /v1/things/{id}", "418"))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/things/42", nil))
	require.Equal(t, http.StatusTeapot, rr.Code)

	require.Equal(t, before+1, testutil.ToFloat64(httpRequests.WithLabelValues("GET /v1/things/{id}", "418")))
	entries := logs.FilterMessage("http request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(t, "/v1/things/42", fields["path"])
	require.EqualValues(t, http.StatusTeapot, fields["status"])
}

func TestRecordPersistedIgnoresZero(t *testing.T) {
	RecordPersisted("workout", time.Time{})
	ts := time.Unix(1_700_000_000, 0)
	RecordPersisted("workout", ts)
	require.Equal(t, float64(ts.Unix()), testutil.ToFloat64(persistedGauge.WithLabelValues("workout")))
}
