package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	persistedGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "ridesofjulian",
		Subsystem: "persistence",
		Name:      "last_persisted_timestamp_seconds",
		Help:      "Unix timestamp of the most recent record persisted to Postgres, labeled by record kind.",
	}, []string{"kind"})

	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ridesofjulian",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests served, labeled by route pattern and status code.",
	}, []string{"route", "status"})

	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ridesofjulian",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Latency of HTTP requests, labeled by route pattern.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})
)

func init() {
	prometheus.MustRegister(persistedGauge, httpRequests, httpDuration)
}

// RecordPersisted updates the persistence watermark gauge for kind.
func RecordPersisted(kind string, ts time.Time) {
	if ts.IsZero() {
		return
	}
	persistedGauge.WithLabelValues(kind).Set(float64(ts.Unix()))
}
