package provider

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	requestCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ridesofjulian",
		Subsystem: "provider",
		Name:      "requests_total",
		Help:      "Number of provider API requests, labeled by provider, method and status.",
	}, []string{"provider", "method", "status"})

	requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ridesofjulian",
		Subsystem: "provider",
		Name:      "request_duration_seconds",
		Help:      "Latency of provider API requests.",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 8),
	}, []string{"provider"})
)

func init() {
	prometheus.MustRegister(requestCounter, requestDuration)
}

func observeRequest(provider, method string, status int, elapsed time.Duration) {
	requestCounter.WithLabelValues(provider, method, statusLabel(status)).Inc()
	requestDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
}
