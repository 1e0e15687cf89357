package token

import "github.com/prometheus/client_golang/prometheus"

var refreshCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ridesofjulian",
	Subsystem: "token",
	Name:      "refresh_total",
	Help:      "Number of refresh exchanges attempted, labeled by provider and outcome.",
}, []string{"provider", "outcome"})

func init() {
	prometheus.MustRegister(refreshCounter)
}

func recordRefresh(provider Provider, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	refreshCounter.WithLabelValues(string(provider), outcome).Inc()
}
