package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/oddwes/ridesofjulian/internal/domain"
)

// ErrDisabled is returned by the completer used when no provider is configured.
var ErrDisabled = errors.New("llm provider not configured")

// Config selects and configures a completion provider.
type Config struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
}

// New builds the configured completer. An empty provider yields a completer
// that always fails with ErrDisabled.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (domain.Completer, error) {
	switch cfg.Provider {
	case "", "none":
		return disabled{}, nil
	case "openai":
		oc := DefaultOpenAIConfig(cfg.APIKey)
		if cfg.Model != "" {
			oc.Model = cfg.Model
		}
		if cfg.BaseURL != "" {
			oc.BaseURL = cfg.BaseURL
		}
		return NewOpenAIClient(oc, logger), nil
	case "gemini":
		return NewGeminiClient(ctx, GeminiConfig{APIKey: cfg.APIKey, Model: cfg.Model, BaseURL: cfg.BaseURL}, logger)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

type disabled struct{}

func (disabled) Complete(context.Context, string, string) (string, error) {
	return "", ErrDisabled
}

var (
	completionCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ridesofjulian",
		Subsystem: "llm",
		Name:      "completions_total",
		Help:      "Number of completion calls, labeled by provider and outcome.",
	}, []string{"provider", "outcome"})

	completionDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ridesofjulian",
		Subsystem: "llm",
		Name:      "completion_duration_seconds",
		Help:      "Latency of completion calls.",
		Buckets:   prometheus.ExponentialBuckets(0.25, 2, 8),
	}, []string{"provider"})
)

func init() {
	prometheus.MustRegister(completionCounter, completionDuration)
}

func observeCompletion(provider string, err error, elapsed time.Duration) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	completionCounter.WithLabelValues(provider, outcome).Inc()
	completionDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
}
