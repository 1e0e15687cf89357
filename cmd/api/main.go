package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/oddwes/ridesofjulian/internal/activitysync"
	"github.com/oddwes/ridesofjulian/internal/api"
	"github.com/oddwes/ridesofjulian/internal/auth"
	"github.com/oddwes/ridesofjulian/internal/config"
	"github.com/oddwes/ridesofjulian/internal/domain"
	"github.com/oddwes/ridesofjulian/internal/llm"
	"github.com/oddwes/ridesofjulian/internal/logging"
	"github.com/oddwes/ridesofjulian/internal/observability"
	"github.com/oddwes/ridesofjulian/internal/outbox"
	"github.com/oddwes/ridesofjulian/internal/persistence/memory"
	persistence "github.com/oddwes/ridesofjulian/internal/persistence/postgres"
	"github.com/oddwes/ridesofjulian/internal/token"
	httptransport "github.com/oddwes/ridesofjulian/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		store      domain.Store
		tokens     token.Store
		dispatcher *outbox.Dispatcher
	)
	switch cfg.StoreBackend {
	case config.StoreMemory:
		logger.Warn("using in-memory store; data is lost on restart and no events are published")
		store = memory.NewStore()
		tokens = token.NewMemoryStore()
	default:
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			logger.Fatal("failed to connect to postgres", zap.Error(err))
		}
		defer pool.Close()

		producer := outbox.NewKafkaProducer(cfg.KafkaBrokers)
		defer producer.Close()

		registry := outbox.NewSchemaRegistryClient(cfg.SchemaRegistryURL)
		dispatcher = outbox.NewDispatcher(pool, producer, registry, cfg.OutboxPollInterval, cfg.OutboxBatchSize,
			outbox.WithLogger(logger.Named("outbox")))
		go dispatcher.Start(ctx)

		store = persistence.NewRepository(pool)
		tokens = token.NewPostgresStore(pool)
	}

	completer, err := llm.New(ctx, llm.Config{
		Provider: cfg.LLM.Provider,
		APIKey:   cfg.LLM.APIKey,
		Model:    cfg.LLM.Model,
		BaseURL:  cfg.LLM.BaseURL,
	}, logger.Named("llm"))
	if err != nil {
		logger.Fatal("failed to configure llm", zap.Error(err))
	}

	service := domain.NewService(store, completer, domain.Prompts{
		Analysis: cfg.Prompts.Analysis,
		Plan:     cfg.Prompts.Plan,
	}, domain.WithLogger(logger.Named("domain")))

	providerHTTP := &http.Client{Timeout: 30 * time.Second}
	factory := activitysync.ProviderFactory(tokens,
		activitysync.ProviderConfig{BaseURL: cfg.StravaBaseURL, Client: cfg.Strava},
		activitysync.ProviderConfig{BaseURL: cfg.WahooBaseURL, Client: cfg.Wahoo},
		providerHTTP, logger.Named("sync"))
	activities := activitysync.NewService(factory, service, logger.Named("sync"))

	handler := api.NewHandler(service, activities,
		api.WithRidePusher(activities),
		api.WithLogger(logger.Named("api")))
	server := httptransport.NewServer(httptransport.DefaultServerConfig(cfg.HTTPAddress),
		routes(cfg, logger, handler))

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("api listening", zap.String("address", cfg.HTTPAddress))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-shutdownCh
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
	}

	if dispatcher != nil {
		dispatcher.Wait()
	}
}

// routes mounts the API and metrics behind auth. CORS sits outermost so that
// rejected requests still carry the allow-origin headers. Auth copies the
// request, so the logging middleware sits inside it to observe the matched
// route pattern.
func routes(cfg config.Config, logger *zap.Logger, handler *api.Handler) http.Handler {
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	authMiddleware := auth.NewMiddleware(auth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer}, auth.SkipOperational)
	return httptransport.CORS(cfg.CORSOrigin,
		authMiddleware.Wrap(observability.Middleware(logger.Named("http"), mux)))
}
