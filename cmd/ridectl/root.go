package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/oddwes/ridesofjulian/internal/activitysync"
	"github.com/oddwes/ridesofjulian/internal/config"
	"github.com/oddwes/ridesofjulian/internal/logging"
	"github.com/oddwes/ridesofjulian/internal/token"
)

// app carries the state shared by every subcommand.
type app struct {
	cfg        config.Config
	storePath  string
	userID     string
	logLevel   string
	timeout    time.Duration
	httpClient *http.Client
	logger     *zap.Logger
}

func newRootCmd(cfg config.Config) *cobra.Command {
	a := &app{cfg: cfg, httpClient: &http.Client{Timeout: 30 * time.Second}}

	root := &cobra.Command{
		Use:           "ridectl",
		Short:         "Local tooling for ride data",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.New(a.logLevel)
			if err != nil {
				return err
			}
			a.logger = logger
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.storePath, "store", "ridectl.db", "SQLite credential cache path")
	root.PersistentFlags().StringVar(&a.userID, "user", "local", "User id the credentials are stored under")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	root.PersistentFlags().DurationVar(&a.timeout, "timeout", 2*time.Minute, "Operation timeout")

	root.AddCommand(a.authCmd(), a.activitiesCmd(), a.streamsCmd(), a.fitCmd(), a.athleteCmd(), a.wahooCmd())
	return root
}

func (a *app) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), a.timeout)
}

func (a *app) openStore(ctx context.Context) (*token.SQLiteStore, error) {
	return token.OpenSQLite(ctx, a.storePath)
}

func (a *app) providerConfig(provider token.Provider) (activitysync.ProviderConfig, error) {
	switch provider {
	case token.ProviderStrava:
		return activitysync.ProviderConfig{BaseURL: a.cfg.StravaBaseURL, Client: a.cfg.Strava}, nil
	case token.ProviderWahoo:
		return activitysync.ProviderConfig{BaseURL: a.cfg.WahooBaseURL, Client: a.cfg.Wahoo}, nil
	default:
		return activitysync.ProviderConfig{}, fmt.Errorf("unknown provider %q (want strava or wahoo)", provider)
	}
}

func (a *app) helper(store token.Store, provider token.Provider) (*token.Helper, error) {
	pc, err := a.providerConfig(provider)
	if err != nil {
		return nil, err
	}
	return token.NewHelper(token.Key{UserID: a.userID, Provider: provider}, store, token.OAuthConfig(provider, pc.Client),
		token.WithLogger(a.logger), token.WithHTTPClient(a.httpClient)), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
