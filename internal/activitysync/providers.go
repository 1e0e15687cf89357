package activitysync

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/oddwes/ridesofjulian/internal/domain"
	"github.com/oddwes/ridesofjulian/internal/provider/strava"
	"github.com/oddwes/ridesofjulian/internal/provider/wahoo"
	"github.com/oddwes/ridesofjulian/internal/token"
)

// ProviderConfig describes one provider's API and OAuth application.
type ProviderConfig struct {
	BaseURL string
	Client  token.ClientConfig
}

func (c ProviderConfig) enabled() bool {
	return c.Client.ClientID != ""
}

// ProviderFactory builds syncers whose clients draw tokens from store through
// per-user token helpers. A provider without a client id is left out.
func ProviderFactory(store token.Store, stravaCfg, wahooCfg ProviderConfig, httpClient *http.Client, logger *zap.Logger) Factory {
	if logger == nil {
		logger = zap.NewNop()
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	stravaOAuth := token.OAuthConfig(token.ProviderStrava, stravaCfg.Client)
	wahooOAuth := token.OAuthConfig(token.ProviderWahoo, wahooCfg.Client)

	return func(session domain.Session) *Syncer {
		var (
			sf StravaFetcher
			wf WahooFetcher
		)
		if stravaCfg.enabled() {
			helper := token.NewHelper(token.Key{UserID: session.UserID, Provider: token.ProviderStrava}, store, stravaOAuth,
				token.WithLogger(logger), token.WithHTTPClient(httpClient))
			sf = strava.New(stravaCfg.BaseURL, helper, httpClient)
		}
		if wahooCfg.enabled() {
			helper := token.NewHelper(token.Key{UserID: session.UserID, Provider: token.ProviderWahoo}, store, wahooOAuth,
				token.WithLogger(logger), token.WithHTTPClient(httpClient))
			wf = wahoo.New(wahooCfg.BaseURL, helper, httpClient)
		}
		return NewSyncer(sf, wf, logger)
	}
}
