package token

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/oddwes/ridesofjulian/internal/domain"
)

// Option configures a Helper.
type Option func(*Helper)

// WithLogger sets the logger used for refresh diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(h *Helper) {
		h.logger = logger
	}
}

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(h *Helper) {
		h.now = now
	}
}

// WithHTTPClient sets the client used for token endpoint calls.
func WithHTTPClient(client *http.Client) Option {
	return func(h *Helper) {
		h.httpClient = client
	}
}

// Helper manages one user's credentials for one provider.
type Helper struct {
	key        Key
	store      Store
	config     *oauth2.Config
	logger     *zap.Logger
	now        func() time.Time
	httpClient *http.Client
}

// NewHelper constructs a Helper for key.
func NewHelper(key Key, store Store, config *oauth2.Config, opts ...Option) *Helper {
	h := &Helper{
		key:    key,
		store:  store,
		config: config,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Provider returns the provider this helper manages.
func (h *Helper) Provider() Provider {
	return h.key.Provider
}

// EnsureValidToken reports whether a usable access token is cached after at
// most one refresh exchange. Failures are logged and reported as false.
func (h *Helper) EnsureValidToken(ctx context.Context) bool {
	_, ok := h.ensure(ctx)
	return ok
}

// AccessToken returns a valid access token, refreshing it if needed. It
// returns domain.ErrUnauthorized when no valid token can be obtained.
func (h *Helper) AccessToken(ctx context.Context) (string, error) {
	creds, ok := h.ensure(ctx)
	if !ok {
		return "", fmt.Errorf("%s credentials: %w", h.key.Provider, domain.ErrUnauthorized)
	}
	return creds.AccessToken, nil
}

func (h *Helper) ensure(ctx context.Context) (Credentials, bool) {
	log := h.logger.With(zap.String("provider", string(h.key.Provider)), zap.String("user_id", h.key.UserID))

	creds, err := h.store.Load(ctx, h.key)
	if err != nil {
		log.Warn("load credentials failed", zap.Error(err))
		return Credentials{}, false
	}
	if creds == nil {
		log.Debug("no cached credentials")
		return Credentials{}, false
	}
	if creds.Valid(h.now()) {
		return *creds, true
	}
	if creds.RefreshToken == "" {
		log.Info("access token expired and no refresh token cached")
		return Credentials{}, false
	}

	refreshed, err := h.refresh(ctx, creds.RefreshToken)
	recordRefresh(h.key.Provider, err)
	if err != nil {
		log.Warn("token refresh failed", zap.Error(err))
		return Credentials{}, false
	}
	if err := h.store.Save(ctx, h.key, refreshed); err != nil {
		log.Warn("persist refreshed credentials failed", zap.Error(err))
		return Credentials{}, false
	}
	log.Debug("token refreshed", zap.Time("expires_at", refreshed.ExpiresAt))
	return refreshed, true
}

func (h *Helper) refresh(ctx context.Context, refreshToken string) (Credentials, error) {
	src := h.config.TokenSource(h.clientContext(ctx), &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return Credentials{}, err
	}
	return h.credentialsFrom(tok)
}

// Exchange trades an authorization code for credentials and persists them.
func (h *Helper) Exchange(ctx context.Context, code string) (Credentials, error) {
	tok, err := h.config.Exchange(h.clientContext(ctx), code)
	if err != nil {
		return Credentials{}, domain.Downstream(string(h.key.Provider), err)
	}
	creds, err := h.credentialsFrom(tok)
	if err != nil {
		return Credentials{}, domain.Downstream(string(h.key.Provider), err)
	}
	if err := h.store.Save(ctx, h.key, creds); err != nil {
		return Credentials{}, domain.Downstream("store", err)
	}
	return creds, nil
}

// AuthCodeURL returns the provider consent URL carrying state.
func (h *Helper) AuthCodeURL(state string) string {
	return h.config.AuthCodeURL(state)
}

func (h *Helper) clientContext(ctx context.Context) context.Context {
	if h.httpClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, h.httpClient)
}

// credentialsFrom prefers Strava's absolute expires_at over the relative
// expiry derived by oauth2.
func (h *Helper) credentialsFrom(tok *oauth2.Token) (Credentials, error) {
	if tok.AccessToken == "" {
		return Credentials{}, errors.New("token response has no access_token")
	}
	expires := tok.Expiry
	if at, ok := epochExtra(tok.Extra("expires_at")); ok {
		expires = time.Unix(at, 0)
	}
	if expires.IsZero() {
		return Credentials{}, errors.New("token response has no expiry")
	}
	return Credentials{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    expires.UTC(),
	}, nil
}

func epochExtra(v any) (int64, bool) {
	switch t := v.(type) {
	case float64:
		return int64(t), t > 0
	case int64:
		return t, t > 0
	case string:
		n, err := strconv.ParseInt(t, 10, 64)
		return n, err == nil && n > 0
	default:
		return 0, false
	}
}
