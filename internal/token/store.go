// Package token keeps provider OAuth credentials fresh and persisted.
package token

import (
	"context"
	"sync"
	"time"
)

// Provider names a third-party fitness platform.
type Provider string

const (
	ProviderStrava Provider = "strava"
	ProviderWahoo  Provider = "wahoo"
)

// Key identifies one user's credentials for one provider.
type Key struct {
	UserID   string
	Provider Provider
}

// Credentials is the cached access/refresh/expiry triple.
type Credentials struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Valid reports whether the access token is usable at now.
func (c Credentials) Valid(now time.Time) bool {
	return c.AccessToken != "" && now.Before(c.ExpiresAt)
}

// Store persists credentials. Load returns nil, nil when nothing is cached.
type Store interface {
	Load(ctx context.Context, key Key) (*Credentials, error)
	Save(ctx context.Context, key Key, creds Credentials) error
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu    sync.RWMutex
	creds map[Key]Credentials
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{creds: make(map[Key]Credentials)}
}

// Load implements Store.
func (m *MemoryStore) Load(_ context.Context, key Key) (*Credentials, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.creds[key]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

// Save implements Store.
func (m *MemoryStore) Save(_ context.Context, key Key, creds Credentials) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds[key] = creds
	return nil
}
