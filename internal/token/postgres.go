package token

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps credentials in the provider_credentials table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore constructs a PostgresStore over pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Load implements Store.
func (s *PostgresStore) Load(ctx context.Context, key Key) (*Credentials, error) {
	var creds Credentials
	err := s.pool.QueryRow(ctx, `
		SELECT access_token, refresh_token, expires_at
		FROM provider_credentials
		WHERE user_id = $1 AND provider = $2`, key.UserID, string(key.Provider)).
		Scan(&creds.AccessToken, &creds.RefreshToken, &creds.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}
	creds.ExpiresAt = creds.ExpiresAt.UTC()
	return &creds, nil
}

// Save implements Store.
func (s *PostgresStore) Save(ctx context.Context, key Key, creds Credentials) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO provider_credentials (user_id, provider, access_token, refresh_token, expires_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (user_id, provider) DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			expires_at = EXCLUDED.expires_at,
			updated_at = NOW()`,
		key.UserID, string(key.Provider), creds.AccessToken, creds.RefreshToken, creds.ExpiresAt)
	if err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	return nil
}
