package token

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS provider_credentials (
	user_id TEXT NOT NULL,
	provider TEXT NOT NULL,
	access_token TEXT NOT NULL,
	refresh_token TEXT NOT NULL,
	expires_at INTEGER NOT NULL,
	PRIMARY KEY (user_id, provider)
)`

// SQLiteStore keeps credentials in a local SQLite file. The CLI uses it as its
// local credential cache.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the credential database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create credentials table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Load implements Store.
func (s *SQLiteStore) Load(ctx context.Context, key Key) (*Credentials, error) {
	var (
		creds   Credentials
		expires int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT access_token, refresh_token, expires_at
		FROM provider_credentials
		WHERE user_id = ? AND provider = ?`, key.UserID, string(key.Provider)).
		Scan(&creds.AccessToken, &creds.RefreshToken, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}
	creds.ExpiresAt = time.Unix(expires, 0).UTC()
	return &creds, nil
}

// Save implements Store.
func (s *SQLiteStore) Save(ctx context.Context, key Key, creds Credentials) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO provider_credentials (user_id, provider, access_token, refresh_token, expires_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id, provider) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			expires_at = excluded.expires_at`,
		key.UserID, string(key.Provider), creds.AccessToken, creds.RefreshToken, creds.ExpiresAt.Unix())
	if err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	return nil
}
