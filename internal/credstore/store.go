// Package credstore persists the questctl token pair in a local SQLite file
// so a session survives between invocations.
package credstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/aussiebroadwan/questboard/internal/credstore/migrations"
	"github.com/aussiebroadwan/questboard/pkg/questsdk"
	"github.com/aussiebroadwan/questboard/pkg/slogx"
)

const (
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
)

var _ questsdk.CredentialStore = (*SQLiteStore)(nil)

// SQLiteStore is a questsdk.CredentialStore backed by one row per token.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the credential database at dsn and
// applies pending migrations.
func Open(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// A single connection keeps ":memory:" databases coherent.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db, now: time.Now}
	if err := s.ApplyMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

// ApplyMigrations applies the embedded migrations.
func (s *SQLiteStore) ApplyMigrations() error {
	driver, err := sqlite.WithInstance(s.db, &sqlite.Config{})
	if err != nil {
		return err
	}

	source, err := iofs.New(migrations.Migrations, ".")
	if err != nil {
		return err
	}

	instance, err := migrate.NewWithInstance("iofs", source, "", driver)
	if err != nil {
		return err
	}

	if err := instance.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func (s *SQLiteStore) AccessToken(ctx context.Context) string {
	return s.get(ctx, keyAccessToken)
}

func (s *SQLiteStore) RefreshToken(ctx context.Context) string {
	return s.get(ctx, keyRefreshToken)
}

func (s *SQLiteStore) SaveAccessToken(ctx context.Context, token string) error {
	return s.put(ctx, keyAccessToken, token)
}

func (s *SQLiteStore) SaveRefreshToken(ctx context.Context, token string) error {
	return s.put(ctx, keyRefreshToken, token)
}

// Clear removes both tokens.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM credentials WHERE name IN (?, ?)`,
		keyAccessToken, keyRefreshToken,
	)
	return err
}

// LastRefreshed reports when the access token was last written, by login
// or by a refresh. It is the zero time when there is no session.
func (s *SQLiteStore) LastRefreshed(ctx context.Context) (time.Time, error) {
	return s.updatedAt(ctx, keyAccessToken)
}

func (s *SQLiteStore) updatedAt(ctx context.Context, name string) (time.Time, error) {
	var unix int64
	err := s.db.QueryRowContext(ctx,
		`SELECT updated_at FROM credentials WHERE name = ?`, name,
	).Scan(&unix)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(unix, 0).UTC(), nil
}

func (s *SQLiteStore) get(ctx context.Context, name string) string {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM credentials WHERE name = ?`, name,
	).Scan(&value)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slogx.FromContext(ctx).Warn("failed to read credential", "name", name, "error", err)
		}
		return ""
	}
	return value
}

func (s *SQLiteStore) put(ctx context.Context, name, value string) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO credentials (name, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT (name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		name, value, s.now().Unix(),
	)
	return err
}
