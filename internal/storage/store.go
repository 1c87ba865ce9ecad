package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/glebarez/go-sqlite"

	"tradelink_go/internal/completion"
	"tradelink_go/internal/domain"
)

// Metadata keys written by KeyStore.
const (
	MetaConfigKeysUpdatedAt = "config_keys.updated_at"
	MetaConfigKeysCount     = "config_keys.count"
)

// KeyStore persists the gateway configuration key list in SQLite and keeps
// a completer in sync with it.
type KeyStore struct {
	db        *sql.DB
	completer *completion.Completer
	now       func() time.Time
}

// NewKeyStore opens (or creates) the database at dbPath with WAL enabled.
// completer may be nil.
func NewKeyStore(dbPath string, completer *completion.Completer) (*KeyStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// Pragmas are per connection; a single connection keeps them in force.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %s: %w", pragma, err)
		}
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS metadata (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS config_keys (
			ord INTEGER PRIMARY KEY,
			key TEXT NOT NULL
		);`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return &KeyStore{db: db, completer: completer, now: time.Now}, nil
}

// ReplaceConfigKeys swaps the stored list in one transaction. On error the
// previous stored list is left intact. The completer is rebuilt from keys
// either way.
func (s *KeyStore) ReplaceConfigKeys(ctx context.Context, keys []string) (err error) {
	if s.completer != nil {
		defer s.completer.Rebuild(keys)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, "DELETE FROM config_keys"); err != nil {
		return fmt.Errorf("failed to clear config keys: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO config_keys (ord, key) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, k := range keys {
		if _, err = stmt.ExecContext(ctx, i, k); err != nil {
			return fmt.Errorf("failed to insert config key %q: %w", k, err)
		}
	}

	ts := s.now().UnixMilli()
	if err = upsertMetadata(ctx, tx, MetaConfigKeysUpdatedAt, fmt.Sprint(ts), ts); err != nil {
		return err
	}
	if err = upsertMetadata(ctx, tx, MetaConfigKeysCount, fmt.Sprint(len(keys)), ts); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit config keys: %w", err)
	}

	slog.Debug("Config keys persisted", slog.Int("count", len(keys)))
	return nil
}

// LoadConfigKeys returns the stored list in its original order.
func (s *KeyStore) LoadConfigKeys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key FROM config_keys ORDER BY ord ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query config keys: %w", err)
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("failed to scan config key: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return keys, nil
}

// Restore loads the stored list into the completer and returns it.
func (s *KeyStore) Restore(ctx context.Context) ([]string, error) {
	keys, err := s.LoadConfigKeys(ctx)
	if err != nil {
		return nil, err
	}
	if s.completer != nil {
		s.completer.Rebuild(keys)
	}
	return keys, nil
}

// UpsertMetadata saves a key-value pair to the metadata table.
func (s *KeyStore) UpsertMetadata(ctx context.Context, key, value string, ts int64) error {
	return upsertMetadata(ctx, s.db, key, value, ts)
}

// GetMetadata retrieves a value from the metadata table. A missing key
// yields "" and no error.
func (s *KeyStore) GetMetadata(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

// Close closes the database connection.
func (s *KeyStore) Close() error {
	return s.db.Close()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsertMetadata(ctx context.Context, db execer, key, value string, ts int64) error {
	_, err := db.ExecContext(ctx,
		"INSERT INTO metadata (key, value, updated_at) VALUES (?, ?, ?) ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at",
		key, value, ts,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert metadata %s: %w", key, err)
	}
	return nil
}

var _ domain.ConfigKeySink = (*KeyStore)(nil)
