package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hazyhaar/orgwatch/internal/snapshot"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS snapshots (
	key         TEXT PRIMARY KEY,
	captured_at TEXT NOT NULL,
	payload     TEXT NOT NULL,
	updated_at  INTEGER NOT NULL
);`

// SQLite persists snapshots in a single-table database, keyed the same
// way as the file store. The payload column holds the same JSON
// document the file backend writes, so either backend's data stays
// readable by eye.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (and if needed creates) the database at path with the
// production pragma set and ensures the schema exists.
func NewSQLite(path string) (*SQLite, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("store: mkdir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite: %w", err)
	}
	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: %s: %w", pragma, err)
		}
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Load reads the row for the pair. No row means the pair was never
// saved.
func (s *SQLite) Load(ctx context.Context, provider snapshot.Provider, org string) (*snapshot.Snapshot, error) {
	key := Key(provider, org)
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM snapshots WHERE key = ?`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: query %s: %w", key, err)
	}
	snap := &snapshot.Snapshot{}
	if err := json.Unmarshal([]byte(payload), snap); err != nil {
		return nil, fmt.Errorf("store: decode %s: %w", key, err)
	}
	snap.Provider = provider
	snap.Org = org
	return snap, nil
}

// Save upserts the row for the snapshot's pair.
func (s *SQLite) Save(ctx context.Context, snap *snapshot.Snapshot) error {
	key := Key(snap.Provider, snap.Org)
	payload, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", key, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshots (key, captured_at, payload, updated_at)
		VALUES (?,?,?,?)
		ON CONFLICT(key) DO UPDATE SET
			captured_at=excluded.captured_at, payload=excluded.payload,
			updated_at=excluded.updated_at`,
		key, snap.CapturedAt.UTC().Format(time.RFC3339Nano), string(payload), time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("store: upsert %s: %w", key, err)
	}
	return nil
}

func (s *SQLite) Close() error { return s.db.Close() }
