// Package store handles SQLite persistence.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver.
)

// timeLayout is RFC 3339 with fixed-width nanoseconds, so stored
// timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNotFound is returned when a looked-up row does not exist.
var ErrNotFound = errors.New("not found")

// Store wraps SQLite access for users and game results.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	// A single connection keeps writes serialized.
	db.SetMaxOpenConns(1)
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, fmt.Errorf("failed to migrate db: %w", err)
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS app_meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS game_results (
			id INTEGER PRIMARY KEY,
			session_id TEXT NOT NULL,
			user_id INTEGER NOT NULL,
			game_type TEXT NOT NULL,
			radius REAL NOT NULL,
			hold_duration_ms REAL NOT NULL,
			duration_seconds INTEGER NOT NULL,
			score INTEGER NOT NULL,
			exit_attempts INTEGER NOT NULL,
			accuracy_percent REAL NOT NULL,
			hit_rate_percent REAL NOT NULL,
			avg_interval_ms REAL NOT NULL,
			avg_distance_px REAL NOT NULL,
			avg_speed_px_per_ms REAL NOT NULL,
			duration_ms INTEGER NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS hits (
			result_id INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			relative_ns INTEGER NOT NULL,
			avg_cursor_x REAL NOT NULL,
			avg_cursor_y REAL NOT NULL,
			target_x REAL NOT NULL,
			target_y REAL NOT NULL,
			radius REAL NOT NULL,
			PRIMARY KEY (result_id, seq)
		);`,
		`CREATE TABLE IF NOT EXISTS hold_attempts (
			result_id INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			target_id INTEGER NOT NULL,
			start_ns INTEGER NOT NULL,
			end_ns INTEGER NOT NULL,
			required_ms REAL NOT NULL,
			actual_ms REAL NOT NULL,
			success INTEGER NOT NULL,
			PRIMARY KEY (result_id, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_game_results_user_ended ON game_results(user_id, ended_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
