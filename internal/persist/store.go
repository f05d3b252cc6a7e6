// Package persist keeps the local mirror of practice sessions: the
// question batch written by the setup step, read exactly once by the
// engine, plus the single-active-session guard marker.
package persist

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"vocadrill/internal/practice"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store holds the SQLite handle behind the session mirror and guard.
type Store struct {
	db *sql.DB
}

var _ practice.SessionStore = (*Store)(nil)

// Open connects to the SQLite database at dsn, applies the recommended
// pragmas and creates the schema.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Guard returns the active-session guard backed by this store.
func (s *Store) Guard() *Guard {
	return &Guard{db: s.db}
}

// SaveSession writes the session mirror for sessionID, replacing any
// previous record. The payload is validated against the question-set
// schema before it is written, so the engine never loads a malformed
// batch.
func (s *Store) SaveSession(ctx context.Context, sessionID string, data *practice.SessionData) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal session payload: %w", err)
	}

	if err := ValidatePayload(payload); err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO practice_sessions (session_id, payload, created_at)
		 VALUES (?, ?, CURRENT_TIMESTAMP)`,
		sessionID, string(payload),
	)
	if err != nil {
		return fmt.Errorf("save session %s: %w", sessionID, err)
	}
	return nil
}

// LoadSession reads the session mirror for sessionID. Absence is a
// hard practice.ErrSessionNotFound: the record is never reconstructed
// from the network here.
func (s *Store) LoadSession(ctx context.Context, sessionID string) (*practice.SessionData, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM practice_sessions WHERE session_id = ?`, sessionID,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, practice.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}

	var data practice.SessionData
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", sessionID, err)
	}
	return &data, nil
}

// DeleteSession removes the mirror for sessionID.
func (s *Store) DeleteSession(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM practice_sessions WHERE session_id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("delete session %s: %w", sessionID, err)
	}
	return nil
}

// Reset drops all local session mirrors and clears the guard.
func (s *Store) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM practice_sessions`); err != nil {
		return fmt.Errorf("reset sessions: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM active_session`); err != nil {
		return fmt.Errorf("reset guard: %w", err)
	}
	return nil
}

// applyPragmas configures SQLite for single-user local use.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

func createSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS practice_sessions (
			session_id TEXT PRIMARY KEY,
			payload    TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		// Single-row table: the guard marker.
		`CREATE TABLE IF NOT EXISTS active_session (
			slot       INTEGER PRIMARY KEY CHECK (slot = 1),
			session_id TEXT NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. VOCADRILL_DB environment variable
// 2. $XDG_DATA_HOME/vocadrill/vocadrill.db
// 3. ~/.local/share/vocadrill/vocadrill.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("VOCADRILL_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "vocadrill", "vocadrill.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
