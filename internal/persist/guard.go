package persist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"vocadrill/internal/practice"
)

// Guard enforces the single-active-session rule through the one-row
// active_session table.
type Guard struct {
	db *sql.DB
}

var _ practice.SessionGuard = (*Guard)(nil)

// Acquire claims the active slot for sessionID. If another session
// already holds it the returned error is *practice.ErrSessionActive
// carrying that session's id. Re-acquiring for the holder is a no-op.
func (g *Guard) Acquire(sessionID string) error {
	ctx := context.Background()
	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin guard tx: %w", err)
	}
	defer tx.Rollback()

	var held string
	err = tx.QueryRowContext(ctx,
		`SELECT session_id FROM active_session WHERE slot = 1`).Scan(&held)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// Slot free.
	case err != nil:
		return fmt.Errorf("read guard: %w", err)
	case held == sessionID:
		return nil
	default:
		return &practice.ErrSessionActive{ActiveID: held}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO active_session (slot, session_id) VALUES (1, ?)`, sessionID); err != nil {
		return fmt.Errorf("claim guard: %w", err)
	}
	return tx.Commit()
}

// Release frees the slot if sessionID holds it. Releasing a slot held
// by someone else, or an empty slot, is a no-op.
func (g *Guard) Release(sessionID string) error {
	_, err := g.db.Exec(
		`DELETE FROM active_session WHERE slot = 1 AND session_id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("release guard: %w", err)
	}
	return nil
}

// Held reports the session currently holding the slot, if any.
func (g *Guard) Held() (string, bool) {
	var held string
	err := g.db.QueryRow(
		`SELECT session_id FROM active_session WHERE slot = 1`).Scan(&held)
	if err != nil {
		return "", false
	}
	return held, true
}
