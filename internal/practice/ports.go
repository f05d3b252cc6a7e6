package practice

import (
	"context"
	"errors"
	"fmt"
)

// ErrSessionNotFound means no local mirror exists for the requested
// session id. Recoverable: the caller routes the user back to setup.
var ErrSessionNotFound = errors.New("session not found")

// ErrNotReady means the controller has no presentable question, either
// because it is still loading or because the current index is stale.
// Callers render a loading affordance rather than failing.
var ErrNotReady = errors.New("session not ready")

// ErrSessionActive is returned by Start when a different session
// already holds the guard. The caller must redirect back to ActiveID
// rather than starting the new session.
type ErrSessionActive struct {
	ActiveID string
}

func (e *ErrSessionActive) Error() string {
	return fmt.Sprintf("session %s is already active", e.ActiveID)
}

// ErrFinalizeFailed wraps a failed finalize call. The finish guard has
// been released, so the caller may retry.
type ErrFinalizeFailed struct {
	Err error
}

func (e *ErrFinalizeFailed) Error() string {
	return fmt.Sprintf("finalize session: %v", e.Err)
}

func (e *ErrFinalizeFailed) Unwrap() error { return e.Err }

// SessionStore reads the locally persisted session mirror. The engine
// never reconstructs a missing record from the network.
type SessionStore interface {
	LoadSession(ctx context.Context, sessionID string) (*SessionData, error)
}

// SessionGuard is the single-active-session soft lock. Only the
// controller writes or clears it, and only one session may hold it at
// a time per client.
type SessionGuard interface {
	// Acquire marks sessionID active. When a different session already
	// holds the guard it returns *ErrSessionActive.
	Acquire(sessionID string) error
	// Release clears the guard if sessionID holds it.
	Release(sessionID string) error
	// Held returns the active session id, if any.
	Held() (string, bool)
}

// AnswerSubmission is the fire-and-forget per-question report.
type AnswerSubmission struct {
	SessionID     string `json:"session_id"`
	VocabularyID  string `json:"vocabulary_id"`
	Mode          Mode   `json:"mode"`
	UserAnswer    string `json:"user_answer"`
	CorrectAnswer string `json:"correct_answer"`
	IsCorrect     bool   `json:"is_correct"`
	TimeSpentMs   int    `json:"time_spent_ms"`
	HintCount     int    `json:"hint_count"`
}

// BatchResult is one entry of the matching mode's per-round report.
type BatchResult struct {
	VocabularyID string `json:"vocabulary_id"`
	IsCorrect    bool   `json:"is_correct"`
	TimeSpentMs  int    `json:"time_spent_ms"`
}

// StreakStatus is the downstream state refreshed eagerly before the
// post-session redirect.
type StreakStatus struct {
	CurrentStreak  int  `json:"current_streak"`
	LongestStreak  int  `json:"longest_streak"`
	PracticedToday bool `json:"practiced_today"`
}

// FinalizeResult is the server's view of a finalized session. Fields
// the server omits are zero; the engine's local summary fills the gap.
type FinalizeResult struct {
	Correct         int     `json:"correct"`
	Wrong           int     `json:"wrong"`
	Total           int     `json:"total"`
	DurationSeconds int     `json:"duration_seconds"`
	Accuracy        float64 `json:"accuracy"`
}

// LearningService is the remote collaborator behind the consumed
// endpoints. Question selection, spaced repetition and score
// persistence live on its side.
type LearningService interface {
	SubmitAnswer(ctx context.Context, sub AnswerSubmission) error
	SubmitAnswerBatch(ctx context.Context, sessionID string, results []BatchResult) error
	FinalizeSession(ctx context.Context, sessionID string, durationSeconds int) (*FinalizeResult, error)
	FetchStreakStatus(ctx context.Context) (*StreakStatus, error)
}
