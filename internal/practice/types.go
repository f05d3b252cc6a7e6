// Package practice implements the session engine: the state machine
// that runs a timed review session over a fixed question set, delegates
// answer checking and the matching mini-game, drives the auto-advance
// countdown and finalizes the session against the learning service.
package practice

import (
	"fmt"
	"time"

	"vocadrill/internal/answer"
)

// Mode is the question variant a session serves.
type Mode string

const (
	ModeMultipleChoice Mode = "multiple_choice"
	ModeTyping         Mode = "typing"
	ModeListening      Mode = "listening"
	ModeMatching       Mode = "matching"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeMultipleChoice, ModeTyping, ModeListening, ModeMatching:
		return true
	}
	return false
}

// Direction is the translation direction of a session.
type Direction string

const (
	DirectionSourceToTarget Direction = "source_to_target"
	DirectionTargetToSource Direction = "target_to_source"
)

// Status is the controller's state-machine state.
type Status int

const (
	StatusLoading Status = iota
	StatusQuestion
	StatusFeedback
	StatusCompleted
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusQuestion:
		return "question"
	case StatusFeedback:
		return "feedback"
	case StatusCompleted:
		return "completed"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Settings are the per-session options written by the setup step.
type Settings struct {
	Tolerance    answer.Tolerance `json:"tolerance"`
	ClozeEnabled bool             `json:"cloze_enabled"`
}

// Session is the engine's view of one timed run of questions.
type Session struct {
	ID             string
	Mode           Mode
	Direction      Direction
	TotalQuestions int
	StartedAt      time.Time
	CurrentIndex   int
	Status         Status
}

// AnswerRecord captures one non-matching question's outcome. Records
// are created once on submit or skip and never mutated; the
// end-of-session summary is derived from them even when the remote
// write failed.
type AnswerRecord struct {
	VocabularyID  string
	Mode          Mode
	UserAnswer    string
	CorrectAnswer string
	IsCorrect     bool
	TimeSpentMs   int
	HintCount     int
}

// SessionResult is the read-only summary produced once at completion.
type SessionResult struct {
	Correct         int
	Wrong           int
	Skipped         int
	Total           int
	DurationSeconds int
	Accuracy        float64
}

// SkipSentinel is recorded as the user answer when a question is
// skipped.
const SkipSentinel = ""
