package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"vocadrill/internal/answer"
	"vocadrill/internal/practice"
)

type fixedStore struct {
	data *practice.SessionData
}

func (s *fixedStore) LoadSession(_ context.Context, sessionID string) (*practice.SessionData, error) {
	if s.data == nil {
		return nil, practice.ErrSessionNotFound
	}
	return s.data, nil
}

type openGuard struct {
	held string
}

func (g *openGuard) Acquire(sessionID string) error {
	if g.held != "" && g.held != sessionID {
		return &practice.ErrSessionActive{ActiveID: g.held}
	}
	g.held = sessionID
	return nil
}

func (g *openGuard) Release(sessionID string) error {
	if g.held == sessionID {
		g.held = ""
	}
	return nil
}

func (g *openGuard) Held() (string, bool) {
	return g.held, g.held != ""
}

type quietService struct{}

func (quietService) SubmitAnswer(context.Context, practice.AnswerSubmission) error { return nil }
func (quietService) SubmitAnswerBatch(context.Context, string, []practice.BatchResult) error {
	return nil
}
func (quietService) FinalizeSession(context.Context, string, int) (*practice.FinalizeResult, error) {
	return &practice.FinalizeResult{}, nil
}
func (quietService) FetchStreakStatus(context.Context) (*practice.StreakStatus, error) {
	return &practice.StreakStatus{CurrentStreak: 3, LongestStreak: 7}, nil
}

func typingSession() *practice.SessionData {
	return &practice.SessionData{
		Questions: []practice.Question{
			practice.Typing{ID: "q1", VocabularyID: "v1", Prompt: "the dog", CorrectAnswer: "Hund"},
			practice.Typing{ID: "q2", VocabularyID: "v2", Prompt: "the cat", CorrectAnswer: "Katze"},
		},
		Total: 2,
		Mode:  practice.ModeTyping,
		Settings: practice.Settings{
			Tolerance: answer.ToleranceNormal,
		},
	}
}

func startedModel(t *testing.T, data *practice.SessionData) Model {
	t.Helper()
	ctrl := practice.NewController(
		&fixedStore{data: data},
		&openGuard{},
		quietService{},
		practice.WithFeedbackCountdown(5, time.Hour),
	)
	m := New(ctrl, "sess-1")
	m.width, m.height = 80, 24

	next, _ := m.Update(startedMsg{Err: ctrl.Start(context.Background(), "sess-1")})
	return next.(Model)
}

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func TestView_Question(t *testing.T) {
	m := startedModel(t, typingSession())
	view := m.renderSession()
	if !strings.Contains(view, "the dog") {
		t.Errorf("view missing prompt: %q", view)
	}
	if !strings.Contains(view, "1/2") {
		t.Errorf("view missing progress: %q", view)
	}
}

func TestSubmit_ShowsFeedback(t *testing.T) {
	m := startedModel(t, typingSession())

	for _, r := range "Hund" {
		next, _ := m.Update(keyPress(r))
		m = next.(Model)
	}
	next, _ := m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	m = next.(Model)

	if got := m.ctrl.Session().Status; got != practice.StatusFeedback {
		t.Fatalf("status = %v, want feedback", got)
	}
	view := m.renderSession()
	if !strings.Contains(view, "Correct") {
		t.Errorf("feedback view missing verdict: %q", view)
	}
}

func TestFeedback_EnterAdvances(t *testing.T) {
	m := startedModel(t, typingSession())

	if _, err := m.ctrl.SubmitAnswer(context.Background(), "Hund"); err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	next, _ := m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	m = next.(Model)

	sess := m.ctrl.Session()
	if sess.CurrentIndex != 1 || sess.Status != practice.StatusQuestion {
		t.Errorf("session = index %d status %v", sess.CurrentIndex, sess.Status)
	}
}

func TestQuitConfirm_Flow(t *testing.T) {
	m := startedModel(t, typingSession())

	next, _ := m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	m = next.(Model)
	if !m.quitConfirm {
		t.Fatal("esc should open quit confirm")
	}

	next, _ = m.Update(keyPress('n'))
	m = next.(Model)
	if m.quitConfirm {
		t.Fatal("n should dismiss quit confirm")
	}

	next, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	m = next.(Model)
	next, cmd := m.Update(keyPress('y'))
	m = next.(Model)
	if cmd == nil {
		t.Fatal("y should quit the program")
	}
}

func TestStart_MissingSessionShowsError(t *testing.T) {
	m := startedModel(t, nil)
	view := m.renderError()
	if !strings.Contains(view, "Session not found") {
		t.Errorf("error view = %q", view)
	}
}

func TestStart_ActiveSessionShowsRedirect(t *testing.T) {
	guard := &openGuard{held: "sess-0"}
	ctrl := practice.NewController(
		&fixedStore{data: typingSession()},
		guard,
		quietService{},
		practice.WithFeedbackCountdown(5, time.Hour),
	)
	m := New(ctrl, "sess-1")
	m.width, m.height = 80, 24

	next, _ := m.Update(startedMsg{Err: ctrl.Start(context.Background(), "sess-1")})
	m = next.(Model)

	if m.redirectID != "sess-0" {
		t.Errorf("redirectID = %q, want sess-0", m.redirectID)
	}
	if !strings.Contains(m.renderError(), "sess-0") {
		t.Error("error view should name the active session")
	}
}

func TestSummary_ShowsTallyAndStreak(t *testing.T) {
	data := typingSession()
	data.Questions = data.Questions[:1]
	data.Total = 1
	m := startedModel(t, data)

	if _, err := m.ctrl.SubmitAnswer(context.Background(), "Hund"); err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if err := m.ctrl.Next(context.Background()); err != nil {
		t.Fatalf("Next: %v", err)
	}

	view := m.renderSession()
	if !strings.Contains(view, "Session complete") {
		t.Errorf("summary missing title: %q", view)
	}
	if !strings.Contains(view, "3 day") {
		t.Errorf("summary missing streak: %q", view)
	}
}
