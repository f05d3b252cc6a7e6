// Package tui is the terminal front end of a practice session. It is a
// thin presentation layer: every state transition lives in the practice
// controller, the model only renders snapshots and translates keys.
package tui

import (
	"context"
	"errors"
	"time"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"vocadrill/internal/practice"
)

// refreshInterval drives the polling tick that picks up transitions
// happening off the key-event path: auto-advance, matching settle and
// the eager finish.
const refreshInterval = 250 * time.Millisecond

// startedMsg is sent when the controller has loaded the session.
type startedMsg struct {
	Err error
}

// refreshTickMsg redraws the screen on a fixed cadence.
type refreshTickMsg time.Time

// Model is the root Bubble Tea model of one practice session.
type Model struct {
	ctrl      *practice.Controller
	sessionID string

	input       textinput.Model
	mcSelected  int
	matchCursor int

	// lastIndex detects question changes so per-question input state
	// can be reset.
	lastIndex int

	quitConfirm bool
	errMsg      string
	redirectID  string
	width       int
	height      int
}

// New builds the session model. The controller must not be started
// yet; Init issues the start.
func New(ctrl *practice.Controller, sessionID string) Model {
	ti := textinput.New()
	ti.Placeholder = "Type your answer..."
	ti.Focus()

	return Model{
		ctrl:      ctrl,
		sessionID: sessionID,
		input:     ti,
		lastIndex: -1,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.startSession(),
		m.input.Focus(),
		refreshTick(),
	)
}

func (m Model) startSession() tea.Cmd {
	return func() tea.Msg {
		return startedMsg{Err: m.ctrl.Start(context.Background(), m.sessionID)}
	}
}

func refreshTick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return refreshTickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case startedMsg:
		return m.handleStarted(msg)

	case refreshTickMsg:
		m.syncQuestionState()
		return m, refreshTick()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// Forward everything else to the text input while it is active.
	if m.typingActive() {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleStarted(msg startedMsg) (tea.Model, tea.Cmd) {
	if msg.Err == nil {
		m.syncQuestionState()
		return *m, nil
	}

	var active *practice.ErrSessionActive
	switch {
	case errors.As(msg.Err, &active):
		m.redirectID = active.ActiveID
		m.errMsg = "Another session is already running."
	case errors.Is(msg.Err, practice.ErrSessionNotFound):
		m.errMsg = "Session not found. Import a question set first."
	default:
		m.errMsg = msg.Err.Error()
	}
	return *m, nil
}

// syncQuestionState resets per-question input when the controller has
// moved to a new question underneath us.
func (m *Model) syncQuestionState() {
	sess := m.ctrl.Session()
	if sess.CurrentIndex == m.lastIndex {
		return
	}
	m.lastIndex = sess.CurrentIndex
	m.mcSelected = 0
	m.matchCursor = 0
	m.input.SetValue("")
}

// typingActive reports whether keystrokes should feed the text input.
func (m Model) typingActive() bool {
	if m.errMsg != "" || m.quitConfirm {
		return false
	}
	if m.ctrl.Session().Status != practice.StatusQuestion {
		return false
	}
	q, err := m.ctrl.Current()
	if err != nil {
		return false
	}
	switch q.(type) {
	case practice.Typing, practice.Listening:
		return true
	}
	return false
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		m.ctrl.Quit(context.Background())
		return m, tea.Quit
	}

	if m.errMsg != "" {
		return m, tea.Quit
	}

	if m.quitConfirm {
		switch key {
		case "y", "Y":
			m.ctrl.Quit(context.Background())
			return m, tea.Quit
		case "n", "N", "esc":
			m.quitConfirm = false
		}
		return m, nil
	}

	sess := m.ctrl.Session()
	switch sess.Status {
	case practice.StatusQuestion:
		return m.handleQuestionKey(key, msg)
	case practice.StatusFeedback:
		return m.handleFeedbackKey(key)
	case practice.StatusCompleted:
		return m.handleCompletedKey(key)
	}
	return m, nil
}

func (m Model) handleQuestionKey(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key == "esc" {
		m.quitConfirm = true
		return m, nil
	}

	q, err := m.ctrl.Current()
	if err != nil {
		return m, nil
	}

	switch q := q.(type) {
	case practice.MultipleChoice:
		return m.handleChoiceKey(key, q)
	case practice.Matching:
		return m.handleMatchingKey(key)
	default:
		return m.handleTypingKey(key, msg)
	}
}

func (m Model) handleChoiceKey(key string, q practice.MultipleChoice) (tea.Model, tea.Cmd) {
	switch key {
	case "up", "k":
		if m.mcSelected > 0 {
			m.mcSelected--
		}
	case "down", "j":
		if m.mcSelected < len(q.Options)-1 {
			m.mcSelected++
		}
	case "enter":
		if m.mcSelected < len(q.Options) {
			m.ctrl.SubmitAnswer(context.Background(), q.Options[m.mcSelected])
			m.syncQuestionState()
		}
	case "ctrl+s":
		m.ctrl.Skip(context.Background())
	}
	return m, nil
}

func (m Model) handleTypingKey(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case "enter":
		value := m.input.Value()
		if value == "" {
			return m, nil
		}
		m.ctrl.SubmitAnswer(context.Background(), value)
		m.input.SetValue("")
		return m, nil
	case "ctrl+s":
		m.ctrl.Skip(context.Background())
		m.input.SetValue("")
		return m, nil
	case "ctrl+r":
		m.ctrl.RevealHint()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleMatchingKey(key string) (tea.Model, tea.Cmd) {
	round, err := m.ctrl.Round()
	if err != nil {
		return m, nil
	}
	items := round.Items()
	if len(items) == 0 {
		return m, nil
	}

	switch key {
	case "up", "k":
		if m.matchCursor > 0 {
			m.matchCursor--
		}
	case "down", "j":
		if m.matchCursor < len(items)-1 {
			m.matchCursor++
		}
	case "left", "h":
		// Cards are laid out source column first, target column
		// second; jumping half the list switches columns.
		if m.matchCursor >= len(items)/2 {
			m.matchCursor -= len(items) / 2
		}
	case "right", "l":
		if m.matchCursor < len(items)/2 {
			m.matchCursor += len(items) / 2
		}
	case "enter", " ":
		round.Select(items[m.matchCursor].ID)
		m.syncQuestionState()
	}
	return m, nil
}

func (m Model) handleFeedbackKey(key string) (tea.Model, tea.Cmd) {
	// A failed finalize keeps the session in feedback; offer a retry.
	if m.ctrl.FinishError() != nil {
		switch key {
		case "r", "R", "enter":
			ctrl := m.ctrl
			return m, func() tea.Msg {
				ctrl.Finish(context.Background())
				return refreshTickMsg(time.Now())
			}
		case "q", "Q", "esc":
			m.ctrl.Quit(context.Background())
			return m, tea.Quit
		}
		return m, nil
	}

	switch key {
	case "enter", " ":
		m.ctrl.Next(context.Background())
		m.syncQuestionState()
	case "esc":
		m.quitConfirm = true
	}
	return m, nil
}

func (m Model) handleCompletedKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "enter", "q", "Q", "esc":
		return m, tea.Quit
	}
	return m, nil
}

// Run starts the Bubble Tea program for one session.
func Run(ctrl *practice.Controller, sessionID string) error {
	p := tea.NewProgram(New(ctrl, sessionID))
	_, err := p.Run()
	return err
}
