package tui

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"vocadrill/internal/answer"
	"vocadrill/internal/matching"
	"vocadrill/internal/practice"
)

func (m Model) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	var content string
	switch {
	case m.errMsg != "":
		content = m.renderError()
	case m.quitConfirm:
		content = m.renderQuitConfirm()
	default:
		content = m.renderSession()
	}

	v.SetContent(lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Padding(1, 2).
		Render(content))
	return v
}

func (m Model) renderSession() string {
	sess := m.ctrl.Session()
	switch sess.Status {
	case practice.StatusLoading:
		return dimStyle.Render("Loading session...")
	case practice.StatusCompleted:
		return m.renderSummary()
	case practice.StatusFeedback:
		return m.renderFeedback()
	default:
		return m.renderQuestion()
	}
}

func (m Model) renderError() string {
	var b strings.Builder
	b.WriteString(wrongStyle.Render(m.errMsg))
	b.WriteString("\n")
	if m.redirectID != "" {
		b.WriteString(dimStyle.Render(fmt.Sprintf("Active session: %s", m.redirectID)))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(hintStyle.Render("Press any key to exit"))
	return b.String()
}

func (m Model) renderQuitConfirm() string {
	return summaryBoxStyle.Render(
		promptStyle.Render("End this session?") + "\n\n" +
			dimStyle.Render("Progress so far is kept locally, but the session\nwill not be finalized.") + "\n\n" +
			hintStyle.Render("[y] end session   [n] keep going"))
}

func (m Model) renderHeader() string {
	sess := m.ctrl.Session()
	left := titleStyle.Render("vocadrill")
	right := dimStyle.Render(fmt.Sprintf("Question %d/%d", sess.CurrentIndex+1, sess.TotalQuestions))

	pad := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 4
	if pad < 1 {
		pad = 1
	}
	return left + strings.Repeat(" ", pad) + right + "\n"
}

func (m Model) renderQuestion() string {
	q, err := m.ctrl.Current()
	if err != nil {
		return dimStyle.Render("Preparing question...")
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	switch q := q.(type) {
	case practice.MultipleChoice:
		b.WriteString(m.renderMultipleChoice(q))
	case practice.Typing:
		b.WriteString(m.renderTyping(q))
	case practice.Listening:
		b.WriteString(m.renderListening(q))
	case practice.Matching:
		b.WriteString(m.renderMatching())
	}
	return b.String()
}

func (m Model) renderMultipleChoice(q practice.MultipleChoice) string {
	var b strings.Builder
	b.WriteString(promptStyle.Render(q.Prompt))
	b.WriteString("\n\n")
	for i, opt := range q.Options {
		if i == m.mcSelected {
			b.WriteString(selectedStyle.Render(fmt.Sprintf("  > %s", opt)))
		} else {
			b.WriteString(fmt.Sprintf("    %s", opt))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(hintStyle.Render("[up/down] choose   [enter] answer   [ctrl+s] skip   [esc] quit"))
	return b.String()
}

func (m Model) renderTyping(q practice.Typing) string {
	var b strings.Builder
	b.WriteString(promptStyle.Render(q.Prompt))
	b.WriteString("\n")

	if example, ok := m.ctrl.MaskedExample(); ok {
		b.WriteString(dimStyle.Render("  " + example))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(hintStyle.Render("[enter] answer   [ctrl+r] hint   [ctrl+s] skip   [esc] quit"))
	return b.String()
}

func (m Model) renderListening(q practice.Listening) string {
	var b strings.Builder
	b.WriteString(promptStyle.Render("Type what you hear"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("  audio: %s", q.AudioURL)))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(hintStyle.Render("[enter] answer   [ctrl+s] skip   [esc] quit"))
	return b.String()
}

func (m Model) renderMatching() string {
	round, err := m.ctrl.Round()
	if err != nil {
		return dimStyle.Render("Preparing round...")
	}
	items := round.Items()

	var b strings.Builder
	b.WriteString(promptStyle.Render("Match the pairs"))
	b.WriteString("  ")
	b.WriteString(dimStyle.Render(fmt.Sprintf("%d/%d resolved", round.ResolvedPairs(), round.TotalPairs())))
	b.WriteString("\n\n")

	half := len(items) / 2
	for i := 0; i < half; i++ {
		left := m.renderCard(round, items, i)
		var right string
		if half+i < len(items) {
			right = m.renderCard(round, items, half+i)
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, "   ", right))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(hintStyle.Render("[arrows] move   [enter] pick   [esc] quit"))
	return b.String()
}

func (m Model) renderCard(round *matching.Engine, items []matching.Item, i int) string {
	item := items[i]
	style := cardStyle
	switch round.StateOf(item.ID) {
	case matching.StateSelected:
		style = cardSelectedStyle
	case matching.StateMatched:
		style = cardMatchedStyle
	case matching.StateDead:
		style = cardDeadStyle
	}

	label := item.Text
	if i == m.matchCursor {
		label = "> " + label
	} else {
		label = "  " + label
	}
	return style.Render(label)
}

func (m Model) renderFeedback() string {
	fb := m.ctrl.LastFeedback()
	if fb == nil {
		return dimStyle.Render("...")
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	if ferr := m.ctrl.FinishError(); ferr != nil {
		b.WriteString(wrongStyle.Render("Could not finalize the session."))
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(ferr.Error()))
		b.WriteString("\n\n")
		b.WriteString(hintStyle.Render("[r] retry   [q] give up"))
		return b.String()
	}

	switch {
	case fb.Skipped:
		b.WriteString(missingStyle.Render("Skipped"))
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("The answer was %s", correctStyle.Render(fb.CorrectAnswer)))
	case fb.IsCorrect:
		b.WriteString(correctStyle.Render("Correct!"))
		if fb.MatchedAnswer != "" && fb.MatchedAnswer != fb.CorrectAnswer {
			b.WriteString("\n")
			b.WriteString(dimStyle.Render(fmt.Sprintf("Counted as %q", fb.MatchedAnswer)))
		}
	default:
		b.WriteString(wrongStyle.Render("Not quite."))
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("The answer was %s", correctStyle.Render(fb.CorrectAnswer)))
		if len(fb.Diff) > 0 {
			b.WriteString("\n\n")
			b.WriteString(dimStyle.Render("Your answer: "))
			b.WriteString(renderDiff(fb.Diff))
		}
	}

	b.WriteString("\n\n")
	remaining := m.ctrl.Remaining()
	b.WriteString(hintStyle.Render(fmt.Sprintf("[enter] continue   auto-advance in %ds", remaining)))
	return b.String()
}

// renderDiff colors the learner's characters against the expected
// answer: green for in-place matches, red for wrong characters, amber
// for characters the answer has but the input missed.
func renderDiff(diff []answer.DiffToken) string {
	var b strings.Builder
	for _, tok := range diff {
		switch tok.State {
		case answer.DiffCorrect:
			b.WriteString(correctStyle.Render(tok.Got))
		case answer.DiffWrong:
			if tok.Got != "" {
				b.WriteString(wrongStyle.Render(tok.Got))
			}
		case answer.DiffMissing:
			b.WriteString(missingStyle.Render(tok.Char))
		}
	}
	return b.String()
}

func (m Model) renderSummary() string {
	result, ok := m.ctrl.Result()
	if !ok {
		return dimStyle.Render("Finishing up...")
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Session complete"))
	b.WriteString("\n\n")

	lines := []string{
		fmt.Sprintf("%s %d", correctStyle.Render("Correct"), result.Correct),
		fmt.Sprintf("%s   %d", wrongStyle.Render("Wrong"), result.Wrong),
		fmt.Sprintf("%s %d", missingStyle.Render("Skipped"), result.Skipped),
		"",
		fmt.Sprintf("Accuracy  %.0f%%", result.Accuracy*100),
		fmt.Sprintf("Duration  %ds", result.DurationSeconds),
	}

	if streak, ok := m.ctrl.Streak(); ok {
		lines = append(lines, "",
			fmt.Sprintf("Streak    %d day(s)", streak.CurrentStreak))
		if streak.CurrentStreak >= streak.LongestStreak && streak.CurrentStreak > 1 {
			lines = append(lines, accentRender("New personal best!"))
		}
	}

	b.WriteString(summaryBoxStyle.Render(strings.Join(lines, "\n")))
	b.WriteString("\n\n")
	b.WriteString(hintStyle.Render("[enter] done"))
	return b.String()
}

func accentRender(s string) string {
	return lipgloss.NewStyle().Foreground(accent).Bold(true).Render(s)
}
