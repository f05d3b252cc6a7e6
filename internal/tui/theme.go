package tui

import (
	"charm.land/lipgloss/v2"
)

// Color palette
var (
	primary = lipgloss.Color("#6366F1") // Indigo
	accent  = lipgloss.Color("#F59E0B") // Amber
	success = lipgloss.Color("#22C55E") // Green
	failure = lipgloss.Color("#EF4444") // Red
	text    = lipgloss.Color("#F8FAFC") // White
	textDim = lipgloss.Color("#94A3B8") // Slate
	border  = lipgloss.Color("#334155") // Slate
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primary)

	promptStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(text)

	dimStyle = lipgloss.NewStyle().
			Foreground(textDim)

	hintStyle = lipgloss.NewStyle().
			Foreground(textDim).
			Italic(true)

	correctStyle = lipgloss.NewStyle().
			Foreground(success).
			Bold(true)

	wrongStyle = lipgloss.NewStyle().
			Foreground(failure).
			Bold(true)

	missingStyle = lipgloss.NewStyle().
			Foreground(accent).
			Bold(true)

	selectedStyle = lipgloss.NewStyle().
			Foreground(primary).
			Bold(true)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1)

	cardSelectedStyle = cardStyle.
				BorderForeground(primary).
				Foreground(primary)

	cardMatchedStyle = cardStyle.
				BorderForeground(success).
				Foreground(textDim)

	cardDeadStyle = cardStyle.
			BorderForeground(failure).
			Foreground(textDim).
			Strikethrough(true)

	summaryBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(1, 3)
)
