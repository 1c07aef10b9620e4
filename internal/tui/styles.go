package tui

import "github.com/charmbracelet/lipgloss"

var (
	// TitleStyle is used for screen titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214")). // Orange
			MarginBottom(1)

	// SelectedItemStyle is used for the row under the cursor.
	SelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("214")).
				Bold(true)

	// NormalItemStyle is used for other rows.
	NormalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")) // Light gray

	// CountStyle renders a counter's value.
	CountStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	// DimStyle is used for secondary text.
	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	// ErrorStyle is used for error messages.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")). // Red
			Bold(true)

	// PromptStyle is used for prompt text.
	PromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("99")).
			MarginBottom(1)

	// HelpStyle is used for help text.
	HelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1)

	// AlertStyle frames confirmation and error prompts.
	AlertStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("214")).
			Padding(0, 1)

	// EditModeStyle is the badge shown while editing.
	EditModeStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("214")).
			Foreground(lipgloss.Color("0")).
			Padding(0, 1)
)
