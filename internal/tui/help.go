package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"
)

// HelpOverlayStyle frames the full help.
var HelpOverlayStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("214")).
	Padding(1, 2).
	MarginTop(1)

// HelpModel wraps the bubbles help component for any key map.
type HelpModel struct {
	help   help.Model
	keymap help.KeyMap
}

// NewHelpModel creates a help model over keymap.
func NewHelpModel(keymap help.KeyMap) HelpModel {
	return HelpModel{help: help.New(), keymap: keymap}
}

// View renders the full help as an overlay.
func (m HelpModel) View(width int) string {
	m.help.ShowAll = true
	m.help.Width = width - 8 // Account for padding and border
	return HelpOverlayStyle.Render(m.help.View(m.keymap))
}

// ShortView renders the one-line hint shown under a screen.
func (m HelpModel) ShortView(width int) string {
	m.help.ShowAll = false
	m.help.Width = width
	return m.help.View(m.keymap)
}
