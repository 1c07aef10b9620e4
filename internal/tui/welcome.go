package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
)

type welcomeFeature struct {
	badge string
	title string
	text  string
}

var welcomeFeatures = []welcomeFeature{
	{
		badge: "+",
		title: "Add almost anything",
		text:  "Capture cups of coffee you drink, glasses of water, books you read or anything else you want to keep track of.",
	},
	{
		badge: "#",
		title: "Count to self improve",
		text:  "Having data always in front of you makes it easier to turn good intentions into habits.",
	},
	{
		badge: "↗",
		title: "Count and share",
		text:  "Copy the counters you pick as plain text and share them anywhere.",
	},
}

// WelcomeModel is shown on first launch only.
type WelcomeModel struct {
	width int
}

// NewWelcomeModel creates the welcome screen.
func NewWelcomeModel() WelcomeModel {
	return WelcomeModel{}
}

func (m WelcomeModel) Init() tea.Cmd {
	return nil
}

func (m WelcomeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, func() tea.Msg { return QuitMsg{} }
		case "enter", " ":
			return m, func() tea.Msg { return showBoardMsg{} }
		}
	}
	return m, nil
}

func (m WelcomeModel) View() string {
	width := m.width
	if width == 0 {
		width = 80
	}
	wrap := width - 8
	if wrap > 72 {
		wrap = 72
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Welcome to Counters"))
	b.WriteString("\n")

	for _, f := range welcomeFeatures {
		b.WriteString(CountStyle.Render("["+f.badge+"] ") + lipgloss.NewStyle().Bold(true).Render(f.title))
		b.WriteString("\n")
		b.WriteString(DimStyle.Render(indent.String(wordwrap.String(f.text, wrap-4), 4)))
		b.WriteString("\n\n")
	}

	b.WriteString(SelectedItemStyle.Render("[enter] Continue"))
	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}
