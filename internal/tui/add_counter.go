package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/h0rv/counters/internal/addcounter"
	"github.com/h0rv/counters/internal/repository"
	"github.com/muesli/reflow/wordwrap"
)

const addCounterHint = "Give it a name. Creative block? Press ctrl+e to browse some examples."

// AddCounterModel lets the user name and save a new counter.
type AddCounterModel struct {
	presenter *addcounter.Presenter
	ctx       context.Context

	input  textinput.Model
	saving bool
	err    error
	width  int
}

// NewAddCounterModel creates the screen with the presenter's current name.
func NewAddCounterModel(ctx context.Context, presenter *addcounter.Presenter) AddCounterModel {
	ti := textinput.New()
	ti.Placeholder = "Cups of coffee"
	ti.Prompt = "> "
	ti.CharLimit = 80
	ti.SetValue(presenter.Name())
	ti.Focus()

	return AddCounterModel{
		presenter: presenter,
		ctx:       ctx,
		input:     ti,
	}
}

// SetExampleName pre-fills the name with an example.
func (m *AddCounterModel) SetExampleName(name string) {
	m.presenter.SetExampleName(name)
	m.input.SetValue(name)
	m.input.CursorEnd()
}

func (m AddCounterModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m AddCounterModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case saveFailedMsg:
		m.saving = false
		m.err = msg.err
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m AddCounterModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, func() tea.Msg { return QuitMsg{} }
	}
	if m.saving {
		return m, nil
	}

	// Error alert is dismissed before anything else
	if m.err != nil {
		if msg.String() == "esc" || msg.String() == "enter" {
			m.err = nil
		}
		return m, nil
	}

	switch msg.String() {
	case "esc":
		return m, func() tea.Msg { return backMsg{} }
	case "ctrl+e":
		return m, func() tea.Msg { return showExamplesMsg{} }
	case "enter":
		if !m.presenter.CanSave() {
			return m, nil
		}
		m.saving = true
		return m, m.save()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.presenter.SetName(m.input.Value())
	return m, cmd
}

func (m AddCounterModel) save() tea.Cmd {
	ctx, p := m.ctx, m.presenter
	return func() tea.Msg {
		counters, err := p.Save(ctx)
		if err != nil {
			return saveFailedMsg{err: err}
		}
		return CounterCreatedMsg{Counters: counters}
	}
}

func (m AddCounterModel) View() string {
	width := m.width
	if width == 0 {
		width = 80
	}
	wrap := width - 8
	if wrap > 72 {
		wrap = 72
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Add Counter"))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	switch {
	case m.saving:
		b.WriteString(DimStyle.Render("Saving..."))
	case m.err != nil:
		b.WriteString(AlertStyle.Render(ErrorStyle.Render(errorMessage(m.err)) + "\n[esc] Dismiss"))
	default:
		b.WriteString(DimStyle.Render(wordwrap.String(addCounterHint, wrap)))
	}

	b.WriteString("\n")
	b.WriteString(HelpStyle.Render("enter save • ctrl+e examples • esc cancel"))
	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

// errorMessage prefers the repository's user-facing message.
func errorMessage(err error) string {
	var repoErr *repository.Error
	if errors.As(err, &repoErr) {
		return repoErr.Message()
	}
	return err.Error()
}
