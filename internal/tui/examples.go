package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/h0rv/counters/internal/domain"
)

// exampleItem wraps one example name for use in bubbles/list.
type exampleItem struct {
	section string
	name    string
}

func (i exampleItem) FilterValue() string {
	return i.name
}

// exampleDelegate renders an example with its section.
type exampleDelegate struct{}

func (d exampleDelegate) Height() int                             { return 1 }
func (d exampleDelegate) Spacing() int                            { return 0 }
func (d exampleDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d exampleDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	i, ok := item.(exampleItem)
	if !ok {
		return
	}

	section := DimStyle.Render(fmt.Sprintf("%-7s", i.section))
	if index == m.Index() {
		fmt.Fprint(w, section+SelectedItemStyle.Render("> "+i.name))
		return
	}
	fmt.Fprint(w, section+NormalItemStyle.Render("  "+i.name))
}

// ExamplesModel lists suggested counter names.
type ExamplesModel struct {
	list list.Model
}

// NewExamplesModel creates the picker over sections.
func NewExamplesModel(sections []domain.ExampleSection) ExamplesModel {
	var items []list.Item
	for _, s := range sections {
		for _, name := range s.Examples {
			items = append(items, exampleItem{section: s.Title, name: name})
		}
	}

	l := list.New(items, exampleDelegate{}, 80, 20)
	l.Title = "Examples"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = TitleStyle

	return ExamplesModel{list: l}
}

func (m ExamplesModel) Init() tea.Cmd {
	return tea.WindowSize()
}

func (m ExamplesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width - 2)
		m.list.SetHeight(msg.Height - 2)
		return m, nil

	case tea.KeyMsg:
		// Keys belong to the filter input while typing
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "ctrl+c":
			return m, func() tea.Msg { return QuitMsg{} }
		case "esc":
			if m.list.FilterState() == list.FilterApplied {
				break
			}
			return m, func() tea.Msg { return backMsg{} }
		case "enter":
			if item, ok := m.list.SelectedItem().(exampleItem); ok {
				return m, func() tea.Msg {
					return ExampleSelectedMsg{Name: item.name}
				}
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m ExamplesModel) View() string {
	return m.list.View()
}
