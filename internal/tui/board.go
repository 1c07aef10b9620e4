package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/h0rv/counters/internal/board"
	"github.com/h0rv/counters/internal/domain"
	"github.com/h0rv/counters/internal/repository"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
	"github.com/sirupsen/logrus"
)

// Layout constants
const (
	headerLines   = 1
	footerLines   = 2
	countWidth    = 6
	toastDuration = 3 * time.Second

	// searchDebounce collapses fast typing into one search
	searchDebounce = 100 * time.Millisecond
)

// BoardModel is the counters list screen. It never calls the presenter
// from Update: every presenter call runs in a command and its results come
// back as events on the channel.
type BoardModel struct {
	// Dependencies
	presenter *board.Presenter
	events    <-chan board.Event
	ctx       context.Context
	log       logrus.FieldLogger
	copyText  func(string) error

	// UI components
	keymap      KeyMap
	help        HelpModel
	spinner     spinner.Model
	searchInput textinput.Model

	// Board state
	vm       board.ViewModel
	cursor   int
	editMode bool
	selected map[string]bool

	// View state
	width      int
	height     int
	showHelp   bool
	searchMode bool
	confirmIDs []string
	counterErr *repository.Error
	deleteErrs []*repository.Error
	toast      string
	toastID    int
	searchID   int
}

// NewBoardModel creates a board bound to presenter. events must be the
// channel the presenter emits into.
func NewBoardModel(ctx context.Context, presenter *board.Presenter, events <-chan board.Event, log logrus.FieldLogger) BoardModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	ti := textinput.New()
	ti.Placeholder = "Search"
	ti.Prompt = "/ "

	if log == nil {
		log = logrus.StandardLogger()
	}

	return BoardModel{
		presenter:   presenter,
		events:      events,
		ctx:         ctx,
		log:         log.WithField("screen", "board"),
		copyText:    clipboard.WriteAll,
		keymap:      DefaultKeyMap(),
		help:        NewHelpModel(DefaultKeyMap()),
		spinner:     sp,
		searchInput: ti,
		vm:          board.Loading().ViewModel(),
		selected:    make(map[string]bool),
	}
}

// Init starts listening for presenter events and loads the counters.
func (m BoardModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		waitForEvent(m.events),
		m.run("load", m.presenter.Load),
	)
}

// Reload refetches from scratch after a counter was created.
func (m BoardModel) Reload() tea.Cmd {
	return m.run("reload", m.presenter.Reload)
}

// waitForEvent blocks for the next presenter event.
func waitForEvent(events <-chan board.Event) tea.Cmd {
	return func() tea.Msg {
		e, ok := <-events
		if !ok {
			return nil
		}
		return boardEventMsg{event: e}
	}
}

// run wraps a presenter call in a command. Failures already reach the view
// as events, so they are only logged here.
func (m BoardModel) run(name string, fn func(ctx context.Context) error) tea.Cmd {
	ctx, log := m.ctx, m.log
	return func() tea.Msg {
		if err := fn(ctx); err != nil {
			log.WithError(err).WithField("action", name).Debug("board action failed")
		}
		return nil
	}
}

// signal wraps a presenter call that only emits.
func signal(fn func()) tea.Cmd {
	return func() tea.Msg {
		fn()
		return nil
	}
}

// Update handles messages
func (m BoardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case boardEventMsg:
		cmd := (&m).handleEvent(msg.event)
		return m, tea.Batch(cmd, waitForEvent(m.events))

	case toastExpiredMsg:
		if msg.id == m.toastID {
			m.toast = ""
		}
		return m, nil

	case searchTickMsg:
		if msg.id == m.searchID {
			return m, m.searchCmd(msg.filter)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}

	return m, nil
}

// handleEvent applies one presenter event to the view.
func (m *BoardModel) handleEvent(e board.Event) tea.Cmd {
	switch e := e.(type) {
	case board.RenderEvent:
		m.vm = e.ViewModel
		m.syncRows()
	case board.TableEvent:
		m.vm.Rows = e.Counters
		m.vm.Searching = e.Searching
		m.syncRows()
	case board.CounterErrorEvent:
		m.counterErr = e.Err
	case board.DeleteFailedEvent:
		m.deleteErrs = e.Failures
	case board.ExitEditModeEvent:
		m.exitEditMode()
	case board.ToggleEditEvent:
		if m.editMode {
			m.exitEditMode()
		} else if m.vm.EditEnabled {
			m.editMode = true
		}
	case board.SelectAllEvent:
		if m.editMode {
			for _, c := range m.vm.Rows {
				m.selected[c.ID] = true
			}
		}
	case board.ShareEvent:
		if err := m.copyText(e.Text); err != nil {
			m.log.WithError(err).Warn("failed to copy to clipboard")
			return m.setToast("Couldn't copy to the clipboard")
		}
		noun := "1 counter"
		if n := strings.Count(e.Text, "\n") + 1; n > 1 {
			noun = fmt.Sprintf("%d counters", n)
		}
		return m.setToast(fmt.Sprintf("Copied %s to the clipboard", noun))
	case board.ConfirmDeleteEvent:
		m.confirmIDs = e.IDs
	case board.PresentAddCounterEvent:
		return func() tea.Msg { return showAddCounterMsg{} }
	}
	return nil
}

// handleKeyPress processes keyboard input
func (m BoardModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global quit
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	// Prompts take every key until answered
	if len(m.confirmIDs) > 0 {
		switch {
		case key.Matches(msg, m.keymap.Confirm):
			ids := m.confirmIDs
			m.confirmIDs = nil
			return m, m.deleteCmd(ids)
		case key.Matches(msg, m.keymap.Cancel):
			m.confirmIDs = nil
		}
		return m, nil
	}

	if m.counterErr != nil {
		switch {
		case key.Matches(msg, m.keymap.Retry) && m.counterErr.Retryable():
			err := m.counterErr
			m.counterErr = nil
			return m, m.run("retry", func(ctx context.Context) error {
				return m.presenter.Retry(ctx, err)
			})
		case msg.String() == "esc", msg.String() == "enter":
			m.counterErr = nil
		}
		return m, nil
	}

	if len(m.deleteErrs) > 0 {
		if msg.String() == "esc" || msg.String() == "enter" {
			m.deleteErrs = nil
		}
		return m, nil
	}

	// Help overlay
	if m.showHelp {
		if msg.String() == "?" || msg.String() == "q" || msg.String() == "esc" {
			m.showHelp = false
		}
		return m, nil
	}

	// Search mode
	if m.searchMode {
		switch msg.String() {
		case "enter":
			m.searchMode = false
			m.searchInput.Blur()
			return m, nil
		case "esc":
			m.searchMode = false
			m.searchInput.Blur()
			m.searchInput.SetValue("")
			m.searchID++
			return m, m.searchCmd("")
		default:
			before := m.searchInput.Value()
			var cmd tea.Cmd
			m.searchInput, cmd = m.searchInput.Update(msg)
			if value := m.searchInput.Value(); value != before {
				m.searchID++
				id := m.searchID
				return m, tea.Batch(cmd, tea.Tick(searchDebounce, func(time.Time) tea.Msg {
					return searchTickMsg{id: id, filter: value}
				}))
			}
			return m, cmd
		}
	}

	switch {
	case key.Matches(msg, m.keymap.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keymap.Help):
		m.showHelp = true
	case key.Matches(msg, m.keymap.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keymap.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keymap.Increment):
		if c, ok := m.currentRow(); ok && !m.editMode {
			return m, m.run("increment", func(ctx context.Context) error {
				return m.presenter.Increment(ctx, c)
			})
		}
	case key.Matches(msg, m.keymap.Decrement):
		if c, ok := m.currentRow(); ok && !m.editMode {
			return m, m.run("decrement", func(ctx context.Context) error {
				return m.presenter.Decrement(ctx, c)
			})
		}
	case key.Matches(msg, m.keymap.Search):
		// Nothing to search until a list is shown
		if m.vm.Loading || m.vm.Status == board.StatusError {
			return m, nil
		}
		m.searchMode = true
		return m, m.searchInput.Focus()
	case key.Matches(msg, m.keymap.Edit):
		if m.vm.EditEnabled || m.editMode {
			return m, signal(m.presenter.ToggleEdit)
		}
	case key.Matches(msg, m.keymap.Select):
		if c, ok := m.currentRow(); ok && m.editMode {
			if m.selected[c.ID] {
				delete(m.selected, c.ID)
			} else {
				m.selected[c.ID] = true
			}
		}
	case key.Matches(msg, m.keymap.SelectAll):
		if m.editMode {
			return m, signal(m.presenter.SelectAll)
		}
	case key.Matches(msg, m.keymap.Delete):
		if ids := m.selectedIDs(); m.editMode && len(ids) > 0 {
			return m, signal(func() { m.presenter.RequestDelete(ids) })
		}
	case key.Matches(msg, m.keymap.Share):
		if ids := m.selectedIDs(); m.editMode && len(ids) > 0 {
			return m, signal(func() { m.presenter.Share(ids) })
		}
	case key.Matches(msg, m.keymap.Add):
		return m, signal(m.presenter.Add)
	case key.Matches(msg, m.keymap.Refresh):
		return m, m.run("refresh", m.presenter.Refresh)
	case key.Matches(msg, m.keymap.Action):
		if kind := m.vm.Placeholder.Kind; kind != board.PlaceholderNone {
			return m, m.run("placeholder", func(ctx context.Context) error {
				return m.presenter.PlaceholderAction(ctx, kind)
			})
		}
	case msg.String() == "esc":
		if m.editMode {
			return m, signal(m.presenter.ToggleEdit)
		}
	}

	return m, nil
}

func (m BoardModel) searchCmd(filter string) tea.Cmd {
	return signal(func() { m.presenter.Search(filter) })
}

func (m BoardModel) deleteCmd(ids []string) tea.Cmd {
	return m.run("delete", func(ctx context.Context) error {
		return m.presenter.Delete(ctx, ids).Err()
	})
}

func (m *BoardModel) setToast(text string) tea.Cmd {
	m.toastID++
	m.toast = text
	id := m.toastID
	return tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return toastExpiredMsg{id: id}
	})
}

func (m *BoardModel) exitEditMode() {
	m.editMode = false
	m.selected = make(map[string]bool)
}

// syncRows keeps the cursor and selection valid after the rows changed.
func (m *BoardModel) syncRows() {
	if m.cursor >= len(m.vm.Rows) {
		m.cursor = len(m.vm.Rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}

	present := make(map[string]bool, len(m.vm.Rows))
	for _, c := range m.vm.Rows {
		present[c.ID] = true
	}
	for id := range m.selected {
		if !present[id] {
			delete(m.selected, id)
		}
	}
	if m.vm.Status != board.StatusHasContent {
		m.exitEditMode()
	}
}

func (m *BoardModel) moveCursor(delta int) {
	if len(m.vm.Rows) == 0 {
		return
	}
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(m.vm.Rows) {
		m.cursor = len(m.vm.Rows) - 1
	}
}

func (m BoardModel) currentRow() (domain.Counter, bool) {
	if m.cursor < 0 || m.cursor >= len(m.vm.Rows) {
		return domain.Counter{}, false
	}
	return m.vm.Rows[m.cursor], true
}

// selectedIDs returns the selected ids in row order.
func (m BoardModel) selectedIDs() []string {
	var ids []string
	for _, c := range m.vm.Rows {
		if m.selected[c.ID] {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// View renders the board - fills entire terminal exactly
func (m BoardModel) View() string {
	width := m.width
	height := m.height
	if width == 0 {
		width = 80
	}
	if height == 0 {
		height = 24
	}

	var sections []string
	sections = append(sections, m.renderHeader(width))

	bodyHeight := height - headerLines - footerLines
	if m.searchMode || m.searchInput.Value() != "" {
		sections = append(sections, m.searchInput.View())
		bodyHeight--
	}

	alert := m.renderAlert(width)
	if alert != "" {
		bodyHeight -= lipgloss.Height(alert)
	}
	if bodyHeight < 3 {
		bodyHeight = 3
	}

	var body string
	switch {
	case m.showHelp:
		helpLines := strings.Split(m.help.View(width), "\n")
		if len(helpLines) > bodyHeight {
			helpLines = helpLines[:bodyHeight]
		}
		body = strings.Join(helpLines, "\n")
	case m.vm.Loading:
		body = lipgloss.Place(width, bodyHeight, lipgloss.Center, lipgloss.Center, m.spinner.View()+" Loading...")
	case !m.vm.Placeholder.Hidden():
		body = lipgloss.Place(width, bodyHeight, lipgloss.Center, lipgloss.Center, renderPlaceholder(m.vm.Placeholder, width))
	default:
		body = m.renderRows(width, bodyHeight)
	}
	sections = append(sections, body)

	if alert != "" {
		sections = append(sections, alert)
	}
	sections = append(sections, m.renderFooter(width))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m BoardModel) renderHeader(width int) string {
	left := TitleStyle.UnsetMarginBottom().Render(m.vm.Title)
	if m.editMode {
		left += " " + EditModeStyle.Render("EDIT")
		if n := len(m.selectedIDs()); n > 0 {
			left += DimStyle.Render(fmt.Sprintf(" %d selected", n))
		}
	}

	right := DimStyle.Render("? help")
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func renderPlaceholder(p board.Placeholder, width int) string {
	wrap := width - 10
	if wrap < 20 {
		wrap = 20
	}

	lines := []string{TitleStyle.Render(p.Title)}
	if p.Message != "" {
		lines = append(lines, DimStyle.Render(wordwrap.String(p.Message, wrap)))
	}
	if p.Action != "" {
		lines = append(lines, "", SelectedItemStyle.Render("[enter] "+p.Action))
	}
	return lipgloss.JoinVertical(lipgloss.Center, lines...)
}

func (m BoardModel) renderRows(width, height int) string {
	start := 0
	if m.cursor >= height {
		start = m.cursor - height + 1
	}
	end := start + height
	if end > len(m.vm.Rows) {
		end = len(m.vm.Rows)
	}

	titleWidth := width - countWidth - 6
	if m.editMode {
		titleWidth -= 4
	}
	if titleWidth < 4 {
		titleWidth = 4
	}

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		lines = append(lines, m.renderRow(m.vm.Rows[i], i == m.cursor, titleWidth))
	}
	return strings.Join(lines, "\n")
}

func (m BoardModel) renderRow(c domain.Counter, current bool, titleWidth int) string {
	marker := "  "
	if current {
		marker = "> "
	}

	check := ""
	if m.editMode {
		check = "[ ] "
		if m.selected[c.ID] {
			check = "[x] "
		}
	}

	title := truncate.StringWithTail(c.Title, uint(titleWidth), "…")
	title += strings.Repeat(" ", titleWidth-lipgloss.Width(title))
	count := CountStyle.Render(fmt.Sprintf("%*d", countWidth, c.Count))

	style := NormalItemStyle
	if current {
		style = SelectedItemStyle
	}
	return style.Render(marker+check+title) + " " + count
}

func (m BoardModel) renderAlert(width int) string {
	wrap := width - 4
	if wrap < 20 {
		wrap = 20
	}

	switch {
	case len(m.confirmIDs) > 0:
		noun := "counter"
		if len(m.confirmIDs) > 1 {
			noun = "counters"
		}
		text := fmt.Sprintf("Delete %d %s? [y] Delete  [n] Cancel", len(m.confirmIDs), noun)
		return AlertStyle.Render(wordwrap.String(text, wrap))

	case m.counterErr != nil:
		actions := "[esc] Dismiss"
		if m.counterErr.Retryable() {
			actions = "[r] Retry  " + actions
		}
		text := ErrorStyle.Render(m.counterErr.Message()) + "\n" + actions
		return AlertStyle.Render(wordwrap.String(text, wrap))

	case len(m.deleteErrs) > 0:
		var b strings.Builder
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("%d of the counters couldn't be deleted.", len(m.deleteErrs))))
		for _, e := range m.deleteErrs {
			b.WriteString("\n" + DimStyle.Render("• "+e.Message()))
		}
		b.WriteString("\n[esc] Dismiss")
		return AlertStyle.Render(b.String())
	}
	return ""
}

func (m BoardModel) renderFooter(width int) string {
	status := m.vm.Summary
	if m.toast != "" {
		status = m.toast
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		DimStyle.Render(status),
		m.help.ShortView(width),
	)
}
