package tui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/h0rv/counters/internal/addcounter"
	"github.com/h0rv/counters/internal/board"
	"github.com/h0rv/counters/internal/domain"
	"github.com/h0rv/counters/internal/mirror"
	"github.com/sirupsen/logrus"
)

// AppScreen represents the different screens in the application flow.
type AppScreen int

const (
	ScreenWelcome AppScreen = iota
	ScreenBoard
	ScreenAddCounter
	ScreenExamples
)

func (s AppScreen) String() string {
	switch s {
	case ScreenWelcome:
		return "welcome"
	case ScreenBoard:
		return "board"
	case ScreenAddCounter:
		return "add-counter"
	case ScreenExamples:
		return "examples"
	default:
		return "unknown"
	}
}

// Deps are the collaborators the TUI drives.
type Deps struct {
	Board      *board.Presenter
	Events     <-chan board.Event // The channel Board emits into
	AddCounter *addcounter.Presenter
	Prefs      mirror.Prefs
	Examples   []domain.ExampleSection
	Logger     logrus.FieldLogger
}

var (
	ErrNilBoard      = errors.New("tui: board presenter is required")
	ErrNilEvents     = errors.New("tui: board event channel is required")
	ErrNilAddCounter = errors.New("tui: add counter presenter is required")
	ErrNilPrefs      = errors.New("tui: prefs are required")
)

// AppModel is the root Bubble Tea model. It keeps a navigation stack and
// routes messages to the screen on top.
type AppModel struct {
	// Dependencies
	ctx  context.Context
	deps Deps
	log  logrus.FieldLogger

	// Navigation
	stack []AppScreen
	size  tea.WindowSizeMsg

	// Screen models, kept across transitions
	welcome    WelcomeModel
	board      BoardModel
	addCounter AddCounterModel
	examples   ExamplesModel
}

// NewAppModel creates the root model. The first screen is Welcome until
// the user has seen it once, then Board.
func NewAppModel(ctx context.Context, deps Deps) (AppModel, error) {
	switch {
	case deps.Board == nil:
		return AppModel{}, ErrNilBoard
	case deps.Events == nil:
		return AppModel{}, ErrNilEvents
	case deps.AddCounter == nil:
		return AppModel{}, ErrNilAddCounter
	case deps.Prefs == nil:
		return AppModel{}, ErrNilPrefs
	}
	if deps.Logger == nil {
		deps.Logger = logrus.StandardLogger()
	}
	if deps.Examples == nil {
		deps.Examples = domain.DefaultExamples()
	}

	m := AppModel{
		ctx:   ctx,
		deps:  deps,
		log:   deps.Logger.WithField("component", "tui"),
		board: NewBoardModel(ctx, deps.Board, deps.Events, deps.Logger),
	}

	if deps.Prefs.Bool(domain.PrefWelcomeWasShown) {
		m.stack = []AppScreen{ScreenBoard}
	} else {
		m.welcome = NewWelcomeModel()
		m.stack = []AppScreen{ScreenWelcome}
	}
	return m, nil
}

// Screen returns the screen on top of the stack.
func (m AppModel) Screen() AppScreen {
	return m.stack[len(m.stack)-1]
}

// Init starts the first screen.
func (m AppModel) Init() tea.Cmd {
	if m.Screen() == ScreenBoard {
		return m.board.Init()
	}
	return m.welcome.Init()
}

// Update handles navigation and delegates everything else.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.size = msg
		return m.broadcast(msg)

	case QuitMsg:
		return m, tea.Quit

	case showBoardMsg:
		return m.showBoard()

	case showAddCounterMsg:
		return m.showAddCounter()

	case showExamplesMsg:
		return m.showExamples()

	case backMsg:
		m.back()
		return m, nil

	case CounterCreatedMsg:
		return m.counterWasCreated()

	case ExampleSelectedMsg:
		return m.exampleWasSelected(msg.Name)

	case boardEventMsg, searchTickMsg, toastExpiredMsg, spinner.TickMsg:
		// The board keeps working whatever screen is on top
		var cmd tea.Cmd
		m.board, cmd = updateBoard(m.board, msg)
		return m, cmd
	}

	return m.delegate(msg)
}

// showBoard leaves Welcome for the Board and remembers it was shown.
func (m AppModel) showBoard() (tea.Model, tea.Cmd) {
	if err := m.deps.Prefs.SetBool(domain.PrefWelcomeWasShown, true); err != nil {
		m.log.WithError(err).Warn("failed to save welcome flag")
	}
	m.stack = []AppScreen{ScreenBoard}
	return m, tea.Batch(m.board.Init(), m.resize())
}

func (m AppModel) showAddCounter() (tea.Model, tea.Cmd) {
	if m.Screen() != ScreenBoard {
		return m, nil
	}
	m.addCounter = NewAddCounterModel(m.ctx, m.deps.AddCounter)
	m.stack = append(m.stack, ScreenAddCounter)
	return m, tea.Batch(m.addCounter.Init(), m.resize())
}

func (m AppModel) showExamples() (tea.Model, tea.Cmd) {
	if m.Screen() != ScreenAddCounter {
		return m, nil
	}
	m.examples = NewExamplesModel(m.deps.Examples)
	m.stack = append(m.stack, ScreenExamples)
	return m, tea.Batch(m.examples.Init(), m.resize())
}

// back pops one screen. The root screen stays.
func (m *AppModel) back() {
	if len(m.stack) > 1 {
		m.stack = m.stack[:len(m.stack)-1]
	}
}

// counterWasCreated pops back to the Board, which reloads.
func (m AppModel) counterWasCreated() (tea.Model, tea.Cmd) {
	for m.Screen() != ScreenBoard && len(m.stack) > 1 {
		m.back()
	}
	m.log.Debug("counter created, reloading board")
	return m, m.board.Reload()
}

// exampleWasSelected pops Examples and pre-fills Add Counter.
func (m AppModel) exampleWasSelected(name string) (tea.Model, tea.Cmd) {
	if m.Screen() == ScreenExamples {
		m.back()
	}
	if m.Screen() == ScreenAddCounter {
		m.addCounter.SetExampleName(name)
	}
	return m, nil
}

// delegate forwards msg to the screen on top.
func (m AppModel) delegate(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.Screen() {
	case ScreenWelcome:
		var model tea.Model
		model, cmd = m.welcome.Update(msg)
		m.welcome = model.(WelcomeModel)
	case ScreenBoard:
		m.board, cmd = updateBoard(m.board, msg)
	case ScreenAddCounter:
		var model tea.Model
		model, cmd = m.addCounter.Update(msg)
		m.addCounter = model.(AddCounterModel)
	case ScreenExamples:
		var model tea.Model
		model, cmd = m.examples.Update(msg)
		m.examples = model.(ExamplesModel)
	}
	return m, cmd
}

// broadcast sends msg to every live screen.
func (m AppModel) broadcast(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var model tea.Model
	var cmd tea.Cmd

	m.board, cmd = updateBoard(m.board, msg)
	cmds = append(cmds, cmd)
	for _, screen := range m.stack {
		switch screen {
		case ScreenWelcome:
			model, cmd = m.welcome.Update(msg)
			m.welcome = model.(WelcomeModel)
		case ScreenAddCounter:
			model, cmd = m.addCounter.Update(msg)
			m.addCounter = model.(AddCounterModel)
		case ScreenExamples:
			model, cmd = m.examples.Update(msg)
			m.examples = model.(ExamplesModel)
		default:
			continue
		}
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// resize replays the last window size to a screen that just appeared.
func (m AppModel) resize() tea.Cmd {
	if m.size.Width == 0 {
		return nil
	}
	size := m.size
	return func() tea.Msg { return size }
}

func updateBoard(b BoardModel, msg tea.Msg) (BoardModel, tea.Cmd) {
	model, cmd := b.Update(msg)
	return model.(BoardModel), cmd
}

// View renders the current screen.
func (m AppModel) View() string {
	switch m.Screen() {
	case ScreenWelcome:
		return m.welcome.View()
	case ScreenAddCounter:
		return m.addCounter.View()
	case ScreenExamples:
		return m.examples.View()
	default:
		return m.board.View()
	}
}
