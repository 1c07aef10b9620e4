// Package tui provides Bubble Tea models for the interactive TUI.
package tui

import (
	"github.com/h0rv/counters/internal/board"
	"github.com/h0rv/counters/internal/domain"
)

// CounterCreatedMsg is emitted when Add Counter saved a counter.
type CounterCreatedMsg struct {
	Counters []domain.Counter
}

// ExampleSelectedMsg is emitted when the user picks an example name.
type ExampleSelectedMsg struct {
	Name string
}

// QuitMsg is emitted when the user requests to quit.
type QuitMsg struct{}

// Navigation requests handled by AppModel.
type (
	showBoardMsg      struct{}
	showAddCounterMsg struct{}
	showExamplesMsg   struct{}
	backMsg           struct{}
)

// boardEventMsg wraps an event emitted by the board presenter.
type boardEventMsg struct {
	event board.Event
}

// saveFailedMsg reports a failed create on the Add Counter screen.
type saveFailedMsg struct {
	err error
}

// searchTickMsg fires once typing in the search field pauses.
type searchTickMsg struct {
	id     int
	filter string
}

// toastExpiredMsg clears a transient status line.
type toastExpiredMsg struct {
	id int
}
