package board

import (
	"github.com/h0rv/counters/internal/domain"
	"github.com/h0rv/counters/internal/repository"
)

// Event is something the presenter reports to its view.
type Event interface {
	boardEvent()
}

type (
	// RenderEvent carries a full redraw.
	RenderEvent struct {
		ViewModel ViewModel
	}

	// TableEvent updates only the rows, e.g. while typing a search.
	TableEvent struct {
		Counters  []domain.Counter
		Searching bool
	}

	// CounterErrorEvent reports a failed increase or decrease.
	CounterErrorEvent struct {
		Err *repository.Error
	}

	// DeleteFailedEvent reports every delete in a batch that failed.
	DeleteFailedEvent struct {
		Failures []*repository.Error
	}

	ExitEditModeEvent struct{}
	ToggleEditEvent   struct{}
	SelectAllEvent    struct{}

	// ShareEvent carries the text to hand to the share target.
	ShareEvent struct {
		Text string
	}

	// ConfirmDeleteEvent asks the view to confirm deleting IDs.
	ConfirmDeleteEvent struct {
		IDs []string
	}

	PresentAddCounterEvent struct{}
)

func (RenderEvent) boardEvent()            {}
func (TableEvent) boardEvent()             {}
func (CounterErrorEvent) boardEvent()      {}
func (DeleteFailedEvent) boardEvent()      {}
func (ExitEditModeEvent) boardEvent()      {}
func (ToggleEditEvent) boardEvent()        {}
func (SelectAllEvent) boardEvent()         {}
func (ShareEvent) boardEvent()             {}
func (ConfirmDeleteEvent) boardEvent()     {}
func (PresentAddCounterEvent) boardEvent() {}
