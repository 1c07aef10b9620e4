// Package board drives the counters board: its state machine, the view
// model each state renders to, and the presenter that talks to the
// repository and the local mirror.
package board

import (
	"fmt"

	"github.com/h0rv/counters/internal/domain"
)

// Status is the board's current mode.
type Status int

const (
	StatusLoading Status = iota
	StatusNoContent
	StatusError
	StatusHasContent
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusNoContent:
		return "no-content"
	case StatusError:
		return "error"
	case StatusHasContent:
		return "has-content"
	default:
		return "unknown"
	}
}

// State is a board state. Counters and Searching are only meaningful for
// StatusHasContent.
type State struct {
	Status    Status
	Counters  []domain.Counter
	Searching bool
}

// Loading is the state shown while the first fetch is in flight.
func Loading() State {
	return State{Status: StatusLoading}
}

// NoContent is the state for an empty counter list.
func NoContent() State {
	return State{Status: StatusNoContent}
}

// ErrorState is the state shown when counters could not be loaded.
func ErrorState() State {
	return State{Status: StatusError}
}

// HasContent shows counters. An empty list outside a search collapses
// to NoContent.
func HasContent(counters []domain.Counter, searching bool) State {
	if len(counters) == 0 && !searching {
		return NoContent()
	}
	return State{
		Status:    StatusHasContent,
		Counters:  domain.Clone(counters),
		Searching: searching,
	}
}

// PlaceholderKind selects the placeholder shown instead of the list.
type PlaceholderKind string

const (
	PlaceholderNone      PlaceholderKind = ""
	PlaceholderNoContent PlaceholderKind = "no-content"
	PlaceholderError     PlaceholderKind = "error"
	PlaceholderNoResults PlaceholderKind = "no-results"
)

// Placeholder is the empty-list message with an optional action.
type Placeholder struct {
	Kind    PlaceholderKind
	Title   string
	Message string
	Action  string
}

// Hidden reports whether no placeholder should be drawn.
func (p Placeholder) Hidden() bool {
	return p.Kind == PlaceholderNone
}

// ViewModel is everything the board screen needs to draw one state.
type ViewModel struct {
	Status      Status
	Title       string
	Loading     bool
	EditEnabled bool
	Searching   bool
	Rows        []domain.Counter
	Placeholder Placeholder
	Summary     string
}

// ViewModel maps the state to what the board should draw.
func (s State) ViewModel() ViewModel {
	vm := ViewModel{Status: s.Status, Title: "Counters"}

	switch s.Status {
	case StatusLoading:
		vm.Title = "Loading"
		vm.Loading = true
	case StatusNoContent:
		vm.Placeholder = Placeholder{
			Kind:    PlaceholderNoContent,
			Title:   "No counters yet",
			Message: "When I started counting my blessings, my whole life turned around.",
			Action:  "Create a counter",
		}
	case StatusError:
		vm.Placeholder = Placeholder{
			Kind:    PlaceholderError,
			Title:   "Couldn't load the counters",
			Message: "The Internet connection appears to be offline.",
			Action:  "Retry",
		}
	case StatusHasContent:
		vm.Rows = domain.Clone(s.Counters)
		vm.Searching = s.Searching
		vm.EditEnabled = len(s.Counters) > 0
		if len(s.Counters) == 0 {
			vm.Placeholder = Placeholder{Kind: PlaceholderNoResults, Title: "No results"}
			break
		}
		vm.Summary = Summary(s.Counters)
	}

	return vm
}

// Summary is the footer line under the list, e.g. "4 items · Counted 16 times".
func Summary(counters []domain.Counter) string {
	return fmt.Sprintf("%s · Counted %s",
		plural(len(counters), "item", "items"),
		plural(domain.TotalCount(counters), "time", "times"))
}

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}
