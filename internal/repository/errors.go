package repository

import (
	"errors"
	"fmt"

	"github.com/h0rv/counters/internal/api"
)

// Op identifies the repository operation that failed.
type Op string

const (
	OpGet      Op = "get"
	OpAdd      Op = "add"
	OpIncrease Op = "increase"
	OpDecrease Op = "decrease"
	OpDelete   Op = "delete"
)

// Kind classifies the cause of a failure.
type Kind string

const (
	KindTransport  Kind = "transport"
	KindOffline    Kind = "offline"
	KindDecode     Kind = "decode"
	KindServer     Kind = "server"
	KindValidation Kind = "validation"
)

// ErrEmptyTitle indicates a create call with a blank title.
var ErrEmptyTitle = errors.New("counter title is empty")

// Error is returned by every Repository method. It records which operation
// failed and, where one applies, the counter it targeted so the caller can
// offer a precise retry.
type Error struct {
	Op    Op
	ID    string // Counter id for increase, decrease and delete
	Title string // Counter title for add
	Kind  Kind
	Err   error
}

func (e *Error) Error() string {
	switch {
	case e.ID != "":
		return fmt.Sprintf("%s counter %s: %v", e.Op, e.ID, e.Err)
	case e.Title != "":
		return fmt.Sprintf("%s counter %q: %v", e.Op, e.Title, e.Err)
	default:
		return fmt.Sprintf("%s counters: %v", e.Op, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether the UI should offer Retry rather than Dismiss.
func (e *Error) Retryable() bool {
	return e.Op == OpIncrease || e.Op == OpDecrease
}

// Message returns a short user-facing description of the failure.
func (e *Error) Message() string {
	var action string
	switch e.Op {
	case OpGet:
		return "Couldn't load the counters."
	case OpAdd:
		action = "create"
	case OpIncrease:
		action = "increase"
	case OpDecrease:
		action = "decrease"
	case OpDelete:
		action = "delete"
	}

	if e.Kind == KindOffline {
		return fmt.Sprintf("Couldn't %s the counter. The Internet connection appears to be offline.", action)
	}
	if e.Kind == KindValidation {
		return "The counter needs a name."
	}
	return fmt.Sprintf("Couldn't %s the counter.", action)
}

// classify maps a data source failure onto a Kind.
func classify(err error) Kind {
	var statusErr *api.StatusError
	switch {
	case errors.Is(err, ErrEmptyTitle):
		return KindValidation
	case errors.Is(err, api.ErrOffline):
		return KindOffline
	case errors.Is(err, api.ErrDecode):
		return KindDecode
	case errors.As(err, &statusErr):
		return KindServer
	default:
		return KindTransport
	}
}
