// Package store holds the in-memory counter list behind the board.
// It keeps the server's ordering, tracks the active search filter and hands
// out copies so callers can't mutate shared state.
package store

import (
	"errors"
	"strings"

	"github.com/h0rv/counters/internal/domain"
)

// ErrCounterNotFound indicates the requested counter does not exist.
var ErrCounterNotFound = errors.New("counter not found")

// Store is the board's in-memory list. It is not safe for concurrent use;
// the presenter serializes access.
type Store struct {
	counters []domain.Counter
	filter   string
}

// New creates an empty Store.
func New() *Store {
	return &Store{counters: []domain.Counter{}}
}

// SetCounters replaces the list with the authoritative one from the server.
func (s *Store) SetCounters(counters []domain.Counter) {
	s.counters = domain.Clone(counters)
}

// Counters returns the full, unfiltered list.
func (s *Store) Counters() []domain.Counter {
	return domain.Clone(s.counters)
}

// Len returns the number of counters in the full list.
func (s *Store) Len() int {
	return len(s.counters)
}

// GetCounter retrieves a counter by id.
func (s *Store) GetCounter(id string) (domain.Counter, error) {
	c, ok := domain.Find(s.counters, id)
	if !ok {
		return domain.Counter{}, ErrCounterNotFound
	}
	return c, nil
}

// Remove drops the given ids from the list. Unknown ids are ignored.
func (s *Store) Remove(ids ...string) {
	s.counters = domain.Without(s.counters, ids...)
}

// SetFilter sets the search text. Surrounding whitespace is not significant
// for deciding whether a search is active, but is kept for matching.
func (s *Store) SetFilter(filter string) {
	s.filter = filter
}

// IsSearching reports whether a non-empty filter is active.
func (s *Store) IsSearching() bool {
	return strings.TrimSpace(s.filter) != ""
}

// Visible returns the counters the board should show: the filtered list
// while searching, otherwise the full list.
func (s *Store) Visible() []domain.Counter {
	if !s.IsSearching() {
		return s.Counters()
	}
	return domain.FilterByTitle(s.counters, s.filter)
}
