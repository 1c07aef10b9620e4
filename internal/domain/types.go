// Package domain defines the normalized domain types for the counters app.
// These types represent the core concepts independent of the REST API payloads.
package domain

import (
	"fmt"
	"strings"
)

// Counter represents a single named counter.
type Counter struct {
	ID    string `json:"id"`    // Server-assigned identifier
	Title string `json:"title"` // User-supplied display name
	Count int    `json:"count"` // Current count, never negative
}

// ExampleSection groups suggested counter names shown on the Examples screen.
type ExampleSection struct {
	Title    string
	Examples []string
}

// Preference keys persisted between runs.
const (
	PrefWelcomeWasShown = "welcome_was_shown"
)

// FilterByTitle returns the counters whose title contains filter, ignoring case.
// Order is preserved. An empty filter returns the full list.
func FilterByTitle(counters []Counter, filter string) []Counter {
	if filter == "" {
		return Clone(counters)
	}

	needle := strings.ToLower(filter)
	filtered := make([]Counter, 0, len(counters))
	for _, c := range counters {
		if strings.Contains(strings.ToLower(c.Title), needle) {
			filtered = append(filtered, c)
		}
	}
	return filtered
}

// Without returns counters minus the given ids, keeping order.
func Without(counters []Counter, ids ...string) []Counter {
	if len(ids) == 0 {
		return Clone(counters)
	}

	skip := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		skip[id] = struct{}{}
	}

	result := make([]Counter, 0, len(counters))
	for _, c := range counters {
		if _, ok := skip[c.ID]; ok {
			continue
		}
		result = append(result, c)
	}
	return result
}

// Find returns the counter with the given id.
func Find(counters []Counter, id string) (Counter, bool) {
	for _, c := range counters {
		if c.ID == id {
			return c, true
		}
	}
	return Counter{}, false
}

// Select returns the counters whose id is in ids, in list order.
func Select(counters []Counter, ids ...string) []Counter {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}

	selected := make([]Counter, 0, len(ids))
	for _, c := range counters {
		if _, ok := want[c.ID]; ok {
			selected = append(selected, c)
		}
	}
	return selected
}

// TotalCount sums the count of every counter.
func TotalCount(counters []Counter) int {
	total := 0
	for _, c := range counters {
		total += c.Count
	}
	return total
}

// ShareText renders counters as plain text, one "<count> × <title>" per line.
func ShareText(counters []Counter) string {
	lines := make([]string, 0, len(counters))
	for _, c := range counters {
		lines = append(lines, fmt.Sprintf("%d × %s", c.Count, c.Title))
	}
	return strings.Join(lines, "\n")
}

// Clone returns a copy of the slice so callers can't mutate shared state.
func Clone(counters []Counter) []Counter {
	if counters == nil {
		return []Counter{}
	}
	out := make([]Counter, len(counters))
	copy(out, counters)
	return out
}

// DefaultExamples returns the suggested counter names grouped by theme.
func DefaultExamples() []ExampleSection {
	return []ExampleSection{
		{
			Title: "Drinks",
			Examples: []string{
				"Cups of coffee",
				"Glasses of water",
				"Cans of soda",
				"Cups of tea",
			},
		},
		{
			Title: "Food",
			Examples: []string{
				"Hot-dogs",
				"Cupcakes eaten",
				"Pizza slices",
				"Bananas",
				"Eggs for breakfast",
			},
		},
		{
			Title: "Misc",
			Examples: []string{
				"Times sneezed",
				"Naps",
				"Day dreaming",
				"Books read",
				"Steps climbed",
			},
		},
	}
}
