package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestCounters() []Counter {
	return []Counter{
		{ID: "a", Title: "Coffee", Count: 3},
		{ID: "b", Title: "Tea", Count: 0},
		{ID: "c", Title: "Decaf coffee", Count: 1},
	}
}

func TestFilterByTitle(t *testing.T) {
	counters := createTestCounters()

	t.Run("case insensitive substring", func(t *testing.T) {
		filtered := FilterByTitle(counters, "COF")
		require.Len(t, filtered, 2)
		assert.Equal(t, "a", filtered[0].ID)
		assert.Equal(t, "c", filtered[1].ID)
	})

	t.Run("empty filter returns everything", func(t *testing.T) {
		assert.Equal(t, counters, FilterByTitle(counters, ""))
	})

	t.Run("no match", func(t *testing.T) {
		assert.Empty(t, FilterByTitle(counters, "water"))
	})

	t.Run("cof against Coffee and Tea", func(t *testing.T) {
		filtered := FilterByTitle([]Counter{{ID: "1", Title: "Coffee"}, {ID: "2", Title: "Tea"}}, "cof")
		require.Len(t, filtered, 1)
		assert.Equal(t, "Coffee", filtered[0].Title)
	})
}

func TestWithout(t *testing.T) {
	counters := createTestCounters()

	t.Run("removes ids and keeps order", func(t *testing.T) {
		result := Without(counters, "b")
		assert.Equal(t, []Counter{counters[0], counters[2]}, result)
	})

	t.Run("unknown id leaves others untouched", func(t *testing.T) {
		result := Without(counters, "zzz")
		assert.Equal(t, counters, result)
	})

	t.Run("does not mutate input", func(t *testing.T) {
		_ = Without(counters, "a")
		assert.Len(t, counters, 3)
	})
}

func TestFind(t *testing.T) {
	c, ok := Find(createTestCounters(), "c")
	require.True(t, ok)
	assert.Equal(t, "Decaf coffee", c.Title)

	_, ok = Find(createTestCounters(), "missing")
	assert.False(t, ok)
}

func TestSelect(t *testing.T) {
	counters := createTestCounters()

	// Ids given out of order still come back in list order
	selected := Select(counters, "c", "a", "missing")
	require.Len(t, selected, 2)
	assert.Equal(t, "a", selected[0].ID)
	assert.Equal(t, "c", selected[1].ID)

	assert.Empty(t, Select(counters))
}

func TestTotalCountAndShareText(t *testing.T) {
	counters := createTestCounters()
	assert.Equal(t, 4, TotalCount(counters))
	assert.Equal(t, "3 × Coffee\n0 × Tea\n1 × Decaf coffee", ShareText(counters))
	assert.Equal(t, "", ShareText(nil))
}

func TestClone(t *testing.T) {
	assert.NotNil(t, Clone(nil))

	counters := createTestCounters()
	cloned := Clone(counters)
	cloned[0].Count = 99
	assert.Equal(t, 3, counters[0].Count)
}

func TestDefaultExamples(t *testing.T) {
	sections := DefaultExamples()
	require.Len(t, sections, 3)
	assert.Equal(t, "Drinks", sections[0].Title)
	for _, s := range sections {
		assert.NotEmpty(t, s.Examples)
	}
}
