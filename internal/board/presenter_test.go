package board

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/h0rv/counters/internal/domain"
	"github.com/h0rv/counters/internal/mirror"
	"github.com/h0rv/counters/internal/repository"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

// stubRepo answers each call with the configured function.
type stubRepo struct {
	mu        sync.Mutex
	getAll    func() ([]domain.Counter, error)
	increment func(id string) ([]domain.Counter, error)
	decrement func(id string) ([]domain.Counter, error)
	delete    func(id string) ([]domain.Counter, error)
	calls     []string
}

func (s *stubRepo) record(call string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
}

func (s *stubRepo) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *stubRepo) GetAll(ctx context.Context) ([]domain.Counter, error) {
	s.record("get")
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.getAll()
}

func (s *stubRepo) Increment(_ context.Context, id string) ([]domain.Counter, error) {
	s.record("inc:" + id)
	return s.increment(id)
}

func (s *stubRepo) Decrement(_ context.Context, id string) ([]domain.Counter, error) {
	s.record("dec:" + id)
	return s.decrement(id)
}

func (s *stubRepo) Delete(_ context.Context, id string) ([]domain.Counter, error) {
	s.record("delete:" + id)
	return s.delete(id)
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) emit(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func (r *recorder) Statuses() []Status {
	var out []Status
	for _, e := range r.Events() {
		if render, ok := e.(RenderEvent); ok {
			out = append(out, render.ViewModel.Status)
		}
	}
	return out
}

func (r *recorder) LastRender() ViewModel {
	events := r.Events()
	for i := len(events) - 1; i >= 0; i-- {
		if render, ok := events[i].(RenderEvent); ok {
			return render.ViewModel
		}
	}
	return ViewModel{}
}

func countEvents[T Event](events []Event) int {
	n := 0
	for _, e := range events {
		if _, ok := e.(T); ok {
			n++
		}
	}
	return n
}

func quietLogger() logrus.FieldLogger {
	logger, _ := test.NewNullLogger()
	return logger
}

// listRepo serves a fixed list and deletes from it like the server does.
func listRepo(counters ...domain.Counter) *stubRepo {
	var mu sync.Mutex
	list := domain.Clone(counters)
	step := func(id string, delta int) ([]domain.Counter, error) {
		mu.Lock()
		defer mu.Unlock()
		for i := range list {
			if list[i].ID == id {
				list[i].Count += delta
			}
		}
		return domain.Clone(list), nil
	}
	return &stubRepo{
		getAll: func() ([]domain.Counter, error) {
			mu.Lock()
			defer mu.Unlock()
			return domain.Clone(list), nil
		},
		increment: func(id string) ([]domain.Counter, error) { return step(id, 1) },
		decrement: func(id string) ([]domain.Counter, error) { return step(id, -1) },
		delete: func(id string) ([]domain.Counter, error) {
			mu.Lock()
			defer mu.Unlock()
			list = domain.Without(list, id)
			return domain.Clone(list), nil
		},
	}
}

func createTestPresenter(t *testing.T, repo Repository, m mirror.Mirror) (*Presenter, *recorder) {
	t.Helper()
	rec := &recorder{}
	p, err := NewPresenter(repo, m,
		WithEmitter(rec.emit),
		WithLogger(quietLogger()),
		WithFallbackDelay(10*time.Millisecond),
	)
	require.NoError(t, err)
	return p, rec
}

func loadedPresenter(t *testing.T, counters ...domain.Counter) (*Presenter, *recorder, *stubRepo) {
	t.Helper()
	repo := listRepo(counters...)
	p, rec := createTestPresenter(t, repo, mirror.NewMemoryMirror())
	require.NoError(t, p.Load(context.Background()))
	return p, rec, repo
}

func TestNewPresenter_RequiresDependencies(t *testing.T) {
	_, err := NewPresenter(nil, mirror.NewMemoryMirror())
	assert.ErrorIs(t, err, ErrNilRepository)

	_, err = NewPresenter(listRepo(), nil)
	assert.ErrorIs(t, err, ErrNilMirror)

	p, err := NewPresenter(listRepo(), mirror.NewMemoryMirror())
	require.NoError(t, err)
	assert.Equal(t, StatusLoading, p.State().Status)
}

func TestLoad_Success(t *testing.T) {
	m := mirror.NewMemoryMirror()
	p, rec := createTestPresenter(t, listRepo(domain.Counter{ID: "a", Title: "Coffee"}), m)

	require.NoError(t, p.Load(context.Background()))

	assert.Equal(t, []Status{StatusLoading, StatusHasContent}, rec.Statuses())
	state := p.State()
	assert.Equal(t, []domain.Counter{{ID: "a", Title: "Coffee"}}, state.Counters)
	assert.False(t, state.Searching)

	mirrored, err := m.All(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Counter{{ID: "a", Title: "Coffee"}}, mirrored)
}

func TestLoad_EmptyIsNoContent(t *testing.T) {
	p, rec := createTestPresenter(t, listRepo(), mirror.NewMemoryMirror())

	require.NoError(t, p.Load(context.Background()))

	assert.Equal(t, []Status{StatusLoading, StatusNoContent}, rec.Statuses())
	assert.Equal(t, PlaceholderNoContent, rec.LastRender().Placeholder.Kind)
}

func TestLoad_FailureFallsBackToMirror(t *testing.T) {
	ctx := context.Background()
	m := mirror.NewMemoryMirror()
	require.NoError(t, m.ReplaceAll(ctx, []domain.Counter{{ID: "b", Title: "Tea", Count: 2}}))

	repo := &stubRepo{getAll: func() ([]domain.Counter, error) { return nil, errBoom }}
	p, rec := createTestPresenter(t, repo, m)

	err := p.Load(ctx)
	assert.ErrorIs(t, err, errBoom)

	assert.Equal(t, []Status{StatusLoading, StatusError, StatusHasContent}, rec.Statuses())
	assert.Equal(t, []domain.Counter{{ID: "b", Title: "Tea", Count: 2}}, p.State().Counters)
	assert.Equal(t, []domain.Counter{{ID: "b", Title: "Tea", Count: 2}}, p.Counters())
}

func TestLoad_FailureWithEmptyMirrorStaysInError(t *testing.T) {
	repo := &stubRepo{getAll: func() ([]domain.Counter, error) { return nil, errBoom }}
	p, rec := createTestPresenter(t, repo, mirror.NewMemoryMirror())

	assert.Error(t, p.Load(context.Background()))

	assert.Equal(t, []Status{StatusLoading, StatusError}, rec.Statuses())
	assert.Equal(t, PlaceholderError, rec.LastRender().Placeholder.Kind)
}

func TestLoad_CancelledFallbackStaysInError(t *testing.T) {
	m := mirror.NewMemoryMirror()
	require.NoError(t, m.ReplaceAll(context.Background(), []domain.Counter{{ID: "b", Title: "Tea"}}))

	rec := &recorder{}
	p, err := NewPresenter(listRepo(), m,
		WithEmitter(rec.emit),
		WithLogger(quietLogger()),
		WithFallbackDelay(time.Hour),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, p.Load(ctx), context.Canceled)
	assert.Equal(t, StatusError, p.State().Status)
}

func TestRefresh_SkipsLoadingRender(t *testing.T) {
	p, rec, _ := loadedPresenter(t, domain.Counter{ID: "a", Title: "Coffee"})

	require.NoError(t, p.Refresh(context.Background()))

	assert.Equal(t, []Status{StatusLoading, StatusHasContent, StatusHasContent}, rec.Statuses())
}

func TestReload_ExitsEditModeAndLoads(t *testing.T) {
	p, rec, repo := loadedPresenter(t, domain.Counter{ID: "a", Title: "Coffee"})

	require.NoError(t, p.Reload(context.Background()))

	assert.Equal(t, []string{"get", "get"}, repo.Calls())
	assert.Equal(t, 1, countEvents[ExitEditModeEvent](rec.Events()))
	assert.Equal(t, []Status{StatusLoading, StatusHasContent, StatusLoading, StatusHasContent}, rec.Statuses())
}

func TestIncrement(t *testing.T) {
	p, rec, _ := loadedPresenter(t,
		domain.Counter{ID: "a", Title: "Coffee", Count: 1},
		domain.Counter{ID: "b", Title: "Tea"},
	)

	require.NoError(t, p.Increment(context.Background(), domain.Counter{ID: "a", Title: "Coffee", Count: 1}))

	vm := rec.LastRender()
	require.Len(t, vm.Rows, 2)
	assert.Equal(t, 2, vm.Rows[0].Count)
	assert.Equal(t, "2 items · Counted 2 times", vm.Summary)
}

func TestIncrement_WhileSearchingRendersFiltered(t *testing.T) {
	p, rec, _ := loadedPresenter(t,
		domain.Counter{ID: "a", Title: "Coffee"},
		domain.Counter{ID: "b", Title: "Tea"},
	)
	p.Search("tea")

	require.NoError(t, p.Increment(context.Background(), domain.Counter{ID: "b", Title: "Tea"}))

	vm := rec.LastRender()
	assert.True(t, vm.Searching)
	assert.Equal(t, []domain.Counter{{ID: "b", Title: "Tea", Count: 1}}, vm.Rows)
	assert.Len(t, p.Counters(), 2)
}

func TestIncrement_FailureEmitsCounterError(t *testing.T) {
	repo := listRepo(domain.Counter{ID: "a", Title: "Coffee"})
	repo.increment = func(id string) ([]domain.Counter, error) {
		return nil, &repository.Error{Op: repository.OpIncrease, ID: id, Kind: repository.KindOffline, Err: errBoom}
	}
	p, rec := createTestPresenter(t, repo, mirror.NewMemoryMirror())
	require.NoError(t, p.Load(context.Background()))

	err := p.Increment(context.Background(), domain.Counter{ID: "a"})
	require.Error(t, err)

	var counterErr CounterErrorEvent
	for _, e := range rec.Events() {
		if ce, ok := e.(CounterErrorEvent); ok {
			counterErr = ce
		}
	}
	require.NotNil(t, counterErr.Err)
	assert.Equal(t, repository.OpIncrease, counterErr.Err.Op)
	assert.Equal(t, "a", counterErr.Err.ID)
	assert.True(t, counterErr.Err.Retryable())

	// The cached list is untouched
	assert.Equal(t, 0, p.Counters()[0].Count)
}

func TestDecrement_PlainErrorIsTagged(t *testing.T) {
	repo := listRepo(domain.Counter{ID: "a", Title: "Coffee", Count: 3})
	repo.decrement = func(string) ([]domain.Counter, error) { return nil, errBoom }
	p, rec := createTestPresenter(t, repo, mirror.NewMemoryMirror())
	require.NoError(t, p.Load(context.Background()))

	err := p.Decrement(context.Background(), domain.Counter{ID: "a", Count: 3})

	var repoErr *repository.Error
	require.ErrorAs(t, err, &repoErr)
	assert.Equal(t, repository.OpDecrease, repoErr.Op)
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, 1, countEvents[CounterErrorEvent](rec.Events()))
}

func TestDecrement_AtZeroDeletes(t *testing.T) {
	p, _, repo := loadedPresenter(t,
		domain.Counter{ID: "c", Title: "Naps"},
		domain.Counter{ID: "d", Title: "Books", Count: 2},
	)

	require.NoError(t, p.Decrement(context.Background(), domain.Counter{ID: "c", Title: "Naps"}))

	assert.Equal(t, []string{"get", "delete:c"}, repo.Calls())
	assert.Equal(t, []domain.Counter{{ID: "d", Title: "Books", Count: 2}}, p.Counters())
}

func TestDecrement_NeverGoesNegative(t *testing.T) {
	p, _, repo := loadedPresenter(t, domain.Counter{ID: "a", Title: "Coffee", Count: 1})
	ctx := context.Background()

	require.NoError(t, p.Decrement(ctx, domain.Counter{ID: "a", Count: 1}))
	assert.Equal(t, 0, p.Counters()[0].Count)

	require.NoError(t, p.Decrement(ctx, p.Counters()[0]))
	assert.Empty(t, p.Counters())
	assert.NotContains(t, repo.Calls()[2:], "dec:a")
}

func TestDelete_LastCounterShowsNoContent(t *testing.T) {
	p, rec, _ := loadedPresenter(t, domain.Counter{ID: "a", Title: "Coffee"})

	report := p.Delete(context.Background(), []string{"a"})

	assert.Equal(t, []string{"a"}, report.Deleted)
	assert.NoError(t, report.Err())
	assert.Equal(t, StatusNoContent, p.State().Status)
	assert.Equal(t, 1, countEvents[ExitEditModeEvent](rec.Events()))
}

func TestDelete_UnknownIDLeavesOthersUntouched(t *testing.T) {
	counters := []domain.Counter{
		{ID: "a", Title: "Coffee", Count: 1},
		{ID: "b", Title: "Tea", Count: 2},
	}
	p, _, _ := loadedPresenter(t, counters...)

	report := p.Delete(context.Background(), []string{"zzz"})

	assert.NoError(t, report.Err())
	assert.Equal(t, counters, p.Counters())
}

func TestDelete_PartialFailureAggregates(t *testing.T) {
	repo := listRepo(
		domain.Counter{ID: "a", Title: "Coffee"},
		domain.Counter{ID: "b", Title: "Tea"},
		domain.Counter{ID: "c", Title: "Water"},
	)
	ok := repo.delete
	repo.delete = func(id string) ([]domain.Counter, error) {
		if id == "b" {
			return nil, errBoom
		}
		return ok(id)
	}
	p, rec := createTestPresenter(t, repo, mirror.NewMemoryMirror())
	require.NoError(t, p.Load(context.Background()))

	report := p.Delete(context.Background(), []string{"a", "b", "c"})

	assert.Equal(t, []string{"a", "c"}, report.Deleted)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, repository.OpDelete, report.Failed[0].Op)
	assert.Equal(t, "b", report.Failed[0].ID)
	assert.ErrorIs(t, report.Err(), errBoom)

	events := rec.Events()
	assert.Equal(t, 1, countEvents[DeleteFailedEvent](events))
	assert.Equal(t, 2, countEvents[ExitEditModeEvent](events))
	assert.Equal(t, []domain.Counter{{ID: "b", Title: "Tea"}}, p.Counters())
}

func TestDelete_StaleResponsesCannotResurrect(t *testing.T) {
	all := []domain.Counter{
		{ID: "a", Title: "Coffee"},
		{ID: "b", Title: "Tea"},
		{ID: "c", Title: "Water"},
	}
	repo := listRepo(all...)
	// Each response only reflects its own delete
	repo.delete = func(id string) ([]domain.Counter, error) {
		return domain.Without(all, id), nil
	}
	p, _ := createTestPresenter(t, repo, mirror.NewMemoryMirror())
	require.NoError(t, p.Load(context.Background()))

	report := p.Delete(context.Background(), []string{"a", "b"})

	assert.NoError(t, report.Err())
	assert.Equal(t, []domain.Counter{{ID: "c", Title: "Water"}}, p.Counters())
}

func TestSearch(t *testing.T) {
	p, rec, _ := loadedPresenter(t,
		domain.Counter{ID: "a", Title: "Coffee"},
		domain.Counter{ID: "b", Title: "Tea"},
	)

	t.Run("filters by title", func(t *testing.T) {
		p.Search("cof")

		events := rec.Events()
		table, ok := events[len(events)-1].(TableEvent)
		require.True(t, ok)
		assert.True(t, table.Searching)
		require.Len(t, table.Counters, 1)
		assert.Equal(t, "Coffee", table.Counters[0].Title)

		state := p.State()
		assert.Equal(t, StatusHasContent, state.Status)
		assert.True(t, state.Searching)
	})

	t.Run("no matches shows no results", func(t *testing.T) {
		p.Search("water")

		vm := rec.LastRender()
		assert.Equal(t, PlaceholderNoResults, vm.Placeholder.Kind)
		assert.False(t, vm.EditEnabled)
	})

	t.Run("empty filter restores the full list", func(t *testing.T) {
		p.Search("")

		events := rec.Events()
		table, ok := events[len(events)-1].(TableEvent)
		require.True(t, ok)
		assert.False(t, table.Searching)
		assert.Len(t, table.Counters, 2)
		assert.False(t, p.State().Searching)
	})
}

func TestSearch_ClearedOnEmptyListShowsNoContent(t *testing.T) {
	p, rec, _ := loadedPresenter(t)
	p.Search("x")
	p.Search("")

	assert.Equal(t, StatusNoContent, p.State().Status)
	assert.Equal(t, 1, countEvents[ExitEditModeEvent](rec.Events()))
}

func TestSearch_KeepsErrorWhenNothingLoaded(t *testing.T) {
	repo := &stubRepo{getAll: func() ([]domain.Counter, error) { return nil, errBoom }}
	p, rec := createTestPresenter(t, repo, mirror.NewMemoryMirror())
	require.Error(t, p.Load(context.Background()))
	renders := len(rec.Statuses())

	p.Search("c")
	assert.Equal(t, StatusError, p.State().Status)

	p.Search("")
	assert.Equal(t, StatusError, p.State().Status)
	assert.Equal(t, PlaceholderError, p.State().ViewModel().Placeholder.Kind)
	assert.Len(t, rec.Statuses(), renders, "search renders nothing without a list")
	assert.Zero(t, countEvents[TableEvent](rec.Events()))
}

func TestSearch_FilterFromErrorAppliesAfterRetry(t *testing.T) {
	var mu sync.Mutex
	online := false
	repo := &stubRepo{getAll: func() ([]domain.Counter, error) {
		mu.Lock()
		defer mu.Unlock()
		if !online {
			return nil, errBoom
		}
		return []domain.Counter{{ID: "a", Title: "Coffee"}, {ID: "b", Title: "Tea"}}, nil
	}}
	p, _ := createTestPresenter(t, repo, mirror.NewMemoryMirror())
	require.Error(t, p.Load(context.Background()))

	p.Search("tea")
	mu.Lock()
	online = true
	mu.Unlock()
	require.NoError(t, p.PlaceholderAction(context.Background(), PlaceholderError))

	state := p.State()
	assert.Equal(t, StatusHasContent, state.Status)
	assert.True(t, state.Searching)
	assert.Equal(t, []domain.Counter{{ID: "b", Title: "Tea"}}, state.Counters)
}

func TestUISignals(t *testing.T) {
	p, rec, repo := loadedPresenter(t,
		domain.Counter{ID: "a", Title: "Coffee", Count: 3},
		domain.Counter{ID: "b", Title: "Tea", Count: 1},
	)

	p.ToggleEdit()
	p.SelectAll()
	p.Add()
	p.RequestDelete([]string{"a"})
	p.RequestDelete(nil)
	text := p.Share([]string{"b", "a"})

	events := rec.Events()
	assert.Equal(t, 1, countEvents[ToggleEditEvent](events))
	assert.Equal(t, 1, countEvents[SelectAllEvent](events))
	assert.Equal(t, 1, countEvents[PresentAddCounterEvent](events))
	assert.Equal(t, 1, countEvents[ConfirmDeleteEvent](events))
	assert.Equal(t, ShareEvent{Text: "3 × Coffee\n1 × Tea"}, events[len(events)-1])
	assert.Equal(t, "3 × Coffee\n1 × Tea", text)

	// None of them hit the network
	assert.Equal(t, []string{"get"}, repo.Calls())
}

func TestPlaceholderAction(t *testing.T) {
	p, rec, repo := loadedPresenter(t)

	require.NoError(t, p.PlaceholderAction(context.Background(), PlaceholderNoContent))
	assert.Equal(t, 1, countEvents[PresentAddCounterEvent](rec.Events()))

	require.NoError(t, p.PlaceholderAction(context.Background(), PlaceholderError))
	assert.Equal(t, []string{"get", "get"}, repo.Calls())

	require.NoError(t, p.PlaceholderAction(context.Background(), PlaceholderNoResults))
	assert.Equal(t, []string{"get", "get"}, repo.Calls())
}

func TestRetry(t *testing.T) {
	p, _, repo := loadedPresenter(t, domain.Counter{ID: "a", Title: "Coffee", Count: 1})
	ctx := context.Background()

	require.NoError(t, p.Retry(ctx, &repository.Error{Op: repository.OpIncrease, ID: "a"}))
	require.NoError(t, p.Retry(ctx, &repository.Error{Op: repository.OpDecrease, ID: "a"}))
	assert.Equal(t, []string{"get", "inc:a", "dec:a"}, repo.Calls())

	assert.ErrorIs(t, p.Retry(ctx, &repository.Error{Op: repository.OpDelete, ID: "a"}), ErrNotRetryable)
	assert.ErrorIs(t, p.Retry(ctx, nil), ErrNotRetryable)
	assert.Error(t, p.Retry(ctx, &repository.Error{Op: repository.OpIncrease, ID: "gone"}))
}
