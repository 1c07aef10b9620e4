package board

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/h0rv/counters/internal/domain"
	"github.com/h0rv/counters/internal/mirror"
	"github.com/h0rv/counters/internal/repository"
	"github.com/h0rv/counters/internal/store"
	"github.com/sirupsen/logrus"
)

// DefaultFallbackDelay is how long the error state stays up before
// mirrored counters are shown.
const DefaultFallbackDelay = 2 * time.Second

var (
	ErrNilRepository = errors.New("board: repository is required")
	ErrNilMirror     = errors.New("board: mirror is required")
	ErrNotRetryable  = errors.New("board: error is not retryable")
)

// Repository is the subset of *repository.Repository the board uses.
type Repository interface {
	GetAll(ctx context.Context) ([]domain.Counter, error)
	Increment(ctx context.Context, id string) ([]domain.Counter, error)
	Decrement(ctx context.Context, id string) ([]domain.Counter, error)
	Delete(ctx context.Context, id string) ([]domain.Counter, error)
}

// Option configures a Presenter.
type Option func(*Presenter)

// WithFallbackDelay overrides DefaultFallbackDelay.
func WithFallbackDelay(d time.Duration) Option {
	return func(p *Presenter) { p.fallbackDelay = d }
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(p *Presenter) { p.log = l }
}

// WithEmitter sets the event sink. Without one events are dropped.
func WithEmitter(emit func(Event)) Option {
	return func(p *Presenter) { p.emit = emit }
}

// Presenter owns the board's counter list and state and reports every
// change through its emitter. It is safe for concurrent use; network calls
// run outside the lock.
type Presenter struct {
	repo          Repository
	mirror        mirror.Mirror
	emit          func(Event)
	log           logrus.FieldLogger
	fallbackDelay time.Duration

	mu    sync.Mutex
	store *store.Store
	state State
}

// DeleteReport lists the outcome of a batch delete.
type DeleteReport struct {
	Deleted []string
	Failed  []*repository.Error
}

// Err joins the failures, nil when every delete succeeded.
func (r DeleteReport) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}
	errs := make([]error, len(r.Failed))
	for i, f := range r.Failed {
		errs[i] = f
	}
	return errors.Join(errs...)
}

// NewPresenter creates a presenter in the Loading state.
func NewPresenter(repo Repository, m mirror.Mirror, opts ...Option) (*Presenter, error) {
	if repo == nil {
		return nil, ErrNilRepository
	}
	if m == nil {
		return nil, ErrNilMirror
	}

	p := &Presenter{
		repo:          repo,
		mirror:        m,
		fallbackDelay: DefaultFallbackDelay,
		store:         store.New(),
		state:         Loading(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.emit == nil {
		p.emit = func(Event) {}
	}
	if p.log == nil {
		p.log = logrus.StandardLogger()
	}
	p.log = p.log.WithField("component", "board")
	return p, nil
}

// State returns the current state.
func (p *Presenter) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Counters returns the full cached list.
func (p *Presenter) Counters() []domain.Counter {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.store.Counters()
}

// Load shows Loading and fetches the counters.
func (p *Presenter) Load(ctx context.Context) error {
	p.mu.Lock()
	p.setState(Loading())
	p.mu.Unlock()

	return p.fetch(ctx)
}

// Refresh fetches the counters without the Loading render.
func (p *Presenter) Refresh(ctx context.Context) error {
	return p.fetch(ctx)
}

// Reload is used after a counter was created elsewhere: it leaves edit
// mode and loads from scratch.
func (p *Presenter) Reload(ctx context.Context) error {
	p.emit(ExitEditModeEvent{})
	return p.Load(ctx)
}

func (p *Presenter) fetch(ctx context.Context) error {
	counters, err := p.repo.GetAll(ctx)
	if err != nil {
		p.fallback(ctx)
		return err
	}

	if err := p.mirror.ReplaceAll(ctx, counters); err != nil {
		p.log.WithError(err).Warn("failed to update local mirror")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.store.SetCounters(counters)
	p.renderList()
	return nil
}

// fallback shows Error and, when the mirror has counters, shows them after
// the fallback delay.
func (p *Presenter) fallback(ctx context.Context) {
	local, err := p.mirror.All(ctx)
	if err != nil {
		p.log.WithError(err).Warn("failed to read local mirror")
	}

	p.mu.Lock()
	p.setState(ErrorState())
	p.mu.Unlock()

	if err != nil || len(local) == 0 {
		return
	}

	timer := time.NewTimer(p.fallbackDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return
	case <-timer.C:
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.store.SetCounters(local)
	p.log.WithField("counters", len(local)).Info("showing mirrored counters")
	p.setState(HasContent(p.store.Visible(), p.store.IsSearching()))
}

// Increment adds one to counter.
func (p *Presenter) Increment(ctx context.Context, counter domain.Counter) error {
	counters, err := p.repo.Increment(ctx, counter.ID)
	return p.applyStep(counters, err, repository.OpIncrease, counter.ID)
}

// Decrement subtracts one from counter. A counter already at zero is
// deleted instead.
func (p *Presenter) Decrement(ctx context.Context, counter domain.Counter) error {
	if counter.Count <= 0 {
		return p.Delete(ctx, []string{counter.ID}).Err()
	}
	counters, err := p.repo.Decrement(ctx, counter.ID)
	return p.applyStep(counters, err, repository.OpDecrease, counter.ID)
}

func (p *Presenter) applyStep(counters []domain.Counter, err error, op repository.Op, id string) error {
	if err != nil {
		repoErr := asRepositoryError(err, op, id)
		p.emit(CounterErrorEvent{Err: repoErr})
		return repoErr
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.store.SetCounters(counters)
	p.setState(HasContent(p.store.Visible(), p.store.IsSearching()))
	return nil
}

// Retry re-runs the increase or decrease that produced err.
func (p *Presenter) Retry(ctx context.Context, err *repository.Error) error {
	if err == nil || !err.Retryable() {
		return ErrNotRetryable
	}

	p.mu.Lock()
	counter, lookupErr := p.store.GetCounter(err.ID)
	p.mu.Unlock()
	if lookupErr != nil {
		return fmt.Errorf("failed to retry %s on %s: %w", err.Op, err.ID, lookupErr)
	}

	if err.Op == repository.OpIncrease {
		return p.Increment(ctx, counter)
	}
	return p.Decrement(ctx, counter)
}

// Delete removes every id, one call each, all in flight at once. Each
// response is applied as it arrives minus the ids already confirmed
// deleted, so a slow response can't resurrect a counter.
func (p *Presenter) Delete(ctx context.Context, ids []string) DeleteReport {
	var (
		wg        sync.WaitGroup
		confirmed = make(map[string]struct{}, len(ids))
		errs      = make([]error, len(ids))
	)

	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()

			counters, err := p.repo.Delete(ctx, id)
			if err != nil {
				errs[i] = err
				return
			}

			p.mu.Lock()
			defer p.mu.Unlock()
			confirmed[id] = struct{}{}
			p.store.SetCounters(counters)
			p.store.Remove(keys(confirmed)...)
			p.renderList()
			p.emit(ExitEditModeEvent{})
		}(i, id)
	}
	wg.Wait()

	var report DeleteReport
	for i, id := range ids {
		if errs[i] != nil {
			report.Failed = append(report.Failed, asRepositoryError(errs[i], repository.OpDelete, id))
			continue
		}
		report.Deleted = append(report.Deleted, id)
	}

	if len(report.Failed) > 0 {
		p.log.WithField("failed", len(report.Failed)).Warn("batch delete partially failed")
		p.emit(DeleteFailedEvent{Failures: report.Failed})
	}
	return report
}

// Search filters the list by title. An empty filter leaves search mode.
// While loading or in Error there is no list to search: the filter is
// recorded for the next successful fetch and nothing is rendered.
func (p *Presenter) Search(filter string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.store.SetFilter(filter)
	if s := p.state.Status; s == StatusLoading || s == StatusError {
		return
	}
	if !p.store.IsSearching() {
		p.store.SetFilter("")
		if p.store.Len() == 0 {
			p.emit(ExitEditModeEvent{})
		}
		p.renderList()
		if p.store.Len() > 0 {
			p.emit(TableEvent{Counters: p.store.Counters()})
		}
		return
	}

	visible := p.store.Visible()
	p.setState(HasContent(visible, true))
	p.emit(TableEvent{Counters: visible, Searching: true})
}

// ToggleEdit asks the view to enter or leave edit mode.
func (p *Presenter) ToggleEdit() {
	p.emit(ToggleEditEvent{})
}

// SelectAll asks the view to select every row.
func (p *Presenter) SelectAll() {
	p.emit(SelectAllEvent{})
}

// Add asks the view to present the Add Counter screen.
func (p *Presenter) Add() {
	p.emit(PresentAddCounterEvent{})
}

// RequestDelete asks the view to confirm deleting ids.
func (p *Presenter) RequestDelete(ids []string) {
	if len(ids) == 0 {
		return
	}
	p.emit(ConfirmDeleteEvent{IDs: append([]string(nil), ids...)})
}

// Share emits the share text for ids, in list order, and returns it.
func (p *Presenter) Share(ids []string) string {
	p.mu.Lock()
	selected := domain.Select(p.store.Counters(), ids...)
	p.mu.Unlock()

	text := domain.ShareText(selected)
	p.emit(ShareEvent{Text: text})
	return text
}

// PlaceholderAction runs the placeholder's call to action.
func (p *Presenter) PlaceholderAction(ctx context.Context, kind PlaceholderKind) error {
	switch kind {
	case PlaceholderError:
		return p.Load(ctx)
	case PlaceholderNoContent:
		p.Add()
	}
	return nil
}

// renderList renders the cached list: NoContent when it is empty outside
// a search, otherwise the visible rows. Callers hold p.mu.
func (p *Presenter) renderList() {
	if p.store.Len() == 0 && !p.store.IsSearching() {
		p.setState(NoContent())
		return
	}
	p.setState(HasContent(p.store.Visible(), p.store.IsSearching()))
}

// setState records and emits s. Callers hold p.mu.
func (p *Presenter) setState(s State) {
	p.state = s
	p.emit(RenderEvent{ViewModel: s.ViewModel()})
}

func asRepositoryError(err error, op repository.Op, id string) *repository.Error {
	var repoErr *repository.Error
	if errors.As(err, &repoErr) {
		return repoErr
	}
	return &repository.Error{Op: op, ID: id, Kind: repository.KindTransport, Err: err}
}

func keys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}
