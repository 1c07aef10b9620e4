// Package addcounter backs the Add Counter screen.
package addcounter

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/h0rv/counters/internal/domain"
	"github.com/sirupsen/logrus"
)

var ErrNilRepository = errors.New("addcounter: repository is required")

// Creator creates counters. *repository.Repository satisfies it.
type Creator interface {
	Create(ctx context.Context, title string) ([]domain.Counter, error)
}

// Presenter holds the name being typed and saves it.
type Presenter struct {
	repo Creator
	log  logrus.FieldLogger

	mu   sync.Mutex
	name string
}

// NewPresenter creates a presenter with an empty name.
func NewPresenter(repo Creator, log logrus.FieldLogger) (*Presenter, error) {
	if repo == nil {
		return nil, ErrNilRepository
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Presenter{repo: repo, log: log.WithField("component", "addcounter")}, nil
}

// Name returns the current name.
func (p *Presenter) Name() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.name
}

// SetName records what the user typed.
func (p *Presenter) SetName(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.name = name
}

// SetExampleName pre-fills the name with an example picked from the list.
func (p *Presenter) SetExampleName(name string) {
	p.log.WithField("example", name).Debug("example selected")
	p.SetName(name)
}

// CanSave reports whether the current name is worth sending.
func (p *Presenter) CanSave() bool {
	return strings.TrimSpace(p.Name()) != ""
}

// Save creates a counter with the current name and returns the new list.
// The name is cleared on success only.
func (p *Presenter) Save(ctx context.Context) ([]domain.Counter, error) {
	title := p.Name()
	counters, err := p.repo.Create(ctx, title)
	if err != nil {
		return nil, err
	}

	p.log.WithField("title", strings.TrimSpace(title)).Info("counter created")
	p.SetName("")
	return counters, nil
}
