// Package repository is the single entry point for counter data.
// It wraps the remote data source and tags every failure with the operation
// and counter that produced it. It never retries and never swallows errors.
package repository

import (
	"context"
	"strings"

	"github.com/h0rv/counters/internal/domain"
	"github.com/sirupsen/logrus"
)

// DataSource is the remote API the repository delegates to.
// *api.Client satisfies it.
type DataSource interface {
	GetCounters(ctx context.Context) ([]domain.Counter, error)
	CreateCounter(ctx context.Context, title string) ([]domain.Counter, error)
	IncreaseCounter(ctx context.Context, id string) ([]domain.Counter, error)
	DecreaseCounter(ctx context.Context, id string) ([]domain.Counter, error)
	DeleteCounter(ctx context.Context, id string) ([]domain.Counter, error)
}

// Repository exposes counter CRUD. Every method returns the authoritative
// list after the operation.
type Repository struct {
	source DataSource
	log    logrus.FieldLogger
}

// New creates a repository over source.
func New(source DataSource, log logrus.FieldLogger) *Repository {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Repository{source: source, log: log.WithField("component", "repository")}
}

// GetAll fetches every counter.
func (r *Repository) GetAll(ctx context.Context) ([]domain.Counter, error) {
	counters, err := r.source.GetCounters(ctx)
	return r.result(counters, err, &Error{Op: OpGet})
}

// Create adds a counter named title.
func (r *Repository) Create(ctx context.Context, title string) ([]domain.Counter, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return r.result(nil, ErrEmptyTitle, &Error{Op: OpAdd})
	}
	counters, err := r.source.CreateCounter(ctx, title)
	return r.result(counters, err, &Error{Op: OpAdd, Title: title})
}

// Increment adds one to the counter with the given id.
func (r *Repository) Increment(ctx context.Context, id string) ([]domain.Counter, error) {
	counters, err := r.source.IncreaseCounter(ctx, id)
	return r.result(counters, err, &Error{Op: OpIncrease, ID: id})
}

// Decrement subtracts one from the counter with the given id.
func (r *Repository) Decrement(ctx context.Context, id string) ([]domain.Counter, error) {
	counters, err := r.source.DecreaseCounter(ctx, id)
	return r.result(counters, err, &Error{Op: OpDecrease, ID: id})
}

// Delete removes the counter with the given id.
func (r *Repository) Delete(ctx context.Context, id string) ([]domain.Counter, error) {
	counters, err := r.source.DeleteCounter(ctx, id)
	return r.result(counters, err, &Error{Op: OpDelete, ID: id})
}

// result finishes an operation, filling in tag on failure.
func (r *Repository) result(counters []domain.Counter, err error, tag *Error) ([]domain.Counter, error) {
	entry := r.log.WithFields(logrus.Fields{"op": tag.Op, "id": tag.ID})
	if err != nil {
		tag.Err = err
		tag.Kind = classify(err)
		entry.WithError(err).WithField("kind", tag.Kind).Warn("counter operation failed")
		return nil, tag
	}
	entry.WithField("counters", len(counters)).Debug("counter operation succeeded")
	return domain.Clone(counters), nil
}
