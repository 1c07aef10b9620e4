package main

import (
	"context"
	"fmt"
	"io"

	"github.com/h0rv/counters/internal/addcounter"
	"github.com/h0rv/counters/internal/api"
	"github.com/h0rv/counters/internal/board"
	"github.com/h0rv/counters/internal/config"
	"github.com/h0rv/counters/internal/mirror"
	"github.com/h0rv/counters/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// app holds the wired collaborators shared by the TUI and the subcommands.
type app struct {
	repo   *repository.Repository
	board  *board.Presenter
	adder  *addcounter.Presenter
	mirror mirror.Mirror
	prefs  mirror.Prefs

	closers []io.Closer
}

// newApp wires config into the api client, repository, mirror and
// presenters. emit may be nil.
func newApp(ctx context.Context, cfg *config.Config, logger *logrus.Logger, emit func(board.Event)) (*app, error) {
	client, err := api.New(cfg.API.URL,
		api.WithTimeout(cfg.API.Timeout),
		api.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}

	a := &app{repo: repository.New(client, logger)}
	if err := a.openMirror(ctx, cfg.Mirror); err != nil {
		return nil, err
	}

	opts := []board.Option{
		board.WithLogger(logger),
		board.WithFallbackDelay(cfg.Board.Delay()),
	}
	if emit != nil {
		opts = append(opts, board.WithEmitter(emit))
	}
	if a.board, err = board.NewPresenter(a.repo, a.mirror, opts...); err != nil {
		a.Close()
		return nil, err
	}
	if a.adder, err = addcounter.NewPresenter(a.repo, logger); err != nil {
		a.Close()
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"api":    client.BaseURL(),
		"mirror": cfg.Mirror.Backend,
	}).Debug("counters wired")
	return a, nil
}

func (a *app) openMirror(ctx context.Context, cfg config.MirrorConfig) error {
	switch cfg.Backend {
	case config.BackendMemory:
		a.mirror = mirror.NewMemoryMirror()
		a.prefs = mirror.NewMemoryPrefs()

	case config.BackendRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("invalid redis url: %w", err)
		}
		rdb := redis.NewClient(opts)
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return fmt.Errorf("failed to reach redis: %w", err)
		}
		a.closers = append(a.closers, rdb)
		a.mirror = mirror.NewRedisMirror(rdb, cfg.KeyPrefix)
		a.prefs = mirror.NewRedisPrefs(rdb, cfg.KeyPrefix)

	default:
		a.mirror = mirror.NewFileMirror(cfg.Path)
		a.prefs = mirror.NewFilePrefs(cfg.PrefsPath)
	}
	return nil
}

// Close releases the mirror connections.
func (a *app) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}
