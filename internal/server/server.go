// Package server implements the counters REST API in memory.
// It backs `counters serve` for local development and the client tests.
package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/h0rv/counters/internal/domain"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"
)

var (
	// ErrCounterNotFound indicates the requested counter does not exist.
	ErrCounterNotFound = errors.New("counter not found")
	// ErrCountIsZero indicates a decrement on a counter that is already at zero.
	ErrCountIsZero = errors.New("count is already zero")
)

// Server is an in-memory counters API.
type Server struct {
	mu       sync.Mutex
	counters []domain.Counter

	echo  *echo.Echo
	log   *log.Logger
	newID func() string
}

// Option configures a Server.
type Option func(*Server)

// WithIDGenerator replaces the uuid based id generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *Server) { s.newID = fn }
}

// WithCounters seeds the server with an initial list.
func WithCounters(counters []domain.Counter) Option {
	return func(s *Server) { s.counters = domain.Clone(counters) }
}

// New creates a Server with its routes registered.
func New(logger *log.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = log.StandardLogger()
	}

	s := &Server{
		counters: []domain.Counter{},
		log:      logger,
		newID:    func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(requestLogger(logger))
	s.echo = e
	s.register(e)

	return s
}

// Handler exposes the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.log.WithField("addr", addr).Info("counters server starting")
	err := s.echo.Start(addr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops the listener gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Counters returns a snapshot of the current list.
func (s *Server) Counters() []domain.Counter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.Clone(s.counters)
}

func (s *Server) register(e *echo.Echo) {
	e.GET("/api/v1/counters", s.getCounters)
	e.POST("/api/v1/counter", s.createCounter)
	e.POST("/api/v1/counter/", s.createCounter)
	e.POST("/api/v1/counter/inc", s.increaseCounter)
	e.POST("/api/v1/counter/dec", s.decreaseCounter)
	e.DELETE("/api/v1/counter", s.deleteCounter)
	e.DELETE("/api/v1/counter/", s.deleteCounter)
	e.GET("/healthz", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
}

type counterRequest struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func (s *Server) getCounters(c echo.Context) error {
	return c.JSON(http.StatusOK, s.Counters())
}

func (s *Server) createCounter(c echo.Context) error {
	var req counterRequest
	if err := c.Bind(&req); err != nil {
		return c.String(http.StatusBadRequest, "invalid body")
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return c.String(http.StatusBadRequest, "title is required")
	}

	s.mu.Lock()
	s.counters = append(s.counters, domain.Counter{ID: s.newID(), Title: title})
	list := domain.Clone(s.counters)
	s.mu.Unlock()

	return c.JSON(http.StatusOK, list)
}

func (s *Server) increaseCounter(c echo.Context) error {
	return s.step(c, 1)
}

func (s *Server) decreaseCounter(c echo.Context) error {
	return s.step(c, -1)
}

// step adds delta to a counter's count, refusing to go below zero.
func (s *Server) step(c echo.Context, delta int) error {
	id, err := bindID(c)
	if err != nil {
		return c.String(http.StatusBadRequest, err.Error())
	}

	s.mu.Lock()
	list, err := s.applyStep(id, delta)
	s.mu.Unlock()

	switch {
	case errors.Is(err, ErrCounterNotFound):
		return c.String(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrCountIsZero):
		return c.String(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, list)
}

func (s *Server) applyStep(id string, delta int) ([]domain.Counter, error) {
	for i := range s.counters {
		if s.counters[i].ID != id {
			continue
		}
		if s.counters[i].Count+delta < 0 {
			return nil, ErrCountIsZero
		}
		s.counters[i].Count += delta
		return domain.Clone(s.counters), nil
	}
	return nil, ErrCounterNotFound
}

func (s *Server) deleteCounter(c echo.Context) error {
	id, err := bindID(c)
	if err != nil {
		return c.String(http.StatusBadRequest, err.Error())
	}

	s.mu.Lock()
	_, found := domain.Find(s.counters, id)
	if found {
		s.counters = domain.Without(s.counters, id)
	}
	list := domain.Clone(s.counters)
	s.mu.Unlock()

	if !found {
		return c.String(http.StatusNotFound, ErrCounterNotFound.Error())
	}
	return c.JSON(http.StatusOK, list)
}

func bindID(c echo.Context) (string, error) {
	var req counterRequest
	if err := c.Bind(&req); err != nil {
		return "", errors.New("invalid body")
	}
	if req.ID == "" {
		return "", errors.New("id is required")
	}
	return req.ID, nil
}

// requestLogger logs one line per request through logrus.
func requestLogger(logger *log.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			logger.WithFields(log.Fields{
				"method":   c.Request().Method,
				"path":     c.Request().URL.Path,
				"status":   c.Response().Status,
				"duration": time.Since(start),
			}).Info("request")
			return nil
		}
	}
}
