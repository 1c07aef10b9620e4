// Package logging builds the logrus loggers used by the TUI, CLI and server.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/h0rv/counters/internal/config"
	log "github.com/sirupsen/logrus"
)

// New returns a logger writing to out with the configured level and format.
func New(cfg config.LoggingConfig, out io.Writer) (*log.Logger, error) {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	logger := log.New()
	logger.SetOutput(out)
	logger.SetLevel(level)
	if cfg.Format == "json" {
		logger.SetFormatter(&log.JSONFormatter{})
	} else {
		logger.SetFormatter(&log.TextFormatter{FullTimestamp: true, DisableColors: out != os.Stderr})
	}
	return logger, nil
}

// NewFile returns a logger appending to cfg.File. The TUI owns the
// terminal so it never logs to stderr. Close the returned file on exit.
func NewFile(cfg config.LoggingConfig) (*log.Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	logger, err := New(cfg, f)
	if err != nil {
		_ = f.Close()
		return nil, nil, err
	}
	return logger, f, nil
}
