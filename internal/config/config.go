// Package config loads the counters configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment overrides, applied after the file is read.
const (
	EnvAPIURL   = "COUNTERS_API_URL"
	EnvDataDir  = "COUNTERS_DATA_DIR"
	EnvLogLevel = "COUNTERS_LOG_LEVEL"
)

// Mirror backends.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config is the top-level configuration.
type Config struct {
	DataDir string        `yaml:"data_dir"`
	API     APIConfig     `yaml:"api"`
	Mirror  MirrorConfig  `yaml:"mirror"`
	Board   BoardConfig   `yaml:"board"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
}

// APIConfig holds the counters API connection settings.
type APIConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// MirrorConfig selects where the offline copy of the counters lives.
type MirrorConfig struct {
	Backend   string `yaml:"backend"`
	Path      string `yaml:"path"`
	PrefsPath string `yaml:"prefs_path"`
	RedisURL  string `yaml:"redis_url"`
	KeyPrefix string `yaml:"key_prefix"`
}

// BoardConfig tunes the board screen.
// FallbackDelay is a pointer so an explicit 0s is kept.
type BoardConfig struct {
	FallbackDelay *time.Duration `yaml:"fallback_delay"`
}

// DefaultFallbackDelay is used when board.fallback_delay is unset.
const DefaultFallbackDelay = 2 * time.Second

// Delay returns the fallback delay, DefaultFallbackDelay when unset.
func (b BoardConfig) Delay() time.Duration {
	if b.FallbackDelay == nil {
		return DefaultFallbackDelay
	}
	return *b.FallbackDelay
}

// ServerConfig holds the dev server listener settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	File   string `yaml:"file"`
	Format string `yaml:"format"`
}

// Addr is the dev server listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DefaultPath is where Load looks when no path is given.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "counters.yaml"
	}
	return filepath.Join(dir, "counters", "config.yaml")
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".counters"
	}
	return filepath.Join(home, ".counters")
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	var cfg Config
	cfg.applyEnv()
	cfg.defaults()
	return &cfg
}

// defaults applies sane defaults to zero-valued fields.
func (c *Config) defaults() {
	if c.DataDir == "" {
		c.DataDir = defaultDataDir()
	}
	if c.API.URL == "" {
		c.API.URL = "http://127.0.0.1:3000"
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = 10 * time.Second
	}
	if c.Mirror.Backend == "" {
		c.Mirror.Backend = BackendFile
	}
	if c.Mirror.Path == "" {
		c.Mirror.Path = filepath.Join(c.DataDir, "counters.json")
	}
	if c.Mirror.PrefsPath == "" {
		c.Mirror.PrefsPath = filepath.Join(c.DataDir, "prefs.yaml")
	}
	if c.Mirror.KeyPrefix == "" {
		c.Mirror.KeyPrefix = "counters:"
	}
	if c.Board.FallbackDelay == nil {
		d := DefaultFallbackDelay
		c.Board.FallbackDelay = &d
	}
	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 3000
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Logging.File == "" {
		c.Logging.File = filepath.Join(c.DataDir, "counters.log")
	}
}

// validate checks required fields and value constraints.
func (c *Config) validate() error {
	u, err := url.Parse(c.API.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api.url must be an http(s) URL, got %q", c.API.URL)
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout must be non-negative")
	}
	switch c.Mirror.Backend {
	case BackendFile, BackendMemory:
	case BackendRedis:
		if c.Mirror.RedisURL == "" {
			return fmt.Errorf("mirror.redis_url is required for the redis backend")
		}
	default:
		return fmt.Errorf("mirror.backend must be one of file, redis, memory, got %q", c.Mirror.Backend)
	}
	if c.Board.Delay() < 0 {
		return fmt.Errorf("board.fallback_delay must be non-negative")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}
	return nil
}

// expandEnv replaces ${VAR} references in fields that may carry
// credentials or host-specific paths.
func (c *Config) expandEnv() {
	c.DataDir = os.ExpandEnv(c.DataDir)
	c.API.URL = os.ExpandEnv(c.API.URL)
	c.Mirror.Path = os.ExpandEnv(c.Mirror.Path)
	c.Mirror.PrefsPath = os.ExpandEnv(c.Mirror.PrefsPath)
	c.Mirror.RedisURL = os.ExpandEnv(c.Mirror.RedisURL)
	c.Logging.File = os.ExpandEnv(c.Logging.File)
}

// applyEnv lets COUNTERS_* variables override the file.
func (c *Config) applyEnv() {
	if v := os.Getenv(EnvAPIURL); v != "" {
		c.API.URL = v
	}
	if v := os.Getenv(EnvDataDir); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
}

// Load reads a YAML config file, applies env overrides and defaults,
// expands env vars, and validates. A missing file yields the defaults.
// An empty path means DefaultPath.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	cfg.expandEnv()
	cfg.applyEnv()
	cfg.defaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}
