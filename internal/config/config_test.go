package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

// clearEnv keeps the caller's COUNTERS_* variables out of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvAPIURL, "")
	t.Setenv(EnvDataDir, "")
	t.Setenv(EnvLogLevel, "")
}

func TestLoad_ValidFull(t *testing.T) {
	clearEnv(t)
	yaml := `
data_dir: /var/lib/counters
api:
  url: "https://counters.example.com"
  timeout: 5s
mirror:
  backend: redis
  redis_url: "redis://localhost:6379/2"
  key_prefix: "test:"
board:
  fallback_delay: 500ms
server:
  host: 0.0.0.0
  port: 8080
logging:
  level: debug
  format: json
  file: /tmp/counters.log
`
	cfg, err := Load(writeTemp(t, yaml))
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/counters", cfg.DataDir)
	assert.Equal(t, "https://counters.example.com", cfg.API.URL)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, BackendRedis, cfg.Mirror.Backend)
	assert.Equal(t, "redis://localhost:6379/2", cfg.Mirror.RedisURL)
	assert.Equal(t, "test:", cfg.Mirror.KeyPrefix)
	assert.Equal(t, "/var/lib/counters/counters.json", cfg.Mirror.Path)
	assert.Equal(t, 500*time.Millisecond, cfg.Board.Delay())
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "/tmp/counters.log", cfg.Logging.File)
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(writeTemp(t, "{}"))
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:3000", cfg.API.URL)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Equal(t, BackendFile, cfg.Mirror.Backend)
	assert.Equal(t, filepath.Join(cfg.DataDir, "counters.json"), cfg.Mirror.Path)
	assert.Equal(t, filepath.Join(cfg.DataDir, "prefs.yaml"), cfg.Mirror.PrefsPath)
	assert.Equal(t, 2*time.Second, cfg.Board.Delay())
	assert.Equal(t, "127.0.0.1:3000", cfg.Server.Addr())
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, filepath.Join(cfg.DataDir, "counters.log"), cfg.Logging.File)
}

func TestLoad_ZeroFallbackDelayIsKept(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(writeTemp(t, "board:\n  fallback_delay: 0s\n"))
	require.NoError(t, err)

	require.NotNil(t, cfg.Board.FallbackDelay)
	assert.Equal(t, time.Duration(0), cfg.Board.Delay())
}

func TestBoardConfig_DelayUnset(t *testing.T) {
	assert.Equal(t, DefaultFallbackDelay, BoardConfig{}.Delay())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:3000", cfg.API.URL)
}

func TestLoad_InvalidYAML(t *testing.T) {
	clearEnv(t)
	_, err := Load(writeTemp(t, "{{{{not yaml"))
	assert.Error(t, err)
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "bad port", yaml: "server:\n  port: 99999\n"},
		{name: "non http api url", yaml: "api:\n  url: ftp://example.com\n"},
		{name: "api url without host", yaml: "api:\n  url: http://\n"},
		{name: "unknown backend", yaml: "mirror:\n  backend: sqlite\n"},
		{name: "redis without url", yaml: "mirror:\n  backend: redis\n"},
		{name: "negative fallback", yaml: "board:\n  fallback_delay: -1s\n"},
		{name: "unknown log format", yaml: "logging:\n  format: xml\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			_, err := Load(writeTemp(t, tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(EnvAPIURL, "http://10.0.0.2:3000")
	t.Setenv(EnvDataDir, "/srv/counters")
	t.Setenv(EnvLogLevel, "warn")

	yaml := `
api:
  url: http://ignored:3000
logging:
  level: debug
`
	cfg, err := Load(writeTemp(t, yaml))
	require.NoError(t, err)

	assert.Equal(t, "http://10.0.0.2:3000", cfg.API.URL)
	assert.Equal(t, "/srv/counters", cfg.DataDir)
	assert.Equal(t, "/srv/counters/counters.json", cfg.Mirror.Path)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	clearEnv(t)
	t.Setenv("TEST_REDIS_URL", "redis://secret@cache:6379/0")

	yaml := `
mirror:
  backend: redis
  redis_url: "${TEST_REDIS_URL}"
`
	cfg, err := Load(writeTemp(t, yaml))
	require.NoError(t, err)
	assert.Equal(t, "redis://secret@cache:6379/0", cfg.Mirror.RedisURL)
}

func TestDefault(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvDataDir, "/data")

	cfg := Default()
	assert.Equal(t, "/data", cfg.DataDir)
	assert.Equal(t, "/data/prefs.yaml", cfg.Mirror.PrefsPath)
}
