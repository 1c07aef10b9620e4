package mirror

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Prefs persists simple boolean flags between runs.
type Prefs interface {
	Bool(key string) bool
	SetBool(key string, value bool) error
}

// MemoryPrefs keeps flags in memory only.
type MemoryPrefs struct {
	mu    sync.RWMutex
	flags map[string]bool
}

// NewMemoryPrefs creates an empty MemoryPrefs.
func NewMemoryPrefs() *MemoryPrefs {
	return &MemoryPrefs{flags: make(map[string]bool)}
}

func (m *MemoryPrefs) Bool(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.flags[key]
}

func (m *MemoryPrefs) SetBool(key string, value bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flags[key] = value
	return nil
}

// FilePrefs stores flags in a small YAML document.
type FilePrefs struct {
	mu   sync.Mutex
	path string
}

// NewFilePrefs creates prefs backed by path.
func NewFilePrefs(path string) *FilePrefs {
	return &FilePrefs{path: path}
}

// Bool returns the flag, false when unset or when the file is unreadable.
func (f *FilePrefs) Bool(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	flags, err := f.load()
	if err != nil {
		return false
	}
	return flags[key]
}

// SetBool persists the flag, keeping the others.
func (f *FilePrefs) SetBool(key string, value bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	flags, err := f.load()
	if err != nil {
		// Start over rather than refuse to save
		flags = make(map[string]bool)
	}
	flags[key] = value

	data, err := yaml.Marshal(flags)
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}
	return writeAtomic(f.path, data)
}

func (f *FilePrefs) load() (map[string]bool, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string]bool), nil
	}
	if err != nil {
		return nil, err
	}

	flags := make(map[string]bool)
	if err := yaml.Unmarshal(data, &flags); err != nil {
		return nil, err
	}
	return flags, nil
}
