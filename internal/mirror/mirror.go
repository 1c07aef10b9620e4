// Package mirror keeps a local copy of the last counter list fetched from the
// API, plus a handful of persisted preference flags. The board reads the
// mirror only when the remote fetch fails.
package mirror

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/h0rv/counters/internal/domain"
)

// ErrCorrupt indicates the stored mirror could not be decoded.
var ErrCorrupt = errors.New("mirror data is corrupt")

// Mirror stores the last known good counter list.
type Mirror interface {
	// ReplaceAll clears the mirror and inserts counters in order.
	ReplaceAll(ctx context.Context, counters []domain.Counter) error
	// All returns the mirrored counters, or an empty list if nothing is stored.
	All(ctx context.Context) ([]domain.Counter, error)
	// Clear removes every mirrored counter.
	Clear(ctx context.Context) error
}

// MemoryMirror is an in-process Mirror.
type MemoryMirror struct {
	mu       sync.RWMutex
	counters []domain.Counter
}

// NewMemoryMirror creates an empty MemoryMirror.
func NewMemoryMirror() *MemoryMirror {
	return &MemoryMirror{counters: []domain.Counter{}}
}

func (m *MemoryMirror) ReplaceAll(_ context.Context, counters []domain.Counter) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters = domain.Clone(counters)
	return nil
}

func (m *MemoryMirror) All(_ context.Context) ([]domain.Counter, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return domain.Clone(m.counters), nil
}

func (m *MemoryMirror) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters = []domain.Counter{}
	return nil
}

// FileMirror stores the list as a JSON document on disk.
// Writes go to a temp file that is renamed over the target, so a reader
// never sees a half-written list.
type FileMirror struct {
	mu   sync.Mutex
	path string
}

// NewFileMirror creates a mirror backed by path. The parent directory is
// created on first write.
func NewFileMirror(path string) *FileMirror {
	return &FileMirror{path: path}
}

// Path returns the backing file.
func (f *FileMirror) Path() string {
	return f.path
}

func (f *FileMirror) ReplaceAll(_ context.Context, counters []domain.Counter) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := sonic.Marshal(domain.Clone(counters))
	if err != nil {
		return fmt.Errorf("failed to encode mirror: %w", err)
	}
	return writeAtomic(f.path, data)
}

func (f *FileMirror) All(_ context.Context) ([]domain.Counter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return []domain.Counter{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read mirror %s: %w", f.path, err)
	}

	var counters []domain.Counter
	if err := sonic.Unmarshal(data, &counters); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return domain.Clone(counters), nil
}

func (f *FileMirror) Clear(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	err := os.Remove(f.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to clear mirror %s: %w", f.path, err)
	}
	return nil
}

// writeAtomic writes data to a sibling temp file and renames it over path.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
