package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

type counterFile struct {
	Counter int64 `json:"counter"`
}

// CounterStore persists the receipt sequence as {"counter": n} in a local
// JSON file. Updates go through a temp file and a rename, so a crash never
// leaves a half-written counter behind. Safe for concurrent use within one
// process; separate processes must not share the file.
type CounterStore struct {
	mu   sync.Mutex
	path string
}

func NewCounterStore(path string) *CounterStore {
	return &CounterStore{path: path}
}

func (s *CounterStore) Next(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.read()
	if err != nil {
		return 0, err
	}
	n++
	if err := s.write(n); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *CounterStore) Current(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

// read returns 0 when the file does not exist yet.
func (s *CounterStore) read() (int64, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading counter file: %w", err)
	}

	var cf counterFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return 0, fmt.Errorf("parsing counter file %s: %w", s.path, err)
	}
	if cf.Counter < 0 {
		return 0, fmt.Errorf("counter file %s holds negative value %d", s.path, cf.Counter)
	}
	return cf.Counter, nil
}

func (s *CounterStore) write(n int64) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating counter dir: %w", err)
	}

	data, err := json.Marshal(counterFile{Counter: n})
	if err != nil {
		return fmt.Errorf("encoding counter: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp counter file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp counter file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing temp counter file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp counter file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replacing counter file: %w", err)
	}
	return nil
}

// Ping checks that the counter file, if present, is readable.
func (s *CounterStore) Ping(ctx context.Context) error {
	_, err := s.Current(ctx)
	return err
}

func (s *CounterStore) Name() string {
	return "counter_file"
}
