// Package cache persists the last good dashboard state and the search
// history as a single JSON file.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/naka-gawa/github-dashboard/internal/usecase"
)

// MaxHistory bounds the number of distinct queries kept, most recent first.
const MaxHistory = 50

type file struct {
	State   *usecase.State `json:"state,omitempty"`
	History []string       `json:"history,omitempty"`
}

type Store struct {
	path string
	mu   sync.Mutex
}

func New(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string { return s.path }

// LoadState returns nil without error when nothing has been cached yet.
func (s *Store) LoadState() (*usecase.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.read()
	if err != nil {
		return nil, err
	}
	return f.State, nil
}

func (s *Store) SaveState(st *usecase.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.read()
	if err != nil {
		return err
	}
	f.State = st
	return s.write(f)
}

func (s *Store) History() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.read()
	if err != nil {
		return nil, err
	}
	return f.History, nil
}

// AddQuery moves q to the front of the history. Blank queries are ignored.
func (s *Store) AddQuery(q string) error {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.read()
	if err != nil {
		return err
	}
	history := make([]string, 0, len(f.History)+1)
	history = append(history, q)
	for _, h := range f.History {
		if h != q {
			history = append(history, h)
		}
	}
	if len(history) > MaxHistory {
		history = history[:MaxHistory]
	}
	f.History = history
	return s.write(f)
}

func (s *Store) read() (*file, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return &file{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache %s: %w", s.path, err)
	}
	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode cache %s: %w", s.path, err)
	}
	return &f, nil
}

// write replaces the cache file by rename so readers never see a torn file.
func (s *Store) write(f *file) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cache: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write cache: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace cache: %w", err)
	}
	return nil
}
