// Package history remembers recently generated values so later prompts can
// ask the model for different ones.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/adrg/xdg"
)

const (
	DefaultMaxSize  = 50
	DefaultHintSize = 10
)

// DefaultPath returns the history file under the XDG state directory.
func DefaultPath() (string, error) {
	return xdg.StateFile(filepath.Join("autofill", "history.json"))
}

// Store is a bounded, insertion-ordered set of lowercase values. It is
// safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	path     string
	maxSize  int
	hintSize int
	values   []string
}

type file struct {
	Values []string `json:"usedFormData"`
}

// Open loads the store at path. A missing file yields an empty store. An
// empty path keeps the store in memory only.
func Open(path string, maxSize, hintSize int) (*Store, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if hintSize <= 0 {
		hintSize = DefaultHintSize
	}
	s := &Store{path: path, maxSize: maxSize, hintSize: hintSize}
	if path == "" {
		return s, nil
	}

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	var f file
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("failed to decode history %s: %w", path, err)
	}
	s.Record(f.Values...)
	return s, nil
}

// Record adds values longer than two characters, lowercased. A value
// already present keeps its position. The oldest entries are evicted past
// the size limit.
func (s *Store) Record(values ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, v := range values {
		if len([]rune(v)) <= 2 {
			continue
		}
		v = strings.ToLower(v)
		if s.has(v) {
			continue
		}
		s.values = append(s.values, v)
	}
	if over := len(s.values) - s.maxSize; over > 0 {
		s.values = append([]string(nil), s.values[over:]...)
	}
}

func (s *Store) has(v string) bool {
	for _, existing := range s.values {
		if existing == v {
			return true
		}
	}
	return false
}

// Recent returns the newest values to send as prompt hints, oldest first.
func (s *Store) Recent() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := len(s.values) - s.hintSize
	if start < 0 {
		start = 0
	}
	return append([]string(nil), s.values[start:]...)
}

// All returns every remembered value, oldest first.
func (s *Store) All() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.values...)
}

// Len returns the number of remembered values.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.values)
}

// Reset forgets everything and persists the empty store.
func (s *Store) Reset() error {
	s.mu.Lock()
	s.values = nil
	s.mu.Unlock()
	return s.Save()
}

// Save writes the store to its file.
func (s *Store) Save() error {
	if s.path == "" {
		return nil
	}
	s.mu.Lock()
	raw, err := json.MarshalIndent(file{Values: append([]string{}, s.values...)}, "", "  ")
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	return nil
}
