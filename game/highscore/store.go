package highscore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// ErrInvalidScore is returned when the stored text is not a non-negative integer
var ErrInvalidScore = errors.New("invalid stored high score")

// FileStore keeps the high score as a textual integer in a single file
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a store backed by path. The file is created on the
// first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file
func (s *FileStore) Path() string {
	return s.path
}

// Read returns the stored score. ok is false when no score has been written.
func (s *FileStore) Read() (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read high score file: %w", err)
	}

	score, err := parseScore(string(data))
	if err != nil {
		return 0, false, err
	}
	return score, true, nil
}

// Write replaces the stored score. The file is swapped in with a rename so
// readers never see a partial value.
func (s *FileStore) Write(score int) error {
	if score < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidScore, score)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create high score directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".highscore-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.WriteString(strconv.Itoa(score) + "\n"); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write high score: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace high score file: %w", err)
	}
	return nil
}

func parseScore(text string) (int, error) {
	text = strings.TrimSpace(text)
	score, err := strconv.Atoi(text)
	if err != nil || score < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidScore, text)
	}
	return score, nil
}

// MemoryStore keeps the high score in memory
type MemoryStore struct {
	mu    sync.Mutex
	score int
	set   bool
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Read returns the stored score
func (s *MemoryStore) Read() (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score, s.set, nil
}

// Write replaces the stored score
func (s *MemoryStore) Write(score int) error {
	if score < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidScore, score)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.score, s.set = score, true
	return nil
}
