// Package selection remembers the last repository picked interactively so
// the next picker can offer it first.
package selection

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Store persists a single value.
type Store interface {
	// Load returns the stored value, or "" if there is none.
	Load() (string, error)
	Save(value string) error
}

// DefaultPath returns $XDG_STATE_HOME/twig/last-repo, falling back to
// ~/.local/state/twig/last-repo.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "twig", "last-repo"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "state", "twig", "last-repo"), nil
}

// FileStore keeps the value in a plain-text file.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the first line of the file. A missing or unreadable-as-text
// file is treated as empty.
func (s *FileStore) Load() (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	line, _, _ := strings.Cut(string(data), "\n")
	line = strings.TrimSpace(line)
	if strings.ContainsRune(line, 0) {
		// corrupted, start fresh
		return "", nil
	}
	return line, nil
}

// Save writes value atomically (temp file, then rename).
func (s *FileStore) Save(value string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	tempPath := s.path + ".tmp"
	if err := os.WriteFile(tempPath, []byte(value+"\n"), 0o600); err != nil {
		return err
	}
	return os.Rename(tempPath, s.path)
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu    sync.Mutex
	value string
}

// Load implements Store.
func (m *MemoryStore) Load() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.value, nil
}

// Save implements Store.
func (m *MemoryStore) Save(value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = value
	return nil
}
