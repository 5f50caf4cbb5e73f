package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Document file names kept under the data directory.
const (
	UsersFile       = "users.json"
	MoviesFile      = "movies.json"
	ChannelsFile    = "channels.json"
	InviteLinksFile = "invite_links.json"
)

// Store reads and writes whole JSON documents in a single directory.
// Every read and write goes through one mutex, so a document is never
// observed half-written by another goroutine of this process.
type Store struct {
	dir string
	mu  sync.Mutex
}

// New creates the data directory if needed and returns a Store rooted at it.
func New(dir string) (*Store, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory the store writes to.
func (s *Store) Dir() string {
	return s.dir
}

// Load decodes the named document into dst.
// It reports false, leaving dst untouched, when the file does not exist, is
// empty or holds a bare null.
func (s *Store) Load(name string, dst interface{}) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok, err := s.readLocked(name)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", name, err)
	}
	return true, nil
}

// LoadRaw returns the raw bytes of the named document.
func (s *Store) LoadRaw(name string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readLocked(name)
}

// Save replaces the named document with doc, indented for humans.
func (s *Store) Save(name string, doc interface{}) error {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked(name, raw)
}

func (s *Store) readLocked(name string) ([]byte, bool, error) {
	raw, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", name, err)
	}
	if trimmed := bytes.TrimSpace(raw); len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, false, nil
	}
	return raw, true, nil
}

// writeLocked writes to a temp file in the same directory and renames it
// over the target.
func (s *Store) writeLocked(name string, raw []byte) error {
	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", name, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(append(raw, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}
