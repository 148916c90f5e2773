// Package library persists the hashtag vocabulary, the only engine state
// kept outside the remote store.
package library

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/agentstation/docsync/pkg/constants"
	"github.com/agentstation/docsync/pkg/errors"
)

// Store loads and saves the persisted hashtag library.
type Store interface {
	// Load returns the saved tags. A missing library is not an error.
	Load(ctx context.Context) ([]string, error)

	// Save replaces the saved tags wholesale.
	Save(ctx context.Context, tags []string) error
}

var (
	_ Store = (*FileStore)(nil)
	_ Store = (*MemoryStore)(nil)
)

// FileStore keeps the library as a JSON array in a single file.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore returns a store backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the library. Malformed content yields a PersistenceError.
func (s *FileStore) Load(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.WrapPersistence(s.path, errors.WrapIO("read", s.path, err))
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var tags []string
	if err := json.Unmarshal(data, &tags); err != nil {
		return nil, errors.WrapPersistence(s.path, errors.WrapParse("json", s.path, err))
	}
	return tags, nil
}

// Save writes the library through a temp file and rename.
func (s *FileStore) Save(_ context.Context, tags []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tags == nil {
		tags = []string{}
	}
	data, err := json.MarshalIndent(tags, "", "  ")
	if err != nil {
		return errors.WrapParse("json", s.path, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return errors.WrapIO("create", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".hashtags_*.json")
	if err != nil {
		return errors.WrapIO("create", "temp file", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		return errors.WrapIO("write", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return errors.WrapIO("close", tmpPath, err)
	}
	if err := os.Chmod(tmpPath, constants.FilePermissions); err != nil {
		return errors.WrapIO("chmod", tmpPath, err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return errors.WrapIO("rename", s.path, err)
	}
	return nil
}

// MemoryStore keeps the library in memory.
type MemoryStore struct {
	mu    sync.Mutex
	tags  []string
	saves int
}

// NewMemoryStore returns a store seeded with tags.
func NewMemoryStore(tags ...string) *MemoryStore {
	return &MemoryStore{tags: append([]string(nil), tags...)}
}

// Load returns a copy of the stored tags.
func (s *MemoryStore) Load(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.tags...), nil
}

// Save replaces the stored tags.
func (s *MemoryStore) Save(_ context.Context, tags []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tags = append([]string(nil), tags...)
	s.saves++
	return nil
}

// Saves returns how many times Save was called.
func (s *MemoryStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
