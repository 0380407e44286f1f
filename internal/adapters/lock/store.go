// Package lock persists resolved environment snapshots as a flat JSON file.
package lock

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.pkgs.ch/enva/internal/core/domain"
	"go.trai.ch/zerr"
)

// Store implements ports.LockStore using a single JSON file next to the
// manifest.
type Store struct {
	path  string
	mu    sync.RWMutex
	cache *domain.Lockfile
}

// NewStore creates a LockStore backed by the file at the given path.
func NewStore(path string) (*Store, error) {
	s := &Store{
		path: filepath.Clean(path),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	//nolint:gosec // Path is cleaned and provided by trusted caller
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return zerr.Wrap(err, "failed to read lockfile")
	}

	if len(data) == 0 {
		return nil
	}

	var lock domain.Lockfile
	if err := json.Unmarshal(data, &lock); err != nil {
		return zerr.Wrap(err, "failed to unmarshal lockfile")
	}
	s.cache = &lock

	return nil
}

func (s *Store) save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(s.cache, "", "  ")
	if err != nil {
		return zerr.Wrap(err, "failed to marshal lockfile")
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return zerr.Wrap(err, "failed to create directory for lockfile")
	}

	//nolint:gosec // Path is cleaned and provided by trusted caller
	if err := os.WriteFile(s.path, data, domain.FilePerm); err != nil {
		return zerr.Wrap(err, "failed to write lockfile")
	}

	return nil
}

// Get retrieves the stored lockfile, or nil when none has been written yet.
func (s *Store) Get() (*domain.Lockfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.cache == nil {
		return nil, nil
	}
	snapshot := *s.cache
	return &snapshot, nil
}

// Put stores the lockfile, replacing any previous snapshot.
func (s *Store) Put(lock *domain.Lockfile) error {
	s.mu.Lock()
	s.cache = lock
	s.mu.Unlock()

	return s.save()
}
