package user

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"beacon/internal/pkg/logx"
)

// FileStore is a Store backed by a single JSON file. The whole store is
// rewritten after every successful mutation, before the call returns, so a
// crash can never leave an acknowledged write behind.
type FileStore struct {
	path  string
	mu    sync.RWMutex
	users map[string]User
}

// NewFileStore constructs a FileStore persisting to path. Call Load before use.
func NewFileStore(path string) *FileStore {
	return &FileStore{
		path:  path,
		users: make(map[string]User),
	}
}

// Load reads the users file into memory. A missing file is not an error; the
// store starts empty, matching first-boot behavior.
func (s *FileStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			logx.Info("No users file found, starting with empty store", "path", s.path)
			return nil
		}
		return fmt.Errorf("read users file: %w", err)
	}

	var list []User
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("parse users file: %w", err)
	}

	for _, u := range list {
		s.users[u.Name] = u
	}

	logx.Info("Loaded users from file", "count", len(list), "path", s.path)
	return nil
}

// persistLocked writes the full store to disk. Must be called with s.mu held.
// The file is written to a temp name and renamed into place so readers never
// see a half-written store.
func (s *FileStore) persistLocked() error {
	list := s.sortedLocked()

	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal users: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write users file: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace users file: %w", err)
	}

	return nil
}

// sortedLocked returns all users ordered by registration time, then name.
// Must be called with s.mu held (read or write).
func (s *FileStore) sortedLocked() []User {
	list := make([]User, 0, len(s.users))
	for _, u := range s.users {
		list = append(list, u)
	}

	sort.Slice(list, func(i, j int) bool {
		if !list[i].Registered.Equal(list[j].Registered) {
			return list[i].Registered.Before(list[j].Registered)
		}
		return list[i].Name < list[j].Name
	})

	return list
}

// Get returns the user with the given name, or ErrNotFound.
func (s *FileStore) Get(ctx context.Context, name string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[name]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

// Create inserts a new user and persists the store before acknowledging.
// The insert is rolled back if the durable write fails.
func (s *FileStore) Create(ctx context.Context, u User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[u.Name]; exists {
		return ErrAlreadyExists
	}

	s.users[u.Name] = u

	if err := s.persistLocked(); err != nil {
		delete(s.users, u.Name)
		return err
	}

	return nil
}

// Update applies the non-nil fields of upd and persists the store before
// acknowledging. The previous record is restored if the durable write fails.
func (s *FileStore) Update(ctx context.Context, name string, upd Update) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.users[name]
	if !ok {
		return ErrNotFound
	}

	next := prev
	if upd.Nick != nil {
		next.Nick = ClampNick(*upd.Nick)
	}
	if upd.Balance != nil {
		next.Balance = *upd.Balance
	}
	if upd.Avatar != nil {
		next.Avatar = *upd.Avatar
	}

	s.users[name] = next

	if err := s.persistLocked(); err != nil {
		s.users[name] = prev
		return err
	}

	return nil
}

// List returns an ordered snapshot of all users. The returned slice holds
// copies and is never mutated by later store writes.
func (s *FileStore) List(ctx context.Context) ([]User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.sortedLocked(), nil
}

// Path returns the location of the backing users file.
func (s *FileStore) Path() string {
	return filepath.Clean(s.path)
}
