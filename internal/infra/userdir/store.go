// Package userdir provides a YAML file-backed user directory.
package userdir

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/runoshun/whatstask/internal/domain"
)

// fileData is the YAML file structure.
type fileData struct {
	Users []domain.User `yaml:"users"`
}

// Store implements domain.UserDirectory and domain.UserWriter.
// The file is re-read on every call so edits made by hand are picked up.
type Store struct {
	path string
	mu   sync.RWMutex
}

// New creates a Store for the given file. A missing file is an empty directory.
func New(path string) *Store {
	return &Store{path: path}
}

// GetByID returns the user or nil if not found.
func (s *Store) GetByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := s.read()
	if err != nil {
		return nil, err
	}
	for i := range data.Users {
		if data.Users[i].ID == id {
			u := data.Users[i]
			return &u, nil
		}
	}
	return nil, nil
}

// List returns all users ordered by ID.
func (s *Store) List(_ context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := s.read()
	if err != nil {
		return nil, err
	}
	users := slices.Clone(data.Users)
	slices.SortFunc(users, func(a, b domain.User) int { return strings.Compare(a.ID, b.ID) })
	return users, nil
}

// Put adds user or replaces the user with the same ID.
func (s *Store) Put(_ context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read()
	if err != nil {
		return err
	}
	idx := slices.IndexFunc(data.Users, func(u domain.User) bool { return u.ID == user.ID })
	if idx >= 0 {
		data.Users[idx] = user
	} else {
		data.Users = append(data.Users, user)
	}
	return s.write(data)
}

func (s *Store) read() (*fileData, error) {
	content, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &fileData{}, nil
		}
		return nil, fmt.Errorf("read users file: %w", err)
	}

	var data fileData
	if err := yaml.Unmarshal(content, &data); err != nil {
		return nil, fmt.Errorf("parse users file %s: %w", s.path, err)
	}
	for i, u := range data.Users {
		if u.ID == "" {
			return nil, fmt.Errorf("users file %s: entry %d has no id", s.path, i+1)
		}
		if u.Role == "" {
			data.Users[i].Role = domain.RoleUser
		}
	}
	return &data, nil
}

func (s *Store) write(data *fileData) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	content, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal users: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, content, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Ensure Store implements the user ports.
var (
	_ domain.UserDirectory = (*Store)(nil)
	_ domain.UserWriter    = (*Store)(nil)
)
