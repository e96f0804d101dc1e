// Package projectdir provides a YAML file-backed project directory.
package projectdir

import (
	"bytes"
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

// document is the file layout. Projects are keyed by ID:
//
//	projects:
//	  plant:
//	    name: Pump station
type document struct {
	Projects map[string]domain.Project `yaml:"projects"`
}

// Store implements domain.ProjectDirectory and domain.ProjectWriter.
// Every call reads the file again, so hand edits show up immediately.
type Store struct {
	path string
	mu   sync.RWMutex
}

// New creates a Store for path. A missing file holds no projects.
func New(path string) *Store {
	return &Store{path: path}
}

// GetByID returns the project or nil if not found.
func (s *Store) GetByID(_ context.Context, id string) (*domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	p, ok := doc.Projects[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// List returns all projects ordered by ID.
func (s *Store) List(_ context.Context) ([]domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	out := make([]domain.Project, 0, len(doc.Projects))
	for _, p := range doc.Projects {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b domain.Project) int { return strings.Compare(a.ID, b.ID) })
	return out, nil
}

// Put adds project or replaces the entry with the same ID.
func (s *Store) Put(_ context.Context, project domain.Project) error {
	if !domain.ValidProjectID(project.ID) {
		return fmt.Errorf("%q: %w", project.ID, domain.ErrInvalidProjectID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	if doc.Projects == nil {
		doc.Projects = make(map[string]domain.Project)
	}
	doc.Projects[project.ID] = project
	return s.save(doc)
}

func (s *Store) load() (*document, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return &document{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read projects file: %w", err)
	}

	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse projects file %s: %w", s.path, err)
	}
	for id, p := range doc.Projects {
		if !domain.ValidProjectID(id) {
			return nil, fmt.Errorf("projects file %s: %q is not a valid project id", s.path, id)
		}
		p.ID = id
		doc.Projects[id] = p
	}
	return &doc, nil
}

func (s *Store) save(doc *document) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode projects: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode projects: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".projects-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

var (
	_ domain.ProjectDirectory = (*Store)(nil)
	_ domain.ProjectWriter    = (*Store)(nil)
)
