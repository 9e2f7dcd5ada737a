// Package memory provides an in-memory ModelStore. It backs the CLI's
// single-process runs and every test that needs a registry without
// infrastructure.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/hindsight/pkg/modelfile"
	"github.com/aretw0/hindsight/pkg/ports"
)

// Store implements ports.ModelStore with a mutex-guarded map. Documents are
// deep-copied on the way in and out, so callers never share backing slices
// with the store.
type Store struct {
	mu     sync.RWMutex
	models map[string]*modelfile.File
}

// New creates an empty store.
func New() *Store {
	return &Store{models: make(map[string]*modelfile.File)}
}

// Save stores or replaces the document under name.
func (s *Store) Save(ctx context.Context, name string, file *modelfile.File) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.models[name] = file.Clone()
	return nil
}

// Load retrieves a copy of the document stored under name.
func (s *Store) Load(ctx context.Context, name string) (*modelfile.File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.models[name]
	if !ok {
		return nil, ports.ErrModelNotFound
	}
	return f.Clone(), nil
}

// List returns the stored names in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.models))
	for name := range s.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes the document under name.
func (s *Store) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.models[name]; !ok {
		return ports.ErrModelNotFound
	}
	delete(s.models, name)
	return nil
}
