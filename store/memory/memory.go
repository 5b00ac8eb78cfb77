// Package memory provides an in-memory roster.Store.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/tip-engine/roster"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Store struct {
	mu        sync.RWMutex
	templates map[string]roster.Template
}

func New() *Store {
	return &Store{templates: make(map[string]roster.Template)}
}

func (s *Store) Create(_ context.Context, t roster.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.templates[t.ID]; exists {
		return roster.ErrDuplicateTemplate
	}
	s.templates[t.ID] = t.Clone()
	return nil
}

func (s *Store) Get(_ context.Context, id string) (*roster.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.templates[id]
	if !ok {
		return nil, roster.ErrTemplateNotFound
	}
	c := t.Clone()
	return &c, nil
}

func (s *Store) ListByOwner(_ context.Context, ownerID string) ([]roster.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]roster.Template, 0)
	for _, t := range s.templates {
		if t.OwnerID == ownerID {
			out = append(out, t.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) Update(_ context.Context, t roster.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.templates[t.ID]; !ok {
		return roster.ErrTemplateNotFound
	}
	s.templates[t.ID] = t.Clone()
	return nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.templates[id]; !ok {
		return roster.ErrTemplateNotFound
	}
	delete(s.templates, id)
	return nil
}
