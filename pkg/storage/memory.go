package storage

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-process [Store].
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]*Document
	now  func() time.Time
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]*Document), now: time.Now}
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(doc), nil
}

func (s *MemoryStore) Put(ctx context.Context, doc *Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc != nil && doc.ID != "" {
		if old, ok := s.docs[doc.ID]; ok && doc.CreatedAt.IsZero() {
			doc.CreatedAt = old.CreatedAt
		}
	}
	if err := prepare(doc, s.now().UTC()); err != nil {
		return err
	}
	s.docs[doc.ID] = clone(doc)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return ErrNotFound
	}
	delete(s.docs, id)
	return nil
}

func (s *MemoryStore) List(ctx context.Context, owner string) ([]*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*Document{}
	for _, doc := range s.docs {
		if doc.Owner == owner {
			out = append(out, clone(doc))
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

func (s *MemoryStore) Close(ctx context.Context) error { return nil }

var _ Store = (*MemoryStore)(nil)
