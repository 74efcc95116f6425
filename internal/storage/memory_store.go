package storage

import (
	"context"
	"errors"
	"sync"
	"time"
)

// MemoryStore is a process-local Store for development and tests.
type MemoryStore struct {
	mu   sync.RWMutex
	cols map[string]map[string]Document
	now  func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{cols: map[string]map[string]Document{}, now: time.Now}
}

// WithClock overrides the time source used by Create.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

func (s *MemoryStore) List(ctx context.Context, collection string) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Document, 0, len(s.cols[collection]))
	for _, d := range s.cols[collection] {
		out = append(out, cloneDoc(d))
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *MemoryStore) Get(ctx context.Context, collection, id string) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.cols[collection][id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return cloneDoc(d), nil
}

func (s *MemoryStore) Create(ctx context.Context, collection string, fields map[string]string) (Document, error) {
	d := Document{ID: newID(), Fields: copyFields(fields), PostedAt: s.now().UTC()}
	if err := s.Put(ctx, collection, d); err != nil {
		return Document{}, err
	}
	return d, nil
}

func (s *MemoryStore) Put(ctx context.Context, collection string, doc Document) error {
	if doc.ID == "" {
		return errors.New("put: empty document id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cols[collection] == nil {
		s.cols[collection] = map[string]Document{}
	}
	s.cols[collection][doc.ID] = cloneDoc(doc)
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, collection, id string, fields map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.cols[collection][id]
	if !ok {
		return ErrNotFound
	}
	for k, v := range fields {
		d.Fields[k] = v
	}
	s.cols[collection][id] = d
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cols[collection][id]; !ok {
		return ErrNotFound
	}
	delete(s.cols[collection], id)
	return nil
}

func (s *MemoryStore) Count(ctx context.Context, collection string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cols[collection]), nil
}

func (s *MemoryStore) Close() error { return nil }

func cloneDoc(d Document) Document {
	d.Fields = copyFields(d.Fields)
	return d
}
