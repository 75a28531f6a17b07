// Package memory is the local-only document store used when no remote
// backend is configured. Documents live in process memory; durability is
// whatever the session lasts.
package memory

import (
	"context"
	"sync"

	"financas/internal/core"
)

type Store struct {
	mu   sync.Mutex
	docs map[string]*core.MonthRecord
}

func New() *Store {
	return &Store{docs: make(map[string]*core.MonthRecord)}
}

func docKey(uid string, key core.MonthKey) string {
	return uid + "/" + string(key)
}

// Get returns a copy of the stored document, or (nil, nil) when absent.
func (s *Store) Get(_ context.Context, uid string, key core.MonthKey) (*core.MonthRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.docs[docKey(uid, key)]
	if !ok {
		return nil, nil
	}
	return rec.Clone(), nil
}

// Set stores a copy of the record so later caller mutations cannot leak in.
func (s *Store) Set(_ context.Context, uid string, key core.MonthKey, rec *core.MonthRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[docKey(uid, key)] = rec.Clone()
	return nil
}

// Len reports how many documents are stored.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs)
}
