// Package memory provides in-process implementations of the persistent and
// blob store interfaces, used by tests and by the dev profile.
package memory

import (
	"context"
	"fmt"
	"sync"

	"lorehold/internal/domain"
)

// Store keeps keyed collections of JSON records in nested maps.
type Store struct {
	mu          sync.RWMutex
	collections map[string]map[string][]byte
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		collections: make(map[string]map[string][]byte),
	}
}

// Get retrieves a record by id.
func (s *Store) Get(ctx context.Context, collection, id string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.collections[collection][id]
	if !ok {
		return nil, &domain.NotFoundError{
			Message: fmt.Sprintf("%s/%s not found", collection, id),
		}
	}

	cp := make([]byte, len(record))
	copy(cp, record)
	return cp, nil
}

// List returns every record in a collection.
func (s *Store) List(ctx context.Context, collection string) ([][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([][]byte, 0, len(s.collections[collection]))
	for _, record := range s.collections[collection] {
		cp := make([]byte, len(record))
		copy(cp, record)
		records = append(records, cp)
	}
	return records, nil
}

// Put inserts or replaces a record.
func (s *Store) Put(ctx context.Context, collection, id string, record []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string][]byte)
	}
	cp := make([]byte, len(record))
	copy(cp, record)
	s.collections[collection][id] = cp
	return nil
}

// Delete removes a record. Absent ids are not an error.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.collections[collection], id)
	return nil
}
