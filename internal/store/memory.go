package store

import (
	"context"
	"sync"
	"time"

	"github.com/agent8/licensing/internal/model"
)

// MemoryStore is an in-process Store for tests and development.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]model.EntitlementRecord
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]model.EntitlementRecord),
	}
}

// Grant marks the email as entitled.
func (s *MemoryStore) Grant(ctx context.Context, email string) error {
	email = model.NormalizeEmail(email)
	if email == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[email] = model.EntitlementRecord{
		Entitled:  true,
		UpdatedAt: time.Now().UTC(),
	}
	return nil
}

// IsEntitled reports whether the email has been granted.
func (s *MemoryStore) IsEntitled(ctx context.Context, email string) (bool, error) {
	email = model.NormalizeEmail(email)

	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[email]
	return ok && rec.Entitled, nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }

// Record returns the stored record for inspection in tests.
func (s *MemoryStore) Record(email string) (model.EntitlementRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[model.NormalizeEmail(email)]
	return rec, ok
}

// Len returns the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
