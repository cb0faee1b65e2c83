package store

import (
	"context"
	"sync"
	"testing"
)

func TestMemoryStoreGrantAndCheck(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	entitled, err := s.IsEntitled(ctx, "payer@example.com")
	if err != nil {
		t.Fatalf("IsEntitled() error = %v", err)
	}
	if entitled {
		t.Fatal("fresh store reports an entitlement")
	}

	if err := s.Grant(ctx, "Payer@Example.com"); err != nil {
		t.Fatalf("Grant() error = %v", err)
	}

	entitled, err = s.IsEntitled(ctx, "payer@example.com")
	if err != nil {
		t.Fatalf("IsEntitled() error = %v", err)
	}
	if !entitled {
		t.Error("granted email not reported as entitled")
	}

	rec, ok := s.Record("payer@example.com")
	if !ok || !rec.Entitled {
		t.Error("record missing or not entitled")
	}
	if rec.UpdatedAt.IsZero() {
		t.Error("record timestamp not set")
	}
}

func TestMemoryStoreConcurrentGrants(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Grant(ctx, "payer@example.com")
			_, _ = s.IsEntitled(ctx, "payer@example.com")
		}()
	}
	wg.Wait()

	if s.Len() != 1 {
		t.Errorf("store has %d records, want 1", s.Len())
	}
}
