package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/agent8/licensing/internal/model"
)

// fileFormat is the on-disk shape: {"emails": {"a@b.com": {...}}}.
type fileFormat struct {
	Emails map[string]model.EntitlementRecord `json:"emails"`
}

// FileStore persists entitlements in a single JSON file with
// whole-file read-modify-write semantics. An absent or corrupt file
// reads as an empty store; only write failures are reported.
type FileStore struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

// NewFileStore creates a FileStore backed by the given path. The file
// is created lazily on the first grant.
func NewFileStore(path string) *FileStore {
	return &FileStore{
		path: path,
		now:  time.Now,
	}
}

// Grant marks the email as entitled, overwriting any existing record.
func (s *FileStore) Grant(ctx context.Context, email string) error {
	email = model.NormalizeEmail(email)
	if email == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data := s.read()
	data.Emails[email] = model.EntitlementRecord{
		Entitled:  true,
		UpdatedAt: s.now().UTC(),
	}

	if err := s.write(data); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	return nil
}

// IsEntitled reports whether the email has been granted. It never
// fails: unreadable state is treated as an empty store.
func (s *FileStore) IsEntitled(ctx context.Context, email string) (bool, error) {
	email = model.NormalizeEmail(email)
	if email == "" {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.read().Emails[email]
	return ok && rec.Entitled, nil
}

// Close is a no-op; the file is opened per operation.
func (s *FileStore) Close() error { return nil }

// read loads the mapping file, treating any failure as empty.
func (s *FileStore) read() fileFormat {
	data := fileFormat{Emails: make(map[string]model.EntitlementRecord)}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		return data
	}
	if err := json.Unmarshal(raw, &data); err != nil || data.Emails == nil {
		data.Emails = make(map[string]model.EntitlementRecord)
	}
	return data
}

// write persists the mapping atomically via a temp file rename so a
// crash mid-write cannot corrupt the store.
func (s *FileStore) write(data fileFormat) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".entitlements-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
