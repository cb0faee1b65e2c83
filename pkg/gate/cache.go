package gate

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// Credentials is the locally persisted entitlement state: the flag
// consulted on the fast path plus whichever identity earned it.
type Credentials struct {
	Entitled   bool   `json:"entitled"`
	Email      string `json:"email,omitempty"`
	OwnerToken string `json:"owner_token,omitempty"`
}

// CredentialCache stores Credentials in a mode-0600 JSON file.
type CredentialCache struct {
	path string
}

// DefaultCachePath places the credential file under the user's config
// directory.
func DefaultCachePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "agent8", "credentials.json"), nil
}

// NewCredentialCache creates a cache backed by the given file path.
func NewCredentialCache(path string) *CredentialCache {
	return &CredentialCache{path: path}
}

// Load reads the cached credentials. An absent or corrupt file reads
// as empty rather than failing: the gate then just re-verifies.
func (c *CredentialCache) Load() Credentials {
	raw, err := os.ReadFile(c.path)
	if err != nil {
		return Credentials{}
	}

	var creds Credentials
	if err := json.Unmarshal(raw, &creds); err != nil {
		return Credentials{}
	}
	return creds
}

// Save persists the credentials, creating the parent directory as
// needed. The file is private to the user.
func (c *CredentialCache) Save(creds Credentials) error {
	raw, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(c.path, raw, 0o600)
}

// Clear removes the cached credentials. The revocation extension
// point: a future subscription-cancelled signal lands here.
func (c *CredentialCache) Clear() error {
	err := os.Remove(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
