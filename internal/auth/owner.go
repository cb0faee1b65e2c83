package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
)

// Owner token format: ot_<32 hex> (16 random bytes).
const ownerTokenBytes = 16

// Owner authentication errors.
var (
	// ErrNotConfigured indicates no owner access code is configured
	// server-side. Distinct from a wrong code to aid diagnosis.
	ErrNotConfigured = errors.New("owner access not configured")
	// ErrCodeRequired indicates the submitted code was empty.
	ErrCodeRequired = errors.New("access code required")
)

// OwnerResult is the outcome of an owner login attempt.
// A wrong code is Access=false with no error; errors are reserved for
// configuration and operational failures.
type OwnerResult struct {
	Access bool
	Token  string
}

// OwnerAuthenticator validates the shared owner access code and mints
// bearer tokens. It is stateless: tokens are never stored server-side.
type OwnerAuthenticator struct {
	code string
	hash string
}

// NewOwnerAuthenticator creates an authenticator from configuration.
// When both a plain code and an argon2id hash are provided, the hash
// wins so the plain code can be removed from the environment later.
func NewOwnerAuthenticator(code, hash string) *OwnerAuthenticator {
	return &OwnerAuthenticator{code: code, hash: hash}
}

// Configured reports whether any owner credential is set.
func (a *OwnerAuthenticator) Configured() bool {
	return a.code != "" || a.hash != ""
}

// Login validates the code and, on success, returns a fresh opaque
// bearer token. Comparison is constant-time in both modes.
func (a *OwnerAuthenticator) Login(code string) (*OwnerResult, error) {
	if !a.Configured() {
		return nil, ErrNotConfigured
	}
	if code == "" {
		return nil, ErrCodeRequired
	}

	var match bool
	if a.hash != "" {
		ok, err := VerifyPassword(code, a.hash)
		if err != nil {
			return nil, fmt.Errorf("verify access code: %w", err)
		}
		match = ok
	} else {
		match = subtle.ConstantTimeCompare([]byte(code), []byte(a.code)) == 1
	}

	if !match {
		return &OwnerResult{Access: false}, nil
	}

	token, err := GenerateOwnerToken()
	if err != nil {
		return nil, err
	}
	return &OwnerResult{Access: true, Token: token}, nil
}

// GenerateOwnerToken mints an opaque non-guessable bearer token from
// crypto/rand. Its unguessability is its only security property.
func GenerateOwnerToken() (string, error) {
	buf := make([]byte, ownerTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate owner token: %w", err)
	}
	return "ot_" + hex.EncodeToString(buf), nil
}
