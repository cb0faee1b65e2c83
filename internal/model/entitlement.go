package model

import (
	"strings"
	"time"
)

// EntitlementRecord is the durable "may use privileged features" state
// for one principal, keyed by normalized email.
type EntitlementRecord struct {
	Email     string    `json:"-"`
	Entitled  bool      `json:"entitled"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NormalizeEmail canonicalizes an email for storage and lookup.
// Casing must never create duplicate records.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
