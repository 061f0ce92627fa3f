package auth

import (
	"time"
)

// User is a registered account.
type User struct {
	UUID         string    `json:"uuid"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never serialised
	CreatedAt    time.Time `json:"created_at"`
}

// APIKeyRecord is a stored API key. Only the digest of the key is kept.
type APIKeyRecord struct {
	UUID       string     `json:"uuid"`
	UserUUID   string     `json:"user_uuid"`
	KeyHash    string     `json:"-"` // never serialised
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  *time.Time `json:"expires_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}

// Expired reports whether now is strictly after the key's expiry; the
// key is still valid at the expiry instant. A key without an expiry never
// expires.
func (r *APIKeyRecord) Expired(now time.Time) bool {
	return r.ExpiresAt != nil && now.After(*r.ExpiresAt)
}

// IssuedKey is the result of a successful sign-in. APIKey is the plaintext
// key and is returned to the client exactly once.
type IssuedKey struct {
	UserUUID  string     `json:"user_uuid"`
	APIKey    string     `json:"api_key"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at"`
}
