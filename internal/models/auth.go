package models

import "time"

// AuthCache holds the minimum session data needed for offline login fallback.
// It is written once per successful online authentication and read-only to
// the rest of the engine.
type AuthCache struct {
	UserID   string
	UserName string
	UserRole string

	// Verifier is a bcrypt hash of the password used at the last online
	// login, so credentials can be checked without the remote.
	Verifier []byte

	CachedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the cached session is past its TTL at the given time.
func (a *AuthCache) Expired(now time.Time) bool {
	return now.After(a.ExpiresAt)
}
