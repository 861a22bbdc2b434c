// Package common defines shared sentinel errors used across the offline
// engine. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Remote-source errors. Timeouts count as ErrNetwork.
	ErrNetwork  = errors.New("network error")
	ErrNotFound = errors.New("not found")

	// Local-store errors (quota exceeded, write failure, store unavailable).
	ErrStorage = errors.New("storage error")

	// Queue errors (malformed or unknown queued action).
	ErrValidation = errors.New("validation error")

	// Offline-auth errors.
	ErrUnauthorized          = errors.New("unauthorized")
	ErrLocalDataNotAvailable = errors.New("local auth data unavailable")
)
