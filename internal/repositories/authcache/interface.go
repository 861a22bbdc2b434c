// Package authcache persists the cached session used for offline login
// fallback, one row per user.
package authcache

import (
	"context"

	"github.com/dkarpov/studysync/internal/models"
)

type Repository interface {
	// Set upserts the cached session for a user.
	Set(ctx context.Context, c *models.AuthCache) error

	// GetByUserName returns the cached session for a user name, or
	// common.ErrNotFound if absent.
	GetByUserName(ctx context.Context, userName string) (*models.AuthCache, error)

	// Delete removes the cached session for a user id.
	Delete(ctx context.Context, userID string) error

	// Clear wipes all cached sessions.
	Clear(ctx context.Context) error
}
