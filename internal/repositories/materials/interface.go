// Package materials persists material metadata, one row per downloaded
// learning resource.
package materials

import (
	"context"
	"time"

	"github.com/dkarpov/studysync/internal/models"
)

// Repository describes persistence operations for material metadata.
// Implementations are backed by the local SQLite database.
type Repository interface {
	// CreateOrUpdate upserts a material by id.
	CreateOrUpdate(ctx context.Context, m *models.Material) error

	// GetByID returns the material, or common.ErrNotFound if absent.
	GetByID(ctx context.Context, id string) (*models.Material, error)

	// GetAll returns all stored materials; order is not significant.
	GetAll(ctx context.Context) ([]models.Material, error)

	// Delete removes the material row. Deleting an absent id is a no-op.
	Delete(ctx context.Context, id string) error

	// Versions returns the id→version map for all stored materials, used by
	// the update reconciler.
	Versions(ctx context.Context) (map[string]int64, error)

	// TouchAccessed bumps last_accessed for a material.
	TouchAccessed(ctx context.Context, id string, at time.Time) error

	// Count returns the number of stored materials.
	Count(ctx context.Context) (int, error)
}
