// Package blobs persists cached file payloads, keyed by material id (1:1
// with the materials collection).
package blobs

import (
	"context"

	"github.com/dkarpov/studysync/internal/models"
)

type Repository interface {
	// Put upserts the blob for a material.
	Put(ctx context.Context, f *models.CachedFile) error

	// Get returns the blob, or common.ErrNotFound if absent.
	Get(ctx context.Context, materialID string) (*models.CachedFile, error)

	// Delete removes the blob. Deleting an absent id is a no-op.
	Delete(ctx context.Context, materialID string) error

	// Exists reports whether a blob is stored for the material.
	Exists(ctx context.Context, materialID string) (bool, error)

	// TotalBytes returns the summed size of all stored blobs.
	TotalBytes(ctx context.Context) (int64, error)
}
