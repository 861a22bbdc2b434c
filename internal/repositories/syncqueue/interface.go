// Package syncqueue persists deferred mutating actions awaiting replay
// against the remote source.
package syncqueue

import (
	"context"

	"github.com/dkarpov/studysync/internal/models"
)

type Repository interface {
	// Insert stores a new queue item.
	Insert(ctx context.Context, item *models.QueueItem) error

	// GetPending returns pending items in insertion order.
	GetPending(ctx context.Context) ([]*models.QueueItem, error)

	// GetByStatus returns items with the given status in insertion order.
	GetByStatus(ctx context.Context, status models.QueueStatus) ([]*models.QueueItem, error)

	// SetStatus updates status and retry count for an item.
	SetStatus(ctx context.Context, id string, status models.QueueStatus, retryCount int) error

	// PurgeCompleted deletes all completed items and returns how many were removed.
	PurgeCompleted(ctx context.Context) (int, error)

	// Delete removes an item explicitly (used for terminally failed items).
	Delete(ctx context.Context, id string) error

	// CountByStatus returns the number of items with the given status.
	CountByStatus(ctx context.Context, status models.QueueStatus) (int, error)
}
