package services

import (
	"context"
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/dkarpov/studysync/internal/logging"
	"github.com/dkarpov/studysync/internal/models"
	"github.com/dkarpov/studysync/internal/notify"
	"github.com/dkarpov/studysync/internal/remote"
	"github.com/dkarpov/studysync/internal/store"
	"github.com/dkarpov/studysync/internal/syncx"
)

// QueueService records mutating actions while offline and replays them
// against the remote source, strictly in enqueue order, with bounded retries.
type QueueService struct {
	store    *store.Store
	source   remote.RequestDoer
	notifier notify.Notifier
	log      logging.Logger
	clk      clock.Clock

	maxRetries int
	gate       syncx.Gate
}

func NewQueueService(st *store.Store, source remote.RequestDoer, notifier notify.Notifier,
	log logging.Logger, clk clock.Clock, maxRetries int) *QueueService {
	if maxRetries <= 0 {
		maxRetries = models.DefaultMaxRetries
	}
	return &QueueService{
		store:      st,
		source:     source,
		notifier:   notifier,
		log:        log,
		clk:        clk,
		maxRetries: maxRetries,
	}
}

// Enqueue persists a deferred action with status pending and returns the
// generated id. A malformed action yields common.ErrValidation.
func (s *QueueService) Enqueue(ctx context.Context, action models.Action) (string, error) {
	kind, method, endpoint, body, err := models.BuildRequest(action)
	if err != nil {
		return "", err
	}

	item := &models.QueueItem{
		ID:         uuid.NewString(),
		Kind:       kind,
		Endpoint:   endpoint,
		Method:     method,
		Body:       body,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Status:     models.QueuePending,
		RetryCount: 0,
		MaxRetries: s.maxRetries,
		CreatedAt:  s.clk.Now().UTC(),
	}
	if err := s.store.Queue().Insert(ctx, item); err != nil {
		return "", fmt.Errorf("failed to enqueue action: %w", err)
	}
	return item.ID, nil
}

// ProcessQueue runs one pass over pending items: each is marked in_progress,
// executed against its endpoint, and marked completed, reverted to pending
// with retryCount+1, or terminally failed when retries are exhausted. Items
// run strictly sequentially to preserve ordering between dependent mutations.
// Completed items are purged after the pass; failed items stay until removed
// explicitly. Re-entrant calls are dropped (single-flight).
func (s *QueueService) ProcessQueue(ctx context.Context) error {
	if !s.gate.TryAcquire() {
		return nil
	}
	defer s.gate.Release()

	repo := s.store.Queue()
	items, err := repo.GetPending(ctx)
	if err != nil {
		return fmt.Errorf("failed to load pending items: %w", err)
	}
	if len(items) == 0 {
		return nil
	}

	var synced, failed int
	for _, item := range items {
		if err := repo.SetStatus(ctx, item.ID, models.QueueInProgress, item.RetryCount); err != nil {
			s.log.Error(ctx, "failed to mark item in progress", "item", item.ID, "error", err)
			continue
		}

		execErr := s.source.Do(ctx, item.Method, item.Endpoint, item.Headers, item.Body)
		if execErr == nil {
			if err := repo.SetStatus(ctx, item.ID, models.QueueCompleted, item.RetryCount); err != nil {
				s.log.Error(ctx, "failed to mark item completed", "item", item.ID, "error", err)
			}
			synced++
			continue
		}

		retries := item.RetryCount + 1
		if retries >= item.MaxRetries {
			if err := repo.SetStatus(ctx, item.ID, models.QueueFailed, retries); err != nil {
				s.log.Error(ctx, "failed to mark item failed", "item", item.ID, "error", err)
			}
			failed++
			s.log.Error(ctx, "queue item permanently failed", "item", item.ID, "kind", item.Kind, "error", execErr)
			s.notifier.Notify(ctx, notify.SeverityError, "Sync failed",
				fmt.Sprintf("action %s could not be delivered", item.Kind))
			continue
		}

		// Retried on the next pass; intermediate attempts stay silent.
		if err := repo.SetStatus(ctx, item.ID, models.QueuePending, retries); err != nil {
			s.log.Error(ctx, "failed to requeue item", "item", item.ID, "error", err)
		}
	}

	if purged, err := repo.PurgeCompleted(ctx); err != nil {
		s.log.Error(ctx, "failed to purge completed items", "error", err)
	} else if purged > 0 {
		s.log.Info(ctx, "purged completed queue items", "count", purged)
	}

	s.notifier.Notify(ctx, notify.SeverityInfo, "Sync complete",
		fmt.Sprintf("%d synced, %d failed", synced, failed))
	return nil
}

// Pending returns pending items in insertion order.
func (s *QueueService) Pending(ctx context.Context) ([]*models.QueueItem, error) {
	return s.store.Queue().GetPending(ctx)
}

// PendingCount returns how many actions still await replay.
func (s *QueueService) PendingCount(ctx context.Context) (int, error) {
	return s.store.Queue().CountByStatus(ctx, models.QueuePending)
}

// Failed returns terminally failed items awaiting explicit removal.
func (s *QueueService) Failed(ctx context.Context) ([]*models.QueueItem, error) {
	return s.store.Queue().GetByStatus(ctx, models.QueueFailed)
}

// Remove deletes an item from the queue, typically a terminally failed one.
func (s *QueueService) Remove(ctx context.Context, id string) error {
	return s.store.Queue().Delete(ctx, id)
}
