package syncqueue

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkarpov/studysync/internal/common"
	"github.com/dkarpov/studysync/internal/models"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE sync_queue (
  id TEXT PRIMARY KEY,
  kind TEXT NOT NULL,
  endpoint TEXT NOT NULL,
  method TEXT NOT NULL,
  body BLOB,
  headers TEXT NOT NULL DEFAULT '{}',
  status TEXT NOT NULL DEFAULT 'pending',
  retry_count INTEGER NOT NULL DEFAULT 0,
  max_retries INTEGER NOT NULL DEFAULT 3,
  created_at TIMESTAMP NOT NULL
);
CREATE INDEX idx_sync_queue_status ON sync_queue(status);
`)
	require.NoError(t, err)
	return db
}

func item(id string) *models.QueueItem {
	return &models.QueueItem{
		ID:         id,
		Kind:       "submit_assignment",
		Endpoint:   "/assignments/a1/submissions",
		Method:     "POST",
		Body:       []byte(`{"content":"done"}`),
		Headers:    map[string]string{"Content-Type": "application/json"},
		Status:     models.QueuePending,
		MaxRetries: 3,
		CreatedAt:  time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestInsertAndGetPending_PreservesInsertionOrder(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	// Same created_at on purpose: rowid must break the tie.
	require.NoError(t, r.Insert(ctx, item("q1")))
	require.NoError(t, r.Insert(ctx, item("q2")))
	require.NoError(t, r.Insert(ctx, item("q3")))

	pending, err := r.GetPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 3)
	assert.Equal(t, "q1", pending[0].ID)
	assert.Equal(t, "q2", pending[1].ID)
	assert.Equal(t, "q3", pending[2].ID)
	assert.Equal(t, map[string]string{"Content-Type": "application/json"}, pending[0].Headers)
}

func TestSetStatus_TransitionsAndRetryCount(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Insert(ctx, item("q1")))

	require.NoError(t, r.SetStatus(ctx, "q1", models.QueueInProgress, 0))
	require.NoError(t, r.SetStatus(ctx, "q1", models.QueuePending, 1))

	pending, err := r.GetPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 1, pending[0].RetryCount)

	err = r.SetStatus(ctx, "missing", models.QueueCompleted, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestPurgeCompleted_RemovesOnlyCompleted(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Insert(ctx, item("q1")))
	require.NoError(t, r.Insert(ctx, item("q2")))
	require.NoError(t, r.Insert(ctx, item("q3")))
	require.NoError(t, r.SetStatus(ctx, "q1", models.QueueCompleted, 0))
	require.NoError(t, r.SetStatus(ctx, "q2", models.QueueFailed, 3))

	purged, err := r.PurgeCompleted(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, purged)

	failed, err := r.GetByStatus(ctx, models.QueueFailed)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, "q2", failed[0].ID)

	n, err := r.CountByStatus(ctx, models.QueuePending)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestDelete_RemovesFailedItem(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Insert(ctx, item("q1")))
	require.NoError(t, r.SetStatus(ctx, "q1", models.QueueFailed, 3))
	require.NoError(t, r.Delete(ctx, "q1"))

	n, err := r.CountByStatus(ctx, models.QueueFailed)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
