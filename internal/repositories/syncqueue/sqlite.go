package syncqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dkarpov/studysync/internal/common"
	"github.com/dkarpov/studysync/internal/dbx"
	"github.com/dkarpov/studysync/internal/models"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Insert(ctx context.Context, item *models.QueueItem) error {
	headers, err := json.Marshal(item.Headers)
	if err != nil {
		return fmt.Errorf("failed to encode headers: %w", errors.Join(common.ErrValidation, err))
	}

	query := ` INSERT INTO sync_queue (id, kind, endpoint, method, body, headers,
				status, retry_count, max_retries, created_at)
			values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		item.ID, item.Kind, item.Endpoint, item.Method, item.Body, string(headers),
		item.Status, item.RetryCount, item.MaxRetries, item.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert queue item: %w", errors.Join(common.ErrStorage, err))
	}
	return nil
}

func (r *SQLiteRepository) GetPending(ctx context.Context) ([]*models.QueueItem, error) {
	return r.GetByStatus(ctx, models.QueuePending)
}

func (r *SQLiteRepository) GetByStatus(ctx context.Context, status models.QueueStatus) ([]*models.QueueItem, error) {
	// rowid keeps insertion order even when created_at collides.
	query := `select id, kind, endpoint, method, body, headers, status, retry_count, max_retries, created_at
			from sync_queue where status=? order by rowid`
	rows, err := r.db.QueryContext(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("failed to select queue items: %w", err)
	}
	defer rows.Close()

	var result []*models.QueueItem
	for rows.Next() {
		item := &models.QueueItem{}
		var headers string
		if err := rows.Scan(&item.ID, &item.Kind, &item.Endpoint, &item.Method, &item.Body,
			&headers, &item.Status, &item.RetryCount, &item.MaxRetries, &item.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(headers), &item.Headers); err != nil {
			return nil, fmt.Errorf("failed to decode headers: %w", errors.Join(common.ErrValidation, err))
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) SetStatus(ctx context.Context, id string, status models.QueueStatus, retryCount int) error {
	res, err := r.db.ExecContext(ctx,
		`update sync_queue set status=?, retry_count=? where id=?`, status, retryCount, id)
	if err != nil {
		return fmt.Errorf("failed to update queue item: %w", errors.Join(common.ErrStorage, err))
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra != 1 {
		return fmt.Errorf("queue item %s: %w", id, common.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) PurgeCompleted(ctx context.Context) (int, error) {
	res, err := r.db.ExecContext(ctx, `delete from sync_queue where status=?`, models.QueueCompleted)
	if err != nil {
		return 0, fmt.Errorf("failed to purge queue: %w", errors.Join(common.ErrStorage, err))
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(ra), nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `delete from sync_queue where id=?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete queue item: %w", errors.Join(common.ErrStorage, err))
	}
	return nil
}

func (r *SQLiteRepository) CountByStatus(ctx context.Context, status models.QueueStatus) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `select count(*) from sync_queue where status=?`, status).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count queue items: %w", err)
	}
	return n, nil
}
