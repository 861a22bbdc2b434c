package blobs

import (
	"context"
	"database/sql"
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

func (r *SQLiteRepository) Put(ctx context.Context, f *models.CachedFile) error {
	query := ` INSERT INTO files (id, data, mime_type)
			values (?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET data = excluded.data,
				mime_type = excluded.mime_type
	`
	_, err := r.db.ExecContext(ctx, query, f.MaterialID, f.Data, f.MimeType)
	if err != nil {
		return fmt.Errorf("failed to upsert file: %w", errors.Join(common.ErrStorage, err))
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, materialID string) (*models.CachedFile, error) {
	row := r.db.QueryRowContext(ctx, `select id, data, mime_type from files where id=?`, materialID)

	f := &models.CachedFile{}
	err := row.Scan(&f.MaterialID, &f.Data, &f.MimeType)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get file: %w", err)
	}
	return f, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, materialID string) error {
	_, err := r.db.ExecContext(ctx, `delete from files where id=?`, materialID)
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", errors.Join(common.ErrStorage, err))
	}
	return nil
}

func (r *SQLiteRepository) Exists(ctx context.Context, materialID string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `select count(*) from files where id=?`, materialID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check file: %w", err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) TotalBytes(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.QueryRowContext(ctx, `select coalesce(sum(length(data)), 0) from files`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum file sizes: %w", err)
	}
	return total, nil
}
