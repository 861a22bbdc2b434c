package authcache

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

func (r *SQLiteRepository) Set(ctx context.Context, c *models.AuthCache) error {
	query := ` INSERT INTO auth_cache (user_id, user_name, user_role, verifier, cached_at, expires_at)
			values (?, ?, ?, ?, ?, ?)
			ON CONFLICT(user_id) DO UPDATE SET user_name = excluded.user_name,
				user_role = excluded.user_role,
				verifier = excluded.verifier,
				cached_at = excluded.cached_at,
				expires_at = excluded.expires_at
	`
	_, err := r.db.ExecContext(ctx, query, c.UserID, c.UserName, c.UserRole, c.Verifier, c.CachedAt, c.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to upsert auth cache: %w", errors.Join(common.ErrStorage, err))
	}
	return nil
}

func (r *SQLiteRepository) GetByUserName(ctx context.Context, userName string) (*models.AuthCache, error) {
	query := `select user_id, user_name, user_role, verifier, cached_at, expires_at
			from auth_cache where user_name=?`
	row := r.db.QueryRowContext(ctx, query, userName)

	c := &models.AuthCache{}
	err := row.Scan(&c.UserID, &c.UserName, &c.UserRole, &c.Verifier, &c.CachedAt, &c.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get auth cache: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `delete from auth_cache where user_id=?`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete auth cache: %w", errors.Join(common.ErrStorage, err))
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `delete from auth_cache`)
	if err != nil {
		return fmt.Errorf("failed to clear auth cache: %w", errors.Join(common.ErrStorage, err))
	}
	return nil
}
