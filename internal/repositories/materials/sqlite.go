package materials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dkarpov/studysync/internal/common"
	"github.com/dkarpov/studysync/internal/dbx"
	"github.com/dkarpov/studysync/internal/models"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) CreateOrUpdate(ctx context.Context, m *models.Material) error {
	query := ` INSERT INTO materials (id, title, description, subject_id, subject_name,
				file_ref, file_name, file_size, file_type, version, downloaded_at, last_accessed)
			values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET title = excluded.title,
				description = excluded.description,
				subject_id = excluded.subject_id,
				subject_name = excluded.subject_name,
				file_ref = excluded.file_ref,
				file_name = excluded.file_name,
				file_size = excluded.file_size,
				file_type = excluded.file_type,
				version = excluded.version,
				downloaded_at = excluded.downloaded_at,
				last_accessed = excluded.last_accessed
	`
	_, err := r.db.ExecContext(ctx, query,
		m.ID, m.Title, m.Description, m.SubjectID, m.SubjectName,
		m.FileRef, m.FileName, m.FileSize, m.FileType, m.Version, m.DownloadedAt, m.LastAccessed)
	if err != nil {
		return fmt.Errorf("failed to upsert material: %w", errors.Join(common.ErrStorage, err))
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Material, error) {
	query := `select id, title, description, subject_id, subject_name, file_ref, file_name,
				file_size, file_type, version, downloaded_at, last_accessed
			from materials where id=?`
	row := r.db.QueryRowContext(ctx, query, id)

	m := &models.Material{}
	err := row.Scan(&m.ID, &m.Title, &m.Description, &m.SubjectID, &m.SubjectName,
		&m.FileRef, &m.FileName, &m.FileSize, &m.FileType, &m.Version, &m.DownloadedAt, &m.LastAccessed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get material: %w", err)
	}
	return m, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Material, error) {
	query := `select id, title, description, subject_id, subject_name, file_ref, file_name,
				file_size, file_type, version, downloaded_at, last_accessed
			from materials`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select materials: %w", err)
	}
	defer rows.Close()

	var result []models.Material
	for rows.Next() {
		var m models.Material
		if err := rows.Scan(&m.ID, &m.Title, &m.Description, &m.SubjectID, &m.SubjectName,
			&m.FileRef, &m.FileName, &m.FileSize, &m.FileType, &m.Version, &m.DownloadedAt, &m.LastAccessed); err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `delete from materials where id=?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete material: %w", errors.Join(common.ErrStorage, err))
	}
	return nil
}

func (r *SQLiteRepository) Versions(ctx context.Context) (map[string]int64, error) {
	rows, err := r.db.QueryContext(ctx, `select id, version from materials`)
	if err != nil {
		return nil, fmt.Errorf("failed to select versions: %w", err)
	}
	defer rows.Close()

	result := make(map[string]int64)
	for rows.Next() {
		var id string
		var version int64
		if err := rows.Scan(&id, &version); err != nil {
			return nil, err
		}
		result[id] = version
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) TouchAccessed(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `update materials set last_accessed=? where id=?`, at, id)
	if err != nil {
		return fmt.Errorf("failed to touch material: %w", errors.Join(common.ErrStorage, err))
	}
	return nil
}

func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `select count(*) from materials`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count materials: %w", err)
	}
	return n, nil
}
