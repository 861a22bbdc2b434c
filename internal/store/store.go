// Package store owns the local SQLite database: it opens the handle, runs
// schema migrations, and hands out per-collection repositories. The handle is
// opened once at startup and injected into every component; Close releases it
// on shutdown.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/dkarpov/studysync/internal/common"
	"github.com/dkarpov/studysync/internal/dbx"
	"github.com/dkarpov/studysync/internal/migrations"
	"github.com/dkarpov/studysync/internal/models"
	"github.com/dkarpov/studysync/internal/repositories/authcache"
	"github.com/dkarpov/studysync/internal/repositories/blobs"
	"github.com/dkarpov/studysync/internal/repositories/materials"
	"github.com/dkarpov/studysync/internal/repositories/syncqueue"
)

// Store is the durable local persistence layer for the four engine
// collections. A disabled store (see Disabled) turns every operation into a
// no-op so the host application keeps working online when local persistence
// is unavailable.
type Store struct {
	db       *sql.DB
	disabled bool
}

// Open opens (or creates) the database at dsn and migrates the schema.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate store: %w", err)
	}

	return &Store{db: db}, nil
}

// Disabled returns a store whose repositories are all no-ops: reads come back
// empty, writes are accepted and dropped. Used when Open fails so the offline
// subsystem degrades instead of crashing the host.
func Disabled() *Store {
	return &Store{disabled: true}
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

// Enabled reports whether the store is backed by a real database.
func (s *Store) Enabled() bool {
	return !s.disabled
}

func (s *Store) Close() error {
	if s.disabled {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Materials() materials.Repository {
	if s.disabled {
		return noopMaterials{}
	}
	return materials.NewSQLiteRepository(s.db)
}

func (s *Store) Blobs() blobs.Repository {
	if s.disabled {
		return noopBlobs{}
	}
	return blobs.NewSQLiteRepository(s.db)
}

func (s *Store) Queue() syncqueue.Repository {
	if s.disabled {
		return noopQueue{}
	}
	return syncqueue.NewSQLiteRepository(s.db)
}

func (s *Store) AuthCache() authcache.Repository {
	if s.disabled {
		return noopAuthCache{}
	}
	return authcache.NewSQLiteRepository(s.db)
}

// InTx runs fn inside a single transaction. Repositories constructed over the
// transactional handle see and write a consistent snapshot; this is how the
// metadata+blob pair stays atomic.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	if s.disabled {
		// Unlike plain reads/writes, a transactional write must not pretend
		// it persisted anything: callers treat this as a storage failure.
		return fmt.Errorf("offline store disabled: %w", common.ErrStorage)
	}
	return dbx.WithTx(ctx, s.db, nil, fn)
}

// Usage recomputes aggregate storage usage from the stored blobs and
// material rows. Derived, never persisted.
func (s *Store) Usage(ctx context.Context) (models.StorageUsage, error) {
	if s.disabled {
		return models.StorageUsage{}, nil
	}
	total, err := blobs.NewSQLiteRepository(s.db).TotalBytes(ctx)
	if err != nil {
		return models.StorageUsage{}, err
	}
	count, err := materials.NewSQLiteRepository(s.db).Count(ctx)
	if err != nil {
		return models.StorageUsage{}, err
	}
	return models.StorageUsage{TotalBytes: total, MaterialCount: count}, nil
}
