package store

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkarpov/studysync/internal/common"
	"github.com/dkarpov/studysync/internal/dbx"
	"github.com/dkarpov/studysync/internal/models"
	"github.com/dkarpov/studysync/internal/repositories/blobs"
	"github.com/dkarpov/studysync/internal/repositories/materials"
)

var dbSeq atomic.Int64

func openStore(t *testing.T) *Store {
	t.Helper()
	dsn := fmt.Sprintf("file:storetest%d?mode=memory&cache=shared", dbSeq.Add(1))
	st, err := Open(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestOpen_MigratesSchemaAndServesRepos(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()

	require.True(t, st.Enabled())

	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, st.Materials().CreateOrUpdate(ctx, &models.Material{
		ID: "m1", Title: "Algebra", FileRef: "materials/m1.pdf",
		Version: 1, DownloadedAt: now, LastAccessed: now,
	}))
	require.NoError(t, st.Blobs().Put(ctx, &models.CachedFile{MaterialID: "m1", Data: make([]byte, 42)}))

	usage, err := st.Usage(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(42), usage.TotalBytes)
	assert.Equal(t, 1, usage.MaterialCount)
}

func TestOpen_FailsOnUnusablePath(t *testing.T) {
	_, err := Open(context.Background(), "/nonexistent-dir/definitely/not/writable.db")
	require.Error(t, err)
}

func TestInTx_RollsBackThePairTogether(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()

	err := st.InTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if err := blobs.NewSQLiteRepository(tx).Put(ctx, &models.CachedFile{MaterialID: "m1", Data: []byte("x")}); err != nil {
			return err
		}
		return errors.New("metadata write failed")
	})
	require.Error(t, err)

	ok, err := st.Blobs().Exists(ctx, "m1")
	require.NoError(t, err)
	assert.False(t, ok, "blob must roll back with the failed pair")
}

func TestDisabled_EveryOperationIsANoOp(t *testing.T) {
	st := Disabled()
	ctx := context.Background()

	assert.False(t, st.Enabled())
	require.NoError(t, st.Close())

	// Writes are accepted and dropped; reads come back empty.
	require.NoError(t, st.Materials().CreateOrUpdate(ctx, &models.Material{ID: "m1"}))
	_, err := st.Materials().GetByID(ctx, "m1")
	assert.True(t, errors.Is(err, common.ErrNotFound))

	all, err := st.Materials().GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	usage, err := st.Usage(ctx)
	require.NoError(t, err)
	assert.Zero(t, usage.TotalBytes)
	assert.Zero(t, usage.MaterialCount)

	// Transactional writes must fail loudly instead of pretending to persist.
	err = st.InTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		t.Fatal("must not run the transaction body on a disabled store")
		return nil
	})
	assert.True(t, errors.Is(err, common.ErrStorage))

	pending, err := st.Queue().GetPending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	_, err = st.AuthCache().GetByUserName(ctx, "amara")
	assert.True(t, errors.Is(err, common.ErrNotFound))

	_ = materials.Repository(st.Materials()) // interfaces still satisfied
}
