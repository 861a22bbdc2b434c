package store

import (
	"context"
	"time"

	"github.com/dkarpov/studysync/internal/common"
	"github.com/dkarpov/studysync/internal/models"
)

// No-op repository implementations backing a disabled store. Reads return
// empty results, writes succeed without persisting anything.

type noopMaterials struct{}

func (noopMaterials) CreateOrUpdate(context.Context, *models.Material) error { return nil }
func (noopMaterials) GetByID(context.Context, string) (*models.Material, error) {
	return nil, common.ErrNotFound
}
func (noopMaterials) GetAll(context.Context) ([]models.Material, error)     { return nil, nil }
func (noopMaterials) Delete(context.Context, string) error                  { return nil }
func (noopMaterials) Versions(context.Context) (map[string]int64, error)    { return nil, nil }
func (noopMaterials) TouchAccessed(context.Context, string, time.Time) error { return nil }
func (noopMaterials) Count(context.Context) (int, error)                    { return 0, nil }

type noopBlobs struct{}

func (noopBlobs) Put(context.Context, *models.CachedFile) error { return nil }
func (noopBlobs) Get(context.Context, string) (*models.CachedFile, error) {
	return nil, common.ErrNotFound
}
func (noopBlobs) Delete(context.Context, string) error        { return nil }
func (noopBlobs) Exists(context.Context, string) (bool, error) { return false, nil }
func (noopBlobs) TotalBytes(context.Context) (int64, error)   { return 0, nil }

type noopQueue struct{}

func (noopQueue) Insert(context.Context, *models.QueueItem) error { return nil }
func (noopQueue) GetPending(context.Context) ([]*models.QueueItem, error) {
	return nil, nil
}
func (noopQueue) GetByStatus(context.Context, models.QueueStatus) ([]*models.QueueItem, error) {
	return nil, nil
}
func (noopQueue) SetStatus(context.Context, string, models.QueueStatus, int) error { return nil }
func (noopQueue) PurgeCompleted(context.Context) (int, error)                      { return 0, nil }
func (noopQueue) Delete(context.Context, string) error                             { return nil }
func (noopQueue) CountByStatus(context.Context, models.QueueStatus) (int, error)   { return 0, nil }

type noopAuthCache struct{}

func (noopAuthCache) Set(context.Context, *models.AuthCache) error { return nil }
func (noopAuthCache) GetByUserName(context.Context, string) (*models.AuthCache, error) {
	return nil, common.ErrNotFound
}
func (noopAuthCache) Delete(context.Context, string) error { return nil }
func (noopAuthCache) Clear(context.Context) error          { return nil }
