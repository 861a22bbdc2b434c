// Package services contains the application services of the offline engine:
// the download orchestrator, the update reconciler, the sync queue processor,
// and offline-auth session caching.
package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"golang.org/x/sync/errgroup"

	"github.com/dkarpov/studysync/internal/dbx"
	"github.com/dkarpov/studysync/internal/logging"
	"github.com/dkarpov/studysync/internal/models"
	"github.com/dkarpov/studysync/internal/notify"
	"github.com/dkarpov/studysync/internal/remote"
	"github.com/dkarpov/studysync/internal/repositories/blobs"
	"github.com/dkarpov/studysync/internal/repositories/materials"
	"github.com/dkarpov/studysync/internal/store"
	"github.com/dkarpov/studysync/internal/syncx"
)

// DownloadOptions tunes the orchestrator. Zero values fall back to defaults.
type DownloadOptions struct {
	// Window bounds how many fetches run concurrently in a batch (default 3).
	Window int

	// RefreshDebounce coalesces bursts of single-download completions into
	// one UI refresh (default 500ms).
	RefreshDebounce time.Duration

	// DisplayDelay is how long a completed entry stays in the progress map
	// (default 2s).
	DisplayDelay time.Duration

	// OnRefresh is invoked (debounced) after downloads finish so the host UI
	// can re-render its lists. Optional.
	OnRefresh func()

	// OnDownloaded is invoked with the material id after a successful
	// download; the engine uses it to clear the updates-available flag.
	OnDownloaded func(id string)
}

// DownloadService fetches remote material blobs and writes blob + metadata
// into the local store as an atomic pair, reporting per-item progress.
type DownloadService struct {
	store    *store.Store
	source   remote.BlobFetcher
	notifier notify.Notifier
	log      logging.Logger
	clk      clock.Clock

	window       int
	displayDelay time.Duration
	refresh      *syncx.Debouncer
	onRefresh    func()
	onDownloaded func(string)

	mu       sync.Mutex
	progress map[string]models.DownloadProgress
}

func NewDownloadService(st *store.Store, source remote.BlobFetcher, notifier notify.Notifier,
	log logging.Logger, clk clock.Clock, opts DownloadOptions) *DownloadService {

	if opts.Window <= 0 {
		opts.Window = 3
	}
	if opts.RefreshDebounce <= 0 {
		opts.RefreshDebounce = 500 * time.Millisecond
	}
	if opts.DisplayDelay <= 0 {
		opts.DisplayDelay = 2 * time.Second
	}
	if opts.OnRefresh == nil {
		opts.OnRefresh = func() {}
	}
	if opts.OnDownloaded == nil {
		opts.OnDownloaded = func(string) {}
	}

	return &DownloadService{
		store:        st,
		source:       source,
		notifier:     notifier,
		log:          log,
		clk:          clk,
		window:       opts.Window,
		displayDelay: opts.DisplayDelay,
		refresh:      syncx.NewDebouncer(clk, opts.RefreshDebounce),
		onRefresh:    opts.OnRefresh,
		onDownloaded: opts.OnDownloaded,
		progress:     make(map[string]models.DownloadProgress),
	}
}

// Download fetches the material's blob and persists blob + metadata in one
// transaction, so a failure never leaves a half-written material behind.
// Errors are also reflected in the progress map and the notification sink.
func (s *DownloadService) Download(ctx context.Context, m models.Material) error {
	s.setProgress(m.ID, models.DownloadPending, 0)

	s.setProgress(m.ID, models.DownloadDownloading, 10)
	data, mime, err := s.source.FetchBlob(ctx, m.FileRef)
	if err != nil {
		return s.fail(ctx, m, fmt.Errorf("fetch failed: %w", err))
	}

	s.setProgress(m.ID, models.DownloadDownloading, 70)
	now := s.clk.Now().UTC()
	m.FileSize = int64(len(data))
	m.DownloadedAt = now
	m.LastAccessed = now

	err = s.store.InTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if err := blobs.NewSQLiteRepository(tx).Put(ctx, &models.CachedFile{
			MaterialID: m.ID,
			Data:       data,
			MimeType:   mime,
		}); err != nil {
			return err
		}
		return materials.NewSQLiteRepository(tx).CreateOrUpdate(ctx, &m)
	})
	if err != nil {
		return s.fail(ctx, m, fmt.Errorf("store write failed: %w", err))
	}

	s.setProgress(m.ID, models.DownloadCompleted, 100)
	s.scheduleProgressRemoval(m.ID)
	s.onDownloaded(m.ID)
	s.notifier.Notify(ctx, notify.SeverityInfo, "Download complete", m.Title)
	s.refresh.Trigger(s.onRefresh)
	return nil
}

// DownloadAll processes materials in fixed-size concurrency windows: one
// window completes fully before the next starts, so at most Window fetches
// are ever in flight. A failing item does not abort the batch. One aggregate
// refresh fires after all windows complete.
func (s *DownloadService) DownloadAll(ctx context.Context, mats []models.Material) {
	for start := 0; start < len(mats); start += s.window {
		end := min(start+s.window, len(mats))

		var g errgroup.Group
		for _, m := range mats[start:end] {
			m := m
			g.Go(func() error {
				// Per-item failures are already observable via progress and
				// notifications; never abort the window.
				_ = s.Download(ctx, m)
				return nil
			})
		}
		_ = g.Wait()
	}
	s.onRefresh()
}

// IsDownloaded reports whether both the metadata row and the blob exist.
func (s *DownloadService) IsDownloaded(ctx context.Context, id string) bool {
	if _, err := s.store.Materials().GetByID(ctx, id); err != nil {
		return false
	}
	ok, err := s.store.Blobs().Exists(ctx, id)
	return err == nil && ok
}

// File returns the cached blob and bumps the material's last-accessed time.
func (s *DownloadService) File(ctx context.Context, id string) (*models.CachedFile, error) {
	f, err := s.store.Blobs().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.Materials().TouchAccessed(ctx, id, s.clk.Now().UTC()); err != nil {
		s.log.Warn(ctx, "failed to bump last accessed", "material", id, "error", err)
	}
	return f, nil
}

// Remove deletes the metadata+blob pair, returning the material to its
// pre-download state.
func (s *DownloadService) Remove(ctx context.Context, id string) error {
	return s.store.InTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if err := blobs.NewSQLiteRepository(tx).Delete(ctx, id); err != nil {
			return err
		}
		return materials.NewSQLiteRepository(tx).Delete(ctx, id)
	})
}

// Progress returns a snapshot of active download progress keyed by material id.
func (s *DownloadService) Progress() map[string]models.DownloadProgress {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]models.DownloadProgress, len(s.progress))
	for id, p := range s.progress {
		out[id] = p
	}
	return out
}

// Close stops the pending debounced refresh. In-flight downloads are not
// aborted; they finish or roll back on their own.
func (s *DownloadService) Close() {
	s.refresh.Stop()
}

func (s *DownloadService) fail(ctx context.Context, m models.Material, err error) error {
	s.mu.Lock()
	p := s.progress[m.ID]
	p.MaterialID = m.ID
	p.Status = models.DownloadFailed
	s.progress[m.ID] = p
	s.mu.Unlock()

	s.log.Error(ctx, "download failed", "material", m.ID, "error", err)
	s.notifier.Notify(ctx, notify.SeverityError, "Download failed", m.Title)
	return err
}

func (s *DownloadService) setProgress(id string, status models.DownloadStatus, percent int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress[id] = models.DownloadProgress{MaterialID: id, Status: status, Percent: percent}
}

// scheduleProgressRemoval drops a completed entry from the progress map after
// the display delay, unless a new download for the same id started meanwhile.
func (s *DownloadService) scheduleProgressRemoval(id string) {
	s.clk.AfterFunc(s.displayDelay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if p, ok := s.progress[id]; ok && p.Status == models.DownloadCompleted {
			delete(s.progress, id)
		}
	})
}
