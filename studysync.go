// Package studysync is the offline content synchronization engine of the
// classroom portal: it keeps learning materials available without
// connectivity, tracks remote version drift, and replays actions queued while
// disconnected. It is a library embedded in the portal UI layer; the host
// feeds it connectivity events and polls its observable state.
package studysync

import (
	"context"
	"fmt"

	"github.com/benbjohnson/clock"

	"github.com/dkarpov/studysync/internal/common"
	"github.com/dkarpov/studysync/internal/config"
	"github.com/dkarpov/studysync/internal/connectivity"
	"github.com/dkarpov/studysync/internal/logging"
	"github.com/dkarpov/studysync/internal/models"
	"github.com/dkarpov/studysync/internal/notify"
	"github.com/dkarpov/studysync/internal/remote"
	"github.com/dkarpov/studysync/internal/services"
	"github.com/dkarpov/studysync/internal/store"
)

// Re-exported types so hosts outside the module can use the engine surface.
type (
	Config       = config.Config
	Material     = models.Material
	CachedFile   = models.CachedFile
	StorageUsage = models.StorageUsage
	QueueItem    = models.QueueItem
	AuthCache    = models.AuthCache

	DownloadProgress = models.DownloadProgress

	Action                 = models.Action
	SubmitAssignment       = models.SubmitAssignment
	RecordMaterialProgress = models.RecordMaterialProgress
	SaveLockerNote         = models.SaveLockerNote

	Notifier     = notify.Notifier
	Notification = notify.Notification
	Severity     = notify.Severity

	ContentSource = remote.ContentSource
	Logger        = logging.Logger

	// NotificationFeed is an in-memory Notifier the host UI can poll.
	NotificationFeed = notify.Feed
)

const (
	SeverityInfo    = notify.SeverityInfo
	SeverityWarning = notify.SeverityWarning
	SeverityError   = notify.SeverityError
)

// NewNotificationFeed returns a pollable in-memory notification sink.
func NewNotificationFeed() *NotificationFeed {
	return notify.NewFeed()
}

// Sentinel errors, matchable with errors.Is.
var (
	ErrNetwork               = common.ErrNetwork
	ErrNotFound              = common.ErrNotFound
	ErrStorage               = common.ErrStorage
	ErrValidation            = common.ErrValidation
	ErrUnauthorized          = common.ErrUnauthorized
	ErrLocalDataNotAvailable = common.ErrLocalDataNotAvailable
)

// LoadConfig reads defaults plus an optional JSON overlay at path.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}

// Options customizes engine construction. All fields are optional.
type Options struct {
	// Source overrides the remote content source (useful for tests; defaults
	// to an HTTP source against Config.RemoteBaseURL, with blobs optionally
	// served from S3 per Config.S3).
	Source ContentSource

	// Notifier receives user-facing notifications; defaults to the log.
	Notifier Notifier

	// Logger defaults to a discard logger.
	Logger Logger

	// Clock defaults to the wall clock; tests inject a mock.
	Clock clock.Clock

	// OnRefresh is called (debounced) when downloaded content changed and the
	// host should re-render its lists.
	OnRefresh func()
}

// Engine wires the local store, the remote content source, and the engine
// services behind one handle. Construct with New, release with Close.
type Engine struct {
	cfg      *Config
	log      Logger
	store    *store.Store
	notifier Notifier

	downloads  *services.DownloadService
	reconciler *services.ReconcileService
	queue      *services.QueueService
	auth       *services.AuthService
	monitor    *connectivity.Monitor
}

// New opens the local store (migrating its schema) and wires the components.
// If the store cannot be opened at all the engine still comes up, degraded to
// a no-op: reads return empty, downloads fail observably, and the host keeps
// working online. Offline capability is best effort, never a hard dependency.
func New(ctx context.Context, cfg *Config, opts Options) (*Engine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config: %w", common.ErrValidation)
	}

	log := opts.Logger
	if log == nil {
		log = logging.NewDiscard()
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.New()
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notify.NewLogNotifier(log)
	}

	source := opts.Source
	if source == nil {
		source = remote.NewHTTPSource(cfg.RemoteBaseURL, cfg.RequestTimeout)
		if cfg.S3 != nil {
			s3src, err := remote.NewS3Source(ctx, *cfg.S3)
			if err != nil {
				return nil, fmt.Errorf("failed to build s3 source: %w", err)
			}
			source = remote.WithBlobFetcher(source, s3src)
		}
	}

	st, err := store.Open(ctx, cfg.DatabasePath)
	if err != nil {
		log.Error(ctx, "local store unavailable, offline features disabled", "error", err)
		st = store.Disabled()
	}

	e := &Engine{cfg: cfg, log: log, store: st, notifier: notifier}

	e.reconciler = services.NewReconcileService(st, source, notifier, log)
	e.queue = services.NewQueueService(st, source, notifier, log, clk, cfg.MaxRetries)
	e.auth = services.NewAuthService(st, log, clk, cfg.AuthCacheTTL)
	e.downloads = services.NewDownloadService(st, source, notifier, log, clk, services.DownloadOptions{
		Window:          cfg.DownloadWindow,
		RefreshDebounce: cfg.RefreshDebounce,
		DisplayDelay:    cfg.ProgressDisplayDelay,
		OnRefresh:       opts.OnRefresh,
		OnDownloaded:    e.reconciler.ClearUpdate,
	})
	e.monitor = connectivity.NewMonitor(clk, cfg.StabilizationDelay, notifier, log,
		e.reconciler.CheckForUpdates, e.queue.ProcessQueue)

	return e, nil
}

// Enabled reports whether local persistence is live (false in degraded mode).
func (e *Engine) Enabled() bool { return e.store.Enabled() }

// Download fetches one material for offline use.
func (e *Engine) Download(ctx context.Context, m Material) error {
	return e.downloads.Download(ctx, m)
}

// DownloadAll fetches materials in bounded concurrency windows.
func (e *Engine) DownloadAll(ctx context.Context, mats []Material) {
	e.downloads.DownloadAll(ctx, mats)
}

// Progress snapshots active download progress keyed by material id.
func (e *Engine) Progress() map[string]DownloadProgress {
	return e.downloads.Progress()
}

// IsDownloaded reports whether a material is fully available offline.
func (e *Engine) IsDownloaded(ctx context.Context, id string) bool {
	return e.downloads.IsDownloaded(ctx, id)
}

// File returns the cached blob for a material and records the access.
func (e *Engine) File(ctx context.Context, id string) (*CachedFile, error) {
	return e.downloads.File(ctx, id)
}

// RemoveDownload deletes a downloaded material (metadata and blob together).
func (e *Engine) RemoveDownload(ctx context.Context, id string) error {
	return e.downloads.Remove(ctx, id)
}

// Materials lists all downloaded materials.
func (e *Engine) Materials(ctx context.Context) ([]Material, error) {
	return e.store.Materials().GetAll(ctx)
}

// Usage recomputes storage usage from the local store.
func (e *Engine) Usage(ctx context.Context) (StorageUsage, error) {
	return e.store.Usage(ctx)
}

// CheckForUpdates reconciles local versions against the remote source.
func (e *Engine) CheckForUpdates(ctx context.Context) error {
	return e.reconciler.CheckForUpdates(ctx)
}

// Updates returns the updates-available map (material id → remote version).
func (e *Engine) Updates() map[string]int64 {
	return e.reconciler.Updates()
}

// Enqueue records a deferred action for replay once connectivity returns.
func (e *Engine) Enqueue(ctx context.Context, a Action) (string, error) {
	return e.queue.Enqueue(ctx, a)
}

// ProcessQueue replays pending actions now (also runs after reconnect).
func (e *Engine) ProcessQueue(ctx context.Context) error {
	return e.queue.ProcessQueue(ctx)
}

// PendingActions lists actions still awaiting replay, in enqueue order.
func (e *Engine) PendingActions(ctx context.Context) ([]*QueueItem, error) {
	return e.queue.Pending(ctx)
}

// PendingCount returns how many actions await replay.
func (e *Engine) PendingCount(ctx context.Context) (int, error) {
	return e.queue.PendingCount(ctx)
}

// FailedActions lists terminally failed actions awaiting explicit removal.
func (e *Engine) FailedActions(ctx context.Context) ([]*QueueItem, error) {
	return e.queue.Failed(ctx)
}

// RemoveAction deletes a queued action, typically a terminally failed one.
func (e *Engine) RemoveAction(ctx context.Context, id string) error {
	return e.queue.Remove(ctx, id)
}

// CacheSession stores session data for offline login fallback.
func (e *Engine) CacheSession(ctx context.Context, accessToken string, password []byte) error {
	return e.auth.CacheSession(ctx, accessToken, password)
}

// OfflineLogin validates credentials against the cached session.
func (e *Engine) OfflineLogin(ctx context.Context, userName string, password []byte) (*AuthCache, error) {
	return e.auth.OfflineLogin(ctx, userName, password)
}

// ClearOfflineData wipes cached sessions.
func (e *Engine) ClearOfflineData(ctx context.Context) error {
	return e.auth.ClearOfflineData(ctx)
}

// SetOnline feeds a platform connectivity event into the engine.
func (e *Engine) SetOnline(ctx context.Context, online bool) {
	e.monitor.SetOnline(ctx, online)
}

// Online reports the current connectivity state.
func (e *Engine) Online() bool { return e.monitor.Online() }

// Close stops timers and listeners and closes the local store.
func (e *Engine) Close() error {
	e.monitor.Close()
	e.downloads.Close()
	return e.store.Close()
}
