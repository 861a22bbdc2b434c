package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/dkarpov/studysync/internal/logging"
	"github.com/dkarpov/studysync/internal/notify"
	"github.com/dkarpov/studysync/internal/remote"
	"github.com/dkarpov/studysync/internal/store"
	"github.com/dkarpov/studysync/internal/syncx"
)

// ReconcileService compares locally cached material versions against the
// remote authoritative versions and records which materials are stale. It
// never downloads anything on its own.
type ReconcileService struct {
	store    *store.Store
	source   remote.VersionLister
	notifier notify.Notifier
	log      logging.Logger

	gate syncx.Gate

	mu      sync.Mutex
	updates map[string]int64
}

func NewReconcileService(st *store.Store, source remote.VersionLister,
	notifier notify.Notifier, log logging.Logger) *ReconcileService {
	return &ReconcileService{
		store:    st,
		source:   source,
		notifier: notifier,
		log:      log,
		updates:  make(map[string]int64),
	}
}

// CheckForUpdates queries remote versions for exactly the locally stored ids
// and records id→remoteVersion where remote > local. Re-entrant calls while a
// check is in flight are dropped; the caller observes the first run's result.
func (s *ReconcileService) CheckForUpdates(ctx context.Context) error {
	if !s.gate.TryAcquire() {
		return nil
	}
	defer s.gate.Release()

	local, err := s.store.Materials().Versions(ctx)
	if err != nil {
		return fmt.Errorf("failed to read local versions: %w", err)
	}
	if len(local) == 0 {
		return nil
	}

	ids := make([]string, 0, len(local))
	for id := range local {
		ids = append(ids, id)
	}

	current, err := s.source.Versions(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to query remote versions: %w", err)
	}

	stale := make(map[string]int64)
	for id, remoteVersion := range current {
		if localVersion, ok := local[id]; ok && remoteVersion > localVersion {
			stale[id] = remoteVersion
		}
	}

	s.mu.Lock()
	s.updates = stale
	s.mu.Unlock()

	if len(stale) > 0 {
		s.log.Info(ctx, "updates available", "count", len(stale))
		s.notifier.Notify(ctx, notify.SeverityInfo, "Updates available",
			fmt.Sprintf("%d materials have newer versions", len(stale)))
	}
	return nil
}

// Updates returns a copy of the updates-available map (id → remote version).
func (s *ReconcileService) Updates() map[string]int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int64, len(s.updates))
	for id, v := range s.updates {
		out[id] = v
	}
	return out
}

// ClearUpdate drops the stale flag for a material, e.g. after re-download.
func (s *ReconcileService) ClearUpdate(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.updates, id)
}
