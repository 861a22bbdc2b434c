package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dkarpov/studysync/internal/logging"
	"github.com/dkarpov/studysync/internal/notify"
	"github.com/dkarpov/studysync/internal/store"
)

var dbSeq atomic.Int64

func openStore(t *testing.T) *store.Store {
	t.Helper()
	dsn := fmt.Sprintf("file:servicestest%d?mode=memory&cache=shared", dbSeq.Add(1))
	st, err := store.Open(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func discardLog() logging.Logger {
	return logging.NewDiscard()
}

// fakeFetcher is a scriptable BlobFetcher that tracks in-flight concurrency.
type fakeFetcher struct {
	fetch func(ctx context.Context, ref string) ([]byte, string, error)

	mu       sync.Mutex
	calls    int
	inFlight int
	maxSeen  int
}

func (f *fakeFetcher) FetchBlob(ctx context.Context, ref string) ([]byte, string, error) {
	f.mu.Lock()
	f.calls++
	f.inFlight++
	if f.inFlight > f.maxSeen {
		f.maxSeen = f.inFlight
	}
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()
	return f.fetch(ctx, ref)
}

func (f *fakeFetcher) stats() (calls, maxSeen int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls, f.maxSeen
}

// fakeLister is a scriptable VersionLister.
type fakeLister struct {
	versions func(ctx context.Context, ids []string) (map[string]int64, error)
	calls    atomic.Int32
}

func (f *fakeLister) Versions(ctx context.Context, ids []string) (map[string]int64, error) {
	f.calls.Add(1)
	return f.versions(ctx, ids)
}

// fakeDoer is a scriptable RequestDoer recording executed endpoints.
type fakeDoer struct {
	do func(ctx context.Context, method, endpoint string) error

	mu        sync.Mutex
	endpoints []string
}

func (f *fakeDoer) Do(ctx context.Context, method, endpoint string, headers map[string]string, body []byte) error {
	f.mu.Lock()
	f.endpoints = append(f.endpoints, endpoint)
	f.mu.Unlock()
	if f.do == nil {
		return nil
	}
	return f.do(ctx, method, endpoint)
}

func (f *fakeDoer) executed() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.endpoints))
	copy(out, f.endpoints)
	return out
}

func feedMessages(feed *notify.Feed) []string {
	var titles []string
	for _, n := range feed.Notifications() {
		titles = append(titles, n.Title)
	}
	return titles
}
