// Package remote talks to the portal backend: blob retrieval, batched
// version queries, and a generic request transport used to replay queued
// actions.
package remote

import "context"

// BlobFetcher retrieves a material's file given its stored reference.
type BlobFetcher interface {
	// FetchBlob returns the payload and its mime type.
	FetchBlob(ctx context.Context, ref string) ([]byte, string, error)
}

// VersionLister returns current authoritative versions for a set of ids.
type VersionLister interface {
	Versions(ctx context.Context, ids []string) (map[string]int64, error)
}

// RequestDoer replays a persisted request tuple against the backend.
type RequestDoer interface {
	Do(ctx context.Context, method, endpoint string, headers map[string]string, body []byte) error
}

// ContentSource is the full remote collaborator surface.
type ContentSource interface {
	BlobFetcher
	VersionLister
	RequestDoer
}

// WithBlobFetcher overrides the blob-fetching half of a source, e.g. to pull
// files straight from an object-storage bucket while version queries and
// action replay still go to the portal API.
func WithBlobFetcher(src ContentSource, f BlobFetcher) ContentSource {
	return &composite{ContentSource: src, fetcher: f}
}

type composite struct {
	ContentSource
	fetcher BlobFetcher
}

func (c *composite) FetchBlob(ctx context.Context, ref string) ([]byte, string, error) {
	return c.fetcher.FetchBlob(ctx, ref)
}
