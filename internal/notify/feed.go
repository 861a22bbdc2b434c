package notify

import (
	"context"
	"sync"
)

// feedCap bounds the in-memory feed; oldest entries are dropped first.
const feedCap = 100

// Feed is an in-memory notifier the UI layer can poll. Safe for concurrent use.
type Feed struct {
	mu    sync.Mutex
	items []Notification
}

func NewFeed() *Feed {
	return &Feed{}
}

func (f *Feed) Notify(_ context.Context, severity Severity, title, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, Notification{Severity: severity, Title: title, Message: message})
	if len(f.items) > feedCap {
		f.items = f.items[len(f.items)-feedCap:]
	}
}

// Notifications returns a snapshot of the feed, oldest first.
func (f *Feed) Notifications() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Notification, len(f.items))
	copy(out, f.items)
	return out
}

// Clear empties the feed.
func (f *Feed) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = nil
}
