// Package syncx holds small coordination helpers: a single-flight gate that
// drops re-entrant invocations, and a trailing debouncer driven by an
// injectable clock so tests can advance virtual time.
package syncx

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
)

// Gate prevents a second concurrent invocation of a logical operation while
// one is already executing. The second caller is dropped, not queued.
type Gate struct {
	busy atomic.Bool
}

// TryAcquire reports whether the caller won the gate. A caller that acquired
// the gate must call Release when done.
func (g *Gate) TryAcquire() bool {
	return g.busy.CompareAndSwap(false, true)
}

func (g *Gate) Release() {
	g.busy.Store(false)
}

// Debouncer coalesces bursts of triggers into a single trailing call: each
// Trigger restarts the timer, and fn runs once the interval elapses without
// another trigger.
type Debouncer struct {
	clk      clock.Clock
	interval time.Duration

	mu    sync.Mutex
	timer *clock.Timer
}

func NewDebouncer(clk clock.Clock, interval time.Duration) *Debouncer {
	return &Debouncer{clk: clk, interval: interval}
}

func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = d.clk.AfterFunc(d.interval, fn)
}

// Stop cancels any pending trailing call. Safe to call multiple times.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
