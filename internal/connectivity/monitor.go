// Package connectivity tracks the online/offline state machine. The host
// feeds it platform connectivity events; on reconnect it waits out a
// stabilization delay and then fires the registered triggers (update
// reconciliation, queue replay).
package connectivity

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dkarpov/studysync/internal/logging"
	"github.com/dkarpov/studysync/internal/notify"
)

// Trigger is an operation fired after the network stabilizes.
type Trigger func(ctx context.Context) error

type Monitor struct {
	clk      clock.Clock
	delay    time.Duration
	notifier notify.Notifier
	log      logging.Logger
	triggers []Trigger

	mu     sync.Mutex
	online bool
	timer  *clock.Timer
	closed bool
}

// NewMonitor starts in the online state; the host reports transitions via
// SetOnline. Triggers run sequentially in registration order.
func NewMonitor(clk clock.Clock, delay time.Duration, notifier notify.Notifier,
	log logging.Logger, triggers ...Trigger) *Monitor {
	if delay <= 0 {
		delay = 2 * time.Second
	}
	return &Monitor{
		clk:      clk,
		delay:    delay,
		notifier: notifier,
		log:      log,
		triggers: triggers,
		online:   true,
	}
}

// SetOnline records a platform connectivity event. Repeated events for the
// current state are ignored. Going offline cancels a not-yet-fired reconnect
// timer so triggers never run while disconnected.
func (m *Monitor) SetOnline(ctx context.Context, online bool) {
	m.mu.Lock()
	if m.closed || m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online

	if !online {
		if m.timer != nil {
			m.timer.Stop()
			m.timer = nil
		}
		m.mu.Unlock()
		m.log.Warn(ctx, "connection lost, working offline")
		m.notifier.Notify(ctx, notify.SeverityWarning, "You are offline",
			"Downloaded materials remain available; changes will sync on reconnect")
		return
	}

	// Give the link a moment to stabilize before hitting the backend.
	bg := context.WithoutCancel(ctx)
	m.timer = m.clk.AfterFunc(m.delay, func() { m.fire(bg) })
	m.mu.Unlock()

	m.log.Info(ctx, "connection restored")
	m.notifier.Notify(ctx, notify.SeverityInfo, "Back online", "Syncing pending changes")
}

func (m *Monitor) fire(ctx context.Context) {
	m.mu.Lock()
	if m.closed || !m.online {
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	for _, trigger := range m.triggers {
		if err := trigger(ctx); err != nil {
			m.log.Error(ctx, "reconnect trigger failed", "error", err)
		}
	}
}

// Online reports the current connectivity state.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Close stops scheduling further triggers.
func (m *Monitor) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}
