package syncx

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGate_SecondAcquireDropped(t *testing.T) {
	var g Gate

	require.True(t, g.TryAcquire())
	assert.False(t, g.TryAcquire(), "second acquire must be dropped while held")

	g.Release()
	assert.True(t, g.TryAcquire(), "gate must be reusable after release")
}

func TestDebouncer_CoalescesBurstIntoOneTrailingCall(t *testing.T) {
	mock := clock.NewMock()
	d := NewDebouncer(mock, 500*time.Millisecond)

	var calls atomic.Int32
	fn := func() { calls.Add(1) }

	d.Trigger(fn)
	mock.Add(200 * time.Millisecond)
	d.Trigger(fn)
	mock.Add(200 * time.Millisecond)
	d.Trigger(fn)

	assert.Equal(t, int32(0), calls.Load(), "must not fire before the interval elapses")

	mock.Add(500 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load(), "burst must coalesce into one call")

	// A later trigger fires again.
	d.Trigger(fn)
	mock.Add(500 * time.Millisecond)
	assert.Equal(t, int32(2), calls.Load())
}

func TestDebouncer_StopCancelsPendingCall(t *testing.T) {
	mock := clock.NewMock()
	d := NewDebouncer(mock, 500*time.Millisecond)

	var calls atomic.Int32
	d.Trigger(func() { calls.Add(1) })
	d.Stop()

	mock.Add(time.Second)
	assert.Equal(t, int32(0), calls.Load())
}
