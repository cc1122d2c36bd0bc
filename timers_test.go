package main

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRemovalTimers_FiresOnce(t *testing.T) {
	timers := newRemovalTimers()

	var fired atomic.Int32
	timers.schedule("p1", 10*time.Millisecond, func() {
		fired.Add(1)
	})

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load())

	// once fired there is nothing left to cancel
	assert.False(t, timers.cancel("p1"))
}

func TestRemovalTimers_CancelPreventsFire(t *testing.T) {
	timers := newRemovalTimers()

	var fired atomic.Int32
	timers.schedule("p1", 20*time.Millisecond, func() {
		fired.Add(1)
	})

	assert.True(t, timers.cancel("p1"))
	assert.False(t, timers.cancel("p1"), "second cancel has nothing pending")

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
}

func TestRemovalTimers_RescheduleReplaces(t *testing.T) {
	timers := newRemovalTimers()

	var first, second atomic.Int32
	timers.schedule("p1", 10*time.Millisecond, func() {
		first.Add(1)
	})
	timers.schedule("p1", 30*time.Millisecond, func() {
		second.Add(1)
	})

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(0), first.Load(), "replaced timer must not fire")
	assert.Equal(t, int32(1), second.Load())
}

func TestRemovalTimers_PlayersAreIndependent(t *testing.T) {
	timers := newRemovalTimers()

	var fired atomic.Int32
	timers.schedule("p1", 10*time.Millisecond, func() {
		fired.Add(1)
	})
	timers.schedule("p2", 10*time.Millisecond, func() {
		fired.Add(1)
	})

	assert.True(t, timers.cancel("p1"))

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load(), "only p2's timer should fire")
}

func TestRemovalTimers_StopAll(t *testing.T) {
	timers := newRemovalTimers()

	var fired atomic.Int32
	for _, id := range []string{"p1", "p2", "p3"} {
		timers.schedule(id, 15*time.Millisecond, func() {
			fired.Add(1)
		})
	}

	timers.stopAll()

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
}
