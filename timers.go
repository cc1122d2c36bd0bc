/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"sync"
	"time"
)

// removalTimers tracks the pending-removal timer for each disconnected
// player of one room. At most one timer exists per player: scheduling
// again replaces the old timer, and a reconnect cancels exactly one.
// Leaked or double-fired timers are the main correctness risk of the
// grace window, so everything funnels through here.
type removalTimers struct {
	mu      sync.Mutex
	pending map[string]*time.Timer
}

func newRemovalTimers() *removalTimers {
	return &removalTimers{
		pending: make(map[string]*time.Timer),
	}
}

// schedule arms a removal for playerID after grace. fire runs on the
// timer goroutine; callers hand the event back to the room mailbox so it
// re-enters as an ordinary message.
func (t *removalTimers) schedule(playerID string, grace time.Duration, fire func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if old, ok := t.pending[playerID]; ok {
		old.Stop()
	}

	var tm *time.Timer
	tm = time.AfterFunc(grace, func() {
		// Only fire if still the registered timer for this player; a
		// replaced timer that already slipped past Stop lands here too.
		t.mu.Lock()
		live := t.pending[playerID] == tm
		if live {
			delete(t.pending, playerID)
		}
		t.mu.Unlock()

		if live {
			fire()
		}
	})
	t.pending[playerID] = tm
}

// cancel stops a pending removal. Reports whether one was pending.
func (t *removalTimers) cancel(playerID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	timer, ok := t.pending[playerID]
	if !ok {
		return false
	}
	delete(t.pending, playerID)
	timer.Stop()

	return true
}

func (t *removalTimers) stopAll() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for id, timer := range t.pending {
		timer.Stop()
		delete(t.pending, id)
	}
}
