package waitlist

import (
	"sync/atomic"

	"github.com/llxisdsh/waitlist/internal/opt"
)

// Gate is a synchronization primitive that can be manually opened and
// closed.
//
// State:
//   - Open: Wait returns immediately.
//   - Close: Wait blocks.
//
// It is zero-value usable (starts Close).
//
// Gate is built on the waiter engine: Open broadcasts with NotifyAll.
// A waiter that races with Open re-checks the open flag after
// registering, so no waiter is left behind and no wakeup leaks into
// a later closed phase.
type Gate struct {
	_    noCopy
	open atomic.Bool
	wl   Waitlist

	// testHookRegistered runs after Wait registers, before its
	// re-check of the open flag.
	testHookRegistered func()
	// testHookRaced runs when Wait observes the race with Open,
	// before it consumes its registration.
	testHookRaced func()
}

// Open signals the gate. All current waiters are woken up, and future
// calls to Wait return immediately until Close is called.
// Open is idempotent.
func (g *Gate) Open() {
	if !g.open.Swap(true) {
		g.wl.NotifyAll()
	}
}

// Close resets the gate. Future calls to Wait will block.
func (g *Gate) Close() {
	g.open.Store(false)
}

// IsOpen returns true if the gate is currently opened.
func (g *Gate) IsOpen() bool {
	return g.open.Load()
}

// Wait blocks until the gate is opened.
// If the gate is already opened, it returns immediately.
//
// If Close follows Open quickly, a waiter woken by that Open still
// returns: the "wait until opened" condition was satisfied, even if
// the gate is closed again by the time it runs.
func (g *Gate) Wait() {
	if g.open.Load() {
		return
	}
	var sema opt.Sema
	r := g.wl.Insert(sema.Release)
	if g.testHookRegistered != nil {
		g.testHookRegistered()
	}
	if g.open.Load() {
		if g.testHookRaced != nil {
			g.testHookRaced()
		}
		// Raced with Open. The broadcast already notified every entry
		// registered at that point, so nothing is owed to anyone:
		// consume without forwarding. Forwarding here could wake a
		// waiter that registered after a subsequent Close.
		r.Remove()
		return
	}
	sema.Acquire()
	r.Remove()
}
