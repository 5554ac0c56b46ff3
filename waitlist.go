// Package waitlist provides an ordered collection of suspended waiters
// with fair FIFO wakeup.
//
// A Waitlist records interest: callers register a resumption callback
// (a Waker) and producers wake them in registration order with
// NotifyOne, NotifyAll or NotifyAny. No operation blocks and no
// goroutines are spawned; parking is owned by the caller (see
// [Waitlist.Wait] for a ready-made blocking adaptor). It is the inner
// engine that higher-level primitives (mutexes, semaphores, gates,
// bounded queues) are built on; [Gate] and [Semaphore] in this
// package are examples.
package waitlist

import (
	"sync/atomic"

	"github.com/llxisdsh/waitlist/internal/opt"
)

// Waker is the resumption capability attached to a registered waiter.
// It is invoked exactly once per notification, while the engine's lock
// is held. It must be safe to call from any goroutine, must not block,
// and must not re-enter the Waitlist synchronously.
type Waker func()

// Key identifies one registered waiter within its Waitlist. Keys are
// opaque; they carry no meaning beyond slot identification and are
// only valid against the Waitlist that issued them.
type Key uint32

// flags word bits, summarizing engine state for lock-free fast paths.
const (
	flagLocked   = 1      // engine lock
	flagWaiting  = 1 << 1 // at least one still-waiting entry
	flagNotified = 1 << 2 // at least one notified-but-unconsumed entry
)

// Waitlist is an ordered set of waiters with FIFO wakeup.
//
// State:
//   - flags: LOCKED | WAITING | NOTIFIED summary bits, readable
//     without the lock. WAITING/NOTIFIED never under-approximate: a
//     notify call that observes WAITING clear is a correct no-op.
//   - inner: the slot-array waiter store, guarded by the LOCKED bit.
//
// It is zero-value usable and must not be copied after first use.
type Waitlist struct {
	_     noCopy
	flags atomic.Uint32
	// Keep the spinned-on flags word and the store on separate lines.
	_     [opt.CacheLineSize_ - 4]byte
	inner store
}

// New creates an empty Waitlist.
func New() *Waitlist {
	return &Waitlist{}
}

// NewWithCapacity creates a Waitlist with room for n waiters before
// the slot arena has to grow.
func NewWithCapacity(n int) *Waitlist {
	l := &Waitlist{}
	l.inner.slots = make([]slot, 0, n)
	return l
}

// lock spins until the LOCKED bit is won, with the adaptive backoff
// used across this module.
//
// Memory ordering: lock uses an atomic fetch-or and unlock a plain
// atomic store, so everything a previous holder wrote inside the
// critical section happens-before the next acquisition. In particular
// a registration that precedes a notify call in real time is always
// visible to that call: no missed wakeups.
func (l *Waitlist) lock() {
	if l.flags.Or(flagLocked)&flagLocked == 0 {
		return
	}
	var spins int
	for {
		delay(&spins)
		if l.flags.Or(flagLocked)&flagLocked == 0 {
			return
		}
	}
}

// unlock recomputes the WAITING/NOTIFIED summary from the store and
// publishes it, clearing LOCKED, in a single atomic store.
func (l *Waitlist) unlock() {
	var flags uint32
	if l.inner.waiting > 0 {
		flags |= flagWaiting
	}
	if l.inner.notified > 0 {
		flags |= flagNotified
	}
	l.flags.Store(flags)
}

// Insert registers w at the tail of the FIFO and returns a reference
// to the new waiter. The caller must eventually consume the
// registration through [WaitRef.Remove] or [WaitRef.Cancel].
func (l *Waitlist) Insert(w Waker) WaitRef {
	if w == nil {
		panic("waitlist: nil waker")
	}
	l.lock()
	k := l.inner.insert(w)
	l.unlock()
	return WaitRef{list: l, key: k}
}

// NotifyOne wakes the earliest-registered waiter. It reports whether
// a waiter was woken.
func (l *Waitlist) NotifyOne() bool {
	if l.flags.Load()&flagWaiting == 0 {
		return false
	}
	l.lock()
	ok := l.inner.notifyFirst()
	l.unlock()
	return ok
}

// NotifyAll wakes every currently-waiting waiter, in registration
// order. It reports whether any waiter was woken.
func (l *Waitlist) NotifyAll() bool {
	if l.flags.Load()&flagWaiting == 0 {
		return false
	}
	l.lock()
	ok := l.inner.notifyAll()
	l.unlock()
	return ok
}

// NotifyAny wakes the earliest-registered waiter, but only if no
// earlier notification is still unconsumed. Two consecutive NotifyAny
// calls with no consumption in between wake a single waiter.
func (l *Waitlist) NotifyAny() bool {
	f := l.flags.Load()
	if f&flagNotified != 0 || f&flagWaiting == 0 {
		return false
	}
	l.lock()
	// The notified count may have changed between the flags check and
	// winning the lock.
	ok := false
	if l.inner.notified == 0 {
		ok = l.inner.notifyFirst()
	}
	l.unlock()
	return ok
}
