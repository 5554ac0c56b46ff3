package waitlist

// WaitRef refers to one registered waiter, as returned by
// [Waitlist.Insert]. A WaitRef must be consumed exactly once, through
// Remove or Cancel; using it afterwards is a fatal misuse.
type WaitRef struct {
	list *Waitlist
	key  Key
}

// Update replaces the waiter's waker. A still-waiting entry keeps its
// queue position; an already-notified entry has its notification
// consumed and is re-registered at the tail.
func (r WaitRef) Update(w Waker) {
	if w == nil {
		panic("waitlist: nil waker")
	}
	r.list.lock()
	r.list.inner.update(r.key, w)
	r.list.unlock()
}

// Remove detaches the waiter without triggering another notify and
// reports whether it had already been notified, that is, whether the
// awaited event actually happened.
func (r WaitRef) Remove() bool {
	r.list.lock()
	was := r.list.inner.remove(r.key)
	r.list.unlock()
	return was
}

// Cancel detaches the waiter. If it had already been notified, the
// notification is forwarded to the next waiter in line so it is never
// dropped. It reports whether a forward occurred.
func (r WaitRef) Cancel() bool {
	r.list.lock()
	did := r.list.inner.cancel(r.key)
	r.list.unlock()
	return did
}

// Waiter is a reusable handle over one logical waiter, for callers
// that re-poll rather than park: cooperative schedulers, select
// loops, state machines. At most one live registration exists per
// Waiter at a time.
//
// A Waiter is not safe for concurrent use; it represents a single
// logical consumer.
type Waiter struct {
	list       *Waitlist
	key        Key
	registered bool
}

// NewWaiter returns an unregistered handle. Registration happens on
// the first SetWaker or Poll call.
func (l *Waitlist) NewWaiter() *Waiter {
	return &Waiter{list: l}
}

// SetWaker installs w as the handle's resumption. The first call
// registers the waiter; later calls re-register the same logical
// waiter, never producing a duplicate wakeup.
func (h *Waiter) SetWaker(w Waker) {
	if h.registered {
		WaitRef{list: h.list, key: h.key}.Update(w)
		return
	}
	h.key = h.list.Insert(w).key
	h.registered = true
}

// Finish consumes the registration without forwarding and reports
// whether the waiter had already been notified. Finishing an
// unregistered handle is a fatal misuse.
func (h *Waiter) Finish() bool {
	if !h.registered {
		panic("waitlist: finish of an unregistered waiter")
	}
	h.registered = false
	return WaitRef{list: h.list, key: h.key}.Remove()
}

// Cancel detaches the handle, forwarding a pending notification to
// the next waiter. Cancelling an unregistered handle is a no-op.
// It reports whether a forward occurred.
func (h *Waiter) Cancel() bool {
	if !h.registered {
		return false
	}
	h.registered = false
	return WaitRef{list: h.list, key: h.key}.Cancel()
}

// Close is the teardown path: it cancels a still-registered handle so
// that no slot leaks and no pending notification is dropped. It is
// safe to defer unconditionally.
func (h *Waiter) Close() {
	h.Cancel()
}

// TryFinish checks whether the notification fired and, if not,
// reinstalls w in a single lock round trip. It returns true exactly
// once, when the firing is observed and consumed. The handle must be
// registered.
func (h *Waiter) TryFinish(w Waker) bool {
	if w == nil {
		panic("waitlist: nil waker")
	}
	if !h.registered {
		panic("waitlist: try-finish of an unregistered waiter")
	}
	h.list.lock()
	done := h.list.inner.removeIfNotified(h.key, w)
	h.list.unlock()
	if done {
		h.registered = false
	}
	return done
}

// Poll drives the handle the way a cooperative scheduler would:
// an unregistered handle is registered with w and stays pending; a
// registered one completes if its notification fired, else w is
// reinstalled. It returns true when the wait is complete.
func (h *Waiter) Poll(w Waker) bool {
	if !h.registered {
		h.SetWaker(w)
		return false
	}
	return h.TryFinish(w)
}

// DetachKey extracts the registered key and leaves the handle
// unregistered, without touching the engine. The key can later be
// rebound with [Waitlist.Attach].
//
// This is an unsafe escape hatch: rebinding the key over a different
// Waitlist, or after it has been consumed, is undefined.
func (h *Waiter) DetachKey() Key {
	if !h.registered {
		panic("waitlist: detach of an unregistered waiter")
	}
	h.registered = false
	return h.key
}

// Attach rebinds a key previously obtained from [Waiter.DetachKey] on
// this same Waitlist. See DetachKey for the safety contract.
func (l *Waitlist) Attach(k Key) *Waiter {
	return &Waiter{list: l, key: k, registered: true}
}
