package waitlist

import (
	"sync/atomic"

	"github.com/llxisdsh/waitlist/internal/opt"
)

// Semaphore is a counting semaphore built on the waiter engine.
// It allows a fixed number of concurrent accesses to a resource.
//
// Unlike sync.Mutex, it has no owner. Waiters queue in FIFO order,
// but a releasing goroutine does not hand permits off directly:
// a newcomer can still grab a permit before a woken waiter runs
// (barging). It optimizes for throughput rather than strict fairness.
type Semaphore struct {
	_       noCopy
	permits atomic.Int64
	wl      Waitlist
}

// NewSemaphore creates a new Semaphore with a given number of initial
// permits.
func NewSemaphore(permits int64) *Semaphore {
	s := &Semaphore{}
	s.permits.Store(permits)
	return s
}

// TryAcquire attempts to acquire n permits without blocking.
// Returns true on success.
func (s *Semaphore) TryAcquire(n int64) bool {
	if n <= 0 {
		return true
	}
	for {
		p := s.permits.Load()
		if p < n {
			return false
		}
		if s.permits.CompareAndSwap(p, p-n) {
			return true
		}
	}
}

// Acquire acquires n permits, blocking until they are available.
func (s *Semaphore) Acquire(n int64) {
	if n <= 0 {
		return
	}
	if s.TryAcquire(n) {
		return
	}
	var sema opt.Sema
	h := s.wl.NewWaiter()
	for {
		// Register (or consume the previous wakeup and re-register)
		// before re-checking, so a Release between the check and the
		// park cannot be missed.
		h.SetWaker(sema.Release)
		if s.TryAcquire(n) {
			h.Close()
			return
		}
		sema.Acquire()
	}
}

// Release releases n permits and wakes up to n waiters to contend for
// them.
func (s *Semaphore) Release(n int64) {
	if n <= 0 {
		return
	}
	s.permits.Add(n)
	for i := int64(0); i < n; i++ {
		if !s.wl.NotifyOne() {
			break
		}
	}
}
