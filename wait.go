package waitlist

import (
	"context"

	"github.com/llxisdsh/waitlist/internal/opt"
)

// Wait blocks the calling goroutine until a notification is received,
// then consumes it. Waiters are served in FIFO registration order.
func (l *Waitlist) Wait() {
	var sema opt.Sema
	r := l.Insert(sema.Release)
	sema.Acquire()
	r.Remove()
}

// WaitContext blocks until a notification is received or ctx is done.
// On cancellation the registration is withdrawn; a notification that
// raced with the cancellation is forwarded to the next waiter, so it
// is never lost. Returns nil when notified, else the context's cause.
func (l *Waitlist) WaitContext(ctx context.Context) error {
	done := ctx.Done()
	if done == nil {
		l.Wait()
		return nil
	}
	if ctx.Err() != nil {
		return context.Cause(ctx)
	}
	ch := make(chan struct{}, 1)
	r := l.Insert(func() {
		select {
		case ch <- struct{}{}:
		default:
		}
	})
	select {
	case <-ch:
		r.Remove()
		return nil
	case <-done:
		r.Cancel()
		return context.Cause(ctx)
	}
}
