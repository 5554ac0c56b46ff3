package waitlist

import (
	"context"

	"github.com/llxisdsh/pb"
)

// WaitlistGroup manages waitlists on arbitrary keys (string, int,
// struct, etc.).
//
// Features:
//   - Infinite Keys: No need to pre-allocate waitlists.
//   - Auto-Cleanup: A key's waitlist is removed from memory once its
//     last waiter leaves.
//
// Usage:
//
//	var group WaitlistGroup[string]
//
//	go func() {
//		group.Wait("job-42") // blocks until notified
//	}()
//	group.NotifyAll("job-42")
//
// Implementation Note:
// It uses reference counting to safely delete entries.
type WaitlistGroup[K comparable] struct {
	_ noCopy
	m pb.MapOf[K, *groupEntry]
}

type groupEntry struct {
	wl  Waitlist
	ref int32 // mutated only inside per-key map callbacks
}

func (g *WaitlistGroup[K]) enter(k K) *groupEntry {
	e, _ := g.m.ProcessEntry(
		k,
		func(l *pb.EntryOf[K, *groupEntry]) (*pb.EntryOf[K, *groupEntry], *groupEntry, bool) {
			if l != nil {
				l.Value.ref++
				return l, l.Value, true
			}
			e := &groupEntry{ref: 1}
			return &pb.EntryOf[K, *groupEntry]{Value: e}, e, false
		},
	)
	return e
}

func (g *WaitlistGroup[K]) leave(k K) {
	g.m.ProcessEntry(
		k,
		func(l *pb.EntryOf[K, *groupEntry]) (*pb.EntryOf[K, *groupEntry], *groupEntry, bool) {
			if l == nil {
				return nil, nil, false
			}
			l.Value.ref--
			if l.Value.ref <= 0 {
				return nil, nil, true
			}
			return l, nil, false
		},
	)
}

func (g *WaitlistGroup[K]) lookup(k K) *groupEntry {
	e, _ := g.m.ProcessEntry(
		k,
		func(l *pb.EntryOf[K, *groupEntry]) (*pb.EntryOf[K, *groupEntry], *groupEntry, bool) {
			if l != nil {
				return l, l.Value, true
			}
			return nil, nil, false
		},
	)
	return e
}

// Wait blocks until the waitlist for k receives a notification.
func (g *WaitlistGroup[K]) Wait(k K) {
	e := g.enter(k)
	e.wl.Wait()
	g.leave(k)
}

// WaitContext blocks until the waitlist for k receives a notification
// or ctx is done. See [Waitlist.WaitContext].
func (g *WaitlistGroup[K]) WaitContext(ctx context.Context, k K) error {
	e := g.enter(k)
	err := e.wl.WaitContext(ctx)
	g.leave(k)
	return err
}

// NotifyOne wakes the earliest waiter registered under k.
// Keys with no waiters are a no-op, no entry is created.
func (g *WaitlistGroup[K]) NotifyOne(k K) bool {
	e := g.lookup(k)
	if e == nil {
		return false
	}
	return e.wl.NotifyOne()
}

// NotifyAll wakes every waiter registered under k.
func (g *WaitlistGroup[K]) NotifyAll(k K) bool {
	e := g.lookup(k)
	if e == nil {
		return false
	}
	return e.wl.NotifyAll()
}

// NotifyAny wakes the earliest waiter under k unless a notification
// for k is still unconsumed. See [Waitlist.NotifyAny].
func (g *WaitlistGroup[K]) NotifyAny(k K) bool {
	e := g.lookup(k)
	if e == nil {
		return false
	}
	return e.wl.NotifyAny()
}
