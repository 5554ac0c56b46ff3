package waitlist

import "sync/atomic"

// mockWaker records how many times it has been invoked.
type mockWaker struct {
	n atomic.Int32
}

func (m *mockWaker) wake() {
	m.n.Add(1)
}

func (m *mockWaker) count() int32 {
	return m.n.Load()
}

func newMockWakers(n int) []*mockWaker {
	ws := make([]*mockWaker, n)
	for i := range ws {
		ws[i] = &mockWaker{}
	}
	return ws
}

func insertAll(l *Waitlist, ws []*mockWaker) []WaitRef {
	refs := make([]WaitRef, len(ws))
	for i, w := range ws {
		refs[i] = l.Insert(w.wake)
	}
	return refs
}

func mustPanic(f func()) (panicked bool) {
	defer func() {
		panicked = recover() != nil
	}()
	f()
	return
}
