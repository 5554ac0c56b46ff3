package waitlist

import "testing"

func TestStore_FreeListReuse(t *testing.T) {
	var s store
	var w mockWaker

	k0 := s.insert(w.wake)
	k1 := s.insert(w.wake)
	s.remove(k0)
	if got := s.insert(w.wake); got != k0 {
		t.Fatalf("freed slot not reused: got key %d want %d", got, k0)
	}
	if got := s.insert(w.wake); got == k0 || got == k1 {
		t.Fatalf("live key %d handed out twice", got)
	}
	if len(s.slots) != 3 {
		t.Fatalf("arena grew to %d slots, want 3", len(s.slots))
	}
}

func TestStore_InteriorUnlink(t *testing.T) {
	var s store
	ws := newMockWakers(3)

	keys := make([]Key, 3)
	for i, w := range ws {
		keys[i] = s.insert(w.wake)
	}
	s.remove(keys[1])

	s.notifyFirst()
	s.notifyFirst()
	if s.notifyFirst() {
		t.Fatal("chain longer than expected")
	}
	if ws[0].count() != 1 || ws[1].count() != 0 || ws[2].count() != 1 {
		t.Fatalf("counts = %d,%d,%d want 1,0,1",
			ws[0].count(), ws[1].count(), ws[2].count())
	}
}

func TestStore_TailUnlink(t *testing.T) {
	var s store
	ws := newMockWakers(3)

	keys := make([]Key, 3)
	for i, w := range ws {
		keys[i] = s.insert(w.wake)
	}
	s.remove(keys[2])

	// The tail pointer must be patched so a fresh insert chains on.
	var late mockWaker
	s.insert(late.wake)

	s.notifyAll()
	if ws[0].count() != 1 || ws[1].count() != 1 || ws[2].count() != 0 {
		t.Fatal("broadcast hit the removed tail")
	}
	if late.count() != 1 {
		t.Fatal("waiter inserted after tail removal was skipped")
	}
}

func TestStore_UpdateNotifiedRequeues(t *testing.T) {
	var s store
	ws := newMockWakers(2)

	k0 := s.insert(ws[0].wake)
	s.insert(ws[1].wake)

	s.notifyFirst()
	if s.notified != 1 {
		t.Fatalf("notified=%d want=1", s.notified)
	}

	// Re-registering consumes the notification and re-queues at the
	// tail, behind the second waiter.
	s.update(k0, ws[0].wake)
	if s.notified != 0 || s.waiting != 2 {
		t.Fatalf("notified=%d waiting=%d want 0,2", s.notified, s.waiting)
	}
	s.notifyFirst()
	if ws[1].count() != 1 {
		t.Fatal("original second waiter lost its turn")
	}
	s.notifyFirst()
	if ws[0].count() != 2 {
		t.Fatalf("requeued waiter count=%d want=2", ws[0].count())
	}
}

func TestStore_UpdateWaitingKeepsPosition(t *testing.T) {
	var s store
	ws := newMockWakers(2)

	k0 := s.insert(ws[0].wake)
	s.insert(ws[1].wake)
	s.update(k0, ws[0].wake)

	s.notifyFirst()
	if ws[0].count() != 1 || ws[1].count() != 0 {
		t.Fatal("in-place update changed queue position")
	}
}

func TestStore_RemoveIfNotified(t *testing.T) {
	var s store
	ws := newMockWakers(2)

	k := s.insert(ws[0].wake)
	if s.removeIfNotified(k, ws[1].wake) {
		t.Fatal("waiting entry reported notified")
	}
	// The replacement waker must be the one invoked.
	s.notifyFirst()
	if ws[0].count() != 0 || ws[1].count() != 1 {
		t.Fatal("replacement waker was not installed")
	}
	if !s.removeIfNotified(k, ws[1].wake) {
		t.Fatal("notified entry not consumed")
	}
	if s.notified != 0 || s.waiting != 0 {
		t.Fatalf("counts leaked: waiting=%d notified=%d", s.waiting, s.notified)
	}
}

func TestStore_ContractViolationsPanic(t *testing.T) {
	var s store
	var w mockWaker

	k := s.insert(w.wake)
	s.remove(k)
	if !mustPanic(func() { s.remove(k) }) {
		t.Fatal("double remove did not panic")
	}
	if !mustPanic(func() { s.update(k, w.wake) }) {
		t.Fatal("update of a freed slot did not panic")
	}
	if !mustPanic(func() { s.slot(Key(99)) }) {
		t.Fatal("foreign key did not panic")
	}
}
