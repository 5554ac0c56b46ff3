package waitlist

// slot states. Every key maps to exactly one of these at a time.
type slotState uint8

const (
	slotAvailable slotState = iota
	slotWaiting
	slotNotified
)

// maxSlots caps the arena so every slot index fits in a Key.
const maxSlots = 1<<32 - 1

type slot struct {
	// next is a plus-one index: the free-list link while Available,
	// the FIFO chain link while Waiting, 0 while Notified.
	next  uint32
	state slotState
	waker Waker
}

// store is the slot-array waiter arena.
//
// All indices are plus-one encoded (0 = none) so the zero value is an
// empty, valid store. A slot stays allocated while Notified, so a live
// handle's key can never be recycled out from under it.
//
// The store is exclusively owned by the engine and must only be
// touched while the engine's lock is held.
type store struct {
	slots []slot
	// free is the head of the free list of reusable slots.
	free uint32
	// head/tail thread Waiting slots into the FIFO chain.
	head uint32
	tail uint32
	// waiting/notified drive the WAITING/NOTIFIED flag bits.
	waiting  uint32
	notified uint32
}

// slot resolves a key, failing fast on keys this store never issued.
func (s *store) slot(k Key) *slot {
	if uint(k) >= uint(len(s.slots)) {
		panic("waitlist: key does not belong to this waitlist")
	}
	return &s.slots[k]
}

// insert allocates a slot (free-list reuse, else append) and links it
// at the tail of the FIFO chain. O(1).
func (s *store) insert(w Waker) Key {
	var idx uint32
	if s.free != 0 {
		idx = s.free
		s.free = s.slots[idx-1].next
	} else {
		if len(s.slots) >= maxSlots {
			panic("waitlist: waiter store exhausted")
		}
		s.slots = append(s.slots, slot{})
		idx = uint32(len(s.slots))
	}
	sl := &s.slots[idx-1]
	sl.state = slotWaiting
	sl.next = 0
	sl.waker = w
	s.pushBack(idx)
	s.waiting++
	return Key(idx - 1)
}

// pushBack appends an already-allocated Waiting slot to the FIFO chain.
func (s *store) pushBack(idx uint32) {
	if s.tail != 0 {
		s.slots[s.tail-1].next = idx
	} else {
		s.head = idx
	}
	s.tail = idx
}

// update replaces the waker of a registered waiter.
//
// A Waiting entry keeps its queue position. A Notified entry (the
// holder re-registers after being woken but before consuming) has its
// notification consumed and is re-queued at the tail; the original
// position is not preserved.
func (s *store) update(k Key, w Waker) {
	sl := s.slot(k)
	switch sl.state {
	case slotWaiting:
		sl.waker = w
	case slotNotified:
		s.notified--
		sl.state = slotWaiting
		sl.next = 0
		sl.waker = w
		s.pushBack(uint32(k) + 1)
		s.waiting++
	default:
		panic("waitlist: update of an unregistered waiter")
	}
}

// remove unlinks a waiter without forwarding and frees its slot.
// It reports whether the waiter had already been notified.
func (s *store) remove(k Key) bool {
	sl := s.slot(k)
	var wasNotified bool
	switch sl.state {
	case slotWaiting:
		s.unlink(uint32(k) + 1)
		s.waiting--
	case slotNotified:
		s.notified--
		wasNotified = true
	default:
		panic("waitlist: remove of an unregistered waiter")
	}
	s.release(uint32(k)+1, sl)
	return wasNotified
}

// cancel removes a waiter; if it had already been notified, the
// notification is handed to the current FIFO head instead of being
// dropped. It reports whether a new wakeup occurred.
func (s *store) cancel(k Key) bool {
	if s.remove(k) {
		return s.notifyFirst()
	}
	return false
}

// removeIfNotified frees the slot and returns true if the waiter has
// been notified; otherwise it installs w in place and returns false.
// This is the re-poll path for cooperative schedulers.
func (s *store) removeIfNotified(k Key, w Waker) bool {
	sl := s.slot(k)
	switch sl.state {
	case slotWaiting:
		sl.waker = w
		return false
	case slotNotified:
		s.notified--
		s.release(uint32(k)+1, sl)
		return true
	default:
		panic("waitlist: poll of an unregistered waiter")
	}
}

// notifyFirst pops the FIFO head, marks it Notified and invokes its
// waker. Returns false if the chain is empty.
func (s *store) notifyFirst() bool {
	idx := s.head
	if idx == 0 {
		return false
	}
	sl := &s.slots[idx-1]
	s.head = sl.next
	if s.head == 0 {
		s.tail = 0
	}
	sl.next = 0
	sl.state = slotNotified
	s.waiting--
	s.notified++
	w := sl.waker
	sl.waker = nil
	w()
	return true
}

// notifyAll marks every chained entry Notified and invokes their
// wakers in FIFO order. Returns whether any existed.
func (s *store) notifyAll() bool {
	idx := s.head
	if idx == 0 {
		return false
	}
	for idx != 0 {
		sl := &s.slots[idx-1]
		next := sl.next
		sl.next = 0
		sl.state = slotNotified
		s.notified++
		w := sl.waker
		sl.waker = nil
		w()
		idx = next
	}
	s.head = 0
	s.tail = 0
	s.waiting = 0
	return true
}

// release returns a slot to the free list.
func (s *store) release(idx uint32, sl *slot) {
	sl.state = slotAvailable
	sl.waker = nil
	sl.next = s.free
	s.free = idx
}

// unlink removes idx from the FIFO chain. A non-head entry needs a
// linear predecessor scan; out-of-order cancellation pays O(n).
func (s *store) unlink(idx uint32) {
	if s.head == idx {
		s.head = s.slots[idx-1].next
		if s.head == 0 {
			s.tail = 0
		}
		return
	}
	prev := s.head
	for {
		next := s.slots[prev-1].next
		if next == idx {
			break
		}
		if next == 0 {
			panic("waitlist: corrupt waiter chain")
		}
		prev = next
	}
	s.slots[prev-1].next = s.slots[idx-1].next
	if s.tail == idx {
		s.tail = prev
	}
}
