//go:build race

package opt

import (
	"sync"
)

const Race_ = true

// Sema under the race detector avoids go:linkname into the runtime and
// parks on a sync.Cond instead. Slower, but fully visible to the detector.
type Sema struct {
	mu sync.Mutex
	c  *sync.Cond
	n  uint32
}

func (s *Sema) Acquire() {
	s.mu.Lock()
	if s.c == nil {
		s.c = sync.NewCond(&s.mu)
	}
	for s.n == 0 {
		s.c.Wait()
	}
	s.n--
	s.mu.Unlock()
}

func (s *Sema) Release() {
	s.mu.Lock()
	if s.c == nil {
		s.c = sync.NewCond(&s.mu)
	}
	s.n++
	s.c.Signal()
	s.mu.Unlock()
}
