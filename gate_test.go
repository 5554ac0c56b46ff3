package waitlist

import (
	"sync"
	"testing"
	"time"
)

func TestGate_Simple(t *testing.T) {
	var e Gate

	// 1. Initially closed
	if e.IsOpen() {
		t.Error("expected closed")
	}

	// 2. Wait in bg
	done := make(chan bool)
	go func() {
		e.Wait()
		done <- true
	}()

	select {
	case <-done:
		t.Error("Wait returned too early")
	case <-time.After(10 * time.Millisecond):
		// OK
	}

	// 3. Open
	e.Open()
	if !e.IsOpen() {
		t.Error("expected open")
	}

	<-done

	// 4. Wait again (should be immediate)
	start := time.Now()
	e.Wait()
	if time.Since(start) > time.Millisecond*100 {
		t.Error("Wait not immediate when open")
	}

	// 5. Close
	e.Close()
	if e.IsOpen() {
		t.Error("expected closed after Close")
	}
}

func TestGate_Broadcast(t *testing.T) {
	var e Gate
	var wg sync.WaitGroup
	const N = 10

	wg.Add(N)
	for range N {
		go func() {
			defer wg.Done()
			e.Wait()
		}()
	}

	time.Sleep(10 * time.Millisecond) // Give them time to block
	e.Open()
	wg.Wait() // Should all return
}

func TestGate_OpenIdempotent(t *testing.T) {
	var e Gate
	e.Open()
	e.Open()
	e.Wait()
}

// A waiter that observes Open during its registration race window
// must consume its own wakeup, not hand it on: a waiter arriving in a
// later closed phase stays blocked until the next Open.
func TestGate_OpenCloseRaceKeepsLateWaiterBlocked(t *testing.T) {
	var g Gate

	late := make(chan struct{})
	g.testHookRegistered = func() {
		g.testHookRegistered = nil
		// The gate opens while the first waiter sits between
		// registration and its re-check.
		g.Open()
	}
	g.testHookRaced = func() {
		g.testHookRaced = nil
		// It closes again before the first waiter consumes, and a
		// second waiter arrives during the new closed phase.
		g.Close()
		go func() {
			g.Wait()
			close(late)
		}()
		for {
			g.wl.lock()
			n := g.wl.inner.waiting
			g.wl.unlock()
			if n >= 1 {
				return
			}
			time.Sleep(time.Millisecond)
		}
	}

	g.Wait() // returns via the race branch

	select {
	case <-late:
		t.Fatal("closed-phase waiter stole the first waiter's wakeup")
	case <-time.After(20 * time.Millisecond):
		// OK, still blocked
	}

	g.Open()
	<-late
}

func TestGate_ReopenCycle(t *testing.T) {
	var e Gate
	for range 100 {
		done := make(chan struct{})
		go func() {
			e.Wait()
			close(done)
		}()
		e.Open()
		<-done
		e.Close()
	}
}
