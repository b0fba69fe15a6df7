package helpers

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// GoroutineSnapshot captures the state of goroutines at a point in time
type GoroutineSnapshot struct {
	Count     int
	Timestamp time.Time
}

// TakeGoroutineSnapshot captures current goroutine count
func TakeGoroutineSnapshot() *GoroutineSnapshot {
	return &GoroutineSnapshot{
		Count:     runtime.NumGoroutine(),
		Timestamp: time.Now(),
	}
}

// WaitForGoroutineCleanup waits until the goroutine count drops to within
// tolerance of before, forcing GC between checks.
func WaitForGoroutineCleanup(before *GoroutineSnapshot, maxWait time.Duration, tolerance int) error {
	deadline := time.Now().Add(maxWait)
	for {
		current := runtime.NumGoroutine()
		if current-before.Count <= tolerance {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("goroutine leak detected: started with %d, ended with %d (tolerance %d)",
				before.Count, current, tolerance)
		}
		runtime.GC()
		time.Sleep(20 * time.Millisecond)
	}
}

// StartGate releases a fixed number of goroutines at the same moment.
type StartGate struct {
	ready  int32
	target int32
	open   chan struct{}
}

// NewStartGate creates a gate for n goroutines.
func NewStartGate(n int) *StartGate {
	return &StartGate{target: int32(n), open: make(chan struct{})}
}

// Wait blocks until all n goroutines have called Wait.
func (g *StartGate) Wait() {
	if atomic.AddInt32(&g.ready, 1) == g.target {
		close(g.open)
	}
	<-g.open
}

// CoordinatedStart runs numOps operations that all begin together and
// returns their errors, nil entries included, indexed by op id.
func CoordinatedStart(numOps int, opFunc func(id int) error) []error {
	gate := NewStartGate(numOps)
	errs := make([]error, numOps)
	var wg sync.WaitGroup

	wg.Add(numOps)
	for i := 0; i < numOps; i++ {
		go func(id int) {
			defer wg.Done()
			gate.Wait()
			errs[id] = opFunc(id)
		}(i)
	}
	wg.Wait()
	return errs
}
