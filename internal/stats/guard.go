package stats

import (
	"sync"
	"sync/atomic"
)

const idleMarker = "none"

// opGuard is the single serialization lock wrapping every engine operation.
// While the lock is held it records a human-readable marker naming the
// operation in progress, so a stuck or long-held lock can be diagnosed from
// the outside. The marker is diagnostic only; mutual exclusion comes from
// the mutex.
type opGuard struct {
	mu sync.Mutex
	op atomic.Value
}

func newOpGuard() *opGuard {
	g := &opGuard{}
	g.op.Store(idleMarker)
	return g
}

// enter acquires the lock and records the operation name.
func (g *opGuard) enter(name string) {
	g.mu.Lock()
	g.op.Store(name)
}

// mark updates the marker mid-operation. Callers must hold the lock.
func (g *opGuard) mark(name string) {
	g.op.Store(name)
}

// exit clears the marker and releases the lock.
func (g *opGuard) exit() {
	g.op.Store(idleMarker)
	g.mu.Unlock()
}

// current returns the marker for the operation in flight, or "none".
func (g *opGuard) current() string {
	return g.op.Load().(string)
}
