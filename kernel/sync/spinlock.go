// Package sync provides a spinlock synchronization primitive.
package sync

import "sync/atomic"

// spinAttemptsBeforeYield bounds how many times Acquire spins before giving
// the scheduler a chance to run something else. On bare metal there is
// nothing to yield to outside interrupt context, so yieldFn is a no-op in
// the kernel build; it exists purely so tests (which run as ordinary
// goroutines under a real OS scheduler) don't spin a host CPU core solid.
const spinAttemptsBeforeYield = 1000

var (
	yieldFn func()
)

// Spinlock implements a lock where each task trying to acquire it busy-waits
// till the lock becomes available. Safe to use from both task and interrupt
// context as long as an interrupt handler never tries to acquire a lock
// already held by the code it preempted (that would deadlock forever since
// there is no other CPU to release it).
type Spinlock struct {
	state uint32
}

// Acquire blocks until the lock can be acquired by the currently active task.
// Any attempt to re-acquire a lock already held by the current task will cause
// a deadlock.
func (l *Spinlock) Acquire() {
	var attempts uint32
	for !l.TryToAcquire() {
		attempts++
		if attempts >= spinAttemptsBeforeYield {
			attempts = 0
			if yieldFn != nil {
				yieldFn()
			}
		}
	}
}

// TryToAcquire attempts to acquire the lock and returns true if the lock could
// be acquired or false otherwise.
func (l *Spinlock) TryToAcquire() bool {
	return atomic.SwapUint32(&l.state, 1) == 0
}

// Release relinquishes a held lock allowing other tasks to acquire it. Calling
// Release while the lock is free has no effect.
func (l *Spinlock) Release() {
	atomic.StoreUint32(&l.state, 0)
}
