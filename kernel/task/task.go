// Package task implements the kernel's cooperative task executor: a fixed
// set of futures polled to completion, woken by whichever subsystem (an
// interrupt handler, another task) has new work for them.
package task

import "sync/atomic"

// Id identifies a task. Drawn from a process-wide monotonically increasing
// counter; uniqueness is the only requirement, so relaxed ordering suffices.
type Id uint64

var nextID uint64

func newID() Id {
	return Id(atomic.AddUint64(&nextID, 1) - 1)
}

// PollState is the two-valued outcome of polling a Future once.
type PollState int

const (
	Pending PollState = iota
	Ready
)

// Future is implemented by every pollable task. Every task in this kernel
// is driven purely for its side effects (printing, consuming scancodes), so
// unlike a general-purpose future there is no associated output type: Ready
// alone carries all the information a caller needs.
type Future interface {
	Poll(w *Waker) PollState
}

// Task pairs a Future with the identity the executor and its wakers use to
// refer to it. Once constructed, a Task's future is never moved: the
// executor and every Waker that can reach it only ever hold a pointer.
type Task struct {
	id     Id
	future Future
}

// NewTask wraps f with a freshly allocated Id.
func NewTask(f Future) *Task {
	return &Task{id: newID(), future: f}
}
