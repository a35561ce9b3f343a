package task

import (
	"nimbos/kernel"
	"nimbos/kernel/cpu"
	"nimbos/kernel/kfmt"
)

var panicFn = func(err *kernel.Error) { kfmt.Panic(err) }

var (
	errDuplicateTaskID = &kernel.Error{Module: "task", Message: "duplicate task id"}
	errReadyQueueFull  = &kernel.Error{Module: "task", Message: "ready queue full"}
)

// Executor owns every live Task, the queue of ids ready to be polled, and a
// cache of the Waker handed to each task so that waking it never needs a
// fresh allocation (and so a Waker invoked from interrupt context never
// races the executor over who owns it).
type Executor struct {
	tasks      map[Id]*Task
	ready      *readyQueue
	wakerCache map[Id]*Waker
}

// NewExecutor returns an empty Executor ready to accept Spawn calls.
func NewExecutor() *Executor {
	return &Executor{
		tasks:      make(map[Id]*Task),
		ready:      &readyQueue{},
		wakerCache: make(map[Id]*Waker),
	}
}

// Spawn registers t and marks it ready for its first poll. A duplicate id
// indicates a bug (Id is supposed to be unique by construction) and panics,
// same as a full ready queue.
func (e *Executor) Spawn(t *Task) {
	if _, exists := e.tasks[t.id]; exists {
		panicFn(errDuplicateTaskID)
	}
	e.tasks[t.id] = t
	e.ready.push(t.id)
}

// RunPending drains whatever is on the ready queue right now, polling each
// task once, without sleeping afterward. Run calls this in a loop; it is
// exposed separately so callers (and tests) can step the executor by hand.
func (e *Executor) RunPending() {
	e.runReadyTasks()
}

// runReadyTasks drains the ready queue, polling each task still present in
// the task map (a task may have been removed between its wake and this
// poll, which is not an error) and retiring any that complete.
func (e *Executor) runReadyTasks() {
	for {
		id, ok := e.ready.pop()
		if !ok {
			return
		}
		t, exists := e.tasks[id]
		if !exists {
			continue
		}

		w, cached := e.wakerCache[id]
		if !cached {
			w = &Waker{id: id, queue: e.ready}
			e.wakerCache[id] = w
		}

		if t.future.Poll(w) == Ready {
			delete(e.tasks, id)
			delete(e.wakerCache, id)
		}
	}
}

var (
	stiHltFn            = cpu.StiHlt
	disableInterruptsFn = cpu.DisableInterrupts
	enableInterruptsFn  = cpu.EnableInterrupts
)

// sleepIfIdle halts the CPU until the next interrupt if nothing is ready to
// run. Interrupts are disabled before the emptiness check and re-enabled
// atomically with the halt (sti;hlt) so a wake arriving in between is never
// lost.
func (e *Executor) sleepIfIdle() {
	disableInterruptsFn()
	if e.ready.empty() {
		stiHltFn()
		return
	}
	enableInterruptsFn()
}

// Run polls ready tasks and sleeps when idle, forever. It never returns.
func (e *Executor) Run() {
	for {
		e.RunPending()
		e.sleepIfIdle()
	}
}
