package keyboard

import (
	"nimbos/kernel/kfmt"
	"nimbos/kernel/sync"
	"nimbos/kernel/task"
)

var scancodes queue

var (
	wakerLock sync.Spinlock
	waker     *task.Waker
)

// AddScancode is called from the keyboard IRQ handler with the raw byte
// just read off the controller's data port. Must not block or allocate: it
// runs with interrupts disabled on whatever stack happened to be active.
func AddScancode(b byte) {
	if !scancodes.push(b) {
		kfmt.Printf("WARNING: scancode queue full; dropping keyboard input\n")
		return
	}

	wakerLock.Acquire()
	w := waker
	wakerLock.Release()
	if w != nil {
		w.Wake()
	}
}

// NextChar returns the next decoded keypress character. It reports false if
// none is currently available, in which case w has been registered to be
// woken when one arrives (same contract as pollNext) - a scancode that
// decodes to nothing (a break code, an unmapped key) is silently skipped
// rather than surfaced to the caller.
func NextChar(w *task.Waker) (byte, bool) {
	for {
		b, ok := pollNext(w)
		if !ok {
			return 0, false
		}
		if c, ok := decode(b); ok {
			return c, true
		}
	}
}

// pollNext implements the scancode stream's poll contract: try a pop; if
// empty, register w as the task to wake on the next push and retry once,
// closing the race between the empty check and a producer firing in
// between. Only after that second check comes up empty does it report no
// data.
func pollNext(w *task.Waker) (byte, bool) {
	if b, ok := scancodes.pop(); ok {
		return b, true
	}

	wakerLock.Acquire()
	waker = w
	wakerLock.Release()

	return scancodes.pop()
}
