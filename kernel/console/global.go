package console

import (
	"io"
	"nimbos/kernel/cpu"
	"nimbos/kernel/sync"
)

var (
	disableInterruptsFn = cpu.DisableInterrupts
	enableInterruptsFn  = cpu.EnableInterrupts
	interruptsEnabledFn = cpu.InterruptsEnabled
)

// Global is the process-wide console sink: every byte written reaches both
// the VGA framebuffer and the serial port, guarded by a single spinlock so
// concurrent writers (task context and interrupt handlers) never interleave
// their output. The lock is always taken inside withoutInterrupts, since an
// interrupt handler that wrote to the console while preempting a task
// already holding the lock would deadlock forever - there is no other CPU
// to release it.
type Global struct {
	lock   sync.Spinlock
	vga    io.Writer
	serial io.Writer
}

// NewGlobal returns a Global writing to both vga and serial. Either may be
// nil, in which case writes to it are skipped.
func NewGlobal(vga, serial io.Writer) *Global {
	return &Global{vga: vga, serial: serial}
}

// withoutInterrupts disables interrupts (if not already disabled), runs f,
// then restores the interrupt state that was actually active on entry.
// Every gate in kernel/idt clears IF before its handler runs, so a
// console write from inside a handler must not blindly re-enable
// interrupts on the way out - doing so would let a new interrupt land on a
// not-yet-finished fault/IRQ context, the double-fault IST stack included.
func withoutInterrupts(f func()) {
	wasEnabled := interruptsEnabledFn()
	if wasEnabled {
		disableInterruptsFn()
	}
	f()
	if wasEnabled {
		enableInterruptsFn()
	}
}

// Clear blanks every configured sink that supports it (VGAText does;
// Serial has no notion of a clearable screen and is skipped).
func (g *Global) Clear() {
	withoutInterrupts(func() {
		g.lock.Acquire()
		defer g.lock.Release()

		if c, ok := g.vga.(interface{ Clear() }); ok {
			c.Clear()
		}
	})
}

// Write implements io.Writer, fanning p out to every configured sink.
func (g *Global) Write(p []byte) (int, error) {
	withoutInterrupts(func() {
		g.lock.Acquire()
		defer g.lock.Release()

		if g.vga != nil {
			g.vga.Write(p)
		}
		if g.serial != nil {
			g.serial.Write(p)
		}
	})
	return len(p), nil
}
