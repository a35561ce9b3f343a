package idt

import (
	"nimbos/kernel"
	"nimbos/kernel/cpu"
	"nimbos/kernel/kfmt"
)

// keyboardScancodeFn receives each scancode byte read off port 0x60. It is
// wired up by the keyboard package (which owns the actual scancode queue)
// via SetKeyboardHandler, so this package has no dependency on it.
var keyboardScancodeFn func(byte)

// SetKeyboardHandler installs the function invoked with each scancode byte
// the keyboard IRQ reads. Call before enabling interrupts.
func SetKeyboardHandler(fn func(byte)) {
	keyboardScancodeFn = fn
}

var errDoubleFault = &kernel.Error{Module: "idt", Message: "double fault"}
var errGPF = &kernel.Error{Module: "idt", Message: "general protection fault"}
var errPageFault = &kernel.Error{Module: "idt", Message: "page fault"}

// panicFn is mocked by tests, which cannot let a real kfmt.Panic disable
// interrupts and halt the host CPU.
var panicFn = func(err *kernel.Error) { kfmt.Panic(err) }

// handleBreakpoint logs the breakpoint location and resumes execution; a
// breakpoint trap is recoverable by design (INT3 is what debuggers use).
func handleBreakpoint(r *Registers) {
	kfmt.Printf("EXCEPTION: breakpoint at %16x\n", r.RIP)
}

// handleDoubleFault runs entirely on the dedicated IST stack: a double
// fault means the normal exception machinery itself failed, so there is no
// safe way to continue. It dumps the registers and halts for good.
func handleDoubleFault(r *Registers) {
	kfmt.Printf("EXCEPTION: double fault (code %d)\n", r.Info)
	r.Dump()
	panicFn(errDoubleFault)
}

// handleGPF dumps the faulting context and halts; nothing attempts to
// recover from a general protection fault.
func handleGPF(r *Registers) {
	kfmt.Printf("EXCEPTION: general protection fault (code %d)\n", r.Info)
	r.Dump()
	panicFn(errGPF)
}

var readCR2Fn = cpu.ReadCR2

// handlePageFault reports the faulting address (from CR2), the hardware
// error code and the register state, then halts. The kernel builds no
// demand-paging or copy-on-write machinery on top of this handler; every
// page fault it sees is therefore fatal.
func handlePageFault(r *Registers) {
	kfmt.Printf("EXCEPTION: page fault accessing %16x (code %d)\n", readCR2Fn(), r.Info)
	r.Dump()
	panicFn(errPageFault)
}

// handleTimer acknowledges the timer IRQ. Task scheduling is driven by the
// executor's own idle-sleep loop (cpu.StiHlt), not by preemption on this
// tick, so the handler has nothing further to do.
func handleTimer(_ *Registers) {
	sendEOI(uint8(TimerInterrupt))
}

// handleKeyboard reads the waiting scancode off the keyboard controller's
// data port and forwards it to the registered handler before acknowledging
// the IRQ. Must stay allocation-free: it runs with interrupts disabled on
// whatever stack happened to be active.
var in8Fn = cpu.In8

func handleKeyboard(_ *Registers) {
	scancode := in8Fn(keyboardDataPort)
	if keyboardScancodeFn != nil {
		keyboardScancodeFn(scancode)
	}
	sendEOI(uint8(KeyboardInterrupt))
}
