// Package idt builds the kernel's Interrupt Descriptor Table, remaps the
// legacy 8259 PICs off the CPU exception vector range, and dispatches
// incoming interrupts to registered Go handlers.
package idt

import (
	"nimbos/kernel"
	"nimbos/kernel/gdt"
	"nimbos/kernel/kfmt"
	"reflect"
	"unsafe"
)

// InterruptNumber identifies an x86 interrupt/exception/IRQ vector.
type InterruptNumber uint8

const (
	DivideByZero       = InterruptNumber(0)
	NMI                = InterruptNumber(2)
	Breakpoint         = InterruptNumber(3)
	Overflow           = InterruptNumber(4)
	BoundRangeExceeded = InterruptNumber(5)
	InvalidOpcode      = InterruptNumber(6)
	DeviceNotAvailable = InterruptNumber(7)
	DoubleFault        = InterruptNumber(8)
	InvalidTSS         = InterruptNumber(10)
	SegmentNotPresent  = InterruptNumber(11)
	StackSegmentFault  = InterruptNumber(12)
	GPFException       = InterruptNumber(13)
	PageFaultException = InterruptNumber(14)

	// PIC1Offset is the vector the master PIC's IRQ0 is remapped to, chosen
	// to land safely past the last CPU-reserved exception vector (0x1f).
	PIC1Offset = 32
	// PIC2Offset is the vector the slave PIC's IRQ8 is remapped to.
	PIC2Offset = PIC1Offset + 8

	TimerInterrupt    = InterruptNumber(PIC1Offset)
	KeyboardInterrupt = InterruptNumber(PIC1Offset + 1)
)

// doubleFaultISTIndex is the IST slot the double-fault gate always switches
// onto, regardless of what stack was active when the fault occurred.
const doubleFaultISTIndex = uint8(gdt.DoubleFaultISTIndex)

// Registers is a snapshot of all general-purpose registers plus the
// CPU-provided return frame at the moment an interrupt was taken. Info
// carries the hardware error code for exceptions that supply one, and is
// zero for every interrupt that doesn't.
type Registers struct {
	RAX uint64
	RBX uint64
	RCX uint64
	RDX uint64
	RSI uint64
	RDI uint64
	RBP uint64
	R8  uint64
	R9  uint64
	R10 uint64
	R11 uint64
	R12 uint64
	R13 uint64
	R14 uint64
	R15 uint64

	Info uint64

	RIP    uint64
	CS     uint64
	RFlags uint64
	RSP    uint64
	SS     uint64
}

// Dump prints a formatted register dump via kfmt.Printf.
func (r *Registers) Dump() {
	kfmt.Printf("RAX = %16x RBX = %16x\n", r.RAX, r.RBX)
	kfmt.Printf("RCX = %16x RDX = %16x\n", r.RCX, r.RDX)
	kfmt.Printf("RSI = %16x RDI = %16x\n", r.RSI, r.RDI)
	kfmt.Printf("RBP = %16x\n", r.RBP)
	kfmt.Printf("R8  = %16x R9  = %16x\n", r.R8, r.R9)
	kfmt.Printf("R10 = %16x R11 = %16x\n", r.R10, r.R11)
	kfmt.Printf("R12 = %16x R13 = %16x\n", r.R12, r.R13)
	kfmt.Printf("R14 = %16x R15 = %16x\n", r.R14, r.R15)
	kfmt.Printf("RIP = %16x CS  = %16x\n", r.RIP, r.CS)
	kfmt.Printf("RSP = %16x SS  = %16x\n", r.RSP, r.SS)
	kfmt.Printf("RFL = %16x INFO = %16x\n", r.RFlags, r.Info)
}

// gate is a single 16-byte amd64 IDT entry.
type gate struct {
	offsetLow  uint16
	selector   uint16
	istIndex   uint8
	typeAttr   uint8
	offsetMid  uint16
	offsetHigh uint32
	_          uint32
}

// gateTypeInterrupt marks a gate present, ring-0-only, 64-bit interrupt gate
// (as opposed to a trap gate, interrupts stay disabled inside the handler).
const gateTypeInterrupt = 0x8e

func (g *gate) set(handlerAddr uintptr, istIndex uint8) {
	g.offsetLow = uint16(handlerAddr)
	g.selector = gdt.CodeSegment()
	g.istIndex = istIndex
	g.typeAttr = gateTypeInterrupt
	g.offsetMid = uint16(handlerAddr >> 16)
	g.offsetHigh = uint32(handlerAddr >> 32)
}

var table [256]gate

// idtr is the operand LIDT loads: a 16-bit limit followed by a 64-bit
// linear base address, packed with no padding. The base is held as four
// little-endian uint16 parts so that Go places it at offset 2.
type idtr struct {
	limit uint16
	base  [4]uint16
}

var (
	lidtFn      = loadIDT
	remapPICsFn = remapPICs
	handlers    [256]func(*Registers)

	errUnhandledVector = &kernel.Error{Module: "idt", Message: "unhandled interrupt vector"}
)

// entryPoint returns the assembly trampoline installed for vector, or nil
// if the kernel has no stub for it. Only vectors with a registered Go
// handler via HandleInterrupt also get a stub; every other gate is left
// not-present.
func entryPoint(vector InterruptNumber) uintptr {
	var fn interface{}
	switch vector {
	case Breakpoint:
		fn = isrBreakpoint
	case DoubleFault:
		fn = isrDoubleFault
	case GPFException:
		fn = isrGPF
	case PageFaultException:
		fn = isrPageFault
	case TimerInterrupt:
		fn = isrTimer
	case KeyboardInterrupt:
		fn = isrKeyboard
	default:
		return 0
	}
	return reflect.ValueOf(fn).Pointer()
}

// HandleInterrupt installs handler as the target for vector, optionally
// switching onto Interrupt Stack Table slot istIndex (0 disables the
// switch). Only vectors with a hand-written assembly trampoline
// (entryPoint) can be installed; see entryPoint's doc comment.
func HandleInterrupt(vector InterruptNumber, istIndex uint8, handler func(*Registers)) {
	addr := entryPoint(vector)
	if addr == 0 {
		return
	}
	handlers[vector] = handler
	table[vector].set(addr, istIndex)
}

var mapFn = HandleInterrupt

// dispatch is called by every assembly entry point with the vector number
// and a pointer to the Registers frame it just built on the stack.
func dispatch(vector uint8, regs *Registers) {
	if h := handlers[vector]; h != nil {
		h(regs)
		return
	}
	panicFn(errUnhandledVector)
}

// Init builds the IDT, installs handlers for the exceptions and IRQs the
// kernel cares about, remaps the PICs off the CPU's reserved vector range
// and loads the table via LIDT. Interrupts remain disabled on return; the
// caller enables them (Kmain does so right after Init returns).
func Init() {
	mapFn(Breakpoint, 0, handleBreakpoint)
	mapFn(DoubleFault, doubleFaultISTIndex, handleDoubleFault)
	mapFn(GPFException, 0, handleGPF)
	mapFn(PageFaultException, 0, handlePageFault)
	mapFn(TimerInterrupt, 0, handleTimer)
	mapFn(KeyboardInterrupt, 0, handleKeyboard)

	remapPICsFn()

	base := uint64(uintptr(unsafe.Pointer(&table[0])))
	desc := idtr{
		limit: uint16(len(table)*16 - 1),
		base:  [4]uint16{uint16(base), uint16(base >> 16), uint16(base >> 32), uint16(base >> 48)},
	}
	lidtFn(&desc)
}

// loadIDT executes LIDT with the given descriptor.
func loadIDT(desc *idtr)

// isrBreakpoint through isrKeyboard are assembly trampolines: each saves
// the general-purpose registers, builds a Registers frame on the stack and
// calls dispatch with its own fixed vector number, then restores state and
// executes IRETQ.
func isrBreakpoint()
func isrDoubleFault()
func isrGPF()
func isrPageFault()
func isrTimer()
func isrKeyboard()
