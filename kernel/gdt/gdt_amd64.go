// Package gdt builds the kernel's Global Descriptor Table and Task State
// Segment. The GDT is mostly vestigial on amd64 (segmentation itself is
// unused in long mode) but it is still how the CPU learns the one code
// segment it is allowed to run the kernel in, and the TSS is still how it
// learns the emergency stack to switch to for the double fault handler.
package gdt

import "unsafe"

// DoubleFaultISTIndex is the 1-based Interrupt Stack Table slot the IDT's
// double-fault gate is configured to switch onto. A double fault is raised
// while handling another exception, so it must never run on a stack that
// might itself be the cause of the fault (e.g. a stack overflow).
const DoubleFaultISTIndex = 1

// doubleFaultStackSize is deliberately generous: double-fault handling does
// very little work, but a guard-page-less stack that's too small just moves
// the overflow one level up instead of fixing it.
const doubleFaultStackSize = 5 * 4096

// Selector indices into the GDT, in 8-byte units.
const (
	selectorNull = 0
	selectorCode = 1
	selectorTSS  = 2 // occupies entries 2 and 3 (TSS descriptors are 16 bytes)
)

// segment descriptor flag bits (64-bit code segment descriptor).
const (
	flagPresent     = 1 << 47
	flagNotSystem   = 1 << 44
	flagExecutable  = 1 << 43
	flagLongMode    = 1 << 53
	codeSegmentBits = flagPresent | flagNotSystem | flagExecutable | flagLongMode
)

// tss is the 64-bit Task State Segment layout (section 8.7 of the Intel SDM
// vol. 3). Only the Interrupt Stack Table is used; ring 0 never runs a ring
// 3 task on this kernel, so the privilege stack table is left zeroed.
// Go aligns privilegeStackTable to 8 bytes, so the architectural TSS (whose
// reserved first uint32 is the padding Go inserts) starts 4 bytes into this
// struct; Init points the TSS descriptor there.
type tss struct {
	_                   uint32 // not part of the TSS
	privilegeStackTable [3]uint64
	_                   uint64
	interruptStackTable [7]uint64
	_                   uint64
	_                   uint16
	ioMapBase           uint16
}

var (
	doubleFaultStack [doubleFaultStackSize]byte

	activeTSS = tss{
		ioMapBase: uint16(unsafe.Sizeof(tss{})),
	}

	// table holds the null descriptor, the 64-bit kernel code segment and
	// the (16-byte, two-slot) TSS descriptor.
	table [4]uint64
)

// gdtr is the operand LGDT loads: a 16-bit limit followed by a 64-bit
// linear base address, packed with no padding. The base is held as four
// little-endian uint16 parts so that Go places it at offset 2.
type gdtr struct {
	limit uint16
	base  [4]uint16
}

var (
	lgdtFn    = loadGDT
	reloadCSFn = reloadCS
	ltrFn     = loadTSS
)

// Init builds the GDT and TSS, installs the double-fault IST stack, loads
// the GDT via LGDT, reloads CS to point at the new code segment and loads
// the TSS selector into TR. After Init returns, selector CodeSegment() is
// the only valid code segment and the CPU will switch onto
// doubleFaultStack whenever it enters the IDT's double-fault gate.
func Init() {
	activeTSS.interruptStackTable[DoubleFaultISTIndex-1] = uint64(uintptr(unsafe.Pointer(&doubleFaultStack[0]))) + doubleFaultStackSize

	table[selectorNull] = 0
	table[selectorCode] = codeSegmentBits

	tssBase := uint64(uintptr(unsafe.Pointer(&activeTSS))) + 4
	tssLimit := uint64(unsafe.Sizeof(activeTSS) - 4 - 1)
	low, high := tssDescriptor(tssBase, tssLimit)
	table[selectorTSS] = low
	table[selectorTSS+1] = high

	base := uint64(uintptr(unsafe.Pointer(&table[0])))
	desc := gdtr{
		limit: uint16(len(table)*8 - 1),
		base:  [4]uint16{uint16(base), uint16(base >> 16), uint16(base >> 32), uint16(base >> 48)},
	}
	lgdtFn(&desc)
	reloadCSFn(CodeSegment())
	ltrFn(TSSSegment())
}

// tssDescriptor packs a 64-bit TSS system descriptor's two 8-byte halves.
func tssDescriptor(base, limit uint64) (low, high uint64) {
	low = limit & 0xffff
	low |= (base & 0xffffff) << 16
	low |= 0x89 << 40 // present, type=0x9 (64-bit TSS, available)
	low |= ((limit >> 16) & 0xf) << 48
	low |= ((base >> 24) & 0xff) << 56

	high = (base >> 32) & 0xffffffff
	return low, high
}

// CodeSegment returns the selector value for the kernel code segment.
func CodeSegment() uint16 { return selectorCode * 8 }

// TSSSegment returns the selector value for the TSS.
func TSSSegment() uint16 { return selectorTSS * 8 }

// loadGDT executes LGDT with the given descriptor.
func loadGDT(desc *gdtr)

// reloadCS performs a far return to reload CS with the given selector. This
// is the only way to change CS on amd64 outside of an interrupt/call gate.
func reloadCS(selector uint16)

// loadTSS executes LTR with the given selector.
func loadTSS(selector uint16)
