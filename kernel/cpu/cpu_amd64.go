// Package cpu provides the architecture-specific port I/O and control
// register intrinsics that the rest of the kernel is built on (spec layer
// L0). The actual instructions live in cpu_amd64.s; the declarations below
// are body-less Go funcs whose implementation is supplied by the assembly
// file, following the same split gopheros uses for its own cpu package.
package cpu

var (
	cpuidFn = ID
)

// EnableInterrupts enables interrupt handling (STI).
func EnableInterrupts()

// DisableInterrupts disables interrupt handling (CLI).
func DisableInterrupts()

// InterruptsEnabled reports whether the interrupt flag (RFLAGS bit 9) is
// currently set. Used to save/restore the caller's actual interrupt state
// around a critical section instead of unconditionally re-enabling
// interrupts the caller may have had disabled on entry (e.g. a handler
// running with IF already clear by virtue of an interrupt-gate entry).
func InterruptsEnabled() bool

// Halt stops instruction execution until the next interrupt (HLT).
func Halt()

// StiHlt executes STI immediately followed by HLT as a single, uninterruptible
// instruction pair. The architecture guarantees that an interrupt arriving
// after STI but before HLT is not lost and still wakes the HLT - this is the
// only safe way to disable interrupts, check for pending work, and sleep
// without a lost-wakeup race. Used exclusively by the task executor's idle
// path.
func StiHlt()

// Breakpoint executes INT3, invoking the breakpoint exception handler.
func Breakpoint()

// Out8 writes a single byte to the given I/O port.
func Out8(port uint16, value uint8)

// In8 reads a single byte from the given I/O port.
func In8(port uint16) uint8

// Out32 writes a 32-bit value to the given I/O port. Used only by the
// QEMU debug-exit device, which expects a doubleword write.
func Out32(port uint16, value uint32)

// FlushTLBEntry flushes a TLB entry for a particular virtual address.
func FlushTLBEntry(virtAddr uintptr)

// ReadCR2 returns the value stored in the CR2 register (faulting address).
func ReadCR2() uint64

// ReadCR3 returns the physical address of the currently active top-level
// page table (L4 on amd64).
func ReadCR3() uintptr

// WriteCR3 installs a new top-level page table and implicitly flushes the
// entire TLB.
func WriteCR3(phys uintptr)

// ID returns information about the CPU and its features. It
// is implemented as a CPUID instruction with EAX=leaf and
// returns the values in EAX, EBX, ECX and EDX.
func ID(leaf uint32) (uint32, uint32, uint32, uint32)

// IsIntel returns true if the code is running on an Intel processor.
func IsIntel() bool {
	_, ebx, ecx, edx := cpuidFn(0)
	return ebx == 0x756e6547 && // "Genu"
		edx == 0x49656e69 && // "ineI"
		ecx == 0x6c65746e // "ntel"
}
