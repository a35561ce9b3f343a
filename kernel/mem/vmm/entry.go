package vmm

import "nimbos/kernel/mem"

// EntryFlags are the architecture-defined bits of a page-table entry.
type EntryFlags uint64

const (
	FlagPresent EntryFlags = 1 << iota
	FlagWritable
	FlagUserAccessible
	FlagWriteThrough
	FlagNoCache
	FlagAccessed
	FlagDirty
	FlagHuge
	FlagGlobal
	_
	_
	_
	// bits 12-51 hold the frame address; NoExecute is bit 63.
)

// FlagNoExecute marks a page as non-executable (the NX bit).
const FlagNoExecute EntryFlags = 1 << 63

const (
	addrMask = uint64(0x000ffffffffff000)
)

// pageTableEntry is a single 8-byte entry in a page table.
type pageTableEntry uint64

// IsUnused reports whether the entry holds no mapping.
func (e pageTableEntry) IsUnused() bool {
	return e == 0
}

// SetUnused clears the entry.
func (e *pageTableEntry) SetUnused() {
	*e = 0
}

// Flags returns the flag bits set on this entry.
func (e pageTableEntry) Flags() EntryFlags {
	return EntryFlags(uint64(e) &^ addrMask)
}

// HasFlags reports whether all of the given flags are set.
func (e pageTableEntry) HasFlags(f EntryFlags) bool {
	return uint64(e.Flags())&uint64(f) == uint64(f)
}

// Frame returns the physical frame this entry points to, if present.
func (e pageTableEntry) Frame() (mem.Frame, bool) {
	if !e.HasFlags(FlagPresent) {
		return 0, false
	}
	return mem.FrameFromAddress(uintptr(uint64(e) & addrMask)), true
}

// SetEntry points this entry at the given frame with the given flags.
func (e *pageTableEntry) SetEntry(f mem.Frame, flags EntryFlags) {
	*e = pageTableEntry((uint64(f.Address()) & addrMask) | uint64(flags))
}
