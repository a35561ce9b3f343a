package vmm

import (
	"nimbos/kernel"
	"nimbos/kernel/mem"
	"unsafe"
)

// PageTable is a single 4KiB, 512-entry level of the amd64 paging hierarchy.
type PageTable struct {
	entries [mem.PageTableEntryCount]pageTableEntry
}

// FrameAllocator supplies the physical frames a Mapper needs when it has to
// instantiate a new lower-level page table.
type FrameAllocator interface {
	AllocFrame() (mem.Frame, *kernel.Error)
}

// tableAt reinterprets the physical memory at the given frame, reached
// through the physical-memory offset mapping, as a PageTable.
func tableAt(offset uintptr, f mem.Frame) *PageTable {
	return (*PageTable)(unsafe.Pointer(offset + f.Address()))
}

// nextTable returns the next-level table reachable through entry index, or
// nil if that entry is not present or refers to a huge page.
func (t *PageTable) nextTable(offset uintptr, index uint16) *PageTable {
	e := t.entries[index]
	if !e.HasFlags(FlagPresent) || e.HasFlags(FlagHuge) {
		return nil
	}
	f, _ := e.Frame()
	return tableAt(offset, f)
}

// nextTableCreate returns the next-level table reachable through entry
// index, allocating and zero-initializing a new table if the entry is
// currently unused.
func (t *PageTable) nextTableCreate(offset uintptr, index uint16, fa FrameAllocator) (*PageTable, *kernel.Error) {
	if e := t.entries[index]; e.HasFlags(FlagHuge) {
		return nil, errParentHugePage
	} else if !e.HasFlags(FlagPresent) {
		f, err := fa.AllocFrame()
		if err != nil {
			return nil, err
		}
		t.entries[index].SetEntry(f, FlagPresent|FlagWritable)
		nt := tableAt(offset, f)
		*nt = PageTable{}
		return nt, nil
	}
	f, _ := t.entries[index].Frame()
	return tableAt(offset, f), nil
}
