// Package vmm implements the virtual memory mapper: a physical-memory-offset
// addressed walker over the amd64 4-level page table hierarchy. Unlike a
// recursive self-mapping scheme, every table (at every level) is reached by
// adding its physical address to a single fixed offset, so the mapper never
// needs a dedicated slot in the table it is walking.
package vmm

import (
	"nimbos/kernel"
	"nimbos/kernel/cpu"
	"nimbos/kernel/mem"
)

var (
	errFrameAllocationFailed = &kernel.Error{Module: "vmm", Message: "frame allocation failed"}
	errPageAlreadyMapped     = &kernel.Error{Module: "vmm", Message: "page already mapped"}
	errParentHugePage        = &kernel.Error{Module: "vmm", Message: "parent entry is a huge page"}
)

// readCR3Fn and flushTLBEntryFn are mocked by tests, which cannot execute
// the privileged MOVQ CR3 / INVLPG instructions from user mode.
var (
	readCR3Fn       = cpu.ReadCR3
	flushTLBEntryFn = cpu.FlushTLBEntry
)

// Mapper translates between virtual pages and physical frames through the
// currently active P4 table, reached via a fixed physical-memory offset.
type Mapper struct {
	physicalMemoryOffset uintptr
	p4                   *PageTable
}

// NewMapper creates a Mapper over the page table currently installed in CR3,
// assuming the entire span of physical memory is already identity-mapped at
// physicalMemoryOffset (as the bootloader is required to set up before
// Kmain runs).
func NewMapper(physicalMemoryOffset uintptr) *Mapper {
	p4Frame := mem.FrameFromAddress(readCR3Fn())
	return &Mapper{
		physicalMemoryOffset: physicalMemoryOffset,
		p4:                   tableAt(physicalMemoryOffset, p4Frame),
	}
}

// newMapperWithP4 builds a Mapper over an explicit, already-resident P4
// table. Used by tests to exercise the walk without a live CR3 register.
func newMapperWithP4(physicalMemoryOffset uintptr, p4 *PageTable) *Mapper {
	return &Mapper{physicalMemoryOffset: physicalMemoryOffset, p4: p4}
}

// Translate returns the physical frame the given page currently maps to, or
// false if the page is not mapped.
func (m *Mapper) Translate(page mem.Page) (mem.Frame, bool) {
	p3 := m.p4.nextTable(m.physicalMemoryOffset, page.P4Index())
	if p3 == nil {
		return 0, false
	}
	p2 := p3.nextTable(m.physicalMemoryOffset, page.P3Index())
	if p2 == nil {
		return 0, false
	}
	p1 := p2.nextTable(m.physicalMemoryOffset, page.P2Index())
	if p1 == nil {
		return 0, false
	}
	return p1.entries[page.P1Index()].Frame()
}

// MapTo establishes a mapping from page to frame with the given flags,
// allocating any intermediate page tables that don't yet exist. FlagPresent
// is always implied. Returns errPageAlreadyMapped if the page already has a
// mapping.
func (m *Mapper) MapTo(page mem.Page, frame mem.Frame, flags EntryFlags, fa FrameAllocator) *kernel.Error {
	p3, err := m.p4.nextTableCreate(m.physicalMemoryOffset, page.P4Index(), fa)
	if err != nil {
		return err
	}
	p2, err := p3.nextTableCreate(m.physicalMemoryOffset, page.P3Index(), fa)
	if err != nil {
		return err
	}
	p1, err := p2.nextTableCreate(m.physicalMemoryOffset, page.P2Index(), fa)
	if err != nil {
		return err
	}

	if !p1.entries[page.P1Index()].IsUnused() {
		return errPageAlreadyMapped
	}

	p1.entries[page.P1Index()].SetEntry(frame, flags|FlagPresent)
	return nil
}

// Map allocates a fresh frame from fa and maps page to it.
func (m *Mapper) Map(page mem.Page, flags EntryFlags, fa FrameAllocator) (mem.Frame, *kernel.Error) {
	f, err := fa.AllocFrame()
	if err != nil {
		return 0, err
	}
	if err := m.MapTo(page, f, flags, fa); err != nil {
		return 0, err
	}
	return f, nil
}

// MapRegion maps every page spanning [virtStart, virtStart+size) to a freshly
// allocated, not necessarily contiguous set of frames.
func (m *Mapper) MapRegion(virtStart uintptr, size uintptr, flags EntryFlags, fa FrameAllocator) *kernel.Error {
	start := mem.PageFromAddress(virtStart)
	end := mem.PageFromAddress(virtStart + size - 1)
	for p := start; p <= end; p++ {
		if _, err := m.Map(p, flags, fa); err != nil {
			return err
		}
	}
	return nil
}

// Unmap clears the mapping for page and flushes its TLB entry. It is not an
// error to unmap a page that has no mapping.
func (m *Mapper) Unmap(page mem.Page) {
	p3 := m.p4.nextTable(m.physicalMemoryOffset, page.P4Index())
	if p3 == nil {
		return
	}
	p2 := p3.nextTable(m.physicalMemoryOffset, page.P3Index())
	if p2 == nil {
		return
	}
	p1 := p2.nextTable(m.physicalMemoryOffset, page.P2Index())
	if p1 == nil {
		return
	}
	p1.entries[page.P1Index()].SetUnused()
	flushTLBEntryFn(page.Address())
}
