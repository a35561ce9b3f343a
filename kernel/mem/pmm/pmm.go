// Package pmm implements the physical frame allocator: a monotonic cursor
// that walks the bootloader-supplied memory map once and hands out each
// usable frame exactly one time. It never reclaims a frame; the kernel heap
// built on top of it is where freed memory gets reused.
package pmm

import "nimbos/kernel"
import "nimbos/kernel/mem"

// errOutOfMemory is returned once every usable frame has been handed out.
var errOutOfMemory = &kernel.Error{Module: "pmm", Message: "out of physical memory"}

// FrameAllocator hands out physical frames by scanning the usable regions of
// a boot memory map in order. It holds no free list: once a frame is
// allocated it is never returned to the allocator again.
type FrameAllocator struct {
	regions []kernel.MemoryRegion

	// regionIdx/nextFrame track the cursor position: regionIdx is the index
	// of the usable region currently being drained, nextFrame is the next
	// candidate Frame inside that region.
	regionIdx int
	nextFrame mem.Frame
	started   bool
}

// NewFrameAllocator creates a FrameAllocator that yields frames from the
// usable regions of the supplied memory map, in map order.
func NewFrameAllocator(regions []kernel.MemoryRegion) *FrameAllocator {
	return &FrameAllocator{regions: regions}
}

// AllocFrame returns the next unused physical frame, or errOutOfMemory if
// the memory map has been fully drained.
func (a *FrameAllocator) AllocFrame() (mem.Frame, *kernel.Error) {
	for {
		if !a.started {
			if !a.seekToFirstUsable(0) {
				return 0, errOutOfMemory
			}
			a.started = true
			return a.take(), nil
		}

		if a.nextFrame.Address() < a.regions[a.regionIdx].End {
			return a.take(), nil
		}

		if !a.seekToFirstUsable(a.regionIdx + 1) {
			return 0, errOutOfMemory
		}
		return a.take(), nil
	}
}

// take returns the cursor's current frame and advances the cursor by one.
func (a *FrameAllocator) take() mem.Frame {
	f := a.nextFrame
	a.nextFrame++
	return f
}

// seekToFirstUsable positions the cursor at the first frame of the first
// usable region at index >= from. It returns false if no such region
// exists.
func (a *FrameAllocator) seekToFirstUsable(from int) bool {
	for i := from; i < len(a.regions); i++ {
		r := a.regions[i]
		if r.Kind != kernel.RegionUsable || r.Len() == 0 {
			continue
		}
		a.regionIdx = i
		a.nextFrame = mem.FrameFromAddress(alignUp(r.Start, mem.PageSize))
		return true
	}
	return false
}

func alignUp(addr uintptr, align uintptr) uintptr {
	return (addr + align - 1) &^ (align - 1)
}
