package heap

// BumpAllocator is the simplest correct strategy: it never reclaims memory
// until every outstanding allocation has been freed, at which point it
// resets to the start of the region. Suitable only when allocation
// lifetimes cluster.
type BumpAllocator struct {
	heapStart uintptr
	heapEnd   uintptr
	next      uintptr
	liveCount int
}

func (b *BumpAllocator) Init(start, size uintptr) {
	b.heapStart = start
	b.heapEnd = start + size
	b.next = start
	b.liveCount = 0
}

func (b *BumpAllocator) Alloc(layout Layout) uintptr {
	allocStart := AlignUp(b.next, layout.Align)
	allocEnd := allocStart + layout.Size
	if allocEnd < allocStart || allocEnd > b.heapEnd {
		return 0
	}
	b.next = allocEnd
	b.liveCount++
	return allocStart
}

// Dealloc ignores ptr and layout entirely: the bump allocator only tracks
// how many allocations are outstanding, resetting once that count hits zero.
func (b *BumpAllocator) Dealloc(_ uintptr, _ Layout) {
	b.liveCount--
	if b.liveCount == 0 {
		b.next = b.heapStart
	}
}
