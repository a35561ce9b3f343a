package heap

import "unsafe"

// freeNode is written directly into the free memory it describes, so a free
// region must always be at least sizeof(freeNode) bytes at alignof(freeNode).
type freeNode struct {
	size uintptr
	next *freeNode
}

const (
	freeNodeSize  = unsafe.Sizeof(freeNode{})
	freeNodeAlign = unsafe.Alignof(freeNode{})
)

// FreeListAllocator keeps free regions on a singly-linked list threaded
// through the regions themselves. It never coalesces adjacent regions back
// together; under a workload with heterogeneous allocation sizes this can
// exhaust the heap earlier than a coalescing allocator would.
type FreeListAllocator struct {
	head freeNode // head.size is unused; head.next is the first real region
}

func (f *FreeListAllocator) Init(start, size uintptr) {
	f.head = freeNode{}
	f.addFreeRegion(start, size)
}

func (f *FreeListAllocator) addFreeRegion(addr, size uintptr) {
	node := (*freeNode)(unsafe.Pointer(addr))
	node.size = size
	node.next = f.head.next
	f.head.next = node
}

func sizeAlign(layout Layout) (size, align uintptr) {
	align = layout.Align
	if align < freeNodeAlign {
		align = freeNodeAlign
	}
	size = layout.Size
	if size < freeNodeSize {
		size = freeNodeSize
	}
	return size, align
}

func regionEnd(n *freeNode) uintptr {
	return uintptr(unsafe.Pointer(n)) + n.size
}

func allocFromRegion(n *freeNode, size, align uintptr) (uintptr, bool) {
	allocStart := AlignUp(uintptr(unsafe.Pointer(n)), align)
	allocEnd := allocStart + size
	if allocEnd < allocStart || allocEnd > regionEnd(n) {
		return 0, false
	}
	if excess := regionEnd(n) - allocEnd; excess > 0 && excess < freeNodeSize {
		return 0, false // leftover too small to hold a tracking node
	}
	return allocStart, true
}

// findRegion returns the node immediately preceding the first region that
// fits (size, align), the region itself, and where the allocation would
// start within it.
func (f *FreeListAllocator) findRegion(size, align uintptr) (prev, region *freeNode, allocStart uintptr) {
	prev = &f.head
	current := f.head.next
	for current != nil {
		if start, ok := allocFromRegion(current, size, align); ok {
			return prev, current, start
		}
		prev = current
		current = current.next
	}
	return nil, nil, 0
}

func (f *FreeListAllocator) Alloc(layout Layout) uintptr {
	size, align := sizeAlign(layout)
	prev, region, allocStart := f.findRegion(size, align)
	if region == nil {
		return 0
	}

	prev.next = region.next
	allocEnd := allocStart + size
	if excess := regionEnd(region) - allocEnd; excess > 0 {
		f.addFreeRegion(allocEnd, excess)
	}
	return allocStart
}

func (f *FreeListAllocator) Dealloc(ptr uintptr, layout Layout) {
	size, _ := sizeAlign(layout)
	f.addFreeRegion(ptr, size)
}
