package heap

import "unsafe"

// blockSizes is the fixed ladder of block sizes this allocator serves
// directly; every entry must be a power of two since each size also serves
// as that size class's block alignment.
var blockSizes = [9]uintptr{8, 16, 32, 64, 128, 256, 512, 1024, 2048}

// FixedSizeBlockAllocator keeps one singly-linked free list per ladder
// entry, falling back to a FreeListAllocator for anything larger than the
// biggest rung or for whichever requests don't fit the ladder.
type FixedSizeBlockAllocator struct {
	listHeads [len(blockSizes)]*freeNode
	fallback  FreeListAllocator
}

func (a *FixedSizeBlockAllocator) Init(start, size uintptr) {
	a.listHeads = [len(blockSizes)]*freeNode{}
	a.fallback.Init(start, size)
}

// listIndex picks the smallest ladder rung that fits layout, or reports
// false when nothing on the ladder is big enough.
func listIndex(layout Layout) (int, bool) {
	required := layout.Size
	if layout.Align > required {
		required = layout.Align
	}
	for i, s := range blockSizes {
		if s >= required {
			return i, true
		}
	}
	return 0, false
}

func (a *FixedSizeBlockAllocator) Alloc(layout Layout) uintptr {
	index, ok := listIndex(layout)
	if !ok {
		return a.fallback.Alloc(layout)
	}

	if node := a.listHeads[index]; node != nil {
		a.listHeads[index] = node.next
		return uintptr(unsafe.Pointer(node))
	}

	blockSize := blockSizes[index]
	return a.fallback.Alloc(Layout{Size: blockSize, Align: blockSize})
}

func (a *FixedSizeBlockAllocator) Dealloc(ptr uintptr, layout Layout) {
	index, ok := listIndex(layout)
	if !ok {
		a.fallback.Dealloc(ptr, layout)
		return
	}

	node := (*freeNode)(unsafe.Pointer(ptr))
	node.next = a.listHeads[index]
	a.listHeads[index] = node
}
