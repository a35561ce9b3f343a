package heap

import "testing"

func TestFreeListAllocReturnsAlignedDisjointRegions(t *testing.T) {
	_, start := backing(t, 4096)
	var f FreeListAllocator
	f.Init(start, 4096)

	l1 := Layout{Size: 24, Align: 8}
	l2 := Layout{Size: 40, Align: 16}

	p1 := f.Alloc(l1)
	p2 := f.Alloc(l2)
	if p1 == 0 || p2 == 0 {
		t.Fatalf("unexpected OOM: p1=%d p2=%d", p1, p2)
	}
	if p1%l1.Align != 0 {
		t.Fatalf("p1 = %d not aligned to %d", p1, l1.Align)
	}
	if p2%l2.Align != 0 {
		t.Fatalf("p2 = %d not aligned to %d", p2, l2.Align)
	}
	if p1 < p2+l2.Size && p2 < p1+l1.Size {
		t.Fatalf("allocations overlap: [%d,%d) and [%d,%d)", p1, p1+l1.Size, p2, p2+l2.Size)
	}
}

func TestFreeListAllocFailsWhenExhausted(t *testing.T) {
	_, start := backing(t, 32)
	var f FreeListAllocator
	f.Init(start, 32)

	if got := f.Alloc(Layout{Size: 64, Align: 8}); got != 0 {
		t.Fatalf("alloc larger than the heap returned %d, want 0", got)
	}
}

// Property 3: dealloc(alloc(L)); alloc(L) succeeds whenever the first
// succeeded, assuming sufficient remaining bytes (idempotent single-block
// churn).
func TestFreeListDeallocThenAllocReturnsSameBlock(t *testing.T) {
	_, start := backing(t, 4096)
	var f FreeListAllocator
	f.Init(start, 4096)

	layout := Layout{Size: 48, Align: 8}
	p1 := f.Alloc(layout)
	if p1 == 0 {
		t.Fatalf("first alloc failed")
	}
	f.Dealloc(p1, layout)
	p2 := f.Alloc(layout)
	if p2 != p1 {
		t.Fatalf("alloc after dealloc returned %d, want the freed block %d", p2, p1)
	}
}

// E1: allocate two independent "boxes", write through each pointer, read
// back and observe the values written to each.
func TestFreeListHeapSanityTwoBoxes(t *testing.T) {
	region, start := backing(t, 4096)
	var f FreeListAllocator
	f.Init(start, 4096)

	layout := Layout{Size: 1, Align: 1}
	p1 := f.Alloc(layout)
	p2 := f.Alloc(layout)
	if p1 == 0 || p2 == 0 {
		t.Fatalf("unexpected OOM")
	}

	region[p1-start] = 41
	region[p2-start] = 13

	if region[p1-start] != 41 {
		t.Fatalf("box 1 = %d, want 41", region[p1-start])
	}
	if region[p2-start] != 13 {
		t.Fatalf("box 2 = %d, want 13", region[p2-start])
	}
}

// E3: allocate-then-drop a one-byte box for every i across the heap's
// capacity. No run should ever observe OOM, since each box is freed before
// the next is requested.
func TestFreeListManyBoxesNoOOM(t *testing.T) {
	region, start := backing(t, 256)
	var f FreeListAllocator
	f.Init(start, 256)

	layout := Layout{Size: 1, Align: 1}
	for i := 0; i < 10_000; i++ {
		p := f.Alloc(layout)
		if p == 0 {
			t.Fatalf("iteration %d: out of memory", i)
		}
		region[p-start] = byte(i)
		if region[p-start] != byte(i) {
			t.Fatalf("iteration %d: readback mismatch", i)
		}
		f.Dealloc(p, layout)
	}
}

func TestFreeListSplitsExcessIntoANewRegion(t *testing.T) {
	_, start := backing(t, 256)
	var f FreeListAllocator
	f.Init(start, 256)

	// Allocate something much smaller than the whole region; the leftover
	// must still be usable by a later allocation.
	p1 := f.Alloc(Layout{Size: 16, Align: 8})
	if p1 == 0 {
		t.Fatalf("first alloc failed")
	}
	p2 := f.Alloc(Layout{Size: 16, Align: 8})
	if p2 == 0 {
		t.Fatalf("second alloc failed; excess region was not split off")
	}
	if p2 == p1 {
		t.Fatalf("second alloc reused the first's memory while it was still live")
	}
}
