package vmm

import (
	"nimbos/kernel"
	"nimbos/kernel/mem"
	"testing"
	"unsafe"
)

// fakeFrameAllocator hands out frames backed by a plain Go byte slice,
// treating the slice's own address as physical address 0. physicalMemoryOffset
// is then simply the slice's base address, so tableAt's
// "offset + frame.Address()" arithmetic lands inside the slice.
type fakeFrameAllocator struct {
	pool []byte
	next mem.Frame
}

func newFakeFrameAllocator(frames int) (*fakeFrameAllocator, uintptr) {
	pool := make([]byte, frames*mem.PageSize+mem.PageSize)
	base := uintptr(unsafe.Pointer(&pool[0]))
	// round the usable offset up to a page boundary within the slice so
	// frame 0's address (offset+0) is page aligned.
	aligned := (base + mem.PageSize - 1) &^ (mem.PageSize - 1)
	return &fakeFrameAllocator{pool: pool}, aligned
}

func (a *fakeFrameAllocator) AllocFrame() (mem.Frame, *kernel.Error) {
	f := a.next
	a.next++
	if int(a.next)*mem.PageSize >= len(a.pool) {
		return 0, &kernel.Error{Module: "vmm_test", Message: "pool exhausted"}
	}
	return f, nil
}

func setupMapper(t *testing.T, frames int) (*Mapper, *fakeFrameAllocator) {
	t.Helper()
	fa, offset := newFakeFrameAllocator(frames)
	p4f, err := fa.AllocFrame()
	if err != nil {
		t.Fatalf("failed to allocate p4 frame: %v", err)
	}
	p4 := tableAt(offset, p4f)
	*p4 = PageTable{}
	return newMapperWithP4(offset, p4), fa
}

func TestMapToAndTranslate(t *testing.T) {
	m, fa := setupMapper(t, 16)

	page := mem.Page(0x123)
	backing, err := fa.AllocFrame()
	if err != nil {
		t.Fatalf("failed to allocate backing frame: %v", err)
	}

	if err := m.MapTo(page, backing, FlagWritable, fa); err != nil {
		t.Fatalf("MapTo failed: %v", err)
	}

	got, ok := m.Translate(page)
	if !ok {
		t.Fatal("expected page to be mapped")
	}
	if got != backing {
		t.Fatalf("expected frame %#x, got %#x", backing.Address(), got.Address())
	}
}

func TestMapToRejectsDoubleMapping(t *testing.T) {
	m, fa := setupMapper(t, 16)
	page := mem.Page(0x1)

	f1, _ := fa.AllocFrame()
	if err := m.MapTo(page, f1, FlagWritable, fa); err != nil {
		t.Fatalf("first MapTo failed: %v", err)
	}

	f2, _ := fa.AllocFrame()
	if err := m.MapTo(page, f2, FlagWritable, fa); err == nil {
		t.Fatal("expected second MapTo of the same page to fail")
	}
}

func TestTranslateUnmappedPage(t *testing.T) {
	m, _ := setupMapper(t, 16)
	if _, ok := m.Translate(mem.Page(0xdead)); ok {
		t.Fatal("expected unmapped page to translate to nothing")
	}
}

func TestUnmap(t *testing.T) {
	m, fa := setupMapper(t, 16)
	origFlush := flushTLBEntryFn
	defer func() { flushTLBEntryFn = origFlush }()
	flushTLBEntryFn = func(uintptr) {}

	page := mem.Page(0x7)
	f, _ := fa.AllocFrame()
	if err := m.MapTo(page, f, FlagWritable, fa); err != nil {
		t.Fatalf("MapTo failed: %v", err)
	}

	m.Unmap(page)

	if _, ok := m.Translate(page); ok {
		t.Fatal("expected page to be unmapped")
	}
}

func TestMapRegion(t *testing.T) {
	m, fa := setupMapper(t, 32)
	origFlush := flushTLBEntryFn
	defer func() { flushTLBEntryFn = origFlush }()
	flushTLBEntryFn = func(uintptr) {}

	const virtStart = 0x10 * mem.PageSize
	const size = 3 * mem.PageSize

	if err := m.MapRegion(virtStart, size, FlagWritable, fa); err != nil {
		t.Fatalf("MapRegion failed: %v", err)
	}

	for p := mem.PageFromAddress(virtStart); p <= mem.PageFromAddress(virtStart+size-1); p++ {
		if _, ok := m.Translate(p); !ok {
			t.Fatalf("expected page %#x to be mapped", p.Address())
		}
	}
}
