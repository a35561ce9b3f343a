package pmm

import (
	"nimbos/kernel"
	"nimbos/kernel/mem"
	"testing"
)

func TestFrameAllocatorDrainsUsableRegionsInOrder(t *testing.T) {
	regions := []kernel.MemoryRegion{
		{Start: 0x0, End: 0x1000, Kind: kernel.RegionReserved},
		{Start: 0x1000, End: 0x1000 + 2*mem.PageSize, Kind: kernel.RegionUsable},
		{Start: 0x3000, End: 0x4000, Kind: kernel.RegionBad},
		{Start: 0x4000, End: 0x4000 + mem.PageSize, Kind: kernel.RegionUsable},
	}

	fa := NewFrameAllocator(regions)

	var got []mem.Frame
	for i := 0; i < 3; i++ {
		f, err := fa.AllocFrame()
		if err != nil {
			t.Fatalf("unexpected error at frame %d: %v", i, err)
		}
		got = append(got, f)
	}

	want := []mem.Frame{
		mem.FrameFromAddress(0x1000),
		mem.FrameFromAddress(0x1000 + mem.PageSize),
		mem.FrameFromAddress(0x4000),
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("frame %d: expected %#x, got %#x", i, want[i].Address(), got[i].Address())
		}
	}

	if _, err := fa.AllocFrame(); err == nil {
		t.Fatal("expected out-of-memory error once usable regions are drained")
	}
}

func TestFrameAllocatorSkipsNonUsableRegions(t *testing.T) {
	regions := []kernel.MemoryRegion{
		{Start: 0x0, End: 0x2000, Kind: kernel.RegionACPIReclaimable},
	}
	fa := NewFrameAllocator(regions)
	if _, err := fa.AllocFrame(); err == nil {
		t.Fatal("expected out-of-memory error when no region is usable")
	}
}

func TestFrameAllocatorNeverReusesAFrame(t *testing.T) {
	regions := []kernel.MemoryRegion{
		{Start: 0x0, End: 4 * mem.PageSize, Kind: kernel.RegionUsable},
	}
	fa := NewFrameAllocator(regions)

	seen := make(map[mem.Frame]bool)
	for i := 0; i < 4; i++ {
		f, err := fa.AllocFrame()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if seen[f] {
			t.Fatalf("frame %#x allocated twice", f.Address())
		}
		seen[f] = true
	}
}
