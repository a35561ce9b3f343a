package goruntime

import (
	"nimbos/kernel/mem"
	"reflect"
	"testing"
	"unsafe"
)

func TestSysReserve(t *testing.T) {
	orig := nextReserveAddr
	defer func() { nextReserveAddr = orig }()

	var reserved bool
	specs := []struct {
		reqSize       uintptr
		expRegionSize uintptr
	}{
		// exact multiple of page size
		{100 * mem.PageSize, 100 * mem.PageSize},
		// size should be rounded up to nearest page size
		{2*mem.PageSize - 1, 2 * mem.PageSize},
	}

	for specIndex, spec := range specs {
		nextReserveAddr = 0x1000
		before := nextReserveAddr

		ptr := sysReserve(nil, spec.reqSize, &reserved)
		if uintptr(ptr) != before {
			t.Errorf("[spec %d] expected sysReserve to return %#x; got %#x", specIndex, before, uintptr(ptr))
		}
		if got := nextReserveAddr - before; got != spec.expRegionSize {
			t.Errorf("[spec %d] expected reservation size to be %d; got %d", specIndex, spec.expRegionSize, got)
		}
		if !reserved {
			t.Errorf("[spec %d] expected reserved to be set to true", specIndex)
		}
	}
}

func TestSysMap(t *testing.T) {
	defer func() { mapRegionFn = mapRegion }()

	t.Run("success", func(t *testing.T) {
		specs := []struct {
			reqAddr    uintptr
			reqSize    uintptr
			expRsvAddr uintptr
			expSize    uintptr
		}{
			// exact multiple of page size
			{100 * mem.PageSize, 4 * mem.PageSize, 100 * mem.PageSize, 4 * mem.PageSize},
			// address should be rounded up to nearest page size
			{100*mem.PageSize + 1, 4 * mem.PageSize, 101 * mem.PageSize, 4 * mem.PageSize},
			// size should be rounded up to nearest page size
			{1 * mem.PageSize, 4*mem.PageSize + 1, 1 * mem.PageSize, 5 * mem.PageSize},
		}

		for specIndex, spec := range specs {
			var sysStat uint64
			var gotStart, gotSize uintptr
			mapRegionFn = func(start, size uintptr) bool {
				gotStart, gotSize = start, size
				return true
			}

			rsvPtr := sysMap(unsafe.Pointer(spec.reqAddr), spec.reqSize, true, &sysStat)
			if got := uintptr(rsvPtr); got != spec.expRsvAddr {
				t.Errorf("[spec %d] expected mapped address %#x; got %#x", specIndex, spec.expRsvAddr, got)
			}
			if gotStart != spec.expRsvAddr || gotSize != spec.expSize {
				t.Errorf("[spec %d] expected mapRegion(%#x, %d); got mapRegion(%#x, %d)", specIndex, spec.expRsvAddr, spec.expSize, gotStart, gotSize)
			}
			if exp := uint64(spec.expSize); sysStat != exp {
				t.Errorf("[spec %d] expected stat counter to be %d; got %d", specIndex, exp, sysStat)
			}
		}
	})

	t.Run("map fails", func(t *testing.T) {
		mapRegionFn = func(uintptr, uintptr) bool { return false }

		var sysStat uint64
		if got := sysMap(unsafe.Pointer(uintptr(0xbadf00d)), 1, true, &sysStat); got != unsafe.Pointer(uintptr(0)) {
			t.Fatalf("expected sysMap to return 0x0 if mapRegion fails; got %#x", uintptr(got))
		}
	})

	t.Run("panic if not reserved", func(t *testing.T) {
		defer func() {
			if err := recover(); err == nil {
				t.Fatal("expected sysMap to panic")
			}
		}()

		sysMap(nil, 0, false, nil)
	})
}

func TestSysAlloc(t *testing.T) {
	orig := nextReserveAddr
	defer func() {
		mapRegionFn = mapRegion
		nextReserveAddr = orig
	}()

	t.Run("success", func(t *testing.T) {
		specs := []struct {
			reqSize uintptr
			expSize uintptr
		}{
			{4 * mem.PageSize, 4 * mem.PageSize},
			{4*mem.PageSize + 1, 5 * mem.PageSize},
		}

		for specIndex, spec := range specs {
			nextReserveAddr = 10 * mem.PageSize
			expRegionStartAddr := nextReserveAddr

			var sysStat uint64
			var gotStart, gotSize uintptr
			mapRegionFn = func(start, size uintptr) bool {
				gotStart, gotSize = start, size
				return true
			}

			if got := sysAlloc(spec.reqSize, &sysStat); uintptr(got) != expRegionStartAddr {
				t.Errorf("[spec %d] expected sysAlloc to return address %#x; got %#x", specIndex, expRegionStartAddr, uintptr(got))
			}
			if gotStart != expRegionStartAddr || gotSize != spec.expSize {
				t.Errorf("[spec %d] expected mapRegion(%#x, %d); got mapRegion(%#x, %d)", specIndex, expRegionStartAddr, spec.expSize, gotStart, gotSize)
			}
			if exp := uint64(spec.expSize); sysStat != exp {
				t.Errorf("[spec %d] expected stat counter to be %d; got %d", specIndex, exp, sysStat)
			}
		}
	})

	t.Run("map fails", func(t *testing.T) {
		mapRegionFn = func(uintptr, uintptr) bool { return false }

		var sysStat uint64
		if got := sysAlloc(1, &sysStat); got != unsafe.Pointer(uintptr(0)) {
			t.Fatalf("expected sysAlloc to return 0x0 if mapRegion fails; got %#x", uintptr(got))
		}
	})
}

func TestGetRandomData(t *testing.T) {
	sample1 := make([]byte, 128)
	sample2 := make([]byte, 128)

	getRandomData(sample1)
	getRandomData(sample2)

	if reflect.DeepEqual(sample1, sample2) {
		t.Fatal("expected getRandomData to return different values for each invocation")
	}
}

func TestInit(t *testing.T) {
	defer func() {
		mallocInitFn = mallocInit
		algInitFn = algInit
		modulesInitFn = modulesInit
		typeLinksInitFn = typeLinksInit
		itabsInitFn = itabsInit
		memoryReady = false
	}()

	t.Run("without SetMemory", func(t *testing.T) {
		memoryReady = false
		if err := Init(); err == nil {
			t.Fatal("expected Init to fail before SetMemory is called")
		}
	})

	t.Run("after SetMemory", func(t *testing.T) {
		memoryReady = true

		mallocInitFn = func() {}
		algInitFn = func() {}
		modulesInitFn = func() {}
		typeLinksInitFn = func() {}
		itabsInitFn = func() {}

		if err := Init(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}
