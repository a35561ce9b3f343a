// Package goruntime contains code for bootstrapping Go runtime features such
// as the memory allocator, map primitives and interfaces, none of which work
// until this package's hooks have been wired into the running kernel.
package goruntime

import (
	"nimbos/kernel"
	"nimbos/kernel/mem"
	"nimbos/kernel/mem/vmm"
	"unsafe"
)

var (
	// activeMapper and activeFrameAllocator are installed by SetMemory once
	// Kmain has a working Mapper and FrameAllocator. Every hook below reads
	// them through a function-variable indirection so tests can substitute
	// fakes without a real page table or physical memory map.
	activeMapper         *vmm.Mapper
	activeFrameAllocator vmm.FrameAllocator
	memoryReady          bool

	// nextReserveAddr is a monotonic cursor over the kernel's private virtual
	// address range, handed out to runtime.sysReserve/sysAlloc callers. It is
	// never reused: the Go allocator reserves address space once per arena
	// and never releases it back to us.
	nextReserveAddr uintptr

	// mapRegionFn is mocked by tests so the sysMap/sysAlloc call-counting and
	// flag assertions don't require a real page table or physical memory.
	mapRegionFn = mapRegion

	mallocInitFn    = mallocInit
	algInitFn       = algInit
	modulesInitFn   = modulesInit
	typeLinksInitFn = typeLinksInit
	itabsInitFn     = itabsInit

	// A seed for the pseudo-random number generator used by getRandomData.
	prngSeed = 0xdeadc0de
)

// SetMemory installs the mapper and frame allocator the runtime hooks use to
// satisfy allocation requests, and sets the base of the virtual address
// range sysReserve/sysAlloc carve regions out of. Must be called once,
// before Init, after the kernel has a working Mapper and FrameAllocator.
func SetMemory(m *vmm.Mapper, fa vmm.FrameAllocator, reserveBase uintptr) {
	activeMapper = m
	activeFrameAllocator = fa
	nextReserveAddr = reserveBase
	memoryReady = true
}

//go:linkname algInit runtime.alginit
func algInit()

//go:linkname modulesInit runtime.modulesinit
func modulesInit()

//go:linkname typeLinksInit runtime.typelinksinit
func typeLinksInit()

//go:linkname itabsInit runtime.itabsinit
func itabsInit()

//go:linkname mallocInit runtime.mallocinit
func mallocInit()

//go:linkname mSysStatInc runtime.mSysStatInc
func mSysStatInc(*uint64, uintptr)

// earlyReserveRegion carves out the next regionSize bytes of the kernel's
// private virtual address range. It never fails and never reuses a region;
// the caller is responsible for eventually mapping it to physical frames.
func earlyReserveRegion(regionSize uintptr) uintptr {
	addr := nextReserveAddr
	nextReserveAddr += regionSize
	return addr
}

// sysReserve reserves address space without allocating any memory or
// establishing any page mappings.
//
// This function replaces runtime.sysReserve and is required for initializing
// the Go allocator.
//
//go:redirect-from runtime.sysReserve
//go:nosplit
func sysReserve(_ unsafe.Pointer, size uintptr, reserved *bool) unsafe.Pointer {
	regionSize := alignUp(size, mem.PageSize)
	*reserved = true
	return unsafe.Pointer(earlyReserveRegion(regionSize))
}

// sysMap establishes a writable mapping for a memory region previously
// reserved via sysReserve, backing it with freshly allocated physical
// frames.
//
// This function replaces runtime.sysMap and is required for initializing the
// Go allocator.
//
//go:redirect-from runtime.sysMap
//go:nosplit
func sysMap(virtAddr unsafe.Pointer, size uintptr, reserved bool, sysStat *uint64) unsafe.Pointer {
	if !reserved {
		panic("sysMap should only be called with reserved=true")
	}

	regionStartAddr := alignUp(uintptr(virtAddr), mem.PageSize)
	regionSize := alignUp(size, mem.PageSize)

	if !mapRegionFn(regionStartAddr, regionSize) {
		return unsafe.Pointer(uintptr(0))
	}

	mSysStatInc(sysStat, regionSize)
	return unsafe.Pointer(regionStartAddr)
}

// sysAlloc reserves a fresh region of virtual address space and backs it
// with physical frames in a single step, returning the region's start
// address.
//
// This function replaces runtime.sysAlloc and is required for initializing
// the Go allocator.
//
//go:redirect-from runtime.sysAlloc
//go:nosplit
func sysAlloc(size uintptr, sysStat *uint64) unsafe.Pointer {
	regionSize := alignUp(size, mem.PageSize)
	regionStartAddr := earlyReserveRegion(regionSize)

	if !mapRegionFn(regionStartAddr, regionSize) {
		return unsafe.Pointer(uintptr(0))
	}

	mSysStatInc(sysStat, regionSize)
	return unsafe.Pointer(regionStartAddr)
}

// mapRegion maps every page in [start, start+size) to a freshly allocated
// frame, writable and non-executable.
func mapRegion(start, size uintptr) bool {
	const flags = vmm.FlagWritable | vmm.FlagNoExecute
	if err := activeMapper.MapRegion(start, size, flags, activeFrameAllocator); err != nil {
		return false
	}
	return true
}

func alignUp(v, align uintptr) uintptr {
	return (v + align - 1) &^ (align - 1)
}

// nanotime returns a monotonically increasing clock value. This is a dummy
// implementation and will be replaced when a real timekeeper is wired in.
//
// This function replaces runtime.nanotime and is invoked by the Go allocator
// when a span allocation is performed.
//
//go:redirect-from runtime.nanotime
//go:nosplit
func nanotime() uint64 {
	// Use a dummy loop to prevent the compiler from inlining this function.
	for i := 0; i < 100; i++ {
	}
	return 1
}

// getRandomData populates the given slice with random data. The real
// runtime package reads a random stream from /dev/random but since that is
// not available here, a simple PRNG is used instead.
//
//go:redirect-from runtime.getRandomData
func getRandomData(r []byte) {
	for i := 0; i < len(r); i++ {
		prngSeed = (prngSeed * 58321) + 11113
		r[i] = byte((prngSeed >> 16) & 255)
	}
}

// Init enables support for various Go runtime features. After a call to
// Init the following runtime features become available for use:
//  - heap memory allocation (new, make e.t.c)
//  - map primitives
//  - interfaces
func Init() *kernel.Error {
	if !memoryReady {
		return &kernel.Error{Module: "goruntime", Message: "SetMemory must be called before Init"}
	}

	mallocInitFn()
	algInitFn()       // setup hash implementation for map keys
	modulesInitFn()   // provides activeModules
	typeLinksInitFn() // uses maps, activeModules
	itabsInitFn()     // uses activeModules

	return nil
}

func init() {
	// Dummy calls so the compiler does not optimize away the functions in
	// this file.
	var (
		reserved bool
		stat     uint64
		zeroPtr  = unsafe.Pointer(uintptr(0))
	)

	sysReserve(zeroPtr, 0, &reserved)
	getRandomData(nil)
	stat = nanotime()
	_ = stat
}
