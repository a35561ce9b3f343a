package heap

import "nimbos/kernel/sync"

// globalLock guards global the same way every other cross-context shared
// resource in this kernel is guarded: a spinlock, never a blocking mutex,
// since interrupt context can never block.
var (
	globalLock sync.Spinlock
	global     Allocator
)

// SetGlobal initializes a over [start, start+size) and installs it as the
// process-wide heap allocator. Called once during boot, after the region
// has been mapped present+writable.
func SetGlobal(a Allocator, start, size uintptr) {
	a.Init(start, size)
	globalLock.Acquire()
	global = a
	globalLock.Release()
}

// Alloc allocates layout through the global allocator. Returns 0 if no
// allocator has been installed yet, or if the installed one is exhausted.
func Alloc(layout Layout) uintptr {
	globalLock.Acquire()
	defer globalLock.Release()
	if global == nil {
		return 0
	}
	return global.Alloc(layout)
}

// Dealloc frees ptr (previously returned by Alloc with the same layout)
// back to the global allocator.
func Dealloc(ptr uintptr, layout Layout) {
	globalLock.Acquire()
	defer globalLock.Release()
	if global != nil {
		global.Dealloc(ptr, layout)
	}
}
