package heap

import "unsafe"

func addrOf(region []byte) uintptr {
	return uintptr(unsafe.Pointer(&region[0]))
}
