// Command nimbos is the kernel's entry point as seen by the linker: the
// bootloader's runtime stub calls main() directly after it has set up long
// mode and a minimal stack, so this trampoline's only job is handing off to
// the real boot sequence without letting the compiler optimize the call
// away.
package main

import (
	"nimbos/kernel"
	"nimbos/kernel/kmain"
)

// bootInfoPtr is where the bootloader's rt0 stub is expected to have
// written the address of a kernel.BootInfo before jumping to main. It is a
// package-level variable, rather than a parameter, so the compiler cannot
// inline main and eliminate the call to kmain.Kmain.
var bootInfoPtr *kernel.BootInfo

func main() {
	kmain.Kmain(*bootInfoPtr)
}
