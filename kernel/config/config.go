// Package config collects the kernel's compile-time tuning constants in one
// place, the way gopheros spreads the same idea across each package's own
// `*_constants_amd64.go` file. There is no runtime configuration file: by the
// time any of these values are read, there is no filesystem, and usually no
// heap, to load one from.
package config

const (
	// HeapStart and HeapSize bound the fixed virtual region the kernel maps
	// present+writable during boot and hands to the global heap allocator.
	HeapStart = 0x4444_4444_0000
	HeapSize  = 102_400

	// ScancodeQueueCapacity bounds the keyboard IRQ's scancode ring buffer.
	// A full queue drops the newest byte rather than blocking the handler.
	ScancodeQueueCapacity = 100

	// ExecutorCapacity bounds the task executor's ready queue. It must
	// exceed the kernel's steady-state ready-task count; a full queue on
	// wake is treated as a programmer error (panic), not transient
	// saturation.
	ExecutorCapacity = 100

	// VGATextPhysAddr, VGATextWidth and VGATextHeight describe the fixed
	// EGA-compatible text-mode framebuffer every PC-compatible machine
	// provides at boot, before any driver probing has happened.
	VGATextPhysAddr = 0xB8000
	VGATextWidth    = 80
	VGATextHeight   = 25

	// SerialPort is the base I/O port of the first 16550-compatible UART
	// (COM1), the emulator's conventional stand-in for host stdout.
	SerialPort = 0x3F8

	// QEMUDebugExitPort is the iobase of QEMU's isa-debug-exit device.
	QEMUDebugExitPort = 0xF4
)
