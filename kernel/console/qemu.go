package console

import "nimbos/kernel/cpu"

// QEMU exit codes written to the debug-exit device. QEMU reports the
// process exit status as (code << 1) | 1, so 0x10 and 0x11 surface as 0x21
// and 0x23 respectively.
const (
	QEMUExitSuccess uint32 = 0x10
	QEMUExitFailure uint32 = 0x11
)

var qemuOut32Fn = cpu.Out32

// QEMUExit writes code to QEMU's isa-debug-exit device, terminating the
// emulator. Used by tests run under QEMU to report pass/fail without a
// human watching the console; has no effect on real hardware since the
// device does not exist there.
func QEMUExit(port uint16, code uint32) {
	qemuOut32Fn(port, code)
}
