package idt

import "nimbos/kernel/cpu"

// Legacy 8259 PIC I/O ports and initialization-command-word constants.
const (
	masterCommandPort = 0x20
	masterDataPort    = 0x21
	slaveCommandPort  = 0xa0
	slaveDataPort     = 0xa1

	keyboardDataPort = 0x60

	icw1Init   = 0x11 // ICW4 needed, cascade mode, edge triggered
	icw4Mode86 = 0x01 // 8086/88 mode

	// masterMask leaves IRQ0 (timer) and IRQ1 (keyboard)
	// unmasked on the master PIC; every other line, and the entire slave
	// PIC, starts out masked since nothing in this kernel drives it.
	masterMask = 0xfc
	slaveMask  = 0xff

	picEOI = 0x20
)

var (
	out8Fn = cpu.Out8
)

// remapPICs moves the master and slave PIC's interrupt vectors off the
// CPU's reserved exception range (0-31) and onto PIC1Offset/PIC2Offset,
// then masks every IRQ line except the timer and keyboard.
func remapPICs() {
	out8Fn(masterCommandPort, icw1Init)
	out8Fn(slaveCommandPort, icw1Init)

	out8Fn(masterDataPort, PIC1Offset) // ICW2: master vector offset
	out8Fn(slaveDataPort, PIC2Offset)  // ICW2: slave vector offset

	out8Fn(masterDataPort, 4) // ICW3: slave PIC is on master's IRQ2
	out8Fn(slaveDataPort, 2)  // ICW3: slave's cascade identity

	out8Fn(masterDataPort, icw4Mode86)
	out8Fn(slaveDataPort, icw4Mode86)

	out8Fn(masterDataPort, masterMask)
	out8Fn(slaveDataPort, slaveMask)
}

// sendEOI signals end-of-interrupt to the PIC(s) that raised vector. IRQs
// routed through the slave PIC also need an EOI sent to the master, since
// the slave is wired through the master's cascade line.
func sendEOI(vector uint8) {
	if vector >= PIC2Offset {
		out8Fn(slaveCommandPort, picEOI)
	}
	out8Fn(masterCommandPort, picEOI)
}
