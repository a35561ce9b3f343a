package console

import "nimbos/kernel/cpu"

// 16550 UART register offsets from the base port, and the line-status bit
// that gates transmission, per the standard 8250/16550 register layout.
const (
	regData = 0 // THR (write) / RBR (read)
	regLSR  = 5 // line status register

	lsrTHRE = 1 << 5 // transmitter holding register empty
)

var (
	serialOut8Fn = cpu.Out8
	serialIn8Fn  = cpu.In8
)

// Serial writes to a 16550-compatible UART, the emulator's conventional
// stand-in for host stdout. It does not configure the UART (baud rate,
// line control): QEMU's default COM1 is usable as-is, so init is limited
// to knowing where to write.
type Serial struct {
	port uint16
}

// NewSerial returns a Serial writing to the UART at the given base port.
func NewSerial(port uint16) *Serial {
	return &Serial{port: port}
}

// Write implements io.Writer, busy-waiting for the transmitter holding
// register to empty before each byte.
func (s *Serial) Write(p []byte) (int, error) {
	for _, b := range p {
		for serialIn8Fn(s.port+regLSR)&lsrTHRE == 0 {
		}
		serialOut8Fn(s.port+regData, b)
	}
	return len(p), nil
}
