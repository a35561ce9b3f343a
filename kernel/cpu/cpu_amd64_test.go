package cpu

import "testing"

// TestIsIntel exercises vendor detection against the CPUID leaf-0 dumps of
// the two vendors nimbos is ever actually run under: QEMU's default "qemu64"
// model (which reports as an AMD part) and TCG/KVM's "-cpu host" passthrough
// on an Intel host.
func TestIsIntel(t *testing.T) {
	defer func() {
		cpuidFn = ID
	}()

	vendorDumps := []struct {
		eax, ebx, ecx, edx uint32
		exp                bool
	}{
		// CPUID output from an Intel CPU
		{0xd, 0x756e6547, 0x6c65746e, 0x49656e69, true},
		// CPUID output from an AMD Athlon CPU (QEMU's default model reports
		// the same vendor string)
		{0x1, 0x68747541, 0x444d4163, 0x69746e65, false},
	}

	for i, dump := range vendorDumps {
		cpuidFn = func(_ uint32) (uint32, uint32, uint32, uint32) {
			return dump.eax, dump.ebx, dump.ecx, dump.edx
		}

		if got := IsIntel(); got != dump.exp {
			t.Errorf("[vendor dump %d] expected IsIntel to return %t; got %t", i, dump.exp, got)
		}
	}
}
