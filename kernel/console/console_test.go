package console

import "testing"

func TestNewAttrPacksForegroundAndBackground(t *testing.T) {
	a := NewAttr(LightGray, Blue)
	if a != Attr(uint8(LightGray)|uint8(Blue)<<4) {
		t.Fatalf("NewAttr(LightGray, Blue) = %#x, want fg|bg<<4", a)
	}
}

func TestPrintable(t *testing.T) {
	cases := []struct {
		b  byte
		ok bool
	}{
		{0x19, false},
		{0x20, true},
		{'A', true},
		{0x7E, true},
		{0x7F, false},
		{'\n', true},
	}
	for _, c := range cases {
		if got := printable(c.b); got != c.ok {
			t.Errorf("printable(%#x) = %v, want %v", c.b, got, c.ok)
		}
	}
}
