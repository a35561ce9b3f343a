package console

import (
	"nimbos/kernel/config"
	"reflect"
	"unsafe"
)

// VGAText drives the 80x25 EGA-compatible text-mode framebuffer present on
// every PC-compatible machine at boot. Each cell is two bytes: the ASCII
// code followed by an attribute byte (fg in the low nibble, bg in the high
// nibble), matching gopheros's device/video/console/vga_text.go layout.
//
// Unlike gopheros, which probes a multiboot framebuffer tag and maps it
// fresh, this kernel targets one fixed machine whose physical memory the
// bootloader has already identity-plus-offset mapped in full, so the
// framebuffer needs no separate mapping step - only the fixed physical
// address translated through the offset.
type VGAText struct {
	width, height uint32

	fb []uint16

	col, row uint32
	attr     Attr
}

// NewVGAText returns a VGAText reaching the framebuffer through
// physMemOffset, the virtual address at which physical address 0 is mapped.
func NewVGAText(physMemOffset uintptr) *VGAText {
	virt := physMemOffset + config.VGATextPhysAddr
	cons := &VGAText{
		width:  config.VGATextWidth,
		height: config.VGATextHeight,
		attr:   DefaultAttr,
	}
	cellCount := int(cons.width * cons.height)
	cons.fb = *(*[]uint16)(unsafe.Pointer(&reflect.SliceHeader{
		Data: virt,
		Len:  cellCount,
		Cap:  cellCount,
	}))
	return cons
}

// Dimensions returns the console width and height in characters.
func (c *VGAText) Dimensions() (width, height uint32) {
	return c.width, c.height
}

// SetAttr changes the color attribute used for subsequent writes.
func (c *VGAText) SetAttr(a Attr) {
	c.attr = a
}

// Cursor returns the current write position, 0-based.
func (c *VGAText) Cursor() (col, row uint32) {
	return c.col, c.row
}

// Fill sets every cell in the given rectangular region to a blank cell
// using attr. Both x and y are 0-based.
func (c *VGAText) Fill(x, y, width, height uint32, attr Attr) {
	clr := (uint16(attr) << 8) | uint16(' ')

	if x >= c.width || y >= c.height {
		return
	}
	if x+width > c.width {
		width = c.width - x
	}
	if y+height > c.height {
		height = c.height - y
	}

	rowOffset := y*c.width + x
	for ; height > 0; height, rowOffset = height-1, rowOffset+c.width {
		for col := rowOffset; col < rowOffset+width; col++ {
			c.fb[col] = clr
		}
	}
}

// Scroll shifts the console contents by lines rows in the given direction.
// The caller is responsible for clearing the region vacated by the scroll.
func (c *VGAText) Scroll(dir ScrollDir, lines uint32) {
	if lines == 0 || lines > c.height {
		return
	}

	offset := lines * c.width
	switch dir {
	case ScrollUp:
		var i uint32
		for ; i < (c.height-lines)*c.width; i++ {
			c.fb[i] = c.fb[i+offset]
		}
	case ScrollDown:
		for i := c.height*c.width - 1; i >= lines*c.width; i-- {
			c.fb[i] = c.fb[i-offset]
		}
	}
}

// putChar writes ch at the cursor's cell and advances the cursor,
// wrapping and scrolling as needed.
func (c *VGAText) putChar(ch byte) {
	c.fb[c.row*c.width+c.col] = (uint16(c.attr) << 8) | uint16(ch)
	c.col++
	if c.col >= c.width {
		c.newline()
	}
}

func (c *VGAText) newline() {
	c.col = 0
	c.row++
	if c.row >= c.height {
		c.Scroll(ScrollUp, 1)
		c.Fill(0, c.height-1, c.width, 1, c.attr)
		c.row = c.height - 1
	}
}

// Clear blanks the entire console and returns the cursor to the top-left
// cell.
func (c *VGAText) Clear() {
	c.Fill(0, 0, c.width, c.height, c.attr)
	c.col, c.row = 0, 0
}

// Write implements io.Writer. Bytes 0x20-0x7E render literally; 0x0A moves
// to the start of the next line, scrolling the buffer up when the cursor
// would fall past the last row; any other byte renders as a fallback glyph.
// Every byte is consumed in order and Write never returns a short write or
// an error.
func (c *VGAText) Write(p []byte) (int, error) {
	for _, b := range p {
		switch {
		case b == '\n':
			c.newline()
		case printable(b):
			c.putChar(b)
		default:
			c.putChar(fallbackGlyph)
		}
	}
	return len(p), nil
}
