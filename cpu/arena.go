package cpu

import (
	"slices"
)

// Memory map of the machine.
const (
	MEMORY_SIZE   = 0x1000 // Addressable bytes.
	ADDRESS_MASK  = 0x0fff // Mask applied to every memory access.
	FONT_BASE     = 0x050  // First byte of the built-in font.
	FONT_GLYPH    = 5      // Bytes per font glyph.
	PROGRAM_START = 0x200  // Load address and entry point of programs.
	PROGRAM_LIMIT = MEMORY_SIZE - PROGRAM_START

	SCREEN_WIDTH  = 64 // Framebuffer columns.
	SCREEN_HEIGHT = 32 // Framebuffer rows.

	KEY_COUNT = 16 // Keys on the keypad.
	REG_FLAG  = 0xf
)

// fontSet is the 4x5 glyph set for the hex digits 0-F.
var fontSet = [16 * FONT_GLYPH]uint8{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// FontGlyph returns the five bytes of the glyph for a hex digit.
func FontGlyph(digit uint8) []uint8 {
	start := int(digit&0xf) * FONT_GLYPH
	return slices.Clone(fontSet[start : start+FONT_GLYPH])
}
