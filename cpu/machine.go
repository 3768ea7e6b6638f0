// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"errors"
	"io"
	"iter"
)

// Machine is the state of a CHIP-8 system, mutated only by the Cpu.
type Machine struct {
	Memory  [MEMORY_SIZE]uint8 // Main memory.
	Pc      uint16             // Address of the next instruction.
	I       uint16             // Index register.
	Stack   Stack              // Return address stack.
	V       [16]uint8          // Variable registers, vf is the flag.
	Delay   uint8              // Delay timer.
	Sound   uint8              // Sound timer.
	Keys    [KEY_COUNT]bool    // Keypad snapshot, owned by the caller.
	Display Framebuffer        // Pixel grid.
	dirty   bool               // Display changed since last acknowledged.
}

// NewMachine creates a machine with the font installed and all else zero.
func NewMachine() (m *Machine) {
	m = &Machine{}
	m.Reset()
	return
}

// Reset returns the machine to its power-on state.
func (m *Machine) Reset() {
	*m = Machine{}
	copy(m.Memory[FONT_BASE:], fontSet[:])
}

// LoadProgram copies a flat program image to PROGRAM_START, and points
// the program counter at it.
func (m *Machine) LoadProgram(rom io.Reader) (err error) {
	// One extra byte to detect oversized images.
	var image [PROGRAM_LIMIT + 1]uint8

	n, err := io.ReadFull(rom, image[:])
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		err = nil
	case err != nil:
		err = errors.Join(ErrRomLoad, err)
		return
	default:
		err = ErrRomSize
		return
	}

	copy(m.Memory[PROGRAM_START:], image[:n])
	m.Pc = PROGRAM_START

	return
}

// Framebuffer returns a copy of the current pixel grid.
func (m *Machine) Framebuffer() Framebuffer {
	return m.Display
}

// Dirty returns true if the display changed since the last acknowledgment.
func (m *Machine) Dirty() bool {
	return m.dirty
}

// TakeDirty returns the dirty flag and clears it.
func (m *Machine) TakeDirty() (dirty bool) {
	dirty = m.dirty
	m.dirty = false
	return
}

// ClearDirty acknowledges the current display contents.
func (m *Machine) ClearDirty() {
	m.dirty = false
}

// SetKey sets the state of a keypad key.
func (m *Machine) SetKey(index uint8, pressed bool) {
	m.Keys[index&0xf] = pressed
}

// Key returns the state of a keypad key.
func (m *Machine) Key(index uint8) bool {
	return m.Keys[index&0xf]
}

// ClearKeys releases all keys.
func (m *Machine) ClearKeys() {
	clear(m.Keys[:])
}

// NonZeroMemory iterates over every non-zero memory cell, in address order.
func (m *Machine) NonZeroMemory() iter.Seq2[uint16, uint8] {
	return func(yield func(addr uint16, value uint8) bool) {
		for addr, value := range m.Memory {
			if value == 0 {
				continue
			}
			if !yield(uint16(addr), value) {
				return
			}
		}
	}
}

// read returns the byte at a 12-bit masked address.
func (m *Machine) read(addr uint16) uint8 {
	return m.Memory[addr&ADDRESS_MASK]
}

// write stores a byte at a 12-bit masked address.
func (m *Machine) write(addr uint16, value uint8) {
	m.Memory[addr&ADDRESS_MASK] = value
}
