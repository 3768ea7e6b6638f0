package cpu

import (
	"bytes"
	"errors"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
)

func TestMachine_New(t *testing.T) {
	assert := assert.New(t)

	m := NewMachine()

	assert.Equal([]uint8{0xF0, 0x90, 0x90, 0x90, 0xF0}, m.Memory[FONT_BASE:FONT_BASE+5])
	assert.Equal(fontSet[:], m.Memory[FONT_BASE:FONT_BASE+len(fontSet)])
	assert.Equal(uint8(0xF0), m.Memory[0x09F-4])
	assert.Equal(uint8(0x80), m.Memory[0x09F])
	assert.Equal(uint8(0), m.Memory[0x0A0])
	assert.Equal(uint16(0), m.Pc)
	assert.Equal(uint16(0), m.I)
	assert.Equal([16]uint8{}, m.V)
	assert.True(m.Stack.Empty())
	assert.Equal(0, m.Display.Lit())
	assert.False(m.Dirty())
}

func TestMachine_FontGlyph(t *testing.T) {
	assert := assert.New(t)

	assert.Equal([]uint8{0xF0, 0x90, 0x90, 0x90, 0xF0}, FontGlyph(0))
	assert.Equal([]uint8{0xF0, 0x80, 0xF0, 0x80, 0x80}, FontGlyph(0xF))
	assert.Equal(FontGlyph(0x1), FontGlyph(0x11))

	glyph := FontGlyph(0)
	glyph[0] = 0
	assert.Equal(uint8(0xF0), FontGlyph(0)[0])
}

func TestMachine_LoadProgram(t *testing.T) {
	assert := assert.New(t)

	m := NewMachine()
	err := m.LoadProgram(bytes.NewReader([]uint8{0x00, 0xE0, 0x12, 0x00}))
	assert.NoError(err)
	assert.Equal(uint16(PROGRAM_START), m.Pc)
	assert.Equal([]uint8{0x00, 0xE0, 0x12, 0x00}, m.Memory[PROGRAM_START:PROGRAM_START+4])
	assert.Equal(uint8(0), m.Memory[PROGRAM_START+4])
}

func TestMachine_LoadProgram_Empty(t *testing.T) {
	assert := assert.New(t)

	m := NewMachine()
	err := m.LoadProgram(bytes.NewReader(nil))
	assert.NoError(err)
	assert.Equal(uint16(PROGRAM_START), m.Pc)
}

func TestMachine_LoadProgram_Limit(t *testing.T) {
	assert := assert.New(t)

	m := NewMachine()
	full := bytes.Repeat([]uint8{0xA5}, PROGRAM_LIMIT)
	assert.NoError(m.LoadProgram(bytes.NewReader(full)))
	assert.Equal(uint8(0xA5), m.Memory[MEMORY_SIZE-1])

	m = NewMachine()
	over := bytes.Repeat([]uint8{0xA5}, PROGRAM_LIMIT+1)
	err := m.LoadProgram(bytes.NewReader(over))
	assert.ErrorIs(err, ErrRomSize)
	assert.Equal(uint16(0), m.Pc)
	assert.Equal(uint8(0), m.Memory[PROGRAM_START])
}

func TestMachine_LoadProgram_Unreadable(t *testing.T) {
	assert := assert.New(t)

	failure := errors.New("disk on fire")

	m := NewMachine()
	err := m.LoadProgram(iotest.ErrReader(failure))
	assert.ErrorIs(err, ErrRomLoad)
	assert.ErrorIs(err, failure)
	assert.Equal(uint16(0), m.Pc)
}

func TestMachine_Dirty(t *testing.T) {
	assert := assert.New(t)

	m := NewMachine()
	m.dirty = true
	assert.True(m.Dirty())
	assert.True(m.TakeDirty())
	assert.False(m.Dirty())
	assert.False(m.TakeDirty())

	m.dirty = true
	m.ClearDirty()
	assert.False(m.Dirty())
}

func TestMachine_Keys(t *testing.T) {
	assert := assert.New(t)

	m := NewMachine()
	m.SetKey(0x3, true)
	m.SetKey(0x1F, true)
	assert.True(m.Key(0x3))
	assert.True(m.Key(0xF))
	assert.True(m.Key(0x13))
	assert.False(m.Key(0x4))

	m.SetKey(0x3, false)
	assert.False(m.Key(0x3))

	m.ClearKeys()
	assert.Equal([KEY_COUNT]bool{}, m.Keys)
}

func TestMachine_NonZeroMemory(t *testing.T) {
	assert := assert.New(t)

	m := NewMachine()
	assert.NoError(m.LoadProgram(bytes.NewReader([]uint8{0x60, 0x00, 0x00, 0x2A})))

	cells := map[uint16]uint8{}
	last := -1
	for addr, value := range m.NonZeroMemory() {
		assert.Greater(int(addr), last)
		last = int(addr)
		assert.NotZero(value)
		cells[addr] = value
	}

	assert.Equal(uint8(0x60), cells[PROGRAM_START])
	assert.Equal(uint8(0x2A), cells[PROGRAM_START+3])
	_, ok := cells[PROGRAM_START+1]
	assert.False(ok)
	assert.Equal(uint8(0xF0), cells[FONT_BASE])

	count := 0
	for range m.NonZeroMemory() {
		count++
		if count == 3 {
			break
		}
	}
	assert.Equal(3, count)
}

func TestMachine_Reset(t *testing.T) {
	assert := assert.New(t)

	m := NewMachine()
	m.V[3] = 9
	m.Memory[FONT_BASE] = 0
	m.Display[1][1] = true
	m.Stack.Push(0x222)
	m.Reset()

	assert.Equal(NewMachine(), m)
}

func TestFramebuffer(t *testing.T) {
	assert := assert.New(t)

	var fb Framebuffer
	fb[0][1] = true
	fb[31][63] = true

	assert.True(fb.Pixel(1, 0))
	assert.True(fb.Pixel(63, 31))
	assert.False(fb.Pixel(64, 0))
	assert.False(fb.Pixel(-1, 0))
	assert.Equal(2, fb.Lit())

	text := fb.String()
	assert.Equal(SCREEN_HEIGHT*(SCREEN_WIDTH+1), len(text))
	assert.Equal(".#..", text[:4])

	fb.Clear()
	assert.Equal(0, fb.Lit())
}
