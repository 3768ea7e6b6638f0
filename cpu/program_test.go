package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testProgram() *Program {
	return &Program{
		Opcodes: []Opcode{
			{LineNo: 1, Addr: 0x200, Words: []string{"ld", "v0", "0x10"}, Bytes: []uint8{0x60, 0x10}},
			{LineNo: 2, Addr: 0x202, Words: []string{"jp", "DATA"}, Bytes: []uint8{0x12, 0x04}, LinkLabel: "DATA"},
			{LineNo: 3, Addr: 0x204, Words: []string{".byte", "1", "2", "3"}, Bytes: []uint8{1, 2, 3}, Data: true},
			{LineNo: 5, Addr: 0x210, Words: []string{"cls"}, Bytes: []uint8{0x00, 0xe0}},
		},
	}
}

func TestProgram_Debug(t *testing.T) {
	assert := assert.New(t)

	prog := testProgram()

	dbg := prog.Debug(0x200)
	assert.NotNil(dbg.Opcode)
	assert.Equal(1, dbg.Opcode.LineNo)
	assert.Equal(0, dbg.Index)

	dbg = prog.Debug(0x203)
	assert.NotNil(dbg.Opcode)
	assert.Equal(2, dbg.Opcode.LineNo)
	assert.Equal(1, dbg.Index)

	dbg = prog.Debug(0x206)
	assert.NotNil(dbg.Opcode)
	assert.Equal(3, dbg.Opcode.LineNo)
	assert.Equal(2, dbg.Index)

	dbg = prog.Debug(0x210)
	assert.NotNil(dbg.Opcode)
	assert.Equal(5, dbg.Opcode.LineNo)
}

func TestProgram_Debug_NotFound(t *testing.T) {
	assert := assert.New(t)

	prog := testProgram()

	for _, addr := range []uint16{0x000, 0x1fe, 0x207, 0x20f, 0x212} {
		dbg := prog.Debug(addr)
		assert.Nil(dbg.Opcode, "%#x", addr)
		assert.Equal(0, dbg.Index)
	}
}

func TestProgram_End(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(PROGRAM_START, (&Program{}).End())
	assert.Equal(0x212, testProgram().End())
}

func TestProgram_Binary(t *testing.T) {
	assert := assert.New(t)

	bin := testProgram().Binary()
	assert.Equal(0x12, len(bin))
	assert.Equal([]uint8{0x60, 0x10, 0x12, 0x04, 1, 2, 3}, bin[:7])
	assert.Equal(make([]uint8, 9), bin[7:0x10])
	assert.Equal([]uint8{0x00, 0xe0}, bin[0x10:])
}

func TestProgram_Codes(t *testing.T) {
	assert := assert.New(t)

	codes := map[uint16]Code{}
	for addr, code := range testProgram().Codes() {
		codes[addr] = code
	}

	assert.Equal(map[uint16]Code{
		0x200: 0x6010,
		0x202: 0x1204,
		0x210: 0x00e0,
	}, codes)

	// Early termination.
	count := 0
	for range testProgram().Codes() {
		count++
		break
	}
	assert.Equal(1, count)
}
