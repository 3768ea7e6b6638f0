package io

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"testing/iotest"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/chip8/cpu"
)

func TestReadRom(t *testing.T) {
	assert := assert.New(t)

	rom, err := ReadRom(bytes.NewReader([]uint8{0x00, 0xe0, 0x12, 0x00}))
	assert.NoError(err)
	assert.Equal(4, rom.Size())
	assert.Equal("", rom.Name)

	data, err := io.ReadAll(rom.Reader())
	assert.NoError(err)
	assert.Equal([]uint8{0x00, 0xe0, 0x12, 0x00}, data)

	m := cpu.NewMachine()
	assert.NoError(m.LoadProgram(rom.Reader()))
	assert.Equal(uint8(0xe0), m.Memory[cpu.PROGRAM_START+1])
}

func TestReadRom_Limit(t *testing.T) {
	assert := assert.New(t)

	rom, err := ReadRom(bytes.NewReader(make([]uint8, cpu.PROGRAM_LIMIT)))
	assert.NoError(err)
	assert.Equal(cpu.PROGRAM_LIMIT, rom.Size())

	rom, err = ReadRom(bytes.NewReader(make([]uint8, cpu.PROGRAM_LIMIT+1)))
	assert.ErrorIs(err, cpu.ErrRomSize)
	assert.Nil(rom)
}

func TestReadRom_Errors(t *testing.T) {
	assert := assert.New(t)

	_, err := ReadRom(bytes.NewReader(nil))
	assert.ErrorIs(err, ErrRomEmpty)

	broken := errors.New("broken")
	_, err = ReadRom(iotest.ErrReader(broken))
	assert.ErrorIs(err, cpu.ErrRomLoad)
	assert.ErrorIs(err, broken)
}

func TestLoadRom(t *testing.T) {
	assert := assert.New(t)

	fsys := fstest.MapFS{
		"roms/pong.ch8": &fstest.MapFile{Data: []uint8{0x6a, 0x02}},
	}

	rom, err := LoadRom(fsys, "roms/pong.ch8")
	assert.NoError(err)
	assert.Equal("pong.ch8", rom.Name)
	assert.Equal([]uint8{0x6a, 0x02}, rom.Data)

	_, err = LoadRom(fsys, "roms/missing.ch8")
	assert.ErrorIs(err, cpu.ErrRomLoad)
	assert.ErrorIs(err, os.ErrNotExist)
}

func TestSaveRom(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	rom := &Rom{Data: []uint8{0x00, 0xe0}}

	err := SaveRom(DirFS(dir), "out.ch8", rom)
	assert.NoError(err)

	data, err := os.ReadFile(filepath.Join(dir, "out.ch8"))
	assert.NoError(err)
	assert.Equal(rom.Data, data)

	loaded, err := LoadRom(os.DirFS(dir), "out.ch8")
	assert.NoError(err)
	assert.Equal(rom.Data, loaded.Data)

	err = SaveRom(DirFS(filepath.Join(dir, "missing")), "out.ch8", rom)
	assert.ErrorIs(err, os.ErrNotExist)
}
