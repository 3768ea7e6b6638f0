package io

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"path"

	"github.com/ezrec/chip8/cpu"
)

// Rom is a raw CHIP-8 program image, loaded at cpu.PROGRAM_START.
type Rom struct {
	Name string  // Name of the image.
	Data []uint8 // Image contents.
}

// ReadRom reads a raw image, rejecting images that will not fit in memory.
func ReadRom(r io.Reader) (rom *Rom, err error) {
	data, err := io.ReadAll(io.LimitReader(r, cpu.PROGRAM_LIMIT+1))
	if err != nil {
		err = errors.Join(cpu.ErrRomLoad, err)
		return
	}

	switch {
	case len(data) == 0:
		err = ErrRomEmpty
		return
	case len(data) > cpu.PROGRAM_LIMIT:
		err = cpu.ErrRomSize
		return
	}

	rom = &Rom{Data: data}
	return
}

// LoadRom reads a raw image from a file system.
func LoadRom(fsys fs.FS, name string) (rom *Rom, err error) {
	inf, err := fsys.Open(name)
	if err != nil {
		err = errors.Join(cpu.ErrRomLoad, err)
		return
	}
	defer inf.Close()

	rom, err = ReadRom(inf)
	if err != nil {
		return
	}

	rom.Name = path.Base(name)
	return
}

// Reader returns a reader over the image contents.
func (rom *Rom) Reader() io.Reader {
	return bytes.NewReader(rom.Data)
}

// Size returns the image size in bytes.
func (rom *Rom) Size() int {
	return len(rom.Data)
}
