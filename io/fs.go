package io

import (
	"errors"
	"io"
	"os"
	"path/filepath"
)

// CreateFS defines a file system interface that supports creating files.
type CreateFS interface {
	// Create creates a new file for writing.
	Create(name string) (file io.WriteCloser, err error)
}

// DirFS is a CreateFS rooted at a host directory.
type DirFS string

var _ CreateFS = DirFS("")

// Create creates a new file in the directory.
func (dir DirFS) Create(name string) (file io.WriteCloser, err error) {
	return os.Create(filepath.Join(string(dir), filepath.FromSlash(name)))
}

// SaveRom writes the image to a file system.
func SaveRom(filesys CreateFS, name string, rom *Rom) (err error) {
	ouf, err := filesys.Create(name)
	if err != nil {
		return
	}
	defer func() {
		err = errors.Join(err, ouf.Close())
	}()

	_, err = ouf.Write(rom.Data)
	return
}
