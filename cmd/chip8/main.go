// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/ezrec/chip8/emulator"
	chipio "github.com/ezrec/chip8/io"
)

const (
	KEY_CTRL_C = 0x03
	KEY_ESC    = 0x1b
)

func main() {
	var romFile string
	var compile string
	var save string
	var hz int
	var verbose bool
	var dump bool

	flag.StringVar(&romFile, "r", "", "ROM image to run")
	flag.StringVar(&compile, "c", "", ".asm file to assemble")
	flag.StringVar(&save, "s", "", "Save assembled ROM image, do not execute")
	flag.IntVar(&hz, "cpu", emulator.CPU_HZ, "CPU frequency in Hz")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.BoolVar(&dump, "d", false, "Dump non-zero memory after loading, do not execute")

	flag.Parse()

	if len(romFile) == 0 && flag.NArg() == 1 {
		romFile = flag.Arg(0)
	} else if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	if hz <= 0 {
		log.Fatalf("%v: invalid CPU frequency %v", os.Args[0], hz)
	}

	emu := emulator.NewEmulator()
	emu.Verbose = verbose
	emu.CyclesPerFrame = emulator.FrameCycles(hz)

	switch {
	case len(compile) != 0:
		inf, err := os.Open(compile)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		defer inf.Close()

		err = emu.Assemble(inf)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}

		if len(save) != 0 {
			rom := &chipio.Rom{Data: emu.Program.Binary()}
			dir := chipio.DirFS(filepath.Dir(save))
			err = chipio.SaveRom(dir, filepath.Base(save), rom)
			if err != nil {
				log.Fatalf("%v: %v", save, err)
			}
			return
		}
	case len(romFile) != 0:
		rom, err := chipio.LoadRom(os.DirFS(filepath.Dir(romFile)), filepath.Base(romFile))
		if err != nil {
			log.Fatalf("%v: %v", romFile, err)
		}

		err = emu.Reset(rom.Reader())
		if err != nil {
			log.Fatalf("%v: %v", romFile, err)
		}
	default:
		log.Fatalf("%v: no ROM image or source given", os.Args[0])
	}

	if dump {
		for addr, value := range emu.NonZeroMemory() {
			fmt.Printf("%03x: %02x\n", addr, value)
		}
		return
	}

	err := run(emu)
	if err != nil {
		log.Fatal(err)
	}
}

// run executes the emulator at 60 frames per second, until ESC or Ctrl-C.
func run(emu *emulator.Emulator) (err error) {
	host := NewTerminal()
	err = host.Start()
	if err != nil {
		return
	}
	defer host.Stop()

	disp := &chipio.Display{Output: os.Stdout}
	kb := &chipio.Keyboard{}

	err = disp.Clear()
	if err != nil {
		return
	}

	ticker := time.NewTicker(time.Second / emulator.FRAME_HZ)
	defer ticker.Stop()

	beeping := false
	for range ticker.C {
		for drained := false; !drained; {
			select {
			case b, ok := <-host.Keys:
				if !ok || b == KEY_ESC || b == KEY_CTRL_C {
					return
				}
				kb.Press(b)
			default:
				drained = true
			}
		}
		kb.Apply(emu.Machine)

		var redraw bool
		redraw, err = emu.Frame()
		if err != nil {
			return
		}

		if redraw {
			err = disp.Render(emu.Framebuffer())
			if err != nil {
				return
			}
		}

		if emu.Beeping() && !beeping {
			err = disp.Bell()
			if err != nil {
				return
			}
		}
		beeping = emu.Beeping()
	}

	return
}
