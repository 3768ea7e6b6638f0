// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"bytes"
	"fmt"
	"io"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/chip8/cpu"
	"github.com/ezrec/chip8/internal"
)

const (
	CPU_HZ   = 700 // Default instruction rate.
	FRAME_HZ = 60  // Timer and display refresh rate.
)

var _emulator_defines = map[string]string{
	"CPU_HZ":   fmt.Sprintf("%v", CPU_HZ),
	"FRAME_HZ": fmt.Sprintf("%v", FRAME_HZ),
}

// FrameCycles returns the number of cycles per frame for an instruction
// rate, rounded up.
func FrameCycles(hz int) int {
	return max(1, (hz+FRAME_HZ-1)/FRAME_HZ)
}

// Emulator state. CPU + Machine + program listing.
type Emulator struct {
	Verbose        bool         // If set, enables verbose logging.
	*cpu.Cpu                    // Reference to the CPU simulation.
	Program        *cpu.Program // Reference to the currently running program listing.
	CyclesPerFrame int          // Cycles executed by each Frame.
}

// NewEmulator creates a new emulator.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Cpu:            cpu.NewCpu(),
		Program:        &cpu.Program{},
		CyclesPerFrame: FrameCycles(CPU_HZ),
	}

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		emu.Cpu.Defines(),
	)
}

// Reset the machine, and load a raw ROM image.
func (emu *Emulator) Reset(rom io.Reader) (err error) {
	emu.Cpu.Verbose = emu.Verbose
	emu.Cpu.Reset()
	emu.Program = &cpu.Program{}

	err = emu.Cpu.LoadProgram(rom)
	if err != nil {
		return
	}

	if emu.Verbose {
		log.Printf("emulator: loaded, pc %03x", emu.Cpu.Pc)
	}

	return
}

// Assemble the source, and load the resulting program.
func (emu *Emulator) Assemble(source io.Reader) (err error) {
	asm := &cpu.Assembler{Verbose: emu.Verbose}
	for key, value := range emu.Defines() {
		asm.Predefine(key, value)
	}

	prog, err := asm.Parse(source)
	if err != nil {
		return
	}

	emu.Cpu.Reset()
	err = emu.Cpu.LoadProgram(bytes.NewReader(prog.Binary()))
	if err != nil {
		return
	}

	emu.Program = prog

	return
}

// LineNo returns the source line number of the instruction at addr.
func (emu *Emulator) LineNo(addr uint16) int {
	dbg := emu.Program.Debug(addr)
	if dbg.Opcode == nil {
		return 0
	}
	return dbg.Opcode.LineNo
}

// Step executes up to cycles instructions.
func (emu *Emulator) Step(cycles int) (done int, err error) {
	emu.Cpu.Verbose = emu.Verbose

	done, err = emu.Cpu.Step(cycles)
	if err != nil {
		// The program counter has advanced past the faulting instruction.
		addr := (emu.Cpu.Pc - 2) & cpu.ADDRESS_MASK
		err = &ErrRuntime{Addr: addr, LineNo: emu.LineNo(addr), Err: err}
	}

	return
}

// Frame runs a single 60Hz frame: the frame's cycles, then a timer tick.
// Returns true if the display needs to be redrawn.
func (emu *Emulator) Frame() (redraw bool, err error) {
	_, err = emu.Step(emu.CyclesPerFrame)
	if err != nil {
		return
	}

	emu.Cpu.TickTimers()
	redraw = emu.Cpu.TakeDirty()

	return
}

// Beeping returns true while the sound timer is active.
func (emu *Emulator) Beeping() bool {
	return emu.Cpu.Sound > 0
}
