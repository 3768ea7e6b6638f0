package cpu

import (
	"iter"
)

// Opcode represents a line of assembled source with its generated bytes.
type Opcode struct {
	LineNo    int
	Addr      int
	Words     []string
	Bytes     []uint8
	Data      bool
	LinkLabel string
}

type Program struct {
	Opcodes []Opcode
}

type Debug struct {
	*Opcode
	Index int
}

// Debug finds the source line that generated the byte at addr.
func (prog *Program) Debug(addr uint16) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if int(addr) >= op.Addr && int(addr) < op.Addr+len(op.Bytes) {
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Index:  int(addr) - op.Addr,
			}
			break
		}
	}

	return
}

// End returns the address following the last generated byte.
func (prog *Program) End() (end int) {
	end = PROGRAM_START
	for _, op := range prog.Opcodes {
		end = max(end, op.Addr+len(op.Bytes))
	}
	return
}

// Binary returns the flat program image, to be loaded at PROGRAM_START.
func (prog *Program) Binary() (bins []uint8) {
	bins = make([]uint8, prog.End()-PROGRAM_START)
	for _, op := range prog.Opcodes {
		copy(bins[op.Addr-PROGRAM_START:], op.Bytes)
	}

	return
}

// Codes iterates over the instruction words of the program, by address.
func (prog *Program) Codes() iter.Seq2[uint16, Code] {
	return func(yield func(addr uint16, code Code) bool) {
		for _, op := range prog.Opcodes {
			if op.Data {
				continue
			}
			for n := 0; n+1 < len(op.Bytes); n += 2 {
				code := Code(op.Bytes[n])<<8 | Code(op.Bytes[n+1])
				if !yield(uint16(op.Addr+n), code) {
					return
				}
			}
		}
	}
}
