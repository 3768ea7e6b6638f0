package cpu

import (
	"fmt"
	"strings"
)

// Code is a raw 16-bit instruction word.
type Code uint16

// Class returns the leading nibble of the instruction word.
func (code Code) Class() uint8 {
	return uint8((code >> 12) & 0xf)
}

// X returns the first register operand nibble.
func (code Code) X() uint8 {
	return uint8((code >> 8) & 0xf)
}

// Y returns the second register operand nibble.
func (code Code) Y() uint8 {
	return uint8((code >> 4) & 0xf)
}

// N returns the lowest nibble.
func (code Code) N() uint8 {
	return uint8(code & 0xf)
}

// NN returns the low byte.
func (code Code) NN() uint8 {
	return uint8(code & 0xff)
}

// NNN returns the low 12 bits.
func (code Code) NNN() uint16 {
	return uint16(code & 0xfff)
}

// CodeOp is an instruction variant.
type CodeOp int

const (
	OP_INVALID   = CodeOp(iota)
	OP_CLS       // 00E0
	OP_RET       // 00EE
	OP_JP        // 1nnn
	OP_CALL      // 2nnn
	OP_SE_IMM    // 3xnn
	OP_SNE_IMM   // 4xnn
	OP_SE_REG    // 5xy0
	OP_LD_IMM    // 6xnn
	OP_ADD_IMM   // 7xnn
	OP_LD_REG    // 8xy0
	OP_OR        // 8xy1
	OP_AND       // 8xy2
	OP_XOR       // 8xy3
	OP_ADD_REG   // 8xy4
	OP_SUB       // 8xy5
	OP_SHR       // 8xy6
	OP_SUBN      // 8xy7
	OP_SHL       // 8xyE
	OP_SNE_REG   // 9xy0
	OP_LD_I      // Annn
	OP_JP_V0     // Bnnn
	OP_RND       // Cxnn
	OP_DRW       // Dxyn
	OP_SKP       // Ex9E
	OP_SKNP      // ExA1
	OP_LD_VX_DT  // Fx07
	OP_LD_VX_K   // Fx0A
	OP_LD_DT_VX  // Fx15
	OP_LD_ST_VX  // Fx18
	OP_ADD_I_VX  // Fx1E
	OP_LD_F_VX   // Fx29
	OP_LD_B_VX   // Fx33
	OP_LD_MEM_VX // Fx55
	OP_LD_VX_MEM // Fx65
)

// codeForm describes the encoding and assembler syntax of one CodeOp.
//
// Syntax words are literal, except for the operand placeholders:
// vX and vY (registers), N (4 bits), NN (8 bits) and NNN (12 bits).
type codeForm struct {
	Op      CodeOp
	Pattern Code
	Mask    Code
	Syntax  string
}

var codeForms = []codeForm{
	{OP_CLS, 0x00E0, 0xFFFF, "cls"},
	{OP_RET, 0x00EE, 0xFFFF, "ret"},
	{OP_JP, 0x1000, 0xF000, "jp NNN"},
	{OP_CALL, 0x2000, 0xF000, "call NNN"},
	{OP_SE_IMM, 0x3000, 0xF000, "se vX NN"},
	{OP_SNE_IMM, 0x4000, 0xF000, "sne vX NN"},
	{OP_SE_REG, 0x5000, 0xF00F, "se vX vY"},
	{OP_LD_IMM, 0x6000, 0xF000, "ld vX NN"},
	{OP_ADD_IMM, 0x7000, 0xF000, "add vX NN"},
	{OP_LD_REG, 0x8000, 0xF00F, "ld vX vY"},
	{OP_OR, 0x8001, 0xF00F, "or vX vY"},
	{OP_AND, 0x8002, 0xF00F, "and vX vY"},
	{OP_XOR, 0x8003, 0xF00F, "xor vX vY"},
	{OP_ADD_REG, 0x8004, 0xF00F, "add vX vY"},
	{OP_SUB, 0x8005, 0xF00F, "sub vX vY"},
	{OP_SHR, 0x8006, 0xF00F, "shr vX vY"},
	{OP_SUBN, 0x8007, 0xF00F, "subn vX vY"},
	{OP_SHL, 0x800E, 0xF00F, "shl vX vY"},
	{OP_SNE_REG, 0x9000, 0xF00F, "sne vX vY"},
	{OP_LD_I, 0xA000, 0xF000, "ld i NNN"},
	{OP_JP_V0, 0xB000, 0xF000, "jp v0 NNN"},
	{OP_RND, 0xC000, 0xF000, "rnd vX NN"},
	{OP_DRW, 0xD000, 0xF000, "drw vX vY N"},
	{OP_SKP, 0xE09E, 0xF0FF, "skp vX"},
	{OP_SKNP, 0xE0A1, 0xF0FF, "sknp vX"},
	{OP_LD_VX_DT, 0xF007, 0xF0FF, "ld vX dt"},
	{OP_LD_VX_K, 0xF00A, 0xF0FF, "ld vX k"},
	{OP_LD_DT_VX, 0xF015, 0xF0FF, "ld dt vX"},
	{OP_LD_ST_VX, 0xF018, 0xF0FF, "ld st vX"},
	{OP_ADD_I_VX, 0xF01E, 0xF0FF, "add i vX"},
	{OP_LD_F_VX, 0xF029, 0xF0FF, "ld f vX"},
	{OP_LD_B_VX, 0xF033, 0xF0FF, "ld b vX"},
	{OP_LD_MEM_VX, 0xF055, 0xF0FF, "ld [i] vX"},
	{OP_LD_VX_MEM, 0xF065, 0xF0FF, "ld vX [i]"},
}

// formOf returns the encoding description of an operation.
func formOf(op CodeOp) (form codeForm, ok bool) {
	for _, form = range codeForms {
		if form.Op == op {
			return form, true
		}
	}
	return codeForm{}, false
}

// String returns the assembler mnemonic of the operation.
func (op CodeOp) String() string {
	form, ok := formOf(op)
	if !ok {
		return "invalid"
	}
	mnemonic, _, _ := strings.Cut(form.Syntax, " ")
	return mnemonic
}

// Instruction is a decoded instruction. Only the operands used by Op are set.
type Instruction struct {
	Op  CodeOp
	X   uint8
	Y   uint8
	N   uint8
	NN  uint8
	NNN uint16
}

// Decode maps an instruction word to its instruction variant.
func Decode(code Code) (inst Instruction, err error) {
	for _, form := range codeForms {
		if code&form.Mask != form.Pattern {
			continue
		}
		inst.Op = form.Op
		for _, word := range strings.Fields(form.Syntax) {
			switch word {
			case "vX":
				inst.X = code.X()
			case "vY":
				inst.Y = code.Y()
			case "N":
				inst.N = code.N()
			case "NN":
				inst.NN = code.NN()
			case "NNN":
				inst.NNN = code.NNN()
			}
		}
		return
	}

	err = ErrOpcode(code)
	return
}

// Encode returns the instruction word for an instruction.
// Operands are truncated to their field widths.
func Encode(inst Instruction) (code Code, err error) {
	form, ok := formOf(inst.Op)
	if !ok {
		err = ErrOpcodeInvalid
		return
	}

	code = form.Pattern
	for _, word := range strings.Fields(form.Syntax) {
		switch word {
		case "vX":
			code |= Code(inst.X&0xf) << 8
		case "vY":
			code |= Code(inst.Y&0xf) << 4
		case "N":
			code |= Code(inst.N & 0xf)
		case "NN":
			code |= Code(inst.NN)
		case "NNN":
			code |= Code(inst.NNN & 0xfff)
		}
	}

	return
}

// String returns the assembly language representation of the instruction.
func (inst Instruction) String() string {
	form, ok := formOf(inst.Op)
	if !ok {
		return "invalid"
	}

	words := strings.Fields(form.Syntax)
	for n, word := range words {
		switch word {
		case "vX":
			words[n] = fmt.Sprintf("v%x", inst.X)
		case "vY":
			words[n] = fmt.Sprintf("v%x", inst.Y)
		case "N":
			words[n] = fmt.Sprintf("%d", inst.N)
		case "NN":
			words[n] = fmt.Sprintf("0x%02x", inst.NN)
		case "NNN":
			words[n] = fmt.Sprintf("0x%03x", inst.NNN)
		}
	}

	return strings.Join(words, " ")
}
