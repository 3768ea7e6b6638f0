// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the macro definition.
	Args   []string // Arguments for the macro.
	Lines  []string // Lines of macro text to expand.
}

// Predefined system equates
var sysEquate = func() (equ map[string]string) {
	equ = maps.Clone(_cpu_defines)
	equ["LINENO"] = "0"
	return
}()

// Assembler is a single pass macro assembler for CHIP-8 programs.
type Assembler struct {
	Verbose bool     // If set, verbosely logs the assembler actions.
	Opcode  []Opcode // List of generated opcodes.

	predefine map[string]string   // Predefines
	Label     map[string]int      // Map of labels to addresses.
	Equate    map[string]string   // Map of equates.
	Macro     map[string](*Macro) // Map of macros.

	addr int // Address of the next generated byte.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// reserved operand names, which can never be labels.
var reserved = map[string]bool{
	"i": true, "[i]": true, "dt": true, "st": true, "k": true, "f": true, "b": true,
}

// valueOf returns the value of a simple word.
func (asm *Assembler) valueOf(word string) (value int64, err error) {
	invert := false
	if strings.HasPrefix(word, "~") {
		invert = true
		word = word[1:]
	}
	if len(word) == 0 {
		err = ErrParseNumber(word)
		return
	}
	if word[0] == '\'' {
		// Character quotes should have been expanded into
		// values in parseLine()
		err = ErrParseCharacter(strings.Trim(word, "'"))
		return
	}
	value, err = strconv.ParseInt(word, 0, 32)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	if invert {
		value = ^value
	}

	return
}

// fieldValue returns the value of a word that must fit in a field of
// the given bit width. Negative values are stored in two's complement.
func (asm *Assembler) fieldValue(word string, width uint) (value uint16, err error) {
	v64, err := asm.valueOf(word)
	if err != nil {
		return
	}

	limit := int64(1) << width
	if v64 >= limit || v64 < -(limit>>1) {
		err = ErrValueRange
		return
	}

	value = uint16(v64 & (limit - 1))
	return
}

// register parses a vN register name.
func register(word string) (reg uint8, ok bool) {
	if len(word) != 2 || (word[0] != 'v' && word[0] != 'V') {
		return
	}
	value, err := strconv.ParseUint(word[1:], 16, 4)
	if err != nil {
		return
	}
	return uint8(value), true
}

// isLabel returns true if the word can name a label.
func isLabel(word string) bool {
	if reserved[strings.ToLower(word)] {
		return false
	}
	if _, ok := register(word); ok {
		return false
	}
	return regexp.MustCompile(`^[A-Za-z_.@][A-Za-z0-9_.@]*$`).MatchString(word)
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var v64 int64
		v64, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			err = nil
			continue
		}
		pred[key] = starlark.MakeInt64(v64)
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value, ok = st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	return
}

// parseLine parses a single line into words, handling equates, labels and
// macro expansion.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do 'x' evaluations
	re := regexp.MustCompile(`'\\?[^']'`)
	line = re.ReplaceAllStringFunc(line, func(word string) string {
		str := word[1 : len(word)-1]
		if str[0] == '\\' {
			str = str[1:]
			switch str {
			case "\\":
				str = "\\"
			case "n":
				str = "\n"
			case "0":
				str = "\000"
			default:
				return word
			}
		} else if len(str) != 1 {
			return word
		}
		return fmt.Sprintf("%v", str[0])
	})

	// Do $() evaluations
	re = regexp.MustCompile(`\$\([^\$]*\)`)
	line = re.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%d", value)
	})
	if err != nil {
		return
	}

	words = strings.FieldsFunc(line, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ','
	})

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, word := range words {
		// Check for equate next
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	for strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		if asm.Label == nil {
			asm.Label = make(map[string]int, 16)
		}
		asm.Label[label] = asm.addr
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	// .macro processing
	macro, ok := asm.Macro[words[0]]
	if ok {
		name := words[0]

		args := words[1:]
		if len(args) != len(macro.Args) {
			err = ErrMacroSyntax
			return
		}
		// Turn args into equs
		old_equate := maps.Clone(asm.Equate)
		for n, arg := range macro.Args {
			asm.Equate[arg] = args[n]
		}
		defer func() { asm.Equate = old_equate }()

		// Local labels are unique per expansion.
		local := fmt.Sprintf("%v_%v_", name, lineno)
		for n, line := range macro.Lines {
			lineno := macro.LineNo + n

			line = strings.ReplaceAll(line, "@", local)
			words, err = asm.parseLine(line, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}

			err = asm.parseWords(words, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}
		}
		words = nil
		return
	}

	return
}

// Parse parses an input stream into a Program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int
	var macro *Macro

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	clear(asm.Label)
	asm.Opcode = asm.Opcode[:0]
	asm.addr = PROGRAM_START
	if asm.Macro == nil {
		asm.Macro = make(map[string](*Macro))
	}
	clear(asm.Macro)
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		text_comment := strings.Split(text, ";")
		line = strings.TrimSpace(text_comment[0])
		words := strings.Fields(line)

		// .macro NAME arg...
		if len(words) > 0 && words[0] == ".macro" {
			if macro != nil {
				err = ErrMacroNesting
				return
			}
			if len(words) < 2 {
				err = ErrMacroSyntax
				return
			}
			_, ok := asm.Macro[words[1]]
			if ok {
				err = ErrMacroDuplicate
				return
			}
			macro = &Macro{
				LineNo: lineno + 1,
			}
			if len(words) > 2 {
				macro.Args = words[2:]
			}
			asm.Macro[words[1]] = macro
			continue
		}

		if len(words) > 0 && words[0] == ".endm" {
			if macro == nil {
				err = ErrMacroLonelyEndm
				return
			}
			macro = nil
			continue
		}

		if macro != nil {
			macro.Lines = append(macro.Lines, line)
			continue
		}

		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	if err = scanner.Err(); err != nil {
		return
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	// Final linking of address labels.
	for n := range asm.Opcode {
		op := &asm.Opcode[n]

		if len(op.LinkLabel) == 0 {
			continue
		}
		label := op.LinkLabel
		addr, ok := asm.Label[label]
		if !ok {
			lineno = op.LineNo
			line = strings.Join(op.Words, " ")
			err = ErrLabelMissing(label)
			return
		}
		op.Bytes[0] |= uint8((addr >> 8) & 0xf)
		op.Bytes[1] |= uint8(addr & 0xff)
	}

	prog = &Program{
		Opcodes: slices.Clone(asm.Opcode),
	}

	return
}

// emit appends generated bytes for a source line.
func (asm *Assembler) emit(op Opcode) (err error) {
	if asm.addr+len(op.Bytes) > MEMORY_SIZE {
		err = ErrProgramSize
		return
	}
	op.Addr = asm.addr
	asm.Opcode = append(asm.Opcode, op)
	asm.addr += len(op.Bytes)
	return
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	// no-op
	if len(words) == 0 {
		return
	}

	switch strings.ToLower(words[0]) {
	case ".org":
		if len(words) != 2 {
			err = ErrOpcodeValueMissing
			return
		}
		var addr uint16
		addr, err = asm.fieldValue(words[1], 12)
		if err != nil {
			return
		}
		if int(addr) < asm.addr {
			err = ErrOrgBackwards
			return
		}
		asm.addr = int(addr)
		return
	case ".byte", "db":
		if len(words) < 2 {
			err = ErrOpcodeValueMissing
			return
		}
		data := make([]uint8, 0, len(words)-1)
		for _, word := range words[1:] {
			var value uint16
			value, err = asm.fieldValue(word, 8)
			if err != nil {
				return
			}
			data = append(data, uint8(value))
		}
		err = asm.emit(Opcode{LineNo: lineno, Words: words, Bytes: data, Data: true})
		return
	}

	inst, label, err := asm.parseInstruction(words)
	if err != nil {
		return
	}

	code, err := Encode(inst)
	if err != nil {
		return
	}

	err = asm.emit(Opcode{
		LineNo:    lineno,
		Words:     words,
		Bytes:     []uint8{uint8(code >> 8), uint8(code)},
		LinkLabel: label,
	})

	return
}

// parseInstruction matches words against the syntax of every instruction
// form with the same mnemonic.
func (asm *Assembler) parseInstruction(words []string) (inst Instruction, label string, err error) {
	mnemonic := strings.ToLower(words[0])

	var known bool
	var most int
	for _, form := range codeForms {
		syntax := strings.Fields(form.Syntax)
		if syntax[0] != mnemonic {
			continue
		}
		known = true
		most = max(most, len(syntax))
		if len(syntax) != len(words) {
			continue
		}

		var match_err error
		inst, label, match_err = asm.matchForm(form, syntax, words)
		if match_err == nil {
			return
		}
		if err == nil {
			err = match_err
		}
	}

	switch {
	case !known:
		err = ErrInstructionInvalid
	case err != nil:
		// pass
	case len(words) > most:
		err = ErrOpcodeExtraArgs
	default:
		err = ErrOpcodeValueMissing
	}

	inst = Instruction{}
	label = ""
	return
}

// matchForm matches words against a single instruction form.
func (asm *Assembler) matchForm(form codeForm, syntax []string, words []string) (inst Instruction, label string, err error) {
	inst.Op = form.Op

	for n, want := range syntax[1:] {
		word := words[n+1]
		var value uint16
		switch want {
		case "vX", "vY":
			reg, ok := register(word)
			if !ok {
				err = ErrRegisterInvalid
				return
			}
			if want == "vX" {
				inst.X = reg
			} else {
				inst.Y = reg
			}
		case "N":
			value, err = asm.fieldValue(word, 4)
			inst.N = uint8(value)
		case "NN":
			value, err = asm.fieldValue(word, 8)
			inst.NN = uint8(value)
		case "NNN":
			value, err = asm.fieldValue(word, 12)
			if err != nil && isLabel(word) {
				err = nil
				label = word
			}
			inst.NNN = value
		default:
			if !strings.EqualFold(word, want) {
				err = ErrOpcodeInvalid
			}
		}
		if err != nil {
			return
		}
	}

	return
}
