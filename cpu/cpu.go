package cpu

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"
	"math/rand/v2"
)

var _cpu_defines = map[string]string{
	"MEMORY_SIZE":   fmt.Sprintf("0x%x", MEMORY_SIZE),
	"FONT_BASE":     fmt.Sprintf("0x%x", FONT_BASE),
	"FONT_GLYPH":    fmt.Sprintf("%d", FONT_GLYPH),
	"PROGRAM_START": fmt.Sprintf("0x%x", PROGRAM_START),
	"SCREEN_WIDTH":  fmt.Sprintf("%d", SCREEN_WIDTH),
	"SCREEN_HEIGHT": fmt.Sprintf("%d", SCREEN_HEIGHT),
	"STACK_LIMIT":   fmt.Sprintf("%d", STACK_LIMIT),
}

// ExecState is the execution state of the Cpu.
type ExecState int

const (
	STATE_RUNNING      = ExecState(0) // Fetching instructions.
	STATE_AWAITING_KEY = ExecState(1) // Blocked on a key press.
)

func (state ExecState) String() string {
	switch state {
	case STATE_RUNNING:
		return "running"
	case STATE_AWAITING_KEY:
		return "awaiting-key"
	}
	return fmt.Sprintf("ExecState(%d)", int(state))
}

// RandomSource supplies the random bytes for the rnd instruction.
type RandomSource func() uint8

// Cpu is the execution engine for a Machine.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	*Machine              // Machine state.
	Random   RandomSource // Random byte source.

	Ticks int // Executed cycle counter.

	state   ExecState // Current execution state.
	waitReg uint8     // Register receiving the awaited key.
}

// NewCpu creates a new CPU attached to a freshly initialized Machine.
func NewCpu() (cpu *Cpu) {
	cpu = &Cpu{
		Machine: NewMachine(),
		Random: func() uint8 {
			return uint8(rand.UintN(256))
		},
	}

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// Reset the machine, and return to the running state.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	cpu.Machine.Reset()
	cpu.Ticks = 0
	cpu.state = STATE_RUNNING
	cpu.waitReg = 0
}

// State returns the current execution state.
func (cpu *Cpu) State() ExecState {
	return cpu.state
}

// WaitRegister returns the register awaiting a key press, if any.
func (cpu *Cpu) WaitRegister() (reg uint8, ok bool) {
	if cpu.state != STATE_AWAITING_KEY {
		return
	}
	return cpu.waitReg, true
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	text += fmt.Sprintf("% 5s: %03X\n", "pc", cpu.Pc)
	text += fmt.Sprintf("% 5s: %03X\n", "i", cpu.I)
	if val, ok := cpu.Stack.Peek(); ok {
		text += fmt.Sprintf("% 5s: %03X (%d)\n", "stack", val, cpu.Stack.Depth)
	} else {
		text += fmt.Sprintf("% 5s: --- (0)\n", "stack")
	}
	text += fmt.Sprintf("% 5s: %02X\n", "dt", cpu.Delay)
	text += fmt.Sprintf("% 5s: %02X\n", "st", cpu.Sound)
	for n, val := range cpu.V {
		text += fmt.Sprintf("% 5s: %02X\n", fmt.Sprintf("v%x", n), val)
	}
	text += fmt.Sprintf("% 5s: %v\n", "state", cpu.state)

	return
}

// FetchCode fetches the instruction word at the program counter, and
// advances the program counter past it.
func (cpu *Cpu) FetchCode() (code Code) {
	pc := cpu.Pc
	code = Code(cpu.read(pc))<<8 | Code(cpu.read(pc+1))
	cpu.Pc = pc + 2
	return
}

// Tick executes a single CPU cycle.
//
// While awaiting a key, the cycle rescans the keypad instead of fetching.
func (cpu *Cpu) Tick() (err error) {
	if cpu.state == STATE_AWAITING_KEY {
		if key, ok := cpu.pressedKey(); ok {
			cpu.V[cpu.waitReg] = key
			cpu.state = STATE_RUNNING
			if cpu.Verbose {
				log.Printf("cpu: key %x to v%x", key, cpu.waitReg)
			}
		}
		cpu.Ticks++
		return
	}

	pc := cpu.Pc
	code := cpu.FetchCode()

	inst, err := Decode(code)
	if err != nil {
		return
	}

	if cpu.Verbose {
		log.Printf("%03x: %v", pc, inst)
	}

	err = cpu.Execute(inst)
	if err != nil {
		err = errors.Join(ErrOpcode(code), err)
		return
	}

	cpu.Ticks++

	return
}

// Step executes up to maxCycles cycles. It stops early on an error, or
// when the Cpu is awaiting a key press.
func (cpu *Cpu) Step(maxCycles int) (cycles int, err error) {
	for cycles < maxCycles {
		err = cpu.Tick()
		if err != nil {
			return
		}
		cycles++

		if cpu.state == STATE_AWAITING_KEY {
			break
		}
	}

	return
}

// TickTimers decrements the delay and sound timers, stopping at zero.
func (cpu *Cpu) TickTimers() {
	if cpu.Delay > 0 {
		cpu.Delay--
	}
	if cpu.Sound > 0 {
		cpu.Sound--
	}
}

// pressedKey returns the lowest index pressed key.
func (cpu *Cpu) pressedKey() (key uint8, ok bool) {
	for n, pressed := range cpu.Keys {
		if pressed {
			return uint8(n), true
		}
	}
	return
}

// skipIf skips the next instruction when cond holds.
func (cpu *Cpu) skipIf(cond bool) {
	if cond {
		cpu.Pc += 2
	}
}

// flag converts a condition to the vf convention.
func flag(cond bool) uint8 {
	if cond {
		return 1
	}
	return 0
}

// Execute executes a single decoded instruction.
func (cpu *Cpu) Execute(inst Instruction) (err error) {
	v := &cpu.V
	x, y := inst.X, inst.Y

	switch inst.Op {
	case OP_CLS:
		cpu.Display.Clear()
		cpu.dirty = true
	case OP_RET:
		pc, ok := cpu.Stack.Pop()
		if !ok {
			err = ErrStackEmpty
			return
		}
		cpu.Pc = pc
	case OP_JP:
		cpu.Pc = inst.NNN
	case OP_CALL:
		if !cpu.Stack.Push(cpu.Pc) {
			err = ErrStackFull
			return
		}
		cpu.Pc = inst.NNN
	case OP_SE_IMM:
		cpu.skipIf(v[x] == inst.NN)
	case OP_SNE_IMM:
		cpu.skipIf(v[x] != inst.NN)
	case OP_SE_REG:
		cpu.skipIf(v[x] == v[y])
	case OP_SNE_REG:
		cpu.skipIf(v[x] != v[y])
	case OP_LD_IMM:
		v[x] = inst.NN
	case OP_ADD_IMM:
		v[x] += inst.NN
	case OP_LD_REG:
		v[x] = v[y]
	case OP_OR:
		v[x] |= v[y]
	case OP_AND:
		v[x] &= v[y]
	case OP_XOR:
		v[x] ^= v[y]
	case OP_ADD_REG:
		sum := uint16(v[x]) + uint16(v[y])
		v[x] = uint8(sum)
		v[REG_FLAG] = flag(sum > 0xff)
	case OP_SUB:
		a, b := v[x], v[y]
		v[REG_FLAG] = flag(a >= b)
		v[x] = a - b
	case OP_SUBN:
		a, b := v[x], v[y]
		v[REG_FLAG] = flag(b >= a)
		v[x] = b - a
	case OP_SHR:
		b := v[y]
		v[REG_FLAG] = b & 1
		v[x] = b >> 1
	case OP_SHL:
		b := v[y]
		v[REG_FLAG] = b >> 7
		v[x] = b << 1
	case OP_LD_I:
		cpu.I = inst.NNN
	case OP_JP_V0:
		cpu.Pc = inst.NNN + uint16(v[0])
	case OP_RND:
		v[x] = cpu.Random() & inst.NN
	case OP_DRW:
		cpu.draw(v[x], v[y], inst.N)
	case OP_SKP:
		cpu.skipIf(cpu.Key(v[x]))
	case OP_SKNP:
		cpu.skipIf(!cpu.Key(v[x]))
	case OP_LD_VX_DT:
		v[x] = cpu.Delay
	case OP_LD_DT_VX:
		cpu.Delay = v[x]
	case OP_LD_ST_VX:
		cpu.Sound = v[x]
	case OP_ADD_I_VX:
		cpu.I += uint16(v[x])
	case OP_LD_VX_K:
		if key, ok := cpu.pressedKey(); ok {
			v[x] = key
		} else {
			cpu.state = STATE_AWAITING_KEY
			cpu.waitReg = x
		}
	case OP_LD_F_VX:
		cpu.I = FONT_BASE + uint16(v[x]&0xf)*FONT_GLYPH
	case OP_LD_B_VX:
		value := v[x]
		cpu.write(cpu.I, value/100)
		cpu.write(cpu.I+1, (value/10)%10)
		cpu.write(cpu.I+2, value%10)
	case OP_LD_MEM_VX:
		for n := range uint16(x) + 1 {
			cpu.write(cpu.I+n, v[n])
		}
	case OP_LD_VX_MEM:
		for n := range uint16(x) + 1 {
			v[n] = cpu.read(cpu.I + n)
		}
	default:
		err = ErrOpcodeInvalid
		return
	}

	return
}

// draw XORs an n row sprite from memory at I onto the display.
//
// The origin wraps around the screen; the sprite body is clipped at the
// right and bottom edges. vf is set if any lit pixel is turned off.
func (cpu *Cpu) draw(vx, vy uint8, rows uint8) {
	x0 := int(vx) % SCREEN_WIDTH
	y0 := int(vy) % SCREEN_HEIGHT

	cpu.V[REG_FLAG] = 0

	for row := range int(rows) {
		y := y0 + row
		if y >= SCREEN_HEIGHT {
			break
		}
		sprite := cpu.read(cpu.I + uint16(row))
		for col := range 8 {
			x := x0 + col
			if x >= SCREEN_WIDTH {
				break
			}
			if (sprite>>(7-col))&1 == 0 {
				continue
			}
			if cpu.Display[y][x] {
				cpu.V[REG_FLAG] = 1
			}
			cpu.Display[y][x] = !cpu.Display[y][x]
		}
	}

	cpu.dirty = true
}
