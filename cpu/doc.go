// Package cpu implements the CHIP-8 virtual machine and an assembler for it.
//
// The machine consists of 4096 bytes of memory, a program counter (PC), an
// index register (I), sixteen 8-bit registers (v0-vf), a sixteen entry call
// stack, the delay and sound timers, a 64x32 monochrome framebuffer and a
// sixteen key keypad. Register vf doubles as the carry, borrow, shift-out and
// sprite collision flag.
//
// The Cpu executes instructions from the Machine one cycle at a time. It
// performs no I/O and never blocks: the caller feeds the keypad, steps the
// cycles, ticks the timers at 60Hz and renders the framebuffer when dirty.
//
// The assembler provides a mnemonic assembly language for the CHIP-8
// instruction set, supporting macros, labels, equates, data bytes and
// compile-time expression evaluation.
package cpu
