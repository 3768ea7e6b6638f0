package io

import (
	"github.com/ezrec/chip8/cpu"
)

// Keymap maps host key bytes to CHIP-8 keypad keys.
type Keymap map[byte]uint8

// DefaultKeymap is the conventional QWERTY layout:
//
//	1 2 3 4      1 2 3 C
//	q w e r  ->  4 5 6 D
//	a s d f      7 8 9 E
//	z x c v      A 0 B F
var DefaultKeymap = Keymap{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xC,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xD,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xE,
	'z': 0xA, 'x': 0x0, 'c': 0xB, 'v': 0xF,
}

// Lookup returns the keypad key for a host key, ignoring case.
func (km Keymap) Lookup(b byte) (key uint8, ok bool) {
	if b >= 'A' && b <= 'Z' {
		b += 'a' - 'A'
	}
	key, ok = km[b]
	return
}

// Keyboard latches the keypad keys seen between frames.
type Keyboard struct {
	Keymap Keymap // Key mapping; DefaultKeymap if nil.

	latched [cpu.KEY_COUNT]bool
}

// Press latches the keypad key for a host key. Returns false if the key
// is not mapped.
func (kb *Keyboard) Press(b byte) (ok bool) {
	keymap := kb.Keymap
	if keymap == nil {
		keymap = DefaultKeymap
	}

	key, ok := keymap.Lookup(b)
	if ok {
		kb.latched[key&0xf] = true
	}
	return
}

// Apply releases all keypad keys of the machine, then presses the keys
// latched since the last Apply.
func (kb *Keyboard) Apply(m *cpu.Machine) {
	m.ClearKeys()
	for key, pressed := range kb.latched {
		if pressed {
			m.SetKey(uint8(key), true)
		}
	}
	clear(kb.latched[:])
}
