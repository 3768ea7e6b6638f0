// Package io provides the peripherals of the CHIP-8 emulator: raw ROM
// images, a terminal display, and a QWERTY keypad mapping.
package io
