package main

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// Terminal reads raw stdin keystrokes in a goroutine, and hands them to
// the frame loop over the Keys channel.
type Terminal struct {
	Keys chan byte // Keystrokes, closed at end of input.

	fd           int
	oldTermState *term.State
}

// NewTerminal creates a terminal on stdin.
func NewTerminal() *Terminal {
	return &Terminal{
		Keys: make(chan byte, 64),
		fd:   int(os.Stdin.Fd()),
	}
}

// Start puts the terminal into raw mode, and starts reading keystrokes.
// Call Stop() to restore the terminal.
func (h *Terminal) Start() (err error) {
	if term.IsTerminal(h.fd) {
		// Disable echo and line buffering.
		h.oldTermState, err = term.MakeRaw(h.fd)
		if err != nil {
			err = fmt.Errorf("raw mode: %w", err)
			return
		}
	}

	go func() {
		defer close(h.Keys)
		buf := make([]byte, 16)
		for {
			n, err := os.Stdin.Read(buf)
			for _, b := range buf[:n] {
				h.Keys <- b
			}
			if err != nil {
				return
			}
		}
	}()

	return
}

// Stop restores the terminal state.
func (h *Terminal) Stop() {
	if h.oldTermState != nil {
		_ = term.Restore(h.fd, h.oldTermState)
		h.oldTermState = nil
	}
}
