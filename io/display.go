package io

import (
	"io"
	"strings"

	"github.com/ezrec/chip8/cpu"
)

const (
	ANSI_CLEAR = "\x1b[2J" // Erase the terminal.
	ANSI_HOME  = "\x1b[H"  // Move the cursor to the top left.
	ANSI_BELL  = "\a"      // Terminal bell.
	PIXEL_ON   = "██"
	PIXEL_OFF  = "  "
)

// Display renders the framebuffer onto an ANSI terminal, two columns
// per pixel.
type Display struct {
	Output io.Writer // Terminal output.
}

// Clear erases the terminal.
func (disp *Display) Clear() (err error) {
	_, err = io.WriteString(disp.Output, ANSI_CLEAR+ANSI_HOME)
	return
}

// Render draws the framebuffer from the top left of the terminal.
func (disp *Display) Render(fb cpu.Framebuffer) (err error) {
	var sb strings.Builder

	sb.Grow(len(ANSI_HOME) + cpu.SCREEN_HEIGHT*(cpu.SCREEN_WIDTH*len(PIXEL_ON)+2))
	sb.WriteString(ANSI_HOME)
	for _, row := range fb {
		for _, lit := range row {
			if lit {
				sb.WriteString(PIXEL_ON)
			} else {
				sb.WriteString(PIXEL_OFF)
			}
		}
		// Raw mode terminals do not translate newlines.
		sb.WriteString("\r\n")
	}

	_, err = io.WriteString(disp.Output, sb.String())
	return
}

// Bell rings the terminal bell.
func (disp *Display) Bell() (err error) {
	_, err = io.WriteString(disp.Output, ANSI_BELL)
	return
}
