package cpu

import (
	"strings"
)

// Framebuffer is the monochrome pixel grid, indexed [row][column].
type Framebuffer [SCREEN_HEIGHT][SCREEN_WIDTH]bool

// Pixel returns the state of the pixel at column x, row y.
// Coordinates outside the screen read as dark.
func (fb *Framebuffer) Pixel(x, y int) bool {
	if x < 0 || y < 0 || x >= SCREEN_WIDTH || y >= SCREEN_HEIGHT {
		return false
	}
	return fb[y][x]
}

// Lit returns the number of lit pixels.
func (fb *Framebuffer) Lit() (count int) {
	for _, row := range fb {
		for _, pixel := range row {
			if pixel {
				count++
			}
		}
	}
	return
}

// Clear darkens every pixel.
func (fb *Framebuffer) Clear() {
	for y := range fb {
		clear(fb[y][:])
	}
}

// String renders the framebuffer as lines of '#' and '.'.
func (fb *Framebuffer) String() string {
	var sb strings.Builder
	for _, row := range fb {
		for _, pixel := range row {
			if pixel {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
