package io

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/chip8/cpu"
)

func TestDisplay_Render(t *testing.T) {
	assert := assert.New(t)

	var out bytes.Buffer
	disp := &Display{Output: &out}

	var fb cpu.Framebuffer
	fb[0][0] = true
	fb[1][63] = true

	assert.NoError(disp.Render(fb))

	text := out.String()
	assert.True(strings.HasPrefix(text, ANSI_HOME))

	rows := strings.Split(strings.TrimPrefix(text, ANSI_HOME), "\r\n")
	assert.Len(rows, cpu.SCREEN_HEIGHT+1)
	assert.Equal("", rows[cpu.SCREEN_HEIGHT])

	assert.Equal(PIXEL_ON+strings.Repeat(PIXEL_OFF, cpu.SCREEN_WIDTH-1), rows[0])
	assert.Equal(strings.Repeat(PIXEL_OFF, cpu.SCREEN_WIDTH-1)+PIXEL_ON, rows[1])
	assert.Equal(strings.Repeat(PIXEL_OFF, cpu.SCREEN_WIDTH), rows[2])
}

func TestDisplay_Clear(t *testing.T) {
	assert := assert.New(t)

	var out bytes.Buffer
	disp := &Display{Output: &out}

	assert.NoError(disp.Clear())
	assert.NoError(disp.Bell())
	assert.Equal(ANSI_CLEAR+ANSI_HOME+ANSI_BELL, out.String())
}
