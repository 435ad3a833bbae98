package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"

	"github.com/ezrec/vole/emulator"
)

var errWrite = errors.New("write failed")

type failWriter struct{}

func (failWriter) Write(p []byte) (int, error) {
	return 0, errWrite
}

// errorEntries counts the error level entries of hook.
func errorEntries(hook *test.Hook) (count int) {
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.ErrorLevel {
			count++
		}
	}

	return
}

func TestMenu(t *testing.T) {
	assert := assert.New(t)

	hook := test.NewGlobal()
	defer hook.Reset()

	emu := emulator.NewEmulatorAt(0)
	emu.Cpu.Log = nil
	emu.Memory.Write(0, "H0000000")

	var out bytes.Buffer
	menu(emu, strings.NewReader("3\n2\n9\n4\n"), &out)

	text := out.String()
	assert.Contains(text, "1. Load file\n")
	assert.Contains(text, "memory:\n")
	assert.Contains(text, "Machine halted.\n")
	assert.Contains(text, "Invalid choice.\n")
	assert.True(strings.HasSuffix(text, "Exiting program.\n"))
	assert.Equal(0, errorEntries(hook))
}

func TestMenu_DumpError(t *testing.T) {
	assert := assert.New(t)

	hook := test.NewGlobal()
	defer hook.Reset()

	emu := emulator.NewEmulatorAt(0)
	emu.Cpu.Log = nil
	emu.Memory.Write(0, "H0000000")

	// Print, then step.
	menu(emu, strings.NewReader("3\n2\n"), failWriter{})

	if assert.Equal(2, errorEntries(hook)) {
		assert.Equal(errWrite.Error(), hook.LastEntry().Message)
	}
}

func TestDump(t *testing.T) {
	assert := assert.New(t)

	hook := test.NewGlobal()
	defer hook.Reset()

	emu := emulator.NewEmulatorAt(0)

	var out bytes.Buffer
	dump(emu, &out)
	assert.Contains(out.String(), "pc: 00\n")
	assert.Equal(0, errorEntries(hook))

	dump(emu, failWriter{})
	assert.Equal(1, errorEntries(hook))
}
