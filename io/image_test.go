package io

import (
	"bytes"
	"errors"
	"slices"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/vole/cpu"
)

func TestImage_Tokens(t *testing.T) {
	assert := assert.New(t)

	img := &Image{Input: strings.NewReader("L1001000  H0000000\n\t2F\n\nzz ")}
	tokens := slices.Collect(img.Tokens())
	assert.NoError(img.Err())
	assert.Equal([]string{"L1001000", "H0000000", "2F", "zz"}, tokens)

	img = &Image{Input: strings.NewReader("")}
	assert.Empty(slices.Collect(img.Tokens()))
	assert.NoError(img.Err())
}

func TestLoadImage(t *testing.T) {
	assert := assert.New(t)

	mem := cpu.NewMemory()
	mem.Write(5, "55")

	count, err := LoadImage(strings.NewReader("L1001000 H0000000 2F"), mem)
	assert.NoError(err)
	assert.Equal(3, count)

	value, _ := mem.Read(2)
	assert.Equal(cpu.Cell("2F"), value)
	value, _ = mem.Read(5)
	assert.Equal(cpu.Cell("55"), value, "cells past the image are untouched")
}

func TestLoadImage_Overflow(t *testing.T) {
	assert := assert.New(t)

	text := strings.Repeat("01 ", cpu.MEMORY_SIZE+1)

	mem := cpu.NewMemory()
	count, err := LoadImage(strings.NewReader(text), mem)
	assert.ErrorIs(err, cpu.ErrAddressRange)
	assert.Equal(cpu.MEMORY_SIZE, count)
}

func TestLoadImage_ReadError(t *testing.T) {
	assert := assert.New(t)

	boom := errors.New("boom")

	mem := cpu.NewMemory()
	count, err := LoadImage(iotest.ErrReader(boom), mem)
	assert.ErrorIs(err, boom)
	assert.Equal(0, count)
}

func TestWriteImage(t *testing.T) {
	assert := assert.New(t)

	cells := make([]cpu.Cell, 16)
	for n := range cells {
		cells[n] = cpu.CELL_ZERO
	}
	for n := range 10 {
		cells[n] = cpu.Cell(cpu.IntToHex(n + 1))
	}
	cells[3] = "L1001000"

	var buff bytes.Buffer
	assert.NoError(WriteImage(&buff, cells))
	assert.Equal("01 02 03 L1001000 05 06 07 08\n09 0A\n", buff.String())

	// The written image loads back into the same memory.
	mem := cpu.NewMemory()
	_, err := LoadImage(&buff, mem)
	assert.NoError(err)
	for address, cell := range cells {
		value, _ := mem.Read(address)
		assert.Equal(cell, value)
	}

	buff.Reset()
	assert.NoError(WriteImage(&buff, cells[10:]))
	assert.Equal("", buff.String())
}

func TestWriteImage_Error(t *testing.T) {
	assert := assert.New(t)

	err := WriteImage(failWriter{}, []cpu.Cell{"01"})
	assert.ErrorIs(err, errWrite)
}

var errWrite = errors.New("write failed")

type failWriter struct{}

func (failWriter) Write(p []byte) (int, error) {
	return 0, errWrite
}

func TestDump(t *testing.T) {
	assert := assert.New(t)

	regs := cpu.NewRegisterFile()
	regs.Write(1, "2F")
	regs.Write(15, "FF")

	var buff bytes.Buffer
	assert.NoError(Dump(&buff, regs))
	assert.Equal("register:\n00: 00 2F 00 00 00 00 00 00 00 00 00 00 00 00 00 FF\n", buff.String())

	buff.Reset()
	mem := cpu.NewMemory()
	mem.Write(0x20, "L1001000")
	assert.NoError(Dump(&buff, mem))

	lines := strings.Split(strings.TrimSuffix(buff.String(), "\n"), "\n")
	assert.Equal(1+cpu.MEMORY_SIZE/16, len(lines))
	assert.Equal("memory:", lines[0])
	assert.True(strings.HasPrefix(lines[3], "20: L1001000 00 "), lines[3])
	assert.True(strings.HasPrefix(lines[16], "F0: "), lines[16])
}
