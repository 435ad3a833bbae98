// Package io reads and writes Vole program images.
//
// A program image is a sequence of whitespace separated tokens, one per
// memory cell, stored into increasing addresses from 0. Tokens are stored
// verbatim; malformed tokens are only detected when executed.
package io

import (
	"bufio"
	"io"
	"iter"
	"slices"
	"strings"

	"github.com/ezrec/vole/cpu"
	"github.com/ezrec/vole/translate"
)

// IMAGE_CELLS_PER_LINE is the number of cells per line written by WriteImage.
const IMAGE_CELLS_PER_LINE = 8

// Image reads program image tokens from Input.
type Image struct {
	Input io.Reader

	err error
}

// Tokens returns an iterator that yields each token of the input.
func (img *Image) Tokens() iter.Seq[string] {
	return func(yield func(token string) bool) {
		scanner := bufio.NewScanner(img.Input)
		scanner.Split(bufio.ScanWords)
		for scanner.Scan() {
			if !yield(scanner.Text()) {
				return
			}
		}
		img.err = scanner.Err()
	}
}

// Err returns the read error, if any, of the last Tokens iteration.
func (img *Image) Err() error {
	return img.err
}

// LoadImage stores the image tokens of r into mem, starting at address 0.
func LoadImage(r io.Reader, mem *cpu.Storage) (count int, err error) {
	img := &Image{Input: r}

	count, err = mem.Load(img.Tokens())
	if err != nil {
		return
	}

	err = img.Err()
	return
}

// WriteImage writes cells as a program image. Trailing "00" cells are
// omitted, as they match a cleared memory.
func WriteImage(w io.Writer, cells []cpu.Cell) (err error) {
	end := len(cells)
	for end > 0 && cells[end-1] == cpu.CELL_ZERO {
		end--
	}

	for line := range slices.Chunk(cells[:end], IMAGE_CELLS_PER_LINE) {
		words := make([]string, len(line))
		for n, cell := range line {
			words[n] = string(cell)
		}
		_, err = io.WriteString(w, strings.Join(words, " ")+"\n")
		if err != nil {
			return
		}
	}

	return
}

// Dump writes the contents of a storage bank, sixteen cells per row.
func Dump(w io.Writer, st *cpu.Storage) (err error) {
	_, err = translate.To(w, "%v:\n", st.Name)
	if err != nil {
		return
	}

	for address, cell := range st.Cells() {
		var text string
		switch {
		case address%16 == 0:
			text = cpu.IntToHex(address) + ": " + string(cell)
		case address%16 == 15:
			text = " " + string(cell) + "\n"
		default:
			text = " " + string(cell)
		}
		_, err = io.WriteString(w, text)
		if err != nil {
			return
		}
	}

	if st.Len()%16 != 0 {
		_, err = io.WriteString(w, "\n")
	}

	return
}
