package cpu

import (
	"iter"
)

// Statement is an assembled line of source and the cell it produced.
type Statement struct {
	LineNo  int      // Source line number.
	Address int      // Memory address of the cell.
	Words   []string // Source words, after equate substitution.
	Cell    Cell     // Assembled cell.
}

// Program is an assembled program.
type Program struct {
	Statements []Statement
}

// Debug returns the statement assembled at address, or nil.
func (prog *Program) Debug(address int) *Statement {
	for n, stmt := range prog.Statements {
		if stmt.Address == address {
			return &prog.Statements[n]
		}
	}

	return nil
}

// Cells iterates over the assembled addresses and cells in source order.
func (prog *Program) Cells() iter.Seq2[int, Cell] {
	return func(yield func(address int, cell Cell) bool) {
		for _, stmt := range prog.Statements {
			if !yield(stmt.Address, stmt.Cell) {
				return
			}
		}
	}
}

// Image renders the program as a full memory image.
// Cells not assembled are "00".
func (prog *Program) Image() (image []Cell) {
	image = make([]Cell, MEMORY_SIZE)
	for n := range image {
		image[n] = CELL_ZERO
	}

	for address, cell := range prog.Cells() {
		image[address] = cell
	}

	return
}

// Tokens iterates over the memory image as program image tokens.
func (prog *Program) Tokens() iter.Seq[string] {
	return func(yield func(token string) bool) {
		for _, cell := range prog.Image() {
			if !yield(string(cell)) {
				return
			}
		}
	}
}
