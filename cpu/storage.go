package cpu

import (
	"iter"
	"slices"
)

const (
	MEMORY_SIZE    = 256 // Number of memory cells.
	REGISTER_COUNT = 16  // Number of general purpose registers.

	CELL_ZERO = Cell("00") // Value of a cleared cell.
)

// Cell is the content of a register or memory cell.
// It is nominally two hexadecimal digits, but a cell stores whatever
// string it is given.
type Cell string

// Storage is a fixed size, bounds checked bank of cells.
type Storage struct {
	Name string // Name used in diagnostics.

	cell []Cell
}

func newStorage(name string, size int) (st *Storage) {
	st = &Storage{
		Name: name,
		cell: make([]Cell, size),
	}
	st.Reset()

	return
}

// NewMemory creates the 256 cell main memory.
func NewMemory() *Storage {
	return newStorage("memory", MEMORY_SIZE)
}

// NewRegisterFile creates the 16 cell register bank.
func NewRegisterFile() *Storage {
	return newStorage("register", REGISTER_COUNT)
}

// Len returns the capacity in cells.
func (st *Storage) Len() int {
	return len(st.cell)
}

// Reset clears every cell to "00".
func (st *Storage) Reset() {
	for n := range st.cell {
		st.cell[n] = CELL_ZERO
	}
}

// Read returns the cell at address.
// Out of range addresses return "00" and an ErrAddress.
func (st *Storage) Read(address int) (value Cell, err error) {
	if address < 0 || address >= len(st.cell) {
		value = CELL_ZERO
		err = ErrAddress{Space: st.Name, Address: address}
		return
	}

	value = st.cell[address]
	return
}

// Write stores value at address.
// Out of range addresses leave the storage unmodified and return an ErrAddress.
func (st *Storage) Write(address int, value Cell) (err error) {
	if address < 0 || address >= len(st.cell) {
		err = ErrAddress{Space: st.Name, Address: address}
		return
	}

	st.cell[address] = value
	return
}

// Cells iterates over every address and cell value.
func (st *Storage) Cells() iter.Seq2[int, Cell] {
	return slices.All(st.cell)
}

// Clone returns an independent copy of the storage.
func (st *Storage) Clone() *Storage {
	return &Storage{
		Name: st.Name,
		cell: slices.Clone(st.cell),
	}
}

// Load stores tokens verbatim into increasing addresses starting at 0.
// Loading stops with an ErrAddress when the tokens exceed the capacity.
func (st *Storage) Load(tokens iter.Seq[string]) (count int, err error) {
	for token := range tokens {
		err = st.Write(count, Cell(token))
		if err != nil {
			return
		}
		count++
	}

	return
}
