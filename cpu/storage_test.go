package cpu

import (
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStorage_New(t *testing.T) {
	assert := assert.New(t)

	mem := NewMemory()
	assert.Equal(MEMORY_SIZE, mem.Len())
	regs := NewRegisterFile()
	assert.Equal(REGISTER_COUNT, regs.Len())

	for _, st := range []*Storage{mem, regs} {
		for address, cell := range st.Cells() {
			assert.Equal(CELL_ZERO, cell, "%v %d", st.Name, address)
		}
	}
}

func TestStorage_ReadWrite(t *testing.T) {
	assert := assert.New(t)

	regs := NewRegisterFile()
	assert.NoError(regs.Write(3, "2F"))
	assert.NoError(regs.Write(15, "A1"))

	value, err := regs.Read(3)
	assert.NoError(err)
	assert.Equal(Cell("2F"), value)

	value, err = regs.Read(15)
	assert.NoError(err)
	assert.Equal(Cell("A1"), value)
}

func TestStorage_OutOfRange(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name    string
		storage *Storage
		address int
	}){
		{"register_neg", NewRegisterFile(), -1},
		{"register_cap", NewRegisterFile(), REGISTER_COUNT},
		{"memory_neg", NewMemory(), -100},
		{"memory_cap", NewMemory(), MEMORY_SIZE},
		{"memory_big", NewMemory(), 0x1000},
	}

	for _, entry := range table {
		st := entry.storage
		st.Write(0, "AA")
		before := st.Clone()

		value, err := st.Read(entry.address)
		assert.Equal(CELL_ZERO, value, entry.name)
		assert.ErrorIs(err, ErrAddressRange, entry.name)

		var addr_err ErrAddress
		assert.True(errors.As(err, &addr_err), entry.name)
		assert.Equal(entry.address, addr_err.Address, entry.name)
		assert.Equal(st.Name, addr_err.Space, entry.name)

		err = st.Write(entry.address, "FF")
		assert.ErrorIs(err, ErrAddressRange, entry.name)

		for address, cell := range st.Cells() {
			value, _ := before.Read(address)
			assert.Equal(value, cell, entry.name)
		}
	}
}

func TestStorage_Reset(t *testing.T) {
	assert := assert.New(t)

	mem := NewMemory()
	mem.Write(0, "12")
	mem.Write(255, "34")
	mem.Reset()

	value, _ := mem.Read(0)
	assert.Equal(CELL_ZERO, value)
	value, _ = mem.Read(255)
	assert.Equal(CELL_ZERO, value)
}

func TestStorage_Clone(t *testing.T) {
	assert := assert.New(t)

	mem := NewMemory()
	mem.Write(1, "AB")

	clone := mem.Clone()
	mem.Write(1, "CD")

	value, _ := clone.Read(1)
	assert.Equal(Cell("AB"), value)
	assert.Equal(mem.Name, clone.Name)
}

func TestStorage_Load(t *testing.T) {
	assert := assert.New(t)

	mem := NewMemory()
	count, err := mem.Load(slices.Values([]string{"L1001000", "H0000000", "zz"}))
	assert.NoError(err)
	assert.Equal(3, count)

	value, _ := mem.Read(0)
	assert.Equal(Cell("L1001000"), value)
	value, _ = mem.Read(2)
	assert.Equal(Cell("zz"), value, "tokens are stored verbatim")
	value, _ = mem.Read(3)
	assert.Equal(CELL_ZERO, value)
}

func TestStorage_Load_Overflow(t *testing.T) {
	assert := assert.New(t)

	regs := NewRegisterFile()
	tokens := make([]string, REGISTER_COUNT+2)
	for n := range tokens {
		tokens[n] = IntToHex(n)
	}

	count, err := regs.Load(slices.Values(tokens))
	assert.ErrorIs(err, ErrAddressRange)
	assert.Equal(REGISTER_COUNT, count)

	value, _ := regs.Read(REGISTER_COUNT - 1)
	assert.Equal(Cell("0F"), value)
}
