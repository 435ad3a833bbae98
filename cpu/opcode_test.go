package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecode(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		word Word
		inst Instruction
		text string
	}){
		{"L1001000", Instruction{Opcode: OP_LOAD, R: 1, Address: 0x10}, "load r1 0x10"},
		{"S2002A00", Instruction{Opcode: OP_STORE, R: 2, Address: 0x2a}, "store r2 0x2A"},
		{"A1230000", Instruction{Opcode: OP_ADD, R: 1, S: 2, T: 3}, "add r1 r2 r3"},
		{"J4000000", Instruction{Opcode: OP_JUMP, R: 4}, "jump r4"},
		{"H0000000", Instruction{Opcode: OP_HALT}, "halt"},
		{"L?00FF7F", Instruction{Opcode: OP_LOAD, R: 15, Address: 0xff, Immediate: 0x7f}, "load r15 0xFF"},
	}

	for _, entry := range table {
		inst, err := Decode(entry.word)
		assert.NoError(err, entry.word)
		assert.Equal(entry.inst, inst, entry.word)
		assert.Equal(entry.word, inst.Word(), entry.word)
		assert.Equal(entry.text, inst.String(), entry.word)
	}
}

func TestDecode_Registers(t *testing.T) {
	assert := assert.New(t)

	// Register fields are decimal digits offset from '0'.
	inst, err := Decode("AA:00000")
	assert.NoError(err)
	assert.Equal(17, inst.R)
	assert.Equal(10, inst.S)
	assert.Equal(0, inst.T)
}

func TestDecode_Invalid(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		word Word
		err  error
	}){
		{"", ErrWordLength},
		{"00", ErrWordLength},
		{"L100100", ErrWordLength},
		{"L10010000", ErrWordLength},
		{"X0000000", ErrOpcodeInvalid},
		{"l1001000", ErrOpcodeInvalid},
		{"00000000", ErrOpcodeInvalid},
	}

	for _, entry := range table {
		_, err := Decode(entry.word)
		assert.ErrorIs(err, entry.err, entry.word)
	}
}

func TestOpcode(t *testing.T) {
	assert := assert.New(t)

	for _, op := range []Opcode{OP_LOAD, OP_STORE, OP_ADD, OP_JUMP, OP_HALT} {
		assert.Equal(op, OpcodeOf(op.Mnemonic()), op.String())
	}

	assert.Equal(OP_INVALID, OpcodeOf('?'))
	assert.Equal(byte('?'), Opcode(99).Mnemonic())
	assert.Equal(byte('?'), Opcode(-1).Mnemonic())
	assert.Equal("invalid", OP_INVALID.String())
	assert.Equal("Opcode(99)", Opcode(99).String())
}

func FuzzDecode(f *testing.F) {
	for _, word := range []string{"L1001000", "A1230000", "J0000000", "H0000000", "X0000000", "L10", "zzzzzzzz"} {
		f.Add(word)
	}

	f.Fuzz(func(t *testing.T, word string) {
		assert := assert.New(t)

		inst, err := Decode(Word(word))
		if len(word) != WORD_LENGTH {
			assert.ErrorIs(err, ErrWordLength)
			return
		}

		assert.Equal(OpcodeOf(word[0]), inst.Opcode)
		if inst.Opcode == OP_INVALID {
			assert.ErrorIs(err, ErrOpcodeInvalid)
			return
		}

		assert.NoError(err)
		assert.GreaterOrEqual(inst.Address, 0)
		assert.LessOrEqual(inst.Address, 0xff)
		assert.GreaterOrEqual(inst.Immediate, 0)
		assert.LessOrEqual(inst.Immediate, 0xff)
	})
}
