package cpu

import (
	"fmt"
)

// WORD_LENGTH is the number of characters in an instruction word.
const WORD_LENGTH = 8

// Word is an instruction word, [opcode][R][S][T][address:2][immediate:2].
type Word string

// Opcode is the decoded operation of an instruction word.
type Opcode int

//go:generate go tool stringer -linecomment -type=Opcode
const (
	OP_INVALID = Opcode(0) // invalid
	OP_LOAD    = Opcode(1) // load
	OP_STORE   = Opcode(2) // store
	OP_ADD     = Opcode(3) // add
	OP_JUMP    = Opcode(4) // jump
	OP_HALT    = Opcode(5) // halt
)

// opcodeMnemonic maps opcodes to their instruction word character.
var opcodeMnemonic = [...]byte{
	OP_INVALID: '?',
	OP_LOAD:    'L',
	OP_STORE:   'S',
	OP_ADD:     'A',
	OP_JUMP:    'J',
	OP_HALT:    'H',
}

// OpcodeOf returns the opcode for an instruction word character.
// Unknown characters are OP_INVALID.
func OpcodeOf(ch byte) Opcode {
	switch ch {
	case 'L':
		return OP_LOAD
	case 'S':
		return OP_STORE
	case 'A':
		return OP_ADD
	case 'J':
		return OP_JUMP
	case 'H':
		return OP_HALT
	}

	return OP_INVALID
}

// Mnemonic returns the instruction word character of the opcode.
func (op Opcode) Mnemonic() byte {
	if op < 0 || int(op) >= len(opcodeMnemonic) {
		return opcodeMnemonic[OP_INVALID]
	}

	return opcodeMnemonic[op]
}

// Instruction is a decoded instruction word.
type Instruction struct {
	Opcode    Opcode
	R, S, T   int // Register operands.
	Address   int // Memory address, 0-255.
	Immediate int // Immediate byte, 0-255.
}

// Decode splits an instruction word into its fields.
//
// The register fields are decimal digits: the operand is the character
// minus '0', so 'A'-'F' do not name registers 10-15. Invalid operands are
// reported when the instruction accesses the register.
func Decode(word Word) (inst Instruction, err error) {
	if len(word) != WORD_LENGTH {
		err = ErrWordLength
		return
	}

	inst = Instruction{
		Opcode:    OpcodeOf(word[0]),
		R:         int(word[1]) - '0',
		S:         int(word[2]) - '0',
		T:         int(word[3]) - '0',
		Address:   HexToInt(string(word[4:6])),
		Immediate: HexToInt(string(word[6:8])),
	}

	if inst.Opcode == OP_INVALID {
		err = ErrOpcodeInvalid
	}

	return
}

// Word encodes the instruction.
func (inst Instruction) Word() Word {
	return Word(fmt.Sprintf("%c%c%c%c%02X%02X",
		inst.Opcode.Mnemonic(),
		'0'+inst.R, '0'+inst.S, '0'+inst.T,
		inst.Address&0xff, inst.Immediate&0xff))
}

// String returns the assembly language form of the instruction.
func (inst Instruction) String() (out string) {
	switch inst.Opcode {
	case OP_LOAD, OP_STORE:
		out = fmt.Sprintf("%v r%d 0x%02X", inst.Opcode, inst.R, inst.Address)
	case OP_ADD:
		out = fmt.Sprintf("%v r%d r%d r%d", inst.Opcode, inst.R, inst.S, inst.T)
	case OP_JUMP:
		out = fmt.Sprintf("%v r%d", inst.Opcode, inst.R)
	default:
		out = inst.Opcode.String()
	}

	return
}
