package cpu

import (
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// AluOp is an ALU operation selector.
type AluOp int

//go:generate go tool stringer -linecomment -type=AluOp
const (
	ALU_OP_ADD_INT   = AluOp(0) // addi
	ALU_OP_ADD_FLOAT = AluOp(1) // addf
)

// IsValidHex returns true if every character of s is a hexadecimal digit.
func IsValidHex(s string) bool {
	for _, ch := range s {
		if hexDigit(ch) < 0 {
			return false
		}
	}

	return true
}

// hexDigit returns the value of a hexadecimal digit, or -1.
func hexDigit(ch rune) int {
	switch {
	case ch >= '0' && ch <= '9':
		return int(ch - '0')
	case ch >= 'A' && ch <= 'F':
		return int(ch-'A') + 10
	case ch >= 'a' && ch <= 'f':
		return int(ch-'a') + 10
	}

	return -1
}

// HexToInt decodes s as a base-16 number, most significant digit first.
// Characters which are not hexadecimal digits count as zero.
// Values too large for an int wrap; see ParseHex.
func HexToInt(s string) (value int) {
	for _, ch := range s {
		value *= 16
		digit := hexDigit(ch)
		if digit > 0 {
			value += digit
		}
	}

	return
}

// ParseHex decodes s as HexToInt does, but reports ErrValueRange when the
// value does not fit in an int.
func ParseHex(s string) (value int, err error) {
	for _, ch := range s {
		digit := max(hexDigit(ch), 0)
		if value > (math.MaxInt-digit)/16 {
			value = 0
			err = ErrValueRange
			return
		}
		value = value*16 + digit
	}

	return
}

// IntToHex encodes value in uppercase base-16 with at least two digits.
// Negative values encode as "00".
func IntToHex(value int) string {
	if value < 0 {
		value = 0
	}

	return fmt.Sprintf("%02X", value)
}

// Alu is the arithmetic-logic unit.
type Alu struct {
	Log logrus.FieldLogger // If set, traces floating point operands.
}

// AddIntegers writes the integer sum of registers a and b to register dst.
// The sum is not truncated to 8 bits. Operands or sums too large for an
// int return ErrValueRange, and dst is left unchanged.
func (alu *Alu) AddIntegers(a, b, dst int, regs *Storage) (err error) {
	val_a, err_a := regs.Read(a)
	val_b, err_b := regs.Read(b)
	err = errors.Join(err_a, err_b)

	if !(IsValidHex(string(val_a)) && IsValidHex(string(val_b))) {
		err = errors.Join(err, ErrInvalidHex)
		return
	}

	int_a, err_ha := ParseHex(string(val_a))
	int_b, err_hb := ParseHex(string(val_b))
	if err_ha != nil || err_hb != nil || int_a > math.MaxInt-int_b {
		err = errors.Join(err, ErrValueRange)
		return
	}

	err = errors.Join(err, regs.Write(dst, Cell(IntToHex(int_a+int_b))))

	return
}

// AddFloats writes the Float8 sum of registers a and b to register dst.
// An unrepresentable sum is stored as "00", and ErrFloatRange is returned.
func (alu *Alu) AddFloats(a, b, dst int, regs *Storage) (err error) {
	val_a, err_a := regs.Read(a)
	val_b, err_b := regs.Read(b)
	err = errors.Join(err_a, err_b)

	fl_a := ParseFloat8(val_a).Float64()
	fl_b := ParseFloat8(val_b).Float64()
	sum := fl_a + fl_b

	if alu.Log != nil {
		alu.Log.WithFields(logrus.Fields{
			"a":   fl_a,
			"b":   fl_b,
			"sum": sum,
		}).Info(f("float add"))
	}

	if sum == 0 {
		err = errors.Join(err, regs.Write(dst, CELL_ZERO))
		return
	}

	result, err_fl := Float8FromFloat64(sum)
	err = errors.Join(err, err_fl, regs.Write(dst, result.Cell()))

	return
}

// Execute performs an ALU operation on registers a and b, storing to dst.
func (alu *Alu) Execute(op AluOp, a, b, dst int, regs *Storage) (err error) {
	switch op {
	case ALU_OP_ADD_INT:
		err = alu.AddIntegers(a, b, dst, regs)
	case ALU_OP_ADD_FLOAT:
		err = alu.AddFloats(a, b, dst, regs)
	default:
		err = ErrAluOp
	}

	return
}
