package cpu

import (
	"fmt"
	"math"
)

const (
	FLOAT8_SIGN           = 0x80 // Sign bit.
	FLOAT8_EXPONENT_SHIFT = 4    // Position of the exponent.
	FLOAT8_EXPONENT_MASK  = 0x7  // Exponent width, after shifting.
	FLOAT8_MANTISSA_MASK  = 0xf  // Mantissa width.
	FLOAT8_BIAS           = 4    // Exponent bias.
)

// Float8 is the machine's 8-bit floating point format.
//
//	[sign:1][exponent:3][mantissa:4]
//
// The value is (-1)^sign * 2^(exponent-4) * mantissa/16.
// The all-zero byte is exact zero.
type Float8 uint8

// ParseFloat8 interprets a cell as a Float8.
// Only the low 8 bits of the cell's value are used.
func ParseFloat8(cell Cell) Float8 {
	return Float8(HexToInt(string(cell)) & 0xff)
}

// Float8FromFloat64 encodes value as a Float8, truncating the mantissa.
// Values whose exponent does not fit return zero and ErrFloatRange.
func Float8FromFloat64(value float64) (fl Float8, err error) {
	if value == 0 {
		return
	}

	if math.IsNaN(value) || math.IsInf(value, 0) {
		err = ErrFloatRange
		return
	}

	var sign uint8
	if value < 0 {
		sign = 1
		value = -value
	}

	// Normalize into [0.5, 1.0)
	exp := 0
	for value >= 1.0 {
		value /= 2.0
		exp++
	}
	for value < 0.5 {
		value *= 2.0
		exp--
	}

	exponent := exp + FLOAT8_BIAS
	if exponent < 0 || exponent > FLOAT8_EXPONENT_MASK {
		err = ErrFloatRange
		return
	}

	mantissa := uint8(value*16) & FLOAT8_MANTISSA_MASK

	fl = Float8((sign << 7) | (uint8(exponent) << FLOAT8_EXPONENT_SHIFT) | mantissa)
	return
}

// Sign returns 1 for negative values, 0 otherwise.
func (fl Float8) Sign() int {
	return int(fl>>7) & 1
}

// Exponent returns the biased exponent.
func (fl Float8) Exponent() int {
	return int(fl>>FLOAT8_EXPONENT_SHIFT) & FLOAT8_EXPONENT_MASK
}

// Mantissa returns the 4-bit mantissa.
func (fl Float8) Mantissa() int {
	return int(fl) & FLOAT8_MANTISSA_MASK
}

// Float64 decodes the value.
func (fl Float8) Float64() (value float64) {
	value = math.Ldexp(float64(fl.Mantissa())/16.0, fl.Exponent()-FLOAT8_BIAS)
	if fl.Sign() == 1 {
		value = -value
	}

	return
}

// Canonical returns true if the mantissa is normalized, or the value is zero.
// Only canonical values survive a decode and encode unchanged.
func (fl Float8) Canonical() bool {
	return fl == 0 || fl.Mantissa() >= 8
}

// Cell returns the value as two uppercase hexadecimal digits.
func (fl Float8) Cell() Cell {
	return Cell(fmt.Sprintf("%02X", uint8(fl)))
}

func (fl Float8) String() string {
	return fmt.Sprintf("%02X(%g)", uint8(fl), fl.Float64())
}
