package cpu

import (
	"errors"

	"github.com/ezrec/vole/translate"
)

var f = translate.From

var (
	// Machine errors
	ErrAddressRange = errors.New(f("address out of range"))
	ErrInvalidHex   = errors.New(f("invalid hexadecimal value"))
	ErrAluOp        = errors.New(f("alu operation invalid"))
	ErrFloatRange   = errors.New(f("float exponent out of range"))
	ErrNotRunning   = errors.New(f("machine not running"))
	ErrValueRange   = errors.New(f("value out of range"))

	// Instruction decode errors
	ErrWordLength    = errors.New(f("instruction word length"))
	ErrOpcodeInvalid = errors.New(f("opcode invalid"))

	// Assembler errors
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate     = errors.New(f("label duplicated"))
	ErrLabelInvalid       = errors.New(f("label invalid"))
	ErrOpcodeExtraArgs    = errors.New(f("excessive arguments"))
	ErrOpcodeValueMissing = errors.New(f("value missing"))
	ErrRegisterInvalid    = errors.New(f("register invalid"))
	ErrInstructionInvalid = errors.New(f("instruction invalid"))
	ErrAddressOverlap     = errors.New(f("address already assembled"))
)

// ErrAddress reports an access outside of a storage bank.
type ErrAddress struct {
	Space   string // Storage bank name.
	Address int    // Requested address.
}

func (err ErrAddress) Error() string {
	return f("%v address %d out of range", err.Space, err.Address)
}

func (err ErrAddress) Unwrap() error {
	return ErrAddressRange
}

// ErrOpcode identifies the instruction word that failed.
type ErrOpcode Word

func (eo ErrOpcode) Error() string {
	return f("bad instruction '%v'", string(eo))
}

func (eo ErrOpcode) Is(err error) (ok bool) {
	_, ok = err.(ErrOpcode)
	return
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}
