package emulator

import (
	"errors"

	"github.com/ezrec/vole/translate"
)

var f = translate.From

var (
	ErrStepLimit = errors.New(f("step limit reached"))
)

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	Step   int // Instruction count at the failure.
	Pc     int // Address of the failing instruction.
	LineNo int // Source line of the failing instruction, or 0.
	Err    error
}

func (err *ErrRuntime) Error() string {
	if err.LineNo != 0 {
		return f("step %d pc %02X line %d %v", err.Step, err.Pc, err.LineNo, err.Err)
	}
	return f("step %d pc %02X %v", err.Step, err.Pc, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
