package cpu

import (
	"errors"

	"github.com/sirupsen/logrus"
)

// ControlUnit translates decoded instructions into register, memory and
// ALU operations. It holds no machine state of its own; the register file
// and memory are passed to every operation.
type ControlUnit struct {
	Alu Alu                // Arithmetic unit.
	Log logrus.FieldLogger // If set, receives the halt notice.
}

// Load copies memory[addr] to register reg.
func (cu *ControlUnit) Load(reg, addr int, regs, mem *Storage) (err error) {
	value, err_r := mem.Read(addr)
	err = errors.Join(err_r, regs.Write(reg, value))
	return
}

// LoadImmediate sets register reg to the byte value.
func (cu *ControlUnit) LoadImmediate(reg, value int, regs *Storage) (err error) {
	return regs.Write(reg, Cell(IntToHex(value&0xff)))
}

// Store copies register reg to memory[addr].
func (cu *ControlUnit) Store(reg, addr int, regs, mem *Storage) (err error) {
	value, err_r := regs.Read(reg)
	err = errors.Join(err_r, mem.Write(addr, value))
	return
}

// Move copies register src to register dst.
func (cu *ControlUnit) Move(src, dst int, regs *Storage) (err error) {
	value, err_r := regs.Read(src)
	err = errors.Join(err_r, regs.Write(dst, value))
	return
}

// AddIntegers adds registers a and b as integers into dst.
func (cu *ControlUnit) AddIntegers(a, b, dst int, regs *Storage) error {
	return cu.Alu.AddIntegers(a, b, dst, regs)
}

// AddFloats adds registers a and b as Float8 values into dst.
func (cu *ControlUnit) AddFloats(a, b, dst int, regs *Storage) error {
	return cu.Alu.AddFloats(a, b, dst, regs)
}

// Jump sets *pc to the value of register reg when it equals register 0.
// An unreadable register, or a target too large for an int, suppresses
// the jump.
func (cu *ControlUnit) Jump(reg int, pc *int, regs *Storage) (taken bool, err error) {
	value, err := regs.Read(reg)
	if err != nil {
		return
	}

	zero, err := regs.Read(0)
	if err != nil {
		return
	}

	if value != zero {
		return
	}

	target, err := ParseHex(string(value))
	if err != nil {
		return
	}

	*pc = target
	taken = true

	return
}

// Halt emits the termination notice.
func (cu *ControlUnit) Halt() {
	if cu.Log != nil {
		cu.Log.Info(f("machine halted"))
	}
}
