package cpu

import (
	"errors"
	"fmt"
	"iter"
	"maps"

	"github.com/sirupsen/logrus"
)

// START_ADDRESS is the default program counter after reset.
const START_ADDRESS = 0x0A

// State is the execution state of the machine.
type State int

//go:generate go tool stringer -linecomment -type=State
const (
	STATE_RUNNING = State(0) // running
	STATE_HALTED  = State(1) // halted
	STATE_FAULTED = State(2) // faulted
)

var _cpu_defines = map[string]string{
	"MEMORY_SIZE":    fmt.Sprintf("%v", MEMORY_SIZE),
	"REGISTER_COUNT": fmt.Sprintf("%v", REGISTER_COUNT),
	"WORD_LENGTH":    fmt.Sprintf("%v", WORD_LENGTH),
}

// Cpu is the instruction cycle engine: program counter, instruction
// register, register file and control unit.
type Cpu struct {
	Verbose bool               // Set to enable instruction tracing.
	Log     logrus.FieldLogger // Diagnostic channel.

	Start    int         // Program counter after reset.
	Pc       int         // Program counter.
	Ir       Word        // Instruction register.
	Register *Storage    // Register bank.
	Control  ControlUnit // Control unit.
	State    State       // Execution state.

	Steps int // Instructions executed since reset.
}

// NewCpu creates a CPU starting at START_ADDRESS.
func NewCpu() *Cpu {
	return NewCpuAt(START_ADDRESS)
}

// NewCpuAt creates a CPU starting at a specific address.
func NewCpuAt(start int) (cpu *Cpu) {
	cpu = &Cpu{
		Log:      logrus.StandardLogger(),
		Start:    start,
		Register: NewRegisterFile(),
	}
	cpu.Reset()

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// Reset clears the registers and restarts execution at the start address.
func (cpu *Cpu) Reset() {
	cpu.Register.Reset()
	cpu.Pc = cpu.Start
	cpu.Ir = ""
	cpu.State = STATE_RUNNING
	cpu.Steps = 0
}

// ProgramCounter returns the address of the next instruction.
func (cpu *Cpu) ProgramCounter() int {
	return cpu.Pc
}

// SetProgramCounter sets the address of the next instruction.
func (cpu *Cpu) SetProgramCounter(pc int) {
	cpu.Pc = pc
}

// GetRegister returns the value of a register, or "00" if out of range.
func (cpu *Cpu) GetRegister(index int) Cell {
	value, err := cpu.Register.Read(index)
	if err != nil {
		cpu.diagnose(cpu.Pc, err)
	}

	return value
}

// Fetch loads the instruction register from memory and advances the
// program counter by one cell.
func (cpu *Cpu) Fetch(mem *Storage) (err error) {
	cell, err := mem.Read(cpu.Pc)
	cpu.Ir = Word(cell)
	cpu.Pc++

	return
}

// Decode decodes the instruction register.
func (cpu *Cpu) Decode() (Instruction, error) {
	return Decode(cpu.Ir)
}

// Execute dispatches a decoded instruction.
func (cpu *Cpu) Execute(inst Instruction, mem *Storage) (err error) {
	cu := &cpu.Control

	switch inst.Opcode {
	case OP_LOAD:
		err = cu.Load(inst.R, inst.Address, cpu.Register, mem)
	case OP_STORE:
		err = cu.Store(inst.R, inst.Address, cpu.Register, mem)
	case OP_ADD:
		err = cu.AddIntegers(inst.R, inst.S, inst.T, cpu.Register)
	case OP_JUMP:
		var taken bool
		taken, err = cu.Jump(inst.R, &cpu.Pc, cpu.Register)
		if taken && cpu.Verbose && cpu.Log != nil {
			cpu.Log.Info(f("jump to %02X", cpu.Pc))
		}
	case OP_HALT:
		cu.Halt()
		cpu.State = STATE_HALTED
	default:
		cpu.State = STATE_FAULTED
		err = ErrOpcodeInvalid
	}

	return
}

// Step executes a single fetch, decode and execute cycle.
//
// Errors are reported on the diagnostic channel and returned. Address,
// hexadecimal and float range errors leave the machine running; an
// undecodable instruction faults it. A machine which is not running
// ignores the step and returns ErrNotRunning.
func (cpu *Cpu) Step(mem *Storage) (err error) {
	if cpu.State != STATE_RUNNING {
		err = ErrNotRunning
		return
	}

	pc := cpu.Pc
	defer func() {
		if err != nil {
			err = errors.Join(ErrOpcode(cpu.Ir), err)
			cpu.diagnose(pc, err)
		}
	}()

	cpu.Control.Log = cpu.Log
	if cpu.Verbose {
		cpu.Control.Alu.Log = cpu.Log
	} else {
		cpu.Control.Alu.Log = nil
	}

	err = cpu.Fetch(mem)
	if err != nil {
		cpu.State = STATE_FAULTED
		return
	}

	inst, err := cpu.Decode()
	if err != nil {
		cpu.State = STATE_FAULTED
		return
	}

	if cpu.Verbose && cpu.Log != nil {
		cpu.Log.Infof("%02X: %v %v", pc, cpu.Ir, inst)
	}

	cpu.Steps++
	err = cpu.Execute(inst, mem)

	return
}

// diagnose reports an error on the diagnostic channel.
func (cpu *Cpu) diagnose(pc int, err error) {
	if cpu.Log == nil {
		return
	}

	cpu.Log.WithFields(logrus.Fields{
		"pc":    fmt.Sprintf("%02X", pc),
		"word":  string(cpu.Ir),
		"state": cpu.State.String(),
	}).Warn(err)
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	text += fmt.Sprintf("% 5s: %02X\n", "pc", cpu.Pc)
	text += fmt.Sprintf("% 5s: %v\n", "ir", cpu.Ir)
	text += fmt.Sprintf("% 5s: %v\n", "state", cpu.State)
	for reg, value := range cpu.Register.Cells() {
		text += fmt.Sprintf("% 5s: %-3v", fmt.Sprintf("r%d", reg), value)
		if reg%4 == 3 {
			text += "\n"
		}
	}

	return
}
