// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"context"
	"fmt"
	"io"
	"iter"
	"maps"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ezrec/vole/cpu"
	"github.com/ezrec/vole/internal"
	vio "github.com/ezrec/vole/io"
)

// Emulator state. CPU + memory + the loaded program.
//
// All methods are serialized, so an Emulator may be shared between
// goroutines; each Tick completes a whole instruction. The Cpu, Memory and
// Program fields are not locked: set them up before sharing the Emulator,
// and use Snapshot to inspect a running machine.
type Emulator struct {
	Verbose bool         // If set, enables verbose logging.
	Cpu     *cpu.Cpu     // CPU simulation.
	Memory  *cpu.Storage // Main memory.
	Program *cpu.Program // Reference to the currently loaded program listing.

	mutex sync.Mutex
}

// Snapshot is a copy of the machine state.
type Snapshot struct {
	Pc       int
	Ir       cpu.Word
	State    cpu.State
	Steps    int
	Register []cpu.Cell
	Memory   []cpu.Cell
}

// NewEmulator creates a new emulator starting at cpu.START_ADDRESS.
func NewEmulator() (emu *Emulator) {
	return NewEmulatorAt(cpu.START_ADDRESS)
}

// NewEmulatorAt creates a new emulator starting at a specific address.
func NewEmulatorAt(start int) (emu *Emulator) {
	emu = &Emulator{
		Cpu:     cpu.NewCpuAt(start),
		Memory:  cpu.NewMemory(),
		Program: &cpu.Program{},
	}

	return
}

// Defines returns an iterator over all of the defines, for use as
// assembler predefines.
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	defines := map[string]string{
		"START_ADDRESS": fmt.Sprintf("%#x", emu.Cpu.Start),
	}

	return internal.IterSeq2Concat(maps.All(defines), emu.Cpu.Defines())
}

// Reset clears the machine and reloads the program, if any.
func (emu *Emulator) Reset() (err error) {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	emu.Cpu.Reset()
	emu.Memory.Reset()

	if emu.Program != nil && len(emu.Program.Statements) != 0 {
		_, err = emu.Memory.Load(emu.Program.Tokens())
	}

	if emu.Verbose {
		emu.logger().Info(f("reset, pc %02X", emu.Cpu.Pc))
	}

	return
}

// LoadImage stores a program image into memory, starting at address 0.
// Memory beyond the image is left as is.
func (emu *Emulator) LoadImage(r io.Reader) (count int, err error) {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	count, err = vio.LoadImage(r, emu.Memory)
	emu.loaded(count)

	return
}

// LoadTokens stores program image tokens into memory, starting at address 0.
func (emu *Emulator) LoadTokens(tokens iter.Seq[string]) (count int, err error) {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	count, err = emu.Memory.Load(tokens)
	emu.loaded(count)

	return
}

func (emu *Emulator) loaded(count int) {
	if emu.Verbose {
		emu.logger().Info(f("loaded %d cells", count))
	}
}

// LineNo returns the source line number of the next instruction, or 0.
func (emu *Emulator) LineNo() int {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	return emu.lineNo(emu.Cpu.Pc)
}

func (emu *Emulator) lineNo(pc int) int {
	if emu.Program == nil {
		return 0
	}

	stmt := emu.Program.Debug(pc)
	if stmt == nil {
		return 0
	}

	return stmt.LineNo
}

// Tick performs a single instruction of the emulator.
// done is set once the machine has halted or faulted.
func (emu *Emulator) Tick() (done bool, err error) {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	return emu.tick()
}

func (emu *Emulator) tick() (done bool, err error) {
	if emu.Cpu.State != cpu.STATE_RUNNING {
		done = true
		return
	}

	emu.Cpu.Verbose = emu.Verbose

	pc := emu.Cpu.Pc
	err = emu.Cpu.Step(emu.Memory)
	if err != nil {
		err = &ErrRuntime{Step: emu.Cpu.Steps, Pc: pc, LineNo: emu.lineNo(pc), Err: err}
	}

	done = emu.Cpu.State != cpu.STATE_RUNNING
	return
}

// Run ticks the emulator until it stops running, the context is done, or
// limit instructions have executed. A limit of zero or less is unlimited.
//
// Errors which leave the machine running are reported on the diagnostic
// channel and execution continues. The error of a faulting instruction is
// returned.
func (emu *Emulator) Run(ctx context.Context, limit int) (steps int, err error) {
	for limit <= 0 || steps < limit {
		err = ctx.Err()
		if err != nil {
			return
		}

		var done bool
		emu.mutex.Lock()
		running := emu.Cpu.State == cpu.STATE_RUNNING
		if running {
			done, err = emu.tick()
		}
		state := emu.Cpu.State
		emu.mutex.Unlock()

		if !running {
			return
		}

		steps++
		if done {
			if state != cpu.STATE_FAULTED {
				err = nil
			}
			return
		}
	}

	err = ErrStepLimit
	return
}

// Snapshot returns a copy of the machine state.
func (emu *Emulator) Snapshot() (snap Snapshot) {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	snap = Snapshot{
		Pc:    emu.Cpu.Pc,
		Ir:    emu.Cpu.Ir,
		State: emu.Cpu.State,
		Steps: emu.Cpu.Steps,
	}
	for _, cell := range emu.Cpu.Register.Cells() {
		snap.Register = append(snap.Register, cell)
	}
	for _, cell := range emu.Memory.Cells() {
		snap.Memory = append(snap.Memory, cell)
	}

	return
}

// Dump writes the register and memory contents.
func (emu *Emulator) Dump(w io.Writer) (err error) {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	_, err = io.WriteString(w, emu.Cpu.String())
	if err != nil {
		return
	}

	err = vio.Dump(w, emu.Memory)
	return
}

func (emu *Emulator) logger() logrus.FieldLogger {
	if emu.Cpu.Log == nil {
		return logrus.StandardLogger()
	}

	return emu.Cpu.Log
}
