package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"

	"github.com/jroimartin/gocui"
	"github.com/sirupsen/logrus"

	"github.com/ezrec/vole/cpu"
	"github.com/ezrec/vole/emulator"
	vio "github.com/ezrec/vole/io"
	"github.com/ezrec/vole/translate"
)

// monitor is the state shown by the gocui views.
type monitor struct {
	emu    *emulator.Emulator
	image  []byte
	status bytes.Buffer
}

func main() {
	var start int
	var compile string

	flag.IntVar(&start, "pc", cpu.START_ADDRESS, "Start address")
	flag.StringVar(&compile, "c", "", ".vole source file to assemble")
	flag.Parse()

	mon := &monitor{emu: emulator.NewEmulatorAt(start)}

	// Diagnostics go to the status view, not the terminal.
	log := logrus.New()
	log.SetOutput(&mon.status)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	mon.emu.Cpu.Log = log

	if len(compile) != 0 {
		inf, err := os.Open(compile)
		if err != nil {
			logrus.Fatalf("%v: %v", compile, err)
		}
		asm := &cpu.Assembler{}
		for name, value := range mon.emu.Defines() {
			asm.Predefine(name, value)
		}
		mon.emu.Program, err = asm.Parse(inf)
		inf.Close()
		if err != nil {
			logrus.Fatalf("%v: %v", compile, err)
		}
	}

	if flag.NArg() > 1 {
		logrus.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args()[1:])
	}
	if flag.NArg() == 1 {
		var err error
		mon.image, err = os.ReadFile(flag.Arg(0))
		if err != nil {
			logrus.Fatalf("%v: %v", flag.Arg(0), err)
		}
	}

	mon.reset(nil, nil)

	g, err := gocui.NewGui(gocui.OutputNormal)
	if err != nil {
		logrus.Fatalf("%v: %v", os.Args[0], err)
	}
	defer g.Close()

	g.SetManagerFunc(mon.layout)

	bindings := []struct {
		key     any
		handler func(*gocui.Gui, *gocui.View) error
	}{
		{gocui.KeyCtrlC, quit},
		{'q', quit},
		{'s', mon.step},
		{'r', mon.reset},
	}
	for _, binding := range bindings {
		err = g.SetKeybinding("", binding.key, gocui.ModNone, binding.handler)
		if err != nil {
			logrus.Fatal(err)
		}
	}

	err = g.MainLoop()
	if err != nil && err != gocui.ErrQuit {
		logrus.Fatal(err)
	}
}

// reset restarts the machine with the program and image reloaded.
func (mon *monitor) reset(g *gocui.Gui, v *gocui.View) error {
	mon.status.Reset()

	err := mon.emu.Reset()
	if err == nil && len(mon.image) != 0 {
		_, err = mon.emu.LoadImage(bytes.NewReader(mon.image))
	}
	if err != nil {
		fmt.Fprintln(&mon.status, err)
	}

	translate.To(&mon.status, "reset, pc %02X\n", mon.emu.Snapshot().Pc)
	return nil
}

// step executes a single instruction.
func (mon *monitor) step(g *gocui.Gui, v *gocui.View) error {
	done, _ := mon.emu.Tick()
	if done {
		translate.To(&mon.status, "machine %v\n", mon.emu.Snapshot().State)
	}

	return nil
}

// gocui layout
func (mon *monitor) layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()
	snap := mon.emu.Snapshot()

	// up -> registers
	v, err := g.SetView("registers", 0, 0, maxX-1, 7)
	if err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = translate.From("Registers")
	}
	v.Clear()
	fmt.Fprintf(v, " pc: %02X  ir: %-8v  state: %v  steps: %d\n", snap.Pc, snap.Ir, snap.State, snap.Steps)
	for reg, cell := range snap.Register {
		fmt.Fprintf(v, " r%-2d: %-3v", reg, cell)
		if reg%4 == 3 {
			fmt.Fprintln(v)
		}
	}

	// middle -> memory
	v, err = g.SetView("memory", 0, 8, maxX-1, maxY-8)
	if err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = translate.From("Memory")
	}
	v.Clear()
	mem := cpu.NewMemory()
	for address, cell := range snap.Memory {
		mem.Write(address, cell)
	}
	vio.Dump(v, mem)

	// down -> status
	v, err = g.SetView("status", 0, maxY-7, maxX-1, maxY-1)
	if err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = translate.From("Status [s]tep [r]eset [q]uit")
		v.Autoscroll = true
	}
	v.Clear()
	v.Write(mon.status.Bytes())

	return nil
}

func quit(g *gocui.Gui, v *gocui.View) error {
	return gocui.ErrQuit
}
