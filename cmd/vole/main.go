// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"iter"
	"os"
	"os/signal"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/ezrec/vole/cpu"
	"github.com/ezrec/vole/emulator"
	"github.com/ezrec/vole/internal"
	vio "github.com/ezrec/vole/io"
	"github.com/ezrec/vole/translate"
)

var f = translate.From

func main() {
	var compile string
	var output string
	var save bool
	var start int
	var limit int
	var verbose bool
	defines := map[string]string{}

	flag.StringVar(&compile, "c", "", ".vole source file to assemble")
	flag.StringVar(&output, "o", "", "Write the program image to this file")
	flag.BoolVar(&save, "s", false, "Save the image only, do not execute")
	flag.IntVar(&start, "pc", cpu.START_ADDRESS, "Start address")
	flag.IntVar(&limit, "n", 10000, "Step limit (0 for unlimited)")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.Func("D", "Assembler predefine NAME=VALUE", func(text string) error {
		name, value, ok := strings.Cut(text, "=")
		if !ok || len(name) == 0 {
			return errors.New(f("expected NAME=VALUE"))
		}
		defines[name] = value
		return nil
	})

	flag.Parse()

	emu := emulator.NewEmulatorAt(start)
	emu.Verbose = verbose

	// Compile a new program.
	if len(compile) != 0 {
		inf, err := os.Open(compile)
		if err != nil {
			logrus.Fatalf("%v: %v", compile, err)
		}
		defer inf.Close()

		asm := &cpu.Assembler{Verbose: verbose}
		for name, value := range emu.Defines() {
			asm.Predefine(name, value)
		}
		for name, value := range defines {
			asm.Predefine(name, value)
		}
		emu.Program, err = asm.Parse(inf)
		if err != nil {
			logrus.Fatalf("%v: %v", compile, err)
		}
	}

	err := emu.Reset()
	if err != nil {
		logrus.Fatal(err)
	}

	// Program images named on the command line are concatenated.
	if flag.NArg() != 0 {
		var images []*vio.Image
		for _, name := range flag.Args() {
			inf, err := os.Open(name)
			if err != nil {
				logrus.Fatalf("%v: %v", name, err)
			}
			defer inf.Close()
			images = append(images, &vio.Image{Input: inf})
		}
		_, err = loadImages(emu, images)
		if err != nil {
			logrus.Fatal(err)
		}
	}

	if len(output) != 0 {
		ouf, err := os.Create(output)
		if err != nil {
			logrus.Fatalf("%v: %v", output, err)
		}
		err = vio.WriteImage(ouf, emu.Snapshot().Memory)
		if err == nil {
			err = ouf.Close()
		}
		if err != nil {
			logrus.Fatalf("%v: %v", output, err)
		}
	}

	if save {
		return
	}

	interactive := len(compile) == 0 && flag.NArg() == 0 && term.IsTerminal(int(os.Stdin.Fd()))
	if interactive {
		menu(emu, os.Stdin, os.Stdout)
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	steps, err := emu.Run(ctx, limit)
	if verbose {
		logrus.Info(f("%d steps", steps))
	}
	dump(emu, os.Stdout)
	if err != nil {
		logrus.Fatal(err)
	}
}

// loadImages stores the concatenated tokens of the images into memory.
func loadImages(emu *emulator.Emulator, images []*vio.Image) (count int, err error) {
	var seqs []iter.Seq[string]
	for _, img := range images {
		seqs = append(seqs, img.Tokens())
	}

	count, err = emu.LoadTokens(internal.IterSeqConcat(seqs...))
	if err != nil {
		return
	}

	for _, img := range images {
		err = img.Err()
		if err != nil {
			return
		}
	}

	return
}

// dump writes the machine state to w, logging any write error.
func dump(emu *emulator.Emulator, w io.Writer) {
	err := emu.Dump(w)
	if err != nil {
		logrus.Error(err)
	}
}

// menu runs the interactive console menu.
func menu(emu *emulator.Emulator, in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)

	prompt := func(text string) (line string, ok bool) {
		fmt.Fprint(out, text)
		ok = scanner.Scan()
		line = strings.TrimSpace(scanner.Text())
		return
	}

	for {
		translate.To(out, "Machine Simulator - Menu:\n")
		translate.To(out, "1. Load file\n")
		translate.To(out, "2. Step-by-step execution\n")
		translate.To(out, "3. Print current state\n")
		translate.To(out, "4. Exit\n")

		choice, ok := prompt(f("Enter choice: "))
		if !ok {
			return
		}

		switch choice {
		case "1":
			name, ok := prompt(f("Enter file name: "))
			if !ok {
				return
			}
			inf, err := os.Open(name)
			if err != nil {
				logrus.Error(err)
				continue
			}
			count, err := emu.LoadImage(inf)
			inf.Close()
			if err != nil {
				logrus.Error(err)
			}
			translate.To(out, "Loaded %d cells.\n", count)
		case "2":
			// Errors are reported on the diagnostic channel.
			done, _ := emu.Tick()
			dump(emu, out)
			if done {
				translate.To(out, "Machine %v.\n", emu.Snapshot().State)
			}
		case "3":
			dump(emu, out)
		case "4":
			translate.To(out, "Exiting program.\n")
			return
		default:
			translate.To(out, "Invalid choice.\n")
		}
	}
}
