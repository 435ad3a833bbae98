// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO":         "0",
	"MEMORY_SIZE":    fmt.Sprintf("%#x", MEMORY_SIZE),
	"REGISTER_COUNT": fmt.Sprintf("%#x", REGISTER_COUNT),
	"START_ADDRESS":  fmt.Sprintf("%#x", START_ADDRESS),
}

var (
	exprRegexp  = regexp.MustCompile(`\$\([^\$]*\)`)
	labelRegexp = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// Assembler is a two pass assembler for the Vole machine.
//
// Each statement assembles to a single memory cell:
//
//	load rR ADDR     ; rR <- memory[ADDR]
//	store rR ADDR    ; memory[ADDR] <- rR
//	add rR rS rT     ; rT <- rR + rS
//	jump rR          ; pc <- rR, if rR == r0
//	halt
//	.word TOKEN      ; raw cell
//	.byte VALUE      ; data byte
//	.float VALUE     ; Float8 data byte
//
// Directives which assemble nothing:
//
//	LABEL:           ; bind LABEL to the current address
//	.org ADDR        ; continue assembly at ADDR
//	.equ NAME VALUE  ; substitute VALUE for the word NAME
//
// Values are Go integer literals, labels, or $(...) expressions, which are
// evaluated at assembly time with labels and numeric equates in scope.
type Assembler struct {
	Verbose   bool               // If set, logs each assembled statement.
	Log       logrus.FieldLogger // Destination of verbose logging.
	Statement []Statement        // List of assembled statements.

	predefine map[string]string // Predefines
	Label     map[string]int    // Map of labels to addresses.
	Equate    map[string]string // Map of equates.

	address int         // Current assembly address.
	used    map[int]int // Map of assembled addresses to line numbers.
}

// Predefine defines an equate present at the start of every Parse.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

func (asm *Assembler) logger() logrus.FieldLogger {
	if asm.Log == nil {
		return logrus.StandardLogger()
	}

	return asm.Log
}

// valueOf returns the value of a label or integer literal.
func (asm *Assembler) valueOf(word string) (value int, err error) {
	address, ok := asm.Label[word]
	if ok {
		value = address
		return
	}

	v64, err := strconv.ParseInt(word, 0, 32)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	value = int(v64)
	return
}

// byteOf returns a value that must fit in a cell.
func (asm *Assembler) byteOf(word string) (value int, err error) {
	value, err = asm.valueOf(word)
	if err != nil {
		return
	}

	if value < 0 || value > 0xff {
		err = ErrValueRange
		return
	}

	return
}

// register returns the index of a register name, r0 through r15.
func (asm *Assembler) register(word string) (reg int, err error) {
	num, ok := strings.CutPrefix(word, "r")
	if !ok {
		err = ErrRegisterInvalid
		return
	}

	reg, err = strconv.Atoi(num)
	if err != nil || reg < 0 || reg >= REGISTER_COUNT || strconv.Itoa(reg) != num {
		reg = 0
		err = ErrRegisterInvalid
		return
	}

	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		v64, err := strconv.ParseInt(str, 0, 32)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			continue
		}
		pred[key] = starlark.MakeInt(int(v64))
	}
	for key, address := range asm.Label {
		pred[key] = starlark.MakeInt(address)
	}

	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}

	value = int(st_int64)
	return
}

// parseLine splits a line into words, evaluating expressions and equates.
// Words are returned even when an expression fails, with the failing
// expression left in place.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	words = strings.Fields(line)
	if len(words) == 0 {
		return
	}

	// .equ NAME VALUE
	if words[0] == ".equ" {
		args := words[1:]
		words = nil
		if len(args) != 2 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[args[0]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		value := args[1]
		if exprRegexp.MatchString(value) {
			var v int
			v, err = asm.parenEval(value[2 : len(value)-1])
			if err == nil {
				value = fmt.Sprintf("%#x", v)
			}
		}
		asm.Equate[args[0]] = value
		return
	}

	// Do $() evaluations
	line = exprRegexp.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			if err == nil {
				err = _err
			}
			return str
		}
		return fmt.Sprintf("%#x", value)
	})

	words = strings.Fields(line)
	for n, word := range words {
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	return
}

// Parse parses an input stream into a Program.
//
// The first pass binds labels to addresses; the second assembles cells,
// so labels may be used before they are defined.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var lines []string
	for scanner.Scan() {
		text, _, _ := strings.Cut(scanner.Text(), ";")
		lines = append(lines, strings.TrimSpace(text))
	}
	err = scanner.Err()
	if err != nil {
		return
	}

	if asm.Label == nil {
		asm.Label = make(map[string]int, 16)
	}
	clear(asm.Label)
	asm.Statement = asm.Statement[:0]

	err = asm.pass(lines, false)
	if err != nil {
		return
	}

	err = asm.pass(lines, true)
	if err != nil {
		return
	}

	prog = &Program{
		Statements: slices.Clone(asm.Statement),
	}

	return
}

// pass runs a single assembly pass over the source lines.
// Only the emitting pass assembles statements.
func (asm *Assembler) pass(lines []string, emit bool) (err error) {
	var line string
	var lineno int

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	asm.address = 0
	asm.used = make(map[int]int)
	asm.Equate = maps.Clone(sysEquate)
	maps.Copy(asm.Equate, asm.predefine)

	for n, text := range lines {
		line = text
		lineno = n + 1

		var words []string
		words, err = asm.parseLine(line, lineno)
		if err != nil {
			// Forward references are resolved by the emitting pass,
			// but addresses must be known in the first.
			if emit || (len(words) > 0 && words[0] == ".org") {
				return
			}
			err = nil
		}

		err = asm.parseWords(words, lineno, emit)
		if err != nil {
			return
		}
	}

	return
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int, emit bool) (err error) {
	for len(words) > 0 && strings.HasSuffix(words[0], ":") {
		label := strings.TrimSuffix(words[0], ":")
		words = words[1:]
		if emit {
			continue
		}
		if !labelRegexp.MatchString(label) {
			err = ErrLabelInvalid
			return
		}
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}
		asm.Label[label] = asm.address
	}

	// no-op
	if len(words) == 0 {
		return
	}

	if words[0] == ".org" {
		if len(words) < 2 {
			err = ErrOpcodeValueMissing
			return
		}
		if len(words) > 2 {
			err = ErrOpcodeExtraArgs
			return
		}
		var address int
		address, err = asm.valueOf(words[1])
		if err != nil {
			return
		}
		if address < 0 || address >= MEMORY_SIZE {
			err = ErrAddress{Space: "memory", Address: address}
			return
		}
		asm.address = address
		return
	}

	if asm.address >= MEMORY_SIZE {
		err = ErrAddress{Space: "memory", Address: asm.address}
		return
	}

	if !emit {
		asm.address++
		return
	}

	cell, err := asm.assemble(words)
	if err != nil {
		return
	}

	_, ok := asm.used[asm.address]
	if ok {
		err = ErrAddressOverlap
		return
	}
	asm.used[asm.address] = lineno

	stmt := Statement{
		LineNo:  lineno,
		Address: asm.address,
		Words:   slices.Clone(words),
		Cell:    cell,
	}
	asm.Statement = append(asm.Statement, stmt)

	if asm.Verbose {
		asm.logger().Infof("%02X: %-8v %v", stmt.Address, stmt.Cell, strings.Join(stmt.Words, " "))
	}

	asm.address++
	return
}

// assemble encodes a single statement into a cell.
func (asm *Assembler) assemble(words []string) (cell Cell, err error) {
	args := words[1:]

	need := func(count int) error {
		switch {
		case len(args) < count:
			return ErrOpcodeValueMissing
		case len(args) > count:
			return ErrOpcodeExtraArgs
		}
		return nil
	}

	var inst Instruction

	switch words[0] {
	case "load", "store":
		err = need(2)
		if err != nil {
			return
		}
		inst.Opcode = OP_LOAD
		if words[0] == "store" {
			inst.Opcode = OP_STORE
		}
		inst.R, err = asm.register(args[0])
		if err != nil {
			return
		}
		inst.Address, err = asm.byteOf(args[1])
		if err != nil {
			return
		}
	case "add":
		err = need(3)
		if err != nil {
			return
		}
		inst.Opcode = OP_ADD
		for n, reg := range []*int{&inst.R, &inst.S, &inst.T} {
			*reg, err = asm.register(args[n])
			if err != nil {
				return
			}
		}
	case "jump":
		err = need(1)
		if err != nil {
			return
		}
		inst.Opcode = OP_JUMP
		inst.R, err = asm.register(args[0])
		if err != nil {
			return
		}
	case "halt":
		err = need(0)
		if err != nil {
			return
		}
		inst.Opcode = OP_HALT
	case ".word":
		err = need(1)
		if err != nil {
			return
		}
		cell = Cell(args[0])
		return
	case ".byte":
		err = need(1)
		if err != nil {
			return
		}
		var value int
		value, err = asm.byteOf(args[0])
		if err != nil {
			return
		}
		cell = Cell(IntToHex(value))
		return
	case ".float":
		err = need(1)
		if err != nil {
			return
		}
		var value float64
		value, err = strconv.ParseFloat(args[0], 64)
		if err != nil {
			err = ErrParseNumber(args[0])
			return
		}
		var fl Float8
		fl, err = Float8FromFloat64(value)
		if err != nil {
			return
		}
		cell = fl.Cell()
		return
	default:
		err = ErrInstructionInvalid
		return
	}

	cell = Cell(inst.Word())
	return
}
