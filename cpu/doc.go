// Package cpu implements the Vole teaching machine and its assembler.
//
// The machine has sixteen registers (r0-r15), 256 memory cells, a program
// counter and an instruction register. Every register and memory cell holds
// its value as a string of hexadecimal digits, nominally two. An instruction
// is an eight character word held in a single memory cell:
//
//	[opcode][R][S][T][address:2][immediate:2]
//
// Five opcodes exist: L (load), S (store), A (integer add), J (jump if
// equal to r0) and H (halt). The ALU also provides an 8-bit floating point
// format with a sign bit, a 3-bit exponent biased by 4 and a 4-bit mantissa.
//
// The assembler translates a small mnemonic language into program images,
// supporting labels, equates and compile-time expression evaluation.
package cpu
