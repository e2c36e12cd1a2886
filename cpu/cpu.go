// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"
	"strconv"
	"strings"
)

const (
	REGISTER_COUNT = 8  // Number of general purpose registers.
	MEMORY_SIZE    = 16 // Bytes of flat addressable memory.
)

var _cpu_defines = map[string]string{
	"REGISTER_COUNT": fmt.Sprintf("%v", REGISTER_COUNT),
	"MEMORY_SIZE":    fmt.Sprintf("%v", MEMORY_SIZE),
}

// Cpu is the interpreter state: register file, memory, call stack, program
// counter, and the loaded program. A Cpu is exclusively owned by its driver;
// nothing here is safe for concurrent use.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Register [REGISTER_COUNT]uint8 // Register bank.
	Memory   [MEMORY_SIZE]uint8    // Flat memory.
	Stack    Stack                 // Call-return stack.
	Ip       int                   // Current instruction index.
	Program  *Program              // Currently loaded program.
}

// NewCpu creates a CPU with an empty program loaded.
func NewCpu() (cpu *Cpu) {
	cpu = &Cpu{
		Program: &Program{},
	}

	return
}

// Defines for the cpu.
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// Load attaches a program, clears the call stack, and rewinds the instruction
// pointer. Registers and memory deliberately persist across loads; use Reset
// to clear them.
func (cpu *Cpu) Load(prog *Program) {
	cpu.Program = prog
	cpu.Stack.Reset()
	cpu.Ip = 0
}

// Reset clears all interpreter state.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	clear(cpu.Register[:])
	clear(cpu.Memory[:])
	cpu.Stack.Reset()
	cpu.Ip = 0
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	text = fmt.Sprintf("   ip: %v\n", cpu.Ip)
	for n, val := range cpu.Register {
		text += fmt.Sprintf("   r%d: %3d (0x%02x)\n", n, val, val)
	}
	text += "  mem:"
	for _, val := range cpu.Memory {
		text += fmt.Sprintf(" %02x", val)
	}
	text += fmt.Sprintf("\nstack: depth %v\n", cpu.Stack.Depth())

	return
}

// Tick fetches and executes the instruction at the current instruction index.
//
// The returned error is either a run control condition (ErrProgramEnd,
// ErrHalted, ErrStackEmpty) or a recoverable instruction error; in the
// recoverable case the failing instruction has been abandoned and the
// instruction pointer already advanced to the next line.
func (cpu *Cpu) Tick() (err error) {
	if cpu.Ip < 0 || cpu.Ip >= cpu.Program.Len() {
		err = ErrProgramEnd
		return
	}

	line := cpu.Program.Line(cpu.Ip)
	if !IsStatement(line) {
		cpu.Ip++
		return
	}

	if cpu.Verbose {
		log.Printf("%3d: %v", cpu.Ip, strings.TrimSpace(line))
	}

	inst, err := Decode(line)
	if err != nil {
		cpu.Ip++
		return
	}

	err = cpu.Execute(inst)
	if err != nil {
		cpu.Ip++
	}

	return
}

// Execute runs a single decoded instruction against the CPU state. On error
// no register or memory write has been applied; the caller decides where
// execution resumes. On success the instruction pointer has been advanced,
// either to the next line or to a jump target.
func (cpu *Cpu) Execute(inst Instruction) (err error) {
	defer func() {
		if err != nil && cpu.Verbose {
			log.Printf("cpu: %v: %v", inst.Op, err)
		}
	}()

	next_ip := cpu.Ip + 1

	switch inst.Op {
	case OP_NOOP:
		// Explicit program terminator.
		err = ErrHalted
		return
	case OP_ADD, OP_SUB, OP_OR, OP_XOR, OP_AND:
		var a, b uint8
		var c int
		a, err = cpu.regValue(inst.Args, 0)
		if err != nil {
			return
		}
		b, err = cpu.regValue(inst.Args, 1)
		if err != nil {
			return
		}
		c, err = cpu.regIndex(inst.Args, 2)
		if err != nil {
			return
		}
		cpu.Register[c] = doAlu(inst.Op, a, b)
	case OP_NOT:
		var a int
		a, err = cpu.regIndex(inst.Args, 0)
		if err != nil {
			return
		}
		cpu.Register[a] = ^cpu.Register[a]
	case OP_RSH:
		var a uint8
		var b int
		a, err = cpu.regValue(inst.Args, 0)
		if err != nil {
			return
		}
		b, err = cpu.regIndex(inst.Args, 1)
		if err != nil {
			return
		}
		cpu.Register[b] = a >> 1
	case OP_IMM:
		var a int
		var value uint8
		a, err = cpu.regIndex(inst.Args, 0)
		if err != nil {
			return
		}
		value, err = cpu.immValue(inst.Args, 1)
		if err != nil {
			return
		}
		cpu.Register[a] = value
	case OP_JMP:
		err = cpu.jump(inst.Args, &next_ip)
		if err != nil {
			return
		}
	case OP_RLOD:
		var a, addr int
		a, err = cpu.regIndex(inst.Args, 0)
		if err != nil {
			return
		}
		addr, err = cpu.memIndex(inst.Args, 1)
		if err != nil {
			return
		}
		cpu.Register[a] = cpu.Memory[addr]
	case OP_RSTR:
		var a, addr int
		a, err = cpu.regIndex(inst.Args, 0)
		if err != nil {
			return
		}
		addr, err = cpu.memIndex(inst.Args, 1)
		if err != nil {
			return
		}
		cpu.Memory[addr] = cpu.Register[a]
	default:
		err = ErrUnknownInstruction(inst.Op.String())
		return
	}

	cpu.Ip = next_ip

	return
}

// jump handles the three JMP flavors: unconditional (00), call (10), and
// return (01).
func (cpu *Cpu) jump(args []string, next_ip *int) (err error) {
	if len(args) < 1 {
		err = errors.Join(ErrInvalidOperand, ErrOperandMissing)
		return
	}

	kind, ok := jumpMap[args[0]]
	if !ok {
		err = errors.Join(ErrInvalidOperand, ErrJumpInvalid)
		return
	}

	switch kind {
	case JUMP_RETURN:
		index, ok := cpu.Stack.Pop()
		if !ok {
			err = ErrStackEmpty
			return
		}
		*next_ip = index
	case JUMP_GOTO, JUMP_CALL:
		if len(args) < 2 {
			err = errors.Join(ErrInvalidOperand, ErrOperandMissing)
			return
		}
		var index int
		index, err = cpu.Program.Resolve(args[1])
		if err != nil {
			// Unresolved target: the jump is not taken.
			return
		}
		if kind == JUMP_CALL {
			cpu.Stack.Push(cpu.Ip + 1)
		}
		*next_ip = index
	}

	return
}

// doAlu performs the requested three-register ALU action. The result wraps
// silently at 8 bits; no overflow flag is modeled.
func doAlu(op Op, a, b uint8) (output uint8) {
	switch op {
	case OP_ADD:
		output = b + a
	case OP_SUB:
		output = b - a
	case OP_OR:
		output = a | b
	case OP_XOR:
		output = a ^ b
	case OP_AND:
		output = a & b
	}

	return
}

// regIndex parses operand n as a register index.
func (cpu *Cpu) regIndex(args []string, n int) (index int, err error) {
	if n >= len(args) {
		err = errors.Join(ErrInvalidOperand, ErrOperandMissing)
		return
	}

	value, perr := strconv.ParseInt(args[n], 0, strconv.IntSize)
	if perr != nil {
		err = errors.Join(ErrInvalidOperand, ErrParseNumber(args[n]))
		return
	}
	if value < 0 || value >= REGISTER_COUNT {
		err = errors.Join(ErrInvalidOperand, ErrRegisterInvalid)
		return
	}

	index = int(value)

	return
}

// regValue parses operand n as a register index and reads that register.
func (cpu *Cpu) regValue(args []string, n int) (value uint8, err error) {
	index, err := cpu.regIndex(args, n)
	if err != nil {
		return
	}

	value = cpu.Register[index]

	return
}

// memIndex parses operand n as a memory address.
func (cpu *Cpu) memIndex(args []string, n int) (index int, err error) {
	if n >= len(args) {
		err = errors.Join(ErrInvalidOperand, ErrOperandMissing)
		return
	}

	value, perr := strconv.ParseInt(args[n], 0, strconv.IntSize)
	if perr != nil {
		err = errors.Join(ErrInvalidOperand, ErrParseNumber(args[n]))
		return
	}
	if value < 0 || value >= MEMORY_SIZE {
		err = errors.Join(ErrInvalidOperand, ErrAddressInvalid)
		return
	}

	index = int(value)

	return
}

// immValue parses operand n as an immediate literal, truncated to 8 bits.
func (cpu *Cpu) immValue(args []string, n int) (value uint8, err error) {
	if n >= len(args) {
		err = errors.Join(ErrInvalidOperand, ErrOperandMissing)
		return
	}

	value64, perr := strconv.ParseInt(args[n], 0, 64)
	if perr != nil {
		err = errors.Join(ErrInvalidOperand, ErrParseNumber(args[n]))
		return
	}

	value = uint8(value64)

	return
}
