package cpu

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func mustParse(t *testing.T, program []string) (prog *Program) {
	assert := assert.New(t)

	parser := &Parser{}
	prog, err := parser.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
	}

	return
}

// isRunControl reports whether the error ends a run rather than a single
// instruction.
func isRunControl(err error) bool {
	return errors.Is(err, ErrProgramEnd) ||
		errors.Is(err, ErrHalted) ||
		errors.Is(err, ErrStackEmpty)
}

// runUntilDone ticks until a run control condition, ignoring recoverable
// instruction errors the way the scheduler does.
func runUntilDone(t *testing.T, cpu *Cpu, limit int) (err error) {
	for range limit {
		err = cpu.Tick()
		if isRunControl(err) {
			return
		}
	}

	t.Fatalf("no run control condition after %v ticks", limit)
	return
}

func TestCpu_Imm(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name  string
		line  string
		reg   int
		value uint8
	}){
		{"small", "IMM 0 5", 0, 5},
		{"max", "IMM 3 255", 3, 255},
		{"wrap", "IMM 1 300", 1, 44},
		{"negative", "IMM 2 -1", 2, 255},
		{"hex", "IMM 7 0x2a", 7, 42},
		{"last_register", "IMM 7 9", 7, 9},
	}

	for _, entry := range table {
		cpu := NewCpu()
		cpu.Load(mustParse(t, []string{entry.line}))

		assert.NoError(cpu.Tick(), entry.name)
		assert.Equal(entry.value, cpu.Register[entry.reg], entry.name)
		assert.Equal(1, cpu.Ip, entry.name)
	}
}

func TestCpu_Alu(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name  string
		line  string
		a, b  uint8
		value uint8
	}){
		{"add", "ADD 0 1 2", 5, 3, 8},
		{"add_wrap", "ADD 0 1 2", 200, 100, 44},
		{"sub", "SUB 0 1 2", 3, 5, 2},
		{"sub_wrap", "SUB 0 1 2", 5, 3, 254},
		{"or", "OR 0 1 2", 0b1010, 0b0101, 0b1111},
		{"xor", "XOR 0 1 2", 0b1100, 0b1010, 0b0110},
		{"and", "AND 0 1 2", 0b1100, 0b1010, 0b1000},
	}

	for _, entry := range table {
		cpu := NewCpu()
		cpu.Register[0] = entry.a
		cpu.Register[1] = entry.b
		cpu.Load(mustParse(t, []string{entry.line}))

		assert.NoError(cpu.Tick(), entry.name)
		assert.Equal(entry.value, cpu.Register[2], entry.name)
		// Sources are untouched.
		assert.Equal(entry.a, cpu.Register[0], entry.name)
		assert.Equal(entry.b, cpu.Register[1], entry.name)
	}
}

func TestCpu_AluInPlace(t *testing.T) {
	assert := assert.New(t)

	// The destination may alias a source register.
	cpu := NewCpu()
	cpu.Register[0] = 10
	cpu.Load(mustParse(t, []string{"ADD 0 0 0"}))

	assert.NoError(cpu.Tick())
	assert.Equal(uint8(20), cpu.Register[0])
}

func TestCpu_Not(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	cpu.Register[4] = 0b0000_1111
	cpu.Load(mustParse(t, []string{"NOT 4"}))

	assert.NoError(cpu.Tick())
	assert.Equal(uint8(0b1111_0000), cpu.Register[4])
}

func TestCpu_Rsh(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	cpu.Register[0] = 0b1000_0001
	cpu.Load(mustParse(t, []string{"RSH 0 1"}))

	assert.NoError(cpu.Tick())
	// Logical shift right by one.
	assert.Equal(uint8(0b0100_0000), cpu.Register[1])
	assert.Equal(uint8(0b1000_0001), cpu.Register[0])
}

func TestCpu_Memory(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"IMM 0 77",
		"RSTR 0 15",
		"RLOD 1 15",
	}

	cpu := NewCpu()
	cpu.Load(mustParse(t, program))

	assert.NoError(cpu.Tick())
	assert.NoError(cpu.Tick())
	assert.Equal(uint8(77), cpu.Memory[15])
	assert.NoError(cpu.Tick())
	assert.Equal(uint8(77), cpu.Register[1])
}

func TestCpu_Noop_Halts(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"NOOP",
		"IMM 0 9",
	}

	cpu := NewCpu()
	cpu.Load(mustParse(t, program))

	err := cpu.Tick()
	assert.ErrorIs(err, ErrHalted)
	// The remaining instruction never ran.
	assert.Equal(uint8(0), cpu.Register[0])
}

func TestCpu_ProgramEnd(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	cpu.Load(mustParse(t, []string{"IMM 0 5"}))

	assert.NoError(cpu.Tick())
	assert.ErrorIs(cpu.Tick(), ErrProgramEnd)
	// Terminal: every further tick reports the same.
	assert.ErrorIs(cpu.Tick(), ErrProgramEnd)
}

func TestCpu_Jump_Label(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"JMP 00 skip",
		"IMM 0 1",
		".skip",
		"IMM 1 2",
	}

	cpu := NewCpu()
	cpu.Load(mustParse(t, program))

	assert.NoError(cpu.Tick())
	assert.Equal(2, cpu.Ip) // exactly the label's own index

	err := runUntilDone(t, cpu, 10)
	assert.ErrorIs(err, ErrProgramEnd)
	assert.Equal(uint8(0), cpu.Register[0])
	assert.Equal(uint8(2), cpu.Register[1])
}

func TestCpu_Jump_Literal(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"JMP 00 3",
		"IMM 0 1",
		"IMM 1 2",
		"IMM 2 3",
	}

	cpu := NewCpu()
	cpu.Load(mustParse(t, program))

	assert.NoError(cpu.Tick())
	assert.Equal(3, cpu.Ip)
}

func TestCpu_Jump_Loop(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		".loop",
		"IMM 0 1",
		"JMP 00 loop",
	}

	cpu := NewCpu()
	cpu.Load(mustParse(t, program))

	// Never halts: the instruction pointer cycles through the loop.
	for range 100 {
		assert.NoError(cpu.Tick())
		assert.Less(cpu.Ip, 3)
	}
}

func TestCpu_Jump_Unresolved(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"JMP 00 nowhere",
		"IMM 0 7",
	}

	cpu := NewCpu()
	cpu.Load(mustParse(t, program))

	err := cpu.Tick()
	assert.ErrorIs(err, ErrUnresolvedTarget(""))
	// The jump is not taken; execution continues at the next line.
	assert.Equal(1, cpu.Ip)
	assert.NoError(cpu.Tick())
	assert.Equal(uint8(7), cpu.Register[0])
}

func TestCpu_Jump_InvalidKind(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	cpu.Load(mustParse(t, []string{"JMP 11 0", "IMM 0 1"}))

	err := cpu.Tick()
	assert.ErrorIs(err, ErrInvalidOperand)
	assert.Equal(1, cpu.Ip)
	assert.True(cpu.Stack.Empty())
}

func TestCpu_CallReturn(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"JMP 10 sub",
		"IMM 0 1",
		"NOOP",
		".sub",
		"IMM 1 2",
		"JMP 01",
	}

	cpu := NewCpu()
	cpu.Load(mustParse(t, program))

	assert.NoError(cpu.Tick()) // call
	assert.Equal(3, cpu.Ip)
	assert.Equal(1, cpu.Stack.Depth())

	err := runUntilDone(t, cpu, 10)
	assert.ErrorIs(err, ErrHalted)
	// The return resumed at the instruction after the call.
	assert.Equal(uint8(1), cpu.Register[0])
	assert.Equal(uint8(2), cpu.Register[1])
	assert.True(cpu.Stack.Empty())
}

func TestCpu_CallReturn_Nested(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"JMP 10 outer", // 0
		"NOOP",         // 1
		".outer",       // 2
		"IMM 0 1",      // 3
		"JMP 10 inner", // 4
		"IMM 2 3",      // 5
		"JMP 01",       // 6
		".inner",       // 7
		"IMM 1 2",      // 8
		"JMP 01",       // 9
	}

	cpu := NewCpu()
	cpu.Load(mustParse(t, program))

	err := runUntilDone(t, cpu, 30)
	assert.ErrorIs(err, ErrHalted)
	assert.Equal(uint8(1), cpu.Register[0])
	assert.Equal(uint8(2), cpu.Register[1])
	assert.Equal(uint8(3), cpu.Register[2])
	assert.True(cpu.Stack.Empty())
}

func TestCpu_Return_EmptyStack(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	cpu.Load(mustParse(t, []string{"JMP 01"}))

	err := cpu.Tick()
	assert.ErrorIs(err, ErrStackEmpty)
	// Registers and memory are unmodified.
	assert.Equal([REGISTER_COUNT]uint8{}, cpu.Register)
	assert.Equal([MEMORY_SIZE]uint8{}, cpu.Memory)
}

func TestCpu_InvalidOperands(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name string
		line string
		want error
	}){
		{"register_high", "IMM 8 5", ErrRegisterInvalid},
		{"register_negative", "IMM -1 5", ErrRegisterInvalid},
		{"register_malformed", "IMM x 5", ErrParseNumber("x")},
		{"add_dst_high", "ADD 0 1 9", ErrRegisterInvalid},
		{"address_high", "RLOD 0 16", ErrAddressInvalid},
		{"address_negative", "RSTR 0 -1", ErrAddressInvalid},
		{"imm_malformed", "IMM 0 five", ErrParseNumber("five")},
		{"imm_missing", "IMM 0", ErrOperandMissing},
		{"add_missing", "ADD 0 1", ErrOperandMissing},
		{"jump_missing", "JMP", ErrOperandMissing},
		{"jump_target_missing", "JMP 00", ErrOperandMissing},
	}

	for _, entry := range table {
		cpu := NewCpu()
		cpu.Load(mustParse(t, []string{entry.line, "IMM 0 1"}))

		err := cpu.Tick()
		assert.ErrorIs(err, ErrInvalidOperand, entry.name)
		assert.ErrorIs(err, entry.want, entry.name)

		// Nothing was mutated, and execution continues at the next line.
		assert.Equal([MEMORY_SIZE]uint8{}, cpu.Memory, entry.name)
		assert.Equal(1, cpu.Ip, entry.name)
		assert.NoError(cpu.Tick(), entry.name)
		assert.Equal(uint8(1), cpu.Register[0], entry.name)
	}
}

func TestCpu_InvalidOperand_NoPartialWrite(t *testing.T) {
	assert := assert.New(t)

	// The destination operand fails after both sources were read; no
	// register may change.
	cpu := NewCpu()
	cpu.Register[0] = 5
	cpu.Register[1] = 3
	cpu.Load(mustParse(t, []string{"ADD 0 1 8"}))

	err := cpu.Tick()
	assert.ErrorIs(err, ErrInvalidOperand)
	assert.Equal([REGISTER_COUNT]uint8{5, 3}, cpu.Register)
}

func TestCpu_UnknownInstruction(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"FROB 1 2",
		"IMM 0 3",
	}

	cpu := NewCpu()
	cpu.Load(mustParse(t, program))

	err := cpu.Tick()
	assert.ErrorIs(err, ErrUnknownInstruction(""))
	assert.Equal(1, cpu.Ip)

	assert.NoError(cpu.Tick())
	assert.Equal(uint8(3), cpu.Register[0])
}

func TestCpu_SkipsBlankAndLabelLines(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"",
		".here",
		"IMM 0 1",
	}

	cpu := NewCpu()
	cpu.Load(mustParse(t, program))

	assert.NoError(cpu.Tick())
	assert.Equal(1, cpu.Ip)
	assert.NoError(cpu.Tick())
	assert.Equal(2, cpu.Ip)
	assert.NoError(cpu.Tick())
	assert.Equal(uint8(1), cpu.Register[0])
}

func TestCpu_Example_AddProgram(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"IMM 0 5",
		"IMM 1 3",
		"ADD 0 1 2",
	}

	cpu := NewCpu()
	cpu.Load(mustParse(t, program))

	for range 3 {
		assert.NoError(cpu.Tick())
	}

	assert.Equal(uint8(8), cpu.Register[2])
	assert.Equal(uint8(5), cpu.Register[0])
	assert.Equal(uint8(3), cpu.Register[1])
}

func TestCpu_LoadPersistsRegisters(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	cpu.Register[0] = 42
	cpu.Memory[0] = 24
	cpu.Stack.Push(7)
	cpu.Ip = 3

	cpu.Load(mustParse(t, []string{"NOOP"}))

	// Load rewinds only the program counter and call stack.
	assert.Equal(0, cpu.Ip)
	assert.True(cpu.Stack.Empty())
	assert.Equal(uint8(42), cpu.Register[0])
	assert.Equal(uint8(24), cpu.Memory[0])
}

func TestCpu_Reset(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	cpu.Register[0] = 42
	cpu.Memory[0] = 24
	cpu.Stack.Push(7)
	cpu.Ip = 3

	cpu.Reset()

	assert.Equal([REGISTER_COUNT]uint8{}, cpu.Register)
	assert.Equal([MEMORY_SIZE]uint8{}, cpu.Memory)
	assert.True(cpu.Stack.Empty())
	assert.Equal(0, cpu.Ip)
}

func TestCpu_String(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	cpu.Register[0] = 16

	text := cpu.String()
	assert.Contains(text, "r0:  16 (0x10)")
	assert.Contains(text, "mem:")
}
