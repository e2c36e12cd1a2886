package cpu

import (
	"strings"
)

// Op is an executable instruction opcode.
type Op int

//go:generate go tool stringer -linecomment -type=Op
const (
	OP_NOOP = Op(0)  // NOOP
	OP_ADD  = Op(1)  // ADD
	OP_SUB  = Op(2)  // SUB
	OP_OR   = Op(3)  // OR
	OP_XOR  = Op(4)  // XOR
	OP_AND  = Op(5)  // AND
	OP_NOT  = Op(6)  // NOT
	OP_RSH  = Op(7)  // RSH
	OP_IMM  = Op(8)  // IMM
	OP_JMP  = Op(9)  // JMP
	OP_RLOD = Op(10) // RLOD
	OP_RSTR = Op(11) // RSTR
)

// opMap maps command tokens to opcodes. Command matching is case-insensitive.
var opMap = map[string]Op{
	"NOOP": OP_NOOP,
	"ADD":  OP_ADD,
	"SUB":  OP_SUB,
	"OR":   OP_OR,
	"XOR":  OP_XOR,
	"AND":  OP_AND,
	"NOT":  OP_NOT,
	"RSH":  OP_RSH,
	"IMM":  OP_IMM,
	"JMP":  OP_JMP,
	"RLOD": OP_RLOD,
	"RSTR": OP_RSTR,
}

// JumpKind selects the flavor of a JMP instruction.
type JumpKind int

//go:generate go tool stringer -linecomment -type=JumpKind
const (
	JUMP_GOTO   = JumpKind(0) // 00
	JUMP_CALL   = JumpKind(1) // 10
	JUMP_RETURN = JumpKind(2) // 01
)

// jumpMap maps the jump-type tag token to its kind.
var jumpMap = map[string]JumpKind{
	"00": JUMP_GOTO,
	"10": JUMP_CALL,
	"01": JUMP_RETURN,
}

// Instruction is a single decoded statement: the opcode and its raw operand
// tokens. Operand interpretation is deferred to execution.
type Instruction struct {
	Op   Op
	Args []string
}

// IsStatement reports whether a line holds an executable statement. Blank
// lines and label declarations are inert.
func IsStatement(line string) bool {
	trimmed := strings.TrimSpace(line)
	return len(trimmed) != 0 && !strings.HasPrefix(trimmed, LABEL_MARKER)
}

// Decode tokenizes a statement line into an Instruction. Only the command
// token is interpreted here; an unrecognized command yields
// ErrUnknownInstruction.
func Decode(line string) (inst Instruction, err error) {
	words := strings.Fields(line)
	if len(words) == 0 {
		err = ErrUnknownInstruction(line)
		return
	}

	op, ok := opMap[strings.ToUpper(words[0])]
	if !ok {
		err = ErrUnknownInstruction(words[0])
		return
	}

	inst = Instruction{Op: op, Args: words[1:]}

	return
}
