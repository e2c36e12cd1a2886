package cpu

import (
	"strconv"
)

// Program is a parsed program: the raw source lines and the label table built
// by the Parser. Line indexes double as instruction indexes for the program
// counter, the call stack, and label targets. A Program is never mutated
// during execution.
type Program struct {
	Lines  []string
	Labels map[string]int
}

// Len returns the number of program lines.
func (prog *Program) Len() int {
	return len(prog.Lines)
}

// Line returns the raw line at an instruction index, or the empty string when
// the index is out of range.
func (prog *Program) Line(index int) (line string) {
	if index >= 0 && index < len(prog.Lines) {
		line = prog.Lines[index]
	}
	return
}

// Resolve maps a jump target token to an instruction index. A known label
// wins; otherwise the token must parse as a literal instruction index.
func (prog *Program) Resolve(target string) (index int, err error) {
	index, ok := prog.Labels[target]
	if ok {
		return
	}

	value, perr := strconv.ParseInt(target, 0, strconv.IntSize)
	if perr != nil {
		err = ErrUnresolvedTarget(target)
		return
	}

	index = int(value)

	return
}
