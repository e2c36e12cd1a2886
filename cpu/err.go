package cpu

import (
	"errors"

	"github.com/ezrec/ucpu/translate"
)

var f = translate.From

var (
	// Run control conditions
	ErrProgramEnd = errors.New(f("program finished"))
	ErrHalted     = errors.New(f("halted"))
	ErrStackEmpty = errors.New(f("call stack empty"))

	// Instruction errors
	ErrInvalidOperand  = errors.New(f("invalid operand"))
	ErrRegisterInvalid = errors.New(f("register invalid"))
	ErrAddressInvalid  = errors.New(f("address invalid"))
	ErrOperandMissing  = errors.New(f("operand missing"))
	ErrJumpInvalid     = errors.New(f("jump kind invalid"))
)

type ErrUnknownInstruction string

func (eu ErrUnknownInstruction) Error() string {
	return f("unknown instruction '%v'", string(eu))
}

func (eu ErrUnknownInstruction) Is(err error) (ok bool) {
	_, ok = err.(ErrUnknownInstruction)
	return
}

type ErrUnresolvedTarget string

func (eu ErrUnresolvedTarget) Error() string {
	return f("target '%v' unresolved", string(eu))
}

func (eu ErrUnresolvedTarget) Is(err error) (ok bool) {
	_, ok = err.(ErrUnresolvedTarget)
	return
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}
