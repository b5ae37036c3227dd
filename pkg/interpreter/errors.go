package interpreter

import (
	"errors"
	"fmt"

	"ippi/pkg/ir"
)

type ErrorKind int

const (
	InternalError ErrorKind = iota
	StructuralError
	UndefinedLabel
	VariableRedefined
	OperandTypeError
	VariableNotDeclared
	FrameNotFound
	MissingValue
	StackUnderflow
	RuntimeValueError
	StringIndexError
)

var errorKindNames = map[ErrorKind]string{
	InternalError:       "internal error",
	StructuralError:     "structural error",
	UndefinedLabel:      "undefined label",
	VariableRedefined:   "variable redefined",
	OperandTypeError:    "operand type error",
	VariableNotDeclared: "variable not declared",
	FrameNotFound:       "frame not found",
	MissingValue:        "missing value",
	StackUnderflow:      "stack underflow",
	RuntimeValueError:   "runtime value error",
	StringIndexError:    "string index error",
}

func (k ErrorKind) String() string {
	if s, ok := errorKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// ExitCode returns the process status reserved for the error kind.
// Codes follow the IPPcode20 harness, which groups some kinds under one code.
func (k ErrorKind) ExitCode() int {
	switch k {
	case StructuralError:
		return 32
	case UndefinedLabel, VariableRedefined:
		return 52
	case OperandTypeError:
		return 53
	case VariableNotDeclared:
		return 54
	case FrameNotFound:
		return 55
	case MissingValue, StackUnderflow:
		return 56
	case RuntimeValueError:
		return 57
	case StringIndexError:
		return 58
	default:
		return 99
	}
}

// Error is a fatal execution error. PC is -1 when the error is not tied to an instruction.
type Error struct {
	Kind  ErrorKind
	PC    int
	Order int
	Op    ir.Opcode
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	msg := e.Msg
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}

	if e.PC < 0 {
		return fmt.Sprintf("%s: %s", e.Kind, msg)
	}
	return fmt.Sprintf("%s at instruction %d (order %d, %s): %s", e.Kind, e.PC, e.Order, e.Op, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ExitCode returns the status code of the error kind
func (e *Error) ExitCode() int {
	return e.Kind.ExitCode()
}

// errorf creates an Error not yet bound to an instruction
func errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, PC: -1, Msg: fmt.Sprintf(format, args...)}
}

// KindOf extracts the ErrorKind of err, reporting false for foreign errors
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return InternalError, false
}

var (
	ErrMaxStepsExceeded = errors.New("maximum steps exceeded")
)
