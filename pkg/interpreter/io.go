package interpreter

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"ippi/pkg/ir"
)

// readLine returns the next input line without its terminator. ok is false at end of input.
func (i *Interpreter) readLine() (string, bool, error) {
	line, err := i.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", false, &Error{Kind: InternalError, PC: -1, Msg: "reading input", Err: err}
	}
	if line == "" && err != nil {
		return "", false, nil
	}

	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line, true, nil
}

type flusher interface {
	Flush() error
}

// read implements READ: conversion failures and end of input yield nil
func (i *Interpreter) read(typ string) (Value, error) {
	switch ValueKind(typ) {
	case KindInt, KindString, KindBool, KindFloat:
	default:
		return Value{}, errorf(RuntimeValueError, "READ does not support type %q", typ)
	}

	// a prompt written before READ must be visible while it blocks
	if f, ok := i.out.(flusher); ok {
		if err := f.Flush(); err != nil {
			return Value{}, &Error{Kind: InternalError, PC: -1, Msg: "writing output", Err: err}
		}
	}

	line, ok, err := i.readLine()
	if err != nil {
		return Value{}, err
	}
	if !ok || line == "" {
		return Nil, nil
	}

	switch ValueKind(typ) {
	case KindInt:
		n, err := strconv.ParseInt(strings.TrimSpace(line), 10, 64)
		if err != nil {
			return Nil, nil
		}
		return NewInt(n), nil

	case KindFloat:
		f, err := ParseHexFloat(line)
		if err != nil {
			return Nil, nil
		}
		return NewFloat(f), nil

	case KindBool:
		return NewBool(strings.EqualFold(line, "true")), nil

	default:
		return NewString(line), nil
	}
}

// write implements WRITE
func (i *Interpreter) write(v Value) error {
	if _, err := io.WriteString(i.out, v.String()); err != nil {
		return &Error{Kind: InternalError, PC: -1, Msg: "writing output", Err: err}
	}
	return nil
}

// dprint implements DPRINT
func (i *Interpreter) dprint(v Value) error {
	if _, err := io.WriteString(i.diag, v.Text); err != nil {
		return &Error{Kind: InternalError, PC: -1, Msg: "writing diagnostics", Err: err}
	}
	return nil
}

// typeOf implements TYPE, the one read that tolerates a declared-empty variable
func (i *Interpreter) typeOf(op ir.Operand) (Value, error) {
	if op.Kind != ir.KindVar {
		v, err := i.resolve(op)
		if err != nil {
			return Value{}, err
		}
		return NewString(string(v.Kind)), nil
	}

	frame, name, err := op.Var()
	if err != nil {
		return Value{}, errorf(StructuralError, "%v", err)
	}
	v, state, err := i.frames.Inspect(frame, name)
	if err != nil {
		return Value{}, err
	}
	if state == Declared {
		return NewString(""), nil
	}
	return NewString(string(v.Kind)), nil
}
