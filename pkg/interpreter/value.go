package interpreter

import (
	"fmt"
	"strconv"
	"strings"

	"ippi/pkg/ir"
)

type ValueKind string

const (
	KindNil    ValueKind = "nil"
	KindBool   ValueKind = "bool"
	KindInt    ValueKind = "int"
	KindFloat  ValueKind = "float"
	KindString ValueKind = "string"
	KindLabel  ValueKind = "label"
	KindType   ValueKind = "type"
)

// Value is an immutable tagged value. Text holds the canonical payload:
// decimal for int, true/false for bool, hexadecimal for float and nil for nil.
type Value struct {
	Kind ValueKind
	Text string
}

// String renders the value the way WRITE prints it.
func (v Value) String() string {
	switch v.Kind {
	case KindNil:
		return ""
	case KindFloat:
		if s, err := NormalizeHexFloat(v.Text); err == nil {
			return s
		}
		return v.Text
	default:
		return v.Text
	}
}

// GoString renders the value with its type for diagnostics.
func (v Value) GoString() string {
	return string(v.Kind) + "@" + v.Text
}

// AsInt64 returns the payload of an int value.
func (v Value) AsInt64() (int64, error) {
	if v.Kind != KindInt {
		return 0, fmt.Errorf("cannot use %s as int", v.Kind)
	}
	return strconv.ParseInt(v.Text, 10, 64)
}

// AsFloat64 returns the payload of a float value.
func (v Value) AsFloat64() (float64, error) {
	if v.Kind != KindFloat {
		return 0, fmt.Errorf("cannot use %s as float", v.Kind)
	}
	return ParseHexFloat(v.Text)
}

// AsBool returns the payload of a bool value.
func (v Value) AsBool() (bool, error) {
	if v.Kind != KindBool {
		return false, fmt.Errorf("cannot use %s as bool", v.Kind)
	}
	return v.Text == "true", nil
}

// IsNil reports whether v is the nil value
func (v Value) IsNil() bool {
	return v.Kind == KindNil
}

// NewInt creates a new integer Value.
func NewInt(i int64) Value {
	return Value{Kind: KindInt, Text: strconv.FormatInt(i, 10)}
}

// NewFloat creates a new float Value in canonical hexadecimal form.
func NewFloat(f float64) Value {
	return Value{Kind: KindFloat, Text: FormatHexFloat(f)}
}

// NewBool creates a new boolean Value.
func NewBool(b bool) Value {
	if b {
		return Value{Kind: KindBool, Text: "true"}
	}
	return Value{Kind: KindBool, Text: "false"}
}

// NewString creates a new string Value.
func NewString(s string) Value {
	return Value{Kind: KindString, Text: s}
}

// Nil is the nil value.
var Nil = Value{Kind: KindNil, Text: "nil"}

// literalValue converts a constant operand into a Value, normalizing its payload.
func literalValue(op ir.Operand) (Value, error) {
	switch op.Kind {
	case ir.KindInt:
		n, err := strconv.ParseInt(strings.TrimSpace(op.Text), 10, 64)
		if err != nil {
			return Value{}, errorf(StructuralError, "invalid int literal %q", op.Text)
		}
		return NewInt(n), nil

	case ir.KindFloat:
		f, err := ParseHexFloat(op.Text)
		if err != nil {
			return Value{}, errorf(StructuralError, "invalid float literal %q", op.Text)
		}
		return NewFloat(f), nil

	case ir.KindBool:
		switch op.Text {
		case "true", "false":
			return Value{Kind: KindBool, Text: op.Text}, nil
		}
		return Value{}, errorf(StructuralError, "invalid bool literal %q", op.Text)

	case ir.KindNil:
		if op.Text != "nil" {
			return Value{}, errorf(StructuralError, "invalid nil literal %q", op.Text)
		}
		return Nil, nil

	case ir.KindString:
		return NewString(op.Text), nil

	case ir.KindLabel:
		return Value{Kind: KindLabel, Text: op.Text}, nil

	case ir.KindType:
		return Value{Kind: KindType, Text: op.Text}, nil

	default:
		return Value{}, errorf(StructuralError, "operand %s is not a literal", op)
	}
}
