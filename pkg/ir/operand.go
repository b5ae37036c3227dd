package ir

import (
	"fmt"
	"strings"
)

type Kind string

// Operand kinds accepted by the loader
const (
	KindInt    Kind = "int"
	KindBool   Kind = "bool"
	KindString Kind = "string"
	KindFloat  Kind = "float"
	KindNil    Kind = "nil"
	KindType   Kind = "type"
	KindLabel  Kind = "label"
	KindVar    Kind = "var"
)

// ParseKind validates an operand kind name
func ParseKind(s string) (Kind, bool) {
	switch k := Kind(s); k {
	case KindInt, KindBool, KindString, KindFloat, KindNil, KindType, KindLabel, KindVar:
		return k, true
	default:
		return "", false
	}
}

// IsLiteral reports whether the kind is a constant usable as a symbol
func (k Kind) IsLiteral() bool {
	switch k {
	case KindInt, KindBool, KindString, KindFloat, KindNil:
		return true
	default:
		return false
	}
}

type Operand struct {
	Kind Kind
	Text string // decoded payload (escape sequences already resolved)
}

// Frame prefixes of a variable reference
const (
	FrameGlobal    = "GF"
	FrameLocal     = "LF"
	FrameTemporary = "TF"
)

// Var splits a variable reference "GF@name" into its frame and name
func (o Operand) Var() (frame, name string, err error) {
	if o.Kind != KindVar {
		return "", "", fmt.Errorf("operand %s is not a variable", o)
	}

	frame, name, ok := strings.Cut(o.Text, "@")
	if !ok || name == "" {
		return "", "", fmt.Errorf("malformed variable %q", o.Text)
	}

	switch frame {
	case FrameGlobal, FrameLocal, FrameTemporary:
		return frame, name, nil
	default:
		return "", "", fmt.Errorf("unknown frame %q in %q", frame, o.Text)
	}
}

func (o Operand) String() string {
	if o.Kind == KindVar || o.Kind == KindLabel {
		return o.Text
	}
	return string(o.Kind) + "@" + o.Text
}

// Var, Label and Sym build operands, mostly for tests and tools
func Var(ref string) Operand { return Operand{Kind: KindVar, Text: ref} }

func Label(name string) Operand { return Operand{Kind: KindLabel, Text: name} }

func Sym(kind Kind, text string) Operand { return Operand{Kind: kind, Text: text} }

// Type builds a type literal operand
func Type(name string) Operand { return Operand{Kind: KindType, Text: name} }
