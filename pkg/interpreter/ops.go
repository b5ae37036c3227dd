package interpreter

import (
	"math"
	"strings"
	"unicode/utf8"

	"ippi/pkg/ir"
)

// evalBinary evaluates a two-operand operation. Stack variants pass their scalar opcode.
func evalBinary(op ir.Opcode, a, b Value) (Value, error) {
	switch op {
	case ir.OpAdd, ir.OpSub, ir.OpMul:
		return arith(op, a, b)

	case ir.OpIDiv:
		return idiv(a, b)

	case ir.OpDiv:
		return fdiv(a, b)

	case ir.OpLt, ir.OpGt:
		return relation(op, a, b)

	case ir.OpEq:
		eq, err := equals(a, b)
		if err != nil {
			return Value{}, err
		}
		return NewBool(eq), nil

	case ir.OpAnd, ir.OpOr:
		ab, err := a.AsBool()
		if err != nil {
			return Value{}, typeErrorf(op, a, b)
		}
		bb, err := b.AsBool()
		if err != nil {
			return Value{}, typeErrorf(op, a, b)
		}
		if op == ir.OpAnd {
			return NewBool(ab && bb), nil
		}
		return NewBool(ab || bb), nil

	case ir.OpConcat:
		if a.Kind != KindString || b.Kind != KindString {
			return Value{}, typeErrorf(op, a, b)
		}
		return NewString(a.Text + b.Text), nil

	case ir.OpGetChar, ir.OpStri2Int:
		if a.Kind != KindString || b.Kind != KindInt {
			return Value{}, typeErrorf(op, a, b)
		}
		r, err := runeAt(a.Text, b)
		if err != nil {
			return Value{}, err
		}
		if op == ir.OpGetChar {
			return NewString(string(r)), nil
		}
		return NewInt(int64(r)), nil

	default:
		return Value{}, errorf(InternalError, "%s is not a binary operation", op)
	}
}

// evalUnary evaluates a one-operand operation. Stack variants pass their scalar opcode.
func evalUnary(op ir.Opcode, a Value) (Value, error) {
	switch op {
	case ir.OpNot:
		b, err := a.AsBool()
		if err != nil {
			return Value{}, typeErrorf(op, a)
		}
		return NewBool(!b), nil

	case ir.OpInt2Char:
		n, err := a.AsInt64()
		if err != nil {
			return Value{}, typeErrorf(op, a)
		}
		if n < 0 || n > utf8.MaxRune || !utf8.ValidRune(rune(n)) {
			return Value{}, errorf(StringIndexError, "%d is not a valid code point", n)
		}
		return NewString(string(rune(n))), nil

	case ir.OpInt2Float:
		n, err := a.AsInt64()
		if err != nil {
			return Value{}, typeErrorf(op, a)
		}
		return NewFloat(float64(n)), nil

	case ir.OpFloat2Int:
		f, err := a.AsFloat64()
		if err != nil {
			return Value{}, typeErrorf(op, a)
		}
		t := math.Trunc(f)
		if math.IsNaN(t) || t < math.MinInt64 || t >= math.MaxInt64 {
			return Value{}, errorf(RuntimeValueError, "cannot convert %s to int", FormatHexFloat(f))
		}
		return NewInt(int64(t)), nil

	case ir.OpStrlen:
		if a.Kind != KindString {
			return Value{}, typeErrorf(op, a)
		}
		return NewInt(int64(utf8.RuneCountInString(a.Text))), nil

	default:
		return Value{}, errorf(InternalError, "%s is not a unary operation", op)
	}
}

func arith(op ir.Opcode, a, b Value) (Value, error) {
	if !isNumeric(a) || !isNumeric(b) {
		return Value{}, typeErrorf(op, a, b)
	}

	if a.Kind == KindFloat || b.Kind == KindFloat {
		x, err := toFloat(a)
		if err != nil {
			return Value{}, err
		}
		y, err := toFloat(b)
		if err != nil {
			return Value{}, err
		}
		switch op {
		case ir.OpAdd:
			return NewFloat(x + y), nil
		case ir.OpSub:
			return NewFloat(x - y), nil
		default:
			return NewFloat(x * y), nil
		}
	}

	x, y, err := intPair(a, b)
	if err != nil {
		return Value{}, err
	}

	var r int64
	overflow := false
	switch op {
	case ir.OpAdd:
		r = x + y
		overflow = (x > 0 && y > 0 && r < 0) || (x < 0 && y < 0 && r >= 0)
	case ir.OpSub:
		r = x - y
		overflow = (x >= 0 && y < 0 && r < 0) || (x < 0 && y > 0 && r >= 0)
	default:
		r = x * y
		overflow = x != 0 && (r/x != y || (x == -1 && y == math.MinInt64))
	}
	if overflow {
		return Value{}, errorf(RuntimeValueError, "integer overflow in %s", op)
	}

	return NewInt(r), nil
}

// idiv is floored integer division
func idiv(a, b Value) (Value, error) {
	if a.Kind != KindInt || b.Kind != KindInt {
		return Value{}, typeErrorf(ir.OpIDiv, a, b)
	}

	x, y, err := intPair(a, b)
	if err != nil {
		return Value{}, err
	}
	if y == 0 {
		return Value{}, errorf(RuntimeValueError, "division by zero")
	}
	if x == math.MinInt64 && y == -1 {
		return Value{}, errorf(RuntimeValueError, "integer overflow in %s", ir.OpIDiv)
	}

	q := x / y
	if x%y != 0 && (x < 0) != (y < 0) {
		q--
	}
	return NewInt(q), nil
}

func fdiv(a, b Value) (Value, error) {
	if a.Kind != KindFloat || b.Kind != KindFloat {
		return Value{}, typeErrorf(ir.OpDiv, a, b)
	}

	x, err := toFloat(a)
	if err != nil {
		return Value{}, err
	}
	y, err := toFloat(b)
	if err != nil {
		return Value{}, err
	}
	if y == 0 {
		return Value{}, errorf(RuntimeValueError, "division by zero")
	}
	return NewFloat(x / y), nil
}

// relation implements LT and GT over operands of one non-nil type
func relation(op ir.Opcode, a, b Value) (Value, error) {
	if a.Kind != b.Kind || a.IsNil() {
		return Value{}, typeErrorf(op, a, b)
	}

	var cmp int
	switch a.Kind {
	case KindInt:
		x, y, err := intPair(a, b)
		if err != nil {
			return Value{}, err
		}
		cmp = compareOrdered(x, y)

	case KindFloat:
		x, err := toFloat(a)
		if err != nil {
			return Value{}, err
		}
		y, err := toFloat(b)
		if err != nil {
			return Value{}, err
		}
		if math.IsNaN(x) || math.IsNaN(y) {
			return NewBool(false), nil
		}
		cmp = compareOrdered(x, y)

	case KindString:
		cmp = strings.Compare(a.Text, b.Text)

	case KindBool:
		x, _ := a.AsBool()
		y, _ := b.AsBool()
		cmp = compareOrdered(boolRank(x), boolRank(y))

	default:
		return Value{}, typeErrorf(op, a, b)
	}

	if op == ir.OpLt {
		return NewBool(cmp < 0), nil
	}
	return NewBool(cmp > 0), nil
}

// equals implements EQ: nil equals only nil, other types must match
func equals(a, b Value) (bool, error) {
	if a.IsNil() || b.IsNil() {
		return a.IsNil() && b.IsNil(), nil
	}
	if a.Kind != b.Kind {
		return false, typeErrorf(ir.OpEq, a, b)
	}

	switch a.Kind {
	case KindInt:
		x, y, err := intPair(a, b)
		if err != nil {
			return false, err
		}
		return x == y, nil

	case KindFloat:
		x, err := toFloat(a)
		if err != nil {
			return false, err
		}
		y, err := toFloat(b)
		if err != nil {
			return false, err
		}
		return x == y, nil

	case KindString, KindBool:
		return a.Text == b.Text, nil

	default:
		return false, typeErrorf(ir.OpEq, a, b)
	}
}

// jumpEquals is the comparison behind JUMPIFEQ and JUMPIFNEQ
func jumpEquals(op ir.Opcode, a, b Value) (bool, error) {
	switch {
	case a.Kind == b.Kind:
		return a.Text == b.Text, nil
	case a.IsNil() || b.IsNil():
		return false, nil
	default:
		return false, typeErrorf(op, a, b)
	}
}

// setChar replaces the character at index in dst with the first character of repl
func setChar(dst, index, repl Value) (Value, error) {
	if index.Kind != KindInt || repl.Kind != KindString || dst.Kind != KindString {
		return Value{}, typeErrorf(ir.OpSetChar, dst, index, repl)
	}
	if repl.Text == "" {
		return Value{}, errorf(StringIndexError, "replacement string is empty")
	}

	runes := []rune(dst.Text)
	n, err := index.AsInt64()
	if err != nil {
		return Value{}, errorf(StructuralError, "%v", err)
	}
	if n < 0 || n >= int64(len(runes)) {
		return Value{}, errorf(StringIndexError, "index %d out of range for string of length %d", n, len(runes))
	}

	r, _ := utf8.DecodeRuneInString(repl.Text)
	runes[n] = r
	return NewString(string(runes)), nil
}

func runeAt(s string, index Value) (rune, error) {
	n, err := index.AsInt64()
	if err != nil {
		return 0, errorf(StructuralError, "%v", err)
	}

	runes := []rune(s)
	if n < 0 || n >= int64(len(runes)) {
		return 0, errorf(StringIndexError, "index %d out of range for string of length %d", n, len(runes))
	}
	return runes[n], nil
}

func isNumeric(v Value) bool {
	return v.Kind == KindInt || v.Kind == KindFloat
}

func toFloat(v Value) (float64, error) {
	if v.Kind == KindInt {
		n, err := v.AsInt64()
		if err != nil {
			return 0, errorf(StructuralError, "%v", err)
		}
		return float64(n), nil
	}

	f, err := v.AsFloat64()
	if err != nil {
		return 0, errorf(StructuralError, "%v", err)
	}
	return f, nil
}

func intPair(a, b Value) (int64, int64, error) {
	x, err := a.AsInt64()
	if err != nil {
		return 0, 0, errorf(StructuralError, "%v", err)
	}
	y, err := b.AsInt64()
	if err != nil {
		return 0, 0, errorf(StructuralError, "%v", err)
	}
	return x, y, nil
}

func compareOrdered[T int64 | float64 | int](x, y T) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	default:
		return 0
	}
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

func typeErrorf(op ir.Opcode, vals ...Value) *Error {
	kinds := make([]string, len(vals))
	for n, v := range vals {
		kinds[n] = string(v.Kind)
	}
	return errorf(OperandTypeError, "%s does not accept operands of type (%s)", op, strings.Join(kinds, ", "))
}
