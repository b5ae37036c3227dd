package ir

import (
	"fmt"
	"strings"
)

type Opcode int

// List of IPPcode20 operations
const (
	OpInvalid Opcode = iota

	// frames and calls
	OpMove
	OpCreateFrame
	OpPushFrame
	OpPopFrame
	OpDefVar
	OpCall
	OpReturn

	// data stack
	OpPushs
	OpPops
	OpClears

	// arithmetic, relational, boolean and conversion
	OpAdd
	OpSub
	OpMul
	OpIDiv
	OpDiv
	OpLt
	OpGt
	OpEq
	OpAnd
	OpOr
	OpNot
	OpInt2Char
	OpStri2Int
	OpInt2Float
	OpFloat2Int

	// input and output
	OpRead
	OpWrite

	// strings
	OpConcat
	OpStrlen
	OpGetChar
	OpSetChar

	// types
	OpType

	// flow control
	OpLabel
	OpJump
	OpJumpIfEq
	OpJumpIfNeq
	OpExit

	// debugging
	OpDPrint
	OpBreak

	// stack variants
	OpAdds
	OpSubs
	OpMuls
	OpIDivs
	OpDivs
	OpLts
	OpGts
	OpEqs
	OpAnds
	OpOrs
	OpNots
	OpInt2Chars
	OpStri2Ints
	OpInt2Floats
	OpFloat2Ints
	OpJumpIfEqs
	OpJumpIfNeqs

	opcodeCount
)

var opcodeNames = [opcodeCount]string{
	OpInvalid:     "INVALID",
	OpMove:        "MOVE",
	OpCreateFrame: "CREATEFRAME",
	OpPushFrame:   "PUSHFRAME",
	OpPopFrame:    "POPFRAME",
	OpDefVar:      "DEFVAR",
	OpCall:        "CALL",
	OpReturn:      "RETURN",
	OpPushs:       "PUSHS",
	OpPops:        "POPS",
	OpClears:      "CLEARS",
	OpAdd:         "ADD",
	OpSub:         "SUB",
	OpMul:         "MUL",
	OpIDiv:        "IDIV",
	OpDiv:         "DIV",
	OpLt:          "LT",
	OpGt:          "GT",
	OpEq:          "EQ",
	OpAnd:         "AND",
	OpOr:          "OR",
	OpNot:         "NOT",
	OpInt2Char:    "INT2CHAR",
	OpStri2Int:    "STRI2INT",
	OpInt2Float:   "INT2FLOAT",
	OpFloat2Int:   "FLOAT2INT",
	OpRead:        "READ",
	OpWrite:       "WRITE",
	OpConcat:      "CONCAT",
	OpStrlen:      "STRLEN",
	OpGetChar:     "GETCHAR",
	OpSetChar:     "SETCHAR",
	OpType:        "TYPE",
	OpLabel:       "LABEL",
	OpJump:        "JUMP",
	OpJumpIfEq:    "JUMPIFEQ",
	OpJumpIfNeq:   "JUMPIFNEQ",
	OpExit:        "EXIT",
	OpDPrint:      "DPRINT",
	OpBreak:       "BREAK",
	OpAdds:        "ADDS",
	OpSubs:        "SUBS",
	OpMuls:        "MULS",
	OpIDivs:       "IDIVS",
	OpDivs:        "DIVS",
	OpLts:         "LTS",
	OpGts:         "GTS",
	OpEqs:         "EQS",
	OpAnds:        "ANDS",
	OpOrs:         "ORS",
	OpNots:        "NOTS",
	OpInt2Chars:   "INT2CHARS",
	OpStri2Ints:   "STRI2INTS",
	OpInt2Floats:  "INT2FLOATS",
	OpFloat2Ints:  "FLOAT2INTS",
	OpJumpIfEqs:   "JUMPIFEQS",
	OpJumpIfNeqs:  "JUMPIFNEQS",
}

var opcodeByName = func() map[string]Opcode {
	m := make(map[string]Opcode, opcodeCount)
	for op := OpMove; op < opcodeCount; op++ {
		m[opcodeNames[op]] = op
	}
	return m
}()

// LookupOpcode maps an opcode name (case-insensitive) to its Opcode
func LookupOpcode(name string) (Opcode, bool) {
	op, ok := opcodeByName[strings.ToUpper(name)]
	return op, ok
}

// String returns the canonical upper-case opcode name
func (o Opcode) String() string {
	if o < 0 || o >= opcodeCount {
		return fmt.Sprintf("Opcode(%d)", int(o))
	}
	return opcodeNames[o]
}

// Scalar maps a stack variant to the operation it performs, other opcodes map to themselves
func (o Opcode) Scalar() Opcode {
	switch o {
	case OpAdds:
		return OpAdd
	case OpSubs:
		return OpSub
	case OpMuls:
		return OpMul
	case OpIDivs:
		return OpIDiv
	case OpDivs:
		return OpDiv
	case OpLts:
		return OpLt
	case OpGts:
		return OpGt
	case OpEqs:
		return OpEq
	case OpAnds:
		return OpAnd
	case OpOrs:
		return OpOr
	case OpNots:
		return OpNot
	case OpInt2Chars:
		return OpInt2Char
	case OpStri2Ints:
		return OpStri2Int
	case OpInt2Floats:
		return OpInt2Float
	case OpFloat2Ints:
		return OpFloat2Int
	case OpJumpIfEqs:
		return OpJumpIfEq
	case OpJumpIfNeqs:
		return OpJumpIfNeq
	default:
		return o
	}
}

// IsStackVariant reports whether the opcode takes its operands from the data stack
func (o Opcode) IsStackVariant() bool {
	return o >= OpAdds && o <= OpJumpIfNeqs
}

type Instruction struct {
	Order int    // order attribute from the source document
	Op    Opcode // operation
	Args  []Operand
}

// String returns a string representation of the instruction
func (i Instruction) String() string {
	var sb strings.Builder
	sb.WriteString(i.Op.String())
	for _, a := range i.Args {
		sb.WriteByte(' ')
		sb.WriteString(a.String())
	}
	return sb.String()
}
