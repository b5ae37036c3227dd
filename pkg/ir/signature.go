package ir

type ArgClass int

const (
	ArgVar   ArgClass = iota // destination variable
	ArgSymb                  // constant or variable
	ArgLabel                 // label name
	ArgType                  // type name
)

func (c ArgClass) String() string {
	switch c {
	case ArgVar:
		return "var"
	case ArgSymb:
		return "symb"
	case ArgLabel:
		return "label"
	case ArgType:
		return "type"
	default:
		return "?"
	}
}

var (
	sigNone          = []ArgClass{}
	sigVar           = []ArgClass{ArgVar}
	sigSymb          = []ArgClass{ArgSymb}
	sigLabel         = []ArgClass{ArgLabel}
	sigVarSymb       = []ArgClass{ArgVar, ArgSymb}
	sigVarType       = []ArgClass{ArgVar, ArgType}
	sigVarSymbSymb   = []ArgClass{ArgVar, ArgSymb, ArgSymb}
	sigLabelSymbSymb = []ArgClass{ArgLabel, ArgSymb, ArgSymb}
)

// Signature returns the operand classes an opcode expects, in order
func Signature(op Opcode) []ArgClass {
	switch op {
	case OpCreateFrame, OpPushFrame, OpPopFrame, OpReturn, OpBreak, OpClears,
		OpAdds, OpSubs, OpMuls, OpIDivs, OpDivs, OpLts, OpGts, OpEqs, OpAnds, OpOrs, OpNots,
		OpInt2Chars, OpStri2Ints, OpInt2Floats, OpFloat2Ints:
		return sigNone

	case OpDefVar, OpPops:
		return sigVar

	case OpPushs, OpWrite, OpExit, OpDPrint:
		return sigSymb

	case OpCall, OpLabel, OpJump, OpJumpIfEqs, OpJumpIfNeqs:
		return sigLabel

	case OpMove, OpNot, OpInt2Char, OpInt2Float, OpFloat2Int, OpStrlen, OpType:
		return sigVarSymb

	case OpRead:
		return sigVarType

	case OpAdd, OpSub, OpMul, OpIDiv, OpDiv, OpLt, OpGt, OpEq, OpAnd, OpOr,
		OpStri2Int, OpConcat, OpGetChar, OpSetChar:
		return sigVarSymbSymb

	case OpJumpIfEq, OpJumpIfNeq:
		return sigLabelSymbSymb

	default:
		return nil
	}
}
