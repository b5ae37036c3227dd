package interpreter

import (
	"ippi/pkg/ir"

	"github.com/charmbracelet/log"
)

// Exec runs a program with default writers and returns the final status
func Exec(pb []ir.Instruction, opts ...Option) (int, error) {
	it, err := NewInterpreter(pb, opts...)
	if err != nil {
		return 0, err
	}
	if err := it.Run(); err != nil {
		return 0, err
	}
	return it.Status(), nil
}

// execute runs one instruction and returns the next instruction pointer
func (i *Interpreter) execute(pc int, in ir.Instruction) (int, error) {
	if in.Op.IsStackVariant() {
		return i.executeStack(pc, in)
	}

	next := pc + 1
	args := in.Args

	switch in.Op {
	case ir.OpMove:
		v, err := i.resolve(args[1])
		if err != nil {
			return 0, err
		}
		return next, i.store(args[0], v)

	case ir.OpCreateFrame:
		i.frames.CreateFrame()
		return next, nil

	case ir.OpPushFrame:
		return next, i.frames.PushFrame()

	case ir.OpPopFrame:
		return next, i.frames.PopFrame()

	case ir.OpDefVar:
		frame, name, err := args[0].Var()
		if err != nil {
			return 0, errorf(StructuralError, "%v", err)
		}
		return next, i.frames.Define(frame, name)

	case ir.OpCall:
		target, err := i.target(args[0].Text)
		if err != nil {
			return 0, err
		}
		i.calls.Push(next)
		log.Debug("Call", "label", args[0].Text, "from", pc, "depth", i.calls.Size())
		return target, nil

	case ir.OpReturn:
		ret, err := i.calls.Pop()
		if err != nil {
			return 0, errorf(StackUnderflow, "RETURN with an empty call stack")
		}
		log.Debug("Return", "to", ret, "depth", i.calls.Size())
		return ret, nil

	case ir.OpPushs:
		v, err := i.resolve(args[0])
		if err != nil {
			return 0, err
		}
		i.data.Push(v)
		return next, nil

	case ir.OpPops:
		v, err := i.pop()
		if err != nil {
			return 0, err
		}
		return next, i.store(args[0], v)

	case ir.OpClears:
		i.data.Clear()
		return next, nil

	case ir.OpAdd, ir.OpSub, ir.OpMul, ir.OpIDiv, ir.OpDiv,
		ir.OpLt, ir.OpGt, ir.OpEq, ir.OpAnd, ir.OpOr,
		ir.OpStri2Int, ir.OpConcat, ir.OpGetChar:
		a, b, err := i.resolve2(args[1], args[2])
		if err != nil {
			return 0, err
		}
		res, err := evalBinary(in.Op, a, b)
		if err != nil {
			return 0, err
		}
		return next, i.store(args[0], res)

	case ir.OpNot, ir.OpInt2Char, ir.OpInt2Float, ir.OpFloat2Int, ir.OpStrlen:
		a, err := i.resolve(args[1])
		if err != nil {
			return 0, err
		}
		res, err := evalUnary(in.Op, a)
		if err != nil {
			return 0, err
		}
		return next, i.store(args[0], res)

	case ir.OpSetChar:
		dst, err := i.resolve(args[0])
		if err != nil {
			return 0, err
		}
		index, repl, err := i.resolve2(args[1], args[2])
		if err != nil {
			return 0, err
		}
		res, err := setChar(dst, index, repl)
		if err != nil {
			return 0, err
		}
		return next, i.store(args[0], res)

	case ir.OpRead:
		v, err := i.read(args[1].Text)
		if err != nil {
			return 0, err
		}
		return next, i.store(args[0], v)

	case ir.OpWrite:
		v, err := i.resolve(args[0])
		if err != nil {
			return 0, err
		}
		return next, i.write(v)

	case ir.OpType:
		v, err := i.typeOf(args[1])
		if err != nil {
			return 0, err
		}
		return next, i.store(args[0], v)

	case ir.OpLabel:
		return next, nil

	case ir.OpJump:
		return i.target(args[0].Text)

	case ir.OpJumpIfEq, ir.OpJumpIfNeq:
		target, err := i.target(args[0].Text)
		if err != nil {
			return 0, err
		}
		a, b, err := i.resolve2(args[1], args[2])
		if err != nil {
			return 0, err
		}
		return branch(in.Op, a, b, target, next)

	case ir.OpExit:
		v, err := i.resolve(args[0])
		if err != nil {
			return 0, err
		}
		code, err := v.AsInt64()
		if err != nil {
			return 0, typeErrorf(in.Op, v)
		}
		if code < 0 || code > 49 {
			return 0, errorf(RuntimeValueError, "exit code %d outside 0-49", code)
		}
		i.halted = true
		i.status = int(code)
		log.Debug("Exit", "status", code, "pc", pc)
		return next, nil

	case ir.OpDPrint:
		v, err := i.resolve(args[0])
		if err != nil {
			return 0, err
		}
		return next, i.dprint(v)

	case ir.OpBreak:
		return next, i.dump(pc)

	default:
		return 0, errorf(InternalError, "unhandled opcode %s", in.Op)
	}
}

// executeStack runs an operation that takes its operands from the data stack
func (i *Interpreter) executeStack(pc int, in ir.Instruction) (int, error) {
	next := pc + 1
	op := in.Op.Scalar()

	switch op {
	case ir.OpJumpIfEq, ir.OpJumpIfNeq:
		target, err := i.target(in.Args[0].Text)
		if err != nil {
			return 0, err
		}
		a, b, err := i.pop2()
		if err != nil {
			return 0, err
		}
		return branch(op, a, b, target, next)

	case ir.OpNot, ir.OpInt2Char, ir.OpInt2Float, ir.OpFloat2Int:
		a, err := i.pop()
		if err != nil {
			return 0, err
		}
		res, err := evalUnary(op, a)
		if err != nil {
			return 0, err
		}
		i.data.Push(res)
		return next, nil

	default:
		a, b, err := i.pop2()
		if err != nil {
			return 0, err
		}
		res, err := evalBinary(op, a, b)
		if err != nil {
			return 0, err
		}
		i.data.Push(res)
		return next, nil
	}
}

// branch picks the jump target of a conditional jump
func branch(op ir.Opcode, a, b Value, target, next int) (int, error) {
	eq, err := jumpEquals(op, a, b)
	if err != nil {
		return 0, err
	}
	if eq == (op == ir.OpJumpIfEq) {
		return target, nil
	}
	return next, nil
}
