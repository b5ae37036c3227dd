package interpreter

import (
	"bufio"
	"io"
	"os"

	"ippi/pkg/ir"
	"ippi/pkg/stack"

	"github.com/charmbracelet/log"
)

// Interpreter executes a decoded IPPcode20 instruction list
type Interpreter struct {
	pb []ir.Instruction // program block (list of instructions)
	ip int              // instruction pointer

	frames *FrameStore    // GF, LF, TF and saved local frames
	labels map[string]int // label name -> PB index of its LABEL instruction

	data  *stack.Stack[Value] // operand stack for PUSHS/POPS and stack variants
	calls *stack.Stack[int]   // return addresses

	in   *bufio.Reader // input for READ
	out  io.Writer     // output for WRITE
	diag io.Writer     // output for DPRINT and BREAK

	stats *Stats // nil unless statistics were requested

	maxSteps int // maximum steps (0 = unlimited)
	steps    int // steps executed

	halted bool // set by EXIT
	status int  // status requested by EXIT
}

type Option func(*Interpreter)

// WithWriter sets the output writer for WRITE
func WithWriter(w io.Writer) Option {
	return func(i *Interpreter) { i.out = w }
}

// WithDiagnostics sets the writer for DPRINT and BREAK
func WithDiagnostics(w io.Writer) Option {
	return func(i *Interpreter) { i.diag = w }
}

// WithInput sets the source of lines for READ
func WithInput(r io.Reader) Option {
	return func(i *Interpreter) { i.in = bufio.NewReader(r) }
}

// WithMaxSteps sets a maximum number of interpreter steps before returning ErrMaxStepsExceeded
func WithMaxSteps(n int) Option {
	return func(i *Interpreter) { i.maxSteps = n }
}

// WithStats enables instruction and variable statistics
func WithStats() Option {
	return func(i *Interpreter) { i.stats = &Stats{} }
}

// NewInterpreter validates the program, builds the label table and returns a ready interpreter
func NewInterpreter(pb []ir.Instruction, opts ...Option) (*Interpreter, error) {
	it := &Interpreter{
		pb: append([]ir.Instruction(nil), pb...),
	}

	for _, o := range opts {
		o(it)
	}

	if it.out == nil {
		it.out = os.Stdout
	}
	if it.diag == nil {
		it.diag = os.Stderr
	}
	if it.in == nil {
		it.in = bufio.NewReader(os.Stdin)
	}

	if err := it.indexProgram(); err != nil {
		return nil, err
	}

	it.Reset()
	return it, nil
}

// Reset clears runtime state (frames, stacks, IP, counters) keeping the program and labels
func (i *Interpreter) Reset() {
	i.ip = 0
	i.frames = NewFrameStore()
	i.data = stack.New[Value]()
	i.calls = stack.New[int]()
	i.steps = 0
	i.halted = false
	i.status = 0
	if i.stats != nil {
		i.stats = &Stats{}
	}
}

// PC returns the current instruction pointer
func (i *Interpreter) PC() int {
	return i.ip
}

// Frames exposes the frame store
func (i *Interpreter) Frames() *FrameStore {
	return i.frames
}

// DataStack returns the values on the data stack, bottom first
func (i *Interpreter) DataStack() []Value {
	return i.data.Array()
}

// CallDepth returns the number of pending returns
func (i *Interpreter) CallDepth() int {
	return i.calls.Size()
}

// Labels returns a copy of the label table
func (i *Interpreter) Labels() map[string]int {
	m := make(map[string]int, len(i.labels))
	for k, v := range i.labels {
		m[k] = v
	}
	return m
}

// Status returns the status requested by EXIT, 0 when the program ran off its end
func (i *Interpreter) Status() int {
	return i.status
}

// Halted reports whether EXIT was executed
func (i *Interpreter) Halted() bool {
	return i.halted
}

// Step executes a single instruction, returning (halted, error)
func (i *Interpreter) Step() (bool, error) {
	if i.halted || i.ip < 0 || i.ip >= len(i.pb) {
		return true, nil
	}

	if i.maxSteps > 0 && i.steps >= i.maxSteps {
		return false, &Error{Kind: InternalError, PC: i.ip, Order: i.pb[i.ip].Order, Op: i.pb[i.ip].Op, Msg: "step limit reached", Err: ErrMaxStepsExceeded}
	}

	pc := i.ip
	in := i.pb[pc]

	next, err := i.execute(pc, in)
	i.steps++
	if err != nil {
		return false, bindError(err, pc, in)
	}

	i.ip = next
	if i.stats != nil {
		i.stats.observe(i.frames)
	}

	return i.halted || i.ip >= len(i.pb), nil
}

// Run executes until the end of the program, EXIT or an error
func (i *Interpreter) Run() error {
	for {
		halted, err := i.Step()
		if err != nil {
			return err
		}

		if halted {
			return nil
		}
	}
}

// bindError attaches the failing instruction to an engine error
func bindError(err error, pc int, in ir.Instruction) error {
	e, ok := err.(*Error)
	if !ok {
		return &Error{Kind: InternalError, PC: pc, Order: in.Order, Op: in.Op, Msg: "unexpected failure", Err: err}
	}
	if e.PC < 0 {
		e.PC = pc
		e.Order = in.Order
		e.Op = in.Op
	}
	return e
}

// indexProgram validates every instruction and records label positions
func (i *Interpreter) indexProgram() error {
	i.labels = make(map[string]int)

	for idx, in := range i.pb {
		if err := validate(in); err != nil {
			return bindError(err, idx, in)
		}

		if in.Op == ir.OpLabel {
			name := in.Args[0].Text
			if prev, dup := i.labels[name]; dup {
				return bindError(errorf(StructuralError, "label %q already defined at instruction %d", name, prev), idx, in)
			}
			i.labels[name] = idx
		}
	}

	log.Debug("Program indexed", "instructions", len(i.pb), "labels", len(i.labels))
	return nil
}

// validate checks operand count and kinds against the opcode signature
func validate(in ir.Instruction) error {
	sig := ir.Signature(in.Op)
	if sig == nil {
		return errorf(StructuralError, "unknown opcode %s", in.Op)
	}
	if len(in.Args) != len(sig) {
		return errorf(StructuralError, "expected %d operands, got %d", len(sig), len(in.Args))
	}

	for n, class := range sig {
		arg := in.Args[n]
		switch class {
		case ir.ArgVar:
			if _, _, err := arg.Var(); err != nil {
				return errorf(StructuralError, "operand %d: %v", n+1, err)
			}

		case ir.ArgLabel:
			if arg.Kind != ir.KindLabel || arg.Text == "" {
				return errorf(StructuralError, "operand %d: expected label, got %s", n+1, arg.Kind)
			}

		case ir.ArgType:
			if arg.Kind != ir.KindType {
				return errorf(OperandTypeError, "operand %d: expected type, got %s", n+1, arg.Kind)
			}

		case ir.ArgSymb:
			if arg.Kind == ir.KindVar {
				if _, _, err := arg.Var(); err != nil {
					return errorf(StructuralError, "operand %d: %v", n+1, err)
				}
				continue
			}
			if !arg.Kind.IsLiteral() {
				return errorf(OperandTypeError, "operand %d: expected symbol, got %s", n+1, arg.Kind)
			}
			if _, err := literalValue(arg); err != nil {
				return err
			}
		}
	}

	return nil
}

// resolve turns a symbol operand into a Value
func (i *Interpreter) resolve(op ir.Operand) (Value, error) {
	if op.Kind != ir.KindVar {
		if !op.Kind.IsLiteral() {
			return Value{}, errorf(OperandTypeError, "%s cannot be used as a value", op.Kind)
		}
		return literalValue(op)
	}

	frame, name, err := op.Var()
	if err != nil {
		return Value{}, errorf(StructuralError, "%v", err)
	}
	return i.frames.Read(frame, name)
}

// resolve2 resolves the two source operands of a three-address instruction
func (i *Interpreter) resolve2(a, b ir.Operand) (Value, Value, error) {
	va, err := i.resolve(a)
	if err != nil {
		return Value{}, Value{}, err
	}
	vb, err := i.resolve(b)
	if err != nil {
		return Value{}, Value{}, err
	}
	return va, vb, nil
}

// store writes a value into the variable named by op
func (i *Interpreter) store(op ir.Operand, v Value) error {
	frame, name, err := op.Var()
	if err != nil {
		return errorf(StructuralError, "%v", err)
	}
	return i.frames.Write(frame, name, v)
}

// pop removes the top of the data stack
func (i *Interpreter) pop() (Value, error) {
	v, err := i.data.Pop()
	if err != nil {
		return Value{}, errorf(StackUnderflow, "data stack is empty")
	}
	return v, nil
}

// pop2 pops the right then the left operand of a binary stack instruction
func (i *Interpreter) pop2() (Value, Value, error) {
	b, err := i.pop()
	if err != nil {
		return Value{}, Value{}, err
	}
	a, err := i.pop()
	if err != nil {
		return Value{}, Value{}, err
	}
	return a, b, nil
}

// target returns the PB index a jump to label lands on
func (i *Interpreter) target(label string) (int, error) {
	idx, ok := i.labels[label]
	if !ok {
		return 0, errorf(UndefinedLabel, "label %q is not defined", label)
	}
	return idx + 1, nil
}
