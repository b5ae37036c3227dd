package interpreter_test

import (
	"bytes"
	"strings"
	"testing"

	"ippi/pkg/interpreter"
	"ippi/pkg/ir"
)

// asm builds a program from one instruction per line, e.g. "ADD GF@x int@1 GF@y".
// Label and type operands are recognized by position; \032 in a literal stands for a space.
func asm(t *testing.T, src string) []ir.Instruction {
	t.Helper()

	var prog []ir.Instruction
	for _, line := range strings.Split(src, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		op, ok := ir.LookupOpcode(fields[0])
		if !ok {
			t.Fatalf("unknown opcode in test program: %q", line)
		}

		sig := ir.Signature(op)
		in := ir.Instruction{Order: len(prog) + 1, Op: op}
		for k, tok := range fields[1:] {
			class := ir.ArgSymb
			if k < len(sig) {
				class = sig[k]
			}
			in.Args = append(in.Args, operand(tok, class))
		}
		prog = append(prog, in)
	}

	return prog
}

func operand(tok string, class ir.ArgClass) ir.Operand {
	switch class {
	case ir.ArgLabel:
		return ir.Label(tok)
	case ir.ArgType:
		return ir.Type(tok)
	}

	for _, prefix := range []string{"GF@", "LF@", "TF@"} {
		if strings.HasPrefix(tok, prefix) {
			return ir.Var(tok)
		}
	}

	kind, text, _ := strings.Cut(tok, "@")
	return ir.Sym(ir.Kind(kind), strings.ReplaceAll(text, `\032`, " "))
}

type result struct {
	it   *interpreter.Interpreter
	out  string
	diag string
	err  error
}

func run(t *testing.T, src, input string, opts ...interpreter.Option) result {
	t.Helper()

	var out, diag bytes.Buffer
	opts = append([]interpreter.Option{
		interpreter.WithWriter(&out),
		interpreter.WithDiagnostics(&diag),
		interpreter.WithInput(strings.NewReader(input)),
	}, opts...)

	it, err := interpreter.NewInterpreter(asm(t, src), opts...)
	if err != nil {
		return result{err: err}
	}

	err = it.Run()
	return result{it: it, out: out.String(), diag: diag.String(), err: err}
}

func expectKind(t *testing.T, err error, kind interpreter.ErrorKind) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected %s, got no error", kind)
	}
	got, ok := interpreter.KindOf(err)
	if !ok || got != kind {
		t.Fatalf("expected %s, got %v", kind, err)
	}
}

func slot(t *testing.T, r result, frame, name string) interpreter.Value {
	t.Helper()

	f := r.it.Frames().Frame(frame)
	if f == nil {
		t.Fatalf("frame %s does not exist", frame)
	}
	v, state := f.Slot(name)
	if state != interpreter.Assigned {
		t.Fatalf("%s@%s is not assigned (state %d)", frame, name, state)
	}
	return v
}
