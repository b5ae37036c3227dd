package loader_test

import (
	"errors"
	"io"
	"strings"
	"testing"

	"ippi/pkg/ir"
	"ippi/pkg/loader"
)

const header = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"

func TestLoad(t *testing.T) {
	src := header + `<program language="IPPcode20" name="demo" description="loads">
	<instruction order="10" opcode="write">
		<arg1 type="string">a\032b\035</arg1>
	</instruction>
	<instruction order="2" opcode="DEFVAR">
		<arg1 type="var">GF@x</arg1>
	</instruction>
	<instruction order="5" opcode="MOVE">
		<arg2 type="int"> 42 </arg2>
		<arg1 type="var">GF@x</arg1>
	</instruction>
	<instruction order="7" opcode="CREATEFRAME"/>
	<instruction order="8" opcode="WRITE">
		<arg1 type="string"/>
	</instruction>
	<instruction order="9" opcode="WRITE">
		<arg1 type="string">&lt;tag&gt;&amp;</arg1>
	</instruction>
</program>
`
	prog, err := loader.Load(strings.NewReader(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if prog.Name != "demo" || prog.Description != "loads" {
		t.Errorf("unexpected metadata: %q %q", prog.Name, prog.Description)
	}

	want := []ir.Instruction{
		{Order: 2, Op: ir.OpDefVar, Args: []ir.Operand{ir.Var("GF@x")}},
		{Order: 5, Op: ir.OpMove, Args: []ir.Operand{ir.Var("GF@x"), ir.Sym(ir.KindInt, "42")}},
		{Order: 7, Op: ir.OpCreateFrame, Args: []ir.Operand{}},
		{Order: 8, Op: ir.OpWrite, Args: []ir.Operand{ir.Sym(ir.KindString, "")}},
		{Order: 9, Op: ir.OpWrite, Args: []ir.Operand{ir.Sym(ir.KindString, "<tag>&")}},
		{Order: 10, Op: ir.OpWrite, Args: []ir.Operand{ir.Sym(ir.KindString, "a b#")}},
	}

	if len(prog.Instructions) != len(want) {
		t.Fatalf("expected %d instructions, got %d", len(want), len(prog.Instructions))
	}
	for n, in := range prog.Instructions {
		if in.String() != want[n].String() || in.Order != want[n].Order {
			t.Errorf("instruction %d: expected %q (order %d), got %q (order %d)",
				n, want[n], want[n].Order, in, in.Order)
		}
		if len(in.Args) != len(want[n].Args) {
			t.Errorf("instruction %d: expected %d operands, got %d", n, len(want[n].Args), len(in.Args))
		}
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code int
	}{
		{"empty document", "", loader.CodeMalformed},
		{"unclosed root", `<program language="IPPcode20">`, loader.CodeMalformed},
		{"mismatched tags", `<program language="IPPcode20"><instruction order="1" opcode="BREAK"></program>`, loader.CodeMalformed},
		{"two roots", `<program language="IPPcode20"/><program language="IPPcode20"/>`, loader.CodeMalformed},
		{"text after root", `<program language="IPPcode20"/>junk`, loader.CodeMalformed},
		{"wrong root", `<code language="IPPcode20"/>`, loader.CodeStructure},
		{"missing language", `<program/>`, loader.CodeStructure},
		{"wrong language", `<program language="IPPcode19"/>`, loader.CodeStructure},
		{"extra root attribute", `<program language="IPPcode20" version="1"/>`, loader.CodeStructure},
		{"unknown element", `<program language="IPPcode20"><instr order="1" opcode="BREAK"/></program>`, loader.CodeStructure},
		{"missing order", `<program language="IPPcode20"><instruction opcode="BREAK"/></program>`, loader.CodeStructure},
		{"missing opcode", `<program language="IPPcode20"><instruction order="1"/></program>`, loader.CodeStructure},
		{"zero order", `<program language="IPPcode20"><instruction order="0" opcode="BREAK"/></program>`, loader.CodeStructure},
		{"negative order", `<program language="IPPcode20"><instruction order="-3" opcode="BREAK"/></program>`, loader.CodeStructure},
		{"textual order", `<program language="IPPcode20"><instruction order="one" opcode="BREAK"/></program>`, loader.CodeStructure},
		{"duplicate order", `<program language="IPPcode20"><instruction order="1" opcode="BREAK"/><instruction order="1" opcode="BREAK"/></program>`, loader.CodeStructure},
		{"unknown opcode", `<program language="IPPcode20"><instruction order="1" opcode="HALT"/></program>`, loader.CodeStructure},
		{"extra instruction attribute", `<program language="IPPcode20"><instruction order="1" opcode="BREAK" x="y"/></program>`, loader.CodeStructure},
		{"arg4", `<program language="IPPcode20"><instruction order="1" opcode="WRITE"><arg4 type="int">1</arg4></instruction></program>`, loader.CodeStructure},
		{"gap in args", `<program language="IPPcode20"><instruction order="1" opcode="WRITE"><arg2 type="int">1</arg2></instruction></program>`, loader.CodeStructure},
		{"duplicate arg", `<program language="IPPcode20"><instruction order="1" opcode="WRITE"><arg1 type="int">1</arg1><arg1 type="int">2</arg1></instruction></program>`, loader.CodeStructure},
		{"unknown type", `<program language="IPPcode20"><instruction order="1" opcode="WRITE"><arg1 type="char">a</arg1></instruction></program>`, loader.CodeStructure},
		{"missing type", `<program language="IPPcode20"><instruction order="1" opcode="WRITE"><arg1>a</arg1></instruction></program>`, loader.CodeStructure},
		{"nested element", `<program language="IPPcode20"><instruction order="1" opcode="WRITE"><arg1 type="int"><b/></arg1></instruction></program>`, loader.CodeStructure},
		{"text in instruction", `<program language="IPPcode20"><instruction order="1" opcode="BREAK">x</instruction></program>`, loader.CodeStructure},
		{"text in program", `<program language="IPPcode20">x</program>`, loader.CodeStructure},
		{"space in string", `<program language="IPPcode20"><instruction order="1" opcode="WRITE"><arg1 type="string">a b</arg1></instruction></program>`, loader.CodeStructure},
		{"hash in string", `<program language="IPPcode20"><instruction order="1" opcode="WRITE"><arg1 type="string">a#b</arg1></instruction></program>`, loader.CodeStructure},
		{"short escape", `<program language="IPPcode20"><instruction order="1" opcode="WRITE"><arg1 type="string">a\03</arg1></instruction></program>`, loader.CodeStructure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loader.Load(strings.NewReader(tt.src))
			if err == nil {
				t.Fatalf("expected error with code %d", tt.code)
			}

			var e *loader.Error
			if !errors.As(err, &e) {
				t.Fatalf("expected *loader.Error, got %T: %v", err, err)
			}
			if e.ExitCode() != tt.code {
				t.Errorf("expected code %d, got %d (%v)", tt.code, e.ExitCode(), err)
			}
		})
	}
}

func TestLoadDeclaredEncoding(t *testing.T) {
	// "č" is 0xE8 in windows-1250
	src := "<?xml version=\"1.0\" encoding=\"windows-1250\"?>\n" +
		"<program language=\"IPPcode20\"><instruction order=\"1\" opcode=\"WRITE\">" +
		"<arg1 type=\"string\">\xe8</arg1></instruction></program>"

	prog, err := loader.Load(strings.NewReader(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := prog.Instructions[0].Args[0].Text; got != "č" {
		t.Errorf("expected %q, got %q", "č", got)
	}
}

func TestErrorPosition(t *testing.T) {
	src := "<program language=\"IPPcode20\">\n\n<instruction order=\"1\" opcode=\"NOPE\"/>\n</program>"

	_, err := loader.Load(strings.NewReader(src))
	var e *loader.Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *loader.Error, got %v", err)
	}
	if e.Pos.Line != 3 {
		t.Errorf("expected error on line 3, got %s", e.Pos)
	}
	if !strings.HasPrefix(e.Error(), "3:") {
		t.Errorf("expected position prefix, got %q", e.Error())
	}
}

func TestNewDecodingReader(t *testing.T) {
	r, err := loader.NewDecodingReader("iso-8859-2", strings.NewReader("\xb9"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(b) != "š" {
		t.Errorf("expected %q, got %q", "š", b)
	}

	if _, err := loader.NewDecodingReader("klingon", strings.NewReader("")); err == nil {
		t.Error("expected error for unknown encoding")
	}

	plain := strings.NewReader("x")
	if r, _ := loader.NewDecodingReader("UTF-8", plain); r != plain {
		t.Error("expected UTF-8 input to pass through")
	}
}
