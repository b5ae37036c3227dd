package loader

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"ippi/pkg/ir"

	"github.com/charmbracelet/log"
)

// Language is the value required in the language attribute of the root element
const Language = "IPPcode20"

// Program is a decoded program document
type Program struct {
	Name         string
	Description  string
	Instructions []ir.Instruction // sorted by order
}

var argRegex = regexp.MustCompile(`^arg([1-3])$`)

type loader struct {
	d      *xml.Decoder
	orders map[int]bool
}

// Load decodes a program document and returns its instructions sorted by order.
// Arity and operand classes are left to the interpreter; the loader only checks
// the document shape, the attributes and the string literal syntax.
func Load(r io.Reader) (*Program, error) {
	d := xml.NewDecoder(r)
	d.CharsetReader = NewDecodingReader

	l := &loader{d: d, orders: make(map[int]bool)}

	root, err := l.root()
	if err != nil {
		return nil, err
	}

	prog, err := l.program(root)
	if err != nil {
		return nil, err
	}

	if err := l.epilog(); err != nil {
		return nil, err
	}

	slices.SortFunc(prog.Instructions, func(a, b ir.Instruction) int {
		return a.Order - b.Order
	})

	log.Debug("Program loaded", "name", prog.Name, "instructions", len(prog.Instructions))
	return prog, nil
}

func (l *loader) pos() Position {
	line, col := l.d.InputPos()
	return Position{Line: line, Column: col}
}

func (l *loader) errorf(code int, format string, args ...any) *Error {
	return &Error{Code: code, Pos: l.pos(), Msg: fmt.Sprintf(format, args...)}
}

// token returns the next token; io.EOF is returned only at the end of a complete document
func (l *loader) token() (xml.Token, error) {
	tok, err := l.d.Token()
	if errors.Is(err, io.EOF) {
		return nil, io.EOF
	}
	if err != nil {
		return nil, &Error{Code: CodeMalformed, Pos: l.pos(), Msg: "malformed XML", Err: err}
	}
	return tok, nil
}

func blank(data xml.CharData) bool {
	return strings.TrimSpace(string(data)) == ""
}

// root skips the prolog and returns the root element
func (l *loader) root() (xml.StartElement, error) {
	for {
		tok, err := l.token()
		if errors.Is(err, io.EOF) {
			return xml.StartElement{}, l.errorf(CodeMalformed, "document has no root element")
		}
		if err != nil {
			return xml.StartElement{}, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			return t.Copy(), nil
		case xml.CharData:
			if !blank(t) {
				return xml.StartElement{}, l.errorf(CodeMalformed, "text before the root element")
			}
		}
	}
}

// epilog makes sure nothing but comments and whitespace follow the root element
func (l *loader) epilog() error {
	for {
		tok, err := l.token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			return l.errorf(CodeMalformed, "second root element <%s>", t.Name.Local)
		case xml.CharData:
			if !blank(t) {
				return l.errorf(CodeMalformed, "text after the root element")
			}
		}
	}
}

func (l *loader) program(root xml.StartElement) (*Program, error) {
	if root.Name.Local != "program" {
		return nil, l.errorf(CodeStructure, "root element is <%s>, expected <program>", root.Name.Local)
	}

	prog := &Program{}
	language := false
	for _, attr := range root.Attr {
		switch attr.Name.Local {
		case "language":
			if !strings.EqualFold(strings.TrimSpace(attr.Value), Language) {
				return nil, l.errorf(CodeStructure, "unsupported language %q", attr.Value)
			}
			language = true
		case "name":
			prog.Name = attr.Value
		case "description":
			prog.Description = attr.Value
		default:
			return nil, l.errorf(CodeStructure, "unexpected attribute %q on <program>", attr.Name.Local)
		}
	}
	if !language {
		return nil, l.errorf(CodeStructure, "missing language attribute on <program>")
	}

	for {
		tok, err := l.token()
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			in, err := l.instruction(t.Copy())
			if err != nil {
				return nil, err
			}
			prog.Instructions = append(prog.Instructions, in)

		case xml.CharData:
			if !blank(t) {
				return nil, l.errorf(CodeStructure, "unexpected text in <program>")
			}

		case xml.EndElement:
			return prog, nil
		}
	}
}

func (l *loader) instruction(start xml.StartElement) (ir.Instruction, error) {
	if start.Name.Local != "instruction" {
		return ir.Instruction{}, l.errorf(CodeStructure, "unexpected element <%s> in <program>", start.Name.Local)
	}

	var order, opcode string
	var hasOrder, hasOpcode bool
	for _, attr := range start.Attr {
		switch attr.Name.Local {
		case "order":
			order, hasOrder = attr.Value, true
		case "opcode":
			opcode, hasOpcode = attr.Value, true
		default:
			return ir.Instruction{}, l.errorf(CodeStructure, "unexpected attribute %q on <instruction>", attr.Name.Local)
		}
	}
	if !hasOrder || !hasOpcode {
		return ir.Instruction{}, l.errorf(CodeStructure, "<instruction> needs both order and opcode")
	}

	n, err := strconv.Atoi(strings.TrimSpace(order))
	if err != nil || n < 1 {
		return ir.Instruction{}, l.errorf(CodeStructure, "invalid instruction order %q", order)
	}
	if l.orders[n] {
		return ir.Instruction{}, l.errorf(CodeStructure, "duplicate instruction order %d", n)
	}
	l.orders[n] = true

	op, ok := ir.LookupOpcode(strings.TrimSpace(opcode))
	if !ok {
		return ir.Instruction{}, l.errorf(CodeStructure, "unknown opcode %q", opcode)
	}

	args := make(map[int]ir.Operand)
	for {
		tok, err := l.token()
		if err != nil {
			return ir.Instruction{}, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			m := argRegex.FindStringSubmatch(t.Name.Local)
			if m == nil {
				return ir.Instruction{}, l.errorf(CodeStructure, "unexpected element <%s> in instruction %d", t.Name.Local, n)
			}
			idx, _ := strconv.Atoi(m[1])
			if _, dup := args[idx]; dup {
				return ir.Instruction{}, l.errorf(CodeStructure, "duplicate <%s> in instruction %d", t.Name.Local, n)
			}
			arg, err := l.operand(t.Copy())
			if err != nil {
				return ir.Instruction{}, err
			}
			args[idx] = arg

		case xml.CharData:
			if !blank(t) {
				return ir.Instruction{}, l.errorf(CodeStructure, "unexpected text in instruction %d", n)
			}

		case xml.EndElement:
			in := ir.Instruction{Order: n, Op: op, Args: make([]ir.Operand, len(args))}
			for idx := 1; idx <= len(args); idx++ {
				arg, ok := args[idx]
				if !ok {
					return ir.Instruction{}, l.errorf(CodeStructure, "instruction %d has <arg%d> missing", n, idx)
				}
				in.Args[idx-1] = arg
			}
			return in, nil
		}
	}
}

func (l *loader) operand(start xml.StartElement) (ir.Operand, error) {
	if len(start.Attr) != 1 || start.Attr[0].Name.Local != "type" {
		return ir.Operand{}, l.errorf(CodeStructure, "<%s> needs exactly one type attribute", start.Name.Local)
	}
	kind, ok := ir.ParseKind(strings.TrimSpace(start.Attr[0].Value))
	if !ok {
		return ir.Operand{}, l.errorf(CodeStructure, "unknown operand type %q", start.Attr[0].Value)
	}

	var text strings.Builder
	for {
		tok, err := l.token()
		if err != nil {
			return ir.Operand{}, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			return ir.Operand{}, l.errorf(CodeStructure, "unexpected element <%s> in <%s>", t.Name.Local, start.Name.Local)

		case xml.CharData:
			text.Write(t)

		case xml.EndElement:
			if kind != ir.KindString {
				return ir.Operand{Kind: kind, Text: strings.TrimSpace(text.String())}, nil
			}
			s, err := decodeString(text.String())
			if err != nil {
				return ir.Operand{}, &Error{Code: CodeStructure, Pos: l.pos(), Msg: "invalid string literal", Err: err}
			}
			return ir.Operand{Kind: kind, Text: s}, nil
		}
	}
}
