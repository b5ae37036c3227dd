package loader

import "fmt"

// Status codes reported for rejected programs
const (
	CodeMalformed = 31 // not well-formed XML
	CodeStructure = 32 // well-formed XML with an unexpected structure
)

type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Error describes why a program document was rejected
type Error struct {
	Code int
	Pos  Position
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Pos.Line == 0 {
		return msg
	}
	return fmt.Sprintf("%s: %s", e.Pos, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ExitCode returns the status code for the rejection
func (e *Error) ExitCode() int {
	return e.Code
}
