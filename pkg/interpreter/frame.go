package interpreter

import (
	"sort"

	"ippi/pkg/ir"
	"ippi/pkg/stack"
)

type SlotState int

const (
	Undeclared SlotState = iota
	Declared             // defined by DEFVAR, no value yet
	Assigned
)

// Frame is a namespace of variable slots. A nil entry is a declared-empty slot.
type Frame struct {
	slots map[string]*Value
}

func newFrame() *Frame {
	return &Frame{slots: make(map[string]*Value)}
}

// Slot returns the value and state of a named slot
func (f *Frame) Slot(name string) (Value, SlotState) {
	v, ok := f.slots[name]
	switch {
	case !ok:
		return Value{}, Undeclared
	case v == nil:
		return Value{}, Declared
	default:
		return *v, Assigned
	}
}

// Names returns the declared names in sorted order
func (f *Frame) Names() []string {
	names := make([]string, 0, len(f.slots))
	for name := range f.slots {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Assigned counts the slots holding a value
func (f *Frame) Assigned() int {
	n := 0
	for _, v := range f.slots {
		if v != nil {
			n++
		}
	}
	return n
}

// FrameStore holds the global, local and temporary frames plus the
// stack of local frames shadowed by PUSHFRAME.
type FrameStore struct {
	global *Frame
	local  *Frame
	temp   *Frame
	saved  *stack.Stack[*Frame]
}

// NewFrameStore returns a store with an empty global frame and no LF or TF
func NewFrameStore() *FrameStore {
	return &FrameStore{
		global: newFrame(),
		saved:  stack.New[*Frame](),
	}
}

// Frame returns the frame behind a GF/LF/TF prefix, or nil if it does not exist
func (s *FrameStore) Frame(prefix string) *Frame {
	switch prefix {
	case ir.FrameGlobal:
		return s.global
	case ir.FrameLocal:
		return s.local
	case ir.FrameTemporary:
		return s.temp
	default:
		return nil
	}
}

func (s *FrameStore) lookup(prefix, name string) (*Frame, error) {
	f := s.Frame(prefix)
	if f == nil {
		return nil, errorf(FrameNotFound, "frame %s does not exist (accessing %s@%s)", prefix, prefix, name)
	}
	return f, nil
}

// Define creates a declared-empty slot
func (s *FrameStore) Define(prefix, name string) error {
	f, err := s.lookup(prefix, name)
	if err != nil {
		return err
	}
	if _, exists := f.slots[name]; exists {
		return errorf(VariableRedefined, "variable %s@%s is already defined", prefix, name)
	}
	f.slots[name] = nil
	return nil
}

// Write assigns a value to a previously defined slot
func (s *FrameStore) Write(prefix, name string, v Value) error {
	f, err := s.lookup(prefix, name)
	if err != nil {
		return err
	}
	if _, exists := f.slots[name]; !exists {
		return errorf(VariableNotDeclared, "variable %s@%s is not defined", prefix, name)
	}
	f.slots[name] = &v
	return nil
}

// Read returns the value of an assigned slot
func (s *FrameStore) Read(prefix, name string) (Value, error) {
	v, state, err := s.Inspect(prefix, name)
	if err != nil {
		return Value{}, err
	}
	if state == Declared {
		return Value{}, errorf(MissingValue, "variable %s@%s has no value", prefix, name)
	}
	return v, nil
}

// Inspect is Read without the MissingValue check, used by TYPE
func (s *FrameStore) Inspect(prefix, name string) (Value, SlotState, error) {
	f, err := s.lookup(prefix, name)
	if err != nil {
		return Value{}, Undeclared, err
	}
	v, state := f.Slot(name)
	if state == Undeclared {
		return Value{}, Undeclared, errorf(VariableNotDeclared, "variable %s@%s is not defined", prefix, name)
	}
	return v, state, nil
}

// CreateFrame replaces the temporary frame with an empty one
func (s *FrameStore) CreateFrame() {
	s.temp = newFrame()
}

// PushFrame turns TF into the new LF, saving the previous LF
func (s *FrameStore) PushFrame() error {
	if s.temp == nil {
		return errorf(FrameNotFound, "PUSHFRAME without a temporary frame")
	}
	if s.local != nil {
		s.saved.Push(s.local)
	}
	s.local = s.temp
	s.temp = nil
	return nil
}

// PopFrame turns LF back into TF and restores the previously saved LF
func (s *FrameStore) PopFrame() error {
	if s.local == nil {
		return errorf(FrameNotFound, "POPFRAME without a local frame")
	}
	s.temp = s.local
	s.local = nil
	if prev, err := s.saved.Pop(); err == nil {
		s.local = prev
	}
	return nil
}

// Depth returns the number of local frames, including the active one
func (s *FrameStore) Depth() int {
	if s.local == nil {
		return 0
	}
	return s.saved.Size() + 1
}

// AssignedCount counts assigned slots across every live frame
func (s *FrameStore) AssignedCount() int {
	n := s.global.Assigned()
	if s.local != nil {
		n += s.local.Assigned()
	}
	if s.temp != nil {
		n += s.temp.Assigned()
	}
	for _, f := range s.saved.Array() {
		n += f.Assigned()
	}
	return n
}
