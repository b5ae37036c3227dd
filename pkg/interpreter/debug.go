package interpreter

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"ippi/pkg/color"
)

// dump implements BREAK: a snapshot of the machine on the diagnostic writer
func (i *Interpreter) dump(pc int) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s instruction %d (order %d), %d instructions executed\n",
		color.CyanText("Break at"), pc, i.pb[pc].Order, i.steps+1)

	writeFrame(&sb, "Global frame", i.frames.global)
	writeFrame(&sb, "Local frame", i.frames.local)
	saved := i.frames.saved.Array()
	for n := len(saved) - 1; n >= 0; n-- {
		writeFrame(&sb, fmt.Sprintf("Saved local frame %d", len(saved)-n), saved[n])
	}
	writeFrame(&sb, "Temporary frame", i.frames.temp)

	names := make([]string, 0, len(i.labels))
	for name := range i.labels {
		names = append(names, name)
	}
	sort.Strings(names)

	sb.WriteString(color.CyanText("Labels:"))
	if len(names) == 0 {
		sb.WriteString(color.GrayText(" <none>"))
	}
	sb.WriteByte('\n')
	for _, name := range names {
		fmt.Fprintf(&sb, "  %s -> %d\n", color.YellowText(name), i.labels[name])
	}

	fmt.Fprintf(&sb, "%s %d", color.CyanText("Data stack depth:"), i.data.Size())
	if top, err := i.data.Peek(); err == nil {
		fmt.Fprintf(&sb, " (top %s)", color.BlueText(top.GoString()))
	}
	fmt.Fprintf(&sb, ", %s %d\n", color.CyanText("call stack depth:"), i.calls.Size())

	if _, err := io.WriteString(i.diag, sb.String()); err != nil {
		return &Error{Kind: InternalError, PC: -1, Msg: "writing diagnostics", Err: err}
	}
	return nil
}

func writeFrame(sb *strings.Builder, title string, f *Frame) {
	sb.WriteString(color.CyanText(title + ":"))
	if f == nil {
		sb.WriteString(color.GrayText(" <undefined>\n"))
		return
	}
	sb.WriteByte('\n')

	for _, name := range f.Names() {
		v, state := f.Slot(name)
		if state == Declared {
			fmt.Fprintf(sb, "  %s = %s\n", name, color.GrayText("<empty>"))
			continue
		}
		fmt.Fprintf(sb, "  %s = %s\n", name, color.BlueText(v.GoString()))
	}
}
