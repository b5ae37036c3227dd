package color_test

import (
	"strings"
	"testing"

	"ippi/pkg/color"
)

func TestColorDisabled(t *testing.T) {
	color.EnableColor(false)
	defer color.EnableColor(false)

	if color.IsColorEnabled() {
		t.Fatalf("expected color to be disabled")
	}

	for _, fn := range []func(string) string{color.RedText, color.CyanText, color.GrayText, color.BoldText} {
		if got := fn("plain"); got != "plain" {
			t.Errorf("expected plain text, got %q", got)
		}
	}
}

func TestColorEnabled(t *testing.T) {
	color.EnableColor(true)
	defer color.EnableColor(false)

	got := color.YellowText("label")
	if got == "label" || !strings.Contains(got, "label") || !strings.HasPrefix(got, "\x1b[") {
		t.Errorf("expected ANSI-wrapped text, got %q", got)
	}

	if bold := color.BoldText("x"); !strings.Contains(bold, "\x1b[1m") {
		t.Errorf("expected bold sequence, got %q", bold)
	}
}
