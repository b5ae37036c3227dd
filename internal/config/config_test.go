package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ippi.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
[run]
source = "prog.xml"
input = "/abs/input.txt"
input_encoding = "windows-1250"
max_steps = 1000

[stats]
file = "out/stats.txt"
collect = ["vars", "insts"]

[log]
verbose = true
no_color = true
`)

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	dir := filepath.Dir(path)
	if c.Run.Source != filepath.Join(dir, "prog.xml") {
		t.Errorf("source = %q, want it relative to %s", c.Run.Source, dir)
	}
	if c.Run.Input != "/abs/input.txt" {
		t.Errorf("input = %q, want /abs/input.txt", c.Run.Input)
	}
	if c.Run.InputEncoding != "windows-1250" {
		t.Errorf("input_encoding = %q, want windows-1250", c.Run.InputEncoding)
	}
	if c.Run.MaxSteps != 1000 {
		t.Errorf("max_steps = %d, want 1000", c.Run.MaxSteps)
	}
	if c.Stats.File != filepath.Join(dir, "out", "stats.txt") {
		t.Errorf("stats file = %q", c.Stats.File)
	}
	if strings.Join(c.Stats.Collect, ",") != "vars,insts" {
		t.Errorf("collect = %v, want [vars insts]", c.Stats.Collect)
	}
	if !c.Log.Verbose || !c.Log.NoColor {
		t.Errorf("log = %+v, want verbose and no_color", c.Log)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	c, err := Load(writeConfig(t, "[run]\nsource = \"a.xml\"\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.Run.InputEncoding != "utf-8" {
		t.Errorf("input_encoding = %q, want utf-8", c.Run.InputEncoding)
	}
	if c.Run.Input != "" || c.Stats.File != "" {
		t.Errorf("expected empty paths to stay empty, got %q %q", c.Run.Input, c.Stats.File)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"syntax", "[run\n", "parse error"},
		{"unknown key", "[run]\nsorce = \"a.xml\"\n", "unknown keys"},
		{"negative steps", "[run]\nmax_steps = -1\n", "max_steps"},
		{"unknown statistic", "[stats]\nfile = \"s\"\ncollect = [\"time\"]\n", "unknown statistic"},
		{"collect without file", "[stats]\ncollect = [\"insts\"]\n", "requires stats.file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("expected error for a missing file")
	}
}
