package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunFlags(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "prog.xml")
	prog := `<program language="IPPcode20">
<instruction order="1" opcode="EXIT"><arg1 type="int">9</arg1></instruction>
</program>`
	if err := os.WriteFile(src, []byte(prog), 0644); err != nil {
		t.Fatal(err)
	}
	stats := filepath.Join(dir, "stats.txt")

	tests := []struct {
		name string
		args []string
		code int
	}{
		{"help", []string{"-h"}, 0},
		{"help with other flags", []string{"--help", "--source", src}, 10},
		{"unknown flag", []string{"--nope"}, 10},
		{"no source or input", []string{"-n"}, 10},
		{"stats without file", []string{"-n", "--source", src, "--insts"}, 10},
		{"positional argument", []string{"-n", "--source", src, "extra"}, 10},
		{"negative step limit", []string{"-n", "--source", src, "--max-steps", "-1"}, 10},
		{"missing source", []string{"-n", "--source", filepath.Join(dir, "missing.xml")}, 11},
		{"exit status", []string{"-n", "--source", src, "--stats", stats, "--vars", "--insts"}, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var usage bytes.Buffer
			if code := run(tt.args, &usage); code != tt.code {
				t.Errorf("expected status %d, got %d", tt.code, code)
			}
		})
	}

	report, err := os.ReadFile(stats)
	if err != nil {
		t.Fatal(err)
	}
	if string(report) != "0\n1\n" {
		t.Errorf("expected statistics in flag order, got %q", report)
	}
}

func TestHelpOutput(t *testing.T) {
	var usage bytes.Buffer
	run([]string{"-h"}, &usage)
	for _, want := range []string{"Usage:", "-source", "-insts", "-config"} {
		if !strings.Contains(usage.String(), want) {
			t.Errorf("help output missing %q:\n%s", want, usage.String())
		}
	}
}
