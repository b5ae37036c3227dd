package runner

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"ippi/internal/config"
	"ippi/pkg/color"
	"ippi/pkg/interpreter"
	"ippi/pkg/ir"
	"ippi/pkg/loader"

	"github.com/charmbracelet/log"
)

// Status codes of command line and file problems
const (
	ExitParam      = 10 // missing or conflicting parameters
	ExitInputFile  = 11 // source or input file cannot be opened
	ExitOutputFile = 12 // statistics file cannot be created
	ExitInternal   = 99
)

type Runner struct {
	Help          bool     // Show help message
	Verbose       bool     // Enable debug logging and the program listing
	NoColor       bool     // Disable colored output
	ConfigFile    string   // Path to an optional TOML config
	SourceFile    string   // Path to the XML program, stdin when empty
	InputFile     string   // Path to the READ input, stdin when empty
	InputEncoding string   // Encoding of the READ input
	StatsFile     string   // Path to the statistics report
	Stats         []string // Requested statistics in command line order
	MaxSteps      int      // Step limit, 0 for none

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// StatusError carries the process status for a failure outside the interpreter
type StatusError struct {
	Code int
	Err  error
}

func (e *StatusError) Error() string {
	return e.Err.Error()
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

func (e *StatusError) ExitCode() int {
	return e.Code
}

func statusf(code int, format string, args ...any) *StatusError {
	return &StatusError{Code: code, Err: fmt.Errorf(format, args...)}
}

// ExitCode maps an error returned by Run to a process status
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var coded interface{ ExitCode() int }
	if errors.As(err, &coded) {
		return coded.ExitCode()
	}
	return ExitInternal
}

// ApplyConfig fills the options left unset on the command line
func (r *Runner) ApplyConfig(c *config.Config) {
	if r.SourceFile == "" {
		r.SourceFile = c.Run.Source
	}
	if r.InputFile == "" {
		r.InputFile = c.Run.Input
	}
	if r.InputEncoding == "" {
		r.InputEncoding = c.Run.InputEncoding
	}
	if r.MaxSteps == 0 {
		r.MaxSteps = c.Run.MaxSteps
	}
	if r.StatsFile == "" {
		r.StatsFile = c.Stats.File
	}
	if len(r.Stats) == 0 {
		r.Stats = append(r.Stats, c.Stats.Collect...)
	}
	r.Verbose = r.Verbose || c.Log.Verbose
	r.NoColor = r.NoColor || c.Log.NoColor
}

func (r *Runner) defaults() {
	if r.Stdin == nil {
		r.Stdin = os.Stdin
	}
	if r.Stdout == nil {
		r.Stdout = os.Stdout
	}
	if r.Stderr == nil {
		r.Stderr = os.Stderr
	}
}

// LoadConfig merges the config file, if any, into the options
func (r *Runner) LoadConfig() error {
	if r.ConfigFile == "" {
		return nil
	}

	c, err := config.Load(r.ConfigFile)
	if err != nil {
		return &StatusError{Code: ExitParam, Err: err}
	}
	r.ApplyConfig(c)
	return nil
}

// Run opens the files, executes the program and writes the statistics.
// It returns the status requested by EXIT, or an error carrying its own status.
func (r *Runner) Run() (int, error) {
	r.defaults()

	if r.SourceFile == "" && r.InputFile == "" {
		return 0, statusf(ExitParam, "at least one of --source and --input is required")
	}
	if r.MaxSteps < 0 {
		return 0, statusf(ExitParam, "--max-steps must not be negative, got %d", r.MaxSteps)
	}

	src, err := r.open(r.SourceFile)
	if err != nil {
		return 0, err
	}
	defer src.Close()

	in, err := r.open(r.InputFile)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	var stats io.Writer
	if r.StatsFile != "" {
		f, err := os.Create(r.StatsFile)
		if err != nil {
			return 0, &StatusError{Code: ExitOutputFile, Err: fmt.Errorf("cannot create statistics file: %w", err)}
		}
		defer f.Close()
		stats = f
	}

	if len(r.Stats) > 0 && stats == nil {
		return 0, statusf(ExitParam, "--insts and --vars require --stats")
	}
	for _, s := range r.Stats {
		if s != config.StatInsts && s != config.StatVars {
			return 0, statusf(ExitParam, "unknown statistic %q", s)
		}
	}

	return r.Execute(src, in, stats)
}

// open returns the named file, or stdin when the name is empty
func (r *Runner) open(name string) (io.ReadCloser, error) {
	if name == "" {
		return io.NopCloser(r.Stdin), nil
	}

	f, err := os.Open(name)
	if err != nil {
		return nil, &StatusError{Code: ExitInputFile, Err: fmt.Errorf("cannot open input: %w", err)}
	}
	return f, nil
}

// Execute loads the program from src and runs it with READ input from in.
// Requested statistics are written to stats after a normal end or EXIT.
func (r *Runner) Execute(src, in io.Reader, stats io.Writer) (int, error) {
	r.defaults()

	prog, err := loader.Load(src)
	if err != nil {
		return 0, err
	}

	if r.Verbose {
		r.listing(prog.Instructions)
	}

	input, err := loader.NewDecodingReader(r.InputEncoding, in)
	if err != nil {
		return 0, &StatusError{Code: ExitParam, Err: err}
	}

	out := bufio.NewWriter(r.Stdout)
	defer out.Flush()

	opts := []interpreter.Option{
		interpreter.WithWriter(out),
		interpreter.WithDiagnostics(r.Stderr),
		interpreter.WithInput(input),
		interpreter.WithMaxSteps(r.MaxSteps),
	}
	if len(r.Stats) > 0 {
		opts = append(opts, interpreter.WithStats())
	}

	it, err := interpreter.NewInterpreter(prog.Instructions, opts...)
	if err != nil {
		return 0, err
	}

	if err := it.Run(); err != nil {
		return 0, err
	}

	if err := out.Flush(); err != nil {
		return 0, &StatusError{Code: ExitInternal, Err: fmt.Errorf("writing output: %w", err)}
	}

	if s, ok := it.Stats(); ok && stats != nil {
		if err := r.writeStats(stats, s); err != nil {
			return 0, &StatusError{Code: ExitOutputFile, Err: err}
		}
	}

	return it.Status(), nil
}

func (r *Runner) writeStats(w io.Writer, s interpreter.Stats) error {
	var sb strings.Builder
	for _, name := range r.Stats {
		switch name {
		case config.StatInsts:
			fmt.Fprintln(&sb, s.Instructions)
		case config.StatVars:
			fmt.Fprintln(&sb, s.MaxVars)
		}
	}

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return fmt.Errorf("writing statistics: %w", err)
	}

	log.Debug("Statistics written", "insts", s.Instructions, "vars", s.MaxVars)
	return nil
}

// listing prints the decoded program to stderr
func (r *Runner) listing(pb []ir.Instruction) {
	var sb strings.Builder

	sb.WriteString(color.GreenText("=== Decoded Program ===") + "\n")
	if len(pb) == 0 {
		sb.WriteString(color.GrayText("No instructions.") + "\n")
	}

	for i, in := range pb {
		args := make([]string, len(in.Args))
		for n, arg := range in.Args {
			args[n] = color.BlueText(arg.String())
		}
		fmt.Fprintf(&sb, "%s %s %s\n",
			color.CyanText(fmt.Sprintf("%3d (order %d):", i, in.Order)),
			color.YellowText(in.Op.String()),
			strings.Join(args, " "))
	}

	io.WriteString(r.Stderr, sb.String())
}
