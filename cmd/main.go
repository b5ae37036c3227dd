package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"ippi/internal/config"
	"ippi/internal/logger"
	"ippi/internal/runner"
	"ippi/pkg/color"

	"github.com/charmbracelet/log"
)

// statsFlag is a boolean flag that records its name in order of appearance
type statsFlag struct {
	name  string
	order *[]string
}

func (f statsFlag) String() string   { return "false" }
func (f statsFlag) IsBoolFlag() bool { return true }

func (f statsFlag) Set(s string) error {
	if s != "true" {
		return fmt.Errorf("--%s takes no value", f.name)
	}
	*f.order = append(*f.order, f.name)
	return nil
}

// Main entry point for the ippi interpreter.
func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, usage io.Writer) int {
	options := runner.Runner{}

	fs := flag.NewFlagSet("ippi", flag.ContinueOnError)
	fs.SetOutput(usage)

	fs.BoolVar(&options.Help, "h", false, "Show help")
	fs.BoolVar(&options.Help, "help", false, "Show help")
	fs.BoolVar(&options.Verbose, "v", false, "Verbose mode")
	fs.BoolVar(&options.NoColor, "n", false, "No color")
	fs.StringVar(&options.SourceFile, "source", "", "XML program file (stdin when omitted)")
	fs.StringVar(&options.InputFile, "input", "", "Input file for READ (stdin when omitted)")
	fs.StringVar(&options.InputEncoding, "input-encoding", "", "Encoding of the input file (default utf-8)")
	fs.StringVar(&options.StatsFile, "stats", "", "File to write statistics to")
	fs.Var(statsFlag{config.StatInsts, &options.Stats}, config.StatInsts, "Report executed instructions, requires --stats")
	fs.Var(statsFlag{config.StatVars, &options.Stats}, config.StatVars, "Report peak initialized variables, requires --stats")
	fs.IntVar(&options.MaxSteps, "max-steps", 0, "Abort after this many instructions (0 = unlimited)")
	fs.StringVar(&options.ConfigFile, "config", "", "TOML config file")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return runner.ExitParam
	}

	if options.Help {
		if len(args) > 1 {
			return runner.ExitParam
		}
		fmt.Fprintf(usage, "Usage: %s [options]\n", os.Args[0])
		fmt.Fprintln(usage, "Options:")
		fs.PrintDefaults()
		return 0
	}

	cfgErr := options.LoadConfig()

	logger.Init(options.Verbose, options.NoColor)
	if options.NoColor {
		color.EnableColor(false)
	}

	if cfgErr != nil {
		log.Error("Invalid config", "file", options.ConfigFile, "error", cfgErr)
		return runner.ExitCode(cfgErr)
	}
	if options.ConfigFile != "" {
		log.Debug("Config loaded", "file", options.ConfigFile)
	}

	if fs.NArg() > 0 {
		log.Error("Unexpected arguments", "args", fs.Args(), "help", fmt.Sprintf("%s -h", os.Args[0]))
		return runner.ExitParam
	}

	status, err := options.Run()
	if err != nil {
		log.Error("Execution failed", "error", err)
		return runner.ExitCode(err)
	}

	return status
}
