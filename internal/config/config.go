// Package config handles the optional ippi.toml run configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Statistic names accepted in [stats] collect and by --insts/--vars
const (
	StatInsts = "insts"
	StatVars  = "vars"
)

// Config mirrors the command line; flags given explicitly override it.
type Config struct {
	Run   Run   `toml:"run"`
	Stats Stats `toml:"stats"`
	Log   Log   `toml:"log"`

	// Dir is the directory containing the config file (set at load time).
	Dir string `toml:"-"`
}

// Run configures program and input files.
type Run struct {
	Source        string `toml:"source"`
	Input         string `toml:"input"`
	InputEncoding string `toml:"input_encoding"`
	MaxSteps      int    `toml:"max_steps"`
}

// Stats configures the statistics report.
type Stats struct {
	File    string   `toml:"file"`
	Collect []string `toml:"collect"`
}

type Log struct {
	Verbose bool `toml:"verbose"`
	NoColor bool `toml:"no_color"`
}

// Load parses a config file. Relative paths inside it are resolved against its directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var c Config
	md, err := toml.Decode(string(data), &c)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for n, k := range undecoded {
			keys[n] = k.String()
		}
		return nil, fmt.Errorf("unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}

	c.Dir, err = filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", path, err)
	}

	// Defaults
	if c.Run.InputEncoding == "" {
		c.Run.InputEncoding = "utf-8"
	}

	c.Run.Source = c.resolve(c.Run.Source)
	c.Run.Input = c.resolve(c.Run.Input)
	c.Stats.File = c.resolve(c.Stats.File)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return &c, nil
}

func (c *Config) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Dir, p)
}

// Validate checks value ranges and statistic names
func (c *Config) Validate() error {
	if c.Run.MaxSteps < 0 {
		return fmt.Errorf("max_steps must not be negative, got %d", c.Run.MaxSteps)
	}

	for _, s := range c.Stats.Collect {
		switch s {
		case StatInsts, StatVars:
		default:
			return fmt.Errorf("unknown statistic %q (expected %s or %s)", s, StatInsts, StatVars)
		}
	}

	if len(c.Stats.Collect) > 0 && c.Stats.File == "" {
		return fmt.Errorf("stats.collect requires stats.file")
	}

	return nil
}
