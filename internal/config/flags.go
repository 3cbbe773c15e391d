package config

import (
	"flag"
	"strings"
)

// Flags holds command-line overrides. Zero values leave the config alone.
type Flags struct {
	Config  string
	Debug   bool
	Data    rootList
	Workers int
	Format  string
}

// rootList collects repeated -data flags.
type rootList []string

func (r *rootList) String() string {
	return strings.Join(*r, ",")
}

func (r *rootList) Set(v string) error {
	*r = append(*r, v)
	return nil
}

// Register binds the flags to fs.
func (f *Flags) Register(fs *flag.FlagSet) {
	fs.StringVar(&f.Config, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.Var(&f.Data, "data", "Client data directory (repeatable, later wins)")
	fs.IntVar(&f.Workers, "workers", 0, "Parallel decode workers")
	fs.StringVar(&f.Format, "format", "", "Output format: text or yaml")
}

// apply applies flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if len(f.Data) > 0 {
		cfg.Data.Roots = append([]string(nil), f.Data...)
	}
	if f.Workers > 0 {
		cfg.Decode.Workers = f.Workers
	}
	if f.Format != "" {
		cfg.Output.Format = f.Format
	}
}
