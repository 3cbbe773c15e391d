// rosetool is a CLI utility for inspecting ROSE Online client files.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/Faultbox/midgard-rose/internal/assets"
	"github.com/Faultbox/midgard-rose/internal/config"
	"github.com/Faultbox/midgard-rose/internal/logger"
)

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// errUsage marks errors caused by bad command-line arguments.
var errUsage = errors.New("usage")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// app carries what every command needs.
type app struct {
	cfg    *config.Config
	stdout io.Writer
	stderr io.Writer
}

type command struct {
	name  string
	usage string
	run   func(a *app, args []string) error
}

var commands = []command{
	{"info", "info <file>                Decode a file and print a summary", (*app).cmdInfo},
	{"dump", "dump <file>                Print the whole decoded file as YAML", (*app).cmdDump},
	{"list", "list [dir] [pattern]       List files in the data directories", (*app).cmdList},
	{"scan", "scan [dir] [pattern]       Decode every recognised file and report failures", (*app).cmdScan},
	{"zone", "zone <dir>                 Decode the HIM/IFO/TIL tiles of a map directory", (*app).cmdZone},
	{"pose", "pose [-t d] [-loop] <zmd> <zmo>  Print joint positions of a clip at time d", (*app).cmdPose},
}

func run(args []string, stdout, stderr io.Writer) int {
	var flags config.Flags
	fs := flag.NewFlagSet("rosetool", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { printUsage(stderr, fs) }
	flags.Register(fs)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if fs.NArg() < 1 {
		printUsage(stderr, fs)
		return exitUsage
	}

	cfg, err := config.Load(&flags)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}

	fileCfg := logger.FileConfig{}
	if cfg.Logging.LogFile != "" {
		fileCfg = logger.DefaultFileConfig(cfg.Logging.LogFile)
	}
	if err := logger.InitWithWriter(cfg.Logging.Level, fileCfg, stderr); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}
	defer logger.Sync()

	name, rest := fs.Arg(0), fs.Args()[1:]
	if name == "help" {
		printUsage(stdout, fs)
		return exitOK
	}

	a := &app{cfg: cfg, stdout: stdout, stderr: stderr}
	for _, c := range commands {
		if c.name != name {
			continue
		}
		if err := c.run(a, rest); err != nil {
			if errors.Is(err, errUsage) {
				fmt.Fprintf(stderr, "Usage: rosetool %s\n", c.usage)
				return exitUsage
			}
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitError
		}
		return exitOK
	}

	fmt.Fprintf(stderr, "Unknown command: %s\n", name)
	printUsage(stderr, fs)
	return exitUsage
}

func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(w, `rosetool - ROSE Online client file utility

Usage:
  rosetool [flags] <command> [args]

Commands:`)
	for _, c := range commands {
		fmt.Fprintf(w, "  %s\n", c.usage)
	}
	fmt.Fprintln(w, "\nFlags:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w, `
Examples:
  rosetool info 3DDATA/NPC/PART_NPC.ZSC
  rosetool -data ./client dump 3DDATA/MOTION/NPC/JELLYBEAN1_WALK.ZMO
  rosetool -workers 8 scan ./client "3ddata/avatar/*.zms"
  rosetool -format yaml zone ./client/3DDATA/MAPS/JUNON/JDT01`)
}

// manager opens dir, or the configured data roots when dir is empty.
func (a *app) manager(dir string) (*assets.Manager, error) {
	m := assets.NewManager(logger.Named("assets"))

	roots := a.cfg.Data.Roots
	if dir != "" {
		roots = []string{dir}
	}
	if len(roots) == 0 {
		return nil, fmt.Errorf("no data directory: pass one or set data.roots")
	}
	for _, root := range roots {
		if err := m.AddRoot(root); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// splitDirPattern interprets the optional [dir] [pattern] arguments. A lone
// argument that is an existing directory is taken as dir.
func splitDirPattern(args []string) (dir, pattern string) {
	switch len(args) {
	case 0:
		return "", ""
	case 1:
		if fi, err := os.Stat(args[0]); err == nil && fi.IsDir() {
			return args[0], ""
		}
		return "", args[0]
	default:
		return args[0], args[1]
	}
}
