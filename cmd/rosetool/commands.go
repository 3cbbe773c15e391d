package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/midgard-rose/internal/assets"
	"github.com/Faultbox/midgard-rose/internal/config"
	"github.com/Faultbox/midgard-rose/internal/logger"
	"github.com/Faultbox/midgard-rose/pkg/formats"
)

// decodeFile decodes a file on disk or, failing that, a virtual path in the
// configured data roots.
func (a *app) decodeFile(path string) (formats.Kind, any, error) {
	kind := formats.KindFromPath(path)
	if kind == formats.KindUnknown {
		return kind, nil, fmt.Errorf("%s: unrecognized file type", path)
	}

	if fi, err := os.Stat(path); err == nil && fi.Mode().IsRegular() {
		data, err := os.ReadFile(path)
		if err != nil {
			return kind, nil, err
		}
		model, err := formats.Decode(kind, data)
		if err != nil {
			return kind, nil, fmt.Errorf("decoding %s: %w", path, err)
		}
		return kind, model, nil
	}

	m, err := a.manager("")
	if err != nil {
		return kind, nil, fmt.Errorf("%s: no such file", path)
	}
	defer m.Close()

	model, err := m.Decode(path)
	return kind, model, err
}

func (a *app) cmdInfo(args []string) error {
	if len(args) != 1 {
		return errUsage
	}

	kind, model, err := a.decodeFile(args[0])
	if err != nil {
		return err
	}

	s := summarize(model)
	s.prepend("kind", kind.String())
	s.prepend("file", args[0])
	return a.write(s)
}

func (a *app) cmdDump(args []string) error {
	if len(args) != 1 {
		return errUsage
	}

	_, model, err := a.decodeFile(args[0])
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(a.stdout)
	enc.SetIndent(2)
	if err := enc.Encode(model); err != nil {
		return err
	}
	return enc.Close()
}

func (a *app) cmdList(args []string) error {
	if len(args) > 2 {
		return errUsage
	}
	dir, pattern := splitDirPattern(args)

	m, err := a.manager(dir)
	if err != nil {
		return err
	}
	defer m.Close()

	files, err := a.selectFiles(m, pattern)
	if err != nil {
		return err
	}

	if a.cfg.Output.Format == config.FormatYAML {
		return a.write(files)
	}
	for _, f := range files {
		fmt.Fprintln(a.stdout, f)
	}
	return nil
}

func (a *app) selectFiles(m *assets.Manager, pattern string) ([]string, error) {
	if pattern == "" {
		return m.List(), nil
	}
	return m.Match(pattern)
}

// scanReport is the structured output of scan.
type scanReport struct {
	Files    int            `yaml:"files"`
	Decoded  map[string]int `yaml:"decoded"`
	Failed   map[string]int `yaml:"failed"`
	Failures []scanFailure  `yaml:"failures,omitempty"`
}

type scanFailure struct {
	Path  string `yaml:"path"`
	Error string `yaml:"error"`
}

func (a *app) cmdScan(args []string) error {
	if len(args) > 2 {
		return errUsage
	}
	dir, pattern := splitDirPattern(args)

	m, err := a.manager(dir)
	if err != nil {
		return err
	}
	defer m.Close()

	files, err := a.selectFiles(m, pattern)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log := logger.Named("scan")
	log.Info("scanning", zap.Int("files", len(files)), zap.Int("workers", a.cfg.Decode.Workers))

	batch := m.DecodeAll(ctx, files, assets.BatchOptions{
		Workers:  a.cfg.Decode.Workers,
		FailFast: a.cfg.Decode.FailFast,
	})

	report := scanReport{
		Files:   len(files),
		Decoded: kindCounts(batch.Decoded),
		Failed:  kindCounts(batch.Failed),
	}
	for _, r := range batch.Results {
		if r.Err != nil {
			report.Failures = append(report.Failures, scanFailure{Path: r.Path, Error: r.Err.Error()})
		}
	}

	if a.cfg.Output.Format == config.FormatYAML {
		if err := a.write(report); err != nil {
			return err
		}
	} else {
		a.writeScanText(report, batch.Summary())
	}

	if n := len(report.Failures); n > 0 {
		return fmt.Errorf("%d of %d files failed to decode", n, len(files))
	}
	return nil
}

func (a *app) writeScanText(report scanReport, summary string) {
	kinds := make([]string, 0, len(report.Decoded)+len(report.Failed))
	seen := make(map[string]bool)
	for _, counts := range []map[string]int{report.Decoded, report.Failed} {
		for k := range counts {
			if !seen[k] {
				seen[k] = true
				kinds = append(kinds, k)
			}
		}
	}
	sort.Strings(kinds)

	fmt.Fprintf(a.stdout, "Files:   %d\n", report.Files)
	fmt.Fprintf(a.stdout, "Result:  %s\n", summary)
	if len(kinds) > 0 {
		fmt.Fprintln(a.stdout)
		fmt.Fprintf(a.stdout, "  %-6s %8s %8s\n", "kind", "ok", "failed")
		for _, k := range kinds {
			fmt.Fprintf(a.stdout, "  %-6s %8d %8d\n", k, report.Decoded[k], report.Failed[k])
		}
	}
	if len(report.Failures) > 0 {
		fmt.Fprintln(a.stdout)
		fmt.Fprintln(a.stdout, "Failures:")
		for _, f := range report.Failures {
			fmt.Fprintf(a.stdout, "  %s: %s\n", f.Path, f.Error)
		}
	}
}

func kindCounts(counts map[formats.Kind]int) map[string]int {
	out := make(map[string]int, len(counts))
	for k, n := range counts {
		out[k.String()] = n
	}
	return out
}

// write prints v in the configured output format. Text output of a summary
// is aligned columns; anything else is printed with %v.
func (a *app) write(v any) error {
	if a.cfg.Output.Format == config.FormatYAML {
		enc := yaml.NewEncoder(a.stdout)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}

	if s, ok := v.(*summary); ok {
		s.writeText(a.stdout)
		return nil
	}
	fmt.Fprintf(a.stdout, "%v\n", v)
	return nil
}
