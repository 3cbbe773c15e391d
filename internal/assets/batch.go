package assets

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-rose/pkg/formats"
)

// BatchOptions controls a batch decode.
type BatchOptions struct {
	Workers  int
	FailFast bool // Stop handing out work after the first failure
}

// Result holds the outcome of decoding one file.
type Result struct {
	Path    string
	Kind    formats.Kind
	Model   any
	Err     error
	Elapsed time.Duration
	Skipped bool // Never attempted because the batch stopped early
}

// BatchReport summarises a batch decode.
type BatchReport struct {
	Results []Result // In input order
	Decoded map[formats.Kind]int
	Failed  map[formats.Kind]int
	Err     error // Every decode failure, combined
}

// DecodeAll decodes paths with a pool of workers. Results keep the order of
// paths. Files with an unrecognized extension are skipped without error.
func (m *Manager) DecodeAll(ctx context.Context, paths []string, opts BatchOptions) *BatchReport {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]Result, len(paths))
	var processed atomic.Int64
	start := time.Now()

	pathChan := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range pathChan {
				if ctx.Err() != nil {
					results[idx] = Result{Path: paths[idx], Kind: formats.KindFromPath(paths[idx]), Skipped: true}
					continue
				}
				results[idx] = m.decodeOne(paths[idx])
				if results[idx].Err != nil && opts.FailFast {
					cancel()
				}
				processed.Add(1)
			}
		}()
	}

	for i := range paths {
		pathChan <- i
	}
	close(pathChan)
	wg.Wait()

	report := &BatchReport{
		Results: results,
		Decoded: make(map[formats.Kind]int),
		Failed:  make(map[formats.Kind]int),
	}
	for _, r := range results {
		switch {
		case r.Skipped:
		case r.Err != nil:
			report.Failed[r.Kind]++
			report.Err = multierr.Append(report.Err, r.Err)
		default:
			report.Decoded[r.Kind]++
		}
	}

	m.log.Info("batch finished",
		zap.Int("files", len(paths)),
		zap.Int64("processed", processed.Load()),
		zap.Int("failed", len(multierr.Errors(report.Err))),
		zap.Int("workers", workers),
		zap.Duration("elapsed", time.Since(start)),
	)
	return report
}

func (m *Manager) decodeOne(path string) Result {
	kind := formats.KindFromPath(path)
	if kind == formats.KindUnknown {
		return Result{Path: path, Kind: kind, Skipped: true}
	}

	// Batch buffers are dropped once decoded; only single loads are cached.
	start := time.Now()
	model, err := m.decode(path, m.read)
	return Result{
		Path:    path,
		Kind:    kind,
		Model:   model,
		Err:     err,
		Elapsed: time.Since(start),
	}
}

// Errors returns the individual decode failures.
func (r *BatchReport) Errors() []error {
	return multierr.Errors(r.Err)
}

// Summary returns a one-line description of the report.
func (r *BatchReport) Summary() string {
	var ok, failed, skipped int
	for _, res := range r.Results {
		switch {
		case res.Skipped:
			skipped++
		case res.Err != nil:
			failed++
		default:
			ok++
		}
	}
	return fmt.Sprintf("%d decoded, %d failed, %d skipped", ok, failed, skipped)
}
