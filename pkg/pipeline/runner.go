package pipeline

import (
	"context"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/osmag/agmerge/pkg/errors"
	"github.com/osmag/agmerge/pkg/merge"
	"github.com/osmag/agmerge/pkg/observability"
	"github.com/osmag/agmerge/pkg/osmag"
	"github.com/osmag/agmerge/pkg/passage"
)

// Result carries everything a merge run produced.
type Result struct {
	Report   *merge.Report
	Document *osmag.Document
	Stats    Stats
}

// Stats records timing of the run's phases.
type Stats struct {
	MergeTime     time.Duration
	SynthesisTime time.Duration
	WriteTime     time.Duration
}

// Run executes a full merge: reference load, per-target merges in input
// order, passage synthesis, output write. A target floor that fails to load
// or merge is reported as skipped; only a reference failure or a write
// failure aborts the run.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	report := merge.NewReport(opts.Reference)
	logger := opts.Logger.With("run_id", report.RunID)

	reference, err := loadFloor(opts.Reference)
	if err != nil {
		return nil, err
	}
	if reference.RootMarker() == nil {
		logger.Warn("reference floor has no root marker node", "source", opts.Reference)
	}

	graph := merge.New(reference, opts.mergeConfig(), logger)

	mergeStart := time.Now()
	for _, target := range opts.Targets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		observability.Merge().OnFloorStart(ctx, target)
		floorStart := time.Now()

		rep := mergeOne(graph, target, logger)
		report.Floors = append(report.Floors, *rep)

		observability.Merge().OnFloorComplete(ctx, target, rep.Pairs, time.Since(floorStart), rep.Err)
	}
	stats := Stats{MergeTime: time.Since(mergeStart)}

	synthStart := time.Now()
	synth := passage.New(opts.Seed, logger)
	report.Passages = synth.Synthesize(graph.Document(), graph.Counters())
	stats.SynthesisTime = time.Since(synthStart)
	observability.Merge().OnSynthesisComplete(ctx, report.Passages, stats.SynthesisTime)

	writeStart := time.Now()
	if err := graph.Document().Save(opts.Output); err != nil {
		return nil, err
	}
	stats.WriteTime = time.Since(writeStart)

	logger.Info("merge run complete",
		"floors", report.Merged(),
		"skipped", len(report.SkippedFloors()),
		"passages", report.Passages,
		"output", opts.Output)

	return &Result{Report: report, Document: graph.Document(), Stats: stats}, nil
}

// mergeOne loads and merges a single target floor. Failures are folded into
// the returned report rather than propagated, so one bad floor cannot sink
// the run.
func mergeOne(graph *merge.MergedGraph, target string, logger *log.Logger) *merge.FloorReport {
	floor, err := loadFloor(target)
	if err != nil {
		logger.Error("skipping target floor", "source", target, "error", err)
		return &merge.FloorReport{Source: target, Skipped: true, Err: err}
	}

	rep, err := graph.MergeFloor(floor, target)
	if err != nil {
		logger.Error("skipping target floor", "source", target, "error", err)
		rep.Skipped = true
	}
	return rep
}

// loadFloor reads one floor file, translating I/O and decode failures into
// the tool's error taxonomy.
func loadFloor(path string) (*osmag.Document, error) {
	doc, err := osmag.Load(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "floor file %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeParse, err, "floor file %s", path)
	}
	return doc, nil
}
