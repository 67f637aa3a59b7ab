// Package pipeline orchestrates a whole merge run: load the reference floor,
// align and merge each target floor in input order, synthesize vertical
// passages, and write the single consolidated output file.
//
// The run is strictly sequential. Each floor's match → estimate → reconcile →
// transform → append steps must complete before the next floor begins,
// because the identifier reconciler's running counters are shared state the
// next floor depends on. A failed target floor is logged and skipped; the
// loop continues. There is no rollback: once a floor's elements are appended
// they stay, so the reference must come first and targets may follow in any
// order.
package pipeline

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/osmag/agmerge/pkg/config"
	"github.com/osmag/agmerge/pkg/errors"
	"github.com/osmag/agmerge/pkg/merge"
)

// DefaultSeed pins the passage-name RNG for reproducible output.
const DefaultSeed = int64(42)

// Options configures a merge run.
type Options struct {
	Reference string   // reference floor file (required)
	Targets   []string // target floor files, merged in order (at least one)
	Output    string   // consolidated output file (required)

	Precision      int     // coordinate decimals, default 12
	ElevatorWeight float64 // anchor weight for elevators, default 2.0
	StairsWeight   float64 // anchor weight for stairs, default 1.5
	MinMatches     int     // anchor-pair shortfall threshold, default 2
	KeepTargetRoot bool    // retain target floors' root-marker nodes
	Seed           int64   // passage-name RNG seed, default 42

	// Runtime options
	Logger *log.Logger

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// ApplyParams fills options from a params file. Flags win: only fields still
// at their zero value are taken from the file.
func (o *Options) ApplyParams(p config.Params) {
	if o.Precision == 0 {
		o.Precision = p.Precision
	}
	if o.ElevatorWeight == 0 {
		o.ElevatorWeight = p.ElevatorWeight
	}
	if o.StairsWeight == 0 {
		o.StairsWeight = p.StairsWeight
	}
	if o.MinMatches == 0 {
		o.MinMatches = p.MinMatches
	}
	if !o.KeepTargetRoot {
		o.KeepTargetRoot = p.KeepTargetRoot
	}
	if o.Seed == 0 {
		o.Seed = p.Seed
	}
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Reference == "" {
		return errors.New(errors.ErrCodeInvalidInput, "reference file is required")
	}
	if len(o.Targets) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "at least one target file is required")
	}
	if o.Output == "" {
		return errors.New(errors.ErrCodeInvalidInput, "output file is required")
	}
	if o.Precision < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "precision must not be negative")
	}
	if o.ElevatorWeight < 0 || o.StairsWeight < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "anchor weights must not be negative")
	}

	if o.Precision == 0 {
		o.Precision = merge.DefaultPrecision
	}
	if o.ElevatorWeight == 0 {
		o.ElevatorWeight = merge.DefaultElevatorWeight
	}
	if o.StairsWeight == 0 {
		o.StairsWeight = merge.DefaultStairsWeight
	}
	if o.MinMatches == 0 {
		o.MinMatches = merge.DefaultMinMatches
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	o.validated = true
	return nil
}

// mergeConfig maps options onto the merge engine's configuration.
func (o *Options) mergeConfig() merge.Config {
	return merge.Config{
		Estimator: merge.EstimatorConfig{
			ElevatorWeight: o.ElevatorWeight,
			StairsWeight:   o.StairsWeight,
			MinMatches:     o.MinMatches,
		},
		Precision:      o.Precision,
		KeepTargetRoot: o.KeepTargetRoot,
	}
}
