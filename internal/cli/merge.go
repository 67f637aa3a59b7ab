package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/osmag/agmerge/pkg/config"
	"github.com/osmag/agmerge/pkg/pipeline"
)

// newMergeCmd creates the merge command, which aligns target floor files onto
// a reference floor and writes one consolidated building map.
func newMergeCmd() *cobra.Command {
	var (
		reference      string
		targets        []string
		output         string
		precision      int
		elevatorWeight float64
		stairsWeight   float64
		minMatches     int
		keepTargetRoot bool
		configPath     string
		seed           int64
	)

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge target floor files onto a reference floor",
		Long: `Merge aligns each target floor against the reference using the elevator and
stairs areas the floors share, estimates a translation with outlier rejection,
rewrites synthetic negative IDs into globally unique positive ones, and appends
the floor to the output. After all floors are in, vertical passage ways are
synthesized for every shaft spanning adjacent floors.

Target floors are merged in the order given. A floor that fails to load or
reconcile is skipped with a warning; the run continues.`,
		Example: `  # Merge two upper floors onto the ground floor
  agmerge merge --reference F1.osm --targets F2.osm,F3.osm --output building.osm

  # Tune anchor weights and keep each floor's root marker
  agmerge merge --reference F1.osm --targets F2.osm --output out.osm \
    --elevator-weight 3.0 --keep-target-root`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			prog := newProgress(logger)

			opts := pipeline.Options{
				Reference:      reference,
				Targets:        targets,
				Output:         output,
				Precision:      precision,
				ElevatorWeight: elevatorWeight,
				StairsWeight:   stairsWeight,
				MinMatches:     minMatches,
				KeepTargetRoot: keepTargetRoot,
				Seed:           seed,
				Logger:         logger,
			}
			if configPath != "" {
				params, err := config.Load(configPath)
				if err != nil {
					return err
				}
				opts.ApplyParams(params)
			}

			result, err := pipeline.Run(cmd.Context(), opts)
			if err != nil {
				return err
			}

			for _, src := range result.Report.SkippedFloors() {
				logger.Warn("floor contributed nothing", "source", src)
			}
			prog.done(fmt.Sprintf("Merged %d floors, %d passages → %s",
				result.Report.Merged()+1, result.Report.Passages, output))
			return nil
		},
	}

	cmd.Flags().StringVarP(&reference, "reference", "r", "", "reference floor file (required)")
	cmd.Flags().StringSliceVarP(&targets, "targets", "t", nil, "target floor files, merged in order (required)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (required)")
	cmd.Flags().IntVar(&precision, "precision", 0, "coordinate decimals after transform (default 12)")
	cmd.Flags().Float64Var(&elevatorWeight, "elevator-weight", 0, "anchor weight for elevators (default 2.0)")
	cmd.Flags().Float64Var(&stairsWeight, "stairs-weight", 0, "anchor weight for stairs (default 1.5)")
	cmd.Flags().IntVar(&minMatches, "min-matches", 0, "warn when fewer anchor pairs match (default 2)")
	cmd.Flags().BoolVar(&keepTargetRoot, "keep-target-root", false, "retain target floors' root marker nodes")
	cmd.Flags().StringVar(&configPath, "config", "", "params file (.yaml or .toml) supplying defaults")
	cmd.Flags().Int64Var(&seed, "seed", 0, "passage-name RNG seed (default 42)")

	_ = cmd.MarkFlagRequired("reference")
	_ = cmd.MarkFlagRequired("targets")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}
