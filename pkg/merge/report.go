package merge

import "github.com/google/uuid"

// FloorReport summarizes one target floor's merge.
type FloorReport struct {
	Source      string // file path or label of the floor
	Pairs       int    // matched anchor pairs
	Inliers     int    // pairs surviving outlier rejection
	Names       int    // distinct shaft names contributing
	Offset      Offset
	Unmoved     bool // offset was (0,0); silent-degrade path when Pairs == 0
	RootDropped bool // target's root-marker node excluded
	Nodes       int
	Ways        int
	Relations   int
	Skipped     bool // floor failed and contributed nothing
	Err         error
}

// Report is the consolidated result of a whole merge run.
type Report struct {
	RunID     string // unique per invocation, stamped on logs for correlation
	Reference string
	Floors    []FloorReport
	Passages  int // synthesized vertical passage ways
}

// NewReport returns an empty report with a fresh run ID.
func NewReport(reference string) *Report {
	return &Report{
		RunID:     uuid.NewString(),
		Reference: reference,
	}
}

// Merged returns how many floors merged successfully.
func (r *Report) Merged() int {
	n := 0
	for _, f := range r.Floors {
		if !f.Skipped {
			n++
		}
	}
	return n
}

// SkippedFloors returns the sources of floors that contributed nothing.
func (r *Report) SkippedFloors() []string {
	var out []string
	for _, f := range r.Floors {
		if f.Skipped {
			out = append(out, f.Source)
		}
	}
	return out
}
