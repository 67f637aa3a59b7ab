package merge

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/osmag/agmerge/pkg/osmag"
)

// defaultVersion is stamped on every merged element missing a version
// attribute. Downstream consumers require the attribute to be present; its
// value carries no meaning here.
const defaultVersion = "1"

// Config tunes a merge run.
type Config struct {
	Estimator      EstimatorConfig
	Precision      int  // coordinate decimals after transform
	KeepTargetRoot bool // retain target floors' root-marker nodes
}

// DefaultConfig returns the standard merge configuration.
func DefaultConfig() Config {
	return Config{
		Estimator: DefaultEstimatorConfig(),
		Precision: DefaultPrecision,
	}
}

// MergedGraph accumulates the multi-floor building graph. It owns its output
// document outright: the reference floor is cloned and normalized at
// construction, the reference anchor index is computed once and stays
// immutable, and target floors are appended one at a time through
// [MergedGraph.MergeFloor].
type MergedGraph struct {
	doc      *osmag.Document
	counters *Counters
	refIndex AnchorIndex
	cfg      Config
	logger   *log.Logger
}

// New builds a merged graph seeded with the reference floor.
func New(reference *osmag.Document, cfg Config, logger *log.Logger) *MergedGraph {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if cfg.Precision <= 0 {
		cfg.Precision = DefaultPrecision
	}

	doc := reference.Clone()
	normalizeVersions(doc)

	return &MergedGraph{
		doc:      doc,
		counters: NewCounters(doc),
		refIndex: BuildAnchorIndex(reference),
		cfg:      cfg,
		logger:   logger,
	}
}

// Document returns the accumulating output document.
func (m *MergedGraph) Document() *osmag.Document { return m.doc }

// Counters exposes the global ID counters so passage synthesis can keep
// allocating from the same namespaces.
func (m *MergedGraph) Counters() *Counters { return m.counters }

// ReferenceIndex returns the immutable anchor index of the reference floor.
func (m *MergedGraph) ReferenceIndex() AnchorIndex { return m.refIndex }

// MergeFloor aligns one target floor against the reference and appends it.
//
// The per-floor order is strict: match → estimate offset → reconcile IDs →
// transform coordinates → append. Reconciliation must finish before anything
// is appended (ID uniqueness holds at every intermediate step), and it must
// run before the transform so the anchor coordinates the estimate was based
// on correspond to the IDs being rewritten. On error nothing of the floor has
// been appended.
//
// The floor document is consumed: its IDs and coordinates are rewritten in
// place.
func (m *MergedGraph) MergeFloor(floor *osmag.Document, source string) (*FloorReport, error) {
	report := &FloorReport{Source: source}

	pairs := Match(m.refIndex, BuildAnchorIndex(floor))
	offset, info := Estimate(pairs, m.cfg.Estimator, m.logger)
	report.Pairs = info.Pairs
	report.Inliers = info.Inliers
	report.Names = info.Names
	report.Offset = offset
	report.Unmoved = offset.IsZero()

	if err := ReconcileIDs(floor, m.counters); err != nil {
		report.Err = err
		return report, err
	}

	ApplyOffset(floor, offset, m.cfg.Precision)

	rootMarker := floor.RootMarker()
	for _, n := range floor.Nodes {
		if !m.cfg.KeepTargetRoot && rootMarker != nil && n == rootMarker {
			report.RootDropped = true
			continue
		}
		ensureVersion(&n.Version)
		m.doc.AppendNode(n)
		report.Nodes++
	}
	for _, w := range floor.Ways {
		ensureVersion(&w.Version)
		m.doc.AppendWay(w)
		report.Ways++
	}
	for _, r := range floor.Relations {
		ensureVersion(&r.Version)
		m.doc.AppendRelation(r)
		report.Relations++
	}

	m.logger.Info("merged floor",
		"source", source,
		"pairs", report.Pairs,
		"dlat", offset.Lat,
		"dlon", offset.Lon,
		"nodes", report.Nodes,
		"ways", report.Ways)
	return report, nil
}

// normalizeVersions stamps the default version attribute on every element
// that lacks one.
func normalizeVersions(doc *osmag.Document) {
	for _, n := range doc.Nodes {
		ensureVersion(&n.Version)
	}
	for _, w := range doc.Ways {
		ensureVersion(&w.Version)
	}
	for _, r := range doc.Relations {
		ensureVersion(&r.Version)
	}
}

func ensureVersion(v *string) {
	if *v == "" {
		*v = defaultVersion
	}
}
