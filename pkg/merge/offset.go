package merge

import (
	"io"
	"math"

	"github.com/charmbracelet/log"
	"github.com/montanaflynn/stats"

	"github.com/osmag/agmerge/pkg/osmag"
)

// Default anchor weights. Elevator shafts are drawn most consistently across
// floors, stairs slightly less so; everything else counts once.
const (
	DefaultElevatorWeight = 2.0
	DefaultStairsWeight   = 1.5
	DefaultMinMatches     = 2
)

// outlierSigma is the per-axis rejection threshold in standard deviations.
const outlierSigma = 2.0

// Offset is the 2D translation that aligns a target floor with the reference.
type Offset struct {
	Lat float64
	Lon float64
}

// IsZero reports whether the offset moves nothing.
func (o Offset) IsZero() bool { return o.Lat == 0 && o.Lon == 0 }

// EstimatorConfig tunes the offset estimator.
type EstimatorConfig struct {
	ElevatorWeight float64
	StairsWeight   float64
	MinMatches     int // below this many pairs a shortfall warning is emitted
}

// DefaultEstimatorConfig returns the standard weights.
func DefaultEstimatorConfig() EstimatorConfig {
	return EstimatorConfig{
		ElevatorWeight: DefaultElevatorWeight,
		StairsWeight:   DefaultStairsWeight,
		MinMatches:     DefaultMinMatches,
	}
}

// EstimateInfo reports how an offset estimate was obtained.
type EstimateInfo struct {
	Pairs     int  // matched anchor pairs that produced an offset sample
	Inliers   int  // samples surviving outlier rejection
	Names     int  // distinct shaft names contributing
	Shortfall bool // fewer pairs than the configured minimum
}

// pairOffset is one per-pair offset sample with its weighting key.
type pairOffset struct {
	name string
	typ  osmag.AreaType
	off  Offset
}

// Estimate turns matched anchor pairs into a single translation for the whole
// target floor.
//
// Per pair: when both instances have the same vertex count the offset is the
// mean of component-wise vertex differences (vertices are exported in the same
// winding and start order on every floor, so no nearest-point matching is
// needed); otherwise the centroid difference. Samples more than 2σ from the
// per-axis mean are rejected, unless rejection would remove at least half of
// them — a filter that eats most of the signal is worse than no filter.
// Surviving samples are averaged per shaft name, then combined in a weighted
// mean with elevator anchors counting above stairs.
//
// With no pairs at all the offset is (0,0) and the floor merges unmoved.
func Estimate(pairs []Pair, cfg EstimatorConfig, logger *log.Logger) (Offset, EstimateInfo) {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	samples := make([]pairOffset, 0, len(pairs))
	for _, p := range pairs {
		off, ok := pairDelta(p)
		if !ok {
			continue
		}
		samples = append(samples, pairOffset{name: p.Name, typ: p.Type, off: off})
		logger.Debug("anchor pair offset",
			"name", p.Name,
			"ref_level", p.Ref.Level,
			"target_level", p.Target.Level,
			"dlat", off.Lat,
			"dlon", off.Lon)
	}

	info := EstimateInfo{Pairs: len(samples)}
	if len(samples) == 0 {
		logger.Warn("no matching anchor areas; floor will be merged unmoved")
		return Offset{}, info
	}
	if len(samples) < cfg.MinMatches {
		info.Shortfall = true
		logger.Warn("fewer anchor pairs than configured minimum",
			"pairs", len(samples), "min", cfg.MinMatches)
	}

	inliers := rejectOutliers(samples)
	if float64(len(inliers)) < float64(len(samples))/2 {
		logger.Warn("outlier filter removed a majority of anchor offsets; keeping all",
			"kept", len(inliers), "total", len(samples))
		inliers = samples
	}
	info.Inliers = len(inliers)

	// Average within each shaft name, then weight across names by type.
	type group struct {
		typ osmag.AreaType
		sum Offset
		n   int
	}
	groups := make(map[string]*group)
	order := make([]string, 0, len(inliers))
	for _, s := range inliers {
		g, ok := groups[s.name]
		if !ok {
			g = &group{typ: s.typ}
			groups[s.name] = g
			order = append(order, s.name)
		}
		g.sum.Lat += s.off.Lat
		g.sum.Lon += s.off.Lon
		g.n++
	}
	info.Names = len(groups)

	var total Offset
	var totalWeight float64
	for _, name := range order {
		g := groups[name]
		w := cfg.weight(g.typ)
		avg := Offset{Lat: g.sum.Lat / float64(g.n), Lon: g.sum.Lon / float64(g.n)}
		total.Lat += avg.Lat * w
		total.Lon += avg.Lon * w
		totalWeight += w
		logger.Debug("anchor group", "name", name, "type", g.typ, "weight", w,
			"dlat", avg.Lat, "dlon", avg.Lon)
	}

	final := Offset{Lat: total.Lat / totalWeight, Lon: total.Lon / totalWeight}
	logger.Info("estimated floor offset",
		"dlat", final.Lat, "dlon", final.Lon,
		"pairs", info.Pairs, "inliers", info.Inliers, "names", info.Names)
	return final, info
}

// weight maps an anchor's area type to its aggregation weight.
func (c EstimatorConfig) weight(t osmag.AreaType) float64 {
	switch t {
	case osmag.AreaElevator:
		return c.ElevatorWeight
	case osmag.AreaStairs:
		return c.StairsWeight
	default:
		return 1.0
	}
}

// pairDelta computes one pair's (ref − target) offset sample.
func pairDelta(p Pair) (Offset, bool) {
	rc, tc := p.Ref.Coords, p.Target.Coords
	if len(rc) == 0 || len(tc) == 0 {
		return Offset{}, false
	}
	if len(rc) == len(tc) {
		var sum Offset
		for i := range rc {
			sum.Lat += rc[i].Lat - tc[i].Lat
			sum.Lon += rc[i].Lon - tc[i].Lon
		}
		n := float64(len(rc))
		return Offset{Lat: sum.Lat / n, Lon: sum.Lon / n}, true
	}
	// Vertex counts differ (re-segmented polygon); fall back to centroids.
	rCen := centroid(rc)
	tCen := centroid(tc)
	return Offset{Lat: rCen.Lat - tCen.Lat, Lon: rCen.Lon - tCen.Lon}, true
}

// centroid is the arithmetic vertex mean. For shaft-sized polygons this is
// stable enough and cheaper than an area-weighted centroid.
func centroid(coords []Coord) Coord {
	var c Coord
	for _, p := range coords {
		c.Lat += p.Lat
		c.Lon += p.Lon
	}
	n := float64(len(coords))
	return Coord{Lat: c.Lat / n, Lon: c.Lon / n}
}

// rejectOutliers drops samples whose offset deviates more than 2σ from the
// mean on either axis. σ is the population deviation: samples are the whole
// set of observed pairs, not a draw from a larger one.
func rejectOutliers(samples []pairOffset) []pairOffset {
	lat := make([]float64, len(samples))
	lon := make([]float64, len(samples))
	for i, s := range samples {
		lat[i] = s.off.Lat
		lon[i] = s.off.Lon
	}

	latMean, _ := stats.Mean(lat)
	lonMean, _ := stats.Mean(lon)
	latStd, _ := stats.StandardDeviationPopulation(lat)
	lonStd, _ := stats.StandardDeviationPopulation(lon)

	kept := make([]pairOffset, 0, len(samples))
	for _, s := range samples {
		if math.Abs(s.off.Lat-latMean) < outlierSigma*latStd &&
			math.Abs(s.off.Lon-lonMean) < outlierSigma*lonStd {
			kept = append(kept, s)
		}
	}
	return kept
}
