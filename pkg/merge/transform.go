package merge

import (
	"math"

	"github.com/osmag/agmerge/pkg/osmag"
)

// DefaultPrecision is the number of coordinate decimals written after a
// transform. Twelve decimals keep sub-nanometer resolution while pinning the
// text form, so repeated merges cannot accumulate float formatting drift.
const DefaultPrecision = 12

// Round truncates v to the given number of decimals, half away from zero.
func Round(v float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(v*scale) / scale
}

// ApplyOffset shifts every node of the floor in place by the given offset,
// storing results at fixed decimal precision. A zero offset is a no-op: the
// floor's coordinate text stays byte-identical, which keeps the zero-offset
// identity exact.
//
// Returns the number of nodes shifted.
func ApplyOffset(doc *osmag.Document, off Offset, precision int) int {
	if off.IsZero() {
		return 0
	}
	if precision <= 0 {
		precision = DefaultPrecision
	}
	dlat := Round(off.Lat, precision)
	dlon := Round(off.Lon, precision)

	for _, n := range doc.Nodes {
		n.SetCoordinates(n.Lat+dlat, n.Lon+dlon, precision)
	}
	return len(doc.Nodes)
}
