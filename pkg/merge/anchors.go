// Package merge aligns and merges single-floor osmAG documents into one
// multi-floor building graph.
//
// The per-floor pipeline is strict: match anchors against the reference index,
// estimate a 2D offset, reconcile synthetic IDs, shift coordinates, append.
// [MergedGraph] owns the accumulating output document; the reference anchor
// index is computed once and never mutated, so every target floor aligns
// against the original reference geometry.
package merge

import (
	"maps"
	"slices"

	"github.com/osmag/agmerge/pkg/osmag"
)

// Coord is one polygon vertex in WGS84 order (lat, lon).
type Coord struct {
	Lat float64
	Lon float64
}

// Anchor is one floor-level instance of a named vertical-transport area
// (elevator or stairs shaft seen from a single floor).
type Anchor struct {
	Name   string
	Type   osmag.AreaType
	Level  string
	WayID  osmag.ID
	Refs   []osmag.ID
	Coords []Coord
	Height string
}

// AnchorIndex maps shaft name to every instance of that shaft in a document.
// Only elevator and stairs areas qualify: they are the only areas guaranteed
// to repeat with identical shape across floors.
type AnchorIndex map[string][]*Anchor

// BuildAnchorIndex scans a floor's area ways and indexes the vertical-
// transport ones by name. Areas missing any of areaType, name, or level are
// silently excluded; they still merge as ordinary areas.
func BuildAnchorIndex(doc *osmag.Document) AnchorIndex {
	idx := make(AnchorIndex)
	for _, a := range doc.Areas() {
		if !a.Type.Vertical() || a.Name == "" || a.Level == "" {
			continue
		}
		anchor := &Anchor{
			Name:   a.Name,
			Type:   a.Type,
			Level:  a.Level,
			WayID:  a.Way.ID,
			Refs:   a.Way.Refs,
			Height: a.Height,
		}
		for _, ref := range a.Way.Refs {
			if n := doc.NodeByID(ref); n != nil {
				anchor.Coords = append(anchor.Coords, Coord{Lat: n.Lat, Lon: n.Lon})
			}
		}
		idx[a.Name] = append(idx[a.Name], anchor)
	}
	return idx
}

// Pair is one reference/target correspondence: the same named shaft seen from
// two different floors.
type Pair struct {
	Name   string
	Type   osmag.AreaType
	Ref    *Anchor
	Target *Anchor
}

// Match pairs every reference instance with every target instance sharing the
// same name but a different level. A floor has at most one named shaft per
// level, so same-level collisions only occur in malformed input; the level
// check guards against them.
func Match(ref, target AnchorIndex) []Pair {
	var pairs []Pair
	for _, name := range slices.Sorted(maps.Keys(ref)) {
		refList := ref[name]
		targetList, ok := target[name]
		if !ok {
			continue
		}
		for _, r := range refList {
			for _, t := range targetList {
				if r.Level == t.Level {
					continue
				}
				pairs = append(pairs, Pair{Name: name, Type: r.Type, Ref: r, Target: t})
			}
		}
	}
	return pairs
}
