// Package osmag models one building floor encoded in the osmAG dialect of
// OSM-XML: nodes, closed-polygon "area" ways (rooms, corridors, structures,
// elevators, stairs) and 2-node "passage" ways connecting them.
//
// The package owns the load/save layer (see [Load] and [Document.Save]) and
// the typed classification of raw tag maps into areas and passages. The merge
// engine in pkg/merge operates on these types and never re-inspects raw tag
// strings.
package osmag

import (
	"errors"
	"fmt"
)

// Tag keys of the osmAG vocabulary consumed and produced by this module.
const (
	KeyType     = "osmAG:type"
	KeyAreaType = "osmAG:areaType"
	KeyName     = "name"
	KeyLevel    = "level"
	KeyFrom     = "osmAG:from"
	KeyTo       = "osmAG:to"
	KeyParent   = "osmAG:parent"
	KeyHeight   = "height"
)

// Values of the osmAG:type tag.
const (
	TypeArea    = "area"
	TypePassage = "passage"
)

// RootMarkerName is the name tag value of a floor's coordinate-origin node.
const RootMarkerName = "root"

// Classification errors. A way that fails classification is still merged as
// an ordinary way; these errors only exclude it from typed handling.
var (
	// ErrNotClosed is returned by [ClassifyWay] when an area's node sequence
	// does not end where it starts.
	ErrNotClosed = errors.New("area way is not closed")

	// ErrTooFewVertices is returned by [ClassifyWay] when an area has fewer
	// than 4 node references (3 distinct vertices plus the closing repeat).
	ErrTooFewVertices = errors.New("area way has too few vertices")

	// ErrBadPassage is returned by [ClassifyWay] when a passage way does not
	// have exactly 2 node references.
	ErrBadPassage = errors.New("passage way must reference exactly 2 nodes")

	// ErrUnknownAreaType is returned when osmAG:areaType holds a value outside
	// the closed vocabulary.
	ErrUnknownAreaType = errors.New("unknown area type")

	// ErrUntyped is returned by [ClassifyWay] for ways without an osmAG:type
	// tag, or with a value outside {area, passage}.
	ErrUntyped = errors.New("way carries no osmAG type")
)

// Tags is the key-value tag set attached to a node or way.
type Tags map[string]string

// Get returns the value for key, or "" when absent.
func (t Tags) Get(key string) string { return t[key] }

// Has reports whether key is present with a non-empty value.
func (t Tags) Has(key string) bool { return t[key] != "" }

// Set stores value under key, allocating the map if needed.
// It returns the (possibly new) map, so callers must reassign.
func (t Tags) Set(key, value string) Tags {
	if t == nil {
		t = make(Tags)
	}
	t[key] = value
	return t
}

// Clone returns a copy of the tag set.
func (t Tags) Clone() Tags {
	if t == nil {
		return nil
	}
	out := make(Tags, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// AreaType is the closed set of osmAG:areaType values.
type AreaType int

const (
	AreaRoom AreaType = iota
	AreaCorridor
	AreaStructure
	AreaElevator
	AreaStairs
)

// String returns the wire value of the area type.
func (a AreaType) String() string {
	return [...]string{"room", "corridor", "structure", "elevator", "stairs"}[a]
}

// Vertical reports whether areas of this type span floors and can therefore
// anchor cross-floor alignment.
func (a AreaType) Vertical() bool { return a == AreaElevator || a == AreaStairs }

// ParseAreaType maps an osmAG:areaType tag value into the closed enum.
func ParseAreaType(s string) (AreaType, error) {
	switch s {
	case "room":
		return AreaRoom, nil
	case "corridor":
		return AreaCorridor, nil
	case "structure":
		return AreaStructure, nil
	case "elevator":
		return AreaElevator, nil
	case "stairs":
		return AreaStairs, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownAreaType, s)
	}
}

// Area holds the typed view of a closed-polygon way.
type Area struct {
	Type   AreaType
	Name   string
	Level  string // floor index as exported (numeric string)
	Parent string // optional osmAG:parent, passthrough
	Height string // optional, passthrough
	Way    *Way
}

// Passage holds the typed view of a 2-node connection way.
type Passage struct {
	From   string // name of the area the passage leaves
	To     string // name of the area the passage enters
	Level  string
	Name   string
	Height string
	Way    *Way
}

// WayClass is the result of classifying one way: exactly one of Area or
// Passage is non-nil.
type WayClass struct {
	Area    *Area
	Passage *Passage
}

// ClassifyWay parses a way's tags into the closed [WayClass] sum. Structural
// violations (open polygon, wrong vertex count, bad passage arity) are
// reported as errors; callers that only need a best-effort view should treat
// an error as "plain way".
func ClassifyWay(w *Way) (WayClass, error) {
	switch w.Tags.Get(KeyType) {
	case TypeArea:
		if len(w.Refs) < 4 {
			return WayClass{}, fmt.Errorf("way %s: %w (%d refs)", w.ID, ErrTooFewVertices, len(w.Refs))
		}
		if w.Refs[0] != w.Refs[len(w.Refs)-1] {
			return WayClass{}, fmt.Errorf("way %s: %w", w.ID, ErrNotClosed)
		}
		at, err := ParseAreaType(w.Tags.Get(KeyAreaType))
		if err != nil {
			return WayClass{}, fmt.Errorf("way %s: %w", w.ID, err)
		}
		return WayClass{Area: &Area{
			Type:   at,
			Name:   w.Tags.Get(KeyName),
			Level:  w.Tags.Get(KeyLevel),
			Parent: w.Tags.Get(KeyParent),
			Height: w.Tags.Get(KeyHeight),
			Way:    w,
		}}, nil
	case TypePassage:
		if len(w.Refs) != 2 {
			return WayClass{}, fmt.Errorf("way %s: %w (%d refs)", w.ID, ErrBadPassage, len(w.Refs))
		}
		return WayClass{Passage: &Passage{
			From:   w.Tags.Get(KeyFrom),
			To:     w.Tags.Get(KeyTo),
			Level:  w.Tags.Get(KeyLevel),
			Name:   w.Tags.Get(KeyName),
			Height: w.Tags.Get(KeyHeight),
			Way:    w,
		}}, nil
	default:
		return WayClass{}, fmt.Errorf("way %s: %w", w.ID, ErrUntyped)
	}
}
