package merge

import (
	"github.com/osmag/agmerge/pkg/errors"
	"github.com/osmag/agmerge/pkg/osmag"
)

// Counters holds the per-category running ID maxima of the merged graph.
// Node, way, and relation namespaces are independent: every reference is
// qualified by category, so equal numbers across categories cannot collide.
type Counters struct {
	maxID [3]uint64 // indexed by osmag.ElementKind
}

// NewCounters initializes the counters from a document's current maxima,
// considering both stable values and pending magnitudes. Remapped IDs then
// land strictly above everything already present.
func NewCounters(doc *osmag.Document) *Counters {
	var c Counters
	for _, kind := range []osmag.ElementKind{osmag.KindNode, osmag.KindWay, osmag.KindRelation} {
		c.maxID[kind] = doc.MaxID(kind)
	}
	return &c
}

// Max returns the current maximum for the kind.
func (c *Counters) Max(kind osmag.ElementKind) uint64 { return c.maxID[kind] }

// Next returns the next free ID for the kind and advances the counter.
func (c *Counters) Next(kind osmag.ElementKind) osmag.ID {
	c.maxID[kind]++
	return osmag.Stable(c.maxID[kind])
}

// bump raises the counter to at least v.
func (c *Counters) bump(kind osmag.ElementKind, v uint64) {
	if v > c.maxID[kind] {
		c.maxID[kind] = v
	}
}

// idMapping records old→new assignments for one floor, per category.
type idMapping struct {
	m [3]map[osmag.ID]osmag.ID
}

func newIDMapping() *idMapping {
	return &idMapping{m: [3]map[osmag.ID]osmag.ID{{}, {}, {}}}
}

func (im *idMapping) put(kind osmag.ElementKind, old, new osmag.ID) {
	im.m[kind][old] = new
}

func (im *idMapping) get(kind osmag.ElementKind, old osmag.ID) (osmag.ID, bool) {
	id, ok := im.m[kind][old]
	return id, ok
}

// ReconcileIDs resolves every pending ID of the floor into the merged graph's
// stable namespace: new = runningMax + pendingMagnitude, per category. The
// element's own ID and every reference to it (way→node refs, relation→member
// refs) are rewritten from the same mapping. Stable IDs pass through
// untouched.
//
// A pending reference with no mapping entry means the floor's own export is
// internally inconsistent; that is surfaced as DANGLING_REFERENCE and nothing
// of the floor should be merged.
//
// On success the counters advance to the new global maxima, so the next
// floor's reconciliation starts from a disjoint range.
func ReconcileIDs(doc *osmag.Document, counters *Counters) error {
	mapping := newIDMapping()
	base := *counters // counters advance only if the whole floor reconciles

	resolve := func(kind osmag.ElementKind, id osmag.ID) osmag.ID {
		if !id.IsPending() {
			return id
		}
		assigned := osmag.Stable(base.Max(kind) + id.Value())
		mapping.put(kind, id, assigned)
		return assigned
	}

	// First pass: assign IDs per element. base.Max stays fixed during the
	// pass; bump is deferred so every pending ID maps against the same floor
	// base, mirroring magnitude order from the export.
	var floorMax [3]uint64
	bumpFloor := func(kind osmag.ElementKind, id osmag.ID) {
		if id.Value() > floorMax[kind] {
			floorMax[kind] = id.Value()
		}
	}

	for _, n := range doc.Nodes {
		n.ID = resolve(osmag.KindNode, n.ID)
		bumpFloor(osmag.KindNode, n.ID)
	}
	for _, w := range doc.Ways {
		w.ID = resolve(osmag.KindWay, w.ID)
		bumpFloor(osmag.KindWay, w.ID)
	}
	for _, r := range doc.Relations {
		r.ID = resolve(osmag.KindRelation, r.ID)
		bumpFloor(osmag.KindRelation, r.ID)
	}

	// Second pass: rewrite references through the mapping.
	for _, w := range doc.Ways {
		for i, ref := range w.Refs {
			if !ref.IsPending() {
				continue
			}
			mapped, ok := mapping.get(osmag.KindNode, ref)
			if !ok {
				return errors.New(errors.ErrCodeDanglingReference,
					"way %s references node %s which exists nowhere in the floor", w.ID, ref)
			}
			w.Refs[i] = mapped
		}
	}
	for _, r := range doc.Relations {
		for i, m := range r.Members {
			if !m.Ref.IsPending() {
				continue
			}
			kind, ok := memberKind(m.Type)
			if !ok {
				return errors.New(errors.ErrCodeCorruptFloor,
					"relation %s member has unknown type %q", r.ID, m.Type)
			}
			mapped, ok := mapping.get(kind, m.Ref)
			if !ok {
				return errors.New(errors.ErrCodeDanglingReference,
					"relation %s references %s %s which exists nowhere in the floor", r.ID, m.Type, m.Ref)
			}
			r.Members[i].Ref = mapped
		}
	}

	doc.RebuildIndex()

	for _, kind := range []osmag.ElementKind{osmag.KindNode, osmag.KindWay, osmag.KindRelation} {
		base.bump(kind, floorMax[kind])
	}
	*counters = base
	return nil
}

func memberKind(s string) (osmag.ElementKind, bool) {
	switch s {
	case "node":
		return osmag.KindNode, true
	case "way":
		return osmag.KindWay, true
	case "relation":
		return osmag.KindRelation, true
	default:
		return 0, false
	}
}
