package merge

import (
	"testing"

	"github.com/osmag/agmerge/pkg/errors"
	"github.com/osmag/agmerge/pkg/osmag"
)

func countersAt(node, way, relation uint64) *Counters {
	var c Counters
	c.maxID[osmag.KindNode] = node
	c.maxID[osmag.KindWay] = way
	c.maxID[osmag.KindRelation] = relation
	return &c
}

func TestReconcileIDsRemapsPending(t *testing.T) {
	doc := osmag.NewDocument()
	doc.AppendNode(&osmag.Node{ID: osmag.Pending(1)})
	doc.AppendNode(&osmag.Node{ID: osmag.Pending(2)})
	doc.AppendNode(&osmag.Node{ID: osmag.Stable(5)}) // already stable, untouched
	doc.AppendWay(&osmag.Way{
		ID:   osmag.Pending(10),
		Refs: []osmag.ID{osmag.Pending(1), osmag.Pending(2), osmag.Stable(5), osmag.Pending(1)},
	})

	counters := countersAt(100, 200, 300)
	if err := ReconcileIDs(doc, counters); err != nil {
		t.Fatalf("ReconcileIDs: %v", err)
	}

	// new = runningMax + |old|, against the fixed pre-floor base.
	if doc.Nodes[0].ID != osmag.Stable(101) || doc.Nodes[1].ID != osmag.Stable(102) {
		t.Errorf("node IDs = %v, %v; want 101, 102", doc.Nodes[0].ID, doc.Nodes[1].ID)
	}
	if doc.Nodes[2].ID != osmag.Stable(5) {
		t.Errorf("stable node ID changed: %v", doc.Nodes[2].ID)
	}
	if doc.Ways[0].ID != osmag.Stable(210) {
		t.Errorf("way ID = %v, want 210", doc.Ways[0].ID)
	}

	wantRefs := []osmag.ID{osmag.Stable(101), osmag.Stable(102), osmag.Stable(5), osmag.Stable(101)}
	for i, ref := range doc.Ways[0].Refs {
		if ref != wantRefs[i] {
			t.Errorf("ref[%d] = %v, want %v", i, ref, wantRefs[i])
		}
	}

	// Counters advance to the new maxima for the next floor.
	if counters.Max(osmag.KindNode) != 102 {
		t.Errorf("node counter = %d, want 102", counters.Max(osmag.KindNode))
	}
	if counters.Max(osmag.KindWay) != 210 {
		t.Errorf("way counter = %d, want 210", counters.Max(osmag.KindWay))
	}
	if counters.Max(osmag.KindRelation) != 300 {
		t.Errorf("relation counter = %d, want unchanged 300", counters.Max(osmag.KindRelation))
	}

	// The rewritten index must resolve new IDs.
	if doc.NodeByID(osmag.Stable(101)) == nil {
		t.Error("index not rebuilt after rewrite")
	}
}

func TestReconcileIDsRelationMembers(t *testing.T) {
	doc := osmag.NewDocument()
	doc.AppendNode(&osmag.Node{ID: osmag.Pending(1)})
	doc.AppendWay(&osmag.Way{ID: osmag.Pending(2), Refs: []osmag.ID{osmag.Pending(1)}})
	doc.AppendRelation(&osmag.Relation{
		ID: osmag.Pending(3),
		Members: []osmag.Member{
			{Type: "node", Ref: osmag.Pending(1)},
			{Type: "way", Ref: osmag.Pending(2)},
			{Type: "relation", Ref: osmag.Pending(3)},
			{Type: "way", Ref: osmag.Stable(9)},
		},
	})

	if err := ReconcileIDs(doc, countersAt(0, 0, 0)); err != nil {
		t.Fatalf("ReconcileIDs: %v", err)
	}

	m := doc.Relations[0].Members
	if m[0].Ref != osmag.Stable(1) || m[1].Ref != osmag.Stable(2) || m[2].Ref != osmag.Stable(3) {
		t.Errorf("members = %+v", m)
	}
	if m[3].Ref != osmag.Stable(9) {
		t.Errorf("stable member ref changed: %v", m[3].Ref)
	}
}

func TestReconcileIDsDanglingReference(t *testing.T) {
	doc := osmag.NewDocument()
	doc.AppendNode(&osmag.Node{ID: osmag.Pending(1)})
	doc.AppendWay(&osmag.Way{
		ID:   osmag.Pending(10),
		Refs: []osmag.ID{osmag.Pending(1), osmag.Pending(99)}, // -99 exists nowhere
	})

	counters := countersAt(50, 60, 70)
	err := ReconcileIDs(doc, counters)
	if err == nil {
		t.Fatal("want DANGLING_REFERENCE error")
	}
	if errors.GetCode(err) != errors.ErrCodeDanglingReference {
		t.Errorf("error code = %v, want DANGLING_REFERENCE", errors.GetCode(err))
	}

	// Counters must not advance on failure.
	if counters.Max(osmag.KindNode) != 50 || counters.Max(osmag.KindWay) != 60 {
		t.Errorf("counters advanced on failure: %d/%d", counters.Max(osmag.KindNode), counters.Max(osmag.KindWay))
	}
}

func TestReconcileIDsUnknownMemberType(t *testing.T) {
	doc := osmag.NewDocument()
	doc.AppendRelation(&osmag.Relation{
		ID:      osmag.Pending(1),
		Members: []osmag.Member{{Type: "area", Ref: osmag.Pending(1)}},
	})

	err := ReconcileIDs(doc, countersAt(0, 0, 0))
	if errors.GetCode(err) != errors.ErrCodeCorruptFloor {
		t.Errorf("error code = %v, want CORRUPT_FLOOR", errors.GetCode(err))
	}
}

func TestReconcileIDsDisjointAcrossFloors(t *testing.T) {
	counters := countersAt(10, 10, 10)

	floorA := osmag.NewDocument()
	floorA.AppendNode(&osmag.Node{ID: osmag.Pending(1)})
	floorA.AppendNode(&osmag.Node{ID: osmag.Pending(2)})

	floorB := osmag.NewDocument()
	floorB.AppendNode(&osmag.Node{ID: osmag.Pending(1)})
	floorB.AppendNode(&osmag.Node{ID: osmag.Pending(2)})

	if err := ReconcileIDs(floorA, counters); err != nil {
		t.Fatalf("floor A: %v", err)
	}
	if err := ReconcileIDs(floorB, counters); err != nil {
		t.Fatalf("floor B: %v", err)
	}

	seen := make(map[osmag.ID]bool)
	for _, doc := range []*osmag.Document{floorA, floorB} {
		for _, n := range doc.Nodes {
			if n.ID.IsPending() {
				t.Errorf("node still pending after reconciliation: %v", n.ID)
			}
			if seen[n.ID] {
				t.Errorf("duplicate ID across floors: %v", n.ID)
			}
			seen[n.ID] = true
		}
	}
}

func TestCountersNext(t *testing.T) {
	c := countersAt(5, 0, 0)
	if got := c.Next(osmag.KindNode); got != osmag.Stable(6) {
		t.Errorf("Next = %v, want 6", got)
	}
	if got := c.Next(osmag.KindNode); got != osmag.Stable(7) {
		t.Errorf("Next = %v, want 7", got)
	}
	if got := c.Next(osmag.KindWay); got != osmag.Stable(1) {
		t.Errorf("Next(way) = %v, want 1 (independent namespace)", got)
	}
}

func TestNewCountersFromDocument(t *testing.T) {
	doc := osmag.NewDocument()
	doc.AppendNode(&osmag.Node{ID: osmag.Stable(7)})
	doc.AppendNode(&osmag.Node{ID: osmag.Pending(12)})
	doc.AppendWay(&osmag.Way{ID: osmag.Stable(40)})

	c := NewCounters(doc)
	if c.Max(osmag.KindNode) != 12 {
		t.Errorf("node max = %d, want 12 (pending magnitude counts)", c.Max(osmag.KindNode))
	}
	if c.Max(osmag.KindWay) != 40 {
		t.Errorf("way max = %d, want 40", c.Max(osmag.KindWay))
	}
}
