package osmag

import (
	"bytes"
	"strings"
	"testing"
)

const sampleFloor = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6" generator="cad2osm">
  <node id="-1" action="modify" visible="true" lat="31.178456789012" lon="121.593456789012">
    <tag k="name" v="root"/>
  </node>
  <node id="-2" action="modify" visible="true" lat="31.178460000000" lon="121.593460000000"/>
  <node id="-3" action="modify" visible="true" lat="31.178470000000" lon="121.593460000000"/>
  <node id="-4" action="modify" visible="true" lat="31.178470000000" lon="121.593470000000"/>
  <way id="-10" action="modify" visible="true">
    <nd ref="-2"/>
    <nd ref="-3"/>
    <nd ref="-4"/>
    <nd ref="-2"/>
    <tag k="level" v="1"/>
    <tag k="name" v="E2-P3"/>
    <tag k="osmAG:areaType" v="elevator"/>
    <tag k="osmAG:type" v="area"/>
  </way>
  <relation id="-20" version="1">
    <member type="way" ref="-10" role="inner"/>
    <tag k="type" v="multipolygon"/>
  </relation>
</osm>
`

func TestReadSampleFloor(t *testing.T) {
	doc, err := Read(strings.NewReader(sampleFloor))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if doc.Version != "0.6" || doc.Generator != "cad2osm" {
		t.Errorf("root attributes = %q/%q", doc.Version, doc.Generator)
	}
	if len(doc.Nodes) != 4 || len(doc.Ways) != 1 || len(doc.Relations) != 1 {
		t.Fatalf("element counts = %d/%d/%d", len(doc.Nodes), len(doc.Ways), len(doc.Relations))
	}

	root := doc.RootMarker()
	if root == nil || root.ID != Pending(1) {
		t.Fatalf("root marker = %+v", root)
	}
	if root.LatText() != "31.178456789012" {
		t.Errorf("coordinate text not preserved: %q", root.LatText())
	}

	w := doc.Ways[0]
	if w.ID != Pending(10) {
		t.Errorf("way ID = %v, want pending 10", w.ID)
	}
	if len(w.Refs) != 4 || w.Refs[0] != Pending(2) || w.Refs[3] != Pending(2) {
		t.Errorf("way refs = %v", w.Refs)
	}
	if w.Tags.Get(KeyAreaType) != "elevator" {
		t.Errorf("areaType tag = %q", w.Tags.Get(KeyAreaType))
	}

	r := doc.Relations[0]
	if len(r.Members) != 1 || r.Members[0].Ref != Pending(10) || r.Members[0].Role != "inner" {
		t.Errorf("relation members = %+v", r.Members)
	}
}

func TestReadRejectsBadID(t *testing.T) {
	_, err := Read(strings.NewReader(`<osm version="0.6"><node id="zero" lat="1" lon="2"/></osm>`))
	if err == nil {
		t.Fatal("Read should reject non-numeric IDs")
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	doc, err := Read(strings.NewReader(sampleFloor))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	var buf bytes.Buffer
	if err := doc.Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}

	back, err := Read(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("re-Read: %v", err)
	}

	if len(back.Nodes) != len(doc.Nodes) || len(back.Ways) != len(doc.Ways) || len(back.Relations) != len(doc.Relations) {
		t.Fatalf("round-trip element counts differ: %d/%d/%d", len(back.Nodes), len(back.Ways), len(back.Relations))
	}
	if back.Nodes[0].LatText() != doc.Nodes[0].LatText() {
		t.Errorf("coordinate text changed: %q vs %q", back.Nodes[0].LatText(), doc.Nodes[0].LatText())
	}
	if back.Ways[0].Tags.Get(KeyName) != "E2-P3" {
		t.Errorf("way tags lost: %v", back.Ways[0].Tags)
	}
	if back.Relations[0].Members[0].Role != "inner" {
		t.Errorf("relation role lost: %+v", back.Relations[0].Members[0])
	}
}

func TestWriteTagOrderIsStable(t *testing.T) {
	doc := NewDocument()
	doc.AppendWay(&Way{
		ID:   Stable(1),
		Refs: []ID{Stable(1), Stable(2)},
		Tags: Tags{
			KeyType:  TypePassage,
			KeyLevel: "2",
			KeyName:  "x",
			"custom": "y",
		},
	})

	var first, second bytes.Buffer
	if err := doc.Write(&first); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := doc.Write(&second); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if first.String() != second.String() {
		t.Error("repeated writes of the same document must be byte-identical")
	}

	out := first.String()
	if strings.Index(out, `k="level"`) > strings.Index(out, `k="osmAG:type"`) {
		t.Error("dialect keys should precede osmAG:type in tag order")
	}
}
