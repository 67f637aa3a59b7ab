package merge

import (
	"testing"

	"github.com/osmag/agmerge/pkg/osmag"
)

func TestRound(t *testing.T) {
	tests := []struct {
		v        float64
		decimals int
		want     float64
	}{
		{1.23456789, 4, 1.2346},
		{1.5, 0, 2},
		{-1.5, 0, -2}, // half away from zero
		{31.1784567890125, 12, 31.178456789013},
		{0, 12, 0},
	}
	for _, tt := range tests {
		if got := Round(tt.v, tt.decimals); got != tt.want {
			t.Errorf("Round(%v, %d) = %v, want %v", tt.v, tt.decimals, got, tt.want)
		}
	}
}

func TestApplyOffsetZeroIsIdentity(t *testing.T) {
	doc := osmag.NewDocument()
	n := &osmag.Node{ID: osmag.Stable(1)}
	n.SetCoordinates(31.1784567890121, 121.593456789012, 13)
	before := n.LatText()
	doc.AppendNode(n)

	if moved := ApplyOffset(doc, Offset{}, DefaultPrecision); moved != 0 {
		t.Errorf("moved = %d, want 0", moved)
	}
	if n.LatText() != before {
		t.Errorf("zero offset must keep coordinate text byte-identical: %q vs %q", n.LatText(), before)
	}
}

func TestApplyOffsetShiftsAllNodes(t *testing.T) {
	doc := osmag.NewDocument()
	a := &osmag.Node{ID: osmag.Stable(1), Lat: 31.0, Lon: 121.0}
	b := &osmag.Node{ID: osmag.Stable(2), Lat: 31.5, Lon: 121.5}
	doc.AppendNode(a)
	doc.AppendNode(b)

	moved := ApplyOffset(doc, Offset{Lat: 0.25, Lon: -0.5}, 12)
	if moved != 2 {
		t.Fatalf("moved = %d, want 2", moved)
	}
	if a.Lat != 31.25 || a.Lon != 120.5 {
		t.Errorf("node a = (%v, %v), want (31.25, 120.5)", a.Lat, a.Lon)
	}
	if b.Lat != 31.75 || b.Lon != 121.0 {
		t.Errorf("node b = (%v, %v), want (31.75, 121)", b.Lat, b.Lon)
	}
	if a.LatText() != "31.250000000000" {
		t.Errorf("text precision = %q, want fixed 12 decimals", a.LatText())
	}
}
