package osmag

import "strconv"

// ElementKind names the three OSM element categories. Identifier counters are
// kept per kind: the categories form independent ID namespaces because every
// reference is qualified by kind (way→node refs, relation→member refs).
type ElementKind int

const (
	KindNode ElementKind = iota
	KindWay
	KindRelation
)

// String returns the XML element name for the kind.
func (k ElementKind) String() string {
	return [...]string{"node", "way", "relation"}[k]
}

// Node is one point of a floor graph.
//
// latText/lonText hold the exact attribute text the node was loaded with, so
// untouched nodes round-trip byte-identically. SetCoordinates refreshes both
// the floats and the text at a fixed precision.
type Node struct {
	ID      ID
	Lat     float64
	Lon     float64
	Tags    Tags
	Version string
	Action  string
	Visible string

	latText string
	lonText string
}

// LatText returns the serialized latitude. Falls back to shortest round-trip
// formatting for nodes constructed in memory without explicit precision.
func (n *Node) LatText() string {
	if n.latText != "" {
		return n.latText
	}
	return strconv.FormatFloat(n.Lat, 'f', -1, 64)
}

// LonText returns the serialized longitude.
func (n *Node) LonText() string {
	if n.lonText != "" {
		return n.lonText
	}
	return strconv.FormatFloat(n.Lon, 'f', -1, 64)
}

// SetCoordinates stores lat/lon rounded and formatted at the given number of
// decimals. Fixed-precision text avoids accumulating float drift across
// repeated merges.
func (n *Node) SetCoordinates(lat, lon float64, decimals int) {
	n.latText = strconv.FormatFloat(lat, 'f', decimals, 64)
	n.lonText = strconv.FormatFloat(lon, 'f', decimals, 64)
	n.Lat, _ = strconv.ParseFloat(n.latText, 64)
	n.Lon, _ = strconv.ParseFloat(n.lonText, 64)
}

// IsRootMarker reports whether the node is the floor's coordinate-origin
// sentinel (tag name=root).
func (n *Node) IsRootMarker() bool {
	return n.Tags.Get(KeyName) == RootMarkerName
}

// Way is an ordered node-reference sequence with tags.
type Way struct {
	ID      ID
	Refs    []ID
	Tags    Tags
	Version string
	Action  string
	Visible string
}

// Member is one entry of a relation.
type Member struct {
	Type string // "node", "way", or "relation"
	Ref  ID
	Role string
}

// Relation groups members under shared tags. The merge engine only rewrites
// member references; relation semantics are passthrough.
type Relation struct {
	ID      ID
	Members []Member
	Tags    Tags
	Version string
	Action  string
	Visible string
}

// Document is the in-memory form of one osmAG file: the node, way, and
// relation tables plus the root element's attributes.
type Document struct {
	Version   string // osm version attribute, normally "0.6"
	Generator string

	Nodes     []*Node
	Ways      []*Way
	Relations []*Relation

	nodeIndex map[ID]*Node
}

// NewDocument returns an empty document with the standard osm version.
func NewDocument() *Document {
	return &Document{Version: "0.6", nodeIndex: make(map[ID]*Node)}
}

// NodeByID returns the node with the given ID, or nil.
func (d *Document) NodeByID(id ID) *Node {
	if d.nodeIndex == nil {
		d.RebuildIndex()
	}
	return d.nodeIndex[id]
}

// RebuildIndex recomputes the ID→node lookup. Callers that rewrite node IDs
// in place must call this before the next NodeByID.
func (d *Document) RebuildIndex() {
	d.nodeIndex = make(map[ID]*Node, len(d.Nodes))
	for _, n := range d.Nodes {
		d.nodeIndex[n.ID] = n
	}
}

// AppendNode adds a node and keeps the lookup current.
func (d *Document) AppendNode(n *Node) {
	d.Nodes = append(d.Nodes, n)
	if d.nodeIndex == nil {
		d.nodeIndex = make(map[ID]*Node)
	}
	d.nodeIndex[n.ID] = n
}

// AppendWay adds a way.
func (d *Document) AppendWay(w *Way) { d.Ways = append(d.Ways, w) }

// AppendRelation adds a relation.
func (d *Document) AppendRelation(r *Relation) { d.Relations = append(d.Relations, r) }

// RootMarker returns the floor's root-marker node, or nil when the floor
// carries none. Floors have at most one; the first match wins.
func (d *Document) RootMarker() *Node {
	for _, n := range d.Nodes {
		if n.IsRootMarker() {
			return n
		}
	}
	return nil
}

// MaxID returns the largest ID magnitude present for the kind, considering
// both stable values and pending magnitudes. Reconciliation counters start
// here so remapped IDs land in a range disjoint from everything already in
// the document.
func (d *Document) MaxID(kind ElementKind) uint64 {
	var maxV uint64
	bump := func(id ID) {
		if id.Value() > maxV {
			maxV = id.Value()
		}
	}
	switch kind {
	case KindNode:
		for _, n := range d.Nodes {
			bump(n.ID)
		}
	case KindWay:
		for _, w := range d.Ways {
			bump(w.ID)
		}
	case KindRelation:
		for _, r := range d.Relations {
			bump(r.ID)
		}
	}
	return maxV
}

// Clone returns a deep copy of the document. The merged-graph builder clones
// the reference floor at construction so the caller's document is never
// aliased by the output.
func (d *Document) Clone() *Document {
	out := NewDocument()
	out.Version = d.Version
	out.Generator = d.Generator
	for _, n := range d.Nodes {
		c := *n
		c.Tags = n.Tags.Clone()
		out.AppendNode(&c)
	}
	for _, w := range d.Ways {
		c := *w
		c.Refs = append([]ID(nil), w.Refs...)
		c.Tags = w.Tags.Clone()
		out.AppendWay(&c)
	}
	for _, r := range d.Relations {
		c := *r
		c.Members = append([]Member(nil), r.Members...)
		c.Tags = r.Tags.Clone()
		out.AppendRelation(&c)
	}
	return out
}

// Areas returns the typed view of every way that classifies as an area.
// Ways that fail classification are skipped; they still exist in Ways.
func (d *Document) Areas() []*Area {
	var out []*Area
	for _, w := range d.Ways {
		if c, err := ClassifyWay(w); err == nil && c.Area != nil {
			out = append(out, c.Area)
		}
	}
	return out
}
