package osmag

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
)

// Wire structs for the OSM-XML dialect. Kept private: the public surface is
// Document and friends.

type xmlTag struct {
	K string `xml:"k,attr"`
	V string `xml:"v,attr"`
}

type xmlNd struct {
	Ref string `xml:"ref,attr"`
}

type xmlMember struct {
	Type string `xml:"type,attr"`
	Ref  string `xml:"ref,attr"`
	Role string `xml:"role,attr,omitempty"`
}

type xmlNode struct {
	ID      string   `xml:"id,attr"`
	Action  string   `xml:"action,attr,omitempty"`
	Visible string   `xml:"visible,attr,omitempty"`
	Version string   `xml:"version,attr,omitempty"`
	Lat     string   `xml:"lat,attr"`
	Lon     string   `xml:"lon,attr"`
	Tags    []xmlTag `xml:"tag"`
}

type xmlWay struct {
	ID      string   `xml:"id,attr"`
	Action  string   `xml:"action,attr,omitempty"`
	Visible string   `xml:"visible,attr,omitempty"`
	Version string   `xml:"version,attr,omitempty"`
	Nds     []xmlNd  `xml:"nd"`
	Tags    []xmlTag `xml:"tag"`
}

type xmlRelation struct {
	ID      string      `xml:"id,attr"`
	Action  string      `xml:"action,attr,omitempty"`
	Visible string      `xml:"visible,attr,omitempty"`
	Version string      `xml:"version,attr,omitempty"`
	Members []xmlMember `xml:"member"`
	Tags    []xmlTag    `xml:"tag"`
}

type xmlOsm struct {
	XMLName   xml.Name      `xml:"osm"`
	Version   string        `xml:"version,attr"`
	Generator string        `xml:"generator,attr,omitempty"`
	Nodes     []xmlNode     `xml:"node"`
	Ways      []xmlWay      `xml:"way"`
	Relations []xmlRelation `xml:"relation"`
}

// Load reads and parses one osmAG file.
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	doc, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

// Read parses an osmAG document from r.
func Read(r io.Reader) (*Document, error) {
	var raw xmlOsm
	if err := xml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, err
	}

	doc := NewDocument()
	doc.Version = raw.Version
	doc.Generator = raw.Generator

	for _, xn := range raw.Nodes {
		id, err := ParseID(xn.ID)
		if err != nil {
			return nil, fmt.Errorf("node: %w", err)
		}
		lat, err := strconv.ParseFloat(xn.Lat, 64)
		if err != nil {
			return nil, fmt.Errorf("node %s: bad lat %q", xn.ID, xn.Lat)
		}
		lon, err := strconv.ParseFloat(xn.Lon, 64)
		if err != nil {
			return nil, fmt.Errorf("node %s: bad lon %q", xn.ID, xn.Lon)
		}
		doc.AppendNode(&Node{
			ID:      id,
			Lat:     lat,
			Lon:     lon,
			latText: xn.Lat,
			lonText: xn.Lon,
			Tags:    tagsFromXML(xn.Tags),
			Version: xn.Version,
			Action:  xn.Action,
			Visible: xn.Visible,
		})
	}

	for _, xw := range raw.Ways {
		id, err := ParseID(xw.ID)
		if err != nil {
			return nil, fmt.Errorf("way: %w", err)
		}
		refs := make([]ID, 0, len(xw.Nds))
		for _, nd := range xw.Nds {
			ref, err := ParseID(nd.Ref)
			if err != nil {
				return nil, fmt.Errorf("way %s: %w", xw.ID, err)
			}
			refs = append(refs, ref)
		}
		doc.AppendWay(&Way{
			ID:      id,
			Refs:    refs,
			Tags:    tagsFromXML(xw.Tags),
			Version: xw.Version,
			Action:  xw.Action,
			Visible: xw.Visible,
		})
	}

	for _, xr := range raw.Relations {
		id, err := ParseID(xr.ID)
		if err != nil {
			return nil, fmt.Errorf("relation: %w", err)
		}
		members := make([]Member, 0, len(xr.Members))
		for _, m := range xr.Members {
			ref, err := ParseID(m.Ref)
			if err != nil {
				return nil, fmt.Errorf("relation %s: %w", xr.ID, err)
			}
			members = append(members, Member{Type: m.Type, Ref: ref, Role: m.Role})
		}
		doc.AppendRelation(&Relation{
			ID:      id,
			Members: members,
			Tags:    tagsFromXML(xr.Tags),
			Version: xr.Version,
			Action:  xr.Action,
			Visible: xr.Visible,
		})
	}

	return doc, nil
}

// Save writes the document to path, overwriting any existing file.
func (d *Document) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := d.Write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// Write serializes the document as indented OSM-XML: nodes first, then ways,
// then relations, in table order.
func (d *Document) Write(w io.Writer) error {
	raw := xmlOsm{
		Version:   d.Version,
		Generator: d.Generator,
	}
	if raw.Version == "" {
		raw.Version = "0.6"
	}

	raw.Nodes = make([]xmlNode, 0, len(d.Nodes))
	for _, n := range d.Nodes {
		raw.Nodes = append(raw.Nodes, xmlNode{
			ID:      n.ID.String(),
			Action:  n.Action,
			Visible: n.Visible,
			Version: n.Version,
			Lat:     n.LatText(),
			Lon:     n.LonText(),
			Tags:    tagsToXML(n.Tags),
		})
	}

	raw.Ways = make([]xmlWay, 0, len(d.Ways))
	for _, way := range d.Ways {
		nds := make([]xmlNd, 0, len(way.Refs))
		for _, ref := range way.Refs {
			nds = append(nds, xmlNd{Ref: ref.String()})
		}
		raw.Ways = append(raw.Ways, xmlWay{
			ID:      way.ID.String(),
			Action:  way.Action,
			Visible: way.Visible,
			Version: way.Version,
			Nds:     nds,
			Tags:    tagsToXML(way.Tags),
		})
	}

	raw.Relations = make([]xmlRelation, 0, len(d.Relations))
	for _, rel := range d.Relations {
		members := make([]xmlMember, 0, len(rel.Members))
		for _, m := range rel.Members {
			members = append(members, xmlMember{Type: m.Type, Ref: m.Ref.String(), Role: m.Role})
		}
		raw.Relations = append(raw.Relations, xmlRelation{
			ID:      rel.ID.String(),
			Action:  rel.Action,
			Visible: rel.Visible,
			Version: rel.Version,
			Members: members,
			Tags:    tagsToXML(rel.Tags),
		})
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(raw); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func tagsFromXML(xs []xmlTag) Tags {
	if len(xs) == 0 {
		return nil
	}
	t := make(Tags, len(xs))
	for _, x := range xs {
		t[x.K] = x.V
	}
	return t
}

// tagsToXML emits tags in a fixed key order so output files are stable
// across runs.
func tagsToXML(t Tags) []xmlTag {
	if len(t) == 0 {
		return nil
	}
	// osmAG convention: the dialect's own keys first, then the rest sorted.
	order := []string{KeyHeight, KeyLevel, KeyName, KeyFrom, KeyParent, KeyTo, KeyAreaType, KeyType}
	seen := make(map[string]bool, len(order))
	out := make([]xmlTag, 0, len(t))
	for _, k := range order {
		if v, ok := t[k]; ok {
			out = append(out, xmlTag{K: k, V: v})
			seen[k] = true
		}
	}
	rest := make([]string, 0, len(t))
	for k := range t {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	slices.Sort(rest)
	for _, k := range rest {
		out = append(out, xmlTag{K: k, V: t[k]})
	}
	return out
}
