// Package render draws a merged building graph as a Graphviz diagram:
// one cluster per floor, one node per area, passage ways as edges. Vertical
// passages cross cluster boundaries, which makes missed or duplicated shaft
// connections easy to spot after a merge.
package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/osmag/agmerge/pkg/osmag"
)

// Options configures diagram rendering.
type Options struct {
	// Detailed includes area type and height in node labels.
	// When false, only the area name is shown.
	Detailed bool
}

// ToDOT converts a building document to Graphviz DOT. Areas are identified as
// "name@level"; unnamed areas fall back to their way ID. The resulting DOT
// string can be rendered with [RenderSVG].
func ToDOT(doc *osmag.Document, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("graph building {\n")
	buf.WriteString("  rankdir=BT;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.3;\n")

	byLevel := make(map[string][]*osmag.Area)
	var passages []*osmag.Passage
	for _, w := range doc.Ways {
		c, err := osmag.ClassifyWay(w)
		if err != nil {
			continue
		}
		switch {
		case c.Area != nil:
			byLevel[c.Area.Level] = append(byLevel[c.Area.Level], c.Area)
		case c.Passage != nil:
			passages = append(passages, c.Passage)
		}
	}

	levels := make([]string, 0, len(byLevel))
	for lvl := range byLevel {
		levels = append(levels, lvl)
	}
	sortLevels(levels)

	for i, lvl := range levels {
		fmt.Fprintf(&buf, "\n  subgraph cluster_%d {\n", i)
		fmt.Fprintf(&buf, "    label=\"level %s\";\n", lvl)
		buf.WriteString("    style=dashed;\n")
		for _, a := range byLevel[lvl] {
			attrs := []string{fmt.Sprintf("label=%q", areaLabel(a, opts.Detailed))}
			if a.Type.Vertical() {
				attrs = append(attrs, "fillcolor=lightgrey")
			}
			fmt.Fprintf(&buf, "    %q [%s];\n", areaID(a), strings.Join(attrs, ", "))
		}
		buf.WriteString("  }\n")
	}

	buf.WriteString("\n")
	for _, p := range passages {
		from, to := passageEndpoints(doc, p)
		if from == to {
			continue
		}
		attrs := ""
		if p.From == p.To {
			attrs = " [style=bold]" // vertical passage
		}
		fmt.Fprintf(&buf, "  %q -- %q%s;\n", from, to, attrs)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func areaID(a *osmag.Area) string {
	name := a.Name
	if name == "" {
		name = "way " + a.Way.ID.String()
	}
	return name + "@" + a.Level
}

func areaLabel(a *osmag.Area, detailed bool) string {
	name := a.Name
	if name == "" {
		name = "way " + a.Way.ID.String()
	}
	if !detailed {
		return name
	}
	parts := []string{name, a.Type.String()}
	if a.Height != "" {
		parts = append(parts, "h="+a.Height)
	}
	return strings.Join(parts, "\n")
}

// passageEndpoints resolves a passage's two graph endpoints. Horizontal
// passages join two named areas on the passage's own level. Vertical passages
// carry from == to; their endpoint levels come from the level tags of the two
// way nodes.
func passageEndpoints(doc *osmag.Document, p *osmag.Passage) (string, string) {
	if p.From != p.To {
		return p.From + "@" + p.Level, p.To + "@" + p.Level
	}

	levels := make([]string, 0, 2)
	for _, ref := range p.Way.Refs {
		if n := doc.NodeByID(ref); n != nil {
			levels = append(levels, n.Tags.Get(osmag.KeyLevel))
		}
	}
	if len(levels) == 2 && levels[0] != levels[1] {
		return p.From + "@" + levels[0], p.To + "@" + levels[1]
	}
	return p.From + "@" + p.Level, p.To + "@" + p.Level
}

// sortLevels orders level strings numerically when possible, lexically
// otherwise, so floors stack bottom-up in the diagram.
func sortLevels(levels []string) {
	sort.Slice(levels, func(i, j int) bool {
		a, errA := strconv.ParseFloat(levels[i], 64)
		b, errB := strconv.ParseFloat(levels[j], 64)
		if errA == nil && errB == nil {
			return a < b
		}
		return levels[i] < levels[j]
	})
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the SVG root element so the viewBox starts at the
// origin and explicit pixel dimensions are present.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
