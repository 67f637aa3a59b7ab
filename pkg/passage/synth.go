// Package passage synthesizes the vertical connectivity of a merged building
// graph: for every named elevator or stairs shaft present on consecutive
// floors, it emits a 2-node passage way linking the two instances through a
// shared center point.
package passage

import (
	"fmt"
	"io"
	"math"
	"math/rand"
	"sort"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/osmag/agmerge/pkg/merge"
	"github.com/osmag/agmerge/pkg/osmag"
)

// centerPrecision is the decimal precision of synthesized center points.
// Fixed formatting guarantees the two endpoint nodes of a shaft land on the
// byte-identical coordinate.
const centerPrecision = 10

// Synthesizer creates vertical passages on a merged document.
type Synthesizer struct {
	rng    *rand.Rand
	logger *log.Logger
}

// New returns a synthesizer. Passage names carry a random 4-digit suffix;
// the seed pins them for reproducible output.
func New(seed int64, logger *log.Logger) *Synthesizer {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Synthesizer{
		rng:    rand.New(rand.NewSource(seed)),
		logger: logger,
	}
}

// instance is one floor-level occurrence of a shaft in the merged graph.
type instance struct {
	level    string
	levelNum float64
	numeric  bool
	refs     []osmag.ID
	height   string
}

// Synthesize re-scans the entire merged document, regroups vertical-transport
// areas by (areaType, name), and connects every pair of numerically adjacent
// floors per shaft. Node and way IDs continue from the merge counters.
//
// Only numerically adjacent floors are connected: a shaft present on levels
// {1,2,4} yields a single 1↔2 passage and no 2↔4 skip-level connection,
// because a missing middle floor means the shaft does not serve that span.
// Non-numeric levels fall back to lexical order and connect consecutively.
//
// Returns the number of passage ways created.
func (s *Synthesizer) Synthesize(doc *osmag.Document, counters *merge.Counters) int {
	type groupKey struct {
		typ  osmag.AreaType
		name string
	}
	groups := make(map[groupKey][]instance)
	var order []groupKey

	for _, a := range doc.Areas() {
		if !a.Type.Vertical() || a.Name == "" || a.Level == "" {
			continue
		}
		key := groupKey{typ: a.Type, name: a.Name}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		inst := instance{level: a.Level, refs: a.Way.Refs, height: a.Height}
		if v, err := strconv.ParseFloat(a.Level, 64); err == nil {
			inst.levelNum = v
			inst.numeric = true
		}
		groups[key] = append(groups[key], inst)
	}

	sort.Slice(order, func(i, j int) bool {
		if order[i].typ != order[j].typ {
			return order[i].typ < order[j].typ
		}
		return order[i].name < order[j].name
	})

	created := 0
	for _, key := range order {
		instances := groups[key]
		sortByLevel(key.name, instances, s.logger)

		for i := 0; i < len(instances)-1; i++ {
			lower, upper := instances[i], instances[i+1]
			if lower.level == upper.level {
				continue
			}
			if lower.numeric && upper.numeric && upper.levelNum-lower.levelNum != 1 {
				s.logger.Debug("shaft gap; not connecting non-adjacent floors",
					"name", key.name, "lower", lower.level, "upper", upper.level)
				continue
			}
			if s.connect(doc, counters, key.typ, key.name, lower, upper) {
				created++
			}
		}
	}

	s.logger.Info("synthesized vertical passages", "passages", created)
	return created
}

// sortByLevel orders instances by numeric level, falling back to lexical
// order when a level tag is not numeric.
func sortByLevel(name string, instances []instance, logger *log.Logger) {
	allNumeric := true
	for _, in := range instances {
		if !in.numeric {
			allNumeric = false
			break
		}
	}
	if !allNumeric {
		logger.Warn("non-numeric level tag; sorting shaft levels lexically", "name", name)
		sort.Slice(instances, func(i, j int) bool { return instances[i].level < instances[j].level })
		return
	}
	sort.Slice(instances, func(i, j int) bool { return instances[i].levelNum < instances[j].levelNum })
}

// connect emits the two endpoint nodes and the passage way for one adjacent
// floor pair of a shaft. Returns false when no usable center point exists.
func (s *Synthesizer) connect(doc *osmag.Document, counters *merge.Counters, typ osmag.AreaType, name string, lower, upper instance) bool {
	center, ok := sharedCenter(doc, lower.refs, upper.refs)
	if !ok {
		s.logger.Warn("no usable vertices for shaft center; skipping passage",
			"type", typ, "name", name, "levels", lower.level+"-"+upper.level)
		return false
	}

	lowerNode := s.centerNode(counters, center, lower.level)
	upperNode := s.centerNode(counters, center, upper.level)
	doc.AppendNode(lowerNode)
	doc.AppendNode(upperNode)

	tags := osmag.Tags{
		osmag.KeyType:  osmag.TypePassage,
		osmag.KeyFrom:  name,
		osmag.KeyTo:    name, // from == to marks the passage as vertical
		osmag.KeyLevel: upper.level,
		osmag.KeyName:  fmt.Sprintf("%s_passage_%04d", typ, s.rng.Intn(9000)+1000),
	}
	if upper.height != "" {
		tags = tags.Set(osmag.KeyHeight, upper.height)
	}

	doc.AppendWay(&osmag.Way{
		ID:      counters.Next(osmag.KindWay),
		Refs:    []osmag.ID{lowerNode.ID, upperNode.ID},
		Tags:    tags,
		Version: "1",
		Action:  "modify",
		Visible: "true",
	})
	return true
}

// centerNode builds one passage endpoint at the shared center.
func (s *Synthesizer) centerNode(counters *merge.Counters, center merge.Coord, level string) *osmag.Node {
	n := &osmag.Node{
		ID:      counters.Next(osmag.KindNode),
		Tags:    osmag.Tags{osmag.KeyLevel: level},
		Version: "1",
		Action:  "modify",
		Visible: "true",
	}
	n.SetCoordinates(center.Lat, center.Lon, centerPrecision)
	return n
}

// sharedCenter computes the bounding-box center of the union of both
// instances' vertex sets. The bounding box is order-independent, so two
// floors that drew the same shaft with different vertex orderings still get
// the byte-identical center.
func sharedCenter(doc *osmag.Document, lowerRefs, upperRefs []osmag.ID) (merge.Coord, bool) {
	minLat, minLon := math.Inf(1), math.Inf(1)
	maxLat, maxLon := math.Inf(-1), math.Inf(-1)
	found := false

	for _, refs := range [][]osmag.ID{lowerRefs, upperRefs} {
		for _, ref := range refs {
			n := doc.NodeByID(ref)
			if n == nil {
				continue
			}
			found = true
			minLat = math.Min(minLat, n.Lat)
			maxLat = math.Max(maxLat, n.Lat)
			minLon = math.Min(minLon, n.Lon)
			maxLon = math.Max(maxLon, n.Lon)
		}
	}
	if !found {
		return merge.Coord{}, false
	}
	return merge.Coord{
		Lat: merge.Round((minLat+maxLat)/2, centerPrecision),
		Lon: merge.Round((minLon+maxLon)/2, centerPrecision),
	}, true
}
