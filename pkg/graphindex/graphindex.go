// Package graphindex builds a first-class adjacency index over the flat
// directed edge list of the knowledge graph.
//
// The index is keyed by plain node ids and owns no references back into
// node records. It is built once at startup and is read-only afterwards,
// so it may be shared across concurrent queries.
package graphindex

import (
	"sort"

	"github.com/geoffsee/proseva-sub005/pkg/common"
)

// Edge directions relative to a node.
const (
	DirOut  = "out"
	DirIn   = "in"
	DirBoth = "both"
)

// entry holds the six neighbor sets of one node that participates in at
// least one edge.
type entry struct {
	containsOut map[int64]struct{}
	containsIn  map[int64]struct{}
	citesOut    map[int64]struct{}
	citesIn     map[int64]struct{}
	refsOut     map[int64]struct{}
	refsIn      map[int64]struct{}
}

func newEntry() *entry {
	return &entry{
		containsOut: make(map[int64]struct{}),
		containsIn:  make(map[int64]struct{}),
		citesOut:    make(map[int64]struct{}),
		citesIn:     make(map[int64]struct{}),
		refsOut:     make(map[int64]struct{}),
		refsIn:      make(map[int64]struct{}),
	}
}

// Index is the derived adjacency view of the edge list. For every edge
// (a, b, contains), b is in containsOut(a) and a is in containsIn(b); the
// same symmetry holds for cites and references.
type Index struct {
	entries map[int64]*entry
}

// Build constructs the index from the directed edge list. Edges with an
// unknown relation type are ignored; edges referencing node ids absent
// from the node table are tolerated and simply produce entries for the
// dangling ids.
func Build(edges []common.Edge) *Index {
	ix := &Index{entries: make(map[int64]*entry)}
	for _, e := range edges {
		from := ix.entry(e.FromID)
		to := ix.entry(e.ToID)
		switch e.RelType {
		case common.RelContains:
			from.containsOut[e.ToID] = struct{}{}
			to.containsIn[e.FromID] = struct{}{}
		case common.RelCites:
			from.citesOut[e.ToID] = struct{}{}
			to.citesIn[e.FromID] = struct{}{}
		case common.RelReferences:
			from.refsOut[e.ToID] = struct{}{}
			to.refsIn[e.FromID] = struct{}{}
		}
	}
	return ix
}

func (ix *Index) entry(id int64) *entry {
	e, ok := ix.entries[id]
	if !ok {
		e = newEntry()
		ix.entries[id] = e
	}
	return e
}

func (ix *Index) set(id int64, relType, direction string) map[int64]struct{} {
	e, ok := ix.entries[id]
	if !ok {
		return nil
	}
	switch relType {
	case common.RelContains:
		if direction == DirOut {
			return e.containsOut
		}
		return e.containsIn
	case common.RelCites:
		if direction == DirOut {
			return e.citesOut
		}
		return e.citesIn
	case common.RelReferences:
		if direction == DirOut {
			return e.refsOut
		}
		return e.refsIn
	}
	return nil
}

// NeighborSet returns the neighbor id set for one relation and direction.
// The returned map is the index's own storage and must not be mutated.
// Nodes without adjacency return nil.
func (ix *Index) NeighborSet(id int64, relType, direction string) map[int64]struct{} {
	return ix.set(id, relType, direction)
}

// Neighbors returns the neighbor ids for one relation and direction as a
// sorted slice.
func (ix *Index) Neighbors(id int64, relType, direction string) []int64 {
	return sortedIDs(ix.set(id, relType, direction))
}

// Siblings returns the union, over every contains parent of id, of that
// parent's children, excluding id itself. This models "other sections
// under the same title or chapter".
func (ix *Index) Siblings(id int64) map[int64]struct{} {
	out := make(map[int64]struct{})
	for parent := range ix.set(id, common.RelContains, DirIn) {
		for child := range ix.set(parent, common.RelContains, DirOut) {
			if child == id {
				continue
			}
			out[child] = struct{}{}
		}
	}
	return out
}

// SharesContainsParent reports whether the two nodes have at least one
// common direct contains parent. Deliberately narrow: siblings of siblings
// under different parents do not count.
func (ix *Index) SharesContainsParent(a, b int64) bool {
	pa := ix.set(a, common.RelContains, DirIn)
	pb := ix.set(b, common.RelContains, DirIn)
	if len(pa) == 0 || len(pb) == 0 {
		return false
	}
	if len(pb) < len(pa) {
		pa, pb = pb, pa
	}
	for p := range pa {
		if _, ok := pb[p]; ok {
			return true
		}
	}
	return false
}

// GraphCoherence scores how well a node's 1-hop neighborhood (citations in
// both directions plus siblings) overlaps the candidate pool, in [0, 1].
//
// A bonus of 0.1 is added for each references target whose contains parent
// is one of the top statute parents, stopping once the running score
// exceeds 1.0. The final value is clamped to [0, 1].
func (ix *Index) GraphCoherence(nodeID int64, poolIDs map[int64]struct{}, topStatuteParents map[int64]struct{}) float64 {
	if len(poolIDs) == 0 {
		return 0
	}

	neighborhood := make(map[int64]struct{})
	for n := range ix.set(nodeID, common.RelCites, DirOut) {
		neighborhood[n] = struct{}{}
	}
	for n := range ix.set(nodeID, common.RelCites, DirIn) {
		neighborhood[n] = struct{}{}
	}
	for n := range ix.Siblings(nodeID) {
		neighborhood[n] = struct{}{}
	}

	overlap := 0
	for n := range neighborhood {
		if n == nodeID {
			continue
		}
		if _, ok := poolIDs[n]; ok {
			overlap++
		}
	}
	coherence := float64(overlap) / float64(len(poolIDs))

	for target := range ix.set(nodeID, common.RelReferences, DirOut) {
		if coherence > 1.0 {
			break
		}
		for parent := range ix.set(target, common.RelContains, DirIn) {
			if _, ok := topStatuteParents[parent]; ok {
				coherence += 0.1
				break
			}
		}
	}

	if coherence < 0 {
		return 0
	}
	if coherence > 1 {
		return 1
	}
	return coherence
}

// DirectStructuralEdge reports whether a and b are joined by a direct
// cites or contains edge in either direction.
func (ix *Index) DirectStructuralEdge(a, b int64) bool {
	_, ok := ix.structuralNeighbors(a)[b]
	return ok
}

// ConnectedWithin2Hops reports whether b is reachable from a within two
// hops over cites or contains edges, treating both as undirected. Used by
// the triage diagnostics, never by ranking.
func (ix *Index) ConnectedWithin2Hops(a, b int64) bool {
	first := ix.structuralNeighbors(a)
	if _, ok := first[b]; ok {
		return true
	}
	for mid := range first {
		if _, ok := ix.structuralNeighbors(mid)[b]; ok {
			return true
		}
	}
	return false
}

func (ix *Index) structuralNeighbors(id int64) map[int64]struct{} {
	out := make(map[int64]struct{})
	for _, rel := range []string{common.RelCites, common.RelContains} {
		for _, dir := range []string{DirOut, DirIn} {
			for n := range ix.set(id, rel, dir) {
				out[n] = struct{}{}
			}
		}
	}
	return out
}

func sortedIDs(set map[int64]struct{}) []int64 {
	if len(set) == 0 {
		return nil
	}
	out := make([]int64, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
