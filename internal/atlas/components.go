// apps/go-server/internal/atlas/components.go
//
// Connected-component index over the border graph.
//
// Two countries share a component iff a chain of land crossings joins them.
// Components are labelled by a BFS flood fill that visits ids in sorted order,
// so labels are stable for a fixed graph.
//
// A country is "playable" when its component has more than one member; isolated
// countries (islands, single-country components) never get random scenarios.

package atlas

import "sort"

// ComponentID labels a connected component. Labels are 0..Count()-1.
type ComponentID int

// Index is the precomputed reachability partition of a Graph.
type Index struct {
	graph    *Graph
	comp     map[string]ComponentID
	members  [][]string // by ComponentID, each sorted
	playable []string   // sorted
}

// NewIndex flood-fills g once.
//
// Time:   O(V + E).
// Memory: O(V).
func NewIndex(g *Graph) *Index {
	ix := &Index{graph: g, comp: make(map[string]ComponentID, g.Len())}

	for _, root := range g.IDs() {
		if _, seen := ix.comp[root]; seen {
			continue
		}
		label := ComponentID(len(ix.members))
		queue := []string{root}
		ix.comp[root] = label

		for qi := 0; qi < len(queue); qi++ {
			for _, v := range g.SortedNeighbors(queue[qi]) {
				if _, seen := ix.comp[v]; !seen {
					ix.comp[v] = label
					queue = append(queue, v)
				}
			}
		}
		sort.Strings(queue)
		ix.members = append(ix.members, queue)
	}

	for _, m := range ix.members {
		if len(m) > 1 {
			ix.playable = append(ix.playable, m...)
		}
	}
	sort.Strings(ix.playable)
	return ix
}

// Graph returns the graph the index was built from.
func (ix *Index) Graph() *Graph { return ix.graph }

// Count is the number of components.
func (ix *Index) Count() int { return len(ix.members) }

// ComponentOf returns the component label of id; ok is false for unknown ids.
func (ix *Index) ComponentOf(id string) (ComponentID, bool) {
	c, ok := ix.comp[Normalize(id)]
	return c, ok
}

// ComponentSize is the member count of id's component (0 for unknown ids).
func (ix *Index) ComponentSize(id string) int {
	c, ok := ix.ComponentOf(id)
	if !ok {
		return 0
	}
	return len(ix.members[c])
}

// SameComponentAs returns every member of id's component, id included, sorted.
// Unknown ids yield an empty slice.
func (ix *Index) SameComponentAs(id string) []string {
	c, ok := ix.ComponentOf(id)
	if !ok {
		return []string{}
	}
	return append([]string(nil), ix.members[c]...)
}

// Peers is SameComponentAs without id itself: the valid goals for a start.
func (ix *Index) Peers(id string) []string {
	id = Normalize(id)
	all := ix.SameComponentAs(id)
	out := all[:0]
	for _, m := range all {
		if m != id {
			out = append(out, m)
		}
	}
	return out
}

// Reachable reports whether b can be reached from a by land.
func (ix *Index) Reachable(a, b string) bool {
	ca, okA := ix.ComponentOf(a)
	cb, okB := ix.ComponentOf(b)
	return okA && okB && ca == cb
}

// IsPlayable reports whether id's component has more than one member.
func (ix *Index) IsPlayable(id string) bool {
	return ix.ComponentSize(id) > 1
}

// Playable returns all playable ids, sorted. The slice must not be modified.
func (ix *Index) Playable() []string { return ix.playable }
