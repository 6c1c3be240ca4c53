// apps/go-server/internal/atlas/graph.go
//
// Land-border graph between countries.
// Responsibilities:
//   - Hold the static adjacency mapping (country id → bordering country ids).
//   - Answer Neighbors / IsAdjacent / Known in O(1) or O(degree).
//   - Detect and optionally repair asymmetric edges at construction time.
//
// Notes:
//   - Ids are ISO 3166-1 alpha-3 codes, trimmed and upper-cased (see Normalize).
//   - Every id that appears as a key is "known", even with an empty border list
//     (island nations). Unknown ids simply have no neighbours.
//   - The graph is read-only once built; it is safe for concurrent readers.

package atlas

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/rs/zerolog/log"
)

var (
	// ErrAsymmetricBorder is returned in strict mode when A lists B but B does not list A.
	ErrAsymmetricBorder = errors.New("atlas: asymmetric border")
	// ErrEmptyGraph is returned when the border data contains no countries.
	ErrEmptyGraph = errors.New("atlas: border data is empty")
)

// Edge is a directed border entry as it appears in the source data.
type Edge struct {
	From string
	To   string
}

// Graph is the immutable land-border adjacency graph.
type Graph struct {
	adj map[string]mapset.Set[string]
	ids []string // sorted
}

// Options controls how raw border data is turned into a Graph.
type Options struct {
	// Strict makes asymmetric edges a hard error instead of a repaired warning.
	Strict bool
}

// Normalize trims and upper-cases a country id.
func Normalize(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// NewGraph builds a Graph from a raw id → neighbours mapping.
//
// Asymmetric edges are reported; in non-strict mode the missing reverse edge
// is added so every crossing can be made in both directions. Self loops are dropped.
func NewGraph(borders map[string][]string, opts Options) (*Graph, error) {
	if len(borders) == 0 {
		return nil, ErrEmptyGraph
	}
	g := &Graph{adj: make(map[string]mapset.Set[string], len(borders))}

	for from, tos := range borders {
		f := Normalize(from)
		if f == "" {
			continue
		}
		set := g.ensure(f)
		for _, to := range tos {
			t := Normalize(to)
			if t == "" || t == f {
				continue
			}
			set.Add(t)
		}
	}

	// Neighbours that never appear as keys still become known ids.
	for from, set := range g.adj {
		for _, to := range set.ToSlice() {
			if _, ok := g.adj[to]; !ok {
				log.Warn().Str("country", to).Str("listedBy", from).Msg("border target missing from data")
				g.ensure(to)
			}
		}
	}

	asym := g.Asymmetries()
	if len(asym) > 0 {
		if opts.Strict {
			return nil, fmt.Errorf("%w: %s→%s (and %d more)", ErrAsymmetricBorder, asym[0].From, asym[0].To, len(asym)-1)
		}
		for _, e := range asym {
			log.Warn().Str("from", e.From).Str("to", e.To).Msg("asymmetric border repaired")
			g.adj[e.To].Add(e.From)
		}
	}

	g.ids = make([]string, 0, len(g.adj))
	for id := range g.adj {
		g.ids = append(g.ids, id)
	}
	sort.Strings(g.ids)
	return g, nil
}

func (g *Graph) ensure(id string) mapset.Set[string] {
	if s, ok := g.adj[id]; ok {
		return s
	}
	s := mapset.NewThreadUnsafeSet[string]()
	g.adj[id] = s
	return s
}

// Asymmetries lists every edge A→B whose reverse B→A is missing, sorted.
func (g *Graph) Asymmetries() []Edge {
	var out []Edge
	for from, set := range g.adj {
		set.Each(func(to string) bool {
			back, ok := g.adj[to]
			if !ok || !back.Contains(from) {
				out = append(out, Edge{From: from, To: to})
			}
			return false
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].To < out[j].To
	})
	return out
}

// Known reports whether id is a country in the graph.
func (g *Graph) Known(id string) bool {
	_, ok := g.adj[Normalize(id)]
	return ok
}

// Neighbors returns a copy of the countries bordering id.
// Unknown ids yield an empty set.
func (g *Graph) Neighbors(id string) mapset.Set[string] {
	if s, ok := g.adj[Normalize(id)]; ok {
		return s.Clone()
	}
	return mapset.NewThreadUnsafeSet[string]()
}

// SortedNeighbors is Neighbors as a sorted slice.
func (g *Graph) SortedNeighbors(id string) []string {
	s, ok := g.adj[Normalize(id)]
	if !ok {
		return []string{}
	}
	out := s.ToSlice()
	sort.Strings(out)
	return out
}

// Degree is the number of bordering countries.
func (g *Graph) Degree(id string) int {
	if s, ok := g.adj[Normalize(id)]; ok {
		return s.Cardinality()
	}
	return 0
}

// IsAdjacent reports whether b borders a.
func (g *Graph) IsAdjacent(a, b string) bool {
	s, ok := g.adj[Normalize(a)]
	return ok && s.Contains(Normalize(b))
}

// IDs returns every known id in sorted order. The slice must not be modified.
func (g *Graph) IDs() []string { return g.ids }

// Len is the number of known countries.
func (g *Graph) Len() int { return len(g.ids) }
