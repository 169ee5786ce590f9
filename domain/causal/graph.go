package causal

import (
	"encoding/json"
	"fmt"
	"sort"

	"gocausal/domain/core"
)

// Edge is an ordered pair of node names. For undirected edges the order
// is canonical (the endpoint listed first in the node list comes first).
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (e Edge) String() string {
	return e.From + " -> " + e.To
}

// NodeAdjacency lists the parents and children of one node
type NodeAdjacency struct {
	Parents  []string `json:"parents"`
	Children []string `json:"children"`
}

// Graph is an immutable learned causal structure: directed edges plus
// undirected edges whose orientation could not be decided (CPDAG style).
type Graph struct {
	nodes      []string
	index      map[string]int
	edges      []Edge
	undirected []Edge
}

type pair struct{ a, b int }

// NewGraph validates and freezes a graph. It rejects duplicate nodes,
// self loops, unknown endpoints, a pair directed both ways, and a pair
// that is both directed and undirected. Edges are stored sorted by node
// position so equal graphs compare equal.
func NewGraph(nodes []string, directed, undirected []Edge) (*Graph, error) {
	index := make(map[string]int, len(nodes))
	for i, n := range nodes {
		if n == "" {
			return nil, core.NewInputError("graph node %d has an empty name", i)
		}
		if _, dup := index[n]; dup {
			return nil, core.NewInputError("duplicate graph node %q", n)
		}
		index[n] = i
	}

	resolve := func(e Edge) (int, int, error) {
		from, ok := index[e.From]
		if !ok {
			return 0, 0, core.NewInputError("edge %s references unknown node %q", e, e.From)
		}
		to, ok := index[e.To]
		if !ok {
			return 0, 0, core.NewInputError("edge %s references unknown node %q", e, e.To)
		}
		if from == to {
			return 0, 0, core.NewInputError("self loop on %q", e.From)
		}
		return from, to, nil
	}

	directedSet := make(map[pair]bool, len(directed))
	dir := make([]pair, 0, len(directed))
	for _, e := range directed {
		from, to, err := resolve(e)
		if err != nil {
			return nil, err
		}
		p := pair{from, to}
		if directedSet[p] {
			continue
		}
		if directedSet[pair{to, from}] {
			return nil, core.NewInputError("pair %s/%s is directed both ways", e.From, e.To)
		}
		directedSet[p] = true
		dir = append(dir, p)
	}

	undirectedSet := make(map[pair]bool, len(undirected))
	und := make([]pair, 0, len(undirected))
	for _, e := range undirected {
		a, b, err := resolve(e)
		if err != nil {
			return nil, err
		}
		if a > b {
			a, b = b, a
		}
		p := pair{a, b}
		if undirectedSet[p] {
			continue
		}
		if directedSet[p] || directedSet[pair{b, a}] {
			return nil, core.NewInputError("pair %s/%s is both directed and undirected", e.From, e.To)
		}
		undirectedSet[p] = true
		und = append(und, p)
	}

	return &Graph{
		nodes:      append([]string(nil), nodes...),
		index:      index,
		edges:      toEdges(nodes, dir),
		undirected: toEdges(nodes, und),
	}, nil
}

func toEdges(nodes []string, pairs []pair) []Edge {
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].a != pairs[j].a {
			return pairs[i].a < pairs[j].a
		}
		return pairs[i].b < pairs[j].b
	})
	out := make([]Edge, len(pairs))
	for i, p := range pairs {
		out[i] = Edge{From: nodes[p.a], To: nodes[p.b]}
	}
	return out
}

// Nodes returns the node names in input order
func (g *Graph) Nodes() []string {
	return append([]string(nil), g.nodes...)
}

// Edges returns the directed edges
func (g *Graph) Edges() []Edge {
	return append([]Edge(nil), g.edges...)
}

// UndirectedEdges returns the edges left unoriented
func (g *Graph) UndirectedEdges() []Edge {
	return append([]Edge(nil), g.undirected...)
}

// HasDirected reports whether from -> to is a directed edge
func (g *Graph) HasDirected(from, to string) bool {
	for _, e := range g.edges {
		if e.From == from && e.To == to {
			return true
		}
	}
	return false
}

// HasUndirected reports whether a - b is an undirected edge
func (g *Graph) HasUndirected(a, b string) bool {
	for _, e := range g.undirected {
		if (e.From == a && e.To == b) || (e.From == b && e.To == a) {
			return true
		}
	}
	return false
}

// Adjacent reports whether a and b share any edge
func (g *Graph) Adjacent(a, b string) bool {
	return g.HasDirected(a, b) || g.HasDirected(b, a) || g.HasUndirected(a, b)
}

// Skeleton returns every adjacency as a canonically ordered pair
func (g *Graph) Skeleton() []Edge {
	pairs := make([]pair, 0, len(g.edges)+len(g.undirected))
	for _, e := range append(g.Edges(), g.undirected...) {
		a, b := g.index[e.From], g.index[e.To]
		if a > b {
			a, b = b, a
		}
		pairs = append(pairs, pair{a, b})
	}
	return toEdges(g.nodes, pairs)
}

// Adjacency derives parents and children per node from the directed
// edges. Undirected edges carry no parent/child relation and are left out.
func (g *Graph) Adjacency() map[string]NodeAdjacency {
	adj := make(map[string]NodeAdjacency, len(g.nodes))
	for _, n := range g.nodes {
		adj[n] = NodeAdjacency{Parents: []string{}, Children: []string{}}
	}
	for _, e := range g.edges {
		to := adj[e.To]
		to.Parents = append(to.Parents, e.From)
		adj[e.To] = to

		from := adj[e.From]
		from.Children = append(from.Children, e.To)
		adj[e.From] = from
	}
	return adj
}

// Parents returns the direct causes of node
func (g *Graph) Parents(node string) []string {
	out := []string{}
	for _, e := range g.edges {
		if e.To == node {
			out = append(out, e.From)
		}
	}
	return out
}

// Children returns the direct effects of node
func (g *Graph) Children(node string) []string {
	out := []string{}
	for _, e := range g.edges {
		if e.From == node {
			out = append(out, e.To)
		}
	}
	return out
}

// Equal reports whether two graphs have the same nodes and edges
func (g *Graph) Equal(other *Graph) bool {
	if g == nil || other == nil {
		return g == other
	}
	if len(g.nodes) != len(other.nodes) || len(g.edges) != len(other.edges) || len(g.undirected) != len(other.undirected) {
		return false
	}
	for i := range g.nodes {
		if g.nodes[i] != other.nodes[i] {
			return false
		}
	}
	for i := range g.edges {
		if g.edges[i] != other.edges[i] {
			return false
		}
	}
	for i := range g.undirected {
		if g.undirected[i] != other.undirected[i] {
			return false
		}
	}
	return true
}

func (g *Graph) String() string {
	return fmt.Sprintf("CausalGraph(nodes=%d, edges=%d, undirected=%d)", len(g.nodes), len(g.edges), len(g.undirected))
}

type graphJSON struct {
	Nodes           []string `json:"nodes"`
	Edges           []Edge   `json:"edges"`
	UndirectedEdges []Edge   `json:"undirected_edges"`
}

// MarshalJSON encodes the graph as {"nodes","edges","undirected_edges"}
func (g *Graph) MarshalJSON() ([]byte, error) {
	return json.Marshal(graphJSON{
		Nodes:           g.nodes,
		Edges:           g.edges,
		UndirectedEdges: g.undirected,
	})
}

// UnmarshalJSON decodes and re-validates a graph
func (g *Graph) UnmarshalJSON(data []byte) error {
	var raw graphJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	built, err := NewGraph(raw.Nodes, raw.Edges, raw.UndirectedEdges)
	if err != nil {
		return err
	}
	*g = *built
	return nil
}
