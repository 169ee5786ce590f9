package mechanism

import (
	"strings"

	"gocausal/domain/causal"
)

// EdgeFilter selects the edges a comparison looks at
type EdgeFilter func(causal.Edge) bool

// Touching keeps edges with an endpoint whose name starts with prefix
func Touching(prefix string) EdgeFilter {
	return func(e causal.Edge) bool {
		return strings.HasPrefix(e.From, prefix) || strings.HasPrefix(e.To, prefix)
	}
}

// Comparison splits the directed edges of two graphs, typically learned on
// two subgroups of the same population.
type Comparison struct {
	Common []causal.Edge `json:"common"`
	OnlyA  []causal.Edge `json:"only_a"`
	OnlyB  []causal.Edge `json:"only_b"`
}

// CompareEdges compares the directed edges of a and b passing filter (all
// edges when filter is nil). Output follows each graph's edge order.
func CompareEdges(a, b *causal.Graph, filter EdgeFilter) Comparison {
	keep := func(g *causal.Graph) []causal.Edge {
		var out []causal.Edge
		for _, e := range g.Edges() {
			if filter == nil || filter(e) {
				out = append(out, e)
			}
		}
		return out
	}
	ea, eb := keep(a), keep(b)

	inB := make(map[causal.Edge]bool, len(eb))
	for _, e := range eb {
		inB[e] = true
	}
	inA := make(map[causal.Edge]bool, len(ea))
	for _, e := range ea {
		inA[e] = true
	}

	c := Comparison{Common: []causal.Edge{}, OnlyA: []causal.Edge{}, OnlyB: []causal.Edge{}}
	for _, e := range ea {
		if inB[e] {
			c.Common = append(c.Common, e)
		} else {
			c.OnlyA = append(c.OnlyA, e)
		}
	}
	for _, e := range eb {
		if !inA[e] {
			c.OnlyB = append(c.OnlyB, e)
		}
	}
	return c
}
