package discovery

import (
	"sort"
)

const maxMeekIterations = 10

// arc is a directed edge between variable indices
type arc struct{ from, to int }

// orientation holds the partially directed graph built from a skeleton.
// Undirected pairs are keyed canonically; a pair is never in both sets.
type orientation struct {
	adj        adjacency
	directed   map[arc]bool
	undirected map[pairKey]bool
}

func newOrientation(adj adjacency) *orientation {
	o := &orientation{
		adj:        adj,
		directed:   make(map[arc]bool),
		undirected: make(map[pairKey]bool),
	}
	for i := range adj {
		for j := i + 1; j < len(adj); j++ {
			if adj[i][j] {
				o.undirected[pairKey{i, j}] = true
			}
		}
	}
	return o
}

// direct orients from -> to unless the opposite direction is already
// committed, in which case the earlier decision stands.
func (o *orientation) direct(from, to int) bool {
	if o.directed[arc{to, from}] {
		return false
	}
	o.directed[arc{from, to}] = true
	delete(o.undirected, keyOf(from, to))
	return true
}

// orientColliders finds i - k - j with i, j non-adjacent and k outside
// their separating set, and orients i -> k <- j.
func (o *orientation) orientColliders(seps sepsets) {
	for k := range o.adj {
		nbrs := o.adj.neighbours(k, -1)
		for a := 0; a < len(nbrs); a++ {
			for b := a + 1; b < len(nbrs); b++ {
				i, j := nbrs[a], nbrs[b]
				if o.adj[i][j] {
					continue
				}
				sep, ok := seps.lookup(i, j)
				if !ok || containsIndex(sep, k) {
					continue
				}
				o.direct(i, k)
				o.direct(j, k)
			}
		}
	}
}

// propagate applies Meek rule 1 then rule 2 to each undirected pair until
// a pass changes nothing or the iteration cap is reached. Pairs still
// undirected at the cap stay undirected.
func (o *orientation) propagate() int {
	passes := 0
	for passes < maxMeekIterations {
		passes++
		changed := false

		for _, e := range o.sortedUndirected() {
			if !o.undirected[e] {
				continue
			}
			from, to, ok := o.applicableRule(e.a, e.b)
			if !ok {
				continue
			}
			if o.direct(from, to) {
				changed = true
			}
		}

		if !changed {
			break
		}
	}
	return passes
}

// applicableRule tries rule 1 before rule 2, each in both directions
func (o *orientation) applicableRule(a, b int) (int, int, bool) {
	switch {
	case o.rule1(a, b):
		return a, b, true
	case o.rule1(b, a):
		return b, a, true
	case o.rule2(a, b):
		return a, b, true
	case o.rule2(b, a):
		return b, a, true
	}
	return 0, 0, false
}

// rule1: j -> i, i - k, j not adjacent to k  =>  i -> k
func (o *orientation) rule1(i, k int) bool {
	for j := range o.adj {
		if j == k || j == i {
			continue
		}
		if o.directed[arc{j, i}] && !o.adj[j][k] {
			return true
		}
	}
	return false
}

// rule2: i -> j -> k, i - k  =>  i -> k
func (o *orientation) rule2(i, k int) bool {
	for j := range o.adj {
		if o.directed[arc{i, j}] && o.directed[arc{j, k}] {
			return true
		}
	}
	return false
}

func (o *orientation) sortedUndirected() []pairKey {
	out := make([]pairKey, 0, len(o.undirected))
	for e := range o.undirected {
		out = append(out, e)
	}
	sortPairs(out)
	return out
}

func (o *orientation) sortedDirected() []arc {
	out := make([]arc, 0, len(o.directed))
	for e := range o.directed {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].from != out[j].from {
			return out[i].from < out[j].from
		}
		return out[i].to < out[j].to
	})
	return out
}

func sortPairs(pairs []pairKey) {
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].a != pairs[j].a {
			return pairs[i].a < pairs[j].a
		}
		return pairs[i].b < pairs[j].b
	})
}

func containsIndex(set []int, v int) bool {
	for _, x := range set {
		if x == v {
			return true
		}
	}
	return false
}
