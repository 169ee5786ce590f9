package discovery

import (
	"context"

	"gocausal/adapters/stats/linear"
)

// adjacency is the mutable undirected skeleton of one PC fit
type adjacency [][]bool

func completeAdjacency(p int) adjacency {
	adj := make(adjacency, p)
	for i := range adj {
		adj[i] = make([]bool, p)
		for j := range adj[i] {
			adj[i][j] = i != j
		}
	}
	return adj
}

// neighbours lists the nodes adjacent to i in ascending order, leaving out
// exclude (pass -1 to keep all).
func (a adjacency) neighbours(i, exclude int) []int {
	var out []int
	for j, ok := range a[i] {
		if ok && j != exclude {
			out = append(out, j)
		}
	}
	return out
}

func (a adjacency) remove(i, j int) {
	a[i][j] = false
	a[j][i] = false
}

func (a adjacency) edgeCount() int {
	count := 0
	for i := range a {
		for j := i + 1; j < len(a); j++ {
			if a[i][j] {
				count++
			}
		}
	}
	return count
}

// pairKey is an unordered variable pair with a < b
type pairKey struct{ a, b int }

func keyOf(i, j int) pairKey {
	if i > j {
		i, j = j, i
	}
	return pairKey{i, j}
}

// sepsets records the conditioning set that removed each pair
type sepsets map[pairKey][]int

func (s sepsets) lookup(i, j int) ([]int, bool) {
	set, ok := s[keyOf(i, j)]
	return set, ok
}

// DepthStats summarises one conditioning-set size of the skeleton search
type DepthStats struct {
	Depth      int `json:"depth"`
	Tests      int `json:"tests"`
	Removed    int `json:"removed"`
	EdgesAfter int `json:"edges_after"`
}

// skeleton prunes the complete graph. At each depth every still-adjacent
// pair i<j is tested against the size-depth subsets of i's other
// neighbours; the first subset with p > alpha removes the edge. The search
// stops after maxDepth or at the first depth that removes nothing.
func (pc *PC) skeleton(ctx context.Context, cols [][]float64, maxDepth int) (adjacency, sepsets, []DepthStats, error) {
	p := len(cols)
	adj := completeAdjacency(p)
	seps := make(sepsets)
	var trace []DepthStats

	for depth := 0; depth <= maxDepth; depth++ {
		if err := ctx.Err(); err != nil {
			return nil, nil, trace, err
		}

		level := DepthStats{Depth: depth}
		for i := 0; i < p; i++ {
			for j := i + 1; j < p; j++ {
				if !adj[i][j] {
					continue
				}
				nbrs := adj.neighbours(i, j)
				if len(nbrs) < depth {
					continue
				}

				err := forEachCombination(nbrs, depth, func(cond []int) (bool, error) {
					level.Tests++
					res, err := linear.PartialCorrelation(cols, i, j, cond)
					if err != nil {
						return false, err
					}
					if res.PValue > pc.config.Alpha {
						adj.remove(i, j)
						seps[keyOf(i, j)] = append([]int{}, cond...)
						level.Removed++
						return false, nil
					}
					return true, nil
				})
				if err != nil {
					return nil, nil, trace, err
				}
			}
		}

		level.EdgesAfter = adj.edgeCount()
		trace = append(trace, level)
		pc.logger.Debug("[PC] depth %d: %d tests, %d removed, %d edges left", depth, level.Tests, level.Removed, level.EdgesAfter)

		if level.Removed == 0 {
			break
		}
	}

	return adj, seps, trace, nil
}
