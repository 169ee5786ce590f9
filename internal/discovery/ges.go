package discovery

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"gocausal/adapters/stats/linear"
	"gocausal/domain/causal"
	"gocausal/domain/core"
	"gocausal/domain/dataset"
	"gocausal/internal"

	"golang.org/x/sync/errgroup"
)

// GESConfig configures the score-based engine
type GESConfig struct {
	// MaxIter bounds the rounds of each phase.
	MaxIter int `json:"max_iter"`
	// Workers scores the candidates of a round concurrently. The chosen
	// edge does not depend on it.
	Workers int `json:"workers"`
	// Acyclic refuses additions that would close a directed cycle.
	Acyclic bool                 `json:"acyclic"`
	Tiers   causal.TemporalTiers `json:"tiers,omitempty"`
}

// DefaultGESConfig returns 100 rounds per phase on a single worker
func DefaultGESConfig() GESConfig {
	return GESConfig{
		MaxIter: 100,
		Workers: 1,
	}
}

// Validate rejects non-positive caps
func (c GESConfig) Validate() error {
	if c.MaxIter < 1 {
		return core.NewConfigError("max_iter", fmt.Sprintf("must be at least 1, got %d", c.MaxIter))
	}
	if c.Workers < 1 {
		return core.NewConfigError("workers", fmt.Sprintf("must be at least 1, got %d", c.Workers))
	}
	return c.Tiers.Validate()
}

// GESStep is one committed change of the search
type GESStep struct {
	Phase string      `json:"phase"`
	Edge  causal.Edge `json:"edge"`
	Delta float64     `json:"delta"`
}

const (
	PhaseForward  = "forward"
	PhaseBackward = "backward"
)

// GESTrace lists the committed steps of the last fit in order
type GESTrace struct {
	Steps []GESStep `json:"steps"`
}

// GES greedily adds, then removes, single edges while the BIC improves.
// Candidates violating the tier order are never scored. The result is
// fully directed.
type GES struct {
	config GESConfig
	tiers  causal.TierIndex
	logger *internal.Logger

	mu    sync.RWMutex
	graph *causal.Graph
	trace GESTrace
}

// NewGES validates the configuration and builds an engine
func NewGES(config GESConfig, logger *internal.Logger) (*GES, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	config.Tiers = config.Tiers.Clone()
	return &GES{
		config: config,
		tiers:  config.Tiers.Index(),
		logger: logger,
	}, nil
}

func (g *GES) Algorithm() causal.Algorithm {
	return causal.AlgorithmGES
}

func (g *GES) Params() causal.RunParams {
	return causal.RunParams{
		MaxIter: g.config.MaxIter,
		Workers: g.config.Workers,
		Acyclic: g.config.Acyclic,
	}
}

// Config returns a copy of the engine configuration
func (g *GES) Config() GESConfig {
	c := g.config
	c.Tiers = c.Tiers.Clone()
	return c
}

// Graph returns the result of the most recent successful Fit, or nil
func (g *GES) Graph() *causal.Graph {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.graph
}

// Trace returns the steps of the most recent successful Fit
func (g *GES) Trace() GESTrace {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.trace
}

// candidate is a proposed parent set for one child
type candidate struct {
	from, to int
	parents  []int
}

// Fit learns a DAG over variables (all columns when empty)
func (g *GES) Fit(ctx context.Context, data *dataset.Matrix, variables []string) (*causal.Graph, error) {
	selected, err := prepare(data, variables)
	if err != nil {
		return nil, err
	}
	names := selected.Names()
	cols := selected.Columns()
	p := len(names)

	g.logger.Debug("[GES] fitting %d variables on %d rows", p, selected.Rows())

	parents := make([][]int, p)
	var steps []GESStep

	for round := 0; round < g.config.MaxIter; round++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		best, delta, ok, err := g.bestCandidate(ctx, cols, parents, g.additions(names, parents))
		if err != nil {
			return nil, fmt.Errorf("ges forward round %d: %w", round, err)
		}
		if !ok {
			break
		}
		parents[best.to] = best.parents
		step := GESStep{Phase: PhaseForward, Edge: causal.Edge{From: names[best.from], To: names[best.to]}, Delta: delta}
		steps = append(steps, step)
		g.logger.Debug("[GES] add %s (delta %.4f)", step.Edge, delta)
	}

	for round := 0; round < g.config.MaxIter; round++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		best, delta, ok, err := g.bestCandidate(ctx, cols, parents, removals(parents))
		if err != nil {
			return nil, fmt.Errorf("ges backward round %d: %w", round, err)
		}
		if !ok {
			break
		}
		parents[best.to] = best.parents
		step := GESStep{Phase: PhaseBackward, Edge: causal.Edge{From: names[best.from], To: names[best.to]}, Delta: delta}
		steps = append(steps, step)
		g.logger.Debug("[GES] remove %s (delta %.4f)", step.Edge, delta)
	}

	var edges []causal.Edge
	for child, ps := range parents {
		for _, parent := range ps {
			edges = append(edges, causal.Edge{From: names[parent], To: names[child]})
		}
	}

	graph, err := causal.NewGraph(names, edges, nil)
	if err != nil {
		return nil, fmt.Errorf("ges result: %w", err)
	}

	g.mu.Lock()
	g.graph = graph
	g.trace = GESTrace{Steps: steps}
	g.mu.Unlock()

	return graph, nil
}

// additions enumerates pairs i<j that are not yet connected, proposing
// i -> j before j -> i. Each direction is checked against the tiers (and
// for cycles when enabled) before it is proposed.
func (g *GES) additions(names []string, parents [][]int) []candidate {
	var out []candidate
	p := len(parents)
	for i := 0; i < p; i++ {
		for j := i + 1; j < p; j++ {
			if containsIndex(parents[j], i) || containsIndex(parents[i], j) {
				continue
			}
			if g.allowed(names, parents, i, j) {
				out = append(out, candidate{from: i, to: j, parents: withIndex(parents[j], i)})
			}
			if g.allowed(names, parents, j, i) {
				out = append(out, candidate{from: j, to: i, parents: withIndex(parents[i], j)})
			}
		}
	}
	return out
}

func (g *GES) allowed(names []string, parents [][]int, from, to int) bool {
	if !g.tiers.Permits(names[from], names[to]) {
		return false
	}
	if g.config.Acyclic && isAncestor(parents, to, from) {
		return false
	}
	return true
}

// removals enumerates every existing edge, children then parents ascending
func removals(parents [][]int) []candidate {
	var out []candidate
	for child, ps := range parents {
		for _, parent := range ps {
			out = append(out, candidate{from: parent, to: child, parents: withoutIndex(ps, parent)})
		}
	}
	return out
}

// bestCandidate scores every candidate against its child's current score
// and returns the first one with the strictly largest positive delta.
func (g *GES) bestCandidate(ctx context.Context, cols [][]float64, parents [][]int, cands []candidate) (candidate, float64, bool, error) {
	if len(cands) == 0 {
		return candidate{}, 0, false, nil
	}

	base := make(map[int]float64)
	for _, c := range cands {
		if _, ok := base[c.to]; ok {
			continue
		}
		s, err := linear.BIC(cols, c.to, parents[c.to])
		if err != nil {
			return candidate{}, 0, false, err
		}
		base[c.to] = s
	}

	scores, err := g.score(ctx, cols, cands)
	if err != nil {
		return candidate{}, 0, false, err
	}

	bestIdx, bestDelta := -1, 0.0
	for idx, c := range cands {
		if delta := scores[idx] - base[c.to]; delta > bestDelta {
			bestIdx, bestDelta = idx, delta
		}
	}
	if bestIdx < 0 {
		return candidate{}, 0, false, nil
	}
	return cands[bestIdx], bestDelta, true, nil
}

// score computes the BIC of every candidate parent set, concurrently when
// more than one worker is configured. Results are indexed like cands.
func (g *GES) score(ctx context.Context, cols [][]float64, cands []candidate) ([]float64, error) {
	scores := make([]float64, len(cands))

	if g.config.Workers == 1 {
		for idx, c := range cands {
			s, err := linear.BIC(cols, c.to, c.parents)
			if err != nil {
				return nil, err
			}
			scores[idx] = s
		}
		return scores, nil
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.config.Workers)
	for idx, c := range cands {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			s, err := linear.BIC(cols, c.to, c.parents)
			if err != nil {
				return err
			}
			scores[idx] = s
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return scores, nil
}

// isAncestor reports whether anc reaches node by following parent links
// upward from node.
func isAncestor(parents [][]int, anc, node int) bool {
	seen := make([]bool, len(parents))
	stack := []int{node}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, par := range parents[n] {
			if par == anc {
				return true
			}
			if !seen[par] {
				seen[par] = true
				stack = append(stack, par)
			}
		}
	}
	return false
}

func withIndex(set []int, v int) []int {
	out := append(append([]int(nil), set...), v)
	sort.Ints(out)
	return out
}

func withoutIndex(set []int, v int) []int {
	out := make([]int, 0, len(set))
	for _, x := range set {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}
