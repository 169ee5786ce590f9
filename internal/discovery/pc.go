package discovery

import (
	"context"
	"fmt"
	"sync"

	"gocausal/domain/causal"
	"gocausal/domain/core"
	"gocausal/domain/dataset"
	"gocausal/internal"
)

// PCConfig configures the constraint-based engine
type PCConfig struct {
	// Alpha is the significance level; p > Alpha means independent.
	Alpha float64 `json:"alpha"`
	// MaxConditioningSetSize caps the depth of the skeleton search.
	MaxConditioningSetSize int `json:"max_conditioning_set_size"`
	// UnboundedDepth ignores MaxConditioningSetSize and searches up to p-2.
	UnboundedDepth bool                 `json:"unbounded_depth"`
	Tiers          causal.TemporalTiers `json:"tiers,omitempty"`
}

// DefaultPCConfig returns alpha 0.05 with conditioning sets up to size 3
func DefaultPCConfig() PCConfig {
	return PCConfig{
		Alpha:                  0.05,
		MaxConditioningSetSize: 3,
	}
}

// Validate rejects parameters that would make the search meaningless
func (c PCConfig) Validate() error {
	if !(c.Alpha > 0 && c.Alpha < 1) {
		return core.NewConfigError("alpha", fmt.Sprintf("must be in (0, 1), got %g", c.Alpha))
	}
	if !c.UnboundedDepth && c.MaxConditioningSetSize < 1 {
		return core.NewConfigError("max_conditioning_set_size",
			fmt.Sprintf("must be at least 1 unless the depth is unbounded, got %d", c.MaxConditioningSetSize))
	}
	return c.Tiers.Validate()
}

// PCTrace describes the last fit: per-depth skeleton statistics and how
// orientation went.
type PCTrace struct {
	Depths        []DepthStats  `json:"depths"`
	ColliderArcs  int           `json:"collider_arcs"`
	MeekPasses    int           `json:"meek_passes"`
	TierDiscarded []causal.Edge `json:"tier_discarded,omitempty"`
}

// PC learns a CPDAG: skeleton search, collider orientation, Meek rules 1
// and 2, then a post-hoc temporal filter on directed edges.
type PC struct {
	config PCConfig
	tiers  causal.TierIndex
	logger *internal.Logger

	mu    sync.RWMutex
	graph *causal.Graph
	trace PCTrace
}

// NewPC validates the configuration and builds an engine. A nil logger
// falls back to the package default.
func NewPC(config PCConfig, logger *internal.Logger) (*PC, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	config.Tiers = config.Tiers.Clone()
	return &PC{
		config: config,
		tiers:  config.Tiers.Index(),
		logger: logger,
	}, nil
}

func (pc *PC) Algorithm() causal.Algorithm {
	return causal.AlgorithmPC
}

func (pc *PC) Params() causal.RunParams {
	return causal.RunParams{
		Alpha:          pc.config.Alpha,
		MaxDepth:       pc.config.MaxConditioningSetSize,
		UnboundedDepth: pc.config.UnboundedDepth,
	}
}

// Config returns a copy of the engine configuration
func (pc *PC) Config() PCConfig {
	c := pc.config
	c.Tiers = c.Tiers.Clone()
	return c
}

// Graph returns the result of the most recent successful Fit, or nil
func (pc *PC) Graph() *causal.Graph {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	return pc.graph
}

// Trace returns diagnostics of the most recent successful Fit
func (pc *PC) Trace() PCTrace {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	return pc.trace
}

func (pc *PC) maxDepth(p int) int {
	if pc.config.UnboundedDepth {
		return p - 2
	}
	return pc.config.MaxConditioningSetSize
}

// Fit learns a graph over variables (all columns when empty). Any failing
// independence test aborts the fit; no partial graph is returned.
func (pc *PC) Fit(ctx context.Context, data *dataset.Matrix, variables []string) (*causal.Graph, error) {
	selected, err := prepare(data, variables)
	if err != nil {
		return nil, err
	}
	names := selected.Names()
	cols := selected.Columns()

	pc.logger.Debug("[PC] fitting %d variables on %d rows (alpha=%g)", len(names), selected.Rows(), pc.config.Alpha)

	adj, seps, depths, err := pc.skeleton(ctx, cols, pc.maxDepth(len(names)))
	if err != nil {
		return nil, fmt.Errorf("pc skeleton: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	o := newOrientation(adj)
	o.orientColliders(seps)
	colliderArcs := len(o.directed)
	passes := o.propagate()

	var directed, discarded []causal.Edge
	for _, a := range o.sortedDirected() {
		e := causal.Edge{From: names[a.from], To: names[a.to]}
		if !pc.tiers.Permits(e.From, e.To) {
			discarded = append(discarded, e)
			continue
		}
		directed = append(directed, e)
	}
	if len(discarded) > 0 {
		pc.logger.Debug("[PC] dropped %d directed edges against tier order", len(discarded))
	}

	var undirected []causal.Edge
	for _, k := range o.sortedUndirected() {
		undirected = append(undirected, causal.Edge{From: names[k.a], To: names[k.b]})
	}

	graph, err := causal.NewGraph(names, directed, undirected)
	if err != nil {
		return nil, fmt.Errorf("pc result: %w", err)
	}

	pc.mu.Lock()
	pc.graph = graph
	pc.trace = PCTrace{
		Depths:        depths,
		ColliderArcs:  colliderArcs,
		MeekPasses:    passes,
		TierDiscarded: discarded,
	}
	pc.mu.Unlock()

	return graph, nil
}
