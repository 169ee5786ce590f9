package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gocausal/domain/causal"
	"gocausal/domain/core"
	"gocausal/domain/dataset"
	"gocausal/internal"
	"gocausal/internal/discovery"
	"gocausal/internal/mechanism"
	"gocausal/internal/profiling"
	"gocausal/ports"
)

// DiscoveryRequest describes one discovery job over an in-memory matrix
type DiscoveryRequest struct {
	Label      string
	Data       *dataset.Matrix
	Variables  []string // empty selects every column
	Tiers      causal.TemporalTiers
	Algorithms []causal.Algorithm // run in order; empty runs PC then GES
	PC         discovery.PCConfig
	GES        discovery.GESConfig
}

// ParseAlgorithms maps "pc", "ges" or "both" (also the empty string) to the
// engines to run.
func ParseAlgorithms(s string) ([]causal.Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "both":
		return []causal.Algorithm{causal.AlgorithmPC, causal.AlgorithmGES}, nil
	case string(causal.AlgorithmPC):
		return []causal.Algorithm{causal.AlgorithmPC}, nil
	case string(causal.AlgorithmGES):
		return []causal.Algorithm{causal.AlgorithmGES}, nil
	}
	return nil, core.NewInputError("unknown algorithm %q (want pc, ges or both)", s)
}

// DiscoveryService runs engines and records their results
type DiscoveryService struct {
	runs     ports.RunRepository
	profiler *profiling.DataProfiler
	logger   *internal.Logger
	now      func() time.Time
}

// NewDiscoveryService creates a service persisting to runs
func NewDiscoveryService(runs ports.RunRepository, logger *internal.Logger) *DiscoveryService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &DiscoveryService{
		runs:     runs,
		profiler: profiling.NewDataProfiler(),
		logger:   logger,
		now:      time.Now,
	}
}

// Discover selects the variables, fits each requested engine on the same
// selection and persists one run per engine. Tier names outside the
// selection are dropped from the stored run. Any engine failure aborts the
// job; runs already saved are kept.
func (s *DiscoveryService) Discover(ctx context.Context, req DiscoveryRequest) ([]*causal.Run, error) {
	if req.Data == nil {
		return nil, core.NewInputError("no data supplied")
	}
	if err := req.Tiers.Validate(); err != nil {
		return nil, err
	}

	algorithms := req.Algorithms
	if len(algorithms) == 0 {
		algorithms, _ = ParseAlgorithms("")
	}

	selected, err := req.Data.Select(req.Variables)
	if err != nil {
		return nil, err
	}
	hash := selected.Fingerprint()
	s.warnAboutData(selected)
	tiers := req.Tiers.Restrict(selected.Names())

	var runs []*causal.Run
	for _, alg := range algorithms {
		engine, err := s.engine(alg, req, tiers)
		if err != nil {
			return runs, err
		}

		start := s.now()
		graph, err := engine.Fit(ctx, selected, nil)
		if err != nil {
			return runs, fmt.Errorf("%s fit: %w", alg, err)
		}

		run := &causal.Run{
			ID:          core.NewRunID(),
			Label:       req.Label,
			Algorithm:   alg,
			Variables:   selected.Names(),
			Tiers:       tiers.Clone(),
			Params:      engine.Params(),
			Samples:     selected.Rows(),
			DatasetHash: hash,
			Graph:       graph,
			CreatedAt:   start.UTC(),
			Duration:    s.now().Sub(start),
		}
		if err := s.runs.Save(ctx, run); err != nil {
			return runs, fmt.Errorf("save %s run: %w", alg, err)
		}

		s.logger.Info("[Discovery] %s run %s: %d directed, %d undirected edges over %d variables (n=%d, %s)",
			alg, run.ID, len(graph.Edges()), len(graph.UndirectedEdges()), len(run.Variables), run.Samples, run.Duration.Round(time.Millisecond))
		runs = append(runs, run)
	}
	return runs, nil
}

func (s *DiscoveryService) warnAboutData(m *dataset.Matrix) {
	if m.Rows() == 0 {
		return
	}
	profiles, err := s.profiler.ProfileMatrix(m)
	if err != nil {
		s.logger.Warn("[Discovery] profiling skipped: %v", err)
		return
	}
	for _, w := range profiling.Warnings(profiles) {
		s.logger.Warn("[Discovery] %s", w)
	}
}

// Profile summarises the selected variables of data
func (s *DiscoveryService) Profile(data *dataset.Matrix, variables []string) ([]profiling.VariableProfile, error) {
	if data == nil {
		return nil, core.NewInputError("no data supplied")
	}
	selected, err := data.Select(variables)
	if err != nil {
		return nil, err
	}
	if selected.Rows() == 0 {
		return nil, core.NewInputError("dataset has no rows")
	}
	return s.profiler.ProfileMatrix(selected)
}

func (s *DiscoveryService) engine(alg causal.Algorithm, req DiscoveryRequest, tiers causal.TemporalTiers) (discovery.Engine, error) {
	switch alg {
	case causal.AlgorithmPC:
		cfg := req.PC
		cfg.Tiers = tiers
		pc, err := discovery.NewPC(cfg, s.logger)
		if err != nil {
			return nil, err
		}
		return pc, nil
	case causal.AlgorithmGES:
		cfg := req.GES
		cfg.Tiers = tiers
		ges, err := discovery.NewGES(cfg, s.logger)
		if err != nil {
			return nil, err
		}
		return ges, nil
	}
	return nil, core.NewInputError("unknown algorithm %q", alg)
}

// Get returns a stored run
func (s *DiscoveryService) Get(ctx context.Context, id core.RunID) (*causal.Run, error) {
	return s.runs.Get(ctx, id)
}

// List returns stored runs, newest first
func (s *DiscoveryService) List(ctx context.Context, filter ports.RunFilter) ([]*causal.Run, error) {
	return s.runs.List(ctx, filter)
}

// Roles picks node roles for a run: from rules when given, otherwise from
// the run's tiers, otherwise from the default keyword rules.
func Roles(run *causal.Run, rules *mechanism.RoleRules) mechanism.Roles {
	switch {
	case rules != nil:
		return rules.Assign(run.Variables)
	case len(run.Tiers) > 0:
		return mechanism.RolesFromTiers(run.Tiers, run.Variables)
	default:
		return mechanism.DefaultRoleRules().Assign(run.Variables)
	}
}

// Mechanisms analyses a stored run
func (s *DiscoveryService) Mechanisms(ctx context.Context, id core.RunID, rules *mechanism.RoleRules) (*causal.Run, *mechanism.Analysis, error) {
	run, err := s.runs.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if run.Graph == nil {
		return nil, nil, core.NewInputError("run %s has no graph", id)
	}
	return run, mechanism.Analyze(run.Graph, run.Algorithm, Roles(run, rules)), nil
}

// Compare contrasts the directed edges of two stored runs, keeping edges
// that touch a node starting with prefix (all edges when prefix is empty).
func (s *DiscoveryService) Compare(ctx context.Context, a, b core.RunID, prefix string) (mechanism.Comparison, error) {
	runA, err := s.runs.Get(ctx, a)
	if err != nil {
		return mechanism.Comparison{}, err
	}
	runB, err := s.runs.Get(ctx, b)
	if err != nil {
		return mechanism.Comparison{}, err
	}
	if runA.Graph == nil || runB.Graph == nil {
		return mechanism.Comparison{}, core.NewInputError("both runs need a graph")
	}

	var filter mechanism.EdgeFilter
	if prefix != "" {
		filter = mechanism.Touching(prefix)
	}
	return mechanism.CompareEdges(runA.Graph, runB.Graph, filter), nil
}
