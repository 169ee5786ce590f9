package app

import (
	"context"
	"testing"

	"gocausal/adapters/memory"
	"gocausal/domain/causal"
	"gocausal/domain/core"
	"gocausal/domain/dataset"
	"gocausal/internal"
	"gocausal/internal/discovery"
	"gocausal/internal/mechanism"
	"gocausal/internal/testkit"
	"gocausal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService() (*DiscoveryService, *memory.RunRepository) {
	repo := memory.NewRunRepository()
	return NewDiscoveryService(repo, internal.Discard()), repo
}

func mediationRequest(t *testing.T) DiscoveryRequest {
	t.Helper()
	m, tiers, err := testkit.GenerateMediation(testkit.SyntheticConfig{Samples: 800, Seed: 11})
	require.NoError(t, err)
	pc := discovery.DefaultPCConfig()
	pc.MaxConditioningSetSize = 2
	return DiscoveryRequest{
		Label: "mediation",
		Data:  m,
		Tiers: tiers,
		PC:    pc,
		GES:   discovery.DefaultGESConfig(),
	}
}

func TestParseAlgorithms(t *testing.T) {
	both, err := ParseAlgorithms("both")
	require.NoError(t, err)
	assert.Equal(t, []causal.Algorithm{causal.AlgorithmPC, causal.AlgorithmGES}, both)

	def, err := ParseAlgorithms("")
	require.NoError(t, err)
	assert.Equal(t, both, def)

	ges, err := ParseAlgorithms(" GES ")
	require.NoError(t, err)
	assert.Equal(t, []causal.Algorithm{causal.AlgorithmGES}, ges)

	_, err = ParseAlgorithms("fci")
	assert.True(t, core.IsInputError(err))
}

func TestDiscover_BothEngines(t *testing.T) {
	svc, repo := newService()
	ctx := context.Background()
	req := mediationRequest(t)

	runs, err := svc.Discover(ctx, req)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, causal.AlgorithmPC, runs[0].Algorithm)
	assert.Equal(t, causal.AlgorithmGES, runs[1].Algorithm)
	for _, run := range runs {
		assert.Equal(t, "mediation", run.Label)
		assert.Equal(t, 800, run.Samples)
		assert.Equal(t, testkit.MediationVariables, run.Variables)
		assert.Equal(t, req.Data.Fingerprint(), run.DatasetHash)
		assert.Equal(t, req.Tiers, run.Tiers)
		require.NotNil(t, run.Graph)
	}
	assert.Equal(t, 0.05, runs[0].Params.Alpha)
	assert.Equal(t, 100, runs[1].Params.MaxIter)
	assert.Empty(t, runs[1].Graph.UndirectedEdges())

	stored, err := repo.List(ctx, ports.RunFilter{})
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestDiscover_VariableSelection(t *testing.T) {
	svc, _ := newService()
	req := mediationRequest(t)
	req.Variables = []string{"X3", "Y"}
	req.Algorithms = []causal.Algorithm{causal.AlgorithmGES}

	runs, err := svc.Discover(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, []string{"X3", "Y"}, runs[0].Graph.Nodes())
	assert.True(t, runs[0].Graph.HasDirected("X3", "Y"))

	// unselected tier members are dropped, tier numbering is kept
	assert.Equal(t, causal.TemporalTiers{{}, {"X3"}, {"Y"}}, runs[0].Tiers)
	assert.Equal(t, causal.TemporalTiers{{"X1", "X2"}, {"X3"}, {"Y"}}, req.Tiers)

	roles := Roles(runs[0], nil)
	assert.Equal(t, []string{"X3"}, roles.Treatments)
	assert.Equal(t, []string{"Y"}, roles.Outcomes)
}

func TestDiscover_Errors(t *testing.T) {
	svc, repo := newService()
	ctx := context.Background()

	_, err := svc.Discover(ctx, DiscoveryRequest{})
	assert.True(t, core.IsInputError(err))

	req := mediationRequest(t)
	req.PC.Alpha = 2
	_, err = svc.Discover(ctx, req)
	assert.True(t, core.IsConfigError(err))

	req = mediationRequest(t)
	req.Tiers = causal.TemporalTiers{{"X1"}, {"X1"}}
	_, err = svc.Discover(ctx, req)
	assert.True(t, core.IsConfigError(err))

	small, err := dataset.NewMatrix([]string{"a", "b"}, [][]float64{{1, 2}, {2, 1}, {3, 3}})
	require.NoError(t, err)
	_, err = svc.Discover(ctx, DiscoveryRequest{
		Data:       small,
		Algorithms: []causal.Algorithm{causal.AlgorithmPC},
		PC:         discovery.DefaultPCConfig(),
	})
	assert.True(t, core.IsDegenerateError(err))

	stored, err := repo.List(ctx, ports.RunFilter{})
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestMechanismsAndCompare(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	runs, err := svc.Discover(ctx, mediationRequest(t))
	require.NoError(t, err)
	ges := runs[1]

	run, analysis, err := svc.Mechanisms(ctx, ges.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, ges.ID, run.ID)
	// tiers make X3 the intervention and Y the outcome
	assert.Equal(t, []string{"X3"}, analysis.Roles.Treatments)
	assert.Contains(t, analysis.InterventionEffects, mechanismEffect("X3", "Y"))

	same, err := svc.Compare(ctx, ges.ID, ges.ID, "")
	require.NoError(t, err)
	assert.Equal(t, ges.Graph.Edges(), same.Common)
	assert.Empty(t, same.OnlyA)

	cmp, err := svc.Compare(ctx, runs[0].ID, ges.ID, "X3")
	require.NoError(t, err)
	for _, e := range append(cmp.Common, cmp.OnlyB...) {
		assert.True(t, e.From == "X3" || e.To == "X3")
	}

	_, _, err = svc.Mechanisms(ctx, core.NewRunID(), nil)
	assert.True(t, core.IsNotFoundError(err))
}

func mechanismEffect(treatment, outcome string) mechanism.Effect {
	return mechanism.Effect{Treatment: treatment, Outcome: outcome}
}

func TestProfile(t *testing.T) {
	svc, _ := newService()
	req := mediationRequest(t)

	profiles, err := svc.Profile(req.Data, []string{"Y", "X1"})
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, "Y", profiles[0].Name)
	assert.Equal(t, 800, profiles[0].N)

	_, err = svc.Profile(nil, nil)
	assert.True(t, core.IsInputError(err))
	_, err = svc.Profile(req.Data, []string{"nope"})
	assert.True(t, core.IsInputError(err))
}
