package mechanism

import (
	"testing"

	"gocausal/domain/causal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func studyGraph(t *testing.T) *causal.Graph {
	t.Helper()
	nodes := []string{"age", "baseline_ip_ct", "intervention_any", "pharmacy_any", "followup_ip_ct", "followup_ed_ct"}
	g, err := causal.NewGraph(nodes, []causal.Edge{
		{From: "age", To: "intervention_any"},
		{From: "baseline_ip_ct", To: "followup_ip_ct"},
		{From: "intervention_any", To: "pharmacy_any"},
		{From: "pharmacy_any", To: "followup_ip_ct"},
		{From: "intervention_any", To: "followup_ed_ct"},
	}, []causal.Edge{
		{From: "age", To: "followup_ed_ct"},
	})
	require.NoError(t, err)
	return g
}

func TestRoleRules_Assign(t *testing.T) {
	roles := DefaultRoleRules().Assign(studyGraph(t).Nodes())

	assert.Equal(t, []string{"intervention_any"}, roles.Treatments)
	assert.Equal(t, []string{"followup_ip_ct", "followup_ed_ct"}, roles.Outcomes)
	assert.Equal(t, []string{"age", "baseline_ip_ct"}, roles.Baseline)
}

func TestRoleRules_BaselineNamesWithStudyTerms(t *testing.T) {
	roles := DefaultRoleRules().Assign([]string{"baseline_therapy_ct", "therapy_any", "intervention_chw", "followup_therapy_ct"})

	assert.Equal(t, []string{"intervention_chw"}, roles.Treatments)
	assert.Equal(t, []string{"baseline_therapy_ct"}, roles.Baseline)
	assert.Equal(t, []string{"followup_therapy_ct"}, roles.Outcomes)
}

func TestRolesFromTiers(t *testing.T) {
	tiers := causal.TemporalTiers{{"X1", "X2"}, {"X3"}, {"Y"}}
	roles := RolesFromTiers(tiers, []string{"X1", "X2", "X3", "Y", "Z"})

	assert.Equal(t, []string{"X1", "X2"}, roles.Baseline)
	assert.Equal(t, []string{"X3"}, roles.Treatments)
	assert.Equal(t, []string{"Y"}, roles.Outcomes)

	single := RolesFromTiers(causal.TemporalTiers{{"A", "B"}}, []string{"A", "B"})
	assert.Equal(t, []string{"A", "B"}, single.Baseline)
	assert.Empty(t, single.Outcomes)
}

func TestAnalyze(t *testing.T) {
	g := studyGraph(t)
	a := Analyze(g, causal.AlgorithmPC, DefaultRoleRules().Assign(g.Nodes()))

	assert.Equal(t, 6, a.Nodes)
	assert.Equal(t, 5, a.Edges)
	assert.ElementsMatch(t, []Effect{
		{Treatment: "intervention_any", Outcome: "pharmacy_any"},
		{Treatment: "intervention_any", Outcome: "followup_ed_ct"},
	}, a.InterventionEffects)
	assert.Equal(t, map[string][]string{"followup_ip_ct": {"baseline_ip_ct"}}, a.BaselinePredictors)
	assert.Equal(t, []Driver{{Driver: "age", Treatment: "intervention_any"}}, a.InterventionDrivers)
	assert.Equal(t, []Pathway{{Treatment: "intervention_any", Mediator: "pharmacy_any", Outcome: "followup_ip_ct"}}, a.MediatingPathways)
}

func TestAnalyze_IgnoresUndirectedEdges(t *testing.T) {
	g, err := causal.NewGraph([]string{"baseline_x", "followup_y"}, nil, []causal.Edge{{From: "baseline_x", To: "followup_y"}})
	require.NoError(t, err)

	a := Analyze(g, causal.AlgorithmPC, DefaultRoleRules().Assign(g.Nodes()))
	assert.Empty(t, a.BaselinePredictors)
	assert.Empty(t, a.InterventionEffects)
}

func TestCompareEdges(t *testing.T) {
	nodes := []string{"intervention_any", "followup_ip_ct", "followup_ed_ct", "age"}
	high, err := causal.NewGraph(nodes, []causal.Edge{
		{From: "intervention_any", To: "followup_ip_ct"},
		{From: "intervention_any", To: "followup_ed_ct"},
		{From: "age", To: "followup_ed_ct"},
	}, nil)
	require.NoError(t, err)
	low, err := causal.NewGraph(nodes, []causal.Edge{
		{From: "intervention_any", To: "followup_ed_ct"},
		{From: "age", To: "intervention_any"},
	}, nil)
	require.NoError(t, err)

	c := CompareEdges(high, low, Touching("intervention"))
	assert.Equal(t, []causal.Edge{{From: "intervention_any", To: "followup_ed_ct"}}, c.Common)
	assert.Equal(t, []causal.Edge{{From: "intervention_any", To: "followup_ip_ct"}}, c.OnlyA)
	assert.Equal(t, []causal.Edge{{From: "age", To: "intervention_any"}}, c.OnlyB)

	all := CompareEdges(high, low, nil)
	assert.Len(t, all.OnlyA, 2)
}
