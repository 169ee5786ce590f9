package testkit

import (
	"fmt"
	"math/rand"

	"gocausal/domain/causal"
	"gocausal/domain/dataset"
)

// SyntheticConfig configures the linear-Gaussian data generator
type SyntheticConfig struct {
	Samples int   `json:"samples"`
	Seed    int64 `json:"seed"`
}

// DefaultSyntheticConfig returns the sample size used by the recovery checks
func DefaultSyntheticConfig() SyntheticConfig {
	return SyntheticConfig{
		Samples: 1000,
		Seed:    42,
	}
}

// SyntheticGenerator draws samples from small structural equation models
type SyntheticGenerator struct {
	config SyntheticConfig
	rng    *rand.Rand
}

// NewSyntheticGenerator creates a generator with its own seeded source
func NewSyntheticGenerator(config SyntheticConfig) *SyntheticGenerator {
	return &SyntheticGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// MediationVariables are the column names of the mediation scenario
var MediationVariables = []string{"X1", "X2", "X3", "Y"}

// MediationTiers orders the mediation scenario: causes, mediator, outcome
func MediationTiers() causal.TemporalTiers {
	return causal.TemporalTiers{{"X1", "X2"}, {"X3"}, {"Y"}}
}

// MediationTruth is the data generating structure of GenerateMediation
func MediationTruth() []causal.Edge {
	return []causal.Edge{
		{From: "X1", To: "X3"},
		{From: "X1", To: "Y"},
		{From: "X2", To: "X3"},
		{From: "X3", To: "Y"},
	}
}

// Mediation samples
//
//	X1, X2 ~ N(0,1)
//	X3 = 0.5*X1 + 0.5*X2 + 0.5*e3
//	Y  = 0.6*X1 + 0.7*X3 + 0.5*eY
func (g *SyntheticGenerator) Mediation() (*dataset.Matrix, error) {
	rows := make([][]float64, g.config.Samples)
	for r := range rows {
		x1 := g.rng.NormFloat64()
		x2 := g.rng.NormFloat64()
		x3 := 0.5*x1 + 0.5*x2 + 0.5*g.rng.NormFloat64()
		y := 0.6*x1 + 0.7*x3 + 0.5*g.rng.NormFloat64()
		rows[r] = []float64{x1, x2, x3, y}
	}
	return dataset.NewMatrix(MediationVariables, rows)
}

// Chain samples V1 -> V2 -> ... -> Vlength with coefficient 0.8 and unit
// noise on every link.
func (g *SyntheticGenerator) Chain(length int) (*dataset.Matrix, error) {
	if length < 2 {
		return nil, fmt.Errorf("chain needs at least 2 variables, got %d", length)
	}

	names := ChainVariables(length)
	rows := make([][]float64, g.config.Samples)
	for r := range rows {
		row := make([]float64, length)
		row[0] = g.rng.NormFloat64()
		for k := 1; k < length; k++ {
			row[k] = 0.8*row[k-1] + g.rng.NormFloat64()
		}
		rows[r] = row
	}
	return dataset.NewMatrix(names, rows)
}

// ChainVariables names the columns produced by Chain
func ChainVariables(length int) []string {
	names := make([]string, length)
	for k := range names {
		names[k] = fmt.Sprintf("V%d", k+1)
	}
	return names
}

// GenerateMediation is a convenience wrapper returning the mediation matrix
// together with its tiers.
func GenerateMediation(config SyntheticConfig) (*dataset.Matrix, causal.TemporalTiers, error) {
	m, err := NewSyntheticGenerator(config).Mediation()
	if err != nil {
		return nil, nil, err
	}
	return m, MediationTiers(), nil
}

// GenerateChain is a convenience wrapper around Chain
func GenerateChain(config SyntheticConfig, length int) (*dataset.Matrix, error) {
	return NewSyntheticGenerator(config).Chain(length)
}
