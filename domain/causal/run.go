package causal

import (
	"time"

	"gocausal/domain/core"
)

// Algorithm identifies a discovery engine
type Algorithm string

const (
	AlgorithmPC  Algorithm = "pc"
	AlgorithmGES Algorithm = "ges"
)

// Valid reports whether a is a known engine
func (a Algorithm) Valid() bool {
	return a == AlgorithmPC || a == AlgorithmGES
}

// RunParams records the engine parameters a graph was learned with.
// Only the fields of the engine that ran are set.
type RunParams struct {
	Alpha          float64 `json:"alpha,omitempty"`
	MaxDepth       int     `json:"max_depth,omitempty"`
	UnboundedDepth bool    `json:"unbounded_depth,omitempty"`
	MaxIter        int     `json:"max_iter,omitempty"`
	Workers        int     `json:"workers,omitempty"`
	Acyclic        bool    `json:"acyclic,omitempty"`
}

// Run is one persisted discovery result together with its provenance
type Run struct {
	ID          core.RunID    `json:"id"`
	Label       string        `json:"label,omitempty"`
	Algorithm   Algorithm     `json:"algorithm"`
	Variables   []string      `json:"variables"`
	Tiers       TemporalTiers `json:"tiers,omitempty"`
	Params      RunParams     `json:"params"`
	Samples     int           `json:"samples"`
	DatasetHash core.Hash     `json:"dataset_hash"`
	Graph       *Graph        `json:"graph"`
	CreatedAt   time.Time     `json:"created_at"`
	Duration    time.Duration `json:"duration_ns"`
}
