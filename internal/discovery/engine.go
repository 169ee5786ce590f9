// Package discovery learns causal graphs from numeric data. PC prunes a
// complete graph with partial-correlation tests and orients what it can;
// GES hill-climbs the BIC score over parent sets.
package discovery

import (
	"context"

	"gocausal/domain/causal"
	"gocausal/domain/core"
	"gocausal/domain/dataset"
)

// Engine is a configured discovery algorithm. Fit is safe to call from
// several goroutines; each call works on its own state.
type Engine interface {
	Algorithm() causal.Algorithm
	Params() causal.RunParams
	Fit(ctx context.Context, data *dataset.Matrix, variables []string) (*causal.Graph, error)
}

// prepare selects the variables (all columns when empty) and rejects data
// the statistics cannot run on.
func prepare(data *dataset.Matrix, variables []string) (*dataset.Matrix, error) {
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
	return selected, nil
}
