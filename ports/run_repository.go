package ports

import (
	"context"

	"gocausal/domain/causal"
	"gocausal/domain/core"
)

// RunFilter narrows a run listing. Zero values match everything; a zero
// Limit means no limit.
type RunFilter struct {
	Algorithm causal.Algorithm
	Label     string
	Limit     int
	Offset    int
}

// RunRepository defines the interface for discovery run storage
type RunRepository interface {
	Save(ctx context.Context, run *causal.Run) error
	Get(ctx context.Context, id core.RunID) (*causal.Run, error)
	// List returns runs newest first
	List(ctx context.Context, filter RunFilter) ([]*causal.Run, error)
}
