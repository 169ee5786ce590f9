// Package memory provides in-process implementations of the storage ports,
// used when no database is configured and in tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"gocausal/domain/causal"
	"gocausal/domain/core"
	"gocausal/ports"
)

// RunRepository keeps runs in a map guarded by a RWMutex
type RunRepository struct {
	mu   sync.RWMutex
	runs map[core.RunID]*causal.Run
}

// NewRunRepository creates an empty store
func NewRunRepository() *RunRepository {
	return &RunRepository{runs: make(map[core.RunID]*causal.Run)}
}

var _ ports.RunRepository = (*RunRepository)(nil)

// Save inserts or replaces a run. The stored value is a shallow copy; the
// graph is immutable and shared.
func (r *RunRepository) Save(ctx context.Context, run *causal.Run) error {
	if run == nil || run.ID == "" {
		return core.NewInputError("run without id")
	}
	cp := *run
	r.mu.Lock()
	r.runs[run.ID] = &cp
	r.mu.Unlock()
	return nil
}

// Get returns a copy of the stored run
func (r *RunRepository) Get(ctx context.Context, id core.RunID) (*causal.Run, error) {
	r.mu.RLock()
	run, ok := r.runs[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrRunNotFound, id)
	}
	cp := *run
	return &cp, nil
}

// List returns matching runs, newest first
func (r *RunRepository) List(ctx context.Context, filter ports.RunFilter) ([]*causal.Run, error) {
	r.mu.RLock()
	out := make([]*causal.Run, 0, len(r.runs))
	for _, run := range r.runs {
		if filter.Algorithm != "" && run.Algorithm != filter.Algorithm {
			continue
		}
		if filter.Label != "" && run.Label != filter.Label {
			continue
		}
		cp := *run
		out = append(out, &cp)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return []*causal.Run{}, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}
