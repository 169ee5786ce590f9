package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gocausal/domain/causal"
	"gocausal/domain/core"
	apperrors "gocausal/internal/errors"
	"gocausal/ports"

	"github.com/jmoiron/sqlx"
)

// runRepository implements the RunRepository interface
type runRepository struct {
	db *sqlx.DB
}

// NewRunRepository creates a new run repository
func NewRunRepository(db *sqlx.DB) ports.RunRepository {
	return &runRepository{db: db}
}

// runRow mirrors one discovery_runs record
type runRow struct {
	ID          string    `db:"id"`
	Label       string    `db:"label"`
	Algorithm   string    `db:"algorithm"`
	Variables   []byte    `db:"variables"`
	Tiers       []byte    `db:"tiers"`
	Params      []byte    `db:"params"`
	Samples     int       `db:"samples"`
	DatasetHash string    `db:"dataset_hash"`
	Graph       []byte    `db:"graph"`
	CreatedAt   time.Time `db:"created_at"`
	DurationMS  int64     `db:"duration_ms"`
}

const runColumns = `id, label, algorithm, variables, tiers, params, samples, dataset_hash, graph, created_at, duration_ms`

// Save inserts a run, replacing any run with the same id
func (r *runRepository) Save(ctx context.Context, run *causal.Run) error {
	row, err := toRow(run)
	if err != nil {
		return err
	}

	query := `INSERT INTO discovery_runs (` + runColumns + `)
	VALUES (
		:id, :label, :algorithm, :variables, :tiers, :params, :samples, :dataset_hash, :graph, :created_at, :duration_ms
	)
	ON CONFLICT (id) DO UPDATE SET
		label = EXCLUDED.label,
		algorithm = EXCLUDED.algorithm,
		variables = EXCLUDED.variables,
		tiers = EXCLUDED.tiers,
		params = EXCLUDED.params,
		samples = EXCLUDED.samples,
		dataset_hash = EXCLUDED.dataset_hash,
		graph = EXCLUDED.graph,
		created_at = EXCLUDED.created_at,
		duration_ms = EXCLUDED.duration_ms`

	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return apperrors.DatabaseError(err, "failed to save run %s", run.ID)
	}
	return nil
}

// Get retrieves a run by its ID
func (r *runRepository) Get(ctx context.Context, id core.RunID) (*causal.Run, error) {
	var row runRow
	err := r.db.GetContext(ctx, &row, `SELECT `+runColumns+` FROM discovery_runs WHERE id = $1`, string(id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", core.ErrRunNotFound, id)
		}
		return nil, apperrors.DatabaseError(err, "failed to get run %s", id)
	}
	return fromRow(row)
}

// List retrieves runs newest first
func (r *runRepository) List(ctx context.Context, filter ports.RunFilter) ([]*causal.Run, error) {
	query, args := listQuery(filter)

	var rows []runRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, apperrors.DatabaseError(err, "failed to list runs")
	}

	runs := make([]*causal.Run, 0, len(rows))
	for _, row := range rows {
		run, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}

func listQuery(filter ports.RunFilter) (string, []interface{}) {
	var (
		where []string
		args  []interface{}
	)
	if filter.Algorithm != "" {
		args = append(args, string(filter.Algorithm))
		where = append(where, fmt.Sprintf("algorithm = $%d", len(args)))
	}
	if filter.Label != "" {
		args = append(args, filter.Label)
		where = append(where, fmt.Sprintf("label = $%d", len(args)))
	}

	query := `SELECT ` + runColumns + ` FROM discovery_runs`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, id DESC`

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	return query, args
}

func toRow(run *causal.Run) (runRow, error) {
	if run == nil || run.ID == "" {
		return runRow{}, core.NewInputError("run without id")
	}

	variables, err := json.Marshal(run.Variables)
	if err != nil {
		return runRow{}, fmt.Errorf("failed to marshal variables: %w", err)
	}
	tiers, err := json.Marshal(run.Tiers)
	if err != nil {
		return runRow{}, fmt.Errorf("failed to marshal tiers: %w", err)
	}
	params, err := json.Marshal(run.Params)
	if err != nil {
		return runRow{}, fmt.Errorf("failed to marshal params: %w", err)
	}
	graph, err := json.Marshal(run.Graph)
	if err != nil {
		return runRow{}, fmt.Errorf("failed to marshal graph: %w", err)
	}

	return runRow{
		ID:          string(run.ID),
		Label:       run.Label,
		Algorithm:   string(run.Algorithm),
		Variables:   variables,
		Tiers:       tiers,
		Params:      params,
		Samples:     run.Samples,
		DatasetHash: run.DatasetHash.String(),
		Graph:       graph,
		CreatedAt:   run.CreatedAt,
		DurationMS:  run.Duration.Milliseconds(),
	}, nil
}

func fromRow(row runRow) (*causal.Run, error) {
	run := &causal.Run{
		ID:          core.RunID(row.ID),
		Label:       row.Label,
		Algorithm:   causal.Algorithm(row.Algorithm),
		Samples:     row.Samples,
		DatasetHash: core.Hash(row.DatasetHash),
		CreatedAt:   row.CreatedAt,
		Duration:    time.Duration(row.DurationMS) * time.Millisecond,
	}

	if err := json.Unmarshal(row.Variables, &run.Variables); err != nil {
		return nil, fmt.Errorf("failed to unmarshal variables: %w", err)
	}
	if len(row.Tiers) > 0 {
		if err := json.Unmarshal(row.Tiers, &run.Tiers); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tiers: %w", err)
		}
	}
	if len(row.Params) > 0 {
		if err := json.Unmarshal(row.Params, &run.Params); err != nil {
			return nil, fmt.Errorf("failed to unmarshal params: %w", err)
		}
	}
	if len(row.Graph) > 0 && string(row.Graph) != "null" {
		var g causal.Graph
		if err := json.Unmarshal(row.Graph, &g); err != nil {
			return nil, fmt.Errorf("failed to unmarshal graph: %w", err)
		}
		run.Graph = &g
	}
	return run, nil
}
