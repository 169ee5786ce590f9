package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"gocausal/adapters/excel"
	"gocausal/adapters/memory"
	"gocausal/adapters/render"
	"gocausal/app"
	"gocausal/domain/causal"
	"gocausal/internal/config"
	"gocausal/internal/discovery"
	"gocausal/internal/report"
)

type discoverOptions struct {
	file      string
	sheet     string
	job       string
	label     string
	algorithm string
	vars      []string
	tiers     []string
	format    string
	out       string

	alpha          float64
	maxDepth       int
	unboundedDepth bool
	maxIter        int
	workers        int
	acyclic        bool
}

func newDiscoverCmd() *cobra.Command {
	opts := discoverOptions{}
	pc := discovery.DefaultPCConfig()
	ges := discovery.DefaultGESConfig()

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Learn a causal graph from a CSV or XLSX file",
		Long: `Learn a causal graph with PC, GES or both.

Rows with an empty or non-numeric value in a selected column are dropped.
Flags override the job file, which overrides the defaults.

Example: causal-cli discover --file claims.csv --algorithm both \
  --tier age,baseline_cost --tier intervention_a --tier followup_cost --format dot`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiscover(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.file, "file", "", "Input data (.csv or .xlsx)")
	f.StringVar(&opts.sheet, "sheet", "", "XLSX sheet (default first sheet)")
	f.StringVar(&opts.job, "job", "", "TOML job file")
	f.StringVar(&opts.label, "label", "", "Run label")
	f.StringVar(&opts.algorithm, "algorithm", "both", "pc, ges or both")
	f.StringSliceVar(&opts.vars, "vars", nil, "Variables to include (default all columns)")
	f.StringArrayVar(&opts.tiers, "tier", nil, "Comma separated tier, earliest first; repeat per tier")
	f.StringVar(&opts.format, "format", "text", "Output format: text, json, dot, svg, csv, summary or markdown")
	f.StringVarP(&opts.out, "out", "o", "", "Output file (default stdout)")
	f.Float64Var(&opts.alpha, "alpha", pc.Alpha, "PC significance level")
	f.IntVar(&opts.maxDepth, "max-depth", pc.MaxConditioningSetSize, "PC maximum conditioning set size")
	f.BoolVar(&opts.unboundedDepth, "unbounded-depth", false, "PC: search conditioning sets up to p-2")
	f.IntVar(&opts.maxIter, "max-iter", ges.MaxIter, "GES rounds per phase")
	f.IntVar(&opts.workers, "workers", ges.Workers, "GES concurrent candidate scoring")
	f.BoolVar(&opts.acyclic, "acyclic", false, "GES: never add an edge closing a directed cycle")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runDiscover(cmd *cobra.Command, opts discoverOptions) error {
	req, err := buildRequest(cmd, opts)
	if err != nil {
		return err
	}

	svc := app.NewDiscoveryService(memory.NewRunRepository(), logger)
	runs, err := svc.Discover(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("discovery failed: %w", err)
	}

	return writeRuns(cmd.Context(), runs, opts.format, opts.out, cmd.OutOrStdout())
}

// buildRequest layers defaults, the job file and explicitly set flags
func buildRequest(cmd *cobra.Command, opts discoverOptions) (app.DiscoveryRequest, error) {
	req := app.DiscoveryRequest{
		Label: opts.label,
		PC:    discovery.DefaultPCConfig(),
		GES:   discovery.DefaultGESConfig(),
	}
	algorithm := opts.algorithm
	variables := opts.vars

	if opts.job != "" {
		job, err := config.LoadJob(opts.job)
		if err != nil {
			return req, err
		}
		req.PC = job.ApplyPC(req.PC)
		req.GES = job.ApplyGES(req.GES)
		req.Tiers = job.Tiers
		if req.Label == "" {
			req.Label = job.Label
		}
		if job.Algorithm != "" && !cmd.Flags().Changed("algorithm") {
			algorithm = job.Algorithm
		}
		if len(variables) == 0 {
			variables = job.Variables
		}
	}

	flags := cmd.Flags()
	if flags.Changed("alpha") {
		req.PC.Alpha = opts.alpha
	}
	if flags.Changed("max-depth") {
		req.PC.MaxConditioningSetSize = opts.maxDepth
	}
	if flags.Changed("unbounded-depth") {
		req.PC.UnboundedDepth = opts.unboundedDepth
	}
	if flags.Changed("max-iter") {
		req.GES.MaxIter = opts.maxIter
	}
	if flags.Changed("workers") {
		req.GES.Workers = opts.workers
	}
	if flags.Changed("acyclic") {
		req.GES.Acyclic = opts.acyclic
	}
	if len(opts.tiers) > 0 {
		req.Tiers = parseTiers(opts.tiers)
	}
	if req.Label == "" {
		req.Label = strings.TrimSuffix(filepath.Base(opts.file), filepath.Ext(opts.file))
	}

	algorithms, err := app.ParseAlgorithms(algorithm)
	if err != nil {
		return req, err
	}
	req.Algorithms = algorithms

	reader := excel.NewDataReader(opts.file).WithSheet(opts.sheet).WithLogger(logger)
	data, summary, err := reader.Load(variables)
	if err != nil {
		return req, err
	}
	if summary.DroppedRows > 0 {
		logger.Warn("[CLI] dropped %d of %d rows with missing or non-numeric values", summary.DroppedRows, summary.TotalRows)
	}
	req.Data = data
	return req, nil
}

func parseTiers(groups []string) causal.TemporalTiers {
	tiers := make(causal.TemporalTiers, 0, len(groups))
	for _, group := range groups {
		var tier []string
		for _, name := range strings.Split(group, ",") {
			if name = strings.TrimSpace(name); name != "" {
				tier = append(tier, name)
			}
		}
		tiers = append(tiers, tier)
	}
	return tiers
}

// writeRuns renders runs in format. With several runs and an output path,
// each run goes to its own file suffixed with the algorithm.
func writeRuns(ctx context.Context, runs []*causal.Run, format, out string, stdout io.Writer) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(runs, "", "  ")
		if err != nil {
			return err
		}
		return writeOutput(out, stdout, append(data, '\n'))
	case "summary":
		rows := make([]render.SummaryRow, len(runs))
		for i, run := range runs {
			rows[i] = render.SummaryRow{
				Label:      run.Label,
				Algorithm:  run.Algorithm,
				Samples:    run.Samples,
				Directed:   len(run.Graph.Edges()),
				Undirected: len(run.Graph.UndirectedEdges()),
			}
		}
		var b strings.Builder
		if err := render.WriteSummaryCSV(&b, rows); err != nil {
			return err
		}
		return writeOutput(out, stdout, []byte(b.String()))
	}

	for _, run := range runs {
		data, err := renderRun(ctx, run, format)
		if err != nil {
			return err
		}
		path := out
		if out != "" && len(runs) > 1 {
			ext := filepath.Ext(out)
			path = strings.TrimSuffix(out, ext) + "_" + string(run.Algorithm) + ext
		}
		if err := writeOutput(path, stdout, data); err != nil {
			return err
		}
	}
	return nil
}

func renderRun(ctx context.Context, run *causal.Run, format string) ([]byte, error) {
	opts := render.Options{Title: run.Label, Tiers: run.Tiers}
	switch format {
	case "text":
		return []byte(textSummary(run)), nil
	case "dot":
		return []byte(render.ToDOT(run.Graph, opts)), nil
	case "svg":
		return render.RenderSVG(ctx, render.ToDOT(run.Graph, opts))
	case "csv":
		var b strings.Builder
		if err := render.WriteEdgesCSV(&b, run.Graph); err != nil {
			return nil, err
		}
		return []byte(b.String()), nil
	case "markdown":
		return []byte(report.Markdown(run, nil)), nil
	}
	return nil, fmt.Errorf("unknown format %q", format)
}

func textSummary(run *causal.Run) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s run %s (n=%d, %d variables, %s)\n",
		strings.ToUpper(string(run.Algorithm)), run.ID, run.Samples, len(run.Variables), run.Duration)
	for _, e := range run.Graph.Edges() {
		fmt.Fprintf(&b, "  %s -> %s\n", e.From, e.To)
	}
	for _, e := range run.Graph.UndirectedEdges() {
		fmt.Fprintf(&b, "  %s -- %s\n", e.From, e.To)
	}
	b.WriteString("\n")
	return b.String()
}

func writeOutput(path string, stdout io.Writer, data []byte) error {
	if path == "" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	logger.Info("[CLI] wrote %s", path)
	return nil
}
