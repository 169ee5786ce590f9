package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"gocausal/app"
	"gocausal/domain/causal"
	"gocausal/domain/core"
	"gocausal/internal/config"
	"gocausal/internal/mechanism"
	"gocausal/internal/report"
)

// loadRuns reads the output of "discover --format json": an array of runs
// or a single run object
func loadRuns(path string) ([]*causal.Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, core.NewInputError("read %s: %v", path, err)
	}
	data = bytes.TrimSpace(data)

	var runs []*causal.Run
	if len(data) > 0 && data[0] == '[' {
		err = json.Unmarshal(data, &runs)
	} else {
		var run causal.Run
		err = json.Unmarshal(data, &run)
		runs = []*causal.Run{&run}
	}
	if err != nil {
		return nil, core.NewInputError("decode %s: %v", path, err)
	}
	for _, run := range runs {
		if run.Graph == nil {
			return nil, core.NewInputError("%s: run %s has no graph", path, run.ID)
		}
	}
	return runs, nil
}

func newMechanismsCmd() *cobra.Command {
	var (
		job    string
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "mechanisms [runs.json]",
		Short: "Summarise intervention effects, drivers and mediating pathways",
		Long: `Summarise the mechanisms of discovered graphs.

Roles come from the job file's [roles] section when given, else from the
run's temporal tiers, else from the default keyword rules.

Example: causal-cli discover --file claims.csv --format json -o runs.json
         causal-cli mechanisms runs.json --format markdown`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, err := loadRuns(args[0])
			if err != nil {
				return err
			}

			var rules *mechanism.RoleRules
			if job != "" {
				j, err := config.LoadJob(job)
				if err != nil {
					return err
				}
				rules = j.Roles
			}

			var buf bytes.Buffer
			analyses := make([]*mechanism.Analysis, 0, len(runs))
			for _, run := range runs {
				analysis := mechanism.Analyze(run.Graph, run.Algorithm, app.Roles(run, rules))
				analyses = append(analyses, analysis)

				switch format {
				case "markdown":
					buf.WriteString(report.Markdown(run, analysis))
				case "html":
					buf.Write(report.HTML(run, analysis))
				case "text":
					buf.WriteString(textMechanisms(run, analysis))
				case "json":
				default:
					return fmt.Errorf("unknown format %q", format)
				}
			}
			if format == "json" {
				data, err := json.MarshalIndent(analyses, "", "  ")
				if err != nil {
					return err
				}
				buf.Write(append(data, '\n'))
			}
			return writeOutput(out, cmd.OutOrStdout(), buf.Bytes())
		},
	}

	cmd.Flags().StringVar(&job, "job", "", "TOML job file with a [roles] section")
	cmd.Flags().StringVar(&format, "format", "text", "text, json, markdown or html")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default stdout)")

	return cmd
}

func textMechanisms(run *causal.Run, a *mechanism.Analysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s: %d nodes, %d edges\n", strings.ToUpper(string(a.Algorithm)), run.ID, a.Nodes, a.Edges)
	fmt.Fprintf(&b, "  treatments: %s\n", strings.Join(a.Roles.Treatments, ", "))
	fmt.Fprintf(&b, "  outcomes:   %s\n", strings.Join(a.Roles.Outcomes, ", "))

	for _, e := range a.InterventionEffects {
		fmt.Fprintf(&b, "  effect    %s -> %s\n", e.Treatment, e.Outcome)
	}
	for _, outcome := range a.Roles.Outcomes {
		if preds := a.BaselinePredictors[outcome]; len(preds) > 0 {
			fmt.Fprintf(&b, "  baseline  %s <- %s\n", outcome, strings.Join(preds, ", "))
		}
	}
	for _, d := range a.InterventionDrivers {
		fmt.Fprintf(&b, "  driver    %s -> %s\n", d.Driver, d.Treatment)
	}
	for _, p := range a.MediatingPathways {
		fmt.Fprintf(&b, "  pathway   %s -> %s -> %s\n", p.Treatment, p.Mediator, p.Outcome)
	}
	b.WriteString("\n")
	return b.String()
}

func newCompareCmd() *cobra.Command {
	var prefix string

	cmd := &cobra.Command{
		Use:   "compare [a.json] [b.json]",
		Short: "Compare the directed edges of two runs (e.g. two subgroups)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadRuns(args[0])
			if err != nil {
				return err
			}
			b, err := loadRuns(args[1])
			if err != nil {
				return err
			}

			var filter mechanism.EdgeFilter
			if prefix != "" {
				filter = mechanism.Touching(prefix)
			}
			cmp := mechanism.CompareEdges(a[0].Graph, b[0].Graph, filter)

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "common (%d)\n", len(cmp.Common))
			for _, e := range cmp.Common {
				fmt.Fprintf(w, "  %s\n", e)
			}
			fmt.Fprintf(w, "only in %s (%d)\n", args[0], len(cmp.OnlyA))
			for _, e := range cmp.OnlyA {
				fmt.Fprintf(w, "  %s\n", e)
			}
			fmt.Fprintf(w, "only in %s (%d)\n", args[1], len(cmp.OnlyB))
			for _, e := range cmp.OnlyB {
				fmt.Fprintf(w, "  %s\n", e)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&prefix, "prefix", "", "Keep edges touching a node with this name prefix")

	return cmd
}
