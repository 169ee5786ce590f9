// Package report writes human-readable summaries of discovery runs as
// Markdown and HTML.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"gocausal/domain/causal"
	"gocausal/internal/mechanism"
)

// Markdown summarises a run. analysis may be nil.
func Markdown(run *causal.Run, analysis *mechanism.Analysis) string {
	var b strings.Builder

	title := strings.ToUpper(string(run.Algorithm)) + " causal graph"
	if run.Label != "" {
		title += ": " + run.Label
	}
	fmt.Fprintf(&b, "# %s\n\n", title)

	b.WriteString("| Field | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Run | `%s` |\n", run.ID)
	fmt.Fprintf(&b, "| Algorithm | %s |\n", run.Algorithm)
	fmt.Fprintf(&b, "| Samples | %d |\n", run.Samples)
	fmt.Fprintf(&b, "| Variables | %d |\n", len(run.Variables))
	fmt.Fprintf(&b, "| Parameters | %s |\n", formatParams(run.Algorithm, run.Params))
	if !run.DatasetHash.IsEmpty() {
		fmt.Fprintf(&b, "| Dataset | `%s` |\n", shortHash(run.DatasetHash.String()))
	}
	if !run.CreatedAt.IsZero() {
		fmt.Fprintf(&b, "| Created | %s |\n", run.CreatedAt.UTC().Format(time.RFC3339))
	}
	fmt.Fprintf(&b, "| Duration | %s |\n\n", run.Duration.Round(time.Millisecond))

	if len(run.Tiers) > 0 {
		b.WriteString("## Temporal tiers\n\n")
		for i, tier := range run.Tiers {
			fmt.Fprintf(&b, "%d. %s\n", i+1, strings.Join(tier, ", "))
		}
		b.WriteString("\n")
	}

	if run.Graph != nil {
		writeEdges(&b, run.Graph)
	}
	if analysis != nil {
		writeMechanisms(&b, analysis)
	}

	return b.String()
}

func writeEdges(b *strings.Builder, g *causal.Graph) {
	edges := g.Edges()
	fmt.Fprintf(b, "## Directed edges (%d)\n\n", len(edges))
	if len(edges) == 0 {
		b.WriteString("_none_\n\n")
	} else {
		b.WriteString("| From | To |\n|---|---|\n")
		for _, e := range edges {
			fmt.Fprintf(b, "| %s | %s |\n", e.From, e.To)
		}
		b.WriteString("\n")
	}

	undirected := g.UndirectedEdges()
	if len(undirected) == 0 {
		return
	}
	fmt.Fprintf(b, "## Undirected edges (%d)\n\n", len(undirected))
	for _, e := range undirected {
		fmt.Fprintf(b, "- %s -- %s\n", e.From, e.To)
	}
	b.WriteString("\n")
}

func writeMechanisms(b *strings.Builder, a *mechanism.Analysis) {
	b.WriteString("## Mechanisms\n\n")

	b.WriteString("### Intervention effects\n\n")
	if len(a.InterventionEffects) == 0 {
		b.WriteString("_none_\n\n")
	} else {
		for _, e := range a.InterventionEffects {
			fmt.Fprintf(b, "- %s → %s\n", e.Treatment, e.Outcome)
		}
		b.WriteString("\n")
	}

	b.WriteString("### Baseline predictors\n\n")
	if len(a.BaselinePredictors) == 0 {
		b.WriteString("_none_\n\n")
	} else {
		outcomes := make([]string, 0, len(a.BaselinePredictors))
		for o := range a.BaselinePredictors {
			outcomes = append(outcomes, o)
		}
		sort.Strings(outcomes)
		for _, o := range outcomes {
			fmt.Fprintf(b, "- %s ← %s\n", o, strings.Join(a.BaselinePredictors[o], ", "))
		}
		b.WriteString("\n")
	}

	b.WriteString("### Intervention drivers\n\n")
	if len(a.InterventionDrivers) == 0 {
		b.WriteString("_none_\n\n")
	} else {
		for _, d := range a.InterventionDrivers {
			fmt.Fprintf(b, "- %s → %s\n", d.Driver, d.Treatment)
		}
		b.WriteString("\n")
	}

	b.WriteString("### Mediating pathways\n\n")
	if len(a.MediatingPathways) == 0 {
		b.WriteString("_none_\n\n")
		return
	}
	for _, p := range a.MediatingPathways {
		fmt.Fprintf(b, "- %s → %s → %s\n", p.Treatment, p.Mediator, p.Outcome)
	}
	b.WriteString("\n")
}

func formatParams(alg causal.Algorithm, p causal.RunParams) string {
	switch alg {
	case causal.AlgorithmPC:
		depth := fmt.Sprintf("%d", p.MaxDepth)
		if p.UnboundedDepth {
			depth = "unbounded"
		}
		return fmt.Sprintf("alpha=%g, max depth=%s", p.Alpha, depth)
	case causal.AlgorithmGES:
		s := fmt.Sprintf("max iter=%d, workers=%d", p.MaxIter, p.Workers)
		if p.Acyclic {
			s += ", acyclic"
		}
		return s
	}
	return ""
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

// HTML renders the Markdown summary as a standalone page
func HTML(run *causal.Run, analysis *mechanism.Analysis) []byte {
	return RenderHTML(Markdown(run, analysis), "Causal discovery run "+run.ID.String())
}

// RenderHTML converts Markdown to a complete HTML page
func RenderHTML(md, title string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse([]byte(md))

	renderer := html.NewRenderer(html.RendererOptions{
		Title: title,
		Flags: html.CommonFlags | html.CompletePage | html.HrefTargetBlank,
	})
	return markdown.Render(doc, renderer)
}
