// Package render turns learned graphs into Graphviz DOT, SVG and CSV.
package render

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"gocausal/domain/causal"
)

// TierColors fill nodes by tier: baseline, treatment, outcome. Later tiers
// and untiered nodes use UntieredColor.
var TierColors = []string{"#6BAED6", "#74C476", "#FD8D3C"}

const UntieredColor = "#CCCCCC"

// Options configures DOT output
type Options struct {
	Title string
	Tiers causal.TemporalTiers
}

// ToDOT writes g as a left-to-right digraph. Nodes are coloured by tier and
// tiers share a rank; undirected edges are drawn without arrowheads.
func ToDOT(g *causal.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontname=\"Helvetica\", penwidth=2];\n")
	buf.WriteString("  edge [penwidth=2, arrowsize=1.2];\n")
	if opts.Title != "" {
		fmt.Fprintf(&buf, "  label=%q;\n  labelloc=t;\n  fontsize=20;\n", opts.Title)
	}
	buf.WriteString("\n")

	idx := opts.Tiers.Index()
	present := make(map[string]bool)
	for _, n := range g.Nodes() {
		present[n] = true
		tier, ok := idx.TierOf(n)
		fmt.Fprintf(&buf, "  %q [label=%q, fillcolor=%q];\n", n, fmtLabel(n), nodeColor(tier, ok))
	}

	for i, tier := range opts.Tiers {
		var members []string
		for _, n := range tier {
			if present[n] {
				members = append(members, fmt.Sprintf("%q", n))
			}
		}
		if len(members) == 0 {
			continue
		}
		fmt.Fprintf(&buf, "  { rank=same; %s; } // tier %d\n", strings.Join(members, "; "), i)
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}
	for _, e := range g.UndirectedEdges() {
		fmt.Fprintf(&buf, "  %q -> %q [dir=none, style=dashed];\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(name string) string {
	return strings.ReplaceAll(name, "_", "\n")
}

func nodeColor(tier int, tiered bool) string {
	if !tiered || tier >= len(TierColors) {
		return UntieredColor
	}
	return TierColors[tier]
}

// RenderSVG renders a DOT graph to SVG using Graphviz
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
