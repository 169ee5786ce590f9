package render

import (
	"encoding/csv"
	"io"
	"strconv"

	"gocausal/domain/causal"
)

// WriteEdgesCSV writes one from,to,type row per edge. Directed edges come
// first; undirected edges follow with type "undirected".
func WriteEdgesCSV(w io.Writer, g *causal.Graph) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"from", "to", "type"}); err != nil {
		return err
	}
	for _, e := range g.Edges() {
		if err := cw.Write([]string{e.From, e.To, "directed"}); err != nil {
			return err
		}
	}
	for _, e := range g.UndirectedEdges() {
		if err := cw.Write([]string{e.From, e.To, "undirected"}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SummaryRow is one line of a multi-run edge summary
type SummaryRow struct {
	Label      string
	Algorithm  causal.Algorithm
	Samples    int
	Directed   int
	Undirected int
}

// WriteSummaryCSV writes per-run edge counts, one row per run
func WriteSummaryCSV(w io.Writer, rows []SummaryRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"label", "algorithm", "n", "directed_edges", "undirected_edges"}); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			r.Label,
			string(r.Algorithm),
			strconv.Itoa(r.Samples),
			strconv.Itoa(r.Directed),
			strconv.Itoa(r.Undirected),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
