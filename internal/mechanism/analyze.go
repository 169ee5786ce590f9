// Package mechanism reads intervention mechanisms off a learned graph:
// what treatments affect, what drives treatment, which baseline variables
// feed outcomes, and treatment -> mediator -> outcome pathways. It only
// looks at directed edges, through the graph's adjacency view.
package mechanism

import (
	"gocausal/domain/causal"
)

// Effect is a treatment -> child edge
type Effect struct {
	Treatment string `json:"treatment"`
	Outcome   string `json:"outcome"`
}

// Driver is a parent -> treatment edge
type Driver struct {
	Driver    string `json:"driver"`
	Treatment string `json:"treatment"`
}

// Pathway is treatment -> mediator -> outcome
type Pathway struct {
	Treatment string `json:"treatment"`
	Mediator  string `json:"mediator"`
	Outcome   string `json:"outcome"`
}

// Analysis is the mechanism summary of one graph
type Analysis struct {
	Algorithm           causal.Algorithm    `json:"algorithm"`
	Nodes               int                 `json:"n_nodes"`
	Edges               int                 `json:"n_edges"`
	Roles               Roles               `json:"roles"`
	InterventionEffects []Effect            `json:"intervention_effects"`
	BaselinePredictors  map[string][]string `json:"baseline_predictors"`
	InterventionDrivers []Driver            `json:"intervention_drivers"`
	MediatingPathways   []Pathway           `json:"mediating_pathways"`
}

// Analyze derives the mechanism summary from g's adjacency view
func Analyze(g *causal.Graph, algorithm causal.Algorithm, roles Roles) *Analysis {
	adj := g.Adjacency()

	a := &Analysis{
		Algorithm:           algorithm,
		Nodes:               len(g.Nodes()),
		Edges:               len(g.Edges()),
		Roles:               roles,
		InterventionEffects: []Effect{},
		BaselinePredictors:  map[string][]string{},
		InterventionDrivers: []Driver{},
		MediatingPathways:   []Pathway{},
	}

	for _, t := range roles.Treatments {
		for _, child := range adj[t].Children {
			a.InterventionEffects = append(a.InterventionEffects, Effect{Treatment: t, Outcome: child})
		}
	}

	for _, o := range roles.Outcomes {
		var preds []string
		for _, parent := range adj[o].Parents {
			if roles.isBaseline(parent) {
				preds = append(preds, parent)
			}
		}
		if len(preds) > 0 {
			a.BaselinePredictors[o] = preds
		}
	}

	for _, t := range roles.Treatments {
		for _, parent := range adj[t].Parents {
			a.InterventionDrivers = append(a.InterventionDrivers, Driver{Driver: parent, Treatment: t})
		}
	}

	for _, t := range roles.Treatments {
		for _, m := range g.Nodes() {
			if roles.isTreatment(m) || roles.isOutcome(m) {
				continue
			}
			if !contains(adj[t].Children, m) {
				continue
			}
			for _, o := range roles.Outcomes {
				if contains(adj[m].Children, o) {
					a.MediatingPathways = append(a.MediatingPathways, Pathway{Treatment: t, Mediator: m, Outcome: o})
				}
			}
		}
	}

	return a
}
