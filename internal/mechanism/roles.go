package mechanism

import (
	"strings"

	"gocausal/domain/causal"
)

// Roles assigns graph nodes to the parts of an intervention study
type Roles struct {
	Treatments []string `json:"treatments"`
	Outcomes   []string `json:"outcomes"`
	Baseline   []string `json:"baseline"`
}

func (r Roles) isTreatment(n string) bool { return contains(r.Treatments, n) }
func (r Roles) isOutcome(n string) bool   { return contains(r.Outcomes, n) }
func (r Roles) isBaseline(n string) bool  { return contains(r.Baseline, n) }

// RoleRules classifies node names by substring, plus an explicit list of
// baseline covariates whose names carry no marker.
type RoleRules struct {
	TreatmentKeywords []string `json:"treatment_keywords" toml:"treatment_keywords"`
	OutcomeKeywords   []string `json:"outcome_keywords" toml:"outcome_keywords"`
	BaselineKeywords  []string `json:"baseline_keywords" toml:"baseline_keywords"`
	BaselineNames     []string `json:"baseline_names" toml:"baseline_names"`
}

// DefaultRoleRules matches the claims-data naming used by the analysis
// pipelines: intervention_* treatments, followup_* outcomes and baseline_*
// covariates alongside demographics.
func DefaultRoleRules() RoleRules {
	return RoleRules{
		TreatmentKeywords: []string{"intervention"},
		OutcomeKeywords:   []string{"followup"},
		BaselineKeywords:  []string{"baseline"},
		BaselineNames:     []string{"age", "gender_female", "risk_score"},
	}
}

// Assign classifies nodes, keeping node order. A name matching a treatment
// keyword is a treatment even if it also matches another rule.
func (rr RoleRules) Assign(nodes []string) Roles {
	var roles Roles
	for _, n := range nodes {
		switch {
		case matchesAny(n, rr.TreatmentKeywords):
			roles.Treatments = append(roles.Treatments, n)
		case matchesAny(n, rr.OutcomeKeywords):
			roles.Outcomes = append(roles.Outcomes, n)
		case matchesAny(n, rr.BaselineKeywords) || contains(rr.BaselineNames, n):
			roles.Baseline = append(roles.Baseline, n)
		}
	}
	return roles
}

// RolesFromTiers reads roles off the temporal order: the first tier is
// baseline, the last tier holds outcomes and anything between is treated
// as an intervention. A single tier is all baseline.
func RolesFromTiers(tiers causal.TemporalTiers, nodes []string) Roles {
	idx := tiers.Index()
	last := len(tiers) - 1

	var roles Roles
	for _, n := range nodes {
		tier, ok := idx.TierOf(n)
		if !ok {
			continue
		}
		switch {
		case tier == 0:
			roles.Baseline = append(roles.Baseline, n)
		case tier == last:
			roles.Outcomes = append(roles.Outcomes, n)
		default:
			roles.Treatments = append(roles.Treatments, n)
		}
	}
	return roles
}

func matchesAny(name string, keywords []string) bool {
	for _, k := range keywords {
		if k != "" && strings.Contains(name, k) {
			return true
		}
	}
	return false
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
