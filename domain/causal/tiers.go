package causal

import (
	"gocausal/domain/core"
)

// TemporalTiers partitions variable names into ordered groups, tier 0
// earliest. Edges may run within a tier or forward in time, never back.
// Names absent from every tier are unconstrained.
type TemporalTiers [][]string

// Validate rejects empty names and names listed in more than one tier
func (t TemporalTiers) Validate() error {
	seen := make(map[string]int)
	for idx, tier := range t {
		for _, name := range tier {
			if name == "" {
				return core.NewConfigError("temporal_tiers", "contain an empty variable name")
			}
			if prev, dup := seen[name]; dup {
				if prev == idx {
					return core.NewConfigError("temporal_tiers", "list "+name+" twice in the same tier")
				}
				return core.NewConfigError("temporal_tiers", "place "+name+" in more than one tier")
			}
			seen[name] = idx
		}
	}
	return nil
}

// Index builds a name -> tier lookup. Call Validate first; on duplicates
// the last occurrence wins.
func (t TemporalTiers) Index() TierIndex {
	idx := make(TierIndex)
	for i, tier := range t {
		for _, name := range tier {
			idx[name] = i
		}
	}
	return idx
}

// TierOf returns the tier holding name
func (t TemporalTiers) TierOf(name string) (int, bool) {
	return t.Index().TierOf(name)
}

// Permits reports whether from -> to respects the tier order
func (t TemporalTiers) Permits(from, to string) bool {
	return t.Index().Permits(from, to)
}

// Clone returns a deep copy
func (t TemporalTiers) Clone() TemporalTiers {
	if t == nil {
		return nil
	}
	out := make(TemporalTiers, len(t))
	for i, tier := range t {
		out[i] = append([]string(nil), tier...)
	}
	return out
}

// Restrict drops names that are not in the given variable set and keeps
// empty tiers so tier numbering stays stable.
func (t TemporalTiers) Restrict(variables []string) TemporalTiers {
	if t == nil {
		return nil
	}
	keep := make(map[string]bool, len(variables))
	for _, v := range variables {
		keep[v] = true
	}
	out := make(TemporalTiers, len(t))
	for i, tier := range t {
		out[i] = []string{}
		for _, name := range tier {
			if keep[name] {
				out[i] = append(out[i], name)
			}
		}
	}
	return out
}

// TierIndex is a precomputed name -> tier mapping
type TierIndex map[string]int

// TierOf returns the tier holding name
func (ti TierIndex) TierOf(name string) (int, bool) {
	i, ok := ti[name]
	return i, ok
}

// Permits reports whether from -> to respects the tier order. Edges with
// an untiered endpoint are always permitted.
func (ti TierIndex) Permits(from, to string) bool {
	fromTier, okFrom := ti[from]
	toTier, okTo := ti[to]
	if !okFrom || !okTo {
		return true
	}
	return fromTier <= toTier
}
