package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"gocausal/domain/causal"
	"gocausal/domain/core"
	"gocausal/internal/discovery"
	"gocausal/internal/mechanism"
)

// Job is a discovery job file:
//
//	label = "claims"
//	algorithm = "both"
//	variables = ["age", "intervention_a", "followup_cost"]
//	tiers = [["age"], ["intervention_a"], ["followup_cost"]]
//
//	[pc]
//	alpha = 0.01
//	max_depth = 2
//
//	[ges]
//	max_iter = 50
//	workers = 4
type Job struct {
	Label     string               `toml:"label"`
	Algorithm string               `toml:"algorithm"`
	Variables []string             `toml:"variables"`
	Tiers     causal.TemporalTiers `toml:"tiers"`
	PC        *PCSection           `toml:"pc"`
	GES       *GESSection          `toml:"ges"`
	Roles     *mechanism.RoleRules `toml:"roles"`
}

// PCSection overrides PC defaults; unset keys keep the default
type PCSection struct {
	Alpha          *float64 `toml:"alpha"`
	MaxDepth       *int     `toml:"max_depth"`
	UnboundedDepth *bool    `toml:"unbounded_depth"`
}

// GESSection overrides GES defaults; unset keys keep the default
type GESSection struct {
	MaxIter *int  `toml:"max_iter"`
	Workers *int  `toml:"workers"`
	Acyclic *bool `toml:"acyclic"`
}

// LoadJob decodes a job file. Unknown keys are rejected so that typos do
// not silently fall back to defaults.
func LoadJob(path string) (*Job, error) {
	var job Job
	md, err := toml.DecodeFile(path, &job)
	if err != nil {
		return nil, core.NewInputError("job file %s: %v", path, err)
	}
	return &job, checkJob(md)
}

// ParseJob decodes a job from TOML text
func ParseJob(data string) (*Job, error) {
	var job Job
	md, err := toml.Decode(data, &job)
	if err != nil {
		return nil, core.NewInputError("job: %v", err)
	}
	return &job, checkJob(md)
}

func checkJob(md toml.MetaData) error {
	undecoded := md.Undecoded()
	if len(undecoded) == 0 {
		return nil
	}
	keys := make([]string, len(undecoded))
	for i, k := range undecoded {
		keys[i] = k.String()
	}
	return core.NewConfigError("job", fmt.Sprintf("unknown keys %s", strings.Join(keys, ", ")))
}

// ApplyPC overlays the [pc] section on cfg
func (j *Job) ApplyPC(cfg discovery.PCConfig) discovery.PCConfig {
	if j.PC != nil {
		if j.PC.Alpha != nil {
			cfg.Alpha = *j.PC.Alpha
		}
		if j.PC.MaxDepth != nil {
			cfg.MaxConditioningSetSize = *j.PC.MaxDepth
		}
		if j.PC.UnboundedDepth != nil {
			cfg.UnboundedDepth = *j.PC.UnboundedDepth
		}
	}
	return cfg
}

// ApplyGES overlays the [ges] section on cfg
func (j *Job) ApplyGES(cfg discovery.GESConfig) discovery.GESConfig {
	if j.GES != nil {
		if j.GES.MaxIter != nil {
			cfg.MaxIter = *j.GES.MaxIter
		}
		if j.GES.Workers != nil {
			cfg.Workers = *j.GES.Workers
		}
		if j.GES.Acyclic != nil {
			cfg.Acyclic = *j.GES.Acyclic
		}
	}
	return cfg
}
