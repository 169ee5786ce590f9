package config

import (
	"os"
	"path/filepath"
	"testing"

	"gocausal/domain/causal"
	"gocausal/domain/core"
	"gocausal/internal/discovery"
	"gocausal/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{"LOG_LEVEL", "PORT", "DATABASE_URL", "PC_ALPHA", "PC_MAX_DEPTH", "GES_MAX_ITER", "DISCOVERY_WORKERS", "MAX_CONCURRENT_FITS", "PC_UNBOUNDED_DEPTH", "MAX_BODY_BYTES"} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, int64(4), cfg.Server.MaxConcurrentFits)
	assert.Equal(t, int64(32<<20), cfg.Server.MaxBodyBytes)
	assert.False(t, cfg.Database.Enabled())
	assert.Equal(t, discovery.DefaultPCConfig(), cfg.Discovery.PC())
	assert.Equal(t, discovery.DefaultGESConfig(), cfg.Discovery.GES())
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DATABASE_URL", "postgres://localhost/causal")
	t.Setenv("PC_ALPHA", "0.01")
	t.Setenv("PC_MAX_DEPTH", "2")
	t.Setenv("GES_MAX_ITER", "20")
	t.Setenv("DISCOVERY_WORKERS", "8")
	t.Setenv("PORT", "9090")
	t.Setenv("PC_UNBOUNDED_DEPTH", "true")
	t.Setenv("MAX_BODY_BYTES", "1024")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
	assert.True(t, cfg.Database.Enabled())
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 0.01, cfg.Discovery.PC().Alpha)
	assert.Equal(t, 2, cfg.Discovery.PC().MaxConditioningSetSize)
	assert.Equal(t, 20, cfg.Discovery.GES().MaxIter)
	assert.Equal(t, 8, cfg.Discovery.GES().Workers)
	assert.True(t, cfg.Discovery.PC().UnboundedDepth)
	assert.Equal(t, int64(1024), cfg.Server.MaxBodyBytes)
}

func TestLoad_RejectsInvalidDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("PC_ALPHA", "1.5")

	_, err := Load()
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.Classify(err))

	clearEnv(t)
	t.Setenv("MAX_CONCURRENT_FITS", "0")
	_, err = Load()
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.Classify(err))

	clearEnv(t)
	t.Setenv("MAX_BODY_BYTES", "-1")
	_, err = Load()
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.Classify(err))
}

func TestLoad_IgnoresUnparsableNumbers(t *testing.T) {
	clearEnv(t)
	t.Setenv("GES_MAX_ITER", "many")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Discovery.GESMaxIter)
}

const sampleJob = `
label = "claims"
algorithm = "pc"
variables = ["age", "intervention_a", "followup_cost"]
tiers = [["age"], ["intervention_a"], ["followup_cost"]]

[pc]
alpha = 0.01
unbounded_depth = true

[ges]
workers = 4
acyclic = true

[roles]
treatment_keywords = ["intervention"]
outcome_keywords = ["followup"]
`

func TestParseJob(t *testing.T) {
	job, err := ParseJob(sampleJob)
	require.NoError(t, err)

	assert.Equal(t, "claims", job.Label)
	assert.Equal(t, "pc", job.Algorithm)
	assert.Equal(t, []string{"age", "intervention_a", "followup_cost"}, job.Variables)
	assert.Equal(t, causal.TemporalTiers{{"age"}, {"intervention_a"}, {"followup_cost"}}, job.Tiers)
	require.NotNil(t, job.Roles)
	assert.Equal(t, []string{"intervention"}, job.Roles.TreatmentKeywords)

	pc := job.ApplyPC(discovery.DefaultPCConfig())
	assert.Equal(t, 0.01, pc.Alpha)
	assert.Equal(t, 3, pc.MaxConditioningSetSize)
	assert.True(t, pc.UnboundedDepth)

	ges := job.ApplyGES(discovery.DefaultGESConfig())
	assert.Equal(t, 100, ges.MaxIter)
	assert.Equal(t, 4, ges.Workers)
	assert.True(t, ges.Acyclic)
}

func TestParseJob_Empty(t *testing.T) {
	job, err := ParseJob("")
	require.NoError(t, err)
	assert.Equal(t, discovery.DefaultPCConfig(), job.ApplyPC(discovery.DefaultPCConfig()))
	assert.Equal(t, discovery.DefaultGESConfig(), job.ApplyGES(discovery.DefaultGESConfig()))
}

func TestParseJob_Errors(t *testing.T) {
	_, err := ParseJob("[pc]\nalpah = 0.1\n")
	assert.True(t, core.IsConfigError(err))

	_, err = ParseJob("variables = [")
	assert.True(t, core.IsInputError(err))
}

func TestLoadJob(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.toml")
	require.NoError(t, os.WriteFile(path, []byte(sampleJob), 0o644))

	job, err := LoadJob(path)
	require.NoError(t, err)
	assert.Equal(t, "claims", job.Label)

	_, err = LoadJob(filepath.Join(t.TempDir(), "missing.toml"))
	assert.True(t, core.IsInputError(err))
}
