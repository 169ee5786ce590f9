package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gocausal/adapters/excel"
	"gocausal/domain/causal"
	"gocausal/internal"
	"gocausal/internal/testkit"
)

func init() {
	logger = internal.Discard()
}

func writeMediation(t *testing.T) string {
	t.Helper()
	m, _, err := testkit.GenerateMediation(testkit.SyntheticConfig{Samples: 500, Seed: 5})
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "mediation.csv")
	require.NoError(t, excel.WriteMatrix(path, m))
	return path
}

func TestParseTiers(t *testing.T) {
	tiers := parseTiers([]string{"a, b", "c", " d ,"})
	assert.Equal(t, causal.TemporalTiers{{"a", "b"}, {"c"}, {"d"}}, tiers)
}

func TestDiscoverCommand_JSONRoundTrip(t *testing.T) {
	data := writeMediation(t)
	out := filepath.Join(t.TempDir(), "runs.json")

	cmd := newDiscoverCmd()
	cmd.SetArgs([]string{
		"--file", data,
		"--algorithm", "ges",
		"--tier", "X1,X2", "--tier", "X3", "--tier", "Y",
		"--format", "json",
		"--out", out,
	})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	runs, err := loadRuns(out)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, causal.AlgorithmGES, runs[0].Algorithm)
	assert.Equal(t, "mediation", runs[0].Label)
	assert.True(t, runs[0].Graph.HasDirected("X3", "Y"))

	var buf bytes.Buffer
	mech := newMechanismsCmd()
	mech.SetOut(&buf)
	mech.SetArgs([]string{out})
	require.NoError(t, mech.Execute())
	assert.Contains(t, buf.String(), "effect    X3 -> Y")

	buf.Reset()
	cmp := newCompareCmd()
	cmp.SetOut(&buf)
	cmp.SetArgs([]string{out, out})
	require.NoError(t, cmp.Execute())
	assert.Contains(t, buf.String(), "only in")
}

func TestDiscoverCommand_JobAndFlags(t *testing.T) {
	data := writeMediation(t)
	job := filepath.Join(t.TempDir(), "job.toml")
	require.NoError(t, os.WriteFile(job, []byte(`
label = "from-job"
algorithm = "pc"
variables = ["X1", "X3", "Y"]

[pc]
alpha = 0.01
max_depth = 1
`), 0o644))

	cmd := newDiscoverCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--file", data, "--job", job, "--alpha", "0.02"}))

	opts := discoverOptions{file: data, job: job, algorithm: "both", alpha: 0.02}
	req, err := buildRequest(cmd, opts)
	require.NoError(t, err)

	assert.Equal(t, "from-job", req.Label)
	assert.Equal(t, []causal.Algorithm{causal.AlgorithmPC}, req.Algorithms)
	assert.Equal(t, 0.02, req.PC.Alpha)
	assert.Equal(t, 1, req.PC.MaxConditioningSetSize)
	assert.Equal(t, []string{"X1", "X3", "Y"}, req.Data.Names())
}

func TestWriteRuns_Formats(t *testing.T) {
	g, err := causal.NewGraph([]string{"a", "b"}, []causal.Edge{{From: "a", To: "b"}}, nil)
	require.NoError(t, err)
	run := &causal.Run{Algorithm: causal.AlgorithmGES, Label: "t", Variables: []string{"a", "b"}, Graph: g}

	var buf bytes.Buffer
	require.NoError(t, writeRuns(context.Background(), []*causal.Run{run}, "csv", "", &buf))
	assert.Equal(t, "from,to,type\na,b,directed\n", buf.String())

	buf.Reset()
	require.NoError(t, writeRuns(context.Background(), []*causal.Run{run}, "summary", "", &buf))
	assert.Contains(t, buf.String(), "t,ges,0,1,0")

	buf.Reset()
	require.NoError(t, writeRuns(context.Background(), []*causal.Run{run}, "dot", "", &buf))
	assert.Contains(t, buf.String(), `"a" -> "b";`)

	dir := t.TempDir()
	pc := *run
	pc.Algorithm = causal.AlgorithmPC
	require.NoError(t, writeRuns(context.Background(), []*causal.Run{&pc, run}, "text", filepath.Join(dir, "out.txt"), &buf))
	assert.FileExists(t, filepath.Join(dir, "out_pc.txt"))
	assert.FileExists(t, filepath.Join(dir, "out_ges.txt"))

	assert.Error(t, writeRuns(context.Background(), []*causal.Run{run}, "yaml", "", &buf))
}

func TestProfileCommand(t *testing.T) {
	data := writeMediation(t)

	var buf bytes.Buffer
	cmd := newProfileCmd()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"--file", data, "--vars", "X1,Y"})
	require.NoError(t, cmd.Execute())

	out := buf.String()
	assert.Contains(t, out, "variable")
	assert.Contains(t, out, "X1")
	assert.Contains(t, out, "Y")
	assert.NotContains(t, out, "X3")
}
