package excel

import (
	"os"
	"path/filepath"
	"testing"

	"gocausal/domain/core"
	"gocausal/domain/dataset"
	"gocausal/internal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDataReader_CSVDropsIncompleteRows(t *testing.T) {
	path := writeFile(t, "claims.csv", ""+
		"member_id, age ,therapy_any,followup_ip_ct\n"+
		"m1,54,1,0\n"+
		"m2,61,,2\n"+
		"m3,47,0,abc\n"+
		"m4,39,1,1\n")

	m, summary, err := NewDataReader(path).WithLogger(internal.Discard()).Load([]string{"age", "therapy_any", "followup_ip_ct"})
	require.NoError(t, err)

	assert.Equal(t, 2, m.Rows())
	assert.Equal(t, []string{"age", "therapy_any", "followup_ip_ct"}, m.Names())
	assert.Equal(t, []float64{54, 39}, m.Column(0))
	assert.Equal(t, 4, summary.TotalRows)
	assert.Equal(t, 2, summary.KeptRows)
	assert.Equal(t, 2, summary.DroppedRows)
	assert.Equal(t, path, summary.Path)
}

func TestDataReader_UnselectedColumnsDoNotDropRows(t *testing.T) {
	path := writeFile(t, "d.csv", "a,b,note\n1,2,\n3,4,x\n")

	m, summary, err := NewDataReader(path).WithLogger(internal.Discard()).Load([]string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, 2, m.Rows())
	assert.Zero(t, summary.DroppedRows)
}

func TestDataReader_Errors(t *testing.T) {
	_, _, err := NewDataReader(filepath.Join(t.TempDir(), "missing.csv")).Load(nil)
	assert.True(t, core.IsInputError(err))

	headerOnly := writeFile(t, "h.csv", "a,b\n")
	_, _, err = NewDataReader(headerOnly).Load(nil)
	assert.True(t, core.IsInputError(err))

	path := writeFile(t, "d.csv", "a,b\n1,2\n")
	_, _, err = NewDataReader(path).WithLogger(internal.Discard()).Load([]string{"a", "zzz"})
	assert.True(t, core.IsInputError(err))
}

func TestWriteMatrix_RoundTrip(t *testing.T) {
	m, err := dataset.NewMatrix([]string{"x", "y"}, [][]float64{{1.5, -2}, {0.25, 3}})
	require.NoError(t, err)

	for _, name := range []string{"out.csv", "out.xlsx"} {
		path := filepath.Join(t.TempDir(), name)
		require.NoError(t, WriteMatrix(path, m))

		back, _, err := NewDataReader(path).WithLogger(internal.Discard()).Load(nil)
		require.NoError(t, err, name)
		assert.Equal(t, m.Names(), back.Names(), name)
		assert.True(t, m.Fingerprint().Equals(back.Fingerprint()), name)
	}
}
