package linear

import (
	"math"
	"math/rand"
	"testing"

	"gocausal/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// orthogonalColumns returns x = z + a and y = 2z + b where z, a and b are
// mutually orthogonal +/-1 patterns, so x and y are correlated marginally
// and exactly uncorrelated once z is partialled out.
func orthogonalColumns(repeats int) [][]float64 {
	zp := []float64{1, 1, 1, 1, -1, -1, -1, -1}
	ap := []float64{1, -1, 1, -1, 1, -1, 1, -1}
	bp := []float64{1, 1, -1, -1, 1, 1, -1, -1}

	var x, y, z []float64
	for r := 0; r < repeats; r++ {
		for k := range zp {
			x = append(x, zp[k]+ap[k])
			y = append(y, 2*zp[k]+bp[k])
			z = append(z, zp[k])
		}
	}
	return [][]float64{x, y, z}
}

func gaussianChain(n int, seed int64) [][]float64 {
	rng := rand.New(rand.NewSource(seed))
	a := make([]float64, n)
	b := make([]float64, n)
	c := make([]float64, n)
	for r := 0; r < n; r++ {
		a[r] = rng.NormFloat64()
		b[r] = 0.8*a[r] + rng.NormFloat64()
		c[r] = 0.8*b[r] + rng.NormFloat64()
	}
	return [][]float64{a, b, c}
}

func TestResiduals_RemovesLinearSignal(t *testing.T) {
	cols := orthogonalColumns(8)

	resid, err := Residuals(cols, 0, []int{2})
	require.NoError(t, err)
	require.Len(t, resid, 64)

	// x - z is the a pattern
	for r, v := range resid {
		assert.InDelta(t, cols[0][r]-cols[2][r], v, 1e-9)
	}
}

func TestResiduals_ToleratesCollinearPredictors(t *testing.T) {
	cols := gaussianChain(100, 3)
	dup := append([]float64(nil), cols[0]...)
	cols = append(cols, dup)

	resid, err := Residuals(cols, 1, []int{0, 3})
	require.NoError(t, err)

	single, err := Residuals(cols, 1, []int{0})
	require.NoError(t, err)
	for r := range resid {
		assert.InDelta(t, single[r], resid[r], 1e-8)
	}
}

func TestPartialCorrelation_Marginal(t *testing.T) {
	cols := orthogonalColumns(8)

	res, err := PartialCorrelation(cols, 0, 1, nil)
	require.NoError(t, err)

	// cov = 2, var(x) = 2, var(y) = 5
	assert.InDelta(t, 2/math.Sqrt(10), res.Correlation, 1e-9)
	assert.Less(t, res.PValue, 1e-4)
	assert.Equal(t, 61, res.DegreesOfFreedom)
	assert.Greater(t, res.Statistic, 0.0)
}

func TestPartialCorrelation_ConditionalIndependence(t *testing.T) {
	cols := orthogonalColumns(8)

	res, err := PartialCorrelation(cols, 0, 1, []int{2})
	require.NoError(t, err)

	assert.InDelta(t, 0, res.Correlation, 1e-9)
	assert.InDelta(t, 1, res.PValue, 1e-6)
	assert.Equal(t, 60, res.DegreesOfFreedom)
}

func TestPartialCorrelation_Symmetric(t *testing.T) {
	cols := gaussianChain(200, 11)

	ab, err := PartialCorrelation(cols, 0, 2, []int{1})
	require.NoError(t, err)
	ba, err := PartialCorrelation(cols, 2, 0, []int{1})
	require.NoError(t, err)

	assert.InDelta(t, ab.Correlation, ba.Correlation, 1e-12)
	assert.InDelta(t, ab.PValue, ba.PValue, 1e-12)
}

func TestPartialCorrelation_ChainScreensOff(t *testing.T) {
	cols := gaussianChain(2000, 5)

	marginal, err := PartialCorrelation(cols, 0, 2, nil)
	require.NoError(t, err)
	assert.Less(t, marginal.PValue, 0.01)

	given, err := PartialCorrelation(cols, 0, 2, []int{1})
	require.NoError(t, err)
	assert.Less(t, math.Abs(given.Correlation), 0.1)
}

func TestPartialCorrelation_SelfIsOne(t *testing.T) {
	cols := gaussianChain(50, 1)

	res, err := PartialCorrelation(cols, 1, 1, nil)
	require.NoError(t, err)
	assert.InDelta(t, 1, res.Correlation, 1e-9)
	assert.Less(t, res.PValue, 1e-10)
	assert.False(t, math.IsInf(res.Statistic, 0))
	assert.False(t, math.IsNaN(res.Statistic))
}

func TestPartialCorrelation_PValueInRange(t *testing.T) {
	cols := gaussianChain(30, 42)
	for _, cond := range [][]int{nil, {1}} {
		res, err := PartialCorrelation(cols, 0, 2, cond)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, res.PValue, 0.0)
		assert.LessOrEqual(t, res.PValue, 1.0)
	}
}

func TestPartialCorrelation_DegreesOfFreedom(t *testing.T) {
	cols := [][]float64{
		{1, 2, 3, 4},
		{2, 1, 4, 3},
		{0, 1, 0, 1},
	}

	_, err := PartialCorrelation(cols, 0, 1, []int{2})
	require.Error(t, err)
	assert.True(t, core.IsDegenerateError(err))

	var de *core.DegenerateStatisticsError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, core.ReasonDegreesOfFreedom, de.Reason)
	assert.Equal(t, 4, de.Samples)
	assert.Equal(t, []int{2}, de.Conditioning)

	_, err = PartialCorrelation(cols, 0, 1, nil)
	assert.NoError(t, err)
}

func TestPartialCorrelation_ZeroVariance(t *testing.T) {
	cols := gaussianChain(20, 9)
	cols = append(cols, make([]float64, 20))
	for r := range cols[3] {
		cols[3][r] = 7
	}

	_, err := PartialCorrelation(cols, 0, 3, nil)
	var de *core.DegenerateStatisticsError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, core.ReasonZeroVariance, de.Reason)
}

func TestBIC_NoParents(t *testing.T) {
	cols := orthogonalColumns(8)
	n := 64.0

	got, err := BIC(cols, 2, nil)
	require.NoError(t, err)

	// z has population variance 1
	want := -0.5*n*math.Log(2*math.Pi) - 0.5*n - 0.5*math.Log(n)
	assert.InDelta(t, want, got, 1e-9)
}

func TestBIC_WithParents(t *testing.T) {
	cols := orthogonalColumns(8)
	n := 64.0

	got, err := BIC(cols, 0, []int{2})
	require.NoError(t, err)

	// residual is the a pattern, variance 1 and sum of squares n
	want := -0.5*n*math.Log(2*math.Pi) - 0.5*n - math.Log(n)
	assert.InDelta(t, want, got, 1e-9)
}

func TestBIC_TrueParentImprovesScore(t *testing.T) {
	const seeds = 20
	improved, spurious := 0, 0
	for seed := int64(1); seed <= seeds; seed++ {
		cols := gaussianChain(500, seed)
		rng := rand.New(rand.NewSource(seed + 1000))
		noise := make([]float64, 500)
		for r := range noise {
			noise[r] = rng.NormFloat64()
		}
		cols = append(cols, noise)

		alone, err := BIC(cols, 1, nil)
		require.NoError(t, err, "seed %d", seed)
		withParent, err := BIC(cols, 1, []int{0})
		require.NoError(t, err, "seed %d", seed)
		withNoise, err := BIC(cols, 1, []int{3})
		require.NoError(t, err, "seed %d", seed)

		if withParent > alone {
			improved++
		}
		if withNoise > alone {
			spurious++
		}
	}

	// a 0.8 coefficient at n=500 clears the log(n) penalty on every draw,
	// an independent column only by chance
	assert.Equal(t, seeds, improved)
	assert.LessOrEqual(t, spurious, 3)
}

func TestBIC_PerfectFitIsFinite(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5, 6}
	y := []float64{3, 5, 7, 9, 11, 13}

	got, err := BIC([][]float64{x, y}, 1, []int{0})
	require.NoError(t, err)
	assert.False(t, math.IsInf(got, 0))
	assert.False(t, math.IsNaN(got))
}

func TestBIC_ConstantTarget(t *testing.T) {
	cols := [][]float64{{4, 4, 4, 4}}

	_, err := BIC(cols, 0, nil)
	require.Error(t, err)
	assert.True(t, core.IsDegenerateError(err))
}
