package linear

import (
	"math"

	"gocausal/domain/core"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// MaxAbsCorrelation caps |r| before the Fisher transform so that perfectly
// dependent columns give a finite statistic.
const MaxAbsCorrelation = 0.9999

// PartialCorrelationResult carries one conditional independence test
type PartialCorrelationResult struct {
	Correlation      float64 `json:"correlation"`
	Statistic        float64 `json:"statistic"`
	PValue           float64 `json:"p_value"`
	DegreesOfFreedom int     `json:"degrees_of_freedom"`
}

// PartialCorrelation tests X_i independent of X_j given X_S. With S empty
// it is the Pearson correlation; otherwise both variables are regressed on
// an intercept plus S and the residuals are correlated. The p-value is
// two-sided from Fisher's Z with standard error 1/sqrt(n-|S|-3).
//
// The test fails with ReasonDegreesOfFreedom when n-|S|-3 <= 0 and with
// ReasonZeroVariance when either (residual) column is constant; no
// variance floor is applied here.
func PartialCorrelation(columns [][]float64, i, j int, conditioning []int) (PartialCorrelationResult, error) {
	n := len(columns[i])
	dof := n - len(conditioning) - 3
	if dof <= 0 {
		return PartialCorrelationResult{}, degenerate(core.ReasonDegreesOfFreedom, i, j, conditioning, n, "")
	}

	x, y := columns[i], columns[j]
	if len(conditioning) > 0 {
		var err error
		if x, err = Residuals(columns, i, conditioning); err != nil {
			return PartialCorrelationResult{}, err
		}
		if y, err = Residuals(columns, j, conditioning); err != nil {
			return PartialCorrelationResult{}, err
		}
	}

	for _, v := range [][]float64{x, y} {
		sd, err := stats.StandardDeviationPopulation(v)
		if err != nil {
			return PartialCorrelationResult{}, degenerate(core.ReasonZeroVariance, i, j, conditioning, n, err.Error())
		}
		if sd == 0 {
			return PartialCorrelationResult{}, degenerate(core.ReasonZeroVariance, i, j, conditioning, n, "constant column after conditioning")
		}
	}

	r, err := stats.Correlation(x, y)
	if err != nil {
		return PartialCorrelationResult{}, degenerate(core.ReasonZeroVariance, i, j, conditioning, n, err.Error())
	}
	r = math.Max(-1, math.Min(1, r))

	clamped := r
	if math.Abs(clamped) >= MaxAbsCorrelation {
		clamped = math.Copysign(MaxAbsCorrelation, clamped)
	}

	z := 0.5 * math.Log((1+clamped)/(1-clamped))
	se := 1 / math.Sqrt(float64(dof))
	statistic := z / se
	p := 2 * distuv.UnitNormal.Survival(math.Abs(statistic))

	return PartialCorrelationResult{
		Correlation:      r,
		Statistic:        statistic,
		PValue:           math.Min(1, p),
		DegreesOfFreedom: dof,
	}, nil
}

func degenerate(reason core.DegenerateReason, i, j int, conditioning []int, n int, detail string) error {
	return &core.DegenerateStatisticsError{
		Reason:       reason,
		I:            i,
		J:            j,
		Conditioning: append([]int(nil), conditioning...),
		Samples:      n,
		Detail:       detail,
	}
}
