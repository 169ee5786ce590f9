package linear

import (
	"math"

	"gocausal/domain/core"

	"github.com/montanaflynn/stats"
)

// VarianceFloor bounds the residual variance from below in BIC so a
// perfect fit does not send the log-likelihood to infinity.
const VarianceFloor = 1e-10

// BIC scores target as intercept + linear combination of parents + Gaussian
// noise: log-likelihood minus (params/2)*ln(n). Higher is better.
//
// Without parents the raw variance of the target is used and counts as one
// parameter; a constant target is rejected with ReasonZeroVariance. With
// parents the residual variance is floored at VarianceFloor and there are
// len(parents)+1 parameters.
func BIC(columns [][]float64, target int, parents []int) (float64, error) {
	y := columns[target]
	n := float64(len(y))

	if len(parents) == 0 {
		variance, err := stats.Variance(y)
		if err != nil || variance == 0 {
			detail := "constant target without parents"
			if err != nil {
				detail = err.Error()
			}
			return 0, &core.DegenerateStatisticsError{
				Reason:  core.ReasonZeroVariance,
				I:       target,
				J:       -1,
				Samples: len(y),
				Detail:  detail,
			}
		}
		logLik := -0.5*n*math.Log(2*math.Pi*variance) - 0.5*n
		return logLik - 0.5*math.Log(n), nil
	}

	resid, err := Residuals(columns, target, parents)
	if err != nil {
		return 0, err
	}

	variance, err := stats.Variance(resid)
	if err != nil {
		return 0, err
	}
	if variance < VarianceFloor {
		variance = VarianceFloor
	}

	ss := 0.0
	for _, r := range resid {
		ss += r * r
	}

	logLik := -0.5*n*math.Log(2*math.Pi*variance) - 0.5*ss/variance
	params := float64(len(parents) + 1)
	return logLik - params/2*math.Log(n), nil
}
