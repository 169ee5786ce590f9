package linear

import (
	"math"

	"gocausal/domain/core"

	"gonum.org/v1/gonum/mat"
)

// designMatrix stacks an intercept column and the predictor columns
func designMatrix(columns [][]float64, predictors []int, n int) *mat.Dense {
	k := len(predictors) + 1
	x := mat.NewDense(n, k, nil)
	for r := 0; r < n; r++ {
		x.Set(r, 0, 1)
		for c, p := range predictors {
			x.Set(r, c+1, columns[p][r])
		}
	}
	return x
}

// Residuals regresses columns[target] on an intercept plus the predictor
// columns by ordinary least squares and returns y - Xb. The solve goes
// through the SVD and uses the minimum-norm solution, so collinear
// predictors are tolerated the way a pseudo-inverse would.
func Residuals(columns [][]float64, target int, predictors []int) ([]float64, error) {
	y := columns[target]
	n := len(y)
	x := designMatrix(columns, predictors, n)

	var svd mat.SVD
	if ok := svd.Factorize(x, mat.SVDThin); !ok {
		return nil, &core.DegenerateStatisticsError{
			Reason:       core.ReasonSingularDesign,
			I:            target,
			J:            -1,
			Conditioning: append([]int(nil), predictors...),
			Samples:      n,
			Detail:       "SVD of the design matrix did not converge",
		}
	}

	_, k := x.Dims()
	rcond := math.Nextafter(1, 2) - 1
	rank := svd.Rank(rcond * float64(max(n, k)))

	yVec := mat.NewVecDense(n, append([]float64(nil), y...))
	var beta mat.VecDense
	svd.SolveVecTo(&beta, yVec, rank)

	var fitted mat.VecDense
	fitted.MulVec(x, &beta)

	resid := make([]float64, n)
	for r := 0; r < n; r++ {
		resid[r] = y[r] - fitted.AtVec(r)
	}
	return resid, nil
}
