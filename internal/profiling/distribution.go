package profiling

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"gocausal/domain/core"
)

// DistributionMarkers describes the shape of a column
type DistributionMarkers struct {
	Skewness    float64 `json:"skewness"`
	Kurtosis    float64 `json:"kurtosis"` // total, 3 for a normal
	JarqueBera  float64 `json:"jarque_bera"`
	JarqueBeraP float64 `json:"jarque_bera_p"`
	IsNormal    bool    `json:"is_normal"`
}

// DistributionAnalyzer handles distribution shape analysis
type DistributionAnalyzer struct{}

// NewDistributionAnalyzer creates a new distribution analyzer
func NewDistributionAnalyzer() *DistributionAnalyzer {
	return &DistributionAnalyzer{}
}

// AnalyzeDistribution computes summary statistics and shape markers.
// Constant columns get zero shape markers and are not tested.
func (da *DistributionAnalyzer) AnalyzeDistribution(data []float64) (VariableProfile, error) {
	profile := VariableProfile{N: len(data)}
	if len(data) == 0 {
		return profile, core.NewInputError("empty column")
	}

	mean, err := stats.Mean(data)
	if err != nil {
		return profile, err
	}
	stdDev, err := stats.StandardDeviationPopulation(data)
	if err != nil {
		return profile, err
	}
	min, err := stats.Min(data)
	if err != nil {
		return profile, err
	}
	max, err := stats.Max(data)
	if err != nil {
		return profile, err
	}
	median, err := stats.Median(data)
	if err != nil {
		return profile, err
	}
	q25, q75 := quartiles(data)

	profile.Mean = mean
	profile.StdDev = stdDev
	profile.Min = min
	profile.Max = max
	profile.Median = median
	profile.Q25 = q25
	profile.Q75 = q75
	profile.Outliers = detectOutliers(data, q25, q75)

	if stdDev == 0 {
		profile.Constant = true
		return profile, nil
	}

	skew, kurt := moments(data, mean, stdDev)
	jb, p := jarqueBera(len(data), skew, kurt)
	profile.Distribution = DistributionMarkers{
		Skewness:    skew,
		Kurtosis:    kurt,
		JarqueBera:  jb,
		JarqueBeraP: p,
		IsNormal:    p > NormalityAlpha,
	}
	return profile, nil
}

// quartiles uses the empirical quantile, defined for any non-empty column
func quartiles(data []float64) (q25, q75 float64) {
	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)
	return stat.Quantile(0.25, stat.Empirical, sorted, nil), stat.Quantile(0.75, stat.Empirical, sorted, nil)
}

// moments returns the population skewness and total kurtosis
func moments(data []float64, mean, stdDev float64) (skew, kurt float64) {
	var m3, m4 float64
	for _, x := range data {
		d := (x - mean) / stdDev
		d2 := d * d
		m3 += d2 * d
		m4 += d2 * d2
	}
	n := float64(len(data))
	return m3 / n, m4 / n
}

// jarqueBera tests normality from skewness and kurtosis; the statistic is
// asymptotically chi-squared with two degrees of freedom.
func jarqueBera(n int, skew, kurt float64) (float64, float64) {
	excess := kurt - 3
	jb := float64(n) / 6 * (skew*skew + excess*excess/4)
	p := distuv.ChiSquared{K: 2}.Survival(jb)
	return jb, math.Min(math.Max(p, 0), 1)
}

// detectOutliers identifies outliers using IQR method
func detectOutliers(data []float64, q25, q75 float64) int {
	iqr := q75 - q25
	lowerBound := q25 - 1.5*iqr
	upperBound := q75 + 1.5*iqr

	outlierCount := 0
	for _, x := range data {
		if x < lowerBound || x > upperBound {
			outlierCount++
		}
	}

	return outlierCount
}
