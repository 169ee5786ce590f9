// Package profiling summarises the variables of a dataset before discovery.
// Both engines assume roughly linear-Gaussian data and fail on constant
// columns, so the profile flags those cases up front.
package profiling

import (
	"fmt"

	"gocausal/domain/dataset"
)

// NormalityAlpha is the Jarque-Bera level below which a column is flagged
// as non-Gaussian
const NormalityAlpha = 0.001

// VariableProfile holds the summary statistics of one column
type VariableProfile struct {
	Name     string  `json:"name"`
	N        int     `json:"n"`
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"std_dev"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Median   float64 `json:"median"`
	Q25      float64 `json:"q25"`
	Q75      float64 `json:"q75"`
	Outliers int     `json:"outliers"`
	Constant bool    `json:"constant"`

	Distribution DistributionMarkers `json:"distribution"`
}

// DataProfiler profiles every column of a matrix
type DataProfiler struct {
	analyzer *DistributionAnalyzer
}

// NewDataProfiler creates a new data profiler
func NewDataProfiler() *DataProfiler {
	return &DataProfiler{
		analyzer: NewDistributionAnalyzer(),
	}
}

// ProfileColumn analyses one column
func (dp *DataProfiler) ProfileColumn(data []float64, name string) (VariableProfile, error) {
	profile, err := dp.analyzer.AnalyzeDistribution(data)
	if err != nil {
		return VariableProfile{}, fmt.Errorf("profile %s: %w", name, err)
	}
	profile.Name = name
	return profile, nil
}

// ProfileMatrix analyses all columns in matrix order
func (dp *DataProfiler) ProfileMatrix(m *dataset.Matrix) ([]VariableProfile, error) {
	profiles := make([]VariableProfile, 0, m.Cols())
	for c, name := range m.Names() {
		profile, err := dp.ProfileColumn(m.Column(c), name)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	return profiles, nil
}

// Warnings lists the columns likely to break or bias discovery
func Warnings(profiles []VariableProfile) []string {
	var out []string
	for _, p := range profiles {
		switch {
		case p.Constant:
			out = append(out, fmt.Sprintf("%s is constant; partial correlations and scores involving it are undefined", p.Name))
		case !p.Distribution.IsNormal:
			out = append(out, fmt.Sprintf("%s departs from normality (skew %.2f, kurtosis %.2f, Jarque-Bera p=%.2g); Fisher Z p-values may be miscalibrated",
				p.Name, p.Distribution.Skewness, p.Distribution.Kurtosis, p.Distribution.JarqueBeraP))
		}
	}
	return out
}
