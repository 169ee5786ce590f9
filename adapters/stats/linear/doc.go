// Package linear holds the linear-Gaussian statistics shared by the
// discovery engines: least-squares residuals, the partial-correlation
// independence test with Fisher's Z transform, and the BIC score.
//
// Every function takes the data column-wise ([][]float64, one slice per
// variable, all of equal length) and refers to variables by column index.
// Degenerate inputs surface as *core.DegenerateStatisticsError rather
// than NaN results.
package linear
