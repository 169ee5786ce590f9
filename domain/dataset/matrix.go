package dataset

import (
	"math"

	"gocausal/domain/core"
)

// Matrix is the canonical data object for causal discovery: rows are
// independent observational units, columns are named variables.
// Values are stored row-major and never mutated after construction.
type Matrix struct {
	names []string
	index map[string]int
	data  [][]float64
}

// NewMatrix validates and wraps a rectangular table. Every value must be
// finite; missing values have to be dropped or imputed by the caller.
func NewMatrix(names []string, rows [][]float64) (*Matrix, error) {
	if len(names) == 0 {
		return nil, core.NewInputError("matrix has no columns")
	}

	index := make(map[string]int, len(names))
	for i, name := range names {
		if name == "" {
			return nil, core.NewInputError("column %d has an empty name", i)
		}
		if _, dup := index[name]; dup {
			return nil, core.NewInputError("duplicate column %q", name)
		}
		index[name] = i
	}

	data := make([][]float64, len(rows))
	for r, row := range rows {
		if len(row) != len(names) {
			return nil, core.NewInputError("row %d has %d values, expected %d", r, len(row), len(names))
		}
		for c, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, core.NewInputError("non-finite value at row %d column %q", r, names[c])
			}
		}
		data[r] = append([]float64(nil), row...)
	}

	return &Matrix{
		names: append([]string(nil), names...),
		index: index,
		data:  data,
	}, nil
}

// Rows returns the sample count n
func (m *Matrix) Rows() int {
	return len(m.data)
}

// Cols returns the variable count p
func (m *Matrix) Cols() int {
	return len(m.names)
}

// Names returns a copy of the column names in order
func (m *Matrix) Names() []string {
	return append([]string(nil), m.names...)
}

// IndexOf returns the column position of a variable
func (m *Matrix) IndexOf(name string) (int, bool) {
	i, ok := m.index[name]
	return i, ok
}

// At returns the value at row r, column c
func (m *Matrix) At(r, c int) float64 {
	return m.data[r][c]
}

// Row returns a copy of row r
func (m *Matrix) Row(r int) []float64 {
	return append([]float64(nil), m.data[r]...)
}

// Column returns a copy of column c
func (m *Matrix) Column(c int) []float64 {
	col := make([]float64, len(m.data))
	for r, row := range m.data {
		col[r] = row[c]
	}
	return col
}

// Columns returns every column as its own slice, in column order. The
// statistics layer works column-wise, so engines call this once per fit.
func (m *Matrix) Columns() [][]float64 {
	cols := make([][]float64, len(m.names))
	for c := range m.names {
		cols[c] = m.Column(c)
	}
	return cols
}

// Select returns a new matrix restricted to the given variables, in the
// given order. An empty selection returns all columns.
func (m *Matrix) Select(names []string) (*Matrix, error) {
	if len(names) == 0 {
		return m, nil
	}

	positions := make([]int, len(names))
	for i, name := range names {
		c, ok := m.index[name]
		if !ok {
			return nil, core.NewInputError("unknown variable %q", name)
		}
		positions[i] = c
	}

	rows := make([][]float64, len(m.data))
	for r, row := range m.data {
		sel := make([]float64, len(positions))
		for i, c := range positions {
			sel[i] = row[c]
		}
		rows[r] = sel
	}
	return NewMatrix(names, rows)
}

// Fingerprint returns a content hash used to tie discovery runs to the
// exact table they were learned from.
func (m *Matrix) Fingerprint() core.Hash {
	return core.ComputeMatrixHash(m.names, m.data)
}
