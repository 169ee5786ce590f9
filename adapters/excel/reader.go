package excel

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gocausal/domain/core"
	"gocausal/domain/dataset"
	"gocausal/internal"

	"github.com/xuri/excelize/v2"
)

// DataReader handles reading Excel and CSV files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	sheet    string
	logger   *internal.Logger
}

// NewDataReader creates a reader for filePath, choosing CSV or XLSX by the
// file extension. XLSX files are read from their first sheet.
func NewDataReader(filePath string) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &DataReader{filePath: filePath, fileType: fileType, logger: internal.DefaultLogger}
}

// WithSheet reads the named sheet instead of the first one
func (r *DataReader) WithSheet(sheet string) *DataReader {
	r.sheet = sheet
	return r
}

// WithLogger replaces the package default logger
func (r *DataReader) WithLogger(logger *internal.Logger) *DataReader {
	if logger != nil {
		r.logger = logger
	}
	return r
}

// ReadData reads the file into a raw string table
func (r *DataReader) ReadData() (*RawTable, error) {
	r.logger.Debug("[DataReader] Starting to read %s file: %s", r.fileType, r.filePath)

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, core.NewInputError("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	var (
		rows [][]string
		err  error
	)
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows()
	default:
		rows, err = r.readExcelRows()
	}
	if err != nil {
		return nil, err
	}

	if len(rows) < 2 {
		return nil, core.NewInputError("%s file must have at least a header row and one data row", strings.ToUpper(r.fileType))
	}
	return processRows(rows), nil
}

func (r *DataReader) readExcelRows() ([][]string, error) {
	start := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := r.sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	r.logger.Debug("[DataReader] sheet %s read in %.2fms (%d rows)", sheet, float64(time.Since(start).Nanoseconds())/1e6, len(rows))
	return rows, nil
}

func (r *DataReader) readCSVRows() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	start := time.Now()
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, core.NewInputError("failed to read CSV file: %v", err)
	}
	r.logger.Debug("[DataReader] CSV file read in %.2fms (%d rows)", float64(time.Since(start).Nanoseconds())/1e6, len(rows))
	return rows, nil
}

func processRows(rows [][]string) *RawTable {
	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}
	return &RawTable{Headers: headers, Rows: rows[1:]}
}

// ToMatrix keeps the given columns (all when empty) and drops every row
// with an empty or non-numeric cell in any of them.
func (t *RawTable) ToMatrix(variables []string) (*dataset.Matrix, LoadSummary, error) {
	if len(variables) == 0 {
		variables = t.Headers
	}

	positions := make([]int, len(variables))
	for i, v := range variables {
		pos := -1
		for j, h := range t.Headers {
			if h == v {
				pos = j
				break
			}
		}
		if pos < 0 {
			return nil, LoadSummary{}, core.NewInputError("column %q not found", v)
		}
		positions[i] = pos
	}

	summary := LoadSummary{Columns: append([]string(nil), variables...), TotalRows: len(t.Rows)}
	rows := make([][]float64, 0, len(t.Rows))
	for _, raw := range t.Rows {
		row, ok := parseRow(raw, positions)
		if !ok {
			summary.DroppedRows++
			continue
		}
		rows = append(rows, row)
	}
	summary.KeptRows = len(rows)

	m, err := dataset.NewMatrix(variables, rows)
	if err != nil {
		return nil, summary, err
	}
	return m, summary, nil
}

func parseRow(raw []string, positions []int) ([]float64, bool) {
	row := make([]float64, len(positions))
	for i, pos := range positions {
		if pos >= len(raw) {
			return nil, false
		}
		cell := strings.TrimSpace(raw[pos])
		if cell == "" {
			return nil, false
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, false
		}
		row[i] = v
	}
	return row, true
}

// Load reads path and converts the selected columns in one step
func (r *DataReader) Load(variables []string) (*dataset.Matrix, LoadSummary, error) {
	table, err := r.ReadData()
	if err != nil {
		return nil, LoadSummary{}, err
	}
	m, summary, err := table.ToMatrix(variables)
	summary.Path = r.filePath
	if err != nil {
		return nil, summary, err
	}
	r.logger.Info("[DataReader] %s: kept %d of %d rows (%d columns)", filepath.Base(r.filePath), summary.KeptRows, summary.TotalRows, len(summary.Columns))
	return m, summary, nil
}
