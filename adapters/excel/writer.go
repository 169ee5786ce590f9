package excel

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gocausal/domain/dataset"

	"github.com/xuri/excelize/v2"
)

// WriteMatrix saves m as CSV or XLSX depending on the path's extension
func WriteMatrix(path string, m *dataset.Matrix) error {
	if strings.ToLower(filepath.Ext(path)) == ".xlsx" {
		return writeXLSX(path, m)
	}
	return writeCSV(path, m)
}

func writeCSV(path string, m *dataset.Matrix) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(m.Names()); err != nil {
		return err
	}
	rec := make([]string, m.Cols())
	for r := 0; r < m.Rows(); r++ {
		for c := range rec {
			rec[c] = strconv.FormatFloat(m.At(r, c), 'g', -1, 64)
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return file.Close()
}

func writeXLSX(path string, m *dataset.Matrix) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	header := make([]interface{}, m.Cols())
	for i, n := range m.Names() {
		header[i] = n
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for r := 0; r < m.Rows(); r++ {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		values := make([]interface{}, m.Cols())
		for c := range values {
			values[c] = m.At(r, c)
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save Excel file: %w", err)
	}
	return nil
}
