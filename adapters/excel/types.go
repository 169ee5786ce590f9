package excel

// RawTable is a sheet or CSV file as read: a header row and string cells
type RawTable struct {
	Headers []string   // Column headers, trimmed
	Rows    [][]string // Data rows; xlsx rows may be shorter than the header
}

// LoadSummary reports how a raw table became a numeric matrix
type LoadSummary struct {
	Path        string   `json:"path"`
	Columns     []string `json:"columns"`
	TotalRows   int      `json:"total_rows"`
	KeptRows    int      `json:"kept_rows"`
	DroppedRows int      `json:"dropped_rows"`
}
