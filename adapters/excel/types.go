package excel

// RawRowData represents a row of raw tabular data as string key-value pairs
type RawRowData map[string]string

// Table represents a raw tabular dataset read from CSV or Excel
type Table struct {
	Headers []string     // Column headers
	Rows    []RawRowData // Data rows
}

// Column returns every cell of a column, in row order. Missing cells appear
// as empty strings so row indices stay aligned.
func (t *Table) Column(name string) []string {
	values := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		values[i] = row[name]
	}
	return values
}

// HasColumn reports whether the table carries the named header.
func (t *Table) HasColumn(name string) bool {
	for _, h := range t.Headers {
		if h == name {
			return true
		}
	}
	return false
}
