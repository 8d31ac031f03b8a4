package excel

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "incidents.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

func TestReadCSVTable(t *testing.T) {
	path := writeTempCSV(t, "incident_number,city , incident_type\nF23-0001, Baltimore ,MEDICAL||EMS\nF23-0002,Annapolis\n")

	reader := NewDataReader(path)
	table, err := reader.ReadTable()
	if err != nil {
		t.Fatalf("ReadTable failed: %v", err)
	}

	if len(table.Headers) != 3 {
		t.Fatalf("got %d headers, want 3", len(table.Headers))
	}
	if table.Headers[1] != "city" {
		t.Errorf("header should be trimmed, got %q", table.Headers[1])
	}
	if len(table.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(table.Rows))
	}
	if table.Rows[0]["city"] != "Baltimore" {
		t.Errorf("cell should be trimmed, got %q", table.Rows[0]["city"])
	}

	// Ragged second row maps only the cells it has.
	if _, ok := table.Rows[1]["incident_type"]; ok {
		t.Error("short row should not carry a value for the missing column")
	}
}

func TestReadTableMissingFile(t *testing.T) {
	reader := NewDataReader(filepath.Join(t.TempDir(), "nope.csv"))
	if _, err := reader.ReadTable(); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestReadCSVHeaderOnly(t *testing.T) {
	path := writeTempCSV(t, "incident_number,city\n")
	if _, err := NewDataReader(path).ReadTable(); err == nil {
		t.Error("expected error for header-only file")
	}
}

func TestFileSize(t *testing.T) {
	path := writeTempCSV(t, "a,b\n1,2\n")
	reader := NewDataReader(path)
	if size := reader.FileSize(); size == 0 {
		t.Error("FileSize should be non-zero for an existing file")
	}
}

func TestColumn(t *testing.T) {
	table := &Table{
		Headers: []string{"city"},
		Rows: []RawRowData{
			{"city": "Baltimore"},
			{},
			{"city": "Annapolis"},
		},
	}
	col := table.Column("city")
	if len(col) != 3 {
		t.Fatalf("Column should return one value per row, got %d", len(col))
	}
	if col[1] != "" {
		t.Errorf("missing cell should be empty string, got %q", col[1])
	}

	if !table.HasColumn("city") {
		t.Error("HasColumn should find a present header")
	}
	if table.HasColumn("alarm_datetime") {
		t.Error("HasColumn should reject an absent header")
	}
}
