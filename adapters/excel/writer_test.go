package excel

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"incidentscope/domain/incident"
	"incidentscope/internal/analysis"
)

func TestWorkbookWriter(t *testing.T) {
	mk := func(number, rawType, city string, response float64) incident.Incident {
		in := incident.Incident{
			Number:          number,
			Type:            rawType,
			City:            city,
			Alarm:           time.Date(2023, 6, 12, 8, 0, 0, 0, time.UTC),
			ResponseMinutes: response,
			ControlMinutes:  math.NaN(),
			TotalMinutes:    math.NaN(),
			UnitsResponded:  math.NaN(),
			TotalCasualties: math.NaN(),
			Latitude:        math.NaN(),
			Longitude:       math.NaN(),
		}
		in.Derive()
		return in
	}

	ds := incident.NewDataset("incidents.csv")
	ds.Records = []incident.Incident{
		mk("1", "MEDICAL||EMS", "Baltimore", 4),
		mk("2", "FIRE||STRUCTURE", "Annapolis", 8),
	}
	ds.Fields = []incident.FieldInfo{
		{Name: "incident_number", DataType: "text", MissingCount: 0, UniqueCount: 2},
		{Name: "city", DataType: "text", MissingCount: 1, UniqueCount: 2},
	}

	summary := analysis.NewAnalyzer(10).Summarize(ds.Records)
	quality := analysis.AssessQuality(ds)
	hist := analysis.Histogram([]float64{4, 8}, 2)

	path := filepath.Join(t.TempDir(), "analysis.xlsx")
	if err := NewWorkbookWriter().Write(path, summary, quality, hist); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("workbook does not open: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	want := []string{"Overview", "Incident Types", "Cities", "Response Times", "Data Quality"}
	if len(sheets) != len(want) {
		t.Fatalf("got sheets %v, want %v", sheets, want)
	}
	for i, name := range want {
		if sheets[i] != name {
			t.Errorf("sheet[%d] = %q, want %q", i, sheets[i], name)
		}
	}

	total, err := f.GetCellValue("Overview", "B2")
	if err != nil {
		t.Fatalf("reading overview cell: %v", err)
	}
	if total != "2" {
		t.Errorf("Total Incidents cell = %q, want 2", total)
	}

	topType, err := f.GetCellValue("Incident Types", "A2")
	if err != nil {
		t.Fatalf("reading types cell: %v", err)
	}
	if topType != "FIRE" && topType != "MEDICAL" {
		t.Errorf("first type row = %q, want a main type", topType)
	}

	// Histogram section starts after the 8 stat rows and a blank row.
	histHeader, err := f.GetCellValue("Response Times", "A10")
	if err != nil {
		t.Fatalf("reading response cell: %v", err)
	}
	if histHeader != "Bin Low" {
		t.Errorf("histogram header = %q, want Bin Low", histHeader)
	}
}
