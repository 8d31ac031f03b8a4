package report

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"incidentscope/domain/incident"
	"incidentscope/internal/analysis"
)

func reportFixture() (*incident.Dataset, *analysis.Summary, *analysis.QualityReport) {
	mon := time.Date(2023, 6, 12, 8, 0, 0, 0, time.UTC)
	tue := time.Date(2024, 6, 13, 14, 30, 0, 0, time.UTC)

	mk := func(number, rawType, city, place string, alarm time.Time, response float64) incident.Incident {
		in := incident.Incident{
			Number:          number,
			Type:            rawType,
			City:            city,
			PlaceType:       place,
			Alarm:           alarm,
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
	ds.FileSize = 3 * 1024 * 1024
	ds.Records = []incident.Incident{
		mk("1", "MEDICAL||EMS", "Baltimore", "RESIDENTIAL", mon, 4),
		mk("2", "MEDICAL||EMS", "Baltimore", "RESIDENTIAL", mon, 6),
		mk("3", "FIRE||STRUCTURE", "Annapolis", "COMMERCIAL", tue, 9),
	}
	ds.Fields = []incident.FieldInfo{
		{Name: "incident_number", DataType: "text", MissingCount: 0, UniqueCount: 3},
		{Name: "city", DataType: "text", MissingCount: 1, UniqueCount: 2},
	}

	s := analysis.NewAnalyzer(10).Summarize(ds.Records)
	q := analysis.AssessQuality(ds)
	return ds, s, q
}

func TestBuildAnalysisReport(t *testing.T) {
	ds, s, _ := reportFixture()
	r := BuildAnalysisReport(ds, s)

	if r.ID == "" {
		t.Error("report should carry an ID")
	}
	md := r.Markdown
	for _, want := range []string{
		"# Emergency Incidents Analysis Report",
		"2023-06-12 to 2024-06-13",
		"**Most Common Incident Type**: MEDICAL (2 incidents)",
		"**Most Active City**: Baltimore (2 incidents)",
		"**Peak Hour**: 8:00 (2 incidents)",
		"**Busiest Day**: Monday (2 incidents)",
		"Avg Response: 5.0 min",
		"### Recommendations",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("analysis report missing %q", want)
		}
	}
}

func TestBuildDatabaseSummary(t *testing.T) {
	ds, s, q := reportFixture()
	summary := BuildDatabaseSummary(ds, s, q)

	if summary.DatabaseInfo.TotalRecords != 3 {
		t.Errorf("TotalRecords = %d, want 3", summary.DatabaseInfo.TotalRecords)
	}
	if summary.DatabaseInfo.FileSizeMB != 3.0 {
		t.Errorf("FileSizeMB = %v, want 3.0", summary.DatabaseInfo.FileSizeMB)
	}
	if summary.DatabaseInfo.DateRange.Start != "2023-06-12" {
		t.Errorf("DateRange.Start = %q", summary.DatabaseInfo.DateRange.Start)
	}
	if summary.DatabaseInfo.DateRange.SpanYears != 1.0 {
		t.Errorf("SpanYears = %v, want 1.0", summary.DatabaseInfo.DateRange.SpanYears)
	}
	if summary.ResponseMetrics.SlowestResponse != 9 {
		t.Errorf("SlowestResponse = %v, want 9", summary.ResponseMetrics.SlowestResponse)
	}

	// The structured form must serialize with the documented key layout.
	data, err := json.Marshal(summary)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	for _, key := range []string{"database_info", "geographic_coverage", "response_metrics", "data_quality"} {
		if !strings.Contains(string(data), `"`+key+`"`) {
			t.Errorf("JSON output missing %q section", key)
		}
	}
}

func TestDatabaseSummaryMarkdown(t *testing.T) {
	ds, s, q := reportFixture()
	r := BuildDatabaseSummary(ds, s, q).Markdown()

	for _, want := range []string{
		"# Emergency Incidents Database Summary",
		"| **Total Records** | 3 |",
		"| **File Size** | 3.0 MB |",
		"**city**: 33.3% missing",
		"## Key Insights",
	} {
		if !strings.Contains(r.Markdown, want) {
			t.Errorf("summary markdown missing %q", want)
		}
	}
}

func TestWriter(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "output")
	w := NewWriter(dir)

	ds, s, q := reportFixture()
	path, err := w.WriteMarkdown(AnalysisReportFile, BuildAnalysisReport(ds, s))
	if err != nil {
		t.Fatalf("WriteMarkdown failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("report file not written: %v", err)
	}

	summary := BuildDatabaseSummary(ds, s, q)
	path, err = w.WriteJSON(DatabaseSummaryJSON, summary)
	if err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading JSON summary: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("written JSON does not parse: %v", err)
	}
	if _, ok := decoded["database_info"]; !ok {
		t.Error("written JSON missing database_info")
	}
}

func TestGroupThousands(t *testing.T) {
	cases := map[int]string{
		0:       "0",
		999:     "999",
		1000:    "1,000",
		1234567: "1,234,567",
		-4500:   "-4,500",
	}
	for in, want := range cases {
		if got := groupThousands(in); got != want {
			t.Errorf("groupThousands(%d) = %q, want %q", in, got, want)
		}
	}
}
