package analysis

import (
	"math"
	"testing"
	"time"

	"incidentscope/domain/incident"
)

func TestAnalyzeDistribution(t *testing.T) {
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}

	d, err := AnalyzeDistribution("response_time_minutes", values, 4)
	if err != nil {
		t.Fatalf("AnalyzeDistribution failed: %v", err)
	}

	if d.Count != 8 {
		t.Errorf("Count = %d, want 8", d.Count)
	}
	if d.Mean != 5 {
		t.Errorf("Mean = %v, want 5", d.Mean)
	}
	if d.Min != 2 || d.Max != 9 {
		t.Errorf("Min/Max = %v/%v, want 2/9", d.Min, d.Max)
	}

	if len(d.Histogram) != 4 {
		t.Fatalf("Histogram has %d bins, want 4", len(d.Histogram))
	}
	total := 0
	for _, bin := range d.Histogram {
		total += bin.Count
	}
	if total != len(values) {
		t.Errorf("histogram counts sum to %d, want %d", total, len(values))
	}
	last := d.Histogram[len(d.Histogram)-1]
	if last.Count == 0 {
		t.Error("max value should land in the last bin")
	}
}

func TestAnalyzeDistributionOutliers(t *testing.T) {
	values := []float64{5, 5, 5, 5, 6, 6, 6, 6, 100}

	d, err := AnalyzeDistribution("response_time_minutes", values, 10)
	if err != nil {
		t.Fatalf("AnalyzeDistribution failed: %v", err)
	}
	if d.OutlierCount != 1 {
		t.Errorf("OutlierCount = %d, want 1", d.OutlierCount)
	}
	if d.Skewness <= 0 {
		t.Errorf("Skewness = %v, want positive for a right-tailed sample", d.Skewness)
	}
}

func TestAnalyzeDistributionTooFewValues(t *testing.T) {
	if _, err := AnalyzeDistribution("units_responded", []float64{1}, 10); err == nil {
		t.Error("expected error for a single value")
	}
}

func TestCorrelateFields(t *testing.T) {
	xs := []float64{1, 2, 3, 4}
	ys := []float64{3, 5, 7, 9} // y = 2x + 1

	rel := CorrelateFields(xs, ys)
	if rel.N != 4 {
		t.Errorf("N = %d, want 4", rel.N)
	}
	if math.Abs(rel.Pearson-1) > 1e-9 {
		t.Errorf("Pearson = %v, want 1", rel.Pearson)
	}
	if math.Abs(rel.Slope-2) > 1e-9 || math.Abs(rel.Intercept-1) > 1e-9 {
		t.Errorf("fit = %vx + %v, want 2x + 1", rel.Slope, rel.Intercept)
	}
}

func TestDailyTrend(t *testing.T) {
	base := time.Date(2023, 6, 12, 0, 0, 0, 0, time.UTC)
	daily := []DailyCount{
		{Date: base, Count: 10},
		{Date: base.AddDate(0, 0, 1), Count: 12},
		{Date: base.AddDate(0, 0, 2), Count: 14},
	}

	rel := DailyTrend(daily)
	if rel.N != 3 {
		t.Errorf("N = %d, want 3", rel.N)
	}
	if math.Abs(rel.Slope-2) > 1e-9 {
		t.Errorf("Slope = %v, want 2 per day", rel.Slope)
	}

	if empty := DailyTrend(nil); empty.N != 0 {
		t.Errorf("empty trend N = %d, want 0", empty.N)
	}
}

func TestHistogram(t *testing.T) {
	bins := Histogram([]float64{1, 2, 3, 4, 5}, 2)
	if len(bins) != 2 {
		t.Fatalf("got %d bins, want 2", len(bins))
	}
	if bins[0].Count+bins[1].Count != 5 {
		t.Errorf("counts sum to %d, want 5", bins[0].Count+bins[1].Count)
	}
	if Histogram(nil, 5) != nil {
		t.Error("no values should yield no bins")
	}
}

func TestPairedValues(t *testing.T) {
	xs := []float64{1, math.NaN(), 3, 4}
	ys := []float64{2, 5, math.NaN(), 8}

	px, py := PairedValues(xs, ys)
	if len(px) != 2 || len(py) != 2 {
		t.Fatalf("got %d pairs, want 2", len(px))
	}
	if px[0] != 1 || py[0] != 2 || px[1] != 4 || py[1] != 8 {
		t.Errorf("pairs = %v/%v, want (1,2) and (4,8)", px, py)
	}
}

func TestAssessQuality(t *testing.T) {
	ds := incident.NewDataset("incidents.csv")
	ds.Records = make([]incident.Incident, 100)
	ds.Fields = []incident.FieldInfo{
		{Name: "incident_number", DataType: "text", MissingCount: 0, UniqueCount: 100},
		{Name: "city", DataType: "text", MissingCount: 10, UniqueCount: 12},
		{Name: "patient_care_evaluation", DataType: "text", MissingCount: 60, UniqueCount: 4},
	}

	report := AssessQuality(ds)
	if report.HighQualityColumns != 1 {
		t.Errorf("HighQualityColumns = %d, want 1", report.HighQualityColumns)
	}
	if report.GoodQualityColumns != 1 {
		t.Errorf("GoodQualityColumns = %d, want 1", report.GoodQualityColumns)
	}
	if report.PoorQualityColumns != 1 {
		t.Errorf("PoorQualityColumns = %d, want 1", report.PoorQualityColumns)
	}

	if len(report.MissingFields) != 2 {
		t.Fatalf("MissingFields has %d entries, want 2", len(report.MissingFields))
	}
	if report.MissingFields[0].Name != "patient_care_evaluation" {
		t.Errorf("worst field = %q, want patient_care_evaluation first", report.MissingFields[0].Name)
	}
}
