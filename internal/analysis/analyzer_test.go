package analysis

import (
	"math"
	"testing"
	"time"

	"incidentscope/domain/incident"
)

func mkIncident(number, rawType, city string, alarm time.Time, response float64) incident.Incident {
	in := incident.Incident{
		Number:          number,
		Type:            rawType,
		City:            city,
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

func testRecords() []incident.Incident {
	mon := time.Date(2023, 6, 12, 8, 0, 0, 0, time.UTC)  // Monday
	tue := time.Date(2023, 6, 13, 8, 30, 0, 0, time.UTC) // Tuesday
	return []incident.Incident{
		mkIncident("1", "MEDICAL||EMS", "Baltimore", mon, 4),
		mkIncident("2", "MEDICAL||EMS", "Baltimore", mon, 6),
		mkIncident("3", "FIRE||STRUCTURE", "Annapolis", tue, 8),
		mkIncident("4", "", "Towson", time.Time{}, math.NaN()),
	}
}

func TestSummarizeCounts(t *testing.T) {
	s := NewAnalyzer(10).Summarize(testRecords())

	if s.TotalIncidents != 4 {
		t.Errorf("TotalIncidents = %d, want 4", s.TotalIncidents)
	}
	if s.UniqueCities != 3 {
		t.Errorf("UniqueCities = %d, want 3", s.UniqueCities)
	}
	if s.UniqueMainTypes != 3 {
		t.Errorf("UniqueMainTypes = %d, want 3 (MEDICAL, FIRE, Unknown)", s.UniqueMainTypes)
	}
}

func TestSummarizeResponse(t *testing.T) {
	s := NewAnalyzer(10).Summarize(testRecords())

	if s.Response.Count != 3 {
		t.Fatalf("Response.Count = %d, want 3 (missing value excluded)", s.Response.Count)
	}
	if s.Response.Mean != 6 {
		t.Errorf("Response.Mean = %v, want 6", s.Response.Mean)
	}
	if s.Response.Median != 6 {
		t.Errorf("Response.Median = %v, want 6", s.Response.Median)
	}
	if s.Response.Max != 8 {
		t.Errorf("Response.Max = %v, want 8", s.Response.Max)
	}
}

func TestSummarizeTotalTime(t *testing.T) {
	records := testRecords()
	records[0].Category = "Medical Emergencies"
	records[0].TotalMinutes = 30
	records[1].Category = "Medical Emergencies"
	records[1].TotalMinutes = 50
	records[2].Category = "Fires"
	records[2].TotalMinutes = 130
	// records[3] keeps a missing total time and stays out of the mean

	s := NewAnalyzer(10).Summarize(records)
	if s.AvgTotalMinutes != 70 {
		t.Errorf("AvgTotalMinutes = %v, want 70", s.AvgTotalMinutes)
	}

	groups := GroupMeans(records, 0,
		func(in *incident.Incident) string { return in.Category },
		func(in *incident.Incident) float64 { return in.TotalMinutes })
	if len(groups) != 2 {
		t.Fatalf("got %d category groups, want 2", len(groups))
	}
	if groups[0].Label != "Fires" || groups[0].Mean != 130 {
		t.Errorf("first group = %s/%v, want Fires/130", groups[0].Label, groups[0].Mean)
	}
	if groups[1].Label != "Medical Emergencies" || groups[1].Mean != 40 {
		t.Errorf("second group = %s/%v, want Medical Emergencies/40", groups[1].Label, groups[1].Mean)
	}
}

func TestSummarizeBreakdowns(t *testing.T) {
	s := NewAnalyzer(10).Summarize(testRecords())

	if len(s.TypeBreakdown) != 3 {
		t.Fatalf("TypeBreakdown has %d entries, want 3", len(s.TypeBreakdown))
	}
	top := s.TypeBreakdown[0]
	if top.Label != "MEDICAL" || top.Count != 2 {
		t.Errorf("top type = %s/%d, want MEDICAL/2", top.Label, top.Count)
	}
	if top.Percentage != 50 {
		t.Errorf("top type percentage = %v, want 50 (base is all records)", top.Percentage)
	}
}

func TestSummarizeTemporal(t *testing.T) {
	s := NewAnalyzer(10).Summarize(testRecords())

	if s.PeakHour != 8 {
		t.Errorf("PeakHour = %d, want 8", s.PeakHour)
	}
	if s.PeakHourCount != 3 {
		t.Errorf("PeakHourCount = %d, want 3", s.PeakHourCount)
	}
	if s.BusiestDay != "Monday" {
		t.Errorf("BusiestDay = %q, want Monday", s.BusiestDay)
	}
	if len(s.DailyCounts) != 2 {
		t.Fatalf("DailyCounts has %d entries, want 2", len(s.DailyCounts))
	}
	if !s.DailyCounts[0].Date.Before(s.DailyCounts[1].Date) {
		t.Error("DailyCounts should be chronological")
	}
	// The record without an alarm datetime contributes to no temporal bucket.
	total := 0
	for _, c := range s.HourlyCounts {
		total += c
	}
	if total != 3 {
		t.Errorf("hourly counts sum = %d, want 3", total)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := NewAnalyzer(10).Summarize(nil)
	if s.TotalIncidents != 0 {
		t.Errorf("TotalIncidents = %d, want 0", s.TotalIncidents)
	}
	if s.PeakHour != -1 {
		t.Errorf("PeakHour = %d, want -1 for empty input", s.PeakHour)
	}
}

func TestRefusalRateBase(t *testing.T) {
	records := testRecords()
	records[0].TransportDisposition = incident.TransportByEMS
	records[1].TransportDisposition = incident.PatientRefused
	// records[2] and [3] have no disposition and stay out of the base

	s := NewAnalyzer(10).Summarize(records)
	if s.RefusalRate != 50 {
		t.Errorf("RefusalRate = %v, want 50", s.RefusalRate)
	}
	if s.TransportedByEMS != 1 {
		t.Errorf("TransportedByEMS = %d, want 1", s.TransportedByEMS)
	}
}

func TestGroupMeans(t *testing.T) {
	groups := GroupMeans(testRecords(), 0,
		func(in *incident.Incident) string { return in.MainType },
		func(in *incident.Incident) float64 { return in.ResponseMinutes })

	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2 (Unknown has no response data)", len(groups))
	}
	if groups[0].Label != "FIRE" || groups[0].Mean != 8 {
		t.Errorf("first group = %s/%v, want FIRE/8 (descending by mean)", groups[0].Label, groups[0].Mean)
	}
	if groups[1].Label != "MEDICAL" || groups[1].Mean != 5 {
		t.Errorf("second group = %s/%v, want MEDICAL/5", groups[1].Label, groups[1].Mean)
	}
}

func TestTopCountsLimit(t *testing.T) {
	items := TopCounts(testRecords(), 0, 2, func(in *incident.Incident) string { return in.City })
	if len(items) != 2 {
		t.Fatalf("got %d items, want limit of 2", len(items))
	}
	if items[0].Label != "Baltimore" {
		t.Errorf("top city = %q, want Baltimore", items[0].Label)
	}
}
