package incident

import (
	"math"
	"testing"
	"time"
)

func TestMainTypeOf(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"MEDICAL||EMS_CALL||CARDIAC", "MEDICAL"},
		{"FIRE||STRUCTURE", "FIRE"},
		{"PUBSERV", "PUBSERV"},
		{"", UnknownType},
		{"  ", UnknownType},
		{"||SUB", UnknownType},
	}

	for _, tc := range cases {
		if got := MainTypeOf(tc.raw); got != tc.want {
			t.Errorf("MainTypeOf(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestDerive(t *testing.T) {
	in := Incident{
		Type:  "FIRE||STRUCTURE",
		Alarm: time.Date(2023, 6, 14, 17, 42, 0, 0, time.UTC), // a Wednesday
	}
	in.Derive()

	if in.MainType != "FIRE" {
		t.Errorf("MainType = %q, want FIRE", in.MainType)
	}
	if in.AlarmHour != 17 {
		t.Errorf("AlarmHour = %d, want 17", in.AlarmHour)
	}
	if in.Weekday != "Wednesday" {
		t.Errorf("Weekday = %q, want Wednesday", in.Weekday)
	}
}

func TestDeriveMissingAlarm(t *testing.T) {
	in := Incident{Type: "MEDICAL||EMS_CALL"}
	in.Derive()

	if in.AlarmHour != -1 {
		t.Errorf("AlarmHour = %d, want -1 for missing alarm", in.AlarmHour)
	}
	if in.Weekday != "" {
		t.Errorf("Weekday = %q, want empty for missing alarm", in.Weekday)
	}
	if in.MainType != "MEDICAL" {
		t.Errorf("MainType = %q, want MEDICAL", in.MainType)
	}
}

func TestDatasetDateRange(t *testing.T) {
	ds := NewDataset("test.csv")
	ds.Records = []Incident{
		{Alarm: time.Date(2023, 3, 1, 8, 0, 0, 0, time.UTC)},
		{}, // missing alarm must be skipped
		{Alarm: time.Date(2023, 1, 15, 23, 0, 0, 0, time.UTC)},
		{Alarm: time.Date(2023, 7, 4, 12, 0, 0, 0, time.UTC)},
	}

	min, max, ok := ds.DateRange()
	if !ok {
		t.Fatal("expected a valid date range")
	}
	if min.Day() != 15 || min.Month() != time.January {
		t.Errorf("min = %v, want 2023-01-15", min)
	}
	if max.Day() != 4 || max.Month() != time.July {
		t.Errorf("max = %v, want 2023-07-04", max)
	}
}

func TestDatasetDateRangeEmpty(t *testing.T) {
	ds := NewDataset("test.csv")
	ds.Records = []Incident{{}, {}}

	if _, _, ok := ds.DateRange(); ok {
		t.Error("expected no date range when all alarms are missing")
	}
}

func makeRecords() []Incident {
	records := []Incident{
		{Type: "MEDICAL||EMS", City: "Baltimore", Alarm: time.Date(2023, 2, 1, 9, 0, 0, 0, time.UTC), ResponseMinutes: 4.5},
		{Type: "FIRE||STRUCTURE", City: "Annapolis", Alarm: time.Date(2023, 2, 10, 14, 0, 0, 0, time.UTC), ResponseMinutes: 8.0},
		{Type: "MEDICAL||EMS", City: "Baltimore", Alarm: time.Date(2023, 3, 5, 22, 0, 0, 0, time.UTC), ResponseMinutes: math.NaN()},
		{Type: "PUBSERV", City: "Rockville", ResponseMinutes: 3.0}, // no alarm datetime
	}
	for i := range records {
		records[i].Derive()
	}
	return records
}

func TestFilterByType(t *testing.T) {
	got := Filter{MainType: "MEDICAL"}.Apply(makeRecords())
	if len(got) != 2 {
		t.Fatalf("expected 2 MEDICAL incidents, got %d", len(got))
	}
	for _, in := range got {
		if in.MainType != "MEDICAL" {
			t.Errorf("unexpected main type %q", in.MainType)
		}
	}
}

func TestFilterByDateWindow(t *testing.T) {
	f := Filter{
		From: time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2023, 2, 28, 0, 0, 0, 0, time.UTC),
	}
	got := f.Apply(makeRecords())
	// Two incidents fall in February; the record without an alarm datetime is
	// excluded by any date window.
	if len(got) != 2 {
		t.Fatalf("expected 2 incidents in window, got %d", len(got))
	}
}

func TestFilterMaxResponseExcludesMissing(t *testing.T) {
	got := Filter{MaxResponseMinutes: 6}.Apply(makeRecords())
	if len(got) != 2 {
		t.Fatalf("expected 2 incidents under ceiling, got %d", len(got))
	}
	for _, in := range got {
		if !in.HasResponseTime() || in.ResponseMinutes > 6 {
			t.Errorf("incident %+v should have been excluded", in)
		}
	}
}

func TestZeroFilterReturnsAll(t *testing.T) {
	records := makeRecords()
	got := Filter{}.Apply(records)
	if len(got) != len(records) {
		t.Fatalf("zero filter dropped records: got %d, want %d", len(got), len(records))
	}
}
