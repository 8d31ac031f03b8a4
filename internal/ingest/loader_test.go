package ingest

import (
	"math"
	"testing"

	"incidentscope/adapters/excel"
)

func sampleTable() *excel.Table {
	headers := []string{
		ColIncidentNumber, ColAlarm, ColType, ColCity,
		ColResponseMinutes, ColTotalCasualties, ColPeoplePresent, "station_notes",
	}
	rows := []excel.RawRowData{
		{
			ColIncidentNumber:  "F23-0001",
			ColAlarm:           "2023-06-14T17:42:00Z",
			ColType:            "FIRE||STRUCTURE",
			ColCity:            "Baltimore",
			ColResponseMinutes: "6.2",
			ColTotalCasualties: "0",
			ColPeoplePresent:   "t",
			"station_notes":    "mutual aid",
		},
		{
			ColIncidentNumber:  "F23-0002",
			ColAlarm:           "bad-date",
			ColType:            "",
			ColCity:            "Annapolis",
			ColResponseMinutes: "",
			ColTotalCasualties: "2",
			ColPeoplePresent:   "f",
		},
	}
	return &excel.Table{Headers: headers, Rows: rows}
}

func TestFromTable(t *testing.T) {
	ds, err := FromTable(sampleTable(), "incidents.csv", 1024)
	if err != nil {
		t.Fatalf("FromTable failed: %v", err)
	}

	if len(ds.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(ds.Records))
	}
	if ds.FileSize != 1024 {
		t.Errorf("FileSize = %d, want 1024", ds.FileSize)
	}

	first := ds.Records[0]
	if first.MainType != "FIRE" {
		t.Errorf("MainType = %q, want FIRE", first.MainType)
	}
	if first.AlarmHour != 17 {
		t.Errorf("AlarmHour = %d, want 17", first.AlarmHour)
	}
	if first.ResponseMinutes != 6.2 {
		t.Errorf("ResponseMinutes = %v, want 6.2", first.ResponseMinutes)
	}
	if first.PeoplePresent == nil || !*first.PeoplePresent {
		t.Error("PeoplePresent should be true")
	}

	// Unparseable cells become sentinels, never load failures.
	second := ds.Records[1]
	if second.HasAlarm() {
		t.Error("bad alarm datetime should yield a zero time")
	}
	if second.MainType != "Unknown" {
		t.Errorf("empty type should derive to Unknown, got %q", second.MainType)
	}
	if !math.IsNaN(second.ResponseMinutes) {
		t.Error("empty response time should be NaN")
	}
}

func TestFromTableFieldInfo(t *testing.T) {
	ds, err := FromTable(sampleTable(), "incidents.csv", 0)
	if err != nil {
		t.Fatalf("FromTable failed: %v", err)
	}

	response, ok := ds.Field(ColResponseMinutes)
	if !ok {
		t.Fatal("missing field info for response_time_minutes")
	}
	if response.DataType != "numeric" {
		t.Errorf("response DataType = %q, want numeric", response.DataType)
	}
	if response.MissingCount != 1 {
		t.Errorf("response MissingCount = %d, want 1", response.MissingCount)
	}
	if got := response.Completeness(len(ds.Records)); got != 50 {
		t.Errorf("response Completeness = %v, want 50", got)
	}

	// Unknown columns are kept in the quality metadata with inferred types.
	notes, ok := ds.Field("station_notes")
	if !ok {
		t.Fatal("missing field info for station_notes")
	}
	if notes.DataType != "text" {
		t.Errorf("notes DataType = %q, want text", notes.DataType)
	}
}

func TestFromTableEmpty(t *testing.T) {
	if _, err := FromTable(&excel.Table{Headers: []string{"a"}}, "x.csv", 0); err == nil {
		t.Error("expected error for table with no data rows")
	}
}
