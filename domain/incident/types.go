package incident

import (
	"math"
	"strings"
	"time"

	"incidentscope/domain/core"
)

// UnknownType is substituted when an incident carries no usable type code.
const UnknownType = "Unknown"

// Transport disposition codes used by the medical-outcome statistics.
const (
	TransportByEMS = "TRANSPORT_BY_EMS_UNIT"
	PatientRefused = "PATIENT_REFUSED_TRANSPORT"
)

// WeekdayOrder fixes the Monday-first ordering used by weekday breakdowns.
var WeekdayOrder = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// Incident represents a single emergency-incident record after cleaning.
//
// Missing values use sentinel encodings rather than pointers: zero time.Time
// for datetimes, math.NaN() for numerics and the empty string for text. All
// aggregation code must treat those as absent, never as real observations.
type Incident struct {
	Number string `json:"incident_number"`

	// Event timeline (UTC; zero value means the source cell was missing or unparseable)
	Alarm           time.Time `json:"alarm_datetime"`
	Arrival         time.Time `json:"arrival_datetime"`
	Controlled      time.Time `json:"controlled_datetime"`
	LastUnitCleared time.Time `json:"last_unit_cleared_datetime"`
	CreatedAt       time.Time `json:"incident_created_at"`

	// Classification
	Type        string `json:"incident_type"` // raw "MAIN||SUB||DETAIL" code
	Category    string `json:"incident_category"`
	Description string `json:"incident_description"`

	// Location
	City      string  `json:"city"`
	ZipCode   string  `json:"zip_code"`
	PlaceType string  `json:"place_type"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	// Operational metrics (minutes; NaN when missing)
	ResponseMinutes float64 `json:"response_time_minutes"`
	ControlMinutes  float64 `json:"control_time_minutes"`
	TotalMinutes    float64 `json:"total_time_minutes"`
	UnitsResponded  float64 `json:"units_responded"`

	// Medical outcomes
	TotalCasualties       float64 `json:"total_casualties"`
	TransportDisposition  string  `json:"transport_disposition"`
	PatientCareEvaluation string  `json:"patient_care_evaluation"`

	// Scene flags ('t'/'f' in the source; nil when missing)
	PeoplePresent          *bool `json:"people_present,omitempty"`
	FireSuppressionPresent *bool `json:"fire_suppression_present,omitempty"`

	// Derived fields, populated at load time when the alarm datetime parsed
	MainType  string `json:"incident_main_type"`
	AlarmHour int    `json:"alarm_hour"` // -1 when the alarm datetime is missing
	Weekday   string `json:"day_of_week"`
}

// MainTypeOf extracts the main category from a raw "MAIN||SUB||DETAIL" type code.
func MainTypeOf(rawType string) string {
	main := strings.TrimSpace(strings.SplitN(rawType, "||", 2)[0])
	if main == "" {
		return UnknownType
	}
	return main
}

// Derive computes the derived fields from the cleaned base columns.
func (in *Incident) Derive() {
	in.MainType = MainTypeOf(in.Type)
	if in.Alarm.IsZero() {
		in.AlarmHour = -1
		in.Weekday = ""
		return
	}
	in.AlarmHour = in.Alarm.Hour()
	in.Weekday = in.Alarm.Weekday().String()
}

// HasAlarm reports whether the alarm datetime parsed.
func (in *Incident) HasAlarm() bool { return !in.Alarm.IsZero() }

// HasResponseTime reports whether a response time is present.
func (in *Incident) HasResponseTime() bool { return !math.IsNaN(in.ResponseMinutes) }

// HasCoordinates reports whether both latitude and longitude are present.
func (in *Incident) HasCoordinates() bool {
	return !math.IsNaN(in.Latitude) && !math.IsNaN(in.Longitude)
}

// AlarmDate returns the calendar date (UTC) of the alarm, zero when missing.
func (in *Incident) AlarmDate() time.Time {
	if in.Alarm.IsZero() {
		return time.Time{}
	}
	y, m, d := in.Alarm.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FieldInfo describes a single source column of the dataset
type FieldInfo struct {
	Name         string `json:"name"`
	DataType     string `json:"data_type"` // "numeric", "datetime", "boolean", "text"
	MissingCount int    `json:"missing_count"`
	UniqueCount  int    `json:"unique_count"`
}

// Completeness returns the percentage of non-missing cells for the field.
func (f FieldInfo) Completeness(totalRecords int) float64 {
	if totalRecords == 0 {
		return 0
	}
	return 100 * float64(totalRecords-f.MissingCount) / float64(totalRecords)
}

// Dataset is a loaded and cleaned incident dataset
type Dataset struct {
	ID         core.DatasetID `json:"id"`
	SourcePath string         `json:"source_path"`
	FileSize   int64          `json:"file_size"`
	Records    []Incident     `json:"-"`
	Fields     []FieldInfo    `json:"fields"`
	LoadedAt   core.Timestamp `json:"loaded_at"`
}

// NewDataset creates an empty dataset shell for a source file
func NewDataset(sourcePath string) *Dataset {
	return &Dataset{
		ID:         core.DatasetID(core.NewID()),
		SourcePath: sourcePath,
		LoadedAt:   core.Now(),
	}
}

// DateRange returns the min and max alarm datetimes, with ok=false when no
// record has a valid alarm datetime.
func (d *Dataset) DateRange() (min, max time.Time, ok bool) {
	for i := range d.Records {
		in := &d.Records[i]
		if !in.HasAlarm() {
			continue
		}
		if !ok || in.Alarm.Before(min) {
			min = in.Alarm
		}
		if !ok || in.Alarm.After(max) {
			max = in.Alarm
		}
		ok = true
	}
	return min, max, ok
}

// Field looks up per-column metadata by name.
func (d *Dataset) Field(name string) (FieldInfo, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldInfo{}, false
}
