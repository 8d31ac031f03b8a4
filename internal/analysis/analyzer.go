package analysis

import (
	"math"
	"sort"
	"time"

	"github.com/montanaflynn/stats"

	"incidentscope/domain/incident"
)

// CountItem is one row of a categorical breakdown.
type CountItem struct {
	Label      string  `json:"label"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// GroupMean is the average of a numeric field within one category.
type GroupMean struct {
	Label string  `json:"label"`
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
}

// ResponseStats summarizes the response-time distribution in minutes.
// All statistics are computed over records with a present response time.
type ResponseStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	P90    float64 `json:"p90"`
	StdDev float64 `json:"std_dev"`
}

// DailyCount is the number of incidents alarmed on one calendar date.
type DailyCount struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
}

// Summary is the full descriptive-statistics snapshot of a dataset.
type Summary struct {
	TotalIncidents int `json:"total_incidents"`

	// Date coverage over records with a valid alarm datetime
	DateStart time.Time `json:"date_start"`
	DateEnd   time.Time `json:"date_end"`
	SpanYears float64   `json:"span_years"`

	UniqueCities     int `json:"unique_cities"`
	UniqueZipCodes   int `json:"unique_zip_codes"`
	UniquePlaceTypes int `json:"unique_place_types"`
	UniqueTypes      int `json:"unique_incident_types"`
	UniqueMainTypes  int `json:"unique_main_types"`
	UniqueCategories int `json:"unique_categories"`

	Response          ResponseStats `json:"response"`
	AvgUnitsResponded float64       `json:"avg_units_responded"`
	AvgControlMinutes float64       `json:"avg_control_minutes"`
	AvgTotalMinutes   float64       `json:"avg_total_minutes"`

	TotalCasualties         float64 `json:"total_casualties"`
	IncidentsWithCasualties int     `json:"incidents_with_casualties"`
	TransportedByEMS        int     `json:"transported_by_ems"`
	RefusalRate             float64 `json:"refusal_rate"`

	// Categorical breakdowns. Percentages for types, cities, descriptions and
	// place types are against all records; transport and patient-care
	// percentages are against records where the field is present.
	TypeBreakdown   []CountItem `json:"type_breakdown"`
	TopCities       []CountItem `json:"top_cities"`
	TopDescriptions []CountItem `json:"top_descriptions"`
	PlaceTypes      []CountItem `json:"place_types"`
	Transport       []CountItem `json:"transport_disposition"`
	PatientCare     []CountItem `json:"patient_care_evaluation"`

	// Temporal patterns over records with a valid alarm datetime
	HourlyCounts    [24]int      `json:"hourly_counts"`
	WeekdayCounts   []CountItem  `json:"weekday_counts"`
	DailyCounts     []DailyCount `json:"daily_counts"`
	PeakHour        int          `json:"peak_hour"` // -1 when no temporal data
	PeakHourCount   int          `json:"peak_hour_count"`
	BusiestDay      string       `json:"busiest_day"`
	BusiestDayCount int          `json:"busiest_day_count"`
}

// Analyzer computes descriptive statistics over incident datasets
type Analyzer struct {
	topN int
}

// NewAnalyzer creates an analyzer; topN bounds the categorical breakdowns.
func NewAnalyzer(topN int) *Analyzer {
	if topN <= 0 {
		topN = 10
	}
	return &Analyzer{topN: topN}
}

// Summarize computes the full descriptive snapshot for a set of records.
func (a *Analyzer) Summarize(records []incident.Incident) *Summary {
	s := &Summary{
		TotalIncidents: len(records),
		PeakHour:       -1,
	}
	if len(records) == 0 {
		return s
	}

	a.summarizeDates(records, s)
	a.summarizeUniques(records, s)
	a.summarizeResponse(records, s)
	a.summarizeOutcomes(records, s)
	a.summarizeBreakdowns(records, s)
	a.summarizeTemporal(records, s)
	return s
}

func (a *Analyzer) summarizeDates(records []incident.Incident, s *Summary) {
	var start, end time.Time
	found := false
	for i := range records {
		in := &records[i]
		if !in.HasAlarm() {
			continue
		}
		if !found || in.Alarm.Before(start) {
			start = in.Alarm
		}
		if !found || in.Alarm.After(end) {
			end = in.Alarm
		}
		found = true
	}
	if !found {
		return
	}
	s.DateStart = start
	s.DateEnd = end
	s.SpanYears = end.Sub(start).Hours() / 24 / 365.25
}

func (a *Analyzer) summarizeUniques(records []incident.Incident, s *Summary) {
	s.UniqueCities = uniqueCount(records, func(in *incident.Incident) string { return in.City })
	s.UniqueZipCodes = uniqueCount(records, func(in *incident.Incident) string { return in.ZipCode })
	s.UniquePlaceTypes = uniqueCount(records, func(in *incident.Incident) string { return in.PlaceType })
	s.UniqueTypes = uniqueCount(records, func(in *incident.Incident) string { return in.Type })
	s.UniqueMainTypes = uniqueCount(records, func(in *incident.Incident) string { return in.MainType })
	s.UniqueCategories = uniqueCount(records, func(in *incident.Incident) string { return in.Category })
}

func (a *Analyzer) summarizeResponse(records []incident.Incident, s *Summary) {
	s.Response = ResponseStatsOf(NumericValues(records, func(in *incident.Incident) float64 {
		return in.ResponseMinutes
	}))
	s.AvgUnitsResponded = meanOf(NumericValues(records, func(in *incident.Incident) float64 {
		return in.UnitsResponded
	}))
	s.AvgControlMinutes = meanOf(NumericValues(records, func(in *incident.Incident) float64 {
		return in.ControlMinutes
	}))
	s.AvgTotalMinutes = meanOf(NumericValues(records, func(in *incident.Incident) float64 {
		return in.TotalMinutes
	}))
}

func (a *Analyzer) summarizeOutcomes(records []incident.Incident, s *Summary) {
	refused := 0
	withTransport := 0
	for i := range records {
		in := &records[i]
		if !math.IsNaN(in.TotalCasualties) {
			s.TotalCasualties += in.TotalCasualties
			if in.TotalCasualties > 0 {
				s.IncidentsWithCasualties++
			}
		}
		switch in.TransportDisposition {
		case incident.TransportByEMS:
			s.TransportedByEMS++
			withTransport++
		case incident.PatientRefused:
			refused++
			withTransport++
		case "":
		default:
			withTransport++
		}
	}
	if withTransport > 0 {
		s.RefusalRate = 100 * float64(refused) / float64(withTransport)
	}
}

func (a *Analyzer) summarizeBreakdowns(records []incident.Incident, s *Summary) {
	total := len(records)
	s.TypeBreakdown = TopCounts(records, total, a.topN, func(in *incident.Incident) string { return in.MainType })
	s.TopCities = TopCounts(records, total, a.topN, func(in *incident.Incident) string { return in.City })
	s.TopDescriptions = TopCounts(records, total, a.topN, func(in *incident.Incident) string { return in.Description })
	s.PlaceTypes = TopCounts(records, total, a.topN, func(in *incident.Incident) string { return in.PlaceType })

	// Percentage base for the medical fields is present values only.
	s.Transport = TopCounts(records, 0, 0, func(in *incident.Incident) string { return in.TransportDisposition })
	s.PatientCare = TopCounts(records, 0, 0, func(in *incident.Incident) string { return in.PatientCareEvaluation })
}

func (a *Analyzer) summarizeTemporal(records []incident.Incident, s *Summary) {
	weekday := make(map[string]int)
	daily := make(map[time.Time]int)
	temporal := 0
	for i := range records {
		in := &records[i]
		if !in.HasAlarm() {
			continue
		}
		temporal++
		s.HourlyCounts[in.AlarmHour]++
		weekday[in.Weekday]++
		daily[in.AlarmDate()]++
	}
	if temporal == 0 {
		return
	}

	for hour, count := range s.HourlyCounts {
		if count > s.PeakHourCount {
			s.PeakHour = hour
			s.PeakHourCount = count
		}
	}

	// Weekday breakdown keeps the calendar order regardless of counts.
	for _, day := range incident.WeekdayOrder {
		count := weekday[day]
		s.WeekdayCounts = append(s.WeekdayCounts, CountItem{
			Label:      day,
			Count:      count,
			Percentage: 100 * float64(count) / float64(temporal),
		})
		if count > s.BusiestDayCount {
			s.BusiestDay = day
			s.BusiestDayCount = count
		}
	}

	s.DailyCounts = make([]DailyCount, 0, len(daily))
	for date, count := range daily {
		s.DailyCounts = append(s.DailyCounts, DailyCount{Date: date, Count: count})
	}
	sort.Slice(s.DailyCounts, func(i, j int) bool {
		return s.DailyCounts[i].Date.Before(s.DailyCounts[j].Date)
	})
}

// GroupMeans averages a numeric field per category, descending by mean. Empty
// category labels and missing values are skipped; limit <= 0 keeps all groups.
func GroupMeans(records []incident.Incident, limit int,
	key func(*incident.Incident) string, value func(*incident.Incident) float64) []GroupMean {

	sums := make(map[string]float64)
	counts := make(map[string]int)
	for i := range records {
		in := &records[i]
		label := key(in)
		v := value(in)
		if label == "" || math.IsNaN(v) {
			continue
		}
		sums[label] += v
		counts[label]++
	}

	groups := make([]GroupMean, 0, len(sums))
	for label, sum := range sums {
		groups = append(groups, GroupMean{
			Label: label,
			Count: counts[label],
			Mean:  sum / float64(counts[label]),
		})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Mean != groups[j].Mean {
			return groups[i].Mean > groups[j].Mean
		}
		return groups[i].Label < groups[j].Label
	})
	if limit > 0 && len(groups) > limit {
		groups = groups[:limit]
	}
	return groups
}

// TopCounts tallies a categorical field, descending by count with alphabetical
// tie-break. Empty labels are skipped. percentageBase 0 means present values;
// limit <= 0 keeps every category.
func TopCounts(records []incident.Incident, percentageBase, limit int,
	key func(*incident.Incident) string) []CountItem {

	counts := make(map[string]int)
	present := 0
	for i := range records {
		label := key(&records[i])
		if label == "" {
			continue
		}
		counts[label]++
		present++
	}

	base := percentageBase
	if base == 0 {
		base = present
	}

	items := make([]CountItem, 0, len(counts))
	for label, count := range counts {
		item := CountItem{Label: label, Count: count}
		if base > 0 {
			item.Percentage = 100 * float64(count) / float64(base)
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Count != items[j].Count {
			return items[i].Count > items[j].Count
		}
		return items[i].Label < items[j].Label
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

// NumericValues extracts the present (non-NaN) values of a numeric field.
func NumericValues(records []incident.Incident, value func(*incident.Incident) float64) []float64 {
	values := make([]float64, 0, len(records))
	for i := range records {
		if v := value(&records[i]); !math.IsNaN(v) {
			values = append(values, v)
		}
	}
	return values
}

// ResponseStatsOf computes the summary statistics for a value slice.
func ResponseStatsOf(values []float64) ResponseStats {
	rs := ResponseStats{Count: len(values)}
	if len(values) == 0 {
		return rs
	}
	rs.Mean, _ = stats.Mean(values)
	rs.Median, _ = stats.Median(values)
	rs.Min, _ = stats.Min(values)
	rs.Max, _ = stats.Max(values)
	rs.P90, _ = stats.Percentile(values, 90)
	rs.StdDev, _ = stats.StandardDeviation(values)
	return rs
}

func uniqueCount(records []incident.Incident, key func(*incident.Incident) string) int {
	seen := make(map[string]struct{})
	for i := range records {
		if v := key(&records[i]); v != "" {
			seen[v] = struct{}{}
		}
	}
	return len(seen)
}

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean, _ := stats.Mean(values)
	return mean
}
