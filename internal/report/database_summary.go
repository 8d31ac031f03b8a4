package report

import (
	"fmt"
	"strings"
	"time"

	"incidentscope/domain/incident"
	"incidentscope/internal/analysis"
)

// DatabaseSummary is the structured (JSON-serializable) summary of a loaded
// incident database.
type DatabaseSummary struct {
	DatabaseInfo struct {
		TotalRecords int     `json:"total_records"`
		TotalColumns int     `json:"total_columns"`
		FileSizeMB   float64 `json:"file_size_mb"`
		DateRange    struct {
			Start     string  `json:"start"` // "2006-01-02", "N/A" when unknown
			End       string  `json:"end"`
			SpanYears float64 `json:"span_years"`
		} `json:"date_range"`
	} `json:"database_info"`

	GeographicCoverage struct {
		UniqueCities   int                  `json:"unique_cities"`
		UniqueZipCodes int                  `json:"unique_zip_codes"`
		PlaceTypes     int                  `json:"place_types"`
		TopCities      []analysis.CountItem `json:"top_cities"`
	} `json:"geographic_coverage"`

	IncidentStatistics struct {
		UniqueIncidentTypes     int                  `json:"unique_incident_types"`
		UniqueCategories        int                  `json:"unique_incident_categories"`
		TotalCasualties         int                  `json:"total_casualties"`
		IncidentsWithCasualties int                  `json:"incidents_with_casualties"`
		TopDescriptions         []analysis.CountItem `json:"top_incident_descriptions"`
	} `json:"incident_statistics"`

	ResponseMetrics struct {
		AverageResponseTime   float64 `json:"average_response_time"`
		MedianResponseTime    float64 `json:"median_response_time"`
		FastestResponse       float64 `json:"fastest_response"`
		SlowestResponse       float64 `json:"slowest_response"`
		AverageUnitsResponded float64 `json:"average_units_responded"`
	} `json:"response_metrics"`

	MedicalOutcomes struct {
		TransportDisposition   []analysis.CountItem `json:"transport_disposition"`
		PatientCareEvaluations []analysis.CountItem `json:"patient_care_evaluations"`
	} `json:"medical_outcomes"`

	DataQuality *analysis.QualityReport `json:"data_quality"`
}

// BuildDatabaseSummary assembles the structured summary from the computed
// statistics and quality report.
func BuildDatabaseSummary(ds *incident.Dataset, s *analysis.Summary, q *analysis.QualityReport) *DatabaseSummary {
	out := &DatabaseSummary{}

	out.DatabaseInfo.TotalRecords = s.TotalIncidents
	out.DatabaseInfo.TotalColumns = len(ds.Fields)
	out.DatabaseInfo.FileSizeMB = round1(float64(ds.FileSize) / (1024 * 1024))
	if s.DateStart.IsZero() {
		out.DatabaseInfo.DateRange.Start = "N/A"
		out.DatabaseInfo.DateRange.End = "N/A"
	} else {
		out.DatabaseInfo.DateRange.Start = s.DateStart.Format("2006-01-02")
		out.DatabaseInfo.DateRange.End = s.DateEnd.Format("2006-01-02")
		out.DatabaseInfo.DateRange.SpanYears = round1(s.SpanYears)
	}

	out.GeographicCoverage.UniqueCities = s.UniqueCities
	out.GeographicCoverage.UniqueZipCodes = s.UniqueZipCodes
	out.GeographicCoverage.PlaceTypes = s.UniquePlaceTypes
	out.GeographicCoverage.TopCities = headItems(s.TopCities, 5)

	out.IncidentStatistics.UniqueIncidentTypes = s.UniqueTypes
	out.IncidentStatistics.UniqueCategories = s.UniqueCategories
	out.IncidentStatistics.TotalCasualties = int(s.TotalCasualties)
	out.IncidentStatistics.IncidentsWithCasualties = s.IncidentsWithCasualties
	out.IncidentStatistics.TopDescriptions = headItems(s.TopDescriptions, 5)

	out.ResponseMetrics.AverageResponseTime = round2(s.Response.Mean)
	out.ResponseMetrics.MedianResponseTime = round2(s.Response.Median)
	out.ResponseMetrics.FastestResponse = round2(s.Response.Min)
	out.ResponseMetrics.SlowestResponse = round2(s.Response.Max)
	out.ResponseMetrics.AverageUnitsResponded = round1(s.AvgUnitsResponded)

	out.MedicalOutcomes.TransportDisposition = s.Transport
	out.MedicalOutcomes.PatientCareEvaluations = s.PatientCare

	out.DataQuality = q
	return out
}

// Markdown renders the formatted companion report for the summary.
func (ds *DatabaseSummary) Markdown() *Report {
	var b strings.Builder

	fmt.Fprintf(&b, "# Emergency Incidents Database Summary\n")
	fmt.Fprintf(&b, "*Generated on %s*\n\n---\n\n", time.Now().UTC().Format("2006-01-02 at 15:04:05"))

	fmt.Fprintf(&b, "## Database Overview\n\n")
	fmt.Fprintf(&b, "| Metric | Value |\n|--------|--------|\n")
	fmt.Fprintf(&b, "| **Total Records** | %s |\n", groupThousands(ds.DatabaseInfo.TotalRecords))
	fmt.Fprintf(&b, "| **Total Columns** | %d |\n", ds.DatabaseInfo.TotalColumns)
	fmt.Fprintf(&b, "| **File Size** | %.1f MB |\n", ds.DatabaseInfo.FileSizeMB)
	fmt.Fprintf(&b, "| **Date Range** | %s to %s |\n", ds.DatabaseInfo.DateRange.Start, ds.DatabaseInfo.DateRange.End)
	fmt.Fprintf(&b, "| **Time Span** | %.1f years |\n\n---\n\n", ds.DatabaseInfo.DateRange.SpanYears)

	fmt.Fprintf(&b, "## Geographic Coverage\n\n")
	fmt.Fprintf(&b, "| Coverage | Count |\n|----------|--------|\n")
	fmt.Fprintf(&b, "| **Cities** | %d |\n", ds.GeographicCoverage.UniqueCities)
	fmt.Fprintf(&b, "| **ZIP Codes** | %d |\n", ds.GeographicCoverage.UniqueZipCodes)
	fmt.Fprintf(&b, "| **Place Types** | %d |\n\n", ds.GeographicCoverage.PlaceTypes)

	fmt.Fprintf(&b, "### Top %d Cities by Incident Count:\n", len(ds.GeographicCoverage.TopCities))
	for i, city := range ds.GeographicCoverage.TopCities {
		fmt.Fprintf(&b, "%d. **%s**: %s incidents (%.1f%%)\n",
			i+1, city.Label, groupThousands(city.Count), city.Percentage)
	}
	b.WriteString("\n---\n\n")

	fmt.Fprintf(&b, "## Incident Statistics\n\n")
	fmt.Fprintf(&b, "| Metric | Value |\n|--------|--------|\n")
	fmt.Fprintf(&b, "| **Unique Incident Types** | %d |\n", ds.IncidentStatistics.UniqueIncidentTypes)
	fmt.Fprintf(&b, "| **Incident Categories** | %d |\n", ds.IncidentStatistics.UniqueCategories)
	fmt.Fprintf(&b, "| **Total Casualties** | %s |\n", groupThousands(ds.IncidentStatistics.TotalCasualties))
	fmt.Fprintf(&b, "| **Incidents with Casualties** | %s |\n\n", groupThousands(ds.IncidentStatistics.IncidentsWithCasualties))

	fmt.Fprintf(&b, "### Top %d Incident Types:\n", len(ds.IncidentStatistics.TopDescriptions))
	for i, item := range ds.IncidentStatistics.TopDescriptions {
		fmt.Fprintf(&b, "%d. **%s**: %s incidents (%.1f%%)\n",
			i+1, item.Label, groupThousands(item.Count), item.Percentage)
	}
	b.WriteString("\n---\n\n")

	fmt.Fprintf(&b, "## Response Performance\n\n")
	fmt.Fprintf(&b, "| Metric | Value |\n|--------|--------|\n")
	fmt.Fprintf(&b, "| **Average Response Time** | %.2f minutes |\n", ds.ResponseMetrics.AverageResponseTime)
	fmt.Fprintf(&b, "| **Median Response Time** | %.2f minutes |\n", ds.ResponseMetrics.MedianResponseTime)
	fmt.Fprintf(&b, "| **Fastest Response** | %.2f minutes |\n", ds.ResponseMetrics.FastestResponse)
	fmt.Fprintf(&b, "| **Slowest Response** | %.2f minutes |\n", ds.ResponseMetrics.SlowestResponse)
	fmt.Fprintf(&b, "| **Average Units per Incident** | %.1f |\n\n---\n\n", ds.ResponseMetrics.AverageUnitsResponded)

	fmt.Fprintf(&b, "## Medical Outcomes\n\n### Transport Disposition:\n")
	for _, item := range ds.MedicalOutcomes.TransportDisposition {
		fmt.Fprintf(&b, "- **%s**: %s (%.1f%%)\n", item.Label, groupThousands(item.Count), item.Percentage)
	}
	fmt.Fprintf(&b, "\n### Patient Care Evaluation:\n")
	for _, item := range ds.MedicalOutcomes.PatientCareEvaluations {
		fmt.Fprintf(&b, "- **%s**: %s (%.1f%%)\n", item.Label, groupThousands(item.Count), item.Percentage)
	}
	b.WriteString("\n---\n\n")

	if q := ds.DataQuality; q != nil {
		fmt.Fprintf(&b, "## Data Quality Assessment\n\n### Data Completeness:\n")
		fmt.Fprintf(&b, "- **High Quality Fields** (>95%% complete): %d columns\n", q.HighQualityColumns)
		fmt.Fprintf(&b, "- **Good Quality Fields** (80-95%% complete): %d columns\n", q.GoodQualityColumns)
		fmt.Fprintf(&b, "- **Poor Quality Fields** (<80%% complete): %d columns\n\n", q.PoorQualityColumns)

		fmt.Fprintf(&b, "### Fields with Missing Data:\n")
		missing := q.MissingFields
		if len(missing) > 10 {
			missing = missing[:10]
		}
		for _, field := range missing {
			fmt.Fprintf(&b, "- **%s**: %.1f%% missing\n", field.Name, field.MissingPct)
		}
		b.WriteString("\n---\n\n")
	}

	fmt.Fprintf(&b, "## Key Insights\n\n### Performance Highlights:\n")
	fmt.Fprintf(&b, "- Emergency response system serves **%d cities**\n", ds.GeographicCoverage.UniqueCities)
	fmt.Fprintf(&b, "- Average response time of **%.2f minutes**\n", ds.ResponseMetrics.AverageResponseTime)
	fmt.Fprintf(&b, "- **%s incidents** resulted in casualties, representing %s of all calls\n\n",
		groupThousands(ds.IncidentStatistics.IncidentsWithCasualties),
		pct(ds.IncidentStatistics.IncidentsWithCasualties, ds.DatabaseInfo.TotalRecords))

	fmt.Fprintf(&b, "### Operational Insights:\n")
	if len(ds.GeographicCoverage.TopCities) > 0 {
		top := ds.GeographicCoverage.TopCities[0]
		fmt.Fprintf(&b, "- Most incidents occur in **%s** with %s incidents\n", top.Label, groupThousands(top.Count))
	}
	if len(ds.MedicalOutcomes.TransportDisposition) > 0 {
		fmt.Fprintf(&b, "- **%s** is the most common transport outcome\n", ds.MedicalOutcomes.TransportDisposition[0].Label)
	}
	fmt.Fprintf(&b, "- Database spans **%.1f years** of emergency response data\n",
		ds.DatabaseInfo.DateRange.SpanYears)

	return newReport("Emergency Incidents Database Summary", b.String())
}

func headItems(items []analysis.CountItem, n int) []analysis.CountItem {
	if len(items) <= n {
		return items
	}
	return items[:n]
}

func round1(v float64) float64 { return roundTo(v, 10) }
func round2(v float64) float64 { return roundTo(v, 100) }

func roundTo(v, scale float64) float64 {
	if v != v { // NaN
		return 0
	}
	if v >= 0 {
		return float64(int(v*scale+0.5)) / scale
	}
	return float64(int(v*scale-0.5)) / scale
}
