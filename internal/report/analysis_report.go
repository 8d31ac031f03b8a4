package report

import (
	"fmt"
	"strings"
	"time"

	"incidentscope/domain/incident"
	"incidentscope/internal/analysis"
)

// BuildAnalysisReport renders the full markdown analysis report for a dataset.
func BuildAnalysisReport(ds *incident.Dataset, s *analysis.Summary) *Report {
	var b strings.Builder

	fmt.Fprintf(&b, "# Emergency Incidents Analysis Report\n")
	fmt.Fprintf(&b, "Generated on: %s\n\n", time.Now().UTC().Format("2006-01-02 15:04:05"))

	fmt.Fprintf(&b, "## Executive Summary\n")
	fmt.Fprintf(&b, "This report analyzes %s emergency incidents spanning from %s.\n\n",
		groupThousands(s.TotalIncidents), dateRangeString(s))

	fmt.Fprintf(&b, "## Key Findings\n\n")

	fmt.Fprintf(&b, "### Response Performance\n")
	if s.Response.Count > 0 {
		fmt.Fprintf(&b, "- **Average Response Time**: %.2f minutes\n", s.Response.Mean)
		fmt.Fprintf(&b, "- **Median Response Time**: %.2f minutes\n", s.Response.Median)
		fmt.Fprintf(&b, "- **90th Percentile Response Time**: %.2f minutes\n", s.Response.P90)
	} else {
		fmt.Fprintf(&b, "- No valid response time data\n")
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "### Incident Patterns\n")
	if len(s.TypeBreakdown) > 0 {
		top := s.TypeBreakdown[0]
		fmt.Fprintf(&b, "- **Most Common Incident Type**: %s (%s incidents)\n",
			top.Label, groupThousands(top.Count))
	}
	fmt.Fprintf(&b, "- **Peak Hour**: %s\n", peakHourString(s))
	fmt.Fprintf(&b, "- **Busiest Day**: %s\n\n", busiestDayString(s))

	fmt.Fprintf(&b, "### Geographic Distribution\n")
	if len(s.TopCities) > 0 {
		fmt.Fprintf(&b, "- **Most Active City**: %s (%s incidents)\n",
			s.TopCities[0].Label, groupThousands(s.TopCities[0].Count))
	}
	if len(s.PlaceTypes) > 0 {
		fmt.Fprintf(&b, "- **Most Common Location Type**: %s (%s incidents)\n",
			s.PlaceTypes[0].Label, groupThousands(s.PlaceTypes[0].Count))
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "### Medical Outcomes\n")
	fmt.Fprintf(&b, "- **Total Casualties**: %s\n", groupThousandsFloat(s.TotalCasualties))
	fmt.Fprintf(&b, "- **Incidents with Transport**: %s\n", groupThousands(s.TransportedByEMS))
	fmt.Fprintf(&b, "- **Patient Refusal Rate**: %.1f%%\n\n", s.RefusalRate)

	fmt.Fprintf(&b, "## Detailed Analysis\n\n")

	fmt.Fprintf(&b, "### Incident Type Breakdown\n")
	for _, item := range s.TypeBreakdown {
		fmt.Fprintf(&b, "- **%s**: %s incidents (%.1f%%)\n",
			item.Label, groupThousands(item.Count), item.Percentage)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "### Geographic Analysis\n")
	fmt.Fprintf(&b, "The incidents are distributed across %d cities. The top %d cities are:\n\n",
		s.UniqueCities, len(topCities(s, 5)))
	cityResponse := cityResponseMeans(ds.Records)
	for _, item := range topCities(s, 5) {
		if mean, ok := cityResponse[item.Label]; ok {
			fmt.Fprintf(&b, "- **%s**: %s incidents (%.1f%%) - Avg Response: %.1f min\n",
				item.Label, groupThousands(item.Count), item.Percentage, mean)
		} else {
			fmt.Fprintf(&b, "- **%s**: %s incidents (%.1f%%) - No response data\n",
				item.Label, groupThousands(item.Count), item.Percentage)
		}
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "### Recommendations\n")
	fmt.Fprintf(&b, "1. **Peak Hour Staffing**: Consider increasing staffing during peak hours to reduce response times\n")
	fmt.Fprintf(&b, "2. **Geographic Optimization**: Review unit placement in high-incident areas\n")
	fmt.Fprintf(&b, "3. **Training Focus**: Prioritize training for the most common incident types\n")
	fmt.Fprintf(&b, "4. **Equipment Allocation**: Ensure adequate equipment availability during peak periods\n\n")

	fmt.Fprintf(&b, "## Data Quality Notes\n")
	fmt.Fprintf(&b, "- All timestamps are normalized to UTC\n")
	fmt.Fprintf(&b, "- Response times calculated from alarm to arrival\n")
	fmt.Fprintf(&b, "- Geographic coordinates provided for mapping analysis\n")

	return newReport("Emergency Incidents Analysis Report", b.String())
}

func dateRangeString(s *analysis.Summary) string {
	if s.DateStart.IsZero() {
		return "an unknown date range"
	}
	return fmt.Sprintf("%s to %s",
		s.DateStart.Format("2006-01-02"), s.DateEnd.Format("2006-01-02"))
}

func peakHourString(s *analysis.Summary) string {
	if s.PeakHour < 0 {
		return "No hourly data available"
	}
	return fmt.Sprintf("%d:00 (%d incidents)", s.PeakHour, s.PeakHourCount)
}

func busiestDayString(s *analysis.Summary) string {
	if s.BusiestDay == "" {
		return "No daily data available"
	}
	return fmt.Sprintf("%s (%d incidents)", s.BusiestDay, s.BusiestDayCount)
}

func topCities(s *analysis.Summary, n int) []analysis.CountItem {
	if len(s.TopCities) <= n {
		return s.TopCities
	}
	return s.TopCities[:n]
}

func cityResponseMeans(records []incident.Incident) map[string]float64 {
	means := make(map[string]float64)
	for _, group := range analysis.GroupMeans(records, 0,
		func(in *incident.Incident) string { return in.City },
		func(in *incident.Incident) float64 { return in.ResponseMinutes }) {
		means[group.Label] = group.Mean
	}
	return means
}
