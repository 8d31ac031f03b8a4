package ui

import (
	"encoding/csv"
	"fmt"
	"html/template"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/parser"

	"incidentscope/domain/incident"
	"incidentscope/internal/analysis"
	"incidentscope/internal/report"
)

const maxIncidentRows = 1000

// parseFilter reads the dashboard filter from query parameters. Bad dates and
// numbers are ignored rather than rejected so a half-typed form still renders.
func parseFilter(c *gin.Context) incident.Filter {
	f := incident.Filter{
		MainType: c.Query("type"),
		City:     c.Query("city"),
	}
	if from := c.Query("from"); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			f.From = t
		}
	}
	if to := c.Query("to"); to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			f.To = t
		}
	}
	if raw := c.Query("max_response"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil && v > 0 {
			f.MaxResponseMinutes = v
		}
	}
	return f
}

// dashboardData is the template payload for the main page.
type dashboardData struct {
	Summary    *analysis.Summary
	Filter     incident.Filter
	SourcePath string
	MainTypes  []analysis.CountItem
	Cities     []analysis.CountItem
	Filtered   int
	Total      int
}

func (s *Server) handleDashboard(c *gin.Context) {
	f := parseFilter(c)
	summary, _ := s.filteredSummary(f)

	// Filter dropdowns always list the full dataset's categories.
	full, _ := s.filteredSummary(incident.Filter{})

	c.Header("Content-Type", "text/html; charset=utf-8")
	err := s.templates.ExecuteTemplate(c.Writer, "dashboard.html", dashboardData{
		Summary:    summary,
		Filter:     f,
		SourcePath: s.dataset.SourcePath,
		MainTypes:  full.TypeBreakdown,
		Cities:     full.TopCities,
		Filtered:   summary.TotalIncidents,
		Total:      len(s.dataset.Records),
	})
	if err != nil {
		c.String(http.StatusInternalServerError, "failed to render dashboard: %v", err)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"incidents": len(s.dataset.Records),
		"source":    s.dataset.SourcePath,
	})
}

func (s *Server) handleSummary(c *gin.Context) {
	summary, records := s.filteredSummary(parseFilter(c))
	full, _ := s.filteredSummary(incident.Filter{})

	// Delta of the filtered mean response against the whole dataset, for the
	// metric cards. Zero when either side has no response data.
	responseDelta := 0.0
	if summary.Response.Count > 0 && full.Response.Count > 0 {
		responseDelta = summary.Response.Mean - full.Response.Mean
	}

	c.JSON(http.StatusOK, gin.H{
		"summary":        summary,
		"filtered_total": len(records),
		"dataset_total":  len(s.dataset.Records),
		"response_delta": responseDelta,
	})
}

func (s *Server) handleTimeline(c *gin.Context) {
	summary, _ := s.filteredSummary(parseFilter(c))
	c.JSON(http.StatusOK, gin.H{"daily_counts": summary.DailyCounts})
}

func (s *Server) handleResponse(c *gin.Context) {
	summary, records := s.filteredSummary(parseFilter(c))
	responseValues := analysis.NumericValues(records, func(in *incident.Incident) float64 {
		return in.ResponseMinutes
	})
	c.JSON(http.StatusOK, gin.H{
		"stats":     summary.Response,
		"histogram": analysis.Histogram(responseValues, s.cfg.Analysis.HistogramBins),
		"by_type": analysis.GroupMeans(records, s.cfg.Analysis.TopN,
			func(in *incident.Incident) string { return in.MainType },
			func(in *incident.Incident) float64 { return in.ResponseMinutes }),
		"by_city": analysis.GroupMeans(records, s.cfg.Analysis.TopN,
			func(in *incident.Incident) string { return in.City },
			func(in *incident.Incident) float64 { return in.ResponseMinutes }),
		"by_weekday": analysis.GroupMeans(records, 0,
			func(in *incident.Incident) string { return in.Weekday },
			func(in *incident.Incident) float64 { return in.ResponseMinutes }),
		"by_category": analysis.GroupMeans(records, s.cfg.Analysis.TopN,
			func(in *incident.Incident) string { return in.Category },
			func(in *incident.Incident) float64 { return in.TotalMinutes }),
	})
}

func (s *Server) handleBreakdown(c *gin.Context) {
	summary, _ := s.filteredSummary(parseFilter(c))

	var items []analysis.CountItem
	switch dimension := c.Param("dimension"); dimension {
	case "types":
		items = summary.TypeBreakdown
	case "cities":
		items = summary.TopCities
	case "places":
		items = summary.PlaceTypes
	case "weekdays":
		items = summary.WeekdayCounts
	case "hours":
		items = hourItems(summary)
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("unknown dimension: %s", dimension)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (s *Server) handleIncidents(c *gin.Context) {
	f := parseFilter(c)
	records := f.Apply(s.dataset.Records)
	total := len(records)

	offset := 0
	if raw := c.Query("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			offset = v
		}
	}
	if offset > len(records) {
		offset = len(records)
	}
	records = records[offset:]

	limit := maxIncidentRows
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v < maxIncidentRows {
			limit = v
		}
	}
	if len(records) > limit {
		records = records[:limit]
	}

	rows := toRows(records)
	if raw := c.Query("columns"); raw != "" {
		projected := selectColumns(rows, strings.Split(raw, ","))
		c.JSON(http.StatusOK, gin.H{"total": total, "offset": offset, "incidents": projected})
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": total, "offset": offset, "incidents": rows})
}

func (s *Server) handleIncidentsCSV(c *gin.Context) {
	records := parseFilter(c).Apply(s.dataset.Records)

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="incidents_filtered.csv"`)

	w := csv.NewWriter(c.Writer)
	w.Write([]string{
		"incident_number", "alarm_datetime", "incident_main_type", "city",
		"place_type", "response_time_minutes", "units_responded", "total_casualties",
	})
	for i := range records {
		in := &records[i]
		w.Write([]string{
			in.Number,
			csvTime(in.Alarm),
			in.MainType,
			in.City,
			in.PlaceType,
			csvFloat(in.ResponseMinutes),
			csvFloat(in.UnitsResponded),
			csvFloat(in.TotalCasualties),
		})
	}
	w.Flush()
}

func (s *Server) handleReport(c *gin.Context) {
	summary, _ := s.filteredSummary(incident.Filter{})
	r := report.BuildAnalysisReport(s.dataset, summary)

	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	rendered := markdown.ToHTML([]byte(r.Markdown), p, nil)

	c.Header("Content-Type", "text/html; charset=utf-8")
	err := s.templates.ExecuteTemplate(c.Writer, "report.html", gin.H{
		"Title": r.Title,
		"Body":  template.HTML(rendered),
	})
	if err != nil {
		c.String(http.StatusInternalServerError, "failed to render report: %v", err)
	}
}

// incidentRow is the JSON shape of one incident. NaN and zero-time sentinels
// become nulls, which encoding/json cannot represent for raw float64 fields.
type incidentRow struct {
	Number          string     `json:"incident_number"`
	Alarm           *time.Time `json:"alarm_datetime"`
	MainType        string     `json:"incident_main_type"`
	Type            string     `json:"incident_type"`
	City            string     `json:"city"`
	PlaceType       string     `json:"place_type"`
	ResponseMinutes *float64   `json:"response_time_minutes"`
	ControlMinutes  *float64   `json:"control_time_minutes"`
	UnitsResponded  *float64   `json:"units_responded"`
	TotalCasualties *float64   `json:"total_casualties"`
	Weekday         string     `json:"day_of_week,omitempty"`
}

func toRows(records []incident.Incident) []incidentRow {
	rows := make([]incidentRow, len(records))
	for i := range records {
		in := &records[i]
		rows[i] = incidentRow{
			Number:          in.Number,
			Alarm:           timePtr(in.Alarm),
			MainType:        in.MainType,
			Type:            in.Type,
			City:            in.City,
			PlaceType:       in.PlaceType,
			ResponseMinutes: floatPtr(in.ResponseMinutes),
			ControlMinutes:  floatPtr(in.ControlMinutes),
			UnitsResponded:  floatPtr(in.UnitsResponded),
			TotalCasualties: floatPtr(in.TotalCasualties),
			Weekday:         in.Weekday,
		}
	}
	return rows
}

// rowColumns maps the selectable table column names onto row accessors.
var rowColumns = map[string]func(*incidentRow) any{
	"incident_number":       func(r *incidentRow) any { return r.Number },
	"alarm_datetime":        func(r *incidentRow) any { return r.Alarm },
	"incident_main_type":    func(r *incidentRow) any { return r.MainType },
	"incident_type":         func(r *incidentRow) any { return r.Type },
	"city":                  func(r *incidentRow) any { return r.City },
	"place_type":            func(r *incidentRow) any { return r.PlaceType },
	"response_time_minutes": func(r *incidentRow) any { return r.ResponseMinutes },
	"control_time_minutes":  func(r *incidentRow) any { return r.ControlMinutes },
	"units_responded":       func(r *incidentRow) any { return r.UnitsResponded },
	"total_casualties":      func(r *incidentRow) any { return r.TotalCasualties },
	"day_of_week":           func(r *incidentRow) any { return r.Weekday },
}

// selectColumns projects rows onto the requested columns. Unknown column
// names are dropped rather than rejected.
func selectColumns(rows []incidentRow, columns []string) []map[string]any {
	out := make([]map[string]any, len(rows))
	for i := range rows {
		projected := make(map[string]any, len(columns))
		for _, name := range columns {
			name = strings.TrimSpace(name)
			if accessor, ok := rowColumns[name]; ok {
				projected[name] = accessor(&rows[i])
			}
		}
		out[i] = projected
	}
	return out
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func floatPtr(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

func hourItems(s *analysis.Summary) []analysis.CountItem {
	total := 0
	for _, count := range s.HourlyCounts {
		total += count
	}
	items := make([]analysis.CountItem, len(s.HourlyCounts))
	for hour, count := range s.HourlyCounts {
		items[hour] = analysis.CountItem{Label: strconv.Itoa(hour), Count: count}
		if total > 0 {
			items[hour].Percentage = 100 * float64(count) / float64(total)
		}
	}
	return items
}

func csvTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func csvFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
