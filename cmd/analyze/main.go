package main

import (
	"flag"
	"fmt"
	"log"
	"path/filepath"

	"github.com/joho/godotenv"

	"incidentscope/adapters/charts"
	"incidentscope/adapters/excel"
	"incidentscope/domain/incident"
	"incidentscope/internal/analysis"
	"incidentscope/internal/config"
	"incidentscope/internal/ingest"
	"incidentscope/internal/report"
)

// analyze runs the complete offline pipeline: statistics, charts, markdown
// reports, the JSON database summary and the Excel workbook.
func main() {
	file := flag.String("file", "", "incident CSV/XLSX file (defaults to INCIDENTS_FILE)")
	out := flag.String("out", "", "output directory (defaults to OUTPUT_DIR)")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *file != "" {
		appConfig.Data.IncidentsFile = *file
	}
	if *out != "" {
		appConfig.Output.Dir = *out
	}

	dataset, err := ingest.Load(appConfig.Data.IncidentsFile)
	if err != nil {
		log.Fatalf("Failed to load incident data: %v", err)
	}

	analyzer := analysis.NewAnalyzer(appConfig.Analysis.TopN)
	summary := analyzer.Summarize(dataset.Records)
	quality := analysis.AssessQuality(dataset)

	renderer := charts.NewRenderer(appConfig.Output.Dir, appConfig.Analysis.HistogramBins)
	paths, err := renderer.RenderAll(dataset.Records, summary)
	if err != nil {
		log.Fatalf("Failed to render charts: %v", err)
	}

	writer := report.NewWriter(appConfig.Output.Dir)
	if _, err := writer.WriteMarkdown(report.AnalysisReportFile, report.BuildAnalysisReport(dataset, summary)); err != nil {
		log.Fatalf("Failed to write analysis report: %v", err)
	}

	dbSummary := report.BuildDatabaseSummary(dataset, summary, quality)
	if _, err := writer.WriteJSON(report.DatabaseSummaryJSON, dbSummary); err != nil {
		log.Fatalf("Failed to write database summary JSON: %v", err)
	}
	if _, err := writer.WriteMarkdown(report.DatabaseSummaryFile, dbSummary.Markdown()); err != nil {
		log.Fatalf("Failed to write database summary: %v", err)
	}

	responseValues := analysis.NumericValues(dataset.Records, func(in *incident.Incident) float64 {
		return in.ResponseMinutes
	})
	hist := analysis.Histogram(responseValues, appConfig.Analysis.HistogramBins)

	workbookPath := filepath.Join(appConfig.Output.Dir, "analysis.xlsx")
	if err := excel.NewWorkbookWriter().Write(workbookPath, summary, quality, hist); err != nil {
		log.Fatalf("Failed to write workbook: %v", err)
	}

	fmt.Println("Summary Statistics:")
	fmt.Printf("  Total Incidents: %d\n", summary.TotalIncidents)
	if !summary.DateStart.IsZero() {
		fmt.Printf("  Date Range: %s to %s\n",
			summary.DateStart.Format("2006-01-02"), summary.DateEnd.Format("2006-01-02"))
	}
	if summary.Response.Count > 0 {
		fmt.Printf("  Mean Response Time: %.1f minutes (median %.1f, p90 %.1f)\n",
			summary.Response.Mean, summary.Response.Median, summary.Response.P90)
	}
	if summary.PeakHour >= 0 {
		fmt.Printf("  Peak Hour: %d:00 (%d incidents)\n", summary.PeakHour, summary.PeakHourCount)
		fmt.Printf("  Busiest Day: %s\n", summary.BusiestDay)
	}
	fmt.Printf("  Total Casualties: %.0f\n", summary.TotalCasualties)

	log.Printf("Analysis complete: %d incidents, %d charts, reports and workbook in %s",
		summary.TotalIncidents, len(paths), appConfig.Output.Dir)
}
