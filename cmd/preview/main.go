package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"incidentscope/adapters/charts"
	"incidentscope/internal/analysis"
	"incidentscope/internal/ingest"
)

// preview prints a quick overview of an incident file to stdout.
func main() {
	topN := flag.Int("top", 5, "number of entries per breakdown")
	renderCharts := flag.Bool("charts", false, "also render overview charts")
	outDir := flag.String("out", "output", "chart output directory")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: preview [-top N] [-charts] [-out DIR] <incidents.csv|incidents.xlsx>")
		os.Exit(2)
	}

	dataset, err := ingest.Load(flag.Arg(0))
	if err != nil {
		log.Fatalf("Failed to load incident data: %v", err)
	}

	summary := analysis.NewAnalyzer(*topN).Summarize(dataset.Records)
	quality := analysis.AssessQuality(dataset)

	fmt.Println("EMERGENCY INCIDENTS DATA PREVIEW")
	fmt.Println(strings.Repeat("=", 50))

	fmt.Println("\nDataset Info:")
	fmt.Printf("   Total Records: %d\n", summary.TotalIncidents)
	fmt.Printf("   Total Columns: %d\n", len(dataset.Fields))
	fmt.Printf("   File Size: %.1f MB\n", float64(dataset.FileSize)/(1024*1024))

	fmt.Println("\nQuick Statistics:")
	if !summary.DateStart.IsZero() {
		fmt.Printf("   Date Range: %s to %s\n",
			summary.DateStart.Format("2006-01-02"), summary.DateEnd.Format("2006-01-02"))
	} else {
		fmt.Println("   Date Range: no valid datetime data")
	}
	fmt.Printf("   Cities: %d unique cities\n", summary.UniqueCities)
	fmt.Printf("   Incident Types: %d unique types\n", summary.UniqueTypes)

	fmt.Printf("\nTop %d Incident Types:\n", *topN)
	printItems(summary.TypeBreakdown)

	fmt.Printf("\nTop %d Cities:\n", *topN)
	printItems(summary.TopCities)

	fmt.Println("\nResponse Time Analysis:")
	if summary.Response.Count > 0 {
		fmt.Printf("   Average: %.1f minutes\n", summary.Response.Mean)
		fmt.Printf("   Median: %.1f minutes\n", summary.Response.Median)
		fmt.Printf("   Fastest: %.1f minutes\n", summary.Response.Min)
		fmt.Printf("   Slowest: %.1f minutes\n", summary.Response.Max)
	} else {
		fmt.Println("   No valid response time data")
	}

	fmt.Println("\nCasualties Summary:")
	fmt.Printf("   Total Casualties: %.0f\n", summary.TotalCasualties)
	fmt.Printf("   Incidents with Casualties: %d\n", summary.IncidentsWithCasualties)

	fmt.Println("\nData Quality:")
	fmt.Printf("   Columns with Missing Data: %d\n", len(quality.MissingFields))
	missing := quality.MissingFields
	if len(missing) > *topN {
		missing = missing[:*topN]
	}
	for _, field := range missing {
		fmt.Printf("   - %s: %.1f%% missing\n", field.Name, field.MissingPct)
	}

	if *renderCharts {
		if err := os.MkdirAll(*outDir, 0o755); err != nil {
			log.Fatalf("Failed to create output directory: %v", err)
		}
		renderer := charts.NewRenderer(*outDir, 20)
		jobs := []func() (string, error){
			func() (string, error) { return renderer.TypeDistribution(summary) },
			func() (string, error) { return renderer.HourlyPattern(summary) },
			func() (string, error) { return renderer.TopCities(summary) },
			func() (string, error) { return renderer.ResponseHistogram(dataset.Records) },
		}
		fmt.Println("\nOverview Charts:")
		for _, job := range jobs {
			path, err := job()
			if err != nil {
				log.Fatalf("Failed to render chart: %v", err)
			}
			fmt.Printf("   - %s\n", path)
		}
	}

	fmt.Println("\nData Preview Complete!")
}

func printItems(items []analysis.CountItem) {
	for i, item := range items {
		fmt.Printf("   %d. %s: %d (%.1f%%)\n", i+1, item.Label, item.Count, item.Percentage)
	}
}
