package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"time"

	"github.com/joho/godotenv"

	"incidentscope/adapters/postgres"
	"incidentscope/domain/core"
	"incidentscope/domain/incident"
	"incidentscope/internal/config"
	"incidentscope/internal/ingest"
)

// archive loads an incident file into the Postgres archive, or prints
// archived incidents matching a filter when -query is set.
func main() {
	query := flag.Bool("query", false, "query the archive instead of loading a file")
	datasetID := flag.String("dataset", "", "dataset ID to query (defaults to the latest archive)")
	mainType := flag.String("type", "", "filter by main incident type")
	city := flag.String("city", "", "filter by city")
	from := flag.String("from", "", "filter start date (YYYY-MM-DD)")
	to := flag.String("to", "", "filter end date (YYYY-MM-DD)")
	maxResponse := flag.Float64("max-response", 0, "maximum response time in minutes")
	limit := flag.Int("limit", 25, "maximum rows to print")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if !appConfig.ArchiveEnabled() {
		log.Fatal("DATABASE_URL is required for archiving")
	}

	db, err := postgres.NewDB(appConfig.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	repo := postgres.NewIncidentRepository(db)

	if *query {
		f := incident.Filter{
			From:               parseDateFlag(*from),
			To:                 parseDateFlag(*to),
			MainType:           *mainType,
			City:               *city,
			MaxResponseMinutes: *maxResponse,
		}
		runQuery(ctx, repo, *datasetID, f, *limit)
		return
	}

	dataset, err := ingest.Load(appConfig.Data.IncidentsFile)
	if err != nil {
		log.Fatalf("Failed to load incident data: %v", err)
	}

	if err := repo.EnsureSchema(ctx); err != nil {
		log.Fatalf("Failed to create schema: %v", err)
	}
	if err := repo.ArchiveDataset(ctx, dataset); err != nil {
		log.Fatalf("Failed to archive dataset: %v", err)
	}

	count, err := repo.CountByDataset(ctx, dataset.ID)
	if err != nil {
		log.Fatalf("Failed to verify archive: %v", err)
	}
	log.Printf("Archived %d incidents from %s as dataset %s",
		count, dataset.SourcePath, dataset.ID)
}

// runQuery prints archived incidents matching the filter, newest first.
func runQuery(ctx context.Context, repo *postgres.IncidentRepository, rawID string, f incident.Filter, limit int) {
	var (
		id  core.DatasetID
		err error
	)
	if rawID != "" {
		id, err = core.ParseDatasetID(rawID)
	} else {
		id, err = repo.LatestDataset(ctx)
	}
	if err != nil {
		log.Fatalf("Failed to resolve dataset: %v", err)
	}

	records, err := repo.QueryFiltered(ctx, id, f, limit)
	if err != nil {
		log.Fatalf("Failed to query archive: %v", err)
	}

	fmt.Printf("%d incidents in dataset %s\n", len(records), id)
	fmt.Printf("%-14s %-17s %-12s %-20s %s\n",
		"NUMBER", "ALARM", "TYPE", "CITY", "RESPONSE")
	for i := range records {
		in := &records[i]
		fmt.Printf("%-14s %-17s %-12s %-20s %s\n",
			in.Number, cellTime(in.Alarm), in.MainType, in.City, cellMinutes(in.ResponseMinutes))
	}
}

func parseDateFlag(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid date %q, want YYYY-MM-DD\n", raw)
		os.Exit(2)
	}
	return t
}

func cellTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04")
}

func cellMinutes(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.1f min", v)
}
