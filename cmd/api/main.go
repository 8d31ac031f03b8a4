package main

import (
	"log"

	"github.com/joho/godotenv"

	"incidentscope/internal/api"
	"incidentscope/internal/config"
	"incidentscope/internal/ingest"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	dataset, err := ingest.Load(appConfig.Data.IncidentsFile)
	if err != nil {
		log.Fatalf("Failed to load incident data: %v", err)
	}

	app := api.NewApp(appConfig, dataset)
	if err := app.Start(":" + appConfig.API.Port); err != nil {
		log.Fatalf("API server failed: %v", err)
	}
}
