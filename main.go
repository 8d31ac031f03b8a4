package main

import (
	"log"

	"github.com/joho/godotenv"

	"incidentscope/internal/config"
	"incidentscope/internal/ingest"
	"incidentscope/ui"
)

func main() {
	// Load environment variables from .env file
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

	server, err := ui.NewServer(appConfig, dataset)
	if err != nil {
		log.Fatalf("Failed to create dashboard server: %v", err)
	}

	if err := server.Start(":" + appConfig.Server.Port); err != nil {
		log.Fatalf("Dashboard server failed: %v", err)
	}
}
