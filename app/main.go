package main

import (
	"log"
	"net/http"
	"time"

	"storemon/app/internal/artifact"
	"storemon/app/internal/config"
	"storemon/app/internal/database"
	"storemon/app/internal/handlers"
	"storemon/app/internal/ingest"
	"storemon/app/internal/report"
)

func main() {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := database.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Bulk-load the source CSV feeds
	if cfg.LoadData {
		if err := ingest.LoadAll(db, cfg.DataDir); err != nil {
			log.Fatalf("Failed to load CSV data: %v", err)
		}
	}

	// Artifact storage for finished reports
	artifacts, err := artifact.New(cfg.ReportsDir)
	if err != nil {
		log.Fatalf("Failed to initialize reports directory: %v", err)
	}

	gen := report.NewGenerator(db, artifacts)

	// Setup HTTP routes
	handler := handlers.SetupRoutes(gen, artifacts)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("Server starting on port %s", cfg.Port)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
