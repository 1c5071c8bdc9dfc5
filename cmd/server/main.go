package main

import (
	"fmt"
	"log"

	"invodex/internal/config"
	"invodex/internal/extractor"
	_ "invodex/internal/extractor/claude"
	_ "invodex/internal/extractor/gemini"
	_ "invodex/internal/extractor/openai"
	"invodex/internal/handler"
	"invodex/internal/port"
	"invodex/internal/repository/csvstore"
	"invodex/internal/router"
	"invodex/internal/service"
	"invodex/internal/storage/local"
	s3storage "invodex/internal/storage/s3"
)

const version = "1.0.0"

// @title Invodex API
// @version 1.0
// @description Invoice document upload, AI extraction, and browsing service.
// @host localhost:8080
// @BasePath /api/v1
func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	store, err := csvstore.New(cfg.Data.Dir, cfg.Data.BackupDir)
	if err != nil {
		return fmt.Errorf("failed to open invoice store: %w", err)
	}

	// Initialize object storage for uploaded documents
	var objStorage port.ObjectStorage
	switch cfg.Storage.Provider {
	case "s3":
		objStorage, err = s3storage.NewClient(&cfg.Storage.S3)
	default:
		objStorage, err = local.NewStore(cfg.Storage.LocalDir)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize document storage: %w", err)
	}

	// Initialize the vision-LLM extractor
	invExtractor, err := extractor.NewFromConfig(&cfg.Extractor)
	if err != nil {
		return fmt.Errorf("failed to initialize extractor: %w", err)
	}

	// Initialize services
	uploadSvc := service.NewUploadService(objStorage, &cfg.Upload)
	extractionSvc := service.NewExtractionService(objStorage, store, invExtractor, cfg.Extractor.BatchConcurrency)
	invoiceSvc := service.NewInvoiceService(store)

	// Initialize handlers
	uploadH := handler.NewUploadHandler(uploadSvc)
	extractionH := handler.NewExtractionHandler(extractionSvc)
	invoiceH := handler.NewInvoiceHandler(invoiceSvc)
	healthH := handler.NewHealthHandler(store, version)

	// Setup router
	r := router.Setup(cfg.CORS.AllowedOrigins, uploadH, extractionH, invoiceH, healthH)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
