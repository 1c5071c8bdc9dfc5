// Command importexcel seeds the CSV invoice store from a legacy Excel
// workbook (SalesOrderHeader/SalesOrderDetail sheets). The import is
// skipped when the CSV files already exist.
// Usage: go run ./cmd/importexcel [workbook.xlsx]
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"invodex/internal/config"
	"invodex/internal/repository/csvstore"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	path := filepath.Join(cfg.Data.Dir, "Case Study Data.xlsx")
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("workbook %s: %w", path, err)
	}

	store, err := csvstore.New(cfg.Data.Dir, cfg.Data.BackupDir)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}

	if err := store.ImportExcel(context.Background(), path); err != nil {
		return fmt.Errorf("importing %s: %w", path, err)
	}

	stats, err := store.Stats(context.Background())
	if err != nil {
		return fmt.Errorf("reading store stats: %w", err)
	}
	log.Printf("store now holds %d invoices (%d line items)", stats.TotalInvoices, stats.TotalItems)
	return nil
}
