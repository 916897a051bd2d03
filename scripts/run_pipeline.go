//go:build ignore
// +build ignore

// Local batch runner. Reads a transactions CSV from disk, runs the full
// lifecycle pipeline, writes the results to a JSON file, and persists
// profiles when DATABASE_URL is set.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"lifecycle-intelligence-engine/internal/config"
	"lifecycle-intelligence-engine/internal/services/database"
	"lifecycle-intelligence-engine/internal/services/pipeline"
	"lifecycle-intelligence-engine/internal/utils"
)

func main() {
	_ = utils.InitLogger("info")
	defer utils.Sync()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	csvPath := cfg.RawTransactionsPath
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}

	fmt.Printf("Reading transactions from %s...\n", csvPath)
	content, err := os.ReadFile(csvPath)
	if err != nil {
		fmt.Printf("Failed to read CSV: %v\n", err)
		os.Exit(1)
	}

	parser := utils.NewCSVParser()
	ingest, err := parser.ParseTransactions(string(content))
	if err != nil {
		fmt.Printf("Failed to parse transactions: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Parsed %d rows: %d loaded, %d skipped (no customer %d, cancelled %d, non-positive %d)\n",
		ingest.TotalRows, ingest.Loaded,
		ingest.SkippedNoCustomer+ingest.SkippedCancelled+ingest.SkippedNonPositive,
		ingest.SkippedNoCustomer, ingest.SkippedCancelled, ingest.SkippedNonPositive)

	snapshot, err := pipeline.ParseSnapshotDate(cfg.SnapshotDate)
	if err != nil {
		fmt.Printf("Invalid snapshot date: %v\n", err)
		os.Exit(1)
	}

	result, err := pipeline.Run(ingest.Transactions, pipeline.Options{
		SnapshotDate: snapshot,
		WindowDays:   cfg.WindowDays,
	})
	if err != nil {
		fmt.Printf("Pipeline run failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(result.Describe())

	// Write results to disk
	outPath := fmt.Sprintf("results_%s.json", result.Metadata.RunID)
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Printf("Failed to serialize results: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(outPath, data, 0644); err != nil {
		fmt.Printf("Failed to write results: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Results written to %s\n", outPath)

	// Persist when a database is configured
	if os.Getenv("DATABASE_URL") == "" && cfg.DBPassword == "" {
		fmt.Println("No database configured; skipping persistence")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	var db *database.DB
	if url := os.Getenv("DATABASE_URL"); url != "" {
		db, err = database.NewFromURL(url)
	} else {
		db, err = database.New(cfg)
	}
	if err != nil {
		fmt.Printf("Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	profileRepo := database.NewProfileRepository(db)
	upsert, err := profileRepo.BulkUpsert(ctx, result.Profiles())
	if err != nil {
		fmt.Printf("Failed to persist profiles: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Persisted %d profiles (%d failed)\n", upsert.UpsertedCount, upsert.FailedCount)

	runRecord := result.RunRecord(csvPath)
	runRepo := database.NewRunRepository(db)
	if err := runRepo.Create(ctx, &runRecord); err != nil {
		fmt.Printf("Warning: Could not record run: %v\n", err)
	} else {
		fmt.Printf("Run %s recorded\n", runRecord.RunID)
	}
}
