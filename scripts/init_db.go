//go:build ignore
// +build ignore

package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS customer_profiles (
	customer_id          TEXT PRIMARY KEY,
	recency_days         INTEGER NOT NULL,
	frequency            INTEGER NOT NULL,
	monetary             DOUBLE PRECISION NOT NULL,
	lifetime_value       DOUBLE PRECISION NOT NULL,
	spend_trend          DOUBLE PRECISION NOT NULL,
	frequency_trend      DOUBLE PRECISION NOT NULL,
	lifecycle_stage      TEXT NOT NULL,
	value_segment        TEXT NOT NULL,
	segment_label        TEXT NOT NULL,
	segment_version      TEXT NOT NULL,
	risk_score           DOUBLE PRECISION NOT NULL,
	risk_level           TEXT NOT NULL,
	recommended_action   TEXT NOT NULL,
	action_priority      TEXT NOT NULL,
	action_rationale     TEXT NOT NULL,
	rule_matched         BOOLEAN NOT NULL,
	action_cost          DOUBLE PRECISION NOT NULL,
	expected_benefit     DOUBLE PRECISION NOT NULL,
	estimated_roi        DOUBLE PRECISION NOT NULL,
	roi_feasible         BOOLEAN NOT NULL,
	decision_explanation TEXT NOT NULL,
	run_id               TEXT NOT NULL,
	updated_at           TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_customer_profiles_risk_level
	ON customer_profiles (risk_level);
CREATE INDEX IF NOT EXISTS idx_customer_profiles_run_id
	ON customer_profiles (run_id);

CREATE TABLE IF NOT EXISTS pipeline_runs (
	run_id             TEXT PRIMARY KEY,
	snapshot_date      TIMESTAMPTZ NOT NULL,
	window_days        INTEGER NOT NULL,
	started_at         TIMESTAMPTZ NOT NULL,
	finished_at        TIMESTAMPTZ NOT NULL,
	duration_seconds   DOUBLE PRECISION NOT NULL,
	transaction_count  INTEGER NOT NULL,
	customer_count     INTEGER NOT NULL,
	actions_assigned   INTEGER NOT NULL,
	source_description TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_pipeline_runs_started_at
	ON pipeline_runs (started_at DESC);
`

func main() {
	fmt.Println("=== Database Initialization Script ===")
	fmt.Println()

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: Could not load .env file: %v\n", err)
	}

	// Get database URL
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		fmt.Println("DATABASE_URL environment variable not set")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	// First connect to default 'postgres' database to create our database
	postgresURL := strings.Replace(databaseURL, "/lifecycle_intelligence", "/postgres", 1)
	fmt.Println("Connecting to PostgreSQL server...")

	adminConn, err := pgx.Connect(ctx, postgresURL)
	if err != nil {
		fmt.Printf("Failed to connect to PostgreSQL: %v\n", err)
		os.Exit(1)
	}

	// Check if database exists
	var exists bool
	err = adminConn.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = 'lifecycle_intelligence')").Scan(&exists)
	if err != nil {
		fmt.Printf("Failed to check database existence: %v\n", err)
		adminConn.Close(ctx)
		os.Exit(1)
	}

	if !exists {
		fmt.Println("Creating 'lifecycle_intelligence' database...")
		_, err = adminConn.Exec(ctx, "CREATE DATABASE lifecycle_intelligence")
		if err != nil {
			fmt.Printf("Failed to create database: %v\n", err)
			adminConn.Close(ctx)
			os.Exit(1)
		}
		fmt.Println("Database 'lifecycle_intelligence' created!")
	} else {
		fmt.Println("Database 'lifecycle_intelligence' already exists")
	}
	adminConn.Close(ctx)

	// Now connect to the lifecycle_intelligence database
	fmt.Println("Connecting to lifecycle_intelligence database...")
	conn, err := pgx.Connect(ctx, databaseURL)
	if err != nil {
		fmt.Printf("Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close(ctx)

	fmt.Println("Connected to database successfully!")
	fmt.Println()

	// Execute schema
	fmt.Println("Executing database schema...")
	_, err = conn.Exec(ctx, schemaSQL)
	if err != nil {
		fmt.Printf("Failed to execute SQL: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Database schema executed successfully!")
	fmt.Println()

	// Verify by counting stored rows
	fmt.Println("Verifying database setup...")

	var profileCount int
	err = conn.QueryRow(ctx, "SELECT COUNT(*) FROM customer_profiles").Scan(&profileCount)
	if err != nil {
		fmt.Printf("Warning: Could not count profiles: %v\n", err)
	} else {
		fmt.Printf("   Customer profiles in database: %d\n", profileCount)
	}

	var runCount int
	err = conn.QueryRow(ctx, "SELECT COUNT(*) FROM pipeline_runs").Scan(&runCount)
	if err != nil {
		fmt.Printf("Warning: Could not count runs: %v\n", err)
	} else {
		fmt.Printf("   Pipeline runs recorded: %d\n", runCount)
	}

	fmt.Println()
	fmt.Println("Database initialization completed successfully!")
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  1. Run the pipeline locally: go run scripts/run_pipeline.go data/raw/online_retail_ii.csv")
	fmt.Println("  2. Start the API server: go run cmd/server/main.go")
}
