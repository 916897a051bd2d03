// Package main provides a local HTTP server for development and testing.
// It accepts transactions CSV uploads, runs the lifecycle pipeline, and
// serves the resulting customer profiles to the dashboard.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"lifecycle-intelligence-engine/internal/config"
	"lifecycle-intelligence-engine/internal/models"
	"lifecycle-intelligence-engine/internal/services/database"
	"lifecycle-intelligence-engine/internal/services/pipeline"
	"lifecycle-intelligence-engine/internal/utils"

	"github.com/rs/cors"
)

// Server holds all dependencies
type Server struct {
	db          *database.DB
	profileRepo *database.ProfileRepository
	runRepo     *database.RunRepository
	config      *config.Config
}

// Response represents a standard API response
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// RunResponse contains pipeline run results for the upload endpoint.
type RunResponse struct {
	RunID        string   `json:"run_id"`
	SnapshotDate string   `json:"snapshot_date"`
	WindowDays   int      `json:"window_days"`
	TotalRows    int      `json:"total_rows"`
	Transactions int      `json:"transactions"`
	Customers    int      `json:"customers"`
	Upserted     int      `json:"upserted"`
	IngestErrors []string `json:"ingest_errors,omitempty"`
	ProcessingMs int64    `json:"processing_ms"`
}

func main() {
	// Initialize logger first
	if err := utils.InitLogger("info"); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer utils.Sync()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Warning: Could not load config from environment: %v", err)
		cfg = &config.Config{}
	}

	// Initialize database
	db, err := database.New(cfg)
	if err != nil {
		log.Printf("Warning: Could not connect to database: %v", err)
		log.Println("Server will run without persistence; results are returned but not stored")
	}

	server := &Server{
		db:     db,
		config: cfg,
	}

	if db != nil {
		server.profileRepo = database.NewProfileRepository(db)
		server.runRepo = database.NewRunRepository(db)
	}

	// Setup routes
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", server.healthHandler)
	mux.HandleFunc("/api/health", server.healthHandler)

	// Run the pipeline on an uploaded transactions CSV
	mux.HandleFunc("/api/pipeline/run", server.runPipelineHandler)

	// Serve stored customer profiles
	mux.HandleFunc("/api/profiles", server.profilesHandler)
	mux.HandleFunc("/api/profiles/", server.profileHandler)

	// Risk distribution across stored profiles
	mux.HandleFunc("/api/summary", server.summaryHandler)

	// Latest run metadata
	mux.HandleFunc("/api/runs/latest", server.latestRunHandler)

	// Setup CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	handler := c.Handler(mux)

	port := getEnvOrDefault("PORT", "8080")
	addr := fmt.Sprintf("0.0.0.0:%s", port)

	log.Printf("Lifecycle Intelligence Engine API Server")
	log.Printf("Listening on http://localhost:%s", port)
	log.Printf("Health: http://localhost:%s/health", port)
	log.Println("")

	// Start server (this blocks until error)
	log.Printf("Starting HTTP server on %s...", addr)
	serverErr := http.ListenAndServe(addr, handler)
	if serverErr != nil {
		log.Fatalf("Server failed: %v", serverErr)
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	dbStatus := "disconnected"
	if s.db != nil {
		if err := s.db.HealthCheck(r.Context()); err == nil {
			dbStatus = "connected"
		}
	}

	response := Response{
		Success: true,
		Message: "Lifecycle Intelligence Engine API is running",
		Data: map[string]interface{}{
			"status":    "healthy",
			"database":  dbStatus,
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   "1.0.0",
		},
	}

	writeJSON(w, http.StatusOK, response)
}

func (s *Server) runPipelineHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	log.Printf("Pipeline run request received")

	// Handle multipart form upload
	if err := r.ParseMultipartForm(50 << 20); err != nil { // 50MB max
		log.Printf("Failed to parse form: %v", err)
		writeJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Failed to parse form: " + err.Error(),
		})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		log.Printf("No file in form: %v", err)
		writeJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "No file provided",
		})
		return
	}
	defer file.Close()

	log.Printf("Processing file: %s (%.2f KB)", header.Filename, float64(header.Size)/1024)

	// Validate file type
	if !strings.HasSuffix(strings.ToLower(header.Filename), ".csv") {
		writeJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Only CSV files are allowed",
		})
		return
	}

	// Read file content
	content, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Failed to read file",
		})
		return
	}

	// Optional per-request overrides
	snapshotParam := r.FormValue("snapshot_date")
	if snapshotParam == "" {
		snapshotParam = s.config.SnapshotDate
	}
	windowDays := s.config.WindowDays
	if wd := r.FormValue("window_days"); wd != "" {
		if parsed, err := strconv.Atoi(wd); err == nil {
			windowDays = parsed
		}
	}

	result, err := s.runPipeline(r.Context(), content, header.Filename, snapshotParam, windowDays)
	if err != nil {
		status := http.StatusInternalServerError
		if models.IsSchemaError(err) || models.IsInvalidArgument(err) || models.IsEmptyInput(err) {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, Response{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Pipeline run completed",
		Data:    result,
	})
}

func (s *Server) runPipeline(ctx context.Context, content []byte, filename, snapshotDate string, windowDays int) (*RunResponse, error) {
	startTime := time.Now()

	parser := utils.NewCSVParser()
	ingest, err := parser.ParseTransactions(string(content))
	if err != nil {
		return nil, err
	}

	log.Printf("Parsed: %d rows, %d loaded, %d parse errors",
		ingest.TotalRows, ingest.Loaded, len(ingest.ParseErrors))

	snapshot, err := pipeline.ParseSnapshotDate(snapshotDate)
	if err != nil {
		return nil, err
	}

	result, err := pipeline.Run(ingest.Transactions, pipeline.Options{
		SnapshotDate: snapshot,
		WindowDays:   windowDays,
	})
	if err != nil {
		return nil, err
	}

	response := &RunResponse{
		RunID:        result.Metadata.RunID,
		SnapshotDate: result.Metadata.SnapshotDate.Format("2006-01-02"),
		WindowDays:   result.Metadata.WindowDays,
		TotalRows:    ingest.TotalRows,
		Transactions: result.Metadata.TransactionCount,
		Customers:    result.Metadata.CustomerCount,
	}

	for i, e := range ingest.ParseErrors {
		if i >= 10 {
			break
		}
		response.IngestErrors = append(response.IngestErrors, e)
	}

	// Persist when a database is configured
	if s.profileRepo != nil {
		upsert, err := s.profileRepo.BulkUpsert(ctx, result.Profiles())
		if err != nil {
			log.Printf("Warning: Could not persist profiles: %v", err)
		} else {
			response.Upserted = upsert.UpsertedCount
		}

		runRecord := result.RunRecord(filename)
		if err := s.runRepo.Create(ctx, &runRecord); err != nil {
			log.Printf("Warning: Could not record run: %v", err)
		}
	}

	response.ProcessingMs = time.Since(startTime).Milliseconds()
	return response, nil
}

func (s *Server) profilesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if s.profileRepo == nil {
		writeJSON(w, http.StatusOK, Response{
			Success: true,
			Data:    []*models.CustomerProfile{},
		})
		return
	}

	riskLevel := r.URL.Query().Get("risk_level")
	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		limit, _ = strconv.Atoi(l)
	}

	profiles, err := s.profileRepo.List(r.Context(), riskLevel, limit)
	if err != nil {
		log.Printf("Error fetching profiles: %v", err)
		writeJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Failed to fetch profiles",
		})
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    profiles,
	})
}

func (s *Server) profileHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	customerID := strings.TrimPrefix(r.URL.Path, "/api/profiles/")
	if customerID == "" {
		writeJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Customer ID required",
		})
		return
	}

	if s.profileRepo == nil {
		writeJSON(w, http.StatusServiceUnavailable, Response{
			Success: false,
			Error:   "Database not available",
		})
		return
	}

	profile, err := s.profileRepo.GetByCustomerID(r.Context(), customerID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, Response{
			Success: false,
			Error:   "Profile not found",
		})
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    profile,
	})
}

func (s *Server) summaryHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if s.profileRepo == nil {
		writeJSON(w, http.StatusOK, Response{
			Success: true,
			Data:    map[string]int{},
		})
		return
	}

	counts, err := s.profileRepo.CountByRiskLevel(r.Context())
	if err != nil {
		log.Printf("Error fetching summary: %v", err)
		writeJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Failed to fetch summary",
		})
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    counts,
	})
}

func (s *Server) latestRunHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if s.runRepo == nil {
		writeJSON(w, http.StatusServiceUnavailable, Response{
			Success: false,
			Error:   "Database not available",
		})
		return
	}

	run, err := s.runRepo.Latest(r.Context())
	if err != nil {
		log.Printf("Error fetching latest run: %v", err)
		writeJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Failed to fetch latest run",
		})
		return
	}

	if run == nil {
		writeJSON(w, http.StatusNotFound, Response{
			Success: false,
			Error:   "No runs recorded yet",
		})
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    run,
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
