// Package handlers provides Lambda handlers for the lifecycle intelligence engine.
package handlers

import (
	"context"
	"fmt"
	"net/url"

	"github.com/aws/aws-lambda-go/events"

	appConfig "lifecycle-intelligence-engine/internal/config"
	"lifecycle-intelligence-engine/internal/services/database"
	"lifecycle-intelligence-engine/internal/services/pipeline"
	s3service "lifecycle-intelligence-engine/internal/services/s3"
	"lifecycle-intelligence-engine/internal/services/ses"
	"lifecycle-intelligence-engine/internal/utils"
)

// PipelineTriggerHandler runs the full pipeline when a transactions file
// lands in S3: download, parse, score, persist, notify, archive.
type PipelineTriggerHandler struct {
	cfg         *appConfig.Config
	s3Service   *s3service.Service
	sesService  *ses.Service
	db          *database.DB
	profileRepo *database.ProfileRepository
	runRepo     *database.RunRepository
}

// NewPipelineTriggerHandler creates a new pipeline trigger handler.
func NewPipelineTriggerHandler(ctx context.Context) (*PipelineTriggerHandler, error) {
	cfg, err := appConfig.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load app config: %w", err)
	}

	s3Service, err := s3service.NewService(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 service: %w", err)
	}

	sesService, err := ses.NewService(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create SES service: %w", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &PipelineTriggerHandler{
		cfg:         cfg,
		s3Service:   s3Service,
		sesService:  sesService,
		db:          db,
		profileRepo: database.NewProfileRepository(db),
		runRepo:     database.NewRunRepository(db),
	}, nil
}

// PipelineTriggerResult is the result of one triggered pipeline run.
type PipelineTriggerResult struct {
	Message      string   `json:"message"`
	RunID        string   `json:"run_id"`
	SourceKey    string   `json:"source_key"`
	Transactions int      `json:"transactions"`
	Customers    int      `json:"customers"`
	Upserted     int      `json:"upserted"`
	Failed       int      `json:"failed"`
	ResultsKey   string   `json:"results_key,omitempty"`
	SkippedRows  int      `json:"skipped_rows"`
	IngestErrors []string `json:"ingest_errors,omitempty"`
}

// Handle processes an S3 event for an uploaded transactions CSV.
func (h *PipelineTriggerHandler) Handle(ctx context.Context, s3Event events.S3Event) (PipelineTriggerResult, error) {
	logger := utils.GetLogger()

	if len(s3Event.Records) == 0 {
		return PipelineTriggerResult{Message: "No records to process"}, nil
	}

	record := s3Event.Records[0]
	key, err := url.QueryUnescape(record.S3.Object.Key)
	if err != nil {
		return PipelineTriggerResult{}, fmt.Errorf("failed to decode S3 key: %w", err)
	}

	logger.Info("Processing transactions file",
		utils.String("bucket", record.S3.Bucket.Name),
		utils.String("key", key))

	data, err := h.s3Service.DownloadTransactionsCSV(ctx, key)
	if err != nil {
		return PipelineTriggerResult{}, fmt.Errorf("failed to download transactions: %w", err)
	}

	parser := utils.NewCSVParser()
	ingest, err := parser.ParseTransactions(string(data))
	if err != nil {
		logger.Error("Failed to parse transactions", utils.Error(err))
		return PipelineTriggerResult{}, fmt.Errorf("failed to parse transactions: %w", err)
	}

	logger.Info("Parsed transactions",
		utils.Int("total_rows", ingest.TotalRows),
		utils.Int("loaded", ingest.Loaded),
		utils.Int("skipped_no_customer", ingest.SkippedNoCustomer),
		utils.Int("skipped_cancelled", ingest.SkippedCancelled),
		utils.Int("skipped_non_positive", ingest.SkippedNonPositive))

	snapshot, err := pipeline.ParseSnapshotDate(h.cfg.SnapshotDate)
	if err != nil {
		return PipelineTriggerResult{}, fmt.Errorf("invalid snapshot date: %w", err)
	}

	result, err := pipeline.Run(ingest.Transactions, pipeline.Options{
		SnapshotDate: snapshot,
		WindowDays:   h.cfg.WindowDays,
	})
	if err != nil {
		logger.Error("Pipeline run failed", utils.Error(err))
		return PipelineTriggerResult{}, fmt.Errorf("pipeline run failed: %w", err)
	}

	profiles := result.Profiles()
	upsert, err := h.profileRepo.BulkUpsert(ctx, profiles)
	if err != nil {
		logger.Error("Failed to persist profiles", utils.Error(err))
		return PipelineTriggerResult{}, fmt.Errorf("failed to persist profiles: %w", err)
	}

	runRecord := result.RunRecord(key)
	if err := h.runRepo.Create(ctx, &runRecord); err != nil {
		logger.Warn("Failed to record pipeline run", utils.Error(err))
	}

	resultsKey, err := h.s3Service.UploadRunResults(ctx, result.Metadata.RunID, result)
	if err != nil {
		logger.Warn("Failed to upload run results", utils.Error(err))
	}

	if len(h.cfg.SummaryReceivers) > 0 {
		params := ses.BuildRunSummaryParams(&runRecord, profiles, "")
		if _, sendErrs := h.sesService.SendRunSummaries(ctx, h.cfg.SummaryReceivers, params); len(sendErrs) > 0 {
			logger.Warn("Some run summaries failed to send", utils.Int("failed", len(sendErrs)))
		}
	}

	if _, err := h.s3Service.ArchiveProcessedFile(ctx, key); err != nil {
		logger.Warn("Failed to archive file", utils.Error(err))
	}

	ingestErrors := ingest.ParseErrors
	if len(ingestErrors) > 10 {
		ingestErrors = ingestErrors[:10]
	}

	logger.Info("Pipeline run complete",
		utils.String("run_id", result.Metadata.RunID),
		utils.Int("customers", result.Metadata.CustomerCount),
		utils.Int("upserted", upsert.UpsertedCount),
		utils.Int("failed", upsert.FailedCount))

	return PipelineTriggerResult{
		Message:      "Pipeline run completed",
		RunID:        result.Metadata.RunID,
		SourceKey:    key,
		Transactions: result.Metadata.TransactionCount,
		Customers:    result.Metadata.CustomerCount,
		Upserted:     upsert.UpsertedCount,
		Failed:       upsert.FailedCount,
		ResultsKey:   resultsKey,
		SkippedRows:  ingest.SkippedNoCustomer + ingest.SkippedCancelled + ingest.SkippedNonPositive,
		IngestErrors: ingestErrors,
	}, nil
}

// Close cleans up resources.
func (h *PipelineTriggerHandler) Close() {
	if h.db != nil {
		h.db.Close()
	}
}
