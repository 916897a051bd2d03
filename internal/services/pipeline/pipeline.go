// Package pipeline sequences the lifecycle intelligence stages over a
// canonical transaction table: features, segmentation, risk, and decisions.
// The orchestration here contains no business rules; every stage is a pure
// function producing a new table keyed by customer id, and stage errors are
// logged and re-raised untouched.
package pipeline

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"lifecycle-intelligence-engine/internal/models"
	"lifecycle-intelligence-engine/internal/services/decision"
	"lifecycle-intelligence-engine/internal/services/features"
	"lifecycle-intelligence-engine/internal/services/risk"
	"lifecycle-intelligence-engine/internal/services/segmentation"
	"lifecycle-intelligence-engine/internal/services/timewindow"
	"lifecycle-intelligence-engine/internal/services/validation"
	"lifecycle-intelligence-engine/internal/utils"
)

// Options configures one pipeline run.
type Options struct {
	// SnapshotDate is the reference "today"; nil infers it from the data.
	SnapshotDate *time.Time
	// WindowDays is the lookback window length; zero or negative selects
	// the default.
	WindowDays int
}

// ExecutionMetadata records run accounting. It travels alongside the output
// tables but is not part of the analytical contract.
type ExecutionMetadata struct {
	RunID            string    `json:"run_id"`
	SnapshotDate     time.Time `json:"snapshot_date"`
	WindowDays       int       `json:"window_days"`
	StartedAt        time.Time `json:"started_at"`
	FinishedAt       time.Time `json:"finished_at"`
	DurationSeconds  float64   `json:"duration_seconds"`
	TransactionCount int       `json:"transaction_count"`
	CustomerCount    int       `json:"customer_count"`
	ActionsAssigned  int       `json:"actions_assigned"`
}

// Result bundles the named output tables of one run, each sorted ascending by
// customer id.
type Result struct {
	ValidationSummary models.ValidationSummary     `json:"validation_summary"`
	Features          []models.CustomerFeatures    `json:"features"`
	Segments          []models.CustomerSegment     `json:"segments"`
	Signals           []models.RiskSignals         `json:"signals"`
	Risk              []models.RiskScore           `json:"risk"`
	Actions           []models.CustomerAction      `json:"actions"`
	ROI               []models.ActionROI           `json:"roi"`
	Explanations      []models.DecisionExplanation `json:"explanations"`
	Metadata          ExecutionMetadata            `json:"execution_metadata"`
}

// Run executes the full feature -> signal -> score -> segment -> decision
// chain over validated canonical transactions. It either completes and
// returns all output tables or fails with no partial output.
func Run(transactions []models.Transaction, opts Options) (*Result, error) {
	logger := utils.GetLogger()
	startedAt := time.Now().UTC()
	runID := uuid.New().String()

	windowDays := opts.WindowDays
	if windowDays <= 0 {
		windowDays = features.DefaultWindowDays
	}

	logger.Info("Starting lifecycle intelligence pipeline",
		zap.String("run_id", runID),
		zap.Int("transactions", len(transactions)),
		zap.Int("window_days", windowDays),
	)

	// Validation
	summary, err := validation.ValidateTransactions(transactions)
	if err != nil {
		logger.Error("Transaction validation failed", zap.String("run_id", runID), zap.Error(err))
		return nil, err
	}

	// Snapshot resolution (once)
	snapshot, err := timewindow.ResolveSnapshot(transactions, opts.SnapshotDate)
	if err != nil {
		logger.Error("Snapshot resolution failed", zap.String("run_id", runID), zap.Error(err))
		return nil, err
	}

	// Feature engineering
	rfm, err := features.ComputeRFM(transactions, snapshot, windowDays)
	if err != nil {
		logger.Error("RFM computation failed", zap.String("run_id", runID), zap.Error(err))
		return nil, err
	}
	trends, err := features.ComputeBehavioralTrends(transactions, snapshot, windowDays)
	if err != nil {
		logger.Error("Behavioral trend computation failed", zap.String("run_id", runID), zap.Error(err))
		return nil, err
	}
	featureTable := features.MergeFeatures(rfm, trends)

	logger.Info("Feature engineering complete",
		zap.String("run_id", runID),
		zap.Int("customers", len(featureTable)),
	)

	// Segmentation
	segments, err := segmentation.AssignSegments(featureTable)
	if err != nil {
		logger.Error("Segmentation failed", zap.String("run_id", runID), zap.Error(err))
		return nil, err
	}

	// Risk engine
	signals, err := risk.ComputeSignals(featureTable)
	if err != nil {
		logger.Error("Risk signal computation failed", zap.String("run_id", runID), zap.Error(err))
		return nil, err
	}
	scores, err := risk.ComputeScores(signals)
	if err != nil {
		logger.Error("Risk scoring failed", zap.String("run_id", runID), zap.Error(err))
		return nil, err
	}

	// Decision engine
	base := buildDecisionBase(segments, scores, featureTable)

	actions, err := decision.AssignActions(base)
	if err != nil {
		logger.Error("Action assignment failed", zap.String("run_id", runID), zap.Error(err))
		return nil, err
	}
	roi, err := decision.EstimateROI(actions, base)
	if err != nil {
		logger.Error("ROI estimation failed", zap.String("run_id", runID), zap.Error(err))
		return nil, err
	}
	explanations, err := decision.Explain(base, actions, signals)
	if err != nil {
		logger.Error("Explanation generation failed", zap.String("run_id", runID), zap.Error(err))
		return nil, err
	}

	finishedAt := time.Now().UTC()
	duration := finishedAt.Sub(startedAt)

	logger.Info("Pipeline complete",
		zap.String("run_id", runID),
		zap.Int("customers", len(featureTable)),
		zap.Int("actions", len(actions)),
		zap.Duration("duration", duration),
	)

	return &Result{
		ValidationSummary: summary,
		Features:          featureTable,
		Segments:          segments,
		Signals:           signals,
		Risk:              scores,
		Actions:           actions,
		ROI:               roi,
		Explanations:      explanations,
		Metadata: ExecutionMetadata{
			RunID:            runID,
			SnapshotDate:     snapshot,
			WindowDays:       windowDays,
			StartedAt:        startedAt,
			FinishedAt:       finishedAt,
			DurationSeconds:  duration.Seconds(),
			TransactionCount: len(transactions),
			CustomerCount:    len(featureTable),
			ActionsAssigned:  len(actions),
		},
	}, nil
}

// buildDecisionBase joins segments, risk scores, and lifetime value into the
// decision input table, preserving the segments' customer order.
func buildDecisionBase(segments []models.CustomerSegment, scores []models.RiskScore, featureTable []models.CustomerFeatures) []models.DecisionBase {
	scoresByID := make(map[string]models.RiskScore, len(scores))
	for _, s := range scores {
		scoresByID[s.CustomerID] = s
	}
	featuresByID := make(map[string]models.CustomerFeatures, len(featureTable))
	for _, f := range featureTable {
		featuresByID[f.CustomerID] = f
	}

	base := make([]models.DecisionBase, 0, len(segments))
	for _, seg := range segments {
		score, ok := scoresByID[seg.CustomerID]
		if !ok {
			score.RiskLevel = models.RiskLevelUnknown
		}

		base = append(base, models.DecisionBase{
			CustomerID:     seg.CustomerID,
			LifecycleStage: seg.LifecycleStage,
			ValueSegment:   seg.ValueSegment,
			SegmentLabel:   seg.SegmentLabel,
			RiskScore:      score.RiskScore,
			RiskLevel:      score.RiskLevel,
			LifetimeValue:  featuresByID[seg.CustomerID].LifetimeValue,
		})
	}

	return base
}

// Profiles flattens a pipeline result into the joined per-customer profile
// rows served to dashboard and batch consumers.
func (r *Result) Profiles() []models.CustomerProfile {
	segmentsByID := make(map[string]models.CustomerSegment, len(r.Segments))
	for _, s := range r.Segments {
		segmentsByID[s.CustomerID] = s
	}
	riskByID := make(map[string]models.RiskScore, len(r.Risk))
	for _, s := range r.Risk {
		riskByID[s.CustomerID] = s
	}
	actionsByID := make(map[string]models.CustomerAction, len(r.Actions))
	for _, a := range r.Actions {
		actionsByID[a.CustomerID] = a
	}
	roiByID := make(map[string]models.ActionROI, len(r.ROI))
	for _, e := range r.ROI {
		roiByID[e.CustomerID] = e
	}
	explanationsByID := make(map[string]models.DecisionExplanation, len(r.Explanations))
	for _, e := range r.Explanations {
		explanationsByID[e.CustomerID] = e
	}

	profiles := make([]models.CustomerProfile, 0, len(r.Features))
	for _, f := range r.Features {
		seg := segmentsByID[f.CustomerID]
		score := riskByID[f.CustomerID]
		action := actionsByID[f.CustomerID]
		roi := roiByID[f.CustomerID]

		profiles = append(profiles, models.CustomerProfile{
			CustomerID:        f.CustomerID,
			RecencyDays:       f.RecencyDays,
			Frequency:         f.Frequency,
			Monetary:          f.Monetary,
			LifetimeValue:     f.LifetimeValue,
			SpendTrend:        f.SpendTrend,
			FrequencyTrend:    f.FrequencyTrend,
			LifecycleStage:    seg.LifecycleStage,
			ValueSegment:      seg.ValueSegment,
			SegmentLabel:      seg.SegmentLabel,
			SegmentVersion:    seg.SegmentVersion,
			RiskScore:         score.RiskScore,
			RiskLevel:         score.RiskLevel,
			RecommendedAction: action.RecommendedAction,
			ActionPriority:    action.ActionPriority,
			ActionRationale:   action.ActionRationale,
			RuleMatched:       action.RuleMatched,
			ActionCost:        roi.ActionCost,
			ExpectedBenefit:   roi.ExpectedBenefit,
			EstimatedROI:      roi.EstimatedROI,
			ROIFeasible:       roi.ROIFeasible,
			Explanation:       explanationsByID[f.CustomerID].Explanation,
			RunID:             r.Metadata.RunID,
			UpdatedAt:         r.Metadata.FinishedAt,
		})
	}

	return profiles
}

// RunRecord converts the execution metadata into a persistable run record.
func (r *Result) RunRecord(source string) models.PipelineRun {
	return models.PipelineRun{
		RunID:             r.Metadata.RunID,
		SnapshotDate:      r.Metadata.SnapshotDate,
		WindowDays:        r.Metadata.WindowDays,
		StartedAt:         r.Metadata.StartedAt,
		FinishedAt:        r.Metadata.FinishedAt,
		DurationSeconds:   r.Metadata.DurationSeconds,
		TransactionCount:  r.Metadata.TransactionCount,
		CustomerCount:     r.Metadata.CustomerCount,
		ActionsAssigned:   r.Metadata.ActionsAssigned,
		SourceDescription: source,
	}
}

// ParseSnapshotDate parses an optional YYYY-MM-DD snapshot date string into
// run options. An empty string means infer from the data.
func ParseSnapshotDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, models.NewInvalidArgumentError("invalid snapshot date %q: %v", s, err)
	}
	return &t, nil
}

// Describe returns a one-line human summary of a result, for logs and emails.
func (r *Result) Describe() string {
	return fmt.Sprintf("run %s: %d transactions, %d customers, %d actions in %.2fs",
		r.Metadata.RunID,
		r.Metadata.TransactionCount,
		r.Metadata.CustomerCount,
		r.Metadata.ActionsAssigned,
		r.Metadata.DurationSeconds,
	)
}
