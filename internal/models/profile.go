// Package models defines the data structures for the lifecycle intelligence engine.
package models

import (
	"time"
)

// CustomerProfile is the fully joined per-customer output row served to the
// dashboard and batch consumers. It carries no analytical logic; every field
// is copied from a pipeline output table.
type CustomerProfile struct {
	CustomerID        string         `json:"customer_id" db:"customer_id"`
	RecencyDays       int            `json:"recency_days" db:"recency_days"`
	Frequency         int            `json:"frequency" db:"frequency"`
	Monetary          float64        `json:"monetary" db:"monetary"`
	LifetimeValue     float64        `json:"lifetime_value" db:"lifetime_value"`
	SpendTrend        float64        `json:"spend_trend" db:"spend_trend"`
	FrequencyTrend    float64        `json:"frequency_trend" db:"frequency_trend"`
	LifecycleStage    LifecycleStage `json:"lifecycle_stage" db:"lifecycle_stage"`
	ValueSegment      ValueSegment   `json:"value_segment" db:"value_segment"`
	SegmentLabel      string         `json:"segment_label" db:"segment_label"`
	SegmentVersion    string         `json:"segment_version" db:"segment_version"`
	RiskScore         float64        `json:"risk_score" db:"risk_score"`
	RiskLevel         RiskLevel      `json:"risk_level" db:"risk_level"`
	RecommendedAction string         `json:"recommended_action" db:"recommended_action"`
	ActionPriority    ActionPriority `json:"action_priority" db:"action_priority"`
	ActionRationale   string         `json:"action_rationale" db:"action_rationale"`
	RuleMatched       bool           `json:"rule_matched" db:"rule_matched"`
	ActionCost        float64        `json:"action_cost" db:"action_cost"`
	ExpectedBenefit   float64        `json:"expected_benefit" db:"expected_benefit"`
	EstimatedROI      float64        `json:"estimated_roi" db:"estimated_roi"`
	ROIFeasible       bool           `json:"roi_feasible" db:"roi_feasible"`
	Explanation       string         `json:"decision_explanation" db:"decision_explanation"`
	RunID             string         `json:"run_id" db:"run_id"`
	UpdatedAt         time.Time      `json:"updated_at" db:"updated_at"`
}

// PipelineRun records execution metadata for one pipeline invocation. It sits
// alongside the analytical tables but is not part of the analytical contract.
type PipelineRun struct {
	RunID             string    `json:"run_id" db:"run_id"`
	SnapshotDate      time.Time `json:"snapshot_date" db:"snapshot_date"`
	WindowDays        int       `json:"window_days" db:"window_days"`
	StartedAt         time.Time `json:"started_at" db:"started_at"`
	FinishedAt        time.Time `json:"finished_at" db:"finished_at"`
	DurationSeconds   float64   `json:"duration_seconds" db:"duration_seconds"`
	TransactionCount  int       `json:"transaction_count" db:"transaction_count"`
	CustomerCount     int       `json:"customer_count" db:"customer_count"`
	ActionsAssigned   int       `json:"actions_assigned" db:"actions_assigned"`
	SourceDescription string    `json:"source_description,omitempty" db:"source_description"`
}

// BulkUpsertResult contains the results of a bulk profile upsert.
type BulkUpsertResult struct {
	UpsertedCount int      `json:"upserted_count"`
	FailedCount   int      `json:"failed_count"`
	Errors        []string `json:"errors,omitempty"`
}
