// Package models defines the data structures for the lifecycle intelligence engine.
package models

// LifecycleStage is a recency-derived engagement health bucket.
type LifecycleStage string

const (
	LifecycleStageActive  LifecycleStage = "Active"
	LifecycleStageAtRisk  LifecycleStage = "At-Risk"
	LifecycleStageDormant LifecycleStage = "Dormant"
	LifecycleStageChurned LifecycleStage = "Churned"
	LifecycleStageUnknown LifecycleStage = "Unknown"
)

// ValueSegment is a monetary-percentile-derived revenue-contribution bucket.
type ValueSegment string

const (
	ValueSegmentHigh   ValueSegment = "High Value"
	ValueSegmentMedium ValueSegment = "Medium Value"
	ValueSegmentLow    ValueSegment = "Low Value"
)

// CustomerSegment is the segmentation output row for one customer.
// SegmentLabel is always "<lifecycle_stage> <value_segment>" and is consumed
// downstream as a substring-matchable key.
type CustomerSegment struct {
	CustomerID     string         `json:"customer_id" db:"customer_id"`
	LifecycleStage LifecycleStage `json:"lifecycle_stage" db:"lifecycle_stage"`
	ValueSegment   ValueSegment   `json:"value_segment" db:"value_segment"`
	SegmentLabel   string         `json:"segment_label" db:"segment_label"`
	SegmentVersion string         `json:"segment_version" db:"segment_version"`
}
