// Package segmentation assigns lifecycle stages and value segments to
// customers using deterministic, rule-based logic.
package segmentation

import (
	"lifecycle-intelligence-engine/internal/models"
)

// LifecycleRule maps an inclusive recency_days range to a lifecycle stage.
// Rules are evaluated in order; first match wins.
type LifecycleRule struct {
	Stage       models.LifecycleStage
	RecencyMin  int
	RecencyMax  int // inclusive; UnboundedRecency means no upper bound
	Description string
}

// UnboundedRecency marks a lifecycle rule with no upper recency bound.
const UnboundedRecency = int(^uint(0) >> 1)

// LifecycleStageRules are the ordered lifecycle staging rules. Lower recency
// means more recent activity and a healthier relationship.
var LifecycleStageRules = []LifecycleRule{
	{
		Stage:       models.LifecycleStageActive,
		RecencyMin:  0,
		RecencyMax:  30,
		Description: "Engaged customers with recent activity",
	},
	{
		Stage:       models.LifecycleStageAtRisk,
		RecencyMin:  31,
		RecencyMax:  90,
		Description: "Customers showing early signs of disengagement",
	},
	{
		Stage:       models.LifecycleStageDormant,
		RecencyMin:  91,
		RecencyMax:  180,
		Description: "Inactive customers requiring reactivation efforts",
	},
	{
		Stage:       models.LifecycleStageChurned,
		RecencyMin:  181,
		RecencyMax:  UnboundedRecency,
		Description: "Customers considered lost without intervention",
	},
}

// ValueRule maps an inclusive monetary-percentile range to a value segment.
type ValueRule struct {
	Segment       models.ValueSegment
	PercentileMin float64
	PercentileMax float64 // inclusive
	Description   string
}

// ValueSegmentRules are the ordered value segmentation rules. Percentiles are
// cumulative from bottom (0) to top (100); a percentile falling between two
// ranges matches no rule and defaults to Low Value.
var ValueSegmentRules = []ValueRule{
	{
		Segment:       models.ValueSegmentHigh,
		PercentileMin: 80,
		PercentileMax: 100,
		Description:   "Premium customers driving majority of revenue",
	},
	{
		Segment:       models.ValueSegmentMedium,
		PercentileMin: 40,
		PercentileMax: 79,
		Description:   "Core customer base with growth potential",
	},
	{
		Segment:       models.ValueSegmentLow,
		PercentileMin: 0,
		PercentileMax: 39,
		Description:   "Price-sensitive or infrequent customers",
	},
}

// RuleMetadata documents the segmentation rule set for governance and audit.
var RuleMetadata = struct {
	Version     string
	Description string
	Author      string
	LastUpdated string
}{
	Version: "1.0.0",
	Description: "Rule-based customer segmentation using RFM-derived metrics. " +
		"Lifecycle stages prioritize recency for engagement health; " +
		"value segments use monetary percentiles for revenue contribution. " +
		"Thresholds are calibrated for e-commerce/retail contexts.",
	Author:      "Analytics Engineering",
	LastUpdated: "2026-01-01",
}
