// Package risk converts customer behavioral features into normalized risk
// signals and fuses them into a single 0-100 risk score. Everything here is
// deterministic and explainable; there is no prediction.
package risk

import (
	"lifecycle-intelligence-engine/internal/models"
)

// Threshold maps an inclusive risk-score range to a risk level. Thresholds
// are evaluated in order; first matching range wins.
type Threshold struct {
	Category          models.RiskLevel
	ScoreMin          float64
	ScoreMax          float64 // inclusive
	Description       string
	RecommendedAction string
}

// ScoreThresholds are the risk level bands on the 0-100 score scale.
var ScoreThresholds = []Threshold{
	{
		Category:          models.RiskLevelLow,
		ScoreMin:          0,
		ScoreMax:          30,
		Description:       "Healthy customers with stable engagement patterns",
		RecommendedAction: "Maintain relationship, upsell opportunities",
	},
	{
		Category:          models.RiskLevelMedium,
		ScoreMin:          31,
		ScoreMax:          60,
		Description:       "Customers showing early warning signs of disengagement",
		RecommendedAction: "Proactive outreach, engagement campaigns",
	},
	{
		Category:          models.RiskLevelHigh,
		ScoreMin:          61,
		ScoreMax:          100,
		Description:       "Customers at significant risk of churn",
		RecommendedAction: "Immediate intervention, retention offers",
	},
}

// ThresholdMetadata documents the threshold set for governance and audit.
var ThresholdMetadata = struct {
	Version     string
	Description string
	ScoreScale  string
	Author      string
	LastUpdated string
}{
	Version: "1.0.0",
	Description: "Risk thresholds designed for e-commerce/retail customer base. " +
		"Low threshold (0-30) captures ~50% of healthy customers. " +
		"Medium threshold (31-60) identifies early warning signals. " +
		"High threshold (61-100) flags customers needing urgent attention. " +
		"Thresholds should be recalibrated quarterly based on actual churn rates.",
	ScoreScale:  "0-100",
	Author:      "Analytics Engineering",
	LastUpdated: "2026-01-01",
}
