// Package models defines the data structures for the lifecycle intelligence engine.
package models

// ActionPriority ranks a recommended action for execution ordering.
type ActionPriority string

const (
	ActionPriorityHigh   ActionPriority = "High"
	ActionPriorityMedium ActionPriority = "Medium"
	ActionPriorityLow    ActionPriority = "Low"
)

// DecisionBase is the joined segment + risk + lifetime-value row that feeds
// action assignment, ROI estimation, and explanation generation.
type DecisionBase struct {
	CustomerID     string         `json:"customer_id"`
	LifecycleStage LifecycleStage `json:"lifecycle_stage"`
	ValueSegment   ValueSegment   `json:"value_segment"`
	SegmentLabel   string         `json:"segment_label"`
	RiskScore      float64        `json:"risk_score"`
	RiskLevel      RiskLevel      `json:"risk_level"`
	LifetimeValue  float64        `json:"lifetime_value"`
}

// CustomerAction is the recommended action for one customer. Exactly one
// action is emitted per customer; RuleMatched records whether any rule fired
// or the default applied.
type CustomerAction struct {
	CustomerID        string         `json:"customer_id" db:"customer_id"`
	RecommendedAction string         `json:"recommended_action" db:"recommended_action"`
	ActionPriority    ActionPriority `json:"action_priority" db:"action_priority"`
	ActionRationale   string         `json:"action_rationale" db:"action_rationale"`
	RuleMatched       bool           `json:"rule_matched" db:"rule_matched"`
}

// ActionROI is the heuristic cost/benefit estimate for one customer's
// recommended action. ROIFeasible holds exactly when EstimatedROI > 0.
type ActionROI struct {
	CustomerID       string  `json:"customer_id" db:"customer_id"`
	ActionCost       float64 `json:"action_cost" db:"action_cost"`
	ActionCostSource string  `json:"action_cost_source" db:"action_cost_source"`
	ExpectedBenefit  float64 `json:"expected_benefit" db:"expected_benefit"`
	EstimatedROI     float64 `json:"estimated_roi" db:"estimated_roi"`
	ROIFeasible      bool    `json:"roi_feasible" db:"roi_feasible"`
}

// DecisionExplanation is the plain-language rationale for one customer's
// decision. It is a deterministic function of risk level, score, dominant
// signals, value segment, and recommended action.
type DecisionExplanation struct {
	CustomerID  string `json:"customer_id" db:"customer_id"`
	Explanation string `json:"decision_explanation" db:"decision_explanation"`
}
