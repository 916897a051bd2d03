// Package decision maps customer risk and value segments to recommended
// business actions, estimates their cost and benefit, and produces
// plain-language explanations. All three stages are pure, deterministic, and
// order-sensitive where noted.
package decision

import (
	"sort"
	"strings"

	"lifecycle-intelligence-engine/internal/models"
)

// ActionRule pairs a (risk level, value-segment substring) predicate with a
// recommended action. Rules are evaluated top to bottom; the first match wins
// per customer. ValueContains is matched by substring containment inside the
// combined segment label, so a rule keyed on "High Value" matches
// "Active High Value".
type ActionRule struct {
	RiskLevel     models.RiskLevel
	ValueContains string
	Action        string
	Priority      models.ActionPriority
	Rationale     string
}

// ActionRules is the ordered action rule table. Order matters.
var ActionRules = []ActionRule{
	// High Risk
	{
		RiskLevel:     models.RiskLevelHigh,
		ValueContains: "High Value",
		Action:        "Retention incentive + personal outreach",
		Priority:      models.ActionPriorityHigh,
		Rationale:     "High-value customers at churn risk need immediate 1:1 attention",
	},
	{
		RiskLevel:     models.RiskLevelHigh,
		ValueContains: "Medium Value",
		Action:        "Targeted win-back offer",
		Priority:      models.ActionPriorityHigh,
		Rationale:     "Medium-value at-risk customers merit targeted retention effort",
	},
	{
		RiskLevel:     models.RiskLevelHigh,
		ValueContains: "Low Value",
		Action:        "Automated reactivation campaign",
		Priority:      models.ActionPriorityMedium,
		Rationale:     "Lower-value churning customers handled via scalable automation",
	},

	// Medium Risk
	{
		RiskLevel:     models.RiskLevelMedium,
		ValueContains: "High Value",
		Action:        "Preventive engagement (loyalty program, nudges)",
		Priority:      models.ActionPriorityMedium,
		Rationale:     "Proactive engagement prevents decay in high-value customers",
	},
	{
		RiskLevel:     models.RiskLevelMedium,
		ValueContains: "Medium Value",
		Action:        "Cross-sell recommendation campaign",
		Priority:      models.ActionPriorityMedium,
		Rationale:     "Cross-sell strengthens engagement and increases value",
	},
	{
		RiskLevel:     models.RiskLevelMedium,
		ValueContains: "Low Value",
		Action:        "Engagement nurture sequence",
		Priority:      models.ActionPriorityLow,
		Rationale:     "Low-touch nurturing for lower-value customers",
	},

	// Low Risk
	{
		RiskLevel:     models.RiskLevelLow,
		ValueContains: "High Value",
		Action:        "Upsell premium offerings",
		Priority:      models.ActionPriorityMedium,
		Rationale:     "Healthy high-value customers are ideal upsell candidates",
	},
	{
		RiskLevel:     models.RiskLevelLow,
		ValueContains: "Medium Value",
		Action:        "Cross-sell complementary products",
		Priority:      models.ActionPriorityLow,
		Rationale:     "Expand wallet share with engaged customers",
	},
	{
		RiskLevel:     models.RiskLevelLow,
		ValueContains: "Low Value",
		Action:        "Maintain relationship (standard communications)",
		Priority:      models.ActionPriorityLow,
		Rationale:     "Low-touch maintenance for stable low-value customers",
	},
}

// DefaultAction applies when no rule matches.
var DefaultAction = struct {
	Action    string
	Priority  models.ActionPriority
	Rationale string
}{
	Action:    "Monitor",
	Priority:  models.ActionPriorityLow,
	Rationale: "No matching rule; customer requires observation or manual review",
}

// AssignActions assigns exactly one recommended action per customer by
// evaluating the rule table in order against the decision base. The returned
// table is sorted ascending by customer id.
func AssignActions(base []models.DecisionBase) ([]models.CustomerAction, error) {
	actions := make([]models.CustomerAction, 0, len(base))
	for _, row := range base {
		action := models.CustomerAction{
			CustomerID:        row.CustomerID,
			RecommendedAction: DefaultAction.Action,
			ActionPriority:    DefaultAction.Priority,
			ActionRationale:   DefaultAction.Rationale,
			RuleMatched:       false,
		}

		for _, rule := range ActionRules {
			if row.RiskLevel == rule.RiskLevel && strings.Contains(row.SegmentLabel, rule.ValueContains) {
				action.RecommendedAction = rule.Action
				action.ActionPriority = rule.Priority
				action.ActionRationale = rule.Rationale
				action.RuleMatched = true
				break
			}
		}

		actions = append(actions, action)
	}

	sort.Slice(actions, func(i, j int) bool {
		return actions[i].CustomerID < actions[j].CustomerID
	})

	return actions, nil
}
