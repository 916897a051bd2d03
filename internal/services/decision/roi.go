// Package decision maps customer risk and value segments to recommended
// business actions.
package decision

import (
	"math"
	"sort"

	"lifecycle-intelligence-engine/internal/models"
)

// ActionCosts are heuristic per-customer costs keyed by the exact
// recommended-action string. These are prioritization estimates, not
// predictions.
var ActionCosts = map[string]float64{
	"Retention incentive + personal outreach":         500,
	"Targeted win-back offer":                         300,
	"Automated reactivation campaign":                 50,
	"Preventive engagement (loyalty program, nudges)": 100,
	"Cross-sell recommendation campaign":              75,
	"Engagement nurture sequence":                     25,
	"Upsell premium offerings":                        150,
	"Cross-sell complementary products":               50,
	"Maintain relationship (standard communications)": 10,
	"Monitor": 0,
}

// DefaultActionCost applies when an action has no cost mapping.
const DefaultActionCost = 50.0

// RecoveryRates are the assumed fractions of lifetime value recoverable by
// intervention, keyed by risk level.
var RecoveryRates = map[models.RiskLevel]float64{
	models.RiskLevelHigh:    0.25,
	models.RiskLevelMedium:  0.40,
	models.RiskLevelLow:     0.60,
	models.RiskLevelUnknown: 0.10,
}

// actionCost returns the cost for an action and a source label recording
// whether the cost was mapped or defaulted.
func actionCost(action string) (float64, string) {
	if cost, ok := ActionCosts[action]; ok {
		return cost, "mapped"
	}
	return DefaultActionCost, "default"
}

// recoveryRate returns the recovery rate for a risk level, defaulting to the
// Unknown rate for unrecognized levels.
func recoveryRate(level models.RiskLevel) float64 {
	if rate, ok := RecoveryRates[level]; ok {
		return rate
	}
	return RecoveryRates[models.RiskLevelUnknown]
}

// EstimateROI estimates cost, expected benefit, and ROI for every assigned
// action. Lifetime value is clamped at zero before applying the recovery
// rate; benefit and ROI are rounded to 2 decimals, and an action is feasible
// exactly when its estimated ROI is positive.
func EstimateROI(actions []models.CustomerAction, base []models.DecisionBase) ([]models.ActionROI, error) {
	baseByID := make(map[string]models.DecisionBase, len(base))
	for _, row := range base {
		baseByID[row.CustomerID] = row
	}

	estimates := make([]models.ActionROI, 0, len(actions))
	for _, action := range actions {
		row := baseByID[action.CustomerID]

		cost, costSource := actionCost(action.RecommendedAction)

		lifetimeValue := math.Max(row.LifetimeValue, 0)
		benefit := round2(lifetimeValue * recoveryRate(row.RiskLevel))
		roi := round2(benefit - cost)

		estimates = append(estimates, models.ActionROI{
			CustomerID:       action.CustomerID,
			ActionCost:       cost,
			ActionCostSource: costSource,
			ExpectedBenefit:  benefit,
			EstimatedROI:     roi,
			ROIFeasible:      roi > 0,
		})
	}

	sort.Slice(estimates, func(i, j int) bool {
		return estimates[i].CustomerID < estimates[j].CustomerID
	})

	return estimates, nil
}

// round2 rounds to 2 decimal places.
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
