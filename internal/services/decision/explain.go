// Package decision maps customer risk and value segments to recommended
// business actions.
package decision

import (
	"fmt"
	"sort"
	"strings"

	"lifecycle-intelligence-engine/internal/models"
)

// SignalThreshold names a risk signal that, when elevated past its threshold,
// contributes a phrase to the decision explanation. These thresholds are
// explanation aides, not decision logic. Order determines phrase order.
type SignalThreshold struct {
	Signal      string
	Threshold   float64
	Description string
}

// SignalThresholds are the ordered explanation thresholds.
var SignalThresholds = []SignalThreshold{
	{Signal: "recency_signal", Threshold: 0.3, Description: "prolonged inactivity"},
	{Signal: "spend_drop_signal", Threshold: 0.2, Description: "declining spend"},
	{Signal: "frequency_drop_signal", Threshold: 0.2, Description: "reduced purchase frequency"},
}

// dominantSignals returns the descriptions of the signals at or above their
// thresholds, in threshold-table order.
func dominantSignals(signals models.RiskSignals) []string {
	values := map[string]float64{
		"recency_signal":        signals.RecencySignal,
		"spend_drop_signal":     signals.SpendDropSignal,
		"frequency_drop_signal": signals.FrequencyDropSignal,
	}

	dominant := make([]string, 0, len(SignalThresholds))
	for _, st := range SignalThresholds {
		if values[st.Signal] >= st.Threshold {
			dominant = append(dominant, st.Description)
		}
	}
	return dominant
}

// extractValueSegment pulls the value category out of a combined segment label.
func extractValueSegment(segmentLabel string) string {
	switch {
	case strings.Contains(segmentLabel, "High Value"):
		return "High Value"
	case strings.Contains(segmentLabel, "Medium Value"):
		return "Medium Value"
	case strings.Contains(segmentLabel, "Low Value"):
		return "Low Value"
	}
	return "Unknown"
}

// buildExplanation constructs a concise, factual decision explanation. It is
// a total function of the input row; no randomness, no external lookups.
func buildExplanation(base models.DecisionBase, action models.CustomerAction, signals models.RiskSignals) string {
	parts := make([]string, 0, 3)

	switch base.RiskLevel {
	case models.RiskLevelHigh, models.RiskLevelMedium:
		if dominant := dominantSignals(signals); len(dominant) > 0 {
			parts = append(parts, fmt.Sprintf(
				"Customer is classified as %s Risk due to %s.",
				base.RiskLevel, strings.Join(dominant, " and "),
			))
		} else {
			parts = append(parts, fmt.Sprintf(
				"Customer is classified as %s Risk based on overall behavior.",
				base.RiskLevel,
			))
		}
	case models.RiskLevelLow:
		parts = append(parts, "Customer shows stable behavior and is classified as Low Risk.")
	default:
		parts = append(parts, "Customer risk level could not be confidently determined.")
	}

	parts = append(parts, fmt.Sprintf("Overall risk score is %.1f out of 100.", base.RiskScore))

	valueSegment := extractValueSegment(base.SegmentLabel)
	recommendedAction := strings.ToLower(action.RecommendedAction)
	if valueSegment != "Unknown" {
		parts = append(parts, fmt.Sprintf(
			"As a %s customer, the recommended action is %s.",
			valueSegment, recommendedAction,
		))
	} else {
		parts = append(parts, fmt.Sprintf("Recommended action is %s.", recommendedAction))
	}

	return strings.Join(parts, " ")
}

// Explain generates a plain-language explanation per customer from the
// decision base, the assigned actions, and the normalized risk signals. The
// returned table is sorted ascending by customer id.
func Explain(base []models.DecisionBase, actions []models.CustomerAction, signals []models.RiskSignals) ([]models.DecisionExplanation, error) {
	actionsByID := make(map[string]models.CustomerAction, len(actions))
	for _, a := range actions {
		actionsByID[a.CustomerID] = a
	}
	signalsByID := make(map[string]models.RiskSignals, len(signals))
	for _, s := range signals {
		signalsByID[s.CustomerID] = s
	}

	explanations := make([]models.DecisionExplanation, 0, len(base))
	for _, row := range base {
		action, ok := actionsByID[row.CustomerID]
		if !ok {
			action.RecommendedAction = DefaultAction.Action
		}

		explanations = append(explanations, models.DecisionExplanation{
			CustomerID:  row.CustomerID,
			Explanation: buildExplanation(row, action, signalsByID[row.CustomerID]),
		})
	}

	sort.Slice(explanations, func(i, j int) bool {
		return explanations[i].CustomerID < explanations[j].CustomerID
	})

	return explanations, nil
}
