package decision_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifecycle-intelligence-engine/internal/models"
	"lifecycle-intelligence-engine/internal/services/decision"
)

func baseRow(customerID string, level models.RiskLevel, label string, score, ltv float64) models.DecisionBase {
	return models.DecisionBase{
		CustomerID:    customerID,
		SegmentLabel:  label,
		RiskScore:     score,
		RiskLevel:     level,
		LifetimeValue: ltv,
	}
}

func TestAssignActions_FirstMatchWins(t *testing.T) {
	actions, err := decision.AssignActions([]models.DecisionBase{
		baseRow("A", models.RiskLevelHigh, "Active High Value", 75, 1000),
		baseRow("B", models.RiskLevelHigh, "Churned Medium Value", 80, 500),
		baseRow("C", models.RiskLevelMedium, "Dormant Low Value", 45, 100),
		baseRow("D", models.RiskLevelLow, "Active High Value", 10, 2000),
	})
	require.NoError(t, err)
	require.Len(t, actions, 4)

	a := actions[0]
	assert.Equal(t, "Retention incentive + personal outreach", a.RecommendedAction)
	assert.Equal(t, models.ActionPriorityHigh, a.ActionPriority)
	assert.True(t, a.RuleMatched)

	b := actions[1]
	assert.Equal(t, "Targeted win-back offer", b.RecommendedAction)

	c := actions[2]
	assert.Equal(t, "Engagement nurture sequence", c.RecommendedAction)
	assert.Equal(t, models.ActionPriorityLow, c.ActionPriority)

	d := actions[3]
	assert.Equal(t, "Upsell premium offerings", d.RecommendedAction)
	assert.Equal(t, models.ActionPriorityMedium, d.ActionPriority)
}

func TestAssignActions_SubstringMatchOnSegmentLabel(t *testing.T) {
	// The rule keys on the value portion; any lifecycle stage matches.
	actions, err := decision.AssignActions([]models.DecisionBase{
		baseRow("A", models.RiskLevelHigh, "Churned High Value", 90, 1000),
	})
	require.NoError(t, err)

	assert.Equal(t, "Retention incentive + personal outreach", actions[0].RecommendedAction)
	assert.True(t, actions[0].RuleMatched)
}

func TestAssignActions_UnknownRiskGetsDefault(t *testing.T) {
	actions, err := decision.AssignActions([]models.DecisionBase{
		baseRow("A", models.RiskLevelUnknown, "Active High Value", 30.5, 1000),
	})
	require.NoError(t, err)

	a := actions[0]
	assert.Equal(t, "Monitor", a.RecommendedAction)
	assert.Equal(t, models.ActionPriorityLow, a.ActionPriority)
	assert.Equal(t, "No matching rule; customer requires observation or manual review", a.ActionRationale)
	assert.False(t, a.RuleMatched)
}

func TestAssignActions_ExactlyOneActionPerCustomer(t *testing.T) {
	base := []models.DecisionBase{
		baseRow("A", models.RiskLevelHigh, "Active High Value", 75, 1000),
		baseRow("B", models.RiskLevelUnknown, "", 0, 0),
		baseRow("C", models.RiskLevelLow, "Dormant Low Value", 5, 50),
	}

	actions, err := decision.AssignActions(base)
	require.NoError(t, err)
	assert.Len(t, actions, len(base))
}

func TestEstimateROI_MappedCost(t *testing.T) {
	base := []models.DecisionBase{
		baseRow("A", models.RiskLevelHigh, "Active High Value", 75, 1000),
	}
	actions, err := decision.AssignActions(base)
	require.NoError(t, err)

	estimates, err := decision.EstimateROI(actions, base)
	require.NoError(t, err)
	require.Len(t, estimates, 1)

	e := estimates[0]
	assert.Equal(t, 500.0, e.ActionCost)
	assert.Equal(t, "mapped", e.ActionCostSource)
	assert.Equal(t, 250.0, e.ExpectedBenefit, "Benefit is LTV * High-risk recovery rate 0.25")
	assert.Equal(t, -250.0, e.EstimatedROI)
	assert.False(t, e.ROIFeasible, "Feasibility requires strictly positive ROI")
}

func TestEstimateROI_FeasibleAction(t *testing.T) {
	base := []models.DecisionBase{
		baseRow("A", models.RiskLevelLow, "Active High Value", 10, 1000),
	}
	actions, err := decision.AssignActions(base)
	require.NoError(t, err)

	estimates, err := decision.EstimateROI(actions, base)
	require.NoError(t, err)

	e := estimates[0]
	assert.Equal(t, 150.0, e.ActionCost, "Upsell premium offerings costs 150")
	assert.Equal(t, 600.0, e.ExpectedBenefit, "Low-risk recovery rate is 0.60")
	assert.Equal(t, 450.0, e.EstimatedROI)
	assert.True(t, e.ROIFeasible)
}

func TestEstimateROI_NegativeLifetimeValueClamped(t *testing.T) {
	base := []models.DecisionBase{
		baseRow("A", models.RiskLevelHigh, "Active Low Value", 75, -200),
	}
	actions, err := decision.AssignActions(base)
	require.NoError(t, err)

	estimates, err := decision.EstimateROI(actions, base)
	require.NoError(t, err)

	e := estimates[0]
	assert.Equal(t, 0.0, e.ExpectedBenefit, "Negative LTV is clamped to zero before the recovery rate")
	assert.Equal(t, -e.ActionCost, e.EstimatedROI)
}

func TestEstimateROI_UnmappedActionUsesDefaultCost(t *testing.T) {
	actions := []models.CustomerAction{
		{CustomerID: "A", RecommendedAction: "Send a carrier pigeon"},
	}
	base := []models.DecisionBase{
		baseRow("A", models.RiskLevelMedium, "Active Medium Value", 45, 100),
	}

	estimates, err := decision.EstimateROI(actions, base)
	require.NoError(t, err)

	e := estimates[0]
	assert.Equal(t, decision.DefaultActionCost, e.ActionCost)
	assert.Equal(t, "default", e.ActionCostSource)
	assert.Equal(t, 40.0, e.ExpectedBenefit, "Medium-risk recovery rate is 0.40")
}

func TestEstimateROI_UnrecognizedRiskLevelUsesUnknownRate(t *testing.T) {
	actions := []models.CustomerAction{
		{CustomerID: "A", RecommendedAction: "Monitor"},
	}
	base := []models.DecisionBase{
		baseRow("A", models.RiskLevel("Weird"), "Active Low Value", 0, 1000),
	}

	estimates, err := decision.EstimateROI(actions, base)
	require.NoError(t, err)

	assert.Equal(t, 100.0, estimates[0].ExpectedBenefit, "Unrecognized levels fall back to the Unknown rate 0.10")
}

func TestEstimateROI_Identity(t *testing.T) {
	base := []models.DecisionBase{
		baseRow("A", models.RiskLevelHigh, "Active High Value", 75, 1234.56),
		baseRow("B", models.RiskLevelMedium, "Dormant Low Value", 45, 10),
		baseRow("C", models.RiskLevelLow, "Active Medium Value", 5, 999.99),
	}
	actions, err := decision.AssignActions(base)
	require.NoError(t, err)

	estimates, err := decision.EstimateROI(actions, base)
	require.NoError(t, err)

	for _, e := range estimates {
		assert.InDelta(t, e.ExpectedBenefit-e.ActionCost, e.EstimatedROI, 0.005,
			"ROI is always benefit minus cost")
		assert.Equal(t, e.EstimatedROI > 0, e.ROIFeasible)
	}
}

func TestExplain_HighRiskWithDominantSignals(t *testing.T) {
	base := []models.DecisionBase{
		baseRow("A", models.RiskLevelHigh, "Active High Value", 75, 1000),
	}
	actions, err := decision.AssignActions(base)
	require.NoError(t, err)

	signals := []models.RiskSignals{
		{CustomerID: "A", RecencySignal: 0.9, SpendDropSignal: 0.5, FrequencyDropSignal: 0.1},
	}

	explanations, err := decision.Explain(base, actions, signals)
	require.NoError(t, err)
	require.Len(t, explanations, 1)

	assert.Equal(t,
		"Customer is classified as High Risk due to prolonged inactivity and declining spend. "+
			"Overall risk score is 75.0 out of 100. "+
			"As a High Value customer, the recommended action is retention incentive + personal outreach.",
		explanations[0].Explanation)
}

func TestExplain_MediumRiskNoDominantSignals(t *testing.T) {
	base := []models.DecisionBase{
		baseRow("A", models.RiskLevelMedium, "Active Medium Value", 45, 100),
	}
	actions, err := decision.AssignActions(base)
	require.NoError(t, err)

	signals := []models.RiskSignals{
		{CustomerID: "A", RecencySignal: 0.1, SpendDropSignal: 0.1, FrequencyDropSignal: 0.1},
	}

	explanations, err := decision.Explain(base, actions, signals)
	require.NoError(t, err)

	assert.Contains(t, explanations[0].Explanation,
		"Customer is classified as Medium Risk based on overall behavior.")
}

func TestExplain_LowRisk(t *testing.T) {
	base := []models.DecisionBase{
		baseRow("A", models.RiskLevelLow, "Active High Value", 5, 1000),
	}
	actions, err := decision.AssignActions(base)
	require.NoError(t, err)

	explanations, err := decision.Explain(base, actions, nil)
	require.NoError(t, err)

	assert.Contains(t, explanations[0].Explanation,
		"Customer shows stable behavior and is classified as Low Risk.")
	assert.Contains(t, explanations[0].Explanation, "Overall risk score is 5.0 out of 100.")
}

func TestExplain_UnknownRisk(t *testing.T) {
	base := []models.DecisionBase{
		baseRow("A", models.RiskLevelUnknown, "Active Low Value", 30.5, 100),
	}
	actions, err := decision.AssignActions(base)
	require.NoError(t, err)

	explanations, err := decision.Explain(base, actions, nil)
	require.NoError(t, err)

	assert.Contains(t, explanations[0].Explanation,
		"Customer risk level could not be confidently determined.")
	assert.Contains(t, explanations[0].Explanation, "the recommended action is monitor.")
}

func TestExplain_ThresholdBoundariesAreInclusive(t *testing.T) {
	base := []models.DecisionBase{
		baseRow("A", models.RiskLevelHigh, "Active Low Value", 70, 100),
	}
	actions, err := decision.AssignActions(base)
	require.NoError(t, err)

	signals := []models.RiskSignals{
		{CustomerID: "A", RecencySignal: 0.3, SpendDropSignal: 0.2, FrequencyDropSignal: 0.2},
	}

	explanations, err := decision.Explain(base, actions, signals)
	require.NoError(t, err)

	assert.Contains(t, explanations[0].Explanation,
		"due to prolonged inactivity and declining spend and reduced purchase frequency.",
		"Signals exactly at their thresholds count as dominant")
}
