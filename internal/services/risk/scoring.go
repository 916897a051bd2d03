// Package risk converts customer behavioral features into normalized risk
// signals and fuses them into a single 0-100 risk score.
package risk

import (
	"fmt"
	"math"
	"sort"

	"lifecycle-intelligence-engine/internal/models"
)

// SignalWeights are the fixed fusion weights. They must sum to exactly 1.0;
// a mismatch is a fatal configuration error at package initialization.
var SignalWeights = struct {
	Recency       float64
	FrequencyDrop float64
	SpendDrop     float64
}{
	Recency:       0.40,
	FrequencyDrop: 0.25,
	SpendDrop:     0.35,
}

func init() {
	if err := ValidateWeights(); err != nil {
		panic(err)
	}
}

// ValidateWeights verifies the signal weights sum to 1.0.
func ValidateWeights() error {
	sum := SignalWeights.Recency + SignalWeights.FrequencyDrop + SignalWeights.SpendDrop
	if math.Round(sum*1e5)/1e5 != 1.0 {
		return &models.ConfigurationError{
			Reason: fmt.Sprintf("signal weights must sum to 1.0, got %v", sum),
		}
	}
	return nil
}

// assignRiskLevel categorizes a risk score using the score thresholds.
// A NaN score, or a score falling between bands, is Unknown.
func assignRiskLevel(score float64) models.RiskLevel {
	if math.IsNaN(score) {
		return models.RiskLevelUnknown
	}

	for _, threshold := range ScoreThresholds {
		if score >= threshold.ScoreMin && score <= threshold.ScoreMax {
			return threshold.Category
		}
	}

	return models.RiskLevelUnknown
}

// round2 rounds to 2 decimal places.
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// ComputeScores aggregates normalized risk signals into a 0-100 risk score
// per customer via weighted sum, then derives the risk level. Missing (NaN)
// signals are treated as 0.0 before weighting so absence never inflates risk.
func ComputeScores(signals []models.RiskSignals) ([]models.RiskScore, error) {
	scores := make([]models.RiskScore, 0, len(signals))
	for _, s := range signals {
		raw := zeroIfNaN(s.RecencySignal)*SignalWeights.Recency +
			zeroIfNaN(s.FrequencyDropSignal)*SignalWeights.FrequencyDrop +
			zeroIfNaN(s.SpendDropSignal)*SignalWeights.SpendDrop

		score := round2(clamp(raw*100, 0, 100))

		scores = append(scores, models.RiskScore{
			CustomerID: s.CustomerID,
			RiskScore:  score,
			RiskLevel:  assignRiskLevel(score),
		})
	}

	sort.Slice(scores, func(i, j int) bool {
		return scores[i].CustomerID < scores[j].CustomerID
	})

	return scores, nil
}

func zeroIfNaN(x float64) float64 {
	if math.IsNaN(x) {
		return 0.0
	}
	return x
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
