// Package risk converts customer behavioral features into normalized risk
// signals and fuses them into a single 0-100 risk score.
package risk

import (
	"math"
	"sort"

	"lifecycle-intelligence-engine/internal/models"
)

// RecencyCapDays caps recency normalization: customers inactive for 365+ days
// are at maximum recency risk.
const RecencyCapDays = 365.0

// TrendDropCapPercent caps trend normalization: a 100% drop in spend or
// frequency is maximum trend risk.
const TrendDropCapPercent = 100.0

// normalizeRecency maps recency_days into a [0,1] signal. Higher recency is
// higher risk. Missing or negative values are treated as maximum risk.
func normalizeRecency(recencyDays float64) float64 {
	if math.IsNaN(recencyDays) || recencyDays < 0 {
		return 1.0
	}

	return math.Min(recencyDays/RecencyCapDays, 1.0)
}

// normalizeNegativeTrend maps a trend percentage into a [0,1] drop signal.
// Only declines contribute to risk; positive, zero, or missing trends are
// zero risk.
func normalizeNegativeTrend(trendPercent float64) float64 {
	if math.IsNaN(trendPercent) || trendPercent >= 0 {
		return 0.0
	}

	return math.Min(math.Abs(trendPercent)/TrendDropCapPercent, 1.0)
}

// ComputeSignals computes the three normalized risk signals per customer from
// recency_days, spend_trend, and frequency_trend. The returned table is
// sorted ascending by customer id and every signal is bounded to [0,1].
func ComputeSignals(features []models.CustomerFeatures) ([]models.RiskSignals, error) {
	signals := make([]models.RiskSignals, 0, len(features))
	for _, f := range features {
		signals = append(signals, models.RiskSignals{
			CustomerID:          f.CustomerID,
			RecencySignal:       normalizeRecency(float64(f.RecencyDays)),
			FrequencyDropSignal: normalizeNegativeTrend(f.FrequencyTrend),
			SpendDropSignal:     normalizeNegativeTrend(f.SpendTrend),
		})
	}

	sort.Slice(signals, func(i, j int) bool {
		return signals[i].CustomerID < signals[j].CustomerID
	})

	return signals, nil
}
