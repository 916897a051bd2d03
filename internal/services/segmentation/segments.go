// Package segmentation assigns lifecycle stages and value segments to
// customers using deterministic, rule-based logic.
package segmentation

import (
	"sort"

	"lifecycle-intelligence-engine/internal/models"
)

// lifecycleStage assigns a lifecycle stage from recency_days. A negative
// recency cannot arise from the feature engine (recency is clamped at zero)
// and is treated as unknown.
func lifecycleStage(recencyDays int) models.LifecycleStage {
	if recencyDays < 0 {
		return models.LifecycleStageUnknown
	}

	for _, rule := range LifecycleStageRules {
		if recencyDays >= rule.RecencyMin && recencyDays <= rule.RecencyMax {
			return rule.Stage
		}
	}

	return models.LifecycleStageUnknown
}

// valueSegmentFromPercentile assigns a value segment from a monetary
// percentile. Customers with non-positive monetary are forced to Low Value
// regardless of percentile.
func valueSegmentFromPercentile(percentile, monetary float64) models.ValueSegment {
	if monetary <= 0 {
		return models.ValueSegmentLow
	}

	for _, rule := range ValueSegmentRules {
		if percentile >= rule.PercentileMin && percentile <= rule.PercentileMax {
			return rule.Segment
		}
	}

	return models.ValueSegmentLow
}

// monetaryPercentiles computes average-rank percentiles (0-100 scale) for the
// monetary values of the given features, keyed by customer id. Degenerate
// cohorts (all-zero monetary, or a single customer) have no meaningful
// percentile and map every customer to 0.
func monetaryPercentiles(features []models.CustomerFeatures) map[string]float64 {
	percentiles := make(map[string]float64, len(features))

	total := 0.0
	for _, f := range features {
		total += f.Monetary
	}
	if total == 0 || len(features) == 1 {
		for _, f := range features {
			percentiles[f.CustomerID] = 0.0
		}
		return percentiles
	}

	// Average rank: ties share the mean of the ranks they span.
	sorted := make([]models.CustomerFeatures, len(features))
	copy(sorted, features)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Monetary < sorted[j].Monetary
	})

	n := float64(len(sorted))
	i := 0
	for i < len(sorted) {
		j := i
		for j < len(sorted) && sorted[j].Monetary == sorted[i].Monetary {
			j++
		}
		// 1-based ranks i+1..j share the average rank.
		avgRank := float64(i+1+j) / 2.0
		for k := i; k < j; k++ {
			percentiles[sorted[k].CustomerID] = avgRank / n * 100
		}
		i = j
	}

	return percentiles
}

// AssignSegments assigns a lifecycle stage and value segment to every
// customer in the feature table. The returned table is sorted ascending by
// customer id and carries the rule-set version for traceability.
func AssignSegments(features []models.CustomerFeatures) ([]models.CustomerSegment, error) {
	percentiles := monetaryPercentiles(features)

	segments := make([]models.CustomerSegment, 0, len(features))
	for _, f := range features {
		stage := lifecycleStage(f.RecencyDays)
		value := valueSegmentFromPercentile(percentiles[f.CustomerID], f.Monetary)

		segments = append(segments, models.CustomerSegment{
			CustomerID:     f.CustomerID,
			LifecycleStage: stage,
			ValueSegment:   value,
			SegmentLabel:   string(stage) + " " + string(value),
			SegmentVersion: RuleMetadata.Version,
		})
	}

	sort.Slice(segments, func(i, j int) bool {
		return segments[i].CustomerID < segments[j].CustomerID
	})

	return segments, nil
}
