// Package features computes per-customer behavioral features from canonical
// transactions.
package features

import (
	"sort"
	"time"

	"lifecycle-intelligence-engine/internal/models"
	"lifecycle-intelligence-engine/internal/services/timewindow"
)

// windowMetrics holds spend and transaction count for one customer within a
// single window.
type windowMetrics struct {
	spend     float64
	frequency int
}

// computeWindowMetrics aggregates spend and frequency per customer within
// [start, end] inclusive.
func computeWindowMetrics(transactions []models.Transaction, start, end time.Time) (map[string]windowMetrics, error) {
	windowTx, err := timewindow.FilterWindow(transactions, start, end)
	if err != nil {
		return nil, err
	}

	metrics := make(map[string]windowMetrics)
	for _, tx := range windowTx {
		m := metrics[tx.CustomerID]
		m.spend += tx.Amount
		m.frequency++
		metrics[tx.CustomerID] = m
	}
	return metrics, nil
}

// percentageChange computes ((current - previous) / previous) * 100.
// Growth from a zero base is reported as no-change rather than infinite.
func percentageChange(current, previous float64) float64 {
	if previous == 0 {
		return 0.0
	}
	return ((current - previous) / previous) * 100
}

// ComputeBehavioralTrends computes spend and frequency trends comparing two
// non-overlapping windows:
//
//	current:  [snapshot - windowDays, snapshot]           (inclusive both ends)
//	previous: [snapshot - 2*windowDays, snapshot - windowDays - 1 day]
//
// Customers absent from a window contribute zero for that window; a zero
// previous-window value yields a trend of exactly 0.0.
func ComputeBehavioralTrends(transactions []models.Transaction, snapshot time.Time, windowDays int) ([]models.BehavioralTrends, error) {
	currentStart, err := timewindow.WindowStart(snapshot, windowDays)
	if err != nil {
		return nil, err
	}
	previousStart, err := timewindow.WindowStart(snapshot, 2*windowDays)
	if err != nil {
		return nil, err
	}
	previousEnd := currentStart.Add(-timewindow.Day)

	current, err := computeWindowMetrics(transactions, currentStart, snapshot)
	if err != nil {
		return nil, err
	}
	previous, err := computeWindowMetrics(transactions, previousStart, previousEnd)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	customers := make([]string, 0)
	for _, tx := range transactions {
		if !seen[tx.CustomerID] {
			seen[tx.CustomerID] = true
			customers = append(customers, tx.CustomerID)
		}
	}
	sort.Strings(customers)

	result := make([]models.BehavioralTrends, 0, len(customers))
	for _, customerID := range customers {
		cur := current[customerID]
		prev := previous[customerID]

		result = append(result, models.BehavioralTrends{
			CustomerID:     customerID,
			SpendTrend:     percentageChange(cur.spend, prev.spend),
			FrequencyTrend: percentageChange(float64(cur.frequency), float64(prev.frequency)),
		})
	}

	return result, nil
}

// MergeFeatures left-joins behavioral trends onto RFM features by customer id,
// producing the combined feature table sorted ascending by customer id.
func MergeFeatures(rfm []models.RFMFeatures, trends []models.BehavioralTrends) []models.CustomerFeatures {
	trendsByID := make(map[string]models.BehavioralTrends, len(trends))
	for _, t := range trends {
		trendsByID[t.CustomerID] = t
	}

	merged := make([]models.CustomerFeatures, 0, len(rfm))
	for _, f := range rfm {
		t := trendsByID[f.CustomerID]
		merged = append(merged, models.CustomerFeatures{
			CustomerID:     f.CustomerID,
			RecencyDays:    f.RecencyDays,
			Frequency:      f.Frequency,
			Monetary:       f.Monetary,
			LifetimeValue:  f.LifetimeValue,
			SpendTrend:     t.SpendTrend,
			FrequencyTrend: t.FrequencyTrend,
		})
	}

	sort.Slice(merged, func(i, j int) bool {
		return merged[i].CustomerID < merged[j].CustomerID
	})

	return merged
}
