// Package features computes per-customer behavioral features from canonical
// transactions. All computations are snapshot-based, deterministic, and free
// of side effects: every function returns a new table sorted by customer id.
package features

import (
	"sort"
	"time"

	"lifecycle-intelligence-engine/internal/models"
	"lifecycle-intelligence-engine/internal/services/timewindow"
)

// DefaultWindowDays is the default lookback window for RFM and trend features.
const DefaultWindowDays = 90

// ComputeRFM computes recency/frequency/monetary features per customer.
//
// Recency is measured over full history and clamped at zero. Frequency and
// monetary are scoped to the window [snapshot - windowDays, snapshot - 1 day]:
// the snapshot day itself is excluded. Lifetime value is all-time spend.
// Customers with no window activity get zero frequency and monetary but always
// have recency and lifetime value, since they appear in the source set.
func ComputeRFM(transactions []models.Transaction, snapshot time.Time, windowDays int) ([]models.RFMFeatures, error) {
	windowStart, err := timewindow.WindowStart(snapshot, windowDays)
	if err != nil {
		return nil, err
	}

	// Window end excludes the snapshot day.
	windowEnd := snapshot.Add(-timewindow.Day)

	lastTx := make(map[string]time.Time)
	lifetime := make(map[string]float64)
	for _, tx := range transactions {
		if last, ok := lastTx[tx.CustomerID]; !ok || tx.TransactionDate.After(last) {
			lastTx[tx.CustomerID] = tx.TransactionDate
		}
		lifetime[tx.CustomerID] += tx.Amount
	}

	windowTx, err := timewindow.FilterWindow(transactions, windowStart, windowEnd)
	if err != nil {
		return nil, err
	}

	frequency := make(map[string]int)
	monetary := make(map[string]float64)
	for _, tx := range windowTx {
		frequency[tx.CustomerID]++
		monetary[tx.CustomerID] += tx.Amount
	}

	result := make([]models.RFMFeatures, 0, len(lastTx))
	for customerID, last := range lastTx {
		recency := timewindow.DaysBetween(last, snapshot)
		if recency < 0 {
			recency = 0
		}

		result = append(result, models.RFMFeatures{
			CustomerID:    customerID,
			RecencyDays:   recency,
			Frequency:     frequency[customerID],
			Monetary:      monetary[customerID],
			LifetimeValue: lifetime[customerID],
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CustomerID < result[j].CustomerID
	})

	return result, nil
}
