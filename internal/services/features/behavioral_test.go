package features_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifecycle-intelligence-engine/internal/models"
	"lifecycle-intelligence-engine/internal/services/features"
)

func findTrends(t *testing.T, rows []models.BehavioralTrends, customerID string) models.BehavioralTrends {
	t.Helper()
	for _, row := range rows {
		if row.CustomerID == customerID {
			return row
		}
	}
	t.Fatalf("customer %s not found", customerID)
	return models.BehavioralTrends{}
}

func TestComputeBehavioralTrends_Decline(t *testing.T) {
	// Previous window [2023-11-11, 2023-12-10]: 200 spend, 2 transactions.
	// Current window [2023-12-11, 2024-01-10]: 100 spend, 1 transaction.
	transactions := []models.Transaction{
		tx("A", "2023-11-20", 120, t),
		tx("A", "2023-12-01", 80, t),
		tx("A", "2023-12-20", 100, t),
	}

	trends, err := features.ComputeBehavioralTrends(transactions, day(t, "2024-01-10"), 30)
	require.NoError(t, err)

	a := findTrends(t, trends, "A")
	assert.Equal(t, -50.0, a.SpendTrend, "Spend halved period over period")
	assert.Equal(t, -50.0, a.FrequencyTrend, "Frequency halved period over period")
}

func TestComputeBehavioralTrends_ZeroBaseIsZeroTrend(t *testing.T) {
	// Customer only active in the current window: zero previous base.
	transactions := []models.Transaction{
		tx("A", "2024-01-05", 100, t),
	}

	trends, err := features.ComputeBehavioralTrends(transactions, day(t, "2024-01-10"), 30)
	require.NoError(t, err)

	a := findTrends(t, trends, "A")
	assert.Equal(t, 0.0, a.SpendTrend, "Growth from a zero base is reported as no change")
	assert.Equal(t, 0.0, a.FrequencyTrend)
}

func TestComputeBehavioralTrends_CurrentWindowIncludesSnapshotDay(t *testing.T) {
	transactions := []models.Transaction{
		tx("A", "2023-12-05", 100, t), // previous window
		tx("A", "2024-01-10", 150, t), // snapshot day, current window
	}

	trends, err := features.ComputeBehavioralTrends(transactions, day(t, "2024-01-10"), 30)
	require.NoError(t, err)

	a := findTrends(t, trends, "A")
	assert.Equal(t, 50.0, a.SpendTrend, "Snapshot-day activity belongs to the current window")
}

func TestComputeBehavioralTrends_AbsentFromCurrentWindow(t *testing.T) {
	transactions := []models.Transaction{
		tx("A", "2023-12-05", 100, t), // previous window only
	}

	trends, err := features.ComputeBehavioralTrends(transactions, day(t, "2024-01-10"), 30)
	require.NoError(t, err)

	a := findTrends(t, trends, "A")
	assert.Equal(t, -100.0, a.SpendTrend, "Dropping to zero is a full decline")
	assert.Equal(t, -100.0, a.FrequencyTrend)
}

func TestComputeBehavioralTrends_AllCustomersPresent(t *testing.T) {
	// Customer whose only activity predates both windows still gets a row.
	transactions := []models.Transaction{
		tx("A", "2024-01-05", 100, t),
		tx("B", "2022-01-01", 30, t),
	}

	trends, err := features.ComputeBehavioralTrends(transactions, day(t, "2024-01-10"), 30)
	require.NoError(t, err)
	require.Len(t, trends, 2)

	b := findTrends(t, trends, "B")
	assert.Equal(t, 0.0, b.SpendTrend)
	assert.Equal(t, 0.0, b.FrequencyTrend)
}

func TestMergeFeatures_LeftJoinOnRFM(t *testing.T) {
	rfm := []models.RFMFeatures{
		{CustomerID: "B", RecencyDays: 5, Frequency: 2, Monetary: 80, LifetimeValue: 120},
		{CustomerID: "A", RecencyDays: 0, Frequency: 1, Monetary: 100, LifetimeValue: 300},
	}
	trends := []models.BehavioralTrends{
		{CustomerID: "A", SpendTrend: -20, FrequencyTrend: 10},
	}

	merged := features.MergeFeatures(rfm, trends)
	require.Len(t, merged, 2)

	assert.Equal(t, "A", merged[0].CustomerID, "Merged table is sorted by customer id")
	assert.Equal(t, -20.0, merged[0].SpendTrend)
	assert.Equal(t, 10.0, merged[0].FrequencyTrend)
	assert.Equal(t, 300.0, merged[0].LifetimeValue)

	assert.Equal(t, "B", merged[1].CustomerID)
	assert.Equal(t, 0.0, merged[1].SpendTrend, "Missing trends default to zero")
	assert.Equal(t, 0.0, merged[1].FrequencyTrend)
}
