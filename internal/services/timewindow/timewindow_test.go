package timewindow_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifecycle-intelligence-engine/internal/models"
	"lifecycle-intelligence-engine/internal/services/timewindow"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return parsed
}

func tx(customerID, date string, amount float64, t *testing.T) models.Transaction {
	t.Helper()
	return models.Transaction{
		TransactionID:   "TX-" + customerID + "-" + date,
		CustomerID:      customerID,
		TransactionDate: day(t, date),
		Amount:          amount,
	}
}

func TestResolveSnapshot_ExplicitDateWins(t *testing.T) {
	explicit := day(t, "2024-06-01")
	transactions := []models.Transaction{tx("C1", "2024-01-10", 100, t)}

	snapshot, err := timewindow.ResolveSnapshot(transactions, &explicit)

	assert.NoError(t, err)
	assert.Equal(t, explicit, snapshot, "Explicit snapshot should be returned as-is")
}

func TestResolveSnapshot_InfersMaxDate(t *testing.T) {
	transactions := []models.Transaction{
		tx("C1", "2024-01-05", 50, t),
		tx("C2", "2024-01-10", 100, t),
		tx("C1", "2024-01-02", 25, t),
	}

	snapshot, err := timewindow.ResolveSnapshot(transactions, nil)

	assert.NoError(t, err)
	assert.Equal(t, day(t, "2024-01-10"), snapshot, "Snapshot should be the latest transaction date")
}

func TestResolveSnapshot_EmptyInput(t *testing.T) {
	_, err := timewindow.ResolveSnapshot(nil, nil)

	assert.Error(t, err)
	assert.True(t, models.IsEmptyInput(err), "Empty set without explicit date should be an EmptyInputError")
}

func TestWindowStart(t *testing.T) {
	snapshot := day(t, "2024-01-31")

	start, err := timewindow.WindowStart(snapshot, 30)

	assert.NoError(t, err)
	assert.Equal(t, day(t, "2024-01-01"), start)
}

func TestWindowStart_NegativeDays(t *testing.T) {
	_, err := timewindow.WindowStart(day(t, "2024-01-31"), -1)

	assert.Error(t, err)
	assert.True(t, models.IsInvalidArgument(err), "Negative window should be an InvalidArgumentError")
}

func TestFilterWindow_InclusiveBounds(t *testing.T) {
	transactions := []models.Transaction{
		tx("C1", "2024-01-01", 10, t),
		tx("C1", "2024-01-05", 20, t),
		tx("C1", "2024-01-10", 30, t),
		tx("C1", "2024-01-11", 40, t),
	}

	filtered, err := timewindow.FilterWindow(transactions, day(t, "2024-01-01"), day(t, "2024-01-10"))

	assert.NoError(t, err)
	require.Len(t, filtered, 3, "Both window boundaries should be inclusive")
	assert.Equal(t, 10.0, filtered[0].Amount)
	assert.Equal(t, 30.0, filtered[2].Amount)
}

func TestFilterWindow_StartAfterEnd(t *testing.T) {
	_, err := timewindow.FilterWindow(nil, day(t, "2024-01-10"), day(t, "2024-01-01"))

	assert.Error(t, err)
	assert.True(t, models.IsInvalidArgument(err))
}

func TestFilterWindow_DoesNotMutateInput(t *testing.T) {
	transactions := []models.Transaction{
		tx("C1", "2024-01-05", 20, t),
		tx("C1", "2023-01-01", 10, t),
	}

	_, err := timewindow.FilterWindow(transactions, day(t, "2024-01-01"), day(t, "2024-01-31"))

	assert.NoError(t, err)
	assert.Equal(t, day(t, "2024-01-05"), transactions[0].TransactionDate, "Input order should be untouched")
	assert.Len(t, transactions, 2)
}

func TestDaysBetween_WholeDays(t *testing.T) {
	assert.Equal(t, 5, timewindow.DaysBetween(day(t, "2024-01-05"), day(t, "2024-01-10")))
	assert.Equal(t, 0, timewindow.DaysBetween(day(t, "2024-01-10"), day(t, "2024-01-10")))
}

func TestDaysBetween_PartialDaysFloorTowardNegativeInfinity(t *testing.T) {
	morning := day(t, "2024-01-01").Add(8 * time.Hour)
	nextMidnight := day(t, "2024-01-02")

	assert.Equal(t, 0, timewindow.DaysBetween(morning, nextMidnight),
		"16 elapsed hours is zero whole days")
	assert.Equal(t, -1, timewindow.DaysBetween(nextMidnight, morning),
		"Negative partial days floor to -1")
}
