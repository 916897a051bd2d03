// Package timewindow provides snapshot-based time window utilities. These are
// the foundational building blocks for all time-scoped feature engineering:
// resolving snapshot dates, computing rolling window boundaries, and filtering
// transactions by date range. No aggregation happens here and inputs are
// never mutated.
package timewindow

import (
	"time"

	"lifecycle-intelligence-engine/internal/models"
)

// Day is the fixed window arithmetic unit. Window math uses absolute 24-hour
// days, not calendar days.
const Day = 24 * time.Hour

// ResolveSnapshot determines the snapshot date for point-in-time analysis.
// If explicit is non-nil it is returned as-is; otherwise the snapshot is the
// maximum transaction date in the set. An empty set with no explicit date is
// an EmptyInputError.
func ResolveSnapshot(transactions []models.Transaction, explicit *time.Time) (time.Time, error) {
	if explicit != nil {
		return *explicit, nil
	}

	if len(transactions) == 0 {
		return time.Time{}, &models.EmptyInputError{
			Reason: "cannot infer snapshot date from empty transaction set",
		}
	}

	max := transactions[0].TransactionDate
	for _, tx := range transactions[1:] {
		if tx.TransactionDate.After(max) {
			max = tx.TransactionDate
		}
	}
	return max, nil
}

// WindowStart calculates the start of a rolling window ending at snapshot.
// days must be non-negative.
func WindowStart(snapshot time.Time, days int) (time.Time, error) {
	if days < 0 {
		return time.Time{}, models.NewInvalidArgumentError("days must be non-negative, got %d", days)
	}

	return snapshot.Add(-time.Duration(days) * Day), nil
}

// FilterWindow returns the transactions whose date falls within
// [start, end], inclusive on both ends. The input slice is never mutated;
// the result is a fresh slice.
func FilterWindow(transactions []models.Transaction, start, end time.Time) ([]models.Transaction, error) {
	if start.After(end) {
		return nil, models.NewInvalidArgumentError(
			"start date %s must not be after end date %s",
			start.Format("2006-01-02"), end.Format("2006-01-02"),
		)
	}

	filtered := make([]models.Transaction, 0)
	for _, tx := range transactions {
		if tx.TransactionDate.Before(start) || tx.TransactionDate.After(end) {
			continue
		}
		filtered = append(filtered, tx)
	}
	return filtered, nil
}

// DaysBetween returns the number of whole 24-hour days from earlier to later,
// rounding toward negative infinity as elapsed-day arithmetic requires.
func DaysBetween(earlier, later time.Time) int {
	delta := later.Sub(earlier)
	days := delta / Day
	if delta%Day < 0 {
		days--
	}
	return int(days)
}
