// Package validation gatekeeps canonical transaction data after ingestion and
// before feature engineering. It validates only; it never cleans or
// transforms, and hard failures are raised immediately.
package validation

import (
	"fmt"

	"lifecycle-intelligence-engine/internal/models"
)

// CheckRequiredColumns verifies all required columns appear in the column
// list. Missing columns are a SchemaError naming every absent column.
func CheckRequiredColumns(columns []string, required []string) error {
	present := make(map[string]bool, len(columns))
	for _, c := range columns {
		present[c] = true
	}

	var missing []string
	for _, r := range required {
		if !present[r] {
			missing = append(missing, r)
		}
	}

	if len(missing) > 0 {
		return models.NewSchemaError(missing...)
	}
	return nil
}

// CheckNoNullCriticalFields verifies every transaction carries a non-empty
// transaction id, customer id, and transaction date.
func CheckNoNullCriticalFields(transactions []models.Transaction) error {
	for i, tx := range transactions {
		if tx.TransactionID == "" {
			return fmt.Errorf("row %d: %w", i, models.ErrEmptyTransactionID)
		}
		if tx.CustomerID == "" {
			return fmt.Errorf("row %d: %w", i, models.ErrEmptyCustomerID)
		}
		if tx.TransactionDate.IsZero() {
			return fmt.Errorf("row %d: %w", i, models.ErrInvalidDate)
		}
	}
	return nil
}

// CheckPositiveAmounts verifies every transaction amount is strictly positive.
func CheckPositiveAmounts(transactions []models.Transaction) error {
	nonPositive := 0
	for _, tx := range transactions {
		if tx.Amount <= 0 {
			nonPositive++
		}
	}
	if nonPositive > 0 {
		return fmt.Errorf("%d transaction(s) with non-positive amount: %w", nonPositive, models.ErrInvalidAmount)
	}
	return nil
}

// ValidateTransactions validates the canonical transaction table and returns
// a summary of the checks performed. Any failed check aborts validation with
// the underlying error.
func ValidateTransactions(transactions []models.Transaction) (models.ValidationSummary, error) {
	summary := models.ValidationSummary{
		RowCount:    len(transactions),
		ColumnCount: len(models.CanonicalColumns),
	}

	// Canonical transactions are fully typed, so the column-presence check
	// is over the fixed canonical column set; raw-file column checks happen
	// at ingestion.
	if err := CheckRequiredColumns(models.CanonicalColumns, models.RequiredTransactionColumns); err != nil {
		return summary, err
	}
	summary.ValidationsPassed = append(summary.ValidationsPassed, "required_columns")

	if err := CheckNoNullCriticalFields(transactions); err != nil {
		return summary, err
	}
	summary.ValidationsPassed = append(summary.ValidationsPassed, "no_nulls_critical")

	if err := CheckPositiveAmounts(transactions); err != nil {
		return summary, err
	}
	summary.ValidationsPassed = append(summary.ValidationsPassed, "positive_values")

	summary.ColumnsValidated = append([]string(nil), models.RequiredTransactionColumns...)

	return summary, nil
}
