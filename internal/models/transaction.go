// Package models defines the data structures for the lifecycle intelligence engine.
package models

import (
	"time"
)

// CanonicalColumns enumerates the canonical transaction table columns in order.
var CanonicalColumns = []string{
	"transaction_id",
	"customer_id",
	"transaction_date",
	"amount",
	"product_id",
	"category",
	"channel",
	"region",
}

// RequiredTransactionColumns are mandatory in every transaction dataset.
// Datasets missing any of these fail validation with a SchemaError.
var RequiredTransactionColumns = []string{
	"transaction_id",
	"customer_id",
	"transaction_date",
	"amount",
}

// OptionalTransactionColumns provide supplementary context for analytics but
// are not required for core processing.
var OptionalTransactionColumns = []string{
	"product_id",
	"category",
	"channel",
	"region",
}

// Transaction is one row of the canonical transaction table.
type Transaction struct {
	TransactionID   string    `json:"transaction_id" db:"transaction_id"`
	CustomerID      string    `json:"customer_id" db:"customer_id"`
	TransactionDate time.Time `json:"transaction_date" db:"transaction_date"`
	Amount          float64   `json:"amount" db:"amount"`
	ProductID       string    `json:"product_id,omitempty" db:"product_id"`
	Category        string    `json:"category,omitempty" db:"category"`
	Channel         string    `json:"channel,omitempty" db:"channel"`
	Region          string    `json:"region,omitempty" db:"region"`
}

// ValidationSummary reports the outcome of transaction data-quality checks.
type ValidationSummary struct {
	RowCount          int      `json:"row_count"`
	ColumnCount       int      `json:"column_count"`
	ColumnsValidated  []string `json:"columns_validated"`
	ValidationsPassed []string `json:"validations_passed"`
}

// IngestResult contains the outcome of loading a raw transaction file into
// the canonical format.
type IngestResult struct {
	Transactions       []Transaction `json:"-"`
	TotalRows          int           `json:"total_rows"`
	Loaded             int           `json:"loaded"`
	SkippedNoCustomer  int           `json:"skipped_no_customer"`
	SkippedCancelled   int           `json:"skipped_cancelled"`
	SkippedNonPositive int           `json:"skipped_non_positive"`
	ParseErrors        []string      `json:"parse_errors,omitempty"`
}
