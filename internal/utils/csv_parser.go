// Package utils provides utility functions for the lifecycle intelligence engine.
package utils

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"lifecycle-intelligence-engine/internal/models"
)

// CSVParser errors
var (
	ErrEmptyCSV   = errors.New("CSV content is empty")
	ErrNoDataRows = errors.New("CSV file contains no data rows")
)

// ColumnAliases maps alternative column names to canonical names. Covers the
// Online Retail II export headers as well as common variants.
var ColumnAliases = map[string]string{
	// transaction_id aliases
	"invoice":        "transaction_id",
	"invoice_no":     "transaction_id",
	"invoiceno":      "transaction_id",
	"order_id":       "transaction_id",
	"orderid":        "transaction_id",
	"transactionid":  "transaction_id",
	"transaction id": "transaction_id",

	// customer_id aliases
	"customer id": "customer_id",
	"customerid":  "customer_id",
	"customer":    "customer_id",
	"client_id":   "customer_id",

	// transaction_date aliases
	"invoicedate":      "transaction_date",
	"invoice_date":     "transaction_date",
	"invoice date":     "transaction_date",
	"order_date":       "transaction_date",
	"date":             "transaction_date",
	"transaction date": "transaction_date",

	// quantity / price aliases (amount is derived when absent)
	"qty":        "quantity",
	"price":      "unit_price",
	"unit price": "unit_price",
	"unitprice":  "unit_price",

	// optional context columns
	"stockcode":   "product_id",
	"stock_code":  "product_id",
	"sku":         "product_id",
	"description": "category",
	"country":     "region",
}

// cancelledPrefix marks cancellation invoices in the Online Retail II dataset.
const cancelledPrefix = "C"

// malformedDateRe matches dates where the time glued onto the day,
// e.g. "2009-12-0107:45:00".
var malformedDateRe = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})(\d{2}:\d{2}(:\d{2})?)$`)

// dateLayouts are tried in order when parsing transaction dates. Slash
// formats are day-first, matching the source dataset.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
}

// CSVParser converts raw retail transaction CSVs into canonical transactions.
type CSVParser struct {
	columnMapping map[string]int
}

// NewCSVParser creates a new CSV parser instance.
func NewCSVParser() *CSVParser {
	return &CSVParser{
		columnMapping: make(map[string]int),
	}
}

// ParseTransactions parses CSV content and returns canonical transactions
// along with row-level skip counts. Rows with a missing customer id,
// cancellation invoices, and non-positive quantity/price/amount rows are
// dropped rather than reported as errors. A missing required column is a
// SchemaError.
func (p *CSVParser) ParseTransactions(content string) (*models.IngestResult, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyCSV
	}

	reader := csv.NewReader(strings.NewReader(content))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1 // Allow variable number of fields

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	if err := p.buildColumnMapping(header); err != nil {
		return nil, err
	}

	result := &models.IngestResult{}
	lineNum := 1 // Header is line 1

	for {
		lineNum++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.ParseErrors = append(result.ParseErrors, fmt.Sprintf("line %d: %v", lineNum, err))
			continue
		}
		result.TotalRows++

		tx, skip, err := p.parseRow(record)
		if err != nil {
			result.ParseErrors = append(result.ParseErrors, fmt.Sprintf("line %d: %v", lineNum, err))
			continue
		}
		if skip != "" {
			switch skip {
			case "no_customer":
				result.SkippedNoCustomer++
			case "cancelled":
				result.SkippedCancelled++
			case "non_positive":
				result.SkippedNonPositive++
			}
			continue
		}

		result.Transactions = append(result.Transactions, *tx)
		result.Loaded++
	}

	if result.Loaded == 0 && len(result.ParseErrors) > 0 {
		return result, ErrNoDataRows
	}

	return result, nil
}

// buildColumnMapping creates a mapping of canonical column names to indices
// and verifies the required columns are present.
func (p *CSVParser) buildColumnMapping(header []string) error {
	p.columnMapping = make(map[string]int)

	for i, col := range header {
		normalized := strings.ToLower(strings.TrimSpace(col))
		if alias, ok := ColumnAliases[normalized]; ok {
			normalized = alias
		}
		p.columnMapping[normalized] = i
	}

	var missing []string
	for _, required := range []string{"transaction_id", "customer_id", "transaction_date"} {
		if _, ok := p.columnMapping[required]; !ok {
			missing = append(missing, required)
		}
	}

	// Amount may be provided directly or derived from quantity * unit_price.
	if _, ok := p.columnMapping["amount"]; !ok {
		_, hasQty := p.columnMapping["quantity"]
		_, hasPrice := p.columnMapping["unit_price"]
		if !hasQty || !hasPrice {
			missing = append(missing, "amount")
		}
	}

	if len(missing) > 0 {
		return models.NewSchemaError(missing...)
	}

	return nil
}

// parseRow parses a single CSV record. The second return value names the
// skip reason for rows dropped by cleaning policy.
func (p *CSVParser) parseRow(record []string) (*models.Transaction, string, error) {
	getValue := func(column string) string {
		idx, ok := p.columnMapping[column]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	customerID := getValue("customer_id")
	if customerID == "" {
		return nil, "no_customer", nil
	}
	// Strip a float suffix left by spreadsheet exports ("12345.0" -> "12345").
	customerID = strings.TrimSuffix(customerID, ".0")

	transactionID := getValue("transaction_id")
	if transactionID == "" {
		return nil, "", models.ErrEmptyTransactionID
	}
	if strings.HasPrefix(transactionID, cancelledPrefix) {
		return nil, "cancelled", nil
	}

	dateStr := getValue("transaction_date")
	transactionDate, err := ParseTransactionDate(dateStr)
	if err != nil {
		return nil, "", fmt.Errorf("invalid transaction_date %q: %w", dateStr, err)
	}

	var amount float64
	if _, ok := p.columnMapping["amount"]; ok {
		amount, err = parseFloat(getValue("amount"))
		if err != nil {
			return nil, "", fmt.Errorf("invalid amount: %w", err)
		}
		if amount <= 0 {
			return nil, "non_positive", nil
		}
	} else {
		quantity, err := parseFloat(getValue("quantity"))
		if err != nil {
			return nil, "", fmt.Errorf("invalid quantity: %w", err)
		}
		price, err := parseFloat(getValue("unit_price"))
		if err != nil {
			return nil, "", fmt.Errorf("invalid unit_price: %w", err)
		}
		if quantity <= 0 || price <= 0 {
			return nil, "non_positive", nil
		}
		amount = quantity * price
	}

	channel := getValue("channel")
	if channel == "" {
		channel = "online"
	}

	return &models.Transaction{
		TransactionID:   transactionID,
		CustomerID:      customerID,
		TransactionDate: transactionDate,
		Amount:          amount,
		ProductID:       getValue("product_id"),
		Category:        getValue("category"),
		Channel:         channel,
		Region:          getValue("region"),
	}, "", nil
}

// ParseTransactionDate parses a transaction date string, repairing dates
// where the export glued the time onto the day.
func ParseTransactionDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, models.ErrInvalidDate
	}

	if m := malformedDateRe.FindStringSubmatch(s); m != nil {
		s = m[1] + " " + m[2]
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: unrecognized format %q", models.ErrInvalidDate, s)
}

// parseFloat parses a string to float64, handling common formats.
func parseFloat(s string) (float64, error) {
	if s == "" {
		return 0, errors.New("empty value")
	}

	// Remove commas and currency symbols
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimPrefix(s, "£")
	s = strings.TrimSpace(s)

	return strconv.ParseFloat(s, 64)
}

// ValidateCSVStructure performs a quick validation of CSV structure without
// full parsing.
func ValidateCSVStructure(content string) (*CSVValidationResult, error) {
	result := &CSVValidationResult{
		Valid:          false,
		RowCount:       0,
		Columns:        []string{},
		MissingColumns: []string{},
		Errors:         []string{},
	}

	if strings.TrimSpace(content) == "" {
		result.Errors = append(result.Errors, "empty file")
		return result, nil
	}

	reader := csv.NewReader(strings.NewReader(content))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("failed to read header: %v", err))
		return result, nil
	}

	normalizedColumns := make(map[string]bool)
	for _, col := range header {
		normalized := strings.ToLower(strings.TrimSpace(col))
		if alias, ok := ColumnAliases[normalized]; ok {
			normalized = alias
		}
		normalizedColumns[normalized] = true
		result.Columns = append(result.Columns, col)
	}

	for _, required := range []string{"transaction_id", "customer_id", "transaction_date"} {
		if !normalizedColumns[required] {
			result.MissingColumns = append(result.MissingColumns, required)
		}
	}
	if !normalizedColumns["amount"] && !(normalizedColumns["quantity"] && normalizedColumns["unit_price"]) {
		result.MissingColumns = append(result.MissingColumns, "amount")
	}

	for {
		_, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row error: %v", err))
			continue
		}
		result.RowCount++
	}

	result.Valid = len(result.MissingColumns) == 0 && result.RowCount > 0

	return result, nil
}

// CSVValidationResult contains the results of CSV structure validation.
type CSVValidationResult struct {
	Valid          bool     `json:"valid"`
	RowCount       int      `json:"row_count"`
	Columns        []string `json:"columns"`
	MissingColumns []string `json:"missing_columns"`
	Errors         []string `json:"errors,omitempty"`
}
