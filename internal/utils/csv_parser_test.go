package utils_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifecycle-intelligence-engine/internal/models"
	"lifecycle-intelligence-engine/internal/utils"
)

const retailHeader = "Invoice,StockCode,Description,Quantity,InvoiceDate,Price,Customer ID,Country\n"

func TestParseTransactions_OnlineRetailHeader(t *testing.T) {
	content := retailHeader +
		"536365,85123A,WHITE HANGING HEART,6,2009-12-01 07:45:00,2.55,17850.0,United Kingdom\n"

	parser := utils.NewCSVParser()
	result, err := parser.ParseTransactions(content)
	require.NoError(t, err)
	require.Len(t, result.Transactions, 1)

	tx := result.Transactions[0]
	assert.Equal(t, "536365", tx.TransactionID)
	assert.Equal(t, "17850", tx.CustomerID, "Spreadsheet float suffix should be stripped")
	assert.Equal(t, time.Date(2009, 12, 1, 7, 45, 0, 0, time.UTC), tx.TransactionDate)
	assert.InDelta(t, 15.30, tx.Amount, 0.001, "Amount is quantity * unit price")
	assert.Equal(t, "85123A", tx.ProductID)
	assert.Equal(t, "WHITE HANGING HEART", tx.Category)
	assert.Equal(t, "online", tx.Channel, "Channel defaults to online")
	assert.Equal(t, "United Kingdom", tx.Region)
}

func TestParseTransactions_SkipReasons(t *testing.T) {
	content := retailHeader +
		"536365,85123A,ITEM,6,2009-12-01 07:45:00,2.55,17850,United Kingdom\n" +
		"536366,85123A,ITEM,6,2009-12-01 07:46:00,2.55,,United Kingdom\n" +
		"C536367,85123A,ITEM,-6,2009-12-01 07:47:00,2.55,17851,United Kingdom\n" +
		"536368,85123A,ITEM,-2,2009-12-01 07:48:00,2.55,17852,United Kingdom\n" +
		"536369,85123A,ITEM,3,2009-12-01 07:49:00,0,17853,United Kingdom\n"

	parser := utils.NewCSVParser()
	result, err := parser.ParseTransactions(content)
	require.NoError(t, err)

	assert.Equal(t, 5, result.TotalRows)
	assert.Equal(t, 1, result.Loaded)
	assert.Equal(t, 1, result.SkippedNoCustomer)
	assert.Equal(t, 1, result.SkippedCancelled, "C-prefixed invoices are cancellations")
	assert.Equal(t, 2, result.SkippedNonPositive)
	assert.Empty(t, result.ParseErrors)
}

func TestParseTransactions_MalformedDateRepair(t *testing.T) {
	content := retailHeader +
		"536365,85123A,ITEM,6,2009-12-0107:45:00,2.55,17850,United Kingdom\n"

	parser := utils.NewCSVParser()
	result, err := parser.ParseTransactions(content)
	require.NoError(t, err)
	require.Len(t, result.Transactions, 1)

	assert.Equal(t, time.Date(2009, 12, 1, 7, 45, 0, 0, time.UTC),
		result.Transactions[0].TransactionDate,
		"Glued date and time should be repaired")
}

func TestParseTransactions_DayFirstSlashDates(t *testing.T) {
	content := "transaction_id,customer_id,transaction_date,amount\n" +
		"T1,A,01/12/2009 07:45,100\n" +
		"T2,B,15/03/2010,50\n"

	parser := utils.NewCSVParser()
	result, err := parser.ParseTransactions(content)
	require.NoError(t, err)
	require.Len(t, result.Transactions, 2)

	assert.Equal(t, time.December, result.Transactions[0].TransactionDate.Month(),
		"Slash dates are day-first")
	assert.Equal(t, time.Date(2010, 3, 15, 0, 0, 0, 0, time.UTC),
		result.Transactions[1].TransactionDate)
}

func TestParseTransactions_DirectAmountColumn(t *testing.T) {
	content := "transaction_id,customer_id,transaction_date,amount\n" +
		"T1,A,2024-01-05,\"1,234.50\"\n" +
		"T2,B,2024-01-06,$99.99\n" +
		"T3,C,2024-01-07,-10\n"

	parser := utils.NewCSVParser()
	result, err := parser.ParseTransactions(content)
	require.NoError(t, err)
	require.Len(t, result.Transactions, 2)

	assert.InDelta(t, 1234.50, result.Transactions[0].Amount, 0.001, "Thousands separators are removed")
	assert.InDelta(t, 99.99, result.Transactions[1].Amount, 0.001, "Currency symbols are removed")
	assert.Equal(t, 1, result.SkippedNonPositive)
}

func TestParseTransactions_MissingRequiredColumn(t *testing.T) {
	content := "Invoice,StockCode,Quantity,Price,Country\n" +
		"536365,85123A,6,2.55,United Kingdom\n"

	parser := utils.NewCSVParser()
	_, err := parser.ParseTransactions(content)
	require.Error(t, err)
	assert.True(t, models.IsSchemaError(err))
	assert.Contains(t, err.Error(), "customer_id")
	assert.Contains(t, err.Error(), "transaction_date")
}

func TestParseTransactions_AmountDerivableCountsAsPresent(t *testing.T) {
	// No amount column, but quantity and unit price are enough.
	content := "Invoice,Quantity,InvoiceDate,Price,Customer ID\n" +
		"536365,2,2009-12-01,5.00,17850\n"

	parser := utils.NewCSVParser()
	result, err := parser.ParseTransactions(content)
	require.NoError(t, err)
	require.Len(t, result.Transactions, 1)
	assert.InDelta(t, 10.0, result.Transactions[0].Amount, 0.001)
}

func TestParseTransactions_EmptyContent(t *testing.T) {
	parser := utils.NewCSVParser()
	_, err := parser.ParseTransactions("   \n  ")
	assert.ErrorIs(t, err, utils.ErrEmptyCSV)
}

func TestParseTransactions_BadRowsReportedNotFatal(t *testing.T) {
	content := "transaction_id,customer_id,transaction_date,amount\n" +
		"T1,A,not-a-date,100\n" +
		"T2,B,2024-01-06,abc\n" +
		"T3,C,2024-01-07,50\n"

	parser := utils.NewCSVParser()
	result, err := parser.ParseTransactions(content)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Loaded)
	require.Len(t, result.ParseErrors, 2)
	assert.Contains(t, result.ParseErrors[0], "line 2")
	assert.Contains(t, result.ParseErrors[0], "transaction_date")
	assert.Contains(t, result.ParseErrors[1], "line 3")
}

func TestParseTransactions_AllRowsBadIsAnError(t *testing.T) {
	content := "transaction_id,customer_id,transaction_date,amount\n" +
		"T1,A,not-a-date,100\n"

	parser := utils.NewCSVParser()
	result, err := parser.ParseTransactions(content)
	require.Error(t, err)
	assert.ErrorIs(t, err, utils.ErrNoDataRows)
	assert.NotNil(t, result, "Partial result is still returned for diagnostics")
}

func TestParseTransactionDate_Formats(t *testing.T) {
	cases := map[string]time.Time{
		"2009-12-01 07:45:00": time.Date(2009, 12, 1, 7, 45, 0, 0, time.UTC),
		"2009-12-01T07:45:00": time.Date(2009, 12, 1, 7, 45, 0, 0, time.UTC),
		"2009-12-01":          time.Date(2009, 12, 1, 0, 0, 0, 0, time.UTC),
		"2009-12-0107:45":     time.Date(2009, 12, 1, 7, 45, 0, 0, time.UTC),
		"01/12/2009":          time.Date(2009, 12, 1, 0, 0, 0, 0, time.UTC),
	}
	for input, want := range cases {
		got, err := utils.ParseTransactionDate(input)
		require.NoError(t, err, "Should parse %q", input)
		assert.Equal(t, want, got, "Parsed %q", input)
	}

	_, err := utils.ParseTransactionDate("")
	assert.ErrorIs(t, err, models.ErrInvalidDate)

	_, err = utils.ParseTransactionDate("yesterday")
	assert.ErrorIs(t, err, models.ErrInvalidDate)
}

func TestValidateCSVStructure(t *testing.T) {
	result, err := utils.ValidateCSVStructure(retailHeader +
		"536365,85123A,ITEM,6,2009-12-01,2.55,17850,United Kingdom\n")
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, 1, result.RowCount)
	assert.Empty(t, result.MissingColumns)

	result, err = utils.ValidateCSVStructure("Invoice,Quantity\n536365,6\n")
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Contains(t, result.MissingColumns, "customer_id")
	assert.Contains(t, result.MissingColumns, "amount")

	result, err = utils.ValidateCSVStructure("")
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.NotEmpty(t, result.Errors)
}
