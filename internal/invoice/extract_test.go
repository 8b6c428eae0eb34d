package invoice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleInvoice = `ACME Relief Foundation
Invoice No. 00013297
Date: 3/10/2025

Description Amount

repellents
USD 4 000.00

Total amount: USD 4 000.00
`

func TestExtract_Complete(t *testing.T) {
	t.Parallel()

	rec, err := Extract(sampleInvoice)
	require.NoError(t, err)

	assert.Equal(t, "13297", rec.InvoiceNumber)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), rec.Date)
	assert.Equal(t, 4000.00, rec.Amount)
	assert.Equal(t, "repellents", rec.CaseDescr)
}

func TestExtract_Deterministic(t *testing.T) {
	t.Parallel()

	first, err := Extract(sampleInvoice)
	require.NoError(t, err)
	second, err := Extract(sampleInvoice)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestExtract_MissingSingleField(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		text    string
		missing string
	}{
		{
			name: "no invoice number",
			text: "Date: 3/10/2025\nDescription Amount\nrepellents\nUSD 4000.00\nTotal amount: USD 4000.00",
			// no "Invoice No" token and no 000-prefixed 8-digit token
			missing: FieldInvoiceNumber,
		},
		{
			name:    "no date",
			text:    "Invoice No. 13297\nDescription Amount\nrepellents\nUSD 4000.00\nTotal amount: USD 4000.00",
			missing: FieldDate,
		},
		{
			name: "no amount",
			// "USD4000" terminates the description block but is not an
			// amount token: the amount patterns require whitespace after
			// USD.
			text:    "Invoice No. 13297\nDate: 3/10/2025\nDescription Amount\nrepellents\nUSD4000",
			missing: FieldAmount,
		},
		{
			name:    "no description block",
			text:    "Invoice No. 13297\nDate: 3/10/2025\nTotal amount: USD 4000.00",
			missing: FieldCaseDescr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Extract(tt.text)
			require.Error(t, err)

			var extErr *ExtractionError
			require.ErrorAs(t, err, &extErr)
			assert.Equal(t, []string{tt.missing}, extErr.Missing)
		})
	}
}

func TestExtract_AllFieldsMissing(t *testing.T) {
	t.Parallel()

	_, err := Extract("nothing useful here")
	var extErr *ExtractionError
	require.ErrorAs(t, err, &extErr)
	assert.ElementsMatch(t,
		[]string{FieldInvoiceNumber, FieldDate, FieldAmount, FieldCaseDescr},
		extErr.Missing,
	)
}

func TestExtract_InvalidCalendarDate(t *testing.T) {
	t.Parallel()

	// Month 13 is not a valid date; the field counts as missing rather
	// than being silently normalized.
	_, err := Extract("Invoice No. 13297\nDate: 13/40/2025\nDescription Amount\nrepellents\nUSD 4000.00\nTotal amount: USD 4000.00")
	var extErr *ExtractionError
	require.ErrorAs(t, err, &extErr)
	assert.Contains(t, extErr.Missing, FieldDate)
}

func TestExtract_DateIsMonthDayYear(t *testing.T) {
	t.Parallel()

	rec, err := Extract("Invoice No. 13297\n1/2/2025\nDescription Amount\nfuel\nUSD 10.00\nTotal amount: USD 10.00")
	require.NoError(t, err)
	assert.Equal(t, time.January, rec.Date.Month())
	assert.Equal(t, 2, rec.Date.Day())
}

func TestExtract_InvoiceNumberFallback(t *testing.T) {
	t.Parallel()

	// Fallback: a bare 8-digit token starting with 000, leading zeros
	// stripped.
	rec, err := Extract("case 00012345\n3/10/2025\nDescription Amount\nfuel\nUSD 10.00\nTotal amount: USD 10.00")
	require.NoError(t, err)
	assert.Equal(t, "12345", rec.InvoiceNumber)
}

func TestExtract_PrimaryInvoiceNumberWins(t *testing.T) {
	t.Parallel()

	// Both patterns present: the explicit "Invoice No." token takes
	// precedence over the bare 000-prefixed token.
	rec, err := Extract("ref 00099999\nInvoice No 0013297\n3/10/2025\nDescription Amount\nfuel\nUSD 10.00\nTotal amount: USD 10.00")
	require.NoError(t, err)
	assert.Equal(t, "13297", rec.InvoiceNumber)
}

func TestExtract_AmountNormalization(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want float64
	}{
		{"clean", "4000.00", 4000.00},
		{"space grouped", "4 000.00", 4000.00},
		{"comma grouped", "4,000.00", 4000.00},
		{"no cents", "4 000", 4000.00},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec, err := Extract("Invoice No. 13297\n3/10/2025\nDescription Amount\nfuel\nUSD 1\nTotal amount: USD " + tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, rec.Amount)
		})
	}
}

func TestExtract_AmountFallbackFirstUSD(t *testing.T) {
	t.Parallel()

	// Without a "Total amount" line the first USD token anywhere wins.
	rec, err := Extract("Invoice No. 13297\n3/10/2025\nDescription Amount\nfuel\nUSD 250.00\n")
	require.NoError(t, err)
	assert.Equal(t, 250.00, rec.Amount)
}

func TestExtract_DescriptionSkipsBlankLines(t *testing.T) {
	t.Parallel()

	rec, err := Extract("Invoice No. 13297\n3/10/2025\nDescription Amount\n\n\n  water filters  \nUSD 99.00\nTotal amount: USD 99.00")
	require.NoError(t, err)
	assert.Equal(t, "water filters", rec.CaseDescr)
}

func TestExtractionError_Message(t *testing.T) {
	t.Parallel()

	err := &ExtractionError{Missing: []string{FieldDate, FieldAmount}}
	assert.Equal(t, "invoice: missing date, amount", err.Error())
}
