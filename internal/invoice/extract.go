package invoice

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/help-global/caseflow/internal/model"
)

// Field names reported by ExtractionError, in extraction order.
const (
	FieldInvoiceNumber = "invoice_number"
	FieldDate          = "date"
	FieldAmount        = "amount"
	FieldCaseDescr     = "case_descr"
)

var (
	// First US-format date anywhere in the text.
	reDate = regexp.MustCompile(`(\d{1,2})/(\d{1,2})/(\d{4})`)

	// "Invoice No. 0001234" with optional period/space, leading zeros dropped.
	reInvNo = regexp.MustCompile(`(?i)Invoice\s*No\.?\s*0*(\d{3,})`)
	// Fallback: bare 8-digit token starting with 000.
	reInvNoFallback = regexp.MustCompile(`\b000\d{5}\b`)

	// "Total amount: USD 4 000,00" with spaces/commas as grouping, optional cents.
	reTotalUSD = regexp.MustCompile(`(?i)Total\s+amount:?\s*USD\s+([\d\s,]+(?:\.\d{2})?)`)
	reAnyUSD   = regexp.MustCompile(`(?i)USD\s+([\d\s,]+(?:\.\d{2})?)`)

	reNonAmount = regexp.MustCompile(`[^\d.]`)

	// Text between the "Description Amount" header row and the first money
	// cell; the first non-blank line inside is the line-item label.
	reCaseDescr = regexp.MustCompile(`(?is)Description\s+Amount\s+(.+?)\s+USD\s*\d`)
)

// ExtractionError reports every field that could not be located, never just
// the first one.
type ExtractionError struct {
	Missing []string
}

func (e *ExtractionError) Error() string {
	return "invoice: missing " + strings.Join(e.Missing, ", ")
}

// Extract pulls the four invoice fields out of raw PDF text. It is a pure
// function: identical text yields an identical record or identical failure.
func Extract(text string) (*model.InvoiceRecord, error) {
	rec := &model.InvoiceRecord{}
	var missing []string

	if n := extractInvoiceNumber(text); n != "" {
		rec.InvoiceNumber = n
	} else {
		missing = append(missing, FieldInvoiceNumber)
	}

	if d, ok := extractDate(text); ok {
		rec.Date = d
	} else {
		missing = append(missing, FieldDate)
	}

	if a, ok := extractAmount(text); ok {
		rec.Amount = a
	} else {
		missing = append(missing, FieldAmount)
	}

	if descr := extractCaseDescr(text); descr != "" {
		rec.CaseDescr = descr
	} else {
		missing = append(missing, FieldCaseDescr)
	}

	if len(missing) > 0 {
		return nil, &ExtractionError{Missing: missing}
	}
	return rec, nil
}

// extractDate interprets the first numeric triple as month/day/year; an
// impossible calendar date (month 13, Feb 30) counts as not found.
func extractDate(text string) (time.Time, bool) {
	m := reDate.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}
	month, _ := strconv.Atoi(m[1])
	day, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])

	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if d.Year() != year || d.Month() != time.Month(month) || d.Day() != day {
		return time.Time{}, false
	}
	return d, true
}

func extractInvoiceNumber(text string) string {
	if m := reInvNo.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	if m := reInvNoFallback.FindString(text); m != "" {
		return strings.TrimLeft(m, "0")
	}
	return ""
}

func extractAmount(text string) (float64, bool) {
	m := reTotalUSD.FindStringSubmatch(text)
	if m == nil {
		m = reAnyUSD.FindStringSubmatch(text)
	}
	if m == nil {
		return 0, false
	}
	raw := reNonAmount.ReplaceAllString(m[1], "")
	a, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return a, true
}

func extractCaseDescr(text string) string {
	m := reCaseDescr.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	for _, line := range strings.Split(m[1], "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
