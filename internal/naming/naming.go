package naming

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Marker is the constant token embedded in every case folder name.
const Marker = "XXX"

const forbidden = `<>:"/\|?*`

// CaseKey holds both canonical forms of a case number. They always derive
// from the same integer and are never stored independently.
type CaseKey struct {
	Padded  string // 8-digit zero-filled, used for Drive folder lookup
	Display int    // bare integer, used for spreadsheet and digest text
}

// Key canonicalizes an invoice number.
func Key(invoiceNumber int) CaseKey {
	return CaseKey{
		Padded:  fmt.Sprintf("%08d", invoiceNumber),
		Display: invoiceNumber,
	}
}

// FolderName builds the canonical local folder name for a case:
// two-digit year and month, the marker token, the amount rounded to the
// nearest integer, and the invoice number. Deterministic and reproducible.
func FolderName(date time.Time, amount float64, invoiceNumber int) string {
	name := fmt.Sprintf("Нова %s %s %d №%d Хелп",
		date.Format("06-01"), Marker, int(math.Round(amount)), invoiceNumber)
	return Sanitize(name)
}

// Sanitize removes filesystem-illegal characters and trims leading/trailing
// spaces and periods.
func Sanitize(name string) string {
	var b strings.Builder
	for _, r := range name {
		if strings.ContainsRune(forbidden, r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.Trim(b.String(), " .")
}

// BelongsTo reports whether an existing directory name refers to the given
// case. Matching is by case-number substring so folders created by earlier
// versions of the naming template are still reused.
func BelongsTo(dirName string, invoiceNumber int) bool {
	return strings.Contains(dirName, strconv.Itoa(invoiceNumber))
}
