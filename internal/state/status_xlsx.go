package state

import (
	"sort"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/help-global/caseflow/internal/model"
)

// statusHeader matches the legacy cases_status workbook layout.
var statusHeader = []string{"YY-MM", "case_descr", "amount", "invoice_number", "status"}

// writeStatusXLSX rewrites the human-readable status workbook from scratch
// on every save, one row per case ordered by invoice number.
func writeStatusXLSX(path string, doc *Document) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("cases")
	if err != nil {
		return eris.Wrap(err, "state: add status sheet")
	}

	header := sheet.AddRow()
	for _, h := range statusHeader {
		header.AddCell().SetString(h)
	}

	cases := make([]*model.CaseState, 0, len(doc.Cases))
	for _, c := range doc.Cases {
		cases = append(cases, c)
	}
	sort.Slice(cases, func(i, j int) bool {
		return cases[i].InvoiceNumber < cases[j].InvoiceNumber
	})

	for _, c := range cases {
		row := sheet.AddRow()
		row.AddCell().SetString(c.YYMM)
		row.AddCell().SetString(c.CaseDescr)
		if c.Amount != 0 {
			row.AddCell().SetFloat(c.Amount)
		} else {
			row.AddCell().SetString("")
		}
		row.AddCell().SetString(strconv.Itoa(c.InvoiceNumber))
		row.AddCell().SetString(statusText(c))
	}

	return eris.Wrapf(f.Save(path), "state: save status workbook %s", path)
}

// statusText renders the human-facing status column from the stable error
// kind rather than from raw error strings.
func statusText(c *model.CaseState) string {
	if c.Status == model.CaseStatusError {
		if c.Error != "" {
			return "error: " + string(c.ErrKind) + " (" + c.Error + ")"
		}
		return "error: " + string(c.ErrKind)
	}
	return string(c.Status)
}
