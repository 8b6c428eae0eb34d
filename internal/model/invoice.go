package model

import "time"

// InvoiceRecord is the structured output of invoice-field extraction.
// A record is valid only when all four fields are present; partial records
// are never produced.
type InvoiceRecord struct {
	InvoiceNumber string    `json:"invoice_number"` // digits, leading zeros stripped
	Date          time.Time `json:"date"`
	Amount        float64   `json:"amount"`
	CaseDescr     string    `json:"case_descr"`
}
