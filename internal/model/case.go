package model

import "time"

// CaseStatus is the overall status of a case as shown in the status file.
type CaseStatus string

const (
	CaseStatusPendingInvoice CaseStatus = "pending-invoice"
	CaseStatusError          CaseStatus = "error"
	CaseStatusDone           CaseStatus = "done"
)

// Stage identifies how far a case has progressed through the pipeline.
// Stages are strictly ordered; each one is a superset of the guarantees
// of the previous one.
type Stage string

const (
	StageDiscovered Stage = "discovered"
	StageAcquired   Stage = "acquired"
	StageParsed     Stage = "parsed"
	StageFiled      Stage = "filed"
	StageRecorded   Stage = "recorded"
	StageDone       Stage = "done"
)

// ErrorKind is a stable classification of per-case failures. Digest and
// status text is derived from the kind plus a short detail string rather
// than from raw lower-level error messages.
type ErrorKind string

const (
	ErrFolderNotFound  ErrorKind = "folder_not_found"
	ErrInvoiceNotFound ErrorKind = "invoice_not_found"
	ErrDownloadFailed  ErrorKind = "download_failed"
	ErrExtractFailed   ErrorKind = "extract_failed"
	ErrFileFailed      ErrorKind = "file_failed"
	ErrRecordFailed    ErrorKind = "record_failed"
	ErrInternal        ErrorKind = "internal"
)

// CaseState is the durable per-case record. Created when discovery first
// names the case, mutated monotonically forward, never deleted.
type CaseState struct {
	InvoiceNumber int        `json:"invoice_number"`
	Status        CaseStatus `json:"status"`
	Stage         Stage      `json:"stage"`

	InvoiceDownloaded bool `json:"invoice_downloaded"`
	GrantDownloaded   bool `json:"grant_downloaded"`
	Parsed            bool `json:"parsed"`
	Filed             bool `json:"filed"`
	Recorded          bool `json:"recorded"`

	ErrKind ErrorKind `json:"error_kind,omitempty"`
	Error   string    `json:"error,omitempty"`

	// Fields mirrored into the status spreadsheet once parsed. Persisted so
	// a retried case can file and record without re-parsing.
	YYMM        string    `json:"yy_mm,omitempty"`
	CaseDescr   string    `json:"case_descr,omitempty"`
	Amount      float64   `json:"amount,omitempty"`
	InvoiceDate time.Time `json:"invoice_date,omitempty"`

	FirstSeen time.Time `json:"first_seen"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewCaseState returns a freshly discovered case.
func NewCaseState(invoiceNumber int, now time.Time) *CaseState {
	return &CaseState{
		InvoiceNumber: invoiceNumber,
		Status:        CaseStatusPendingInvoice,
		Stage:         StageDiscovered,
		FirstSeen:     now.UTC(),
		UpdatedAt:     now.UTC(),
	}
}

// Fail marks the case errored without rolling back completed stage flags,
// so a later run resumes from the last finished sub-step.
func (c *CaseState) Fail(kind ErrorKind, detail string, now time.Time) {
	c.Status = CaseStatusError
	c.ErrKind = kind
	c.Error = detail
	c.UpdatedAt = now.UTC()
}

// Advance moves the case to the given stage and clears any prior error.
func (c *CaseState) Advance(stage Stage, now time.Time) {
	c.Stage = stage
	c.ErrKind = ""
	c.Error = ""
	if stage == StageDone {
		c.Status = CaseStatusDone
	} else {
		c.Status = CaseStatusPendingInvoice
	}
	c.UpdatedAt = now.UTC()
}
