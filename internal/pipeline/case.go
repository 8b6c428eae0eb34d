package pipeline

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/help-global/caseflow/internal/invoice"
	"github.com/help-global/caseflow/internal/model"
	"github.com/help-global/caseflow/internal/naming"
	"github.com/help-global/caseflow/internal/resilience"
	"github.com/help-global/caseflow/internal/state"
	"github.com/help-global/caseflow/pkg/gdrive"
)

// trackingMarker is the fixed value written into the last tracking-table
// column of every appended row.
const trackingMarker = "хер"

// processCase drives one case through acquire → parse → file → record →
// done, saving state after every transition. Completed sub-steps are
// skipped on retry via the stage flags. Returns true when the case reached
// done this run.
func (r *Runner) processCase(ctx context.Context, doc *state.Document, cs *model.CaseState, digest *Digest) bool {
	n := cs.InvoiceNumber
	log := zap.L().With(zap.Int("case", n))

	fail := func(kind model.ErrorKind, detail string) bool {
		cs.Fail(kind, detail, r.now())
		doc.PutCase(cs)
		r.save(doc)
		digest.Addf("❌ case №%d: %s: %s", n, kind, detail)
		log.Error("case failed", zap.String("kind", string(kind)), zap.String("detail", detail))
		return false
	}
	advance := func(stage model.Stage) {
		cs.Advance(stage, r.now())
		doc.PutCase(cs)
		r.save(doc)
	}

	invoicePath := r.workPath(fmt.Sprintf("Invoice %d.pdf", n))
	grantPath := r.workPath(fmt.Sprintf("Grant Agreement %d.pdf", n))

	if !cs.Filed {
		// Acquire. Download what a prior attempt did not finish: a case that
		// failed mid-acquisition re-enters here and fetches only the
		// documents it is still missing.
		needInvoice := !cs.InvoiceDownloaded || !fileExists(invoicePath)
		if needInvoice || !cs.GrantDownloaded {
			key := naming.Key(n)
			folderID, err := resilience.DoVal(ctx, r.retry, func(ctx context.Context) (string, error) {
				return r.drive.FindFolder(ctx, r.cfg.Drive.RootFolderID, key.Padded)
			})
			if err != nil {
				return fail(model.ErrDownloadFailed, "folder lookup failed")
			}
			if folderID == "" {
				return fail(model.ErrFolderNotFound, "no case folder "+key.Padded)
			}

			files, err := resilience.DoVal(ctx, r.retry, func(ctx context.Context) ([]gdrive.File, error) {
				return r.drive.ListPDFs(ctx, folderID)
			})
			if err != nil {
				return fail(model.ErrDownloadFailed, "document listing failed")
			}

			if needInvoice {
				// Listing is newest-first, so the first prefix match is the
				// latest revision.
				invMeta := firstWithPrefix(files, "Invoice")
				if invMeta == nil {
					return fail(model.ErrInvoiceNotFound, "no Invoice document")
				}
				if err := r.download(ctx, invMeta.ID, invoicePath); err != nil {
					return fail(model.ErrDownloadFailed, "invoice download failed")
				}
				cs.InvoiceDownloaded = true
				digest.Addf("📥 downloaded %s", invMeta.Name)
			}

			// The grant agreement is optional: absence warns, never blocks.
			// A present document that cannot be fetched blocks the case so
			// the download is retried on the next run.
			if !cs.GrantDownloaded {
				if grantMeta := firstWithPrefix(files, "Grant Agreement"); grantMeta != nil {
					if err := r.download(ctx, grantMeta.ID, grantPath); err != nil {
						return fail(model.ErrDownloadFailed, "grant agreement download failed")
					}
					cs.GrantDownloaded = true
					digest.Addf("📥 downloaded %s", grantMeta.Name)
				} else {
					log.Warn("no grant agreement document in case folder")
				}
			}
			advance(model.StageAcquired)
		}

		// Parse.
		if !cs.Parsed {
			text, err := r.text.Text(ctx, invoicePath)
			if err != nil {
				return fail(model.ErrExtractFailed, "invoice text unreadable")
			}
			rec, err := invoice.Extract(text)
			if err != nil {
				return fail(model.ErrExtractFailed, err.Error())
			}
			cs.Parsed = true
			cs.InvoiceDate = rec.Date
			cs.YYMM = rec.Date.Format("06-01")
			cs.CaseDescr = rec.CaseDescr
			cs.Amount = rec.Amount
			advance(model.StageParsed)
			digest.Addf("📊 invoice №%d parsed", n)
		}

		// File into the canonical local folder.
		dir, err := r.caseDir(cs)
		if err != nil {
			return fail(model.ErrFileFailed, "case folder creation failed")
		}
		if err := moveInto(dir, invoicePath); err != nil {
			return fail(model.ErrFileFailed, "invoice move failed")
		}
		if fileExists(grantPath) {
			if err := moveInto(dir, grantPath); err != nil {
				return fail(model.ErrFileFailed, "grant agreement move failed")
			}
		}
		cs.Filed = true
		advance(model.StageFiled)
		digest.Addf("📂 filed case №%d", n)
	}

	// Record: append one tracking row, guarded against duplicates by both
	// the durable Recorded flag and a case-number lookup in the sheet.
	if !cs.Recorded {
		if r.sheetHasCase(ctx, n) {
			log.Info("tracking row already present, skipping append")
		} else {
			row := []any{
				cs.InvoiceDate.Format("2006-01-02"), "", "",
				n, cs.CaseDescr, cs.Amount,
				"", "", "", "", "", trackingMarker,
			}
			err := resilience.Do(ctx, r.retry, func(ctx context.Context) error {
				return r.sheets.Append(ctx, r.cfg.Sheets.SpreadsheetID, r.cfg.Sheets.Range, row)
			})
			if err != nil {
				return fail(model.ErrRecordFailed, "tracking row append failed")
			}
			digest.Addf("📊 row appended №%d", n)
		}
		cs.Recorded = true
		advance(model.StageRecorded)
	}

	advance(model.StageDone)
	digest.Addf("✅ case №%d processed", n)
	log.Info("case processed")
	return true
}

// sheetHasCase reports whether the tracking table already contains a row
// for the case number. Read failures degrade to "not found": the durable
// Recorded flag still prevents repeats within known state.
func (r *Runner) sheetHasCase(ctx context.Context, invoiceNumber int) bool {
	rows, err := resilience.DoVal(ctx, r.retry, func(ctx context.Context) ([][]string, error) {
		return r.sheets.Values(ctx, r.cfg.Sheets.SpreadsheetID, r.cfg.Sheets.Range)
	})
	if err != nil {
		zap.L().Warn("tracking table read failed, relying on local state",
			zap.Int("case", invoiceNumber), zap.Error(err))
		return false
	}
	want := strconv.Itoa(invoiceNumber)
	for _, row := range rows {
		if len(row) > 3 && row[3] == want {
			return true
		}
	}
	return false
}

func firstWithPrefix(files []gdrive.File, prefix string) *gdrive.File {
	for i := range files {
		if hasPrefixFold(files[i].Name, prefix) {
			return &files[i]
		}
	}
	return nil
}
