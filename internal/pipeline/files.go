package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/help-global/caseflow/internal/model"
	"github.com/help-global/caseflow/internal/naming"
	"github.com/help-global/caseflow/internal/resilience"
)

func (r *Runner) workPath(name string) string {
	return filepath.Join(r.cfg.Work.Dir, naming.Sanitize(name))
}

// download fetches a Drive file to a local path, truncating any partial
// leftover from an interrupted previous attempt.
func (r *Runner) download(ctx context.Context, fileID, path string) error {
	return resilience.Do(ctx, r.retry, func(ctx context.Context) error {
		f, err := os.Create(path)
		if err != nil {
			return eris.Wrapf(err, "create %s", path)
		}
		if err := r.drive.Download(ctx, fileID, f); err != nil {
			f.Close()
			os.Remove(path)
			return err
		}
		return eris.Wrapf(f.Close(), "close %s", path)
	})
}

// caseDir returns the local folder for a case, reusing any existing
// directory whose name contains the case number, else creating one with
// the canonical name.
func (r *Runner) caseDir(cs *model.CaseState) (string, error) {
	entries, err := os.ReadDir(r.cfg.Work.Dir)
	if err != nil {
		return "", eris.Wrapf(err, "read work dir %s", r.cfg.Work.Dir)
	}
	for _, e := range entries {
		if e.IsDir() && naming.BelongsTo(e.Name(), cs.InvoiceNumber) {
			return filepath.Join(r.cfg.Work.Dir, e.Name()), nil
		}
	}

	dir := filepath.Join(r.cfg.Work.Dir,
		naming.FolderName(cs.InvoiceDate, cs.Amount, cs.InvoiceNumber))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", eris.Wrapf(err, "mkdir %s", dir)
	}
	return dir, nil
}

// moveInto relocates a file into dir, keeping its base name. A missing
// source is fine when a prior attempt already moved it.
func moveInto(dir, path string) error {
	if !fileExists(path) {
		return nil
	}
	dest := filepath.Join(dir, filepath.Base(path))
	return eris.Wrapf(os.Rename(path, dest), "move %s to %s", path, dest)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func hasPrefixFold(s, prefix string) bool {
	return strings.HasPrefix(strings.ToLower(s), strings.ToLower(prefix))
}
