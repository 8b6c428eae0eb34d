package invoice

import (
	"bytes"
	"context"
	"os/exec"

	"github.com/rotisserie/eris"
)

// TextSource produces raw text from a document on disk.
type TextSource interface {
	Text(ctx context.Context, path string) (string, error)
}

// PdfToText reads PDF text by shelling out to the poppler pdftotext tool.
type PdfToText struct {
	binPath string
}

// NewPdfToText creates a PdfToText source. An empty binPath means "pdftotext"
// resolved from PATH.
func NewPdfToText(binPath string) *PdfToText {
	if binPath == "" {
		binPath = "pdftotext"
	}
	return &PdfToText{binPath: binPath}
}

// Text runs pdftotext -layout and returns stdout. Layout mode keeps the
// Description/Amount table columns on separate lines, which the extraction
// patterns rely on.
func (p *PdfToText) Text(ctx context.Context, path string) (string, error) {
	cmd := exec.CommandContext(ctx, p.binPath, "-layout", path, "-")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", eris.Wrapf(err, "invoice: pdftotext failed for %s: %s", path, stderr.String())
	}
	return stdout.String(), nil
}
