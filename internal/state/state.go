package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/help-global/caseflow/internal/model"
)

// Document is the full persisted state: every notification id discovery has
// already evaluated, plus one CaseState per known case keyed by the bare
// invoice number string. Both structures only grow.
type Document struct {
	Messages []string                    `json:"messages"`
	Cases    map[string]*model.CaseState `json:"cases"`
}

// NewDocument returns an empty state document (first run).
func NewDocument() *Document {
	return &Document{
		Messages: []string{},
		Cases:    map[string]*model.CaseState{},
	}
}

// SeenMessage reports whether a notification id was already evaluated.
func (d *Document) SeenMessage(id string) bool {
	for _, m := range d.Messages {
		if m == id {
			return true
		}
	}
	return false
}

// MarkMessage records a notification id as evaluated.
func (d *Document) MarkMessage(id string) {
	if !d.SeenMessage(id) {
		d.Messages = append(d.Messages, id)
	}
}

// Case returns the state for an invoice number, or nil if unknown.
func (d *Document) Case(invoiceNumber int) *model.CaseState {
	return d.Cases[strconv.Itoa(invoiceNumber)]
}

// PutCase stores a case state under its canonical key.
func (d *Document) PutCase(c *model.CaseState) {
	d.Cases[strconv.Itoa(c.InvoiceNumber)] = c
}

// Pending returns all cases not yet done, ordered by invoice number so a run
// processes cases deterministically.
func (d *Document) Pending() []*model.CaseState {
	var out []*model.CaseState
	for _, c := range d.Cases {
		if c.Status != model.CaseStatusDone {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].InvoiceNumber < out[j].InvoiceNumber
	})
	return out
}

// Store persists the state document. Save replaces the whole document; a
// crash loses at most the in-flight transition.
type Store interface {
	Load() (*Document, error)
	Save(doc *Document) error
}

// FileStore keeps the document in a JSON file with an XLSX status mirror for
// human inspection.
type FileStore struct {
	statePath  string
	statusPath string // optional; empty disables the mirror
}

// NewFileStore creates a store writing the JSON document to statePath and,
// when statusPath is non-empty, mirroring case statuses to an XLSX file.
func NewFileStore(statePath, statusPath string) *FileStore {
	return &FileStore{statePath: statePath, statusPath: statusPath}
}

// Load reads the state document, returning empty defaults when no prior
// state exists.
func (s *FileStore) Load() (*Document, error) {
	data, err := os.ReadFile(s.statePath)
	if os.IsNotExist(err) {
		return NewDocument(), nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "state: read %s", s.statePath)
	}

	doc := NewDocument()
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, eris.Wrapf(err, "state: parse %s", s.statePath)
	}
	if doc.Cases == nil {
		doc.Cases = map[string]*model.CaseState{}
	}
	return doc, nil
}

// Save overwrites the persisted document. The JSON file is written to a
// temp file and renamed so a concurrent crash leaves either the old or the
// new document, never a torn one. Mirror failures are logged, not returned:
// the JSON document is the source of truth.
func (s *FileStore) Save(doc *Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return eris.Wrap(err, "state: marshal")
	}

	dir := filepath.Dir(s.statePath)
	tmp, err := os.CreateTemp(dir, ".state-*.json")
	if err != nil {
		return eris.Wrap(err, "state: create temp")
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return eris.Wrap(err, "state: write temp")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return eris.Wrap(err, "state: close temp")
	}
	if err := os.Rename(tmpName, s.statePath); err != nil {
		os.Remove(tmpName)
		return eris.Wrapf(err, "state: rename to %s", s.statePath)
	}

	if s.statusPath != "" {
		if err := writeStatusXLSX(s.statusPath, doc); err != nil {
			zap.L().Warn("state: status mirror write failed",
				zap.String("path", s.statusPath), zap.Error(err))
		}
	}
	return nil
}
