package main

import (
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// ---------------------------------------------------------------------------
// Composed Document
// ---------------------------------------------------------------------------

// Document is the result of one composition: the recorded drawing
// operations of the chosen attempt and the PDF behind them.
type Document struct {
	Filename string        `json:"filename"`
	Variant  LayoutVariant `json:"variant"`
	Overflow bool          `json:"overflow"`
	Attempts int           `json:"attempts"`
	Ops      []DrawOp      `json:"ops"`

	surface *surface
	data    []byte
}

// Bytes renders the PDF. The result is cached; fpdf can only be output once.
func (d *Document) Bytes() ([]byte, error) {
	if d.data != nil {
		return d.data, nil
	}
	if d.surface == nil {
		return nil, fmt.Errorf("document %s has no page", d.Filename)
	}
	data, err := d.surface.output()
	if err != nil {
		return nil, err
	}
	d.data = data
	return data, nil
}

// Texts returns every drawn line of text in drawing order.
func (d *Document) Texts() []string {
	var texts []string
	for _, op := range d.Ops {
		if op.Kind == opText {
			texts = append(texts, op.Text)
		}
	}
	return texts
}

// WriteFile saves the PDF into dir under the document's filename.
func (d *Document) WriteFile(dir string) (string, error) {
	data, err := d.Bytes()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(dir, d.Filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// ---------------------------------------------------------------------------
// Naming & Formatting Helpers
// ---------------------------------------------------------------------------

// unsafeFilenameChar matches one rune that may not appear in a filename.
var unsafeFilenameChar = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// sanitizeReference replaces every disallowed rune with an underscore, one
// for one.
func sanitizeReference(ref string) string {
	return unsafeFilenameChar.ReplaceAllString(ref, "_")
}

// documentFilename derives WTN_<reference>.pdf from the customer job
// reference, falling back to Job_<id>.
func documentFilename(w *WasteTransferNote) string {
	ref := strings.TrimSpace(w.CustomerJobReference)
	if ref == "" {
		id := strings.TrimSpace(w.JobID.String())
		if id == "" {
			id = "WTN"
		}
		ref = "Job_" + id
	}
	return "WTN_" + sanitizeReference(ref) + ".pdf"
}

// formatDate formats a date as DD/MM/YYYY (UK format).
func formatDate(t time.Time) string {
	return t.Format("02/01/2006")
}

// batchReference generates a reference for a batch of notes.
// Format: WTN-YYYY-MM-DD-XXXX (e.g., WTN-2026-07-14-A7K2)
func batchReference(day time.Time) string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	b := make([]byte, 4)
	rand.Read(b)
	for i := range b {
		b[i] = charset[int(b[i])%len(charset)]
	}

	return fmt.Sprintf("WTN-%s-%s", day.Format("2006-01-02"), string(b))
}
