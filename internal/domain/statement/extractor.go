// Package statement extracts and cleans transaction text from PDF
// bank/UPI statements.
package statement

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrNotAPDF is returned when the uploaded bytes are not a PDF document.
var ErrNotAPDF = errors.New("file is not a PDF")

var pdfMagic = []byte("%PDF")

// Document holds the raw text extracted from a statement PDF
type Document struct {
	PageCount int
	Lines     []string
}

// Extract reads a PDF from memory and returns its text line by line.
// Pages whose text cannot be decoded (image-only scans) are skipped
// rather than failing the whole document.
func Extract(data []byte) (*Document, error) {
	if !bytes.HasPrefix(data, pdfMagic) {
		return nil, ErrNotAPDF
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	doc := &Document{PageCount: reader.NumPage()}

	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}

		for _, row := range rows {
			doc.Lines = append(doc.Lines, joinRow(row.Content))
		}
	}

	return doc, nil
}

// joinRow concatenates the text fragments of a PDF row into a single line.
// Fragments already carry their own spacing most of the time, so fragments
// are joined with a single space and runs of whitespace are squashed.
func joinRow(words []pdf.Text) string {
	parts := make([]string, 0, len(words))
	for _, w := range words {
		if s := strings.TrimSpace(w.S); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}
