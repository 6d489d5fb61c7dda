// Package cleaner normalises extracted text before chunking.
package cleaner

import (
	"context"
	"strings"
	"unicode"

	"github.com/custodia-labs/lexicon/internal/core/domain"
)

// Processor rewrites doc.Content in place: control characters are dropped,
// runs of spaces and tabs collapse to one space, trailing spaces are trimmed
// from every line and more than one blank line collapses to one.
type Processor struct{}

// New creates a cleaner.
func New() *Processor {
	return &Processor{}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "cleaner"
}

// Process cleans the document content and passes chunks through.
func (p *Processor) Process(_ context.Context, doc *domain.ExtractedDocument, chunks []domain.Chunk) ([]domain.Chunk, error) {
	doc.Content = Clean(doc.Content)
	return chunks, nil
}

// Clean returns the cleaned form of text.
func Clean(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var b strings.Builder
	b.Grow(len(text))

	pendingSpace := false
	newlines := 0
	for _, r := range text {
		switch {
		case r == '\n' || r == '\r':
			pendingSpace = false
			if newlines < 2 {
				b.WriteByte('\n')
			}
			newlines++
		case r == '\t' || unicode.IsSpace(r):
			pendingSpace = true
		case unicode.IsControl(r) || r == unicode.ReplacementChar:
			// dropped
		default:
			if pendingSpace && newlines == 0 && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			newlines = 0
			b.WriteRune(r)
		}
	}

	return strings.TrimSpace(b.String())
}
