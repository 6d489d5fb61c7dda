// Package plaintext extracts plain-text notes.
package plaintext

import (
	"context"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/lexicon/internal/core/domain"
	"github.com/custodia-labs/lexicon/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles plain text documents.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/plain"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 5 // Fallback normaliser
}

// Normalise reads the document text. Invalid UTF-8 sequences are replaced.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*domain.ExtractedDocument, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	content, err := readContent(raw)
	if err != nil {
		return nil, err
	}

	text := string(content)
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "�")
	}

	return &domain.ExtractedDocument{
		Name:     raw.Name,
		Path:     raw.Path,
		Type:     raw.Type,
		ModTime:  raw.ModTime,
		Content:  text,
		Metadata: map[string]any{"mime_type": raw.MIMEType},
	}, nil
}

// readContent returns the loaded bytes or reads them from disk.
func readContent(raw *domain.RawDocument) ([]byte, error) {
	if raw.Content != nil {
		return raw.Content, nil
	}
	data, err := os.ReadFile(raw.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", domain.ErrExtractionFailed, raw.Path, err)
	}
	return data, nil
}
