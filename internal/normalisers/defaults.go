package normalisers

import (
	"github.com/custodia-labs/lexicon/internal/normalisers/markdown"
	"github.com/custodia-labs/lexicon/internal/normalisers/pdf"
	"github.com/custodia-labs/lexicon/internal/normalisers/plaintext"
)

// NewDefaultRegistry returns a registry holding every built-in normaliser.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(plaintext.New())
	r.Register(markdown.New())
	r.Register(pdf.New())
	return r
}
