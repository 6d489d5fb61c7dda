package normalisers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexicon/internal/core/domain"
)

// stubNormaliser returns its name as content.
type stubNormaliser struct {
	name     string
	mime     []string
	priority int
}

func (s *stubNormaliser) SupportedMIMETypes() []string { return s.mime }
func (s *stubNormaliser) Priority() int                { return s.priority }

func (s *stubNormaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*domain.ExtractedDocument, error) {
	return &domain.ExtractedDocument{Name: raw.Name, Content: s.name}, nil
}

func TestRegistry_PicksHighestPriority(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubNormaliser{name: "fallback", mime: []string{"text/plain"}, priority: 5})
	r.Register(&stubNormaliser{name: "specific", mime: []string{"text/plain"}, priority: 50})
	r.Register(&stubNormaliser{name: "other", mime: []string{"text/other"}, priority: 90})

	doc, err := r.Normalise(context.Background(), &domain.RawDocument{Name: "a", MIMEType: "text/plain"})

	require.NoError(t, err)
	assert.Equal(t, "specific", doc.Content)
}

func TestRegistry_UnsupportedType(t *testing.T) {
	r := NewRegistry()

	_, err := r.Normalise(context.Background(), &domain.RawDocument{MIMEType: "image/png"})

	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestRegistry_NilDocument(t *testing.T) {
	_, err := NewRegistry().Normalise(context.Background(), nil)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNewDefaultRegistry(t *testing.T) {
	types := NewDefaultRegistry().SupportedMIMETypes()

	assert.Contains(t, types, "text/plain")
	assert.Contains(t, types, "text/markdown")
	assert.Contains(t, types, "application/pdf")
	assert.IsIncreasing(t, types)
}
