package markdown

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexicon/internal/core/domain"
	"github.com/custodia-labs/lexicon/internal/core/ports/driven"
)

func TestSupportedMIMETypes(t *testing.T) {
	mimeTypes := New().SupportedMIMETypes()

	assert.Contains(t, mimeTypes, "text/markdown")
	assert.Contains(t, mimeTypes, "text/x-markdown")
}

func TestPriority(t *testing.T) {
	assert.Equal(t, 50, New().Priority())
}

func TestNormalise_NilDocument(t *testing.T) {
	_, err := New().Normalise(context.Background(), nil)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNormalise_Success(t *testing.T) {
	raw := &domain.RawDocument{
		Name:     "channels",
		Path:     "/notes/channels.md",
		MIMEType: "text/markdown",
		Type:     domain.FileTypeNote,
		Content:  []byte("# Channels\n\nBuffered **channels** decouple [senders](https://go.dev)."),
	}

	doc, err := New().Normalise(context.Background(), raw)

	require.NoError(t, err)
	assert.Equal(t, "channels", doc.Name)
	assert.Equal(t, domain.FileTypeNote, doc.Type)
	assert.Equal(t, "Channels\n\nBuffered channels decouple senders.", doc.Content)
	assert.Equal(t, "Channels", doc.Metadata["title"])
	assert.Equal(t, "markdown", doc.Metadata["format"])
}

func TestNormalise_ReadsFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todo.md")
	require.NoError(t, os.WriteFile(path, []byte("- [ ] buy flour\n- [x] feed starter"), 0600))

	doc, err := New().Normalise(context.Background(), &domain.RawDocument{Name: "todo", Path: path})

	require.NoError(t, err)
	assert.Equal(t, "buy flour\nfeed starter", doc.Content)
	assert.NotContains(t, doc.Metadata, "title")
}

func TestNormalise_MissingFile(t *testing.T) {
	raw := &domain.RawDocument{Name: "gone", Path: filepath.Join(t.TempDir(), "gone.md")}

	_, err := New().Normalise(context.Background(), raw)

	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}

func TestStripMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "headings removed",
			input:    "# Title\n## Subtitle\n### Third",
			expected: "Title\nSubtitle\nThird",
		},
		{
			name:     "bold removed",
			input:    "This is **bold** text",
			expected: "This is bold text",
		},
		{
			name:     "links converted",
			input:    "Click [here](https://example.com)",
			expected: "Click here",
		},
		{
			name:     "images removed",
			input:    "See ![alt text](image.png) here",
			expected: "See  here",
		},
		{
			name:     "code blocks removed",
			input:    "Before\n```go\ncode here\n```\nAfter",
			expected: "Before\n\nAfter",
		},
		{
			name:     "inline code removed",
			input:    "Use `code` here",
			expected: "Use  here",
		},
		{
			name:     "blockquotes cleaned",
			input:    "> This is a quote",
			expected: "This is a quote",
		},
		{
			name:     "star list markers removed",
			input:    "* Item 1\n* Item 2",
			expected: "Item 1\nItem 2",
		},
		{
			name:     "checkboxes removed",
			input:    "- [ ] open\n- [X] done",
			expected: "open\ndone",
		},
		{
			name:     "numbered list markers removed",
			input:    "1. First\n2. Second",
			expected: "First\nSecond",
		},
		{
			name:     "snake case kept",
			input:    "set chunk_size here",
			expected: "set chunk_size here",
		},
		{
			name:     "windows line endings",
			input:    "one\r\ntwo",
			expected: "one\ntwo",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, stripMarkdown(tc.input))
		})
	}
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Normaliser = New()
}
