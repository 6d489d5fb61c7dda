package cleaner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexicon/internal/core/domain"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "hello world", "hello world"},
		{"collapses spaces", "hello    \t world", "hello world"},
		{"drops control characters", "null\x00byte\x07bell", "nullbytebell"},
		{"drops replacement characters", "bad�byte", "badbyte"},
		{"trims line ends", "line one   \nline two", "line one\nline two"},
		{"keeps one blank line", "para one\n\n\n\npara two", "para one\n\npara two"},
		{"windows line endings", "one\r\ntwo", "one\ntwo"},
		{"trims document", "  \n text \n ", "text"},
		{"indentation dropped", "a\n    b", "a\nb"},
		{"empty", "", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Clean(tc.input))
		})
	}
}

func TestProcess_RewritesContentAndPassesChunks(t *testing.T) {
	doc := &domain.ExtractedDocument{Content: "a   b"}
	in := []domain.Chunk{{Text: "x"}}

	out, err := New().Process(context.Background(), doc, in)

	require.NoError(t, err)
	assert.Equal(t, "a b", doc.Content)
	assert.Equal(t, in, out)
	assert.Equal(t, "cleaner", New().Name())
}
