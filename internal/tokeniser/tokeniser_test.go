package tokeniser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokens_LowercasesAndStems(t *testing.T) {
	tok := New()

	got := tok.Tokens("Running CATS connections")

	assert.Equal(t, []string{"run", "cat", "connect"}, got)
}

func TestTokens_DropsStopwords(t *testing.T) {
	tok := New(WithStemmer(nil))

	got := tok.Tokens("The cat and the hat, don't you think?")

	assert.Equal(t, []string{"cat", "hat", "think"}, got)
}

func TestTokens_StripsPunctuationWithoutSplitting(t *testing.T) {
	tok := New(WithStemmer(nil), WithStopwords(nil))

	got := tok.Tokens("e-mail (draft) v2.0")

	assert.Equal(t, []string{"email", "draft", "v20"}, got)
}

func TestTokens_DropsGarbage(t *testing.T) {
	tests := []struct {
		name string
		word string
		drop bool
	}{
		{"short word", "garden", false},
		{"eleven runes", "abcdefghijk", false},
		{"twelve runes", "abcdefghijkl", true},
		{"double letter", "book", false},
		{"triple letter", "zzzap", true},
		{"repeated digits", "1000", false},
	}

	tok := New(WithStemmer(nil), WithStopwords(nil))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tok.Tokens(tt.word)
			if tt.drop {
				assert.Empty(t, got)
			} else {
				assert.Equal(t, []string{tt.word}, got)
			}
		})
	}
}

func TestTokens_Empty(t *testing.T) {
	tok := New()

	assert.Empty(t, tok.Tokens(""))
	assert.Empty(t, tok.Tokens("   \n\t "))
	assert.Empty(t, tok.Tokens("!!! ... ???"))
}

func TestCount(t *testing.T) {
	tok := New(WithStemmer(nil))
	counts := make(map[string]int64)

	n := tok.Count("graph graph node", counts)
	n += tok.Count("node edge", counts)

	assert.Equal(t, int64(5), n)
	assert.Equal(t, map[string]int64{"graph": 2, "node": 2, "edge": 1}, counts)
}

func TestWithMaxLength(t *testing.T) {
	tok := New(WithStemmer(nil), WithMaxLength(5))

	assert.Equal(t, []string{"tree"}, tok.Tokens("tree forest"))
}

func TestIsStopword(t *testing.T) {
	assert.True(t, IsStopword("the"))
	assert.True(t, IsStopword("dont"))
	assert.False(t, IsStopword("graph"))
	assert.NotEmpty(t, Stopwords())
}
