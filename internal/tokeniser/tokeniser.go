package tokeniser

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kljensen/snowball/english"
)

// DefaultMaxLength is the rune length at which a token is treated as garbage.
const DefaultMaxLength = 12

// maxRepeat is the longest allowed run of one repeated letter.
const maxRepeat = 2

// Tokeniser splits text into filtered, stemmed tokens.
// It is safe for concurrent use.
type Tokeniser struct {
	stopwords map[string]struct{}
	stem      func(string) string
	maxLength int
}

// Option configures the tokeniser.
type Option func(*Tokeniser)

// WithStopwords replaces the stop word list.
func WithStopwords(words []string) Option {
	return func(t *Tokeniser) {
		t.stopwords = newWordSet(words)
	}
}

// WithStemmer replaces the stemmer. A nil stemmer keeps words unchanged.
func WithStemmer(stem func(string) string) Option {
	return func(t *Tokeniser) {
		if stem == nil {
			stem = func(s string) string { return s }
		}
		t.stem = stem
	}
}

// WithMaxLength sets the rune length at which tokens are dropped.
func WithMaxLength(n int) Option {
	return func(t *Tokeniser) {
		if n > 0 {
			t.maxLength = n
		}
	}
}

// New creates a tokeniser with the English stop words and Snowball stemmer.
func New(opts ...Option) *Tokeniser {
	t := &Tokeniser{
		stopwords: defaultStopwords,
		stem:      Stem,
		maxLength: DefaultMaxLength,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Stem reduces a lowercased word with the Snowball English stemmer.
func Stem(word string) string {
	return english.Stem(word, false)
}

// Tokens returns the stemmed tokens of text in order.
func (t *Tokeniser) Tokens(text string) []string {
	var tokens []string
	t.each(text, func(tok string) {
		tokens = append(tokens, tok)
	})
	return tokens
}

// Count adds the token counts of text to counts and returns the number
// of tokens counted.
func (t *Tokeniser) Count(text string, counts map[string]int64) int64 {
	var n int64
	t.each(text, func(tok string) {
		counts[tok]++
		n++
	})
	return n
}

func (t *Tokeniser) each(text string, fn func(string)) {
	for _, word := range strings.Fields(stripNonWord(strings.ToLower(text))) {
		if _, stop := t.stopwords[word]; stop {
			continue
		}
		if t.isGarbage(word) {
			continue
		}
		if stemmed := t.stem(word); stemmed != "" {
			fn(stemmed)
		}
	}
}

// isGarbage flags extraction noise: over-long runs and stuttered letters.
func (t *Tokeniser) isGarbage(word string) bool {
	if utf8.RuneCountInString(word) >= t.maxLength {
		return true
	}

	var prev rune
	run := 0
	for _, r := range word {
		if r == prev && unicode.IsLetter(r) {
			run++
			if run > maxRepeat {
				return true
			}
			continue
		}
		prev = r
		run = 1
	}
	return false
}

// stripNonWord removes every rune that is neither a word character nor
// whitespace. Removed runes join their neighbours ("don't" becomes "dont").
func stripNonWord(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if isWordRune(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}
