package domain

import "sort"

// VectorEntry is one word of a document's vector.
// Words with a zero raw count are not stored.
type VectorEntry struct {
	DocumentName string
	Word         string
	Raw          int64
	Normalised   float64
	TFIDF        float64
}

// DocumentTotals holds the token count of one document.
// It is the denominator of the TF-IDF term frequency.
type DocumentTotals struct {
	DocumentName string
	Tokens       int64
}

// TermMatrix is a word by document view over sparse vector entries.
type TermMatrix struct {
	Words     []string
	Documents []string
	cells     map[string]map[string]float64
}

// NewTermMatrix builds a matrix from entries using value to pick the cell.
func NewTermMatrix(entries []VectorEntry, value func(VectorEntry) float64) *TermMatrix {
	m := &TermMatrix{cells: make(map[string]map[string]float64)}
	words := make(map[string]struct{})
	for _, e := range entries {
		row, ok := m.cells[e.DocumentName]
		if !ok {
			row = make(map[string]float64)
			m.cells[e.DocumentName] = row
			m.Documents = append(m.Documents, e.DocumentName)
		}
		row[e.Word] = value(e)
		words[e.Word] = struct{}{}
	}
	for w := range words {
		m.Words = append(m.Words, w)
	}
	sort.Strings(m.Words)
	sort.Strings(m.Documents)
	return m
}

// Value returns the cell for a word and document, zero when absent.
func (m *TermMatrix) Value(word, document string) float64 {
	return m.cells[document][word]
}

// Column returns the non-zero cells of one document keyed by word.
func (m *TermMatrix) Column(document string) map[string]float64 {
	return m.cells[document]
}

// Has reports whether the matrix has a column for document.
func (m *TermMatrix) Has(document string) bool {
	_, ok := m.cells[document]
	return ok
}
