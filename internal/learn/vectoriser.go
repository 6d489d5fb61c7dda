package learn

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/custodia-labs/lexicon/internal/tokeniser"
)

// ErrEmptyVocabulary is returned when fitting finds no usable terms.
var ErrEmptyVocabulary = errors.New("empty vocabulary")

var termPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Vectoriser maps text to L2-normalised TF-IDF vectors over unigrams and
// bigrams. Exported fields are the persisted state.
type Vectoriser struct {
	Terms       []string  `json:"terms"`
	IDF         []float64 `json:"idf"`
	MaxFeatures int       `json:"max_features"`

	index map[string]int
}

// NewVectoriser creates a vectoriser keeping at most maxFeatures terms.
// Zero or negative keeps every term.
func NewVectoriser(maxFeatures int) *Vectoriser {
	return &Vectoriser{MaxFeatures: maxFeatures}
}

// Fit learns the vocabulary and inverse document frequencies of docs.
// Terms are ranked by corpus frequency, ties broken alphabetically.
func (v *Vectoriser) Fit(docs []string) error {
	df := make(map[string]int)
	tf := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{})
		for _, term := range analyse(doc) {
			tf[term]++
			if _, ok := seen[term]; !ok {
				seen[term] = struct{}{}
				df[term]++
			}
		}
	}
	if len(tf) == 0 {
		return ErrEmptyVocabulary
	}

	terms := make([]string, 0, len(tf))
	for term := range tf {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if tf[terms[i]] != tf[terms[j]] {
			return tf[terms[i]] > tf[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if v.MaxFeatures > 0 && len(terms) > v.MaxFeatures {
		terms = terms[:v.MaxFeatures]
	}
	sort.Strings(terms)

	n := float64(len(docs))
	v.Terms = terms
	v.IDF = make([]float64, len(terms))
	for i, term := range terms {
		v.IDF[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}
	v.index = nil
	v.termIndex()
	return nil
}

// Transform maps one text to its TF-IDF vector.
// Unknown terms are ignored; text without known terms maps to zero.
// Safe for concurrent use once fitted or decoded.
func (v *Vectoriser) Transform(doc string) Sparse {
	index := v.termIndex()
	counts := make(map[int]float64)
	for _, term := range analyse(doc) {
		if i, ok := index[term]; ok {
			counts[i]++
		}
	}
	for i := range counts {
		counts[i] *= v.IDF[i]
	}
	return NewSparse(Normalise(counts, 0))
}

// FitTransform fits docs and returns their vectors.
func (v *Vectoriser) FitTransform(docs []string) ([]Sparse, error) {
	if err := v.Fit(docs); err != nil {
		return nil, err
	}
	rows := make([]Sparse, len(docs))
	for i, doc := range docs {
		rows[i] = v.Transform(doc)
	}
	return rows, nil
}

// Dim returns the vocabulary size.
func (v *Vectoriser) Dim() int {
	return len(v.Terms)
}

func (v *Vectoriser) termIndex() map[string]int {
	if v.index == nil {
		v.index = make(map[string]int, len(v.Terms))
		for i, t := range v.Terms {
			v.index[t] = i
		}
	}
	return v.index
}

// analyse returns the unigrams and bigrams of doc after stop word removal.
func analyse(doc string) []string {
	words := termPattern.FindAllString(strings.ToLower(doc), -1)
	kept := words[:0]
	for _, w := range words {
		if !tokeniser.IsStopword(w) {
			kept = append(kept, w)
		}
	}

	terms := make([]string, 0, 2*len(kept))
	terms = append(terms, kept...)
	for i := 0; i+1 < len(kept); i++ {
		terms = append(terms, kept[i]+" "+kept[i+1])
	}
	return terms
}
