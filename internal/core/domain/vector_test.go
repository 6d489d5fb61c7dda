package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTermMatrix(t *testing.T) {
	entries := []VectorEntry{
		{DocumentName: "b", Word: "go", Raw: 2, TFIDF: 0.5},
		{DocumentName: "a", Word: "go", Raw: 1, TFIDF: 0.25},
		{DocumentName: "a", Word: "rust", Raw: 3, TFIDF: 0.75},
	}

	m := NewTermMatrix(entries, func(e VectorEntry) float64 { return e.TFIDF })

	assert.Equal(t, []string{"go", "rust"}, m.Words)
	assert.Equal(t, []string{"a", "b"}, m.Documents)
	assert.Equal(t, 0.75, m.Value("rust", "a"))
	assert.Zero(t, m.Value("rust", "b"))
	assert.True(t, m.Has("a"))
	assert.False(t, m.Has("c"))
	require.Len(t, m.Column("a"), 2)
}

func TestChunkRange_Contains(t *testing.T) {
	tests := []struct {
		name string
		r    ChunkRange
		id   int64
		want bool
	}{
		{"unbounded", ChunkRange{}, 1, true},
		{"at after", ChunkRange{AfterID: 5}, 5, false},
		{"past after", ChunkRange{AfterID: 5}, 6, true},
		{"at upto", ChunkRange{UpToID: 10}, 10, true},
		{"past upto", ChunkRange{UpToID: 10}, 11, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.r.Contains(tt.id))
		})
	}
}

func TestParseTable(t *testing.T) {
	table, err := ParseTable("chunks")
	require.NoError(t, err)
	assert.Equal(t, TableChunks, table)

	_, err = ParseTable("users")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
