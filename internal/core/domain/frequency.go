package domain

// WordFrequency is the corpus-wide count of one stemmed word.
type WordFrequency struct {
	Word      string
	Frequency int64
}

// VocabularyEntry is a word retained by coverage selection.
type VocabularyEntry struct {
	Word      string
	Frequency int64
}

// ChunkRange bounds an aggregation run by chunk id.
// Zero values mean unbounded.
type ChunkRange struct {
	// AfterID excludes chunks with id <= AfterID.
	AfterID int64

	// UpToID excludes chunks with id > UpToID.
	UpToID int64
}

// Contains reports whether a chunk id falls inside the range.
func (r ChunkRange) Contains(id int64) bool {
	if id <= r.AfterID {
		return false
	}
	return r.UpToID <= 0 || id <= r.UpToID
}
