package domain

import "fmt"

// Table names a resettable group of stored data.
type Table string

// Resettable tables.
const (
	TableChunks      Table = "chunks"
	TableDocuments   Table = "documents"
	TableFailures    Table = "failures"
	TableFrequencies Table = "frequencies"
	TableVocabulary  Table = "vocabulary"
	TableVectors     Table = "vectors"
	TableModels      Table = "models"
)

// AllTables returns every resettable table.
func AllTables() []Table {
	return []Table{
		TableChunks, TableDocuments, TableFailures, TableFrequencies,
		TableVocabulary, TableVectors, TableModels,
	}
}

// ParseTable validates a table name.
func ParseTable(s string) (Table, error) {
	for _, t := range AllTables() {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: unknown table %q", ErrInvalidInput, s)
}

// Stats counts the rows of each stage's output.
type Stats struct {
	Documents   int
	Chunks      int
	Extractions int
	Failures    int
	Words       int
	TotalWords  int64
	Vocabulary  int
	Vectors     int
	Models      int
}
