package domain

import "time"

// FileType classifies a source file.
type FileType string

// Recognised file types.
const (
	// FileTypePDF is a PDF document extracted with pdftotext.
	FileTypePDF FileType = "pdf"

	// FileTypeNote is a Markdown or plain-text note.
	FileTypeNote FileType = "note"
)

// IsValid returns true if the file type is recognised.
func (t FileType) IsValid() bool {
	return t == FileTypePDF || t == FileTypeNote
}

// Document is the index entry for one extracted source file.
// It is rebuilt wholesale from the chunk table.
type Document struct {
	// ID is the derived document key (see DocumentKey).
	ID string

	// Name is the file basename without extension. Unique within the corpus.
	Name string

	// Path is the absolute path the document was extracted from.
	Path string

	// Type is the file classification.
	Type FileType

	// CreatedAt is the file's modification time at extraction.
	CreatedAt time.Time

	// EpochTime is CreatedAt in Unix seconds.
	EpochTime int64

	// ChunkCount is the number of stored chunks.
	ChunkCount int

	// StartID and EndID are the smallest and largest chunk ids.
	StartID int64
	EndID   int64
}

// Chunk is a fixed-size slice of a document's cleaned text.
// Chunks of one document are contiguous and ordered by Index.
type Chunk struct {
	// ID is assigned by the store, monotonically increasing in insertion order.
	ID int64

	// DocumentName links to the owning document.
	DocumentName string

	// Index is the zero-based position within the document.
	Index int

	// Text is the chunk content.
	Text string
}

// ExtractedDocument is the cleaned text of a source file, before chunking.
type ExtractedDocument struct {
	Name     string
	Path     string
	Type     FileType
	ModTime  time.Time
	Content  string
	Metadata map[string]any
}

// Extraction marks a document whose chunks were all persisted.
// It is written in the same transaction as the document's last chunk batch.
type Extraction struct {
	DocumentName string
	Path         string
	Type         FileType
	EpochTime    int64
	ChunkCount   int
	CompletedAt  time.Time
}

// ChunkStats summarises the chunk range of one document.
type ChunkStats struct {
	DocumentName string
	Count        int
	StartID      int64
	EndID        int64
}
