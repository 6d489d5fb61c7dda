// Package chunker provides a fixed-size text chunking processor.
package chunker

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/custodia-labs/lexicon/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = domain.DefaultChunkSize

// Processor splits document content into consecutive chunks of chunkSize
// characters. Chunks never overlap and never split a UTF-8 sequence, so
// concatenating them in index order gives back the content.
type Processor struct {
	chunkSize int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		p.chunkSize = size
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) (*Processor, error) {
	p := &Processor{chunkSize: DefaultChunkSize}
	for _, opt := range opts {
		opt(p)
	}
	if p.chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrInvalidInput, p.chunkSize)
	}
	return p, nil
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the configured chunk size.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Process splits the document content into chunks.
// Input chunks are ignored; this processor creates new chunks from document content.
func (p *Processor) Process(ctx context.Context, doc *domain.ExtractedDocument, _ []domain.Chunk) ([]domain.Chunk, error) {
	content := doc.Content
	if content == "" {
		return nil, nil
	}

	estimated := utf8.RuneCountInString(content)/p.chunkSize + 1
	chunks := make([]domain.Chunk, 0, estimated)

	start, runes := 0, 0
	for i := range content {
		if runes == p.chunkSize {
			chunks = append(chunks, domain.Chunk{
				DocumentName: doc.Name,
				Index:        len(chunks),
				Text:         content[start:i],
			})
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			start, runes = i, 0
		}
		runes++
	}
	chunks = append(chunks, domain.Chunk{
		DocumentName: doc.Name,
		Index:        len(chunks),
		Text:         content[start:],
	})

	return chunks, nil
}
