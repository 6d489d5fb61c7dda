// Package domain defines the core entities of the lexicon pipeline.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An extracted source file with its chunk range and key
//   - Chunk: A fixed-size slice of a document's cleaned text
//   - WordFrequency: A corpus-wide stemmed word count
//   - VectorEntry: One word of a per-document vector
//   - LabelSet: The add-only topic to document assignment map
//   - Settings: Validated pipeline configuration
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
