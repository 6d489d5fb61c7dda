// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Interfaces
//
//   - Scanner: Finds source files in the corpus folder
//   - Watcher: Reports file changes in the corpus folder
//   - Normaliser: Converts a source file to text
//   - NormaliserRegistry: Selects the appropriate normaliser
//   - PostProcessor: Cleans and chunks extracted text
//   - ChunkStore: Chunk and extraction marker persistence
//   - FailureStore: Persistent extraction skip list
//   - DocumentIndex: Derived document table
//   - FrequencyStore: Corpus word counts
//   - VocabularyStore: Coverage vocabulary
//   - VectorStore: Per-document vectors and token totals
//   - ModelStore: Persisted topic classifiers
//   - LabelStore: The topic label set
//   - ConfigStore: Application configuration
//
// Every mutating store call must tolerate a locked database by retrying.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
