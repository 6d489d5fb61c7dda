// Package tokeniser turns chunk text into stemmed word tokens.
//
// Tokens are lowercased, stripped of punctuation, filtered against an
// English stop word list and a garbage heuristic, then reduced with the
// Snowball English stemmer. Stream re-joins words that the chunker split
// across chunk boundaries so that tokenising a document chunk by chunk
// gives the same tokens as tokenising its full text.
package tokeniser
