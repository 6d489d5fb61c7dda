// Package memory provides in-memory implementations of driven store
// interfaces. They back unit tests and dry runs; nothing is persisted.
package memory
