package domain

import "time"

// RawDocument is a source file found by the scanner, before normalisation.
type RawDocument struct {
	// Name is the basename without extension.
	Name string

	// Path is the absolute file path.
	Path string

	// MIMEType is the detected content type (e.g., "application/pdf").
	MIMEType string

	// Type is the file classification.
	Type FileType

	// ModTime is the file's modification time.
	ModTime time.Time

	// Content holds the raw bytes when already loaded.
	// Normalisers read Path when Content is nil.
	Content []byte
}

// ChangeType represents the type of file change.
type ChangeType int

const (
	// ChangeCreated indicates a new file.
	ChangeCreated ChangeType = iota

	// ChangeUpdated indicates a modified file.
	ChangeUpdated

	// ChangeDeleted indicates a removed file.
	ChangeDeleted
)

// RawDocumentChange represents a change event from the watcher.
type RawDocumentChange struct {
	Type     ChangeType
	Document RawDocument
}
