package domain

import "time"

// ExtractionFailure records a document that could not be extracted.
// Failed documents are skipped by later extraction runs.
type ExtractionFailure struct {
	// ID is the unique identifier for the failure record.
	ID string

	// DocumentName is the name of the failed document.
	DocumentName string

	// Path is the file the extraction was attempted on.
	Path string

	// Reason is the extraction error message.
	Reason string

	// FailedAt is when the failure was recorded.
	FailedAt time.Time
}
