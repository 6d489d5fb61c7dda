package domain

import "time"

// TopicModel is a persisted per-topic classifier.
// Payload is the encoded vectoriser and ridge weights.
type TopicModel struct {
	Topic     string
	Payload   []byte
	Positives int
	TrainedAt time.Time
}

// Decision is the outcome of classifying one document for a topic.
type Decision int

const (
	// DecisionSkip leaves the document unlabelled.
	DecisionSkip Decision = iota

	// DecisionAssign adds the document on its score alone.
	DecisionAssign

	// DecisionAssignByNeighbour adds an uncertain document because a
	// similar document already carries the label.
	DecisionAssignByNeighbour
)

// String returns the string representation.
func (d Decision) String() string {
	switch d {
	case DecisionAssign:
		return "assign"
	case DecisionAssignByNeighbour:
		return "assign-neighbour"
	default:
		return "skip"
	}
}
