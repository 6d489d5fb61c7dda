package driving

import (
	"context"

	"github.com/custodia-labs/lexicon/internal/core/domain"
)

// ClassifierService grows the topic label set.
type ClassifierService interface {
	// Run trains and applies a classifier for every topic in shuffled
	// order. Topics with a stored model are skipped unless Retrain is set.
	Run(ctx context.Context, req ClassifyRequest) (*ClassifyReport, error)

	// AddLabel assigns a document to a topic by hand.
	AddLabel(ctx context.Context, topic, document string) error

	// Labels returns the current label set.
	Labels(ctx context.Context) (*domain.LabelSet, error)
}

// ClassifyRequest configures a classification run.
type ClassifyRequest struct {
	Retrain bool
}

// ClassifyReport summarises a classification run.
type ClassifyReport struct {
	Topics []TopicReport
}

// TopicReport summarises one topic.
type TopicReport struct {
	Topic       string
	Skipped     bool
	Reason      string
	Assigned    int
	ByNeighbour int
	Err         error
}
