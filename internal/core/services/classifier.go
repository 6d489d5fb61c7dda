package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync/atomic"
	"time"

	"github.com/custodia-labs/lexicon/internal/core/domain"
	"github.com/custodia-labs/lexicon/internal/core/ports/driven"
	"github.com/custodia-labs/lexicon/internal/core/ports/driving"
	"github.com/custodia-labs/lexicon/internal/learn"
	"github.com/custodia-labs/lexicon/internal/logger"
)

// Ensure ClassifierService implements the interface.
var _ driving.ClassifierService = (*ClassifierService)(nil)

// ClassifierService grows the label set one topic at a time. For each
// topic it fits a ridge regression on the labelled documents and assigns
// the unlabelled documents it scores confidently.
type ClassifierService struct {
	chunks   driven.ChunkStore
	models   driven.ModelStore
	labels   driven.LabelStore
	settings domain.ClassifierSettings
	now      func() time.Time

	running atomic.Bool
}

// NewClassifierService creates a classifier service.
func NewClassifierService(
	chunks driven.ChunkStore,
	models driven.ModelStore,
	labels driven.LabelStore,
	settings domain.ClassifierSettings,
) *ClassifierService {
	return &ClassifierService{
		chunks:   chunks,
		models:   models,
		labels:   labels,
		settings: settings,
		now:      time.Now,
	}
}

// corpus is the text of every extracted document, ordered by name.
type corpus struct {
	names []string
	texts []string
}

// topicFit is a trained topic with the out-of-sample score of every
// corpus document.
type topicFit struct {
	model     *learn.Model
	rows      []learn.Sparse
	scores    []float64
	positives int
}

// Run classifies every topic of the label set in shuffled order.
// A failing topic is reported and logged; the others still run.
func (s *ClassifierService) Run(ctx context.Context, req driving.ClassifyRequest) (*driving.ClassifyReport, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("classification: %w", domain.ErrStageInProgress)
	}
	defer s.running.Store(false)

	labels, err := s.labels.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load labels: %w", err)
	}
	if req.Retrain {
		if err := s.models.DeleteModels(ctx); err != nil {
			return nil, fmt.Errorf("delete models: %w", err)
		}
		logger.Info("Cleared stored topic models")
	}

	docs, err := s.loadCorpus(ctx)
	if err != nil {
		return nil, err
	}

	topics := labels.Topics()
	s.shuffle(topics)

	report := &driving.ClassifyReport{}
	for _, topic := range topics {
		if ctx.Err() != nil {
			logger.Warn("Classification interrupted before topic %q", topic)
			break
		}
		logger.Section("Topic: " + topic)

		tr := s.classifyTopic(ctx, topic, labels, docs)
		switch {
		case tr.Err != nil:
			logger.Error("Topic %q failed: %v", topic, tr.Err)
		case tr.Skipped:
			logger.Info("Skipped topic %q: %s", topic, tr.Reason)
		default:
			logger.Info("Topic %q: %d assigned, %d by neighbour", topic, tr.Assigned, tr.ByNeighbour)
		}
		report.Topics = append(report.Topics, tr)
	}
	return report, nil
}

// AddLabel assigns an extracted document to topic.
func (s *ClassifierService) AddLabel(ctx context.Context, topic, document string) error {
	topic = strings.TrimSpace(topic)
	if topic == "" || document == "" {
		return fmt.Errorf("%w: topic and document are required", domain.ErrInvalidInput)
	}
	extracted, err := s.chunks.IsExtracted(ctx, document)
	if err != nil {
		return fmt.Errorf("check document: %w", err)
	}
	if !extracted {
		return fmt.Errorf("document %s: %w", document, domain.ErrNotFound)
	}

	labels, err := s.labels.Load(ctx)
	if err != nil {
		return fmt.Errorf("load labels: %w", err)
	}
	if !labels.Add(topic, document) {
		return nil
	}
	if err := s.labels.Save(ctx, labels); err != nil {
		return fmt.Errorf("save labels: %w", err)
	}
	return nil
}

// Labels returns the current label set.
func (s *ClassifierService) Labels(ctx context.Context) (*domain.LabelSet, error) {
	return s.labels.Load(ctx)
}

func (s *ClassifierService) classifyTopic(ctx context.Context, topic string, labels *domain.LabelSet, docs *corpus) driving.TopicReport {
	tr := driving.TopicReport{Topic: topic}

	exists, err := s.models.HasModel(ctx, topic)
	if err != nil {
		tr.Err = fmt.Errorf("check model: %w", err)
		return tr
	}
	if exists {
		tr.Skipped = true
		tr.Reason = "model exists"
		return tr
	}

	fit, err := s.train(topic, labels, docs)
	if errors.Is(err, domain.ErrNoSeedLabels) {
		tr.Skipped = true
		tr.Reason = "no labelled documents"
		return tr
	}
	if err != nil {
		tr.Err = err
		return tr
	}

	for i, name := range docs.names {
		if labels.Has(topic, name) {
			continue
		}
		decision := Decide(fit.scores[i], s.settings.HighThreshold, s.settings.LowThreshold,
			func() bool { return s.hasLabelledNeighbour(topic, labels, docs, fit.rows, i) })
		if decision == domain.DecisionSkip {
			continue
		}

		labels.Add(topic, name)
		if err := s.labels.Save(ctx, labels); err != nil {
			tr.Err = fmt.Errorf("save labels: %w", err)
			return tr
		}
		logger.Debug("%s -> %s (%s, score %.3f)", name, topic, decision, fit.scores[i])
		if decision == domain.DecisionAssignByNeighbour {
			tr.ByNeighbour++
		} else {
			tr.Assigned++
		}
	}

	if err := s.saveModel(ctx, topic, fit); err != nil {
		tr.Err = err
	}
	return tr
}

// train fits the topic on every corpus document, labelled ones as 1 and
// the rest as 0, and scores each document by leave-one-out prediction.
func (s *ClassifierService) train(topic string, labels *domain.LabelSet, docs *corpus) (*topicFit, error) {
	y := make([]float64, len(docs.names))
	positives := 0
	for i, name := range docs.names {
		if labels.Has(topic, name) {
			y[i] = 1
			positives++
		}
	}
	if positives == 0 {
		return nil, fmt.Errorf("topic %q: %w", topic, domain.ErrNoSeedLabels)
	}

	vectoriser := learn.NewVectoriser(s.settings.MaxFeatures)
	rows, err := vectoriser.FitTransform(docs.texts)
	if err != nil {
		return nil, fmt.Errorf("vectorise corpus: %w", err)
	}
	ridge, err := learn.FitRidge(rows, y, vectoriser.Dim(), s.settings.RidgeAlpha)
	if err != nil {
		return nil, fmt.Errorf("fit topic %q: %w", topic, err)
	}

	return &topicFit{
		model:     &learn.Model{Vectoriser: vectoriser, Ridge: ridge.Model},
		rows:      rows,
		scores:    ridge.LeaveOneOut,
		positives: positives,
	}, nil
}

// hasLabelledNeighbour reports whether any of the closest documents to
// docs.names[i] already carries topic.
func (s *ClassifierService) hasLabelledNeighbour(topic string, labels *domain.LabelSet, docs *corpus, rows []learn.Sparse, i int) bool {
	for _, nb := range learn.Nearest(rows, i, s.settings.Neighbours) {
		if labels.Has(topic, docs.names[nb.Index]) {
			return true
		}
	}
	return false
}

func (s *ClassifierService) saveModel(ctx context.Context, topic string, fit *topicFit) error {
	payload, err := fit.model.Encode()
	if err != nil {
		return err
	}
	model := &domain.TopicModel{
		Topic:     topic,
		Payload:   payload,
		Positives: fit.positives,
		TrainedAt: s.now(),
	}
	if err := s.models.SaveModel(ctx, model); err != nil {
		return fmt.Errorf("save model: %w", err)
	}
	return nil
}

// loadCorpus loads the text of every extracted document.
func (s *ClassifierService) loadCorpus(ctx context.Context) (*corpus, error) {
	extractions, err := s.chunks.Extractions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list extractions: %w", err)
	}

	docs := &corpus{}
	for _, e := range extractions {
		chunks, err := s.chunks.DocumentChunks(ctx, e.DocumentName)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", e.DocumentName, err)
		}
		var text strings.Builder
		for _, c := range chunks {
			text.WriteString(c.Text)
		}
		docs.names = append(docs.names, e.DocumentName)
		docs.texts = append(docs.texts, text.String())
	}
	return docs, nil
}

// shuffle orders topics randomly, reproducibly when a seed is set.
func (s *ClassifierService) shuffle(topics []string) {
	seed := uint64(s.settings.Seed)
	if seed == 0 {
		seed = uint64(s.now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed, seed>>1))
	rng.Shuffle(len(topics), func(i, j int) {
		topics[i], topics[j] = topics[j], topics[i]
	})
}

// Decide maps a score to a decision. Scores above high are assigned,
// scores in (low, high] are assigned only when labelledNeighbour reports
// true, and the rest are skipped. labelledNeighbour is only called for
// scores in the uncertain band.
func Decide(score, high, low float64, labelledNeighbour func() bool) domain.Decision {
	switch {
	case score > high:
		return domain.DecisionAssign
	case score > low && labelledNeighbour():
		return domain.DecisionAssignByNeighbour
	default:
		return domain.DecisionSkip
	}
}
