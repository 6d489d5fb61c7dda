package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/custodia-labs/lexicon/internal/core/domain"
	"github.com/custodia-labs/lexicon/internal/core/ports/driving"
)

type fakeExtraction struct {
	req    driving.ExtractRequest
	report *driving.ExtractReport
	err    error
}

func (f *fakeExtraction) Extract(_ context.Context, req driving.ExtractRequest) (*driving.ExtractReport, error) {
	f.req = req
	return f.report, f.err
}

func (f *fakeExtraction) Watch(_ context.Context, req driving.ExtractRequest, onReport func(*driving.ExtractReport)) error {
	f.req = req
	onReport(f.report)
	return f.err
}

type fakeIndex struct{ n int }

func (f *fakeIndex) Rebuild(context.Context) (int, error) { return f.n, nil }

type fakeAggregation struct {
	r     domain.ChunkRange
	share float64
}

func (f *fakeAggregation) Aggregate(_ context.Context, r domain.ChunkRange) (*driving.AggregateReport, error) {
	f.r = r
	return &driving.AggregateReport{Chunks: 3, Tokens: 12, Words: 4, LastID: 3}, nil
}

func (f *fakeAggregation) Prune(_ context.Context, share float64) (int, error) {
	f.share = share
	return 2, nil
}

type fakeCoverage struct {
	fraction float64
	similar  []driving.SimilarDocument
}

func (f *fakeCoverage) SelectVocabulary(_ context.Context, fraction float64) (*driving.CoverageReport, error) {
	f.fraction = fraction
	return &driving.CoverageReport{Words: 2, Covered: 80, Total: 100, Fraction: 0.8}, nil
}

func (f *fakeCoverage) ComputeTFIDF(context.Context) (*domain.TermMatrix, error) {
	return domain.NewTermMatrix(nil, func(e domain.VectorEntry) float64 { return e.TFIDF }), nil
}

func (f *fakeCoverage) Similar(_ context.Context, _ string, k int) ([]driving.SimilarDocument, error) {
	if k < len(f.similar) {
		return f.similar[:k], nil
	}
	return f.similar, nil
}

type fakeClassifier struct {
	retrain bool
	report  *driving.ClassifyReport
	labels  *domain.LabelSet
}

func (f *fakeClassifier) Run(_ context.Context, req driving.ClassifyRequest) (*driving.ClassifyReport, error) {
	f.retrain = req.Retrain
	return f.report, nil
}

func (f *fakeClassifier) AddLabel(_ context.Context, topic, document string) error {
	f.labels.Add(topic, document)
	return nil
}

func (f *fakeClassifier) Labels(context.Context) (*domain.LabelSet, error) {
	return f.labels, nil
}

type fakeSettings struct {
	values map[string]string
}

func (f *fakeSettings) Get() (*domain.Settings, error) {
	s := domain.DefaultSettings()
	s.Aggregation.PruneShare = 0.05
	return &s, nil
}

func (f *fakeSettings) Set(key, value string) error {
	if _, ok := f.values[key]; !ok {
		return domain.ErrInvalidInput
	}
	f.values[key] = value
	return nil
}

func (f *fakeSettings) Keys() []string {
	return []string{"classifier.seed", "corpus.folder", "extraction.chunk_size"}
}

func (f *fakeSettings) Value(key string) (string, error) { return f.values[key], nil }

func (f *fakeSettings) Validate() error { return nil }

type fakeMaintenance struct {
	reset []domain.Table
}

func (f *fakeMaintenance) Reset(_ context.Context, tables ...domain.Table) error {
	f.reset = tables
	return nil
}

func (f *fakeMaintenance) Stats(context.Context) (*domain.Stats, error) {
	return &domain.Stats{Documents: 4, Chunks: 9, TotalWords: 120}, nil
}

type fakePipeline struct {
	req   driving.RunRequest
	calls int
}

func (f *fakePipeline) Run(_ context.Context, req driving.RunRequest) (*driving.RunReport, error) {
	f.req = req
	f.calls++
	return &driving.RunReport{
		Extract:     &driving.ExtractReport{Found: 2, Extracted: 2},
		Indexed:     2,
		Interrupted: true,
	}, nil
}

type fakeScheduler struct {
	interval time.Duration
	runner   driving.PipelineRunner
}

func (f *fakeScheduler) Start(ctx context.Context, req driving.RunRequest, onReport func(*driving.RunReport, error)) error {
	report, err := f.runner.Run(ctx, req)
	onReport(report, err)
	return nil
}

func (f *fakeScheduler) Stop() {}

// fakeServices returns services backed by fakes.
func fakeServices() *Services {
	s := &Services{
		Extraction:  &fakeExtraction{report: &driving.ExtractReport{Found: 3, Skipped: 1, Extracted: 2, Chunks: 7}},
		Index:       &fakeIndex{n: 2},
		Aggregation: &fakeAggregation{},
		Coverage: &fakeCoverage{similar: []driving.SimilarDocument{
			{Name: "b.txt", Similarity: 0.9},
			{Name: "c.txt", Similarity: 0.4},
		}},
		Classifier: &fakeClassifier{
			labels: domain.NewLabelSet(),
			report: &driving.ClassifyReport{Topics: []driving.TopicReport{
				{Topic: "go", Assigned: 2, ByNeighbour: 1},
				{Topic: "baking", Skipped: true, Reason: "model exists"},
			}},
		},
		Settings: &fakeSettings{values: map[string]string{
			"classifier.seed":       "0",
			"corpus.folder":         "",
			"extraction.chunk_size": "1000",
		}},
		Maintenance: &fakeMaintenance{},
		Pipeline:    &fakePipeline{},
	}
	s.NewScheduler = func(interval time.Duration) driving.PipelineScheduler {
		return &fakeScheduler{interval: interval, runner: s.Pipeline}
	}
	return s
}

// execute runs the root command with args against s and returns its output.
func execute(t *testing.T, s *Services, args ...string) (string, error) {
	t.Helper()
	saved := services
	services = s
	t.Cleanup(func() {
		services = saved
		resetFlags()
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

// resetFlags restores flag variables, which cobra keeps between executions.
func resetFlags() {
	verbose, homeDir = false, ""
	extractChunkSize, extractWatch = 0, false
	aggregateAfter, aggregateUpTo = 0, 0
	pruneShare, coverageFraction = 0, 0
	similarCount = 5
	classifyRetrain, runRetrain = false, false
	runEvery = 0
	versionShort = false
}
