package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/lexicon/internal/core/domain"
	"github.com/custodia-labs/lexicon/internal/core/ports/driven"
	"github.com/custodia-labs/lexicon/internal/core/ports/driving"
	"github.com/custodia-labs/lexicon/internal/logger"
)

// Ensure ExtractionService implements the interface.
var _ driving.ExtractionService = (*ExtractionService)(nil)

// DefaultFlushInterval is how often the writer flushes a partial batch.
const DefaultFlushInterval = 2 * time.Second

// errWriterStopped tells producers the writer exited early.
var errWriterStopped = errors.New("chunk writer stopped")

// chunkRecord is one queued chunk. The last chunk of a document carries
// its completion marker.
type chunkRecord struct {
	chunk domain.Chunk
	done  *domain.Extraction
}

// ExtractionService extracts source files into the chunk store.
// Producers normalise and chunk documents concurrently; a single writer
// owns every chunk store write.
type ExtractionService struct {
	scanner  driven.Scanner
	watcher  driven.Watcher
	registry driven.NormaliserRegistry
	builder  driven.PipelineBuilder
	chunks   driven.ChunkStore
	failures driven.FailureStore

	folder        string
	settings      domain.ExtractionSettings
	flushInterval time.Duration
	now           func() time.Time

	running atomic.Bool
}

// ExtractionOption configures an ExtractionService.
type ExtractionOption func(*ExtractionService)

// WithFlushInterval sets how often partial batches are flushed.
func WithFlushInterval(d time.Duration) ExtractionOption {
	return func(s *ExtractionService) {
		s.flushInterval = d
	}
}

// WithWatcher enables Watch.
func WithWatcher(w driven.Watcher) ExtractionOption {
	return func(s *ExtractionService) {
		s.watcher = w
	}
}

// NewExtractionService creates an extraction service.
// folder is the default corpus folder used when a request names none.
func NewExtractionService(
	scanner driven.Scanner,
	registry driven.NormaliserRegistry,
	builder driven.PipelineBuilder,
	chunks driven.ChunkStore,
	failures driven.FailureStore,
	folder string,
	settings domain.ExtractionSettings,
	opts ...ExtractionOption,
) *ExtractionService {
	s := &ExtractionService{
		scanner:       scanner,
		registry:      registry,
		builder:       builder,
		chunks:        chunks,
		failures:      failures,
		folder:        folder,
		settings:      settings,
		flushInterval: DefaultFlushInterval,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Extract processes every new document under the request folder.
// Cancelling ctx stops scheduling; documents already started are finished
// and the queue is drained before Extract returns with Interrupted set.
func (s *ExtractionService) Extract(ctx context.Context, req driving.ExtractRequest) (*driving.ExtractReport, error) {
	req = s.resolve(req)
	if req.ChunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrInvalidInput, req.ChunkSize)
	}
	if req.Folder == "" {
		return nil, fmt.Errorf("%w: no corpus folder given or configured", domain.ErrInvalidInput)
	}
	pipeline, err := s.builder.Build(req.ChunkSize)
	if err != nil {
		return nil, err
	}

	if !s.running.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("extraction: %w", domain.ErrStageInProgress)
	}
	defer s.running.Store(false)

	start := s.now()
	docs, err := s.scanner.Scan(ctx, req.Folder)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}

	report := &driving.ExtractReport{Found: len(docs)}
	pending, err := s.pending(ctx, docs, report)
	if err != nil {
		return nil, err
	}
	logger.Info("Extracting %d of %d documents from %s", len(pending), len(docs), req.Folder)

	// Work already started must finish even after ctx is cancelled.
	workCtx := context.WithoutCancel(ctx)

	queue := make(chan chunkRecord, s.settings.QueueSize)
	writerDone := make(chan struct{})
	w := &chunkWriter{
		store:      s.chunks,
		flushEvery: s.settings.FlushEvery,
		interval:   s.flushInterval,
		progress:   &rate.Sometimes{Interval: 5 * time.Second},
	}
	var writerErr error
	go func() {
		defer close(writerDone)
		writerErr = w.run(workCtx, queue)
	}()

	var (
		mu        sync.Mutex
		extracted int
		failed    int
		submitted int
	)
	var producers errgroup.Group
	producers.SetLimit(s.settings.Workers)

schedule:
	for _, doc := range pending {
		select {
		case <-ctx.Done():
			report.Interrupted = true
			break schedule
		case <-writerDone:
			break schedule
		default:
		}

		producers.Go(func() error {
			n, err := s.extractOne(workCtx, pipeline, doc, queue, writerDone)
			if errors.Is(err, errWriterStopped) {
				return nil
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				return nil
			}
			extracted++
			submitted += n
			return nil
		})
	}

	_ = producers.Wait()
	close(queue)
	<-writerDone

	report.Extracted = extracted
	report.Failed = failed
	report.Chunks = submitted
	report.Duration = s.now().Sub(start)

	if writerErr != nil {
		return report, fmt.Errorf("write chunks: %w", writerErr)
	}
	if report.Interrupted {
		logger.Warn("Extraction interrupted: %d documents stored, %d not started",
			report.Extracted, len(pending)-report.Extracted-report.Failed)
	}
	logger.Info("Extraction complete: %d extracted, %d skipped, %d failed, %d chunks",
		report.Extracted, report.Skipped, report.Failed, report.Chunks)
	return report, nil
}

// Watch runs Extract once and again after every burst of file changes.
func (s *ExtractionService) Watch(ctx context.Context, req driving.ExtractRequest, onReport func(*driving.ExtractReport)) error {
	if s.watcher == nil {
		return errors.New("watch: no watcher configured")
	}
	req = s.resolve(req)

	report, err := s.Extract(ctx, req)
	if err != nil {
		return err
	}
	if onReport != nil {
		onReport(report)
	}

	changes, err := s.watcher.Watch(ctx, req.Folder)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case change, ok := <-changes:
			if !ok {
				return nil
			}
			if !drainChanges(change, changes) {
				continue
			}
			report, err := s.Extract(ctx, req)
			if err != nil {
				logger.Warn("Extraction after change failed: %v", err)
				continue
			}
			if onReport != nil {
				onReport(report)
			}
		}
	}
}

// drainChanges consumes changes already queued behind first and reports
// whether any of them can add a document.
func drainChanges(first domain.RawDocumentChange, changes <-chan domain.RawDocumentChange) bool {
	relevant := first.Type != domain.ChangeDeleted
	if !relevant {
		logger.Debug("Ignoring removal of %s: stored chunks are kept", first.Document.Path)
	}
	for {
		select {
		case change, ok := <-changes:
			if !ok {
				return relevant
			}
			relevant = relevant || change.Type != domain.ChangeDeleted
		default:
			return relevant
		}
	}
}

func (s *ExtractionService) resolve(req driving.ExtractRequest) driving.ExtractRequest {
	if req.Folder == "" {
		req.Folder = s.folder
	}
	if req.ChunkSize == 0 {
		req.ChunkSize = s.settings.ChunkSize
	}
	return req
}

// pending filters out documents that are extracted or previously failed.
func (s *ExtractionService) pending(ctx context.Context, docs []domain.RawDocument, report *driving.ExtractReport) ([]domain.RawDocument, error) {
	var out []domain.RawDocument
	for _, doc := range docs {
		done, err := s.chunks.IsExtracted(ctx, doc.Name)
		if err != nil {
			return nil, fmt.Errorf("check extraction of %s: %w", doc.Name, err)
		}
		failed, err := s.failures.IsFailed(ctx, doc.Name)
		if err != nil {
			return nil, fmt.Errorf("check failure of %s: %w", doc.Name, err)
		}
		if done || failed {
			logger.Debug("Skipping %s (extracted=%t failed=%t)", doc.Name, done, failed)
			report.Skipped++
			continue
		}
		out = append(out, doc)
	}
	return out, nil
}

// extractOne normalises and chunks one document and queues its chunks.
// Failures are recorded and never retried, except a missing tool, which
// leaves the document for a later run.
func (s *ExtractionService) extractOne(
	ctx context.Context,
	pipeline driven.PostProcessorPipeline,
	raw domain.RawDocument,
	queue chan<- chunkRecord,
	writerDone <-chan struct{},
) (int, error) {
	chunks, err := s.chunk(ctx, pipeline, &raw)
	if errors.Is(err, domain.ErrToolUnavailable) {
		logger.Warn("Skipping %s: %v", raw.Path, err)
		return 0, err
	}
	if err != nil {
		s.recordFailure(ctx, raw, err)
		return 0, err
	}

	marker := &domain.Extraction{
		DocumentName: raw.Name,
		Path:         raw.Path,
		Type:         raw.Type,
		EpochTime:    raw.ModTime.Unix(),
		ChunkCount:   len(chunks),
		CompletedAt:  s.now(),
	}
	for i, c := range chunks {
		rec := chunkRecord{chunk: c}
		if i == len(chunks)-1 {
			rec.done = marker
		}
		select {
		case queue <- rec:
		case <-writerDone:
			return 0, errWriterStopped
		}
	}

	logger.Debug("Queued %s: %d chunks", raw.Name, len(chunks))
	return len(chunks), nil
}

func (s *ExtractionService) chunk(ctx context.Context, pipeline driven.PostProcessorPipeline, raw *domain.RawDocument) ([]domain.Chunk, error) {
	doc, err := s.registry.Normalise(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("normalise: %w", err)
	}
	chunks, err := pipeline.Process(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("post-process: %w", err)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: no text", domain.ErrExtractionFailed)
	}
	for i := range chunks {
		chunks[i].DocumentName = raw.Name
		chunks[i].Index = i
	}
	return chunks, nil
}

func (s *ExtractionService) recordFailure(ctx context.Context, raw domain.RawDocument, cause error) {
	logger.Warn("Failed to extract %s: %v", raw.Path, cause)
	failure := &domain.ExtractionFailure{
		ID:           uuid.NewString(),
		DocumentName: raw.Name,
		Path:         raw.Path,
		Reason:       cause.Error(),
		FailedAt:     s.now(),
	}
	if err := s.failures.Add(ctx, failure); err != nil {
		logger.Error("Recording failure of %s: %v", raw.Name, err)
	}
}

// chunkWriter batches queued chunks into store transactions.
// A document's chunks are held until its last chunk arrives, so every
// document is written contiguously in one transaction with its marker.
type chunkWriter struct {
	store      driven.ChunkStore
	flushEvery int
	interval   time.Duration
	progress   *rate.Sometimes

	held      map[string][]domain.Chunk
	batch     []domain.Chunk
	completed []domain.Extraction
	written   int
	documents int
}

// run drains queue until it is closed, flushing every flushEvery chunks,
// on every tick and once more at the end.
func (w *chunkWriter) run(ctx context.Context, queue <-chan chunkRecord) error {
	w.held = make(map[string][]domain.Chunk)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case rec, ok := <-queue:
			if !ok {
				return w.flush(ctx)
			}
			name := rec.chunk.DocumentName
			w.held[name] = append(w.held[name], rec.chunk)
			if rec.done == nil {
				continue
			}
			w.batch = append(w.batch, w.held[name]...)
			w.completed = append(w.completed, *rec.done)
			delete(w.held, name)
			if len(w.batch) >= w.flushEvery {
				if err := w.flush(ctx); err != nil {
					return err
				}
			}
		case <-ticker.C:
			if err := w.flush(ctx); err != nil {
				return err
			}
		}
	}
}

func (w *chunkWriter) flush(ctx context.Context) error {
	if len(w.batch) == 0 && len(w.completed) == 0 {
		return nil
	}
	if err := w.store.InsertChunks(ctx, w.batch, w.completed); err != nil {
		return err
	}
	w.written += len(w.batch)
	w.documents += len(w.completed)
	w.batch = w.batch[:0]
	w.completed = w.completed[:0]

	w.progress.Do(func() {
		logger.Info("Stored %d chunks, %d documents complete", w.written, w.documents)
	})
	return nil
}
