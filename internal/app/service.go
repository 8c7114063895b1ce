// Package service wires the analyzer, queue, worker pool and ranked store
// into the operations behind the HTTP API and the CLI.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/certrep/internal/adapters/mq/queue"
	"github.com/okian/certrep/internal/adapters/mq/worker"
	"github.com/okian/certrep/internal/adapters/repository"
	"github.com/okian/certrep/internal/domain/analysis"
	"github.com/okian/certrep/internal/domain/dedupe"
	"github.com/okian/certrep/internal/domain/model"
	"github.com/okian/certrep/internal/domain/refdata"
	"github.com/okian/certrep/internal/domain/types"
	"github.com/okian/certrep/pkg/logger"
	"github.com/okian/certrep/pkg/metrics"
)

// Service implements the API dependencies for certificate analysis.
type Service struct {
	mu sync.RWMutex

	// Core components
	store   *repository.TreapStore
	deduper dedupe.Deduper
	queue   *queue.InMemoryQueue
	pool    *worker.Pool

	// The engine is swapped whole on reload; each analysis loads it once.
	engine atomic.Pointer[analysis.Engine]

	// Configuration
	workerCount   int
	queueSize     int
	dedupeSize    int
	snippetLength int
	tables        *refdata.Tables
	refPath       string
	newID         func() string
	now           func() time.Time

	// State
	started   bool
	startedAt time.Time
	reloads   atomic.Int64

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:   runtime.NumCPU(),
		queueSize:     10_000,
		dedupeSize:    dedupe.DefaultMaxSize,
		snippetLength: analysis.DefaultSnippetLength,
		newID:         uuid.NewString,
		now:           time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start loads reference data and starts the worker pool. The workers outlive
// ctx so that Stop can drain accepted submissions.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting certificate service...")

	tables, err := s.initialTables()
	if err != nil {
		return fmt.Errorf("load reference data: %w", err)
	}
	s.installTables(tables)

	s.store = repository.NewTreapStore(ctx)
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.queue, worker.AnalyzerFunc(s.analyze), s.store,
		worker.WithLogger(s.logger.Named("worker")),
	)
	s.pool.Start(ctx)

	s.started = true
	s.startedAt = s.now()
	stats := tables.Stats()
	s.logger.Info(ctx, "certificate service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("issuers", stats.Issuers),
		logger.Int("skills", stats.Skills),
	)

	return nil
}

// Stop drains the queue, stops the workers and closes the store.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	s.logger.Info(ctx, "stopping certificate service...")

	var shutdownErr error
	if err := s.pool.Shutdown(ctx); err != nil {
		shutdownErr = fmt.Errorf("stop workers: %w", err)
		s.logger.Warn(ctx, "worker pool did not drain", logger.Error(err))
	}
	_ = s.store.Close()

	s.started = false
	s.logger.Info(ctx, "certificate service stopped",
		logger.Int("certificates", s.store.Count(ctx)),
	)
	return shutdownErr
}

// Submit queues a certificate for analysis. A submission without an id gets a
// generated one. Repeated ids are acknowledged as duplicates and not queued.
func (s *Service) Submit(ctx context.Context, sub model.Submission) (model.Receipt, error) { //nolint:gocritic // hugeParam: value semantics
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return model.Receipt{}, ErrNotStarted
	}
	if sub.ID == "" {
		sub.ID = s.newID()
	}
	if sub.SubmittedAt.IsZero() {
		sub.SubmittedAt = s.now()
	}

	if s.deduper.SeenAndRecord(ctx, sub.ID) {
		metrics.RecordSubmissionDuplicate()
		s.logger.Debug(ctx, "duplicate submission", logger.String("id", sub.ID))
		return model.Receipt{ID: sub.ID, Status: model.StatusDuplicate, Duplicate: true}, nil
	}

	if err := s.queue.Enqueue(ctx, sub); err != nil {
		// Let the client retry the same id.
		s.deduper.Unrecord(ctx, sub.ID)
		return model.Receipt{}, fmt.Errorf("enqueue %s: %w", sub.ID, err)
	}

	return model.Receipt{ID: sub.ID, Status: model.StatusAccepted}, nil
}

// AnalyzeNow analyzes doc synchronously and stores the result.
func (s *Service) AnalyzeNow(ctx context.Context, doc analysis.Document) (analysis.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return analysis.Result{}, ErrNotStarted
	}
	if doc.ID == "" {
		doc.ID = s.newID()
	}

	r := s.analyze(doc)
	if err := s.store.Save(ctx, r); err != nil {
		return analysis.Result{}, fmt.Errorf("store analysis %s: %w", doc.ID, err)
	}
	return r, nil
}

// analyze runs the current engine and records outcome metrics.
func (s *Service) analyze(doc analysis.Document) analysis.Result {
	start := time.Now()
	r := s.engine.Load().Analyze(doc)
	metrics.RecordAnalysisLatency(float64(time.Since(start).Microseconds()) / 1000)
	metrics.RecordAnalysis(r.Result.Tier, r.Features.VerificationReason.String(), r.Resolution.Strategy.String())
	return r
}

// Get returns a stored analysis with its rank.
func (s *Service) Get(ctx context.Context, id string) (types.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return types.Certificate{}, ErrNotStarted
	}
	return s.store.Get(ctx, id)
}

// TopN returns the best n certificates.
func (s *Service) TopN(ctx context.Context, n int) ([]types.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return nil, ErrNotStarted
	}
	return s.store.TopN(ctx, n)
}

// ReloadReferenceData loads tables from path, or from the configured path
// when path is empty, and swaps them in. The previous tables stay active
// when loading fails.
func (s *Service) ReloadReferenceData(ctx context.Context, path string) error {
	s.mu.RLock()
	if path == "" {
		path = s.refPath
	}
	l := s.logger
	s.mu.RUnlock()

	if l == nil {
		l = logger.Get().Named("service")
	}
	if path == "" {
		metrics.RecordReferenceDataReload(false)
		return ErrNoReferenceDataPath
	}

	tables, err := refdata.LoadFile(path)
	if err != nil {
		metrics.RecordReferenceDataReload(false)
		metrics.RecordErrorByComponent("service", "reference_reload")
		l.Error(ctx, "reference data reload failed", logger.String("path", path), logger.Error(err))
		return fmt.Errorf("%w: %w", ErrReload, err)
	}

	s.mu.Lock()
	s.installTables(tables)
	s.mu.Unlock()

	s.reloads.Add(1)
	metrics.RecordReferenceDataReload(true)
	stats := tables.Stats()
	l.Info(ctx, "reference data reloaded",
		logger.String("path", path),
		logger.Int("issuers", stats.Issuers),
		logger.Int("aliases", stats.Aliases),
		logger.Int("skills", stats.Skills),
	)
	return nil
}

// ReferenceData returns the tables currently used for analysis, or nil
// before Start.
func (s *Service) ReferenceData() *refdata.Tables {
	if e := s.engine.Load(); e != nil {
		return e.Tables()
	}
	return nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"started":           s.started,
		"worker_count":      s.workerCount,
		"queue_capacity":    s.queueSize,
		"dedupe_capacity":   s.dedupeSize,
		"reference_reloads": s.reloads.Load(),
	}

	if e := s.engine.Load(); e != nil {
		ref := e.Tables().Stats()
		stats["reference_data"] = map[string]int{
			"issuers": ref.Issuers,
			"aliases": ref.Aliases,
			"skills":  ref.Skills,
		}
	}

	// Counters of the last run stay readable after Stop.
	if s.store != nil {
		certificates := s.store.Count(ctx)
		stats["certificates"] = certificates
		stats["processed"] = s.pool.Processed()
		stats["failed"] = s.pool.Failed()
		metrics.UpdateCertificatesRanked(certificates)
	}

	if s.started {
		queueLen := s.queue.Len(ctx)
		stats["queue_length"] = queueLen
		stats["dedupe_entries"] = s.deduper.Size()
		stats["uptime_seconds"] = int64(s.now().Sub(s.startedAt).Seconds())
		metrics.UpdateQueueSize(queueLen)
	}

	return stats
}

func (s *Service) initialTables() (*refdata.Tables, error) {
	switch {
	case s.tables != nil:
		return s.tables, nil
	case s.refPath != "":
		return refdata.LoadFile(s.refPath)
	default:
		return refdata.Default(), nil
	}
}

// installTables builds an engine over t and publishes it. Callers hold mu.
func (s *Service) installTables(t *refdata.Tables) {
	s.tables = t
	s.engine.Store(analysis.NewEngine(t,
		analysis.WithSnippetLength(s.snippetLength),
		analysis.WithClock(s.now),
	))
	stats := t.Stats()
	metrics.UpdateReferenceDataEntries(stats.Issuers, stats.Aliases, stats.Skills)
}
