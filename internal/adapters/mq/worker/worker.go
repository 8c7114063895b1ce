// Package worker drains the submission queue, analyzes each certificate and
// stores the result.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/okian/certrep/internal/domain/analysis"
	"github.com/okian/certrep/internal/domain/model"
	"github.com/okian/certrep/pkg/logger"
	"github.com/okian/certrep/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // analysis is CPU bound
	poolShutdownTimeout     = 30 * time.Second
)

// Analyzer turns a document into its scored result.
type Analyzer interface {
	Analyze(doc analysis.Document) analysis.Result
}

// AnalyzerFunc adapts a function to Analyzer.
type AnalyzerFunc func(doc analysis.Document) analysis.Result

// Analyze calls f(doc).
func (f AnalyzerFunc) Analyze(doc analysis.Document) analysis.Result { return f(doc) }

// Saver persists analysis results.
type Saver interface {
	Save(ctx context.Context, r analysis.Result) error
}

// Queue defines how workers receive submissions.
type Queue interface {
	Dequeue(ctx context.Context) <-chan model.Submission
}

// Worker processes submissions using the provided interfaces.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown stops the worker after the submission in flight.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue    Queue
	analyzer Analyzer
	saver    Saver
	name     string

	processed *atomic.Int64
	failed    *atomic.Int64

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, analyzer Analyzer, saver Saver, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     queue,
		analyzer:  analyzer,
		saver:     saver,
		name:      "worker",
		processed: new(atomic.Int64),
		failed:    new(atomic.Int64),
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.logger == nil {
		w.logger = logger.Get().Named("worker")
	}
	if w.name != "worker" {
		w.logger = w.logger.With(logger.String("worker", w.name))
	}

	return w
}

// Run processes submissions until the queue is closed or Shutdown is called.
// Cancelling ctx does not stop it: accepted submissions are drained by
// closing the queue.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	ctx = context.WithoutCancel(ctx)
	submissions := w.queue.Dequeue(ctx)
	for {
		select {
		case <-w.shutdown:
			return
		case s, ok := <-submissions:
			if !ok {
				return
			}
			if err := w.process(ctx, s); err != nil {
				w.logger.Error(ctx, "error processing submission", logger.Error(err))
			}
		}
	}
}

// Shutdown signals the worker to stop and waits for it.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	select {
	case <-w.shutdown:
	default:
		close(w.shutdown)
	}

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Processed returns how many submissions this worker stored.
func (w *InMemoryWorker) Processed() int64 { return w.processed.Load() }

// Failed returns how many submissions this worker could not store.
func (w *InMemoryWorker) Failed() int64 { return w.failed.Load() }

func (w *InMemoryWorker) process(ctx context.Context, s model.Submission) error { //nolint:gocritic // hugeParam: Submission is received by value from the channel
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	r := w.analyzer.Analyze(s.Document())
	if err := w.saver.Save(ctx, r); err != nil {
		w.failed.Add(1)
		metrics.RecordWorkerError("save")
		metrics.RecordErrorByComponent("worker", "save_error")
		return fmt.Errorf("failed to store analysis %s: %w", s.ID, err)
	}

	w.processed.Add(1)
	w.logger.Debug(ctx, "submission analyzed",
		logger.String("id", s.ID),
		logger.Float64("score", r.Result.Score),
		logger.Int("tier", r.Result.Tier),
	)
	return nil
}

// Pool manages multiple workers over one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue

	processed atomic.Int64
	failed    atomic.Int64

	logger logger.Logger
}

// NewPool creates workerCount workers. A count below 1 picks a default
// derived from the number of CPUs.
func NewPool(workerCount int, queue Queue, analyzer Analyzer, saver Saver, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   queue,
		logger:  logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		wopts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		wopts = append(wopts, withCounters(&p.processed, &p.failed))
		p.workers[i] = NewInMemoryWorker(queue, analyzer, saver, wopts...)
	}

	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Processed returns the number of submissions stored by all workers.
func (p *Pool) Processed() int64 { return p.processed.Load() }

// Failed returns the number of submissions that could not be stored.
func (p *Pool) Failed() int64 { return p.failed.Load() }

// Start starts all workers in the pool. They keep running after ctx is
// cancelled; Shutdown drains them.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown closes the queue and waits for the workers to drain it.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut bool
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			timedOut = true
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}

	metrics.UpdateWorkerCount(0)
	if timedOut {
		return fmt.Errorf("worker pool shutdown: %w", shutdownCtx.Err())
	}
	return nil
}
