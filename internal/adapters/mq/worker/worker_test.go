package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	queue "github.com/okian/certrep/internal/adapters/mq/queue"
	worker "github.com/okian/certrep/internal/adapters/mq/worker"
	"github.com/okian/certrep/internal/domain/analysis"
	model "github.com/okian/certrep/internal/domain/model"
	"github.com/okian/certrep/internal/domain/scoring"
	logging "github.com/okian/certrep/pkg/logger"
)

// Mock implementations for testing.
type mockQueue struct {
	ch   chan model.Submission
	once sync.Once
}

func newMockQueue() *mockQueue {
	return &mockQueue{ch: make(chan model.Submission, 16)}
}

func (mq *mockQueue) Dequeue(context.Context) <-chan model.Submission { return mq.ch }

func (mq *mockQueue) Close() error {
	mq.once.Do(func() { close(mq.ch) })
	return nil
}

func (mq *mockQueue) add(s model.Submission) { //nolint:gocritic // hugeParam: test helper
	mq.ch <- s
}

type mockSaver struct {
	mu     sync.Mutex
	saved  map[string]analysis.Result
	errors map[string]error
}

func newMockSaver() *mockSaver {
	return &mockSaver{
		saved:  make(map[string]analysis.Result),
		errors: make(map[string]error),
	}
}

func (ms *mockSaver) Save(_ context.Context, r analysis.Result) error { //nolint:gocritic // hugeParam: mirrors Saver
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if err, ok := ms.errors[r.ID]; ok {
		return err
	}
	ms.saved[r.ID] = r
	return nil
}

func (ms *mockSaver) setError(id string, err error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.errors[id] = err
}

func (ms *mockSaver) get(id string) (analysis.Result, bool) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	r, ok := ms.saved[id]
	return r, ok
}

func (ms *mockSaver) count() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return len(ms.saved)
}

// lengthAnalyzer scores a document by its text length so results are predictable.
var lengthAnalyzer = worker.AnalyzerFunc(func(doc analysis.Document) analysis.Result {
	score := float64(len(doc.Text))
	return analysis.Result{
		ID:     doc.ID,
		Source: doc.Source,
		Result: scoring.Result{Score: score, Tier: scoring.TierFor(score)},
	}
})

func eventually(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a new InMemoryWorker", t, func() {
		_ = logging.Init()

		q := newMockQueue()
		saver := newMockSaver()

		convey.Convey("When creating a worker with custom options", func() {
			w := worker.NewInMemoryWorker(q, lengthAnalyzer, saver,
				worker.WithName("test-worker"),
				worker.WithLogger(logging.Nop()),
			)

			convey.Convey("Then it should be created successfully", func() {
				convey.So(w, convey.ShouldNotBeNil)
				convey.So(w.Processed(), convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When running a worker", func() {
			w := worker.NewInMemoryWorker(q, lengthAnalyzer, saver)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			go w.Run(ctx)
			convey.Reset(func() { _ = w.Shutdown(context.Background()) })

			convey.Convey("And a submission arrives", func() {
				q.add(model.Submission{ID: "cert-1", Source: "a.txt", Text: "forty two", SubmittedAt: time.Now()})

				convey.Convey("Then the analysis should be stored", func() {
					convey.So(eventually(func() bool { return saver.count() == 1 }), convey.ShouldBeTrue)
					r, ok := saver.get("cert-1")
					convey.So(ok, convey.ShouldBeTrue)
					convey.So(r.Source, convey.ShouldEqual, "a.txt")
					convey.So(r.Result.Score, convey.ShouldEqual, 9.0)
					convey.So(eventually(func() bool { return w.Processed() == 1 }), convey.ShouldBeTrue)
				})
			})

			convey.Convey("And storing fails", func() {
				saver.setError("cert-bad", errors.New("disk full"))
				q.add(model.Submission{ID: "cert-bad", Text: "x"})
				q.add(model.Submission{ID: "cert-ok", Text: "xy"})

				convey.Convey("Then the worker should keep going", func() {
					convey.So(eventually(func() bool { _, ok := saver.get("cert-ok"); return ok }), convey.ShouldBeTrue)
					convey.So(eventually(func() bool { return w.Failed() == 1 }), convey.ShouldBeTrue)
					_, stored := saver.get("cert-bad")
					convey.So(stored, convey.ShouldBeFalse)
				})
			})

			convey.Convey("And its context is cancelled", func() {
				cancel()
				q.add(model.Submission{ID: "after-cancel", Text: "still here"})

				convey.Convey("Then queued submissions should still be processed", func() {
					convey.So(eventually(func() bool { _, ok := saver.get("after-cancel"); return ok }), convey.ShouldBeTrue)
				})
			})

			convey.Convey("And it is shut down", func() {
				err := w.Shutdown(context.Background())

				convey.Convey("Then it should stop without error", func() {
					convey.So(err, convey.ShouldBeNil)
					convey.So(w.Shutdown(context.Background()), convey.ShouldBeNil)
				})
			})
		})

		convey.Convey("When the queue channel is closed", func() {
			w := worker.NewInMemoryWorker(q, lengthAnalyzer, saver)
			done := make(chan struct{})
			go func() {
				w.Run(context.Background())
				close(done)
			}()
			_ = q.Close()

			convey.Convey("Then Run should return", func() {
				select {
				case <-done:
					convey.So(true, convey.ShouldBeTrue)
				case <-time.After(time.Second):
					convey.So("run did not return", convey.ShouldBeEmpty)
				}
			})
		})

		convey.Convey("When shutdown times out", func() {
			w := worker.NewInMemoryWorker(q, lengthAnalyzer, saver)
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			convey.Convey("Then the context error should be returned", func() {
				err := w.Shutdown(ctx)
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, context.Canceled), convey.ShouldBeTrue)
			})
		})
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a worker pool over a real queue", t, func() {
		_ = logging.Init()

		q := queue.NewInMemoryQueue(queue.WithCapacity(100))
		saver := newMockSaver()
		pool := worker.NewPool(4, q, lengthAnalyzer, saver)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		convey.So(pool.Size(), convey.ShouldEqual, 4)
		pool.Start(ctx)

		convey.Convey("When many submissions are enqueued", func() {
			for i := 0; i < 50; i++ {
				err := q.Enqueue(ctx, model.Submission{ID: fmt.Sprintf("cert-%d", i), Text: "abc"})
				convey.So(err, convey.ShouldBeNil)
			}

			convey.Convey("Then every one should be analyzed and stored", func() {
				convey.So(eventually(func() bool { return saver.count() == 50 }), convey.ShouldBeTrue)
				convey.So(eventually(func() bool { return pool.Processed() == 50 }), convey.ShouldBeTrue)
				convey.So(pool.Failed(), convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When the pool is shut down", func() {
			_ = q.Enqueue(ctx, model.Submission{ID: "last", Text: "tail"})
			err := pool.Shutdown(context.Background())

			convey.Convey("Then the queue should be closed and drained", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
				_, ok := saver.get("last")
				convey.So(ok, convey.ShouldBeTrue)
			})
		})
	})

	convey.Convey("Given a pool whose start context is cancelled", t, func() {
		_ = logging.Init()

		q := queue.NewInMemoryQueue(queue.WithCapacity(500))
		saver := newMockSaver()
		pool := worker.NewPool(1, q, lengthAnalyzer, saver)
		ctx, cancel := context.WithCancel(context.Background())
		pool.Start(ctx)

		for i := 0; i < 200; i++ {
			convey.So(q.Enqueue(context.Background(), model.Submission{ID: fmt.Sprintf("cert-%d", i), Text: "abc"}), convey.ShouldBeNil)
		}
		cancel()

		convey.Convey("When the pool is shut down", func() {
			err := pool.Shutdown(context.Background())

			convey.Convey("Then every queued submission should be stored", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(saver.count(), convey.ShouldEqual, 200)
				convey.So(pool.Processed(), convey.ShouldEqual, 200)
			})
		})
	})

	convey.Convey("Given a non-positive worker count", t, func() {
		_ = logging.Init()
		pool := worker.NewPool(0, newMockQueue(), lengthAnalyzer, newMockSaver())

		convey.Convey("Then a CPU based default should be used", func() {
			convey.So(pool.Size(), convey.ShouldBeGreaterThan, 0)
		})
	})
}
