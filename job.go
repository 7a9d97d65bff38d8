package ember

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Counter is decremented by every job in a batch as it completes;
// WaitForCounter blocks until it reaches zero (§5's dispatch_batch /
// wait_for_counter contract).
type Counter struct {
	remaining int64
	done      chan struct{}
	once      sync.Once
}

func newCounter(n int) *Counter {
	c := &Counter{remaining: int64(n), done: make(chan struct{})}
	if n == 0 {
		close(c.done)
	}
	return c
}

func (c *Counter) decrement() {
	if atomic.AddInt64(&c.remaining, -1) == 0 {
		c.once.Do(func() { close(c.done) })
	}
}

// JobSystem schedules batches of independent work across a bounded worker
// pool. The ECS object-AABB update (ObjectUpdateSystem) runs through it
// (§5) — an embarrassingly parallel, per-item workload with no shared
// mutable state between invocations. Per-view culling in render/graph
// runs sequentially and does not use it.
type JobSystem struct {
	sem *semaphore.Weighted
}

// NewJobSystem caps concurrent jobs at workers (0 defaults to
// runtime.NumCPU()).
func NewJobSystem(workers int) *JobSystem {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &JobSystem{sem: semaphore.NewWeighted(int64(workers))}
}

// DispatchBatch schedules n invocations of task(invocation) across the
// worker pool and returns a Counter the caller can wait on. batchSize
// invocations are grouped per goroutine to amortize scheduling overhead
// for small per-item workloads; batchSize <= 0 means one goroutine per
// invocation.
func (j *JobSystem) DispatchBatch(n, batchSize int, task func(invocation int)) *Counter {
	if n <= 0 {
		return newCounter(0)
	}
	if batchSize <= 0 {
		batchSize = 1
	}

	batches := (n + batchSize - 1) / batchSize
	counter := newCounter(batches)

	for b := 0; b < batches; b++ {
		start := b * batchSize
		end := start + batchSize
		if end > n {
			end = n
		}
		go func(start, end int) {
			j.sem.Acquire(context.Background(), 1)
			defer j.sem.Release(1)
			for i := start; i < end; i++ {
				task(i)
			}
			counter.decrement()
		}(start, end)
	}
	return counter
}

// WaitForCounter blocks until every job in the batch that produced
// counter has decremented it to zero.
func WaitForCounter(counter *Counter) {
	<-counter.done
}

// Parallel runs n independent, possibly-failing tasks across the pool and
// returns the first error encountered, via errgroup — used where a stage
// needs to propagate a single job's failure (e.g. a skinning dispatch
// that hit a GPU submission error) rather than just a completion signal.
func (j *JobSystem) Parallel(n int, task func(i int) error) error {
	g, ctx := errgroup.WithContext(context.Background())
	_ = ctx
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			if err := j.sem.Acquire(context.Background(), 1); err != nil {
				return err
			}
			defer j.sem.Release(1)
			return task(i)
		})
	}
	return g.Wait()
}
