package dispatcher

import (
	"context"
	"runtime"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
)

// PanicHandler is called when a task panics.
type PanicHandler func(recovered any, stack []byte)

// Pool runs tasks on a fixed set of worker goroutines fed by a bounded queue.
type Pool struct {
	queueSize   int
	workerCount int

	mu      sync.RWMutex // guards queue against close during Submit
	queue   chan task
	running atomic.Bool
	wg      sync.WaitGroup

	panicHandler PanicHandler

	enqueued    atomic.Uint64
	processed   atomic.Uint64
	panicked    atomic.Uint64
	dropped     atomic.Uint64
	totalTimeNs atomic.Int64
}

type task struct {
	ctx context.Context
	fn  func(ctx context.Context)
}

// PoolOption configures a Pool.
type PoolOption func(*Pool)

// WithWorkers sets the number of worker goroutines.
func WithWorkers(n int) PoolOption {
	return func(p *Pool) {
		if n > 0 {
			p.workerCount = n
		}
	}
}

// WithQueueSize sets the queue capacity.
func WithQueueSize(n int) PoolOption {
	return func(p *Pool) {
		if n > 0 {
			p.queueSize = n
		}
	}
}

// WithPanicHandler sets the handler for panics that escape a task.
func WithPanicHandler(h PanicHandler) PoolOption {
	return func(p *Pool) {
		p.panicHandler = h
	}
}

// NewPool creates a stopped pool.
func NewPool(opts ...PoolOption) *Pool {
	p := &Pool{
		queueSize:   1024,
		workerCount: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start launches the workers.
func (p *Pool) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running.Load() {
		return ErrAlreadyRunning
	}
	p.queue = make(chan task, p.queueSize)
	p.running.Store(true)

	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(p.queue)
	}
	return nil
}

// Stop closes the queue and waits for queued tasks to finish or ctx to end.
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running.Load() {
		p.mu.Unlock()
		return ErrNotRunning
	}
	p.running.Store(false)
	close(p.queue)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Submit queues fn. It never blocks: a full queue returns ErrQueueFull.
func (p *Pool) Submit(ctx context.Context, fn func(ctx context.Context)) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.running.Load() {
		return ErrNotRunning
	}
	select {
	case p.queue <- task{ctx: ctx, fn: fn}:
		p.enqueued.Add(1)
		return nil
	default:
		p.dropped.Add(1)
		return ErrQueueFull
	}
}

// SubmitWait queues fn, waiting for room in the queue until waitCtx is
// done. fn receives taskCtx. Stop is held off while SubmitWait waits; the
// workers keep draining.
func (p *Pool) SubmitWait(waitCtx, taskCtx context.Context, fn func(ctx context.Context)) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.running.Load() {
		return ErrNotRunning
	}
	select {
	case p.queue <- task{ctx: taskCtx, fn: fn}:
		p.enqueued.Add(1)
		return nil
	case <-waitCtx.Done():
		p.dropped.Add(1)
		return waitCtx.Err()
	}
}

func (p *Pool) worker(queue <-chan task) {
	defer p.wg.Done()
	for t := range queue {
		p.run(t)
	}
}

func (p *Pool) run(t task) {
	p.processed.Add(1)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			p.panicked.Add(1)
			if p.panicHandler != nil {
				stack := debug.Stack()
				func() {
					defer func() { _ = recover() }()
					p.panicHandler(r, stack)
				}()
			}
		}
		p.totalTimeNs.Add(time.Since(start).Nanoseconds())
	}()

	t.fn(t.ctx)
}

// IsRunning reports whether the workers are accepting tasks.
func (p *Pool) IsRunning() bool {
	return p.running.Load()
}

// PoolStats holds pool counters.
type PoolStats struct {
	Workers    int           `json:"workers"`
	QueueSize  int           `json:"queue_size"`
	QueueDepth int           `json:"queue_depth"`
	Enqueued   uint64        `json:"enqueued"`
	Processed  uint64        `json:"processed"`
	Panicked   uint64        `json:"panicked"`
	Dropped    uint64        `json:"dropped"`
	AvgTime    time.Duration `json:"avg_time_ns"`
}

// Stats returns the current counters.
func (p *Pool) Stats() PoolStats {
	processed := p.processed.Load()
	var avg time.Duration
	if processed > 0 {
		avg = time.Duration(p.totalTimeNs.Load() / int64(processed))
	}

	depth := 0
	p.mu.RLock()
	if p.running.Load() {
		depth = len(p.queue)
	}
	p.mu.RUnlock()

	return PoolStats{
		Workers:    p.workerCount,
		QueueSize:  p.queueSize,
		QueueDepth: depth,
		Enqueued:   p.enqueued.Load(),
		Processed:  processed,
		Panicked:   p.panicked.Load(),
		Dropped:    p.dropped.Load(),
		AvgTime:    avg,
	}
}
