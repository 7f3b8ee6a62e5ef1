// Package workerpool runs tasks on a fixed set of workers, admitting a task only while the
// resources it requests fit the free capacity.
package workerpool

import (
	"container/heap"
	"context"
	"errors"
	"sync"

	"go.trai.ch/noderun/internal/core/domain"
	"go.trai.ch/noderun/internal/core/ports"
	"golang.org/x/sync/errgroup"
)

// Option configures a Pool.
type Option func(*Pool)

// WithMetrics reports resource usage to m.
func WithMetrics(m ports.Metrics) Option {
	return func(p *Pool) { p.metrics = m }
}

// WithLogger logs task admission to l.
func WithLogger(l ports.Logger) Option {
	return func(p *Pool) { p.logger = l }
}

// Pool is a resource bounded worker pool.
// Every task declares a domain.ResInfo; cpu, io, download and test are independent capacities.
type Pool struct {
	capacity domain.ResInfo
	workers  int
	metrics  ports.Metrics
	logger   ports.Logger

	mu      sync.Mutex
	cond    *sync.Cond
	queues  map[domain.ResInfo]*taskHeap
	usage   domain.ResInfo
	pending int
	seq     uint64
	closed  bool
	errs    []error

	failed     chan struct{}
	failedOnce sync.Once

	g errgroup.Group
}

// New creates a pool with the given capacity served by workers goroutines.
func New(capacity domain.ResInfo, workers int, opts ...Option) *Pool {
	p := &Pool{
		capacity: capacity,
		workers:  max(1, workers),
		queues:   make(map[domain.ResInfo]*taskHeap),
		failed:   make(chan struct{}),
	}
	p.cond = sync.NewCond(&p.mu)
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start launches the workers. Tasks run with ctx; when ctx is done queued tasks are dropped.
func (p *Pool) Start(ctx context.Context) {
	for range p.workers {
		p.g.Go(func() error {
			p.work(ctx)
			return nil
		})
	}
	context.AfterFunc(ctx, p.drop)
}

// Add queues t. An inline task runs on the calling goroutine without admission.
func (p *Pool) Add(ctx context.Context, t ports.Task, inline bool) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.pending++

	if inline {
		p.mu.Unlock()
		p.run(ctx, t)
		p.mu.Lock()
		p.pending--
		p.cond.Broadcast()
		p.mu.Unlock()
		return
	}

	// A task asking for more than the pool has would never be admitted.
	key := clamp(t.Res(), p.capacity)
	q, ok := p.queues[key]
	if !ok {
		q = &taskHeap{}
		p.queues[key] = q
	}
	p.seq++
	heap.Push(q, &item{task: t, prio: t.Prio(), seq: p.seq})
	p.cond.Broadcast()
	p.mu.Unlock()
}

// Failed is closed when the first task returns an error.
func (p *Pool) Failed() <-chan struct{} {
	return p.failed
}

// Wait blocks until every added task finished or was dropped and returns the task errors.
func (p *Pool) Wait() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for p.pending > 0 {
		p.cond.Wait()
	}
	return errors.Join(p.errs...)
}

// Close drops queued tasks and waits for the workers to exit.
func (p *Pool) Close() error {
	p.drop()
	return p.g.Wait()
}

func (p *Pool) drop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	for key, q := range p.queues {
		p.pending -= q.Len()
		delete(p.queues, key)
	}
	p.cond.Broadcast()
}

func (p *Pool) work(ctx context.Context) {
	for {
		t, res, ok := p.take(ctx)
		if !ok {
			return
		}
		p.run(ctx, t)
		p.release(res)
	}
}

func (p *Pool) take(ctx context.Context) (ports.Task, domain.ResInfo, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for {
		if p.closed || ctx.Err() != nil {
			return nil, domain.ResInfo{}, false
		}
		if key, ok := p.best(); ok {
			it, _ := heap.Pop(p.queues[key]).(*item)
			p.usage = p.usage.Add(key)
			p.reportUsage()
			if p.logger != nil {
				p.logger.Debug("admitted task", "task", it.task.String(), "res", key.String(), "usage", p.usage.String())
			}
			return it.task, key, true
		}
		p.cond.Wait()
	}
}

// best returns the queue whose head has the highest priority among those that fit.
func (p *Pool) best() (domain.ResInfo, bool) {
	var (
		bestKey  domain.ResInfo
		bestItem *item
	)
	for key, q := range p.queues {
		if q.Len() == 0 || !key.Add(p.usage).LessOrEqual(p.capacity) {
			continue
		}
		head := (*q)[0]
		if bestItem == nil || head.before(bestItem) {
			bestKey, bestItem = key, head
		}
	}
	return bestKey, bestItem != nil
}

func (p *Pool) release(res domain.ResInfo) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.usage = p.usage.Sub(res)
	p.pending--
	p.reportUsage()
	p.cond.Broadcast()
}

func (p *Pool) run(ctx context.Context, t ports.Task) {
	if err := t.Run(ctx); err != nil {
		p.mu.Lock()
		p.errs = append(p.errs, err)
		p.mu.Unlock()
		p.failedOnce.Do(func() { close(p.failed) })
	}
}

func (p *Pool) reportUsage() {
	if p.metrics != nil {
		p.metrics.PoolUsage(p.usage)
	}
}

func clamp(r, limit domain.ResInfo) domain.ResInfo {
	return domain.ResInfo{
		CPU:      min(r.CPU, limit.CPU),
		IO:       min(r.IO, limit.IO),
		Download: min(r.Download, limit.Download),
		Test:     min(r.Test, limit.Test),
	}
}
