package taskpool

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool is a bounded MPMC work-stealing task pool: N worker goroutines
// drain a lock-free ring, and Wait callers help drain it too rather than
// sit idle. It's the Go realization of
// original_source/include/mpmc_tpool.h's tpool_t.
type Pool struct {
	q       *ring
	workers int

	mu     sync.Mutex
	cvWork *sync.Cond // workers park here until queued > 0 or stop
	cvDone *sync.Cond // Wait parks here until inFlight == 0

	queued   atomic.Int64
	inFlight atomic.Int64
	stop     atomic.Bool

	wg sync.WaitGroup
}

// Option configures a Pool at construction.
type Option func(*config)

type config struct {
	workers  int
	capacity int
}

// WithWorkers sets the number of worker goroutines. Defaults to
// runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option {
	return func(c *config) { c.workers = n }
}

// WithCapacity sets the ring's fixed slot count. Defaults to 1024.
func WithCapacity(n int) Option {
	return func(c *config) { c.capacity = n }
}

// New starts a Pool and its worker goroutines.
func New(opts ...Option) *Pool {
	c := config{workers: runtime.GOMAXPROCS(0), capacity: 1024}
	for _, o := range opts {
		o(&c)
	}
	if c.workers <= 0 {
		c.workers = 1
	}

	p := &Pool{q: newRing(c.capacity), workers: c.workers}
	p.cvWork = sync.NewCond(&p.mu)
	p.cvDone = sync.NewCond(&p.mu)

	p.wg.Add(c.workers)
	for i := 0; i < c.workers; i++ {
		go p.workerLoop()
	}
	return p
}

// Go submits job to the pool. If the ring is full, job runs synchronously
// on the calling goroutine instead, with in_flight accounting balanced
// the same as a dequeued job. Panics if job is nil — unlike the header's
// "null callback is ignored", Go has no ambiguous null-function-pointer
// state worth tolerating silently; a nil Job is a programming error at
// the call site.
func (p *Pool) Go(job Job) {
	if job == nil {
		panic("taskpool: nil job")
	}
	if p.stop.Load() {
		return
	}

	// Reserve the completion slot before enqueuing, so a concurrent Wait
	// never observes inFlight==0 spuriously between submit and dequeue.
	p.inFlight.Add(1)

	if p.q.tryEnqueue(job) {
		// Wake workers progressively as the queue fills, rather than
		// broadcasting on every submit: at most one signal per enqueue,
		// until roughly p.workers wakeups are outstanding.
		prev := p.queued.Add(1) - 1
		if prev < int64(p.workers) {
			p.mu.Lock()
			p.cvWork.Signal()
			p.mu.Unlock()
		}
		return
	}

	// Ring appears full: run inline, still through the same completion
	// bookkeeping as a dequeued job.
	job()
	p.jobDone()
}

// Wait blocks until every job submitted before this call (and any
// submitted concurrently) has completed. While waiting, the calling
// goroutine helps drain the ring rather than sleeping immediately.
func (p *Pool) Wait() {
	for {
		if p.inFlight.Load() == 0 {
			return
		}
		if p.queued.Load() > 0 {
			if job, ok := p.q.tryDequeue(); ok {
				p.queued.Add(-1)
				job()
				p.jobDone()
				continue
			}
		}

		p.mu.Lock()
		for p.inFlight.Load() != 0 && p.queued.Load() == 0 {
			p.cvDone.Wait()
		}
		p.mu.Unlock()
	}
}

// Close stops all workers after the current drain completes, and waits
// for them to exit. A closed Pool must not be used again.
func (p *Pool) Close() {
	p.Wait()
	p.stop.Store(true)
	p.mu.Lock()
	p.cvWork.Broadcast()
	p.mu.Unlock()
	p.wg.Wait()
}

func (p *Pool) jobDone() {
	if p.inFlight.Add(-1) == 0 {
		p.mu.Lock()
		p.cvDone.Broadcast()
		p.mu.Unlock()
	}
}

func (p *Pool) workerLoop() {
	defer p.wg.Done()
	for {
		if p.queued.Load() != 0 {
			if job, ok := p.q.tryDequeue(); ok {
				p.queued.Add(-1)
				job()
				p.jobDone()
				continue
			}
		}

		if p.stop.Load() && p.inFlight.Load() == 0 {
			return
		}

		p.mu.Lock()
		for !p.stop.Load() && p.queued.Load() == 0 {
			p.cvWork.Wait()
		}
		p.mu.Unlock()
	}
}
