// Package workerpool provides a bounded goroutine pool with backpressure.
//
// A Pool caps how many goroutines run concurrently, which keeps bursty
// callers (like a publisher fan-out hammering an event bus) from creating
// goroutines without bound. When every worker is busy and the queue is at
// capacity, Submit returns ErrPoolFull immediately so the caller can decide
// to retry, drop, or block via SubmitWait.
//
// Basic usage:
//
//	pool := workerpool.New(50)
//	defer pool.Shutdown()
//
//	err := pool.Submit(func() {
//		event.Publish(bus, nil, OrderPlaced{ID: next()})
//	})
//	if errors.Is(err, workerpool.ErrPoolFull) {
//		// backpressure: slow the producer down
//	}
package workerpool

import (
	"errors"
	"sync"
)

// ErrPoolFull is returned by Submit when all workers are busy and the task
// queue is at capacity.
var ErrPoolFull = errors.New("workerpool: pool is full")

// ErrPoolClosed is returned by Submit and SubmitWait after Shutdown.
var ErrPoolClosed = errors.New("workerpool: pool is closed")

// Pool is a bounded goroutine pool. Create one with New.
type Pool struct {
	workers int
	tasks   chan func()
	wg      sync.WaitGroup
	once    sync.Once
	closeCh chan struct{}

	mu      sync.Mutex
	closed  bool
	senders sync.WaitGroup
}

// New creates a Pool running at most workers tasks concurrently. Values
// below 1 are treated as 1. The internal queue buffers up to twice the
// worker count so short bursts are absorbed without rejection.
func New(workers int) *Pool {
	if workers < 1 {
		workers = 1
	}

	p := &Pool{
		workers: workers,
		tasks:   make(chan func(), workers*2),
		closeCh: make(chan struct{}),
	}

	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.run()
	}

	return p
}

// Submit enqueues fn for execution and returns immediately.
//   - ErrPoolFull when the queue is at capacity.
//   - ErrPoolClosed after Shutdown.
func (p *Pool) Submit(fn func()) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPoolClosed
	}

	select {
	case p.tasks <- fn:
		return nil
	default:
		return ErrPoolFull
	}
}

// SubmitWait is like Submit but blocks until a queue slot frees up or the
// pool closes.
func (p *Pool) SubmitWait(fn func()) error {
	// Register as an in-flight sender so Shutdown cannot close the task
	// channel out from under the blocking send below.
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrPoolClosed
	}
	p.senders.Add(1)
	p.mu.Unlock()
	defer p.senders.Done()

	select {
	case <-p.closeCh:
		return ErrPoolClosed
	case p.tasks <- fn:
		return nil
	}
}

// Workers returns the pool's concurrency limit.
func (p *Pool) Workers() int { return p.workers }

// Queued returns how many submitted tasks are waiting for a worker.
func (p *Pool) Queued() int { return len(p.tasks) }

// Shutdown stops accepting tasks, waits for in-flight and queued tasks to
// finish, and releases the workers. Safe to call more than once.
func (p *Pool) Shutdown() {
	p.once.Do(func() {
		p.mu.Lock()
		p.closed = true
		p.mu.Unlock()

		close(p.closeCh) // wake senders blocked in SubmitWait
		p.senders.Wait() // no send may be in flight when the channel closes
		close(p.tasks)
		p.wg.Wait()
	})
}

// run drains the task channel until it is closed. A panicking task must not
// take the worker down with it.
func (p *Pool) run() {
	defer p.wg.Done()
	for fn := range p.tasks {
		func() {
			defer func() { recover() }() //nolint:errcheck
			fn()
		}()
	}
}
