// Package testkit provides helpers for testing code that talks to the event
// bus: recording handlers, counting handlers, and testify-based assertions
// over what a bus delivered.
//
//	bus := testkit.NewBus(t)
//	rec := testkit.NewRecorder[OrderPlaced]()
//	testkit.RequireSubscribe(t, bus, rec)
//
//	event.Publish(bus, nil, OrderPlaced{ID: "ord-1"})
//
//	testkit.AssertReceived(t, rec, OrderPlaced{ID: "ord-1"})
package testkit

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shashiranjanraj/sandesh/pkg/collection"
	"github.com/shashiranjanraj/sandesh/pkg/event"
)

// NewBus returns a fresh bus that resets itself when the test finishes, so
// subscriptions never leak between tests.
func NewBus(t *testing.T) *event.Bus {
	t.Helper()
	b := event.New()
	t.Cleanup(b.Reset)
	return b
}

// Recorded is one delivery captured by a Recorder.
type Recorded[T any] struct {
	Sender any
	Event  T
}

// Recorder is a Handler[T] that captures every delivery in order. Safe for
// concurrent use.
type Recorder[T any] struct {
	mu  sync.Mutex
	got []Recorded[T]
}

// NewRecorder returns an empty recorder.
func NewRecorder[T any]() *Recorder[T] {
	return &Recorder[T]{}
}

// Handle implements event.Handler.
func (r *Recorder[T]) Handle(sender any, ev T) {
	r.mu.Lock()
	r.got = append(r.got, Recorded[T]{Sender: sender, Event: ev})
	r.mu.Unlock()
}

// Len returns how many deliveries have been recorded so far.
func (r *Recorder[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.got)
}

// Events returns the recorded payloads in delivery order.
func (r *Recorder[T]) Events() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return collection.Map(r.got, func(rec Recorded[T]) T { return rec.Event })
}

// Senders returns the recorded senders in delivery order.
func (r *Recorder[T]) Senders() []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return collection.Map(r.got, func(rec Recorded[T]) any { return rec.Sender })
}

// Wait polls until at least n deliveries are recorded or the timeout
// elapses, and reports whether the count was reached. Use it when publishes
// happen on other goroutines.
func (r *Recorder[T]) Wait(n int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for r.Len() < n {
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(time.Millisecond)
	}
	return true
}

// Counter is a Handler[T] that only counts invocations. Lighter than a
// Recorder for high-volume publish tests.
type Counter[T any] struct {
	n atomic.Int64
}

// NewCounter returns a zeroed counter.
func NewCounter[T any]() *Counter[T] {
	return &Counter[T]{}
}

// Handle implements event.Handler.
func (c *Counter[T]) Handle(any, T) {
	c.n.Add(1)
}

// Calls returns how many times Handle ran.
func (c *Counter[T]) Calls() int64 {
	return c.n.Load()
}
