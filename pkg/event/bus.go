package event

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/shashiranjanraj/sandesh/pkg/collection"
	"github.com/shashiranjanraj/sandesh/pkg/logger"
	"github.com/shashiranjanraj/sandesh/pkg/metrics"
)

// entry is one registered handler: its identity (used for duplicate detection
// and removal) and the type-erased thunk that invokes it.
type entry struct {
	ident  any
	invoke func(sender, event any)
}

// Bus is the registry mapping payload types to their ordered subscriber
// lists. A single mutex guards the map; it is held only for lookups, scans,
// and snapshot copies, never while a handler runs. The zero value is not
// usable; call New.
type Bus struct {
	mu       sync.Mutex
	handlers map[reflect.Type][]entry
}

// New returns an empty bus.
func New() *Bus {
	return &Bus{handlers: make(map[reflect.Type][]entry)}
}

var defaultBus = New()

// Default returns the process-wide shared bus. It carries the same contract
// as any bus built with New.
func Default() *Bus { return defaultBus }

// ─── Locked mutations ─────────────────────────────────────────────────────────

// add appends a handler entry for key unless an entry with the same identity
// already exists.
func (b *Bus) add(key reflect.Type, ident any, invoke func(sender, event any)) error {
	b.mu.Lock()
	list := b.handlers[key]
	for _, e := range list {
		if sameHandler(e.ident, ident) {
			b.mu.Unlock()
			metrics.RecordDuplicate(key.String())
			logger.Debug("event: duplicate subscription rejected", "event", key.String())
			return fmt.Errorf("%w for %s", ErrDuplicateSubscription, key)
		}
	}
	b.handlers[key] = append(list, entry{ident: ident, invoke: invoke})
	b.mu.Unlock()

	metrics.AddSubscription(key.String())
	return nil
}

// remove deletes the first entry for key matching ident. The key itself is
// deleted when its list empties, so the map never holds an empty list.
func (b *Bus) remove(key reflect.Type, ident any) bool {
	b.mu.Lock()
	list, ok := b.handlers[key]
	if !ok {
		b.mu.Unlock()
		return false
	}

	idx := -1
	for i, e := range list {
		if sameHandler(e.ident, ident) {
			idx = i
			break
		}
	}
	if idx < 0 {
		b.mu.Unlock()
		return false
	}

	list = append(list[:idx], list[idx+1:]...)
	if len(list) == 0 {
		delete(b.handlers, key)
	} else {
		b.handlers[key] = list
	}
	b.mu.Unlock()

	metrics.RemoveSubscription(key.String())
	return true
}

// snapshot copies the current subscriber list for key, or returns nil when
// the key has no subscribers. Publish iterates the copy with no lock held.
func (b *Bus) snapshot(key reflect.Type) []entry {
	b.mu.Lock()
	list := b.handlers[key]
	if len(list) == 0 {
		b.mu.Unlock()
		return nil
	}
	snap := make([]entry, len(list))
	copy(snap, list)
	b.mu.Unlock()
	return snap
}

// CountOf returns the subscriber count for an event type already in hand as
// a reflect.Type, such as one returned by Types. Count is the typed form.
func (b *Bus) CountOf(t reflect.Type) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handlers[t])
}

// ─── Introspection and lifecycle ──────────────────────────────────────────────

// Reset removes every subscription for every event type (useful in tests).
// Outstanding tokens turn stale: cancelling one afterwards finds nothing to
// remove and reports false.
func (b *Bus) Reset() {
	b.mu.Lock()
	types := len(b.handlers)
	total := 0
	for _, list := range b.handlers {
		total += len(list)
	}
	b.handlers = make(map[reflect.Type][]entry)
	b.mu.Unlock()

	metrics.ResetSubscriptions()
	logger.Debug("event: registry reset", "types", types, "subscriptions", total)
}

// Total returns the number of subscriptions across all event types.
func (b *Bus) Total() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, list := range b.handlers {
		n += len(list)
	}
	return n
}

// Types returns the event types that currently have at least one subscriber,
// sorted by type name. Because empty lists are never kept, every returned
// type has a positive Count.
func (b *Bus) Types() []reflect.Type {
	b.mu.Lock()
	keys := make([]reflect.Type, 0, len(b.handlers))
	for key := range b.handlers {
		keys = append(keys, key)
	}
	b.mu.Unlock()

	collection.SortBy(keys, func(x, y reflect.Type) bool { return x.String() < y.String() })
	return keys
}

// ─── Identity ─────────────────────────────────────────────────────────────────

// sameHandler reports whether two registered handler values share one
// identity: equal interface values, meaning the same dynamic type and, for
// method handlers, the same receiver. Values of non-comparable dynamic types
// can never be proven identical and always compare distinct; comparing them
// directly would panic.
func sameHandler(a, b any) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta == nil || ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

// isNil reports whether v is nil, either as a bare interface or as a typed
// nil pointer boxed in one.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
		return rv.IsNil()
	default:
		return false
	}
}
