// Package event provides an in-process, type-keyed publish/subscribe bus.
//
// Components exchange typed notifications through a shared *Bus without
// holding references to one another. The payload type is the subject: a
// handler subscribed for T fires on every publish of T.
//
//	type OrderPlaced struct{ ID string }
//
//	sub, err := event.Subscribe(event.Default(), event.HandlerOf(
//		func(sender any, e OrderPlaced) { fmt.Println("order", e.ID) },
//	))
//	if err != nil { ... }
//	defer sub.Cancel()
//
//	event.Publish(event.Default(), nil, OrderPlaced{ID: "ord-1"})
//
// Handlers are deduplicated by identity. A named handler type (a struct with
// a Handle method) subscribed twice with the same value fails with
// ErrDuplicateSubscription; HandlerOf manufactures a fresh identity per call,
// so independently created closures never collide even when behaviorally
// identical.
//
// Dispatch is synchronous: Publish copies the subscriber list under the bus
// lock, releases the lock, then invokes the copy in registration order on the
// caller's goroutine. Handlers are therefore free to subscribe, unsubscribe,
// cancel tokens, or publish (even the same type recursively) from inside
// their own invocation. A handler added mid-publish is first called by the
// next publish; a handler removed mid-publish may still see its turn in the
// current one. Handler panics are not recovered: they propagate to the
// publisher and abort the remaining handlers of that publish.
package event

import (
	"reflect"
	"time"

	"github.com/shashiranjanraj/sandesh/pkg/metrics"
)

// Handler consumes events of payload type T. The sender is whatever the
// publisher passed, possibly nil. Implementations on a pointer receiver keep
// a stable identity, which is what duplicate detection compares.
type Handler[T any] interface {
	Handle(sender any, event T)
}

// HandlerOf adapts a bare function to a Handler. Every call allocates a new
// identity, so the result can always be subscribed regardless of other
// registrations; keep the returned value if you need to Unsubscribe it by
// handler rather than through its token.
func HandlerOf[T any](fn func(sender any, event T)) Handler[T] {
	return &funcHandler[T]{fn: fn}
}

type funcHandler[T any] struct {
	fn func(sender any, event T)
}

func (h *funcHandler[T]) Handle(sender any, event T) { h.fn(sender, event) }

// invoke erases h into the thunk stored on the bus. Entries are only ever
// created for T's own key, so the downcast cannot fail.
func invoke[T any](h Handler[T]) func(sender, event any) {
	return func(sender, event any) {
		h.Handle(sender, event.(T))
	}
}

// ─── Operations ───────────────────────────────────────────────────────────────

// Subscribe registers h for events of type T and returns its cancellation
// token. It fails with ErrNilHandler for a nil handler and with
// ErrDuplicateSubscription when the same handler identity is already
// registered for T.
func Subscribe[T any](b *Bus, h Handler[T]) (*Subscription, error) {
	if isNil(h) {
		return nil, ErrNilHandler
	}
	key := reflect.TypeFor[T]()
	if err := b.add(key, h, invoke(h)); err != nil {
		return nil, err
	}
	return newSubscription(b, key, h), nil
}

// SubscribeOnce registers h to fire at most once. The registration is an
// adapter that cancels its own token before forwarding the first event, so no
// publish that starts afterwards can reach h again. Cancelling the returned
// token early is idempotent with the adapter's internal cancel. Two publishes
// of T already racing each other may both snapshot the adapter before it
// cancels and deliver twice; that residual window is accepted rather than
// serializing publishes against each other.
//
// The adapter carries its own identity, so the only ways to retire the
// registration early are the returned token and Reset; Unsubscribe with h
// will not find it.
func SubscribeOnce[T any](b *Bus, h Handler[T]) (*Subscription, error) {
	if isNil(h) {
		return nil, ErrNilHandler
	}
	key := reflect.TypeFor[T]()
	once := &onceHandler[T]{inner: h}
	once.sub = newSubscription(b, key, once)
	if err := b.add(key, once, invoke[T](once)); err != nil {
		return nil, err
	}
	return once.sub, nil
}

// onceHandler must be fully wired to its token before add publishes the
// entry; afterwards the token is reached only through Cancel's CAS.
type onceHandler[T any] struct {
	inner Handler[T]
	sub   *Subscription
}

func (o *onceHandler[T]) Handle(sender any, event T) {
	o.sub.Cancel()
	o.inner.Handle(sender, event)
}

// Unsubscribe removes the first registration of h for T and reports whether
// anything was removed. An unknown handler is not an error, it returns
// (false, nil); only a nil handler fails, with ErrNilHandler.
func Unsubscribe[T any](b *Bus, h Handler[T]) (bool, error) {
	if isNil(h) {
		return false, ErrNilHandler
	}
	return b.remove(reflect.TypeFor[T](), h), nil
}

// Publish delivers event to every handler subscribed for T, in registration
// order, synchronously on the caller's goroutine. sender may be nil; a nil
// event fails with ErrNilEvent before any handler runs. Publishing a type
// with no subscribers does nothing and leaves no trace in the registry.
func Publish[T any](b *Bus, sender any, event T) error {
	if isNil(event) {
		return ErrNilEvent
	}
	key := reflect.TypeFor[T]()
	name := key.String()
	metrics.RecordPublish(name)

	snap := b.snapshot(key)
	if len(snap) == 0 {
		return nil
	}

	defer metrics.ObserveDispatch(name, time.Now())
	for _, e := range snap {
		metrics.RecordInvocation(name)
		e.invoke(sender, event)
	}
	return nil
}

// Count returns how many handlers are subscribed for T.
func Count[T any](b *Bus) int {
	return b.CountOf(reflect.TypeFor[T]())
}
