package event

import (
	"reflect"
	"sync/atomic"

	"github.com/google/uuid"
)

// Subscription is the one-shot handle returned by Subscribe and
// SubscribeOnce. It is bound at creation to the bus, the event type, and the
// registered handler identity, and can cancel that registration exactly once.
type Subscription struct {
	bus      *Bus
	key      reflect.Type
	ident    any
	id       string
	released atomic.Bool
}

func newSubscription(b *Bus, key reflect.Type, ident any) *Subscription {
	return &Subscription{bus: b, key: key, ident: ident, id: uuid.NewString()}
}

// Cancel removes the bound handler from the bus and reports whether this call
// performed the removal. The released flag flips with a compare-and-swap, so
// under concurrent Cancel calls exactly one wins and re-enters the bus; every
// other call returns false without touching anything. Cancelling a token that
// outlived a Reset, or whose handler was already removed through Unsubscribe,
// is a safe no-op.
func (s *Subscription) Cancel() bool {
	if !s.released.CompareAndSwap(false, true) {
		return false
	}
	return s.bus.remove(s.key, s.ident)
}

// Active reports whether the token has not been cancelled yet. It says
// nothing about the handler still being registered; Reset and Unsubscribe
// remove handlers without flipping their tokens.
func (s *Subscription) Active() bool { return !s.released.Load() }

// ID returns the token's unique id, for logs and test output.
func (s *Subscription) ID() string { return s.id }

// Type returns the event type the token is bound to.
func (s *Subscription) Type() reflect.Type { return s.key }
