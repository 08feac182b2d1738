package event

import "errors"

// ErrNilHandler is returned by Subscribe, SubscribeOnce, and Unsubscribe when
// the handler is nil.
var ErrNilHandler = errors.New("event: nil handler")

// ErrNilEvent is returned by Publish when the event payload is nil.
var ErrNilEvent = errors.New("event: nil event")

// ErrDuplicateSubscription is returned by Subscribe when the same handler
// identity is already registered for the event type. The returned error wraps
// this sentinel and names the type; match it with errors.Is.
var ErrDuplicateSubscription = errors.New("event: duplicate subscription")
