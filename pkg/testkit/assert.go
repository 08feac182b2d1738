package testkit

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/sandesh/pkg/event"
)

// RequireSubscribe subscribes h for T and fails the test immediately on
// error. The token is returned for tests that cancel it themselves.
func RequireSubscribe[T any](t *testing.T, b *event.Bus, h event.Handler[T]) *event.Subscription {
	t.Helper()
	sub, err := event.Subscribe(b, h)
	require.NoError(t, err, "subscribe for %s", reflect.TypeFor[T]())
	return sub
}

// RequireSubscribeOnce is RequireSubscribe for one-shot registrations.
func RequireSubscribeOnce[T any](t *testing.T, b *event.Bus, h event.Handler[T]) *event.Subscription {
	t.Helper()
	sub, err := event.SubscribeOnce(b, h)
	require.NoError(t, err, "subscribe-once for %s", reflect.TypeFor[T]())
	return sub
}

// AssertReceived checks that r captured exactly the given payloads, in order.
// With no payloads it checks that nothing was delivered.
func AssertReceived[T any](t *testing.T, r *Recorder[T], want ...T) bool {
	t.Helper()
	got := r.Events()
	if len(want) == 0 {
		return assert.Empty(t, got, "expected no deliveries")
	}
	return assert.Equal(t, want, got, "deliveries mismatch")
}

// AssertCount checks the live subscriber count for T.
func AssertCount[T any](t *testing.T, b *event.Bus, want int) bool {
	t.Helper()
	return assert.Equal(t, want, event.Count[T](b), "subscriber count for %s", reflect.TypeFor[T]())
}
