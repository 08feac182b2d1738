package event_test

import (
	"reflect"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shashiranjanraj/sandesh/pkg/event"
)

func TestCancel_RemovesExactlyOnce(t *testing.T) {
	bus := event.New()

	sub, err := event.Subscribe(bus, &ledger{})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	if !sub.Cancel() {
		t.Error("expected the first cancel to remove the subscription")
	}
	if got := event.Count[orderPlaced](bus); got != 0 {
		t.Errorf("expected count 0 after cancel, got %d", got)
	}

	if sub.Cancel() {
		t.Error("expected the second cancel to be a no-op")
	}
	if got := event.Count[orderPlaced](bus); got != 0 {
		t.Errorf("expected the no-op cancel to leave count at 0, got %d", got)
	}
}

func TestCancel_ConcurrentSingleWinner(t *testing.T) {
	bus := event.New()

	sub, err := event.Subscribe(bus, &ledger{})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	const goroutines = 32
	var wins atomic.Int32
	var wg sync.WaitGroup

	start := make(chan struct{})
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if sub.Cancel() {
				wins.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	if got := wins.Load(); got != 1 {
		t.Errorf("expected exactly one winning cancel, got %d", got)
	}
	if got := event.Count[orderPlaced](bus); got != 0 {
		t.Errorf("expected count 0 after the concurrent cancels, got %d", got)
	}
}

func TestCancel_StaleAfterReset(t *testing.T) {
	bus := event.New()

	sub, err := event.Subscribe(bus, &ledger{})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	bus.Reset()

	if sub.Cancel() {
		t.Error("expected a token orphaned by Reset to find nothing to remove")
	}
}

func TestCancel_AfterUnsubscribeByHandler(t *testing.T) {
	bus := event.New()

	l := &ledger{}
	sub, err := event.Subscribe(bus, l)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	removed, err := event.Unsubscribe(bus, l)
	if err != nil || !removed {
		t.Fatalf("expected Unsubscribe to remove the handler, got (%v, %v)", removed, err)
	}

	if sub.Cancel() {
		t.Error("expected the token to find its handler already removed")
	}
}

func TestSubscription_Metadata(t *testing.T) {
	bus := event.New()

	first, err := event.Subscribe(bus, &ledger{})
	if err != nil {
		t.Fatalf("subscribe first: %v", err)
	}
	second, err := event.Subscribe(bus, &ledger{})
	if err != nil {
		t.Fatalf("subscribe second: %v", err)
	}

	if first.ID() == "" || second.ID() == "" {
		t.Error("expected every token to carry an id")
	}
	if first.ID() == second.ID() {
		t.Errorf("expected distinct token ids, both were %s", first.ID())
	}
	if got := first.Type(); got != reflect.TypeFor[orderPlaced]() {
		t.Errorf("expected the token bound to orderPlaced, got %s", got)
	}

	if !first.Active() {
		t.Error("expected a fresh token to be active")
	}
	first.Cancel()
	if first.Active() {
		t.Error("expected a cancelled token to be inactive")
	}
}
