// Package demo wires the event bus into a small order pipeline so the
// sandesh CLI has real publishers and subscribers to run. It is internal:
// nothing here is part of the library surface.
package demo

import (
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/shashiranjanraj/sandesh/pkg/collection"
	"github.com/shashiranjanraj/sandesh/pkg/event"
	"github.com/shashiranjanraj/sandesh/pkg/logger"
)

// ─── Demo payload types ───────────────────────────────────────────────────────

// OrderPlaced is published by the storefront when a customer checks out.
type OrderPlaced struct {
	ID     string
	Amount float64
}

// PaymentCaptured is published by billing from inside its OrderPlaced
// handler, which makes the pipeline exercise re-entrant publishing.
type PaymentCaptured struct {
	OrderID string
	Amount  float64
}

// inventoryReserver is a named handler type: its identity is the pointer, so
// subscribing the same reserver twice is rejected as a duplicate.
type inventoryReserver struct {
	log *slog.Logger
}

func (h *inventoryReserver) Handle(sender any, e OrderPlaced) {
	h.log.Info("inventory reserved", "order", e.ID, "sender", sender)
}

// Run walks the bus API end to end on its own instance: subscribe,
// duplicate rejection, once semantics, re-entrant publish, count and type
// introspection, token cancellation, unsubscribe, and reset.
func Run() error {
	bus := event.New()

	fmt.Println("▶ order pipeline demo")

	inv := &inventoryReserver{log: logger.With("component", "inventory")}
	invSub, err := event.Subscribe(bus, inv)
	if err != nil {
		return err
	}
	fmt.Printf("  inventory subscribed (id=%s, type=%s)\n", invSub.ID(), invSub.Type())

	if _, err := event.Subscribe(bus, inv); err != nil {
		fmt.Println("  subscribing inventory again:", err)
	}

	billingLog := logger.With("component", "billing")
	billing := event.HandlerOf(func(sender any, e OrderPlaced) {
		billingLog.Info("payment captured", "order", e.ID, "amount", e.Amount)
		_ = event.Publish(bus, "billing", PaymentCaptured{OrderID: e.ID, Amount: e.Amount})
	})
	if _, err := event.Subscribe(bus, billing); err != nil {
		return err
	}

	welcome, err := event.SubscribeOnce(bus, event.HandlerOf(func(sender any, e PaymentCaptured) {
		logger.Info("first payment of the day, ring the bell", "order", e.OrderID)
	}))
	if err != nil {
		return err
	}

	shippingLog := logger.With("component", "shipping")
	shipSub, err := event.Subscribe(bus, event.HandlerOf(func(sender any, e PaymentCaptured) {
		shippingLog.Info("shipment scheduled", "order", e.OrderID)
	}))
	if err != nil {
		return err
	}

	for i := 1; i <= 3; i++ {
		order := OrderPlaced{ID: fmt.Sprintf("ord-%03d", i), Amount: float64(25 * i)}
		if err := event.Publish(bus, "storefront", order); err != nil {
			return err
		}
	}

	names := collection.Map(bus.Types(), func(t reflect.Type) string { return t.String() })
	fmt.Printf("  subscribed types: %s (%d subscriptions)\n", strings.Join(names, ", "), bus.Total())
	fmt.Printf("  OrderPlaced subscribers: %d\n", event.Count[OrderPlaced](bus))
	fmt.Printf("  once token still active after first payment: %v\n", welcome.Active())

	fmt.Println("  cancelling inventory subscription:", invSub.Cancel())
	fmt.Println("  cancelling it again:", invSub.Cancel())

	removed, err := event.Unsubscribe(bus, billing)
	if err != nil {
		return err
	}
	fmt.Println("  unsubscribing billing by handler:", removed)

	bus.Reset()
	fmt.Println("  registry reset; stale shipping cancel is a no-op:", shipSub.Cancel())
	fmt.Printf("  remaining subscriptions: %d\n", bus.Total())
	return nil
}
