// Package main is an example of a minimal program using the sandesh bus.
//
// To run this example:
//
//	cd example
//	go run .
package main

import (
	"fmt"

	"github.com/shashiranjanraj/sandesh/pkg/event"
)

// UserRegistered is the example payload. Any type works; the payload type is
// the channel handlers subscribe on.
type UserRegistered struct {
	Email string
}

func main() {
	bus := event.New()

	// A handler is any value with a Handle(sender, event) method; HandlerOf
	// adapts a plain func.
	welcome := event.HandlerOf(func(sender any, e UserRegistered) {
		fmt.Println("sending welcome mail to", e.Email)
	})

	sub, err := event.Subscribe(bus, welcome)
	if err != nil {
		panic(err)
	}
	defer sub.Cancel()

	// One-shot subscription: fires for the first registration only, then
	// removes itself.
	if _, err := event.SubscribeOnce(bus, event.HandlerOf(func(sender any, e UserRegistered) {
		fmt.Println("first signup of the day:", e.Email)
	})); err != nil {
		panic(err)
	}

	event.Publish(bus, "signup-form", UserRegistered{Email: "shashi@example.com"}) //nolint:errcheck
	event.Publish(bus, "signup-form", UserRegistered{Email: "ranjan@example.com"}) //nolint:errcheck

	fmt.Println("subscribers left:", event.Count[UserRegistered](bus))
}
