// Package cmd/sandesh provides the sandesh demonstration CLI.
//
// Install once globally:
//
//	go install github.com/shashiranjanraj/sandesh/cmd/sandesh@latest
//
// Then:
//
//	sandesh demo           # scripted walkthrough of the bus API
//	sandesh stress         # concurrent publish/subscribe load run
//	sandesh stress --serve # same, plus /stats and /metrics over HTTP
//
// The library itself needs none of this; import pkg/event and go. The CLI
// exists so the dispatcher's behavior under contention can be watched without
// writing a harness first.
package main
