// Package server exposes one bus's live state over HTTP: the Prometheus
// scrape page on /metrics and a JSON stats document on /stats. The sandesh
// stress command starts it so a load run can be watched from outside the
// process.
package server

import (
	"context"
	"errors"
	"net/http"
	"reflect"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/sandesh/config"
	"github.com/shashiranjanraj/sandesh/pkg/collection"
	"github.com/shashiranjanraj/sandesh/pkg/event"
	"github.com/shashiranjanraj/sandesh/pkg/logger"
	"github.com/shashiranjanraj/sandesh/pkg/metrics"
	"github.com/shashiranjanraj/sandesh/pkg/middleware"
	"github.com/shashiranjanraj/sandesh/pkg/reqid"
	"github.com/shashiranjanraj/sandesh/pkg/response"
)

// TypeStat is one row of the stats document: an event type and its live
// subscriber count.
type TypeStat struct {
	Event       string `json:"event"`
	Subscribers int    `json:"subscribers"`
}

// Stats is the document served on /stats.
type Stats struct {
	Types         []TypeStat `json:"types"`
	TotalTypes    int        `json:"total_types"`
	Subscriptions int        `json:"subscriptions"`
}

// Snapshot collects the stats document for bus. Every listed type has at
// least one subscriber; empty types never appear because the registry drops
// them on their last unsubscribe.
func Snapshot(bus *event.Bus) Stats {
	types := collection.Map(bus.Types(), func(t reflect.Type) TypeStat {
		return TypeStat{Event: t.String(), Subscribers: bus.CountOf(t)}
	})
	return Stats{
		Types:         types,
		TotalTypes:    len(types),
		Subscriptions: bus.Total(),
	}
}

// Server serves the stats endpoints for one bus.
type Server struct {
	bus  *event.Bus
	http *http.Server
}

// Start loads config and begins serving on APP_PORT in the background.
func Start(bus *event.Bus) (*Server, error) {
	if err := config.Load(); err != nil {
		return nil, err
	}

	s := &Server{bus: bus}

	r := chi.NewRouter()
	r.Use(reqid.Middleware())
	r.Use(middleware.Recovery)
	r.Use(middleware.Logger)
	r.Get("/metrics", metrics.Handler())
	r.Get("/stats", s.handleStats)
	r.Get("/healthz", handleHealth)

	s.http = &http.Server{Addr: ":" + config.AppPort(), Handler: r}

	go func() {
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("stats server failed", "addr", s.http.Addr, "error", err)
		}
	}()

	logger.Info("stats server listening", "addr", s.http.Addr)
	return s, nil
}

// Addr returns the listen address, including the leading colon.
func (s *Server) Addr() string { return s.http.Addr }

// Shutdown stops the server, waiting for in-flight requests until the
// context expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, Snapshot(s.bus))
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
