package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/sandesh/config"
	"github.com/shashiranjanraj/sandesh/internal/demo"
	"github.com/shashiranjanraj/sandesh/internal/server"
	"github.com/shashiranjanraj/sandesh/pkg/event"
)

var (
	stressPublishers  int
	stressEvents      int
	stressSubscribers int
	stressChurn       bool
	stressServe       bool
)

// sandesh stress — hammer one bus with concurrent publishers.
var stressCmd = &cobra.Command{
	Use:   "stress",
	Short: "Run concurrent publishers and subscription churn against one bus",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := config.Load(); err != nil {
			return err
		}

		bus := event.New()

		if stressServe {
			srv, err := server.Start(bus)
			if err != nil {
				return err
			}
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(shutdownCtx) //nolint:errcheck
			}()
			fmt.Printf("📊 Stats on http://localhost%s/stats, Prometheus on /metrics\n", srv.Addr())
		}

		fmt.Printf("🚀 Stress run: %d publishers × %d events, %d subscribers (churn=%v)\n",
			stressPublishers, stressEvents, stressSubscribers, stressChurn)

		report, err := demo.Stress(ctx, bus, demo.StressOptions{
			Publishers:  stressPublishers,
			Events:      stressEvents,
			Subscribers: stressSubscribers,
			Churn:       stressChurn,
		})
		if err != nil {
			return err
		}

		fmt.Printf("✅  Published %d events in %s (%.0f/s)\n",
			report.Published, report.Elapsed.Round(time.Millisecond), report.Throughput())
		fmt.Printf("    Delivered %d handler calls", report.Delivered)
		if stressChurn {
			fmt.Printf(", churned %d one-shot subscriptions", report.Churned)
		}
		fmt.Println()

		if stressServe {
			fmt.Println("Serving stats until Ctrl+C…")
			<-ctx.Done()
			fmt.Println("\n⚡ Stats server stopped.")
		}
		return nil
	},
}

func init() {
	stressCmd.Flags().IntVarP(&stressPublishers, "publishers", "p", 8, "Concurrent publisher workers")
	stressCmd.Flags().IntVarP(&stressEvents, "events", "n", 5000, "Events published per worker")
	stressCmd.Flags().IntVarP(&stressSubscribers, "subscribers", "s", 4, "Subscribers listening for the load events")
	stressCmd.Flags().BoolVar(&stressChurn, "churn", true, "Race one-shot subscribe/cancel cycles against the publishers")
	stressCmd.Flags().BoolVar(&stressServe, "serve", false, "Serve /stats and /metrics over HTTP during the run")
}
