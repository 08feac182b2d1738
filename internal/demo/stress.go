package demo

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shashiranjanraj/sandesh/pkg/event"
	"github.com/shashiranjanraj/sandesh/pkg/logger"
	"github.com/shashiranjanraj/sandesh/pkg/workerpool"
)

// StressOptions sizes a stress run. Zero or negative fields fall back to the
// defaults the stress command advertises.
type StressOptions struct {
	Publishers  int  // concurrent publisher workers
	Events      int  // publishes per worker
	Subscribers int  // handlers listening for OrderPlaced
	Churn       bool // race one-shot subscribe/cancel cycles against the publishers
}

// StressReport summarizes a finished run.
type StressReport struct {
	Published int64         // publishes that completed
	Delivered int64         // handler invocations observed by the subscribers
	Churned   int64         // one-shot subscribe/publish/cancel cycles completed
	Elapsed   time.Duration // wall time of the publishing phase
}

// Throughput returns completed publishes per second.
func (r *StressReport) Throughput() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Published) / r.Elapsed.Seconds()
}

// tally counts deliveries. Each subscriber gets its own pointer, so the bus
// sees distinct identities while they all feed one shared counter.
type tally struct {
	delivered *atomic.Int64
}

func (h *tally) Handle(sender any, e OrderPlaced) { h.delivered.Add(1) }

// Stress hammers bus with opts.Publishers workers each publishing opts.Events
// OrderPlaced events while opts.Subscribers handlers listen. With Churn set,
// a goroutine loops subscribe-once / publish / cancel on PaymentCaptured for
// the whole run, so registration, dispatch, and cancellation race each other
// the way the registry is built to tolerate. The run stops early when ctx is
// cancelled; whatever was published by then is reported.
func Stress(ctx context.Context, bus *event.Bus, opts StressOptions) (*StressReport, error) {
	if opts.Publishers < 1 {
		opts.Publishers = 8
	}
	if opts.Events < 1 {
		opts.Events = 5000
	}
	if opts.Subscribers < 1 {
		opts.Subscribers = 4
	}

	log := logger.With("component", "stress")

	var delivered atomic.Int64
	subs := make([]*event.Subscription, 0, opts.Subscribers)
	for i := 0; i < opts.Subscribers; i++ {
		sub, err := event.Subscribe(bus, &tally{delivered: &delivered})
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	defer func() {
		for _, sub := range subs {
			sub.Cancel()
		}
	}()

	var churned atomic.Int64
	churnCtx, stopChurn := context.WithCancel(ctx)
	defer stopChurn()

	var churnWG sync.WaitGroup
	if opts.Churn {
		churnWG.Add(1)
		go func() {
			defer churnWG.Done()
			for churnCtx.Err() == nil {
				sub, err := event.SubscribeOnce(bus, event.HandlerOf(func(sender any, e PaymentCaptured) {}))
				if err != nil {
					return
				}
				_ = event.Publish(bus, "churn", PaymentCaptured{OrderID: "stress", Amount: 1})
				sub.Cancel()
				churned.Add(1)
			}
		}()
	}

	pool := workerpool.New(opts.Publishers)
	defer pool.Shutdown()

	total := opts.Publishers * opts.Events
	log.Info("publishing", "workers", opts.Publishers, "events", total, "subscribers", opts.Subscribers)

	var published atomic.Int64
	var wg sync.WaitGroup

	start := time.Now()
	for i := 0; i < total; i++ {
		if ctx.Err() != nil {
			break
		}
		n := i
		wg.Add(1)
		err := pool.SubmitWait(func() {
			defer wg.Done()
			order := OrderPlaced{ID: fmt.Sprintf("stress-%06d", n), Amount: float64(n%100) + 1}
			if err := event.Publish(bus, "stress", order); err == nil {
				published.Add(1)
			}
		})
		if err != nil {
			wg.Done()
			break
		}
	}
	wg.Wait()
	elapsed := time.Since(start)

	stopChurn()
	churnWG.Wait()

	report := &StressReport{
		Published: published.Load(),
		Delivered: delivered.Load(),
		Churned:   churned.Load(),
		Elapsed:   elapsed,
	}
	log.Info("run finished",
		"published", report.Published,
		"delivered", report.Delivered,
		"churned", report.Churned,
		"elapsed", report.Elapsed,
	)
	return report, nil
}
