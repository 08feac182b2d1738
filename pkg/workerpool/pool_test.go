package workerpool_test

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shashiranjanraj/sandesh/pkg/workerpool"
)

func TestPool_RunsEverySubmittedTask(t *testing.T) {
	pool := workerpool.New(4)
	defer pool.Shutdown()

	const n = 200
	var ran atomic.Int64

	var wg sync.WaitGroup
	wg.Add(n)

	for i := 0; i < n; i++ {
		if err := pool.SubmitWait(func() {
			defer wg.Done()
			ran.Add(1)
		}); err != nil {
			t.Fatalf("SubmitWait returned unexpected error: %v", err)
		}
	}

	wg.Wait()

	if got := ran.Load(); got != n {
		t.Errorf("expected %d tasks to run, got %d", n, got)
	}
}

func TestPool_SubmitBackpressure(t *testing.T) {
	// One worker, blocked; queue capacity is 2x workers = 2.
	pool := workerpool.New(1)
	defer pool.Shutdown()

	release := make(chan struct{})
	started := make(chan struct{})

	_ = pool.SubmitWait(func() {
		close(started)
		<-release
	})
	<-started

	_ = pool.Submit(func() {})
	_ = pool.Submit(func() {})

	if err := pool.Submit(func() {}); !errors.Is(err, workerpool.ErrPoolFull) {
		t.Errorf("expected ErrPoolFull, got %v", err)
	}
	if got := pool.Queued(); got != 2 {
		t.Errorf("expected 2 queued tasks, got %d", got)
	}

	close(release)
}

func TestPool_SubmitAfterShutdown(t *testing.T) {
	pool := workerpool.New(2)
	pool.Shutdown()

	if err := pool.Submit(func() {}); !errors.Is(err, workerpool.ErrPoolClosed) {
		t.Errorf("expected ErrPoolClosed after Shutdown, got %v", err)
	}
	if err := pool.SubmitWait(func() {}); !errors.Is(err, workerpool.ErrPoolClosed) {
		t.Errorf("expected ErrPoolClosed from SubmitWait after Shutdown, got %v", err)
	}
}

func TestPool_PanickingTaskDoesNotKillWorker(t *testing.T) {
	pool := workerpool.New(2)
	defer pool.Shutdown()

	var wg sync.WaitGroup
	wg.Add(1)

	_ = pool.SubmitWait(func() {
		defer wg.Done()
		panic("boom")
	})

	wg.Wait()

	done := make(chan struct{})
	_ = pool.SubmitWait(func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker died after panic; next task never ran")
	}
}

func TestPool_SubmitWaitDuringShutdownNeverPanics(t *testing.T) {
	pool := workerpool.New(2)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				err := pool.SubmitWait(func() {})
				if err == nil {
					continue
				}
				if !errors.Is(err, workerpool.ErrPoolClosed) {
					t.Errorf("expected ErrPoolClosed, got %v", err)
				}
				return
			}
		}()
	}

	time.Sleep(10 * time.Millisecond)
	pool.Shutdown()
	wg.Wait()
}

func TestPool_ShutdownDrainsQueuedTasks(t *testing.T) {
	pool := workerpool.New(8)

	var ran atomic.Int64
	for i := 0; i < 64; i++ {
		if err := pool.SubmitWait(func() {
			time.Sleep(time.Millisecond)
			ran.Add(1)
		}); err != nil {
			t.Fatalf("SubmitWait returned unexpected error: %v", err)
		}
	}

	pool.Shutdown()

	if got := ran.Load(); got != 64 {
		t.Errorf("expected Shutdown to drain all 64 tasks, got %d", got)
	}
}
