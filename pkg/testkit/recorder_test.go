package testkit_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/sandesh/pkg/event"
	"github.com/shashiranjanraj/sandesh/pkg/testkit"
)

// orderShipped is the payload the testkit self-tests publish.
type orderShipped struct {
	ID string
}

func TestRecorder_CapturesDeliveriesInOrder(t *testing.T) {
	bus := testkit.NewBus(t)

	rec := testkit.NewRecorder[orderShipped]()
	testkit.RequireSubscribe(t, bus, rec)

	require.NoError(t, event.Publish(bus, "warehouse", orderShipped{ID: "shp-1"}))
	require.NoError(t, event.Publish(bus, "warehouse", orderShipped{ID: "shp-2"}))

	assert.Equal(t, 2, rec.Len())
	testkit.AssertReceived(t, rec, orderShipped{ID: "shp-1"}, orderShipped{ID: "shp-2"})
	assert.Equal(t, []any{"warehouse", "warehouse"}, rec.Senders())
}

func TestRecorder_AssertReceivedEmpty(t *testing.T) {
	rec := testkit.NewRecorder[orderShipped]()
	testkit.AssertReceived(t, rec)
}

func TestRecorder_WaitForBackgroundPublishes(t *testing.T) {
	bus := testkit.NewBus(t)

	rec := testkit.NewRecorder[orderShipped]()
	testkit.RequireSubscribe(t, bus, rec)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = event.Publish(bus, nil, orderShipped{ID: "bg"})
		}()
	}

	assert.True(t, rec.Wait(5, time.Second), "expected all background publishes to be recorded")
	wg.Wait()
	assert.Equal(t, 5, rec.Len())
}

func TestRecorder_WaitTimesOut(t *testing.T) {
	rec := testkit.NewRecorder[orderShipped]()
	assert.False(t, rec.Wait(1, 20*time.Millisecond), "expected Wait to give up with no deliveries")
}

func TestCounter_CountsEveryInvocation(t *testing.T) {
	bus := testkit.NewBus(t)

	counter := testkit.NewCounter[orderShipped]()
	testkit.RequireSubscribe(t, bus, counter)

	for i := 0; i < 10; i++ {
		require.NoError(t, event.Publish(bus, nil, orderShipped{ID: "c"}))
	}

	assert.EqualValues(t, 10, counter.Calls())
	testkit.AssertCount[orderShipped](t, bus, 1)
}

func TestRequireSubscribeOnce_SingleDelivery(t *testing.T) {
	bus := testkit.NewBus(t)

	rec := testkit.NewRecorder[orderShipped]()
	testkit.RequireSubscribeOnce(t, bus, rec)

	require.NoError(t, event.Publish(bus, nil, orderShipped{ID: "only"}))
	require.NoError(t, event.Publish(bus, nil, orderShipped{ID: "ignored"}))

	testkit.AssertReceived(t, rec, orderShipped{ID: "only"})
	testkit.AssertCount[orderShipped](t, bus, 0)
}

func TestNewBus_ResetsWhenTestEnds(t *testing.T) {
	var leaked *event.Bus

	t.Run("inner", func(t *testing.T) {
		bus := testkit.NewBus(t)
		leaked = bus
		testkit.RequireSubscribe(t, bus, testkit.NewCounter[orderShipped]())
		testkit.AssertCount[orderShipped](t, bus, 1)
	})

	assert.Zero(t, leaked.Total(), "expected the bus reset by the subtest's cleanup")
}
