package bus

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// N subscribers on the same event each fire exactly once per publish with
// the same payload.
func TestBus_EachSubscriberFiresOnce(t *testing.T) {
	b := New(nil, "events")
	defer b.Close()

	var mu sync.Mutex
	payloads := make([][]byte, 0)
	for i := 0; i < 3; i++ {
		b.Subscribe(func(ev Event) {
			mu.Lock()
			payloads = append(payloads, ev.Payload)
			mu.Unlock()
		}, EventInvestmentsChanged)
	}

	b.Publish(context.Background(), EventInvestmentsChanged, json.RawMessage(`{"id":"x"}`))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, payloads, 3)
	for _, p := range payloads {
		assert.JSONEq(t, `{"id":"x"}`, string(p))
	}
}

func TestBus_UnsubscribedHandlerNeverFires(t *testing.T) {
	b := New(nil, "events")
	defer b.Close()

	var calls int32
	unsub := b.Subscribe(func(ev Event) { atomic.AddInt32(&calls, 1) }, EventUsersChanged)

	b.Publish(context.Background(), EventUsersChanged, nil)
	require.Equal(t, int32(1), atomic.LoadInt32(&calls))

	unsub()
	b.Publish(context.Background(), EventUsersChanged, nil)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestBus_SubscribeMultipleNames(t *testing.T) {
	b := New(nil, "events")
	defer b.Close()

	var calls int32
	b.Subscribe(func(ev Event) { atomic.AddInt32(&calls, 1) }, EventUsersChanged, EventCompaniesChanged)

	b.Publish(context.Background(), EventUsersChanged, nil)
	b.Publish(context.Background(), EventCompaniesChanged, nil)
	b.Publish(context.Background(), EventProfitLossChanged, nil)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestBus_EventCarriesTimestampAndSource(t *testing.T) {
	b := New(nil, "events")
	defer b.Close()

	var got Event
	b.Subscribe(func(ev Event) { got = ev }, EventHoldingsChanged)
	b.Publish(context.Background(), EventHoldingsChanged, nil)

	assert.Equal(t, EventHoldingsChanged, got.Name)
	assert.Equal(t, b.Source(), got.Source)
	assert.False(t, got.Timestamp.IsZero())
}

// Cross-process delivery: an event published on one bus reaches subscribers
// of another bus sharing the redis channel, and is not re-delivered to the
// publisher's own subscribers.
func TestBus_CrossProcessDelivery(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb1 := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	rdb2 := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb1.Close()
	defer rdb2.Close()

	b1 := New(rdb1, "events")
	b2 := New(rdb2, "events")
	defer b1.Close()
	defer b2.Close()

	var localCalls, remoteCalls int32
	b1.Subscribe(func(ev Event) { atomic.AddInt32(&localCalls, 1) }, EventInvestmentsChanged)
	b2.Subscribe(func(ev Event) { atomic.AddInt32(&remoteCalls, 1) }, EventInvestmentsChanged)

	// Give both subscribers time to attach to the channel.
	time.Sleep(50 * time.Millisecond)

	b1.Publish(context.Background(), EventInvestmentsChanged, json.RawMessage(`{"id":"a"}`))

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&remoteCalls) == 1
	}, 2*time.Second, 10*time.Millisecond, "remote bus should receive the event")

	// Local handler fired once synchronously; the mirrored event must be
	// deduped by source tag.
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&localCalls))
}

func TestBus_NoRedisDegradesToLocalOnly(t *testing.T) {
	b := New(nil, "events")
	defer b.Close()

	var calls int32
	b.Subscribe(func(ev Event) { atomic.AddInt32(&calls, 1) }, EventProfitLossChanged)
	b.Publish(context.Background(), EventProfitLossChanged, nil)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
