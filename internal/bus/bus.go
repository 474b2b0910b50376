// Package bus propagates "a given domain changed" notifications to
// subscribers in this process and, through a shared redis channel, to every
// other process of the deployment. Cross-process delivery is at-least-once
// and best-effort: consumers must treat an event as a re-fetch hint, never as
// an ordered log.
package bus

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Event names for domain change notifications. The payload carries whatever
// the publisher wants observers to see (usually the changed entity id).
const (
	EventInvestmentsChanged = "investments:changed"
	EventHoldingsChanged    = "investor_investments:changed"
	EventUsersChanged       = "users:changed"
	EventCompaniesChanged   = "companies:changed"
	EventProfitLossChanged  = "profit_loss:changed"
)

// Event is a single change notification.
type Event struct {
	Name      string          `json:"name"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Source    string          `json:"source"`
}

// Handler receives events. Handlers run synchronously inside Publish for
// local events and inside the redis reader goroutine for remote ones.
type Handler func(Event)

type subscription struct {
	names   map[string]struct{}
	handler Handler
}

// Bus dispatches events in-process and mirrors them to a redis channel.
// A nil redis client degrades to in-process-only delivery.
type Bus struct {
	source  string
	channel string
	rdb     *redis.Client

	mu     sync.RWMutex
	subs   map[int64]*subscription
	nextID int64

	pubsub *redis.PubSub
	done   chan struct{}
}

// New creates a bus with a unique source tag. channel is the shared redis
// channel name; when rdb is non-nil a reader goroutine is started and remote
// events from other sources are dispatched to local subscribers.
func New(rdb *redis.Client, channel string) *Bus {
	b := &Bus{
		source:  uuid.New().String(),
		channel: channel,
		rdb:     rdb,
		subs:    make(map[int64]*subscription),
	}
	if rdb != nil {
		b.pubsub = rdb.Subscribe(context.Background(), channel)
		b.done = make(chan struct{})
		go b.readRemote()
	}
	return b
}

// Source returns this bus's source tag (carried on every published event).
func (b *Bus) Source() string { return b.source }

// Subscribe registers handler for one or more event names and returns an
// unsubscribe func. Every matching handler fires exactly once per publish;
// invocation order across handlers is unspecified.
func (b *Bus) Subscribe(handler Handler, names ...string) func() {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}

	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[id] = &subscription{names: set, handler: handler}
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

// Publish dispatches the event to local subscribers synchronously, then
// mirrors it to redis. A redis publish failure is logged, not returned:
// local delivery already happened and remote delivery is best-effort.
func (b *Bus) Publish(ctx context.Context, name string, payload json.RawMessage) {
	ev := Event{
		Name:      name,
		Payload:   payload,
		Timestamp: time.Now(),
		Source:    b.source,
	}
	b.dispatch(ev)

	if b.rdb == nil {
		return
	}
	raw, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("event", name).Msg("event marshal failed")
		return
	}
	if err := b.rdb.Publish(ctx, b.channel, raw).Err(); err != nil {
		log.Warn().Err(err).Str("event", name).Msg("redis publish failed; local delivery only")
	}
}

func (b *Bus) dispatch(ev Event) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs))
	for _, sub := range b.subs {
		if _, ok := sub.names[ev.Name]; ok {
			handlers = append(handlers, sub.handler)
		}
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(ev)
	}
}

// readRemote dispatches events published by other processes. Own events are
// skipped by source tag (they were already delivered locally in Publish).
func (b *Bus) readRemote() {
	defer close(b.done)
	for msg := range b.pubsub.Channel() {
		var ev Event
		if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
			log.Warn().Err(err).Msg("dropping malformed bus event")
			continue
		}
		if ev.Source == b.source {
			continue
		}
		b.dispatch(ev)
	}
}

// Close stops the redis reader. Safe to call on an in-process-only bus.
func (b *Bus) Close() {
	if b.pubsub != nil {
		_ = b.pubsub.Close()
		<-b.done
	}
}
