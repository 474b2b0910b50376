package store

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultMaxAge is the cache duration before a collection is considered stale.
const DefaultMaxAge = 5 * time.Minute

// FetchFunc loads a full collection from the backing source (network/DB).
// It must return a complete replacement set, never a delta.
type FetchFunc[T any] func(ctx context.Context) ([]T, error)

// CollectionState is a read-only view of one cached collection.
type CollectionState[T any] struct {
	Items         []T
	Loading       bool
	Err           string
	LastFetchedAt time.Time
}

// Collection caches one domain collection with independent loading, error and
// staleness tracking. A fetch failure keeps the previous items: stale-but-present
// data is preferred over blanking consumers.
type Collection[T any] struct {
	name string
	id   func(T) string

	mu            sync.RWMutex
	items         []T
	loading       bool
	err           string
	lastFetchedAt time.Time
	inflight      bool

	now func() time.Time
}

// NewCollection creates an empty collection. id extracts the identity used by
// UpsertOne/RemoveOne.
func NewCollection[T any](name string, id func(T) string) *Collection[T] {
	return &Collection[T]{name: name, id: id, now: time.Now}
}

// Name returns the collection name used in events and snapshots.
func (c *Collection[T]) Name() string { return c.name }

// Get returns a copy of the current state. The items slice is a fresh copy so
// callers can never alias live cache state.
func (c *Collection[T]) Get() CollectionState[T] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	items := make([]T, len(c.items))
	copy(items, c.items)
	return CollectionState[T]{
		Items:         items,
		Loading:       c.loading,
		Err:           c.err,
		LastFetchedAt: c.lastFetchedAt,
	}
}

// SetItems replaces the entire collection, clears any error and stamps the
// fetch time. nil normalizes to an empty slice.
func (c *Collection[T]) SetItems(items []T) {
	if items == nil {
		items = []T{}
	}
	c.mu.Lock()
	c.items = items
	c.err = ""
	c.loading = false
	c.lastFetchedAt = c.now()
	c.mu.Unlock()
}

// SetLoading flips the loading flag without touching items or error.
func (c *Collection[T]) SetLoading(loading bool) {
	c.mu.Lock()
	c.loading = loading
	c.mu.Unlock()
}

// SetError records a fetch failure. Existing items and fetch time are kept.
func (c *Collection[T]) SetError(msg string) {
	c.mu.Lock()
	c.err = msg
	c.loading = false
	c.mu.Unlock()
}

// ClearError resets the error without re-fetching.
func (c *Collection[T]) ClearError() {
	c.mu.Lock()
	c.err = ""
	c.mu.Unlock()
}

// UpsertOne inserts or replaces a single item in place. Used for optimistic
// updates after a create/update call succeeds, so readers see the change
// before the next full re-fetch. Does not touch the fetch timestamp.
func (c *Collection[T]) UpsertOne(item T) {
	id := c.id(item)
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.id(c.items[i]) == id {
			c.items[i] = item
			return
		}
	}
	c.items = append(c.items, item)
}

// RemoveOne deletes a single item by id. Missing ids are a no-op.
func (c *Collection[T]) RemoveOne(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.id(c.items[i]) == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

// IsStale reports whether the collection must be re-fetched before use:
// true when never fetched, or older than maxAge. maxAge <= 0 uses DefaultMaxAge.
func (c *Collection[T]) IsStale(maxAge time.Duration) bool {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.lastFetchedAt.IsZero() {
		return true
	}
	return c.now().Sub(c.lastFetchedAt) > maxAge
}

// EnsureFresh fetches the collection unless it is fresh and force is false.
// On success the fetched items replace the collection; on failure the error is
// recorded as state and returned, and previous items stay visible. Concurrent
// calls for the same collection are allowed: a second call while one is in
// flight returns without fetching (at worst a duplicate fetch happens; the
// last SetItems wins and each result is a complete replacement).
func (c *Collection[T]) EnsureFresh(ctx context.Context, maxAge time.Duration, force bool, fetch FetchFunc[T]) error {
	if !force && !c.IsStale(maxAge) {
		return nil
	}

	c.mu.Lock()
	if c.inflight {
		c.mu.Unlock()
		return nil
	}
	c.inflight = true
	c.loading = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.inflight = false
		c.mu.Unlock()
	}()

	items, err := fetch(ctx)
	if err != nil {
		log.Warn().Str("collection", c.name).Err(err).Msg("collection fetch failed")
		c.SetError(err.Error())
		return err
	}
	c.SetItems(items)
	log.Debug().Str("collection", c.name).Int("count", len(items)).Msg("collection refreshed")
	return nil
}

// LastFetchedAt returns the time of the last successful fetch (zero if never).
func (c *Collection[T]) LastFetchedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastFetchedAt
}

// SetClock overrides the time source (tests).
func (c *Collection[T]) SetClock(now func() time.Time) {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
}
