package engagement

import (
	"context"
	"sync"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rehaber/rehaber-backend/internal/content"
	apperrors "github.com/rehaber/rehaber-backend/internal/errors"
)

// State is what a viewer should be shown for one key
type State struct {
	Engaged bool `json:"engaged"`
	// Pending is true while at least one toggle is awaiting the store
	Pending bool `json:"pending"`
	// Confirmed is the last value the store acknowledged
	Confirmed bool `json:"confirmed"`
}

type stateEntry struct {
	displayed bool
	confirmed bool
	pending   int
}

// StateCache keeps provisional engagement state per key so a UI can flip
// immediately and settle when the store answers.
type StateCache struct {
	mu    sync.Mutex
	cache *lru.Cache[Key, *stateEntry]
}

// NewStateCache creates a cache holding at most size keys
func NewStateCache(size int) (*StateCache, error) {
	cache, err := lru.New[Key, *stateEntry](size)
	if err != nil {
		return nil, err
	}
	return &StateCache{cache: cache}, nil
}

// Seed records a value read from the store. Keys with pending toggles are left alone.
func (c *StateCache) Seed(key Key, engaged bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.cache.Get(key); ok && entry.pending > 0 {
		entry.confirmed = engaged
		return
	}
	c.cache.Add(key, &stateEntry{displayed: engaged, confirmed: engaged})
}

// Observe seeds key with a value read from the store and returns the state to
// display, which still reflects any toggle in flight for the key.
func (c *StateCache) Observe(key Key, stored bool) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.cache.Get(key)
	if ok && entry.pending > 0 {
		entry.confirmed = stored
		return entry.state()
	}
	entry = &stateEntry{displayed: stored, confirmed: stored}
	c.cache.Add(key, entry)
	return entry.state()
}

// Get returns the state for key if it is cached
func (c *StateCache) Get(key Key) (State, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.cache.Get(key)
	if !ok {
		return State{}, false
	}
	return entry.state(), true
}

// Begin applies a provisional flip and returns the state to display
func (c *StateCache) Begin(key Key) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.cache.Get(key)
	if !ok {
		entry = &stateEntry{}
		c.cache.Add(key, entry)
	}
	entry.displayed = !entry.displayed
	entry.pending++
	return entry.state()
}

// Reconcile settles one toggle started with Begin. On success the store's answer
// becomes the confirmed value; on failure the provisional flip is undone.
func (c *StateCache) Reconcile(key Key, engaged bool, err error) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.cache.Get(key)
	if !ok {
		// evicted while in flight
		entry = &stateEntry{displayed: engaged, confirmed: engaged}
		if err == nil {
			c.cache.Add(key, entry)
		}
		return entry.state()
	}

	if entry.pending > 0 {
		entry.pending--
	}

	if err != nil {
		if entry.pending == 0 {
			entry.displayed = entry.confirmed
		} else {
			entry.displayed = !entry.displayed
		}
		return entry.state()
	}

	entry.confirmed = engaged
	if entry.pending == 0 {
		entry.displayed = engaged
	}
	return entry.state()
}

// Forget drops every cached key for the given content
func (c *StateCache) Forget(refs ...content.Ref) {
	if len(refs) == 0 {
		return
	}
	drop := make(map[content.Ref]struct{}, len(refs))
	for _, ref := range refs {
		drop[ref] = struct{}{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, key := range c.cache.Keys() {
		if _, ok := drop[key.Ref]; ok {
			c.cache.Remove(key)
		}
	}
}

func (e *stateEntry) state() State {
	return State{Engaged: e.displayed, Pending: e.pending > 0, Confirmed: e.confirmed}
}

// OptimisticToggler runs toggles through a StateCache
type OptimisticToggler struct {
	service Service
	cache   *StateCache
}

// NewOptimisticToggler composes a service with a state cache
func NewOptimisticToggler(service Service, cache *StateCache) *OptimisticToggler {
	return &OptimisticToggler{service: service, cache: cache}
}

// Toggle flips the cached state, calls the service and reconciles with its answer.
// A failed toggle leaves the displayed state where it was.
func (t *OptimisticToggler) Toggle(ctx context.Context, userID uuid.UUID, ref content.Ref, kind Kind) (State, error) {
	if userID == uuid.Nil {
		return State{}, apperrors.ErrUnauthenticated
	}

	key := Key{UserID: userID, Ref: ref, Kind: kind}
	t.cache.Begin(key)
	engaged, err := t.service.Toggle(ctx, userID, ref, kind)
	state := t.cache.Reconcile(key, engaged, err)
	return state, err
}

// Summary reads counts and the viewer's state from the service, then overlays the
// viewer's like and favorite with any toggle still in flight. Pending is set while
// one is.
func (t *OptimisticToggler) Summary(ctx context.Context, viewer uuid.UUID, ref content.Ref) (*Summary, error) {
	summary, err := t.service.Summary(ctx, viewer, ref)
	if err != nil || viewer == uuid.Nil {
		return summary, err
	}

	caps := ref.Type.Capabilities()
	if caps.Likeable {
		state := t.cache.Observe(Key{UserID: viewer, Ref: ref, Kind: KindLike}, summary.Liked)
		summary.Liked = state.Engaged
		summary.Pending = summary.Pending || state.Pending
	}
	if caps.Favoritable {
		state := t.cache.Observe(Key{UserID: viewer, Ref: ref, Kind: KindFavorite}, summary.Favorited)
		summary.Favorited = state.Engaged
		summary.Pending = summary.Pending || state.Pending
	}
	return summary, nil
}

// Cache exposes the underlying state cache
func (t *OptimisticToggler) Cache() *StateCache {
	return t.cache
}
