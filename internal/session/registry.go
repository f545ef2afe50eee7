package session

import (
	"context"
	"sync"
	"time"

	"jobboard-portal/internal/common/logger"
	"jobboard-portal/internal/common/metrics"
)

// Factory builds a fresh Store for a newly seen browser session.
type Factory func() *Store

type entry struct {
	store    *Store
	lastSeen time.Time
}

// Registry holds one Store per browser session id and evicts idle ones.
type Registry struct {
	factory Factory
	idleTTL time.Duration
	logger  logger.Logger
	now     func() time.Time

	mu      sync.Mutex
	entries map[string]*entry
}

func NewRegistry(factory Factory, idleTTL time.Duration, log logger.Logger) *Registry {
	return &Registry{
		factory: factory,
		idleTTL: idleTTL,
		logger:  log.WithFields(map[string]interface{}{"component": "session_registry"}),
		now:     time.Now,
		entries: make(map[string]*entry),
	}
}

// Get returns the store for sid without creating one.
func (r *Registry) Get(sid string) (*Store, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[sid]
	if !ok {
		return nil, false
	}
	e.lastSeen = r.now()
	return e.store, true
}

func (r *Registry) GetOrCreate(sid string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.entries[sid]; ok {
		e.lastSeen = r.now()
		return e.store
	}

	store := r.factory()
	r.entries[sid] = &entry{store: store, lastSeen: r.now()}
	metrics.SessionStoresActive.Set(float64(len(r.entries)))
	return store
}

// Drop clears and forgets the store for sid. In-flight operations on it discard
// their results.
func (r *Registry) Drop(sid string) {
	r.mu.Lock()
	e, ok := r.entries[sid]
	delete(r.entries, sid)
	size := len(r.entries)
	r.mu.Unlock()

	if ok {
		e.store.Clear()
	}
	metrics.SessionStoresActive.Set(float64(size))
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Run evicts idle stores every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.sweep(); n > 0 {
				r.logger.Debug("evicted idle session stores", map[string]interface{}{
					"evicted":   n,
					"remaining": r.Len(),
				})
			}
		}
	}
}

func (r *Registry) sweep() int {
	cutoff := r.now().Add(-r.idleTTL)

	r.mu.Lock()
	var evicted []*Store
	for sid, e := range r.entries {
		if e.lastSeen.Before(cutoff) {
			evicted = append(evicted, e.store)
			delete(r.entries, sid)
		}
	}
	size := len(r.entries)
	r.mu.Unlock()

	for _, store := range evicted {
		store.Clear()
	}
	metrics.SessionStoresActive.Set(float64(size))
	return len(evicted)
}
