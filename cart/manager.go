package cart

import (
	"context"
	"sync"

	"shonar/kv"
)

// Manager hands out one hydrated Store per shopper token. All HTTP
// call sites (product grid, quick view, cart panel) go through here so
// every mutation shares the same normalization+merge path.
type Manager struct {
	mu      sync.Mutex
	storage kv.Store
	stores  map[string]*Store
}

func NewManager(storage kv.Store) *Manager {
	return &Manager{
		storage: storage,
		stores:  make(map[string]*Store),
	}
}

// Get returns the shopper's store, creating and hydrating it on first
// use.
func (m *Manager) Get(ctx context.Context, shopperID string) *Store {
	m.mu.Lock()
	store, ok := m.stores[shopperID]
	if !ok {
		store = NewStore(shopperID, m.storage)
		m.stores[shopperID] = store
	}
	m.mu.Unlock()

	store.Hydrate(ctx)
	return store
}

// Close tears down every store and its pending marker timers.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, store := range m.stores {
		store.Close()
		delete(m.stores, id)
	}
}
