package checkout

import (
	"context"
	"sync"

	"shonar/cart"
	"shonar/pricing"
)

// Manager keeps one Machine per shopper token, built around that
// shopper's cart store.
type Manager struct {
	mu        sync.Mutex
	carts     *cart.Manager
	fees      pricing.FeeTable
	submitter Submitter
	machines  map[string]*Machine
}

func NewManager(carts *cart.Manager, fees pricing.FeeTable, submitter Submitter) *Manager {
	return &Manager{
		carts:     carts,
		fees:      fees,
		submitter: submitter,
		machines:  make(map[string]*Machine),
	}
}

// Get returns the shopper's machine, creating it on first use.
func (m *Manager) Get(ctx context.Context, shopperID string) *Machine {
	store := m.carts.Get(ctx, shopperID)

	m.mu.Lock()
	defer m.mu.Unlock()
	machine, ok := m.machines[shopperID]
	if !ok {
		machine = NewMachine(store, m.fees, m.submitter)
		m.machines[shopperID] = machine
	}
	return machine
}
