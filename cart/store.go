// Package cart holds the single source of truth for a shopper's
// current selections. Every mutation funnels through the normalization
// layer and persists the full list to durable storage, so corrupt or
// divergent shapes can never enter the cart.
package cart

import (
	"context"
	"encoding/json"
	"log"
	"math"
	"sync"
	"time"

	"shonar/kv"
	"shonar/models"
	"shonar/normalize"
	"shonar/pricing"
)

// markerTTL is how long a line's transient "updated" marker stays set.
const markerTTL = time.Second

// Store is one shopper's cart. Safe for concurrent use; mutations are
// applied in call order and always read the latest state at apply
// time, never a stale snapshot.
type Store struct {
	mu        sync.Mutex
	key       string
	storage   kv.Store
	lines     []models.CartLine
	hydrating bool
	updated   map[string]bool
	timers    map[string]*time.Timer
}

// NewStore builds an unhydrated store for one shopper. Hydrate must
// run before the contents are trusted; until then Hydrating reports
// true and consumers should render a neutral placeholder.
func NewStore(shopperID string, storage kv.Store) *Store {
	return &Store{
		key:       "cart:" + shopperID,
		storage:   storage,
		hydrating: true,
		updated:   make(map[string]bool),
		timers:    make(map[string]*time.Timer),
	}
}

// Hydrate loads the persisted cart. A read error, parse failure or
// shape mismatch yields an empty cart, never a thrown error.
func (s *Store) Hydrate(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hydrating {
		return
	}
	data, err := s.storage.Get(ctx, s.key)
	if err != nil {
		log.Println("cart hydrate read error:", err)
		data = ""
	}
	s.lines = normalize.DecodeCartLines(data)
	s.hydrating = false
}

// Hydrating reports whether the initial load is still pending.
func (s *Store) Hydrating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hydrating
}

// Lines returns a copy of the current cart lines.
func (s *Store) Lines() []models.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.CartLine, len(s.lines))
	copy(out, s.lines)
	return out
}

// Add normalizes the incoming record and merges it into the cart. A
// line with the same (id, size) slot has its quantity summed instead
// of being duplicated; new lines are prepended. ok is false when the
// record fails normalization.
func (s *Store) Add(ctx context.Context, raw map[string]any) (models.CartLine, bool) {
	line, ok := normalize.CartLine(raw)
	if !ok {
		return models.CartLine{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.lines {
		if s.lines[i].ID == line.ID && s.lines[i].Size == line.Size {
			s.lines[i].Quantity += line.Quantity
			s.markUpdated(slotKey(line))
			s.persist(ctx)
			return s.lines[i], true
		}
	}
	s.lines = append([]models.CartLine{line}, s.lines...)
	s.markUpdated(slotKey(line))
	s.persist(ctx)
	return line, true
}

// UpdateQuantity sets the quantity of the line at index. A coerced
// quantity of zero or less removes the line; fractional values floor.
// Returns false for an out-of-range index.
func (s *Store) UpdateQuantity(ctx context.Context, index int, quantity float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.lines) {
		return false
	}

	q := 0
	if !math.IsNaN(quantity) && !math.IsInf(quantity, 0) {
		q = int(math.Floor(quantity))
	}
	if q <= 0 {
		s.removeAt(ctx, index)
		return true
	}
	s.lines[index].Quantity = q
	s.markUpdated(slotKey(s.lines[index]))
	s.persist(ctx)
	return true
}

// Remove deletes the line at index.
func (s *Store) Remove(ctx context.Context, index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.lines) {
		return false
	}
	s.removeAt(ctx, index)
	return true
}

// Clear empties the cart. Called on successful order submission.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = nil
	s.persist(ctx)
}

// Subtotal re-derives the safe subtotal; it never trusts raw stored
// values directly.
func (s *Store) Subtotal() float64 {
	return pricing.SafeSubtotal(s.Lines())
}

// Updated reports whether a line's transient feedback marker is set.
// Markers auto-clear about one second after the mutation.
func (s *Store) Updated(id, size string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updated[id+"|"+size]
}

// Close stops every pending marker timer. Must run when the shopper
// session is torn down so no timer outlives its store.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for slot, t := range s.timers {
		t.Stop()
		delete(s.timers, slot)
		delete(s.updated, slot)
	}
}

// removeAt and persist expect s.mu held.
func (s *Store) removeAt(ctx context.Context, index int) {
	s.lines = append(s.lines[:index], s.lines[index+1:]...)
	s.persist(ctx)
}

func (s *Store) persist(ctx context.Context) {
	data, err := json.Marshal(s.lines)
	if err != nil {
		log.Println("cart persist marshal error:", err)
		return
	}
	if err := s.storage.Set(ctx, s.key, string(data)); err != nil {
		log.Println("cart persist write error:", err)
	}
}

func (s *Store) markUpdated(slot string) {
	s.updated[slot] = true
	if t, ok := s.timers[slot]; ok {
		t.Stop()
	}
	s.timers[slot] = time.AfterFunc(markerTTL, func() {
		s.mu.Lock()
		delete(s.updated, slot)
		delete(s.timers, slot)
		s.mu.Unlock()
	})
}

func slotKey(line models.CartLine) string {
	return line.ID + "|" + line.Size
}
