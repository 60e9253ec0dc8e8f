package cart

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shonar/kv"
)

func rawLine(id, size string, price float64, qty float64) map[string]any {
	return map[string]any{
		"id":       id,
		"name":     "Item " + id,
		"price":    price,
		"size":     size,
		"quantity": qty,
	}
}

func newTestStore(t *testing.T) (*Store, kv.Store) {
	t.Helper()
	mem := kv.NewMemory()
	s := NewStore("shopper1", mem)
	s.Hydrate(context.Background())
	t.Cleanup(s.Close)
	return s, mem
}

func TestAddMergesSameSlot(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, ok := s.Add(ctx, rawLine("a", "M", 550, 1))
	require.True(t, ok)
	_, ok = s.Add(ctx, rawLine("a", "M", 550, 2))
	require.True(t, ok)

	lines := s.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Quantity)
}

func TestAddDifferentSizePrepends(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	s.Add(ctx, rawLine("a", "M", 550, 1))
	s.Add(ctx, rawLine("a", "L", 550, 1))

	lines := s.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "L", lines[0].Size) // newest first
	assert.Equal(t, "M", lines[1].Size)
}

func TestAddRejectsInvalid(t *testing.T) {
	s, _ := newTestStore(t)
	_, ok := s.Add(context.Background(), map[string]any{"id": "", "name": "x", "price": 5.0})
	assert.False(t, ok)
	assert.Empty(t, s.Lines())
}

func TestUpdateQuantityBoundaries(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	s.Add(ctx, rawLine("a", "M", 100, 1))

	require.True(t, s.UpdateQuantity(ctx, 0, 2.7))
	assert.Equal(t, 2, s.Lines()[0].Quantity) // floors

	require.True(t, s.UpdateQuantity(ctx, 0, -5))
	assert.Empty(t, s.Lines()) // negative behaves like zero: removes

	s.Add(ctx, rawLine("b", "M", 100, 1))
	require.True(t, s.UpdateQuantity(ctx, 0, 0))
	assert.Empty(t, s.Lines()) // zero removes

	assert.False(t, s.UpdateQuantity(ctx, 5, 1))
}

func TestUpdateMarkerAutoClears(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	s.Add(ctx, rawLine("a", "M", 100, 1))

	assert.True(t, s.Updated("a", "M"))
	assert.Eventually(t, func() bool {
		return !s.Updated("a", "M")
	}, 3*time.Second, 50*time.Millisecond)
}

func TestPersistRoundTrip(t *testing.T) {
	mem := kv.NewMemory()
	ctx := context.Background()

	s := NewStore("shopper1", mem)
	s.Hydrate(ctx)
	s.Add(ctx, rawLine("a", "M", 550, 1))
	s.Add(ctx, rawLine("b", "L", 300, 2))
	want := s.Lines()
	s.Close()

	reloaded := NewStore("shopper1", mem)
	assert.True(t, reloaded.Hydrating())
	reloaded.Hydrate(ctx)
	assert.False(t, reloaded.Hydrating())
	assert.Equal(t, want, reloaded.Lines())
	reloaded.Close()
}

func TestCorruptStorageYieldsEmptyCart(t *testing.T) {
	mem := kv.NewMemory()
	ctx := context.Background()
	require.NoError(t, mem.Set(ctx, "cart:shopper1", "{corrupt!!"))

	s := NewStore("shopper1", mem)
	s.Hydrate(ctx)
	defer s.Close()
	assert.Empty(t, s.Lines())
	assert.Equal(t, 0.0, s.Subtotal())
}

func TestClear(t *testing.T) {
	s, mem := newTestStore(t)
	ctx := context.Background()
	s.Add(ctx, rawLine("a", "M", 550, 1))
	s.Clear(ctx)
	assert.Empty(t, s.Lines())

	data, err := mem.Get(ctx, "cart:shopper1")
	require.NoError(t, err)
	assert.Equal(t, "null", data) // persisted empty state survives reload
	reloaded := NewStore("shopper1", mem)
	reloaded.Hydrate(ctx)
	defer reloaded.Close()
	assert.Empty(t, reloaded.Lines())
}

func TestSubtotalDerivesThroughPricing(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	s.Add(ctx, rawLine("a", "M", 550, 1))
	s.Add(ctx, rawLine("b", "L", 120, 3))
	assert.Equal(t, 910.0, s.Subtotal())
}

func TestManagerReusesStores(t *testing.T) {
	m := NewManager(kv.NewMemory())
	defer m.Close()
	ctx := context.Background()

	s1 := m.Get(ctx, "alpha")
	s1.Add(ctx, rawLine("a", "M", 100, 1))
	s2 := m.Get(ctx, "alpha")
	assert.Len(t, s2.Lines(), 1)

	other := m.Get(ctx, "beta")
	assert.Empty(t, other.Lines())
}
