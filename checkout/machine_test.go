package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shonar/cart"
	"shonar/kv"
	"shonar/models"
	"shonar/orders"
	"shonar/pricing"
	"shonar/whatsapp"
)

type stubSubmitter struct {
	mu    sync.Mutex
	calls int
	delay time.Duration
	err   error
	last  models.CheckoutSession
}

func (s *stubSubmitter) Submit(_ context.Context, session models.CheckoutSession) (whatsapp.Result, error) {
	s.mu.Lock()
	s.calls++
	s.last = session
	err := s.err
	delay := s.delay
	s.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if err != nil {
		return whatsapp.Result{}, err
	}
	return whatsapp.Result{
		Order:    models.Order{OrderID: "ORD1", Status: models.OrderPending},
		Message:  "message",
		DeepLink: "https://wa.me/880?text=message",
	}, nil
}

func (s *stubSubmitter) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

var testFees = pricing.FeeTable{models.ZoneInside: 60, models.ZoneOutside: 120}

func newCartWith(t *testing.T, lines ...map[string]any) *cart.Store {
	t.Helper()
	store := cart.NewStore("shopper", kv.NewMemory())
	store.Hydrate(context.Background())
	t.Cleanup(store.Close)
	for _, raw := range lines {
		_, ok := store.Add(context.Background(), raw)
		require.True(t, ok)
	}
	return store
}

func lineA() map[string]any {
	return map[string]any{"id": "a", "name": "Jamdani Kurti", "price": 550.0, "size": "M", "quantity": 1.0}
}

// atPayment walks a machine to SelectingPayment with a valid session.
func atPayment(t *testing.T, sub Submitter) *Machine {
	t.Helper()
	m := NewMachine(newCartWith(t, lineA()), testFees, sub)
	require.True(t, m.BeginFromCart())
	require.True(t, m.ProceedToShipping())
	require.True(t, m.SubmitShipping(models.CustomerInfo{
		Name: "Farhana", Phone: "01712345678", Address: "Dhanmondi, Dhaka",
	}))
	return m
}

func TestBuyNowRequiresSize(t *testing.T) {
	m := NewMachine(newCartWith(t), testFees, &stubSubmitter{})
	product := models.Product{ProductID: "a", Name: "Kurti", Price: 550, Sizes: []string{"M"}}

	assert.False(t, m.BeginBuyNow(product, "", 1))
	assert.False(t, m.BeginBuyNow(product, "   ", 1))
	assert.Equal(t, StateIdle, m.State())
	assert.Empty(t, m.Notices()) // refusal is silent

	assert.True(t, m.BeginBuyNow(product, "M", 2))
	assert.Equal(t, StateReviewingCart, m.State())
	session := m.Session()
	require.Len(t, session.Items, 1)
	assert.Equal(t, 2, session.Items[0].Quantity)
}

func TestBeginFromCartRejectsEmpty(t *testing.T) {
	m := NewMachine(newCartWith(t), testFees, &stubSubmitter{})
	assert.False(t, m.BeginFromCart())
	assert.Equal(t, StateIdle, m.State())
	notices := m.Notices()
	require.Len(t, notices, 1)
	assert.Equal(t, "error", notices[0].Kind)
}

func TestShippingValidation(t *testing.T) {
	m := NewMachine(newCartWith(t, lineA()), testFees, &stubSubmitter{})
	require.True(t, m.BeginFromCart())
	require.True(t, m.ProceedToShipping())

	// partially filled: payment panel cannot open, one notice per attempt
	assert.False(t, m.SubmitShipping(models.CustomerInfo{Name: "Farhana"}))
	assert.Equal(t, StateEnteringShipping, m.State())
	assert.Len(t, m.Notices(), 1)

	assert.False(t, m.SubmitShipping(models.CustomerInfo{Name: " ", Phone: " ", Address: " "}))
	assert.Len(t, m.Notices(), 1)

	assert.True(t, m.SubmitShipping(models.CustomerInfo{
		Name: "Farhana", Phone: "01712345678", Address: "Dhaka",
	}))
	assert.Equal(t, StateSelectingPayment, m.State())
}

func TestSubmitHappyPath(t *testing.T) {
	sub := &stubSubmitter{}
	m := atPayment(t, sub)
	require.True(t, m.SelectPayment(models.PaymentCOD))

	result, ok := m.Submit(context.Background())
	require.True(t, ok)
	assert.Equal(t, "ORD1", result.Order.OrderID)
	assert.Equal(t, StateConfirmed, m.State())
	assert.False(t, m.Submitting())
	assert.Empty(t, m.Session().Items) // session cleared
	assert.Equal(t, 1, sub.callCount())
}

func TestSubmitClearsCart(t *testing.T) {
	store := newCartWith(t, lineA())
	m := NewMachine(store, testFees, &stubSubmitter{})
	require.True(t, m.BeginFromCart())
	require.True(t, m.ProceedToShipping())
	require.True(t, m.SubmitShipping(models.CustomerInfo{Name: "F", Phone: "017", Address: "Dhaka"}))

	_, ok := m.Submit(context.Background())
	require.True(t, ok)
	assert.Empty(t, store.Lines())
}

func TestDoubleSubmitIsSingleFlight(t *testing.T) {
	sub := &stubSubmitter{delay: 150 * time.Millisecond}
	m := atPayment(t, sub)

	var wg sync.WaitGroup
	results := make([]bool, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = m.Submit(context.Background())
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, sub.callCount())
	assert.NotEqual(t, results[0], results[1]) // exactly one wins
	assert.Equal(t, StateConfirmed, m.State())
}

func TestSubmitOfflineGate(t *testing.T) {
	sub := &stubSubmitter{}
	m := atPayment(t, sub)
	m.SetOnline(false)

	_, ok := m.Submit(context.Background())
	assert.False(t, ok)
	assert.Equal(t, 0, sub.callCount()) // no network call at all
	require.Len(t, m.Notices(), 1)

	m.SetOnline(true)
	_, ok = m.Submit(context.Background())
	assert.True(t, ok)
}

func TestSubmitWalletRequiresTransactionID(t *testing.T) {
	sub := &stubSubmitter{}
	m := atPayment(t, sub)
	require.True(t, m.SelectPayment(models.PaymentWallet))

	_, ok := m.Submit(context.Background())
	assert.False(t, ok)
	assert.Equal(t, 0, sub.callCount())

	require.True(t, m.SetTransactionID("TXN123"))
	_, ok = m.Submit(context.Background())
	assert.True(t, ok)
}

func TestSubmitFailureStaysRetryable(t *testing.T) {
	sub := &stubSubmitter{err: errors.New("sink down")}
	m := atPayment(t, sub)

	_, ok := m.Submit(context.Background())
	assert.False(t, ok)
	assert.Equal(t, StateAwaitingConfirmation, m.State())
	assert.False(t, m.Submitting()) // cleared on every exit path
	require.Len(t, m.Notices(), 1)

	// retry succeeds once the sink recovers
	sub.mu.Lock()
	sub.err = nil
	sub.mu.Unlock()
	_, ok = m.Submit(context.Background())
	assert.True(t, ok)
	assert.Equal(t, StateConfirmed, m.State())
}

func TestFrozenSnapshotIgnoresLaterCartEdits(t *testing.T) {
	store := newCartWith(t, lineA())
	sub := &stubSubmitter{}
	m := NewMachine(store, testFees, sub)
	require.True(t, m.BeginFromCart())

	// a cart mutation mid-checkout must not touch the frozen snapshot
	store.Add(context.Background(), map[string]any{
		"id": "b", "name": "Clay Vase", "price": 900.0, "size": "Free Size", "quantity": 1.0,
	})
	require.Len(t, m.Session().Items, 1)
	assert.Equal(t, "a", m.Session().Items[0].ID)
}

func TestBackAndCancelClearSubmitting(t *testing.T) {
	m := atPayment(t, &stubSubmitter{})

	m.Back()
	assert.Equal(t, StateEnteringShipping, m.State())
	assert.False(t, m.Submitting())
	m.Back()
	assert.Equal(t, StateReviewingCart, m.State())
	m.Back()
	assert.Equal(t, StateIdle, m.State())
	assert.Empty(t, m.Session().Items)

	m2 := atPayment(t, &stubSubmitter{})
	m2.Cancel()
	assert.Equal(t, StateIdle, m2.State())
	assert.False(t, m2.Submitting())
}

func TestZoneAffectsTotal(t *testing.T) {
	m := atPayment(t, &stubSubmitter{})

	subtotal, fee, total := m.Total()
	assert.Equal(t, 550.0, subtotal)
	assert.Equal(t, 60.0, fee)
	assert.Equal(t, 610.0, total)

	require.True(t, m.SetZone(models.ZoneOutside))
	_, fee, total = m.Total()
	assert.Equal(t, 120.0, fee)
	assert.Equal(t, 670.0, total)

	assert.False(t, m.SetZone(models.DeliveryZone("mars")))
}

// End-to-end through the real submitter: the reference 550/60/610
// scenario lands one pending order in the sink with the right totals.
func TestSubmitThroughWhatsappSubmitter(t *testing.T) {
	sink := orders.NewMemorySink()
	sub := &whatsapp.Submitter{Sink: sink, Number: "8801712345678", Fees: testFees}

	store := newCartWith(t, lineA())
	m := NewMachine(store, testFees, sub)
	require.True(t, m.BeginFromCart())
	require.True(t, m.ProceedToShipping())
	require.True(t, m.SubmitShipping(models.CustomerInfo{Name: "F", Phone: "017", Address: "Dhaka"}))

	result, ok := m.Submit(context.Background())
	require.True(t, ok)
	assert.Contains(t, result.Message, "Line Total: 550")
	assert.Contains(t, result.Message, "Order Total: 610")

	list, err := sink.ListOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 610.0, list[0].Total)
	assert.Equal(t, models.OrderPending, list[0].Status)
	assert.Empty(t, store.Lines())
}
