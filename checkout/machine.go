// Package checkout drives one shopper's purchase attempt through the
// browsing → review → shipping → payment → confirmation stages. Every
// transition is guarded by a validation predicate and fails closed:
// bad data refuses the transition instead of flowing downstream.
package checkout

import (
	"context"
	"strings"
	"sync"
	"time"

	"shonar/cart"
	"shonar/models"
	"shonar/normalize"
	"shonar/pricing"
	"shonar/whatsapp"
)

type State string

const (
	StateIdle                 State = "idle"
	StateReviewingCart        State = "reviewing_cart"
	StateEnteringShipping     State = "entering_shipping"
	StateSelectingPayment     State = "selecting_payment"
	StateAwaitingConfirmation State = "awaiting_confirmation"
	StateConfirmed            State = "confirmed"
)

// Notice is a short, actionable message surfaced to the shopper as a
// toast or inline shake. Never a stack trace.
type Notice struct {
	Kind    string `json:"kind"` // "validation", "error", "info"
	Message string `json:"message"`
}

// Submitter is the order-submission protocol the machine hands the
// frozen session to. *whatsapp.Submitter satisfies it.
type Submitter interface {
	Submit(ctx context.Context, session models.CheckoutSession) (whatsapp.Result, error)
}

// Machine is the per-shopper checkout state machine. All methods are
// safe for concurrent use; the single-flight submitting flag
// guarantees rapid double-taps produce at most one outbound order.
type Machine struct {
	mu        sync.Mutex
	state     State
	cart      *cart.Store
	fees      pricing.FeeTable
	submitter Submitter

	session    models.CheckoutSession
	online     bool
	submitting bool
	panelOpen  bool
	notices    []Notice
}

func NewMachine(cartStore *cart.Store, fees pricing.FeeTable, submitter Submitter) *Machine {
	return &Machine{
		state:     StateIdle,
		cart:      cartStore,
		fees:      fees,
		submitter: submitter,
		online:    true,
	}
}

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Machine) Submitting() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.submitting
}

// Session returns a copy of the frozen snapshot.
func (m *Machine) Session() models.CheckoutSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// SetOnline records the client-reported connectivity flag. Offline
// gates submission entirely; it is never a retry trigger.
func (m *Machine) SetOnline(online bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.online = online
}

// Total computes subtotal + zone fee for the current session.
func (m *Machine) Total() (subtotal, fee, total float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.totalLocked()
}

// Notices drains and returns the pending shopper notices.
func (m *Machine) Notices() []Notice {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.notices
	m.notices = nil
	return out
}

// BeginBuyNow starts checkout for a single product. The size must
// already be selected; without one the transition is refused silently,
// with no state change and no notice — the UI pre-validates this case.
func (m *Machine) BeginBuyNow(product models.Product, size string, quantity int) bool {
	if strings.TrimSpace(size) == "" {
		return false
	}

	line, ok := normalize.CartLine(map[string]any{
		"id":       product.ProductID,
		"name":     product.Name,
		"price":    product.Price,
		"imageUrl": product.ImageURL,
		"size":     size,
		"quantity": quantity,
	})
	if !ok {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateIdle && m.state != StateConfirmed {
		return false
	}
	m.session = models.CheckoutSession{
		Items:     []models.CartLine{line},
		Zone:      models.ZoneInside,
		CreatedAt: time.Now(),
	}
	m.state = StateReviewingCart
	return true
}

// BeginFromCart starts checkout over the whole cart. An empty or
// zero-value cart surfaces a blocking notice and refuses.
func (m *Machine) BeginFromCart() bool {
	lines := m.cart.Lines()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateIdle && m.state != StateConfirmed {
		return false
	}
	if len(lines) == 0 || pricing.SafeSubtotal(lines) <= 0 {
		m.notify("error", "Your cart is empty.")
		return false
	}
	// frozen snapshot: later cart or catalog changes must not touch it
	items := make([]models.CartLine, len(lines))
	copy(items, lines)
	m.session = models.CheckoutSession{
		Items:     items,
		Zone:      models.ZoneInside,
		CreatedAt: time.Now(),
	}
	m.state = StateReviewingCart
	return true
}

// ProceedToShipping moves from cart review to the shipping form.
func (m *Machine) ProceedToShipping() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateReviewingCart {
		return false
	}
	m.state = StateEnteringShipping
	return true
}

// SubmitShipping validates the three customer fields (non-empty after
// trim) and opens payment selection. A failed attempt fires exactly
// one validation notice and does not transition.
func (m *Machine) SubmitShipping(info models.CustomerInfo) bool {
	info.Name = strings.TrimSpace(info.Name)
	info.Phone = strings.TrimSpace(info.Phone)
	info.Address = strings.TrimSpace(info.Address)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateEnteringShipping {
		return false
	}
	if info.Name == "" || info.Phone == "" || info.Address == "" {
		m.notify("validation", "Please fill in your name, phone and address.")
		return false
	}
	m.session.Customer = info
	m.state = StateSelectingPayment
	m.panelOpen = true
	return true
}

// SetZone selects the delivery zone while reviewing or paying.
func (m *Machine) SetZone(zone models.DeliveryZone) bool {
	if zone != models.ZoneInside && zone != models.ZoneOutside {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateIdle || m.state == StateConfirmed {
		return false
	}
	m.session.Zone = zone
	return true
}

// SelectPayment records the payment method choice.
func (m *Machine) SelectPayment(method models.PaymentMethod) bool {
	if method != models.PaymentCOD && method != models.PaymentWallet {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateSelectingPayment && m.state != StateAwaitingConfirmation {
		return false
	}
	m.session.PaymentMethod = method
	if method == models.PaymentCOD {
		m.session.TransactionID = ""
	}
	return true
}

// SetTransactionID records the pasted wallet transaction reference.
func (m *Machine) SetTransactionID(ref string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateSelectingPayment && m.state != StateAwaitingConfirmation {
		return false
	}
	m.session.TransactionID = strings.TrimSpace(ref)
	return true
}

// Submit runs the single-flight submission. A second call while one
// is in flight is a no-op. Offline, an empty snapshot, an invalid
// total or a missing wallet reference all refuse with a notice. On
// sink failure the machine stays in AwaitingConfirmation, submitting
// cleared, ready for a retry; nothing is cleared or confirmed.
func (m *Machine) Submit(ctx context.Context) (whatsapp.Result, bool) {
	m.mu.Lock()
	if m.submitting {
		m.mu.Unlock()
		return whatsapp.Result{}, false
	}
	if m.state != StateSelectingPayment && m.state != StateAwaitingConfirmation {
		m.mu.Unlock()
		return whatsapp.Result{}, false
	}
	if len(m.session.Items) == 0 {
		m.notify("error", "There is nothing to order.")
		m.mu.Unlock()
		return whatsapp.Result{}, false
	}
	if !m.online {
		m.notify("error", "You appear to be offline. Please reconnect and try again.")
		m.mu.Unlock()
		return whatsapp.Result{}, false
	}
	if _, _, total := m.totalLocked(); !pricing.Valid(total) {
		m.notify("error", "Order total is invalid.")
		m.mu.Unlock()
		return whatsapp.Result{}, false
	}
	if m.session.PaymentMethod == models.PaymentWallet && m.session.TransactionID == "" {
		m.notify("validation", "Please paste your bKash/Nagad transaction ID.")
		m.mu.Unlock()
		return whatsapp.Result{}, false
	}

	m.submitting = true
	m.state = StateAwaitingConfirmation
	session := m.snapshotLocked()
	m.mu.Unlock()

	// network write happens outside the lock; the submitting flag
	// keeps this path single-flight
	result, err := m.submitter.Submit(ctx, session)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.submitting = false
	if err != nil {
		m.notify("error", "Could not place the order. Please try again.")
		return whatsapp.Result{}, false
	}

	m.cart.Clear(ctx)
	m.session = models.CheckoutSession{}
	m.panelOpen = false
	m.state = StateConfirmed
	return result, true
}

// Back steps one stage backwards. Every exit path clears the
// submitting flag; leaving it set strands the machine.
func (m *Machine) Back() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submitting = false
	switch m.state {
	case StateAwaitingConfirmation:
		m.state = StateSelectingPayment
	case StateSelectingPayment:
		m.panelOpen = false
		m.state = StateEnteringShipping
	case StateEnteringShipping:
		m.state = StateReviewingCart
	case StateReviewingCart:
		m.state = StateIdle
		m.session = models.CheckoutSession{}
	}
}

// Cancel dismisses checkout entirely and resets the session.
func (m *Machine) Cancel() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submitting = false
	m.panelOpen = false
	m.session = models.CheckoutSession{}
	m.state = StateIdle
}

func (m *Machine) notify(kind, message string) {
	m.notices = append(m.notices, Notice{Kind: kind, Message: message})
}

func (m *Machine) totalLocked() (subtotal, fee, total float64) {
	subtotal = pricing.SafeSubtotal(m.session.Items)
	fee = m.fees.Fee(m.session.Zone)
	return subtotal, fee, pricing.Total(subtotal, fee)
}

func (m *Machine) snapshotLocked() models.CheckoutSession {
	session := m.session
	session.Items = make([]models.CartLine, len(m.session.Items))
	copy(session.Items, m.session.Items)
	return session
}
