package whatsapp

import (
	"context"
	"errors"
	"os"
	"time"

	"shonar/models"
	"shonar/mq"
	"shonar/orders"
	"shonar/pricing"
	"shonar/utils"
)

// ErrInvalidTotal blocks submission when the computed total is zero,
// negative or non-finite.
var ErrInvalidTotal = errors.New("order total must be finite and positive")

// Result carries everything the caller needs after a successful
// submission: the persisted order, the raw message and the deep link
// the browser opens.
type Result struct {
	Order    models.Order `json:"order"`
	Message  string       `json:"message"`
	DeepLink string       `json:"deepLink"`
}

// Submitter turns a checkout session into a persisted order plus the
// outbound message. The sink write is blocking and happens before any
// success is reported, so a failed durable write never produces a
// customer-facing message.
type Submitter struct {
	Sink    orders.Sink
	Emitter *mq.Emitter // optional; nil skips the broadcast
	Number  string
	Fees    pricing.FeeTable
}

// DestinationNumber reads the deployment's WhatsApp number.
func DestinationNumber() string {
	if n := os.Getenv("WHATSAPP_NUMBER"); n != "" {
		return n
	}
	return "8801700000000"
}

// Submit computes totals, persists the order (status pending) and
// returns the message artifacts. On sink failure nothing is cleared
// or confirmed; the caller may retry.
func (s *Submitter) Submit(ctx context.Context, session models.CheckoutSession) (Result, error) {
	subtotal := pricing.SafeSubtotal(session.Items)
	fee := s.Fees.Fee(session.Zone)
	total := pricing.Total(subtotal, fee)
	if !pricing.Valid(total) {
		return Result{}, ErrInvalidTotal
	}

	message := BuildMessage(session, subtotal, fee, total)

	order := models.Order{
		OrderID:       utils.NewOrderID(),
		Items:         session.Items,
		Customer:      session.Customer,
		Zone:          session.Zone,
		PaymentMethod: session.PaymentMethod,
		TransactionID: session.TransactionID,
		Total:         total,
		Status:        models.OrderPending,
		CreatedAt:     time.Now(),
	}

	created, err := s.Sink.CreateOrder(ctx, order)
	if err != nil {
		return Result{}, err
	}

	s.Emitter.OrdersChanged(ctx, created.OrderID)

	return Result{
		Order:    created,
		Message:  message,
		DeepLink: DeepLink(s.Number, message),
	}, nil
}
