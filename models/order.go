package models

import "time"

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderDelivering OrderStatus = "delivering"
	OrderSent       OrderStatus = "sent"
	OrderFailed     OrderStatus = "failed"
)

// ValidOrderStatus reports whether s is one of the four known states.
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderPending, OrderDelivering, OrderSent, OrderFailed:
		return true
	}
	return false
}

// Order is the durable record of a submitted checkout. The core builds
// it; the order sink owns its storage lifecycle.
type Order struct {
	OrderID       string        `json:"orderId" bson:"orderId"`
	Items         []CartLine    `json:"items" bson:"items"`
	Customer      CustomerInfo  `json:"customer" bson:"customer"`
	Zone          DeliveryZone  `json:"zone" bson:"zone"`
	PaymentMethod PaymentMethod `json:"paymentMethod" bson:"paymentMethod"`
	TransactionID string        `json:"transactionId,omitempty" bson:"transactionId,omitempty"`
	Total         float64       `json:"total" bson:"total"`
	Status        OrderStatus   `json:"status" bson:"status"`
	CreatedAt     time.Time     `json:"createdAt" bson:"createdAt"`
}
