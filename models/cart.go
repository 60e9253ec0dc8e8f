package models

import "time"

// CartLine is one normalized product+size+quantity selection in the
// shopper's cart. Two lines with the same (ID, Size) are the same slot
// and get merged, never duplicated.
type CartLine struct {
	ID       string  `json:"id" bson:"id"`
	Name     string  `json:"name" bson:"name"`
	Price    float64 `json:"price" bson:"price"` // unit price in taka
	Size     string  `json:"size" bson:"size"`
	Color    string  `json:"color,omitempty" bson:"color,omitempty"`
	Quantity int     `json:"quantity" bson:"quantity"`
	ImageURL string  `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
}

// CustomerInfo holds the shipping fields. All three must be non-empty
// after trimming before payment selection opens.
type CustomerInfo struct {
	Name    string `json:"name" bson:"name"`
	Phone   string `json:"phone" bson:"phone"`
	Address string `json:"address" bson:"address"`
}

// DeliveryZone is a flat-fee shipping tier.
type DeliveryZone string

const (
	ZoneInside  DeliveryZone = "inside"
	ZoneOutside DeliveryZone = "outside"
)

// Label returns the human-readable zone name used in order messages.
func (z DeliveryZone) Label() string {
	if z == ZoneOutside {
		return "Outside Dhaka"
	}
	return "Inside Dhaka"
}

type PaymentMethod string

const (
	PaymentCOD    PaymentMethod = "cod"
	PaymentWallet PaymentMethod = "wallet"
)

// Label returns the human-readable payment method name.
func (p PaymentMethod) Label() string {
	if p == PaymentWallet {
		return "bKash/Nagad (Send Money)"
	}
	return "Cash on Delivery"
}

// CheckoutSession is the frozen snapshot of one purchase attempt: the
// lines being bought (a single buy-now item or the whole cart), the
// customer's shipping info and the delivery/payment choices. It lives
// in memory only and is reset when checkout is cancelled or completed.
type CheckoutSession struct {
	Items         []CartLine    `json:"items"`
	Customer      CustomerInfo  `json:"customer"`
	Zone          DeliveryZone  `json:"zone"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	TransactionID string        `json:"transactionId,omitempty"` // required for wallet payments only
	CreatedAt     time.Time     `json:"createdAt"`
}
