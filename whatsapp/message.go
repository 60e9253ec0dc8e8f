// Package whatsapp builds the outbound order artifacts: the
// human-readable order message, its percent-encoded deep link, and the
// durable Order record written through the order sink.
package whatsapp

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"shonar/models"
	"shonar/normalize"
)

// BaseURL is the messaging deep-link prefix the encoded text rides on.
const BaseURL = "https://wa.me/"

// BuildMessage renders the deterministic order text: greeting,
// customer fields, one formatted line per cart line, then the money
// summary and payment details. Size and color only appear when they
// carry information.
func BuildMessage(session models.CheckoutSession, subtotal, fee, total float64) string {
	var b strings.Builder

	b.WriteString("Assalamu Alaikum! I would like to place an order.\n\n")
	b.WriteString("Customer: " + session.Customer.Name + "\n")
	b.WriteString("Phone: " + session.Customer.Phone + "\n")
	b.WriteString("Address: " + session.Customer.Address + "\n\n")

	for i, line := range session.Items {
		b.WriteString(formatLine(i+1, line))
		b.WriteByte('\n')
	}

	b.WriteString("\nSubtotal: " + amount(subtotal) + "\n")
	b.WriteString("Delivery: " + session.Zone.Label() + " (Fee: " + amount(fee) + ")\n")
	b.WriteString("Order Total: " + amount(total) + "\n")
	b.WriteString("Payment: " + session.PaymentMethod.Label() + "\n")
	if session.TransactionID != "" {
		b.WriteString("Transaction ID: " + session.TransactionID + "\n")
	}

	return b.String()
}

// formatLine renders "{index}. {name} | Qty: {q} | Unit: {p} | Line Total: {p*q}"
// with size/color detail inserted after the name when meaningful.
func formatLine(index int, line models.CartLine) string {
	qty := line.Quantity
	if qty < 1 {
		qty = 1
	}

	name := line.Name
	var detail []string
	if line.Size != "" && line.Size != normalize.DefaultSize {
		detail = append(detail, "Size: "+line.Size)
	}
	if line.Color != "" {
		detail = append(detail, "Color: "+line.Color)
	}
	if len(detail) > 0 {
		name += " (" + strings.Join(detail, ", ") + ")"
	}

	return fmt.Sprintf("%d. %s | Qty: %d | Unit: %s | Line Total: %s",
		index, name, qty, amount(line.Price), amount(line.Price*float64(qty)))
}

// DeepLink appends the percent-encoded message to the wa.me URL for
// the configured destination number.
func DeepLink(number, message string) string {
	// QueryEscape uses '+' for spaces; the deep link wants %20.
	encoded := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	return BaseURL + number + "?text=" + encoded
}

func amount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
