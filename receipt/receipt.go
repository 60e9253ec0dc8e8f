// Package receipt renders a downloadable PDF for a submitted order,
// with a QR code that reopens the WhatsApp conversation for the order.
package receipt

import (
	"bytes"
	"fmt"

	"shonar/models"
	"shonar/normalize"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
)

// Build renders the order receipt. deepLink is encoded into the QR so
// the shopper can jump back into the WhatsApp thread from paper.
func Build(order models.Order, deepLink string) ([]byte, error) {
	qrPNG, err := qrcode.Encode(deepLink, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("receipt qr: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Shonar Order Receipt")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 10, fmt.Sprintf("Order ID: %s", order.OrderID))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Name: %s", order.Customer.Name))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Phone: %s", order.Customer.Phone))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Address: %s", order.Customer.Address))
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 10, "Items")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 11)
	for i, line := range order.Items {
		qty := line.Quantity
		if qty < 1 {
			qty = 1
		}
		label := line.Name
		if line.Size != "" && line.Size != normalize.DefaultSize {
			label += " (" + line.Size + ")"
		}
		pdf.Cell(0, 8, fmt.Sprintf("%d. %s  x%d  Tk %.0f", i+1, label, qty, line.Price*float64(qty)))
		pdf.Ln(6)
	}

	pdf.Ln(6)
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 10, fmt.Sprintf("Total: Tk %.0f (%s)", order.Total, order.Zone.Label()))
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 8, fmt.Sprintf("Payment: %s", order.PaymentMethod.Label()))
	if order.TransactionID != "" {
		pdf.Ln(6)
		pdf.Cell(0, 8, fmt.Sprintf("Transaction ID: %s", order.TransactionID))
	}

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 30, 40, 40, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("receipt pdf: %w", err)
	}
	return buf.Bytes(), nil
}
