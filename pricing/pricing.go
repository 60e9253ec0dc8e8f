// Package pricing computes cart totals. All entry points re-derive
// through safe coercion so a poisoned line can never poison the total.
package pricing

import (
	"math"
	"os"
	"strconv"

	"shonar/models"
)

// Reference deployment fees in taka. Overridable per deployment via
// DELIVERY_FEE_INSIDE / DELIVERY_FEE_OUTSIDE.
const (
	defaultInsideFee  = 60
	defaultOutsideFee = 120
)

// FeeTable maps a delivery zone to its flat fee. It is deployment
// configuration, injected into checkout rather than read inside the
// math.
type FeeTable map[models.DeliveryZone]float64

// DefaultFees builds the fee table from the environment, falling back
// to the reference deployment values.
func DefaultFees() FeeTable {
	return FeeTable{
		models.ZoneInside:  envFee("DELIVERY_FEE_INSIDE", defaultInsideFee),
		models.ZoneOutside: envFee("DELIVERY_FEE_OUTSIDE", defaultOutsideFee),
	}
}

// Fee returns the flat fee for zone. Unknown zones fall back to the
// inside-zone fee rather than a zero fee.
func (t FeeTable) Fee(zone models.DeliveryZone) float64 {
	if fee, ok := t[zone]; ok {
		return fee
	}
	return t[models.ZoneInside]
}

// SafeSubtotal sums price × max(1, floor(quantity)) over all lines.
// Any non-finite per-line result contributes 0. Returns 0 for an
// empty list and is invariant under reordering.
func SafeSubtotal(lines []models.CartLine) float64 {
	var sum float64
	for _, line := range lines {
		qty := line.Quantity
		if qty < 1 {
			qty = 1
		}
		lineTotal := line.Price * float64(qty)
		if math.IsNaN(lineTotal) || math.IsInf(lineTotal, 0) {
			continue
		}
		sum += lineTotal
	}
	return sum
}

// Total is subtotal + fee. Submission additionally requires Valid.
func Total(subtotal, fee float64) float64 {
	return subtotal + fee
}

// Valid reports whether a computed total may be submitted: finite and
// strictly positive. A zero, negative or non-finite total is always a
// blocking error.
func Valid(total float64) bool {
	return !math.IsNaN(total) && !math.IsInf(total, 0) && total > 0
}

func envFee(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	fee, err := strconv.ParseFloat(v, 64)
	if err != nil || fee < 0 {
		return fallback
	}
	return fee
}
