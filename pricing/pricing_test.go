package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"shonar/models"
)

func TestSafeSubtotalEmpty(t *testing.T) {
	assert.Equal(t, 0.0, SafeSubtotal(nil))
	assert.Equal(t, 0.0, SafeSubtotal([]models.CartLine{}))
}

func TestSafeSubtotalReorderInvariant(t *testing.T) {
	a := models.CartLine{ID: "a", Price: 550, Quantity: 1}
	b := models.CartLine{ID: "b", Price: 120, Quantity: 3}
	c := models.CartLine{ID: "c", Price: 90, Quantity: 2}

	want := SafeSubtotal([]models.CartLine{a, b, c})
	assert.Equal(t, want, SafeSubtotal([]models.CartLine{c, a, b}))
	assert.Equal(t, want, SafeSubtotal([]models.CartLine{b, c, a}))
	assert.Equal(t, 550+360+180.0, want)
}

func TestSafeSubtotalClampsQuantity(t *testing.T) {
	lines := []models.CartLine{{ID: "a", Price: 100, Quantity: 0}}
	assert.Equal(t, 100.0, SafeSubtotal(lines))
	lines[0].Quantity = -4
	assert.Equal(t, 100.0, SafeSubtotal(lines))
}

func TestSafeSubtotalPoisonedLine(t *testing.T) {
	lines := []models.CartLine{
		{ID: "a", Price: 550, Quantity: 1},
		{ID: "bad", Price: math.Inf(1), Quantity: 1},
		{ID: "worse", Price: math.NaN(), Quantity: 2},
	}
	assert.Equal(t, 550.0, SafeSubtotal(lines))
}

func TestFeeTable(t *testing.T) {
	fees := FeeTable{models.ZoneInside: 60, models.ZoneOutside: 120}
	assert.Equal(t, 60.0, fees.Fee(models.ZoneInside))
	assert.Equal(t, 120.0, fees.Fee(models.ZoneOutside))
	// unknown zone falls back to inside
	assert.Equal(t, 60.0, fees.Fee(models.DeliveryZone("moon")))
}

func TestDefaultFeesFromEnv(t *testing.T) {
	t.Setenv("DELIVERY_FEE_INSIDE", "80")
	t.Setenv("DELIVERY_FEE_OUTSIDE", "junk")
	fees := DefaultFees()
	assert.Equal(t, 80.0, fees.Fee(models.ZoneInside))
	assert.Equal(t, 120.0, fees.Fee(models.ZoneOutside))
}

func TestTotalValidity(t *testing.T) {
	assert.Equal(t, 610.0, Total(550, 60))
	assert.True(t, Valid(610))
	assert.False(t, Valid(0))
	assert.False(t, Valid(-5))
	assert.False(t, Valid(math.NaN()))
	assert.False(t, Valid(math.Inf(1)))
}
