package orders

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shonar/models"
)

func sampleOrder(id string) models.Order {
	return models.Order{
		OrderID:       id,
		Items:         []models.CartLine{{ID: "a", Name: "Kurti", Price: 550, Size: "M", Quantity: 1}},
		Customer:      models.CustomerInfo{Name: "F", Phone: "017", Address: "Dhaka"},
		Zone:          models.ZoneInside,
		PaymentMethod: models.PaymentCOD,
		Total:         610,
		Status:        models.OrderPending,
		CreatedAt:     time.Now(),
	}
}

func TestMemorySinkLifecycle(t *testing.T) {
	sink := NewMemorySink()
	ctx := context.Background()

	created, err := sink.CreateOrder(ctx, sampleOrder("ORD1"))
	require.NoError(t, err)
	assert.Equal(t, models.OrderPending, created.Status)

	_, err = sink.CreateOrder(ctx, sampleOrder("ORD2"))
	require.NoError(t, err)

	list, err := sink.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "ORD2", list[0].OrderID) // newest first

	updated, err := sink.UpdateOrderStatus(ctx, "ORD1", models.OrderDelivering)
	require.NoError(t, err)
	assert.Equal(t, models.OrderDelivering, updated.Status)

	_, err = sink.UpdateOrderStatus(ctx, "ORD1", models.OrderStatus("shipped"))
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = sink.UpdateOrderStatus(ctx, "missing", models.OrderSent)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestValidOrderStatus(t *testing.T) {
	for _, s := range []models.OrderStatus{
		models.OrderPending, models.OrderDelivering, models.OrderSent, models.OrderFailed,
	} {
		assert.True(t, models.ValidOrderStatus(s))
	}
	assert.False(t, models.ValidOrderStatus("completed"))
	assert.False(t, models.ValidOrderStatus(""))
}
