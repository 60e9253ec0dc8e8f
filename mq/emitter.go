// Package mq carries the advisory "orders changed" signal from the
// submission path to any open admin views: a Redis pub/sub channel
// fanned out over a websocket hub. Delivery is best-effort, not
// transactional; views refresh when nudged.
package mq

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"
)

const ordersChannel = "order-events"

// Event is one broadcast message.
type Event struct {
	Kind    string `json:"kind"` // "orders_changed"
	OrderID string `json:"orderId,omitempty"`
}

// Emitter publishes order events to Redis.
type Emitter struct {
	conn *redis.Client
}

func NewEmitter(conn *redis.Client) *Emitter {
	return &Emitter{conn: conn}
}

// OrdersChanged publishes the refresh nudge. Failures are logged and
// swallowed: a lost signal only delays an admin refresh.
func (e *Emitter) OrdersChanged(ctx context.Context, orderID string) {
	if e == nil || e.conn == nil {
		return
	}
	data, err := json.Marshal(Event{Kind: "orders_changed", OrderID: orderID})
	if err != nil {
		log.Println("OrdersChanged marshal error:", err)
		return
	}
	if err := e.conn.Publish(ctx, ordersChannel, data).Err(); err != nil {
		log.Println("OrdersChanged publish error:", err)
	}
}

// StartOrdersWorker subscribes to the Redis channel and forwards every
// event to the hub. Runs until ctx is done.
func StartOrdersWorker(ctx context.Context, conn *redis.Client, hub *Hub) {
	sub := conn.Subscribe(ctx, ordersChannel)
	defer sub.Close()
	ch := sub.Channel()

	log.Println("[OrdersWorker] listening for order events...")
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Println("[OrdersWorker] bad event payload:", err)
				continue
			}
			hub.Broadcast([]byte(msg.Payload))
		}
	}
}
