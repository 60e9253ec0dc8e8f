// Package orders is the order sink boundary: the durable store that
// records completed checkouts and serves the admin back office.
package orders

import (
	"context"
	"errors"
	"log"
	"sync"

	"shonar/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound      = errors.New("order not found")
	ErrInvalidStatus = errors.New("invalid order status")
)

// Sink is the contract the submission protocol writes through.
type Sink interface {
	CreateOrder(ctx context.Context, order models.Order) (models.Order, error)
	ListOrders(ctx context.Context) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) (models.Order, error)
}

// Mongo persists orders in a MongoDB collection.
type Mongo struct {
	coll *mongo.Collection
}

func NewMongo(coll *mongo.Collection) *Mongo {
	return &Mongo{coll: coll}
}

func (m *Mongo) CreateOrder(ctx context.Context, order models.Order) (models.Order, error) {
	if _, err := m.coll.InsertOne(ctx, order); err != nil {
		return models.Order{}, err
	}
	return order, nil
}

// ListOrders returns orders newest-first. Malformed persisted records
// are dropped, never surfaced as fatal errors.
func (m *Mongo) ListOrders(ctx context.Context) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := m.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	for cursor.Next(ctx) {
		var order models.Order
		if err := cursor.Decode(&order); err != nil {
			log.Println("ListOrders skipping undecodable record:", err)
			continue
		}
		if order.OrderID == "" || !models.ValidOrderStatus(order.Status) {
			continue
		}
		orders = append(orders, order)
	}
	return orders, cursor.Err()
}

func (m *Mongo) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) (models.Order, error) {
	if !models.ValidOrderStatus(status) {
		return models.Order{}, ErrInvalidStatus
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	res := m.coll.FindOneAndUpdate(ctx,
		bson.M{"orderId": id},
		bson.M{"$set": bson.M{"status": status}},
		opts,
	)

	var order models.Order
	if err := res.Decode(&order); err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Order{}, ErrNotFound
		}
		return models.Order{}, err
	}
	return order, nil
}

// MemorySink is the in-memory Sink used in tests.
type MemorySink struct {
	mu     sync.Mutex
	orders []models.Order
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (m *MemorySink) CreateOrder(_ context.Context, order models.Order) (models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders = append([]models.Order{order}, m.orders...)
	return order, nil
}

func (m *MemorySink) ListOrders(_ context.Context) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Order, len(m.orders))
	copy(out, m.orders)
	return out, nil
}

func (m *MemorySink) UpdateOrderStatus(_ context.Context, id string, status models.OrderStatus) (models.Order, error) {
	if !models.ValidOrderStatus(status) {
		return models.Order{}, ErrInvalidStatus
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.orders {
		if m.orders[i].OrderID == id {
			m.orders[i].Status = status
			return m.orders[i], nil
		}
	}
	return models.Order{}, ErrNotFound
}
