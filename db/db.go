package db

import (
	"context"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collections groups the storefront's MongoDB collections. Adapters
// receive the collection they need instead of reaching for globals, so
// tests can substitute in-memory implementations.
type Collections struct {
	Products      *mongo.Collection
	Filters       *mongo.Collection
	Announcements *mongo.Collection
	Orders        *mongo.Collection
}

// Connect dials MongoDB using MONGO_URI (default localhost) and
// returns the client plus the shonar collections.
func Connect(ctx context.Context) (*mongo.Client, Collections, error) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, Collections{}, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, Collections{}, err
	}

	database := client.Database("shonardb")
	colls := Collections{
		Products:      database.Collection("products"),
		Filters:       database.Collection("filters"),
		Announcements: database.Collection("announcements"),
		Orders:        database.Collection("orders"),
	}
	return client, colls, nil
}
