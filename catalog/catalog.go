// Package catalog is the product/filter/announcement reader boundary.
// Backends are interchangeable adapters behind Reader; core logic
// never branches on which one is active. All adapters tolerate empty
// or malformed payloads by degrading to empty defaults.
package catalog

import (
	"context"
	"log"
	"math"

	"shonar/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Reader fetches storefront content. Implementations must never
// surface a malformed record: filter it out and carry on.
type Reader interface {
	Products(ctx context.Context) ([]models.Product, error)
	ProductByID(ctx context.Context, id string) (models.Product, bool)
	Filters(ctx context.Context) ([]models.FilterOption, error)
	Announcement(ctx context.Context) (models.Announcement, error)
}

// Mongo reads the catalog collections.
type Mongo struct {
	products      *mongo.Collection
	filters       *mongo.Collection
	announcements *mongo.Collection
}

func NewMongo(products, filters, announcements *mongo.Collection) *Mongo {
	return &Mongo{products: products, filters: filters, announcements: announcements}
}

func (m *Mongo) Products(ctx context.Context) ([]models.Product, error) {
	cursor, err := m.products.Find(ctx, bson.M{})
	if err != nil {
		log.Println("catalog Products find error:", err)
		return []models.Product{}, nil
	}
	defer cursor.Close(ctx)

	out := []models.Product{}
	for cursor.Next(ctx) {
		var p models.Product
		if err := cursor.Decode(&p); err != nil {
			log.Println("catalog skipping undecodable product:", err)
			continue
		}
		if !validProduct(p) {
			continue
		}
		if len(p.Sizes) == 0 {
			p.Sizes = []string{"Free Size"}
		}
		out = append(out, p)
	}
	return out, nil
}

func (m *Mongo) ProductByID(ctx context.Context, id string) (models.Product, bool) {
	var p models.Product
	err := m.products.FindOne(ctx, bson.M{"productId": id}).Decode(&p)
	if err != nil || !validProduct(p) {
		return models.Product{}, false
	}
	if len(p.Sizes) == 0 {
		p.Sizes = []string{"Free Size"}
	}
	return p, true
}

func (m *Mongo) Filters(ctx context.Context) ([]models.FilterOption, error) {
	cursor, err := m.filters.Find(ctx, bson.M{})
	if err != nil {
		log.Println("catalog Filters find error:", err)
		return []models.FilterOption{}, nil
	}
	defer cursor.Close(ctx)

	out := []models.FilterOption{}
	for cursor.Next(ctx) {
		var f models.FilterOption
		if err := cursor.Decode(&f); err != nil || f.Key == "" {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

func (m *Mongo) Announcement(ctx context.Context) (models.Announcement, error) {
	var a models.Announcement
	if err := m.announcements.FindOne(ctx, bson.M{"active": true}).Decode(&a); err != nil {
		// no active banner is the normal case, not an error
		return models.Announcement{}, nil
	}
	return a, nil
}

// UpsertProduct writes an admin-edited product, keyed by productId.
func (m *Mongo) UpsertProduct(ctx context.Context, p models.Product) error {
	_, err := m.products.UpdateOne(ctx,
		bson.M{"productId": p.ProductID},
		bson.M{"$set": p},
		options.Update().SetUpsert(true),
	)
	return err
}

func validProduct(p models.Product) bool {
	return p.ProductID != "" && p.Name != "" &&
		p.Price >= 0 && !math.IsNaN(p.Price) && !math.IsInf(p.Price, 0)
}
