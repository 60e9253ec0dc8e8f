package models

// Product is a catalog entry. Immutable once read; the cart and
// checkout layers treat it as read-only input.
type Product struct {
	ProductID string   `json:"id" bson:"productId"`
	Name      string   `json:"name" bson:"name"`
	Price     float64  `json:"price" bson:"price"` // taka
	ImageURL  string   `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
	Category  string   `json:"category" bson:"category"`
	Sizes     []string `json:"sizes" bson:"sizes"`
	Colors    []string `json:"colors,omitempty" bson:"colors,omitempty"`
}

// FilterOption is one entry of the storefront's category filter bar.
type FilterOption struct {
	Key    string `json:"key" bson:"key"`
	Label  string `json:"label" bson:"label"`
	Active bool   `json:"active" bson:"active"`
}

// Announcement is the banner shown above the storefront header.
type Announcement struct {
	Text   string `json:"text" bson:"text"`
	Active bool   `json:"active" bson:"active"`
}
