// Package userdata persists small per-shopper preferences: the
// recently-viewed shelf, language choice and cookie consent. Every
// read parses defensively and falls back to a default; a corrupt
// record can only cost the shopper a preference, never an error page.
package userdata

import (
	"context"
	"encoding/json"
	"log"

	"shonar/kv"
	"shonar/models"
)

// maxRecentlyViewed caps the shelf at the two most recent products.
const maxRecentlyViewed = 2

const defaultLanguage = "bn"

type Prefs struct {
	storage kv.Store
}

func NewPrefs(storage kv.Store) *Prefs {
	return &Prefs{storage: storage}
}

// RecentlyViewed returns the shopper's shelf, most recent first.
func (p *Prefs) RecentlyViewed(ctx context.Context, shopperID string) []models.Product {
	data, err := p.storage.Get(ctx, "recent:"+shopperID)
	if err != nil || data == "" {
		return []models.Product{}
	}
	var items []models.Product
	if err := json.Unmarshal([]byte(data), &items); err != nil {
		return []models.Product{}
	}
	if len(items) > maxRecentlyViewed {
		items = items[:maxRecentlyViewed]
	}
	return items
}

// MarkViewed pushes a product to the front of the shelf, dropping
// duplicates and anything beyond the cap.
func (p *Prefs) MarkViewed(ctx context.Context, shopperID string, product models.Product) {
	if product.ProductID == "" {
		return
	}
	shelf := []models.Product{product}
	for _, existing := range p.RecentlyViewed(ctx, shopperID) {
		if existing.ProductID == product.ProductID {
			continue
		}
		shelf = append(shelf, existing)
		if len(shelf) == maxRecentlyViewed {
			break
		}
	}
	data, err := json.Marshal(shelf)
	if err != nil {
		return
	}
	if err := p.storage.Set(ctx, "recent:"+shopperID, string(data)); err != nil {
		log.Println("MarkViewed write error:", err)
	}
}

// Language returns the shopper's language preference, defaulting to
// Bangla.
func (p *Prefs) Language(ctx context.Context, shopperID string) string {
	lang, err := p.storage.Get(ctx, "lang:"+shopperID)
	if err != nil || (lang != "bn" && lang != "en") {
		return defaultLanguage
	}
	return lang
}

func (p *Prefs) SetLanguage(ctx context.Context, shopperID, lang string) bool {
	if lang != "bn" && lang != "en" {
		return false
	}
	if err := p.storage.Set(ctx, "lang:"+shopperID, lang); err != nil {
		log.Println("SetLanguage write error:", err)
		return false
	}
	return true
}

// Consent reports the stored cookie-consent choice: "accepted",
// "declined" or "" when undecided.
func (p *Prefs) Consent(ctx context.Context, shopperID string) string {
	consent, err := p.storage.Get(ctx, "consent:"+shopperID)
	if err != nil || (consent != "accepted" && consent != "declined") {
		return ""
	}
	return consent
}

func (p *Prefs) SetConsent(ctx context.Context, shopperID, consent string) bool {
	if consent != "accepted" && consent != "declined" {
		return false
	}
	if err := p.storage.Set(ctx, "consent:"+shopperID, consent); err != nil {
		log.Println("SetConsent write error:", err)
		return false
	}
	return true
}
