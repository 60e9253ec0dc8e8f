package utils

import (
	"net/http"

	"github.com/google/uuid"
)

const shopperCookie = "shonar_shopper"

// ShopperID returns the anonymous shopper token from the request
// cookie, minting and setting a fresh one when absent. The token keys
// the shopper's cart, checkout session and preferences.
func ShopperID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(shopperCookie); err == nil && c.Value != "" {
		return c.Value
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     shopperCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   60 * 60 * 24 * 180,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}
