package routes

import (
	"shonar/cart"
	"shonar/catalog"
	"shonar/checkout"
	"shonar/mq"
	"shonar/orders"
	"shonar/ratelim"
	"shonar/receipt"
	"shonar/userdata"

	"github.com/julienschmidt/httprouter"
)

// Handlers bundles every feature handler for route registration.
type Handlers struct {
	Cart     *cart.Handler
	Checkout *checkout.Handler
	Catalog  *catalog.Handler
	Orders   *orders.Handler
	Receipt  *receipt.Handler
	Userdata *userdata.Handler
	Hub      *mq.Hub
}

func RoutesWrapper(router *httprouter.Router, rateLimiter *ratelim.RateLimiter, h *Handlers) {
	AddCatalogRoutes(router, rateLimiter, h)
	AddCartRoutes(router, rateLimiter, h)
	AddCheckoutRoutes(router, rateLimiter, h)
	AddOrderRoutes(router, rateLimiter, h)
	AddUserdataRoutes(router, rateLimiter, h)
}

func AddCatalogRoutes(router *httprouter.Router, rateLimiter *ratelim.RateLimiter, h *Handlers) {
	router.GET("/api/products", h.Catalog.GetProducts)
	router.GET("/api/products/:id", h.Catalog.GetProduct)
	router.GET("/api/filters", h.Catalog.GetFilters)
	router.GET("/api/announcement", h.Catalog.GetAnnouncement)
	router.POST("/api/products", rateLimiter.Limit(h.Catalog.UpsertProduct))
}

func AddCartRoutes(router *httprouter.Router, rateLimiter *ratelim.RateLimiter, h *Handlers) {
	router.GET("/api/cart", h.Cart.GetCart)
	router.POST("/api/cart", h.Cart.AddToCart)
	router.PUT("/api/cart/:index", h.Cart.UpdateQuantity)
	router.DELETE("/api/cart/:index", h.Cart.RemoveLine)
	router.DELETE("/api/cart", h.Cart.ClearCart)
}

func AddCheckoutRoutes(router *httprouter.Router, rateLimiter *ratelim.RateLimiter, h *Handlers) {
	router.GET("/api/checkout", h.Checkout.GetCheckout)
	router.POST("/api/checkout/buynow", h.Checkout.BeginBuyNow)
	router.POST("/api/checkout/cart", h.Checkout.BeginFromCart)
	router.POST("/api/checkout/shipping/open", h.Checkout.ProceedToShipping)
	router.POST("/api/checkout/shipping", h.Checkout.SubmitShipping)
	router.POST("/api/checkout/payment", h.Checkout.SelectPayment)
	router.POST("/api/checkout/online", h.Checkout.SetOnline)
	router.POST("/api/checkout/submit", rateLimiter.Limit(h.Checkout.Submit))
	router.POST("/api/checkout/back", h.Checkout.Back)
	router.POST("/api/checkout/cancel", h.Checkout.Cancel)
}

func AddOrderRoutes(router *httprouter.Router, rateLimiter *ratelim.RateLimiter, h *Handlers) {
	router.GET("/api/orders", h.Orders.ListOrders)
	router.PUT("/api/orders/:id/status", rateLimiter.Limit(h.Orders.UpdateStatus))
	router.GET("/api/orders/:id/receipt", h.Receipt.GetReceipt)
	router.GET("/ws/orders", mq.WebSocketHandler(h.Hub))
}

func AddUserdataRoutes(router *httprouter.Router, rateLimiter *ratelim.RateLimiter, h *Handlers) {
	router.GET("/api/userdata/recent", h.Userdata.GetRecentlyViewed)
	router.POST("/api/userdata/recent/:id", h.Userdata.MarkViewed)
	router.GET("/api/userdata/prefs", h.Userdata.GetPrefs)
	router.POST("/api/userdata/prefs", h.Userdata.SetPrefs)
}
