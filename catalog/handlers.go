package catalog

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"shonar/models"
	"shonar/normalize"
	"shonar/utils"

	"github.com/julienschmidt/httprouter"
)

// Handler serves the storefront catalog endpoints and the admin
// product upsert.
type Handler struct {
	Reader Reader
	Admin  *Mongo  // nil disables admin writes
	Cache  *Cached // nil when caching is off
}

func NewHandler(reader Reader, admin *Mongo, cache *Cached) *Handler {
	return &Handler{Reader: reader, Admin: admin, Cache: cache}
}

// GetProducts returns the catalog, already filtered of invalid entries.
func (h *Handler) GetProducts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	products, err := h.Reader.Products(ctx)
	if err != nil {
		log.Println("GetProducts error:", err)
		products = nil
	}
	if products == nil {
		products = []models.Product{}
	}
	utils.RespondWithJSON(w, http.StatusOK, products)
}

// GetProduct returns one product by id.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	product, ok := h.Reader.ProductByID(ctx, ps.ByName("id"))
	if !ok {
		utils.RespondWithError(w, http.StatusNotFound, "Product not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, product)
}

// GetFilters returns the filter bar options.
func (h *Handler) GetFilters(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	filters, err := h.Reader.Filters(ctx)
	if err != nil {
		log.Println("GetFilters error:", err)
		filters = nil
	}
	if filters == nil {
		filters = []models.FilterOption{}
	}
	utils.RespondWithJSON(w, http.StatusOK, filters)
}

// GetAnnouncement returns the active banner, or an inactive default.
func (h *Handler) GetAnnouncement(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	a, err := h.Reader.Announcement(ctx)
	if err != nil {
		log.Println("GetAnnouncement error:", err)
		a = models.Announcement{}
	}
	utils.RespondWithJSON(w, http.StatusOK, a)
}

// UpsertProduct validates an admin payload at the boundary and writes
// it through. Untyped data never crosses into the catalog unchecked.
func (h *Handler) UpsertProduct(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if h.Admin == nil {
		utils.RespondWithError(w, http.StatusNotImplemented, "Catalog writes are disabled")
		return
	}

	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		log.Println("UpsertProduct decode error:", err)
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	product, ok := normalize.Product(raw)
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "Missing or invalid product fields")
		return
	}

	if err := h.Admin.UpsertProduct(ctx, product); err != nil {
		log.Println("UpsertProduct write error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to save product")
		return
	}
	if h.Cache != nil {
		h.Cache.Invalidate(ctx)
	}
	utils.RespondWithJSON(w, http.StatusCreated, product)
}
