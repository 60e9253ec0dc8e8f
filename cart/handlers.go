package cart

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"shonar/models"
	"shonar/utils"

	"github.com/julienschmidt/httprouter"
)

// Handler exposes the cart store over HTTP. Every route resolves the
// shopper from the session cookie and funnels through the Manager.
type Handler struct {
	Carts *Manager
}

func NewHandler(carts *Manager) *Handler {
	return &Handler{Carts: carts}
}

type cartView struct {
	Hydrating bool              `json:"hydrating"`
	Items     []models.CartLine `json:"items"`
	Subtotal  float64           `json:"subtotal"`
	Updated   []bool            `json:"updated"`
}

func (h *Handler) view(store *Store) cartView {
	lines := store.Lines()
	updated := make([]bool, len(lines))
	for i, line := range lines {
		updated[i] = store.Updated(line.ID, line.Size)
	}
	return cartView{
		Hydrating: store.Hydrating(),
		Items:     lines,
		Subtotal:  store.Subtotal(),
		Updated:   updated,
	}
}

// GetCart returns the shopper's cart with subtotal and marker state.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	store := h.Carts.Get(ctx, utils.ShopperID(w, r))
	utils.RespondWithJSON(w, http.StatusOK, h.view(store))
}

// AddToCart normalizes the posted record and merges it into the cart.
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		log.Println("AddToCart decode error:", err)
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	store := h.Carts.Get(ctx, utils.ShopperID(w, r))
	line, ok := store.Add(ctx, raw)
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "Missing or invalid fields")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"status": "added", "line": line})
}

// UpdateQuantity sets the quantity of the line at :index. Zero or a
// negative quantity removes the line.
func (h *Handler) UpdateQuantity(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	index, err := strconv.Atoi(ps.ByName("index"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid line index")
		return
	}

	var payload struct {
		Quantity float64 `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		log.Println("UpdateQuantity decode error:", err)
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	store := h.Carts.Get(ctx, utils.ShopperID(w, r))
	if !store.UpdateQuantity(ctx, index, payload.Quantity) {
		utils.RespondWithError(w, http.StatusNotFound, "No cart line at that index")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, h.view(store))
}

// RemoveLine deletes the line at :index.
func (h *Handler) RemoveLine(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	index, err := strconv.Atoi(ps.ByName("index"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid line index")
		return
	}

	store := h.Carts.Get(ctx, utils.ShopperID(w, r))
	if !store.Remove(ctx, index) {
		utils.RespondWithError(w, http.StatusNotFound, "No cart line at that index")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, h.view(store))
}

// ClearCart empties the shopper's cart.
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	store := h.Carts.Get(ctx, utils.ShopperID(w, r))
	store.Clear(ctx)
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"status": "cleared"})
}
