package userdata

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"shonar/catalog"
	"shonar/utils"

	"github.com/julienschmidt/httprouter"
)

// Handler serves the preference endpoints. MarkViewed resolves the
// product through the catalog so the shelf only ever holds canonical
// records.
type Handler struct {
	Prefs   *Prefs
	Catalog catalog.Reader
}

func NewHandler(prefs *Prefs, reader catalog.Reader) *Handler {
	return &Handler{Prefs: prefs, Catalog: reader}
}

func (h *Handler) GetRecentlyViewed(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	shelf := h.Prefs.RecentlyViewed(ctx, utils.ShopperID(w, r))
	utils.RespondWithJSON(w, http.StatusOK, shelf)
}

func (h *Handler) MarkViewed(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	product, ok := h.Catalog.ProductByID(ctx, ps.ByName("id"))
	if !ok {
		utils.RespondWithError(w, http.StatusNotFound, "Product not found")
		return
	}
	h.Prefs.MarkViewed(ctx, utils.ShopperID(w, r), product)
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"status": "recorded"})
}

func (h *Handler) GetPrefs(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	shopperID := utils.ShopperID(w, r)
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"language": h.Prefs.Language(ctx, shopperID),
		"consent":  h.Prefs.Consent(ctx, shopperID),
	})
}

func (h *Handler) SetPrefs(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var payload struct {
		Language string `json:"language"`
		Consent  string `json:"consent"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		log.Println("SetPrefs decode error:", err)
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	shopperID := utils.ShopperID(w, r)
	if payload.Language != "" && !h.Prefs.SetLanguage(ctx, shopperID, payload.Language) {
		utils.RespondWithError(w, http.StatusBadRequest, "Unknown language")
		return
	}
	if payload.Consent != "" && !h.Prefs.SetConsent(ctx, shopperID, payload.Consent) {
		utils.RespondWithError(w, http.StatusBadRequest, "Unknown consent value")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"status": "saved"})
}
