package checkout

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"shonar/catalog"
	"shonar/models"
	"shonar/utils"

	"github.com/julienschmidt/httprouter"
)

// Handler exposes the checkout machine over HTTP. Buy-now resolves
// the product through the catalog reader so untyped client payloads
// never define prices.
type Handler struct {
	Machines *Manager
	Catalog  catalog.Reader
}

func NewHandler(machines *Manager, reader catalog.Reader) *Handler {
	return &Handler{Machines: machines, Catalog: reader}
}

type checkoutView struct {
	State      State                  `json:"state"`
	Session    models.CheckoutSession `json:"session"`
	Subtotal   float64                `json:"subtotal"`
	Fee        float64                `json:"fee"`
	Total      float64                `json:"total"`
	Submitting bool                   `json:"submitting"`
	Notices    []Notice               `json:"notices"`
}

func view(m *Machine) checkoutView {
	subtotal, fee, total := m.Total()
	notices := m.Notices()
	if notices == nil {
		notices = []Notice{}
	}
	return checkoutView{
		State:      m.State(),
		Session:    m.Session(),
		Subtotal:   subtotal,
		Fee:        fee,
		Total:      total,
		Submitting: m.Submitting(),
		Notices:    notices,
	}
}

func (h *Handler) machine(ctx context.Context, w http.ResponseWriter, r *http.Request) *Machine {
	return h.Machines.Get(ctx, utils.ShopperID(w, r))
}

// GetCheckout reports the current state, totals and pending notices.
func (h *Handler) GetCheckout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	utils.RespondWithJSON(w, http.StatusOK, view(h.machine(ctx, w, r)))
}

// BeginBuyNow starts checkout for one product. A missing size refuses
// silently with no state change, mirroring the pre-validated UI path.
func (h *Handler) BeginBuyNow(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var payload struct {
		ProductID string  `json:"productId"`
		Size      string  `json:"size"`
		Quantity  float64 `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		log.Println("BeginBuyNow decode error:", err)
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	product, ok := h.Catalog.ProductByID(ctx, payload.ProductID)
	if !ok {
		utils.RespondWithError(w, http.StatusNotFound, "Product not found")
		return
	}

	m := h.machine(ctx, w, r)
	qty := int(payload.Quantity)
	if qty < 1 {
		qty = 1
	}
	if !m.BeginBuyNow(product, payload.Size, qty) {
		// silent refusal: respond with the unchanged state
		utils.RespondWithJSON(w, http.StatusOK, view(m))
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, view(m))
}

// BeginFromCart starts checkout over the whole cart.
func (h *Handler) BeginFromCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	m := h.machine(ctx, w, r)
	if !m.BeginFromCart() {
		utils.RespondWithJSON(w, http.StatusConflict, view(m))
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, view(m))
}

// ProceedToShipping moves from review to the shipping form.
func (h *Handler) ProceedToShipping(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	m := h.machine(ctx, w, r)
	if !m.ProceedToShipping() {
		utils.RespondWithJSON(w, http.StatusConflict, view(m))
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, view(m))
}

// SubmitShipping validates and stores the customer fields.
func (h *Handler) SubmitShipping(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var info models.CustomerInfo
	if err := json.NewDecoder(r.Body).Decode(&info); err != nil {
		log.Println("SubmitShipping decode error:", err)
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	m := h.machine(ctx, w, r)
	if !m.SubmitShipping(info) {
		utils.RespondWithJSON(w, http.StatusUnprocessableEntity, view(m))
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, view(m))
}

// SelectPayment records zone, method and optional transaction id.
func (h *Handler) SelectPayment(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var payload struct {
		Method        models.PaymentMethod `json:"method"`
		Zone          models.DeliveryZone  `json:"zone"`
		TransactionID string               `json:"transactionId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		log.Println("SelectPayment decode error:", err)
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	m := h.machine(ctx, w, r)
	if payload.Zone != "" && !m.SetZone(payload.Zone) {
		utils.RespondWithError(w, http.StatusBadRequest, "Unknown delivery zone")
		return
	}
	if payload.Method != "" && !m.SelectPayment(payload.Method) {
		utils.RespondWithError(w, http.StatusConflict, "Payment selection is not open")
		return
	}
	if payload.TransactionID != "" {
		m.SetTransactionID(payload.TransactionID)
	}
	utils.RespondWithJSON(w, http.StatusOK, view(m))
}

// SetOnline records the client-reported connectivity flag.
func (h *Handler) SetOnline(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var payload struct {
		Online bool `json:"online"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	h.machine(ctx, w, r).SetOnline(payload.Online)
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"online": payload.Online})
}

// Submit runs the single-flight order submission.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	m := h.machine(ctx, w, r)
	result, ok := m.Submit(ctx)
	if !ok {
		utils.RespondWithJSON(w, http.StatusConflict, view(m))
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{
		"order":    result.Order,
		"message":  result.Message,
		"deepLink": result.DeepLink,
		"state":    m.State(),
	})
}

// Back steps one stage backwards.
func (h *Handler) Back(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	m := h.machine(ctx, w, r)
	m.Back()
	utils.RespondWithJSON(w, http.StatusOK, view(m))
}

// Cancel dismisses checkout and resets the session.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	m := h.machine(ctx, w, r)
	m.Cancel()
	utils.RespondWithJSON(w, http.StatusOK, view(m))
}
