package orders

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"shonar/models"
	"shonar/mq"
	"shonar/utils"

	"github.com/julienschmidt/httprouter"
)

// Handler serves the admin back-office order endpoints.
type Handler struct {
	Sink    Sink
	Emitter *mq.Emitter // nil skips the cross-view broadcast
}

func NewHandler(sink Sink, emitter *mq.Emitter) *Handler {
	return &Handler{Sink: sink, Emitter: emitter}
}

// ListOrders returns all orders, newest first, malformed records
// already filtered out.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	list, err := h.Sink.ListOrders(ctx)
	if err != nil {
		log.Println("ListOrders error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Could not retrieve orders")
		return
	}
	if list == nil {
		list = []models.Order{}
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

// UpdateStatus moves an order between pending, delivering, sent and
// failed, then nudges other open admin views.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var payload struct {
		Status models.OrderStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		log.Println("UpdateStatus decode error:", err)
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	order, err := h.Sink.UpdateOrderStatus(ctx, ps.ByName("id"), payload.Status)
	switch err {
	case nil:
	case ErrInvalidStatus:
		utils.RespondWithError(w, http.StatusBadRequest, "Unknown order status")
		return
	case ErrNotFound:
		utils.RespondWithError(w, http.StatusNotFound, "Order not found")
		return
	default:
		log.Println("UpdateStatus error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update order")
		return
	}

	h.Emitter.OrdersChanged(ctx, order.OrderID)
	utils.RespondWithJSON(w, http.StatusOK, order)
}
