package receipt

import (
	"context"
	"net/http"
	"time"

	"shonar/orders"
	"shonar/utils"
	"shonar/whatsapp"

	"github.com/julienschmidt/httprouter"
)

// Handler serves receipt PDFs for submitted orders.
type Handler struct {
	Sink   orders.Sink
	Number string // WhatsApp destination baked into the QR
}

func NewHandler(sink orders.Sink, number string) *Handler {
	return &Handler{Sink: sink, Number: number}
}

// GetReceipt streams the PDF for order :id.
func (h *Handler) GetReceipt(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id := ps.ByName("id")
	list, err := h.Sink.ListOrders(ctx)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Could not load order")
		return
	}

	for _, order := range list {
		if order.OrderID != id {
			continue
		}
		link := whatsapp.DeepLink(h.Number, "Order "+order.OrderID)
		pdf, err := Build(order, link)
		if err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate receipt")
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", "attachment; filename=receipt-"+order.OrderID+".pdf")
		w.WriteHeader(http.StatusOK)
		w.Write(pdf)
		return
	}
	utils.RespondWithError(w, http.StatusNotFound, "Order not found")
}
