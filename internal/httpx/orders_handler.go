package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"orange-brew/internal/apperr"
	"orange-brew/internal/orders"
	"orange-brew/internal/receipts"
)

type OrdersHandler struct {
	Orders  *orders.Service
	Metrics *Metrics
}

// maxOrderJSONBytes bounds a JSON order body; carts are small.
const maxOrderJSONBytes = 1 << 20

type createOrderReq struct {
	OrderType     orders.OrderType     `json:"order_type"`
	PaymentMethod orders.PaymentMethod `json:"payment_method"`
	Items         []orders.ItemInput   `json:"items"`
}

// create accepts either a JSON body or a multipart form with an optional
// "receipt" file (required for TRANSFER/QRIS).
func (h *OrdersHandler) create(w http.ResponseWriter, r *http.Request) {
	in, err := parsePlaceOrder(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	o, err := h.Orders.PlaceOrder(r.Context(), actor(r), in)
	if err != nil {
		writeError(w, err)
		return
	}
	if h.Metrics != nil {
		h.Metrics.OrdersCreated.Inc()
	}
	writeJSON(w, http.StatusCreated, o)
}

func parsePlaceOrder(w http.ResponseWriter, r *http.Request) (orders.PlaceOrderInput, error) {
	var in orders.PlaceOrderInput

	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "multipart/form-data") {
		r.Body = http.MaxBytesReader(w, r.Body, maxOrderJSONBytes)
		var req createOrderReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return in, apperr.Validation("invalid json")
		}
		in.OrderType = req.OrderType
		in.PaymentMethod = req.PaymentMethod
		in.Items = req.Items
		return in, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, receipts.MaxUploadBytes+(1<<20))
	if err := r.ParseMultipartForm(receipts.MaxUploadBytes); err != nil {
		return in, apperr.Validation("invalid multipart form")
	}
	in.OrderType = orders.OrderType(r.FormValue("orderType"))
	in.PaymentMethod = orders.PaymentMethod(r.FormValue("paymentMethod"))
	if itemsRaw := r.FormValue("items"); itemsRaw != "" {
		if err := json.Unmarshal([]byte(itemsRaw), &in.Items); err != nil {
			return in, apperr.Validation("Invalid items format")
		}
	}
	f, hdr, err := r.FormFile("receipt")
	switch {
	case err == nil:
		in.Receipt = f
		in.ReceiptName = hdr.Filename
	case errors.Is(err, http.ErrMissingFile):
		// no receipt attached; the workflow decides whether that is ok
	default:
		return in, apperr.Validation("invalid receipt upload")
	}
	return in, nil
}

func (h *OrdersHandler) list(w http.ResponseWriter, r *http.Request) {
	os, err := h.Orders.ListOrders(r.Context(), actor(r))
	if err != nil {
		writeError(w, err)
		return
	}
	if os == nil {
		os = []orders.Order{}
	}
	writeJSON(w, http.StatusOK, os)
}

func (h *OrdersHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	o, err := h.Orders.GetOrder(r.Context(), actor(r), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) status(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	status, err := h.Orders.OrderStatus(r.Context(), actor(r), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"order_id": id, "status": status})
}

func (h *OrdersHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req struct {
		Status orders.Status `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.Validation("invalid json"))
		return
	}
	o, err := h.Orders.UpdateOrderStatus(r.Context(), actor(r), id, req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) updatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req struct {
		Status orders.PaymentStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.Validation("invalid json"))
		return
	}
	p, err := h.Orders.UpdatePaymentStatus(r.Context(), actor(r), id, req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
