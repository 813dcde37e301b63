package web

import (
	"net/http"
	"strconv"
	"time"

	"pos-backoffice/internal/app"
	"pos-backoffice/internal/core"

	"github.com/shopspring/decimal"
)

type orderItemRequest struct {
	Barcode      string          `json:"barcode"`
	Quantity     int64           `json:"quantity"`
	SellingPrice decimal.Decimal `json:"selling_price"`
}

func (r orderItemRequest) input() core.OrderItemInput {
	return core.OrderItemInput{
		Barcode:      r.Barcode,
		Quantity:     r.Quantity,
		SellingPrice: r.SellingPrice,
	}
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CustomerName  string             `json:"customer_name"`
		CustomerPhone string             `json:"customer_phone"`
		Items         []orderItemRequest `json:"items"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	items := make([]core.OrderItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, it.input())
	}
	res, err := h.svc.CreateOrder(r.Context(), app.CreateOrderRequest{
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		Items:         items,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, res.Order)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.GetOrder(r.Context(), pathID(r, "orderID"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, res.Order)
}

// listOrders accepts id, status, from, to (YYYY-MM-DD), limit, offset.
func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := core.OrderFilter{
		Limit:  queryInt(r, "limit", 50),
		Offset: queryInt(r, "offset", 0),
	}
	if v := q.Get("id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, r, "invalid order id "+v, "VALIDATION_ERROR", http.StatusBadRequest)
			return
		}
		filter.ID = &id
	}
	if v := q.Get("status"); v != "" {
		status := core.OrderStatus(v)
		if !status.Valid() {
			writeError(w, r, "unknown order status "+v, "VALIDATION_ERROR", http.StatusBadRequest)
			return
		}
		filter.Status = &status
	}
	const day = "2006-01-02"
	if v := q.Get("from"); v != "" {
		t, err := time.Parse(day, v)
		if err != nil {
			writeError(w, r, "invalid from date", "VALIDATION_ERROR", http.StatusBadRequest)
			return
		}
		filter.From = &t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(day, v)
		if err != nil {
			writeError(w, r, "invalid to date", "VALIDATION_ERROR", http.StatusBadRequest)
			return
		}
		filter.To = &t
	}

	res, err := h.svc.ListOrders(r.Context(), filter)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *Handler) addOrderItem(w http.ResponseWriter, r *http.Request) {
	var req orderItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.AddOrderItem(r.Context(), pathID(r, "orderID"), req.input())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, res.Order)
}

func (h *Handler) updateOrderItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Quantity     int64           `json:"quantity"`
		SellingPrice decimal.Decimal `json:"selling_price"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.UpdateOrderItem(r.Context(), pathID(r, "orderID"), pathID(r, "itemID"), req.Quantity, req.SellingPrice)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, res.Order)
}

func (h *Handler) removeOrderItem(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.RemoveOrderItem(r.Context(), pathID(r, "orderID"), pathID(r, "itemID"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, res.Order)
}

func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status        string `json:"status"`
		CustomerName  string `json:"customer_name"`
		CustomerPhone string `json:"customer_phone"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.UpdateOrderStatus(r.Context(), app.UpdateOrderStatusRequest{
		OrderID:       pathID(r, "orderID"),
		Status:        core.OrderStatus(req.Status),
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, res.Order)
}

// invoiceOrder transitions to INVOICED and returns the rendered document.
func (h *Handler) invoiceOrder(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.InvoiceOrder(r.Context(), pathID(r, "orderID"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+res.Filename+`"`)
	_, _ = w.Write(res.Document)
}

// invoiceDocument re-renders an already invoiced order's document.
func (h *Handler) invoiceDocument(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.GetOrder(r.Context(), pathID(r, "orderID"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if res.Order.Status != core.OrderInvoiced {
		writeError(w, r, "order is not invoiced", "VALIDATION_ERROR", http.StatusBadRequest)
		return
	}
	inv, err := h.svc.InvoiceOrder(r.Context(), res.Order.ID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+inv.Filename+`"`)
	_, _ = w.Write(inv.Document)
}
