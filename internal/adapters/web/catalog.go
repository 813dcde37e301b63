package web

import (
	"net/http"
	"strconv"

	"pos-backoffice/internal/core"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// pathID parses a numeric URL parameter; zero means it was absent or bad.
func pathID(r *http.Request, name string) int64 {
	id, _ := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id
}

// queryInt parses an optional integer query parameter with a default.
func queryInt(r *http.Request, name string, def int) int {
	if v := r.URL.Query().Get(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func (h *Handler) listClients(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ListClients(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, res.Clients)
}

func (h *Handler) createClient(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	client, err := h.svc.CreateClient(r.Context(), req.Name)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, client)
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)
	res, err := h.svc.ListProducts(r.Context(), limit, offset)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, res)
}

type productRequest struct {
	Barcode  string          `json:"barcode"`
	Client   string          `json:"client"`
	Name     string          `json:"name"`
	Category string          `json:"category"`
	MRP      decimal.Decimal `json:"mrp"`
	ImageURL string          `json:"image_url"`
}

func (r productRequest) input() core.ProductInput {
	return core.ProductInput{
		Barcode:    r.Barcode,
		ClientName: r.Client,
		Name:       r.Name,
		Category:   r.Category,
		MRP:        r.MRP,
		ImageURL:   r.ImageURL,
	}
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	product, err := h.svc.CreateProduct(r.Context(), req.input())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, product)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	product, err := h.svc.UpdateProduct(r.Context(), pathID(r, "productID"), req.input())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, product)
}
