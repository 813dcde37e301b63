package web

import (
	"net/http"
)

func (h *Handler) stockLevels(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.GetStockLevels(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, res.Levels)
}

func (h *Handler) adjustStock(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Barcode string `json:"barcode"`
		Delta   int64  `json:"delta"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Delta == 0 {
		writeError(w, r, "delta must not be zero", "VALIDATION_ERROR", http.StatusBadRequest)
		return
	}
	qty, err := h.svc.AdjustStock(r.Context(), req.Barcode, req.Delta)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, map[string]int64{"quantity": qty})
}
