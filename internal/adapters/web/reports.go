package web

import "net/http"

func (h *Handler) salesReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	body, err := h.svc.SalesReportTSV(r.Context(), q.Get("from"), q.Get("to"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeTSV(w, "sales-report.tsv", body)
}

func (h *Handler) productPerformanceReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	body, err := h.svc.ProductPerformanceTSV(r.Context(), q.Get("from"), q.Get("to"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeTSV(w, "product-performance-report.tsv", body)
}

func (h *Handler) inventoryReport(w http.ResponseWriter, r *http.Request) {
	body, err := h.svc.InventoryReportTSV(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeTSV(w, "inventory-report.tsv", body)
}
