package web

import (
	"net/http"

	"pos-backoffice/internal/core"
)

// interpretStockNote sends a free-text stock note to the assistant and
// returns either a proposal for confirmation or a clarification question.
// Nothing is applied here.
func (h *Handler) interpretStockNote(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Note string `json:"note"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.InterpretStockNote(r.Context(), req.Note)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if res.IsClarification {
		writeJSON(w, map[string]any{
			"clarification": res.Clarification,
		})
		return
	}
	writeJSON(w, map[string]any{
		"proposal": res.Proposal,
	})
}

// applyStockProposal applies an operator-confirmed proposal through the
// stock ledger's normal non-negative checks, atomically.
func (h *Handler) applyStockProposal(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Proposal core.StockProposal `json:"proposal"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.ApplyStockProposal(r.Context(), req.Proposal)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{
		"quantities": res.Quantities,
	})
}
