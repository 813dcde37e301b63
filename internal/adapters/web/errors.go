package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"pos-backoffice/internal/core"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeDomainError maps the core error taxonomy to HTTP statuses. Anything
// not in the taxonomy is an infrastructure failure and surfaces as a 500
// without leaking internals.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		vErr  *core.ValidationError
		nfErr *core.NotFoundError
		isErr *core.InsufficientStockError
		itErr *core.InvalidTransitionError
		olErr *core.OrderLockedError
	)
	switch {
	case errors.As(err, &vErr):
		writeError(w, r, vErr.Error(), "VALIDATION_ERROR", http.StatusBadRequest)
	case errors.As(err, &nfErr):
		writeError(w, r, nfErr.Error(), "NOT_FOUND", http.StatusNotFound)
	case errors.As(err, &isErr):
		writeError(w, r, isErr.Error(), "INSUFFICIENT_STOCK", http.StatusConflict)
	case errors.As(err, &itErr):
		writeError(w, r, itErr.Error(), "INVALID_TRANSITION", http.StatusConflict)
	case errors.As(err, &olErr):
		writeError(w, r, olErr.Error(), "ORDER_LOCKED", http.StatusConflict)
	default:
		writeError(w, r, "internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
	}
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// writeTSV writes a downloadable tab-separated artifact with a deterministic
// attachment name.
func writeTSV(w http.ResponseWriter, filename string, body []byte) {
	w.Header().Set("Content-Type", "text/tab-separated-values; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	_, _ = w.Write(body)
}

// decodeJSON decodes the request body into v, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, r, "invalid JSON body", "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
