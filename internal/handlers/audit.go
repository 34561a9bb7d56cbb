package handlers

import "net/http"

func (h *Handler) ListAudit(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	query := r.URL.Query()
	logs, err := h.audit.List(r.Context(), query.Get("entity_type"), query.Get("entity_id"), limit, offset)
	if err != nil {
		respondServiceError(w, r, err, "unable to list audit logs")
		return
	}
	respondJSON(w, http.StatusOK, logs)
}
