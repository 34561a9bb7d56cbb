package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"accounting/internal/logger"
	"accounting/internal/services"
	"accounting/internal/validator"
)

type reportRequest struct {
	StartDate string `json:"start_date" validate:"omitempty,date"`
	EndDate   string `json:"end_date" validate:"omitempty,date"`
	AsOfDate  string `json:"as_of_date" validate:"omitempty,date"`
	AccountID string `json:"account_id"`
}

// Report serves every report by name. Bounds come from the query string on
// GET and from a JSON body on POST.
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if r.Method == http.MethodPost {
		if !decodeOptional(w, r, &req) {
			return
		}
	} else {
		query := r.URL.Query()
		req = reportRequest{
			StartDate: query.Get("start_date"),
			EndDate:   query.Get("end_date"),
			AsOfDate:  query.Get("as_of_date"),
			AccountID: query.Get("account_id"),
		}
		if !check(w, &req) {
			return
		}
	}

	report, err := h.reports.Generate(r.Context(), services.ReportRequest{
		Type:      chi.URLParam(r, "type"),
		Start:     validator.OptionalDate(req.StartDate),
		End:       validator.OptionalDate(req.EndDate),
		AsOf:      validator.OptionalDate(req.AsOfDate),
		AccountID: req.AccountID,
	})
	if err != nil {
		if errors.Is(err, services.ErrNotFound) || errors.Is(err, services.ErrInvalidArgument) {
			respondServiceError(w, r, err, "failed to generate report")
			return
		}
		logger.FromContext(r.Context()).Error("failed to generate report", zap.String("report", chi.URLParam(r, "type")), zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, map[string]string{
			"error":  "failed to generate report",
			"detail": err.Error(),
		})
		return
	}
	respondJSON(w, http.StatusOK, report)
}
