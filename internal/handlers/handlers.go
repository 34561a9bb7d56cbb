package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"accounting/internal/db"
	"accounting/internal/logger"
	"accounting/internal/middleware"
	"accounting/internal/services"
	"accounting/internal/validator"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func respondProblems(w http.ResponseWriter, status int, message string, problems []string) {
	respondJSON(w, status, map[string]any{"error": message, "errors": problems})
}

// respondServiceError maps service errors onto HTTP statuses. Anything it
// does not recognise is logged and answered with fallback.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		respondProblems(w, http.StatusUnprocessableEntity, "validation failed", verr.Problems)
	case errors.Is(err, services.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrPreconditionFailed):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrInvalidArgument):
		respondError(w, http.StatusBadRequest, err.Error())
	case db.IsUniqueViolation(err):
		respondError(w, http.StatusConflict, "already exists")
	default:
		logger.FromContext(r.Context()).Error(fallback, zap.Error(err))
		respondError(w, http.StatusInternalServerError, fallback)
	}
}

// decode reads and validates a JSON body, answering 400 itself on failure.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return false
	}
	return check(w, dst)
}

// decodeOptional is decode for routes whose body may be omitted entirely.
func decodeOptional(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return false
	}
	return check(w, dst)
}

func check(w http.ResponseWriter, dst any) bool {
	if err := validator.Struct(dst); err != nil {
		var verrs *validator.Errors
		if errors.As(err, &verrs) {
			respondProblems(w, http.StatusBadRequest, "invalid request", verrs.Problems)
			return false
		}
		respondError(w, http.StatusBadRequest, "invalid payload")
		return false
	}
	return true
}

func actorID(r *http.Request) string {
	userID, _ := middleware.UserIDFromContext(r.Context())
	return userID
}

func pagination(r *http.Request) (int, int) {
	query := r.URL.Query()
	limit := defaultLimit
	offset := 0
	if raw := query.Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if raw := query.Get("offset"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
			offset = parsed
		}
	}
	return limit, offset
}

var errBadDate = errors.New("dates must use YYYY-MM-DD")

func queryDate(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(validator.DateLayout, raw)
	if err != nil {
		return nil, errBadDate
	}
	return &t, nil
}

func queryBool(r *http.Request, name string, fallback bool) bool {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
