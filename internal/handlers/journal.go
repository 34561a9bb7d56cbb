package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"accounting/internal/models"
	"accounting/internal/services"
	"accounting/internal/store"
	"accounting/internal/validator"
)

type lineRequest struct {
	AccountID   string `json:"account_id" validate:"required"`
	Debit       string `json:"debit" validate:"omitempty,money"`
	Credit      string `json:"credit" validate:"omitempty,money"`
	Description string `json:"description"`
}

func (l lineRequest) input() services.LineInput {
	return services.LineInput{
		AccountID:   l.AccountID,
		Debit:       validator.Amount(l.Debit),
		Credit:      validator.Amount(l.Credit),
		Description: l.Description,
	}
}

type sidedLineRequest struct {
	AccountID   string `json:"account_id" validate:"required"`
	Amount      string `json:"amount" validate:"required,positive_money"`
	Description string `json:"description"`
}

type createEntryRequest struct {
	EntryDate        string        `json:"entry_date" validate:"required,date"`
	Description      string        `json:"description" validate:"required"`
	ReferenceType    string        `json:"reference_type"`
	ReferenceID      string        `json:"reference_id"`
	CashFlowCategory string        `json:"cash_flow_category" validate:"omitempty,oneof=operating investing financing"`
	AffectsCash      bool          `json:"affects_cash"`
	Lines            []lineRequest `json:"lines" validate:"dive"`
}

func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	from, err := queryDate(r, "start_date")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	to, err := queryDate(r, "end_date")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit, offset := pagination(r)
	query := r.URL.Query()
	entries, err := h.journal.List(r.Context(), store.EntryFilter{
		Status:        models.EntryStatus(query.Get("status")),
		ReferenceType: query.Get("reference_type"),
		ReferenceID:   query.Get("reference_id"),
		From:          from,
		To:            to,
		Limit:         limit,
		Offset:        offset,
	})
	if err != nil {
		respondServiceError(w, r, err, "unable to list journal entries")
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var req createEntryRequest
	if !decode(w, r, &req) {
		return
	}
	in := services.DraftInput{
		EntryDate:     validator.Date(req.EntryDate),
		Description:   req.Description,
		ReferenceType: optionalString(req.ReferenceType),
		ReferenceID:   optionalString(req.ReferenceID),
		AffectsCash:   req.AffectsCash,
	}
	if req.CashFlowCategory != "" {
		category := models.CashFlowCategory(req.CashFlowCategory)
		in.CashFlowCategory = &category
	}
	for _, line := range req.Lines {
		in.Lines = append(in.Lines, line.input())
	}
	view, err := h.journal.CreateDraft(r.Context(), actorID(r), in)
	if err != nil {
		respondServiceError(w, r, err, "unable to create journal entry")
		return
	}
	respondJSON(w, http.StatusCreated, view)
}

func (h *Handler) GetEntry(w http.ResponseWriter, r *http.Request) {
	view, err := h.journal.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err, "unable to load journal entry")
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	if err := h.journal.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, r, err, "unable to delete journal entry")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AddLine(w http.ResponseWriter, r *http.Request) {
	var req lineRequest
	if !decode(w, r, &req) {
		return
	}
	view, err := h.journal.AddLine(r.Context(), chi.URLParam(r, "id"), req.input())
	if err != nil {
		respondServiceError(w, r, err, "unable to add line")
		return
	}
	respondJSON(w, http.StatusCreated, view)
}

func (h *Handler) AddDebit(w http.ResponseWriter, r *http.Request) {
	var req sidedLineRequest
	if !decode(w, r, &req) {
		return
	}
	view, err := h.journal.AddDebitLine(r.Context(), chi.URLParam(r, "id"), req.AccountID, validator.Amount(req.Amount), req.Description)
	if err != nil {
		respondServiceError(w, r, err, "unable to add line")
		return
	}
	respondJSON(w, http.StatusCreated, view)
}

func (h *Handler) AddCredit(w http.ResponseWriter, r *http.Request) {
	var req sidedLineRequest
	if !decode(w, r, &req) {
		return
	}
	view, err := h.journal.AddCreditLine(r.Context(), chi.URLParam(r, "id"), req.AccountID, validator.Amount(req.Amount), req.Description)
	if err != nil {
		respondServiceError(w, r, err, "unable to add line")
		return
	}
	respondJSON(w, http.StatusCreated, view)
}

func (h *Handler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	view, err := h.journal.RemoveLine(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "lineID"))
	if err != nil {
		respondServiceError(w, r, err, "unable to remove line")
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// ValidateEntry reports every problem that would stop the entry posting.
func (h *Handler) ValidateEntry(w http.ResponseWriter, r *http.Request) {
	problems, err := h.journal.Validate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err, "unable to validate journal entry")
		return
	}
	if problems == nil {
		problems = []string{}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"valid":  len(problems) == 0,
		"errors": problems,
	})
}

func (h *Handler) PostEntry(w http.ResponseWriter, r *http.Request) {
	view, err := h.journal.Post(r.Context(), actorID(r), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err, "unable to post journal entry")
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// ReverseEntry answers with the new reversing entry.
func (h *Handler) ReverseEntry(w http.ResponseWriter, r *http.Request) {
	view, err := h.journal.Reverse(r.Context(), actorID(r), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err, "unable to reverse journal entry")
		return
	}
	respondJSON(w, http.StatusCreated, view)
}
