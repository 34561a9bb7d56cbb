package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"accounting/internal/models"
	"accounting/internal/services"
)

type createAccountRequest struct {
	Code          string  `json:"code" validate:"required,max=20"`
	Name          string  `json:"name" validate:"required,max=200"`
	Type          string  `json:"type" validate:"required,account_type"`
	ParentID      *string `json:"parent_id"`
	Description   string  `json:"description"`
	IsCashAccount bool    `json:"is_cash_account"`
	IsBankAccount bool    `json:"is_bank_account"`
}

type updateAccountRequest struct {
	Name          *string `json:"name" validate:"omitempty,max=200"`
	Description   *string `json:"description"`
	ParentID      *string `json:"parent_id"`
	ClearParent   bool    `json:"clear_parent"`
	IsCashAccount *bool   `json:"is_cash_account"`
	IsBankAccount *bool   `json:"is_bank_account"`
}

type changeTypeRequest struct {
	Type string `json:"type" validate:"required,account_type"`
}

func (h *Handler) AccountTree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.accounts.Tree(r.Context())
	if err != nil {
		respondServiceError(w, r, err, "unable to load accounts")
		return
	}
	respondJSON(w, http.StatusOK, tree)
}

// GetAccount returns the account with its balance over start_date..end_date.
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	start, err := queryDate(r, "start_date")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	end, err := queryDate(r, "end_date")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	view, err := h.accounts.Get(r.Context(), chi.URLParam(r, "id"), services.Period(start, end))
	if err != nil {
		respondServiceError(w, r, err, "unable to load account")
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if !decode(w, r, &req) {
		return
	}
	account, err := h.accounts.Create(r.Context(), actorID(r), services.AccountInput{
		Code:          req.Code,
		Name:          req.Name,
		Type:          models.AccountType(req.Type),
		ParentID:      req.ParentID,
		Description:   req.Description,
		IsCashAccount: req.IsCashAccount,
		IsBankAccount: req.IsBankAccount,
	})
	if err != nil {
		respondServiceError(w, r, err, "unable to create account")
		return
	}
	respondJSON(w, http.StatusCreated, account)
}

func (h *Handler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	var req updateAccountRequest
	if !decode(w, r, &req) {
		return
	}
	account, err := h.accounts.Update(r.Context(), actorID(r), chi.URLParam(r, "id"), services.AccountUpdate{
		Name:          req.Name,
		Description:   req.Description,
		ParentID:      req.ParentID,
		ClearParent:   req.ClearParent,
		IsCashAccount: req.IsCashAccount,
		IsBankAccount: req.IsBankAccount,
	})
	if err != nil {
		respondServiceError(w, r, err, "unable to update account")
		return
	}
	respondJSON(w, http.StatusOK, account)
}

func (h *Handler) ActivateAccount(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

func (h *Handler) DeactivateAccount(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

func (h *Handler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	account, err := h.accounts.SetActive(r.Context(), actorID(r), chi.URLParam(r, "id"), active)
	if err != nil {
		respondServiceError(w, r, err, "unable to update account")
		return
	}
	respondJSON(w, http.StatusOK, account)
}

func (h *Handler) ChangeAccountType(w http.ResponseWriter, r *http.Request) {
	var req changeTypeRequest
	if !decode(w, r, &req) {
		return
	}
	account, err := h.accounts.ChangeType(r.Context(), actorID(r), chi.URLParam(r, "id"), models.AccountType(req.Type))
	if err != nil {
		respondServiceError(w, r, err, "unable to change account type")
		return
	}
	respondJSON(w, http.StatusOK, account)
}

func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.accounts.Delete(r.Context(), actorID(r), chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, r, err, "unable to delete account")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
