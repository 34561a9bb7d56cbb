package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"accounting/internal/models"
	"accounting/internal/services"
	"accounting/internal/store"
	"accounting/internal/validator"
)

type recordPaymentRequest struct {
	Type            string `json:"type" validate:"required,payment_type"`
	PayableKind     string `json:"payable_kind" validate:"required,payable_kind"`
	PayableID       string `json:"payable_id" validate:"required"`
	Method          string `json:"method" validate:"required,payment_method"`
	Amount          string `json:"amount" validate:"required,positive_money"`
	PaymentDate     string `json:"payment_date" validate:"omitempty,date"`
	ReferenceNumber string `json:"reference_number"`
	Details         string `json:"payment_details"`
	Notes           string `json:"notes"`
}

type allocationRequest struct {
	PaymentID      string `json:"payment_id" validate:"required"`
	Amount         string `json:"amount" validate:"required,money"`
	AllocationDate string `json:"allocation_date" validate:"omitempty,date"`
	Notes          string `json:"notes"`
}

func (a allocationRequest) input() services.AllocationInput {
	return services.AllocationInput{
		PaymentID: a.PaymentID,
		Amount:    validator.Amount(a.Amount),
		Date:      validator.OptionalDate(a.AllocationDate),
		Notes:     a.Notes,
	}
}

type supplierAllocationRequest struct {
	allocationRequest
	SupplierID      string `json:"supplier_id"`
	PurchaseOrderID string `json:"purchase_order_id"`
	ExpenseID       string `json:"expense_id"`
}

type reverseRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var req recordPaymentRequest
	if !decode(w, r, &req) {
		return
	}
	in := services.PaymentInput{
		Type:            models.PaymentType(req.Type),
		Payable:         models.PayableRef{Kind: models.PayableKind(req.PayableKind), ID: req.PayableID},
		Method:          models.PaymentMethod(req.Method),
		Amount:          validator.Amount(req.Amount),
		ReferenceNumber: optionalString(req.ReferenceNumber),
		Details:         optionalString(req.Details),
		Notes:           req.Notes,
	}
	if req.PaymentDate != "" {
		in.PaymentDate = validator.Date(req.PaymentDate)
	}
	payment, err := h.payments.RecordPayment(r.Context(), actorID(r), in)
	if err != nil {
		respondServiceError(w, r, err, "unable to record payment")
		return
	}
	respondJSON(w, http.StatusCreated, payment)
}

func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	query := r.URL.Query()
	payments, err := h.payments.List(r.Context(), store.PaymentFilter{
		PayableKind: models.PayableKind(query.Get("payable_kind")),
		PayableID:   query.Get("payable_id"),
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		respondServiceError(w, r, err, "unable to list payments")
		return
	}
	respondJSON(w, http.StatusOK, payments)
}

// PaymentSummary returns the payment with its allocations and unallocated remainder.
func (h *Handler) PaymentSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.payments.Summary(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err, "unable to load payment")
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func (h *Handler) FinalizePayment(w http.ResponseWriter, r *http.Request) {
	payment, err := h.payments.Finalize(r.Context(), actorID(r), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err, "unable to finalize payment")
		return
	}
	respondJSON(w, http.StatusOK, payment)
}

func (h *Handler) AllocateToInvoice(w http.ResponseWriter, r *http.Request) {
	var req allocationRequest
	if !decode(w, r, &req) {
		return
	}
	allocation, err := h.payments.AllocateToInvoice(r.Context(), actorID(r), chi.URLParam(r, "id"), req.input())
	if err != nil {
		respondServiceError(w, r, err, "unable to allocate payment")
		return
	}
	respondJSON(w, http.StatusCreated, allocation)
}

func (h *Handler) AllocateToPurchaseOrder(w http.ResponseWriter, r *http.Request) {
	var req allocationRequest
	if !decode(w, r, &req) {
		return
	}
	allocation, err := h.payments.AllocateToPurchaseOrder(r.Context(), actorID(r), chi.URLParam(r, "id"), req.input())
	if err != nil {
		respondServiceError(w, r, err, "unable to allocate payment")
		return
	}
	respondJSON(w, http.StatusCreated, allocation)
}

func (h *Handler) AllocateToExpense(w http.ResponseWriter, r *http.Request) {
	var req allocationRequest
	if !decode(w, r, &req) {
		return
	}
	allocation, err := h.payments.AllocateToExpense(r.Context(), actorID(r), chi.URLParam(r, "id"), chi.URLParam(r, "expenseID"), req.input())
	if err != nil {
		respondServiceError(w, r, err, "unable to allocate payment")
		return
	}
	respondJSON(w, http.StatusCreated, allocation)
}

// AllocateToSupplier takes exactly one of purchase_order_id or expense_id.
func (h *Handler) AllocateToSupplier(w http.ResponseWriter, r *http.Request) {
	var req supplierAllocationRequest
	if !decode(w, r, &req) {
		return
	}
	allocation, err := h.payments.AllocateToSupplier(r.Context(), actorID(r), services.SupplierAllocationInput{
		AllocationInput: req.input(),
		SupplierID:      req.SupplierID,
		PurchaseOrderID: optionalString(req.PurchaseOrderID),
		ExpenseID:       optionalString(req.ExpenseID),
	})
	if err != nil {
		respondServiceError(w, r, err, "unable to allocate payment")
		return
	}
	respondJSON(w, http.StatusCreated, allocation)
}

func (h *Handler) ReverseInvoiceAllocation(w http.ResponseWriter, r *http.Request) {
	var req reverseRequest
	if !decodeOptional(w, r, &req) {
		return
	}
	if err := h.payments.ReverseInvoiceAllocation(r.Context(), actorID(r), chi.URLParam(r, "id"), req.Reason); err != nil {
		respondServiceError(w, r, err, "unable to reverse allocation")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ReverseSupplierAllocation(w http.ResponseWriter, r *http.Request) {
	var req reverseRequest
	if !decodeOptional(w, r, &req) {
		return
	}
	if err := h.payments.ReverseSupplierAllocation(r.Context(), actorID(r), chi.URLParam(r, "id"), req.Reason); err != nil {
		respondServiceError(w, r, err, "unable to reverse allocation")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
