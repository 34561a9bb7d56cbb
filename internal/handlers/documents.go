package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"accounting/internal/models"
	"accounting/internal/services"
	"accounting/internal/validator"
)

type clientRequest struct {
	Code        string `json:"code" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Type        string `json:"type" validate:"omitempty,oneof=individual company"`
	Email       string `json:"email" validate:"omitempty,email"`
	CreditLimit string `json:"credit_limit" validate:"omitempty,money"`
}

type supplierRequest struct {
	Code         string `json:"code" validate:"required"`
	Name         string `json:"name" validate:"required"`
	CompanyName  string `json:"company_name"`
	Email        string `json:"email" validate:"omitempty,email"`
	PaymentTerms string `json:"payment_terms" validate:"omitempty,oneof=due_on_receipt net_15 net_30 net_60 net_90"`
	CreditLimit  string `json:"credit_limit" validate:"omitempty,money"`
}

type invoiceRequest struct {
	ClientID  string `json:"client_id" validate:"required"`
	IssueDate string `json:"issue_date" validate:"omitempty,date"`
	DueDate   string `json:"due_date" validate:"omitempty,date"`
	Subtotal  string `json:"subtotal" validate:"required,money"`
	TaxAmount string `json:"tax_amount" validate:"omitempty,money"`
	Notes     string `json:"notes"`
}

type purchaseOrderRequest struct {
	SupplierID   string `json:"supplier_id" validate:"required"`
	OrderDate    string `json:"order_date" validate:"omitempty,date"`
	ExpectedDate string `json:"expected_date" validate:"omitempty,date"`
	Subtotal     string `json:"subtotal" validate:"required,money"`
	TaxAmount    string `json:"tax_amount" validate:"omitempty,money"`
	ShippingCost string `json:"shipping_cost" validate:"omitempty,money"`
	Notes        string `json:"notes"`
}

type receiveRequest struct {
	Full *bool `json:"full"`
}

type expenseRequest struct {
	VendorName  string `json:"vendor_name" validate:"required"`
	AccountID   string `json:"account_id" validate:"required"`
	Amount      string `json:"amount" validate:"required,positive_money"`
	TaxAmount   string `json:"tax_amount" validate:"omitempty,money"`
	ExpenseDate string `json:"expense_date" validate:"omitempty,date"`
	Description string `json:"description"`
}

type refundRequest struct {
	InvoiceID       string `json:"invoice_id" validate:"required"`
	Type            string `json:"type" validate:"omitempty,oneof=full partial"`
	RefundDate      string `json:"refund_date" validate:"omitempty,date"`
	Subtotal        string `json:"subtotal" validate:"required,money"`
	TaxAmount       string `json:"tax_amount" validate:"omitempty,money"`
	RefundMethod    string `json:"refund_method" validate:"omitempty,payment_method"`
	ReferenceNumber string `json:"reference_number"`
	Reason          string `json:"reason" validate:"required"`
	Notes           string `json:"notes"`
}

func nullAmount(raw string) decimal.NullDecimal {
	if raw == "" {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(validator.Amount(raw))
}

// parties

func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req clientRequest
	if !decode(w, r, &req) {
		return
	}
	client, err := h.documents.CreateClient(r.Context(), actorID(r), services.ClientInput{
		Code:        req.Code,
		Name:        req.Name,
		Type:        req.Type,
		Email:       req.Email,
		CreditLimit: nullAmount(req.CreditLimit),
	})
	if err != nil {
		respondServiceError(w, r, err, "unable to create client")
		return
	}
	respondJSON(w, http.StatusCreated, client)
}

func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.documents.ListClients(r.Context(), queryBool(r, "active", false))
	if err != nil {
		respondServiceError(w, r, err, "unable to list clients")
		return
	}
	respondJSON(w, http.StatusOK, clients)
}

func (h *Handler) CreateSupplier(w http.ResponseWriter, r *http.Request) {
	var req supplierRequest
	if !decode(w, r, &req) {
		return
	}
	supplier, err := h.documents.CreateSupplier(r.Context(), actorID(r), services.SupplierInput{
		Code:         req.Code,
		Name:         req.Name,
		CompanyName:  req.CompanyName,
		Email:        req.Email,
		PaymentTerms: req.PaymentTerms,
		CreditLimit:  nullAmount(req.CreditLimit),
	})
	if err != nil {
		respondServiceError(w, r, err, "unable to create supplier")
		return
	}
	respondJSON(w, http.StatusCreated, supplier)
}

func (h *Handler) ListSuppliers(w http.ResponseWriter, r *http.Request) {
	suppliers, err := h.documents.ListSuppliers(r.Context(), queryBool(r, "active", false))
	if err != nil {
		respondServiceError(w, r, err, "unable to list suppliers")
		return
	}
	respondJSON(w, http.StatusOK, suppliers)
}

// invoices

func (h *Handler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	var req invoiceRequest
	if !decode(w, r, &req) {
		return
	}
	in := services.InvoiceInput{
		ClientID:  req.ClientID,
		Subtotal:  validator.Amount(req.Subtotal),
		TaxAmount: validator.Amount(req.TaxAmount),
		Notes:     req.Notes,
	}
	if req.IssueDate != "" {
		in.IssueDate = validator.Date(req.IssueDate)
	}
	if req.DueDate != "" {
		in.DueDate = validator.Date(req.DueDate)
	}
	invoice, err := h.documents.CreateInvoice(r.Context(), actorID(r), in)
	if err != nil {
		respondServiceError(w, r, err, "unable to create invoice")
		return
	}
	respondJSON(w, http.StatusCreated, invoice)
}

func (h *Handler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	invoices, err := h.documents.ListInvoices(r.Context(), models.InvoiceStatus(r.URL.Query().Get("status")), limit, offset)
	if err != nil {
		respondServiceError(w, r, err, "unable to list invoices")
		return
	}
	respondJSON(w, http.StatusOK, invoices)
}

func (h *Handler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	invoice, err := h.documents.GetInvoice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err, "unable to load invoice")
		return
	}
	respondJSON(w, http.StatusOK, invoice)
}

func (h *Handler) SendInvoice(w http.ResponseWriter, r *http.Request) {
	invoice, err := h.documents.SendInvoice(r.Context(), actorID(r), chi.URLParam(r, "id"))
	respondDocument(w, r, invoice, err, "unable to send invoice")
}

func (h *Handler) CancelInvoice(w http.ResponseWriter, r *http.Request) {
	invoice, err := h.documents.CancelInvoice(r.Context(), actorID(r), chi.URLParam(r, "id"))
	respondDocument(w, r, invoice, err, "unable to cancel invoice")
}

func (h *Handler) MarkInvoiceOverdue(w http.ResponseWriter, r *http.Request) {
	invoice, err := h.documents.MarkInvoiceOverdue(r.Context(), actorID(r), chi.URLParam(r, "id"))
	respondDocument(w, r, invoice, err, "unable to mark invoice overdue")
}

// purchase orders

func (h *Handler) CreatePurchaseOrder(w http.ResponseWriter, r *http.Request) {
	var req purchaseOrderRequest
	if !decode(w, r, &req) {
		return
	}
	in := services.PurchaseOrderInput{
		SupplierID:   req.SupplierID,
		ExpectedDate: validator.OptionalDate(req.ExpectedDate),
		Subtotal:     validator.Amount(req.Subtotal),
		TaxAmount:    validator.Amount(req.TaxAmount),
		ShippingCost: validator.Amount(req.ShippingCost),
		Notes:        req.Notes,
	}
	if req.OrderDate != "" {
		in.OrderDate = validator.Date(req.OrderDate)
	}
	po, err := h.documents.CreatePurchaseOrder(r.Context(), actorID(r), in)
	if err != nil {
		respondServiceError(w, r, err, "unable to create purchase order")
		return
	}
	respondJSON(w, http.StatusCreated, po)
}

func (h *Handler) GetPurchaseOrder(w http.ResponseWriter, r *http.Request) {
	po, err := h.documents.GetPurchaseOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err, "unable to load purchase order")
		return
	}
	respondJSON(w, http.StatusOK, po)
}

func (h *Handler) SendPurchaseOrder(w http.ResponseWriter, r *http.Request) {
	po, err := h.documents.SendPurchaseOrder(r.Context(), actorID(r), chi.URLParam(r, "id"))
	respondDocument(w, r, po, err, "unable to send purchase order")
}

func (h *Handler) ApprovePurchaseOrder(w http.ResponseWriter, r *http.Request) {
	po, err := h.documents.ApprovePurchaseOrder(r.Context(), actorID(r), chi.URLParam(r, "id"))
	respondDocument(w, r, po, err, "unable to approve purchase order")
}

// ReceivePurchaseOrder marks the order received, or partial when full is false.
func (h *Handler) ReceivePurchaseOrder(w http.ResponseWriter, r *http.Request) {
	var req receiveRequest
	if !decodeOptional(w, r, &req) {
		return
	}
	full := req.Full == nil || *req.Full
	po, err := h.documents.ReceivePurchaseOrder(r.Context(), actorID(r), chi.URLParam(r, "id"), full)
	respondDocument(w, r, po, err, "unable to receive purchase order")
}

func (h *Handler) CancelPurchaseOrder(w http.ResponseWriter, r *http.Request) {
	po, err := h.documents.CancelPurchaseOrder(r.Context(), actorID(r), chi.URLParam(r, "id"))
	respondDocument(w, r, po, err, "unable to cancel purchase order")
}

// expenses

func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if !decode(w, r, &req) {
		return
	}
	in := services.ExpenseInput{
		VendorName:  req.VendorName,
		AccountID:   req.AccountID,
		Amount:      validator.Amount(req.Amount),
		TaxAmount:   validator.Amount(req.TaxAmount),
		Description: req.Description,
	}
	if req.ExpenseDate != "" {
		in.ExpenseDate = validator.Date(req.ExpenseDate)
	}
	expense, err := h.documents.CreateExpense(r.Context(), actorID(r), in)
	if err != nil {
		respondServiceError(w, r, err, "unable to create expense")
		return
	}
	respondJSON(w, http.StatusCreated, expense)
}

func (h *Handler) GetExpense(w http.ResponseWriter, r *http.Request) {
	expense, err := h.documents.GetExpense(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err, "unable to load expense")
		return
	}
	respondJSON(w, http.StatusOK, expense)
}

func (h *Handler) ApproveExpense(w http.ResponseWriter, r *http.Request) {
	expense, err := h.documents.ApproveExpense(r.Context(), actorID(r), chi.URLParam(r, "id"))
	respondDocument(w, r, expense, err, "unable to approve expense")
}

func (h *Handler) RejectExpense(w http.ResponseWriter, r *http.Request) {
	expense, err := h.documents.RejectExpense(r.Context(), actorID(r), chi.URLParam(r, "id"))
	respondDocument(w, r, expense, err, "unable to reject expense")
}

// MarkExpensePaid answers with the expense and the journal entry it posted.
func (h *Handler) MarkExpensePaid(w http.ResponseWriter, r *http.Request) {
	expense, entry, err := h.documents.MarkExpensePaid(r.Context(), actorID(r), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err, "unable to pay expense")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"expense":       expense,
		"journal_entry": entry,
	})
}

// refunds

func (h *Handler) CreateRefund(w http.ResponseWriter, r *http.Request) {
	var req refundRequest
	if !decode(w, r, &req) {
		return
	}
	in := services.RefundInput{
		InvoiceID:       req.InvoiceID,
		Type:            req.Type,
		Subtotal:        validator.Amount(req.Subtotal),
		TaxAmount:       validator.Amount(req.TaxAmount),
		ReferenceNumber: optionalString(req.ReferenceNumber),
		Reason:          req.Reason,
		Notes:           req.Notes,
	}
	if req.RefundDate != "" {
		in.RefundDate = validator.Date(req.RefundDate)
	}
	if req.RefundMethod != "" {
		method := models.PaymentMethod(req.RefundMethod)
		in.RefundMethod = &method
	}
	refund, err := h.documents.CreateRefund(r.Context(), actorID(r), in)
	if err != nil {
		respondServiceError(w, r, err, "unable to create refund")
		return
	}
	respondJSON(w, http.StatusCreated, refund)
}

func (h *Handler) GetRefund(w http.ResponseWriter, r *http.Request) {
	refund, err := h.documents.GetRefund(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err, "unable to load refund")
		return
	}
	respondJSON(w, http.StatusOK, refund)
}

func (h *Handler) ApproveRefund(w http.ResponseWriter, r *http.Request) {
	refund, err := h.documents.ApproveRefund(r.Context(), actorID(r), chi.URLParam(r, "id"))
	respondDocument(w, r, refund, err, "unable to approve refund")
}

func (h *Handler) ProcessRefund(w http.ResponseWriter, r *http.Request) {
	refund, err := h.documents.ProcessRefund(r.Context(), actorID(r), chi.URLParam(r, "id"))
	respondDocument(w, r, refund, err, "unable to process refund")
}

func (h *Handler) RejectRefund(w http.ResponseWriter, r *http.Request) {
	var req reverseRequest
	if !decodeOptional(w, r, &req) {
		return
	}
	refund, err := h.documents.RejectRefund(r.Context(), actorID(r), chi.URLParam(r, "id"), req.Reason)
	respondDocument(w, r, refund, err, "unable to reject refund")
}

func (h *Handler) CancelRefund(w http.ResponseWriter, r *http.Request) {
	refund, err := h.documents.CancelRefund(r.Context(), actorID(r), chi.URLParam(r, "id"))
	respondDocument(w, r, refund, err, "unable to cancel refund")
}

// respondDocument answers a status transition with the updated document.
func respondDocument(w http.ResponseWriter, r *http.Request, document any, err error, fallback string) {
	if err != nil {
		respondServiceError(w, r, err, fallback)
		return
	}
	respondJSON(w, http.StatusOK, document)
}
