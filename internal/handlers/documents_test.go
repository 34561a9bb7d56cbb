package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"

	"accounting/internal/auth"
	"accounting/internal/models"
	"accounting/internal/services"
)

func TestCreateInvoiceParsesDates(t *testing.T) {
	var got services.InvoiceInput
	router := newTestRouter(Deps{Documents: stubDocumentService{
		createInvoiceFn: func(_ context.Context, _ string, in services.InvoiceInput) (models.Invoice, error) {
			got = in
			return models.Invoice{ID: "inv-1", Number: "INV-2024-0001", Status: models.InvoiceDraft}, nil
		},
	}})
	body := `{"client_id":"c1","issue_date":"2024-03-01","subtotal":"100.00","tax_amount":"16.50"}`
	rr := serve(t, router, http.MethodPost, "/invoices", body, auth.RoleAccountant)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if got.IssueDate.Format("2006-01-02") != "2024-03-01" || !got.DueDate.IsZero() {
		t.Fatalf("unexpected dates: %+v", got)
	}
	if !got.TaxAmount.Equal(decimal.RequireFromString("16.5")) {
		t.Fatalf("unexpected tax: %s", got.TaxAmount)
	}
}

func TestSendInvoiceWrongState(t *testing.T) {
	router := newTestRouter(Deps{Documents: stubDocumentService{
		sendInvoiceFn: func(context.Context, string, string) (models.Invoice, error) {
			return models.Invoice{}, &services.PreconditionError{Reason: "invoice inv-1 is sent; only draft invoices can be sent"}
		},
	}})
	rr := serve(t, router, http.MethodPost, "/invoices/inv-1/send", "", auth.RoleAccountant)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
}

func TestCreateClientRejectsUnknownType(t *testing.T) {
	router := newTestRouter(Deps{})
	rr := serve(t, router, http.MethodPost, "/clients", `{"code":"C1","name":"Acme","type":"nonprofit","email":"not-an-email"}`, auth.RoleAccountant)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestCreateClientCreditLimit(t *testing.T) {
	var got services.ClientInput
	router := newTestRouter(Deps{Documents: stubDocumentService{
		createClientFn: func(_ context.Context, _ string, in services.ClientInput) (models.Client, error) {
			got = in
			return models.Client{ID: "c1"}, nil
		},
	}})
	rr := serve(t, router, http.MethodPost, "/clients", `{"code":"C1","name":"Acme","credit_limit":"5000"}`, auth.RoleAccountant)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}
	if !got.CreditLimit.Valid || !got.CreditLimit.Decimal.Equal(decimal.NewFromInt(5000)) {
		t.Fatalf("unexpected credit limit: %+v", got.CreditLimit)
	}
}

func TestReceivePurchaseOrderDefaultsToFull(t *testing.T) {
	var calls []bool
	router := newTestRouter(Deps{Documents: stubDocumentService{
		receivePOFn: func(_ context.Context, _, _ string, full bool) (models.PurchaseOrder, error) {
			calls = append(calls, full)
			return models.PurchaseOrder{}, nil
		},
	}})
	serve(t, router, http.MethodPost, "/purchase-orders/po-1/receive", "", auth.RoleAccountant)
	serve(t, router, http.MethodPost, "/purchase-orders/po-1/receive", `{"full":false}`, auth.RoleAccountant)
	if len(calls) != 2 || !calls[0] || calls[1] {
		t.Fatalf("unexpected receive calls: %v", calls)
	}
}

func TestMarkExpensePaidReturnsEntry(t *testing.T) {
	router := newTestRouter(Deps{Documents: stubDocumentService{
		markExpensePaidFn: func(_ context.Context, _, expenseID string) (models.Expense, models.JournalEntry, error) {
			return models.Expense{ID: expenseID, Status: models.ExpensePaid}, models.JournalEntry{ID: "e9", Status: models.EntryPosted}, nil
		},
	}})
	rr := serve(t, router, http.MethodPost, "/expenses/x1/pay", "", auth.RoleAccountant)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var payload struct {
		Expense      models.Expense      `json:"expense"`
		JournalEntry models.JournalEntry `json:"journal_entry"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload.Expense.Status != models.ExpensePaid || payload.JournalEntry.ID != "e9" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestRejectRefundPassesReason(t *testing.T) {
	var reason string
	router := newTestRouter(Deps{Documents: stubDocumentService{
		rejectRefundFn: func(_ context.Context, _, _ string, r string) (models.Refund, error) {
			reason = r
			return models.Refund{Status: models.RefundRejected}, nil
		},
	}})
	rr := serve(t, router, http.MethodPost, "/refunds/r1/reject", `{"reason":"outside policy"}`, auth.RoleAccountant)
	if rr.Code != http.StatusOK || reason != "outside policy" {
		t.Fatalf("unexpected result %d %q", rr.Code, reason)
	}
}
