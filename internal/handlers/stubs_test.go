package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"accounting/internal/auth"
	"accounting/internal/config"
	"accounting/internal/ledger"
	"accounting/internal/models"
	"accounting/internal/services"
	"accounting/internal/store"
	"accounting/internal/websocket"
)

const testSecret = "secret"

type stubAccountService struct {
	createFn     func(ctx context.Context, actorID string, in services.AccountInput) (models.Account, error)
	updateFn     func(ctx context.Context, actorID, accountID string, in services.AccountUpdate) (models.Account, error)
	setActiveFn  func(ctx context.Context, actorID, accountID string, active bool) (models.Account, error)
	changeTypeFn func(ctx context.Context, actorID, accountID string, accountType models.AccountType) (models.Account, error)
	deleteFn     func(ctx context.Context, actorID, accountID string) error
	getFn        func(ctx context.Context, accountID string, period ledger.Period) (services.AccountView, error)
	treeFn       func(ctx context.Context) ([]services.AccountNode, error)
}

func (s stubAccountService) Create(ctx context.Context, actorID string, in services.AccountInput) (models.Account, error) {
	if s.createFn == nil {
		return models.Account{}, nil
	}
	return s.createFn(ctx, actorID, in)
}

func (s stubAccountService) Update(ctx context.Context, actorID, accountID string, in services.AccountUpdate) (models.Account, error) {
	if s.updateFn == nil {
		return models.Account{}, nil
	}
	return s.updateFn(ctx, actorID, accountID, in)
}

func (s stubAccountService) SetActive(ctx context.Context, actorID, accountID string, active bool) (models.Account, error) {
	if s.setActiveFn == nil {
		return models.Account{}, nil
	}
	return s.setActiveFn(ctx, actorID, accountID, active)
}

func (s stubAccountService) ChangeType(ctx context.Context, actorID, accountID string, accountType models.AccountType) (models.Account, error) {
	if s.changeTypeFn == nil {
		return models.Account{}, nil
	}
	return s.changeTypeFn(ctx, actorID, accountID, accountType)
}

func (s stubAccountService) Delete(ctx context.Context, actorID, accountID string) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, actorID, accountID)
}

func (s stubAccountService) Get(ctx context.Context, accountID string, period ledger.Period) (services.AccountView, error) {
	if s.getFn == nil {
		return services.AccountView{}, nil
	}
	return s.getFn(ctx, accountID, period)
}

func (s stubAccountService) Tree(ctx context.Context) ([]services.AccountNode, error) {
	if s.treeFn == nil {
		return nil, nil
	}
	return s.treeFn(ctx)
}

type stubJournalService struct {
	createDraftFn func(ctx context.Context, actorID string, in services.DraftInput) (services.EntryView, error)
	addLineFn     func(ctx context.Context, entryID string, in services.LineInput) (services.EntryView, error)
	addSidedFn    func(ctx context.Context, side, entryID, accountID string, amount decimal.Decimal) (services.EntryView, error)
	removeLineFn  func(ctx context.Context, entryID, lineID string) (services.EntryView, error)
	validateFn    func(ctx context.Context, entryID string) ([]string, error)
	postFn        func(ctx context.Context, actorID, entryID string) (services.EntryView, error)
	reverseFn     func(ctx context.Context, actorID, entryID string) (services.EntryView, error)
	deleteFn      func(ctx context.Context, entryID string) error
	getFn         func(ctx context.Context, entryID string) (services.EntryView, error)
	listFn        func(ctx context.Context, filter store.EntryFilter) ([]models.JournalEntry, error)
}

func (s stubJournalService) CreateDraft(ctx context.Context, actorID string, in services.DraftInput) (services.EntryView, error) {
	if s.createDraftFn == nil {
		return services.EntryView{}, nil
	}
	return s.createDraftFn(ctx, actorID, in)
}

func (s stubJournalService) AddLine(ctx context.Context, entryID string, in services.LineInput) (services.EntryView, error) {
	if s.addLineFn == nil {
		return services.EntryView{}, nil
	}
	return s.addLineFn(ctx, entryID, in)
}

func (s stubJournalService) AddDebitLine(ctx context.Context, entryID, accountID string, amount decimal.Decimal, _ string) (services.EntryView, error) {
	if s.addSidedFn == nil {
		return services.EntryView{}, nil
	}
	return s.addSidedFn(ctx, "debit", entryID, accountID, amount)
}

func (s stubJournalService) AddCreditLine(ctx context.Context, entryID, accountID string, amount decimal.Decimal, _ string) (services.EntryView, error) {
	if s.addSidedFn == nil {
		return services.EntryView{}, nil
	}
	return s.addSidedFn(ctx, "credit", entryID, accountID, amount)
}

func (s stubJournalService) RemoveLine(ctx context.Context, entryID, lineID string) (services.EntryView, error) {
	if s.removeLineFn == nil {
		return services.EntryView{}, nil
	}
	return s.removeLineFn(ctx, entryID, lineID)
}

func (s stubJournalService) Validate(ctx context.Context, entryID string) ([]string, error) {
	if s.validateFn == nil {
		return nil, nil
	}
	return s.validateFn(ctx, entryID)
}

func (s stubJournalService) Post(ctx context.Context, actorID, entryID string) (services.EntryView, error) {
	if s.postFn == nil {
		return services.EntryView{}, nil
	}
	return s.postFn(ctx, actorID, entryID)
}

func (s stubJournalService) Reverse(ctx context.Context, actorID, entryID string) (services.EntryView, error) {
	if s.reverseFn == nil {
		return services.EntryView{}, nil
	}
	return s.reverseFn(ctx, actorID, entryID)
}

func (s stubJournalService) Delete(ctx context.Context, entryID string) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, entryID)
}

func (s stubJournalService) Get(ctx context.Context, entryID string) (services.EntryView, error) {
	if s.getFn == nil {
		return services.EntryView{}, nil
	}
	return s.getFn(ctx, entryID)
}

func (s stubJournalService) List(ctx context.Context, filter store.EntryFilter) ([]models.JournalEntry, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, filter)
}

type stubPaymentService struct {
	recordFn          func(ctx context.Context, actorID string, in services.PaymentInput) (models.Payment, error)
	finalizeFn        func(ctx context.Context, actorID, paymentID string) (models.Payment, error)
	summaryFn         func(ctx context.Context, paymentID string) (services.PaymentSummary, error)
	listFn            func(ctx context.Context, filter store.PaymentFilter) ([]models.Payment, error)
	allocateInvoiceFn func(ctx context.Context, actorID, invoiceID string, in services.AllocationInput) (models.InvoiceAllocation, error)
	allocatePOFn      func(ctx context.Context, actorID, poID string, in services.AllocationInput) (models.SupplierAllocation, error)
	allocateExpenseFn func(ctx context.Context, actorID, supplierID, expenseID string, in services.AllocationInput) (models.SupplierAllocation, error)
	allocateSupplier  func(ctx context.Context, actorID string, in services.SupplierAllocationInput) (models.SupplierAllocation, error)
	reverseInvoiceFn  func(ctx context.Context, actorID, allocationID, reason string) error
	reverseSupplierFn func(ctx context.Context, actorID, allocationID, reason string) error
}

func (s stubPaymentService) RecordPayment(ctx context.Context, actorID string, in services.PaymentInput) (models.Payment, error) {
	if s.recordFn == nil {
		return models.Payment{}, nil
	}
	return s.recordFn(ctx, actorID, in)
}

func (s stubPaymentService) Finalize(ctx context.Context, actorID, paymentID string) (models.Payment, error) {
	if s.finalizeFn == nil {
		return models.Payment{}, nil
	}
	return s.finalizeFn(ctx, actorID, paymentID)
}

func (s stubPaymentService) Summary(ctx context.Context, paymentID string) (services.PaymentSummary, error) {
	if s.summaryFn == nil {
		return services.PaymentSummary{}, nil
	}
	return s.summaryFn(ctx, paymentID)
}

func (s stubPaymentService) List(ctx context.Context, filter store.PaymentFilter) ([]models.Payment, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, filter)
}

func (s stubPaymentService) AllocateToInvoice(ctx context.Context, actorID, invoiceID string, in services.AllocationInput) (models.InvoiceAllocation, error) {
	if s.allocateInvoiceFn == nil {
		return models.InvoiceAllocation{}, nil
	}
	return s.allocateInvoiceFn(ctx, actorID, invoiceID, in)
}

func (s stubPaymentService) AllocateToPurchaseOrder(ctx context.Context, actorID, poID string, in services.AllocationInput) (models.SupplierAllocation, error) {
	if s.allocatePOFn == nil {
		return models.SupplierAllocation{}, nil
	}
	return s.allocatePOFn(ctx, actorID, poID, in)
}

func (s stubPaymentService) AllocateToExpense(ctx context.Context, actorID, supplierID, expenseID string, in services.AllocationInput) (models.SupplierAllocation, error) {
	if s.allocateExpenseFn == nil {
		return models.SupplierAllocation{}, nil
	}
	return s.allocateExpenseFn(ctx, actorID, supplierID, expenseID, in)
}

func (s stubPaymentService) AllocateToSupplier(ctx context.Context, actorID string, in services.SupplierAllocationInput) (models.SupplierAllocation, error) {
	if s.allocateSupplier == nil {
		return models.SupplierAllocation{}, nil
	}
	return s.allocateSupplier(ctx, actorID, in)
}

func (s stubPaymentService) ReverseInvoiceAllocation(ctx context.Context, actorID, allocationID, reason string) error {
	if s.reverseInvoiceFn == nil {
		return nil
	}
	return s.reverseInvoiceFn(ctx, actorID, allocationID, reason)
}

func (s stubPaymentService) ReverseSupplierAllocation(ctx context.Context, actorID, allocationID, reason string) error {
	if s.reverseSupplierFn == nil {
		return nil
	}
	return s.reverseSupplierFn(ctx, actorID, allocationID, reason)
}

// stubDocumentService overrides the calls the tests exercise; any other
// method panics through the nil embedded interface.
type stubDocumentService struct {
	DocumentService
	createClientFn    func(ctx context.Context, actorID string, in services.ClientInput) (models.Client, error)
	createInvoiceFn   func(ctx context.Context, actorID string, in services.InvoiceInput) (models.Invoice, error)
	sendInvoiceFn     func(ctx context.Context, actorID, invoiceID string) (models.Invoice, error)
	receivePOFn       func(ctx context.Context, actorID, poID string, full bool) (models.PurchaseOrder, error)
	markExpensePaidFn func(ctx context.Context, actorID, expenseID string) (models.Expense, models.JournalEntry, error)
	rejectRefundFn    func(ctx context.Context, actorID, refundID, reason string) (models.Refund, error)
}

func (s stubDocumentService) CreateClient(ctx context.Context, actorID string, in services.ClientInput) (models.Client, error) {
	return s.createClientFn(ctx, actorID, in)
}

func (s stubDocumentService) CreateInvoice(ctx context.Context, actorID string, in services.InvoiceInput) (models.Invoice, error) {
	return s.createInvoiceFn(ctx, actorID, in)
}

func (s stubDocumentService) SendInvoice(ctx context.Context, actorID, invoiceID string) (models.Invoice, error) {
	return s.sendInvoiceFn(ctx, actorID, invoiceID)
}

func (s stubDocumentService) ReceivePurchaseOrder(ctx context.Context, actorID, poID string, full bool) (models.PurchaseOrder, error) {
	return s.receivePOFn(ctx, actorID, poID, full)
}

func (s stubDocumentService) MarkExpensePaid(ctx context.Context, actorID, expenseID string) (models.Expense, models.JournalEntry, error) {
	return s.markExpensePaidFn(ctx, actorID, expenseID)
}

func (s stubDocumentService) RejectRefund(ctx context.Context, actorID, refundID, reason string) (models.Refund, error) {
	return s.rejectRefundFn(ctx, actorID, refundID, reason)
}

type stubReportService struct {
	generateFn func(ctx context.Context, req services.ReportRequest) (any, error)
}

func (s stubReportService) Generate(ctx context.Context, req services.ReportRequest) (any, error) {
	if s.generateFn == nil {
		return map[string]string{}, nil
	}
	return s.generateFn(ctx, req)
}

type stubAuditStore struct {
	listFn func(ctx context.Context, entityType, entityID string, limit, offset int) ([]models.AuditLog, error)
}

func (s stubAuditStore) List(ctx context.Context, entityType, entityID string, limit, offset int) ([]models.AuditLog, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, entityType, entityID, limit, offset)
}

// newTestRouter fills unset dependencies with no-op stubs.
func newTestRouter(deps Deps) http.Handler {
	if deps.Accounts == nil {
		deps.Accounts = stubAccountService{}
	}
	if deps.Journal == nil {
		deps.Journal = stubJournalService{}
	}
	if deps.Payments == nil {
		deps.Payments = stubPaymentService{}
	}
	if deps.Documents == nil {
		deps.Documents = stubDocumentService{}
	}
	if deps.Reports == nil {
		deps.Reports = stubReportService{}
	}
	if deps.Audit == nil {
		deps.Audit = stubAuditStore{}
	}
	if deps.Hub == nil {
		deps.Hub = websocket.NewHub()
	}
	cfg := config.Config{JWTSecret: testSecret, AllowedOrigins: "*"}
	return New(cfg, deps).Routes()
}

// serve sends body to path as user-1 holding roles; no roles means no token.
func serve(t *testing.T, router http.Handler, method, path, body string, roles ...string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if len(roles) > 0 {
		token, err := auth.GenerateToken(testSecret, "user-1", roles, time.Minute)
		if err != nil {
			t.Fatalf("failed to generate token: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}
