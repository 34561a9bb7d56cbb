package handlers

import (
	"context"

	"github.com/shopspring/decimal"

	"accounting/internal/ledger"
	"accounting/internal/models"
	"accounting/internal/services"
	"accounting/internal/store"
)

type AccountService interface {
	Create(ctx context.Context, actorID string, in services.AccountInput) (models.Account, error)
	Update(ctx context.Context, actorID, accountID string, in services.AccountUpdate) (models.Account, error)
	SetActive(ctx context.Context, actorID, accountID string, active bool) (models.Account, error)
	ChangeType(ctx context.Context, actorID, accountID string, accountType models.AccountType) (models.Account, error)
	Delete(ctx context.Context, actorID, accountID string) error
	Get(ctx context.Context, accountID string, period ledger.Period) (services.AccountView, error)
	Tree(ctx context.Context) ([]services.AccountNode, error)
}

type JournalService interface {
	CreateDraft(ctx context.Context, actorID string, in services.DraftInput) (services.EntryView, error)
	AddLine(ctx context.Context, entryID string, in services.LineInput) (services.EntryView, error)
	AddDebitLine(ctx context.Context, entryID, accountID string, amount decimal.Decimal, description string) (services.EntryView, error)
	AddCreditLine(ctx context.Context, entryID, accountID string, amount decimal.Decimal, description string) (services.EntryView, error)
	RemoveLine(ctx context.Context, entryID, lineID string) (services.EntryView, error)
	Validate(ctx context.Context, entryID string) ([]string, error)
	Post(ctx context.Context, actorID, entryID string) (services.EntryView, error)
	Reverse(ctx context.Context, actorID, entryID string) (services.EntryView, error)
	Delete(ctx context.Context, entryID string) error
	Get(ctx context.Context, entryID string) (services.EntryView, error)
	List(ctx context.Context, filter store.EntryFilter) ([]models.JournalEntry, error)
}

type PaymentService interface {
	RecordPayment(ctx context.Context, actorID string, in services.PaymentInput) (models.Payment, error)
	Finalize(ctx context.Context, actorID, paymentID string) (models.Payment, error)
	Summary(ctx context.Context, paymentID string) (services.PaymentSummary, error)
	List(ctx context.Context, filter store.PaymentFilter) ([]models.Payment, error)
	AllocateToInvoice(ctx context.Context, actorID, invoiceID string, in services.AllocationInput) (models.InvoiceAllocation, error)
	AllocateToPurchaseOrder(ctx context.Context, actorID, poID string, in services.AllocationInput) (models.SupplierAllocation, error)
	AllocateToExpense(ctx context.Context, actorID, supplierID, expenseID string, in services.AllocationInput) (models.SupplierAllocation, error)
	AllocateToSupplier(ctx context.Context, actorID string, in services.SupplierAllocationInput) (models.SupplierAllocation, error)
	ReverseInvoiceAllocation(ctx context.Context, actorID, allocationID, reason string) error
	ReverseSupplierAllocation(ctx context.Context, actorID, allocationID, reason string) error
}

type DocumentService interface {
	CreateClient(ctx context.Context, actorID string, in services.ClientInput) (models.Client, error)
	CreateSupplier(ctx context.Context, actorID string, in services.SupplierInput) (models.Supplier, error)
	ListClients(ctx context.Context, activeOnly bool) ([]models.Client, error)
	ListSuppliers(ctx context.Context, activeOnly bool) ([]models.Supplier, error)

	CreateInvoice(ctx context.Context, actorID string, in services.InvoiceInput) (models.Invoice, error)
	SendInvoice(ctx context.Context, actorID, invoiceID string) (models.Invoice, error)
	CancelInvoice(ctx context.Context, actorID, invoiceID string) (models.Invoice, error)
	MarkInvoiceOverdue(ctx context.Context, actorID, invoiceID string) (models.Invoice, error)
	GetInvoice(ctx context.Context, invoiceID string) (services.InvoiceView, error)
	ListInvoices(ctx context.Context, status models.InvoiceStatus, limit, offset int) ([]services.InvoiceView, error)

	CreatePurchaseOrder(ctx context.Context, actorID string, in services.PurchaseOrderInput) (models.PurchaseOrder, error)
	SendPurchaseOrder(ctx context.Context, actorID, poID string) (models.PurchaseOrder, error)
	ApprovePurchaseOrder(ctx context.Context, actorID, poID string) (models.PurchaseOrder, error)
	ReceivePurchaseOrder(ctx context.Context, actorID, poID string, full bool) (models.PurchaseOrder, error)
	CancelPurchaseOrder(ctx context.Context, actorID, poID string) (models.PurchaseOrder, error)
	GetPurchaseOrder(ctx context.Context, poID string) (services.PurchaseOrderView, error)

	CreateExpense(ctx context.Context, actorID string, in services.ExpenseInput) (models.Expense, error)
	ApproveExpense(ctx context.Context, actorID, expenseID string) (models.Expense, error)
	RejectExpense(ctx context.Context, actorID, expenseID string) (models.Expense, error)
	MarkExpensePaid(ctx context.Context, actorID, expenseID string) (models.Expense, models.JournalEntry, error)
	GetExpense(ctx context.Context, expenseID string) (models.Expense, error)

	CreateRefund(ctx context.Context, actorID string, in services.RefundInput) (models.Refund, error)
	ApproveRefund(ctx context.Context, actorID, refundID string) (models.Refund, error)
	ProcessRefund(ctx context.Context, actorID, refundID string) (models.Refund, error)
	RejectRefund(ctx context.Context, actorID, refundID, reason string) (models.Refund, error)
	CancelRefund(ctx context.Context, actorID, refundID string) (models.Refund, error)
	GetRefund(ctx context.Context, refundID string) (models.Refund, error)
}

type ReportService interface {
	Generate(ctx context.Context, req services.ReportRequest) (any, error)
}

type AuditStore interface {
	List(ctx context.Context, entityType, entityID string, limit, offset int) ([]models.AuditLog, error)
}
