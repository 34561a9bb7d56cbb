package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"accounting/internal/models"
	"accounting/internal/store"
	"accounting/internal/websocket"
)

type AccountStore interface {
	Create(ctx context.Context, tx store.Execer, account models.Account) error
	GetByID(ctx context.Context, accountID string) (models.Account, error)
	GetByCode(ctx context.Context, q store.Getter, code string) (models.Account, error)
	GetForUpdate(ctx context.Context, tx store.Getter, accountID string) (models.Account, error)
	List(ctx context.Context, q store.Selecter) ([]models.Account, error)
	Update(ctx context.Context, tx store.Execer, account models.Account) error
	Delete(ctx context.Context, tx store.Execer, accountID string) error
	CountChildren(ctx context.Context, q store.Getter, accountID string) (int, error)
}

type JournalStore interface {
	Create(ctx context.Context, tx store.Execer, entry models.JournalEntry) error
	GetByID(ctx context.Context, q store.Getter, entryID string) (models.JournalEntry, error)
	GetForUpdate(ctx context.Context, tx store.Getter, entryID string) (models.JournalEntry, error)
	UpdateStatus(ctx context.Context, tx store.Execer, entryID string, from, to models.EntryStatus) (bool, error)
	Touch(ctx context.Context, tx store.Execer, entryID string) error
	DeleteDraft(ctx context.Context, tx store.Execer, entryID string) (bool, error)
	List(ctx context.Context, filter store.EntryFilter) ([]models.JournalEntry, error)
}

type LedgerStore interface {
	InsertLines(ctx context.Context, tx store.Execer, lines []models.JournalLine) error
	ListByEntry(ctx context.Context, q store.Selecter, entryID string) ([]models.JournalLine, error)
	DeleteLine(ctx context.Context, tx store.Execer, entryID, lineID string) error
	CountByAccount(ctx context.Context, q store.Getter, accountID string) (int, error)
	ListPosted(ctx context.Context, q store.Selecter, through *time.Time) ([]models.PostedLine, error)
}

type PaymentStore interface {
	NextNumber(ctx context.Context, q store.Getter, paymentType models.PaymentType, on time.Time) (string, error)
	Create(ctx context.Context, tx store.Execer, p models.Payment) error
	GetByID(ctx context.Context, paymentID string) (models.Payment, error)
	GetForUpdate(ctx context.Context, tx store.Getter, paymentID string) (models.Payment, error)
	Finalize(ctx context.Context, tx store.Execer, paymentID string) error
	AllocatedTotal(ctx context.Context, q store.Getter, paymentID string) (decimal.Decimal, error)
	List(ctx context.Context, filter store.PaymentFilter) ([]models.Payment, error)
}

type AllocationStore interface {
	CreateInvoiceAllocation(ctx context.Context, tx store.Execer, a models.InvoiceAllocation) error
	CreateSupplierAllocation(ctx context.Context, tx store.Execer, a models.SupplierAllocation) error
	GetInvoiceAllocationForUpdate(ctx context.Context, tx store.Getter, id string) (models.InvoiceAllocation, error)
	GetSupplierAllocationForUpdate(ctx context.Context, tx store.Getter, id string) (models.SupplierAllocation, error)
	DeleteInvoiceAllocation(ctx context.Context, tx store.Execer, id string) error
	DeleteSupplierAllocation(ctx context.Context, tx store.Execer, id string) error
	SumForInvoice(ctx context.Context, q store.Getter, invoiceID string) (decimal.Decimal, error)
	SumForPurchaseOrder(ctx context.Context, q store.Getter, poID string) (decimal.Decimal, error)
	SumForExpense(ctx context.Context, q store.Getter, expenseID string) (decimal.Decimal, error)
	ListByPayment(ctx context.Context, paymentID string) ([]models.InvoiceAllocation, []models.SupplierAllocation, error)
	AllocatedByInvoice(ctx context.Context, q store.Selecter) (map[string]decimal.Decimal, error)
	AllocatedByPurchaseOrder(ctx context.Context, q store.Selecter) (map[string]decimal.Decimal, error)
	AllocatedByExpense(ctx context.Context, q store.Selecter) (map[string]decimal.Decimal, error)
}

type DocumentStore interface {
	NextInvoiceNumber(ctx context.Context, q store.Getter, on time.Time) (string, error)
	CreateInvoice(ctx context.Context, tx store.Execer, inv models.Invoice) error
	GetInvoice(ctx context.Context, invoiceID string) (models.Invoice, error)
	GetInvoiceForUpdate(ctx context.Context, tx store.Getter, invoiceID string) (models.Invoice, error)
	SetInvoiceStatus(ctx context.Context, tx store.Execer, invoiceID string, status models.InvoiceStatus) error
	ListOpenInvoices(ctx context.Context, q store.Selecter, asOf time.Time) ([]models.Invoice, error)
	ListInvoices(ctx context.Context, status models.InvoiceStatus, limit, offset int) ([]models.Invoice, error)

	NextPurchaseOrderNumber(ctx context.Context, q store.Getter, on time.Time) (string, error)
	CreatePurchaseOrder(ctx context.Context, tx store.Execer, po models.PurchaseOrder) error
	GetPurchaseOrder(ctx context.Context, poID string) (models.PurchaseOrder, error)
	GetPurchaseOrderForUpdate(ctx context.Context, tx store.Getter, poID string) (models.PurchaseOrder, error)
	SetPurchaseOrderStatus(ctx context.Context, tx store.Execer, poID string, status models.PurchaseOrderStatus) error
	ApprovePurchaseOrder(ctx context.Context, tx store.Execer, poID, approverID string, at time.Time) error
	SetPurchaseOrderPaymentStatus(ctx context.Context, tx store.Execer, poID string, state models.PaymentState) error
	ListPayablePurchaseOrders(ctx context.Context, q store.Selecter, asOf time.Time) ([]models.PurchaseOrder, error)

	NextExpenseNumber(ctx context.Context, q store.Getter, on time.Time) (string, error)
	CreateExpense(ctx context.Context, tx store.Execer, e models.Expense) error
	GetExpense(ctx context.Context, expenseID string) (models.Expense, error)
	GetExpenseForUpdate(ctx context.Context, tx store.Getter, expenseID string) (models.Expense, error)
	SetExpenseStatus(ctx context.Context, tx store.Execer, expenseID string, status models.ExpenseStatus) error
	ApproveExpense(ctx context.Context, tx store.Execer, expenseID, approverID string) error
	MarkExpensePaid(ctx context.Context, tx store.Execer, expenseID, entryID string) error
	ListOpenExpenses(ctx context.Context, q store.Selecter, asOf time.Time) ([]models.Expense, error)

	NextRefundNumber(ctx context.Context, q store.Getter, on time.Time) (string, error)
	CreateRefund(ctx context.Context, tx store.Execer, r models.Refund) error
	GetRefund(ctx context.Context, refundID string) (models.Refund, error)
	GetRefundForUpdate(ctx context.Context, tx store.Getter, refundID string) (models.Refund, error)
	UpdateRefund(ctx context.Context, tx store.Execer, r models.Refund) error
}

type PartyStore interface {
	CreateClient(ctx context.Context, tx store.Execer, c models.Client) error
	GetClient(ctx context.Context, clientID string) (models.Client, error)
	ListClients(ctx context.Context, q store.Selecter, activeOnly bool) ([]models.Client, error)
	CreateSupplier(ctx context.Context, tx store.Execer, s models.Supplier) error
	GetSupplier(ctx context.Context, q store.Getter, supplierID string) (models.Supplier, error)
	ListSuppliers(ctx context.Context, q store.Selecter, activeOnly bool) ([]models.Supplier, error)
}

type AuditStore interface {
	Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID string, data any) error
}

type EventPublisher interface {
	Publish(event websocket.Event)
}

// Clock returns the current time; services take it as a dependency so dates
// in tests are fixed.
type Clock func() time.Time

func SystemClock() time.Time { return time.Now().UTC() }

type nopPublisher struct{}

func (nopPublisher) Publish(websocket.Event) {}

func publisherOrNop(p EventPublisher) EventPublisher {
	if p == nil {
		return nopPublisher{}
	}
	return p
}

func clockOrSystem(c Clock) Clock {
	if c == nil {
		return SystemClock
	}
	return c
}

func newID() string { return uuid.NewString() }
