package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type InvoiceStatus string

const (
	InvoiceDraft     InvoiceStatus = "draft"
	InvoiceSent      InvoiceStatus = "sent"
	InvoicePaid      InvoiceStatus = "paid"
	InvoiceOverdue   InvoiceStatus = "overdue"
	InvoiceCancelled InvoiceStatus = "cancelled"
)

// IsOpen is true for invoices that still count as receivables.
func (s InvoiceStatus) IsOpen() bool {
	return s == InvoiceSent || s == InvoiceOverdue
}

type Invoice struct {
	ID        string          `db:"id" json:"id"`
	Number    string          `db:"invoice_number" json:"invoice_number"`
	ClientID  string          `db:"client_id" json:"client_id"`
	Status    InvoiceStatus   `db:"status" json:"status"`
	IssueDate time.Time       `db:"issue_date" json:"issue_date"`
	DueDate   time.Time       `db:"due_date" json:"due_date"`
	Subtotal  decimal.Decimal `db:"subtotal" json:"subtotal"`
	TaxAmount decimal.Decimal `db:"tax_amount" json:"tax_amount"`
	Total     decimal.Decimal `db:"total" json:"total"`
	Notes     string          `db:"notes" json:"notes"`
	CreatedBy string          `db:"created_by" json:"created_by"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// IsOverdue treats a stored overdue status and a sent invoice past its due
// date the same way.
func (i Invoice) IsOverdue(asOf time.Time) bool {
	if i.Status == InvoiceOverdue {
		return true
	}
	return i.Status == InvoiceSent && DateOf(i.DueDate).Before(DateOf(asOf))
}

// EffectiveStatus is the status a reader should see on asOf.
func (i Invoice) EffectiveStatus(asOf time.Time) InvoiceStatus {
	if i.IsOverdue(asOf) {
		return InvoiceOverdue
	}
	return i.Status
}

type PurchaseOrderStatus string

const (
	PODraft     PurchaseOrderStatus = "draft"
	POSent      PurchaseOrderStatus = "sent"
	POApproved  PurchaseOrderStatus = "approved"
	POReceived  PurchaseOrderStatus = "received"
	POPartial   PurchaseOrderStatus = "partial"
	POCancelled PurchaseOrderStatus = "cancelled"
)

// IsPayable is true once the order is a liability to the supplier.
func (s PurchaseOrderStatus) IsPayable() bool {
	return s == POApproved || s == POReceived || s == POPartial
}

type PaymentState string

const (
	PaymentStateUnpaid  PaymentState = "unpaid"
	PaymentStatePartial PaymentState = "partial"
	PaymentStatePaid    PaymentState = "paid"
)

type PurchaseOrder struct {
	ID            string              `db:"id" json:"id"`
	Number        string              `db:"po_number" json:"po_number"`
	SupplierID    string              `db:"supplier_id" json:"supplier_id"`
	Status        PurchaseOrderStatus `db:"status" json:"status"`
	PaymentStatus PaymentState        `db:"payment_status" json:"payment_status"`
	OrderDate     time.Time           `db:"order_date" json:"order_date"`
	ExpectedDate  *time.Time          `db:"expected_date" json:"expected_date"`
	Subtotal      decimal.Decimal     `db:"subtotal" json:"subtotal"`
	TaxAmount     decimal.Decimal     `db:"tax_amount" json:"tax_amount"`
	ShippingCost  decimal.Decimal     `db:"shipping_cost" json:"shipping_cost"`
	Total         decimal.Decimal     `db:"total" json:"total"`
	Notes         string              `db:"notes" json:"notes"`
	CreatedBy     string              `db:"created_by" json:"created_by"`
	ApprovedBy    *string             `db:"approved_by" json:"approved_by"`
	ApprovedAt    *time.Time          `db:"approved_at" json:"approved_at"`
	CreatedAt     time.Time           `db:"created_at" json:"created_at"`
}

type ExpenseStatus string

const (
	ExpensePending  ExpenseStatus = "pending"
	ExpenseApproved ExpenseStatus = "approved"
	ExpenseRejected ExpenseStatus = "rejected"
	ExpensePaid     ExpenseStatus = "paid"
)

func (s ExpenseStatus) IsOpen() bool {
	return s == ExpensePending || s == ExpenseApproved
}

type Expense struct {
	ID             string          `db:"id" json:"id"`
	Number         string          `db:"expense_number" json:"expense_number"`
	VendorName     string          `db:"vendor_name" json:"vendor_name"`
	AccountID      string          `db:"account_id" json:"account_id"`
	Amount         decimal.Decimal `db:"amount" json:"amount"`
	TaxAmount      decimal.Decimal `db:"tax_amount" json:"tax_amount"`
	ExpenseDate    time.Time       `db:"expense_date" json:"expense_date"`
	Description    string          `db:"description" json:"description"`
	Status         ExpenseStatus   `db:"status" json:"status"`
	ApprovedBy     *string         `db:"approved_by" json:"approved_by"`
	JournalEntryID *string         `db:"journal_entry_id" json:"journal_entry_id"`
	CreatedBy      string          `db:"created_by" json:"created_by"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
}

func (e Expense) TotalAmount() decimal.Decimal {
	return e.Amount.Add(e.TaxAmount)
}

type RefundStatus string

const (
	RefundPending   RefundStatus = "pending"
	RefundApproved  RefundStatus = "approved"
	RefundProcessed RefundStatus = "processed"
	RefundRejected  RefundStatus = "rejected"
	RefundCancelled RefundStatus = "cancelled"
)

type Refund struct {
	ID              string          `db:"id" json:"id"`
	Number          string          `db:"refund_number" json:"refund_number"`
	InvoiceID       string          `db:"invoice_id" json:"invoice_id"`
	Status          RefundStatus    `db:"status" json:"status"`
	Type            string          `db:"type" json:"type"`
	RefundDate      time.Time       `db:"refund_date" json:"refund_date"`
	Subtotal        decimal.Decimal `db:"subtotal" json:"subtotal"`
	TaxAmount       decimal.Decimal `db:"tax_amount" json:"tax_amount"`
	Total           decimal.Decimal `db:"total" json:"total"`
	RefundMethod    *PaymentMethod  `db:"refund_method" json:"refund_method"`
	ReferenceNumber *string         `db:"reference_number" json:"reference_number"`
	Reason          string          `db:"reason" json:"reason"`
	Notes           string          `db:"notes" json:"notes"`
	CreatedBy       string          `db:"created_by" json:"created_by"`
	ApprovedBy      *string         `db:"approved_by" json:"approved_by"`
	ApprovedAt      *time.Time      `db:"approved_at" json:"approved_at"`
	ProcessedAt     *time.Time      `db:"processed_at" json:"processed_at"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}

type Client struct {
	ID          string              `db:"id" json:"id"`
	Code        string              `db:"code" json:"code"`
	Name        string              `db:"name" json:"name"`
	Type        string              `db:"type" json:"type"`
	Email       string              `db:"email" json:"email"`
	CreditLimit decimal.NullDecimal `db:"credit_limit" json:"credit_limit"`
	IsActive    bool                `db:"is_active" json:"is_active"`
	CreatedAt   time.Time           `db:"created_at" json:"created_at"`
}

type Supplier struct {
	ID           string              `db:"id" json:"id"`
	Code         string              `db:"code" json:"code"`
	Name         string              `db:"name" json:"name"`
	CompanyName  string              `db:"company_name" json:"company_name"`
	Email        string              `db:"email" json:"email"`
	PaymentTerms string              `db:"payment_terms" json:"payment_terms"`
	CreditLimit  decimal.NullDecimal `db:"credit_limit" json:"credit_limit"`
	IsActive     bool                `db:"is_active" json:"is_active"`
	CreatedAt    time.Time           `db:"created_at" json:"created_at"`
}

func (s Supplier) DisplayName() string {
	if s.CompanyName != "" {
		return s.CompanyName
	}
	return s.Name
}

// MatchesVendor reports whether a free-text expense vendor belongs to the supplier.
func (s Supplier) MatchesVendor(vendor string) bool {
	if vendor == "" {
		return false
	}
	return vendor == s.Name || (s.CompanyName != "" && vendor == s.CompanyName)
}

func PaymentTermsDays(terms string) int {
	switch terms {
	case "due_on_receipt":
		return 0
	case "net_15":
		return 15
	case "net_30":
		return 30
	case "net_60":
		return 60
	case "net_90":
		return 90
	default:
		return 30
	}
}

// DateOf drops the clock part of t and returns the calendar day at UTC midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween counts whole calendar days from start to end.
func DaysBetween(start, end time.Time) int {
	return int(DateOf(end).Sub(DateOf(start)).Hours() / 24)
}
