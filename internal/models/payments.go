package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentType string

const (
	PaymentInvoice  PaymentType = "invoice_payment"
	PaymentRefund   PaymentType = "refund"
	PaymentPurchase PaymentType = "purchase_payment"
	PaymentExpense  PaymentType = "expense_payment"
)

func (t PaymentType) IsValid() bool {
	switch t {
	case PaymentInvoice, PaymentRefund, PaymentPurchase, PaymentExpense:
		return true
	}
	return false
}

// NumberPrefix is the payment_number prefix for the type.
func (t PaymentType) NumberPrefix() string {
	switch t {
	case PaymentRefund:
		return "REF"
	case PaymentPurchase:
		return "PUR"
	case PaymentExpense:
		return "EXP"
	default:
		return "PAY"
	}
}

type PaymentMethod string

const (
	MethodCash         PaymentMethod = "cash"
	MethodCreditCard   PaymentMethod = "credit_card"
	MethodDebitCard    PaymentMethod = "debit_card"
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodCheck        PaymentMethod = "check"
	MethodStoreCredit  PaymentMethod = "store_credit"
	MethodOther        PaymentMethod = "other"
)

func (m PaymentMethod) IsValid() bool {
	switch m {
	case MethodCash, MethodCreditCard, MethodDebitCard, MethodBankTransfer, MethodCheck, MethodStoreCredit, MethodOther:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentRecorded  PaymentStatus = "recorded"
	PaymentFinalized PaymentStatus = "finalized"
)

type PayableKind string

const (
	PayableInvoice       PayableKind = "invoice"
	PayablePurchaseOrder PayableKind = "purchase_order"
	PayableExpense       PayableKind = "expense"
	PayableRefund        PayableKind = "refund"
)

func (k PayableKind) IsValid() bool {
	switch k {
	case PayableInvoice, PayablePurchaseOrder, PayableExpense, PayableRefund:
		return true
	}
	return false
}

// PayableRef identifies the single document a payment was recorded against.
type PayableRef struct {
	Kind PayableKind `json:"kind"`
	ID   string      `json:"id"`
}

func InvoiceRef(id string) PayableRef       { return PayableRef{Kind: PayableInvoice, ID: id} }
func PurchaseOrderRef(id string) PayableRef { return PayableRef{Kind: PayablePurchaseOrder, ID: id} }
func ExpenseRef(id string) PayableRef       { return PayableRef{Kind: PayableExpense, ID: id} }
func RefundRef(id string) PayableRef        { return PayableRef{Kind: PayableRefund, ID: id} }

func (r PayableRef) Validate() error {
	if !r.Kind.IsValid() {
		return fmt.Errorf("unknown payable kind %q", r.Kind)
	}
	if r.ID == "" {
		return fmt.Errorf("payable id is required")
	}
	return nil
}

func (r PayableRef) String() string {
	return string(r.Kind) + ":" + r.ID
}

type Payment struct {
	ID              string          `db:"id" json:"id"`
	Number          string          `db:"payment_number" json:"payment_number"`
	Type            PaymentType     `db:"type" json:"type"`
	PayableKind     PayableKind     `db:"payable_kind" json:"payable_kind"`
	PayableID       string          `db:"payable_id" json:"payable_id"`
	Method          PaymentMethod   `db:"method" json:"method"`
	Amount          decimal.Decimal `db:"amount" json:"amount"`
	PaymentDate     time.Time       `db:"payment_date" json:"payment_date"`
	ReferenceNumber *string         `db:"reference_number" json:"reference_number"`
	Details         *string         `db:"payment_details" json:"payment_details"`
	Notes           string          `db:"notes" json:"notes"`
	Status          PaymentStatus   `db:"status" json:"status"`
	ProcessedBy     string          `db:"processed_by" json:"processed_by"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}

func (p Payment) Payable() PayableRef {
	return PayableRef{Kind: p.PayableKind, ID: p.PayableID}
}

func (p Payment) IsFinalized() bool {
	return p.Status == PaymentFinalized
}

type InvoiceAllocation struct {
	ID              string          `db:"id" json:"id"`
	InvoiceID       string          `db:"invoice_id" json:"invoice_id"`
	PaymentID       string          `db:"payment_id" json:"payment_id"`
	AmountAllocated decimal.Decimal `db:"amount_allocated" json:"amount_allocated"`
	AllocationDate  time.Time       `db:"allocation_date" json:"allocation_date"`
	Notes           string          `db:"notes" json:"notes"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}

type SupplierAllocation struct {
	ID              string          `db:"id" json:"id"`
	SupplierID      string          `db:"supplier_id" json:"supplier_id"`
	PaymentID       string          `db:"payment_id" json:"payment_id"`
	PurchaseOrderID *string         `db:"purchase_order_id" json:"purchase_order_id"`
	ExpenseID       *string         `db:"expense_id" json:"expense_id"`
	AmountAllocated decimal.Decimal `db:"amount_allocated" json:"amount_allocated"`
	AllocationDate  time.Time       `db:"allocation_date" json:"allocation_date"`
	Notes           string          `db:"notes" json:"notes"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}

// Target returns the purchase order or expense the allocation settles.
func (a SupplierAllocation) Target() (PayableRef, error) {
	hasPO := a.PurchaseOrderID != nil && *a.PurchaseOrderID != ""
	hasExpense := a.ExpenseID != nil && *a.ExpenseID != ""
	switch {
	case hasPO && !hasExpense:
		return PurchaseOrderRef(*a.PurchaseOrderID), nil
	case hasExpense && !hasPO:
		return ExpenseRef(*a.ExpenseID), nil
	}
	return PayableRef{}, fmt.Errorf("supplier allocation must reference exactly one of purchase order or expense")
}
