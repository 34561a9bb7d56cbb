package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type AccountType string

const (
	AccountAsset     AccountType = "asset"
	AccountLiability AccountType = "liability"
	AccountEquity    AccountType = "equity"
	AccountRevenue   AccountType = "revenue"
	AccountExpense   AccountType = "expense"
)

var AccountTypes = []AccountType{AccountAsset, AccountLiability, AccountEquity, AccountRevenue, AccountExpense}

func (t AccountType) IsValid() bool {
	switch t {
	case AccountAsset, AccountLiability, AccountEquity, AccountRevenue, AccountExpense:
		return true
	}
	return false
}

// HasDebitBalance is true for types whose balance grows with debits.
func (t AccountType) HasDebitBalance() bool {
	return t == AccountAsset || t == AccountExpense
}

func (t AccountType) HasCreditBalance() bool {
	return t == AccountLiability || t == AccountEquity || t == AccountRevenue
}

// SignedAmount applies the balance convention of the account type to a line.
func (t AccountType) SignedAmount(debit, credit decimal.Decimal) decimal.Decimal {
	if t.HasDebitBalance() {
		return debit.Sub(credit)
	}
	return credit.Sub(debit)
}

type Account struct {
	ID            string      `db:"id" json:"id"`
	Code          string      `db:"code" json:"code"`
	Name          string      `db:"name" json:"name"`
	Type          AccountType `db:"type" json:"type"`
	ParentID      *string     `db:"parent_id" json:"parent_id"`
	Description   string      `db:"description" json:"description"`
	IsActive      bool        `db:"is_active" json:"is_active"`
	IsCashAccount bool        `db:"is_cash_account" json:"is_cash_account"`
	IsBankAccount bool        `db:"is_bank_account" json:"is_bank_account"`
	CreatedAt     time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time   `db:"updated_at" json:"updated_at"`
}

type EntryStatus string

const (
	EntryDraft    EntryStatus = "draft"
	EntryPosted   EntryStatus = "posted"
	EntryReversed EntryStatus = "reversed"
)

type CashFlowCategory string

const (
	CashFlowOperating CashFlowCategory = "operating"
	CashFlowInvesting CashFlowCategory = "investing"
	CashFlowFinancing CashFlowCategory = "financing"
)

var CashFlowCategories = []CashFlowCategory{CashFlowOperating, CashFlowInvesting, CashFlowFinancing}

func (c CashFlowCategory) IsValid() bool {
	return c == CashFlowOperating || c == CashFlowInvesting || c == CashFlowFinancing
}

const (
	ReferenceReversal = "journal_entry_reversal"
	ReferenceExpense  = "expense"
)

type JournalEntry struct {
	ID               string            `db:"id" json:"id"`
	EntryDate        time.Time         `db:"entry_date" json:"entry_date"`
	Description      string            `db:"description" json:"description"`
	ReferenceType    *string           `db:"reference_type" json:"reference_type"`
	ReferenceID      *string           `db:"reference_id" json:"reference_id"`
	Status           EntryStatus       `db:"status" json:"status"`
	CashFlowCategory *CashFlowCategory `db:"cash_flow_category" json:"cash_flow_category"`
	AffectsCash      bool              `db:"affects_cash" json:"affects_cash"`
	CreatedBy        string            `db:"created_by" json:"created_by"`
	CreatedAt        time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time         `db:"updated_at" json:"updated_at"`
}

type JournalLine struct {
	ID          string          `db:"id" json:"id"`
	EntryID     string          `db:"journal_entry_id" json:"journal_entry_id"`
	AccountID   string          `db:"account_id" json:"account_id"`
	Debit       decimal.Decimal `db:"debit" json:"debit"`
	Credit      decimal.Decimal `db:"credit" json:"credit"`
	Description string          `db:"description" json:"description"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

// PostedLine is a journal line joined with the header fields of its posted entry.
type PostedLine struct {
	LineID           string            `db:"line_id"`
	EntryID          string            `db:"journal_entry_id"`
	AccountID        string            `db:"account_id"`
	Debit            decimal.Decimal   `db:"debit"`
	Credit           decimal.Decimal   `db:"credit"`
	LineDescription  string            `db:"line_description"`
	EntryDate        time.Time         `db:"entry_date"`
	EntryDescription string            `db:"entry_description"`
	ReferenceType    *string           `db:"reference_type"`
	ReferenceID      *string           `db:"reference_id"`
	CashFlowCategory *CashFlowCategory `db:"cash_flow_category"`
	AffectsCash      bool              `db:"affects_cash"`
	CreatedAt        time.Time         `db:"created_at"`
}

func (l PostedLine) Description() string {
	if l.LineDescription != "" {
		return l.LineDescription
	}
	return l.EntryDescription
}

type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	ActorID    *string   `db:"actor_id" json:"actor_id"`
	Action     string    `db:"action" json:"action"`
	EntityType string    `db:"entity_type" json:"entity_type"`
	EntityID   string    `db:"entity_id" json:"entity_id"`
	Data       string    `db:"data" json:"data"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
