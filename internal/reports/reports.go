// Package reports builds financial statements from an in-memory snapshot of
// the ledger and the open payables. Builders never touch storage, so the same
// snapshot and clock always produce the same report.
package reports

import (
	"time"

	"github.com/shopspring/decimal"

	"accounting/internal/ledger"
	"accounting/internal/models"
	"accounting/internal/money"
)

const dateLayout = "2006-01-02"

const (
	TypeBalanceSheet    = "balance_sheet"
	TypeIncomeStatement = "income_statement"
	TypeCashFlow        = "cash_flow_statement"
	TypeARAging         = "ar_aging"
	TypeAPAging         = "ap_aging"
	TypeGeneralLedger   = "general_ledger"
	TypeDashboard       = "financial_dashboard"
)

// Snapshot is everything a report reads. Lines hold every entry that reached
// the ledger; Invoices, PurchaseOrders and Expenses hold the open documents
// and the Allocated maps their settled amounts keyed by document id.
type Snapshot struct {
	Accounts []models.Account
	Lines    []models.PostedLine

	Clients        []models.Client
	Suppliers      []models.Supplier
	Invoices       []models.Invoice
	PurchaseOrders []models.PurchaseOrder
	Expenses       []models.Expense

	InvoiceAllocated       map[string]decimal.Decimal
	PurchaseOrderAllocated map[string]decimal.Decimal
	ExpenseAllocated       map[string]decimal.Decimal
}

type Builder struct {
	snap        Snapshot
	tree        *ledger.Tree
	calc        *ledger.Calculator
	generatedAt time.Time
}

func NewBuilder(snap Snapshot, generatedAt time.Time) *Builder {
	tree := ledger.NewTree(snap.Accounts)
	return &Builder{
		snap:        snap,
		tree:        tree,
		calc:        ledger.NewCalculator(tree, snap.Lines),
		generatedAt: generatedAt.UTC(),
	}
}

func (b *Builder) stamp() string {
	return b.generatedAt.Format(time.RFC3339)
}

type AccountBalance struct {
	AccountID string       `json:"account_id"`
	Code      string       `json:"code"`
	Name      string       `json:"name"`
	FullName  string       `json:"full_name"`
	Balance   money.Amount `json:"balance"`
	IsParent  bool         `json:"is_parent"`
	ParentID  *string      `json:"parent_id"`
}

type AccountSection struct {
	Accounts []AccountBalance `json:"accounts"`
	Total    money.Amount     `json:"total"`
}

// section lists active accounts of one type with their own (not rolled up)
// balance over the period, so the total never counts a line twice.
func (b *Builder) section(accountType models.AccountType, period ledger.Period) (AccountSection, decimal.Decimal) {
	accounts := b.tree.OfType(accountType, true)
	out := AccountSection{Accounts: make([]AccountBalance, 0, len(accounts))}
	total := decimal.Zero
	for _, account := range accounts {
		balance, _ := b.calc.Balance(account.ID, period)
		fullName, err := b.tree.FullName(account.ID)
		if err != nil {
			fullName = account.Name
		}
		out.Accounts = append(out.Accounts, AccountBalance{
			AccountID: account.ID,
			Code:      account.Code,
			Name:      account.Name,
			FullName:  fullName,
			Balance:   money.A(balance),
			IsParent:  b.tree.IsParent(account.ID),
			ParentID:  account.ParentID,
		})
		total = total.Add(balance)
	}
	out.Total = money.A(total)
	return out, total
}

func (b *Builder) totalFor(accountType models.AccountType, period ledger.Period) decimal.Decimal {
	return b.calc.SumBalances(b.tree.OfType(accountType, true), period)
}

func dayBefore(t time.Time) time.Time {
	return models.DateOf(t).AddDate(0, 0, -1)
}

func formatDate(t time.Time) string {
	return models.DateOf(t).Format(dateLayout)
}
