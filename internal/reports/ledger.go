package reports

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"accounting/internal/ledger"
	"accounting/internal/models"
	"accounting/internal/money"
)

type LedgerTransaction struct {
	EntryID        string       `json:"entry_id"`
	Date           string       `json:"date"`
	Description    string       `json:"description"`
	ReferenceType  *string      `json:"reference_type"`
	ReferenceID    *string      `json:"reference_id"`
	Debit          money.Amount `json:"debit"`
	Credit         money.Amount `json:"credit"`
	RunningBalance money.Amount `json:"running_balance"`
}

type AccountLedger struct {
	AccountID        string              `json:"account_id"`
	AccountCode      string              `json:"account_code"`
	AccountName      string              `json:"account_name"`
	AccountType      models.AccountType  `json:"account_type"`
	BeginningBalance money.Amount        `json:"beginning_balance"`
	EndingBalance    money.Amount        `json:"ending_balance"`
	TotalDebits      money.Amount        `json:"total_debits"`
	TotalCredits     money.Amount        `json:"total_credits"`
	TransactionCount int                 `json:"transaction_count"`
	Transactions     []LedgerTransaction `json:"transactions"`
}

type LedgerSummary struct {
	TotalAccounts     int          `json:"total_accounts"`
	TotalTransactions int          `json:"total_transactions"`
	TotalDebits       money.Amount `json:"total_debits"`
	TotalCredits      money.Amount `json:"total_credits"`
}

type GeneralLedger struct {
	ReportType    string          `json:"report_type"`
	PeriodStart   string          `json:"period_start"`
	PeriodEnd     string          `json:"period_end"`
	GeneratedAt   string          `json:"generated_at"`
	AccountFilter *string         `json:"account_filter"`
	Accounts      []AccountLedger `json:"accounts"`
	Summary       LedgerSummary   `json:"summary"`
}

// GeneralLedger lists every active account (or just accountID when set) with
// its lines in [start, end] and a running balance seeded from the day before
// start. Lines are in the order they were written.
func (b *Builder) GeneralLedger(start, end time.Time, accountID string) GeneralLedger {
	period := ledger.Between(start, end)
	linesByAccount := map[string][]models.PostedLine{}
	for _, line := range b.snap.Lines {
		if inPeriod(line.EntryDate, period) {
			linesByAccount[line.AccountID] = append(linesByAccount[line.AccountID], line)
		}
	}

	var filter *string
	if accountID != "" {
		filter = &accountID
	}
	out := GeneralLedger{
		ReportType:    TypeGeneralLedger,
		PeriodStart:   formatDate(start),
		PeriodEnd:     formatDate(end),
		GeneratedAt:   b.stamp(),
		AccountFilter: filter,
		Accounts:      []AccountLedger{},
	}
	grandDebits, grandCredits := decimal.Zero, decimal.Zero

	for _, account := range b.tree.Accounts() {
		if !account.IsActive || (accountID != "" && account.ID != accountID) {
			continue
		}
		beginning, _ := b.calc.Balance(account.ID, ledger.Through(dayBefore(start)))
		ending, _ := b.calc.Balance(account.ID, ledger.Through(end))

		lines := linesByAccount[account.ID]
		sort.SliceStable(lines, func(i, j int) bool {
			if !lines[i].CreatedAt.Equal(lines[j].CreatedAt) {
				return lines[i].CreatedAt.Before(lines[j].CreatedAt)
			}
			return lines[i].LineID < lines[j].LineID
		})

		running := beginning
		debits, credits := decimal.Zero, decimal.Zero
		transactions := make([]LedgerTransaction, 0, len(lines))
		for _, line := range lines {
			running = running.Add(account.Type.SignedAmount(line.Debit, line.Credit))
			debits = debits.Add(line.Debit)
			credits = credits.Add(line.Credit)
			transactions = append(transactions, LedgerTransaction{
				EntryID:        line.EntryID,
				Date:           formatDate(line.EntryDate),
				Description:    line.Description(),
				ReferenceType:  line.ReferenceType,
				ReferenceID:    line.ReferenceID,
				Debit:          money.A(line.Debit),
				Credit:         money.A(line.Credit),
				RunningBalance: money.A(running),
			})
		}

		out.Accounts = append(out.Accounts, AccountLedger{
			AccountID:        account.ID,
			AccountCode:      account.Code,
			AccountName:      account.Name,
			AccountType:      account.Type,
			BeginningBalance: money.A(beginning),
			EndingBalance:    money.A(ending),
			TotalDebits:      money.A(debits),
			TotalCredits:     money.A(credits),
			TransactionCount: len(transactions),
			Transactions:     transactions,
		})
		out.Summary.TotalTransactions += len(transactions)
		grandDebits = grandDebits.Add(debits)
		grandCredits = grandCredits.Add(credits)
	}
	out.Summary.TotalAccounts = len(out.Accounts)
	out.Summary.TotalDebits = money.A(grandDebits)
	out.Summary.TotalCredits = money.A(grandCredits)
	return out
}

type QuickStats struct {
	TotalAssets      money.Amount `json:"total_assets"`
	TotalLiabilities money.Amount `json:"total_liabilities"`
	TotalEquity      money.Amount `json:"total_equity"`
	MonthlyRevenue   money.Amount `json:"monthly_revenue"`
	MonthlyExpenses  money.Amount `json:"monthly_expenses"`
	YTDRevenue       money.Amount `json:"ytd_revenue"`
	YTDExpenses      money.Amount `json:"ytd_expenses"`
}

type AgingSummaries struct {
	AR AgingSummary `json:"ar_aging"`
	AP AgingSummary `json:"ap_aging"`
}

type Dashboard struct {
	ReportType     string         `json:"report_type"`
	AsOfDate       string         `json:"as_of_date"`
	GeneratedAt    string         `json:"generated_at"`
	QuickStats     QuickStats     `json:"quick_stats"`
	AgingSummaries AgingSummaries `json:"aging_summaries"`
}

func (b *Builder) Dashboard(asOf time.Time) Dashboard {
	asOf = models.DateOf(asOf)
	monthStart := time.Date(asOf.Year(), asOf.Month(), 1, 0, 0, 0, 0, time.UTC)
	yearStart := time.Date(asOf.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	through := ledger.Through(asOf)
	month := ledger.Between(monthStart, asOf)
	year := ledger.Between(yearStart, asOf)

	return Dashboard{
		ReportType:  TypeDashboard,
		AsOfDate:    formatDate(asOf),
		GeneratedAt: b.stamp(),
		QuickStats: QuickStats{
			TotalAssets:      money.A(b.totalFor(models.AccountAsset, through)),
			TotalLiabilities: money.A(b.totalFor(models.AccountLiability, through)),
			TotalEquity:      money.A(b.totalFor(models.AccountEquity, through)),
			MonthlyRevenue:   money.A(b.totalFor(models.AccountRevenue, month)),
			MonthlyExpenses:  money.A(b.totalFor(models.AccountExpense, month)),
			YTDRevenue:       money.A(b.totalFor(models.AccountRevenue, year)),
			YTDExpenses:      money.A(b.totalFor(models.AccountExpense, year)),
		},
		AgingSummaries: AgingSummaries{
			AR: b.ARAging(asOf).Summary,
			AP: b.APAging(asOf).Summary,
		},
	}
}
