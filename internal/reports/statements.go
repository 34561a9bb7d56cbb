package reports

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"accounting/internal/ledger"
	"accounting/internal/models"
	"accounting/internal/money"
)

type BalanceSheetTotals struct {
	TotalAssets               money.Amount `json:"total_assets"`
	CurrentEarnings           money.Amount `json:"current_earnings"`
	TotalLiabilitiesAndEquity money.Amount `json:"total_liabilities_and_equity"`
	BalanceCheck              bool         `json:"balance_check"`
}

type BalanceSheet struct {
	ReportType  string             `json:"report_type"`
	AsOfDate    string             `json:"as_of_date"`
	GeneratedAt string             `json:"generated_at"`
	Assets      AccountSection     `json:"assets"`
	Liabilities AccountSection     `json:"liabilities"`
	Equity      AccountSection     `json:"equity"`
	Totals      BalanceSheetTotals `json:"totals"`
}

// BalanceSheet carries revenue less expense through asOf as current earnings,
// so the identity holds without a closing entry.
func (b *Builder) BalanceSheet(asOf time.Time) BalanceSheet {
	period := ledger.Through(asOf)
	assets, totalAssets := b.section(models.AccountAsset, period)
	liabilities, totalLiabilities := b.section(models.AccountLiability, period)
	equity, totalEquity := b.section(models.AccountEquity, period)
	earnings := b.currentEarnings(period)
	claims := totalLiabilities.Add(totalEquity).Add(earnings)
	return BalanceSheet{
		ReportType:  TypeBalanceSheet,
		AsOfDate:    formatDate(asOf),
		GeneratedAt: b.stamp(),
		Assets:      assets,
		Liabilities: liabilities,
		Equity:      equity,
		Totals: BalanceSheetTotals{
			TotalAssets:               money.A(totalAssets),
			CurrentEarnings:           money.A(earnings),
			TotalLiabilitiesAndEquity: money.A(claims),
			BalanceCheck:              money.NearlyEqual(totalAssets, claims),
		},
	}
}

// currentEarnings includes inactive accounts; deactivation does not undo
// what they earned or spent.
func (b *Builder) currentEarnings(period ledger.Period) decimal.Decimal {
	revenue := b.calc.SumBalances(b.tree.OfType(models.AccountRevenue, false), period)
	expenses := b.calc.SumBalances(b.tree.OfType(models.AccountExpense, false), period)
	return revenue.Sub(expenses)
}

type IncomeSummary struct {
	GrossRevenue  money.Amount `json:"gross_revenue"`
	TotalExpenses money.Amount `json:"total_expenses"`
	NetIncome     money.Amount `json:"net_income"`
	ProfitMargin  money.Amount `json:"profit_margin"`
}

type IncomeStatement struct {
	ReportType  string         `json:"report_type"`
	PeriodStart string         `json:"period_start"`
	PeriodEnd   string         `json:"period_end"`
	GeneratedAt string         `json:"generated_at"`
	Revenue     AccountSection `json:"revenue"`
	Expenses    AccountSection `json:"expenses"`
	Summary     IncomeSummary  `json:"summary"`
}

func (b *Builder) IncomeStatement(start, end time.Time) IncomeStatement {
	period := ledger.Between(start, end)
	revenue, totalRevenue := b.section(models.AccountRevenue, period)
	expenses, totalExpenses := b.section(models.AccountExpense, period)
	net := totalRevenue.Sub(totalExpenses)
	return IncomeStatement{
		ReportType:  TypeIncomeStatement,
		PeriodStart: formatDate(start),
		PeriodEnd:   formatDate(end),
		GeneratedAt: b.stamp(),
		Revenue:     revenue,
		Expenses:    expenses,
		Summary: IncomeSummary{
			GrossRevenue:  money.A(totalRevenue),
			TotalExpenses: money.A(totalExpenses),
			NetIncome:     money.A(net),
			ProfitMargin:  money.A(profitMargin(net, totalRevenue)),
		},
	}
}

func profitMargin(net, revenue decimal.Decimal) decimal.Decimal {
	if !revenue.IsPositive() {
		return decimal.Zero
	}
	return net.Div(revenue).Mul(decimal.NewFromInt(100)).Round(money.Places)
}

type CashActivity struct {
	EntryID       string       `json:"entry_id"`
	Date          string       `json:"date"`
	Description   string       `json:"description"`
	ReferenceType *string      `json:"reference_type"`
	ReferenceID   *string      `json:"reference_id"`
	AccountCode   string       `json:"account_code"`
	AccountName   string       `json:"account_name"`
	Amount        money.Amount `json:"amount"`
}

type CashSection struct {
	Activities []CashActivity `json:"activities"`
	NetCash    money.Amount   `json:"net_cash"`
}

type CashFlowSummary struct {
	BeginningCash            money.Amount `json:"beginning_cash"`
	NetCashFromOperating     money.Amount `json:"net_cash_from_operating"`
	NetCashFromInvesting     money.Amount `json:"net_cash_from_investing"`
	NetCashFromFinancing     money.Amount `json:"net_cash_from_financing"`
	NetCashIncrease          money.Amount `json:"net_cash_increase"`
	EndingCash               money.Amount `json:"ending_cash"`
	CalculatedEndingCash     money.Amount `json:"calculated_ending_cash"`
	ReconciliationDifference money.Amount `json:"reconciliation_difference"`
}

type CashFlowStatement struct {
	ReportType          string          `json:"report_type"`
	PeriodStart         string          `json:"period_start"`
	PeriodEnd           string          `json:"period_end"`
	GeneratedAt         string          `json:"generated_at"`
	OperatingActivities CashSection     `json:"operating_activities"`
	InvestingActivities CashSection     `json:"investing_activities"`
	FinancingActivities CashSection     `json:"financing_activities"`
	Summary             CashFlowSummary `json:"summary"`
}

// CashFlow groups cash-account movements of cash-affecting entries by their
// category. Entries without a category are left out of every section, and the
// gap shows up in the reconciliation difference.
func (b *Builder) CashFlow(start, end time.Time) CashFlowStatement {
	period := ledger.Between(start, end)
	sections := map[models.CashFlowCategory]*CashSection{}
	for _, category := range models.CashFlowCategories {
		sections[category] = &CashSection{Activities: []CashActivity{}}
	}
	nets := map[models.CashFlowCategory]decimal.Decimal{}

	for _, line := range b.snap.Lines {
		if !line.AffectsCash || line.CashFlowCategory == nil {
			continue
		}
		section, ok := sections[*line.CashFlowCategory]
		if !ok || !inPeriod(line.EntryDate, period) {
			continue
		}
		account, ok := b.tree.Account(line.AccountID)
		if !ok || !account.IsCashAccount {
			continue
		}
		amount := account.Type.SignedAmount(line.Debit, line.Credit)
		section.Activities = append(section.Activities, CashActivity{
			EntryID:       line.EntryID,
			Date:          formatDate(line.EntryDate),
			Description:   line.Description(),
			ReferenceType: line.ReferenceType,
			ReferenceID:   line.ReferenceID,
			AccountCode:   account.Code,
			AccountName:   account.Name,
			Amount:        money.A(amount),
		})
		nets[*line.CashFlowCategory] = nets[*line.CashFlowCategory].Add(amount)
	}
	for category, section := range sections {
		sort.SliceStable(section.Activities, func(i, j int) bool {
			return section.Activities[i].Date < section.Activities[j].Date
		})
		section.NetCash = money.A(nets[category])
	}

	cashAccounts := b.activeCashAccounts()
	beginning := b.calc.SumBalances(cashAccounts, ledger.Through(dayBefore(start)))
	ending := b.calc.SumBalances(cashAccounts, ledger.Through(end))
	increase := money.Sum(nets[models.CashFlowOperating], nets[models.CashFlowInvesting], nets[models.CashFlowFinancing])
	calculated := beginning.Add(increase)

	return CashFlowStatement{
		ReportType:          TypeCashFlow,
		PeriodStart:         formatDate(start),
		PeriodEnd:           formatDate(end),
		GeneratedAt:         b.stamp(),
		OperatingActivities: *sections[models.CashFlowOperating],
		InvestingActivities: *sections[models.CashFlowInvesting],
		FinancingActivities: *sections[models.CashFlowFinancing],
		Summary: CashFlowSummary{
			BeginningCash:            money.A(beginning),
			NetCashFromOperating:     money.A(nets[models.CashFlowOperating]),
			NetCashFromInvesting:     money.A(nets[models.CashFlowInvesting]),
			NetCashFromFinancing:     money.A(nets[models.CashFlowFinancing]),
			NetCashIncrease:          money.A(increase),
			EndingCash:               money.A(ending),
			CalculatedEndingCash:     money.A(calculated),
			ReconciliationDifference: money.A(ending.Sub(calculated)),
		},
	}
}

func (b *Builder) activeCashAccounts() []models.Account {
	var out []models.Account
	for _, account := range b.tree.Accounts() {
		if account.IsActive && account.IsCashAccount {
			out = append(out, account)
		}
	}
	return out
}

func inPeriod(date time.Time, period ledger.Period) bool {
	day := models.DateOf(date)
	if period.Start != nil && day.Before(*period.Start) {
		return false
	}
	if period.End != nil && day.After(*period.End) {
		return false
	}
	return true
}
