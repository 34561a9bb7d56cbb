package ledger

import (
	"sort"
	"time"

	"accounting/internal/models"

	"github.com/shopspring/decimal"
)

// Period bounds a balance query by entry date, both ends inclusive. A nil
// bound leaves that side open.
type Period struct {
	Start *time.Time
	End   *time.Time
}

func AllTime() Period { return Period{} }

func Through(end time.Time) Period {
	end = models.DateOf(end)
	return Period{End: &end}
}

func Between(start, end time.Time) Period {
	start = models.DateOf(start)
	end = models.DateOf(end)
	return Period{Start: &start, End: &end}
}

type accountTotals struct {
	dates   []time.Time
	debits  []decimal.Decimal
	credits []decimal.Decimal
}

// Calculator answers balance queries from one pass over the ledger lines.
// Each account keeps its lines in date order with cumulative debit and credit
// sums, so a period query is two binary searches.
type Calculator struct {
	tree     *Tree
	accounts map[string]*accountTotals
}

func NewCalculator(tree *Tree, lines []models.PostedLine) *Calculator {
	grouped := map[string][]models.PostedLine{}
	for _, line := range lines {
		grouped[line.AccountID] = append(grouped[line.AccountID], line)
	}
	c := &Calculator{tree: tree, accounts: make(map[string]*accountTotals, len(grouped))}
	for accountID, accountLines := range grouped {
		sort.SliceStable(accountLines, func(i, j int) bool {
			return accountLines[i].EntryDate.Before(accountLines[j].EntryDate)
		})
		totals := &accountTotals{
			dates:   make([]time.Time, len(accountLines)),
			debits:  make([]decimal.Decimal, len(accountLines)+1),
			credits: make([]decimal.Decimal, len(accountLines)+1),
		}
		totals.debits[0] = decimal.Zero
		totals.credits[0] = decimal.Zero
		for i, line := range accountLines {
			totals.dates[i] = models.DateOf(line.EntryDate)
			totals.debits[i+1] = totals.debits[i].Add(line.Debit)
			totals.credits[i+1] = totals.credits[i].Add(line.Credit)
		}
		c.accounts[accountID] = totals
	}
	return c
}

func (c *Calculator) Tree() *Tree {
	return c.tree
}

// Totals returns the raw debit and credit sums for the account in the period.
func (c *Calculator) Totals(accountID string, period Period) (decimal.Decimal, decimal.Decimal) {
	totals, ok := c.accounts[accountID]
	if !ok {
		return decimal.Zero, decimal.Zero
	}
	lo := 0
	if period.Start != nil {
		start := models.DateOf(*period.Start)
		lo = sort.Search(len(totals.dates), func(i int) bool { return !totals.dates[i].Before(start) })
	}
	hi := len(totals.dates)
	if period.End != nil {
		end := models.DateOf(*period.End)
		hi = sort.Search(len(totals.dates), func(i int) bool { return totals.dates[i].After(end) })
	}
	if hi <= lo {
		return decimal.Zero, decimal.Zero
	}
	return totals.debits[hi].Sub(totals.debits[lo]), totals.credits[hi].Sub(totals.credits[lo])
}

func (c *Calculator) Balance(accountID string, period Period) (decimal.Decimal, error) {
	account, ok := c.tree.Account(accountID)
	if !ok {
		return decimal.Zero, ErrUnknownAccount
	}
	debits, credits := c.Totals(accountID, period)
	return account.Type.SignedAmount(debits, credits), nil
}

// ConsolidatedBalance adds the balances of every descendant to the account's own.
func (c *Calculator) ConsolidatedBalance(accountID string, period Period) (decimal.Decimal, error) {
	total, err := c.Balance(accountID, period)
	if err != nil {
		return decimal.Zero, err
	}
	descendants, err := c.tree.Descendants(accountID)
	if err != nil {
		return decimal.Zero, err
	}
	for _, child := range descendants {
		debits, credits := c.Totals(child.ID, period)
		total = total.Add(child.Type.SignedAmount(debits, credits))
	}
	return total, nil
}

// SumBalances totals the balances of the given accounts.
func (c *Calculator) SumBalances(accounts []models.Account, period Period) decimal.Decimal {
	total := decimal.Zero
	for _, account := range accounts {
		debits, credits := c.Totals(account.ID, period)
		total = total.Add(account.Type.SignedAmount(debits, credits))
	}
	return total
}

func DebitBalance(balance decimal.Decimal) decimal.Decimal {
	if balance.IsPositive() {
		return balance
	}
	return decimal.Zero
}

func CreditBalance(balance decimal.Decimal) decimal.Decimal {
	if balance.IsNegative() {
		return balance.Neg()
	}
	return decimal.Zero
}
