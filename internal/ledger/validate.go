package ledger

import (
	"sort"
	"strings"

	"accounting/internal/models"
	"accounting/internal/money"

	"github.com/shopspring/decimal"
)

const (
	ProblemTooFewLines = "Journal entry must have at least 2 lines"
	ProblemUnbalanced  = "Journal entry is not balanced (debits must equal credits)"
	ProblemZeroTotal   = "Journal entry must have non-zero amounts"
	problemInactive    = "Inactive accounts used: "
	problemMissing     = "Unknown accounts used: "
)

func Totals(lines []models.JournalLine) (decimal.Decimal, decimal.Decimal) {
	debits, credits := decimal.Zero, decimal.Zero
	for _, line := range lines {
		debits = debits.Add(line.Debit)
		credits = credits.Add(line.Credit)
	}
	return debits, credits
}

func IsBalanced(lines []models.JournalLine) bool {
	debits, credits := Totals(lines)
	return money.NearlyEqual(debits, credits)
}

// Validate lists every reason the lines cannot be posted. An empty result
// means the entry may be posted.
func Validate(lines []models.JournalLine, accounts map[string]models.Account) []string {
	var problems []string
	if len(lines) < 2 {
		problems = append(problems, ProblemTooFewLines)
	}
	debits, credits := Totals(lines)
	if !money.NearlyEqual(debits, credits) {
		problems = append(problems, ProblemUnbalanced)
	}
	if debits.IsZero() && credits.IsZero() {
		problems = append(problems, ProblemZeroTotal)
	}

	var inactive, missing []string
	seen := map[string]bool{}
	for _, line := range lines {
		if seen[line.AccountID] {
			continue
		}
		seen[line.AccountID] = true
		account, ok := accounts[line.AccountID]
		if !ok {
			missing = append(missing, line.AccountID)
			continue
		}
		if !account.IsActive {
			inactive = append(inactive, account.Name)
		}
	}
	if len(inactive) > 0 {
		sort.Strings(inactive)
		problems = append(problems, problemInactive+strings.Join(inactive, ", "))
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		problems = append(problems, problemMissing+strings.Join(missing, ", "))
	}
	return problems
}

// CheckLine enforces that exactly one side of a line is positive.
func CheckLine(debit, credit decimal.Decimal) bool {
	if debit.IsNegative() || credit.IsNegative() {
		return false
	}
	return debit.IsPositive() != credit.IsPositive()
}

// ReverseLines swaps the debit and credit of every line for a reversal entry.
func ReverseLines(lines []models.JournalLine) []models.JournalLine {
	out := make([]models.JournalLine, len(lines))
	for i, line := range lines {
		out[i] = models.JournalLine{
			AccountID:   line.AccountID,
			Debit:       line.Credit,
			Credit:      line.Debit,
			Description: "Reversal of: " + line.Description,
		}
	}
	return out
}
