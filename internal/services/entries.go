package services

import (
	"context"

	"github.com/jmoiron/sqlx"

	"accounting/internal/ledger"
	"accounting/internal/models"
)

// entryWriter writes journal entries inside a caller's transaction. Journal
// and document workflows share it so every posting path validates the same way.
type entryWriter struct {
	accounts AccountStore
	journals JournalStore
	lines    LedgerStore
}

func (w entryWriter) accountIndex(ctx context.Context, tx *sqlx.Tx) (map[string]models.Account, error) {
	accounts, err := w.accounts.List(ctx, tx)
	if err != nil {
		return nil, err
	}
	index := make(map[string]models.Account, len(accounts))
	for _, account := range accounts {
		index[account.ID] = account
	}
	return index, nil
}

func (w entryWriter) validate(ctx context.Context, tx *sqlx.Tx, lines []models.JournalLine) ([]string, error) {
	index, err := w.accountIndex(ctx, tx)
	if err != nil {
		return nil, err
	}
	return ledger.Validate(lines, index), nil
}

// post validates lines and stores them under a new posted entry.
func (w entryWriter) post(ctx context.Context, tx *sqlx.Tx, entry models.JournalEntry, lines []models.JournalLine) (models.JournalEntry, []models.JournalLine, error) {
	problems, err := w.validate(ctx, tx, lines)
	if err != nil {
		return models.JournalEntry{}, nil, err
	}
	if len(problems) > 0 {
		return models.JournalEntry{}, nil, &ValidationError{Problems: problems}
	}
	entry.Status = models.EntryPosted
	return w.insert(ctx, tx, entry, lines)
}

func (w entryWriter) insert(ctx context.Context, tx *sqlx.Tx, entry models.JournalEntry, lines []models.JournalLine) (models.JournalEntry, []models.JournalLine, error) {
	if entry.ID == "" {
		entry.ID = newID()
	}
	entry.EntryDate = models.DateOf(entry.EntryDate)
	if err := w.journals.Create(ctx, tx, entry); err != nil {
		return models.JournalEntry{}, nil, err
	}
	stored := make([]models.JournalLine, len(lines))
	for i, line := range lines {
		line.ID = newID()
		line.EntryID = entry.ID
		stored[i] = line
	}
	if len(stored) > 0 {
		if err := w.lines.InsertLines(ctx, tx, stored); err != nil {
			return models.JournalEntry{}, nil, err
		}
	}
	return entry, stored, nil
}
