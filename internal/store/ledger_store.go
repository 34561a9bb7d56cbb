package store

import (
	"context"
	"time"

	"accounting/internal/models"
)

// LedgerStore reads and writes journal lines.
type LedgerStore struct {
	db DB
}

func NewLedgerStore(db DB) *LedgerStore {
	return &LedgerStore{db: db}
}

func (s *LedgerStore) InsertLines(ctx context.Context, tx Execer, lines []models.JournalLine) error {
	query := `
		INSERT INTO journal_entry_lines (id, journal_entry_id, account_id, debit, credit, description)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for _, line := range lines {
		if _, err := tx.ExecContext(ctx, query, line.ID, line.EntryID, line.AccountID, line.Debit, line.Credit, line.Description); err != nil {
			return err
		}
	}
	return nil
}

func (s *LedgerStore) ListByEntry(ctx context.Context, q Selecter, entryID string) ([]models.JournalLine, error) {
	var rows []models.JournalLine
	err := q.SelectContext(ctx, &rows, `
		SELECT id, journal_entry_id, account_id, debit, credit, description, created_at
		FROM journal_entry_lines
		WHERE journal_entry_id = $1
		ORDER BY created_at, id
	`, entryID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *LedgerStore) DeleteLine(ctx context.Context, tx Execer, entryID, lineID string) error {
	return expectOne(tx.ExecContext(ctx, `
		DELETE FROM journal_entry_lines WHERE id = $1 AND journal_entry_id = $2
	`, lineID, entryID))
}

func (s *LedgerStore) CountByAccount(ctx context.Context, q Getter, accountID string) (int, error) {
	var n int
	err := q.GetContext(ctx, &n, `SELECT COUNT(*) FROM journal_entry_lines WHERE account_id = $1`, accountID)
	return n, err
}

// ListPosted returns every line of entries that reached the ledger (posted or
// later reversed) dated on or before through, or all of them when through is nil.
// A reversed entry stays in the books next to the entry that offsets it.
func (s *LedgerStore) ListPosted(ctx context.Context, q Selecter, through *time.Time) ([]models.PostedLine, error) {
	query := `
		SELECT l.id AS line_id, l.journal_entry_id, l.account_id, l.debit, l.credit,
		       l.description AS line_description, e.entry_date, e.description AS entry_description,
		       e.reference_type, e.reference_id, e.cash_flow_category, e.affects_cash, l.created_at
		FROM journal_entry_lines l
		JOIN journal_entries e ON e.id = l.journal_entry_id
		WHERE e.status IN ('posted', 'reversed')
		  AND ($1::date IS NULL OR e.entry_date <= $1::date)
		ORDER BY e.entry_date, l.created_at, l.id
	`
	var arg any
	if through != nil {
		arg = dateArg(*through)
	}
	var rows []models.PostedLine
	if err := q.SelectContext(ctx, &rows, query, arg); err != nil {
		return nil, err
	}
	return rows, nil
}
