package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"accounting/internal/models"
)

type JournalStore struct {
	db DB
}

func NewJournalStore(db DB) *JournalStore {
	return &JournalStore{db: db}
}

const entryColumns = `id, entry_date, description, reference_type, reference_id, status, cash_flow_category, affects_cash, created_by, created_at, updated_at`

func (s *JournalStore) Create(ctx context.Context, tx Execer, entry models.JournalEntry) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO journal_entries (id, entry_date, description, reference_type, reference_id, status, cash_flow_category, affects_cash, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, entry.ID, dateArg(entry.EntryDate), entry.Description, entry.ReferenceType, entry.ReferenceID,
		entry.Status, entry.CashFlowCategory, entry.AffectsCash, entry.CreatedBy)
	return err
}

func (s *JournalStore) GetByID(ctx context.Context, q Getter, entryID string) (models.JournalEntry, error) {
	var row models.JournalEntry
	if err := q.GetContext(ctx, &row, `SELECT `+entryColumns+` FROM journal_entries WHERE id = $1`, entryID); err != nil {
		return models.JournalEntry{}, notFound(err)
	}
	return row, nil
}

func (s *JournalStore) GetForUpdate(ctx context.Context, tx Getter, entryID string) (models.JournalEntry, error) {
	var row models.JournalEntry
	if err := tx.GetContext(ctx, &row, `SELECT `+entryColumns+` FROM journal_entries WHERE id = $1 FOR UPDATE`, entryID); err != nil {
		return models.JournalEntry{}, notFound(err)
	}
	return row, nil
}

// UpdateStatus moves an entry from one status to another and reports whether
// the row was still in the expected state.
func (s *JournalStore) UpdateStatus(ctx context.Context, tx Execer, entryID string, from, to models.EntryStatus) (bool, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE journal_entries
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`, to, entryID, from)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func (s *JournalStore) Touch(ctx context.Context, tx Execer, entryID string) error {
	_, err := tx.ExecContext(ctx, `UPDATE journal_entries SET updated_at = NOW() WHERE id = $1`, entryID)
	return err
}

func (s *JournalStore) DeleteDraft(ctx context.Context, tx Execer, entryID string) (bool, error) {
	res, err := tx.ExecContext(ctx, `DELETE FROM journal_entries WHERE id = $1 AND status = 'draft'`, entryID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

type EntryFilter struct {
	Status        models.EntryStatus
	ReferenceType string
	ReferenceID   string
	From          *time.Time
	To            *time.Time
	Limit         int
	Offset        int
}

func (s *JournalStore) List(ctx context.Context, filter EntryFilter) ([]models.JournalEntry, error) {
	var (
		clauses []string
		args    []any
	)
	add := func(clause string, arg any) {
		args = append(args, arg)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}
	if filter.Status != "" {
		add("status = $%d", filter.Status)
	}
	if filter.ReferenceType != "" {
		add("reference_type = $%d", filter.ReferenceType)
	}
	if filter.ReferenceID != "" {
		add("reference_id = $%d", filter.ReferenceID)
	}
	if filter.From != nil {
		add("entry_date >= $%d", dateArg(*filter.From))
	}
	if filter.To != nil {
		add("entry_date <= $%d", dateArg(*filter.To))
	}
	query := `SELECT ` + entryColumns + ` FROM journal_entries`
	if len(clauses) > 0 {
		query += ` WHERE ` + strings.Join(clauses, " AND ")
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, filter.Offset)
	query += fmt.Sprintf(` ORDER BY entry_date DESC, created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	var rows []models.JournalEntry
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	return rows, nil
}
