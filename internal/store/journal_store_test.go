package store

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"accounting/internal/models"
)

func TestJournalStoreListBuildsFilter(t *testing.T) {
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	store := NewJournalStore(stubDB{
		selectFn: func(_ context.Context, _ any, query string, args ...any) error {
			if !strings.Contains(query, "WHERE status = $1 AND entry_date >= $2") {
				t.Fatalf("unexpected filter: %s", query)
			}
			if !strings.Contains(query, "LIMIT $3 OFFSET $4") {
				t.Fatalf("unexpected paging: %s", query)
			}
			if len(args) != 4 || args[0] != models.EntryPosted || args[1] != "2024-03-01" || args[2] != 50 || args[3] != 0 {
				t.Fatalf("unexpected args: %#v", args)
			}
			return nil
		},
	})
	if _, err := store.List(context.Background(), EntryFilter{Status: models.EntryPosted, From: &from}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestJournalStoreListWithoutFilter(t *testing.T) {
	store := NewJournalStore(stubDB{
		selectFn: func(_ context.Context, _ any, query string, args ...any) error {
			if strings.Contains(query, "WHERE") {
				t.Fatalf("unexpected filter: %s", query)
			}
			if len(args) != 2 || args[0] != 10 || args[1] != 20 {
				t.Fatalf("unexpected args: %#v", args)
			}
			return nil
		},
	})
	if _, err := store.List(context.Background(), EntryFilter{Limit: 10, Offset: 20}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestJournalStoreUpdateStatusGuardsFromState(t *testing.T) {
	execer := stubExecer{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "WHERE id = $2 AND status = $3") {
				t.Fatalf("unexpected query: %s", query)
			}
			if args[0] != models.EntryPosted || args[2] != models.EntryDraft {
				t.Fatalf("unexpected args: %#v", args)
			}
			return stubResult{rows: 0}, nil
		},
	}
	ok, err := NewJournalStore(stubDB{}).UpdateStatus(context.Background(), execer, "je-1", models.EntryDraft, models.EntryPosted)
	if err != nil || ok {
		t.Fatalf("expected no transition, got %v %v", ok, err)
	}
}

func TestJournalStoreGetForUpdateScansEntry(t *testing.T) {
	db, mock := newMockDB(t)
	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "entry_date", "description", "reference_type", "reference_id", "status", "cash_flow_category", "affects_cash", "created_by", "created_at", "updated_at"}).
		AddRow("je-1", day, "Opening balance", nil, nil, "draft", nil, false, "user-1", day, day)
	mock.ExpectQuery(`FROM journal_entries WHERE id = \$1 FOR UPDATE`).WithArgs("je-1").WillReturnRows(rows)

	entry, err := NewJournalStore(db).GetForUpdate(context.Background(), db, "je-1")
	require.NoError(t, err)
	require.Equal(t, models.EntryDraft, entry.Status)
	require.Nil(t, entry.ReferenceType)
	require.Nil(t, entry.CashFlowCategory)
}

func TestJournalStoreGetByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`FROM journal_entries WHERE id = \$1`).WillReturnError(sql.ErrNoRows)

	_, err := NewJournalStore(db).GetByID(context.Background(), db, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}
