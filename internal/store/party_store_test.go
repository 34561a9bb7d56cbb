package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestPartyStoreGetSupplierScansNullCreditLimit(t *testing.T) {
	db, mock := newMockDB(t)
	created := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "code", "name", "company_name", "email", "payment_terms", "credit_limit", "is_active", "created_at"}).
		AddRow("s-1", "SUP1", "Parts", "Parts Co", "ap@parts.test", "net_60", nil, true, created)
	mock.ExpectQuery(`FROM suppliers WHERE id = \$1`).WithArgs("s-1").WillReturnRows(rows)

	supplier, err := NewPartyStore(db).GetSupplier(context.Background(), db, "s-1")
	require.NoError(t, err)
	require.False(t, supplier.CreditLimit.Valid)
	require.Equal(t, "Parts Co", supplier.DisplayName())
	require.Equal(t, "net_60", supplier.PaymentTerms)
}

func TestPartyStoreListClientsActiveOnly(t *testing.T) {
	q := stubDB{
		selectFn: func(_ context.Context, _ any, query string, args ...any) error {
			if len(args) != 1 || args[0] != true {
				t.Fatalf("unexpected args: %#v", args)
			}
			return nil
		},
	}
	_, err := NewPartyStore(stubDB{}).ListClients(context.Background(), q, true)
	require.NoError(t, err)
}
