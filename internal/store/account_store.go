package store

import (
	"context"

	"accounting/internal/models"
)

type AccountStore struct {
	db DB
}

func NewAccountStore(db DB) *AccountStore {
	return &AccountStore{db: db}
}

const accountColumns = `id, code, name, type, parent_id, description, is_active, is_cash_account, is_bank_account, created_at, updated_at`

func (s *AccountStore) Create(ctx context.Context, tx Execer, account models.Account) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO accounts (id, code, name, type, parent_id, description, is_active, is_cash_account, is_bank_account)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, account.ID, account.Code, account.Name, account.Type, account.ParentID, account.Description,
		account.IsActive, account.IsCashAccount, account.IsBankAccount)
	return err
}

func (s *AccountStore) GetByID(ctx context.Context, accountID string) (models.Account, error) {
	var row models.Account
	err := s.db.GetContext(ctx, &row, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, accountID)
	if err != nil {
		return models.Account{}, notFound(err)
	}
	return row, nil
}

func (s *AccountStore) GetByCode(ctx context.Context, q Getter, code string) (models.Account, error) {
	var row models.Account
	err := q.GetContext(ctx, &row, `SELECT `+accountColumns+` FROM accounts WHERE code = $1`, code)
	if err != nil {
		return models.Account{}, notFound(err)
	}
	return row, nil
}

func (s *AccountStore) GetForUpdate(ctx context.Context, tx Getter, accountID string) (models.Account, error) {
	var row models.Account
	err := tx.GetContext(ctx, &row, `SELECT `+accountColumns+` FROM accounts WHERE id = $1 FOR UPDATE`, accountID)
	if err != nil {
		return models.Account{}, notFound(err)
	}
	return row, nil
}

// List returns the whole chart ordered by code.
func (s *AccountStore) List(ctx context.Context, q Selecter) ([]models.Account, error) {
	var rows []models.Account
	if err := q.SelectContext(ctx, &rows, `SELECT `+accountColumns+` FROM accounts ORDER BY code`); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *AccountStore) Update(ctx context.Context, tx Execer, account models.Account) error {
	return expectOne(tx.ExecContext(ctx, `
		UPDATE accounts
		SET name = $1, type = $2, parent_id = $3, description = $4, is_active = $5,
		    is_cash_account = $6, is_bank_account = $7, updated_at = NOW()
		WHERE id = $8
	`, account.Name, account.Type, account.ParentID, account.Description, account.IsActive,
		account.IsCashAccount, account.IsBankAccount, account.ID))
}

func (s *AccountStore) Delete(ctx context.Context, tx Execer, accountID string) error {
	return expectOne(tx.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, accountID))
}

func (s *AccountStore) CountChildren(ctx context.Context, q Getter, accountID string) (int, error) {
	var n int
	err := q.GetContext(ctx, &n, `SELECT COUNT(*) FROM accounts WHERE parent_id = $1`, accountID)
	return n, err
}
