package store

import (
	"context"

	"accounting/internal/models"
)

// PartyStore holds clients and suppliers.
type PartyStore struct {
	db DB
}

func NewPartyStore(db DB) *PartyStore {
	return &PartyStore{db: db}
}

const (
	clientColumns   = `id, code, name, type, email, credit_limit, is_active, created_at`
	supplierColumns = `id, code, name, company_name, email, payment_terms, credit_limit, is_active, created_at`
)

func (s *PartyStore) CreateClient(ctx context.Context, tx Execer, c models.Client) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO clients (id, code, name, type, email, credit_limit, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, c.ID, c.Code, c.Name, c.Type, c.Email, c.CreditLimit, c.IsActive)
	return err
}

func (s *PartyStore) GetClient(ctx context.Context, clientID string) (models.Client, error) {
	var row models.Client
	if err := s.db.GetContext(ctx, &row, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, clientID); err != nil {
		return models.Client{}, notFound(err)
	}
	return row, nil
}

func (s *PartyStore) ListClients(ctx context.Context, q Selecter, activeOnly bool) ([]models.Client, error) {
	var rows []models.Client
	err := q.SelectContext(ctx, &rows, `
		SELECT `+clientColumns+` FROM clients
		WHERE (NOT $1 OR is_active)
		ORDER BY name, code
	`, activeOnly)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *PartyStore) CreateSupplier(ctx context.Context, tx Execer, sp models.Supplier) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO suppliers (id, code, name, company_name, email, payment_terms, credit_limit, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, sp.ID, sp.Code, sp.Name, sp.CompanyName, sp.Email, sp.PaymentTerms, sp.CreditLimit, sp.IsActive)
	return err
}

func (s *PartyStore) GetSupplier(ctx context.Context, q Getter, supplierID string) (models.Supplier, error) {
	var row models.Supplier
	if err := q.GetContext(ctx, &row, `SELECT `+supplierColumns+` FROM suppliers WHERE id = $1`, supplierID); err != nil {
		return models.Supplier{}, notFound(err)
	}
	return row, nil
}

func (s *PartyStore) ListSuppliers(ctx context.Context, q Selecter, activeOnly bool) ([]models.Supplier, error) {
	var rows []models.Supplier
	err := q.SelectContext(ctx, &rows, `
		SELECT `+supplierColumns+` FROM suppliers
		WHERE (NOT $1 OR is_active)
		ORDER BY name, code
	`, activeOnly)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
