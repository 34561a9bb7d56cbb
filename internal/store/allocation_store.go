package store

import (
	"context"

	"github.com/shopspring/decimal"

	"accounting/internal/models"
)

// AllocationStore keeps the invoice_payments and supplier_payments junctions.
type AllocationStore struct {
	db DB
}

func NewAllocationStore(db DB) *AllocationStore {
	return &AllocationStore{db: db}
}

const (
	invoiceAllocationColumns  = `id, invoice_id, payment_id, amount_allocated, allocation_date, notes, created_at`
	supplierAllocationColumns = `id, supplier_id, payment_id, purchase_order_id, expense_id, amount_allocated, allocation_date, notes, created_at`
)

func (s *AllocationStore) CreateInvoiceAllocation(ctx context.Context, tx Execer, a models.InvoiceAllocation) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO invoice_payments (id, invoice_id, payment_id, amount_allocated, allocation_date, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, a.ID, a.InvoiceID, a.PaymentID, a.AmountAllocated, dateArg(a.AllocationDate), a.Notes)
	return err
}

func (s *AllocationStore) CreateSupplierAllocation(ctx context.Context, tx Execer, a models.SupplierAllocation) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO supplier_payments (id, supplier_id, payment_id, purchase_order_id, expense_id, amount_allocated, allocation_date, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, a.ID, a.SupplierID, a.PaymentID, a.PurchaseOrderID, a.ExpenseID, a.AmountAllocated, dateArg(a.AllocationDate), a.Notes)
	return err
}

func (s *AllocationStore) GetInvoiceAllocationForUpdate(ctx context.Context, tx Getter, id string) (models.InvoiceAllocation, error) {
	var row models.InvoiceAllocation
	if err := tx.GetContext(ctx, &row, `SELECT `+invoiceAllocationColumns+` FROM invoice_payments WHERE id = $1 FOR UPDATE`, id); err != nil {
		return models.InvoiceAllocation{}, notFound(err)
	}
	return row, nil
}

func (s *AllocationStore) GetSupplierAllocationForUpdate(ctx context.Context, tx Getter, id string) (models.SupplierAllocation, error) {
	var row models.SupplierAllocation
	if err := tx.GetContext(ctx, &row, `SELECT `+supplierAllocationColumns+` FROM supplier_payments WHERE id = $1 FOR UPDATE`, id); err != nil {
		return models.SupplierAllocation{}, notFound(err)
	}
	return row, nil
}

func (s *AllocationStore) DeleteInvoiceAllocation(ctx context.Context, tx Execer, id string) error {
	return expectOne(tx.ExecContext(ctx, `DELETE FROM invoice_payments WHERE id = $1`, id))
}

func (s *AllocationStore) DeleteSupplierAllocation(ctx context.Context, tx Execer, id string) error {
	return expectOne(tx.ExecContext(ctx, `DELETE FROM supplier_payments WHERE id = $1`, id))
}

func (s *AllocationStore) SumForInvoice(ctx context.Context, q Getter, invoiceID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := q.GetContext(ctx, &total, `
		SELECT COALESCE(SUM(amount_allocated), 0) FROM invoice_payments WHERE invoice_id = $1
	`, invoiceID)
	return total, err
}

func (s *AllocationStore) SumForPurchaseOrder(ctx context.Context, q Getter, poID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := q.GetContext(ctx, &total, `
		SELECT COALESCE(SUM(amount_allocated), 0) FROM supplier_payments WHERE purchase_order_id = $1
	`, poID)
	return total, err
}

func (s *AllocationStore) SumForExpense(ctx context.Context, q Getter, expenseID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := q.GetContext(ctx, &total, `
		SELECT COALESCE(SUM(amount_allocated), 0) FROM supplier_payments WHERE expense_id = $1
	`, expenseID)
	return total, err
}

func (s *AllocationStore) ListByPayment(ctx context.Context, paymentID string) ([]models.InvoiceAllocation, []models.SupplierAllocation, error) {
	var invoices []models.InvoiceAllocation
	if err := s.db.SelectContext(ctx, &invoices, `
		SELECT `+invoiceAllocationColumns+` FROM invoice_payments WHERE payment_id = $1 ORDER BY created_at
	`, paymentID); err != nil {
		return nil, nil, err
	}
	var suppliers []models.SupplierAllocation
	if err := s.db.SelectContext(ctx, &suppliers, `
		SELECT `+supplierAllocationColumns+` FROM supplier_payments WHERE payment_id = $1 ORDER BY created_at
	`, paymentID); err != nil {
		return nil, nil, err
	}
	return invoices, suppliers, nil
}

// AllocatedByInvoice returns allocation totals keyed by invoice id, for aging.
func (s *AllocationStore) AllocatedByInvoice(ctx context.Context, q Selecter) (map[string]decimal.Decimal, error) {
	return sumsBy(ctx, q, `
		SELECT invoice_id AS target_id, SUM(amount_allocated) AS total
		FROM invoice_payments GROUP BY invoice_id
	`)
}

func (s *AllocationStore) AllocatedByPurchaseOrder(ctx context.Context, q Selecter) (map[string]decimal.Decimal, error) {
	return sumsBy(ctx, q, `
		SELECT purchase_order_id AS target_id, SUM(amount_allocated) AS total
		FROM supplier_payments WHERE purchase_order_id IS NOT NULL GROUP BY purchase_order_id
	`)
}

func (s *AllocationStore) AllocatedByExpense(ctx context.Context, q Selecter) (map[string]decimal.Decimal, error) {
	return sumsBy(ctx, q, `
		SELECT expense_id AS target_id, SUM(amount_allocated) AS total
		FROM supplier_payments WHERE expense_id IS NOT NULL GROUP BY expense_id
	`)
}

type allocationSum struct {
	TargetID string          `db:"target_id"`
	Total    decimal.Decimal `db:"total"`
}

func sumsBy(ctx context.Context, q Selecter, query string) (map[string]decimal.Decimal, error) {
	var rows []allocationSum
	if err := q.SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}
	out := make(map[string]decimal.Decimal, len(rows))
	for _, row := range rows {
		out[row.TargetID] = row.Total
	}
	return out, nil
}
