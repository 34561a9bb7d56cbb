package store

import (
	"context"
	"time"

	"accounting/internal/models"
)

// DocumentStore holds the business documents payments settle: invoices,
// purchase orders, expenses and refunds.
type DocumentStore struct {
	db DB
}

func NewDocumentStore(db DB) *DocumentStore {
	return &DocumentStore{db: db}
}

const (
	invoiceColumns = `id, invoice_number, client_id, status, issue_date, due_date, subtotal, tax_amount, total, notes, created_by, created_at`
	poColumns      = `id, po_number, supplier_id, status, payment_status, order_date, expected_date, subtotal, tax_amount, shipping_cost, total, notes, created_by, approved_by, approved_at, created_at`
	expenseColumns = `id, expense_number, vendor_name, account_id, amount, tax_amount, expense_date, description, status, approved_by, journal_entry_id, created_by, created_at`
	refundColumns  = `id, refund_number, invoice_id, status, type, refund_date, subtotal, tax_amount, total, refund_method, reference_number, reason, notes, created_by, approved_by, approved_at, processed_at, created_at`
)

func yearPrefix(kind string, on time.Time) string {
	return kind + "-" + on.Format("2006") + "-"
}

// invoices

func (s *DocumentStore) NextInvoiceNumber(ctx context.Context, q Getter, on time.Time) (string, error) {
	return nextNumber(ctx, q, "invoices", "invoice_number", yearPrefix("INV", on))
}

func (s *DocumentStore) CreateInvoice(ctx context.Context, tx Execer, inv models.Invoice) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO invoices (id, invoice_number, client_id, status, issue_date, due_date, subtotal, tax_amount, total, notes, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, inv.ID, inv.Number, inv.ClientID, inv.Status, dateArg(inv.IssueDate), dateArg(inv.DueDate),
		inv.Subtotal, inv.TaxAmount, inv.Total, inv.Notes, inv.CreatedBy)
	return err
}

func (s *DocumentStore) GetInvoice(ctx context.Context, invoiceID string) (models.Invoice, error) {
	var row models.Invoice
	if err := s.db.GetContext(ctx, &row, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, invoiceID); err != nil {
		return models.Invoice{}, notFound(err)
	}
	return row, nil
}

func (s *DocumentStore) GetInvoiceForUpdate(ctx context.Context, tx Getter, invoiceID string) (models.Invoice, error) {
	var row models.Invoice
	if err := tx.GetContext(ctx, &row, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1 FOR UPDATE`, invoiceID); err != nil {
		return models.Invoice{}, notFound(err)
	}
	return row, nil
}

func (s *DocumentStore) SetInvoiceStatus(ctx context.Context, tx Execer, invoiceID string, status models.InvoiceStatus) error {
	return expectOne(tx.ExecContext(ctx, `UPDATE invoices SET status = $1 WHERE id = $2`, status, invoiceID))
}

// ListOpenInvoices returns sent and overdue invoices issued on or before asOf.
func (s *DocumentStore) ListOpenInvoices(ctx context.Context, q Selecter, asOf time.Time) ([]models.Invoice, error) {
	var rows []models.Invoice
	err := q.SelectContext(ctx, &rows, `
		SELECT `+invoiceColumns+` FROM invoices
		WHERE status IN ('sent', 'overdue') AND issue_date <= $1
		ORDER BY due_date, invoice_number
	`, dateArg(asOf))
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *DocumentStore) ListInvoices(ctx context.Context, status models.InvoiceStatus, limit, offset int) ([]models.Invoice, error) {
	var rows []models.Invoice
	err := s.db.SelectContext(ctx, &rows, `
		SELECT `+invoiceColumns+` FROM invoices
		WHERE ($1 = '' OR status = $1)
		ORDER BY issue_date DESC, invoice_number DESC
		LIMIT $2 OFFSET $3
	`, string(status), limit, offset)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// purchase orders

func (s *DocumentStore) NextPurchaseOrderNumber(ctx context.Context, q Getter, on time.Time) (string, error) {
	return nextNumber(ctx, q, "purchase_orders", "po_number", yearPrefix("PO", on))
}

func (s *DocumentStore) CreatePurchaseOrder(ctx context.Context, tx Execer, po models.PurchaseOrder) error {
	var expected any
	if po.ExpectedDate != nil {
		expected = dateArg(*po.ExpectedDate)
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO purchase_orders (id, po_number, supplier_id, status, payment_status, order_date, expected_date,
		                             subtotal, tax_amount, shipping_cost, total, notes, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, po.ID, po.Number, po.SupplierID, po.Status, po.PaymentStatus, dateArg(po.OrderDate), expected,
		po.Subtotal, po.TaxAmount, po.ShippingCost, po.Total, po.Notes, po.CreatedBy)
	return err
}

func (s *DocumentStore) GetPurchaseOrder(ctx context.Context, poID string) (models.PurchaseOrder, error) {
	var row models.PurchaseOrder
	if err := s.db.GetContext(ctx, &row, `SELECT `+poColumns+` FROM purchase_orders WHERE id = $1`, poID); err != nil {
		return models.PurchaseOrder{}, notFound(err)
	}
	return row, nil
}

func (s *DocumentStore) GetPurchaseOrderForUpdate(ctx context.Context, tx Getter, poID string) (models.PurchaseOrder, error) {
	var row models.PurchaseOrder
	if err := tx.GetContext(ctx, &row, `SELECT `+poColumns+` FROM purchase_orders WHERE id = $1 FOR UPDATE`, poID); err != nil {
		return models.PurchaseOrder{}, notFound(err)
	}
	return row, nil
}

func (s *DocumentStore) SetPurchaseOrderStatus(ctx context.Context, tx Execer, poID string, status models.PurchaseOrderStatus) error {
	return expectOne(tx.ExecContext(ctx, `UPDATE purchase_orders SET status = $1 WHERE id = $2`, status, poID))
}

func (s *DocumentStore) ApprovePurchaseOrder(ctx context.Context, tx Execer, poID, approverID string, at time.Time) error {
	return expectOne(tx.ExecContext(ctx, `
		UPDATE purchase_orders SET status = 'approved', approved_by = $1, approved_at = $2 WHERE id = $3
	`, approverID, at, poID))
}

func (s *DocumentStore) SetPurchaseOrderPaymentStatus(ctx context.Context, tx Execer, poID string, state models.PaymentState) error {
	return expectOne(tx.ExecContext(ctx, `UPDATE purchase_orders SET payment_status = $1 WHERE id = $2`, state, poID))
}

// ListPayablePurchaseOrders returns approved, received and partially received
// orders placed on or before asOf.
func (s *DocumentStore) ListPayablePurchaseOrders(ctx context.Context, q Selecter, asOf time.Time) ([]models.PurchaseOrder, error) {
	var rows []models.PurchaseOrder
	err := q.SelectContext(ctx, &rows, `
		SELECT `+poColumns+` FROM purchase_orders
		WHERE status IN ('approved', 'received', 'partial') AND order_date <= $1
		ORDER BY order_date, po_number
	`, dateArg(asOf))
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// expenses

func (s *DocumentStore) NextExpenseNumber(ctx context.Context, q Getter, on time.Time) (string, error) {
	return nextNumber(ctx, q, "expenses", "expense_number", yearPrefix("EXP", on))
}

func (s *DocumentStore) CreateExpense(ctx context.Context, tx Execer, e models.Expense) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO expenses (id, expense_number, vendor_name, account_id, amount, tax_amount, expense_date, description, status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, e.ID, e.Number, e.VendorName, e.AccountID, e.Amount, e.TaxAmount, dateArg(e.ExpenseDate), e.Description, e.Status, e.CreatedBy)
	return err
}

func (s *DocumentStore) GetExpense(ctx context.Context, expenseID string) (models.Expense, error) {
	var row models.Expense
	if err := s.db.GetContext(ctx, &row, `SELECT `+expenseColumns+` FROM expenses WHERE id = $1`, expenseID); err != nil {
		return models.Expense{}, notFound(err)
	}
	return row, nil
}

func (s *DocumentStore) GetExpenseForUpdate(ctx context.Context, tx Getter, expenseID string) (models.Expense, error) {
	var row models.Expense
	if err := tx.GetContext(ctx, &row, `SELECT `+expenseColumns+` FROM expenses WHERE id = $1 FOR UPDATE`, expenseID); err != nil {
		return models.Expense{}, notFound(err)
	}
	return row, nil
}

func (s *DocumentStore) SetExpenseStatus(ctx context.Context, tx Execer, expenseID string, status models.ExpenseStatus) error {
	return expectOne(tx.ExecContext(ctx, `UPDATE expenses SET status = $1 WHERE id = $2`, status, expenseID))
}

func (s *DocumentStore) ApproveExpense(ctx context.Context, tx Execer, expenseID, approverID string) error {
	return expectOne(tx.ExecContext(ctx, `
		UPDATE expenses SET status = 'approved', approved_by = $1 WHERE id = $2
	`, approverID, expenseID))
}

func (s *DocumentStore) MarkExpensePaid(ctx context.Context, tx Execer, expenseID, entryID string) error {
	return expectOne(tx.ExecContext(ctx, `
		UPDATE expenses SET status = 'paid', journal_entry_id = $1 WHERE id = $2
	`, entryID, expenseID))
}

// ListOpenExpenses returns pending and approved expenses dated on or before asOf.
func (s *DocumentStore) ListOpenExpenses(ctx context.Context, q Selecter, asOf time.Time) ([]models.Expense, error) {
	var rows []models.Expense
	err := q.SelectContext(ctx, &rows, `
		SELECT `+expenseColumns+` FROM expenses
		WHERE status IN ('pending', 'approved') AND expense_date <= $1
		ORDER BY expense_date, expense_number
	`, dateArg(asOf))
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// refunds

func (s *DocumentStore) NextRefundNumber(ctx context.Context, q Getter, on time.Time) (string, error) {
	return nextNumber(ctx, q, "refunds", "refund_number", yearPrefix("RFD", on))
}

func (s *DocumentStore) CreateRefund(ctx context.Context, tx Execer, r models.Refund) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO refunds (id, refund_number, invoice_id, status, type, refund_date, subtotal, tax_amount, total,
		                     refund_method, reference_number, reason, notes, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, r.ID, r.Number, r.InvoiceID, r.Status, r.Type, dateArg(r.RefundDate), r.Subtotal, r.TaxAmount, r.Total,
		r.RefundMethod, r.ReferenceNumber, r.Reason, r.Notes, r.CreatedBy)
	return err
}

func (s *DocumentStore) GetRefund(ctx context.Context, refundID string) (models.Refund, error) {
	var row models.Refund
	if err := s.db.GetContext(ctx, &row, `SELECT `+refundColumns+` FROM refunds WHERE id = $1`, refundID); err != nil {
		return models.Refund{}, notFound(err)
	}
	return row, nil
}

func (s *DocumentStore) GetRefundForUpdate(ctx context.Context, tx Getter, refundID string) (models.Refund, error) {
	var row models.Refund
	if err := tx.GetContext(ctx, &row, `SELECT `+refundColumns+` FROM refunds WHERE id = $1 FOR UPDATE`, refundID); err != nil {
		return models.Refund{}, notFound(err)
	}
	return row, nil
}

// UpdateRefund writes the workflow fields back after a status transition.
func (s *DocumentStore) UpdateRefund(ctx context.Context, tx Execer, r models.Refund) error {
	return expectOne(tx.ExecContext(ctx, `
		UPDATE refunds
		SET status = $1, notes = $2, approved_by = $3, approved_at = $4, processed_at = $5
		WHERE id = $6
	`, r.Status, r.Notes, r.ApprovedBy, r.ApprovedAt, r.ProcessedAt, r.ID))
}
