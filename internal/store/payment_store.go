package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"accounting/internal/models"
)

type PaymentStore struct {
	db DB
}

func NewPaymentStore(db DB) *PaymentStore {
	return &PaymentStore{db: db}
}

const paymentColumns = `id, payment_number, type, payable_kind, payable_id, method, amount, payment_date, reference_number, payment_details, notes, status, processed_by, created_at`

func (s *PaymentStore) NextNumber(ctx context.Context, q Getter, paymentType models.PaymentType, on time.Time) (string, error) {
	return nextNumber(ctx, q, "payments", "payment_number", paymentType.NumberPrefix()+"-"+on.Format("20060102")+"-")
}

func (s *PaymentStore) Create(ctx context.Context, tx Execer, p models.Payment) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO payments (id, payment_number, type, payable_kind, payable_id, method, amount, payment_date,
		                      reference_number, payment_details, notes, status, processed_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, p.ID, p.Number, p.Type, p.PayableKind, p.PayableID, p.Method, p.Amount, dateArg(p.PaymentDate),
		p.ReferenceNumber, p.Details, p.Notes, p.Status, p.ProcessedBy)
	return err
}

func (s *PaymentStore) GetByID(ctx context.Context, paymentID string) (models.Payment, error) {
	var row models.Payment
	if err := s.db.GetContext(ctx, &row, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, paymentID); err != nil {
		return models.Payment{}, notFound(err)
	}
	return row, nil
}

func (s *PaymentStore) GetForUpdate(ctx context.Context, tx Getter, paymentID string) (models.Payment, error) {
	var row models.Payment
	if err := tx.GetContext(ctx, &row, `SELECT `+paymentColumns+` FROM payments WHERE id = $1 FOR UPDATE`, paymentID); err != nil {
		return models.Payment{}, notFound(err)
	}
	return row, nil
}

func (s *PaymentStore) Finalize(ctx context.Context, tx Execer, paymentID string) error {
	return expectOne(tx.ExecContext(ctx, `
		UPDATE payments SET status = 'finalized' WHERE id = $1 AND status = 'recorded'
	`, paymentID))
}

// AllocatedTotal sums what a payment has already been split into across
// invoices and supplier documents.
func (s *PaymentStore) AllocatedTotal(ctx context.Context, q Getter, paymentID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := q.GetContext(ctx, &total, `
		SELECT COALESCE((SELECT SUM(amount_allocated) FROM invoice_payments WHERE payment_id = $1), 0)
		     + COALESCE((SELECT SUM(amount_allocated) FROM supplier_payments WHERE payment_id = $1), 0)
	`, paymentID)
	return total, err
}

type PaymentFilter struct {
	PayableKind models.PayableKind
	PayableID   string
	Limit       int
	Offset      int
}

func (s *PaymentStore) List(ctx context.Context, filter PaymentFilter) ([]models.Payment, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	var rows []models.Payment
	err := s.db.SelectContext(ctx, &rows, `
		SELECT `+paymentColumns+` FROM payments
		WHERE ($1 = '' OR payable_kind = $1) AND ($2 = '' OR payable_id = $2)
		ORDER BY payment_date DESC, created_at DESC
		LIMIT $3 OFFSET $4
	`, string(filter.PayableKind), filter.PayableID, limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
