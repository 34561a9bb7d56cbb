package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"accounting/internal/models"
	"accounting/internal/money"
	"accounting/internal/store"
)

// Codes of the system accounts an expense payment posts to.
const (
	TaxExpenseAccountCode = "TAX-EXP"
	CashAccountCode       = "CASH"
)

const entityRefund = "refund"

// expenses

type ExpenseInput struct {
	VendorName  string
	AccountID   string
	Amount      decimal.Decimal
	TaxAmount   decimal.Decimal
	ExpenseDate time.Time
	Description string
}

func (s *DocumentService) CreateExpense(ctx context.Context, actorID string, in ExpenseInput) (models.Expense, error) {
	if strings.TrimSpace(in.VendorName) == "" {
		return models.Expense{}, invalidArg("vendor_name", "is required")
	}
	if in.AccountID == "" {
		return models.Expense{}, invalidArg("account_id", "is required")
	}
	if !in.Amount.IsPositive() {
		return models.Expense{}, invalidArg("amount", "must be greater than zero")
	}
	if err := nonNegative("tax_amount", in.TaxAmount); err != nil {
		return models.Expense{}, err
	}
	date := in.ExpenseDate
	if date.IsZero() {
		date = s.now()
	}
	expense := models.Expense{
		ID:          newID(),
		VendorName:  strings.TrimSpace(in.VendorName),
		AccountID:   in.AccountID,
		Amount:      money.Round(in.Amount),
		TaxAmount:   money.Round(in.TaxAmount),
		ExpenseDate: models.DateOf(date),
		Description: in.Description,
		Status:      models.ExpensePending,
		CreatedBy:   actorID,
	}
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		account, err := s.accounts.GetForUpdate(ctx, tx, in.AccountID)
		if err != nil {
			return lookup(err, entityAccount, in.AccountID)
		}
		if account.Type != models.AccountExpense {
			return invalidArg("account_id", "must be an expense account")
		}
		number, err := s.documents.NextExpenseNumber(ctx, tx, expense.ExpenseDate)
		if err != nil {
			return err
		}
		expense.Number = number
		if err := s.documents.CreateExpense(ctx, tx, expense); err != nil {
			return err
		}
		return s.audit.Log(ctx, tx, actorID, "expense.created", string(models.PayableExpense), expense.ID, map[string]string{
			"expense_number": expense.Number,
			"total":          money.Format(expense.TotalAmount()),
		})
	})
	if err != nil {
		return models.Expense{}, err
	}
	return expense, nil
}

func (s *DocumentService) lockExpense(ctx context.Context, tx *sqlx.Tx, expenseID string, want models.ExpenseStatus, action string) (models.Expense, error) {
	expense, err := s.documents.GetExpenseForUpdate(ctx, tx, expenseID)
	if err != nil {
		return models.Expense{}, lookup(err, string(models.PayableExpense), expenseID)
	}
	if expense.Status != want {
		return models.Expense{}, preconditionf("expense %s is %s; only %s expenses can be %s", expense.Number, expense.Status, want, action)
	}
	return expense, nil
}

func (s *DocumentService) ApproveExpense(ctx context.Context, actorID, expenseID string) (models.Expense, error) {
	var expense models.Expense
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		expense, err = s.lockExpense(ctx, tx, expenseID, models.ExpensePending, "approved")
		if err != nil {
			return err
		}
		if err := s.documents.ApproveExpense(ctx, tx, expenseID, actorID); err != nil {
			return err
		}
		expense.Status = models.ExpenseApproved
		expense.ApprovedBy = &actorID
		return s.audit.Log(ctx, tx, actorID, "expense.approved", string(models.PayableExpense), expenseID, nil)
	})
	if err != nil {
		return models.Expense{}, err
	}
	s.statusChanged(models.ExpenseRef(expenseID), string(expense.Status))
	return expense, nil
}

func (s *DocumentService) RejectExpense(ctx context.Context, actorID, expenseID string) (models.Expense, error) {
	var expense models.Expense
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		expense, err = s.lockExpense(ctx, tx, expenseID, models.ExpensePending, "rejected")
		if err != nil {
			return err
		}
		if err := s.documents.SetExpenseStatus(ctx, tx, expenseID, models.ExpenseRejected); err != nil {
			return err
		}
		expense.Status = models.ExpenseRejected
		return s.audit.Log(ctx, tx, actorID, "expense.rejected", string(models.PayableExpense), expenseID, nil)
	})
	if err != nil {
		return models.Expense{}, err
	}
	s.statusChanged(models.ExpenseRef(expenseID), string(expense.Status))
	return expense, nil
}

// MarkExpensePaid settles an approved expense from cash. It posts an entry on
// the expense date debiting the expense account and TAX-EXP and crediting CASH.
func (s *DocumentService) MarkExpensePaid(ctx context.Context, actorID, expenseID string) (models.Expense, models.JournalEntry, error) {
	var (
		expense models.Expense
		entry   models.JournalEntry
	)
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		expense, err = s.lockExpense(ctx, tx, expenseID, models.ExpenseApproved, "paid")
		if err != nil {
			return err
		}
		cash, err := s.systemAccount(ctx, tx, CashAccountCode)
		if err != nil {
			return err
		}
		lines := []models.JournalLine{{
			AccountID:   expense.AccountID,
			Debit:       expense.Amount,
			Credit:      decimal.Zero,
			Description: expense.Description,
		}}
		if expense.TaxAmount.IsPositive() {
			tax, err := s.systemAccount(ctx, tx, TaxExpenseAccountCode)
			if err != nil {
				return err
			}
			lines = append(lines, models.JournalLine{
				AccountID:   tax.ID,
				Debit:       expense.TaxAmount,
				Credit:      decimal.Zero,
				Description: "Tax on " + expense.Number,
			})
		}
		lines = append(lines, models.JournalLine{
			AccountID:   cash.ID,
			Debit:       decimal.Zero,
			Credit:      expense.TotalAmount(),
			Description: "Payment to " + expense.VendorName,
		})
		referenceType := models.ReferenceExpense
		category := models.CashFlowOperating
		entry, _, err = s.writer.post(ctx, tx, models.JournalEntry{
			EntryDate:        expense.ExpenseDate,
			Description:      "Expense " + expense.Number + " - " + expense.VendorName,
			ReferenceType:    &referenceType,
			ReferenceID:      &expense.ID,
			CashFlowCategory: &category,
			AffectsCash:      true,
			CreatedBy:        actorID,
		}, lines)
		if err != nil {
			return err
		}
		if err := s.documents.MarkExpensePaid(ctx, tx, expenseID, entry.ID); err != nil {
			return err
		}
		expense.Status = models.ExpensePaid
		expense.JournalEntryID = &entry.ID
		return s.audit.Log(ctx, tx, actorID, "expense.paid", string(models.PayableExpense), expenseID, map[string]string{
			"journal_entry_id": entry.ID,
			"total":            money.Format(expense.TotalAmount()),
		})
	})
	if err != nil {
		return models.Expense{}, models.JournalEntry{}, err
	}
	s.statusChanged(models.ExpenseRef(expenseID), string(expense.Status))
	return expense, entry, nil
}

func (s *DocumentService) systemAccount(ctx context.Context, tx *sqlx.Tx, code string) (models.Account, error) {
	account, err := s.accounts.GetByCode(ctx, tx, code)
	if errors.Is(err, store.ErrNotFound) {
		return models.Account{}, preconditionf("system account %s is not configured", code)
	}
	return account, err
}

func (s *DocumentService) GetExpense(ctx context.Context, expenseID string) (models.Expense, error) {
	expense, err := s.documents.GetExpense(ctx, expenseID)
	if err != nil {
		return models.Expense{}, lookup(err, string(models.PayableExpense), expenseID)
	}
	return expense, nil
}

// refunds

type RefundInput struct {
	InvoiceID       string
	Type            string
	RefundDate      time.Time
	Subtotal        decimal.Decimal
	TaxAmount       decimal.Decimal
	RefundMethod    *models.PaymentMethod
	ReferenceNumber *string
	Reason          string
	Notes           string
}

func (s *DocumentService) CreateRefund(ctx context.Context, actorID string, in RefundInput) (models.Refund, error) {
	if in.InvoiceID == "" {
		return models.Refund{}, invalidArg("invoice_id", "is required")
	}
	if strings.TrimSpace(in.Reason) == "" {
		return models.Refund{}, invalidArg("reason", "is required")
	}
	if err := nonNegative("subtotal", in.Subtotal); err != nil {
		return models.Refund{}, err
	}
	if err := nonNegative("tax_amount", in.TaxAmount); err != nil {
		return models.Refund{}, err
	}
	total := money.Round(in.Subtotal.Add(in.TaxAmount))
	if !total.IsPositive() {
		return models.Refund{}, invalidArg("total", "must be greater than zero")
	}
	if in.RefundMethod != nil && !in.RefundMethod.IsValid() {
		return models.Refund{}, invalidArg("refund_method", "unknown payment method")
	}
	refundType := in.Type
	if refundType == "" {
		refundType = "partial"
	}
	date := in.RefundDate
	if date.IsZero() {
		date = s.now()
	}
	refund := models.Refund{
		ID:              newID(),
		InvoiceID:       in.InvoiceID,
		Status:          models.RefundPending,
		Type:            refundType,
		RefundDate:      models.DateOf(date),
		Subtotal:        money.Round(in.Subtotal),
		TaxAmount:       money.Round(in.TaxAmount),
		Total:           total,
		RefundMethod:    in.RefundMethod,
		ReferenceNumber: in.ReferenceNumber,
		Reason:          strings.TrimSpace(in.Reason),
		Notes:           in.Notes,
		CreatedBy:       actorID,
	}
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		invoice, err := s.documents.GetInvoiceForUpdate(ctx, tx, in.InvoiceID)
		if err != nil {
			return lookup(err, string(models.PayableInvoice), in.InvoiceID)
		}
		if invoice.Status == models.InvoiceDraft || invoice.Status == models.InvoiceCancelled {
			return preconditionf("invoice %s is %s and cannot be refunded", invoice.Number, invoice.Status)
		}
		if total.GreaterThan(invoice.Total) {
			return invalidArg("total", "exceeds the invoice total")
		}
		number, err := s.documents.NextRefundNumber(ctx, tx, refund.RefundDate)
		if err != nil {
			return err
		}
		refund.Number = number
		if err := s.documents.CreateRefund(ctx, tx, refund); err != nil {
			return err
		}
		return s.audit.Log(ctx, tx, actorID, "refund.created", entityRefund, refund.ID, map[string]string{
			"refund_number": refund.Number,
			"invoice_id":    refund.InvoiceID,
			"total":         money.Format(refund.Total),
		})
	})
	if err != nil {
		return models.Refund{}, err
	}
	return refund, nil
}

// updateRefund locks a refund, checks its status with allowed and lets apply
// mutate it before it is written back.
func (s *DocumentService) updateRefund(ctx context.Context, actorID, refundID, action string, allowed func(models.RefundStatus) bool, apply func(tx *sqlx.Tx, r *models.Refund) error) (models.Refund, error) {
	var refund models.Refund
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		refund, err = s.documents.GetRefundForUpdate(ctx, tx, refundID)
		if err != nil {
			return lookup(err, entityRefund, refundID)
		}
		if !allowed(refund.Status) {
			return preconditionf("refund %s is %s and cannot be %s", refund.Number, refund.Status, action)
		}
		if err := apply(tx, &refund); err != nil {
			return err
		}
		if err := s.documents.UpdateRefund(ctx, tx, refund); err != nil {
			return err
		}
		return s.audit.Log(ctx, tx, actorID, "refund."+action, entityRefund, refundID, map[string]string{"status": string(refund.Status)})
	})
	if err != nil {
		return models.Refund{}, err
	}
	s.statusChanged(models.RefundRef(refundID), string(refund.Status))
	return refund, nil
}

func (s *DocumentService) ApproveRefund(ctx context.Context, actorID, refundID string) (models.Refund, error) {
	return s.updateRefund(ctx, actorID, refundID, "approved",
		func(st models.RefundStatus) bool { return st == models.RefundPending },
		func(_ *sqlx.Tx, r *models.Refund) error {
			at := s.now()
			r.Status = models.RefundApproved
			r.ApprovedBy = &actorID
			r.ApprovedAt = &at
			return nil
		})
}

// ProcessRefund pays out an approved refund by recording a refund payment
// for its total.
func (s *DocumentService) ProcessRefund(ctx context.Context, actorID, refundID string) (models.Refund, error) {
	return s.updateRefund(ctx, actorID, refundID, "processed",
		func(st models.RefundStatus) bool { return st == models.RefundApproved },
		func(tx *sqlx.Tx, r *models.Refund) error {
			at := s.now()
			method := models.MethodOther
			if r.RefundMethod != nil {
				method = *r.RefundMethod
			}
			details := "Refund for " + r.Reason
			payment := models.Payment{
				ID:              newID(),
				Number:          "REF-" + r.Number,
				Type:            models.PaymentRefund,
				PayableKind:     models.PayableRefund,
				PayableID:       r.ID,
				Method:          method,
				Amount:          r.Total,
				PaymentDate:     models.DateOf(at),
				ReferenceNumber: r.ReferenceNumber,
				Details:         &details,
				Notes:           "Refund payment for " + r.Number,
				Status:          models.PaymentRecorded,
				ProcessedBy:     actorID,
			}
			if err := s.payments.Create(ctx, tx, payment); err != nil {
				return err
			}
			r.Status = models.RefundProcessed
			r.ProcessedAt = &at
			return nil
		})
}

func (s *DocumentService) RejectRefund(ctx context.Context, actorID, refundID, reason string) (models.Refund, error) {
	return s.updateRefund(ctx, actorID, refundID, "rejected",
		func(st models.RefundStatus) bool { return st == models.RefundPending || st == models.RefundApproved },
		func(_ *sqlx.Tx, r *models.Refund) error {
			r.Status = models.RefundRejected
			if reason = strings.TrimSpace(reason); reason != "" {
				r.Notes += " | Rejection reason: " + reason
			}
			return nil
		})
}

func (s *DocumentService) CancelRefund(ctx context.Context, actorID, refundID string) (models.Refund, error) {
	return s.updateRefund(ctx, actorID, refundID, "cancelled",
		func(st models.RefundStatus) bool { return st == models.RefundPending || st == models.RefundApproved },
		func(_ *sqlx.Tx, r *models.Refund) error {
			r.Status = models.RefundCancelled
			return nil
		})
}

func (s *DocumentService) GetRefund(ctx context.Context, refundID string) (models.Refund, error) {
	refund, err := s.documents.GetRefund(ctx, refundID)
	if err != nil {
		return models.Refund{}, lookup(err, entityRefund, refundID)
	}
	return refund, nil
}
