package services

import (
	"context"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"accounting/internal/db"
	"accounting/internal/models"
	"accounting/internal/money"
	"accounting/internal/store"
	"accounting/internal/websocket"
)

const (
	entityPayment            = "payment"
	entityInvoiceAllocation  = "invoice_payment"
	entitySupplierAllocation = "supplier_payment"

	defaultReversalReason = "Manual reversal"
)

// PaymentService records payments and applies them to invoices, purchase
// orders and expenses. An allocation never exceeds what is left on either the
// payment or the payable; larger requests are reduced, not refused.
type PaymentService struct {
	txRunner    db.TxRunner
	payments    PaymentStore
	allocations AllocationStore
	documents   DocumentStore
	parties     PartyStore
	audit       AuditStore
	events      EventPublisher
	log         *zap.Logger
	now         Clock
}

func NewPaymentService(txRunner db.TxRunner, payments PaymentStore, allocations AllocationStore, documents DocumentStore, parties PartyStore, audit AuditStore, events EventPublisher, log *zap.Logger, now Clock) *PaymentService {
	if log == nil {
		log = zap.NewNop()
	}
	return &PaymentService{
		txRunner:    txRunner,
		payments:    payments,
		allocations: allocations,
		documents:   documents,
		parties:     parties,
		audit:       audit,
		events:      publisherOrNop(events),
		log:         log,
		now:         clockOrSystem(now),
	}
}

type PaymentInput struct {
	Type            models.PaymentType
	Payable         models.PayableRef
	Method          models.PaymentMethod
	Amount          decimal.Decimal
	PaymentDate     time.Time
	ReferenceNumber *string
	Details         *string
	Notes           string
}

type PaymentSummary struct {
	models.Payment
	AllocatedAmount     money.Amount                `json:"allocated_amount"`
	RemainingAmount     money.Amount                `json:"remaining_amount"`
	InvoiceAllocations  []models.InvoiceAllocation  `json:"invoice_allocations"`
	SupplierAllocations []models.SupplierAllocation `json:"supplier_allocations"`
}

type AllocationInput struct {
	PaymentID string
	Amount    decimal.Decimal
	Date      *time.Time
	Notes     string
}

// SupplierAllocationInput targets exactly one of a purchase order or an
// expense. SupplierID is taken from the purchase order when unset.
type SupplierAllocationInput struct {
	AllocationInput
	SupplierID      string
	PurchaseOrderID *string
	ExpenseID       *string
}

func (s *PaymentService) RecordPayment(ctx context.Context, actorID string, in PaymentInput) (models.Payment, error) {
	if !in.Type.IsValid() {
		return models.Payment{}, invalidArg("type", "unknown payment type")
	}
	if !in.Method.IsValid() {
		return models.Payment{}, invalidArg("method", "unknown payment method")
	}
	if !in.Amount.IsPositive() {
		return models.Payment{}, invalidArg("amount", "must be greater than zero")
	}
	if err := in.Payable.Validate(); err != nil {
		return models.Payment{}, invalidArg("payable", err.Error())
	}
	paymentDate := in.PaymentDate
	if paymentDate.IsZero() {
		paymentDate = s.now()
	}
	payment := models.Payment{
		ID:              newID(),
		Type:            in.Type,
		PayableKind:     in.Payable.Kind,
		PayableID:       in.Payable.ID,
		Method:          in.Method,
		Amount:          money.Round(in.Amount),
		PaymentDate:     models.DateOf(paymentDate),
		ReferenceNumber: in.ReferenceNumber,
		Details:         in.Details,
		Notes:           in.Notes,
		Status:          models.PaymentRecorded,
		ProcessedBy:     actorID,
	}
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.requirePayable(ctx, tx, in.Payable); err != nil {
			return err
		}
		number, err := s.payments.NextNumber(ctx, tx, payment.Type, payment.PaymentDate)
		if err != nil {
			return err
		}
		payment.Number = number
		if err := s.payments.Create(ctx, tx, payment); err != nil {
			return err
		}
		return s.audit.Log(ctx, tx, actorID, "payment.recorded", entityPayment, payment.ID, map[string]string{
			"payment_number": payment.Number,
			"payable":        in.Payable.String(),
			"amount":         money.Format(payment.Amount),
		})
	})
	if err != nil {
		return models.Payment{}, err
	}
	s.log.Info("payment recorded", zap.String("payment_id", payment.ID), zap.String("payment_number", payment.Number), zap.String("payable", in.Payable.String()))
	return payment, nil
}

func (s *PaymentService) requirePayable(ctx context.Context, tx *sqlx.Tx, ref models.PayableRef) error {
	var err error
	switch ref.Kind {
	case models.PayableInvoice:
		_, err = s.documents.GetInvoiceForUpdate(ctx, tx, ref.ID)
	case models.PayablePurchaseOrder:
		_, err = s.documents.GetPurchaseOrderForUpdate(ctx, tx, ref.ID)
	case models.PayableExpense:
		_, err = s.documents.GetExpenseForUpdate(ctx, tx, ref.ID)
	case models.PayableRefund:
		_, err = s.documents.GetRefundForUpdate(ctx, tx, ref.ID)
	}
	return lookup(err, string(ref.Kind), ref.ID)
}

// Finalize locks a payment's allocations against reversal.
func (s *PaymentService) Finalize(ctx context.Context, actorID, paymentID string) (models.Payment, error) {
	var payment models.Payment
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		payment, err = s.payments.GetForUpdate(ctx, tx, paymentID)
		if err != nil {
			return lookup(err, entityPayment, paymentID)
		}
		if payment.IsFinalized() {
			return preconditionf("payment %s is already finalized", payment.Number)
		}
		if err := s.payments.Finalize(ctx, tx, paymentID); err != nil {
			return err
		}
		payment.Status = models.PaymentFinalized
		return s.audit.Log(ctx, tx, actorID, "payment.finalized", entityPayment, paymentID, nil)
	})
	if err != nil {
		return models.Payment{}, err
	}
	s.log.Info("payment finalized", zap.String("payment_id", paymentID))
	s.events.Publish(websocket.Event{Type: websocket.EventPaymentFinalized, EntityType: entityPayment, EntityID: paymentID, Status: string(payment.Status)})
	return payment, nil
}

func (s *PaymentService) Summary(ctx context.Context, paymentID string) (PaymentSummary, error) {
	payment, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		return PaymentSummary{}, lookup(err, entityPayment, paymentID)
	}
	invoiceAllocations, supplierAllocations, err := s.allocations.ListByPayment(ctx, paymentID)
	if err != nil {
		return PaymentSummary{}, err
	}
	allocated := decimal.Zero
	for _, a := range invoiceAllocations {
		allocated = allocated.Add(a.AmountAllocated)
	}
	for _, a := range supplierAllocations {
		allocated = allocated.Add(a.AmountAllocated)
	}
	if invoiceAllocations == nil {
		invoiceAllocations = []models.InvoiceAllocation{}
	}
	if supplierAllocations == nil {
		supplierAllocations = []models.SupplierAllocation{}
	}
	return PaymentSummary{
		Payment:             payment,
		AllocatedAmount:     money.A(allocated),
		RemainingAmount:     money.A(money.NonNegative(payment.Amount.Sub(allocated))),
		InvoiceAllocations:  invoiceAllocations,
		SupplierAllocations: supplierAllocations,
	}, nil
}

func (s *PaymentService) List(ctx context.Context, filter store.PaymentFilter) ([]models.Payment, error) {
	return s.payments.List(ctx, filter)
}

// lockPayment returns the payment and what is still unallocated on it.
// Finalized payments still take allocations; only reversal is blocked.
func (s *PaymentService) lockPayment(ctx context.Context, tx *sqlx.Tx, paymentID string) (models.Payment, decimal.Decimal, error) {
	payment, err := s.payments.GetForUpdate(ctx, tx, paymentID)
	if err != nil {
		return models.Payment{}, decimal.Zero, lookup(err, entityPayment, paymentID)
	}
	allocated, err := s.payments.AllocatedTotal(ctx, tx, paymentID)
	if err != nil {
		return models.Payment{}, decimal.Zero, err
	}
	return payment, money.NonNegative(payment.Amount.Sub(allocated)), nil
}

// clamp reduces requested to what both sides can absorb.
func clamp(requested, payableRemaining, paymentRemaining decimal.Decimal) (decimal.Decimal, error) {
	amount := money.Round(money.Min(requested, payableRemaining, paymentRemaining))
	if !amount.IsPositive() {
		return decimal.Zero, preconditionf("nothing left to allocate: payable remaining %s, payment remaining %s",
			money.Format(payableRemaining), money.Format(paymentRemaining))
	}
	return amount, nil
}

func (s *PaymentService) allocationDate(in AllocationInput) time.Time {
	if in.Date != nil {
		return models.DateOf(*in.Date)
	}
	return models.DateOf(s.now())
}

func checkAllocationInput(in AllocationInput) error {
	if in.PaymentID == "" {
		return invalidArg("payment_id", "is required")
	}
	if !in.Amount.IsPositive() {
		return invalidArg("amount", "must be greater than zero")
	}
	return nil
}

// AllocateToInvoice applies part of a payment to an invoice whatever its
// status. The returned allocation carries the amount actually applied.
func (s *PaymentService) AllocateToInvoice(ctx context.Context, actorID, invoiceID string, in AllocationInput) (models.InvoiceAllocation, error) {
	if err := checkAllocationInput(in); err != nil {
		return models.InvoiceAllocation{}, err
	}
	var (
		allocation models.InvoiceAllocation
		pending    []websocket.Event
	)
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		pending = nil
		payment, paymentRemaining, err := s.lockPayment(ctx, tx, in.PaymentID)
		if err != nil {
			return err
		}
		invoice, err := s.documents.GetInvoiceForUpdate(ctx, tx, invoiceID)
		if err != nil {
			return lookup(err, string(models.PayableInvoice), invoiceID)
		}
		allocated, err := s.allocations.SumForInvoice(ctx, tx, invoiceID)
		if err != nil {
			return err
		}
		amount, err := clamp(in.Amount, invoice.Total.Sub(allocated), paymentRemaining)
		if err != nil {
			return err
		}
		notes := in.Notes
		if notes == "" {
			notes = "Payment allocation for invoice " + invoice.Number
		}
		allocation = models.InvoiceAllocation{
			ID:              newID(),
			InvoiceID:       invoiceID,
			PaymentID:       payment.ID,
			AmountAllocated: amount,
			AllocationDate:  s.allocationDate(in),
			Notes:           notes,
		}
		if err := s.allocations.CreateInvoiceAllocation(ctx, tx, allocation); err != nil {
			return err
		}
		if err := s.audit.Log(ctx, tx, actorID, "allocation.created", entityInvoiceAllocation, allocation.ID, map[string]string{
			"invoice_id": invoiceID,
			"payment_id": payment.ID,
			"requested":  money.Format(in.Amount),
			"allocated":  money.Format(amount),
		}); err != nil {
			return err
		}
		pending = append(pending, allocationEvent(websocket.EventAllocationCreated, models.InvoiceRef(invoiceID), allocation.ID, amount))
		changed, err := s.recomputeInvoice(ctx, tx, invoice)
		if err != nil {
			return err
		}
		pending = append(pending, changed...)
		return nil
	})
	if err != nil {
		return models.InvoiceAllocation{}, err
	}
	s.log.Info("payment allocated",
		zap.String("payment_id", in.PaymentID),
		zap.String("invoice_id", invoiceID),
		zap.String("requested", money.Format(in.Amount)),
		zap.String("allocated", money.Format(allocation.AmountAllocated)))
	s.publish(pending)
	return allocation, nil
}

func (s *PaymentService) AllocateToPurchaseOrder(ctx context.Context, actorID, poID string, in AllocationInput) (models.SupplierAllocation, error) {
	return s.AllocateToSupplier(ctx, actorID, SupplierAllocationInput{AllocationInput: in, PurchaseOrderID: &poID})
}

func (s *PaymentService) AllocateToExpense(ctx context.Context, actorID, supplierID, expenseID string, in AllocationInput) (models.SupplierAllocation, error) {
	return s.AllocateToSupplier(ctx, actorID, SupplierAllocationInput{AllocationInput: in, SupplierID: supplierID, ExpenseID: &expenseID})
}

// AllocateToSupplier applies part of a payment to a purchase order or an
// expense. Setting both targets, or neither, is an invalid argument.
func (s *PaymentService) AllocateToSupplier(ctx context.Context, actorID string, in SupplierAllocationInput) (models.SupplierAllocation, error) {
	draft := models.SupplierAllocation{PurchaseOrderID: in.PurchaseOrderID, ExpenseID: in.ExpenseID}
	target, err := draft.Target()
	if err != nil {
		return models.SupplierAllocation{}, invalidArg("target", err.Error())
	}
	if err := checkAllocationInput(in.AllocationInput); err != nil {
		return models.SupplierAllocation{}, err
	}
	if target.Kind == models.PayableExpense && in.SupplierID == "" {
		return models.SupplierAllocation{}, invalidArg("supplier_id", "is required for expense allocations")
	}
	var (
		allocation models.SupplierAllocation
		pending    []websocket.Event
	)
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		pending = nil
		payment, paymentRemaining, err := s.lockPayment(ctx, tx, in.PaymentID)
		if err != nil {
			return err
		}
		supplierID := in.SupplierID
		var (
			payableRemaining decimal.Decimal
			label            string
			recompute        func() ([]websocket.Event, error)
		)
		switch target.Kind {
		case models.PayablePurchaseOrder:
			po, err := s.documents.GetPurchaseOrderForUpdate(ctx, tx, target.ID)
			if err != nil {
				return lookup(err, string(target.Kind), target.ID)
			}
			if supplierID == "" {
				supplierID = po.SupplierID
			} else if supplierID != po.SupplierID {
				return invalidArg("supplier_id", "does not match the purchase order supplier")
			}
			allocated, err := s.allocations.SumForPurchaseOrder(ctx, tx, po.ID)
			if err != nil {
				return err
			}
			payableRemaining = po.Total.Sub(allocated)
			label = "purchase order " + po.Number
			recompute = func() ([]websocket.Event, error) { return s.recomputePurchaseOrder(ctx, tx, po) }
		case models.PayableExpense:
			expense, err := s.documents.GetExpenseForUpdate(ctx, tx, target.ID)
			if err != nil {
				return lookup(err, string(target.Kind), target.ID)
			}
			allocated, err := s.allocations.SumForExpense(ctx, tx, expense.ID)
			if err != nil {
				return err
			}
			payableRemaining = expense.TotalAmount().Sub(allocated)
			label = "expense " + expense.Number
			recompute = func() ([]websocket.Event, error) { return s.recomputeExpense(ctx, tx, expense) }
		}
		if _, err := s.parties.GetSupplier(ctx, tx, supplierID); err != nil {
			return lookup(err, "supplier", supplierID)
		}
		amount, err := clamp(in.Amount, payableRemaining, paymentRemaining)
		if err != nil {
			return err
		}
		notes := in.Notes
		if notes == "" {
			notes = "Payment allocation for " + label
		}
		allocation = models.SupplierAllocation{
			ID:              newID(),
			SupplierID:      supplierID,
			PaymentID:       payment.ID,
			PurchaseOrderID: in.PurchaseOrderID,
			ExpenseID:       in.ExpenseID,
			AmountAllocated: amount,
			AllocationDate:  s.allocationDate(in.AllocationInput),
			Notes:           notes,
		}
		if err := s.allocations.CreateSupplierAllocation(ctx, tx, allocation); err != nil {
			return err
		}
		if err := s.audit.Log(ctx, tx, actorID, "allocation.created", entitySupplierAllocation, allocation.ID, map[string]string{
			"payable":    target.String(),
			"payment_id": payment.ID,
			"requested":  money.Format(in.Amount),
			"allocated":  money.Format(amount),
		}); err != nil {
			return err
		}
		pending = append(pending, allocationEvent(websocket.EventAllocationCreated, target, allocation.ID, amount))
		changed, err := recompute()
		if err != nil {
			return err
		}
		pending = append(pending, changed...)
		return nil
	})
	if err != nil {
		return models.SupplierAllocation{}, err
	}
	s.log.Info("payment allocated",
		zap.String("payment_id", in.PaymentID),
		zap.String("payable", target.String()),
		zap.String("requested", money.Format(in.Amount)),
		zap.String("allocated", money.Format(allocation.AmountAllocated)))
	s.publish(pending)
	return allocation, nil
}

func reversalNote(notes, reason string) string {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = defaultReversalReason
	}
	return notes + " | REVERSED: " + reason
}

// ReverseInvoiceAllocation deletes an allocation whose payment is not yet
// finalized and reopens the invoice if it is no longer covered.
func (s *PaymentService) ReverseInvoiceAllocation(ctx context.Context, actorID, allocationID, reason string) error {
	var pending []websocket.Event
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		pending = nil
		allocation, err := s.allocations.GetInvoiceAllocationForUpdate(ctx, tx, allocationID)
		if err != nil {
			return lookup(err, entityInvoiceAllocation, allocationID)
		}
		if err := s.requireReversible(ctx, tx, allocation.PaymentID); err != nil {
			return err
		}
		invoice, err := s.documents.GetInvoiceForUpdate(ctx, tx, allocation.InvoiceID)
		if err != nil {
			return lookup(err, string(models.PayableInvoice), allocation.InvoiceID)
		}
		if err := s.audit.Log(ctx, tx, actorID, "allocation.reversed", entityInvoiceAllocation, allocationID, map[string]string{
			"invoice_id": allocation.InvoiceID,
			"payment_id": allocation.PaymentID,
			"amount":     money.Format(allocation.AmountAllocated),
			"notes":      reversalNote(allocation.Notes, reason),
		}); err != nil {
			return err
		}
		if err := s.allocations.DeleteInvoiceAllocation(ctx, tx, allocationID); err != nil {
			return lookup(err, entityInvoiceAllocation, allocationID)
		}
		pending = append(pending, allocationEvent(websocket.EventAllocationReversed, models.InvoiceRef(invoice.ID), allocationID, allocation.AmountAllocated))
		changed, err := s.recomputeInvoice(ctx, tx, invoice)
		if err != nil {
			return err
		}
		pending = append(pending, changed...)
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info("allocation reversed", zap.String("allocation_id", allocationID), zap.String("actor_id", actorID))
	s.publish(pending)
	return nil
}

func (s *PaymentService) ReverseSupplierAllocation(ctx context.Context, actorID, allocationID, reason string) error {
	var pending []websocket.Event
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		pending = nil
		allocation, err := s.allocations.GetSupplierAllocationForUpdate(ctx, tx, allocationID)
		if err != nil {
			return lookup(err, entitySupplierAllocation, allocationID)
		}
		target, err := allocation.Target()
		if err != nil {
			return err
		}
		if err := s.requireReversible(ctx, tx, allocation.PaymentID); err != nil {
			return err
		}
		var recompute func() ([]websocket.Event, error)
		switch target.Kind {
		case models.PayablePurchaseOrder:
			po, err := s.documents.GetPurchaseOrderForUpdate(ctx, tx, target.ID)
			if err != nil {
				return lookup(err, string(target.Kind), target.ID)
			}
			recompute = func() ([]websocket.Event, error) { return s.recomputePurchaseOrder(ctx, tx, po) }
		default:
			expense, err := s.documents.GetExpenseForUpdate(ctx, tx, target.ID)
			if err != nil {
				return lookup(err, string(target.Kind), target.ID)
			}
			recompute = func() ([]websocket.Event, error) { return s.recomputeExpense(ctx, tx, expense) }
		}
		if err := s.audit.Log(ctx, tx, actorID, "allocation.reversed", entitySupplierAllocation, allocationID, map[string]string{
			"payable":    target.String(),
			"payment_id": allocation.PaymentID,
			"amount":     money.Format(allocation.AmountAllocated),
			"notes":      reversalNote(allocation.Notes, reason),
		}); err != nil {
			return err
		}
		if err := s.allocations.DeleteSupplierAllocation(ctx, tx, allocationID); err != nil {
			return lookup(err, entitySupplierAllocation, allocationID)
		}
		pending = append(pending, allocationEvent(websocket.EventAllocationReversed, target, allocationID, allocation.AmountAllocated))
		changed, err := recompute()
		if err != nil {
			return err
		}
		pending = append(pending, changed...)
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info("allocation reversed", zap.String("allocation_id", allocationID), zap.String("actor_id", actorID))
	s.publish(pending)
	return nil
}

func (s *PaymentService) requireReversible(ctx context.Context, tx *sqlx.Tx, paymentID string) error {
	payment, err := s.payments.GetForUpdate(ctx, tx, paymentID)
	if err != nil {
		return lookup(err, entityPayment, paymentID)
	}
	if payment.IsFinalized() {
		return preconditionf("payment %s is finalized; its allocations cannot be reversed", payment.Number)
	}
	return nil
}

// recomputeInvoice marks a covered invoice paid and a paid invoice that lost
// coverage sent again.
func (s *PaymentService) recomputeInvoice(ctx context.Context, tx *sqlx.Tx, invoice models.Invoice) ([]websocket.Event, error) {
	allocated, err := s.allocations.SumForInvoice(ctx, tx, invoice.ID)
	if err != nil {
		return nil, err
	}
	settled := money.Settled(invoice.Total.Sub(allocated))
	next := invoice.Status
	switch {
	case settled && invoice.Status != models.InvoicePaid:
		next = models.InvoicePaid
	case !settled && invoice.Status == models.InvoicePaid:
		next = models.InvoiceSent
	}
	if next == invoice.Status {
		return nil, nil
	}
	if err := s.documents.SetInvoiceStatus(ctx, tx, invoice.ID, next); err != nil {
		return nil, err
	}
	return []websocket.Event{statusEvent(models.InvoiceRef(invoice.ID), string(next))}, nil
}

func (s *PaymentService) recomputePurchaseOrder(ctx context.Context, tx *sqlx.Tx, po models.PurchaseOrder) ([]websocket.Event, error) {
	allocated, err := s.allocations.SumForPurchaseOrder(ctx, tx, po.ID)
	if err != nil {
		return nil, err
	}
	next := models.PaymentStatePartial
	switch {
	case money.Settled(po.Total.Sub(allocated)):
		next = models.PaymentStatePaid
	case !allocated.IsPositive():
		next = models.PaymentStateUnpaid
	}
	if next == po.PaymentStatus {
		return nil, nil
	}
	if err := s.documents.SetPurchaseOrderPaymentStatus(ctx, tx, po.ID, next); err != nil {
		return nil, err
	}
	return []websocket.Event{statusEvent(models.PurchaseOrderRef(po.ID), string(next))}, nil
}

// recomputeExpense only reopens an expense that allocations paid; one settled
// through a journal entry stays paid.
func (s *PaymentService) recomputeExpense(ctx context.Context, tx *sqlx.Tx, expense models.Expense) ([]websocket.Event, error) {
	allocated, err := s.allocations.SumForExpense(ctx, tx, expense.ID)
	if err != nil {
		return nil, err
	}
	settled := money.Settled(expense.TotalAmount().Sub(allocated))
	next := expense.Status
	switch {
	case settled && expense.Status != models.ExpensePaid:
		next = models.ExpensePaid
	case !settled && expense.Status == models.ExpensePaid && expense.JournalEntryID == nil:
		next = models.ExpenseApproved
	}
	if next == expense.Status {
		return nil, nil
	}
	if err := s.documents.SetExpenseStatus(ctx, tx, expense.ID, next); err != nil {
		return nil, err
	}
	return []websocket.Event{statusEvent(models.ExpenseRef(expense.ID), string(next))}, nil
}

func (s *PaymentService) publish(events []websocket.Event) {
	for _, event := range events {
		s.events.Publish(event)
	}
}

func allocationEvent(eventType string, target models.PayableRef, allocationID string, amount decimal.Decimal) websocket.Event {
	return websocket.Event{
		Type:       eventType,
		EntityType: string(target.Kind),
		EntityID:   target.ID,
		Data: map[string]string{
			"allocation_id": allocationID,
			"amount":        money.Format(amount),
		},
	}
}

func statusEvent(target models.PayableRef, status string) websocket.Event {
	return websocket.Event{
		Type:       websocket.EventPayableStatusChanged,
		EntityType: string(target.Kind),
		EntityID:   target.ID,
		Status:     status,
	}
}
