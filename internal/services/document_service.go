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
)

const (
	entityClient   = "client"
	entitySupplier = "supplier"

	defaultPaymentTerms = "net_30"
)

// DocumentService runs the lifecycles of the documents payments settle:
// invoices, purchase orders, expenses and refunds, plus the parties they name.
type DocumentService struct {
	txRunner    db.TxRunner
	documents   DocumentStore
	parties     PartyStore
	allocations AllocationStore
	payments    PaymentStore
	accounts    AccountStore
	writer      entryWriter
	audit       AuditStore
	events      EventPublisher
	log         *zap.Logger
	now         Clock
}

type DocumentServiceDeps struct {
	TxRunner    db.TxRunner
	Documents   DocumentStore
	Parties     PartyStore
	Allocations AllocationStore
	Payments    PaymentStore
	Accounts    AccountStore
	Journals    JournalStore
	Lines       LedgerStore
	Audit       AuditStore
	Events      EventPublisher
	Log         *zap.Logger
	Now         Clock
}

func NewDocumentService(deps DocumentServiceDeps) *DocumentService {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &DocumentService{
		txRunner:    deps.TxRunner,
		documents:   deps.Documents,
		parties:     deps.Parties,
		allocations: deps.Allocations,
		payments:    deps.Payments,
		accounts:    deps.Accounts,
		writer:      entryWriter{accounts: deps.Accounts, journals: deps.Journals, lines: deps.Lines},
		audit:       deps.Audit,
		events:      publisherOrNop(deps.Events),
		log:         log,
		now:         clockOrSystem(deps.Now),
	}
}

func (s *DocumentService) statusChanged(ref models.PayableRef, status string) {
	s.log.Info("document status changed", zap.String("payable", ref.String()), zap.String("status", status))
	s.events.Publish(statusEvent(ref, status))
}

func nonNegative(field string, value decimal.Decimal) error {
	if value.IsNegative() {
		return invalidArg(field, "must not be negative")
	}
	return nil
}

// parties

type ClientInput struct {
	Code        string
	Name        string
	Type        string
	Email       string
	CreditLimit decimal.NullDecimal
}

type SupplierInput struct {
	Code         string
	Name         string
	CompanyName  string
	Email        string
	PaymentTerms string
	CreditLimit  decimal.NullDecimal
}

func (s *DocumentService) CreateClient(ctx context.Context, actorID string, in ClientInput) (models.Client, error) {
	client := models.Client{
		ID:          newID(),
		Code:        strings.TrimSpace(in.Code),
		Name:        strings.TrimSpace(in.Name),
		Type:        in.Type,
		Email:       in.Email,
		CreditLimit: in.CreditLimit,
		IsActive:    true,
	}
	if client.Code == "" {
		return models.Client{}, invalidArg("code", "is required")
	}
	if client.Name == "" {
		return models.Client{}, invalidArg("name", "is required")
	}
	if client.Type == "" {
		client.Type = "company"
	}
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.parties.CreateClient(ctx, tx, client); err != nil {
			return err
		}
		return s.audit.Log(ctx, tx, actorID, "client.created", entityClient, client.ID, map[string]string{"code": client.Code})
	})
	if err != nil {
		return models.Client{}, err
	}
	return client, nil
}

func (s *DocumentService) CreateSupplier(ctx context.Context, actorID string, in SupplierInput) (models.Supplier, error) {
	supplier := models.Supplier{
		ID:           newID(),
		Code:         strings.TrimSpace(in.Code),
		Name:         strings.TrimSpace(in.Name),
		CompanyName:  strings.TrimSpace(in.CompanyName),
		Email:        in.Email,
		PaymentTerms: in.PaymentTerms,
		CreditLimit:  in.CreditLimit,
		IsActive:     true,
	}
	if supplier.Code == "" {
		return models.Supplier{}, invalidArg("code", "is required")
	}
	if supplier.Name == "" {
		return models.Supplier{}, invalidArg("name", "is required")
	}
	if supplier.PaymentTerms == "" {
		supplier.PaymentTerms = defaultPaymentTerms
	}
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.parties.CreateSupplier(ctx, tx, supplier); err != nil {
			return err
		}
		return s.audit.Log(ctx, tx, actorID, "supplier.created", entitySupplier, supplier.ID, map[string]string{"code": supplier.Code})
	})
	if err != nil {
		return models.Supplier{}, err
	}
	return supplier, nil
}

func (s *DocumentService) ListClients(ctx context.Context, activeOnly bool) ([]models.Client, error) {
	var clients []models.Client
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		clients, err = s.parties.ListClients(ctx, tx, activeOnly)
		return err
	})
	return clients, err
}

func (s *DocumentService) ListSuppliers(ctx context.Context, activeOnly bool) ([]models.Supplier, error) {
	var suppliers []models.Supplier
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		suppliers, err = s.parties.ListSuppliers(ctx, tx, activeOnly)
		return err
	})
	return suppliers, err
}

// invoices

type InvoiceInput struct {
	ClientID  string
	IssueDate time.Time
	DueDate   time.Time
	Subtotal  decimal.Decimal
	TaxAmount decimal.Decimal
	Notes     string
}

type InvoiceView struct {
	models.Invoice
	EffectiveStatus  models.InvoiceStatus `json:"effective_status"`
	AmountPaid       money.Amount         `json:"amount_paid"`
	RemainingBalance money.Amount         `json:"remaining_balance"`
	IsFullyPaid      bool                 `json:"is_fully_paid"`
	IsOverdue        bool                 `json:"is_overdue"`
}

func newInvoiceView(invoice models.Invoice, allocated decimal.Decimal, asOf time.Time) InvoiceView {
	remaining := money.NonNegative(invoice.Total.Sub(allocated))
	return InvoiceView{
		Invoice:          invoice,
		EffectiveStatus:  invoice.EffectiveStatus(asOf),
		AmountPaid:       money.A(allocated),
		RemainingBalance: money.A(remaining),
		IsFullyPaid:      money.Settled(remaining),
		IsOverdue:        invoice.IsOverdue(asOf),
	}
}

func (s *DocumentService) CreateInvoice(ctx context.Context, actorID string, in InvoiceInput) (models.Invoice, error) {
	if in.ClientID == "" {
		return models.Invoice{}, invalidArg("client_id", "is required")
	}
	if err := nonNegative("subtotal", in.Subtotal); err != nil {
		return models.Invoice{}, err
	}
	if err := nonNegative("tax_amount", in.TaxAmount); err != nil {
		return models.Invoice{}, err
	}
	issue := in.IssueDate
	if issue.IsZero() {
		issue = s.now()
	}
	issue = models.DateOf(issue)
	due := models.DateOf(in.DueDate)
	if in.DueDate.IsZero() {
		due = issue.AddDate(0, 0, models.PaymentTermsDays(defaultPaymentTerms))
	}
	if due.Before(issue) {
		return models.Invoice{}, invalidArg("due_date", "must not be before issue_date")
	}
	total := money.Round(in.Subtotal.Add(in.TaxAmount))
	if !total.IsPositive() {
		return models.Invoice{}, invalidArg("total", "must be greater than zero")
	}
	if _, err := s.parties.GetClient(ctx, in.ClientID); err != nil {
		return models.Invoice{}, lookup(err, entityClient, in.ClientID)
	}
	invoice := models.Invoice{
		ID:        newID(),
		ClientID:  in.ClientID,
		Status:    models.InvoiceDraft,
		IssueDate: issue,
		DueDate:   due,
		Subtotal:  money.Round(in.Subtotal),
		TaxAmount: money.Round(in.TaxAmount),
		Total:     total,
		Notes:     in.Notes,
		CreatedBy: actorID,
	}
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		number, err := s.documents.NextInvoiceNumber(ctx, tx, issue)
		if err != nil {
			return err
		}
		invoice.Number = number
		if err := s.documents.CreateInvoice(ctx, tx, invoice); err != nil {
			return err
		}
		return s.audit.Log(ctx, tx, actorID, "invoice.created", string(models.PayableInvoice), invoice.ID, map[string]string{
			"invoice_number": invoice.Number,
			"total":          money.Format(invoice.Total),
		})
	})
	if err != nil {
		return models.Invoice{}, err
	}
	return invoice, nil
}

// transitionInvoice moves an invoice to next when allowed reports true for
// its current status.
func (s *DocumentService) transitionInvoice(ctx context.Context, actorID, invoiceID string, next models.InvoiceStatus, allowed func(models.InvoiceStatus) bool) (models.Invoice, error) {
	var invoice models.Invoice
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		invoice, err = s.documents.GetInvoiceForUpdate(ctx, tx, invoiceID)
		if err != nil {
			return lookup(err, string(models.PayableInvoice), invoiceID)
		}
		if !allowed(invoice.Status) {
			return preconditionf("invoice %s is %s; cannot move to %s", invoice.Number, invoice.Status, next)
		}
		previous := invoice.Status
		if err := s.documents.SetInvoiceStatus(ctx, tx, invoiceID, next); err != nil {
			return err
		}
		invoice.Status = next
		return s.audit.Log(ctx, tx, actorID, "invoice."+string(next), string(models.PayableInvoice), invoiceID, map[string]string{
			"from": string(previous),
			"to":   string(next),
		})
	})
	if err != nil {
		return models.Invoice{}, err
	}
	s.statusChanged(models.InvoiceRef(invoiceID), string(next))
	return invoice, nil
}

func (s *DocumentService) SendInvoice(ctx context.Context, actorID, invoiceID string) (models.Invoice, error) {
	return s.transitionInvoice(ctx, actorID, invoiceID, models.InvoiceSent, func(st models.InvoiceStatus) bool {
		return st == models.InvoiceDraft
	})
}

func (s *DocumentService) CancelInvoice(ctx context.Context, actorID, invoiceID string) (models.Invoice, error) {
	return s.transitionInvoice(ctx, actorID, invoiceID, models.InvoiceCancelled, func(st models.InvoiceStatus) bool {
		return st != models.InvoicePaid && st != models.InvoiceCancelled
	})
}

// MarkInvoiceOverdue stores the overdue status explicitly. Readers already
// see a sent invoice past its due date as overdue without it.
func (s *DocumentService) MarkInvoiceOverdue(ctx context.Context, actorID, invoiceID string) (models.Invoice, error) {
	return s.transitionInvoice(ctx, actorID, invoiceID, models.InvoiceOverdue, func(st models.InvoiceStatus) bool {
		return st == models.InvoiceSent
	})
}

func (s *DocumentService) GetInvoice(ctx context.Context, invoiceID string) (InvoiceView, error) {
	var view InvoiceView
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		invoice, err := s.documents.GetInvoiceForUpdate(ctx, tx, invoiceID)
		if err != nil {
			return lookup(err, string(models.PayableInvoice), invoiceID)
		}
		allocated, err := s.allocations.SumForInvoice(ctx, tx, invoiceID)
		if err != nil {
			return err
		}
		view = newInvoiceView(invoice, allocated, s.now())
		return nil
	})
	return view, err
}

func (s *DocumentService) ListInvoices(ctx context.Context, status models.InvoiceStatus, limit, offset int) ([]InvoiceView, error) {
	invoices, err := s.documents.ListInvoices(ctx, status, limit, offset)
	if err != nil {
		return nil, err
	}
	var allocated map[string]decimal.Decimal
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		allocated, err = s.allocations.AllocatedByInvoice(ctx, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	now := s.now()
	views := make([]InvoiceView, 0, len(invoices))
	for _, invoice := range invoices {
		views = append(views, newInvoiceView(invoice, allocated[invoice.ID], now))
	}
	return views, nil
}

// purchase orders

type PurchaseOrderInput struct {
	SupplierID   string
	OrderDate    time.Time
	ExpectedDate *time.Time
	Subtotal     decimal.Decimal
	TaxAmount    decimal.Decimal
	ShippingCost decimal.Decimal
	Notes        string
}

type PurchaseOrderView struct {
	models.PurchaseOrder
	AmountPaid       money.Amount `json:"amount_paid"`
	RemainingBalance money.Amount `json:"remaining_balance"`
	DueDate          string       `json:"due_date"`
}

func (s *DocumentService) CreatePurchaseOrder(ctx context.Context, actorID string, in PurchaseOrderInput) (models.PurchaseOrder, error) {
	if in.SupplierID == "" {
		return models.PurchaseOrder{}, invalidArg("supplier_id", "is required")
	}
	for field, value := range map[string]decimal.Decimal{"subtotal": in.Subtotal, "tax_amount": in.TaxAmount, "shipping_cost": in.ShippingCost} {
		if err := nonNegative(field, value); err != nil {
			return models.PurchaseOrder{}, err
		}
	}
	total := money.Round(money.Sum(in.Subtotal, in.TaxAmount, in.ShippingCost))
	if !total.IsPositive() {
		return models.PurchaseOrder{}, invalidArg("total", "must be greater than zero")
	}
	orderDate := in.OrderDate
	if orderDate.IsZero() {
		orderDate = s.now()
	}
	po := models.PurchaseOrder{
		ID:            newID(),
		SupplierID:    in.SupplierID,
		Status:        models.PODraft,
		PaymentStatus: models.PaymentStateUnpaid,
		OrderDate:     models.DateOf(orderDate),
		ExpectedDate:  in.ExpectedDate,
		Subtotal:      money.Round(in.Subtotal),
		TaxAmount:     money.Round(in.TaxAmount),
		ShippingCost:  money.Round(in.ShippingCost),
		Total:         total,
		Notes:         in.Notes,
		CreatedBy:     actorID,
	}
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := s.parties.GetSupplier(ctx, tx, in.SupplierID); err != nil {
			return lookup(err, entitySupplier, in.SupplierID)
		}
		number, err := s.documents.NextPurchaseOrderNumber(ctx, tx, po.OrderDate)
		if err != nil {
			return err
		}
		po.Number = number
		if err := s.documents.CreatePurchaseOrder(ctx, tx, po); err != nil {
			return err
		}
		return s.audit.Log(ctx, tx, actorID, "purchase_order.created", string(models.PayablePurchaseOrder), po.ID, map[string]string{
			"po_number": po.Number,
			"total":     money.Format(po.Total),
		})
	})
	if err != nil {
		return models.PurchaseOrder{}, err
	}
	return po, nil
}

func (s *DocumentService) transitionPurchaseOrder(ctx context.Context, actorID, poID string, next models.PurchaseOrderStatus, allowed func(models.PurchaseOrderStatus) bool) (models.PurchaseOrder, error) {
	var po models.PurchaseOrder
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		po, err = s.documents.GetPurchaseOrderForUpdate(ctx, tx, poID)
		if err != nil {
			return lookup(err, string(models.PayablePurchaseOrder), poID)
		}
		if !allowed(po.Status) {
			return preconditionf("purchase order %s is %s; cannot move to %s", po.Number, po.Status, next)
		}
		previous := po.Status
		if next == models.POApproved {
			at := s.now()
			err = s.documents.ApprovePurchaseOrder(ctx, tx, poID, actorID, at)
			po.ApprovedBy = &actorID
			po.ApprovedAt = &at
		} else {
			err = s.documents.SetPurchaseOrderStatus(ctx, tx, poID, next)
		}
		if err != nil {
			return err
		}
		po.Status = next
		return s.audit.Log(ctx, tx, actorID, "purchase_order."+string(next), string(models.PayablePurchaseOrder), poID, map[string]string{
			"from": string(previous),
			"to":   string(next),
		})
	})
	if err != nil {
		return models.PurchaseOrder{}, err
	}
	s.statusChanged(models.PurchaseOrderRef(poID), string(next))
	return po, nil
}

func (s *DocumentService) SendPurchaseOrder(ctx context.Context, actorID, poID string) (models.PurchaseOrder, error) {
	return s.transitionPurchaseOrder(ctx, actorID, poID, models.POSent, func(st models.PurchaseOrderStatus) bool {
		return st == models.PODraft
	})
}

func (s *DocumentService) ApprovePurchaseOrder(ctx context.Context, actorID, poID string) (models.PurchaseOrder, error) {
	return s.transitionPurchaseOrder(ctx, actorID, poID, models.POApproved, func(st models.PurchaseOrderStatus) bool {
		return st == models.POSent
	})
}

// ReceivePurchaseOrder records delivery; a partial delivery can be followed
// by a full one.
func (s *DocumentService) ReceivePurchaseOrder(ctx context.Context, actorID, poID string, full bool) (models.PurchaseOrder, error) {
	next := models.POPartial
	if full {
		next = models.POReceived
	}
	return s.transitionPurchaseOrder(ctx, actorID, poID, next, func(st models.PurchaseOrderStatus) bool {
		return st == models.POApproved || st == models.POPartial
	})
}

func (s *DocumentService) CancelPurchaseOrder(ctx context.Context, actorID, poID string) (models.PurchaseOrder, error) {
	return s.transitionPurchaseOrder(ctx, actorID, poID, models.POCancelled, func(st models.PurchaseOrderStatus) bool {
		return st == models.PODraft || st == models.POSent || st == models.POApproved
	})
}

func (s *DocumentService) GetPurchaseOrder(ctx context.Context, poID string) (PurchaseOrderView, error) {
	var view PurchaseOrderView
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		po, err := s.documents.GetPurchaseOrderForUpdate(ctx, tx, poID)
		if err != nil {
			return lookup(err, string(models.PayablePurchaseOrder), poID)
		}
		supplier, err := s.parties.GetSupplier(ctx, tx, po.SupplierID)
		if err != nil {
			return lookup(err, entitySupplier, po.SupplierID)
		}
		allocated, err := s.allocations.SumForPurchaseOrder(ctx, tx, poID)
		if err != nil {
			return err
		}
		due := po.OrderDate.AddDate(0, 0, models.PaymentTermsDays(supplier.PaymentTerms))
		view = PurchaseOrderView{
			PurchaseOrder:    po,
			AmountPaid:       money.A(allocated),
			RemainingBalance: money.A(money.NonNegative(po.Total.Sub(allocated))),
			DueDate:          due.Format(time.DateOnly),
		}
		return nil
	})
	return view, err
}
