package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"accounting/internal/models"
)

func TestCreateInvoiceNumbersAndTotals(t *testing.T) {
	m := receivables("1", models.InvoiceSent)
	s := newDocumentFixture(m, &stubHub{})

	inv, err := s.CreateInvoice(context.Background(), "user-1", InvoiceInput{
		ClientID: "c1", IssueDate: day(2024, 3, 10), DueDate: day(2024, 4, 9),
		Subtotal: dec("100"), TaxAmount: dec("16.5"),
	})
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}
	if inv.Number != "INV-2024-0002" || inv.Status != models.InvoiceDraft {
		t.Fatalf("unexpected invoice: %#v", inv)
	}
	if !inv.Total.Equal(dec("116.5")) {
		t.Fatalf("unexpected total %s", inv.Total)
	}
}

func TestCreateInvoiceRejectsBadInput(t *testing.T) {
	s := newDocumentFixture(receivables("1", models.InvoiceSent), &stubHub{})
	cases := []struct {
		name string
		in   InvoiceInput
		want error
	}{
		{"due before issue", InvoiceInput{ClientID: "c1", IssueDate: day(2024, 3, 10), DueDate: day(2024, 3, 1), Subtotal: dec("1")}, ErrInvalidArgument},
		{"negative tax", InvoiceInput{ClientID: "c1", Subtotal: dec("1"), TaxAmount: dec("-1")}, ErrInvalidArgument},
		{"zero total", InvoiceInput{ClientID: "c1"}, ErrInvalidArgument},
		{"unknown client", InvoiceInput{ClientID: "ghost", Subtotal: dec("1")}, ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := s.CreateInvoice(context.Background(), "user-1", tc.in); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestInvoiceLifecycle(t *testing.T) {
	m := receivables("100", models.InvoiceDraft)
	hub := &stubHub{}
	s := newDocumentFixture(m, hub)
	ctx := context.Background()

	if _, err := s.MarkInvoiceOverdue(ctx, "user-1", "inv1"); !errors.Is(err, ErrPreconditionFailed) {
		t.Fatalf("draft cannot become overdue, got %v", err)
	}
	sent, err := s.SendInvoice(ctx, "user-1", "inv1")
	if err != nil || sent.Status != models.InvoiceSent {
		t.Fatalf("send: %v %#v", err, sent)
	}
	if _, err := s.SendInvoice(ctx, "user-1", "inv1"); !errors.Is(err, ErrPreconditionFailed) {
		t.Fatalf("sending twice should fail, got %v", err)
	}
	overdue, err := s.MarkInvoiceOverdue(ctx, "user-1", "inv1")
	if err != nil || overdue.Status != models.InvoiceOverdue {
		t.Fatalf("mark overdue: %v %#v", err, overdue)
	}
	if len(hub.events) != 2 {
		t.Fatalf("expected two status events, got %d", len(hub.events))
	}

	m.invoices["inv1"] = models.Invoice{ID: "inv1", Number: "INV-2024-0001", Status: models.InvoicePaid, Total: dec("100")}
	if _, err := s.CancelInvoice(ctx, "user-1", "inv1"); !errors.Is(err, ErrPreconditionFailed) {
		t.Fatalf("paid invoice cannot be cancelled, got %v", err)
	}
}

func TestInvoiceViewTreatsPastDueAsOverdue(t *testing.T) {
	m := receivables("100", models.InvoiceSent)
	inv := m.invoices["inv1"]
	inv.DueDate = day(2024, 3, 1)
	m.invoices["inv1"] = inv
	s := newDocumentFixture(m, &stubHub{})

	view, err := s.GetInvoice(context.Background(), "inv1")
	if err != nil {
		t.Fatalf("get invoice: %v", err)
	}
	if view.Status != models.InvoiceSent || view.EffectiveStatus != models.InvoiceOverdue || !view.IsOverdue {
		t.Fatalf("unexpected overdue view: %#v", view)
	}
	if view.IsFullyPaid || !view.RemainingBalance.Equal(dec("100")) {
		t.Fatalf("unexpected balance view: %#v", view)
	}
}

func TestPurchaseOrderLifecycle(t *testing.T) {
	m := payables()
	s := newDocumentFixture(m, &stubHub{})
	ctx := context.Background()

	po, err := s.CreatePurchaseOrder(ctx, "user-1", PurchaseOrderInput{
		SupplierID: "s1", OrderDate: day(2024, 3, 5),
		Subtotal: dec("400"), TaxAmount: dec("40"), ShippingCost: dec("10"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if po.Number != "PO-2024-0002" || !po.Total.Equal(dec("450")) || po.PaymentStatus != models.PaymentStateUnpaid {
		t.Fatalf("unexpected order: %#v", po)
	}
	if _, err := s.ApprovePurchaseOrder(ctx, "user-2", po.ID); !errors.Is(err, ErrPreconditionFailed) {
		t.Fatalf("draft order cannot be approved, got %v", err)
	}
	if _, err := s.SendPurchaseOrder(ctx, "user-1", po.ID); err != nil {
		t.Fatalf("send: %v", err)
	}
	approved, err := s.ApprovePurchaseOrder(ctx, "user-2", po.ID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.ApprovedBy == nil || *approved.ApprovedBy != "user-2" || approved.ApprovedAt == nil {
		t.Fatalf("approval not recorded: %#v", approved)
	}
	if got, _ := s.ReceivePurchaseOrder(ctx, "user-1", po.ID, false); got.Status != models.POPartial {
		t.Fatalf("expected partial, got %s", got.Status)
	}
	if got, _ := s.ReceivePurchaseOrder(ctx, "user-1", po.ID, true); got.Status != models.POReceived {
		t.Fatalf("expected received, got %s", got.Status)
	}
	if _, err := s.CancelPurchaseOrder(ctx, "user-1", po.ID); !errors.Is(err, ErrPreconditionFailed) {
		t.Fatalf("received order cannot be cancelled, got %v", err)
	}

	view, err := s.GetPurchaseOrder(ctx, po.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if view.DueDate != "2024-04-04" || !view.RemainingBalance.Equal(dec("450")) {
		t.Fatalf("unexpected view: due=%s remaining=%s", view.DueDate, view.RemainingBalance)
	}
}

func TestCreatePurchaseOrderUnknownSupplier(t *testing.T) {
	s := newDocumentFixture(payables(), &stubHub{})
	_, err := s.CreatePurchaseOrder(context.Background(), "user-1", PurchaseOrderInput{SupplierID: "ghost", Subtotal: dec("1")})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func expenseBooks() *memDB {
	m := payables()
	m.addAccount("cash", CashAccountCode, models.AccountAsset)
	m.addAccount("tax", TaxExpenseAccountCode, models.AccountExpense)
	m.addAccount("supplies", "6100", models.AccountExpense)
	m.addAccount("bank", "1200", models.AccountAsset)
	return m
}

func TestCreateExpenseNeedsExpenseAccount(t *testing.T) {
	s := newDocumentFixture(expenseBooks(), &stubHub{})
	_, err := s.CreateExpense(context.Background(), "user-1", ExpenseInput{VendorName: "Parts Co", AccountID: "bank", Amount: dec("10")})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	e, err := s.CreateExpense(context.Background(), "user-1", ExpenseInput{VendorName: "Parts Co", AccountID: "supplies", Amount: dec("10"), TaxAmount: dec("1.5")})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if e.Status != models.ExpensePending || !e.TotalAmount().Equal(dec("11.5")) || !e.ExpenseDate.Equal(day(2024, 3, 15)) {
		t.Fatalf("unexpected expense: %#v", e)
	}
}

func TestMarkExpensePaidPostsEntry(t *testing.T) {
	m := expenseBooks()
	s := newDocumentFixture(m, &stubHub{})
	ctx := context.Background()
	e, err := s.CreateExpense(ctx, "user-1", ExpenseInput{
		VendorName: "Parts Co", AccountID: "supplies", Amount: dec("90"), TaxAmount: dec("10"),
		ExpenseDate: day(2024, 3, 12), Description: "Bolts",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, _, err := s.MarkExpensePaid(ctx, "user-1", e.ID); !errors.Is(err, ErrPreconditionFailed) {
		t.Fatalf("pending expense cannot be paid, got %v", err)
	}
	if _, err := s.ApproveExpense(ctx, "user-2", e.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}

	paid, entry, err := s.MarkExpensePaid(ctx, "user-1", e.ID)
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if paid.Status != models.ExpensePaid || paid.JournalEntryID == nil || *paid.JournalEntryID != entry.ID {
		t.Fatalf("unexpected expense: %#v", paid)
	}
	if entry.Status != models.EntryPosted || !entry.EntryDate.Equal(day(2024, 3, 12)) || !entry.AffectsCash {
		t.Fatalf("unexpected entry: %#v", entry)
	}
	if entry.ReferenceType == nil || *entry.ReferenceType != models.ReferenceExpense {
		t.Fatalf("entry should reference the expense")
	}
	got := balances(t, m, "supplies", "tax", "cash")
	if !got["supplies"].Equal(dec("90")) || !got["tax"].Equal(dec("10")) || !got["cash"].Equal(dec("-100")) {
		t.Fatalf("unexpected balances: %v", got)
	}
}

func TestMarkExpensePaidNeedsSystemAccounts(t *testing.T) {
	m := expenseBooks()
	delete(m.accounts, "tax")
	m.expenses["exp2"] = models.Expense{
		ID: "exp2", Number: "EXP-2024-0002", AccountID: "supplies", Status: models.ExpenseApproved,
		Amount: dec("20"), TaxAmount: dec("2"), ExpenseDate: day(2024, 3, 2),
	}
	s := newDocumentFixture(m, &stubHub{})
	_, _, err := s.MarkExpensePaid(context.Background(), "user-1", "exp2")
	if !errors.Is(err, ErrPreconditionFailed) || !strings.Contains(err.Error(), TaxExpenseAccountCode) {
		t.Fatalf("expected missing TAX-EXP precondition, got %v", err)
	}
}

func TestRejectExpenseOnlyWhenPending(t *testing.T) {
	m := payables()
	s := newDocumentFixture(m, &stubHub{})
	if _, err := s.RejectExpense(context.Background(), "user-1", "exp1"); !errors.Is(err, ErrPreconditionFailed) {
		t.Fatalf("approved expense cannot be rejected, got %v", err)
	}
}

func TestRefundWorkflow(t *testing.T) {
	m := receivables("100", models.InvoiceSent)
	s := newDocumentFixture(m, &stubHub{})
	ctx := context.Background()

	if _, err := s.CreateRefund(ctx, "user-1", RefundInput{InvoiceID: "inv1", Reason: "damaged", Subtotal: dec("150")}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("refund above invoice total should fail, got %v", err)
	}
	refund, err := s.CreateRefund(ctx, "user-1", RefundInput{InvoiceID: "inv1", Reason: "damaged", Subtotal: dec("25"), TaxAmount: dec("5")})
	if err != nil {
		t.Fatalf("create refund: %v", err)
	}
	if refund.Number != "RFD-2024-0001" || refund.Status != models.RefundPending || !refund.Total.Equal(dec("30")) {
		t.Fatalf("unexpected refund: %#v", refund)
	}
	if _, err := s.ProcessRefund(ctx, "user-1", refund.ID); !errors.Is(err, ErrPreconditionFailed) {
		t.Fatalf("pending refund cannot be processed, got %v", err)
	}
	if _, err := s.ApproveRefund(ctx, "user-2", refund.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}
	processed, err := s.ProcessRefund(ctx, "user-1", refund.ID)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if processed.Status != models.RefundProcessed || processed.ProcessedAt == nil {
		t.Fatalf("unexpected processed refund: %#v", processed)
	}
	var payment models.Payment
	for _, p := range m.payments {
		payment = p
	}
	if payment.Number != "REF-RFD-2024-0001" || payment.Type != models.PaymentRefund || !payment.Amount.Equal(dec("30")) {
		t.Fatalf("unexpected refund payment: %#v", payment)
	}
	if payment.PayableKind != models.PayableRefund || payment.PayableID != refund.ID {
		t.Fatalf("refund payment should reference the refund: %#v", payment)
	}
	if _, err := s.CancelRefund(ctx, "user-1", refund.ID); !errors.Is(err, ErrPreconditionFailed) {
		t.Fatalf("processed refund cannot be cancelled, got %v", err)
	}
}

func TestRejectRefundAppendsReason(t *testing.T) {
	m := receivables("100", models.InvoiceSent)
	s := newDocumentFixture(m, &stubHub{})
	refund, err := s.CreateRefund(context.Background(), "user-1", RefundInput{InvoiceID: "inv1", Reason: "late", Subtotal: dec("10"), Notes: "customer call"})
	if err != nil {
		t.Fatalf("create refund: %v", err)
	}
	rejected, err := s.RejectRefund(context.Background(), "user-2", refund.ID, "outside policy")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != models.RefundRejected || rejected.Notes != "customer call | Rejection reason: outside policy" {
		t.Fatalf("unexpected rejected refund: %#v", rejected)
	}
}

func TestCreatePartiesDefaults(t *testing.T) {
	m := newMemDB()
	s := newDocumentFixture(m, &stubHub{})
	supplier, err := s.CreateSupplier(context.Background(), "user-1", SupplierInput{Code: "S9", Name: "Widgets"})
	if err != nil {
		t.Fatalf("create supplier: %v", err)
	}
	if supplier.PaymentTerms != "net_30" || !supplier.IsActive {
		t.Fatalf("unexpected supplier: %#v", supplier)
	}
	if _, err := s.CreateClient(context.Background(), "user-1", ClientInput{Name: "No code"}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	client, err := s.CreateClient(context.Background(), "user-1", ClientInput{Code: "C9", Name: "Buyer", CreditLimit: decimal.NewNullDecimal(dec("500"))})
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	if !client.CreditLimit.Valid || client.Type != "company" {
		t.Fatalf("unexpected client: %#v", client)
	}
}
