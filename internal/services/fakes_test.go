package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"accounting/internal/models"
	"accounting/internal/store"
	"accounting/internal/websocket"
)

type fakeTxRunner struct {
	err error
}

func (f fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if f.err != nil {
		return f.err
	}
	return fn(nil)
}

var testNow = time.Date(2024, time.March, 15, 10, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

type auditCall struct {
	actorID, action, entityType, entityID string
	data                                  any
}

// memDB backs every store interface with maps. Writes are not rolled back
// when a transaction closure fails.
type memDB struct {
	mu sync.Mutex

	accounts map[string]models.Account
	entries  map[string]models.JournalEntry
	lines    []models.JournalLine

	payments       map[string]models.Payment
	invoiceAllocs  map[string]models.InvoiceAllocation
	supplierAllocs map[string]models.SupplierAllocation

	invoices  map[string]models.Invoice
	orders    map[string]models.PurchaseOrder
	expenses  map[string]models.Expense
	refunds   map[string]models.Refund
	clients   map[string]models.Client
	suppliers map[string]models.Supplier

	audits []auditCall
}

func newMemDB() *memDB {
	return &memDB{
		accounts:       map[string]models.Account{},
		entries:        map[string]models.JournalEntry{},
		payments:       map[string]models.Payment{},
		invoiceAllocs:  map[string]models.InvoiceAllocation{},
		supplierAllocs: map[string]models.SupplierAllocation{},
		invoices:       map[string]models.Invoice{},
		orders:         map[string]models.PurchaseOrder{},
		expenses:       map[string]models.Expense{},
		refunds:        map[string]models.Refund{},
		clients:        map[string]models.Client{},
		suppliers:      map[string]models.Supplier{},
	}
}

func (m *memDB) addAccount(id, code string, accountType models.AccountType) models.Account {
	account := models.Account{ID: id, Code: code, Name: code, Type: accountType, IsActive: true}
	m.accounts[id] = account
	return account
}

func (m *memDB) actions() []string {
	out := make([]string, 0, len(m.audits))
	for _, call := range m.audits {
		out = append(out, call.action)
	}
	return out
}

type memAccounts struct{ *memDB }

func (m memAccounts) Create(_ context.Context, _ store.Execer, account models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
	return nil
}

func (m memAccounts) GetByID(_ context.Context, id string) (models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if account, ok := m.accounts[id]; ok {
		return account, nil
	}
	return models.Account{}, store.ErrNotFound
}

func (m memAccounts) GetByCode(_ context.Context, _ store.Getter, code string) (models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, account := range m.accounts {
		if account.Code == code {
			return account, nil
		}
	}
	return models.Account{}, store.ErrNotFound
}

func (m memAccounts) GetForUpdate(ctx context.Context, _ store.Getter, id string) (models.Account, error) {
	return m.GetByID(ctx, id)
}

func (m memAccounts) List(_ context.Context, _ store.Selecter) ([]models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Account, 0, len(m.accounts))
	for _, account := range m.accounts {
		out = append(out, account)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (m memAccounts) Update(_ context.Context, _ store.Execer, account models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[account.ID]; !ok {
		return store.ErrNotFound
	}
	m.accounts[account.ID] = account
	return nil
}

func (m memAccounts) Delete(_ context.Context, _ store.Execer, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.accounts, id)
	return nil
}

func (m memAccounts) CountChildren(_ context.Context, _ store.Getter, id string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, account := range m.accounts {
		if account.ParentID != nil && *account.ParentID == id {
			n++
		}
	}
	return n, nil
}

type memJournals struct{ *memDB }

func (m memJournals) Create(_ context.Context, _ store.Execer, entry models.JournalEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry.CreatedAt = testNow
	entry.UpdatedAt = testNow
	m.entries[entry.ID] = entry
	return nil
}

func (m memJournals) GetByID(_ context.Context, _ store.Getter, id string) (models.JournalEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if entry, ok := m.entries[id]; ok {
		return entry, nil
	}
	return models.JournalEntry{}, store.ErrNotFound
}

func (m memJournals) GetForUpdate(ctx context.Context, tx store.Getter, id string) (models.JournalEntry, error) {
	return m.GetByID(ctx, tx, id)
}

func (m memJournals) UpdateStatus(_ context.Context, _ store.Execer, id string, from, to models.EntryStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[id]
	if !ok || entry.Status != from {
		return false, nil
	}
	entry.Status = to
	m.entries[id] = entry
	return true, nil
}

func (m memJournals) Touch(context.Context, store.Execer, string) error { return nil }

func (m memJournals) DeleteDraft(_ context.Context, _ store.Execer, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[id]
	if !ok || entry.Status != models.EntryDraft {
		return false, nil
	}
	delete(m.entries, id)
	kept := m.lines[:0]
	for _, line := range m.lines {
		if line.EntryID != id {
			kept = append(kept, line)
		}
	}
	m.lines = kept
	return true, nil
}

func (m memJournals) List(_ context.Context, filter store.EntryFilter) ([]models.JournalEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.JournalEntry
	for _, entry := range m.entries {
		if filter.Status != "" && entry.Status != filter.Status {
			continue
		}
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memLines struct{ *memDB }

func (m memLines) InsertLines(_ context.Context, _ store.Execer, lines []models.JournalLine) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, line := range lines {
		line.CreatedAt = testNow
		m.lines = append(m.lines, line)
	}
	return nil
}

func (m memLines) ListByEntry(_ context.Context, _ store.Selecter, entryID string) ([]models.JournalLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.JournalLine
	for _, line := range m.lines {
		if line.EntryID == entryID {
			out = append(out, line)
		}
	}
	return out, nil
}

func (m memLines) DeleteLine(_ context.Context, _ store.Execer, entryID, lineID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, line := range m.lines {
		if line.EntryID == entryID && line.ID == lineID {
			m.lines = append(m.lines[:i], m.lines[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (m memLines) CountByAccount(_ context.Context, _ store.Getter, accountID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, line := range m.lines {
		if line.AccountID == accountID {
			n++
		}
	}
	return n, nil
}

func (m memLines) ListPosted(_ context.Context, _ store.Selecter, through *time.Time) ([]models.PostedLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.PostedLine
	for _, line := range m.lines {
		entry := m.entries[line.EntryID]
		if entry.Status != models.EntryPosted && entry.Status != models.EntryReversed {
			continue
		}
		if through != nil && entry.EntryDate.After(*through) {
			continue
		}
		out = append(out, models.PostedLine{
			LineID:           line.ID,
			EntryID:          entry.ID,
			AccountID:        line.AccountID,
			Debit:            line.Debit,
			Credit:           line.Credit,
			LineDescription:  line.Description,
			EntryDate:        entry.EntryDate,
			EntryDescription: entry.Description,
			ReferenceType:    entry.ReferenceType,
			ReferenceID:      entry.ReferenceID,
			CashFlowCategory: entry.CashFlowCategory,
			AffectsCash:      entry.AffectsCash,
			CreatedAt:        line.CreatedAt,
		})
	}
	return out, nil
}

type memPayments struct{ *memDB }

func (m memPayments) NextNumber(_ context.Context, _ store.Getter, paymentType models.PaymentType, on time.Time) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fmt.Sprintf("%s-%s-%04d", paymentType.NumberPrefix(), on.Format("20060102"), len(m.payments)+1), nil
}

func (m memPayments) Create(_ context.Context, _ store.Execer, p models.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[p.ID] = p
	return nil
}

func (m memPayments) GetByID(_ context.Context, id string) (models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.payments[id]; ok {
		return p, nil
	}
	return models.Payment{}, store.ErrNotFound
}

func (m memPayments) GetForUpdate(ctx context.Context, _ store.Getter, id string) (models.Payment, error) {
	return m.GetByID(ctx, id)
}

func (m memPayments) Finalize(_ context.Context, _ store.Execer, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[id]
	if !ok || p.Status != models.PaymentRecorded {
		return store.ErrNotFound
	}
	p.Status = models.PaymentFinalized
	m.payments[id] = p
	return nil
}

func (m memPayments) AllocatedTotal(_ context.Context, _ store.Getter, id string) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := decimal.Zero
	for _, a := range m.invoiceAllocs {
		if a.PaymentID == id {
			total = total.Add(a.AmountAllocated)
		}
	}
	for _, a := range m.supplierAllocs {
		if a.PaymentID == id {
			total = total.Add(a.AmountAllocated)
		}
	}
	return total, nil
}

func (m memPayments) List(_ context.Context, _ store.PaymentFilter) ([]models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Payment
	for _, p := range m.payments {
		out = append(out, p)
	}
	return out, nil
}

type memAllocations struct{ *memDB }

func (m memAllocations) CreateInvoiceAllocation(_ context.Context, _ store.Execer, a models.InvoiceAllocation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invoiceAllocs[a.ID] = a
	return nil
}

func (m memAllocations) CreateSupplierAllocation(_ context.Context, _ store.Execer, a models.SupplierAllocation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.supplierAllocs[a.ID] = a
	return nil
}

func (m memAllocations) GetInvoiceAllocationForUpdate(_ context.Context, _ store.Getter, id string) (models.InvoiceAllocation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.invoiceAllocs[id]; ok {
		return a, nil
	}
	return models.InvoiceAllocation{}, store.ErrNotFound
}

func (m memAllocations) GetSupplierAllocationForUpdate(_ context.Context, _ store.Getter, id string) (models.SupplierAllocation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.supplierAllocs[id]; ok {
		return a, nil
	}
	return models.SupplierAllocation{}, store.ErrNotFound
}

func (m memAllocations) DeleteInvoiceAllocation(_ context.Context, _ store.Execer, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.invoiceAllocs, id)
	return nil
}

func (m memAllocations) DeleteSupplierAllocation(_ context.Context, _ store.Execer, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.supplierAllocs, id)
	return nil
}

func (m memAllocations) SumForInvoice(_ context.Context, _ store.Getter, id string) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := decimal.Zero
	for _, a := range m.invoiceAllocs {
		if a.InvoiceID == id {
			total = total.Add(a.AmountAllocated)
		}
	}
	return total, nil
}

func (m memAllocations) supplierSum(match func(models.SupplierAllocation) bool) decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := decimal.Zero
	for _, a := range m.supplierAllocs {
		if match(a) {
			total = total.Add(a.AmountAllocated)
		}
	}
	return total
}

func (m memAllocations) SumForPurchaseOrder(_ context.Context, _ store.Getter, id string) (decimal.Decimal, error) {
	return m.supplierSum(func(a models.SupplierAllocation) bool {
		return a.PurchaseOrderID != nil && *a.PurchaseOrderID == id
	}), nil
}

func (m memAllocations) SumForExpense(_ context.Context, _ store.Getter, id string) (decimal.Decimal, error) {
	return m.supplierSum(func(a models.SupplierAllocation) bool {
		return a.ExpenseID != nil && *a.ExpenseID == id
	}), nil
}

func (m memAllocations) ListByPayment(_ context.Context, paymentID string) ([]models.InvoiceAllocation, []models.SupplierAllocation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var invoices []models.InvoiceAllocation
	var suppliers []models.SupplierAllocation
	for _, a := range m.invoiceAllocs {
		if a.PaymentID == paymentID {
			invoices = append(invoices, a)
		}
	}
	for _, a := range m.supplierAllocs {
		if a.PaymentID == paymentID {
			suppliers = append(suppliers, a)
		}
	}
	return invoices, suppliers, nil
}

func (m memAllocations) AllocatedByInvoice(_ context.Context, _ store.Selecter) (map[string]decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]decimal.Decimal{}
	for _, a := range m.invoiceAllocs {
		out[a.InvoiceID] = out[a.InvoiceID].Add(a.AmountAllocated)
	}
	return out, nil
}

func (m memAllocations) AllocatedByPurchaseOrder(_ context.Context, _ store.Selecter) (map[string]decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]decimal.Decimal{}
	for _, a := range m.supplierAllocs {
		if a.PurchaseOrderID != nil {
			out[*a.PurchaseOrderID] = out[*a.PurchaseOrderID].Add(a.AmountAllocated)
		}
	}
	return out, nil
}

func (m memAllocations) AllocatedByExpense(_ context.Context, _ store.Selecter) (map[string]decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]decimal.Decimal{}
	for _, a := range m.supplierAllocs {
		if a.ExpenseID != nil {
			out[*a.ExpenseID] = out[*a.ExpenseID].Add(a.AmountAllocated)
		}
	}
	return out, nil
}

type memDocuments struct{ *memDB }

func (m memDocuments) NextInvoiceNumber(_ context.Context, _ store.Getter, on time.Time) (string, error) {
	return fmt.Sprintf("INV-%d-%04d", on.Year(), len(m.invoices)+1), nil
}

func (m memDocuments) CreateInvoice(_ context.Context, _ store.Execer, inv models.Invoice) error {
	m.invoices[inv.ID] = inv
	return nil
}

func (m memDocuments) GetInvoice(_ context.Context, id string) (models.Invoice, error) {
	if inv, ok := m.invoices[id]; ok {
		return inv, nil
	}
	return models.Invoice{}, store.ErrNotFound
}

func (m memDocuments) GetInvoiceForUpdate(ctx context.Context, _ store.Getter, id string) (models.Invoice, error) {
	return m.GetInvoice(ctx, id)
}

func (m memDocuments) SetInvoiceStatus(_ context.Context, _ store.Execer, id string, status models.InvoiceStatus) error {
	inv, ok := m.invoices[id]
	if !ok {
		return store.ErrNotFound
	}
	inv.Status = status
	m.invoices[id] = inv
	return nil
}

func (m memDocuments) ListOpenInvoices(_ context.Context, _ store.Selecter, asOf time.Time) ([]models.Invoice, error) {
	var out []models.Invoice
	for _, inv := range m.invoices {
		if inv.Status.IsOpen() && !inv.IssueDate.After(asOf) {
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (m memDocuments) ListInvoices(_ context.Context, status models.InvoiceStatus, _, _ int) ([]models.Invoice, error) {
	var out []models.Invoice
	for _, inv := range m.invoices {
		if status == "" || inv.Status == status {
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (m memDocuments) NextPurchaseOrderNumber(_ context.Context, _ store.Getter, on time.Time) (string, error) {
	return fmt.Sprintf("PO-%d-%04d", on.Year(), len(m.orders)+1), nil
}

func (m memDocuments) CreatePurchaseOrder(_ context.Context, _ store.Execer, po models.PurchaseOrder) error {
	m.orders[po.ID] = po
	return nil
}

func (m memDocuments) GetPurchaseOrder(_ context.Context, id string) (models.PurchaseOrder, error) {
	if po, ok := m.orders[id]; ok {
		return po, nil
	}
	return models.PurchaseOrder{}, store.ErrNotFound
}

func (m memDocuments) GetPurchaseOrderForUpdate(ctx context.Context, _ store.Getter, id string) (models.PurchaseOrder, error) {
	return m.GetPurchaseOrder(ctx, id)
}

func (m memDocuments) SetPurchaseOrderStatus(_ context.Context, _ store.Execer, id string, status models.PurchaseOrderStatus) error {
	po, ok := m.orders[id]
	if !ok {
		return store.ErrNotFound
	}
	po.Status = status
	m.orders[id] = po
	return nil
}

func (m memDocuments) ApprovePurchaseOrder(_ context.Context, _ store.Execer, id, approverID string, at time.Time) error {
	po, ok := m.orders[id]
	if !ok {
		return store.ErrNotFound
	}
	po.Status = models.POApproved
	po.ApprovedBy = &approverID
	po.ApprovedAt = &at
	m.orders[id] = po
	return nil
}

func (m memDocuments) SetPurchaseOrderPaymentStatus(_ context.Context, _ store.Execer, id string, state models.PaymentState) error {
	po, ok := m.orders[id]
	if !ok {
		return store.ErrNotFound
	}
	po.PaymentStatus = state
	m.orders[id] = po
	return nil
}

func (m memDocuments) ListPayablePurchaseOrders(_ context.Context, _ store.Selecter, asOf time.Time) ([]models.PurchaseOrder, error) {
	var out []models.PurchaseOrder
	for _, po := range m.orders {
		if po.Status.IsPayable() && !po.OrderDate.After(asOf) {
			out = append(out, po)
		}
	}
	return out, nil
}

func (m memDocuments) NextExpenseNumber(_ context.Context, _ store.Getter, on time.Time) (string, error) {
	return fmt.Sprintf("EXP-%d-%04d", on.Year(), len(m.expenses)+1), nil
}

func (m memDocuments) CreateExpense(_ context.Context, _ store.Execer, e models.Expense) error {
	m.expenses[e.ID] = e
	return nil
}

func (m memDocuments) GetExpense(_ context.Context, id string) (models.Expense, error) {
	if e, ok := m.expenses[id]; ok {
		return e, nil
	}
	return models.Expense{}, store.ErrNotFound
}

func (m memDocuments) GetExpenseForUpdate(ctx context.Context, _ store.Getter, id string) (models.Expense, error) {
	return m.GetExpense(ctx, id)
}

func (m memDocuments) SetExpenseStatus(_ context.Context, _ store.Execer, id string, status models.ExpenseStatus) error {
	e, ok := m.expenses[id]
	if !ok {
		return store.ErrNotFound
	}
	e.Status = status
	m.expenses[id] = e
	return nil
}

func (m memDocuments) ApproveExpense(_ context.Context, _ store.Execer, id, approverID string) error {
	e, ok := m.expenses[id]
	if !ok {
		return store.ErrNotFound
	}
	e.Status = models.ExpenseApproved
	e.ApprovedBy = &approverID
	m.expenses[id] = e
	return nil
}

func (m memDocuments) MarkExpensePaid(_ context.Context, _ store.Execer, id, entryID string) error {
	e, ok := m.expenses[id]
	if !ok {
		return store.ErrNotFound
	}
	e.Status = models.ExpensePaid
	e.JournalEntryID = &entryID
	m.expenses[id] = e
	return nil
}

func (m memDocuments) ListOpenExpenses(_ context.Context, _ store.Selecter, asOf time.Time) ([]models.Expense, error) {
	var out []models.Expense
	for _, e := range m.expenses {
		if e.Status.IsOpen() && !e.ExpenseDate.After(asOf) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m memDocuments) NextRefundNumber(_ context.Context, _ store.Getter, on time.Time) (string, error) {
	return fmt.Sprintf("RFD-%d-%04d", on.Year(), len(m.refunds)+1), nil
}

func (m memDocuments) CreateRefund(_ context.Context, _ store.Execer, r models.Refund) error {
	m.refunds[r.ID] = r
	return nil
}

func (m memDocuments) GetRefund(_ context.Context, id string) (models.Refund, error) {
	if r, ok := m.refunds[id]; ok {
		return r, nil
	}
	return models.Refund{}, store.ErrNotFound
}

func (m memDocuments) GetRefundForUpdate(ctx context.Context, _ store.Getter, id string) (models.Refund, error) {
	return m.GetRefund(ctx, id)
}

func (m memDocuments) UpdateRefund(_ context.Context, _ store.Execer, r models.Refund) error {
	if _, ok := m.refunds[r.ID]; !ok {
		return store.ErrNotFound
	}
	m.refunds[r.ID] = r
	return nil
}

type memParties struct{ *memDB }

func (m memParties) CreateClient(_ context.Context, _ store.Execer, c models.Client) error {
	m.clients[c.ID] = c
	return nil
}

func (m memParties) GetClient(_ context.Context, id string) (models.Client, error) {
	if c, ok := m.clients[id]; ok {
		return c, nil
	}
	return models.Client{}, store.ErrNotFound
}

func (m memParties) ListClients(_ context.Context, _ store.Selecter, _ bool) ([]models.Client, error) {
	var out []models.Client
	for _, c := range m.clients {
		out = append(out, c)
	}
	return out, nil
}

func (m memParties) CreateSupplier(_ context.Context, _ store.Execer, s models.Supplier) error {
	m.suppliers[s.ID] = s
	return nil
}

func (m memParties) GetSupplier(_ context.Context, _ store.Getter, id string) (models.Supplier, error) {
	if s, ok := m.suppliers[id]; ok {
		return s, nil
	}
	return models.Supplier{}, store.ErrNotFound
}

func (m memParties) ListSuppliers(_ context.Context, _ store.Selecter, _ bool) ([]models.Supplier, error) {
	var out []models.Supplier
	for _, s := range m.suppliers {
		out = append(out, s)
	}
	return out, nil
}

type memAudit struct{ *memDB }

func (m memAudit) Log(_ context.Context, _ store.Execer, actorID, action, entityType, entityID string, data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.audits = append(m.audits, auditCall{actorID: actorID, action: action, entityType: entityType, entityID: entityID, data: data})
	return nil
}

type stubAuditStore struct {
	logFn func(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID string, data any) error
}

func (s stubAuditStore) Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID string, data any) error {
	if s.logFn == nil {
		return nil
	}
	return s.logFn(ctx, tx, actorID, action, entityType, entityID, data)
}

type stubHub struct {
	events []websocket.Event
}

func (s *stubHub) Publish(event websocket.Event) {
	s.events = append(s.events, event)
}

func (s *stubHub) types() []string {
	out := make([]string, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.Type)
	}
	return out
}

func newJournalFixture(m *memDB, hub *stubHub) *JournalService {
	return NewJournalService(fakeTxRunner{}, memAccounts{m}, memJournals{m}, memLines{m}, memAudit{m}, hub, nil, fixedClock)
}

func newPaymentFixture(m *memDB, hub *stubHub) *PaymentService {
	return NewPaymentService(fakeTxRunner{}, memPayments{m}, memAllocations{m}, memDocuments{m}, memParties{m}, memAudit{m}, hub, nil, fixedClock)
}

func newDocumentFixture(m *memDB, hub *stubHub) *DocumentService {
	return NewDocumentService(DocumentServiceDeps{
		TxRunner:    fakeTxRunner{},
		Documents:   memDocuments{m},
		Parties:     memParties{m},
		Allocations: memAllocations{m},
		Payments:    memPayments{m},
		Accounts:    memAccounts{m},
		Journals:    memJournals{m},
		Lines:       memLines{m},
		Audit:       memAudit{m},
		Events:      hub,
		Now:         fixedClock,
	})
}
