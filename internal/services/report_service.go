package services

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"accounting/internal/db"
	"accounting/internal/models"
	"accounting/internal/reports"
)

// ReportRequest carries the optional bounds a report reads. Unset dates
// default to today for AsOf and End, and to the first of End's month for
// Start.
type ReportRequest struct {
	Type      string
	Start     *time.Time
	End       *time.Time
	AsOf      *time.Time
	AccountID string
}

var reportSlugs = map[string]string{
	"balance-sheet":    reports.TypeBalanceSheet,
	"income-statement": reports.TypeIncomeStatement,
	"cash-flow":        reports.TypeCashFlow,
	"ar-aging":         reports.TypeARAging,
	"ap-aging":         reports.TypeAPAging,
	"general-ledger":   reports.TypeGeneralLedger,
	"dashboard":        reports.TypeDashboard,
}

// ReportType resolves a URL or CLI report name to its report type.
func ReportType(name string) (string, bool) {
	if t, ok := reportSlugs[name]; ok {
		return t, true
	}
	for _, t := range reportSlugs {
		if t == name {
			return t, true
		}
	}
	return "", false
}

type ReportService struct {
	txRunner    db.TxRunner
	accounts    AccountStore
	lines       LedgerStore
	documents   DocumentStore
	parties     PartyStore
	allocations AllocationStore
	log         *zap.Logger
	now         Clock
}

func NewReportService(txRunner db.TxRunner, accounts AccountStore, lines LedgerStore, documents DocumentStore, parties PartyStore, allocations AllocationStore, log *zap.Logger, now Clock) *ReportService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ReportService{
		txRunner:    txRunner,
		accounts:    accounts,
		lines:       lines,
		documents:   documents,
		parties:     parties,
		allocations: allocations,
		log:         log,
		now:         clockOrSystem(now),
	}
}

type reportWindow struct {
	start, end, asOf time.Time
}

func (s *ReportService) window(req ReportRequest) (reportWindow, error) {
	today := models.DateOf(s.now())
	w := reportWindow{end: today, asOf: today}
	if req.End != nil {
		w.end = models.DateOf(*req.End)
	}
	if req.AsOf != nil {
		w.asOf = models.DateOf(*req.AsOf)
	}
	w.start = time.Date(w.end.Year(), w.end.Month(), 1, 0, 0, 0, 0, time.UTC)
	if req.Start != nil {
		w.start = models.DateOf(*req.Start)
	}
	if w.start.After(w.end) {
		return reportWindow{}, invalidArg("start_date", "must not be after end_date")
	}
	return w, nil
}

// Generate builds the requested report from one consistent read of the
// ledger and open documents.
func (s *ReportService) Generate(ctx context.Context, req ReportRequest) (any, error) {
	reportType, ok := ReportType(req.Type)
	if !ok {
		return nil, invalidArg("report_type", "unknown report "+req.Type)
	}
	w, err := s.window(req)
	if err != nil {
		return nil, err
	}
	through := w.end
	switch reportType {
	case reports.TypeBalanceSheet, reports.TypeARAging, reports.TypeAPAging, reports.TypeDashboard:
		through = w.asOf
	}
	withDocuments := reportType == reports.TypeARAging || reportType == reports.TypeAPAging || reportType == reports.TypeDashboard
	snap, err := s.snapshot(ctx, through, withDocuments)
	if err != nil {
		return nil, err
	}
	if reportType == reports.TypeGeneralLedger && req.AccountID != "" {
		if !hasAccount(snap.Accounts, req.AccountID) {
			return nil, &NotFoundError{Entity: entityAccount, ID: req.AccountID}
		}
	}
	builder := reports.NewBuilder(snap, s.now())
	var report any
	switch reportType {
	case reports.TypeBalanceSheet:
		report = builder.BalanceSheet(w.asOf)
	case reports.TypeIncomeStatement:
		report = builder.IncomeStatement(w.start, w.end)
	case reports.TypeCashFlow:
		report = builder.CashFlow(w.start, w.end)
	case reports.TypeARAging:
		report = builder.ARAging(w.asOf)
	case reports.TypeAPAging:
		report = builder.APAging(w.asOf)
	case reports.TypeGeneralLedger:
		report = builder.GeneralLedger(w.start, w.end, req.AccountID)
	case reports.TypeDashboard:
		report = builder.Dashboard(w.asOf)
	}
	s.log.Debug("report generated", zap.String("report_type", reportType), zap.Int("lines", len(snap.Lines)))
	return report, nil
}

func hasAccount(accounts []models.Account, id string) bool {
	for _, account := range accounts {
		if account.ID == id {
			return true
		}
	}
	return false
}

func (s *ReportService) snapshot(ctx context.Context, through time.Time, withDocuments bool) (reports.Snapshot, error) {
	var snap reports.Snapshot
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		snap = reports.Snapshot{}
		var err error
		if snap.Accounts, err = s.accounts.List(ctx, tx); err != nil {
			return err
		}
		if snap.Lines, err = s.lines.ListPosted(ctx, tx, &through); err != nil {
			return err
		}
		if !withDocuments {
			return nil
		}
		if snap.Clients, err = s.parties.ListClients(ctx, tx, false); err != nil {
			return err
		}
		if snap.Suppliers, err = s.parties.ListSuppliers(ctx, tx, false); err != nil {
			return err
		}
		if snap.Invoices, err = s.documents.ListOpenInvoices(ctx, tx, through); err != nil {
			return err
		}
		if snap.PurchaseOrders, err = s.documents.ListPayablePurchaseOrders(ctx, tx, through); err != nil {
			return err
		}
		if snap.Expenses, err = s.documents.ListOpenExpenses(ctx, tx, through); err != nil {
			return err
		}
		if snap.InvoiceAllocated, err = s.allocations.AllocatedByInvoice(ctx, tx); err != nil {
			return err
		}
		if snap.PurchaseOrderAllocated, err = s.allocations.AllocatedByPurchaseOrder(ctx, tx); err != nil {
			return err
		}
		snap.ExpenseAllocated, err = s.allocations.AllocatedByExpense(ctx, tx)
		return err
	})
	if err != nil {
		return reports.Snapshot{}, err
	}
	return snap, nil
}
