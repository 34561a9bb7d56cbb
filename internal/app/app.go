// Package app wires stores and services over one database pool.
package app

import (
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"accounting/internal/db"
	"accounting/internal/services"
	"accounting/internal/store"
	"accounting/internal/websocket"
)

type App struct {
	Accounts  *services.AccountService
	Journal   *services.JournalService
	Payments  *services.PaymentService
	Documents *services.DocumentService
	Reports   *services.ReportService
	Audit     *store.AuditStore
	Hub       *websocket.Hub
}

func New(database *sqlx.DB, log *zap.Logger) App {
	accounts := store.NewAccountStore(database)
	journals := store.NewJournalStore(database)
	lines := store.NewLedgerStore(database)
	payments := store.NewPaymentStore(database)
	allocations := store.NewAllocationStore(database)
	documents := store.NewDocumentStore(database)
	parties := store.NewPartyStore(database)
	audit := store.NewAuditStore(database)
	txRunner := db.NewTxRunner(database, log)
	hub := websocket.NewHub()
	now := services.Clock(services.SystemClock)

	return App{
		Accounts: services.NewAccountService(txRunner, accounts, lines, audit, log.Named("accounts")),
		Journal:  services.NewJournalService(txRunner, accounts, journals, lines, audit, hub, log.Named("journal"), now),
		Payments: services.NewPaymentService(txRunner, payments, allocations, documents, parties, audit, hub, log.Named("payments"), now),
		Documents: services.NewDocumentService(services.DocumentServiceDeps{
			TxRunner:    txRunner,
			Documents:   documents,
			Parties:     parties,
			Allocations: allocations,
			Payments:    payments,
			Accounts:    accounts,
			Journals:    journals,
			Lines:       lines,
			Audit:       audit,
			Events:      hub,
			Log:         log.Named("documents"),
			Now:         now,
		}),
		Reports: services.NewReportService(txRunner, accounts, lines, documents, parties, allocations, log.Named("reports"), now),
		Audit:   audit,
		Hub:     hub,
	}
}
