package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	gorillaws "github.com/gorilla/websocket"
	"go.uber.org/zap"

	"accounting/internal/auth"
	"accounting/internal/config"
	"accounting/internal/middleware"
	"accounting/internal/websocket"
)

type Deps struct {
	Accounts  AccountService
	Journal   JournalService
	Payments  PaymentService
	Documents DocumentService
	Reports   ReportService
	Audit     AuditStore
	Hub       *websocket.Hub
	Log       *zap.Logger
}

type Handler struct {
	cfg       config.Config
	accounts  AccountService
	journal   JournalService
	payments  PaymentService
	documents DocumentService
	reports   ReportService
	audit     AuditStore
	hub       *websocket.Hub
	upgrader  gorillaws.Upgrader
	log       *zap.Logger
}

func New(cfg config.Config, deps Deps) *Handler {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		cfg:       cfg,
		accounts:  deps.Accounts,
		journal:   deps.Journal,
		payments:  deps.Payments,
		documents: deps.Documents,
		reports:   deps.Reports,
		audit:     deps.Audit,
		hub:       deps.Hub,
		upgrader:  websocket.NewUpgrader(cfg.Origins()),
		log:       log,
	}
}

func (h *Handler) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(middleware.RequestLogger(h.log))
	router.Use(chimiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.cfg.Origins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.Auth(h.cfg.JWTSecret))

		r.Get("/ws/events", h.Events)

		r.Get("/accounts", h.AccountTree)
		r.Get("/accounts/{id}", h.GetAccount)
		r.Get("/journal-entries", h.ListEntries)
		r.Get("/journal-entries/{id}", h.GetEntry)
		r.Get("/journal-entries/{id}/validation", h.ValidateEntry)
		r.Get("/payments", h.ListPayments)
		r.Get("/payments/{id}", h.PaymentSummary)
		r.Get("/clients", h.ListClients)
		r.Get("/suppliers", h.ListSuppliers)
		r.Get("/invoices", h.ListInvoices)
		r.Get("/invoices/{id}", h.GetInvoice)
		r.Get("/purchase-orders/{id}", h.GetPurchaseOrder)
		r.Get("/expenses/{id}", h.GetExpense)
		r.Get("/refunds/{id}", h.GetRefund)
		r.Get("/reports/{type}", h.Report)
		r.Post("/reports/{type}", h.Report)
		r.Get("/audit", h.ListAudit)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(auth.RoleAccountant))

			r.Post("/accounts", h.CreateAccount)
			r.Put("/accounts/{id}", h.UpdateAccount)
			r.Post("/accounts/{id}/activate", h.ActivateAccount)
			r.Post("/accounts/{id}/deactivate", h.DeactivateAccount)
			r.Put("/accounts/{id}/type", h.ChangeAccountType)
			r.Delete("/accounts/{id}", h.DeleteAccount)

			r.Post("/journal-entries", h.CreateEntry)
			r.Delete("/journal-entries/{id}", h.DeleteEntry)
			r.Post("/journal-entries/{id}/lines", h.AddLine)
			r.Post("/journal-entries/{id}/debits", h.AddDebit)
			r.Post("/journal-entries/{id}/credits", h.AddCredit)
			r.Delete("/journal-entries/{id}/lines/{lineID}", h.RemoveLine)
			r.Post("/journal-entries/{id}/post", h.PostEntry)
			r.Post("/journal-entries/{id}/reverse", h.ReverseEntry)

			r.Post("/payments", h.RecordPayment)
			r.Post("/payments/{id}/finalize", h.FinalizePayment)
			r.Post("/invoices/{id}/allocations", h.AllocateToInvoice)
			r.Post("/purchase-orders/{id}/allocations", h.AllocateToPurchaseOrder)
			r.Post("/suppliers/{id}/expenses/{expenseID}/allocations", h.AllocateToExpense)
			r.Post("/supplier-allocations", h.AllocateToSupplier)
			r.Post("/invoice-allocations/{id}/reverse", h.ReverseInvoiceAllocation)
			r.Post("/supplier-allocations/{id}/reverse", h.ReverseSupplierAllocation)

			r.Post("/clients", h.CreateClient)
			r.Post("/suppliers", h.CreateSupplier)

			r.Post("/invoices", h.CreateInvoice)
			r.Post("/invoices/{id}/send", h.SendInvoice)
			r.Post("/invoices/{id}/cancel", h.CancelInvoice)
			r.Post("/invoices/{id}/overdue", h.MarkInvoiceOverdue)

			r.Post("/purchase-orders", h.CreatePurchaseOrder)
			r.Post("/purchase-orders/{id}/send", h.SendPurchaseOrder)
			r.Post("/purchase-orders/{id}/approve", h.ApprovePurchaseOrder)
			r.Post("/purchase-orders/{id}/receive", h.ReceivePurchaseOrder)
			r.Post("/purchase-orders/{id}/cancel", h.CancelPurchaseOrder)

			r.Post("/expenses", h.CreateExpense)
			r.Post("/expenses/{id}/approve", h.ApproveExpense)
			r.Post("/expenses/{id}/reject", h.RejectExpense)
			r.Post("/expenses/{id}/pay", h.MarkExpensePaid)

			r.Post("/refunds", h.CreateRefund)
			r.Post("/refunds/{id}/approve", h.ApproveRefund)
			r.Post("/refunds/{id}/process", h.ProcessRefund)
			r.Post("/refunds/{id}/reject", h.RejectRefund)
			r.Post("/refunds/{id}/cancel", h.CancelRefund)
		})
	})
	return router
}

// Events streams websocket events for one entity type, or all of them.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	topic := r.URL.Query().Get("topic")
	if topic == "" {
		topic = websocket.AllTopics
	}
	websocket.ServeWS(w, r, h.upgrader, h.hub, topic)
}
