package services

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"accounting/internal/db"
	"accounting/internal/ledger"
	"accounting/internal/models"
	"accounting/internal/money"
	"accounting/internal/store"
	"accounting/internal/websocket"
)

const entityJournalEntry = "journal_entry"

type JournalService struct {
	txRunner db.TxRunner
	writer   entryWriter
	journals JournalStore
	lines    LedgerStore
	audit    AuditStore
	events   EventPublisher
	log      *zap.Logger
	now      Clock
}

func NewJournalService(txRunner db.TxRunner, accounts AccountStore, journals JournalStore, lines LedgerStore, audit AuditStore, events EventPublisher, log *zap.Logger, now Clock) *JournalService {
	if log == nil {
		log = zap.NewNop()
	}
	return &JournalService{
		txRunner: txRunner,
		writer:   entryWriter{accounts: accounts, journals: journals, lines: lines},
		journals: journals,
		lines:    lines,
		audit:    audit,
		events:   publisherOrNop(events),
		log:      log,
		now:      clockOrSystem(now),
	}
}

type LineInput struct {
	AccountID   string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Description string
}

type DraftInput struct {
	EntryDate        time.Time
	Description      string
	ReferenceType    *string
	ReferenceID      *string
	CashFlowCategory *models.CashFlowCategory
	AffectsCash      bool
	Lines            []LineInput
}

type EntryView struct {
	models.JournalEntry
	Lines        []models.JournalLine `json:"lines"`
	TotalDebits  money.Amount         `json:"total_debits"`
	TotalCredits money.Amount         `json:"total_credits"`
	IsBalanced   bool                 `json:"is_balanced"`
}

func newEntryView(entry models.JournalEntry, lines []models.JournalLine) EntryView {
	if lines == nil {
		lines = []models.JournalLine{}
	}
	debits, credits := ledger.Totals(lines)
	return EntryView{
		JournalEntry: entry,
		Lines:        lines,
		TotalDebits:  money.A(debits),
		TotalCredits: money.A(credits),
		IsBalanced:   ledger.IsBalanced(lines),
	}
}

func checkLineInput(field string, in LineInput) error {
	if in.AccountID == "" {
		return invalidArg(field+".account_id", "is required")
	}
	if !ledger.CheckLine(in.Debit, in.Credit) {
		return invalidArg(field, "exactly one of debit or credit must be positive")
	}
	return nil
}

func (s *JournalService) CreateDraft(ctx context.Context, actorID string, in DraftInput) (EntryView, error) {
	if in.CashFlowCategory != nil && !in.CashFlowCategory.IsValid() {
		return EntryView{}, invalidArg("cash_flow_category", "must be operating, investing or financing")
	}
	lines := make([]models.JournalLine, 0, len(in.Lines))
	for i, l := range in.Lines {
		if err := checkLineInput(fmt.Sprintf("lines[%d]", i), l); err != nil {
			return EntryView{}, err
		}
		lines = append(lines, models.JournalLine{AccountID: l.AccountID, Debit: l.Debit, Credit: l.Credit, Description: l.Description})
	}
	entryDate := in.EntryDate
	if entryDate.IsZero() {
		entryDate = s.now()
	}
	entry := models.JournalEntry{
		EntryDate:        entryDate,
		Description:      in.Description,
		ReferenceType:    in.ReferenceType,
		ReferenceID:      in.ReferenceID,
		Status:           models.EntryDraft,
		CashFlowCategory: in.CashFlowCategory,
		AffectsCash:      in.AffectsCash,
		CreatedBy:        actorID,
	}

	var view EntryView
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		index, err := s.writer.accountIndex(ctx, tx)
		if err != nil {
			return err
		}
		for _, line := range lines {
			if _, ok := index[line.AccountID]; !ok {
				return &NotFoundError{Entity: "account", ID: line.AccountID}
			}
		}
		created, stored, err := s.writer.insert(ctx, tx, entry, lines)
		if err != nil {
			return err
		}
		view = newEntryView(created, stored)
		return nil
	})
	if err != nil {
		return EntryView{}, err
	}
	return view, nil
}

// AddLine appends a line to a draft entry.
func (s *JournalService) AddLine(ctx context.Context, entryID string, in LineInput) (EntryView, error) {
	if err := checkLineInput("line", in); err != nil {
		return EntryView{}, err
	}
	var view EntryView
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		entry, err := s.lockDraft(ctx, tx, entryID, "edited")
		if err != nil {
			return err
		}
		index, err := s.writer.accountIndex(ctx, tx)
		if err != nil {
			return err
		}
		if _, ok := index[in.AccountID]; !ok {
			return &NotFoundError{Entity: "account", ID: in.AccountID}
		}
		line := models.JournalLine{EntryID: entryID, AccountID: in.AccountID, Debit: in.Debit, Credit: in.Credit, Description: in.Description}
		if err := s.appendLines(ctx, tx, entryID, []models.JournalLine{line}); err != nil {
			return err
		}
		lines, err := s.lines.ListByEntry(ctx, tx, entryID)
		if err != nil {
			return err
		}
		view = newEntryView(entry, lines)
		return nil
	})
	if err != nil {
		return EntryView{}, err
	}
	return view, nil
}

func (s *JournalService) AddDebitLine(ctx context.Context, entryID, accountID string, amount decimal.Decimal, description string) (EntryView, error) {
	return s.AddLine(ctx, entryID, LineInput{AccountID: accountID, Debit: amount, Credit: decimal.Zero, Description: description})
}

func (s *JournalService) AddCreditLine(ctx context.Context, entryID, accountID string, amount decimal.Decimal, description string) (EntryView, error) {
	return s.AddLine(ctx, entryID, LineInput{AccountID: accountID, Debit: decimal.Zero, Credit: amount, Description: description})
}

func (s *JournalService) appendLines(ctx context.Context, tx *sqlx.Tx, entryID string, lines []models.JournalLine) error {
	for i := range lines {
		lines[i].ID = newID()
		lines[i].EntryID = entryID
	}
	if err := s.lines.InsertLines(ctx, tx, lines); err != nil {
		return err
	}
	return s.journals.Touch(ctx, tx, entryID)
}

func (s *JournalService) RemoveLine(ctx context.Context, entryID, lineID string) (EntryView, error) {
	var view EntryView
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		entry, err := s.lockDraft(ctx, tx, entryID, "edited")
		if err != nil {
			return err
		}
		if err := s.lines.DeleteLine(ctx, tx, entryID, lineID); err != nil {
			return lookup(err, "journal line", lineID)
		}
		if err := s.journals.Touch(ctx, tx, entryID); err != nil {
			return err
		}
		lines, err := s.lines.ListByEntry(ctx, tx, entryID)
		if err != nil {
			return err
		}
		view = newEntryView(entry, lines)
		return nil
	})
	if err != nil {
		return EntryView{}, err
	}
	return view, nil
}

// Validate lists every reason the entry cannot be posted right now.
func (s *JournalService) Validate(ctx context.Context, entryID string) ([]string, error) {
	var problems []string
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := s.journals.GetByID(ctx, tx, entryID); err != nil {
			return lookup(err, "journal entry", entryID)
		}
		lines, err := s.lines.ListByEntry(ctx, tx, entryID)
		if err != nil {
			return err
		}
		problems, err = s.writer.validate(ctx, tx, lines)
		return err
	})
	if err != nil {
		return nil, err
	}
	if problems == nil {
		problems = []string{}
	}
	return problems, nil
}

// Post moves a balanced draft into the ledger. Nothing is written when any
// validation rule fails; the error carries every problem found.
func (s *JournalService) Post(ctx context.Context, actorID, entryID string) (EntryView, error) {
	var view EntryView
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		entry, err := s.lockDraft(ctx, tx, entryID, "posted")
		if err != nil {
			return err
		}
		lines, err := s.lines.ListByEntry(ctx, tx, entryID)
		if err != nil {
			return err
		}
		problems, err := s.writer.validate(ctx, tx, lines)
		if err != nil {
			return err
		}
		if len(problems) > 0 {
			return &ValidationError{Problems: problems}
		}
		ok, err := s.journals.UpdateStatus(ctx, tx, entryID, models.EntryDraft, models.EntryPosted)
		if err != nil {
			return err
		}
		if !ok {
			return preconditionf("journal entry %s is no longer a draft", entryID)
		}
		entry.Status = models.EntryPosted
		view = newEntryView(entry, lines)
		return s.audit.Log(ctx, tx, actorID, "journal_entry.posted", entityJournalEntry, entryID, map[string]string{
			"total": money.Format(view.TotalDebits.Decimal),
		})
	})
	if err != nil {
		return EntryView{}, err
	}
	s.log.Info("journal entry posted", zap.String("entry_id", entryID), zap.String("actor_id", actorID))
	s.events.Publish(websocket.Event{Type: websocket.EventEntryPosted, EntityType: entityJournalEntry, EntityID: entryID, Status: string(models.EntryPosted)})
	return view, nil
}

// Reverse offsets a posted entry with a new posted entry dated today whose
// lines swap debit and credit, and marks the original reversed. The original
// lines are left untouched.
func (s *JournalService) Reverse(ctx context.Context, actorID, entryID string) (EntryView, error) {
	var view EntryView
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		original, err := s.journals.GetForUpdate(ctx, tx, entryID)
		if err != nil {
			return lookup(err, "journal entry", entryID)
		}
		if original.Status != models.EntryPosted {
			return preconditionf("journal entry %s is %s; only posted entries can be reversed", entryID, original.Status)
		}
		lines, err := s.lines.ListByEntry(ctx, tx, entryID)
		if err != nil {
			return err
		}
		referenceType := models.ReferenceReversal
		referenceID := original.ID
		reversal := models.JournalEntry{
			EntryDate:        s.now(),
			Description:      "Reversal of: " + original.Description,
			ReferenceType:    &referenceType,
			ReferenceID:      &referenceID,
			Status:           models.EntryPosted,
			CashFlowCategory: original.CashFlowCategory,
			AffectsCash:      original.AffectsCash,
			CreatedBy:        actorID,
		}
		created, stored, err := s.writer.insert(ctx, tx, reversal, ledger.ReverseLines(lines))
		if err != nil {
			return err
		}
		ok, err := s.journals.UpdateStatus(ctx, tx, entryID, models.EntryPosted, models.EntryReversed)
		if err != nil {
			return err
		}
		if !ok {
			return preconditionf("journal entry %s is no longer posted", entryID)
		}
		view = newEntryView(created, stored)
		return s.audit.Log(ctx, tx, actorID, "journal_entry.reversed", entityJournalEntry, entryID, map[string]string{
			"reversal_entry_id": created.ID,
		})
	})
	if err != nil {
		return EntryView{}, err
	}
	s.log.Info("journal entry reversed", zap.String("entry_id", entryID), zap.String("reversal_id", view.ID))
	s.events.Publish(websocket.Event{Type: websocket.EventEntryReversed, EntityType: entityJournalEntry, EntityID: entryID, Status: string(models.EntryReversed)})
	s.events.Publish(websocket.Event{Type: websocket.EventEntryPosted, EntityType: entityJournalEntry, EntityID: view.ID, Status: string(models.EntryPosted)})
	return view, nil
}

func (s *JournalService) Delete(ctx context.Context, entryID string) error {
	return s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := s.lockDraft(ctx, tx, entryID, "deleted"); err != nil {
			return err
		}
		ok, err := s.journals.DeleteDraft(ctx, tx, entryID)
		if err != nil {
			return err
		}
		if !ok {
			return preconditionf("journal entry %s is no longer a draft", entryID)
		}
		return nil
	})
}

func (s *JournalService) Get(ctx context.Context, entryID string) (EntryView, error) {
	var view EntryView
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		entry, err := s.journals.GetByID(ctx, tx, entryID)
		if err != nil {
			return lookup(err, "journal entry", entryID)
		}
		lines, err := s.lines.ListByEntry(ctx, tx, entryID)
		if err != nil {
			return err
		}
		view = newEntryView(entry, lines)
		return nil
	})
	if err != nil {
		return EntryView{}, err
	}
	return view, nil
}

func (s *JournalService) List(ctx context.Context, filter store.EntryFilter) ([]models.JournalEntry, error) {
	entries, err := s.journals.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []models.JournalEntry{}
	}
	return entries, nil
}

func (s *JournalService) lockDraft(ctx context.Context, tx *sqlx.Tx, entryID, action string) (models.JournalEntry, error) {
	entry, err := s.journals.GetForUpdate(ctx, tx, entryID)
	if err != nil {
		return models.JournalEntry{}, lookup(err, "journal entry", entryID)
	}
	if entry.Status != models.EntryDraft {
		return models.JournalEntry{}, preconditionf("journal entry %s is %s; only draft entries can be %s", entryID, entry.Status, action)
	}
	return entry, nil
}

