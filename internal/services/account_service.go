package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"accounting/internal/db"
	"accounting/internal/ledger"
	"accounting/internal/models"
	"accounting/internal/money"
	"accounting/internal/store"
)

const entityAccount = "account"

type AccountService struct {
	txRunner db.TxRunner
	accounts AccountStore
	lines    LedgerStore
	audit    AuditStore
	log      *zap.Logger
}

func NewAccountService(txRunner db.TxRunner, accounts AccountStore, lines LedgerStore, audit AuditStore, log *zap.Logger) *AccountService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AccountService{txRunner: txRunner, accounts: accounts, lines: lines, audit: audit, log: log}
}

type AccountInput struct {
	Code          string
	Name          string
	Type          models.AccountType
	ParentID      *string
	Description   string
	IsCashAccount bool
	IsBankAccount bool
}

// AccountUpdate changes only the fields that are set. ClearParent detaches
// the account from its parent.
type AccountUpdate struct {
	Name          *string
	Description   *string
	ParentID      *string
	ClearParent   bool
	IsActive      *bool
	IsCashAccount *bool
	IsBankAccount *bool
}

type AccountView struct {
	models.Account
	FullCode            string       `json:"full_code"`
	FullName            string       `json:"full_name"`
	IsParent            bool         `json:"is_parent"`
	HasDebitBalance     bool         `json:"has_debit_balance"`
	HasCreditBalance    bool         `json:"has_credit_balance"`
	Balance             money.Amount `json:"balance"`
	ConsolidatedBalance money.Amount `json:"consolidated_balance"`
	DebitBalance        money.Amount `json:"debit_balance"`
	CreditBalance       money.Amount `json:"credit_balance"`
}

type AccountNode struct {
	models.Account
	FullCode string        `json:"full_code"`
	IsParent bool          `json:"is_parent"`
	Children []AccountNode `json:"children"`
}

func (s *AccountService) Create(ctx context.Context, actorID string, in AccountInput) (models.Account, error) {
	in.Code = strings.TrimSpace(in.Code)
	in.Name = strings.TrimSpace(in.Name)
	if in.Code == "" {
		return models.Account{}, invalidArg("code", "is required")
	}
	if in.Name == "" {
		return models.Account{}, invalidArg("name", "is required")
	}
	if !in.Type.IsValid() {
		return models.Account{}, invalidArg("type", "must be asset, liability, equity, revenue or expense")
	}
	account := models.Account{
		ID:            newID(),
		Code:          in.Code,
		Name:          in.Name,
		Type:          in.Type,
		ParentID:      in.ParentID,
		Description:   in.Description,
		IsActive:      true,
		IsCashAccount: in.IsCashAccount,
		IsBankAccount: in.IsBankAccount,
	}
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := s.accounts.GetByCode(ctx, tx, account.Code); err == nil {
			return preconditionf("account code %s already exists", account.Code)
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		if account.ParentID != nil {
			if _, err := s.accounts.GetForUpdate(ctx, tx, *account.ParentID); err != nil {
				return lookup(err, "parent account", *account.ParentID)
			}
		}
		if err := s.accounts.Create(ctx, tx, account); err != nil {
			return err
		}
		return s.audit.Log(ctx, tx, actorID, "account.created", entityAccount, account.ID, map[string]string{"code": account.Code})
	})
	if err != nil {
		return models.Account{}, err
	}
	return account, nil
}

func (s *AccountService) Update(ctx context.Context, actorID, accountID string, in AccountUpdate) (models.Account, error) {
	var updated models.Account
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		account, err := s.accounts.GetForUpdate(ctx, tx, accountID)
		if err != nil {
			return lookup(err, entityAccount, accountID)
		}
		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return invalidArg("name", "must not be empty")
			}
			account.Name = name
		}
		if in.Description != nil {
			account.Description = *in.Description
		}
		if in.IsActive != nil {
			account.IsActive = *in.IsActive
		}
		if in.IsCashAccount != nil {
			account.IsCashAccount = *in.IsCashAccount
		}
		if in.IsBankAccount != nil {
			account.IsBankAccount = *in.IsBankAccount
		}
		switch {
		case in.ClearParent:
			account.ParentID = nil
		case in.ParentID != nil:
			chart, err := s.accounts.List(ctx, tx)
			if err != nil {
				return err
			}
			tree := ledger.NewTree(chart)
			if _, ok := tree.Account(*in.ParentID); !ok {
				return &NotFoundError{Entity: "parent account", ID: *in.ParentID}
			}
			if tree.WouldCycle(accountID, *in.ParentID) {
				return preconditionf("moving account %s under %s would create a cycle", accountID, *in.ParentID)
			}
			parentID := *in.ParentID
			account.ParentID = &parentID
		}
		if err := s.accounts.Update(ctx, tx, account); err != nil {
			return err
		}
		updated = account
		return s.audit.Log(ctx, tx, actorID, "account.updated", entityAccount, accountID, nil)
	})
	if err != nil {
		return models.Account{}, err
	}
	return updated, nil
}

func (s *AccountService) SetActive(ctx context.Context, actorID, accountID string, active bool) (models.Account, error) {
	return s.Update(ctx, actorID, accountID, AccountUpdate{IsActive: &active})
}

// ChangeType is refused once any journal line references the account, since
// the new sign convention would silently flip its history.
func (s *AccountService) ChangeType(ctx context.Context, actorID, accountID string, accountType models.AccountType) (models.Account, error) {
	if !accountType.IsValid() {
		return models.Account{}, invalidArg("type", "must be asset, liability, equity, revenue or expense")
	}
	var updated models.Account
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		account, err := s.accounts.GetForUpdate(ctx, tx, accountID)
		if err != nil {
			return lookup(err, entityAccount, accountID)
		}
		if account.Type == accountType {
			updated = account
			return nil
		}
		used, err := s.lines.CountByAccount(ctx, tx, accountID)
		if err != nil {
			return err
		}
		if used > 0 {
			return preconditionf("account %s has journal lines; its type cannot change", account.Code)
		}
		previous := account.Type
		account.Type = accountType
		if err := s.accounts.Update(ctx, tx, account); err != nil {
			return err
		}
		updated = account
		return s.audit.Log(ctx, tx, actorID, "account.type_changed", entityAccount, accountID, map[string]string{
			"from": string(previous),
			"to":   string(accountType),
		})
	})
	if err != nil {
		return models.Account{}, err
	}
	return updated, nil
}

// Delete removes an account that nothing refers to. Accounts with children or
// journal lines have to be deactivated instead.
func (s *AccountService) Delete(ctx context.Context, actorID, accountID string) error {
	return s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		account, err := s.accounts.GetForUpdate(ctx, tx, accountID)
		if err != nil {
			return lookup(err, entityAccount, accountID)
		}
		children, err := s.accounts.CountChildren(ctx, tx, accountID)
		if err != nil {
			return err
		}
		if children > 0 {
			return preconditionf("account %s has child accounts; deactivate it instead", account.Code)
		}
		used, err := s.lines.CountByAccount(ctx, tx, accountID)
		if err != nil {
			return err
		}
		if used > 0 {
			return preconditionf("account %s has journal lines; deactivate it instead", account.Code)
		}
		if err := s.accounts.Delete(ctx, tx, accountID); err != nil {
			return lookup(err, entityAccount, accountID)
		}
		return s.audit.Log(ctx, tx, actorID, "account.deleted", entityAccount, accountID, map[string]string{"code": account.Code})
	})
}

func (s *AccountService) loadChart(ctx context.Context) ([]models.Account, error) {
	var chart []models.Account
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		chart, err = s.accounts.List(ctx, tx)
		return err
	})
	return chart, err
}

// Get returns the account with its balances over period.
func (s *AccountService) Get(ctx context.Context, accountID string, period ledger.Period) (AccountView, error) {
	var (
		chart []models.Account
		lines []models.PostedLine
	)
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		if chart, err = s.accounts.List(ctx, tx); err != nil {
			return err
		}
		lines, err = s.lines.ListPosted(ctx, tx, period.End)
		return err
	})
	if err != nil {
		return AccountView{}, err
	}
	tree := ledger.NewTree(chart)
	account, ok := tree.Account(accountID)
	if !ok {
		return AccountView{}, &NotFoundError{Entity: entityAccount, ID: accountID}
	}
	calc := ledger.NewCalculator(tree, lines)
	balance, err := calc.Balance(accountID, period)
	if err != nil {
		return AccountView{}, err
	}
	consolidated, err := calc.ConsolidatedBalance(accountID, period)
	if err != nil {
		return AccountView{}, err
	}
	fullCode, err := tree.FullCode(accountID)
	if err != nil {
		return AccountView{}, err
	}
	fullName, err := tree.FullName(accountID)
	if err != nil {
		return AccountView{}, err
	}
	return AccountView{
		Account:             account,
		FullCode:            fullCode,
		FullName:            fullName,
		IsParent:            tree.IsParent(accountID),
		HasDebitBalance:     account.Type.HasDebitBalance(),
		HasCreditBalance:    account.Type.HasCreditBalance(),
		Balance:             money.A(balance),
		ConsolidatedBalance: money.A(consolidated),
		DebitBalance:        money.A(ledger.DebitBalance(balance)),
		CreditBalance:       money.A(ledger.CreditBalance(balance)),
	}, nil
}

// Tree returns the chart as nested nodes, roots in code order.
func (s *AccountService) Tree(ctx context.Context) ([]AccountNode, error) {
	chart, err := s.loadChart(ctx)
	if err != nil {
		return nil, err
	}
	tree := ledger.NewTree(chart)
	seen := map[string]bool{}
	var build func(account models.Account) (AccountNode, error)
	build = func(account models.Account) (AccountNode, error) {
		if seen[account.ID] {
			return AccountNode{}, ledger.ErrCycle
		}
		seen[account.ID] = true
		fullCode, err := tree.FullCode(account.ID)
		if err != nil {
			return AccountNode{}, err
		}
		node := AccountNode{Account: account, FullCode: fullCode, IsParent: tree.IsParent(account.ID), Children: []AccountNode{}}
		for _, child := range tree.Children(account.ID) {
			childNode, err := build(child)
			if err != nil {
				return AccountNode{}, err
			}
			node.Children = append(node.Children, childNode)
		}
		return node, nil
	}
	roots := tree.Roots()
	nodes := make([]AccountNode, 0, len(roots))
	for _, root := range roots {
		node, err := build(root)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// Period turns optional date bounds into a balance period.
func Period(start, end *time.Time) ledger.Period {
	var p ledger.Period
	if start != nil {
		d := models.DateOf(*start)
		p.Start = &d
	}
	if end != nil {
		d := models.DateOf(*end)
		p.End = &d
	}
	return p
}
